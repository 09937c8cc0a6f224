/*
 * MIT License
 *
 * Copyright (c) 2022 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

//go:build linux

package dispatcher_test

import (
	"bufio"
	"fmt"
	"net"
	"os"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nabbar/edgeserve/internal/assets"
	"github.com/nabbar/edgeserve/internal/dispatcher"
	"github.com/nabbar/edgeserve/internal/metrics"
	"github.com/nabbar/edgeserve/logger"
	loglvl "github.com/nabbar/edgeserve/logger/level"
)

// dialRetry gives the dispatcher's goroutine a moment to reach its Wait
// call before the test connects — Run's bind/listen happens synchronously
// before Run blocks, but the test still starts Run in a goroutine, so a
// short retry loop is cheaper and less flaky than a fixed sleep.
func dialRetry(addr string) (net.Conn, error) {
	var lastErr error
	for i := 0; i < 50; i++ {
		c, err := net.DialTimeout("tcp", addr, 100*time.Millisecond)
		if err == nil {
			return c, nil
		}
		lastErr = err
		time.Sleep(10 * time.Millisecond)
	}
	return nil, lastErr
}

var _ = Describe("Dispatcher", func() {
	var (
		root string
		addr string
		d    *dispatcher.Dispatcher
		done chan struct{}
	)

	BeforeEach(func() {
		root = GinkgoT().TempDir()
		Expect(os.WriteFile(root+"/index.html", []byte("served by dispatcher"), 0o644)).To(Succeed())

		reg, rerr := assets.NewRegistry(root)
		Expect(rerr).To(BeNil())

		addr = fmt.Sprintf("127.0.0.1:%d", 20000+GinkgoParallelProcess())
		log := logger.New(loglvl.InfoLevel, os.Stderr)
		met := metrics.New()

		d = dispatcher.New(dispatcher.Config{
			Listen:      addr,
			KeepAliveMs: 50,
			Workers:     4,
			DocRoot:     root,
		}, log, met, reg)

		done = make(chan struct{})
		go func() {
			_ = d.Run()
			close(done)
		}()
	})

	AfterEach(func() {
		d.Stop()
		Eventually(done, 2*time.Second).Should(BeClosed())
	})

	It("accepts a connection and serves the document root over it", func() {
		c, err := dialRetry(addr)
		Expect(err).NotTo(HaveOccurred())
		defer c.Close()

		_, werr := c.Write([]byte("GET / HTTP/1.1\r\nConnection: close\r\n\r\n"))
		Expect(werr).NotTo(HaveOccurred())

		line, rerr := bufio.NewReader(c).ReadString('\n')
		Expect(rerr).NotTo(HaveOccurred())
		Expect(line).To(Equal("HTTP/1.1 200 OK\r\n"))
	})
})
