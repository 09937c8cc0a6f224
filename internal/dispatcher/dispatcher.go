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

// Package dispatcher runs the single-threaded acceptor/dispatcher loop: it
// owns the Readiness Monitor and the Timer Registry, turns ready events
// into either a burst-accept or a worker pool submission, and sweeps idle
// connections on every tick.
package dispatcher

import (
	"net"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"golang.org/x/sys/unix"

	liberr "github.com/nabbar/edgeserve/errors"
	errpool "github.com/nabbar/edgeserve/errors/pool"
	"github.com/nabbar/edgeserve/internal/assets"
	"github.com/nabbar/edgeserve/internal/conn"
	"github.com/nabbar/edgeserve/internal/httptask"
	"github.com/nabbar/edgeserve/internal/metrics"
	"github.com/nabbar/edgeserve/internal/poller"
	"github.com/nabbar/edgeserve/internal/timerwheel"
	"github.com/nabbar/edgeserve/internal/workerpool"
	"github.com/nabbar/edgeserve/logger"
)

// Config is what the dispatcher needs to bind its listening socket and
// size its worker pool; it is a narrow projection of the process-wide
// config.Config rather than a dependency on that package directly.
type Config struct {
	Listen      string
	KeepAliveMs int64
	Workers     int
	DocRoot     string
}

// Dispatcher is the Acceptor/Dispatcher: one goroutine runs Run, every
// accepted Connection's task runs on the worker pool beneath it.
type Dispatcher struct {
	cfg Config
	log logger.Logger
	met *metrics.Metrics

	listenFD int
	poll     *poller.Poller
	timers   *timerwheel.Registry[int]
	pool     *workerpool.Pool
	task     *httptask.Task

	mu    sync.Mutex
	conns map[int]*conn.Connection

	// errs collects setup-adjacent, non-fatal errors observed during every
	// burst-accept pass of the run (e.g. a transient accept() failure
	// between two successful ones) so the caller can log them together
	// through Errors instead of one line per occurrence.
	errs errpool.Pool

	shutdown atomic.Bool
}

// New builds a Dispatcher bound to listen on cfg.Listen once Run is
// called. The listening socket itself is not created here — Run owns its
// full lifetime so a Dispatcher can be constructed before any syscall
// runs, which keeps error handling for bind/listen entirely inside Run's
// own setup-failure branch.
func New(cfg Config, log logger.Logger, met *metrics.Metrics, reg *assets.Registry) *Dispatcher {
	return &Dispatcher{
		cfg:   cfg,
		log:   log,
		met:   met,
		conns: make(map[int]*conn.Connection),
		errs:  errpool.New(),
		task: &httptask.Task{
			DocRoot:     cfg.DocRoot,
			Assets:      reg,
			KeepAliveMs: cfg.KeepAliveMs,
			Log:         log,
			Met:         met,
		},
	}
}

// Run binds the listening socket, creates the Readiness Monitor and Timer
// Registry, and blocks running the dispatcher loop until SIGINT or a Stop
// call. It returns nil on a clean shutdown and a coded Error on
// any setup failure — the only branch of spec.md §7's taxonomy that
// escalates out of this function.
func (d *Dispatcher) Run() liberr.Error {
	lfd, err := bindListener(d.cfg.Listen)
	if err != nil {
		return ErrorListenerBind.Error(err)
	}
	d.listenFD = lfd
	defer unix.Close(d.listenFD)

	p, perr := poller.New()
	if perr != nil {
		return ErrorMonitorCreate.Error(perr)
	}
	d.poll = p
	defer p.Close()

	if aerr := p.Add(d.listenFD, poller.Readable|poller.EdgeTriggered); aerr != nil {
		return ErrorMonitorRegister.Error(aerr)
	}

	d.timers = timerwheel.New[int]()
	d.pool = workerpool.New(d.cfg.Workers)
	d.task.Poll = d.poll
	d.task.Timers = d.timers
	d.task.OnClose = d.forget

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt)
	signal.Ignore(syscall.SIGPIPE)
	go func() {
		<-sig
		d.shutdown.Store(true)
	}()

	d.loop()

	d.pool.WaitIdle()
	d.pool.Destroy()

	return nil
}

// loop is the per-tick body from spec.md §4.5: wait, expire, then react
// to each ready event — burst-accept for the listening socket, a worker
// submission for everything else, a staleness mark for anything that
// looks broken.
func (d *Dispatcher) loop() {
	batch := make([]poller.Event, poller.MaxBatch)

	for !d.shutdown.Load() {
		n, err := d.poll.Wait(batch, int(d.cfg.KeepAliveMs))
		if err != nil {
			if d.log != nil {
				d.log.Error("readiness wait failed", err, nil)
			}
			continue
		}

		now := time.Now().UnixMilli()
		expired := d.timers.Expire(now, d.cfg.KeepAliveMs, d.expireOne)
		if expired > 0 && d.met != nil {
			d.met.AddExpired(expired)
		}

		for i := 0; i < n; i++ {
			d.handle(batch[i], now)
		}
	}
}

// handle reacts to a single ready event.
func (d *Dispatcher) handle(ev poller.Event, now int64) {
	if ev.Flags&(poller.Err|poller.Hangup) != 0 || ev.Flags&poller.Readable == 0 {
		d.timers.Update(ev.Key, now)
		return
	}

	if ev.Key == d.listenFD {
		d.acceptBurst()
		return
	}

	d.mu.Lock()
	c, ok := d.conns[ev.Key]
	d.mu.Unlock()
	if !ok {
		return
	}

	if d.met != nil {
		d.met.SetWorkersBusy(d.pool.Working())
	}
	d.pool.Submit(func(any) { c.Task(nil) }, nil)
}

// acceptBurst drains accept() until EAGAIN/EWOULDBLOCK, registering each
// new socket with the monitor and the timer registry before the next
// burst could possibly observe it.
func (d *Dispatcher) acceptBurst() {
	for {
		fd, _, err := unix.Accept(d.listenFD)
		if err != nil {
			if err == unix.EAGAIN || err == unix.EWOULDBLOCK {
				return
			}
			if err == unix.EINTR {
				continue
			}
			d.errs.Add(err)
			return
		}

		if err := unix.SetNonblock(fd, true); err != nil {
			d.errs.Add(err)
			_ = unix.Close(fd)
			continue
		}

		c := conn.New(fd, d.task)

		if aerr := d.poll.Add(fd, poller.Readable|poller.EdgeTriggered|poller.OneShot); aerr != nil {
			d.errs.Add(aerr)
			_ = unix.Close(fd)
			continue
		}
		if terr := d.timers.Append(fd, time.Now().UnixMilli()); terr != nil {
			d.errs.Add(terr)
			_ = d.poll.Remove(fd)
			_ = unix.Close(fd)
			continue
		}

		d.mu.Lock()
		d.conns[fd] = c
		d.mu.Unlock()

		if d.met != nil {
			d.met.IncAccepted()
		}
	}
}

// expireOne is the Timer Registry's onExpire callback: close the
// descriptor, remove it from the monitor and the registry, and drop the
// dispatcher's own lookup entry.
func (d *Dispatcher) expireOne(fd int) {
	_ = d.poll.Remove(fd)
	d.timers.Remove(fd)
	_ = unix.Close(fd)
	d.forget(fd)

	if d.log != nil {
		d.log.Debug("connection expired", logger.Fields{"fd": fd})
	}
}

// forget drops fd from the dispatcher's own fd-to-Connection lookup. It
// is both the Timer Registry's onExpire path and httptask.Task's OnClose
// hook, since either one may be the side that decides a connection is
// done.
func (d *Dispatcher) forget(fd int) {
	d.mu.Lock()
	delete(d.conns, fd)
	d.mu.Unlock()
}

// Stop sets the shutdown flag that the dispatcher loop checks at the top
// of every tick. Run returns once the current wait/expire/dispatch pass
// finishes and the pool drains — Stop does not itself wait for that.
func (d *Dispatcher) Stop() {
	d.shutdown.Store(true)
}

// Errors returns every non-fatal error observed during accept bursts
// since New; the collection is never cleared, for a caller (typically the CLI's top-level error
// log) that wants a post-mortem without halting the dispatcher for each
// one individually.
func (d *Dispatcher) Errors() []error {
	return d.errs.Slice()
}

// bindListener creates a non-blocking TCP listening socket with
// SO_REUSEADDR set, per spec.md §6.
func bindListener(addr string) (int, error) {
	tcpAddr, err := net.ResolveTCPAddr("tcp", addr)
	if err != nil {
		return -1, err
	}

	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_STREAM, 0)
	if err != nil {
		return -1, err
	}

	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		_ = unix.Close(fd)
		return -1, err
	}

	sa := &unix.SockaddrInet4{Port: tcpAddr.Port}
	if ip4 := tcpAddr.IP.To4(); ip4 != nil {
		copy(sa.Addr[:], ip4)
	}

	if err := unix.Bind(fd, sa); err != nil {
		_ = unix.Close(fd)
		return -1, err
	}
	if err := unix.Listen(fd, 1024); err != nil {
		_ = unix.Close(fd)
		return -1, err
	}
	if err := unix.SetNonblock(fd, true); err != nil {
		_ = unix.Close(fd)
		return -1, err
	}

	return fd, nil
}
