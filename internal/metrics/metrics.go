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

// Package metrics registers the four Prometheus collectors the dispatcher
// and HTTP task report through, on a private registry served by its own
// net/http listener — never the core's own epoll-driven socket.
package metrics

import (
	"context"
	"net"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	liberr "github.com/nabbar/edgeserve/errors"
)

// Metrics holds the four collectors named in the testable properties:
// accepted_total, expired_total, workers_busy, bytes_served_total.
type Metrics struct {
	registry *prometheus.Registry

	accepted    prometheus.Counter
	expired     prometheus.Counter
	workersBusy prometheus.Gauge
	bytesServed prometheus.Counter

	srv *http.Server
}

// New builds the collector set and registers it against a private
// registry — never the global prometheus.DefaultRegisterer — so this
// process can run its tests without colliding with any other package's
// collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		accepted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "edgeserve_accepted_total",
			Help: "Total number of accepted client connections.",
		}),
		expired: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "edgeserve_expired_total",
			Help: "Total number of connections closed by the idle timer sweep.",
		}),
		workersBusy: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "edgeserve_workers_busy",
			Help: "Number of worker pool goroutines currently executing a task.",
		}),
		bytesServed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "edgeserve_bytes_served_total",
			Help: "Total number of response bytes written to clients.",
		}),
	}

	m.registry.MustRegister(m.accepted, m.expired, m.workersBusy, m.bytesServed)
	return m
}

// Registry exposes the private registry backing this Metrics instance —
// used by Serve and by tests that gather raw samples without starting an
// HTTP listener.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// IncAccepted increments accepted_total by one.
func (m *Metrics) IncAccepted() {
	m.accepted.Inc()
}

// AddExpired increments expired_total by n.
func (m *Metrics) AddExpired(n int) {
	m.expired.Add(float64(n))
}

// SetWorkersBusy sets workers_busy to n.
func (m *Metrics) SetWorkersBusy(n int) {
	m.workersBusy.Set(float64(n))
}

// AddBytesServed increments bytes_served_total by n.
func (m *Metrics) AddBytesServed(n int) {
	m.bytesServed.Add(float64(n))
}

// Serve starts the metrics HTTP listener on addr, exposing the private
// registry at /metrics in Prometheus text exposition format. It blocks
// until the listener is closed via Shutdown.
func (m *Metrics) Serve(addr string) liberr.Error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return ErrorListenerBind.Error(err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))

	m.srv = &http.Server{Handler: mux}
	if serr := m.srv.Serve(ln); serr != nil && serr != http.ErrServerClosed {
		return ErrorListenerBind.Error(serr)
	}
	return nil
}

// Shutdown stops the metrics listener gracefully.
func (m *Metrics) Shutdown(ctx context.Context) error {
	if m.srv == nil {
		return nil
	}
	return m.srv.Shutdown(ctx)
}
