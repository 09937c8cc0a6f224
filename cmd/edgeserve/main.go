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

// Command edgeserve runs the static file server: bind a listen address,
// build the compression-aware asset index, and hand connections to the
// acceptor/dispatcher loop until interrupted.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	liberr "github.com/nabbar/edgeserve/errors"
	"github.com/nabbar/edgeserve/internal/assets"
	"github.com/nabbar/edgeserve/internal/dispatcher"
	"github.com/nabbar/edgeserve/internal/metrics"
	"github.com/nabbar/edgeserve/logger"
	loglvl "github.com/nabbar/edgeserve/logger/level"

	"github.com/nabbar/edgeserve/config"
)

var (
	flagConfig string
	flagListen string
	flagRoot   string
	flagKeep   int64
	flagLevel  string
	flagMetric string
)

func main() {
	root := newRootCommand()
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// newRootCommand builds the single command this binary exposes.
// There is no subcommand tree: unlike a general-purpose CLI, edgeserve has
// exactly one job, so the root command itself runs the server.
func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edgeserve",
		Short: "Serve a directory over HTTP/1.1 with an epoll-driven acceptor",
		Long: "edgeserve binds a non-blocking TCP listener, drives it with an " +
			"edge-triggered readiness monitor and a fixed worker pool, and " +
			"serves static files from a document root, preferring precompressed " +
			"siblings when the client's Accept-Encoding allows it.",
		RunE: runServe,
	}

	flags := cmd.Flags()
	flags.StringVar(&flagConfig, "config", "", "path to a config file (env EDGESERVE_CONFIG)")
	flags.StringVar(&flagListen, "listen", "", "TCP listen address (default "+config.DefaultAddr+")")
	flags.StringVar(&flagRoot, "document-root", "", "directory to serve (default "+config.DefaultDocRoot+")")
	flags.Int64Var(&flagKeep, "keepalive-ms", 0, "idle connection timeout in milliseconds")
	flags.StringVar(&flagLevel, "log-level", "", "log level: panic|fatal|error|warn|info|debug")
	flags.StringVar(&flagMetric, "metrics-listen", "", "bind address for the Prometheus /metrics endpoint")

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(flagConfig, cmd.Flags())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return err
	}

	log := logger.New(loglvl.Parse(cfg.LogLevel), os.Stderr)
	met := metrics.New()

	reg, rerr := assets.NewRegistry(cfg.DocumentRoot)
	if rerr != nil {
		log.Fatal("cannot build asset index", rerr, nil)
		return rerr
	}

	watcher, werr := assets.NewWatcher(reg)
	if werr != nil {
		log.Fatal("cannot start document root watcher", werr, nil)
		return werr
	}
	go watcher.Run(func(e liberr.Error) {
		log.Warn("asset index rebuild failed", logger.Fields{"error": e.Error()})
	})
	defer watcher.Close()

	go func() {
		if serr := met.Serve(cfg.MetricsListen); serr != nil {
			log.Error("metrics listener stopped", serr, nil)
		}
	}()
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = met.Shutdown(ctx)
	}()

	d := dispatcher.New(dispatcher.Config{
		Listen:      cfg.Listen,
		KeepAliveMs: cfg.KeepAliveMs,
		Workers:     cfg.WorkerPoolSize(),
		DocRoot:     cfg.DocumentRoot,
	}, log, met, reg)

	log.Info("edgeserve starting", logger.Fields{
		"listen":         cfg.Listen,
		"document_root":  cfg.DocumentRoot,
		"workers":        cfg.WorkerPoolSize(),
		"metrics_listen": cfg.MetricsListen,
	})

	if rerr := d.Run(); rerr != nil {
		log.Fatal("dispatcher exited with an error", rerr, nil)
		return rerr
	}

	for _, e := range d.Errors() {
		log.Warn("non-fatal accept error observed during the run", logger.Fields{"error": e.Error()})
	}

	log.Info("edgeserve stopped", nil)
	return nil
}
