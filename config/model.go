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

// Package config loads the server's single configuration struct through
// Viper, overlaying file, environment and flag sources in Viper's own
// precedence order, the same way the teacher's config package delegates
// all source-merging to a registered Viper instance instead of hand-rolling
// precedence logic.
package config

import (
	"os"
	"runtime"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	liberr "github.com/nabbar/edgeserve/errors"
	loglvl "github.com/nabbar/edgeserve/logger/level"
)

const (
	EnvPrefix = "EDGESERVE"
	EnvConfig = EnvPrefix + "_CONFIG"

	DefaultAddr        = ":9000"
	DefaultMetricsAddr = ":9090"
	DefaultKeepAliveMs = 10000
	DefaultWorkerMul   = 64
	DefaultDocRoot     = "."
	DefaultLogLevel    = "info"
)

// Config is the single, immutable configuration struct for the running
// process. It is decoded once at startup by Load and never mutated
// afterward; there is no hot-reload path.
type Config struct {
	// Listen is the TCP address the edge-triggered acceptor binds to.
	Listen string `mapstructure:"listen"`

	// KeepAliveMs is the idle timeout, in milliseconds, enforced by the
	// Timer Registry against every open Connection.
	KeepAliveMs int64 `mapstructure:"keepalive_ms"`

	// WorkerMultiplier sizes the fixed worker pool as runtime.NumCPU() *
	// WorkerMultiplier.
	WorkerMultiplier int `mapstructure:"worker_multiplier"`

	// DocumentRoot is the directory the static file responder serves from.
	DocumentRoot string `mapstructure:"document_root"`

	// PrecompressAlgorithms lists, in preference order, the sibling
	// compression extensions the static responder is allowed to serve
	// without re-encoding (e.g. "gzip", "bzip2", "lz4", "xz").
	PrecompressAlgorithms []string `mapstructure:"precompress_algorithms"`

	// LogLevel is parsed with logger/level.Parse.
	LogLevel string `mapstructure:"log_level"`

	// MetricsListen is the bind address for the Prometheus metrics
	// listener, kept off the core's own listening socket.
	MetricsListen string `mapstructure:"metrics_listen"`
}

// WorkerPoolSize returns the configured worker count, floored at 1 so a
// single-core host or a zero-valued multiplier never yields an unusable
// empty pool.
func (c *Config) WorkerPoolSize() int {
	n := runtime.NumCPU() * c.WorkerMultiplier
	if n < 1 {
		return 1
	}
	return n
}

func defaults() *Config {
	return &Config{
		Listen:                DefaultAddr,
		KeepAliveMs:           DefaultKeepAliveMs,
		WorkerMultiplier:      DefaultWorkerMul,
		DocumentRoot:          DefaultDocRoot,
		PrecompressAlgorithms: []string{"gzip", "bzip2", "lz4", "xz"},
		LogLevel:              DefaultLogLevel,
		MetricsListen:         DefaultMetricsAddr,
	}
}

// Load resolves a Config from, in increasing order of precedence: built-in
// defaults, a config file (path, EDGESERVE_CONFIG, or none), EDGESERVE_*
// environment variables, then CLI flags bound via flags. An empty path with
// no EDGESERVE_CONFIG set and no flags is not itself an error: the process
// can run entirely off defaults and environment variables.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	d := defaults()
	v.SetDefault("listen", d.Listen)
	v.SetDefault("keepalive_ms", d.KeepAliveMs)
	v.SetDefault("worker_multiplier", d.WorkerMultiplier)
	v.SetDefault("document_root", d.DocumentRoot)
	v.SetDefault("precompress_algorithms", d.PrecompressAlgorithms)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("metrics_listen", d.MetricsListen)

	if path == "" {
		path = os.Getenv(EnvConfig)
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, ErrorConfigRead.Error(err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if flags != nil {
		// Flag names are dashed ("document-root") while config keys use
		// underscores ("document_root"), so each flag is bound under its
		// underscored key.
		var berr error
		flags.VisitAll(func(f *pflag.Flag) {
			if berr == nil {
				berr = v.BindPFlag(strings.ReplaceAll(f.Name, "-", "_"), f)
			}
		})
		if berr != nil {
			return nil, ErrorConfigRead.Error(berr)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, ErrorConfigUnmarshal.Error(err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate enforces the invariants a running server needs before it is
// allowed to start: a non-empty listen address, a strictly positive
// keepalive, a worker multiplier that yields a non-empty pool, and a
// document root that actually exists and is a directory.
func (c *Config) Validate() liberr.Error {
	if c.Listen == "" {
		return liberr.Newf(ErrorConfigValidate.Uint16(), "listen address is empty")
	}

	if c.KeepAliveMs <= 0 {
		return liberr.Newf(ErrorConfigValidate.Uint16(), "keepalive_ms must be > 0, got %d", c.KeepAliveMs)
	}

	if c.WorkerMultiplier <= 0 {
		return liberr.Newf(ErrorConfigValidate.Uint16(), "worker_multiplier must be > 0, got %d", c.WorkerMultiplier)
	}

	if st, err := os.Stat(c.DocumentRoot); err != nil {
		return ErrorConfigValidate.Error(err)
	} else if !st.IsDir() {
		return liberr.Newf(ErrorConfigValidate.Uint16(), "document_root %q is not a directory", c.DocumentRoot)
	}

	// Parse never errors (it falls back to InfoLevel for anything
	// unrecognized), but an unrecognized value is still worth rejecting
	// explicitly rather than silently downgrading to info.
	if lvl := loglvl.Parse(c.LogLevel); lvl == loglvl.InfoLevel && !strings.EqualFold(c.LogLevel, "info") {
		return liberr.Newf(ErrorConfigValidate.Uint16(), "log_level %q is not recognized", c.LogLevel)
	}

	return nil
}
