package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/spf13/pflag"

	"github.com/dd0wney/cluso-bat/pkg/config"
	"github.com/dd0wney/cluso-bat/pkg/logging"
	"github.com/dd0wney/cluso-bat/pkg/metrics"
)

// globalFlags are accepted by every subcommand.
type globalFlags struct {
	configPath  string
	logLevel    string
	metricsAddr string
}

func (g *globalFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&g.configPath, "config", "", "YAML settings file")
	fs.StringVar(&g.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	fs.StringVar(&g.metricsAddr, "metrics-addr", "", "address to serve Prometheus metrics on")
}

func newFlagSet(name string, stderr io.Writer) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(stderr)
	return fs
}

func parseFlags(fs *pflag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return errUsage
		}
		return err
	}
	return nil
}

// session carries the resolved settings of one command run.
type session struct {
	cfg     config.Config
	log     logging.Logger
	metrics *metrics.Registry
	server  *http.Server
}

// open loads the config file, applies flag overrides and starts the metrics
// endpoint when one is configured.
func (g *globalFlags) open(fs *pflag.FlagSet, stderr io.Writer) (*session, error) {
	cfg, err := config.Load(g.configPath)
	if err != nil {
		return nil, err
	}
	if fs.Changed("log-level") {
		cfg.LogLevel = g.logLevel
	}
	if fs.Changed("metrics-addr") {
		cfg.MetricsAddr = g.metricsAddr
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := &session{
		cfg:     cfg,
		log:     logging.NewJSONLogger(stderr, cfg.Level()).With(logging.Component("batdump")),
		metrics: metrics.NewRegistry(),
	}
	if cfg.MetricsAddr != "" {
		s.server = &http.Server{
			Addr:              cfg.MetricsAddr,
			Handler:           s.metrics.Handler(),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				s.log.Error("metrics server failed", logging.Error(err))
			}
		}()
		s.log.Info("serving metrics", logging.String("addr", cfg.MetricsAddr))
	}
	return s, nil
}

func (s *session) close() {
	if s.server == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.server.Shutdown(ctx); err != nil {
		s.log.Warn("metrics server shutdown", logging.Error(err))
	}
}

func requireArgs(fs *pflag.FlagSet, n int, usage string) ([]string, error) {
	args := fs.Args()
	if len(args) != n {
		return nil, fmt.Errorf("expected %s", usage)
	}
	return args, nil
}
