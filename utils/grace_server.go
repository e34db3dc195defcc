package utils

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
)

const (
	// inheritedEnv marks a child started by a SIGUSR2 restart; its listener
	// arrives as inheritedListenerFD.
	inheritedEnv        = "ARTCOPY_INHERITED_LISTENER"
	inheritedEnvValue   = inheritedEnv + "=1"
	inheritedListenerFD = 3
)

// ServerOptions tunes the HTTP server. Zero values fall back to defaults.
type ServerOptions struct {
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	// CertFile and KeyFile enable TLS when both are set.
	CertFile string
	KeyFile  string
}

func (o ServerOptions) withDefaults() ServerOptions {
	if o.ReadTimeout <= 0 {
		o.ReadTimeout = 60 * time.Second
	}
	if o.WriteTimeout <= 0 {
		o.WriteTimeout = o.ReadTimeout
	}
	if o.ShutdownTimeout <= 0 {
		o.ShutdownTimeout = 30 * time.Second
	}
	return o
}

// Server is an http.Server that drains on SIGTERM/SIGINT and hands its
// listening socket to a fresh copy of the binary on SIGUSR2.
type Server struct {
	*http.Server

	opts     ServerOptions
	listener net.Listener // raw TCP socket, before any TLS wrapping
	log      *zap.Logger
	signals  chan os.Signal
	drained  chan struct{}
}

// NewServer prepares a Server for addr.
func NewServer(addr string, handler http.Handler, opts ServerOptions, log *zap.Logger) *Server {
	opts = opts.withDefaults()
	return &Server{
		Server: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadTimeout:       opts.ReadTimeout,
			ReadHeaderTimeout: opts.ReadTimeout,
			WriteTimeout:      opts.WriteTimeout,
		},
		opts:    opts,
		log:     log.Named("server"),
		signals: make(chan os.Signal, 1),
		drained: make(chan struct{}),
	}
}

// Run listens (or adopts an inherited socket), serves until a shutdown
// signal has been fully handled, and returns any listen or serve error.
func (srv *Server) Run() error {
	ln, err := srv.listen()
	if err != nil {
		return err
	}
	srv.listener = ln
	if srv.opts.CertFile != "" && srv.opts.KeyFile != "" {
		cert, err := tls.LoadX509KeyPair(srv.opts.CertFile, srv.opts.KeyFile)
		if err != nil {
			_ = ln.Close()
			return fmt.Errorf("load tls key pair: %w", err)
		}
		ln = tls.NewListener(ln, &tls.Config{
			Certificates: []tls.Certificate{cert},
			NextProtos:   []string{"h2", "http/1.1"},
			MinVersion:   tls.VersionTLS12,
		})
	}

	go srv.watchSignals()
	srv.log.Info("listening", zap.String("addr", ln.Addr().String()), zap.Bool("tls", srv.opts.CertFile != ""))
	if err := srv.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	<-srv.drained
	return nil
}

func (srv *Server) listen() (net.Listener, error) {
	if os.Getenv(inheritedEnv) != "" {
		ln, err := net.FileListener(os.NewFile(inheritedListenerFD, "inherited"))
		if err != nil {
			return nil, fmt.Errorf("adopt inherited listener: %w", err)
		}
		return ln, nil
	}
	addr := srv.Addr
	if addr == "" {
		addr = ":http"
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", addr, err)
	}
	return ln, nil
}

func (srv *Server) watchSignals() {
	signal.Notify(srv.signals, syscall.SIGTERM, syscall.SIGINT, syscall.SIGUSR2)
	defer signal.Stop(srv.signals)

	for sig := range srv.signals {
		if sig != syscall.SIGUSR2 {
			srv.log.Info("shutting down", zap.String("signal", sig.String()))
			srv.drain()
			return
		}
		pid, err := srv.spawnSuccessor()
		if err != nil {
			srv.log.Error("restart failed, still serving", zap.Error(err))
			continue
		}
		srv.log.Info("successor started, draining", zap.Int("pid", pid))
		srv.drain()
		return
	}
}

func (srv *Server) drain() {
	defer close(srv.drained)
	ctx, cancel := context.WithTimeout(context.Background(), srv.opts.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		srv.log.Error("shutdown incomplete", zap.Error(err))
		return
	}
	srv.log.Info("shutdown complete")
}

// spawnSuccessor re-executes the binary with the listening socket as fd 3.
func (srv *Server) spawnSuccessor() (int, error) {
	tcpLn, ok := srv.listener.(*net.TCPListener)
	if !ok {
		return 0, fmt.Errorf("listener %T cannot be inherited", srv.listener)
	}
	file, err := tcpLn.File()
	if err != nil {
		return 0, fmt.Errorf("dup listener: %w", err)
	}
	defer file.Close()

	env := make([]string, 0, len(os.Environ())+1)
	for _, e := range os.Environ() {
		if e != inheritedEnvValue {
			env = append(env, e)
		}
	}
	env = append(env, inheritedEnvValue)

	pid, err := syscall.ForkExec(os.Args[0], os.Args, &syscall.ProcAttr{
		Env:   env,
		Files: []uintptr{os.Stdin.Fd(), os.Stdout.Fd(), os.Stderr.Fd(), file.Fd()},
	})
	if err != nil {
		return 0, fmt.Errorf("fork exec: %w", err)
	}
	return pid, nil
}

// GraceServer runs handler on addr until a shutdown signal has been handled.
func GraceServer(addr string, handler http.Handler, opts ServerOptions, log *zap.Logger) error {
	return NewServer(addr, handler, opts, log).Run()
}
