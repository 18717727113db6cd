package mcp

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/server"

	"tableflip.dev/deadlines/pkg/store"
)

// Transport selects how the MCP server is exposed.
type Transport string

const (
	TransportStdio Transport = "stdio"
	TransportHTTP  Transport = "http"
)

const instructions = "Track project deadlines: list projects and templates, create projects from templates, " +
	"move final deadlines, activate triggers and review upcoming sub-deadlines."

// Runner serves the deadlines MCP server until ctx is done.
type Runner struct {
	Persistence store.Persistence
	// Log receives service warnings. Stdout carries the stdio transport, so
	// nil means stderr.
	Log     *log.Logger
	Version string

	Transport Transport
	// Addr and Path locate the streamable HTTP endpoint.
	Addr string
	Path string
	// Listening is called with the endpoint URL once the HTTP listener is bound.
	Listening func(url string)
}

// NewServer registers the deadlines resources and tools on a fresh MCP server.
func NewServer(svc *Service, version string) *server.MCPServer {
	if version == "" {
		version = "dev"
	}
	srv := server.NewMCPServer(
		"deadlines MCP",
		version,
		server.WithResourceCapabilities(false, false),
		server.WithToolCapabilities(false),
		server.WithInstructions(instructions),
		server.WithResourceRecovery(),
		server.WithRecovery(),
	)
	registerResources(srv, svc)
	registerTools(srv, svc)
	return srv
}

func (r Runner) Do(ctx context.Context) error {
	if r.Persistence == nil {
		return errors.New("mcp runner requires persistence")
	}
	srv := NewServer(NewService(r.Persistence, r.Log), r.Version)

	switch r.Transport {
	case "", TransportStdio:
		return server.ServeStdio(srv)
	case TransportHTTP:
		return r.serveHTTP(ctx, srv)
	default:
		return fmt.Errorf("unsupported transport %q (expected stdio or http)", r.Transport)
	}
}

func (r Runner) serveHTTP(ctx context.Context, srv *server.MCPServer) error {
	addr := r.Addr
	if addr == "" {
		addr = "127.0.0.1:8080"
	}
	path := "/" + strings.TrimPrefix(strings.TrimSpace(r.Path), "/")
	if path == "/" {
		path = "/mcp"
	}

	mux := http.NewServeMux()
	mux.Handle(path, server.NewStreamableHTTPServer(srv))
	httpSrv := &http.Server{Handler: mux}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	if r.Listening != nil {
		r.Listening("http://" + ln.Addr().String() + path)
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpSrv.Shutdown(shutdownCtx)
	}()

	if err := httpSrv.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
