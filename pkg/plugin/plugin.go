// Package plugin is the composition root of a TestMesh plugin process:
// it owns the manifest, the action registry and the protocol server the
// host drives over loopback HTTP.
package plugin

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/georgi-georgiev/testmesh-plugin-sdk/pkg/log"
	"github.com/georgi-georgiev/testmesh-plugin-sdk/pkg/models"
	"github.com/georgi-georgiev/testmesh-plugin-sdk/pkg/protocol"
	"github.com/georgi-georgiev/testmesh-plugin-sdk/pkg/registry"
)

const (
	// PortEnvVar is how the host hands a plugin its port. 0 (the
	// default) binds an ephemeral port, announced on stdout.
	PortEnvVar = "PLUGIN_PORT"

	defaultVersion = "1.0.0"

	// defaultGracePeriod is the delay between acknowledging /shutdown
	// and terminating the process, so the response can flush.
	defaultGracePeriod = 100 * time.Millisecond
)

var ErrAlreadyStarted = errors.New("plugin already started")

type Plugin struct {
	manifest    models.Manifest
	registry    *registry.Registry
	logger      *slog.Logger
	validate    *validator.Validate
	tracer      trace.Tracer
	instanceID  string
	port        int
	gracePeriod time.Duration
	startTime   time.Time
	stdout      io.Writer
	exit        func(code int)
	app         *fiber.App
	started     atomic.Bool
}

type Option func(*Plugin)

// WithPort overrides the PLUGIN_PORT environment value. 0 picks a free
// port.
func WithPort(port int) Option {
	return func(p *Plugin) { p.port = port }
}

func WithGracePeriod(grace time.Duration) Option {
	return func(p *Plugin) { p.gracePeriod = grace }
}

func WithLogger(logger *slog.Logger) Option {
	return func(p *Plugin) { p.logger = logger }
}

// WithTracer enables a span per execute request, exported via OTLP.
func WithTracer(tracer trace.Tracer) Option {
	return func(p *Plugin) { p.tracer = tracer }
}

// WithExitFunc replaces os.Exit for the shutdown path. Test seam.
func WithExitFunc(exit func(code int)) Option {
	return func(p *Plugin) { p.exit = exit }
}

// WithStdout replaces the writer the port announcement goes to. Test seam.
func WithStdout(w io.Writer) Option {
	return func(p *Plugin) { p.stdout = w }
}

// New builds a plugin from its manifest. The manifest id and name are
// required; version defaults to "1.0.0". Register actions before Start.
func New(manifest models.Manifest, opts ...Option) (*Plugin, error) {
	if manifest.Version == "" {
		manifest.Version = defaultVersion
	}

	p := &Plugin{
		manifest:    manifest,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
		instanceID:  uuid.NewString(),
		port:        portFromEnv(),
		gracePeriod: defaultGracePeriod,
		startTime:   time.Now(),
		stdout:      os.Stdout,
		exit:        os.Exit,
	}

	for _, opt := range opts {
		opt(p)
	}

	if err := p.validate.Struct(manifest); err != nil {
		return nil, fmt.Errorf("invalid manifest: %w", err)
	}

	if p.logger == nil {
		p.logger = log.WithModule("plugin")
	}

	p.logger = p.logger.With("plugin_id", manifest.ID, "instance_id", p.instanceID)
	p.registry = registry.New(p.logger)

	return p, nil
}

func (p *Plugin) Manifest() models.Manifest {
	return p.manifest
}

func (p *Plugin) Registry() *registry.Registry {
	return p.registry
}

// RegisterAction adds a named action to the plugin. All registrations
// must happen before Start.
func (p *Plugin) RegisterAction(def models.ActionDefinition, handler protocol.ActionHandler) error {
	return p.registry.Register(def, handler)
}

// RegisterActionFunc registers a handler under id with a defaulted
// definition.
func (p *Plugin) RegisterActionFunc(id string, handler protocol.ActionHandler) error {
	return p.registry.RegisterFunc(id, handler)
}

// App returns the wired protocol router. Exposed so tests can drive the
// routes via app.Test without binding a socket.
func (p *Plugin) App() *fiber.App {
	if p.app != nil {
		return p.app
	}

	app := fiber.New()

	app.Get("/health", p.handleHealth)
	app.Get("/info", p.handleInfo)
	app.Post("/execute", p.handleExecute)
	app.Post("/shutdown", p.handleShutdown)

	// Anything outside the four protocol routes degrades to a
	// structured not-found error.
	app.Use(p.handleNotFound)

	p.app = app

	return app
}

// Start binds the protocol server to loopback, announces the bound port
// on stdout and serves until the process exits or Stop is called. It is
// callable once per process; further calls return ErrAlreadyStarted.
func (p *Plugin) Start(ctx context.Context) error {
	if !p.started.CompareAndSwap(false, true) {
		return ErrAlreadyStarted
	}

	p.startTime = time.Now()

	listener, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", p.port))
	if err != nil {
		return fmt.Errorf("failed to bind plugin port %d: %w", p.port, err)
	}

	port := listener.Addr().(*net.TCPAddr).Port

	// The host discovers an ephemeral port by parsing this line.
	fmt.Fprintf(p.stdout, "Plugin %s listening on port %d\n", p.manifest.ID, port)

	p.logger.InfoContext(ctx, "Plugin serving",
		"addr", listener.Addr().String(),
		"version", p.manifest.Version,
		"actions", len(p.registry.Actions()))

	return p.App().Listener(listener, fiber.ListenConfig{DisableStartupMessage: true})
}

// Stop shuts the listener down gracefully. The protocol path to
// terminate a plugin is POST /shutdown; Stop exists for embedding and
// tests.
func (p *Plugin) Stop() error {
	if p.app == nil {
		return nil
	}

	return p.app.Shutdown()
}

func portFromEnv() int {
	raw := os.Getenv(PortEnvVar)
	if raw == "" {
		return 0
	}

	port, err := strconv.Atoi(raw)
	if err != nil || port < 0 {
		return 0
	}

	return port
}
