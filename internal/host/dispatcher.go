// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package host

import (
	"context"
	"encoding/json"
	"log/slog"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/holomush/deskauth/pkg/errutil"
)

var tracer = otel.Tracer("deskauth/host")

// Request is a single command invocation.
type Request struct {
	// ID correlates the response; generated when empty.
	ID      string          `json:"id,omitempty"`
	Command string          `json:"command"`
	Args    json.RawMessage `json:"args,omitempty"`
}

// ErrorBody describes a hard failure.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Response is the outcome of one Request.
type Response struct {
	ID      string     `json:"id"`
	Command string     `json:"command"`
	OK      bool       `json:"ok"`
	Result  any        `json:"result,omitempty"`
	Error   *ErrorBody `json:"error,omitempty"`
}

// HandlerFunc runs a command. args is the raw JSON argument object and may be empty.
type HandlerFunc func(ctx context.Context, args json.RawMessage) (any, error)

// Dispatcher routes requests to registered handlers.
// It is safe for concurrent use.
type Dispatcher struct {
	mu       sync.RWMutex
	handlers map[string]HandlerFunc
	logger   *slog.Logger
	newID    func() string
}

// Option configures a Dispatcher during construction.
type Option func(*Dispatcher)

// WithLogger sets the dispatcher's logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(d *Dispatcher) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithIDGenerator replaces ULID generation for requests without an ID.
func WithIDGenerator(fn func() string) Option {
	return func(d *Dispatcher) {
		if fn != nil {
			d.newID = fn
		}
	}
}

// NewDispatcher creates an empty dispatcher.
func NewDispatcher(opts ...Option) *Dispatcher {
	d := &Dispatcher{
		handlers: make(map[string]HandlerFunc),
		logger:   slog.Default(),
		newID:    func() string { return ulid.Make().String() },
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Register adds a handler. An existing handler with the same name is
// replaced and a warning is logged.
func (d *Dispatcher) Register(name string, h HandlerFunc) error {
	if name == "" {
		return oops.Code(CodeInvalidArgs).Errorf("command name is required")
	}
	if h == nil {
		return oops.Code(CodeInvalidArgs).With("command", name).Errorf("handler is required")
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.handlers[name]; ok {
		d.logger.Warn("command conflict: overwriting existing handler", "command", name)
	}
	d.handlers[name] = h
	return nil
}

// Commands returns the registered command names in sorted order.
func (d *Dispatcher) Commands() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return slices.Sorted(maps.Keys(d.handlers))
}

func (d *Dispatcher) lookup(name string) (HandlerFunc, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	h, ok := d.handlers[name]
	return h, ok
}

// Dispatch runs req on the caller's goroutine and always returns a Response.
func (d *Dispatcher) Dispatch(ctx context.Context, req Request) Response {
	if req.ID == "" {
		req.ID = d.newID()
	}
	resp := Response{ID: req.ID, Command: req.Command}

	ctx, span := tracer.Start(ctx, "host.dispatch",
		trace.WithAttributes(
			attribute.String("command.name", req.Command),
			attribute.String("command.id", req.ID),
		),
	)
	defer span.End()

	start := time.Now()
	h, ok := d.lookup(req.Command)
	if !ok {
		recordDispatch(unknownCommandLabel, StatusNotFound)
		return d.failed(ctx, span, resp, ErrUnknownCommand(req.Command))
	}

	result, err := h(ctx, req.Args)
	if err != nil {
		recordDispatch(req.Command, StatusError)
		return d.failed(ctx, span, resp, err)
	}

	recordDispatch(req.Command, StatusSuccess)
	d.logger.DebugContext(ctx, "command dispatched",
		"command", req.Command,
		"command_id", req.ID,
		"duration", time.Since(start),
	)
	resp.OK = true
	resp.Result = result
	return resp
}

// DispatchJSON decodes one JSON request and dispatches it. A request that
// cannot be decoded yields a HOST_INVALID_ARGS response.
func (d *Dispatcher) DispatchJSON(ctx context.Context, data []byte) Response {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		recordDispatch(unknownCommandLabel, StatusError)
		resp := Response{ID: d.newID()}
		resp.Error = &ErrorBody{Code: CodeInvalidArgs, Message: "malformed request: " + err.Error()}
		return resp
	}
	return d.Dispatch(ctx, req)
}

func (d *Dispatcher) failed(ctx context.Context, span trace.Span, resp Response, err error) Response {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())

	code, ok := errutil.Code(err)
	if !ok || code == "" {
		code = CodeInternal
	}
	errutil.LogErrorContext(ctx, d.logger.With("command", resp.Command, "command_id", resp.ID),
		"command failed", err)

	resp.Error = &ErrorBody{Code: code, Message: err.Error()}
	return resp
}
