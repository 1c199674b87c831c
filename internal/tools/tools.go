// Package tools is the callable surface a conversational driver invokes once
// per user-stated intent. Handlers return a structured Result; the driver
// only ever sees the rendered text, because the response generator consumes
// nothing but strings.
package tools

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

var ErrToolExists = errors.New("tool already registered")

// Status classifies an operation outcome. No handler ever panics or
// escalates an error past the registry; the conversation loop stays alive.
type Status int

const (
	StatusOK Status = iota
	StatusNotFound
	StatusIncomplete
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusNotFound:
		return "not_found"
	case StatusIncomplete:
		return "incomplete"
	case StatusFailed:
		return "failed"
	}
	return "unknown"
}

// Result is the structured outcome of one tool invocation. Data is optional
// context for the UI channel and HTTP surface; Message is what the driver
// feeds back into the response generator.
type Result struct {
	Status  Status         `json:"status"`
	Message string         `json:"message"`
	Data    map[string]any `json:"data,omitempty"`
}

// Text renders the result at the driver boundary.
func (r Result) Text() string { return r.Message }

func OK(format string, args ...any) Result {
	return Result{Status: StatusOK, Message: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...any) Result {
	return Result{Status: StatusNotFound, Message: fmt.Sprintf(format, args...)}
}

func Incomplete(format string, args ...any) Result {
	return Result{Status: StatusIncomplete, Message: fmt.Sprintf(format, args...)}
}

func Failed(format string, args ...any) Result {
	return Result{Status: StatusFailed, Message: fmt.Sprintf(format, args...)}
}

// WithData attaches payload context to a result.
func (r Result) WithData(data map[string]any) Result {
	r.Data = data
	return r
}

// Handler executes one tool call. Args carry the driver-supplied named
// arguments; absent keys mean the caller did not state that field.
type Handler func(ctx context.Context, args map[string]any) Result

// Tool is one named operation exposed to the driver.
type Tool struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Handler     Handler `json:"-"`
}

// Notifier is the outbound UI channel a facade broadcasts state changes on.
// Sends are best-effort; implementations must not block tool calls on slow
// subscribers.
type Notifier interface {
	Broadcast(ctx context.Context, typ string, data any)
}

// NopNotifier discards all broadcasts.
type NopNotifier struct{}

func (NopNotifier) Broadcast(context.Context, string, any) {}

// Registry holds a scenario's tool set. Registration happens once at
// startup; Invoke is called concurrently by the HTTP surface.
type Registry struct {
	mu     sync.RWMutex
	byName map[string]Tool
	order  []string
}

func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]Tool)}
}

func (r *Registry) Register(t Tool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byName[t.Name]; ok {
		return fmt.Errorf("%w: %q", ErrToolExists, t.Name)
	}
	r.byName[t.Name] = t
	r.order = append(r.order, t.Name)
	return nil
}

// RegisterAll registers a whole tool set, stopping at the first conflict.
func (r *Registry) RegisterAll(ts []Tool) error {
	for _, t := range ts {
		if err := r.Register(t); err != nil {
			return err
		}
	}
	return nil
}

// Invoke runs the named tool. Unknown names yield a NotFound result rather
// than an error, same as any other soft failure.
func (r *Registry) Invoke(ctx context.Context, name string, args map[string]any) Result {
	r.mu.RLock()
	t, ok := r.byName[name]
	r.mu.RUnlock()
	if !ok {
		metricInvocations.WithLabelValues(name, StatusNotFound.String()).Inc()
		return NotFound("No tool named %q.", name)
	}
	if args == nil {
		args = map[string]any{}
	}
	res := t.Handler(ctx, args)
	metricInvocations.WithLabelValues(name, res.Status.String()).Inc()
	return res
}

// Has reports whether a tool with the given name is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.byName[name]
	return ok
}

// List returns the registered tools in registration order.
func (r *Registry) List() []Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Tool, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.byName[name])
	}
	return out
}

// String extracts a string argument; ok is false when absent or not a string.
func String(args map[string]any, key string) (string, bool) {
	v, ok := args[key].(string)
	return v, ok && v != ""
}

// Int extracts an integer argument, tolerating the float64 that JSON
// decoding produces.
func Int(args map[string]any, key string) (int, bool) {
	switch v := args[key].(type) {
	case int:
		return v, true
	case float64:
		return int(v), true
	}
	return 0, false
}

// Float extracts a numeric argument.
func Float(args map[string]any, key string) (float64, bool) {
	switch v := args[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	}
	return 0, false
}

// Bool extracts a boolean argument.
func Bool(args map[string]any, key string) (bool, bool) {
	v, ok := args[key].(bool)
	return v, ok
}

// Strings extracts a list-of-strings argument, tolerating []any from JSON.
func Strings(args map[string]any, key string) ([]string, bool) {
	switch v := args[key].(type) {
	case []string:
		return v, true
	case []any:
		out := make([]string, 0, len(v))
		for _, e := range v {
			s, ok := e.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	}
	return nil, false
}
