// Package responders defines the contract between the orchestrator's
// dispatch step and the specialized answer producers.
package responders

import (
	"context"
	"sync"
)

// Request is the execution context for exactly one dispatch call. The
// dispatcher constructs a fresh Request per call; nothing in it is shared or
// reused across calls, so a responder can never observe another call's state.
type Request struct {
	// ID uniquely identifies this dispatch call.
	ID string
	// Intent is the label the classifier settled on.
	Intent string
	// Question is the user's original text, untouched by classification.
	Question string
	// Parameters are best-effort extractions; any key may be absent.
	Parameters map[string]string
	// CurrentDate is the dispatch-time date in MM/DD/YYYY form.
	CurrentDate string
}

// Parameter returns the named parameter or fallback when it was not
// extracted.
func (r Request) Parameter(key, fallback string) string {
	if value, ok := r.Parameters[key]; ok && value != "" {
		return value
	}
	return fallback
}

// Responder produces an answer for one intent category. Implementations must
// be stateless across calls; all per-call inputs arrive in the Request.
type Responder interface {
	Respond(ctx context.Context, req Request) (string, error)
}

// ResponderFunc adapts a function to the Responder interface.
type ResponderFunc func(ctx context.Context, req Request) (string, error)

func (f ResponderFunc) Respond(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}

// Registry maps intent labels to responders. Labels without a registration
// route to the fallback responder.
type Registry struct {
	mu         sync.RWMutex
	responders map[string]Responder
	fallback   Responder
}

func NewRegistry() *Registry {
	return &Registry{responders: map[string]Responder{}}
}

func (r *Registry) Register(label string, responder Responder) {
	if r == nil || responder == nil {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.responders[label] = responder
}

func (r *Registry) SetFallback(responder Responder) {
	if r == nil || responder == nil {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.fallback = responder
}

// Lookup resolves a label to its responder. The second return reports whether
// a specialized responder was found; otherwise the fallback (which may be
// nil when never set) is returned.
func (r *Registry) Lookup(label string) (Responder, bool) {
	if r == nil {
		return nil, false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	if responder, ok := r.responders[label]; ok {
		return responder, true
	}
	return r.fallback, false
}

// Labels returns the registered intent labels.
func (r *Registry) Labels() []string {
	if r == nil {
		return nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	labels := make([]string, 0, len(r.responders))
	for label := range r.responders {
		labels = append(labels, label)
	}
	return labels
}
