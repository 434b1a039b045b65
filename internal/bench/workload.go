package bench

import (
	"sync"

	"github.com/pkg/errors"
)

// Result is the optional number a workload echoes back after a repeat, e.g.
// the Mandelbrot level sum. The zero value means "nothing to report".
type Result struct {
	Value float64
	Valid bool
}

// NoResult is returned by workloads that only burn time.
var NoResult = Result{}

// Value wraps v as a reportable result.
func Value(v float64) Result {
	return Result{Value: v, Valid: true}
}

// Func is one unit of benchmarked work. It takes no arguments; anything it
// needs must be captured when the workload is built.
type Func func() (Result, error)

// Workload is a named unit of benchmarked work.
type Workload struct {
	Name        string
	Description string
	Fn          Func
}

// Label is the text printed in front of "took" on every sample line.
func (w Workload) Label() string {
	if w.Description != "" {
		return w.Description
	}
	return w.Name
}

// Registry holds workloads in registration order. Registered workloads are
// never replaced or removed.
type Registry struct {
	mu     sync.RWMutex
	byName map[string]Workload
	order  []string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]Workload)}
}

// Register adds w to the registry.
func (r *Registry) Register(w Workload) error {
	if w.Name == "" {
		return errors.New("workload name must not be empty")
	}
	if w.Fn == nil {
		return errors.Errorf("workload %q has no function", w.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byName[w.Name]; ok {
		return errors.Wrap(ErrDuplicateWorkload, w.Name)
	}
	r.byName[w.Name] = w
	r.order = append(r.order, w.Name)
	return nil
}

// MustRegister is Register for package initialisation, panicking on error.
func (r *Registry) MustRegister(w Workload) {
	if err := r.Register(w); err != nil {
		panic(err)
	}
}

// Lookup returns the workload registered under name.
func (r *Registry) Lookup(name string) (Workload, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	w, ok := r.byName[name]
	if !ok {
		return Workload{}, errors.Wrap(ErrUnknownWorkload, name)
	}
	return w, nil
}

// Workloads returns every workload in registration order.
func (r *Registry) Workloads() []Workload {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Workload, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.byName[name])
	}
	return out
}

// Select resolves names in the given order. An empty selection yields every
// registered workload.
func (r *Registry) Select(names []string) ([]Workload, error) {
	if len(names) == 0 {
		return r.Workloads(), nil
	}

	out := make([]Workload, 0, len(names))
	for _, name := range names {
		w, err := r.Lookup(name)
		if err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, nil
}
