package lighting

import (
	"errors"
	"fmt"

	"go.uber.org/multierr"

	"github.com/Faultbox/rtshader/internal/program"
)

var (
	// ErrParametersNotConstructed is reported when a resolution phase could
	// not obtain every parameter it needs.
	ErrParametersNotConstructed = errors.New("not all parameters could be constructed")

	// ErrUnsupportedConfiguration is reported for per-light iteration without
	// an explicit light type.
	ErrUnsupportedConfiguration = errors.New("unsupported lighting configuration")

	// ErrUnknownModel is reported for an unrecognised lighting_stage value.
	ErrUnknownModel = errors.New("unknown lighting model")

	errNotResolved = errors.New("parameters not resolved")
)

// MissingParameterError names one parameter that failed to resolve.
type MissingParameterError struct {
	Name string
}

func (e *MissingParameterError) Error() string {
	return "missing parameter " + e.Name
}

// ResolveError aggregates every failed resolution of one phase.
type ResolveError struct {
	Phase string
	Err   error
}

func (e *ResolveError) Error() string {
	return fmt.Sprintf("%s: %v: %v", e.Phase, ErrParametersNotConstructed, e.Err)
}

// Unwrap exposes both the sentinel and the aggregated causes to errors.Is/As.
func (e *ResolveError) Unwrap() []error {
	return []error{ErrParametersNotConstructed, e.Err}
}

// Missing returns the names of the parameters that failed to resolve,
// in resolution order.
func (e *ResolveError) Missing() []string {
	var names []string
	for _, err := range multierr.Errors(e.Err) {
		var mp *MissingParameterError
		if errors.As(err, &mp) {
			names = append(names, mp.Name)
		}
	}
	return names
}

// resolver records every failed resolution of a phase and reports them once.
type resolver struct {
	phase string
	err   error
	seen  map[string]bool
}

func newResolver(phase string) *resolver {
	return &resolver{phase: phase, seen: make(map[string]bool)}
}

// need passes p through, recording name when p is nil. Each name is
// recorded once per phase.
func (r *resolver) need(name string, p *program.Parameter) *program.Parameter {
	if p == nil && !r.seen[name] {
		r.seen[name] = true
		r.err = multierr.Append(r.err, &MissingParameterError{Name: name})
	}
	return p
}

func (r *resolver) result() error {
	if r.err == nil {
		return nil
	}
	return &ResolveError{Phase: r.phase, Err: r.err}
}
