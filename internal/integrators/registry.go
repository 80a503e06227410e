package integrators

import (
	"fmt"
	"sort"

	"github.com/san-kum/maglev/internal/dynamo"
)

const (
	SchemeSymplectic = "symplectic"
	SchemeLeapfrog   = "leapfrog"
	SchemeRK4        = "rk4"
	SchemeEuler      = "euler"
)

var schemes = map[string]func() dynamo.Integrator{
	SchemeSymplectic: func() dynamo.Integrator { return NewSymplecticEuler() },
	SchemeLeapfrog:   func() dynamo.Integrator { return NewLeapfrog() },
	SchemeRK4:        func() dynamo.Integrator { return NewRK4() },
	SchemeEuler:      func() dynamo.Integrator { return NewEuler() },
}

// New returns a fresh integrator for the named scheme. Integrators may keep
// scratch buffers, so every simulation gets its own instance.
func New(name string) (dynamo.Integrator, error) {
	fn, ok := schemes[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown integrator %q (available: %v)", dynamo.ErrInvalidInput, name, Names())
	}
	return fn(), nil
}

func Names() []string {
	names := make([]string, 0, len(schemes))
	for name := range schemes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
