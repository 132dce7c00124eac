package shell

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
)

// ErrInvalidEnvName is returned when an environment variable name is empty or
// contains characters the platform can't represent in a child's environment.
var ErrInvalidEnvName = errors.New("invalid environment variable name")

// ErrInvalidEnvValue is returned when an environment variable value contains
// a NUL byte.
var ErrInvalidEnvValue = errors.New("invalid environment variable value")

// Environment is a mutable variable table owned by a single shell instance.
//
// It deliberately shadows the process-global environment so multiple shells
// can coexist in one process and tests never leak variables into each other.
// Children receive a snapshot via Environ at spawn time; mutations after
// spawn never affect a running child.
type Environment struct {
	rw  sync.RWMutex
	env map[string]string
}

// NewEnvironment creates an empty environment.
func NewEnvironment() *Environment {
	return &Environment{}
}

// NewEnvironmentFromProcess creates an environment seeded from the calling
// process's inherited environment.
func NewEnvironmentFromProcess() *Environment {
	return NewEnvironmentFromList(os.Environ())
}

// NewEnvironmentFromList creates an environment from a list of "key=value"
// entries. Entries without '=' get an empty value; later duplicates win.
func NewEnvironmentFromList(environ []string) *Environment {
	out := &Environment{}

	for _, e := range environ {
		split := strings.SplitN(e, "=", 2)
		key, value := split[0], ""
		if len(split) > 1 {
			value = split[1]
		}
		// Inherited entries bypass validation, the OS already accepted them.
		out.rawSet(key, value)
	}

	return out
}

func (m *Environment) rawSet(key, value string) {
	m.rw.Lock()
	defer m.rw.Unlock()

	if m.env == nil {
		m.env = make(map[string]string)
	}
	m.env[key] = value
}

// Setenv sets the value of the variable named by the key, overwriting any
// existing binding.
func (m *Environment) Setenv(key, value string) error {
	switch {
	case key == "", strings.ContainsAny(key, "=\x00"):
		return fmt.Errorf("%w: %q", ErrInvalidEnvName, key)
	case strings.ContainsRune(value, '\x00'):
		return fmt.Errorf("%w for %s", ErrInvalidEnvValue, key)
	}

	m.rawSet(key, value)
	return nil
}

// Unsetenv removes a single variable.
func (m *Environment) Unsetenv(key string) error {
	m.rw.Lock()
	defer m.rw.Unlock()
	if m.env != nil {
		delete(m.env, key)
	}
	return nil
}

// LookupEnv retrieves the value of the variable named by the key. The boolean
// reports whether the variable is present, distinguishing unset from empty.
func (m *Environment) LookupEnv(key string) (string, bool) {
	m.rw.RLock()
	defer m.rw.RUnlock()

	val, ok := m.env[key]
	return val, ok
}

// Getenv retrieves the value of the variable named by the key, or "" if the
// variable is not present.
func (m *Environment) Getenv(key string) string {
	val, _ := m.LookupEnv(key)
	return val
}

// ExpandEnv replaces ${var} or $var in the string according to the values of
// the table. References to undefined variables are replaced by the empty
// string.
func (m *Environment) ExpandEnv(s string) string {
	return os.Expand(s, m.Getenv)
}

// Environ returns a sorted snapshot of the table in "key=value" form,
// suitable for handing to a spawned child.
func (m *Environment) Environ() []string {
	m.rw.RLock()
	defer m.rw.RUnlock()

	env := make([]string, 0, len(m.env))
	for k, v := range m.env {
		env = append(env, fmt.Sprintf("%s=%s", k, v))
	}
	sort.Strings(env)

	return env
}

// Clearenv deletes all variables.
func (m *Environment) Clearenv() {
	m.rw.Lock()
	defer m.rw.Unlock()
	m.env = make(map[string]string)
}
