package core

import "fmt"

// ConfigError reports an invalid schedule parameter. Configuration problems
// are rejected before any computation begins and are never retried.
type ConfigError struct {
	Field  string
	Reason string
}

func (e ConfigError) Error() string {
	return fmt.Sprintf("invalid schedule config: %s %s", e.Field, e.Reason)
}

// RosterError reports an empty or malformed animal roster. The engine never
// guesses missing values.
type RosterError struct {
	Reason string
}

func (e RosterError) Error() string {
	return fmt.Sprintf("invalid roster: %s", e.Reason)
}
