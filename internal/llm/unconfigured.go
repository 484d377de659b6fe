package llm

import (
	"context"
	"errors"
)

type unconfigured struct{}

// Unconfigured returns a provider that fails every call. Used when no API key
// is present so the rest of the system still wires up and non-LLM operations
// keep working.
func Unconfigured() Provider { return unconfigured{} }

func (unconfigured) Complete(context.Context, string, string) (Completion, error) {
	return Completion{}, errors.New("completion provider not configured: set the provider API key env var")
}
