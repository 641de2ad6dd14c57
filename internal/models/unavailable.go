package models

import (
	"context"
	"fmt"
)

// ConfigurationError reports a missing server-side credential. It is never
// silently defaulted; callers surface it as HTTP 500.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("model provider not configured: %s", e.Reason)
}

// Unavailable returns an adapter that fails every call with a
// ConfigurationError. It lets the studio boot without a credential and
// report the real problem per request.
func Unavailable(reason string) LLM {
	return &unavailableModel{reason: reason}
}

type unavailableModel struct {
	reason string
}

func (m *unavailableModel) Name() string {
	return "unconfigured"
}

func (m *unavailableModel) GenerateContent(ctx context.Context, req *Request) (*Response, error) {
	return nil, &ConfigurationError{Reason: m.reason}
}
