package models

import (
	"errors"
	"fmt"

	"github.com/openai/openai-go/v3"
	"google.golang.org/genai"
)

// UpstreamError carries a provider failure with its original status code so
// the proxy layer can relay it verbatim instead of coercing to a generic
// failure.
type UpstreamError struct {
	StatusCode int
	Message    string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream error %d: %s", e.StatusCode, e.Message)
}

// wrapUpstream converts provider SDK errors into UpstreamError, leaving
// transport errors untouched.
func wrapUpstream(err error) error {
	if err == nil {
		return nil
	}
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return &UpstreamError{StatusCode: apiErr.Code, Message: apiErr.Message}
	}
	var oaiErr *openai.Error
	if errors.As(err, &oaiErr) {
		msg := oaiErr.Message
		if msg == "" {
			msg = oaiErr.Error()
		}
		return &UpstreamError{StatusCode: oaiErr.StatusCode, Message: msg}
	}
	return err
}
