package generation

import (
	"errors"
	"fmt"
)

// FallbackChangeSummary is returned when change-summary generation fails; a
// save must never be blocked by a missing annotation.
const FallbackChangeSummary = "parameters were updated"

// ErrNoPendingUserMessage reports a reply request without a user line to
// answer.
var ErrNoPendingUserMessage = errors.New("no pending user message")

// ErrNameRequired rejects summary synthesis for a nameless persona.
var ErrNameRequired = errors.New("persona name is required")

// GenerationError reports an empty or unparseable model payload where
// structured output was required.
type GenerationError struct {
	Op  string
	Err error
}

func (e *GenerationError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: model returned no usable output", e.Op)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// IsGenerationError reports whether err is a GenerationError.
func IsGenerationError(err error) bool {
	var genErr *GenerationError
	return errors.As(err, &genErr)
}
