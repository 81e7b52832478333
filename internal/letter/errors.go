package letter

import (
	"errors"
	"fmt"
)

// Domain errors for letter rendering. All three are fatal for the request;
// conversion failure is not an error (see Renderer.RenderLetter).
var (
	ErrUnsupportedCaseType = errors.New("unsupported case type")
	ErrTemplateNotFound    = errors.New("template file not found")
)

// TemplateRenderError reports a structural substitution failure. Rendering is
// all-or-nothing per document; partial output is never returned.
type TemplateRenderError struct {
	Detail string
	Cause  error
}

func (e *TemplateRenderError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("template render failed: %s: %v", e.Detail, e.Cause)
	}
	return fmt.Sprintf("template render failed: %s", e.Detail)
}

func (e *TemplateRenderError) Unwrap() error {
	return e.Cause
}
