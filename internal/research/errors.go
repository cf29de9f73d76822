// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package research

import (
	"fmt"
	"strings"

	"github.com/pdiddy/ai-orchestrator/pkg/types"
)

// ValidationError reports a malformed research request. It is returned
// before the cache or any upstream provider is touched.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// OrchestrationError reports that the synthesis step failed, so no result
// could be produced for Topic.
type OrchestrationError struct {
	Topic string
	Err   error
}

func (e *OrchestrationError) Error() string {
	return "failed to conduct research on topic: " + e.Topic
}

func (e *OrchestrationError) Unwrap() error { return e.Err }

// Validate checks a request for a usable topic and a recognized depth. An
// empty depth is accepted and means the default.
func Validate(req types.ResearchRequest) error {
	if strings.TrimSpace(req.Topic) == "" {
		return &ValidationError{Field: "topic", Message: "Topic is required and must be a string"}
	}
	if req.Depth != "" && !req.Depth.Valid() {
		return &ValidationError{
			Field:   "depth",
			Message: fmt.Sprintf("Depth must be one of basic, detailed, comprehensive (got %q)", req.Depth),
		}
	}
	return nil
}
