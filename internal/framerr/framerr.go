// Package framerr classifies the failures a render run can produce, so
// the Orchestrator can report which stage and which Part caused an abort
// without string-matching error messages.
package framerr

import "fmt"

// Kind tags which category of failure produced an error.
type Kind int

const (
	// KindConfiguration covers invalid Run Configuration, caught before
	// any browser or subprocess is launched.
	KindConfiguration Kind = iota
	// KindBundling covers asset-bundling failures (external collaborator).
	KindBundling
	// KindPageLoad covers scene navigation or contract-detection failures.
	KindPageLoad
	// KindPageError covers scene runtime errors raised during a render call.
	KindPageError
	// KindTimeout covers a Part's per-frame readiness ladder exceeding
	// frameRenderTimeout.
	KindTimeout
	// KindEncoder covers an Encoder Sink subprocess failure.
	KindEncoder
	// KindVerification covers a post-concat verification failure (frame
	// count mismatch or a duplicate-frame hash match).
	KindVerification
)

func (k Kind) String() string {
	switch k {
	case KindConfiguration:
		return "configuration"
	case KindBundling:
		return "bundling"
	case KindPageLoad:
		return "page_load"
	case KindPageError:
		return "page_error"
	case KindTimeout:
		return "timeout"
	case KindEncoder:
		return "encoder"
	case KindVerification:
		return "verification"
	default:
		return "unknown"
	}
}

// Error wraps an underlying cause with the Kind and, where applicable,
// the Part index that produced it.
type Error struct {
	Kind Kind
	Part int // -1 when not part-specific
	Err  error
}

func (e *Error) Error() string {
	if e.Part >= 0 {
		return fmt.Sprintf("%s error in part %d: %v", e.Kind, e.Part, e.Err)
	}
	return fmt.Sprintf("%s error: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// New wraps err with kind, not attributed to any specific Part.
func New(kind Kind, err error) *Error {
	return &Error{Kind: kind, Part: -1, Err: err}
}

// NewPart wraps err with kind and the Part index that produced it.
func NewPart(kind Kind, part int, err error) *Error {
	return &Error{Kind: kind, Part: part, Err: err}
}
