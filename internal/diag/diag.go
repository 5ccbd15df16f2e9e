// Package diag defines the recoverable diagnostics collected alongside
// successful induction and generation results. Only induction with zero
// usable content schemas is a hard failure; everything here is a warning
// the caller may surface to the user.
package diag

import "fmt"

// Code identifies a warning category.
type Code string

const (
	UnsupportedElement   Code = "unsupported_element"
	CapacityOverflow     Code = "capacity_overflow"
	SegmentationFallback Code = "segmentation_fallback"
	CollaboratorTimeout  Code = "collaborator_timeout"
	SurplusImages        Code = "surplus_images"
)

// Warning is a single non-fatal diagnostic.
type Warning struct {
	Code    Code   `json:"code"`
	Detail  string `json:"detail"`
	Slide   int    `json:"slide,omitempty"`   // template slide index, if applicable
	Section int    `json:"section,omitempty"` // document section index, if applicable
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: %s", w.Code, w.Detail)
}

// Warningf builds a Warning with a formatted detail message.
func Warningf(code Code, format string, args ...any) Warning {
	return Warning{Code: code, Detail: fmt.Sprintf(format, args...)}
}
