package errors

import (
	"slices"
	"strings"
	"unicode"
)

// Hemisphere labels accepted by the pipelines.
const (
	HemisphereLeft  = "lh"
	HemisphereRight = "rh"
)

// Measures lists the surface statistics the visualization pipelines were
// built for. Anything else is still loadable, but the CLI rejects it when a
// measure is named explicitly.
var Measures = []string{"thickness", "curv", "area", "jacobian_white", "sulc", "volume", "suvr"}

// ValidateHemisphere checks that h is "lh" or "rh". The empty string is
// accepted and means the hemisphere is unknown.
func ValidateHemisphere(h string) error {
	switch h {
	case "", HemisphereLeft, HemisphereRight:
		return nil
	}
	return New(ErrCodeInvalidHemisphere, "invalid hemisphere: %q (must be lh or rh)", h)
}

// ValidateMeasure checks that m names a supported surface statistic.
func ValidateMeasure(m string) error {
	if !slices.Contains(Measures, m) {
		return New(ErrCodeInvalidMeasure, "invalid measure: %q (must be one of: %s)", m, strings.Join(Measures, ", "))
	}
	return nil
}

// ValidatePath validates an input or output file path.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 4096 characters
//   - No null bytes or control characters
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 4096
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	return nil
}
