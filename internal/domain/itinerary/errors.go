package itinerary

import apperrors "github.com/yanqian/ai-tripplanner/pkg/errors"

// CodeValidation tags malformed constraints and coordinates.
const CodeValidation = "validation_error"

func validationErrorf(format string, args ...any) error {
	return apperrors.Newf(CodeValidation, format, args...)
}
