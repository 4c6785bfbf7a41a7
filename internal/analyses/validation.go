package analyses

import (
	"fmt"
	"strings"
	"time"
)

const (
	minProductionYear = 1950
	maxTextLen        = 120
)

// FieldError names an invalid request field.
type FieldError struct {
	Field string `json:"field"`
	Issue string `json:"issue"`
}

// ValidationError lists every invalid field of a request. It matches ErrValidation.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Issue)
	}
	return fmt.Sprintf("%s: %s", ErrValidation, strings.Join(parts, ", "))
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Validate checks a request before anything external is called. Detection-only
// requests need just the image; full analyses also need the tire type and a
// plausible production year.
func Validate(req Request, now time.Time) error {
	var fields []FieldError
	if strings.TrimSpace(req.ImageURL) == "" {
		fields = append(fields, FieldError{Field: "imageUrl", Issue: "required"})
	}
	if !req.DetectOnly {
		f := req.FormData
		if strings.TrimSpace(f.TireType) == "" {
			fields = append(fields, FieldError{Field: "formData.tireType", Issue: "required"})
		}
		switch {
		case f.ProductionYear == 0:
			fields = append(fields, FieldError{Field: "formData.productionYear", Issue: "required"})
		case f.ProductionYear < minProductionYear || f.ProductionYear > now.Year()+1:
			fields = append(fields, FieldError{Field: "formData.productionYear", Issue: "out_of_range"})
		}
		for _, text := range []struct{ field, value string }{
			{"formData.brand", f.Brand},
			{"formData.model", f.Model},
			{"formData.size", f.Size},
			{"formData.mileage", f.Mileage},
		} {
			if len(text.value) > maxTextLen {
				fields = append(fields, FieldError{Field: text.field, Issue: "too_long"})
			}
		}
	}
	if len(fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: fields}
}
