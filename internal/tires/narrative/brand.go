package narrative

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"tire-backend/internal/llm"
)

// Brand score bounds and documented defaults.
const (
	BrandMin          = 50
	BrandMax          = 98
	BrandUnknownScore = 70
	BrandInvalidScore = 80
	BrandFailedScore  = 75
)

var unknownBrands = map[string]bool{
	"":           true,
	"unknown":    true,
	"bilinmiyor": true,
	"diğer":      true,
	"other":      true,
	"-":          true,
}

// KnownBrand reports whether brand names a real brand worth rating.
func KnownBrand(brand string) bool {
	return !unknownBrands[strings.ToLower(strings.TrimSpace(brand))]
}

// Brand resolves the brand quality score with a single call. Unknown brands
// short-circuit to 70; an invalid reply yields 80 and a failed call 75.
func (s *Service) Brand(ctx context.Context, in Input) Outcome[int] {
	if !KnownBrand(in.Attrs.Brand) {
		return Ok(BrandUnknownScore)
	}
	reply, err := s.complete(ctx, s.once, llm.PromptBrand, in)
	if err != nil {
		return Fallback(BrandFailedScore, reasonFor(err))
	}
	score, err := ParseBrandScore(reply)
	if err != nil {
		reason := ReasonMalformed
		if isOutOfRange(err) {
			reason = ReasonOutOfRange
		}
		return Fallback(BrandInvalidScore, reason)
	}
	return Ok(score)
}

// ParseBrandScore accepts a bare number, a quoted number, or an object with a
// "score" field, and checks it lies in [50,98].
func ParseBrandScore(reply string) (int, error) {
	s := strings.Trim(stripFences(reply), "\" \t\r\n")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		var obj map[string]any
		if derr := decodeJSON(s, &obj); derr != nil {
			return 0, derr
		}
		raw, ok := obj["score"]
		if !ok {
			return 0, fmt.Errorf("%w: no score field", ErrMalformed)
		}
		switch n := raw.(type) {
		case float64:
			v = n
		case string:
			if v, err = strconv.ParseFloat(strings.TrimSpace(n), 64); err != nil {
				return 0, fmt.Errorf("%w: score %q", ErrMalformed, n)
			}
		default:
			return 0, fmt.Errorf("%w: score has type %T", ErrMalformed, raw)
		}
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: non-finite score", ErrMalformed)
	}
	if v < BrandMin || v > BrandMax {
		return 0, fmt.Errorf("%w: %g", ErrOutOfRange, v)
	}
	return int(math.Round(v)), nil
}

func isOutOfRange(err error) bool {
	return errors.Is(err, ErrOutOfRange)
}
