package narrative

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/kaptinlin/jsonrepair"
)

var (
	ErrMalformed  = errors.New("malformed reply")
	ErrOutOfRange = errors.New("value out of range")
)

// decodeJSON unmarshals a model reply into v. Markdown code fences are
// stripped and, if the reply is not valid JSON, one repair pass is attempted.
func decodeJSON(reply string, v any) error {
	s := stripFences(reply)
	if s == "" {
		return fmt.Errorf("%w: empty reply", ErrMalformed)
	}
	if err := json.Unmarshal([]byte(s), v); err == nil {
		return nil
	}
	repaired, err := jsonrepair.JSONRepair(s)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if err := json.Unmarshal([]byte(repaired), v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return nil
}

// decodeField unmarshals one field of an already decoded reply. It reports
// false for an absent, null or ill-typed field.
func decodeField(raw json.RawMessage, v any) bool {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return false
	}
	return json.Unmarshal(raw, v) == nil
}

// decodeEach decodes a JSON array element by element, skipping elements that
// are not a T. Anything other than an array yields nil.
func decodeEach[T any](raw json.RawMessage) []T {
	var items []json.RawMessage
	if !decodeField(raw, &items) {
		return nil
	}
	var out []T
	for _, item := range items {
		var v T
		if decodeField(item, &v) {
			out = append(out, v)
		}
	}
	return out
}

func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	} else {
		s = strings.TrimPrefix(s, "json")
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
