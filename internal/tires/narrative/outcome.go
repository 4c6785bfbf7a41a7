package narrative

// Outcome is the settled result of one enrichment call: either the value the
// service returned, or the documented fallback together with the reason it was used.
type Outcome[T any] struct {
	Value  T
	OK     bool
	Reason string
}

func Ok[T any](v T) Outcome[T] {
	return Outcome[T]{Value: v, OK: true}
}

func Fallback[T any](v T, reason string) Outcome[T] {
	return Outcome[T]{Value: v, Reason: reason}
}

// Label is the metric label of the outcome.
func (o Outcome[T]) Label() string {
	if o.OK {
		return "ok"
	}
	return "fallback"
}

// Fallback reasons.
const (
	ReasonCallFailed = "call_failed"
	ReasonTimeout    = "timeout"
	ReasonCanceled   = "canceled"
	ReasonMalformed  = "malformed_reply"
	ReasonOutOfRange = "out_of_range"
	ReasonPanic      = "panic"
)
