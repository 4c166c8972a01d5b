// Package intents defines the intent vocabulary shared by the classifier and
// the responder dispatch.
package intents

// FallbackLabel is the reserved label used when classification fails or is
// inconclusive. It is deliberately distinct from every real intent so the
// dispatch can always route deterministically.
const FallbackLabel = "fallback"

const (
	LabelNextClass     = "next_class"
	LabelTopicResearch = "topic_research"
	LabelWeeklyPlan    = "weekly_plan"
	LabelAssignments   = "assignments"
	LabelHelp          = "help"
)

// Record is the classifier's verdict for one utterance. Parameters are
// best-effort extractions; consumers must tolerate missing keys.
type Record struct {
	Label      string
	Parameters map[string]string
	Confidence float64
}

// Fallback returns the record produced when classification cannot be trusted.
func Fallback() Record {
	return Record{Label: FallbackLabel, Parameters: map[string]string{}, Confidence: 0}
}

// Known reports whether label names a real intent (the fallback label is not
// one).
func Known(label string) bool {
	switch label {
	case LabelNextClass, LabelTopicResearch, LabelWeeklyPlan, LabelAssignments, LabelHelp:
		return true
	}
	return false
}
