package models

// Answer type labels as returned by the query router.
const (
	AnswerText       = "text"
	AnswerAnalytical = "analytical"
	AnswerHybrid     = "hybrid"
)

// Answer is the final response to a question.
type Answer struct {
	Type   string `json:"type"`
	Answer string `json:"answer"`
}
