package match

// RawExplanation is an explanation record as sent by a host. Text may arrive
// under "text" or the legacy "explanationText".
type RawExplanation struct {
	ID              string  `json:"_id"`
	Text            *string `json:"text,omitempty"`
	ExplanationText *string `json:"explanationText,omitempty"`
	QuestionID      string  `json:"questionId,omitempty"`
}

// RawQuestion is a question record as sent by a host. Text may arrive under
// "text" or the legacy "questionText".
type RawQuestion struct {
	ID           string           `json:"_id"`
	Text         *string          `json:"text,omitempty"`
	QuestionText *string          `json:"questionText,omitempty"`
	Explanations []RawExplanation `json:"explanations,omitempty"`
}

func firstText(vals ...*string) string {
	for _, v := range vals {
		if v != nil {
			return *v
		}
	}
	return ""
}

func NormalizeExplanation(raw RawExplanation) Explanation {
	return Explanation{
		ID:         raw.ID,
		Text:       firstText(raw.Text, raw.ExplanationText),
		QuestionID: raw.QuestionID,
	}
}

// NormalizeQuestion maps a raw record onto the canonical shape. Missing fields
// become zero values; presence checks belong to the protocol layer.
func NormalizeQuestion(raw RawQuestion) Question {
	q := Question{
		ID:           raw.ID,
		Text:         firstText(raw.Text, raw.QuestionText),
		Explanations: make([]Explanation, 0, len(raw.Explanations)),
	}
	for _, e := range raw.Explanations {
		q.Explanations = append(q.Explanations, NormalizeExplanation(e))
	}
	return q
}

func NormalizeQuestions(raw []RawQuestion) []Question {
	out := make([]Question, 0, len(raw))
	for _, r := range raw {
		out = append(out, NormalizeQuestion(r))
	}
	return out
}
