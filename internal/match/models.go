package match

// Explanation is one candidate answer. QuestionID points at the question it
// was authored for; correctness is decided by membership in a question's
// Explanations, not by this back reference.
type Explanation struct {
	ID         string `json:"_id"`
	Text       string `json:"text"`
	QuestionID string `json:"questionId,omitempty"`
}

type Question struct {
	ID           string        `json:"_id"`
	Text         string        `json:"text"`
	Explanations []Explanation `json:"explanations"`
}

// HasExplanation reports whether id is one of the question's correct explanations.
func (q Question) HasExplanation(id string) bool {
	for _, e := range q.Explanations {
		if e.ID == id {
			return true
		}
	}
	return false
}

type Match struct {
	QuestionID    string `json:"questionId"`
	ExplanationID string `json:"explanationId"`
	IsCorrect     bool   `json:"isCorrect"`
	PairColor     string `json:"pairColor,omitempty"`
}

// Palette cycles by match index. Purely cosmetic.
var Palette = []string{
	"#BFDBFE",
	"#FDE68A",
	"#C4B5FD",
	"#FBCFE8",
	"#BBF7D0",
	"#FED7AA",
}

// Session is one round. It is treated as a value: every transition returns a
// new Session and never mutates the receiver's slices.
type Session struct {
	RoundID string    `json:"roundId,omitempty"`
	Main    *Question `json:"main,omitempty"`

	DisplayQuestions    []Question    `json:"displayQuestions"`
	DisplayExplanations []Explanation `json:"displayExplanations"`

	SelectedQuestionID     string   `json:"selectedQuestionId,omitempty"`
	Matches                []Match  `json:"matches"`
	DisabledExplanationIDs []string `json:"disabledExplanationIds"`
}

// NewSession wraps a built round into an idle session.
func NewSession(main *Question, r Round) Session {
	return Session{
		Main:                   main,
		DisplayQuestions:       r.Questions,
		DisplayExplanations:    r.Explanations,
		Matches:                []Match{},
		DisabledExplanationIDs: []string{},
	}
}

func (s Session) Empty() bool { return len(s.DisplayQuestions) == 0 }

func (s Session) question(id string) (Question, bool) {
	for _, q := range s.DisplayQuestions {
		if q.ID == id {
			return q, true
		}
	}
	return Question{}, false
}

func (s Session) explanation(id string) (Explanation, bool) {
	for _, e := range s.DisplayExplanations {
		if e.ID == id {
			return e, true
		}
	}
	return Explanation{}, false
}

// MatchForQuestion returns the recorded match for a question, if any.
func (s Session) MatchForQuestion(id string) (Match, bool) {
	for _, m := range s.Matches {
		if m.QuestionID == id {
			return m, true
		}
	}
	return Match{}, false
}

// MatchForExplanation returns the recorded match that used an explanation, if any.
func (s Session) MatchForExplanation(id string) (Match, bool) {
	for _, m := range s.Matches {
		if m.ExplanationID == id {
			return m, true
		}
	}
	return Match{}, false
}

func (s Session) IsDisabled(explanationID string) bool {
	for _, id := range s.DisabledExplanationIDs {
		if id == explanationID {
			return true
		}
	}
	return false
}

// ExplanationText looks up a displayed explanation's text.
func (s Session) ExplanationText(id string) string {
	if e, ok := s.explanation(id); ok {
		return e.Text
	}
	return ""
}
