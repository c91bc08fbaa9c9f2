package widget

import (
	"fmt"

	"github.com/mind-engage/mindengage-matchgame/internal/match"
)

// QuestionView is one question card as the front-end draws it.
type QuestionView struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Selected  bool   `json:"selected"`
	Matched   bool   `json:"matched"`
	Correct   *bool  `json:"correct,omitempty"`
	PairColor string `json:"pairColor,omitempty"`
}

type ExplanationView struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Disabled  bool   `json:"disabled"`
	Correct   *bool  `json:"correct,omitempty"`
	PairColor string `json:"pairColor,omitempty"`
}

// View is the render model pushed to the front-end after every event.
type View struct {
	RoundID            string            `json:"roundId,omitempty"`
	Questions          []QuestionView    `json:"questions"`
	Explanations       []ExplanationView `json:"explanations"`
	SelectedQuestionID string            `json:"selectedQuestionId,omitempty"`
	Complete           bool              `json:"complete"`
	CorrectMatches     int               `json:"correctMatches"`
	TotalMatches       int               `json:"totalMatches"`
	Score              string            `json:"score,omitempty"`
	Submitted          bool              `json:"submitted"`
	Error              string            `json:"error,omitempty"`
}

func render(s match.Session) View {
	v := View{
		RoundID:            s.RoundID,
		Questions:          make([]QuestionView, 0, len(s.DisplayQuestions)),
		Explanations:       make([]ExplanationView, 0, len(s.DisplayExplanations)),
		SelectedQuestionID: s.SelectedQuestionID,
		Complete:           s.IsComplete(),
		CorrectMatches:     s.CorrectCount(),
		TotalMatches:       s.TotalCount(),
	}
	for _, q := range s.DisplayQuestions {
		qv := QuestionView{ID: q.ID, Text: q.Text, Selected: q.ID == s.SelectedQuestionID}
		if m, ok := s.MatchForQuestion(q.ID); ok {
			correct := m.IsCorrect
			qv.Matched, qv.Correct, qv.PairColor = true, &correct, m.PairColor
		}
		v.Questions = append(v.Questions, qv)
	}
	for _, e := range s.DisplayExplanations {
		ev := ExplanationView{ID: e.ID, Text: e.Text, Disabled: s.IsDisabled(e.ID)}
		if m, ok := s.MatchForExplanation(e.ID); ok {
			correct := m.IsCorrect
			ev.Correct, ev.PairColor = &correct, m.PairColor
		}
		v.Explanations = append(v.Explanations, ev)
	}
	if v.Complete {
		v.Score = fmt.Sprintf("%d / %d", v.CorrectMatches, v.TotalMatches)
	}
	return v
}
