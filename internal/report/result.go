package report

import (
	"github.com/mind-engage/mindengage-matchgame/internal/match"
	"github.com/mind-engage/mindengage-matchgame/internal/protocol"
)

// Result is the GAME_COMPLETED payload. The first four fields are what hosts
// have always consumed; the rest describe the whole round.
type Result struct {
	AnsweredCorrectly bool   `json:"answeredCorrectly"`
	QuestionID        string `json:"questionId"`
	QuestionText      string `json:"questionText"`
	UserAnswer        string `json:"userAnswer"`

	RoundID        string        `json:"roundId,omitempty"`
	Complete       bool          `json:"complete"`
	CorrectMatches int           `json:"correctMatches"`
	TotalMatches   int           `json:"totalMatches"`
	Matches        []match.Match `json:"matches"`

	Token string `json:"token,omitempty"`
}

// BuildResult derives the result of s. It reads only the session, so calling
// it twice on the same value yields the same Result.
func BuildResult(s match.Session) Result {
	r := Result{
		AnsweredCorrectly: s.AnsweredCorrectly(),
		RoundID:           s.RoundID,
		Complete:          s.IsComplete(),
		CorrectMatches:    s.CorrectCount(),
		TotalMatches:      s.TotalCount(),
		Matches:           append([]match.Match{}, s.Matches...),
	}
	if s.Main != nil {
		r.QuestionID = s.Main.ID
		r.QuestionText = s.Main.Text
		if m, ok := s.MatchForQuestion(s.Main.ID); ok {
			r.UserAnswer = s.ExplanationText(m.ExplanationID)
		}
	}
	return r
}

// BuildResultMessage wraps BuildResult in the outbound envelope.
func BuildResultMessage(s match.Session) protocol.Envelope {
	return protocol.Envelope{Type: protocol.GameCompleted, Payload: BuildResult(s)}
}
