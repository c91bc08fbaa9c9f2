package protocol

import "encoding/json"

// MessageType tags an outbound envelope.
type MessageType string

const (
	GameReady      MessageType = "GAME_READY"
	MatchCompleted MessageType = "MATCH_COMPLETED"
	GameCompleted  MessageType = "GAME_COMPLETED"
	GameError      MessageType = "GAME_ERROR"
)

// Envelope is the single outbound shape posted to the host window.
type Envelope struct {
	Type    MessageType `json:"type"`
	Payload any         `json:"payload"`
}

func (e Envelope) JSON() ([]byte, error) { return json.Marshal(e) }

type ReadyPayload struct {
	RoundID           string   `json:"roundId"`
	QuestionID        string   `json:"questionId,omitempty"`
	TotalMatches      int      `json:"totalMatches"`
	ExcludedQuestions []string `json:"excludedQuestions,omitempty"`
}

type MatchPayload struct {
	RoundID        string `json:"roundId"`
	QuestionID     string `json:"questionId"`
	ExplanationID  string `json:"explanationId"`
	IsCorrect      bool   `json:"isCorrect"`
	CorrectMatches int    `json:"correctMatches"`
	TotalMatches   int    `json:"totalMatches"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}
