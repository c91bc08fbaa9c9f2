package protocol

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_V1LegacyFields(t *testing.T) {
	body := `{
		"currentQuestion": {"_id": "q1", "questionText": "Main?", "explanations": [{"_id": "e1", "explanationText": "yes"}]},
		"otherQuestions": [{"_id": "q2", "text": "Other?", "explanations": [{"_id": "e2", "text": "no"}]}],
		"userInfo": {"name": "sam"}
	}`

	in, err := Parse([]byte(body))
	require.NoError(t, err)
	assert.Equal(t, V1, in.Version)
	assert.Equal(t, "q1", in.Main.ID)
	assert.Equal(t, "Main?", in.Main.Text)
	assert.Equal(t, "yes", in.Main.Explanations[0].Text)
	require.Len(t, in.Others, 1)
	assert.Equal(t, "Other?", in.Others[0].Text)
	assert.Equal(t, "sam", in.UserInfo["name"])
}

func TestParse_V2Questions(t *testing.T) {
	body := `{"currentQuestion": {"_id": "q1", "text": "Main?"}, "questions": [{"_id": "q2"}]}`

	in, err := Parse([]byte(body))
	require.NoError(t, err)
	assert.Equal(t, V2, in.Version)
	require.Len(t, in.Others, 1)
	assert.Equal(t, "q2", in.Others[0].ID)
	assert.NotNil(t, in.Others[0].Explanations)
}

func TestParse_OtherQuestionsWinsWhenBothPresent(t *testing.T) {
	body := `{
		"currentQuestion": {"_id": "q1"},
		"otherQuestions": [{"_id": "from-v1"}],
		"questions": [{"_id": "from-v2"}]
	}`

	in, err := Parse([]byte(body))
	require.NoError(t, err)
	assert.Equal(t, V1, in.Version)
	require.Len(t, in.Others, 1)
	assert.Equal(t, "from-v1", in.Others[0].ID)
}

func TestParse_ExplicitVersionTag(t *testing.T) {
	body := `{"version": "v2", "currentQuestion": {"_id": "q1"}, "otherQuestions": [], "questions": [{"_id": "q9"}]}`

	in, err := Parse([]byte(body))
	require.NoError(t, err)
	assert.Equal(t, V2, in.Version)
	assert.Equal(t, "q9", in.Others[0].ID)

	_, err = Parse([]byte(`{"version": "v2", "currentQuestion": {"_id": "q1"}, "otherQuestions": []}`))
	assert.ErrorIs(t, err, ErrMalformedMessage)
}

func TestParse_NullTextFallsBackToLegacy(t *testing.T) {
	body := `{"currentQuestion": {"_id": "q1", "text": null, "questionText": "legacy"}, "otherQuestions": []}`

	in, err := Parse([]byte(body))
	require.NoError(t, err)
	assert.Equal(t, "legacy", in.Main.Text)
	assert.Empty(t, in.Others)
}

func TestParse_NullExplanationsBecomeEmpty(t *testing.T) {
	body := `{
		"currentQuestion": {"_id": "q1", "explanations": [{"_id": "e1"}]},
		"otherQuestions": [{"_id": "q2", "text": "Other?", "explanations": null}]
	}`

	in, err := Parse([]byte(body))
	require.NoError(t, err)
	require.Len(t, in.Others, 1)
	assert.NotNil(t, in.Others[0].Explanations)
	assert.Empty(t, in.Others[0].Explanations)
}

func TestParse_Malformed(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", `{`},
		{"not an object", `[1,2]`},
		{"missing currentQuestion", `{"otherQuestions": []}`},
		{"null currentQuestion", `{"currentQuestion": null, "otherQuestions": []}`},
		{"missing both lists", `{"currentQuestion": {"_id": "q1"}}`},
		{"list not an array", `{"currentQuestion": {"_id": "q1"}, "otherQuestions": {}}`},
		{"question without id", `{"currentQuestion": {"text": "x"}, "otherQuestions": []}`},
		{"empty id", `{"currentQuestion": {"_id": ""}, "otherQuestions": []}`},
		{"numeric id", `{"currentQuestion": {"_id": 7}, "otherQuestions": []}`},
		{"numeric text", `{"currentQuestion": {"_id": "q1", "text": 3}, "otherQuestions": []}`},
		{"explanations not a list", `{"currentQuestion": {"_id": "q1", "explanations": "e1"}, "otherQuestions": []}`},
		{"explanation without id", `{"currentQuestion": {"_id": "q1", "explanations": [{"text": "x"}]}, "otherQuestions": []}`},
		{"unknown version", `{"version": "v9", "currentQuestion": {"_id": "q1"}, "otherQuestions": []}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.body))
			assert.ErrorIs(t, err, ErrMalformedMessage)
		})
	}
}

func TestEnvelopeJSON(t *testing.T) {
	buf, err := Envelope{Type: GameError, Payload: ErrorPayload{Message: "boom"}}.JSON()
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf, &got))
	assert.Equal(t, "GAME_ERROR", got["type"])
	assert.Equal(t, map[string]any{"message": "boom"}, got["payload"])
}
