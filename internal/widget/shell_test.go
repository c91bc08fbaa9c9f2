package widget_test

import (
	"context"
	"math/rand"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mind-engage/mindengage-matchgame/internal/match"
	"github.com/mind-engage/mindengage-matchgame/internal/origin"
	"github.com/mind-engage/mindengage-matchgame/internal/protocol"
	"github.com/mind-engage/mindengage-matchgame/internal/report"
	"github.com/mind-engage/mindengage-matchgame/internal/widget"
)

const host = "https://host.example"

type recorder struct {
	mu   sync.Mutex
	envs []protocol.Envelope
}

func (r *recorder) PostMessage(_ context.Context, _ string, env protocol.Envelope) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.envs = append(r.envs, env)
	return nil
}

func (r *recorder) types() []protocol.MessageType {
	var out []protocol.MessageType
	for _, e := range r.envs {
		out = append(out, e.Type)
	}
	return out
}

const twoQuestions = `{
	"currentQuestion": {"_id": "Q1", "questionText": "Main?", "explanations": [{"_id": "E1", "explanationText": "Because."}]},
	"otherQuestions": [{"_id": "Q2", "text": "Other?", "explanations": [{"_id": "E2", "text": "Other."}]}]
}`

func newShell(t *testing.T, policy widget.SubmitPolicy, progress bool) (*widget.Shell, *recorder) {
	t.Helper()
	allow := origin.ParseAllowlist(host)
	rec := &recorder{}
	ids := 0
	sh := widget.New(widget.Options{
		Allow:       allow,
		DisplaySize: match.DefaultDisplaySize,
		Policy:      policy,
		Builder:     match.NewBuilder(rand.NewSource(1)),
		Reporter:    &report.Reporter{Allow: allow, Progress: progress},
		NewRoundID: func() string {
			ids++
			return "round-" + string(rune('0'+ids))
		},
	}, rec)
	return sh, rec
}

func load(t *testing.T, sh *widget.Shell) {
	t.Helper()
	require.NoError(t, sh.HandleMessage(context.Background(), host, []byte(twoQuestions)))
}

func playAllCorrect(t *testing.T, sh *widget.Shell) {
	t.Helper()
	ctx := context.Background()
	sh.SelectQuestion("Q1")
	require.NoError(t, sh.SelectExplanation(ctx, "E1"))
	sh.SelectQuestion("Q2")
	require.NoError(t, sh.SelectExplanation(ctx, "E2"))
}

func TestHandleMessage_InstallsRound(t *testing.T) {
	sh, _ := newShell(t, widget.SubmitManual, false)
	load(t, sh)

	v := sh.View()
	assert.Equal(t, "round-1", v.RoundID)
	assert.Len(t, v.Questions, 2)
	assert.Len(t, v.Explanations, 2)
	assert.Equal(t, 2, v.TotalMatches)
	assert.Empty(t, v.Error)
	assert.Equal(t, "Main?", sh.Session().Main.Text)
}

func TestHandleMessage_RejectedOriginChangesNothing(t *testing.T) {
	sh, rec := newShell(t, widget.SubmitManual, true)
	load(t, sh)
	before := sh.View()

	err := sh.HandleMessage(context.Background(), "https://evil.example", []byte(twoQuestions))
	assert.ErrorIs(t, err, origin.ErrOriginRejected)
	assert.Equal(t, before, sh.View())
	assert.Equal(t, []protocol.MessageType{protocol.GameReady}, rec.types())
}

func TestHandleMessage_NullOriginAccepted(t *testing.T) {
	sh, _ := newShell(t, widget.SubmitManual, false)
	require.NoError(t, sh.HandleMessage(context.Background(), origin.Null, []byte(twoQuestions)))
	assert.Len(t, sh.View().Questions, 2)
}

func TestHandleMessage_MalformedKeepsSession(t *testing.T) {
	sh, rec := newShell(t, widget.SubmitManual, true)
	load(t, sh)
	sh.SelectQuestion("Q1")
	require.NoError(t, sh.SelectExplanation(context.Background(), "E1"))

	err := sh.HandleMessage(context.Background(), host, []byte(`{"otherQuestions": []}`))
	assert.ErrorIs(t, err, protocol.ErrMalformedMessage)

	v := sh.View()
	assert.NotEmpty(t, v.Error)
	assert.Equal(t, "round-1", v.RoundID)
	assert.Equal(t, 1, v.CorrectMatches)
	assert.Equal(t, protocol.GameError, rec.envs[len(rec.envs)-1].Type)
}

func TestHandleMessage_UnsolvableMain(t *testing.T) {
	sh, _ := newShell(t, widget.SubmitManual, false)
	err := sh.HandleMessage(context.Background(), host, []byte(`{"currentQuestion": {"_id": "Q1"}, "otherQuestions": [{"_id": "Q2", "explanations": [{"_id": "E2"}]}]}`))
	assert.ErrorIs(t, err, match.ErrUnsolvableRound)
	v := sh.View()
	assert.NotEmpty(t, v.Error)
	assert.Empty(t, v.Questions)
}

func TestHandleMessage_NewMessageResetsRound(t *testing.T) {
	sh, _ := newShell(t, widget.SubmitManual, false)
	load(t, sh)
	sh.SelectQuestion("Q1")
	require.NoError(t, sh.SelectExplanation(context.Background(), "E1"))
	require.NoError(t, sh.Submit(context.Background()))

	load(t, sh)
	v := sh.View()
	assert.Equal(t, "round-2", v.RoundID)
	assert.Zero(t, v.CorrectMatches)
	assert.False(t, v.Submitted)
	for _, e := range v.Explanations {
		assert.False(t, e.Disabled)
	}
}

func TestView_ReflectsMatches(t *testing.T) {
	sh, _ := newShell(t, widget.SubmitManual, false)
	load(t, sh)

	sh.SelectQuestion("Q1")
	assert.Equal(t, "Q1", sh.View().SelectedQuestionID)
	sh.Deselect()
	assert.Empty(t, sh.View().SelectedQuestionID)

	sh.SelectQuestion("Q1")
	require.NoError(t, sh.SelectExplanation(context.Background(), "E2"))

	v := sh.View()
	for _, q := range v.Questions {
		if q.ID == "Q1" {
			require.NotNil(t, q.Correct)
			assert.False(t, *q.Correct)
			assert.Equal(t, match.Palette[0], q.PairColor)
		}
	}
	for _, e := range v.Explanations {
		assert.Equal(t, e.ID == "E2", e.Disabled)
	}
	assert.False(t, v.Complete)
	assert.Empty(t, v.Score)
}

func TestManualPolicy_OnlyExplicitSubmit(t *testing.T) {
	sh, rec := newShell(t, widget.SubmitManual, false)
	load(t, sh)
	playAllCorrect(t, sh)
	assert.Empty(t, rec.envs)

	v := sh.View()
	assert.True(t, v.Complete)
	assert.Equal(t, "2 / 2", v.Score)

	require.NoError(t, sh.Submit(context.Background()))
	require.Equal(t, []protocol.MessageType{protocol.GameCompleted}, rec.types())
	res := rec.envs[0].Payload.(report.Result)
	assert.True(t, res.AnsweredCorrectly)
	assert.Equal(t, "Q1", res.QuestionID)
	assert.Equal(t, "Because.", res.UserAnswer)
	assert.True(t, sh.View().Submitted)
}

func TestOnCompletePolicy_AutoSendsOncePerRound(t *testing.T) {
	sh, rec := newShell(t, widget.SubmitOnComplete, false)
	load(t, sh)
	playAllCorrect(t, sh)
	assert.Equal(t, []protocol.MessageType{protocol.GameCompleted}, rec.types())

	// further clicks on a finished round send nothing more
	sh.SelectQuestion("Q1")
	require.NoError(t, sh.SelectExplanation(context.Background(), "E2"))
	assert.Len(t, rec.envs, 1)

	// explicit submit is still allowed
	require.NoError(t, sh.Submit(context.Background()))
	assert.Len(t, rec.envs, 2)

	// a new round re-arms the automatic send
	load(t, sh)
	playAllCorrect(t, sh)
	assert.Len(t, rec.envs, 3)
}

func TestProgressEvents(t *testing.T) {
	sh, rec := newShell(t, widget.SubmitBoth, true)
	load(t, sh)
	playAllCorrect(t, sh)

	assert.Equal(t, []protocol.MessageType{
		protocol.GameReady,
		protocol.MatchCompleted,
		protocol.MatchCompleted,
		protocol.GameCompleted,
	}, rec.types())

	last := rec.envs[2].Payload.(protocol.MatchPayload)
	assert.Equal(t, 2, last.CorrectMatches)
	assert.Equal(t, "round-1", last.RoundID)
}

func TestSubmitWithoutRound(t *testing.T) {
	sh, rec := newShell(t, widget.SubmitManual, false)
	assert.ErrorIs(t, sh.Submit(context.Background()), widget.ErrNoRound)
	assert.Empty(t, rec.envs)
}

func TestParseSubmitPolicy(t *testing.T) {
	assert.Equal(t, widget.SubmitManual, widget.ParseSubmitPolicy(""))
	assert.Equal(t, widget.SubmitManual, widget.ParseSubmitPolicy("bogus"))
	assert.Equal(t, widget.SubmitOnComplete, widget.ParseSubmitPolicy(" ON_COMPLETE "))
	assert.Equal(t, widget.SubmitBoth, widget.ParseSubmitPolicy("both"))
}
