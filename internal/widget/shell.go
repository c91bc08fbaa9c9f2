package widget

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/mind-engage/mindengage-matchgame/internal/match"
	"github.com/mind-engage/mindengage-matchgame/internal/metrics"
	"github.com/mind-engage/mindengage-matchgame/internal/origin"
	"github.com/mind-engage/mindengage-matchgame/internal/protocol"
	"github.com/mind-engage/mindengage-matchgame/internal/report"
)

var ErrNoRound = errors.New("no round loaded")

// SubmitPolicy decides when a result leaves the widget.
type SubmitPolicy string

const (
	// SubmitManual sends only on an explicit submit.
	SubmitManual SubmitPolicy = "manual"
	// SubmitOnComplete also sends once, automatically, when the last match lands.
	SubmitOnComplete SubmitPolicy = "on_complete"
	SubmitBoth       SubmitPolicy = "both"
)

// ParseSubmitPolicy maps a config value, defaulting to manual.
func ParseSubmitPolicy(s string) SubmitPolicy {
	switch SubmitPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case SubmitOnComplete:
		return SubmitOnComplete
	case SubmitBoth:
		return SubmitBoth
	default:
		return SubmitManual
	}
}

func (p SubmitPolicy) auto() bool { return p == SubmitOnComplete || p == SubmitBoth }

// User-facing error texts.
const (
	textMalformed  = "Could not load the questions sent by the page."
	textUnsolvable = "This question has no explanations to match yet."
	textEmptyPool  = "There are no questions to play."
)

type Options struct {
	Allow       origin.Allowlist
	DisplaySize int
	Policy      SubmitPolicy
	Builder     *match.Builder
	Reporter    *report.Reporter
	// NewRoundID defaults to uuid.NewString.
	NewRoundID func() string
}

// Shell owns the one mutable session of a widget instance. All methods are
// serialised by mu, so events from the host and from the player never
// interleave.
type Shell struct {
	mu     sync.Mutex
	opts   Options
	poster report.Poster

	session   match.Session
	errText   string
	submitted bool
	autoSent  bool
}

func New(opts Options, p report.Poster) *Shell {
	if opts.Builder == nil {
		opts.Builder = match.NewBuilder(nil)
	}
	if opts.Reporter == nil {
		opts.Reporter = &report.Reporter{Allow: opts.Allow}
	}
	if opts.NewRoundID == nil {
		opts.NewRoundID = uuid.NewString
	}
	if opts.Policy == "" {
		opts.Policy = SubmitManual
	}
	return &Shell{opts: opts, poster: p}
}

// HandleMessage processes one message relayed from the host window. A
// rejected origin leaves everything untouched; a malformed or unplayable
// message keeps the current round and sets the error text.
func (sh *Shell) HandleMessage(ctx context.Context, messageOrigin string, body []byte) error {
	if err := origin.Check(messageOrigin, sh.opts.Allow); err != nil {
		log.Printf("host message dropped: origin %q: %v", messageOrigin, err)
		metrics.HostMessages.WithLabelValues(metrics.RejectedOrigin).Inc()
		return err
	}

	sh.mu.Lock()
	defer sh.mu.Unlock()

	in, err := protocol.Parse(body)
	if err != nil {
		log.Printf("host message dropped: %v", err)
		metrics.HostMessages.WithLabelValues(metrics.Malformed).Inc()
		return sh.fail(ctx, textMalformed, err)
	}

	main := in.Main
	round, err := sh.opts.Builder.Build(&main, in.Others, sh.opts.DisplaySize)
	switch {
	case errors.Is(err, match.ErrUnsolvableRound):
		log.Printf("host message dropped: %v", err)
		metrics.HostMessages.WithLabelValues(metrics.Unsolvable).Inc()
		return sh.fail(ctx, textUnsolvable, err)
	case errors.Is(err, match.ErrEmptyPool):
		log.Printf("host message dropped: %v", err)
		metrics.HostMessages.WithLabelValues(metrics.Unsolvable).Inc()
		return sh.fail(ctx, textEmptyPool, err)
	case err != nil:
		return sh.fail(ctx, textMalformed, err)
	}
	if len(round.Excluded) > 0 {
		log.Printf("question %s: excluded pool questions without explanations: %s", main.ID, strings.Join(round.Excluded, ","))
	}

	s := match.NewSession(&main, round)
	s.RoundID = sh.opts.NewRoundID()
	sh.session, sh.errText, sh.submitted, sh.autoSent = s, "", false, false
	metrics.HostMessages.WithLabelValues(metrics.Accepted).Inc()

	sh.notify(ctx, protocol.Envelope{Type: protocol.GameReady, Payload: protocol.ReadyPayload{
		RoundID:           s.RoundID,
		QuestionID:        main.ID,
		TotalMatches:      s.TotalCount(),
		ExcludedQuestions: round.Excluded,
	}})
	return nil
}

func (sh *Shell) fail(ctx context.Context, text string, err error) error {
	sh.errText = text
	sh.notify(ctx, protocol.Envelope{Type: protocol.GameError, Payload: protocol.ErrorPayload{Message: text}})
	return err
}

func (sh *Shell) notify(ctx context.Context, env protocol.Envelope) {
	if err := sh.opts.Reporter.Notify(ctx, env, sh.poster); err != nil {
		log.Printf("notify %s: %v", env.Type, err)
	}
}

func (sh *Shell) SelectQuestion(id string) {
	sh.mu.Lock()
	defer sh.mu.Unlock()
	sh.session = sh.session.SelectQuestion(id)
}

func (sh *Shell) Deselect() {
	sh.mu.Lock()
	defer sh.mu.Unlock()
	sh.session = sh.session.Deselect()
}

// SelectExplanation applies the player's pick. When it records a match the
// match is announced, and a completing match triggers the automatic submit
// under an on_complete policy.
func (sh *Shell) SelectExplanation(ctx context.Context, id string) error {
	sh.mu.Lock()
	defer sh.mu.Unlock()

	before := len(sh.session.Matches)
	sh.session = sh.session.SelectExplanation(id)
	if len(sh.session.Matches) == before {
		return nil
	}

	m, _ := sh.session.LastMatch()
	metrics.Matches.WithLabelValues(metrics.Bool(m.IsCorrect)).Inc()
	sh.notify(ctx, protocol.Envelope{Type: protocol.MatchCompleted, Payload: protocol.MatchPayload{
		RoundID:        sh.session.RoundID,
		QuestionID:     m.QuestionID,
		ExplanationID:  m.ExplanationID,
		IsCorrect:      m.IsCorrect,
		CorrectMatches: sh.session.CorrectCount(),
		TotalMatches:   sh.session.TotalCount(),
	}})

	if sh.session.IsComplete() && sh.opts.Policy.auto() && !sh.autoSent {
		sh.autoSent = true
		return sh.submit(ctx)
	}
	return nil
}

// Submit sends the current result to the host, complete or not.
func (sh *Shell) Submit(ctx context.Context) error {
	sh.mu.Lock()
	defer sh.mu.Unlock()
	return sh.submit(ctx)
}

func (sh *Shell) submit(ctx context.Context) error {
	if sh.session.Empty() {
		return ErrNoRound
	}
	sh.submitted = true
	if err := sh.opts.Reporter.Report(ctx, sh.session, sh.poster); err != nil {
		return fmt.Errorf("submit round %s: %w", sh.session.RoundID, err)
	}
	return nil
}

// View returns the render model of the current state.
func (sh *Shell) View() View {
	sh.mu.Lock()
	defer sh.mu.Unlock()
	v := render(sh.session)
	v.Error = sh.errText
	v.Submitted = sh.submitted
	return v
}

// Session returns a copy of the current session.
func (sh *Shell) Session() match.Session {
	sh.mu.Lock()
	defer sh.mu.Unlock()
	return sh.session
}
