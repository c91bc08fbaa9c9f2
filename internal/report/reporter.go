package report

import (
	"context"
	"log"
	"time"

	"github.com/mind-engage/mindengage-matchgame/internal/auth"
	"github.com/mind-engage/mindengage-matchgame/internal/match"
	"github.com/mind-engage/mindengage-matchgame/internal/metrics"
	"github.com/mind-engage/mindengage-matchgame/internal/origin"
	"github.com/mind-engage/mindengage-matchgame/internal/protocol"
)

// Reporter carries the process-wide reporting setup shared by every widget.
type Reporter struct {
	Allow       origin.Allowlist
	Signer      *auth.ResultSigner // nil: results go out unsigned
	Sinks       []Sink
	SinkTimeout time.Duration
	// Progress enables GAME_READY, MATCH_COMPLETED and GAME_ERROR.
	Progress bool
}

// Report sends the session's result to the host and then to the sinks.
func (r *Reporter) Report(ctx context.Context, s match.Session, p Poster) error {
	res := BuildResult(s)
	if r.Signer != nil {
		tok, err := r.Signer.Sign(res.QuestionID, auth.ResultClaims{
			RoundID:           res.RoundID,
			AnsweredCorrectly: res.AnsweredCorrectly,
			CorrectMatches:    res.CorrectMatches,
			TotalMatches:      res.TotalMatches,
		})
		if err != nil {
			log.Printf("sign result %s: %v", res.RoundID, err)
		} else {
			res.Token = tok
		}
	}
	env := protocol.Envelope{Type: protocol.GameCompleted, Payload: res}

	if res.Complete {
		metrics.RoundsCompleted.WithLabelValues(metrics.Bool(res.AnsweredCorrectly)).Inc()
	}
	err := Dispatch(ctx, env, r.Allow, p)
	Offer(ctx, r.SinkTimeout, r.Sinks, res.RoundID, env)
	return err
}

// Notify sends a progress envelope when progress events are enabled.
func (r *Reporter) Notify(ctx context.Context, env protocol.Envelope, p Poster) error {
	if !r.Progress {
		return nil
	}
	return Dispatch(ctx, env, r.Allow, p)
}
