package report

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/mind-engage/mindengage-matchgame/internal/metrics"
	"github.com/mind-engage/mindengage-matchgame/internal/origin"
	"github.com/mind-engage/mindengage-matchgame/internal/protocol"
)

// Poster delivers an envelope to the host window, scoped to targetOrigin.
type Poster interface {
	PostMessage(ctx context.Context, targetOrigin string, env protocol.Envelope) error
}

// PosterFunc adapts a function to Poster.
type PosterFunc func(ctx context.Context, targetOrigin string, env protocol.Envelope) error

func (f PosterFunc) PostMessage(ctx context.Context, targetOrigin string, env protocol.Envelope) error {
	return f(ctx, targetOrigin, env)
}

// Dispatch posts env once per allow-listed origin. The wildcard target is
// never used, and neither is "null", which a window cannot be addressed by.
// A failed post does not stop the remaining ones.
func Dispatch(ctx context.Context, env protocol.Envelope, allow origin.Allowlist, p Poster) error {
	var errs []error
	for _, o := range allow {
		if o == "*" || o == origin.Null {
			continue
		}
		if err := p.PostMessage(ctx, o, env); err != nil {
			metrics.Dispatches.WithLabelValues(string(env.Type), "error").Inc()
			errs = append(errs, fmt.Errorf("post to %s: %w", o, err))
			continue
		}
		metrics.Dispatches.WithLabelValues(string(env.Type), "ok").Inc()
	}
	if len(errs) > 0 {
		log.Printf("dispatch %s: %v", env.Type, errors.Join(errs...))
	}
	return errors.Join(errs...)
}
