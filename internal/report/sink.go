package report

import (
	"context"
	"log"
	"time"

	"github.com/mind-engage/mindengage-matchgame/internal/metrics"
	"github.com/mind-engage/mindengage-matchgame/internal/protocol"
)

// Sink receives finished results after they were dispatched to the host.
type Sink interface {
	Name() string
	Record(ctx context.Context, roundID string, env protocol.Envelope) error
}

// Offer hands env to every sink under a bounded context. Failures are logged
// and counted but never returned.
func Offer(ctx context.Context, timeout time.Duration, sinks []Sink, roundID string, env protocol.Envelope) {
	if len(sinks) == 0 {
		return
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()
	for _, s := range sinks {
		if err := s.Record(ctx, roundID, env); err != nil {
			log.Printf("sink %s: round %s: %v", s.Name(), roundID, err)
			metrics.SinkWrites.WithLabelValues(s.Name(), "error").Inc()
			continue
		}
		metrics.SinkWrites.WithLabelValues(s.Name(), "ok").Inc()
	}
}
