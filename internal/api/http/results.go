package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mind-engage/mindengage-matchgame/internal/auth"
	syncx "github.com/mind-engage/mindengage-matchgame/internal/sync"
)

// ResultLedger is the read side of the result ledger.
type ResultLedger interface {
	Latest(ctx context.Context, key string) (syncx.Event, error)
}

// GET /results/{roundID}
func GetResultHandler(ledger ResultLedger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ledger == nil {
			http.Error(w, "result ledger disabled", http.StatusNotFound)
			return
		}
		e, err := ledger.Latest(r.Context(), chi.URLParam(r, "roundID"))
		if errors.Is(err, syncx.ErrNotFound) {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		if err != nil {
			http.Error(w, "db error", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(e)
	}
}

// POST /results/verify  { "token": "..." }
// Lets a host backend check a token carried in a GAME_COMPLETED payload.
func VerifyResultHandler(signer *auth.ResultSigner) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if signer == nil {
			http.Error(w, "result signing disabled", http.StatusNotFound)
			return
		}
		var req struct {
			Token string `json:"token"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Token == "" {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		c, err := signer.Parse(req.Token)
		if err != nil {
			http.Error(w, "bad token", http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"questionId":        c.Subject,
			"roundId":           c.RoundID,
			"answeredCorrectly": c.AnsweredCorrectly,
			"correctMatches":    c.CorrectMatches,
			"totalMatches":      c.TotalMatches,
		})
	}
}

// Pinger is anything readiness depends on.
type Pinger interface {
	Ping(ctx context.Context) error
}

func HealthzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) }
}

// ReadyzHandler fails while any dependency is unreachable.
func ReadyzHandler(deps ...Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		for _, d := range deps {
			if err := d.Ping(r.Context()); err != nil {
				http.Error(w, "not ready", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
	}
}
