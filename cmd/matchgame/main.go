package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/joho/godotenv"

	api "github.com/mind-engage/mindengage-matchgame/internal/api/http"
	"github.com/mind-engage/mindengage-matchgame/internal/auth"
	"github.com/mind-engage/mindengage-matchgame/internal/config"
	"github.com/mind-engage/mindengage-matchgame/internal/db"
	"github.com/mind-engage/mindengage-matchgame/internal/event"
	"github.com/mind-engage/mindengage-matchgame/internal/match"
	"github.com/mind-engage/mindengage-matchgame/internal/origin"
	"github.com/mind-engage/mindengage-matchgame/internal/report"
	syncx "github.com/mind-engage/mindengage-matchgame/internal/sync"
	"github.com/mind-engage/mindengage-matchgame/internal/widget"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env loaded: %v", err)
	}
	cfg, err := config.FromEnv()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	allow := origin.Allowlist(cfg.IframeOrigins)

	// --- Result sinks ---
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var (
		sinks  []report.Sink
		ledger api.ResultLedger
		ready  []api.Pinger
	)
	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		log.Fatalf("db open failed: %v", err)
	}
	if dbh != nil {
		defer dbh.Close()
		repo := syncx.NewEventRepo(dbh, "")
		sinks = append(sinks, repo)
		ledger = repo
		ready = append(ready, repo)
	}
	if cfg.RabbitMQURI != "" {
		pub, err := event.NewPublisher(cfg.RabbitMQURI, cfg.RabbitMQExchange)
		if err != nil {
			log.Fatalf("rabbitmq: %v", err)
		}
		defer pub.Close()
		sinks = append(sinks, pub)
	} else {
		log.Println("RABBITMQ_URI is empty, result publishing is disabled")
	}

	signer := auth.NewResultSigner(cfg.ResultSigningKey)
	reporter := &report.Reporter{
		Allow:       allow,
		Signer:      signer,
		Sinks:       sinks,
		SinkTimeout: cfg.SinkTimeout,
		Progress:    cfg.EmitProgressEvents,
	}
	builder := match.NewBuilder(nil)
	policy := widget.ParseSubmitPolicy(cfg.SubmitPolicy)

	newShell := func(p report.Poster) *widget.Shell {
		return widget.New(widget.Options{
			Allow:       allow,
			DisplaySize: cfg.DisplaySize,
			Policy:      policy,
			Builder:     builder,
			Reporter:    reporter,
		}, p)
	}

	r := api.NewRouter(api.RouterDeps{
		Allow:    allow,
		NewShell: newShell,
		Ledger:   ledger,
		Signer:   signer,
		Ready:    ready,
	})

	log.Printf("listening on %s (db=%s, origins=%s, submit=%s)",
		cfg.HTTPAddr, cfg.DBDriver, allow, policy)
	log.Fatal(http.ListenAndServe(cfg.HTTPAddr, r))
}
