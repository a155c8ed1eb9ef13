package main

import (
	"database/sql"

	"github.com/jonboulle/clockwork"

	"github.com/draftforge/cubeleague/go/clients/cubecobra_client"
	"github.com/draftforge/cubeleague/go/clients/scryfall_client"
	"github.com/draftforge/cubeleague/go/internal/auth"
	"github.com/draftforge/cubeleague/go/internal/cardpool"
	"github.com/draftforge/cubeleague/go/internal/draft/autodraft"
	"github.com/draftforge/cubeleague/go/internal/draft/gateway"
	"github.com/draftforge/cubeleague/go/internal/draft/orchestrator"
	"github.com/draftforge/cubeleague/go/internal/draft/order"
	"github.com/draftforge/cubeleague/go/internal/draft/outbox"
	"github.com/draftforge/cubeleague/go/internal/draft/pick"
	"github.com/draftforge/cubeleague/go/internal/draft/session"
	"github.com/draftforge/cubeleague/go/internal/httpapi"
	"github.com/draftforge/cubeleague/go/internal/schedule"
	"github.com/draftforge/cubeleague/go/internal/season"
	"github.com/draftforge/cubeleague/go/internal/teams"
	"github.com/draftforge/cubeleague/go/internal/vote"
)

type Services struct {
	API          *httpapi.Server
	Orchestrator *orchestrator.Orchestrator
	OutboxRepo   *outbox.Repository
	Hub          *gateway.Hub
}

func setupServices(database *sql.DB) *Services {
	// Wire up dependency injection chain
	// Database layer → Repository layer → App layer
	clock := clockwork.NewRealClock()

	// Auth
	authRepo := auth.NewRepository(database)
	authApp := auth.NewApp(authRepo)

	// Teams
	teamsRepo := teams.NewRepository(database)
	teamsApp := teams.NewApp(teamsRepo, authApp)

	// Seasons
	seasonRepo := season.NewRepository(database)
	seasonApp := season.NewApp(seasonRepo, authApp)

	// Schedule
	scheduleRepo := schedule.NewRepository(database)
	scheduleApp := schedule.NewApp(scheduleRepo, authApp)

	// Card pool
	cardRepo := cardpool.NewRepository(database)
	cardApp := cardpool.NewApp(cardRepo, scryfall_client.NewScryfallClient(), cubecobra_client.NewCubeCobraClient(), authApp)

	// Outbox
	outboxRepo := outbox.NewRepository(database)
	outboxApp := outbox.NewApp(outboxRepo)

	// Pick ledger
	sessionRepo := session.NewRepository(database)
	pickRepo := pick.NewRepository(database)
	pickApp := pick.NewApp(pickRepo, cardRepo, sessionRepo, teamsRepo, outboxApp, authApp)

	// Draft order engine
	orderRepo := order.NewRepository(database)
	orderApp := order.NewApp(orderRepo, seasonRepo, teamsRepo, scheduleRepo, sessionRepo, pickRepo, authApp)

	// Draft session state machine
	strategy := autodraft.NewBudgetStrategy(cardRepo)
	sessionApp := session.NewApp(sessionRepo, orderApp, seasonRepo, pickApp, strategy, outboxApp, authApp, clock)

	// Polls
	voteRepo := vote.NewRepository(database)
	voteApp := vote.NewApp(voteRepo, authApp, clock)

	// Event gateway
	hub := gateway.NewHub()

	api := &httpapi.Server{
		Teams:    teamsApp,
		Seasons:  seasonApp,
		Schedule: scheduleApp,
		Cards:    cardApp,
		Orders:   orderApp,
		Sessions: sessionApp,
		Picks:    pickApp,
		Votes:    voteApp,
		Events:   gateway.NewHandler(hub),
	}

	return &Services{
		API:          api,
		Orchestrator: orchestrator.NewOrchestrator(sessionApp),
		OutboxRepo:   outboxRepo,
		Hub:          hub,
	}
}
