package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/draftforge/cubeleague/go/internal/auth"
	"github.com/draftforge/cubeleague/go/internal/cardpool"
	"github.com/draftforge/cubeleague/go/internal/draft/gateway"
	"github.com/draftforge/cubeleague/go/internal/draft/order"
	"github.com/draftforge/cubeleague/go/internal/draft/pick"
	"github.com/draftforge/cubeleague/go/internal/draft/session"
	"github.com/draftforge/cubeleague/go/internal/schedule"
	"github.com/draftforge/cubeleague/go/internal/season"
	"github.com/draftforge/cubeleague/go/internal/teams"
	"github.com/draftforge/cubeleague/go/internal/vote"
)

// Server bundles the domain apps behind the HTTP surface.
type Server struct {
	Teams    *teams.App
	Seasons  *season.App
	Schedule *schedule.App
	Cards    *cardpool.App
	Orders   *order.App
	Sessions *session.App
	Picks    *pick.App
	Votes    *vote.App
	Events   *gateway.Handler
}

// SetupRoutes builds the router for the whole API.
func (s *Server) SetupRoutes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(auth.Middleware)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	r.Route("/api", func(r chi.Router) {
		// Teams and rosters
		r.Post("/teams", s.handleCreateTeam)
		r.Get("/teams", s.handleListTeams)
		r.Get("/teams/{teamID}", s.handleGetTeam)
		r.Post("/teams/{teamID}/members", s.handleAddMember)
		r.Delete("/teams/{teamID}/members/{userID}", s.handleRemoveMember)

		// Seasons
		r.Post("/seasons", s.handleCreateSeason)
		r.Get("/seasons", s.handleListSeasons)
		r.Get("/seasons/active", s.handleGetActiveSeason)
		r.Post("/seasons/{seasonID}/activate", s.handleActivateSeason)

		// Schedule
		r.Post("/seasons/{seasonID}/weeks", s.handleCreateWeek)
		r.Post("/weeks/{weekID}/matches", s.handleCreateMatch)
		r.Post("/matches/{matchID}/result", s.handleReportResult)
		r.Get("/seasons/{seasonID}/matches", s.handleListMatches)
		r.Get("/seasons/{seasonID}/records", s.handleSeasonRecords)

		// Card pool
		r.Post("/seasons/{seasonID}/cards", s.handleAddCard)
		r.Get("/seasons/{seasonID}/cards", s.handleListCards)
		r.Post("/seasons/{seasonID}/cards/backfill", s.handleBackfillMetadata)
		r.Post("/seasons/{seasonID}/cards/sync-elo", s.handleSyncElo)

		// Draft order
		r.Post("/seasons/{seasonID}/draft-order", s.handleGenerateDraftOrder)
		r.Post("/seasons/{seasonID}/draft-order/regenerate", s.handleRegenerateDraftOrder)
		r.Get("/seasons/{seasonID}/draft-order", s.handleGetDraftOrder)
		r.Get("/draft/status", s.handleGetDraftStatus)
		r.Post("/draft/check-timer", s.handleCheckTimer)

		// Draft sessions
		r.Post("/drafts", s.handleCreateSession)
		r.Get("/drafts/{sessionID}", s.handleGetSession)
		r.Post("/drafts/{sessionID}/activate", s.handleActivateDraft)
		r.Post("/drafts/{sessionID}/pause", s.handlePauseDraft)
		r.Post("/drafts/{sessionID}/resume", s.handleResumeDraft)
		r.Post("/drafts/{sessionID}/complete", s.handleCompleteDraft)
		r.Post("/drafts/{sessionID}/picks", s.handleMakePick)
		r.Get("/drafts/{sessionID}/picks", s.handleListPicks)

		// Polls
		r.Post("/polls", s.handleCreatePoll)
		r.Get("/polls", s.handleListPolls)
		r.Get("/polls/{pollID}", s.handleGetPoll)
		r.Post("/polls/{pollID}/votes", s.handleCastVote)
		r.Post("/polls/{pollID}/close", s.handleClosePoll)
		r.Get("/polls/{pollID}/results", s.handlePollResults)
	})

	// Realtime event streams
	if s.Events != nil {
		s.Events.Routes(r)
	}

	return r
}
