package httpapi

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/draftforge/cubeleague/go/internal/apperrors"
	"github.com/draftforge/cubeleague/go/internal/cardpool"
	"github.com/draftforge/cubeleague/go/internal/draft/pick"
	"github.com/draftforge/cubeleague/go/internal/draft/session"
	"github.com/draftforge/cubeleague/go/internal/models"
	"github.com/draftforge/cubeleague/go/internal/schedule"
	"github.com/draftforge/cubeleague/go/internal/season"
	"github.com/draftforge/cubeleague/go/internal/teams"
	"github.com/draftforge/cubeleague/go/internal/vote"
)

func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, asValidation(err, "invalid "+name)
	}
	return id, nil
}

// Teams

func (s *Server) handleCreateTeam(w http.ResponseWriter, r *http.Request) {
	var req teams.CreateTeamRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	team, err := s.Teams.CreateTeam(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, team)
}

func (s *Server) handleListTeams(w http.ResponseWriter, r *http.Request) {
	list, err := s.Teams.ListTeams(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleGetTeam(w http.ResponseWriter, r *http.Request) {
	teamID, err := pathUUID(r, "teamID")
	if err != nil {
		writeError(w, err)
		return
	}
	team, err := s.Teams.GetTeamWithMembers(r.Context(), teamID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, team)
}

func (s *Server) handleAddMember(w http.ResponseWriter, r *http.Request) {
	teamID, err := pathUUID(r, "teamID")
	if err != nil {
		writeError(w, err)
		return
	}
	var req teams.AddMemberRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	req.TeamID = teamID
	member, err := s.Teams.AddMember(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, member)
}

func (s *Server) handleRemoveMember(w http.ResponseWriter, r *http.Request) {
	teamID, err := pathUUID(r, "teamID")
	if err != nil {
		writeError(w, err)
		return
	}
	userID, err := pathUUID(r, "userID")
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.Teams.RemoveMember(r.Context(), teamID, userID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

// Seasons

func (s *Server) handleCreateSeason(w http.ResponseWriter, r *http.Request) {
	var req season.CreateSeasonRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	created, err := s.Seasons.CreateSeason(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleListSeasons(w http.ResponseWriter, r *http.Request) {
	list, err := s.Seasons.ListSeasons(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleGetActiveSeason(w http.ResponseWriter, r *http.Request) {
	active, err := s.Seasons.GetActiveSeason(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, active)
}

func (s *Server) handleActivateSeason(w http.ResponseWriter, r *http.Request) {
	seasonID, err := pathUUID(r, "seasonID")
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.Seasons.ActivateSeason(r.Context(), seasonID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

// Schedule

func (s *Server) handleCreateWeek(w http.ResponseWriter, r *http.Request) {
	seasonID, err := pathUUID(r, "seasonID")
	if err != nil {
		writeError(w, err)
		return
	}
	var req schedule.CreateWeekRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	req.SeasonID = seasonID
	week, err := s.Schedule.CreateWeek(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, week)
}

func (s *Server) handleCreateMatch(w http.ResponseWriter, r *http.Request) {
	weekID, err := pathUUID(r, "weekID")
	if err != nil {
		writeError(w, err)
		return
	}
	var req schedule.CreateMatchRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	req.WeekID = weekID
	match, err := s.Schedule.CreateMatch(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, match)
}

func (s *Server) handleReportResult(w http.ResponseWriter, r *http.Request) {
	matchID, err := pathUUID(r, "matchID")
	if err != nil {
		writeError(w, err)
		return
	}
	var req schedule.ReportResultRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	req.MatchID = matchID
	match, err := s.Schedule.ReportResult(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, match)
}

func (s *Server) handleListMatches(w http.ResponseWriter, r *http.Request) {
	seasonID, err := pathUUID(r, "seasonID")
	if err != nil {
		writeError(w, err)
		return
	}
	matches, err := s.Schedule.ListMatchesBySeason(r.Context(), seasonID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, matches)
}

func (s *Server) handleSeasonRecords(w http.ResponseWriter, r *http.Request) {
	seasonID, err := pathUUID(r, "seasonID")
	if err != nil {
		writeError(w, err)
		return
	}
	records, err := s.Schedule.SeasonRecords(r.Context(), seasonID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

// Card pool

func (s *Server) handleAddCard(w http.ResponseWriter, r *http.Request) {
	seasonID, err := pathUUID(r, "seasonID")
	if err != nil {
		writeError(w, err)
		return
	}
	var req cardpool.AddCardRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	req.SeasonID = seasonID
	card, err := s.Cards.AddCard(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, card)
}

func (s *Server) handleListCards(w http.ResponseWriter, r *http.Request) {
	seasonID, err := pathUUID(r, "seasonID")
	if err != nil {
		writeError(w, err)
		return
	}
	req := cardpool.ListCardsRequest{
		SeasonID:  seasonID,
		Color:     r.URL.Query().Get("color"),
		Rarity:    r.URL.Query().Get("rarity"),
		Undrafted: r.URL.Query().Get("undrafted") == "true",
	}
	cards, err := s.Cards.ListCards(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cards)
}

func (s *Server) handleBackfillMetadata(w http.ResponseWriter, r *http.Request) {
	seasonID, err := pathUUID(r, "seasonID")
	if err != nil {
		writeError(w, err)
		return
	}
	report, err := s.Cards.BackfillMetadata(r.Context(), seasonID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleSyncElo(w http.ResponseWriter, r *http.Request) {
	seasonID, err := pathUUID(r, "seasonID")
	if err != nil {
		writeError(w, err)
		return
	}
	cubeID := r.URL.Query().Get("cube")
	if cubeID == "" {
		writeError(w, apperrors.New(apperrors.KindValidation, "cube query parameter is required"))
		return
	}
	report, err := s.Cards.SyncElo(r.Context(), seasonID, cubeID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// Draft order

func (s *Server) handleGenerateDraftOrder(w http.ResponseWriter, r *http.Request) {
	seasonID, err := pathUUID(r, "seasonID")
	if err != nil {
		writeError(w, err)
		return
	}
	entries, err := s.Orders.GenerateDraftOrder(r.Context(), seasonID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, entries)
}

func (s *Server) handleRegenerateDraftOrder(w http.ResponseWriter, r *http.Request) {
	seasonID, err := pathUUID(r, "seasonID")
	if err != nil {
		writeError(w, err)
		return
	}
	entries, err := s.Orders.RegenerateDraftOrder(r.Context(), seasonID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, entries)
}

func (s *Server) handleGetDraftOrder(w http.ResponseWriter, r *http.Request) {
	seasonID, err := pathUUID(r, "seasonID")
	if err != nil {
		writeError(w, err)
		return
	}
	entries, err := s.Orders.GetEntries(r.Context(), seasonID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleGetDraftStatus(w http.ResponseWriter, r *http.Request) {
	status, err := s.Orders.GetDraftStatus(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if status == nil {
		writeError(w, apperrors.New(apperrors.KindNotFound, "no draft in progress"))
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func (s *Server) handleCheckTimer(w http.ResponseWriter, r *http.Request) {
	result, err := s.Sessions.CheckActiveDraftTimer(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Draft sessions

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req session.CreateSessionRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	created, err := s.Sessions.CreateSession(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sessionID, err := pathUUID(r, "sessionID")
	if err != nil {
		writeError(w, err)
		return
	}
	got, err := s.Sessions.GetSession(r.Context(), sessionID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, got)
}

func (s *Server) handleActivateDraft(w http.ResponseWriter, r *http.Request) {
	s.sessionTransition(w, r, s.Sessions.ActivateDraft)
}

func (s *Server) handlePauseDraft(w http.ResponseWriter, r *http.Request) {
	s.sessionTransition(w, r, s.Sessions.PauseDraft)
}

func (s *Server) handleResumeDraft(w http.ResponseWriter, r *http.Request) {
	s.sessionTransition(w, r, s.Sessions.ResumeDraft)
}

func (s *Server) handleCompleteDraft(w http.ResponseWriter, r *http.Request) {
	s.sessionTransition(w, r, s.Sessions.CompleteDraft)
}

func (s *Server) handleMakePick(w http.ResponseWriter, r *http.Request) {
	sessionID, err := pathUUID(r, "sessionID")
	if err != nil {
		writeError(w, err)
		return
	}
	var req pick.AddDraftPickRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	drafted, err := s.Sessions.MakePick(r.Context(), sessionID, req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, drafted)
}

func (s *Server) handleListPicks(w http.ResponseWriter, r *http.Request) {
	sessionID, err := pathUUID(r, "sessionID")
	if err != nil {
		writeError(w, err)
		return
	}
	picks, err := s.Picks.ListPicksBySession(r.Context(), sessionID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, picks)
}

// Polls

func (s *Server) handleCreatePoll(w http.ResponseWriter, r *http.Request) {
	var req vote.CreatePollRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	poll, err := s.Votes.CreatePoll(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, poll)
}

func (s *Server) handleListPolls(w http.ResponseWriter, r *http.Request) {
	polls, err := s.Votes.ListPolls(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, polls)
}

func (s *Server) handleGetPoll(w http.ResponseWriter, r *http.Request) {
	pollID, err := pathUUID(r, "pollID")
	if err != nil {
		writeError(w, err)
		return
	}
	poll, err := s.Votes.GetPoll(r.Context(), pollID)
	if err != nil {
		writeError(w, err)
		return
	}
	options, err := s.Votes.ListOptions(r.Context(), pollID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"poll": poll, "options": options})
}

func (s *Server) handleCastVote(w http.ResponseWriter, r *http.Request) {
	pollID, err := pathUUID(r, "pollID")
	if err != nil {
		writeError(w, err)
		return
	}
	var req vote.CastVoteRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	req.PollID = pollID
	ballot, err := s.Votes.CastVote(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, ballot)
}

func (s *Server) handleClosePoll(w http.ResponseWriter, r *http.Request) {
	pollID, err := pathUUID(r, "pollID")
	if err != nil {
		writeError(w, err)
		return
	}
	poll, err := s.Votes.ClosePoll(r.Context(), pollID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, poll)
}

func (s *Server) handlePollResults(w http.ResponseWriter, r *http.Request) {
	pollID, err := pathUUID(r, "pollID")
	if err != nil {
		writeError(w, err)
		return
	}
	results, err := s.Votes.Results(r.Context(), pollID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, results)
}

// sessionTransition runs one of the session lifecycle operations addressed
// by session ID in the path.
func (s *Server) sessionTransition(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, id uuid.UUID) (*models.DraftSession, error)) {
	sessionID, err := pathUUID(r, "sessionID")
	if err != nil {
		writeError(w, err)
		return
	}
	updated, err := op(r.Context(), sessionID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}
