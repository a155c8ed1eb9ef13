package order

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/draftforge/cubeleague/go/internal/apperrors"
	"github.com/draftforge/cubeleague/go/internal/auth"
	"github.com/draftforge/cubeleague/go/internal/models"
)

// OrderRepository defines what the app layer needs from the repository
type OrderRepository interface {
	CreateEntriesBatch(ctx context.Context, entries []models.DraftOrderEntry) error
	GetEntriesBySeason(ctx context.Context, seasonID uuid.UUID) ([]models.DraftOrderEntry, error)
	DeleteEntriesBySeason(ctx context.Context, seasonID uuid.UUID) (int, error)
}

// SeasonSource defines what the engine needs from the season domain
type SeasonSource interface {
	GetSeason(ctx context.Context, id uuid.UUID) (*models.Season, error)
	GetSeasonByNumber(ctx context.Context, number int) (*models.Season, error)
	GetActiveSeason(ctx context.Context) (*models.Season, error)
}

// TeamSource defines what the engine needs from the teams domain
type TeamSource interface {
	ListTeams(ctx context.Context) ([]models.Team, error)
}

// RecordSource defines what the engine needs from the schedule domain
type RecordSource interface {
	SeasonRecords(ctx context.Context, seasonID uuid.UUID) (map[uuid.UUID]models.TeamRecord, error)
}

// SessionSource locates the season's open draft session, if any
type SessionSource interface {
	GetOpenSessionBySeason(ctx context.Context, seasonID uuid.UUID) (*models.DraftSession, error)
}

// PickCounter counts ledger rows (including skips) per team for a session
type PickCounter interface {
	CountPicksByTeam(ctx context.Context, sessionID uuid.UUID) (map[uuid.UUID]int, error)
}

// AuthApp defines what the app layer needs from auth
type AuthApp interface {
	RequireAdmin(ctx context.Context) (*auth.Identity, error)
}

// App is the draft order engine: it computes and persists the once-per-season
// pick order and derives live draft status from it.
type App struct {
	repo     OrderRepository
	seasons  SeasonSource
	teams    TeamSource
	records  RecordSource
	sessions SessionSource
	picks    PickCounter
	auth     AuthApp
	maxTeams int
	lottery  *lottery
}

// NewApp creates a new draft order App
func NewApp(repo OrderRepository, seasons SeasonSource, teams TeamSource, records RecordSource, sessions SessionSource, picks PickCounter, auth AuthApp) *App {
	return &App{
		repo:     repo,
		seasons:  seasons,
		teams:    teams,
		records:  records,
		sessions: sessions,
		picks:    picks,
		auth:     auth,
		maxTeams: DefaultMaxLotteryTeams,
		lottery:  newLottery(),
	}
}

// GenerateDraftOrder computes and persists the pick order for a season.
// Worst prior-season record picks first; ties broken by the lowest randomly
// assigned lottery number. Admin only; fails if an order already exists.
func (a *App) GenerateDraftOrder(ctx context.Context, seasonID uuid.UUID) ([]models.DraftOrderEntry, error) {
	if _, err := a.auth.RequireAdmin(ctx); err != nil {
		return nil, err
	}

	season, err := a.seasons.GetSeason(ctx, seasonID)
	if err != nil {
		return nil, err
	}

	existing, err := a.repo.GetEntriesBySeason(ctx, seasonID)
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		return nil, apperrors.Newf(apperrors.KindConflict, "draft order already exists for season %d", season.Number)
	}

	teams, err := a.teams.ListTeams(ctx)
	if err != nil {
		return nil, err
	}
	if len(teams) == 0 {
		return nil, apperrors.New(apperrors.KindNotFound, "no teams found")
	}

	// Season 1 has no prior standings; every team defaults to 0-0.
	records := map[uuid.UUID]models.TeamRecord{}
	prev, err := a.seasons.GetSeasonByNumber(ctx, season.Number-1)
	if err != nil && !apperrors.IsKind(err, apperrors.KindNotFound) {
		return nil, err
	}
	if prev != nil {
		records, err = a.records.SeasonRecords(ctx, prev.ID)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.KindStore, "failed to look up prior season standings", err)
		}
	}

	entries := a.computeOrder(seasonID, teams, records)
	if err := a.repo.CreateEntriesBatch(ctx, entries); err != nil {
		return nil, err
	}

	log.Info().
		Str("season_id", seasonID.String()).
		Int("teams", len(entries)).
		Msg("generated draft order")
	return entries, nil
}

// RegenerateDraftOrder deletes a season's order and generates a fresh one.
// Standings are recomputed identically; lottery numbers are redrawn.
func (a *App) RegenerateDraftOrder(ctx context.Context, seasonID uuid.UUID) ([]models.DraftOrderEntry, error) {
	if _, err := a.auth.RequireAdmin(ctx); err != nil {
		return nil, err
	}

	deleted, err := a.repo.DeleteEntriesBySeason(ctx, seasonID)
	if err != nil {
		return nil, err
	}
	log.Info().Str("season_id", seasonID.String()).Int("deleted", deleted).Msg("cleared draft order for regeneration")

	return a.GenerateDraftOrder(ctx, seasonID)
}

// GetEntries returns a season's draft order by pick position.
func (a *App) GetEntries(ctx context.Context, seasonID uuid.UUID) ([]models.DraftOrderEntry, error) {
	return a.repo.GetEntriesBySeason(ctx, seasonID)
}

// GetDraftStatus derives on-the-clock/on-deck/round for the active season
// from the draft order and pick counts. Returns nil (no error) when there is
// no active season or no generated order.
func (a *App) GetDraftStatus(ctx context.Context) (*models.DraftStatus, error) {
	season, err := a.seasons.GetActiveSeason(ctx)
	if err != nil {
		if apperrors.IsKind(err, apperrors.KindNotFound) {
			return nil, nil
		}
		return nil, err
	}

	entries, err := a.repo.GetEntriesBySeason(ctx, season.ID)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, nil
	}

	// Before a session exists every team sits at zero picks.
	counts := map[uuid.UUID]int{}
	session, err := a.sessions.GetOpenSessionBySeason(ctx, season.ID)
	if err != nil && !apperrors.IsKind(err, apperrors.KindNotFound) {
		return nil, err
	}
	if session != nil {
		counts, err = a.picks.CountPicksByTeam(ctx, session.ID)
		if err != nil {
			return nil, err
		}
	}

	status := ComputeStatus(season.ID, entries, counts)
	return &status, nil
}

// ComputeStatus derives draft status from an order (sorted by pick position)
// and per-team pick counts. The on-the-clock team is the lowest pick position
// among teams at the minimum pick count; on deck is the next such team, or
// the order's first team when the round is about to roll over.
func ComputeStatus(seasonID uuid.UUID, entries []models.DraftOrderEntry, picksMade map[uuid.UUID]int) models.DraftStatus {
	minPicks := picksMade[entries[0].TeamID]
	for _, entry := range entries[1:] {
		if picksMade[entry.TeamID] < minPicks {
			minPicks = picksMade[entry.TeamID]
		}
	}

	var eligible []models.DraftOrderEntry
	for _, entry := range entries {
		if picksMade[entry.TeamID] == minPicks {
			eligible = append(eligible, entry)
		}
	}

	status := models.DraftStatus{
		SeasonID:     seasonID,
		CurrentRound: minPicks + 1,
		TotalTeams:   len(entries),
		PicksMade:    picksMade,
		OnTheClock:   eligible[0].TeamID,
	}
	if len(eligible) > 1 {
		status.OnDeck = eligible[1].TeamID
	} else {
		// Last pick of the round: the order's first team is up next.
		status.OnDeck = entries[0].TeamID
	}
	return status
}

// computeOrder assigns lottery numbers and pick positions from standings.
func (a *App) computeOrder(seasonID uuid.UUID, teams []models.Team, records map[uuid.UUID]models.TeamRecord) []models.DraftOrderEntry {
	max := a.maxTeams
	if len(teams) > max {
		max = len(teams)
	}
	numbers := a.lottery.Draw(max, len(teams))

	standings := make([]standing, len(teams))
	for i, team := range teams {
		record := records[team.ID]
		standings[i] = standing{
			TeamID:        team.ID,
			Wins:          record.Wins,
			Losses:        record.Losses,
			WinPct:        record.WinPct(),
			LotteryNumber: numbers[i],
		}
	}

	sort.Slice(standings, func(i, j int) bool {
		if standings[i].WinPct != standings[j].WinPct {
			return standings[i].WinPct < standings[j].WinPct
		}
		return standings[i].LotteryNumber < standings[j].LotteryNumber
	})

	// A shared win percentage means the lottery decided the tie.
	pctCounts := make(map[float64]int, len(standings))
	for _, s := range standings {
		pctCounts[s.WinPct]++
	}

	entries := make([]models.DraftOrderEntry, len(standings))
	for i, s := range standings {
		entries[i] = models.DraftOrderEntry{
			SeasonID:           seasonID,
			TeamID:             s.TeamID,
			PickPosition:       i + 1,
			PreviousSeasonWins: s.Wins,
			PreviousSeasonLoss: s.Losses,
			PreviousSeasonPct:  s.WinPct,
			LotteryNumber:      s.LotteryNumber,
			IsLotteryWinner:    pctCounts[s.WinPct] > 1,
		}
	}
	return entries
}
