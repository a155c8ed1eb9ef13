package schedule

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/draftforge/cubeleague/go/internal/apperrors"
	"github.com/draftforge/cubeleague/go/internal/models"
)

// Repository implements schedule data access operations
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new schedule repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// CreateWeek creates a schedule week
func (r *Repository) CreateWeek(ctx context.Context, req CreateWeekRequest) (*models.ScheduleWeek, error) {
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO schedule_weeks (id, season_id, week_number)
		VALUES ($1, $2, $3)
		RETURNING id, season_id, week_number`,
		uuid.New(), req.SeasonID, req.WeekNumber)

	var week models.ScheduleWeek
	if err := row.Scan(&week.ID, &week.SeasonID, &week.WeekNumber); err != nil {
		return nil, fmt.Errorf("failed to create schedule week: %w", err)
	}

	return &week, nil
}

// CreateMatch schedules a match in a week
func (r *Repository) CreateMatch(ctx context.Context, req CreateMatchRequest) (*models.Match, error) {
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO matches (id, week_id, home_team_id, away_team_id, home_wins, away_wins, completed)
		VALUES ($1, $2, $3, $4, 0, 0, false)
		RETURNING id, week_id, home_team_id, away_team_id, home_wins, away_wins, completed`,
		uuid.New(), req.WeekID, req.HomeTeamID, req.AwayTeamID)

	var match models.Match
	if err := scanMatch(row, &match); err != nil {
		return nil, fmt.Errorf("failed to create match: %w", err)
	}

	return &match, nil
}

// ReportResult records a match outcome and marks it completed
func (r *Repository) ReportResult(ctx context.Context, req ReportResultRequest) (*models.Match, error) {
	row := r.db.QueryRowContext(ctx, `
		UPDATE matches
		SET home_wins = $2, away_wins = $3, completed = true
		WHERE id = $1
		RETURNING id, week_id, home_team_id, away_team_id, home_wins, away_wins, completed`,
		req.MatchID, req.HomeWins, req.AwayWins)

	var match models.Match
	err := scanMatch(row, &match)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.Newf(apperrors.KindNotFound, "match %s not found", req.MatchID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to report match result: %w", err)
	}

	return &match, nil
}

// ListMatchesBySeason retrieves all matches in a season's schedule weeks
func (r *Repository) ListMatchesBySeason(ctx context.Context, seasonID uuid.UUID) ([]models.Match, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT m.id, m.week_id, m.home_team_id, m.away_team_id, m.home_wins, m.away_wins, m.completed
		FROM matches m
		JOIN schedule_weeks w ON w.id = m.week_id
		WHERE w.season_id = $1
		ORDER BY w.week_number`, seasonID)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches by season: %w", err)
	}
	defer rows.Close()

	var matches []models.Match
	for rows.Next() {
		var match models.Match
		if err := scanMatch(rows, &match); err != nil {
			return nil, fmt.Errorf("failed to scan match: %w", err)
		}
		matches = append(matches, match)
	}

	return matches, rows.Err()
}

// SeasonRecords aggregates per-team win/loss records from completed matches
// in the season's schedule weeks. Teams without completed matches are absent.
func (r *Repository) SeasonRecords(ctx context.Context, seasonID uuid.UUID) (map[uuid.UUID]models.TeamRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT team_id, SUM(wins) AS wins, SUM(losses) AS losses
		FROM (
			SELECT m.home_team_id AS team_id, m.home_wins AS wins, m.away_wins AS losses
			FROM matches m
			JOIN schedule_weeks w ON w.id = m.week_id
			WHERE w.season_id = $1 AND m.completed
			UNION ALL
			SELECT m.away_team_id, m.away_wins, m.home_wins
			FROM matches m
			JOIN schedule_weeks w ON w.id = m.week_id
			WHERE w.season_id = $1 AND m.completed
		) results
		GROUP BY team_id`, seasonID)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate season records: %w", err)
	}
	defer rows.Close()

	records := make(map[uuid.UUID]models.TeamRecord)
	for rows.Next() {
		var record models.TeamRecord
		if err := rows.Scan(&record.TeamID, &record.Wins, &record.Losses); err != nil {
			return nil, fmt.Errorf("failed to scan season record: %w", err)
		}
		records[record.TeamID] = record
	}

	return records, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMatch(row rowScanner, match *models.Match) error {
	return row.Scan(&match.ID, &match.WeekID, &match.HomeTeamID, &match.AwayTeamID, &match.HomeWins, &match.AwayWins, &match.Completed)
}
