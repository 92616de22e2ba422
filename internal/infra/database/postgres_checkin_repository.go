package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"mood_checkin_bot/internal/domain/checkin"

	_ "github.com/lib/pq" // PostgreSQL driver
)

// Custom errors
var ErrUserNotFound = fmt.Errorf("user not found")
var ErrDuplicateSlot = fmt.Errorf("score for this day and slot already recorded")

type PostgresCheckinRepository struct {
	db *sql.DB
}

func NewPostgresCheckinRepository(db *sql.DB) *PostgresCheckinRepository {
	return &PostgresCheckinRepository{db: db}
}

func (r *PostgresCheckinRepository) CreateUser(ctx context.Context, u *checkin.User) error {
	query := `INSERT INTO users (telegram_id, display_name, joined_at)
              VALUES ($1, $2, $3)
              ON CONFLICT (telegram_id) DO NOTHING
              RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query, u.TelegramID, u.DisplayName, u.JoinedAt).Scan(&u.ID, &u.CreatedAt)
	if err == sql.ErrNoRows {
		// Already present; joined_at is immutable, so leave the row alone.
		existing, err := r.GetByTelegramID(ctx, u.TelegramID)
		if err != nil {
			return err
		}
		*u = *existing
		return nil
	}
	if err != nil {
		return fmt.Errorf("error creating user: %w", err)
	}
	return nil
}

func (r *PostgresCheckinRepository) GetByTelegramID(ctx context.Context, telegramID int64) (*checkin.User, error) {
	query := `SELECT id, telegram_id, display_name, joined_at, created_at
              FROM users WHERE telegram_id = $1`
	u := &checkin.User{}
	err := r.db.QueryRowContext(ctx, query, telegramID).Scan(&u.ID, &u.TelegramID, &u.DisplayName, &u.JoinedAt, &u.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("error getting user by telegram ID: %w", err)
	}
	return u, nil
}

func (r *PostgresCheckinRepository) ListUsers(ctx context.Context) ([]*checkin.User, error) {
	query := `SELECT id, telegram_id, display_name, joined_at, created_at
              FROM users ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error listing users: %w", err)
	}
	defer rows.Close()

	var users []*checkin.User
	for rows.Next() {
		u := &checkin.User{}
		if err := rows.Scan(&u.ID, &u.TelegramID, &u.DisplayName, &u.JoinedAt, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning user row: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *PostgresCheckinRepository) EnsureDays(ctx context.Context, telegramID int64, days []string) error {
	if len(days) == 0 {
		return nil
	}
	// Single multi-row insert; existing day keys are left untouched.
	var sb strings.Builder
	sb.WriteString(`INSERT INTO report_days (telegram_id, day) VALUES `)
	args := make([]interface{}, 0, len(days)+1)
	args = append(args, telegramID)
	for i, day := range days {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(fmt.Sprintf("($1, $%d)", i+2))
		args = append(args, day)
	}
	sb.WriteString(` ON CONFLICT (telegram_id, day) DO NOTHING`)

	if _, err := r.db.ExecContext(ctx, sb.String(), args...); err != nil {
		return fmt.Errorf("error backfilling day entries: %w", err)
	}
	return nil
}

func (r *PostgresCheckinRepository) CountDays(ctx context.Context, telegramID int64) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM report_days WHERE telegram_id = $1`, telegramID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("error counting day entries: %w", err)
	}
	return n, nil
}

func (r *PostgresCheckinRepository) InsertScore(ctx context.Context, telegramID int64, day, slot string, score int) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error starting score transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO report_days (telegram_id, day) VALUES ($1, $2)
         ON CONFLICT (telegram_id, day) DO NOTHING`, telegramID, day); err != nil {
		return fmt.Errorf("error ensuring day entry: %w", err)
	}

	res, err := tx.ExecContext(ctx,
		`INSERT INTO reports (telegram_id, day, slot, score) VALUES ($1, $2, $3, $4)
         ON CONFLICT (telegram_id, day, slot) DO NOTHING`, telegramID, day, slot, score)
	if err != nil {
		return fmt.Errorf("error inserting score: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error reading insert result: %w", err)
	}
	if affected == 0 {
		// First write wins; the stored value is never overwritten.
		return ErrDuplicateSlot
	}
	return tx.Commit()
}

func (r *PostgresCheckinRepository) HasScore(ctx context.Context, telegramID int64, day, slot string) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx,
		`SELECT 1 FROM reports WHERE telegram_id = $1 AND day = $2 AND slot = $3`,
		telegramID, day, slot).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("error checking score: %w", err)
	}
	return true, nil
}

func (r *PostgresCheckinRepository) ScoresForDay(ctx context.Context, telegramID int64, day string) (map[string]int, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT slot, score FROM reports WHERE telegram_id = $1 AND day = $2`, telegramID, day)
	if err != nil {
		return nil, fmt.Errorf("error reading day scores: %w", err)
	}
	defer rows.Close()

	scores := make(map[string]int)
	for rows.Next() {
		var slot string
		var score int
		if err := rows.Scan(&slot, &score); err != nil {
			return nil, fmt.Errorf("error scanning score row: %w", err)
		}
		scores[slot] = score
	}
	return scores, rows.Err()
}

func (r *PostgresCheckinRepository) RecentDays(ctx context.Context, telegramID int64, limit int) ([]checkin.DayScores, error) {
	query := `
        SELECT d.day, r.slot, r.score
        FROM (
            SELECT day FROM report_days
            WHERE telegram_id = $1
            ORDER BY day DESC
            LIMIT $2
        ) d
        LEFT JOIN reports r ON r.telegram_id = $1 AND r.day = d.day
        ORDER BY d.day ASC, r.slot ASC`
	rows, err := r.db.QueryContext(ctx, query, telegramID, limit)
	if err != nil {
		return nil, fmt.Errorf("error reading recent days: %w", err)
	}
	defer rows.Close()

	var result []checkin.DayScores
	byDay := make(map[string]int) // day -> index in result
	for rows.Next() {
		var day string
		var slot sql.NullString
		var score sql.NullInt64
		if err := rows.Scan(&day, &slot, &score); err != nil {
			return nil, fmt.Errorf("error scanning recent day row: %w", err)
		}
		idx, ok := byDay[day]
		if !ok {
			result = append(result, checkin.DayScores{Day: day, Scores: make(map[string]int)})
			idx = len(result) - 1
			byDay[day] = idx
		}
		if slot.Valid && score.Valid {
			result[idx].Scores[slot.String] = int(score.Int64)
		}
	}
	return result, rows.Err()
}

func (r *PostgresCheckinRepository) ListReports(ctx context.Context, telegramID int64) ([]checkin.Report, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT day, slot, score FROM reports
         WHERE telegram_id = $1 ORDER BY day ASC, slot ASC`, telegramID)
	if err != nil {
		return nil, fmt.Errorf("error listing reports: %w", err)
	}
	defer rows.Close()

	var reports []checkin.Report
	for rows.Next() {
		var rep checkin.Report
		if err := rows.Scan(&rep.Day, &rep.Slot, &rep.Score); err != nil {
			return nil, fmt.Errorf("error scanning report row: %w", err)
		}
		reports = append(reports, rep)
	}
	return reports, rows.Err()
}

func (r *PostgresCheckinRepository) AppendNote(ctx context.Context, telegramID int64, at time.Time, body string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO notes (telegram_id, created_at, body) VALUES ($1, $2, $3)`,
		telegramID, at, body)
	if err != nil {
		return fmt.Errorf("error appending note: %w", err)
	}
	return nil
}

func (r *PostgresCheckinRepository) ListNotes(ctx context.Context, telegramID int64) ([]checkin.Note, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, telegram_id, created_at, body FROM notes
         WHERE telegram_id = $1 ORDER BY created_at ASC, id ASC`, telegramID)
	if err != nil {
		return nil, fmt.Errorf("error listing notes: %w", err)
	}
	defer rows.Close()

	var notes []checkin.Note
	for rows.Next() {
		var n checkin.Note
		if err := rows.Scan(&n.ID, &n.TelegramID, &n.CreatedAt, &n.Body); err != nil {
			return nil, fmt.Errorf("error scanning note row: %w", err)
		}
		notes = append(notes, n)
	}
	return notes, rows.Err()
}
