package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/stefanpenner/tempo/pkg/engine"

	_ "modernc.org/sqlite"
)

// ErrNoEvaluation is returned when a day has not been evaluated.
var ErrNoEvaluation = errors.New("no evaluation for day")

const timeLayout = "2006-01-02T15:04:05Z07:00"

// Journal is the sqlite-backed history of fired events and daily
// evaluations. It implements engine.History.
type Journal struct {
	db *sql.DB
}

var _ engine.History = (*Journal)(nil)

// FiredEvent is a row of fired_events.
type FiredEvent struct {
	Day      string           `json:"day"`
	Key      string           `json:"key"`
	Kind     engine.EventKind `json:"kind"`
	BlockID  string           `json:"blockId,omitempty"`
	Activity string           `json:"activity,omitempty"`
	FiredAt  time.Time        `json:"firedAt"`
}

// Evaluation is the end-of-day check-in.
type Evaluation struct {
	Date             string `json:"date" validate:"required,datetime=2006-01-02"`
	Rating           int    `json:"rating" validate:"min=1,max=5"`
	PlanCompletion   string `json:"planCompletion" validate:"oneof=yes partial no"`
	Mood             string `json:"mood" validate:"oneof=great good neutral bad terrible"`
	Energy           int    `json:"energy" validate:"min=1,max=10"`
	Note             string `json:"note,omitempty" validate:"max=4000"`
	InteractionScore int    `json:"interactionScore" validate:"min=0"`
}

var validate = validator.New()

// Open opens (creating if needed) the journal database at path.
func Open(ctx context.Context, path string) (*Journal, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create journal dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// one writer; the daemon and the TUI each hold their own handle
	db.SetMaxOpenConns(1)

	j := &Journal{db: db}
	if err := j.ensureSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return j, nil
}

// Close releases the database.
func (j *Journal) Close() error {
	return j.db.Close()
}

func (j *Journal) ensureSchema(ctx context.Context) error {
	const ddl = `
PRAGMA busy_timeout = 5000;
CREATE TABLE IF NOT EXISTS fired_events (
  key TEXT PRIMARY KEY,
  day TEXT NOT NULL,
  kind TEXT NOT NULL,
  block_id TEXT,
  activity TEXT,
  fired_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS fired_events_day ON fired_events(day);
CREATE TABLE IF NOT EXISTS evaluations (
  date TEXT PRIMARY KEY,
  rating INTEGER NOT NULL,
  plan_completion TEXT NOT NULL,
  mood TEXT NOT NULL,
  energy INTEGER NOT NULL,
  note TEXT,
  interaction_score INTEGER NOT NULL,
  updated_at TEXT NOT NULL
);
`
	if _, err := j.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create journal tables: %w", err)
	}
	return nil
}

// Record stores a fired event. Recording the same key twice is a no-op.
func (j *Journal) Record(ctx context.Context, ev engine.Event) error {
	const stmt = `
INSERT INTO fired_events (key, day, kind, block_id, activity, fired_at)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(key) DO NOTHING;
`
	_, err := j.db.ExecContext(ctx, stmt,
		ev.Key,
		engine.DayKey(ev.At),
		string(ev.Kind),
		ev.BlockID,
		ev.Activity,
		ev.At.Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("record event: %w", err)
	}
	return nil
}

// FiredKeys returns the ledger keys already fired on day.
func (j *Journal) FiredKeys(ctx context.Context, day string) ([]string, error) {
	rows, err := j.db.QueryContext(ctx, `SELECT key FROM fired_events WHERE day = ? ORDER BY key`, day)
	if err != nil {
		return nil, fmt.Errorf("query fired keys: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("scan fired key: %w", err)
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// Fired lists the events fired on day in firing order.
func (j *Journal) Fired(ctx context.Context, day string) ([]FiredEvent, error) {
	rows, err := j.db.QueryContext(ctx, `
SELECT day, key, kind, COALESCE(block_id, ''), COALESCE(activity, ''), fired_at
FROM fired_events WHERE day = ? ORDER BY fired_at, key`, day)
	if err != nil {
		return nil, fmt.Errorf("query fired events: %w", err)
	}
	defer rows.Close()

	var out []FiredEvent
	for rows.Next() {
		var (
			ev      FiredEvent
			kind    string
			firedAt string
		)
		if err := rows.Scan(&ev.Day, &ev.Key, &kind, &ev.BlockID, &ev.Activity, &firedAt); err != nil {
			return nil, fmt.Errorf("scan fired event: %w", err)
		}
		ev.Kind = engine.EventKind(kind)
		if ev.FiredAt, err = time.Parse(timeLayout, firedAt); err != nil {
			return nil, fmt.Errorf("parse fired_at %q: %w", firedAt, err)
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}

// SaveEvaluation validates and upserts the evaluation for its date.
func (j *Journal) SaveEvaluation(ctx context.Context, ev Evaluation) error {
	if err := validate.Struct(ev); err != nil {
		return fmt.Errorf("invalid evaluation: %w", err)
	}
	const stmt = `
INSERT INTO evaluations (date, rating, plan_completion, mood, energy, note, interaction_score, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(date) DO UPDATE SET
  rating=excluded.rating,
  plan_completion=excluded.plan_completion,
  mood=excluded.mood,
  energy=excluded.energy,
  note=excluded.note,
  interaction_score=excluded.interaction_score,
  updated_at=excluded.updated_at;
`
	_, err := j.db.ExecContext(ctx, stmt,
		ev.Date,
		ev.Rating,
		ev.PlanCompletion,
		ev.Mood,
		ev.Energy,
		ev.Note,
		ev.InteractionScore,
		time.Now().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("upsert evaluation: %w", err)
	}
	return nil
}

// Evaluation returns the evaluation for date.
func (j *Journal) Evaluation(ctx context.Context, date string) (Evaluation, error) {
	row := j.db.QueryRowContext(ctx, `
SELECT date, rating, plan_completion, mood, energy, COALESCE(note, ''), interaction_score
FROM evaluations WHERE date = ?`, date)

	var ev Evaluation
	err := row.Scan(&ev.Date, &ev.Rating, &ev.PlanCompletion, &ev.Mood, &ev.Energy, &ev.Note, &ev.InteractionScore)
	if errors.Is(err, sql.ErrNoRows) {
		return Evaluation{}, fmt.Errorf("%s: %w", date, ErrNoEvaluation)
	}
	if err != nil {
		return Evaluation{}, fmt.Errorf("query evaluation: %w", err)
	}
	return ev, nil
}

// Evaluations returns the most recent evaluations, newest first.
func (j *Journal) Evaluations(ctx context.Context, limit int) ([]Evaluation, error) {
	rows, err := j.db.QueryContext(ctx, `
SELECT date, rating, plan_completion, mood, energy, COALESCE(note, ''), interaction_score
FROM evaluations ORDER BY date DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query evaluations: %w", err)
	}
	defer rows.Close()

	var out []Evaluation
	for rows.Next() {
		var ev Evaluation
		if err := rows.Scan(&ev.Date, &ev.Rating, &ev.PlanCompletion, &ev.Mood, &ev.Energy, &ev.Note, &ev.InteractionScore); err != nil {
			return nil, fmt.Errorf("scan evaluation: %w", err)
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}

// Streak counts consecutive evaluated days ending at today.
func (j *Journal) Streak(ctx context.Context, today time.Time) (int, error) {
	evals, err := j.Evaluations(ctx, 366)
	if err != nil {
		return 0, err
	}
	have := make(map[string]bool, len(evals))
	for _, ev := range evals {
		have[ev.Date] = true
	}

	streak := 0
	for d := today; have[engine.DayKey(d)]; d = d.AddDate(0, 0, -1) {
		streak++
	}
	return streak, nil
}
