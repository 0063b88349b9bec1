// Package store persists linkage runs, their matches, correlated pairs and
// advisory reviews in a local SQLite database so that long runs can be
// inspected while they execute and reviewed incrementally afterwards.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"nexo/internal/model"
)

// Store manages linkage result persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Run is one recorded execution of the matching pipeline.
type Run struct {
	ID            int64
	SourceDataset model.DatasetKind
	TargetDataset model.DatasetKind
	SourceCount   int
	TargetCount   int
	Status        string
	StartedAt     time.Time
	FinishedAt    *time.Time
}

// Run statuses.
const (
	RunRunning  = "running"
	RunComplete = "complete"
	RunFailed   = "failed"
)

// Pair is a persisted correlated pair enriched with the context the advisory
// review stage needs (person name and the free-text narratives of both
// records).
type Pair struct {
	ID              int64
	RunID           int64
	PersonName      string
	SourceNarrative string
	DeathNarrative  string
	model.CorrelatedPair
}

// Open initializes or connects to the results database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// BeginRun records the start of a matching run and returns its identifier.
func (s *Store) BeginRun(ctx context.Context, source, target model.DatasetKind, sourceCount, targetCount int) (int64, error) {
	res, err := s.db.ExecContext(
		ctx,
		`INSERT INTO runs (source_dataset, target_dataset, source_count, target_count, status, started_at)
         VALUES (?, ?, ?, ?, ?, ?)`,
		string(source),
		string(target),
		sourceCount,
		targetCount,
		RunRunning,
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	return id, nil
}

// FinishRun marks a run complete or failed.
func (s *Store) FinishRun(ctx context.Context, runID int64, status string) error {
	_, err := s.db.ExecContext(
		ctx,
		`UPDATE runs SET status = ?, finished_at = ? WHERE id = ?`,
		status,
		time.Now().UTC().Format(time.RFC3339Nano),
		runID,
	)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	return nil
}

// LatestRun returns the most recently started run, or nil when the database
// holds none.
func (s *Store) LatestRun(ctx context.Context) (*Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, source_dataset, target_dataset, source_count, target_count, status, started_at, finished_at
         FROM runs ORDER BY id DESC LIMIT 1`)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest run: %w", err)
	}
	return run, nil
}

// SaveMatches persists the results of one matching run in a single
// transaction.
func (s *Store) SaveMatches(ctx context.Context, runID int64, matches []model.MatchResult) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin matches tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO matches (run_id, source_id, target_id, source_dataset, target_dataset, pass, tier, score, matched_fields, confidence)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare matches insert: %w", err)
	}
	defer stmt.Close()

	for _, m := range matches {
		if _, err := stmt.ExecContext(ctx,
			runID,
			m.SourceID,
			m.TargetID,
			string(m.SourceDataset),
			string(m.TargetDataset),
			string(m.Pass),
			string(m.Tier),
			m.Score,
			strings.Join(m.MatchedFields, ","),
			string(m.Confidence),
		); err != nil {
			return fmt.Errorf("insert match %s->%s: %w", m.SourceID, m.TargetID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit matches: %w", err)
	}
	return nil
}

// MatchesByConfidence returns the matches of a run filtered by confidence, or
// all matches when confidence is empty.
func (s *Store) MatchesByConfidence(ctx context.Context, runID int64, confidence model.Confidence) ([]model.MatchResult, error) {
	query := `SELECT source_id, target_id, source_dataset, target_dataset, pass, tier, score, matched_fields, confidence
              FROM matches WHERE run_id = ?`
	args := []any{runID}
	if confidence != "" {
		query += ` AND confidence = ?`
		args = append(args, string(confidence))
	}
	query += ` ORDER BY score DESC, source_id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query matches: %w", err)
	}
	defer rows.Close()

	var out []model.MatchResult
	for rows.Next() {
		var (
			m      model.MatchResult
			src    string
			tgt    string
			pass   string
			tier   string
			fields string
			conf   string
		)
		if err := rows.Scan(&m.SourceID, &m.TargetID, &src, &tgt, &pass, &tier, &m.Score, &fields, &conf); err != nil {
			return nil, fmt.Errorf("scan match: %w", err)
		}
		m.SourceDataset = model.DatasetKind(src)
		m.TargetDataset = model.DatasetKind(tgt)
		m.Pass = model.Pass(pass)
		m.Tier = model.MatchTier(tier)
		m.Confidence = model.Confidence(conf)
		if fields != "" {
			m.MatchedFields = strings.Split(fields, ",")
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// SavePairs persists the correlated pairs of a run in a single transaction.
func (s *Store) SavePairs(ctx context.Context, runID int64, pairs []Pair) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin pairs tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO pairs (run_id, person_key, person_name, source_id, source_date, death_id, death_type, death_date,
                            elapsed_days, intervening, strength, source_narrative, death_narrative)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare pairs insert: %w", err)
	}
	defer stmt.Close()

	for _, p := range pairs {
		if _, err := stmt.ExecContext(ctx,
			runID,
			p.PersonKey,
			p.PersonName,
			p.Source.RecordID,
			p.Source.Date.UTC().Format(time.RFC3339Nano),
			p.Death.RecordID,
			string(p.Death.Type),
			p.Death.Date.UTC().Format(time.RFC3339Nano),
			p.ElapsedDays,
			boolToInt(p.Intervening),
			string(p.Strength),
			p.SourceNarrative,
			p.DeathNarrative,
		); err != nil {
			return fmt.Errorf("insert pair %s/%s: %w", p.Source.RecordID, p.Death.RecordID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit pairs: %w", err)
	}
	return nil
}

// PairsForRun returns every correlated pair of a run ordered by person key.
func (s *Store) PairsForRun(ctx context.Context, runID int64) ([]Pair, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, run_id, person_key, person_name, source_id, source_date, death_id, death_type, death_date,
                elapsed_days, intervening, strength, source_narrative, death_narrative
         FROM pairs WHERE run_id = ? ORDER BY person_key, source_id, death_id`, runID)
	if err != nil {
		return nil, fmt.Errorf("query pairs: %w", err)
	}
	defer rows.Close()

	var out []Pair
	for rows.Next() {
		p, err := scanPair(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// UnreviewedPairs returns a run's pairs that have no advisory review yet.
func (s *Store) UnreviewedPairs(ctx context.Context, runID int64) ([]Pair, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT p.id, p.run_id, p.person_key, p.person_name, p.source_id, p.source_date, p.death_id, p.death_type, p.death_date,
                p.elapsed_days, p.intervening, p.strength, p.source_narrative, p.death_narrative
         FROM pairs p
         LEFT JOIN reviews r ON r.source_id = p.source_id AND r.death_id = p.death_id
         WHERE p.run_id = ? AND r.id IS NULL
         ORDER BY p.person_key, p.source_id, p.death_id`, runID)
	if err != nil {
		return nil, fmt.Errorf("query unreviewed pairs: %w", err)
	}
	defer rows.Close()

	var out []Pair
	for rows.Next() {
		p, err := scanPair(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// SaveReview upserts an advisory review keyed by the reviewed pair.
func (s *Store) SaveReview(ctx context.Context, review model.Review) error {
	created := review.CreatedAt
	if created.IsZero() {
		created = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO reviews (person_key, source_id, death_id, verdict, reasoning, provider, model, created_at)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?)
         ON CONFLICT(source_id, death_id) DO UPDATE SET
             verdict = excluded.verdict, reasoning = excluded.reasoning,
             provider = excluded.provider, model = excluded.model, created_at = excluded.created_at`,
		review.PersonKey,
		review.SourceID,
		review.DeathID,
		string(review.Verdict),
		review.Reasoning,
		review.Provider,
		review.Model,
		created.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("save review %s/%s: %w", review.SourceID, review.DeathID, err)
	}
	return nil
}

// GetReview fetches the review for a pair, or nil when none exists.
func (s *Store) GetReview(ctx context.Context, sourceID, deathID string) (*model.Review, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT person_key, source_id, death_id, verdict, reasoning, provider, model, created_at
         FROM reviews WHERE source_id = ? AND death_id = ?`, sourceID, deathID)

	var (
		r       model.Review
		verdict string
		created string
	)
	err := row.Scan(&r.PersonKey, &r.SourceID, &r.DeathID, &verdict, &r.Reasoning, &r.Provider, &r.Model, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get review: %w", err)
	}
	r.Verdict = model.Verdict(verdict)
	if t, err := time.Parse(time.RFC3339Nano, created); err == nil {
		r.CreatedAt = t
	}
	return &r, nil
}

// Summary aggregates the state of a run for status output.
type Summary struct {
	Run          *Run
	Matches      map[model.Confidence]int
	Pairs        map[model.Strength]int
	Reviews      map[model.Verdict]int
	TotalMatches int
	TotalPairs   int
	TotalReviews int
}

// Summarize collects per-confidence, per-strength and per-verdict counts for
// the most recent run.
func (s *Store) Summarize(ctx context.Context) (*Summary, error) {
	run, err := s.LatestRun(ctx)
	if err != nil {
		return nil, err
	}
	sum := &Summary{
		Run:     run,
		Matches: make(map[model.Confidence]int),
		Pairs:   make(map[model.Strength]int),
		Reviews: make(map[model.Verdict]int),
	}
	if run == nil {
		return sum, nil
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT confidence, COUNT(1) FROM matches WHERE run_id = ? GROUP BY confidence`, run.ID)
	if err != nil {
		return nil, fmt.Errorf("match counts: %w", err)
	}
	for rows.Next() {
		var conf string
		var count int
		if err := rows.Scan(&conf, &count); err != nil {
			rows.Close()
			return nil, err
		}
		sum.Matches[model.Confidence(conf)] = count
		sum.TotalMatches += count
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	rows, err = s.db.QueryContext(ctx,
		`SELECT strength, COUNT(1) FROM pairs WHERE run_id = ? GROUP BY strength`, run.ID)
	if err != nil {
		return nil, fmt.Errorf("pair counts: %w", err)
	}
	for rows.Next() {
		var strength string
		var count int
		if err := rows.Scan(&strength, &count); err != nil {
			rows.Close()
			return nil, err
		}
		sum.Pairs[model.Strength(strength)] = count
		sum.TotalPairs += count
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	rows, err = s.db.QueryContext(ctx,
		`SELECT r.verdict, COUNT(1)
         FROM reviews r JOIN pairs p ON p.source_id = r.source_id AND p.death_id = r.death_id
         WHERE p.run_id = ? GROUP BY r.verdict`, run.ID)
	if err != nil {
		return nil, fmt.Errorf("review counts: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var verdict string
		var count int
		if err := rows.Scan(&verdict, &count); err != nil {
			return nil, err
		}
		sum.Reviews[model.Verdict(verdict)] = count
		sum.TotalReviews += count
	}
	return sum, rows.Err()
}

func scanRun(scanner interface{ Scan(dest ...any) error }) (*Run, error) {
	var (
		run      Run
		src      string
		tgt      string
		started  string
		finished sql.NullString
	)
	if err := scanner.Scan(&run.ID, &src, &tgt, &run.SourceCount, &run.TargetCount, &run.Status, &started, &finished); err != nil {
		return nil, err
	}
	run.SourceDataset = model.DatasetKind(src)
	run.TargetDataset = model.DatasetKind(tgt)
	if t, err := time.Parse(time.RFC3339Nano, started); err == nil {
		run.StartedAt = t
	}
	if finished.Valid {
		if t, err := time.Parse(time.RFC3339Nano, finished.String); err == nil {
			run.FinishedAt = &t
		}
	}
	return &run, nil
}

func scanPair(scanner interface{ Scan(dest ...any) error }) (Pair, error) {
	var (
		p           Pair
		sourceDate  string
		deathType   string
		deathDate   string
		intervening int
		strength    string
	)
	if err := scanner.Scan(
		&p.ID,
		&p.RunID,
		&p.PersonKey,
		&p.PersonName,
		&p.Source.RecordID,
		&sourceDate,
		&p.Death.RecordID,
		&deathType,
		&deathDate,
		&p.ElapsedDays,
		&intervening,
		&strength,
		&p.SourceNarrative,
		&p.DeathNarrative,
	); err != nil {
		return Pair{}, fmt.Errorf("scan pair: %w", err)
	}
	p.Source.Type = model.EventDisappearance
	p.Death.Type = model.EventType(deathType)
	p.Intervening = intervening != 0
	p.Strength = model.Strength(strength)
	if t, err := time.Parse(time.RFC3339Nano, sourceDate); err == nil {
		p.Source.Date = t
	}
	if t, err := time.Parse(time.RFC3339Nano, deathDate); err == nil {
		p.Death.Date = t
	}
	return p, nil
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}
