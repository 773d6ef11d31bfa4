// Package store persists tracking runs in a SQLite database.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	cvtrack "github.com/swdee/go-cvtrack"
	_ "modernc.org/sqlite"
)

// ErrRunNotFound is returned when no run has the requested id
var ErrRunNotFound = errors.New("run not found")

// Run is one batch tracking of a video
type Run struct {
	ID         uuid.UUID
	Video      string
	Algorithm  string
	FrameCount int
	CreatedAt  time.Time
	// Objects are the tracking histories, empty when listing runs
	Objects []cvtrack.TrackedObject
}

// Store is a SQLite backed run history
type Store struct {
	db  *sql.DB
	log zerolog.Logger
}

// Open opens or creates the database at path and migrates its schema
func Open(path string, log zerolog.Logger) (*Store, error) {

	dsn := fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", path)

	db, err := sql.Open("sqlite", dsn)

	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	s := &Store{
		db:  db,
		log: log.With().Str("component", "store").Logger(),
	}

	if err := s.migrateUp(); err != nil {
		db.Close()
		return nil, err
	}

	s.log.Debug().Str("path", path).Msg("database opened")

	return s, nil
}

// Close the database
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveRun stores a run and all of its tracking records in one transaction
func (s *Store) SaveRun(ctx context.Context, run Run) error {

	tx, err := s.db.BeginTx(ctx, nil)

	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}

	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, video, algorithm, frame_count, created_at) VALUES (?, ?, ?, ?, ?)`,
		run.ID.String(), run.Video, run.Algorithm, run.FrameCount, run.CreatedAt.UnixNano())

	if err != nil {
		return fmt.Errorf("error inserting run: %w", err)
	}

	objStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO objects (run_id, position, object_id, label) VALUES (?, ?, ?, ?)`)

	if err != nil {
		return fmt.Errorf("error preparing object insert: %w", err)
	}

	defer objStmt.Close()

	recStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO track_records (run_id, position, frame, success, x, y, width, height)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)

	if err != nil {
		return fmt.Errorf("error preparing record insert: %w", err)
	}

	defer recStmt.Close()

	id := run.ID.String()

	for pos, obj := range run.Objects {

		if _, err := objStmt.ExecContext(ctx, id, pos, obj.ID, obj.Label); err != nil {
			return fmt.Errorf("error inserting object %d: %w", pos, err)
		}

		for _, rec := range obj.Track {
			_, err := recStmt.ExecContext(ctx, id, pos, rec.Frame, rec.Success,
				rec.Box.X, rec.Box.Y, rec.Box.Width, rec.Box.Height)

			if err != nil {
				return fmt.Errorf("error inserting object %d frame %d: %w", pos, rec.Frame, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("error committing run: %w", err)
	}

	s.log.Debug().Str("run_id", id).Int("objects", len(run.Objects)).Msg("run saved")

	return nil
}

// LoadRun returns the run with its tracking histories
func (s *Store) LoadRun(ctx context.Context, id uuid.UUID) (Run, error) {

	row := s.db.QueryRowContext(ctx,
		`SELECT id, video, algorithm, frame_count, created_at FROM runs WHERE id = ?`,
		id.String())

	run, err := scanRun(row)

	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}

	if err != nil {
		return Run{}, err
	}

	if run.Objects, err = s.loadObjects(ctx, id); err != nil {
		return Run{}, err
	}

	if err := s.loadRecords(ctx, id, run.Objects); err != nil {
		return Run{}, err
	}

	return run, nil
}

func (s *Store) loadObjects(ctx context.Context, id uuid.UUID) ([]cvtrack.TrackedObject, error) {

	rows, err := s.db.QueryContext(ctx,
		`SELECT object_id, label FROM objects WHERE run_id = ? ORDER BY position`, id.String())

	if err != nil {
		return nil, fmt.Errorf("error querying objects: %w", err)
	}

	defer rows.Close()

	objects := make([]cvtrack.TrackedObject, 0)

	for rows.Next() {
		obj := cvtrack.TrackedObject{Track: []cvtrack.TrackRecord{}}

		if err := rows.Scan(&obj.ID, &obj.Label); err != nil {
			return nil, fmt.Errorf("error scanning object: %w", err)
		}

		objects = append(objects, obj)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error reading objects: %w", err)
	}

	return objects, nil
}

// loadRecords appends the tracking records of the run to the objects at
// their stored position
func (s *Store) loadRecords(ctx context.Context, id uuid.UUID, objects []cvtrack.TrackedObject) error {

	rows, err := s.db.QueryContext(ctx,
		`SELECT position, frame, success, x, y, width, height FROM track_records
		 WHERE run_id = ? ORDER BY position, frame`, id.String())

	if err != nil {
		return fmt.Errorf("error querying records: %w", err)
	}

	defer rows.Close()

	for rows.Next() {
		var (
			pos int
			rec cvtrack.TrackRecord
		)

		err := rows.Scan(&pos, &rec.Frame, &rec.Success,
			&rec.Box.X, &rec.Box.Y, &rec.Box.Width, &rec.Box.Height)

		if err != nil {
			return fmt.Errorf("error scanning record: %w", err)
		}

		if pos < 0 || pos >= len(objects) {
			return fmt.Errorf("record for unknown object position %d", pos)
		}

		objects[pos].Track = append(objects[pos].Track, rec)
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("error reading records: %w", err)
	}

	return nil
}

// ListRuns returns all runs newest first, without tracking histories
func (s *Store) ListRuns(ctx context.Context) ([]Run, error) {

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, video, algorithm, frame_count, created_at FROM runs ORDER BY created_at DESC`)

	if err != nil {
		return nil, fmt.Errorf("error querying runs: %w", err)
	}

	defer rows.Close()

	runs := make([]Run, 0)

	for rows.Next() {
		run, err := scanRun(rows)

		if err != nil {
			return nil, err
		}

		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error reading runs: %w", err)
	}

	return runs, nil
}

// scanner is implemented by sql.Row and sql.Rows
type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (Run, error) {

	var (
		run     Run
		id      string
		created int64
	)

	err := row.Scan(&id, &run.Video, &run.Algorithm, &run.FrameCount, &created)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Run{}, err
		}

		return Run{}, fmt.Errorf("error scanning run: %w", err)
	}

	run.ID, err = uuid.Parse(id)

	if err != nil {
		return Run{}, fmt.Errorf("invalid run id %q: %w", id, err)
	}

	run.CreatedAt = time.Unix(0, created)

	return run, nil
}
