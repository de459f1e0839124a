// Package persistence provides SQLite-based run trace storage.
// See design doc Section 8.3.
package persistence

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/crucible/internal/engine"
)

// DB wraps a SQLite connection for run trace persistence.
type DB struct {
	conn *sqlx.DB
}

// RunMeta identifies one stored run.
type RunMeta struct {
	ID            string `db:"id" json:"id"`
	Scenario      string `db:"scenario" json:"scenario"`
	Seed          int64  `db:"seed" json:"seed"`
	CreatedAt     string `db:"created_at" json:"created_at"` // RFC 3339 UTC
	Generations   int    `db:"generations" json:"generations"`
	TerminalState string `db:"terminal_state" json:"terminal_state"`
}

// recordRow is the storage shape of a generation record.
type recordRow struct {
	RunID             string  `db:"run_id"`
	Generation        int     `db:"generation"`
	PopulationSize    int     `db:"population_size"`
	CooperationPct    float64 `db:"cooperation_pct"`
	MeanCoherence     float64 `db:"mean_coherence"`
	CruciblePct       float64 `db:"crucible_pct"`
	TeacherNetworkPct float64 `db:"teacher_network_pct"`
	State             string  `db:"state"`
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		scenario TEXT NOT NULL,
		seed INTEGER NOT NULL,
		created_at TEXT NOT NULL,
		generations INTEGER NOT NULL,
		terminal_state TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS generation_records (
		run_id TEXT NOT NULL REFERENCES runs(id),
		generation INTEGER NOT NULL,
		population_size INTEGER NOT NULL,
		cooperation_pct REAL NOT NULL,
		mean_coherence REAL NOT NULL,
		crucible_pct REAL NOT NULL,
		teacher_network_pct REAL NOT NULL,
		state TEXT NOT NULL,
		PRIMARY KEY (run_id, generation)
	);

	CREATE TABLE IF NOT EXISTS events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL REFERENCES runs(id),
		generation INTEGER NOT NULL,
		description TEXT NOT NULL,
		category TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_records_run ON generation_records(run_id, generation);
	CREATE INDEX IF NOT EXISTS idx_events_run ON events(run_id, generation);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// SaveRun stores a completed run under a fresh id and returns its metadata.
func (db *DB) SaveRun(scenario string, res *engine.Result) (RunMeta, error) {
	meta := RunMeta{
		ID:            uuid.NewString(),
		Scenario:      scenario,
		Seed:          res.Seed,
		CreatedAt:     time.Now().UTC().Format(time.RFC3339),
		Generations:   len(res.Records),
		TerminalState: res.TerminalState.String(),
	}

	tx, err := db.conn.Beginx()
	if err != nil {
		return RunMeta{}, err
	}
	defer tx.Rollback()

	_, err = tx.Exec(`INSERT INTO runs
		(id, scenario, seed, created_at, generations, terminal_state)
		VALUES (?, ?, ?, ?, ?, ?)`,
		meta.ID, meta.Scenario, meta.Seed, meta.CreatedAt, meta.Generations, meta.TerminalState,
	)
	if err != nil {
		return RunMeta{}, fmt.Errorf("insert run: %w", err)
	}

	stmt, err := tx.Preparex(`INSERT INTO generation_records
		(run_id, generation, population_size, cooperation_pct, mean_coherence,
		 crucible_pct, teacher_network_pct, state)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return RunMeta{}, err
	}
	defer stmt.Close()

	for _, rec := range res.Records {
		_, err := stmt.Exec(
			meta.ID, rec.Generation, rec.PopulationSize, rec.CooperationPct,
			rec.MeanCoherence, rec.CruciblePct, rec.TeacherNetworkPct, rec.State.String(),
		)
		if err != nil {
			return RunMeta{}, fmt.Errorf("insert record %d: %w", rec.Generation, err)
		}
	}

	for _, e := range res.Events {
		_, err := tx.Exec(
			"INSERT INTO events (run_id, generation, description, category) VALUES (?, ?, ?, ?)",
			meta.ID, e.Generation, e.Description, e.Category,
		)
		if err != nil {
			return RunMeta{}, fmt.Errorf("insert event: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return RunMeta{}, err
	}

	slog.Info("run saved", "id", meta.ID, "scenario", meta.Scenario,
		"generations", meta.Generations, "terminal_state", meta.TerminalState)
	return meta, nil
}

// LoadRun reads a stored run back into a full result.
func (db *DB) LoadRun(id string) (*engine.Result, RunMeta, error) {
	var meta RunMeta
	if err := db.conn.Get(&meta, "SELECT * FROM runs WHERE id = ?", id); err != nil {
		return nil, RunMeta{}, fmt.Errorf("load run %s: %w", id, err)
	}

	var rows []recordRow
	err := db.conn.Select(&rows,
		"SELECT * FROM generation_records WHERE run_id = ? ORDER BY generation", id)
	if err != nil {
		return nil, RunMeta{}, fmt.Errorf("load records: %w", err)
	}

	res := &engine.Result{Seed: meta.Seed, Records: make([]engine.GenerationRecord, len(rows))}
	for i, row := range rows {
		state, err := engine.ParseRunState(row.State)
		if err != nil {
			return nil, RunMeta{}, fmt.Errorf("record %d: %w", row.Generation, err)
		}
		res.Records[i] = engine.GenerationRecord{
			Generation:        row.Generation,
			PopulationSize:    row.PopulationSize,
			CooperationPct:    row.CooperationPct,
			MeanCoherence:     row.MeanCoherence,
			CruciblePct:       row.CruciblePct,
			TeacherNetworkPct: row.TeacherNetworkPct,
			State:             state,
		}
	}

	res.TerminalState, err = engine.ParseRunState(meta.TerminalState)
	if err != nil {
		return nil, RunMeta{}, fmt.Errorf("run %s: %w", id, err)
	}

	res.Events, err = db.RunEvents(id, 0)
	if err != nil {
		return nil, RunMeta{}, err
	}
	return res, meta, nil
}

// LatestRunID returns the most recently stored run id.
func (db *DB) LatestRunID() (string, error) {
	var id string
	err := db.conn.Get(&id, "SELECT id FROM runs ORDER BY rowid DESC LIMIT 1")
	return id, err
}

// ListRuns returns stored run metadata, newest first.
func (db *DB) ListRuns() ([]RunMeta, error) {
	var metas []RunMeta
	err := db.conn.Select(&metas, "SELECT * FROM runs ORDER BY rowid DESC")
	return metas, err
}

// RunEvents returns a run's events in emission order. A limit of 0 or less
// returns them all.
func (db *DB) RunEvents(id string, limit int) ([]engine.Event, error) {
	if limit <= 0 {
		limit = -1
	}
	var events []engine.Event
	err := db.conn.Select(&events,
		"SELECT generation, description, category FROM events WHERE run_id = ? ORDER BY id LIMIT ?",
		id, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("load events: %w", err)
	}
	return events, nil
}
