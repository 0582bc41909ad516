// Package telemetry provides the append-only SQLite observation log:
// metric samples, pattern lifecycle events, activity switches and
// resonance samples, recorded for post-hoc analysis. There is no load
// path; the simulation never reads this database back.
package telemetry

import (
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/stevenvo780/duetsim/internal/emergence"
)

// DB wraps the SQLite connection. A nil *DB is a no-op recorder, so
// callers never have to branch on whether telemetry is enabled.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates the log database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open telemetry db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate telemetry db: %w", err)
	}
	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	if db == nil {
		return nil
	}
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS metrics (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		tick INTEGER NOT NULL,
		complexity REAL NOT NULL,
		coherence REAL NOT NULL,
		adaptability REAL NOT NULL,
		sustainability REAL NOT NULL,
		entropy REAL NOT NULL,
		autopoiesis REAL NOT NULL
	);

	CREATE TABLE IF NOT EXISTS pattern_events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		tick INTEGER NOT NULL,
		name TEXT NOT NULL,
		type TEXT NOT NULL,
		strength REAL NOT NULL,
		event TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS switches (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		tick INTEGER NOT NULL,
		role TEXT NOT NULL,
		from_activity TEXT NOT NULL,
		to_activity TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS resonance_samples (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		tick INTEGER NOT NULL,
		value REAL NOT NULL,
		closeness REAL NOT NULL,
		effect TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_metrics_tick ON metrics(tick);
	CREATE INDEX IF NOT EXISTS idx_pattern_events_tick ON pattern_events(tick);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// RecordMetrics appends one metrics sample.
func (db *DB) RecordMetrics(tick uint64, m emergence.Metrics) {
	if db == nil {
		return
	}
	_, err := db.conn.Exec(
		`INSERT INTO metrics (tick, complexity, coherence, adaptability, sustainability, entropy, autopoiesis)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		tick, m.Complexity, m.Coherence, m.Adaptability, m.Sustainability, m.Entropy, m.Autopoiesis,
	)
	if err != nil {
		slog.Debug("telemetry metrics insert failed", "error", err)
	}
}

// RecordPatternEvent appends a pattern lifecycle event ("detected",
// "active", "dissolved").
func (db *DB) RecordPatternEvent(tick uint64, name, ptype string, strength float64, event string) {
	if db == nil {
		return
	}
	_, err := db.conn.Exec(
		"INSERT INTO pattern_events (tick, name, type, strength, event) VALUES (?, ?, ?, ?, ?)",
		tick, name, ptype, strength, event,
	)
	if err != nil {
		slog.Debug("telemetry pattern insert failed", "error", err)
	}
}

// RecordSwitch appends one committed activity switch.
func (db *DB) RecordSwitch(tick uint64, role, from, to string) {
	if db == nil {
		return
	}
	_, err := db.conn.Exec(
		"INSERT INTO switches (tick, role, from_activity, to_activity) VALUES (?, ?, ?, ?)",
		tick, role, from, to,
	)
	if err != nil {
		slog.Debug("telemetry switch insert failed", "error", err)
	}
}

// RecordResonance appends one resonance sample.
func (db *DB) RecordResonance(tick uint64, value, closeness float64, effect string) {
	if db == nil {
		return
	}
	_, err := db.conn.Exec(
		"INSERT INTO resonance_samples (tick, value, closeness, effect) VALUES (?, ?, ?, ?)",
		tick, value, closeness, effect,
	)
	if err != nil {
		slog.Debug("telemetry resonance insert failed", "error", err)
	}
}
