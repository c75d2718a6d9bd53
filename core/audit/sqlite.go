package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "modernc.org/sqlite"
)

// SQLiteStore persists records to a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens or creates the database at path and ensures schema.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// Concurrent scenario runs share the store; one connection serializes writers.
	db.SetMaxOpenConns(1)
	schema := `CREATE TABLE IF NOT EXISTS solved_days (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        ts INTEGER,
        day INTEGER,
        scenario TEXT,
        run_id TEXT,
        cost_total REAL,
        cost_baseline REAL,
        record TEXT
    );`
	index := `CREATE INDEX IF NOT EXISTS solved_days_scenario_day ON solved_days (scenario, day);`
	for _, stmt := range []string{schema, index} {
		if _, err := db.Exec(stmt); err != nil {
			if cerr := db.Close(); cerr != nil {
				return nil, fmt.Errorf("close db: %v (schema err: %w)", cerr, err)
			}
			return nil, err
		}
	}
	return &SQLiteStore{db: db}, nil
}

// Append writes the record to the database.
func (s *SQLiteStore) Append(ctx context.Context, rec Record) error {
	b, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO solved_days (ts, day, scenario, run_id, cost_total, cost_baseline, record)
         VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.Timestamp.UnixNano(), rec.Day.Unix(), rec.Scenario, rec.RunID,
		rec.Cost.Total, rec.Cost.OnlyUncontrolledLoad, string(b))
	return err
}

// Query returns records matching q ordered by day.
func (s *SQLiteStore) Query(ctx context.Context, q Query) ([]Record, error) {
	var args []any
	query := `SELECT record FROM solved_days WHERE 1=1`
	if !q.Start.IsZero() {
		query += ` AND day >= ?`
		args = append(args, q.Start.Unix())
	}
	if !q.End.IsZero() {
		query += ` AND day <= ?`
		args = append(args, q.End.Unix())
	}
	if q.Scenario != "" {
		query += ` AND scenario = ?`
		args = append(args, q.Scenario)
	}
	if q.RunID != "" {
		query += ` AND run_id = ?`
		args = append(args, q.RunID)
	}
	query += ` ORDER BY day, ts`
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var res []Record
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		var r Record
		if err := json.Unmarshal([]byte(data), &r); err != nil {
			return nil, fmt.Errorf("unmarshal record: %w", err)
		}
		res = append(res, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return res, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error { return s.db.Close() }
