package journal

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/rustyeddy/swingbot/market"
)

// SQLite persists records to a local sqlite database.
type SQLite struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, err
	}
	return &SQLite{db: db}, nil
}

func (j *SQLite) RecordAction(a ActionRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO actions
		(action_id, time, symbol, action, side, price, size, rule, reason, pnl_pct, variant)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.Time, a.Symbol, a.Action, a.Side.String(),
		a.Price, a.Size, a.Rule, a.Reason, a.PnLPct, a.Variant,
	)
	return err
}

func (j *SQLite) RecordCycle(c CycleRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO cycles
		(time, symbol, price, state, signals, action, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		c.Time, c.Symbol, c.Price, c.State, c.Signals, c.Action,
		c.Duration.Milliseconds(),
	)
	return err
}

// GetAction returns a single action record by ID.
func (j *SQLite) GetAction(actionID string) (ActionRecord, error) {
	var rec ActionRecord
	var side string

	row := j.db.QueryRow(`
		SELECT action_id, time, symbol, action, side, price, size, rule, reason, pnl_pct, variant
		FROM actions
		WHERE action_id = ?`, actionID)

	err := row.Scan(
		&rec.ID, &rec.Time, &rec.Symbol, &rec.Action, &side,
		&rec.Price, &rec.Size, &rec.Rule, &rec.Reason, &rec.PnLPct, &rec.Variant,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return ActionRecord{}, fmt.Errorf("action %q not found", actionID)
		}
		return ActionRecord{}, err
	}
	rec.Side = parseSide(side)
	return rec, nil
}

// ListActionsBetween returns actions whose time is within [start, end),
// oldest first.
func (j *SQLite) ListActionsBetween(start, end time.Time) ([]ActionRecord, error) {
	rows, err := j.db.Query(`
		SELECT action_id, time, symbol, action, side, price, size, rule, reason, pnl_pct, variant
		FROM actions
		WHERE time >= ? AND time < ?
		ORDER BY time ASC`, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ActionRecord
	for rows.Next() {
		var rec ActionRecord
		var side string
		if err := rows.Scan(
			&rec.ID, &rec.Time, &rec.Symbol, &rec.Action, &side,
			&rec.Price, &rec.Size, &rec.Rule, &rec.Reason, &rec.PnLPct, &rec.Variant,
		); err != nil {
			return nil, err
		}
		rec.Side = parseSide(side)
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (j *SQLite) Close() error {
	return j.db.Close()
}

func parseSide(s string) market.Side {
	switch s {
	case "long":
		return market.Long
	case "short":
		return market.Short
	default:
		return market.Flat
	}
}
