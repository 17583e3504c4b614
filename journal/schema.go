package journal

const Schema = `
CREATE TABLE IF NOT EXISTS actions (
	action_id TEXT PRIMARY KEY,
	time DATETIME NOT NULL,
	symbol TEXT NOT NULL,
	action TEXT NOT NULL,
	side TEXT NOT NULL,
	price REAL NOT NULL,
	size REAL NOT NULL,
	rule TEXT NOT NULL,
	reason TEXT NOT NULL,
	pnl_pct REAL NOT NULL,
	variant TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS cycles (
	time DATETIME NOT NULL,
	symbol TEXT NOT NULL,
	price REAL NOT NULL,
	state TEXT NOT NULL,
	signals TEXT NOT NULL,
	action TEXT NOT NULL,
	duration_ms INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_actions_time ON actions(time);
CREATE INDEX IF NOT EXISTS idx_cycles_time ON cycles(time);
`
