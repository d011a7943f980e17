package db

// schema is applied in order by EnsureSchema
var schema = []string{
	`CREATE TABLE IF NOT EXISTS answers (
		question   TEXT PRIMARY KEY,
		answer     TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS apply_runs (
		id           UUID PRIMARY KEY,
		status       TEXT NOT NULL,
		positions    TEXT[] NOT NULL DEFAULT '{}',
		locations    TEXT[] NOT NULL DEFAULT '{}',
		attempted    INTEGER NOT NULL DEFAULT 0,
		applied      INTEGER NOT NULL DEFAULT 0,
		failed       INTEGER NOT NULL DEFAULT 0,
		created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		completed_at TIMESTAMPTZ
	)`,
	`CREATE TABLE IF NOT EXISTS applications (
		id         BIGSERIAL PRIMARY KEY,
		run_id     UUID REFERENCES apply_runs(id) ON DELETE SET NULL,
		applied_at TIMESTAMPTZ NOT NULL,
		job_id     TEXT NOT NULL,
		job_title  TEXT NOT NULL DEFAULT '',
		company    TEXT NOT NULL DEFAULT '',
		attempted  BOOLEAN NOT NULL,
		result     BOOLEAN NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS applications_applied_at_idx ON applications (applied_at)`,
}
