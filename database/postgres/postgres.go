package postgres

import (
	"github.com/aquilax/campusmap/database/sqlstore"
	_ "github.com/lib/pq"
)

const DriverName = "postgres"

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		password TEXT NOT NULL,
		type TEXT NOT NULL DEFAULT 'student',
		name TEXT NOT NULL,
		grade INTEGER,
		class INTEGER,
		department TEXT,
		email TEXT UNIQUE,
		column_name TEXT,
		is_first BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS school_spaces (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		coordinates_level_0_x DOUBLE PRECISION NOT NULL DEFAULT 0,
		coordinates_level_0_y DOUBLE PRECISION NOT NULL DEFAULT 0,
		coordinates_level_1_x DOUBLE PRECISION NOT NULL DEFAULT 0,
		coordinates_level_1_y DOUBLE PRECISION NOT NULL DEFAULT 0,
		coordinates_level_2_x DOUBLE PRECISION NOT NULL DEFAULT 0,
		coordinates_level_2_y DOUBLE PRECISION NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS reports (
		id BIGSERIAL PRIMARY KEY,
		space_id BIGINT NOT NULL REFERENCES school_spaces(id),
		user_id TEXT NOT NULL,
		content TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS reports_space_id ON reports (space_id)`,
	`CREATE TABLE IF NOT EXISTS replies (
		id BIGSERIAL PRIMARY KEY,
		report_id BIGINT NOT NULL REFERENCES reports(id),
		user_id TEXT NOT NULL,
		content TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS replies_report_id ON replies (report_id)`,
	`CREATE TABLE IF NOT EXISTS likes (
		id BIGSERIAL PRIMARY KEY,
		space_id BIGINT NOT NULL,
		user_id TEXT NOT NULL,
		UNIQUE (space_id, user_id)
	)`,
	`CREATE TABLE IF NOT EXISTS comment_likes (
		id BIGSERIAL PRIMARY KEY,
		report_id BIGINT NOT NULL,
		user_id TEXT NOT NULL,
		UNIQUE (report_id, user_id)
	)`,
	`CREATE TABLE IF NOT EXISTS reply_likes (
		id BIGSERIAL PRIMARY KEY,
		reply_id BIGINT NOT NULL,
		user_id TEXT NOT NULL,
		UNIQUE (reply_id, user_id)
	)`,
}

type Postgres struct {
	*sqlstore.Store
}

func New() *Postgres {
	return &Postgres{sqlstore.New(schema)}
}
