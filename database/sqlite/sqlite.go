package sqlite

import (
	"github.com/aquilax/campusmap/database/sqlstore"
	_ "modernc.org/sqlite"
)

// DriverName is the name modernc.org/sqlite registers with database/sql.
const DriverName = "sqlite"

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
		is_first BOOLEAN NOT NULL DEFAULT 1,
		created_at DATETIME NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS school_spaces (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		coordinates_level_0_x REAL NOT NULL DEFAULT 0,
		coordinates_level_0_y REAL NOT NULL DEFAULT 0,
		coordinates_level_1_x REAL NOT NULL DEFAULT 0,
		coordinates_level_1_y REAL NOT NULL DEFAULT 0,
		coordinates_level_2_x REAL NOT NULL DEFAULT 0,
		coordinates_level_2_y REAL NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS reports (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		space_id INTEGER NOT NULL REFERENCES school_spaces(id),
		user_id TEXT NOT NULL,
		content TEXT NOT NULL,
		created_at DATETIME NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS reports_space_id ON reports (space_id)`,
	`CREATE TABLE IF NOT EXISTS replies (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		report_id INTEGER NOT NULL REFERENCES reports(id),
		user_id TEXT NOT NULL,
		content TEXT NOT NULL,
		created_at DATETIME NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS replies_report_id ON replies (report_id)`,
	`CREATE TABLE IF NOT EXISTS likes (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		space_id INTEGER NOT NULL,
		user_id TEXT NOT NULL,
		UNIQUE (space_id, user_id)
	)`,
	`CREATE TABLE IF NOT EXISTS comment_likes (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		report_id INTEGER NOT NULL,
		user_id TEXT NOT NULL,
		UNIQUE (report_id, user_id)
	)`,
	`CREATE TABLE IF NOT EXISTS reply_likes (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		reply_id INTEGER NOT NULL,
		user_id TEXT NOT NULL,
		UNIQUE (reply_id, user_id)
	)`,
}

type SQLite struct {
	*sqlstore.Store
}

func New() *SQLite {
	return &SQLite{sqlstore.New(schema)}
}
