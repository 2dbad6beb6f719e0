// Package sqlstore implements database.Database on top of sqlx. The sqlite
// and postgres packages only contribute their schema; queries are written
// with ? placeholders and rebound for the driver in use.
package sqlstore

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/aquilax/campusmap/campus"
	"github.com/aquilax/campusmap/database"
	"github.com/jmoiron/sqlx"
)

type Store struct {
	db     *sqlx.DB
	schema []string
}

func New(schema []string) *Store {
	return &Store{schema: schema}
}

type likeTable struct {
	name   string
	column string
}

var likeTables = map[campus.LikeKind]likeTable{
	campus.SpaceLike:   {"likes", "space_id"},
	campus.CommentLike: {"comment_likes", "report_id"},
	campus.ReplyLike:   {"reply_likes", "reply_id"},
}

func getLikeTable(kind campus.LikeKind) (likeTable, error) {
	t, ok := likeTables[kind]
	if !ok {
		return t, fmt.Errorf("unknown like kind %d", kind)
	}
	return t, nil
}

type spaceRow struct {
	ID          campus.SpaceID `db:"id"`
	Name        string         `db:"name"`
	Description string         `db:"description"`
	X0          float64        `db:"coordinates_level_0_x"`
	Y0          float64        `db:"coordinates_level_0_y"`
	X1          float64        `db:"coordinates_level_1_x"`
	Y1          float64        `db:"coordinates_level_1_y"`
	X2          float64        `db:"coordinates_level_2_x"`
	Y2          float64        `db:"coordinates_level_2_y"`
}

func (r spaceRow) space() campus.Space {
	return campus.Space{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		Coordinates: map[int]campus.Point{
			0: {X: r.X0, Y: r.Y0},
			1: {X: r.X1, Y: r.Y1},
			2: {X: r.X2, Y: r.Y2},
		},
	}
}

const (
	selectSpaces = `SELECT
			id, name, COALESCE(description, '') AS description,
			coordinates_level_0_x, coordinates_level_0_y,
			coordinates_level_1_x, coordinates_level_1_y,
			coordinates_level_2_x, coordinates_level_2_y
		FROM school_spaces`
	selectReports = `SELECT r.id, r.space_id, r.user_id, r.content, r.created_at,
			COALESCE(u.type, '') AS user_type, u.grade
		FROM reports r
		LEFT JOIN users u ON r.user_id = u.id`
	selectReplies = `SELECT r.id, r.report_id, r.user_id, r.content, r.created_at,
			COALESCE(u.type, '') AS user_type, u.grade
		FROM replies r
		LEFT JOIN users u ON r.user_id = u.id`
	selectUsers = `SELECT id, password, type, name, grade, class, department,
			COALESCE(email, '') AS email, column_name, is_first, created_at
		FROM users`
)

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return database.ErrNotFound
	}
	return err
}

func (s *Store) Open(driver, dsn string) error {
	var err error
	s.db, err = sqlx.Open(driver, dsn)
	if err != nil {
		return err
	}
	return s.db.Ping()
}

func (s *Store) Migrate() error {
	for _, stmt := range s.schema {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

func (s *Store) Ping() error {
	return s.db.Ping()
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) GetUsers(count, offset int) ([]campus.User, error) {
	var users []campus.User
	err := s.db.Select(&users, s.db.Rebind(selectUsers+" ORDER BY created_at, id LIMIT ? OFFSET ?"), count, offset)
	return users, err
}

func (s *Store) GetTotalUsers() (int, error) {
	var total int
	err := s.db.Get(&total, "SELECT count(*) FROM users")
	return total, err
}

func (s *Store) GetUser(userID campus.UserID) (*campus.User, error) {
	var u campus.User
	err := s.db.Get(&u, s.db.Rebind(selectUsers+" WHERE id = ?"), userID)
	if err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func (s *Store) GetUserByEmail(email string) (*campus.User, error) {
	var u campus.User
	err := s.db.Get(&u, s.db.Rebind(selectUsers+" WHERE email = ?"), email)
	if err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func (s *Store) AddUser(u *campus.User) error {
	if u.Created.IsZero() {
		u.Created = time.Now().UTC()
	}
	_, err := s.db.NamedExec(`INSERT INTO users (
			id,
			password,
			type,
			name,
			grade,
			class,
			department,
			email,
			column_name,
			is_first,
			created_at
		) VALUES (
			:id,
			:password,
			:type,
			:name,
			:grade,
			:class,
			:department,
			:email,
			:column_name,
			:is_first,
			:created_at
		)`, u)
	return err
}

func (s *Store) ClearFirstVisit(userID campus.UserID) error {
	_, err := s.db.Exec(s.db.Rebind("UPDATE users SET is_first = ? WHERE id = ?"), false, userID)
	return err
}

func (s *Store) GetSpaces() ([]campus.Space, error) {
	var rows []spaceRow
	if err := s.db.Select(&rows, selectSpaces+" ORDER BY id"); err != nil {
		return nil, err
	}
	spaces := make([]campus.Space, len(rows))
	for i, r := range rows {
		spaces[i] = r.space()
	}
	return spaces, nil
}

func (s *Store) GetSpace(spaceID campus.SpaceID) (*campus.Space, error) {
	var r spaceRow
	if err := s.db.Get(&r, s.db.Rebind(selectSpaces+" WHERE id = ?"), spaceID); err != nil {
		return nil, notFound(err)
	}
	space := r.space()
	return &space, nil
}

func (s *Store) AddSpace(space *campus.Space) (campus.SpaceID, error) {
	c := space.Coordinates
	id, err := s.insert(`INSERT INTO school_spaces (
			name,
			description,
			coordinates_level_0_x,
			coordinates_level_0_y,
			coordinates_level_1_x,
			coordinates_level_1_y,
			coordinates_level_2_x,
			coordinates_level_2_y
		) VALUES (
			:name,
			:description,
			:x0,
			:y0,
			:x1,
			:y1,
			:x2,
			:y2
		) RETURNING id`,
		map[string]interface{}{
			"name":        space.Name,
			"description": space.Description,
			"x0":          c[0].X,
			"y0":          c[0].Y,
			"x1":          c[1].X,
			"y1":          c[1].Y,
			"x2":          c[2].X,
			"y2":          c[2].Y,
		})
	if err == nil {
		space.ID = id
	}
	return id, err
}

func (s *Store) GetReports(spaceID campus.SpaceID) (campus.ReportList, error) {
	var rl campus.ReportList
	err := s.db.Select(&rl, s.db.Rebind(selectReports+" WHERE r.space_id = ? ORDER BY r.created_at DESC, r.id DESC"), spaceID)
	return rl, err
}

func (s *Store) GetRecentReports(count int) (campus.ReportList, error) {
	var rl campus.ReportList
	err := s.db.Select(&rl, s.db.Rebind(selectReports+" ORDER BY r.created_at DESC, r.id DESC LIMIT ?"), count)
	return rl, err
}

func (s *Store) GetReport(reportID campus.ReportID) (*campus.Report, error) {
	var r campus.Report
	if err := s.db.Get(&r, s.db.Rebind(selectReports+" WHERE r.id = ?"), reportID); err != nil {
		return nil, notFound(err)
	}
	return &r, nil
}

func (s *Store) insert(query string, arg map[string]interface{}) (int64, error) {
	stmt, err := s.db.PrepareNamed(query)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()
	var id int64
	err = stmt.Get(&id, arg)
	return id, err
}

func (s *Store) AddReport(r *campus.Report) (campus.ReportID, error) {
	if r.Created.IsZero() {
		r.Created = time.Now().UTC()
	}
	id, err := s.insert(`INSERT INTO reports (
			space_id,
			user_id,
			content,
			created_at
		) VALUES (
			:space_id,
			:user_id,
			:content,
			:created_at
		) RETURNING id`,
		map[string]interface{}{
			"space_id":   r.SpaceID,
			"user_id":    r.UserID,
			"content":    r.Content,
			"created_at": r.Created,
		})
	if err == nil {
		r.ID = id
	}
	return id, err
}

func (s *Store) GetReplies(reportID campus.ReportID) (campus.ReplyList, error) {
	var rl campus.ReplyList
	err := s.db.Select(&rl, s.db.Rebind(selectReplies+" WHERE r.report_id = ? ORDER BY r.created_at, r.id"), reportID)
	return rl, err
}

func (s *Store) GetReply(replyID campus.ReplyID) (*campus.Reply, error) {
	var r campus.Reply
	if err := s.db.Get(&r, s.db.Rebind(selectReplies+" WHERE r.id = ?"), replyID); err != nil {
		return nil, notFound(err)
	}
	return &r, nil
}

func (s *Store) AddReply(r *campus.Reply) (campus.ReplyID, error) {
	if r.Created.IsZero() {
		r.Created = time.Now().UTC()
	}
	id, err := s.insert(`INSERT INTO replies (
			report_id,
			user_id,
			content,
			created_at
		) VALUES (
			:report_id,
			:user_id,
			:content,
			:created_at
		) RETURNING id`,
		map[string]interface{}{
			"report_id":  r.ReportID,
			"user_id":    r.UserID,
			"content":    r.Content,
			"created_at": r.Created,
		})
	if err == nil {
		r.ID = id
	}
	return id, err
}

func (s *Store) CountLikes(kind campus.LikeKind, subjectID int64) (int, error) {
	t, err := getLikeTable(kind)
	if err != nil {
		return 0, err
	}
	var count int
	err = s.db.Get(&count, s.db.Rebind("SELECT count(*) FROM "+t.name+" WHERE "+t.column+" = ?"), subjectID)
	return count, err
}

func (s *Store) HasLiked(kind campus.LikeKind, subjectID int64, userID campus.UserID) (bool, error) {
	t, err := getLikeTable(kind)
	if err != nil {
		return false, err
	}
	var count int
	err = s.db.Get(&count, s.db.Rebind("SELECT count(*) FROM "+t.name+" WHERE "+t.column+" = ? AND user_id = ?"), subjectID, userID)
	return count > 0, err
}

// ToggleLike removes the user's like if present and adds it otherwise, then
// recounts, all inside one transaction.
func (s *Store) ToggleLike(kind campus.LikeKind, subjectID int64, userID campus.UserID) (campus.LikeState, error) {
	var state campus.LikeState
	t, err := getLikeTable(kind)
	if err != nil {
		return state, err
	}
	tx, err := s.db.Beginx()
	if err != nil {
		return state, err
	}
	defer tx.Rollback()

	var existing int
	if err = tx.Get(&existing, tx.Rebind("SELECT count(*) FROM "+t.name+" WHERE "+t.column+" = ? AND user_id = ?"), subjectID, userID); err != nil {
		return state, err
	}
	if existing > 0 {
		_, err = tx.Exec(tx.Rebind("DELETE FROM "+t.name+" WHERE "+t.column+" = ? AND user_id = ?"), subjectID, userID)
	} else {
		_, err = tx.Exec(tx.Rebind("INSERT INTO "+t.name+" ("+t.column+", user_id) VALUES (?, ?)"), subjectID, userID)
		state.Liked = true
	}
	if err != nil {
		return state, err
	}
	if err = tx.Get(&state.Count, tx.Rebind("SELECT count(*) FROM "+t.name+" WHERE "+t.column+" = ?"), subjectID); err != nil {
		return state, err
	}
	return state, tx.Commit()
}
