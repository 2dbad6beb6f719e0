package main

import (
	"crypto/rand"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/aquilax/campusmap/campus"
	"github.com/aquilax/campusmap/database"
	"github.com/aquilax/campusmap/database/cached"
	"github.com/aquilax/campusmap/database/memory"
	"github.com/aquilax/campusmap/database/postgres"
	"github.com/aquilax/campusmap/database/sqlite"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/sessions"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	itemsPerPage  = 100
	feedItems     = 20
	sessionName   = "campusmap"
	sessionUserID = "user_id"
)

type CampusMap struct {
	config   *Config
	logger   *slog.Logger
	m        *Model
	ln       *Language
	locale   *campus.Locale
	sg       *SpamGuard
	sessions sessions.Store
	codes    *Verifier
}

type appHandler func(http.ResponseWriter, *http.Request) error

// HTTPError is an error with the status and the message shown to the
// client.
type HTTPError struct {
	Err     error
	Message string
	Code    int
}

func (e *HTTPError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

// envelope is the body of every API response.
type envelope struct {
	Success bool         `json:"success"`
	Data    interface{}  `json:"data,omitempty"`
	Message string       `json:"message,omitempty"`
	User    *campus.User `json:"user,omitempty"`
	Pages   Pages        `json:"pages,omitempty"`
}

func NewCampusMap(config *Config, db database.Database, mailer Mailer, logger *slog.Logger) *CampusMap {
	tp := NewTransPool()
	ln := tp.Get(config.Language)
	locale := campus.GetLocale(config.Language)
	secret := []byte(config.SessionSecret)
	if len(secret) == 0 {
		logger.Warn("no session secret configured, sessions will not survive a restart")
		secret = make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			panic(err)
		}
	}
	store := sessions.NewCookieStore(secret)
	store.Options.HttpOnly = true
	store.Options.SameSite = http.SameSiteLaxMode
	return &CampusMap{
		config:   config,
		logger:   logger,
		m:        NewModel(db, ln, locale),
		ln:       ln,
		locale:   locale,
		sg:       NewSpamGuard(config.PostBlockExpire),
		sessions: store,
		codes:    NewVerifier(mailer, ln),
	}
}

func newLogger() *slog.Logger {
	if os.Getenv("GO_ENV") != "" {
		return slog.New(slog.NewJSONHandler(os.Stdout, nil))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// openDatabase connects the configured store and creates its tables.
func openDatabase(c *Config) (database.Database, error) {
	var db database.Database
	switch c.Database {
	case sqlite.DriverName:
		db = sqlite.New()
	case postgres.DriverName:
		db = postgres.New()
	case "memory":
		db = memory.New()
	default:
		return nil, fmt.Errorf("unknown database %q", c.Database)
	}
	if err := db.Open(c.Database, c.Dsn); err != nil {
		return nil, err
	}
	if err := db.Migrate(); err != nil {
		db.Close()
		return nil, err
	}
	if c.Cache {
		return cached.New(db), nil
	}
	return db, nil
}

// Run starts the server and blocks until it fails.
func Run(args []string) error {
	logger := newLogger()
	slog.SetDefault(logger)

	config := NewConfig()
	if err := config.Load(args); err != nil {
		return err
	}

	db, err := openDatabase(config)
	if err != nil {
		return err
	}
	defer db.Close()

	if config.Seed {
		if err := seedSpaces(db, logger); err != nil {
			return err
		}
	}

	l := NewCampusMap(config, db, newMailer(config.SMTP, logger), logger)
	addr := config.listenAddr()
	logger.Info("starting server", "addr", addr, "database", config.Database)
	srv := &http.Server{
		Addr:              addr,
		Handler:           l.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return srv.ListenAndServe()
}

func (l *CampusMap) Router() http.Handler {
	r := mux.NewRouter()
	r.Use(l.requestMiddleware)

	r.Handle("/api/database", l.api(l.databaseGetHandler)).Methods("GET")
	r.Handle("/api/database", l.api(l.databasePostHandler)).Methods("POST")
	r.Handle("/api/register", l.api(l.registerHandler)).Methods("POST")
	r.Handle("/api/check-email", l.api(l.checkEmailHandler)).Methods("POST")
	r.Handle("/api/verify-email", l.api(l.sendCodeHandler)).Methods("POST")
	r.Handle("/api/verify-email", l.api(l.verifyCodeHandler)).Methods("PUT")
	r.Handle("/api/session", l.api(l.sessionHandler)).Methods("GET")
	r.Handle("/api/logout", l.api(l.logoutHandler)).Methods("POST")

	r.Handle("/space/{spaceID}/{slug}", appHandler(l.spaceHandler)).Methods("GET")
	r.Handle("/feed.xml", appHandler(l.feedHandler)).Methods("GET")
	r.Handle("/sitemap.xml", appHandler(l.sitemapHandler)).Methods("GET")
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")

	// Static assets
	r.PathPrefix("/").Handler(http.FileServer(http.Dir(l.config.Static)))
	return r
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(status int) {
	s.status = status
	s.ResponseWriter.WriteHeader(status)
}

func (l *CampusMap) requestMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r)
		httpRequests.WithLabelValues(r.Method, strconv.Itoa(rec.status)).Inc()
		l.logger.Debug("request", "id", id, "method", r.Method, "path", r.URL.Path,
			"status", rec.status, "duration", time.Since(start))
	})
}

func (fn appHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if err := fn(w, r); err != nil {
		if errors.Is(err, database.ErrNotFound) || errors.Is(err, sql.ErrNoRows) {
			http.Error(w, "Not found", http.StatusNotFound)
			return
		}
		var httpError *HTTPError
		if errors.As(err, &httpError) {
			http.Error(w, httpError.Message, httpError.Code)
			return
		}
		slog.Error("request failed", "path", r.URL.Path, "err", err)
		// Default to 500 Internal Server Error
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

// api adapts a handler to the JSON envelope: returned errors become
// success:false responses.
func (l *CampusMap) api(fn appHandler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := fn(w, r); err != nil {
			l.writeError(w, r, err)
		}
	})
}

func (l *CampusMap) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var httpError *HTTPError
	switch {
	case errors.As(err, &httpError):
		if httpError.Err != nil {
			l.logger.Error("request failed", "path", r.URL.Path, "err", httpError.Err)
		}
		writeJSON(w, httpError.Code, envelope{Message: httpError.Message})
	case errors.Is(err, database.ErrNotFound), errors.Is(err, sql.ErrNoRows):
		writeJSON(w, http.StatusNotFound, envelope{Message: l.ln.Lang("Not found")})
	default:
		l.logger.Error("request failed", "path", r.URL.Path, "err", err)
		writeJSON(w, http.StatusInternalServerError, envelope{
			Message: l.ln.Lang("An error occurred while processing the request."),
		})
	}
}

func (l *CampusMap) fail(code int, message string) *HTTPError {
	return &HTTPError{Code: code, Message: l.ln.Lang(message)}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) error {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}

func writeOK(w http.ResponseWriter, data interface{}) error {
	return writeJSON(w, http.StatusOK, envelope{Success: true, Data: data})
}

func (l *CampusMap) currentUser(r *http.Request) campus.UserID {
	sess, _ := l.sessions.Get(r, sessionName)
	userID, _ := sess.Values[sessionUserID].(string)
	return userID
}
