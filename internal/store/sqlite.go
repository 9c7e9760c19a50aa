package store

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"
)

// SQLiteStore keeps the host configuration in a local SQLite database. Each
// session maps onto one SQL transaction, so ids are assigned as soon as a
// site is added while nothing becomes durable before Commit.
type SQLiteStore struct {
	conn *sql.DB
	path string
	log  *slog.Logger
}

// NewSQLiteStore opens (and if needed initializes) the configuration database
// at dbPath.
func NewSQLiteStore(dbPath string, logger *slog.Logger) (*SQLiteStore, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %v", err)
	}

	conn, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %v", err)
	}

	s := &SQLiteStore{
		conn: conn,
		path: dbPath,
		log:  logger,
	}

	if err := s.initSchema(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to initialize store schema: %v", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.conn.Close()
}

func (s *SQLiteStore) initSchema() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS sites (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			binding TEXT UNIQUE NOT NULL,
			physical_path TEXT NOT NULL,
			log_directory TEXT NOT NULL DEFAULT '',
			trace_directory TEXT NOT NULL DEFAULT '',
			trace_enabled BOOLEAN NOT NULL DEFAULT FALSE,
			pool_name TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS app_pools (
			name TEXT PRIMARY KEY,
			runtime_version TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_sites_name ON sites(name)`,
	}

	for _, query := range queries {
		if _, err := s.conn.Exec(query); err != nil {
			return fmt.Errorf("failed to execute schema query: %v", err)
		}
	}

	return nil
}

// OpenSession begins a transaction and loads the current object graph.
func (s *SQLiteStore) OpenSession() (Session, error) {
	tx, err := s.conn.Begin()
	if err != nil {
		return nil, wrapDriverErr("open session", err)
	}

	sess := &sqliteSession{
		id:  uuid.NewString(),
		tx:  tx,
		log: s.log,
	}

	if err := sess.load(); err != nil {
		tx.Rollback()
		return nil, err
	}

	s.log.Debug("store session opened", "session", sess.id,
		"sites", len(sess.sites), "pools", len(sess.pools))
	return sess, nil
}

type sqliteSession struct {
	id    string
	tx    *sql.Tx
	log   *slog.Logger
	sites []*Site
	pools []*Pool
	done  bool
}

func (sess *sqliteSession) load() error {
	rows, err := sess.tx.Query(`SELECT id, name, binding, physical_path,
		log_directory, trace_directory, trace_enabled, pool_name
		FROM sites ORDER BY id`)
	if err != nil {
		return wrapDriverErr("load sites", err)
	}
	defer rows.Close()

	for rows.Next() {
		var site Site
		err := rows.Scan(&site.ID, &site.Name, &site.Binding, &site.PhysicalPath,
			&site.LogDirectory, &site.TraceDirectory, &site.TraceEnabled, &site.PoolName)
		if err != nil {
			return wrapDriverErr("scan site", err)
		}
		sess.sites = append(sess.sites, &site)
	}
	if err := rows.Err(); err != nil {
		return wrapDriverErr("load sites", err)
	}

	poolRows, err := sess.tx.Query(`SELECT name, runtime_version FROM app_pools ORDER BY name`)
	if err != nil {
		return wrapDriverErr("load pools", err)
	}
	defer poolRows.Close()

	for poolRows.Next() {
		var pool Pool
		if err := poolRows.Scan(&pool.Name, &pool.RuntimeVersion); err != nil {
			return wrapDriverErr("scan pool", err)
		}
		sess.pools = append(sess.pools, &pool)
	}
	return poolRows.Err()
}

func (sess *sqliteSession) Sites() []*Site { return sess.sites }

func (sess *sqliteSession) Pools() []*Pool { return sess.pools }

func (sess *sqliteSession) AddSite(name, binding, physicalPath string) (*Site, error) {
	result, err := sess.tx.Exec(
		`INSERT INTO sites (name, binding, physical_path) VALUES (?, ?, ?)`,
		name, binding, physicalPath,
	)
	if err != nil {
		return nil, wrapDriverErr("add site", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, wrapDriverErr("add site", err)
	}

	site := &Site{
		ID:           id,
		Name:         name,
		Binding:      binding,
		PhysicalPath: physicalPath,
	}
	sess.sites = append(sess.sites, site)
	return site, nil
}

func (sess *sqliteSession) RemoveSite(site *Site) error {
	if _, err := sess.tx.Exec(`DELETE FROM sites WHERE id = ?`, site.ID); err != nil {
		return wrapDriverErr("remove site", err)
	}
	for i, s := range sess.sites {
		if s == site {
			sess.sites = append(sess.sites[:i], sess.sites[i+1:]...)
			break
		}
	}
	return nil
}

func (sess *sqliteSession) AddPool(name, runtimeVersion string) (*Pool, error) {
	_, err := sess.tx.Exec(
		`INSERT INTO app_pools (name, runtime_version) VALUES (?, ?)`,
		name, runtimeVersion,
	)
	if err != nil {
		return nil, wrapDriverErr("add pool", err)
	}

	pool := &Pool{Name: name, RuntimeVersion: runtimeVersion}
	sess.pools = append(sess.pools, pool)
	return pool, nil
}

func (sess *sqliteSession) RemovePool(pool *Pool) error {
	if _, err := sess.tx.Exec(`DELETE FROM app_pools WHERE name = ?`, pool.Name); err != nil {
		return wrapDriverErr("remove pool", err)
	}
	for i, p := range sess.pools {
		if p == pool {
			sess.pools = append(sess.pools[:i], sess.pools[i+1:]...)
			break
		}
	}
	return nil
}

// Commit flushes field changes on the loaded sites and commits the
// transaction.
func (sess *sqliteSession) Commit() error {
	for _, site := range sess.sites {
		_, err := sess.tx.Exec(`UPDATE sites SET
			name = ?, binding = ?, physical_path = ?, log_directory = ?,
			trace_directory = ?, trace_enabled = ?, pool_name = ?
			WHERE id = ?`,
			site.Name, site.Binding, site.PhysicalPath, site.LogDirectory,
			site.TraceDirectory, site.TraceEnabled, site.PoolName, site.ID,
		)
		if err != nil {
			return wrapDriverErr("flush site", err)
		}
	}

	if err := sess.tx.Commit(); err != nil {
		return wrapDriverErr("commit", err)
	}
	sess.done = true
	sess.log.Debug("store session committed", "session", sess.id)
	return nil
}

// Close rolls back the transaction unless Commit already ran.
func (sess *sqliteSession) Close() error {
	if sess.done {
		return nil
	}
	sess.done = true
	if err := sess.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return wrapDriverErr("rollback", err)
	}
	return nil
}

// wrapDriverErr classifies native sqlite driver failures as host errors.
func wrapDriverErr(op string, err error) error {
	var se sqlite3.Error
	if errors.As(err, &se) {
		return &HostError{Op: op, Err: err}
	}
	return fmt.Errorf("%s: %w", op, err)
}
