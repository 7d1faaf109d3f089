// Package dummydb provides in-memory repositories for tests.
package dummydb

import (
	"context"
	"database/sql"
	"sync"

	"github.com/jmoiron/sqlx"

	"github.com/boardwave/academy/core"
	"github.com/boardwave/academy/core/attendance"
	"github.com/boardwave/academy/core/cohort"
	"github.com/boardwave/academy/core/course"
	"github.com/boardwave/academy/core/enrollment"
	"github.com/boardwave/academy/core/programme"
	"github.com/boardwave/academy/core/progress"
	"github.com/boardwave/academy/core/user"
)

type DB struct {
	executor
	sync.RWMutex
	pkCount int

	users         map[int]*user.User
	programmes    map[int]*programme.Programme
	cohorts       map[int]*cohort.Cohort
	courses       map[int]*course.Course
	modules       map[int]*course.Module
	prerequisites map[int]*course.Prerequisite
	enrollments   map[int]*enrollment.Enrollment
	attendance    map[int]*attendance.Record
	sessions      map[int]*attendance.Session
	progress      map[int]*progress.Tracking
}

var _ core.DB = (*DB)(nil)

func Open() (*DB, error) {
	return &DB{
		users:         make(map[int]*user.User),
		programmes:    make(map[int]*programme.Programme),
		cohorts:       make(map[int]*cohort.Cohort),
		courses:       make(map[int]*course.Course),
		modules:       make(map[int]*course.Module),
		prerequisites: make(map[int]*course.Prerequisite),
		enrollments:   make(map[int]*enrollment.Enrollment),
		attendance:    make(map[int]*attendance.Record),
		sessions:      make(map[int]*attendance.Session),
		progress:      make(map[int]*progress.Tracking),
	}, nil
}

// nextPK must be called with the write lock held.
func (db *DB) nextPK() int {
	db.pkCount++
	return db.pkCount
}

func (db *DB) BeginTxx(ctx context.Context, opts *sql.TxOptions) (core.DBTransactor, error) {
	return &Tx{db: db}, nil
}

// Tx emulates a transaction by collecting undo functions; Rollback replays
// them in reverse, Commit discards them.
type Tx struct {
	executor
	db   *DB
	undo []func()
}

var _ core.DBTransactor = (*Tx)(nil)

func (tx *Tx) onRollback(fn func()) {
	tx.undo = append(tx.undo, fn)
}

func (tx *Tx) Commit() error {
	tx.undo = nil
	return nil
}

func (tx *Tx) Rollback() error {
	tx.db.Lock()
	defer tx.db.Unlock()

	for i := len(tx.undo) - 1; i >= 0; i-- {
		tx.undo[i]()
	}
	tx.undo = nil
	return nil
}

// undoableTx extracts a *Tx from a repository's optional exec argument so
// writes performed within it can be reverted on rollback.
func undoableTx(exec []core.DBExecutor) *Tx {
	if len(exec) > 0 {
		if tx, ok := exec[0].(*Tx); ok {
			return tx
		}
	}
	return nil
}

// executor stubs the SQL surface; dummy repositories never issue queries.
type executor struct{}

func (executor) ExecContext(context.Context, string, ...interface{}) (sql.Result, error) {
	return nil, nil
}
func (executor) QueryxContext(context.Context, string, ...interface{}) (*sqlx.Rows, error) {
	return nil, nil
}
func (executor) QueryRowxContext(context.Context, string, ...interface{}) *sqlx.Row {
	return nil
}
func (executor) GetContext(context.Context, interface{}, string, ...interface{}) error {
	return nil
}
func (executor) SelectContext(context.Context, interface{}, string, ...interface{}) error {
	return nil
}
