package dummydb

import (
	"context"
	"sort"
	"time"

	"github.com/boardwave/academy/core"
	"github.com/boardwave/academy/core/attendance"
)

type attendanceRepository struct {
	db *DB
}

var _ attendance.Repository = (*attendanceRepository)(nil) // interface compliance check

func NewAttendanceRepository(db *DB) *attendanceRepository {
	return &attendanceRepository{db: db}
}

func (repo *attendanceRepository) CreateRecord(ctx context.Context, rec attendance.Record, exec ...core.DBExecutor) (attendance.Record, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.cohorts[rec.CohortID]; !ok {
		return attendance.Record{}, attendance.ErrNotFound
	}
	if _, ok := repo.db.users[rec.UserID]; !ok {
		return attendance.Record{}, attendance.ErrNotFound
	}

	rec.ID = repo.db.nextPK()
	if rec.RecordedAt.IsZero() {
		rec.RecordedAt = time.Now().UTC()
	}
	repo.db.attendance[rec.ID] = &rec

	if tx := undoableTx(exec); tx != nil {
		id := rec.ID
		tx.onRollback(func() { delete(repo.db.attendance, id) })
	}
	return rec, nil
}

func (repo *attendanceRepository) QueryRecords(ctx context.Context, cohortID, userID int, exec ...core.DBExecutor) ([]attendance.Record, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	records := make([]attendance.Record, 0)
	for _, rec := range repo.db.attendance {
		if cohortID != 0 && rec.CohortID != cohortID {
			continue
		}
		if userID != 0 && rec.UserID != userID {
			continue
		}
		records = append(records, *rec)
	}
	sort.Slice(records, func(i, j int) bool { return records[i].ID < records[j].ID })
	return records, nil
}

func (repo *attendanceRepository) GetCohortStats(ctx context.Context, cohortID int, exec ...core.DBExecutor) (attendance.CohortStats, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var stats attendance.CohortStats
	users := make(map[int]bool)
	dates := make(map[string]bool)

	for _, rec := range repo.db.attendance {
		if rec.CohortID != cohortID {
			continue
		}
		stats.TotalRecords++
		users[rec.UserID] = true
		dates[rec.SessionDate.Format("2006-01-02")] = true

		switch rec.Status {
		case attendance.StatusPresent:
			stats.PresentCount++
		case attendance.StatusAbsent:
			stats.AbsentCount++
		case attendance.StatusLate:
			stats.LateCount++
		case attendance.StatusExcused:
			stats.ExcusedCount++
		}
	}
	stats.UniqueParticipants = len(users)
	stats.TotalSessions = len(dates)
	return stats, nil
}

func (repo *attendanceRepository) DeleteRecordsByID(ctx context.Context, ids []int, exec ...core.DBExecutor) (int, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	var cnt int
	for _, id := range ids {
		if _, ok := repo.db.attendance[id]; ok {
			delete(repo.db.attendance, id)
			cnt++
		}
	}
	return cnt, nil
}

func (repo *attendanceRepository) CreateSession(ctx context.Context, sess attendance.Session, exec ...core.DBExecutor) (attendance.Session, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.cohorts[sess.CohortID]; !ok {
		return attendance.Session{}, attendance.ErrNotFound
	}
	sess.ID = repo.db.nextPK()
	sess.CreatedAt = time.Now().UTC()
	repo.db.sessions[sess.ID] = &sess
	return sess, nil
}

func (repo *attendanceRepository) QuerySessionsByCohort(ctx context.Context, cohortID int, exec ...core.DBExecutor) ([]attendance.Session, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	sessions := make([]attendance.Session, 0)
	for _, sess := range repo.db.sessions {
		if sess.CohortID == cohortID {
			sessions = append(sessions, *sess)
		}
	}
	sort.Slice(sessions, func(i, j int) bool { return sessions[i].Date.Before(sessions[j].Date) })
	return sessions, nil
}

func (repo *attendanceRepository) QuerySessionsWithStats(ctx context.Context, cohortID int, exec ...core.DBExecutor) ([]attendance.SessionWithStats, error) {
	sessions, err := repo.QuerySessionsByCohort(ctx, cohortID, exec...)
	if err != nil {
		return nil, err
	}

	repo.db.RLock()
	defer repo.db.RUnlock()

	stats := make([]attendance.SessionWithStats, 0, len(sessions))
	for _, sess := range sessions {
		withStats := attendance.SessionWithStats{Session: sess}
		for _, rec := range repo.db.attendance {
			// records join sessions on (cohort_id, session_date)
			if rec.CohortID != sess.CohortID || !sameDay(rec.SessionDate, sess.Date) {
				continue
			}
			withStats.RecordedCount++
			switch rec.Status {
			case attendance.StatusPresent:
				withStats.PresentCount++
			case attendance.StatusAbsent:
				withStats.AbsentCount++
			}
		}
		stats = append(stats, withStats)
	}
	return stats, nil
}

func sameDay(a, b time.Time) bool {
	return a.Format("2006-01-02") == b.Format("2006-01-02")
}

func (repo *attendanceRepository) GetSession(ctx context.Context, id int, exec ...core.DBExecutor) (attendance.Session, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if sess, ok := repo.db.sessions[id]; ok {
		return *sess, nil
	}
	return attendance.Session{}, attendance.ErrSessionNotFound
}

func (repo *attendanceRepository) UpdateSession(ctx context.Context, sess attendance.Session, exec ...core.DBExecutor) (attendance.Session, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.sessions[sess.ID]; !ok {
		return attendance.Session{}, attendance.ErrSessionNotFound
	}
	repo.db.sessions[sess.ID] = &sess
	return sess, nil
}

func (repo *attendanceRepository) DeleteSessionsByID(ctx context.Context, ids []int, exec ...core.DBExecutor) (int, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	var cnt int
	for _, id := range ids {
		if _, ok := repo.db.sessions[id]; ok {
			delete(repo.db.sessions, id)
			cnt++
		}
	}
	return cnt, nil
}
