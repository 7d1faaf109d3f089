package dummydb

import (
	"context"
	"sort"

	"github.com/boardwave/academy/core"
	"github.com/boardwave/academy/core/analytics"
	"github.com/boardwave/academy/core/attendance"
	"github.com/boardwave/academy/core/cohort"
	"github.com/boardwave/academy/core/enrollment"
	"github.com/boardwave/academy/core/progress"
)

type analyticsRepository struct {
	db *DB
}

var _ analytics.Repository = (*analyticsRepository)(nil) // interface compliance check

func NewAnalyticsRepository(db *DB) *analyticsRepository {
	return &analyticsRepository{db: db}
}

func attendanceRate(records []*attendance.Record) float64 {
	if len(records) == 0 {
		return 0
	}
	var present int
	for _, rec := range records {
		if rec.Status == attendance.StatusPresent {
			present++
		}
	}
	return float64(present) / float64(len(records)) * 100
}

func (repo *analyticsRepository) GetOverview(ctx context.Context, exec ...core.DBExecutor) (analytics.Overview, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	overview := analytics.Overview{
		TotalUsers:       len(repo.db.users),
		TotalProgrammes:  len(repo.db.programmes),
		TotalEnrollments: len(repo.db.enrollments),
	}
	for _, usr := range repo.db.users {
		if usr.IsActive != nil && *usr.IsActive {
			overview.ActiveUsers++
		}
	}
	for _, coh := range repo.db.cohorts {
		if coh.Status == cohort.StatusActive {
			overview.ActiveCohorts++
		}
	}

	records := make([]*attendance.Record, 0, len(repo.db.attendance))
	for _, rec := range repo.db.attendance {
		records = append(records, rec)
	}
	overview.OverallAttendance = attendanceRate(records)
	return overview, nil
}

func (repo *analyticsRepository) GetProgrammeStats(ctx context.Context, programmeID int, exec ...core.DBExecutor) (analytics.ProgrammeStats, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	prog, ok := repo.db.programmes[programmeID]
	if !ok {
		return analytics.ProgrammeStats{}, analytics.ErrNotFound
	}

	stats := analytics.ProgrammeStats{ProgrammeID: prog.ID, ProgrammeName: prog.Name}
	progCohorts := make(map[int]bool)
	for id, coh := range repo.db.cohorts {
		if coh.ProgrammeID == programmeID {
			progCohorts[id] = true
			stats.CohortCount++
		}
	}

	var pctSum int
	for _, enr := range repo.db.enrollments {
		if !progCohorts[enr.CohortID] {
			continue
		}
		stats.EnrolledCount++
		pctSum += enr.CompletionPercentage
		if enr.Status == enrollment.StatusCompleted {
			stats.CompletedCount++
		}
	}
	if stats.EnrolledCount > 0 {
		stats.AvgCompletion = float64(pctSum) / float64(stats.EnrolledCount)
	}

	records := make([]*attendance.Record, 0)
	for _, rec := range repo.db.attendance {
		if progCohorts[rec.CohortID] {
			records = append(records, rec)
		}
	}
	stats.AttendanceRate = attendanceRate(records)

	for _, sess := range repo.db.sessions {
		if progCohorts[sess.CohortID] {
			stats.TotalSessionCount++
		}
	}
	return stats, nil
}

func (repo *analyticsRepository) QueryUserEngagement(ctx context.Context, cohortID int, exec ...core.DBExecutor) ([]analytics.UserEngagement, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	engagements := make([]analytics.UserEngagement, 0)
	for _, enr := range repo.db.enrollments {
		if enr.CohortID != cohortID {
			continue
		}
		usr, ok := repo.db.users[enr.UserID]
		if !ok {
			continue
		}

		eng := analytics.UserEngagement{UserID: usr.ID, FullName: usr.FullName()}
		for _, other := range repo.db.enrollments {
			if other.UserID == usr.ID {
				eng.EnrollmentCount++
			}
		}
		for _, trk := range repo.db.progress {
			if trk.UserID != usr.ID {
				continue
			}
			eng.ModulesInTotal++
			if trk.Status == progress.StatusCompleted {
				eng.ModulesCompleted++
			}
		}

		records := make([]*attendance.Record, 0)
		for _, rec := range repo.db.attendance {
			if rec.UserID == usr.ID && rec.CohortID == cohortID {
				records = append(records, rec)
			}
		}
		eng.AttendanceRate = attendanceRate(records)
		engagements = append(engagements, eng)
	}
	sort.Slice(engagements, func(i, j int) bool { return engagements[i].FullName < engagements[j].FullName })
	return engagements, nil
}
