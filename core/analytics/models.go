package analytics

// Overview is the admin dashboard headline card.
type Overview struct {
	TotalUsers        int     `json:"totalUsers"`
	ActiveUsers       int     `json:"activeUsers"`
	TotalProgrammes   int     `json:"totalProgrammes"`
	ActiveCohorts     int     `json:"activeCohorts"`
	TotalEnrollments  int     `json:"totalEnrollments"`
	OverallAttendance float64 `json:"overallAttendanceRate"`
}

// ProgrammeStats aggregates a programme's cohorts, enrollments and attendance.
type ProgrammeStats struct {
	ProgrammeID       int     `json:"programmeId"`
	ProgrammeName     string  `json:"programmeName"`
	CohortCount       int     `json:"cohortCount"`
	EnrolledCount     int     `json:"enrolledCount"`
	CompletedCount    int     `json:"completedCount"`
	AvgCompletion     float64 `json:"avgCompletionPercentage"`
	AttendanceRate    float64 `json:"attendanceRate"`
	TotalSessionCount int     `json:"totalSessionCount"`
}

// UserEngagement is a per-user activity row for mentor views.
type UserEngagement struct {
	UserID           int     `json:"userId"`
	FullName         string  `json:"fullName"`
	EnrollmentCount  int     `json:"enrollmentCount"`
	ModulesCompleted int     `json:"modulesCompleted"`
	ModulesInTotal   int     `json:"modulesInTotal"`
	AttendanceRate   float64 `json:"attendanceRate"`
}
