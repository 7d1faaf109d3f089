// Package sqlxrepos implements the core repositories on PostgreSQL.
package sqlxrepos

import (
	"strings"

	"github.com/lib/pq"

	"github.com/boardwave/academy/core"
)

// PostgreSQL error codes
const (
	pqUniqueViolation = pq.ErrorCode("23505")
	pqFKeyViolation   = pq.ErrorCode("23503")
)

func isUniqueViolation(err error) bool {
	pqErr, ok := err.(*pq.Error)
	return ok && pqErr.Code == pqUniqueViolation
}

func isFKeyViolation(err error) bool {
	pqErr, ok := err.(*pq.Error)
	return ok && pqErr.Code == pqFKeyViolation
}

type repository struct {
	exec core.DBExecutor
}

func (repo repository) getExec(svcExec []core.DBExecutor) core.DBExecutor {
	if len(svcExec) > 0 {
		return svcExec[0]
	}
	return repo.exec
}

func orderBy(ordering []core.DBOrdering) string {
	if len(ordering) == 0 {
		return ""
	}
	orderList := make([]string, 0, len(ordering))
	for _, ord := range ordering {
		orderList = append(orderList, ord.String())
	}
	return " ORDER BY " + strings.Join(orderList, ", ")
}
