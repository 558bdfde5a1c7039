package domain

import (
	"slices"
	"time"
)

// Pagination is a cursor page request. PageToken is opaque to callers.
type Pagination struct {
	PageSize  int
	PageToken string
}

// CursorPage is one page of T and the token for the next one, empty on the last page.
type CursorPage[T any] struct {
	Items         []T
	NextPageToken string
}

// Health statuses in increasing order of severity.
const (
	HealthStatusOK       = "ok"
	HealthStatusDegraded = "degraded"
	HealthStatusError    = "error"
)

func healthRank(status string) int {
	switch status {
	case HealthStatusOK, "":
		return 0
	case HealthStatusError:
		return 2
	default:
		return 1
	}
}

// WorstHealthStatus returns the most severe of statuses. Unknown values count as degraded and an
// empty list is ok.
func WorstHealthStatus(statuses ...string) string {
	worst := 0
	for _, status := range statuses {
		if r := healthRank(status); r > worst {
			worst = r
		}
	}
	return [...]string{HealthStatusOK, HealthStatusDegraded, HealthStatusError}[worst]
}

// SystemHealthCheck is the outcome of one readiness probe, e.g. the price table or Firestore.
type SystemHealthCheck struct {
	Status    string
	Detail    string
	Error     string
	Latency   time.Duration
	CheckedAt time.Time
}

// SystemHealthReport is what /readyz renders.
type SystemHealthReport struct {
	Status      string
	Checks      map[string]SystemHealthCheck
	Version     string
	CommitSHA   string
	Environment string
	Uptime      time.Duration
	GeneratedAt time.Time
}

// FailingChecks lists the names of checks that are not ok, sorted.
func (r SystemHealthReport) FailingChecks() []string {
	var names []string
	for name, check := range r.Checks {
		if healthRank(check.Status) > 0 {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names
}
