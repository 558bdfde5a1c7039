package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	domain "github.com/homechef/api/internal/domain"
)

const defaultDependencyTimeout = 1500 * time.Millisecond

// DependencyCheck is one readiness probe, e.g. the loaded price table or the Firestore backend.
type DependencyCheck struct {
	Name    string
	Timeout time.Duration
	// Critical failures make the whole report "error"; others only degrade it.
	Critical bool
	Check    func(context.Context) error
}

// DependencyHealthOption customises NewDependencyHealthRepository.
type DependencyHealthOption func(*dependencyHealthRepository)

// WithDependencyTimeout applies to checks that set no timeout of their own.
func WithDependencyTimeout(timeout time.Duration) DependencyHealthOption {
	return func(repo *dependencyHealthRepository) {
		if timeout > 0 {
			repo.defaultTimeout = timeout
		}
	}
}

func WithDependencyClock(clock func() time.Time) DependencyHealthOption {
	return func(repo *dependencyHealthRepository) {
		if clock != nil {
			repo.now = clock
		}
	}
}

type dependencyHealthRepository struct {
	checks         []DependencyCheck
	defaultTimeout time.Duration
	now            func() time.Time
}

var _ HealthRepository = (*dependencyHealthRepository)(nil)

// NewDependencyHealthRepository runs checks concurrently on every Collect. Names must be unique
// and non-blank.
func NewDependencyHealthRepository(checks []DependencyCheck, opts ...DependencyHealthOption) (HealthRepository, error) {
	if len(checks) == 0 {
		return nil, errors.New("health repository: no dependency checks")
	}
	repo := &dependencyHealthRepository{
		checks:         make([]DependencyCheck, 0, len(checks)),
		defaultTimeout: defaultDependencyTimeout,
		now:            time.Now,
	}
	seen := make(map[string]bool, len(checks))
	for _, check := range checks {
		check.Name = strings.TrimSpace(check.Name)
		switch {
		case check.Name == "":
			return nil, errors.New("health repository: dependency check without a name")
		case check.Check == nil:
			return nil, fmt.Errorf("health repository: dependency %s has no check function", check.Name)
		case seen[check.Name]:
			return nil, fmt.Errorf("health repository: dependency %s registered twice", check.Name)
		}
		seen[check.Name] = true
		repo.checks = append(repo.checks, check)
	}
	for _, opt := range opts {
		if opt != nil {
			opt(repo)
		}
	}
	return repo, nil
}

func (r *dependencyHealthRepository) Collect(ctx context.Context) (domain.SystemHealthReport, error) {
	if ctx == nil {
		return domain.SystemHealthReport{}, errors.New("health repository: context is required")
	}

	// Each goroutine owns one slot, so no locking is needed.
	results := make([]domain.SystemHealthCheck, len(r.checks))
	var group errgroup.Group
	for i, check := range r.checks {
		group.Go(func() error {
			results[i] = r.probe(ctx, check)
			return nil
		})
	}
	_ = group.Wait()

	report := domain.SystemHealthReport{
		Status:      domain.HealthStatusOK,
		Checks:      make(map[string]domain.SystemHealthCheck, len(results)),
		GeneratedAt: r.now(),
	}
	for i, check := range r.checks {
		result := results[i]
		report.Checks[check.Name] = result
		status := result.Status
		if check.Critical && status != domain.HealthStatusOK {
			status = domain.HealthStatusError
		}
		report.Status = domain.WorstHealthStatus(report.Status, status)
	}
	return report, nil
}

// probe runs one check. Timeouts and cancellation are errors; any other failure degrades.
func (r *dependencyHealthRepository) probe(ctx context.Context, check DependencyCheck) domain.SystemHealthCheck {
	timeout := check.Timeout
	if timeout <= 0 {
		timeout = r.defaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	started := r.now()
	err := check.Check(ctx)
	if err == nil {
		err = ctx.Err()
	}
	finished := r.now()

	result := domain.SystemHealthCheck{Latency: finished.Sub(started), CheckedAt: finished}
	switch {
	case err == nil:
		result.Status, result.Detail = domain.HealthStatusOK, "ok"
	case errors.Is(err, context.DeadlineExceeded):
		result.Status, result.Detail = domain.HealthStatusError, "timeout"
	case errors.Is(err, context.Canceled):
		result.Status, result.Detail = domain.HealthStatusError, "cancelled"
	default:
		result.Status, result.Detail = domain.HealthStatusDegraded, err.Error()
	}
	if err != nil {
		result.Error = err.Error()
	}
	return result
}
