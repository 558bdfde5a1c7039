package services

import (
	"context"
	"errors"
	"strings"
	"time"

	domain "github.com/homechef/api/internal/domain"
	"github.com/homechef/api/internal/repositories"
)

// BuildInfo is the release metadata shown on /readyz.
type BuildInfo struct {
	Version     string
	CommitSHA   string
	Environment string
	StartedAt   time.Time
}

// SystemServiceDeps bundles collaborators for NewSystemService.
type SystemServiceDeps struct {
	HealthRepository repositories.HealthRepository
	Clock            func() time.Time
	Build            BuildInfo
	Logger           func(ctx context.Context, event string, fields map[string]any)
}

type systemService struct {
	health repositories.HealthRepository
	now    func() time.Time
	build  BuildInfo
	log    func(context.Context, string, map[string]any)
}

var _ SystemService = (*systemService)(nil)

// NewSystemService reports readiness of the estimator backends. A zero StartedAt means the
// process started now.
func NewSystemService(deps SystemServiceDeps) (SystemService, error) {
	if deps.HealthRepository == nil {
		return nil, errors.New("system service: health repository is required")
	}
	svc := &systemService{
		health: deps.HealthRepository,
		now:    time.Now,
		build:  deps.Build,
		log:    deps.Logger,
	}
	if deps.Clock != nil {
		svc.now = deps.Clock
	}
	if svc.log == nil {
		svc.log = func(context.Context, string, map[string]any) {}
	}
	if svc.build.StartedAt.IsZero() {
		svc.build.StartedAt = svc.now()
	}
	return svc, nil
}

func (s *systemService) HealthReport(ctx context.Context) (SystemHealthReport, error) {
	if ctx == nil {
		return SystemHealthReport{}, errors.New("system service: context is required")
	}
	report, err := s.health.Collect(ctx)
	if err != nil {
		return SystemHealthReport{}, err
	}

	now := s.now().UTC()
	if report.GeneratedAt.IsZero() {
		report.GeneratedAt = now
	} else {
		report.GeneratedAt = report.GeneratedAt.UTC()
	}
	fillBlank(&report.Version, s.build.Version)
	fillBlank(&report.CommitSHA, s.build.CommitSHA)
	fillBlank(&report.Environment, s.build.Environment)
	if report.Uptime <= 0 {
		report.Uptime = now.Sub(s.build.StartedAt)
	}
	if report.Checks == nil {
		report.Checks = map[string]domain.SystemHealthCheck{}
	}
	if strings.TrimSpace(report.Status) == "" {
		statuses := make([]string, 0, len(report.Checks))
		for _, check := range report.Checks {
			statuses = append(statuses, check.Status)
		}
		report.Status = domain.WorstHealthStatus(statuses...)
	}

	if report.Status != domain.HealthStatusOK {
		s.log(ctx, "system.health_not_ok", map[string]any{"status": report.Status, "failing": report.FailingChecks()})
	}
	return report, nil
}

func fillBlank(dst *string, fallback string) {
	if strings.TrimSpace(*dst) == "" {
		*dst = fallback
	}
}
