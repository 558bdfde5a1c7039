package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	domain "github.com/homechef/api/internal/domain"
	"github.com/homechef/api/internal/repositories"
)

type stubHealthRepository struct {
	report domain.SystemHealthReport
	err    error
}

var _ repositories.HealthRepository = (*stubHealthRepository)(nil)

func (s *stubHealthRepository) Collect(context.Context) (domain.SystemHealthReport, error) {
	return s.report, s.err
}

func checks(statuses map[string]string) map[string]domain.SystemHealthCheck {
	out := make(map[string]domain.SystemHealthCheck, len(statuses))
	for name, status := range statuses {
		out[name] = domain.SystemHealthCheck{Status: status}
	}
	return out
}

func TestSystemService_HealthReportAddsBuildInfo(t *testing.T) {
	started := time.Date(2026, time.March, 1, 6, 0, 0, 0, time.UTC)
	now := started.Add(90 * time.Minute)
	repo := &stubHealthRepository{report: domain.SystemHealthReport{
		Checks: checks(map[string]string{"price_table": domain.HealthStatusOK}),
	}}

	svc, err := NewSystemService(SystemServiceDeps{
		HealthRepository: repo,
		Clock:            func() time.Time { return now },
		Build:            BuildInfo{Version: "0.4.0", CommitSHA: "9f1c2e", Environment: "staging", StartedAt: started},
	})
	require.NoError(t, err)

	report, err := svc.HealthReport(context.Background())
	require.NoError(t, err)
	require.Equal(t, domain.HealthStatusOK, report.Status)
	require.Equal(t, "0.4.0", report.Version)
	require.Equal(t, "9f1c2e", report.CommitSHA)
	require.Equal(t, "staging", report.Environment)
	require.Equal(t, 90*time.Minute, report.Uptime)
	require.Equal(t, now, report.GeneratedAt)
}

func TestSystemService_KeepsRepositoryValues(t *testing.T) {
	generated := time.Date(2026, time.March, 1, 7, 0, 0, 0, time.FixedZone("WAT", 3600))
	repo := &stubHealthRepository{report: domain.SystemHealthReport{
		Status:      domain.HealthStatusDegraded,
		Version:     "from-repo",
		GeneratedAt: generated,
	}}
	svc, err := NewSystemService(SystemServiceDeps{HealthRepository: repo, Build: BuildInfo{Version: "0.4.0"}})
	require.NoError(t, err)

	report, err := svc.HealthReport(context.Background())
	require.NoError(t, err)
	require.Equal(t, domain.HealthStatusDegraded, report.Status)
	require.Equal(t, "from-repo", report.Version)
	require.Equal(t, time.UTC, report.GeneratedAt.Location())
	require.True(t, report.GeneratedAt.Equal(generated))
	require.NotNil(t, report.Checks)
}

func TestSystemService_DerivesStatus(t *testing.T) {
	cases := map[string]struct {
		checks map[string]string
		want   string
	}{
		"no checks":     {want: domain.HealthStatusOK},
		"all ok":        {checks: map[string]string{"firestore": "ok", "price_table": "ok"}, want: domain.HealthStatusOK},
		"one degraded":  {checks: map[string]string{"firestore": "degraded", "price_table": "ok"}, want: domain.HealthStatusDegraded},
		"error wins":    {checks: map[string]string{"firestore": "degraded", "price_table": "error"}, want: domain.HealthStatusError},
		"unknown value": {checks: map[string]string{"firestore": "flaky"}, want: domain.HealthStatusDegraded},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			svc, err := NewSystemService(SystemServiceDeps{HealthRepository: &stubHealthRepository{
				report: domain.SystemHealthReport{Checks: checks(tc.checks)},
			}})
			require.NoError(t, err)
			report, err := svc.HealthReport(context.Background())
			require.NoError(t, err)
			require.Equal(t, tc.want, report.Status)
		})
	}
}

func TestSystemService_LogsFailingChecks(t *testing.T) {
	repo := &stubHealthRepository{report: domain.SystemHealthReport{
		Checks: checks(map[string]string{"price_table": "error", "firestore": "degraded", "idempotency": "ok"}),
	}}
	var events []string
	var failing any
	svc, err := NewSystemService(SystemServiceDeps{
		HealthRepository: repo,
		Logger: func(_ context.Context, event string, fields map[string]any) {
			events = append(events, event)
			failing = fields["failing"]
		},
	})
	require.NoError(t, err)

	_, err = svc.HealthReport(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"system.health_not_ok"}, events)
	require.Equal(t, []string{"firestore", "price_table"}, failing)
}

func TestSystemService_Errors(t *testing.T) {
	_, err := NewSystemService(SystemServiceDeps{})
	require.Error(t, err)

	collectErr := errors.New("collect failed")
	svc, err := NewSystemService(SystemServiceDeps{HealthRepository: &stubHealthRepository{err: collectErr}})
	require.NoError(t, err)
	_, err = svc.HealthReport(context.Background())
	require.ErrorIs(t, err, collectErr)
}
