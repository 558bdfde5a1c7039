package handlers

import (
	"net/http"
	"strings"
	"time"

	domain "github.com/homechef/api/internal/domain"
	"github.com/homechef/api/internal/platform/httpx"
	"github.com/homechef/api/internal/services"
)

// HealthHandlers serves liveness and readiness probes.
type HealthHandlers struct {
	build  services.BuildInfo
	clock  func() time.Time
	system services.SystemService
}

// HealthOption customises HealthHandlers.
type HealthOption func(*HealthHandlers)

// WithHealthBuildInfo sets the build metadata reported by both probes.
func WithHealthBuildInfo(info services.BuildInfo) HealthOption {
	return func(h *HealthHandlers) {
		h.build = info
	}
}

// WithHealthClock overrides the clock used for uptime and timestamps.
func WithHealthClock(clock func() time.Time) HealthOption {
	return func(h *HealthHandlers) {
		if clock != nil {
			h.clock = clock
		}
	}
}

// WithHealthSystemService installs the service that runs dependency checks for /readyz.
func WithHealthSystemService(svc services.SystemService) HealthOption {
	return func(h *HealthHandlers) {
		h.system = svc
	}
}

// NewHealthHandlers constructs probe handlers. Without a system service /readyz mirrors /healthz.
func NewHealthHandlers(opts ...HealthOption) *HealthHandlers {
	h := &HealthHandlers{clock: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(h)
		}
	}
	if h.build.StartedAt.IsZero() {
		h.build.StartedAt = h.clock()
	}
	return h
}

type healthCheckPayload struct {
	Status    string `json:"status"`
	Detail    string `json:"detail,omitempty"`
	Error     string `json:"error,omitempty"`
	LatencyMS int64  `json:"latencyMs"`
	CheckedAt string `json:"checkedAt,omitempty"`
}

type healthResponse struct {
	Status      string                        `json:"status"`
	Version     string                        `json:"version,omitempty"`
	CommitSHA   string                        `json:"commitSha,omitempty"`
	Environment string                        `json:"environment,omitempty"`
	Uptime      string                        `json:"uptime"`
	Timestamp   string                        `json:"timestamp"`
	Checks      map[string]healthCheckPayload `json:"checks,omitempty"`
	Details     []string                      `json:"details,omitempty"`
}

// Healthz reports liveness with build metadata.
func (h *HealthHandlers) Healthz(w http.ResponseWriter, r *http.Request) {
	now := h.clock().UTC()
	httpx.WriteJSON(w, http.StatusOK, healthResponse{
		Status:      domain.HealthStatusOK,
		Version:     h.build.Version,
		CommitSHA:   h.build.CommitSHA,
		Environment: h.build.Environment,
		Uptime:      now.Sub(h.build.StartedAt).Round(time.Second).String(),
		Timestamp:   now.Format(time.RFC3339),
	})
}

// Readyz answers 200 only when the system report is ok. Failing checks are summarised in
// details so an operator can read the cause from the probe log.
func (h *HealthHandlers) Readyz(w http.ResponseWriter, r *http.Request) {
	if h.system == nil {
		h.Healthz(w, r)
		return
	}
	report, err := h.system.HealthReport(r.Context())
	if err != nil {
		httpx.WriteError(r.Context(), w, httpx.NewError("health_check_failed", err.Error(), http.StatusServiceUnavailable))
		return
	}

	now := h.clock().UTC()
	if report.Uptime <= 0 {
		report.Uptime = now.Sub(h.build.StartedAt)
	}
	if report.GeneratedAt.IsZero() {
		report.GeneratedAt = now
	}
	resp := healthResponse{
		Status:      report.Status,
		Version:     firstNonBlank(report.Version, h.build.Version),
		CommitSHA:   firstNonBlank(report.CommitSHA, h.build.CommitSHA),
		Environment: firstNonBlank(report.Environment, h.build.Environment),
		Uptime:      report.Uptime.Round(time.Second).String(),
		Timestamp:   report.GeneratedAt.UTC().Format(time.RFC3339),
		Checks:      make(map[string]healthCheckPayload, len(report.Checks)),
	}
	for name, check := range report.Checks {
		resp.Checks[name] = healthCheckPayload{
			Status:    check.Status,
			Detail:    check.Detail,
			Error:     check.Error,
			LatencyMS: check.Latency.Milliseconds(),
			CheckedAt: httpx.FormatTime(check.CheckedAt),
		}
	}
	for _, name := range report.FailingChecks() {
		check := report.Checks[name]
		resp.Details = append(resp.Details, name+": "+firstNonBlank(check.Error, check.Detail, check.Status))
	}

	status := http.StatusOK
	if report.Status != domain.HealthStatusOK {
		status = http.StatusServiceUnavailable
	}
	httpx.WriteJSON(w, status, resp)
}

func firstNonBlank(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return value
		}
	}
	return ""
}
