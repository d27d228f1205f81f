package handler

import (
	"net/http"
	"time"

	"github.com/skycast/skycast/internal/api/models"
	"github.com/skycast/skycast/internal/api/response"
	"github.com/skycast/skycast/internal/provider/resilience"
	"github.com/skycast/skycast/internal/session"
	"github.com/skycast/skycast/internal/worker"
)

// RefreshStats exposes the counters of the periodic refresh job.
type RefreshStats interface {
	GetMetrics() worker.RefreshMetrics
}

// OpsConfig holds the dependencies of the operational endpoints.
type OpsConfig struct {
	Version   string
	BuildTime string

	// Registry supplies provider health; nil reports no providers.
	Registry *resilience.Registry

	// Session is optional.
	Session *session.Session

	AdvisoryEnabled bool
	RefreshInterval time.Duration

	// RefreshStats is optional.
	RefreshStats RefreshStats
}

// OpsHandler handles operational endpoints.
type OpsHandler struct {
	cfg OpsConfig
}

// NewOpsHandler creates a new OpsHandler.
func NewOpsHandler(cfg OpsConfig) *OpsHandler {
	return &OpsHandler{cfg: cfg}
}

// HealthCheck handles GET /v1/ops/health - liveness check.
func (h *OpsHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	health := models.Health{
		Status: models.HealthStatusOK,
		Time:   models.Timestamp(time.Now()),
		Details: map[string]interface{}{
			"version":   h.cfg.Version,
			"buildTime": h.cfg.BuildTime,
		},
	}
	response.JSON(w, r, http.StatusOK, health)
}

// ReadinessCheck handles GET /v1/ops/ready - readiness check. The service is
// not ready while any provider circuit is open.
func (h *OpsHandler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	health := models.Health{
		Status: models.HealthStatusOK,
		Time:   models.Timestamp(time.Now()),
	}

	var open []string
	for _, p := range h.providers() {
		if p.Status() == resilience.StatusUnhealthy {
			open = append(open, p.Name)
		}
	}
	if len(open) > 0 {
		health.Status = models.HealthStatusFail
		health.Details = map[string]interface{}{"unavailableProviders": open}
		response.JSON(w, r, http.StatusServiceUnavailable, health)
		return
	}
	response.JSON(w, r, http.StatusOK, health)
}

// SystemStatus handles GET /v1/ops/status - provider and subsystem status.
func (h *OpsHandler) SystemStatus(w http.ResponseWriter, r *http.Request) {
	status := models.SystemStatus{
		Status:     models.HealthStatusOK,
		Time:       models.Timestamp(time.Now()),
		Subsystems: h.subsystems(),
		Providers:  []models.ProviderStatus{},
	}

	for _, p := range h.providers() {
		ps := models.ProviderStatus{
			Provider:      p.Name,
			Status:        providerStatus(p),
			CircuitState:  p.CircuitState.String(),
			LastSuccessAt: timestampPtr(p.LastSuccessAt),
			LastFailureAt: timestampPtr(p.LastFailureAt),
		}
		if p.LastError != "" {
			msg := p.LastError
			ps.Message = &msg
		}
		if ps.Status != models.HealthStatusOK {
			status.Status = models.HealthStatusDegraded
		}
		status.Providers = append(status.Providers, ps)
	}

	response.JSON(w, r, http.StatusOK, status)
}

func (h *OpsHandler) providers() []*resilience.ProviderHealth {
	if h.cfg.Registry == nil {
		return nil
	}
	return h.cfg.Registry.GetAllHealth()
}

func (h *OpsHandler) subsystems() []models.SubsystemStatus {
	var subsystems []models.SubsystemStatus

	if h.cfg.Session != nil {
		sub := models.SubsystemStatus{Name: "session", Status: models.HealthStatusOK}
		if q := h.cfg.Session.LastQuery(); q != "" {
			sub.Detail = &q
		}
		subsystems = append(subsystems, sub)
	}

	advisory := models.SubsystemStatus{Name: "advisory", Status: models.HealthStatusOK}
	if !h.cfg.AdvisoryEnabled {
		detail := "disabled: no API key configured"
		advisory.Status = models.HealthStatusDegraded
		advisory.Detail = &detail
	}
	subsystems = append(subsystems, advisory)

	subsystems = append(subsystems, h.refreshStatus())

	return subsystems
}

// refreshStatus is degraded while the most recent refresh run failed.
func (h *OpsHandler) refreshStatus() models.SubsystemStatus {
	refresh := models.SubsystemStatus{Name: "refresh", Status: models.HealthStatusOK}
	detail := "disabled"
	if h.cfg.RefreshInterval > 0 {
		detail = "every " + h.cfg.RefreshInterval.String()
	}

	if h.cfg.RefreshStats != nil {
		m := h.cfg.RefreshStats.GetMetrics()
		refresh.Counters = map[string]int64{
			"total":      m.TotalRefreshes,
			"successful": m.SuccessfulRefresh,
			"failed":     m.FailedRefreshes,
			"skipped":    m.SkippedRefreshes,
		}
		if !m.LastRefreshAt.IsZero() {
			refresh.LastRunAt = timestampPtr(&m.LastRefreshAt)
		}
		if m.LastError != "" {
			refresh.Status = models.HealthStatusDegraded
			detail += "; last run failed: " + m.LastError
		}
	}

	refresh.Detail = &detail
	return refresh
}

func providerStatus(p *resilience.ProviderHealth) models.HealthStatus {
	switch p.Status() {
	case resilience.StatusUnhealthy:
		return models.HealthStatusFail
	case resilience.StatusDegraded:
		return models.HealthStatusDegraded
	default:
		return models.HealthStatusOK
	}
}

func timestampPtr(t *time.Time) *models.Timestamp {
	if t == nil {
		return nil
	}
	ts := models.Timestamp(*t)
	return &ts
}
