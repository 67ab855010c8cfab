// Package handler provides HTTP handlers for the ChargeSpot API.
package handler

import (
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/chargespot/chargespot/internal/api/models"
	"github.com/chargespot/chargespot/internal/api/response"
	"github.com/chargespot/chargespot/internal/provider/resilience"
	"github.com/chargespot/chargespot/internal/station"
)

// OpsHandler handles operational endpoints.
type OpsHandler struct {
	version   string
	buildTime string
	registry  *resilience.Registry
	service   *station.Service
}

// NewOpsHandler creates a new OpsHandler.
func NewOpsHandler(version, buildTime string, registry *resilience.Registry, service *station.Service) *OpsHandler {
	return &OpsHandler{
		version:   version,
		buildTime: buildTime,
		registry:  registry,
		service:   service,
	}
}

// HealthCheck handles GET /v1/ops/health - liveness check.
func (h *OpsHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, r, http.StatusOK, models.Health{
		Status: models.HealthStatusOK,
		Time:   time.Now(),
		Details: map[string]interface{}{
			"version":   h.version,
			"buildTime": h.buildTime,
		},
	})
}

// ReadinessCheck handles GET /v1/ops/ready - readiness check. The
// service has no hard dependencies at startup, so readiness follows
// liveness.
func (h *OpsHandler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, r, http.StatusOK, models.Health{
		Status: models.HealthStatusOK,
		Time:   time.Now(),
	})
}

// SystemStatus handles GET /v1/ops/status - provider circuit health and
// search state.
func (h *OpsHandler) SystemStatus(w http.ResponseWriter, r *http.Request) {
	status := models.SystemStatus{
		Status:    models.HealthStatusOK,
		Time:      time.Now(),
		Searching: h.service.Searching(),
	}

	if h.registry != nil {
		for _, ph := range h.registry.GetAllHealth() {
			ps := models.ProviderStatus{
				Provider:      ph.Name,
				Status:        models.HealthStatusOK,
				CircuitState:  ph.CircuitState.String(),
				LastSuccessAt: ph.LastSuccessAt,
				LastFailureAt: ph.LastFailureAt,
				LastError:     ph.LastError,
			}
			switch ph.CircuitState {
			case gobreaker.StateOpen:
				ps.Status = models.HealthStatusFail
				status.Status = models.HealthStatusDegraded
			case gobreaker.StateHalfOpen:
				ps.Status = models.HealthStatusDegraded
				status.Status = models.HealthStatusDegraded
			}
			status.Providers = append(status.Providers, ps)
		}
	}

	response.JSON(w, r, http.StatusOK, status)
}
