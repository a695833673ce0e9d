package handler

import (
	"net/http"

	"github.com/Temutjin2k/kekelink/internal/domain/models"
	"github.com/Temutjin2k/kekelink/pkg/logger"
	wrap "github.com/Temutjin2k/kekelink/pkg/logger/wrapper"
)

type HubStatser interface {
	Stats() models.HubStats
}

type Health struct {
	serviceName string
	hub         HubStatser
	log         logger.Logger
}

func NewHealth(serviceName string, hub HubStatser, log logger.Logger) *Health {
	return &Health{
		serviceName: serviceName,
		hub:         hub,
		log:         log,
	}
}

// HealthCheck godoc
// @Summary      Health Check
// @Description  Returns the health status of the service and realtime hub counters
// @Tags         Health
// @Produce      json
// @Success      200  {object}  map[string]any
// @Router       /health [get]
func (a *Health) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "health_check")

	response := envelope{
		"status": "available",
		"system_info": map[string]string{
			"service-name": a.serviceName,
		},
		"hub": a.hub.Stats(),
	}

	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		a.log.Error(ctx, "healthcheck", err)
	}
}
