package controllers

import (
	"fmt"
	"net/http"
	"time"

	"zoblogs/internal/registry"
)

type HealthController struct {
	registry  registry.RegistryInterface
	startTime time.Time
}

type healthResponse struct {
	Status        string  `json:"status"`
	Uptime        string  `json:"uptime"`
	UptimeSeconds float64 `json:"uptime_seconds"`
	RegistryCoins int     `json:"registry_coins"`
}

func (hc *HealthController) Health(w http.ResponseWriter, r *http.Request) {
	uptime := time.Since(hc.startTime)
	resp := healthResponse{
		Status:        "ok",
		Uptime:        formatDuration(uptime),
		UptimeSeconds: uptime.Seconds(),
	}

	status := http.StatusOK
	coins, err := hc.registry.GetPlatformCoins(r.Context())
	if err != nil {
		resp.Status = "degraded"
		status = http.StatusServiceUnavailable
	}
	resp.RegistryCoins = len(coins)

	writeJSON(w, status, resp)
}

func formatDuration(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60
	return fmt.Sprintf("%dh%dm%ds", hours, minutes, seconds)
}

func NewHealthController(registry registry.RegistryInterface) *HealthController {
	return &HealthController{
		registry:  registry,
		startTime: time.Now(),
	}
}
