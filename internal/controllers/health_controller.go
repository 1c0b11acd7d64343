package controllers

import (
	"fmt"
	"net/http"
	"postit/internal/persistence/interfaces"
	"postit/internal/services"
	"time"

	json "github.com/goccy/go-json"
)

type HealthController struct {
	service   services.SocialServiceInterface
	autosaver interfaces.AutosaverInterface
	startTime time.Time
}

type healthResponse struct {
	Status        string     `json:"status"`
	Uptime        string     `json:"uptime"`
	UptimeSeconds float64    `json:"uptime_seconds"`
	Users         int        `json:"users"`
	Posts         int        `json:"posts"`
	Comments      int        `json:"comments"`
	LastSaved     *time.Time `json:"last_saved"`
}

func (hc *HealthController) Health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	uptime := time.Since(hc.startTime)
	stats := hc.service.Stats()
	resp := healthResponse{
		Status:        "ok",
		Uptime:        formatDuration(uptime),
		UptimeSeconds: uptime.Seconds(),
		Users:         stats.Users,
		Posts:         stats.Posts,
		Comments:      stats.Comments,
	}
	if saved := hc.autosaver.LastSaved(); !saved.IsZero() {
		saved = saved.UTC()
		resp.LastSaved = &saved
	}

	gson, err := json.Marshal(resp)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(gson)
}

func formatDuration(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60
	return fmt.Sprintf("%dh%dm%ds", hours, minutes, seconds)
}

func NewHealthController(service services.SocialServiceInterface, autosaver interfaces.AutosaverInterface) *HealthController {
	return &HealthController{
		service:   service,
		autosaver: autosaver,
		startTime: time.Now(),
	}
}
