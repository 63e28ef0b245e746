package handler

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mohith182/turbine-ai/internal/dataset"
	"github.com/mohith182/turbine-ai/internal/fleet"
	"github.com/mohith182/turbine-ai/internal/models"
	"github.com/mohith182/turbine-ai/internal/repository"
)

type FleetReader interface {
	Machines(ctx context.Context) ([]fleet.MachineSummary, error)
	Machine(ctx context.Context, id string) (fleet.MachineDetail, error)
	History(ctx context.Context, id string, limit int) ([]dataset.Reading, error)
	Alerts(ctx context.Context) ([]fleet.Alert, error)
	Stats(ctx context.Context) (fleet.Stats, error)
}

type FleetHandler struct {
	Fleet FleetReader
	// Alerts backs the alert log; nil disables /api/alerts/history.
	Alerts repository.AlertRepository
}

type alertRecordView struct {
	ID               uint64    `json:"id"`
	MachineID        string    `json:"machine_id"`
	Severity         string    `json:"severity"`
	PreviousSeverity string    `json:"previous_severity,omitempty"`
	Status           string    `json:"status"`
	HealthScore      float64   `json:"health_score"`
	DaysUntilFailure int       `json:"days_until_failure"`
	RootCauses       []string  `json:"root_causes"`
	Message          string    `json:"message"`
	CreatedAt        time.Time `json:"created_at"`
}

func (h *FleetHandler) Register(r *gin.Engine, requireAuth gin.HandlerFunc) {
	api := r.Group("/api", requireAuth)
	api.GET("/machines", h.listMachines)
	api.GET("/machines/:id", h.getMachine)
	api.GET("/machines/:id/history", h.machineHistory)
	api.GET("/alerts", h.listAlerts)
	api.GET("/alerts/history", h.alertHistory)
	api.GET("/dashboard/stats", h.dashboardStats)
}

// @Summary List machines with current health
// @Tags machines
// @Security BearerAuth
// @Produce json
// @Success 200 {object} apiResponse
// @Failure 503 {object} apiResponse
// @Router /api/machines [get]
func (h *FleetHandler) listMachines(c *gin.Context) {
	items, err := h.Fleet.Machines(c.Request.Context())
	if err != nil {
		ErrorFrom(c, err)
		return
	}
	Ok(c, items, map[string]any{"count": len(items)})
}

// @Summary Machine detail
// @Tags machines
// @Security BearerAuth
// @Produce json
// @Param id path string true "machine id"
// @Success 200 {object} apiResponse
// @Failure 404 {object} apiResponse
// @Router /api/machines/{id} [get]
func (h *FleetHandler) getMachine(c *gin.Context) {
	item, err := h.Fleet.Machine(c.Request.Context(), c.Param("id"))
	if err != nil {
		ErrorFrom(c, err)
		return
	}
	Ok(c, item, nil)
}

// @Summary Machine sensor history
// @Tags machines
// @Security BearerAuth
// @Produce json
// @Param id path string true "machine id"
// @Param limit query int false "readings to return (default 100)"
// @Success 200 {object} apiResponse
// @Failure 404 {object} apiResponse
// @Router /api/machines/{id}/history [get]
func (h *FleetHandler) machineHistory(c *gin.Context) {
	limit := intQuery(c, "limit", fleet.DefaultHistoryLimit)
	items, err := h.Fleet.History(c.Request.Context(), c.Param("id"), limit)
	if err != nil {
		ErrorFrom(c, err)
		return
	}
	Ok(c, gin.H{
		"machine_id": strings.ToUpper(strings.TrimSpace(c.Param("id"))),
		"history":    items,
	}, map[string]any{"count": len(items)})
}

// @Summary Active alerts
// @Tags alerts
// @Security BearerAuth
// @Produce json
// @Success 200 {object} apiResponse
// @Router /api/alerts [get]
func (h *FleetHandler) listAlerts(c *gin.Context) {
	items, err := h.Fleet.Alerts(c.Request.Context())
	if err != nil {
		ErrorFrom(c, err)
		return
	}
	Ok(c, items, map[string]any{"count": len(items)})
}

// @Summary Recorded severity changes
// @Tags alerts
// @Security BearerAuth
// @Produce json
// @Param machine_id query string false "machine id"
// @Param severity query string false "low|medium|high"
// @Param since query string false "RFC3339 lower bound"
// @Param limit query int false "page size"
// @Param offset query int false "page offset"
// @Success 200 {object} apiResponse
// @Router /api/alerts/history [get]
func (h *FleetHandler) alertHistory(c *gin.Context) {
	if h.Alerts == nil {
		Ok(c, []alertRecordView{}, paginationMeta(0, 0, 0))
		return
	}
	limit := repository.NormalizeLimit(intQuery(c, "limit", repository.DefaultPredictionLimit), repository.DefaultPredictionLimit)
	offset := repository.NormalizeOffset(intQuery(c, "offset", 0))
	params := repository.ListAlertsParams{
		MachineID: strings.TrimSpace(c.Query("machine_id")),
		Severity:  strings.TrimSpace(c.Query("severity")),
		Limit:     limit,
		Offset:    offset,
	}
	if since := strings.TrimSpace(c.Query("since")); since != "" {
		if parsed, err := time.Parse(time.RFC3339, since); err == nil {
			parsed = parsed.UTC()
			params.Since = &parsed
		}
	}
	rows, err := h.Alerts.ListAlerts(c.Request.Context(), params)
	if err != nil {
		ErrorFrom(c, err)
		return
	}
	out := make([]alertRecordView, 0, len(rows))
	for _, r := range rows {
		out = append(out, alertView(r))
	}
	Ok(c, out, paginationMeta(limit, offset, len(out)))
}

// @Summary Dashboard counters
// @Tags dashboard
// @Security BearerAuth
// @Produce json
// @Success 200 {object} apiResponse
// @Router /api/dashboard/stats [get]
func (h *FleetHandler) dashboardStats(c *gin.Context) {
	st, err := h.Fleet.Stats(c.Request.Context())
	if err != nil {
		ErrorFrom(c, err)
		return
	}
	Ok(c, st, nil)
}

func alertView(r models.AlertRecord) alertRecordView {
	return alertRecordView{
		ID:               r.ID,
		MachineID:        r.MachineID,
		Severity:         r.Severity,
		PreviousSeverity: r.PreviousSeverity,
		Status:           r.Status,
		HealthScore:      r.HealthScore.InexactFloat64(),
		DaysUntilFailure: r.DaysUntilFailure,
		RootCauses:       decodeCauses(r.RootCauses),
		Message:          r.Message,
		CreatedAt:        r.CreatedAt,
	}
}

func decodeCauses(raw []byte) []string {
	out := []string{}
	if len(raw) == 0 {
		return out
	}
	if err := json.Unmarshal(raw, &out); err != nil || out == nil {
		return []string{}
	}
	return out
}
