package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/mohith182/turbine-ai/internal/auth"
	"github.com/mohith182/turbine-ai/internal/metrics"
	"github.com/mohith182/turbine-ai/internal/models"
	"github.com/mohith182/turbine-ai/internal/repository"
	"github.com/mohith182/turbine-ai/internal/rul"
)

type Model interface {
	Predict(features rul.SensorFeatureVector) (rul.HealthAssessment, error)
	Status() rul.ModelStatus
}

type PredictHandler struct {
	Model Model
	// Repo is optional; without it predictions are not kept.
	Repo   repository.PredictionRepository
	Logger *zap.Logger
}

// predictBody uses pointers so an explicit 0 passes the required check.
type predictBody struct {
	Temperature *float64 `json:"temperature" binding:"required"`
	Vibration   *float64 `json:"vibration" binding:"required"`
	Current     *float64 `json:"current" binding:"required"`
}

type predictionView struct {
	ID               uint64    `json:"id"`
	Temperature      float64   `json:"temperature"`
	Vibration        float64   `json:"vibration"`
	Current          float64   `json:"current"`
	RUL              float64   `json:"rul"`
	Status           string    `json:"status"`
	RiskLevel        string    `json:"risk_level"`
	DaysUntilFailure int       `json:"days_until_failure"`
	RootCauses       []string  `json:"root_causes"`
	Confidence       float64   `json:"model_confidence"`
	CreatedAt        time.Time `json:"created_at"`
}

func (h *PredictHandler) Register(r *gin.Engine, requireAuth gin.HandlerFunc) {
	r.GET("/api/model/status", h.modelStatus)
	api := r.Group("/api", requireAuth)
	api.POST("/predict", h.predict)
	api.GET("/predictions", h.listPredictions)
}

// @Summary Score a sensor reading
// @Tags predict
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body predictBody true "sensor reading"
// @Success 200 {object} apiResponse
// @Failure 400 {object} apiResponse
// @Failure 503 {object} apiResponse
// @Router /api/predict [post]
func (h *PredictHandler) predict(c *gin.Context) {
	var body predictBody
	if err := c.ShouldBindJSON(&body); err != nil {
		Error(c, http.StatusBadRequest, "temperature, vibration and current are required", nil)
		return
	}
	features := rul.SensorFeatureVector{
		Temperature: *body.Temperature,
		Vibration:   *body.Vibration,
		Current:     *body.Current,
	}
	health, err := h.Model.Predict(features)
	if err != nil {
		metrics.Predictions.WithLabelValues("error").Inc()
		ErrorFrom(c, err)
		return
	}
	health = health.Rounded()
	metrics.Predictions.WithLabelValues(string(health.Status)).Inc()

	if h.Repo != nil {
		p, _ := auth.PrincipalFrom(c)
		if err := h.Repo.InsertPrediction(c.Request.Context(), toPredictionRecord(p.Email, features, health)); err != nil {
			h.logger().Warn("store prediction failed", zap.String("subject", p.Email), zap.Error(err))
		}
	}
	Ok(c, health, nil)
}

// @Summary Caller's prediction history
// @Tags predict
// @Security BearerAuth
// @Produce json
// @Param limit query int false "page size (default 20, max 200)"
// @Param offset query int false "page offset"
// @Success 200 {object} apiResponse
// @Router /api/predictions [get]
func (h *PredictHandler) listPredictions(c *gin.Context) {
	limit := repository.NormalizeLimit(intQuery(c, "limit", repository.DefaultPredictionLimit), repository.DefaultPredictionLimit)
	offset := repository.NormalizeOffset(intQuery(c, "offset", 0))
	if h.Repo == nil {
		Ok(c, []predictionView{}, paginationMeta(limit, offset, 0))
		return
	}
	p, ok := auth.PrincipalFrom(c)
	if !ok {
		Error(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	rows, err := h.Repo.ListPredictions(c.Request.Context(), repository.ListPredictionsParams{
		Subject: p.Email,
		Limit:   limit,
		Offset:  offset,
	})
	if err != nil {
		ErrorFrom(c, err)
		return
	}
	out := make([]predictionView, 0, len(rows))
	for _, r := range rows {
		out = append(out, predictionView{
			ID:               r.ID,
			Temperature:      r.Temperature,
			Vibration:        r.Vibration,
			Current:          r.Current,
			RUL:              r.RUL.InexactFloat64(),
			Status:           r.Status,
			RiskLevel:        r.RiskLevel,
			DaysUntilFailure: r.DaysUntilFailure,
			RootCauses:       decodeCauses(r.RootCauses),
			Confidence:       r.Confidence.InexactFloat64(),
			CreatedAt:        r.CreatedAt,
		})
	}
	Ok(c, out, paginationMeta(limit, offset, len(out)))
}

// @Summary Model training status
// @Tags model
// @Produce json
// @Success 200 {object} apiResponse
// @Router /api/model/status [get]
func (h *PredictHandler) modelStatus(c *gin.Context) {
	Ok(c, h.Model.Status(), nil)
}

func (h *PredictHandler) logger() *zap.Logger {
	if h.Logger == nil {
		return zap.NewNop()
	}
	return h.Logger
}

func toPredictionRecord(subject string, f rul.SensorFeatureVector, h rul.HealthAssessment) *models.PredictionRecord {
	causes, _ := json.Marshal(h.RootCauses)
	return &models.PredictionRecord{
		Subject:          subject,
		Temperature:      f.Temperature,
		Vibration:        f.Vibration,
		Current:          f.Current,
		RUL:              decimal.NewFromFloat(h.RUL).Round(1),
		Status:           string(h.Status),
		RiskLevel:        string(h.RiskLevel),
		DaysUntilFailure: h.DaysUntilFailure,
		RootCauses:       datatypes.JSON(causes),
		Confidence:       decimal.NewFromFloat(h.ModelConfidence).Round(1),
	}
}
