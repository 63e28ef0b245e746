package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mohith182/turbine-ai/internal/auth"
	"github.com/mohith182/turbine-ai/internal/cache"
	"github.com/mohith182/turbine-ai/internal/dataset"
	"github.com/mohith182/turbine-ai/internal/fleet"
	"github.com/mohith182/turbine-ai/internal/models"
	"github.com/mohith182/turbine-ai/internal/otp"
	"github.com/mohith182/turbine-ai/internal/ratelimit"
	"github.com/mohith182/turbine-ai/internal/repository"
	memoryrepository "github.com/mohith182/turbine-ai/internal/repository/memory"
	"github.com/mohith182/turbine-ai/internal/rul"
)

type codeSink struct {
	mu    sync.Mutex
	codes map[string]string
}

func (s *codeSink) NotifyCode(_ context.Context, identity, code string, _ time.Duration) {
	s.mu.Lock()
	s.codes[identity] = code
	s.mu.Unlock()
}

func (s *codeSink) get(identity string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.codes[identity]
}

type stubModel struct {
	ready bool
}

func (m stubModel) Ready() bool { return m.ready }

func (m stubModel) Predict(f rul.SensorFeatureVector) (rul.HealthAssessment, error) {
	if !m.ready {
		return rul.HealthAssessment{}, rul.ErrModelNotReady
	}
	return rul.Classify(100-f.Temperature, f, 0.91234), nil
}

func (m stubModel) Status() rul.ModelStatus {
	return rul.ModelStatus{Trained: m.ready, Algorithm: rul.Algorithm, Features: rul.FeatureNames}
}

type testEnv struct {
	router *gin.Engine
	sink   *codeSink
	repo   *memoryrepository.Store
}

func newEnv(t *testing.T, model stubModel, idLimit int64) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	repo := memoryrepository.New()
	sink := &codeSink{codes: map[string]string{}}
	tokens := auth.JWT{Secret: []byte("handler-test-secret-0123"), TokenTTL: time.Hour, Issuer: "turbine-ai"}
	svc := &auth.Service{
		OTP:        otp.NewService(otp.NewMemoryStore(), sink, otp.Options{}),
		Identities: &auth.Directory{Repo: repo},
		Tokens:     tokens,
	}

	var readings []dataset.Reading
	base := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	for i, temp := range []float64{20, 60, 90} {
		readings = append(readings, dataset.Reading{
			MachineID:   dataset.MachineID(i + 1),
			Timestamp:   base,
			Temperature: temp,
			Vibration:   0.5,
			Current:     10,
		})
	}
	fl := fleet.New(fleetModel{model}, readings, nil)

	r := gin.New()
	requireAuth := auth.RequireBearer(tokens)
	(&HealthHandler{Model: model}).Register(r)
	(&AuthHandler{
		Auth:        svc,
		Limiter:     ratelimit.New(cache.NewMemoryStore()),
		PerIdentity: ratelimit.Rule{Prefix: "otp:id:", Limit: idLimit, Window: time.Minute},
	}).Register(r, requireAuth)
	(&FleetHandler{Fleet: fl, Alerts: repo}).Register(r, requireAuth)
	(&PredictHandler{Model: model, Repo: repo}).Register(r, requireAuth)
	return &testEnv{router: r, sink: sink, repo: repo}
}

type fleetModel struct{ stubModel }

func (fleetModel) Model() *rul.TrainedModel {
	return &rul.TrainedModel{Fitted: true, HeldOutAccuracy: 0.9}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) (*httptest.ResponseRecorder, apiEnvelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	var env apiEnvelope
	_ = json.Unmarshal(w.Body.Bytes(), &env)
	return w, env
}

type apiEnvelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Meta    map[string]any  `json:"meta"`
}

func (e *testEnv) login(t *testing.T, email string) string {
	t.Helper()
	if w, _ := e.do(t, http.MethodPost, "/api/auth/request-otp", "", gin.H{"email": email}); w.Code != http.StatusOK {
		t.Fatalf("request-otp status=%d body=%s", w.Code, w.Body.String())
	}
	w, env := e.do(t, http.MethodPost, "/api/auth/verify-otp", "", gin.H{"email": email, "otp": e.sink.get(email)})
	if w.Code != http.StatusOK {
		t.Fatalf("verify-otp status=%d body=%s", w.Code, w.Body.String())
	}
	var s auth.Session
	if err := json.Unmarshal(env.Data, &s); err != nil {
		t.Fatalf("decode session: %v", err)
	}
	return s.AccessToken
}

func TestRequestOTP_Response(t *testing.T) {
	e := newEnv(t, stubModel{ready: true}, 5)
	w, env := e.do(t, http.MethodPost, "/api/auth/request-otp", "", gin.H{"email": "  New.User@Example.com "})
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	var got otpSentResponse
	_ = json.Unmarshal(env.Data, &got)
	if got.Message != "OTP sent successfully" || got.Email != "new.user@example.com" || got.ExpiresIn != 300 {
		t.Fatalf("got=%+v", got)
	}
	if e.sink.get("new.user@example.com") == "" {
		t.Fatalf("code not delivered")
	}
}

func TestRequestOTP_Validation(t *testing.T) {
	e := newEnv(t, stubModel{ready: true}, 5)
	cases := []any{
		gin.H{},
		gin.H{"email": "not-an-email"},
		gin.H{"email": "Bob <bob@example.com>"},
	}
	for _, body := range cases {
		if w, _ := e.do(t, http.MethodPost, "/api/auth/request-otp", "", body); w.Code != http.StatusBadRequest {
			t.Fatalf("body=%v status=%d", body, w.Code)
		}
	}
}

func TestRequestOTP_RateLimited(t *testing.T) {
	e := newEnv(t, stubModel{ready: true}, 1)
	body := gin.H{"email": "a@example.com"}
	if w, _ := e.do(t, http.MethodPost, "/api/auth/request-otp", "", body); w.Code != http.StatusOK {
		t.Fatalf("first status=%d", w.Code)
	}
	first := e.sink.get("a@example.com")
	w, _ := e.do(t, http.MethodPost, "/api/auth/request-otp", "", body)
	if w.Code != http.StatusTooManyRequests || w.Header().Get("Retry-After") == "" {
		t.Fatalf("status=%d retry-after=%q", w.Code, w.Header().Get("Retry-After"))
	}
	if e.sink.get("a@example.com") != first {
		t.Fatalf("limited request replaced the code")
	}
}

func TestVerifyOTP_ErrorMessages(t *testing.T) {
	e := newEnv(t, stubModel{ready: true}, 5)
	w, env := e.do(t, http.MethodPost, "/api/auth/verify-otp", "", gin.H{"email": "x@example.com", "otp": "123456"})
	if w.Code != http.StatusBadRequest || env.Message != "OTP not requested" {
		t.Fatalf("status=%d message=%q", w.Code, env.Message)
	}

	_, _ = e.do(t, http.MethodPost, "/api/auth/request-otp", "", gin.H{"email": "x@example.com"})
	wrong := "000000"
	if e.sink.get("x@example.com") == wrong {
		wrong = "000001"
	}
	want := []string{"Invalid OTP", "Invalid OTP", "Too many attempts", "OTP not requested"}
	for i, msg := range want {
		w, env := e.do(t, http.MethodPost, "/api/auth/verify-otp", "", gin.H{"email": "x@example.com", "otp": wrong})
		if w.Code != http.StatusBadRequest || env.Message != msg {
			t.Fatalf("attempt %d status=%d message=%q want %q", i+1, w.Code, env.Message, msg)
		}
	}
}

func TestLoginThenMe(t *testing.T) {
	e := newEnv(t, stubModel{ready: true}, 5)
	token := e.login(t, "jane.doe@example.com")

	w, env := e.do(t, http.MethodGet, "/api/auth/me", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("me status=%d", w.Code)
	}
	var p auth.Principal
	_ = json.Unmarshal(env.Data, &p)
	if p.Email != "jane.doe@example.com" || p.Name != "Jane.Doe" {
		t.Fatalf("principal=%+v", p)
	}
	if w, _ := e.do(t, http.MethodGet, "/api/auth/me", "", nil); w.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous me status=%d", w.Code)
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	e := newEnv(t, stubModel{ready: true}, 5)
	for _, path := range []string{"/api/machines", "/api/machines/M001", "/api/alerts", "/api/dashboard/stats", "/api/predictions"} {
		if w, _ := e.do(t, http.MethodGet, path, "", nil); w.Code != http.StatusUnauthorized {
			t.Fatalf("%s status=%d", path, w.Code)
		}
	}
	if w, _ := e.do(t, http.MethodGet, "/api/model/status", "", nil); w.Code != http.StatusOK {
		t.Fatalf("model status should be public, got %d", w.Code)
	}
}

func TestFleetRoutes(t *testing.T) {
	e := newEnv(t, stubModel{ready: true}, 5)
	token := e.login(t, "op@example.com")

	w, env := e.do(t, http.MethodGet, "/api/machines", token, nil)
	var machines []fleet.MachineSummary
	_ = json.Unmarshal(env.Data, &machines)
	if w.Code != http.StatusOK || len(machines) != 3 {
		t.Fatalf("machines status=%d len=%d", w.Code, len(machines))
	}

	if w, _ := e.do(t, http.MethodGet, "/api/machines/m003", token, nil); w.Code != http.StatusOK {
		t.Fatalf("detail status=%d", w.Code)
	}
	w, env = e.do(t, http.MethodGet, "/api/machines/M404", token, nil)
	if w.Code != http.StatusNotFound || env.Message != "Machine not found" {
		t.Fatalf("missing status=%d message=%q", w.Code, env.Message)
	}

	_, env = e.do(t, http.MethodGet, "/api/alerts", token, nil)
	var alerts []fleet.Alert
	_ = json.Unmarshal(env.Data, &alerts)
	if len(alerts) != 2 || alerts[0].MachineID != "M002" || alerts[1].MachineID != "M003" {
		t.Fatalf("alerts=%+v", alerts)
	}
	for _, a := range alerts {
		if a.Severity != rul.RiskHigh {
			t.Fatalf("alert %s severity=%s", a.MachineID, a.Severity)
		}
	}

	_, env = e.do(t, http.MethodGet, "/api/dashboard/stats", token, nil)
	var st fleet.Stats
	_ = json.Unmarshal(env.Data, &st)
	if st.TotalMachines != 3 || st.Healthy != 1 || st.ModelAccuracy != 90 {
		t.Fatalf("stats=%+v", st)
	}
}

func TestAlertHistory(t *testing.T) {
	e := newEnv(t, stubModel{ready: true}, 5)
	token := e.login(t, "op@example.com")
	_ = e.repo.InsertAlert(context.Background(), &models.AlertRecord{MachineID: "M003", Severity: "high", Status: "critical", RootCauses: []byte(`["High temperature"]`)})

	w, env := e.do(t, http.MethodGet, "/api/alerts/history?machine_id=m003", token, nil)
	var rows []alertRecordView
	_ = json.Unmarshal(env.Data, &rows)
	if w.Code != http.StatusOK || len(rows) != 1 || rows[0].RootCauses[0] != "High temperature" {
		t.Fatalf("status=%d rows=%+v", w.Code, rows)
	}
}

func TestPredict_StoresHistoryPerCaller(t *testing.T) {
	e := newEnv(t, stubModel{ready: true}, 5)
	token := e.login(t, "op@example.com")

	w, env := e.do(t, http.MethodPost, "/api/predict", token, gin.H{"temperature": 80, "vibration": 1.5, "current": 0})
	if w.Code != http.StatusOK {
		t.Fatalf("predict status=%d body=%s", w.Code, w.Body.String())
	}
	var h rul.HealthAssessment
	_ = json.Unmarshal(env.Data, &h)
	if h.Status != rul.StatusCritical || h.ModelConfidence != 91.2 {
		t.Fatalf("health=%+v", h)
	}

	if w, _ := e.do(t, http.MethodPost, "/api/predict", token, gin.H{"temperature": 80}); w.Code != http.StatusBadRequest {
		t.Fatalf("missing fields status=%d", w.Code)
	}

	_, env = e.do(t, http.MethodGet, "/api/predictions", token, nil)
	var rows []predictionView
	_ = json.Unmarshal(env.Data, &rows)
	if len(rows) != 1 || rows[0].Status != "critical" || rows[0].Current != 0 {
		t.Fatalf("rows=%+v", rows)
	}
	stored, _ := e.repo.ListPredictions(context.Background(), repository.ListPredictionsParams{Subject: "other@example.com"})
	if len(stored) != 0 {
		t.Fatalf("leaked to other subject")
	}
}

func TestModelNotReady(t *testing.T) {
	e := newEnv(t, stubModel{ready: false}, 5)
	if w, _ := e.do(t, http.MethodGet, "/readyz", "", nil); w.Code != http.StatusServiceUnavailable {
		t.Fatalf("readyz status=%d", w.Code)
	}
	if w, _ := e.do(t, http.MethodGet, "/healthz", "", nil); w.Code != http.StatusOK {
		t.Fatalf("healthz status=%d", w.Code)
	}
	token := e.login(t, "op@example.com")
	w, env := e.do(t, http.MethodPost, "/api/predict", token, gin.H{"temperature": 80, "vibration": 1, "current": 10})
	if w.Code != http.StatusServiceUnavailable || env.Message != "Model not trained yet" {
		t.Fatalf("status=%d message=%q", w.Code, env.Message)
	}
	if w, _ := e.do(t, http.MethodGet, "/api/machines", token, nil); w.Code != http.StatusServiceUnavailable {
		t.Fatalf("machines status=%d", w.Code)
	}
}
