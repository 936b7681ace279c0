package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/Niso4ever/agentic-dispatch-go/internal/adapters/forecast"
	"github.com/Niso4ever/agentic-dispatch-go/internal/domain/entities"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// fakeRunner implements DispatchRunner for testing
type fakeRunner struct {
	resp *entities.DispatchResponse
	err  error
}

func (f *fakeRunner) Run(ctx context.Context, req *entities.DispatchRequest) (*entities.DispatchResponse, error) {
	return f.resp, f.err
}

// fakeWeather implements WeatherService for testing
type fakeWeather struct {
	cond *forecast.Conditions
	err  error
}

func (f *fakeWeather) Current(ctx context.Context, location string) (*forecast.Conditions, error) {
	return f.cond, f.err
}

func postDispatch(t *testing.T, srv *Server, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("POST", "/api/v1/dispatch", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	return w
}

func TestServer_DispatchReturnsResult(t *testing.T) {
	runner := &fakeRunner{resp: &entities.DispatchResponse{Answer: "charge 4.2 MW"}}
	srv := NewServer(runner, nil, ":0")

	w := postDispatch(t, srv, `{"query":"should we curtail?"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var body map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &body)
	if body["result"] != "charge 4.2 MW" {
		t.Errorf("unexpected result: %v", body["result"])
	}
	if body["request_id"] == "" || body["request_id"] == nil {
		t.Error("response should carry a request id")
	}
}

func TestServer_DispatchMissingQuery(t *testing.T) {
	srv := NewServer(&fakeRunner{}, nil, ":0")

	w := postDispatch(t, srv, `{}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for missing query, got %d", w.Code)
	}
}

func TestServer_DispatchRejected(t *testing.T) {
	runner := &fakeRunner{resp: &entities.DispatchResponse{Answer: "off topic", Rejected: true}}
	srv := NewServer(runner, nil, ":0")

	w := postDispatch(t, srv, `{"query":"capital of France?"}`)
	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("expected 422 for rejected query, got %d", w.Code)
	}

	var body map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &body)
	if body["rejected"] != true {
		t.Error("response should be marked rejected")
	}
}

func TestServer_DispatchPipelineError(t *testing.T) {
	runner := &fakeRunner{err: errors.New("solver exploded")}
	srv := NewServer(runner, nil, ":0")

	w := postDispatch(t, srv, `{"query":"dispatch the battery"}`)
	if w.Code != http.StatusInternalServerError {
		t.Errorf("expected 500 for pipeline failure, got %d", w.Code)
	}
}

func TestServer_DispatchForwardsPlantMeta(t *testing.T) {
	var got *entities.DispatchRequest
	runner := &captureRunner{capture: func(req *entities.DispatchRequest) { got = req }}
	srv := NewServer(runner, nil, ":0")

	postDispatch(t, srv, `{"query":"dispatch?","plant_meta":{"soc":0.5,"capacity_mwh":20,"max_charge_mw":10,"max_discharge_mw":10}}`)

	if got == nil || got.PlantMeta == nil {
		t.Fatal("plant meta should reach the usecase")
	}
	if got.PlantMeta.SoC != 0.5 || got.PlantMeta.CapacityMWh != 20 {
		t.Errorf("unexpected plant meta: %+v", got.PlantMeta)
	}
}

func TestServer_WeatherUnconfigured(t *testing.T) {
	srv := NewServer(&fakeRunner{}, nil, ":0")

	req := httptest.NewRequest("GET", "/api/v1/weather?location=Abu+Dhabi", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503 without a weather provider, got %d", w.Code)
	}
}

func TestServer_Weather(t *testing.T) {
	weather := &fakeWeather{cond: &forecast.Conditions{Location: "Abu Dhabi", CloudsPct: 10}}
	srv := NewServer(&fakeRunner{}, weather, ":0")

	req := httptest.NewRequest("GET", "/api/v1/weather", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var cond forecast.Conditions
	json.Unmarshal(w.Body.Bytes(), &cond)
	if cond.Location != "Abu Dhabi" {
		t.Errorf("unexpected conditions: %+v", cond)
	}
}

func TestServer_Health(t *testing.T) {
	srv := NewServer(&fakeRunner{}, nil, ":0")

	req := httptest.NewRequest("GET", "/api/v1/health", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

// captureRunner records the request it was given.
type captureRunner struct {
	capture func(req *entities.DispatchRequest)
}

func (c *captureRunner) Run(ctx context.Context, req *entities.DispatchRequest) (*entities.DispatchResponse, error) {
	if c.capture != nil {
		c.capture(req)
	}
	return &entities.DispatchResponse{Answer: "ok"}, nil
}
