package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/kickon/kickon/internal/service"
)

type fakeScorer struct {
	pred *service.Prediction
	err  error
	got  string
}

func (f *fakeScorer) Score(ctx context.Context, playerName string) (*service.Prediction, error) {
	f.got = playerName
	return f.pred, f.err
}

func newPredictRouter(scorer Scorer) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/predict", NewPredictHandler(scorer).Predict)
	return r
}

func TestPredict(t *testing.T) {
	scorer := &fakeScorer{pred: &service.Prediction{PlayerName: "Alice Example", Chance: 0.53}}
	r := newPredictRouter(scorer)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/predict?player_name=Alice+Example", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if scorer.got != "Alice Example" {
		t.Errorf("scored player = %q", scorer.got)
	}

	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["player_name"] != "Alice Example" {
		t.Errorf("player_name = %v", body["player_name"])
	}
	if body["transfer_chance"] != 0.53 {
		t.Errorf("transfer_chance = %v, want 0.53", body["transfer_chance"])
	}
}

func TestPredictMissingName(t *testing.T) {
	r := newPredictRouter(&fakeScorer{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/predict", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestPredictScoreFailure(t *testing.T) {
	r := newPredictRouter(&fakeScorer{err: errors.New("model down")})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/predict?player_name=Alice", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}

	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	// The failure detail stays in the logs, not the response.
	if body["error"] != "Prediction failed" {
		t.Errorf("error = %v", body["error"])
	}
}

func TestHealth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/health", NewHealthHandler().Health)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
}
