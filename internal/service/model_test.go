package service

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kickon/kickon/internal/config"
)

func TestModelClientScore(t *testing.T) {
	var gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		w.Write([]byte("0.73"))
	}))
	defer srv.Close()

	client := NewModelClient(&config.ModelConfig{Endpoint: srv.URL})
	prob, err := client.Score(context.Background(), "27,25.5,1577836800,1719705600,30,12,7,4,3")
	if err != nil {
		t.Fatalf("Score: %v", err)
	}

	if prob != 0.73 {
		t.Errorf("prob = %v, want 0.73", prob)
	}
	if gotBody != "27,25.5,1577836800,1719705600,30,12,7,4,3" {
		t.Errorf("body = %q, feature row not forwarded verbatim", gotBody)
	}
}

func TestModelClientScoreQuotedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("\"0.5\"\n"))
	}))
	defer srv.Close()

	client := NewModelClient(&config.ModelConfig{Endpoint: srv.URL})
	prob, err := client.Score(context.Background(), "1,2,3,4,5,6,7,8,9")
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if prob != 0.5 {
		t.Errorf("prob = %v, want 0.5", prob)
	}
}

func TestModelClientScoreErrors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"http error", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}},
		{"non-numeric body", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("not a number"))
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			client := NewModelClient(&config.ModelConfig{Endpoint: srv.URL})
			if _, err := client.Score(context.Background(), "1,2,3,4,5,6,7,8,9"); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}
