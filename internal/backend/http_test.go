package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestServiceLocalize(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/detect" {
			t.Errorf("path = %s, want /detect", r.URL.Path)
		}
		var req map[string]string
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		if req["image"] == "" {
			t.Error("expected base64 image in request")
		}
		json.NewEncoder(w).Encode(map[string]any{
			"faces": []map[string]int{{"x": 5, "y": 10, "w": 40, "h": 40}},
		})
	}))
	defer srv.Close()

	s := NewService(srv.URL)
	regions, err := s.Localize(context.Background(), []byte("fake-jpeg"))
	if err != nil {
		t.Fatalf("Localize: %v", err)
	}
	if len(regions) != 1 {
		t.Fatalf("got %d regions, want 1", len(regions))
	}
	if regions[0].X != 5 || regions[0].W != 40 {
		t.Errorf("region = %+v", regions[0])
	}
}

func TestServiceVerify(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]string
		json.NewDecoder(r.Body).Decode(&req)
		if req["model_name"] != "ArcFace" || req["distance_metric"] != "cosine" {
			t.Errorf("unexpected model params: %v", req)
		}
		json.NewEncoder(w).Encode(map[string]any{"verified": true, "distance": 0.42})
	}))
	defer srv.Close()

	s := NewService(srv.URL)
	vote, err := s.Verify(context.Background(), []byte("ref"), []byte("crop"), "ArcFace", "cosine")
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if !vote.Verified || vote.Distance != 0.42 {
		t.Errorf("vote = %+v", vote)
	}
}

func TestServiceClassify(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"emotion": map[string]float64{"happy": 0.9, "sad": 0.1},
		})
	}))
	defer srv.Close()

	s := NewService(srv.URL)
	scores, err := s.Classify(context.Background(), []byte("crop"))
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if scores["happy"] != 0.9 {
		t.Errorf("scores = %v", scores)
	}
}

func TestServiceErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	}))
	defer srv.Close()

	s := NewService(srv.URL)
	if _, err := s.Classify(context.Background(), []byte("crop")); err == nil {
		t.Fatal("expected error on 500 response")
	}
}

func TestServiceContextCancellation(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	defer srv.Close()
	defer close(block)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	s := NewService(srv.URL)
	if _, err := s.Localize(ctx, []byte("img")); err == nil {
		t.Fatal("expected error on cancelled context")
	}
}
