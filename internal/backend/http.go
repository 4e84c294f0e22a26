// Package backend provides implementations of the face capability
// contracts declared in internal/facematch: an HTTP client for a
// DeepFace-style analysis service and a pure-Go local face detector.
package backend

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jkalivoda/moodreel/internal/facematch"
)

// Service calls a face analysis HTTP service exposing /detect, /verify
// and /analyze endpoints with base64-encoded image payloads. It
// implements facematch.Localizer, Verifier and Classifier.
type Service struct {
	baseURL string
	client  *http.Client
}

// NewService creates a client for the given base URL. The HTTP client
// carries no timeout of its own; per-call deadlines come from the
// caller's context so a cancelled item aborts its in-flight request.
func NewService(baseURL string) *Service {
	return &Service{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{},
	}
}

// postJSON performs a POST request with a JSON body and unmarshals the
// JSON response into the result type.
func postJSON[T any](ctx context.Context, s *Service, endpoint string, requestBody any) (*T, error) {
	jsonBody, err := json.Marshal(requestBody)
	if err != nil {
		return nil, fmt.Errorf("could not marshal request body: %w", err)
	}

	url := s.baseURL + "/" + strings.TrimLeft(endpoint, "/")
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("could not create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("could not send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("request to %s failed with status %d: %s", endpoint, resp.StatusCode, readErrorBody(resp.Body))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("could not read response body: %w", err)
	}

	var result T
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("could not unmarshal response: %w", err)
	}
	return &result, nil
}

// readErrorBody reads up to 512 bytes of an error response for the
// error message.
func readErrorBody(r io.Reader) string {
	body, err := io.ReadAll(io.LimitReader(r, 512))
	if err != nil || len(body) == 0 {
		return "(no body)"
	}
	return strings.TrimSpace(string(body))
}

type detectRequest struct {
	Image string `json:"image"`
}

type detectResponse struct {
	Faces []facematch.Region `json:"faces"`
}

// Localize returns the face regions the service detects in the image.
func (s *Service) Localize(ctx context.Context, img []byte) ([]facematch.Region, error) {
	resp, err := postJSON[detectResponse](ctx, s, "detect", detectRequest{
		Image: base64.StdEncoding.EncodeToString(img),
	})
	if err != nil {
		return nil, err
	}
	return resp.Faces, nil
}

type verifyRequest struct {
	Image1 string `json:"img1"`
	Image2 string `json:"img2"`
	Model  string `json:"model_name"`
	Metric string `json:"distance_metric"`
}

type verifyResponse struct {
	Verified bool    `json:"verified"`
	Distance float64 `json:"distance"`
}

// Verify asks the service whether two face images show the same
// person.
func (s *Service) Verify(ctx context.Context, refImage, faceCrop []byte, model, metric string) (facematch.Vote, error) {
	resp, err := postJSON[verifyResponse](ctx, s, "verify", verifyRequest{
		Image1: base64.StdEncoding.EncodeToString(refImage),
		Image2: base64.StdEncoding.EncodeToString(faceCrop),
		Model:  model,
		Metric: metric,
	})
	if err != nil {
		return facematch.Vote{}, err
	}
	return facematch.Vote{Verified: resp.Verified, Distance: resp.Distance}, nil
}

type analyzeRequest struct {
	Image string `json:"image"`
}

type analyzeResponse struct {
	Emotions map[string]float64 `json:"emotion"`
}

// Classify returns the emotion probability distribution for a face
// crop.
func (s *Service) Classify(ctx context.Context, faceCrop []byte) (map[string]float64, error) {
	resp, err := postJSON[analyzeResponse](ctx, s, "analyze", analyzeRequest{
		Image: base64.StdEncoding.EncodeToString(faceCrop),
	})
	if err != nil {
		return nil, err
	}
	return resp.Emotions, nil
}

// Ping checks reachability of the service, useful at startup before a
// long batch run.
func (s *Service) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/", nil)
	if err != nil {
		return err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("face service unreachable at %s: %w", s.baseURL, err)
	}
	resp.Body.Close()
	return nil
}
