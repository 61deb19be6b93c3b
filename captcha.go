package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// NotSolved is the sentinel a Solver returns when it could not read the
// captcha. The caller reloads the page to get a fresh one.
const NotSolved = "Not solved"

// Solver turns a captcha image into its text answer, or NotSolved.
type Solver interface {
	Solve(imageURL string) (string, error)
}

// NewSolver picks the solver implementation for the configured endpoint.
// Without an endpoint every captcha is reported unsolved, which degrades to
// the refresh-and-retry path.
func NewSolver(endpoint string) Solver {
	if endpoint == "" {
		return noopSolver{}
	}
	return &HTTPSolver{
		endpoint: endpoint,
		client:   &http.Client{Timeout: 30 * time.Second},
	}
}

type noopSolver struct{}

func (noopSolver) Solve(string) (string, error) {
	return NotSolved, nil
}

// HTTPSolver posts the captcha image link to a solver service and reads
// back the text answer.
type HTTPSolver struct {
	endpoint string
	client   *http.Client
}

type solverRequest struct {
	ImageURL string `json:"image_url"`
}

type solverResponse struct {
	Solution string `json:"solution"`
}

func (s *HTTPSolver) Solve(imageURL string) (string, error) {
	body, err := json.Marshal(solverRequest{ImageURL: imageURL})
	if err != nil {
		return NotSolved, err
	}

	resp, err := s.client.Post(s.endpoint, "application/json", bytes.NewReader(body))
	if err != nil {
		return NotSolved, fmt.Errorf("solver request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return NotSolved, fmt.Errorf("solver returned HTTP %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return NotSolved, fmt.Errorf("failed to read solver response: %w", err)
	}

	var answer solverResponse
	if err := json.Unmarshal(data, &answer); err != nil {
		return NotSolved, fmt.Errorf("failed to decode solver response: %w", err)
	}
	if answer.Solution == "" {
		return NotSolved, nil
	}
	return answer.Solution, nil
}
