package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client is a Go SDK for the onboard-engine API
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// Option configures the client
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithTimeout sets the client timeout
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// NewClient creates a new onboard-engine client
func NewClient(baseURL, apiKey string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Filters narrows the candidate pool; nil facets mean "no filter"
type Filters struct {
	Focuses          *[]string `json:"focuses,omitempty"`
	AgeBuckets       *[]string `json:"age_buckets,omitempty"`
	Backgrounds      *[]string `json:"backgrounds,omitempty"`
	DocumentStatuses *[]string `json:"document_statuses,omitempty"`
}

// ExperienceTarget is the soft experienced/newcomer split
type ExperienceTarget struct {
	Experienced float64 `json:"experienced"`
	Newcomer    float64 `json:"newcomer"`
}

// FairnessTargets are soft distributional goals
type FairnessTargets struct {
	Gender     map[string]float64 `json:"gender,omitempty"`
	Experience *ExperienceTarget  `json:"experience,omitempty"`
}

// SolveRequest represents one allocation request
type SolveRequest struct {
	Capacities map[string]int   `json:"capacities"`
	Filters    *Filters         `json:"filters,omitempty"`
	Fairness   *FairnessTargets `json:"fairness,omitempty"`
}

// GroupMetrics summarizes one group's fill and composition
type GroupMetrics struct {
	Capacity   int            `json:"capacity"`
	Filled     int            `json:"filled"`
	Gender     map[string]int `json:"gender,omitempty"`
	Experience map[string]int `json:"experience,omitempty"`
}

// SolutionMetrics summarizes a whole solution
type SolutionMetrics struct {
	Groups          map[string]GroupMetrics `json:"groups"`
	TotalSeats      int                     `json:"total_seats"`
	TotalAssigned   int                     `json:"total_assigned"`
	TotalUnassigned int                     `json:"total_unassigned"`
	TotalExcluded   int                     `json:"total_excluded"`
}

// Solution represents a computed assignment
type Solution struct {
	ID          string              `json:"id"`
	CreatedAt   time.Time           `json:"created_at"`
	Capacities  map[string]int      `json:"capacities"`
	Assignments map[string][]string `json:"assignments"`
	Unassigned  []string            `json:"unassigned"`
	Excluded    []string            `json:"excluded"`
	Metrics     SolutionMetrics     `json:"metrics"`
}

// Conflict represents a detected violation in a stored solution
type Conflict struct {
	CandidateID     string `json:"candidate_id"`
	GroupID         string `json:"group_id"`
	Reason          string `json:"reason"`
	OtherSolutionID string `json:"other_solution_id,omitempty"`
}

// Group represents a capacity-bounded assignment destination
type Group struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Capacity    int    `json:"capacity"`
}

// Solve computes a new assignment solution
func (c *Client) Solve(ctx context.Context, req SolveRequest) (*Solution, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	resp, err := c.doRequest(ctx, "POST", "/api/v1/solutions", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	var result struct {
		Success bool `json:"success"`
		Data    struct {
			Solution *Solution `json:"solution"`
		} `json:"data"`
		Error *struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}

	if err := json.Unmarshal(resp, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if !result.Success {
		return nil, fmt.Errorf("API error: %s - %s", result.Error.Code, result.Error.Message)
	}

	return result.Data.Solution, nil
}

// GetSolution retrieves a stored solution by ID
func (c *Client) GetSolution(ctx context.Context, id string) (*Solution, error) {
	resp, err := c.doRequest(ctx, "GET", fmt.Sprintf("/api/v1/solutions/%s", id), nil)
	if err != nil {
		return nil, err
	}

	var result struct {
		Success bool `json:"success"`
		Data    struct {
			Solution *Solution `json:"solution"`
		} `json:"data"`
		Error *struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}

	if err := json.Unmarshal(resp, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if !result.Success {
		return nil, fmt.Errorf("API error: %s - %s", result.Error.Code, result.Error.Message)
	}

	return result.Data.Solution, nil
}

// DeleteSolution removes a stored solution
func (c *Client) DeleteSolution(ctx context.Context, id string) error {
	resp, err := c.doRequest(ctx, "DELETE", fmt.Sprintf("/api/v1/solutions/%s", id), nil)
	if err != nil {
		return err
	}

	var result struct {
		Success bool `json:"success"`
		Error   *struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}

	if err := json.Unmarshal(resp, &result); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if !result.Success {
		return fmt.Errorf("API error: %s - %s", result.Error.Code, result.Error.Message)
	}

	return nil
}

// GetConflicts reports conflicts for a stored solution
func (c *Client) GetConflicts(ctx context.Context, id string) ([]Conflict, error) {
	resp, err := c.doRequest(ctx, "GET", fmt.Sprintf("/api/v1/solutions/%s/conflicts", id), nil)
	if err != nil {
		return nil, err
	}

	var result struct {
		Success bool `json:"success"`
		Data    struct {
			Conflicts []Conflict `json:"conflicts"`
			Total     int        `json:"total"`
		} `json:"data"`
		Error *struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}

	if err := json.Unmarshal(resp, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if !result.Success {
		return nil, fmt.Errorf("API error: %s - %s", result.Error.Code, result.Error.Message)
	}

	return result.Data.Conflicts, nil
}

// ListGroups retrieves the group catalog
func (c *Client) ListGroups(ctx context.Context) ([]*Group, error) {
	resp, err := c.doRequest(ctx, "GET", "/api/v1/groups", nil)
	if err != nil {
		return nil, err
	}

	var result struct {
		Success bool `json:"success"`
		Data    struct {
			Groups []*Group `json:"groups"`
			Total  int      `json:"total"`
		} `json:"data"`
		Error *struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}

	if err := json.Unmarshal(resp, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if !result.Success {
		return nil, fmt.Errorf("API error: %s - %s", result.Error.Code, result.Error.Message)
	}

	return result.Data.Groups, nil
}

// Health checks service health
func (c *Client) Health(ctx context.Context) error {
	resp, err := c.doRequest(ctx, "GET", "/health", nil)
	if err != nil {
		return err
	}

	var result struct {
		Success bool `json:"success"`
	}

	if err := json.Unmarshal(resp, &result); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if !result.Success {
		return fmt.Errorf("service unhealthy")
	}

	return nil
}

// doRequest performs an HTTP request and returns the response body
func (c *Client) doRequest(ctx context.Context, method, path string, body io.Reader) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	return data, nil
}
