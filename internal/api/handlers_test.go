package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/stagecrew/onboard-engine/internal/config"
	"github.com/stagecrew/onboard-engine/internal/models"
	"github.com/stagecrew/onboard-engine/internal/roster"
	"github.com/stagecrew/onboard-engine/internal/solver"
	"github.com/stagecrew/onboard-engine/internal/store"
)

const testAPIKey = "sk_test_0123456789"

// fakeRepo is an in-memory Repository for handler tests
type fakeRepo struct {
	candidates []models.Candidate
	groups     []models.Group
	clients    map[string]*models.APIClient
}

func (f *fakeRepo) ListCandidates(ctx context.Context) ([]models.Candidate, error) {
	return f.candidates, nil
}

func (f *fakeRepo) GetCandidate(ctx context.Context, id string) (*models.Candidate, error) {
	for i := range f.candidates {
		if f.candidates[i].ID == id {
			return &f.candidates[i], nil
		}
	}
	return nil, nil
}

func (f *fakeRepo) ListGroups(ctx context.Context) ([]models.Group, error) {
	return f.groups, nil
}

func (f *fakeRepo) GetClientByAPIKey(ctx context.Context, apiKey string) (*models.APIClient, error) {
	return f.clients[apiKey], nil
}

func (f *fakeRepo) UpdateClientLastUsed(ctx context.Context, apiKey string) error {
	return nil
}

func (f *fakeRepo) Ping(ctx context.Context) error { return nil }
func (f *fakeRepo) Close() error                   { return nil }

func testCandidate(id, gender string) models.Candidate {
	return models.Candidate{
		ID:             id,
		Focus:          models.FocusBoth,
		AgeBucket:      "18-25",
		Background:     "school",
		DocumentStatus: models.DocumentsComplete,
		Gender:         gender,
		Experience:     models.Newcomer,
	}
}

func newTestServer(t *testing.T) (*httptest.Server, *fakeRepo) {
	t.Helper()

	repo := &fakeRepo{
		candidates: []models.Candidate{
			testCandidate("c1", "F"),
			testCandidate("c2", "M"),
			testCandidate("c3", "F"),
		},
		groups: []models.Group{
			{ID: "stage", Name: "Stage Crew", Capacity: 3},
		},
		clients: map[string]*models.APIClient{
			testAPIKey: {
				ID:          1,
				Name:        "test-client",
				APIKey:      testAPIKey,
				IsActive:    true,
				CreatedAt:   time.Now(),
				Permissions: []string{"*"},
			},
		},
	}

	server := NewServer(
		config.ServerConfig{Host: "127.0.0.1", Port: 0},
		solver.NewAllocator(solver.DefaultConfig()),
		store.NewMemoryStore(),
		repo,
		roster.NewLoader(),
	)

	ts := httptest.NewServer(server.Router())
	t.Cleanup(ts.Close)
	return ts, repo
}

func doJSON(t *testing.T, method, url string, body any) (*http.Response, apiResponse) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+testAPIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	var envelope apiResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	return resp, envelope
}

func TestHandleSolve(t *testing.T) {
	ts, _ := newTestServer(t)

	t.Run("computes and stores a solution", func(t *testing.T) {
		resp, envelope := doJSON(t, "POST", ts.URL+"/api/v1/solutions", models.SolveRequest{
			Capacities: map[string]int{"stage": 2},
		})

		require.Equal(t, http.StatusCreated, resp.StatusCode)
		require.True(t, envelope.Success)

		data, err := json.Marshal(envelope.Data)
		require.NoError(t, err)

		var payload struct {
			Solution models.Solution `json:"solution"`
		}
		require.NoError(t, json.Unmarshal(data, &payload))
		require.NotEmpty(t, payload.Solution.ID)
		require.Equal(t, []string{"c1", "c2"}, payload.Solution.Assignments["stage"])
		require.Equal(t, []string{"c3"}, payload.Solution.Unassigned)

		// The stored solution is retrievable by id
		getResp, getEnvelope := doJSON(t, "GET", ts.URL+"/api/v1/solutions/"+payload.Solution.ID, nil)
		require.Equal(t, http.StatusOK, getResp.StatusCode)
		require.True(t, getEnvelope.Success)
	})

	t.Run("rejects all-zero capacities", func(t *testing.T) {
		resp, envelope := doJSON(t, "POST", ts.URL+"/api/v1/solutions", models.SolveRequest{
			Capacities: map[string]int{"stage": 0},
		})

		require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
		require.False(t, envelope.Success)
		require.Equal(t, "no_capacity", envelope.Error.Code)
	})

	t.Run("rejects negative capacity", func(t *testing.T) {
		resp, envelope := doJSON(t, "POST", ts.URL+"/api/v1/solutions", models.SolveRequest{
			Capacities: map[string]int{"stage": -2},
		})

		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		require.Equal(t, "validation_error", envelope.Error.Code)
	})
}

func TestHandleGetSolution_NotFound(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, envelope := doJSON(t, "GET", ts.URL+"/api/v1/solutions/unknown", nil)

	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	require.Equal(t, "not_found", envelope.Error.Code)
}

func TestHandleGetConflicts(t *testing.T) {
	ts, repo := newTestServer(t)

	// Solve first to have a stored solution
	_, envelope := doJSON(t, "POST", ts.URL+"/api/v1/solutions", models.SolveRequest{
		Capacities: map[string]int{"stage": 3},
	})
	data, err := json.Marshal(envelope.Data)
	require.NoError(t, err)

	var payload struct {
		Solution models.Solution `json:"solution"`
	}
	require.NoError(t, json.Unmarshal(data, &payload))

	t.Run("no conflicts while state is unchanged", func(t *testing.T) {
		resp, envelope := doJSON(t, "GET", ts.URL+"/api/v1/solutions/"+payload.Solution.ID+"/conflicts", nil)

		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.True(t, envelope.Success)

		data, err := json.Marshal(envelope.Data)
		require.NoError(t, err)

		var conflictsPayload struct {
			Conflicts []models.Conflict `json:"conflicts"`
			Total     int               `json:"total"`
		}
		require.NoError(t, json.Unmarshal(data, &conflictsPayload))
		require.Empty(t, conflictsPayload.Conflicts)
	})

	t.Run("reports capacity conflicts after groups shrink", func(t *testing.T) {
		repo.groups = []models.Group{{ID: "stage", Name: "Stage Crew", Capacity: 1}}

		resp, envelope := doJSON(t, "GET", ts.URL+"/api/v1/solutions/"+payload.Solution.ID+"/conflicts", nil)

		require.Equal(t, http.StatusOK, resp.StatusCode)

		data, err := json.Marshal(envelope.Data)
		require.NoError(t, err)

		var conflictsPayload struct {
			Conflicts []models.Conflict `json:"conflicts"`
		}
		require.NoError(t, json.Unmarshal(data, &conflictsPayload))
		require.Len(t, conflictsPayload.Conflicts, 2)
		require.Equal(t, models.ReasonCapacityExceeded, conflictsPayload.Conflicts[0].Reason)
	})

	t.Run("unknown solution id is a 404", func(t *testing.T) {
		resp, envelope := doJSON(t, "GET", ts.URL+"/api/v1/solutions/unknown/conflicts", nil)

		require.Equal(t, http.StatusNotFound, resp.StatusCode)
		require.Equal(t, "not_found", envelope.Error.Code)
	})
}

func TestHandleListGroups(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, envelope := doJSON(t, "GET", ts.URL+"/api/v1/groups", nil)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.True(t, envelope.Success)
}

func TestAuthentication(t *testing.T) {
	ts, _ := newTestServer(t)

	t.Run("missing api key is rejected", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/api/v1/groups")
		require.NoError(t, err)
		defer resp.Body.Close()

		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("invalid api key is rejected", func(t *testing.T) {
		req, err := http.NewRequest("GET", ts.URL+"/api/v1/groups", nil)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer sk_invalid")

		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()

		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("health endpoints are public", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/health")
		require.NoError(t, err)
		defer resp.Body.Close()

		require.Equal(t, http.StatusOK, resp.StatusCode)
	})
}
