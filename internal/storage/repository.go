package storage

import (
	"context"

	"github.com/stagecrew/onboard-engine/internal/models"
)

// Repository defines the interface for candidate and group persistence.
// The solver itself only ever sees in-memory slices; this is the
// reference implementation of the candidate pool loader collaborator.
type Repository interface {
	// Candidates
	ListCandidates(ctx context.Context) ([]models.Candidate, error)
	GetCandidate(ctx context.Context, id string) (*models.Candidate, error)

	// Groups
	ListGroups(ctx context.Context) ([]models.Group, error)

	// API Clients
	GetClientByAPIKey(ctx context.Context, apiKey string) (*models.APIClient, error)
	UpdateClientLastUsed(ctx context.Context, apiKey string) error

	// Health
	Ping(ctx context.Context) error
	Close() error
}
