// Package persistence stores the roadmap document in a key-value backend
// and reports changes made by other writers. Every operation fails soft:
// problems are logged and callers fall back to defaults.
package persistence

import (
	"context"

	"github.com/akyairhashvil/roadmap/internal/database"
)

// Backend is the key-value document store the service writes through.
//
//go:generate mockgen -source=backend.go -destination=mock_backend_test.go -package=persistence
type Backend interface {
	GetDocument(ctx context.Context, key string) (database.StoredDocument, error)
	PutDocument(ctx context.Context, key string, body []byte) (int64, error)
	Revision(ctx context.Context, key string) (int64, error)
}

var _ Backend = (*database.Database)(nil)
