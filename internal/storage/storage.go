// Package storage persists user accounts and saved extraction documents.
package storage

import (
	"context"
	"errors"

	"github.com/hyperjump/yomitori/internal/models"
)

// ErrAlreadyExists is returned by CreateUser when the username or email is
// already registered.
var ErrAlreadyExists = errors.New("storage: username or email already exists")

// Store is the document store gateway. Saved documents are immutable: there
// is no update operation, and re-saving creates a new record.
type Store interface {
	CreateUser(ctx context.Context, username, email, password string) (string, error)
	Authenticate(ctx context.Context, username, password string) (*models.User, error)

	SaveDocument(ctx context.Context, ownerID, name string, texts, names []string, settings models.ExtractionSettings) (string, error)
	ListDocuments(ctx context.Context, ownerID string) ([]*models.SavedDocument, error)
	GetDocument(ctx context.Context, ownerID, id string) (*models.SavedDocument, error)
	// DeleteDocument removes a document the caller owns. An owner mismatch is
	// a silent no-op returning false, so callers cannot probe for other
	// owners' ids.
	DeleteDocument(ctx context.Context, ownerID, id string) (bool, error)

	Close() error
}
