package rendition

import (
	"context"
	"fmt"
	"io/fs"

	"github.com/zeebo/blake3"

	"github.com/mkrupp/homecase-dashboard/internal/domain"
	"github.com/mkrupp/homecase-dashboard/internal/util/encoding"
)

// Repository stores resized icons so they are only rendered once.
type Repository interface {
	// Lock acquires a lock on the rendition with the given ID.
	// If exclusive is true, acquires a write lock, otherwise a read lock.
	// Returns a function to release the lock, and any error encountered.
	Lock(ctx context.Context, id domain.RenditionID, exclusive bool) (func(), error)

	// Fetch returns the stored rendition.
	// Returns an error wrapping fs.ErrNotExist if there is none.
	Fetch(ctx context.Context, id domain.RenditionID) ([]byte, error)

	// Store persists a rendition, replacing any previous one with the same ID.
	Store(ctx context.Context, id domain.RenditionID, body []byte) error
}

// NewID derives the rendition ID for key.
func NewID(key domain.RenditionKey) domain.RenditionID {
	sum := blake3.Sum256(key.Canonical())

	return domain.RenditionID(encoding.EncodeCrockfordB32LC(sum[:]))
}

// NewRepository returns a filesystem repository under cfg.Basedir,
// or a repository that stores nothing if no directory is configured.
func NewRepository(ctx context.Context, cfg FileSystemRepositoryConfig) (Repository, error) {
	if cfg.Basedir == "" {
		return NopRepository{}, nil
	}

	repo, err := NewFileSystemRepository(ctx, cfg)
	if err != nil {
		return nil, err
	}

	return repo, nil
}

// NopRepository is a Repository that never has a rendition.
type NopRepository struct{}

var _ Repository = NopRepository{}

func (NopRepository) Lock(context.Context, domain.RenditionID, bool) (func(), error) {
	return func() {}, nil
}

func (NopRepository) Fetch(_ context.Context, id domain.RenditionID) ([]byte, error) {
	return nil, fmt.Errorf("fetch %s: %w", id, fs.ErrNotExist)
}

func (NopRepository) Store(context.Context, domain.RenditionID, []byte) error {
	return nil
}
