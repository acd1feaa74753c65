package rendition

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"

	"github.com/mkrupp/homecase-dashboard/internal/domain"
	"github.com/mkrupp/homecase-dashboard/internal/infra/logging"
	"github.com/mkrupp/homecase-dashboard/internal/util/encoding"
)

var (
	ErrInvalidRenditionID   = errors.New("invalid rendition ID")
	ErrBytesWrittenMismatch = errors.New("bytes written mismatch")
)

const (
	dirPrefixLength = 2 // 32^2 = 1024 directories per level
	dirPrefixDepth  = 2
	idMinLength     = dirPrefixDepth*dirPrefixLength + 1
	fileExt         = ".bin"
)

// FileSystemRepositoryConfig holds configuration for the filesystem-based rendition repository.
type FileSystemRepositoryConfig struct {
	// Basedir is the root directory for cached renditions. Empty disables caching.
	Basedir string `env:"CACHE_DIR" default:""`
}

// FileSystemRepository implements Repository using the local filesystem.
// Renditions are spread over a two-level directory hierarchy keyed by ID prefix:
//
//	3f/k9/3fk9...x2.bin
type FileSystemRepository struct {
	cfg FileSystemRepositoryConfig
	log logging.Logger
}

var _ Repository = (*FileSystemRepository)(nil)

// NewFileSystemRepository creates the base directory and returns a repository rooted there.
func NewFileSystemRepository(ctx context.Context, cfg FileSystemRepositoryConfig) (*FileSystemRepository, error) {
	repo := &FileSystemRepository{
		cfg: cfg,
		log: logging.GetLogger("repo.rendition.filesystem_repository").With(
			logging.Group("repo", "basedir", cfg.Basedir),
		),
	}

	if err := repo.initStorage(ctx); err != nil {
		return nil, fmt.Errorf("init repo: %w", err)
	}

	return repo, nil
}

func (fsRepo *FileSystemRepository) initStorage(ctx context.Context) (err error) {
	defer func() {
		if err != nil {
			fsRepo.log.ErrorContext(ctx, "init storage failed", "error", err)
		} else {
			fsRepo.log.DebugContext(ctx, "init storage")
		}
	}()

	if err := os.MkdirAll(fsRepo.cfg.Basedir, 0o755); err != nil {
		return fmt.Errorf("mkdir all: %w", err)
	}

	return nil
}

// GetFilename returns the full filesystem path for a rendition with the given ID.
func (fsRepo *FileSystemRepository) GetFilename(id domain.RenditionID) (string, error) {
	name := string(id)
	if len(name) < idMinLength || !encoding.IsCrockfordB32LC(name) {
		return "", fmt.Errorf("%w: %q", ErrInvalidRenditionID, name)
	}

	parts := []string{fsRepo.cfg.Basedir}
	for i := range dirPrefixDepth {
		parts = append(parts, name[i*dirPrefixLength:(i+1)*dirPrefixLength])
	}

	return filepath.Join(append(parts, name+fileExt)...), nil
}

// Lock implements Repository.Lock with an advisory flock on a sidecar lock file,
// so several processes may share one cache directory.
func (fsRepo *FileSystemRepository) Lock(
	ctx context.Context,
	id domain.RenditionID,
	exclusive bool,
) (release func(), err error) {
	filename, err := fsRepo.GetFilename(id)
	if err != nil {
		return nil, err
	}

	lockfile := filename + ".lock"
	log := fsRepo.log.With(logging.Group("rendition", "lockfile", lockfile, "exclusive", exclusive))

	defer func() {
		if err != nil {
			log.ErrorContext(ctx, "lock failed", "error", err)
		} else {
			log.DebugContext(ctx, "lock acquired")
		}
	}()

	if err := os.MkdirAll(filepath.Dir(lockfile), 0o755); err != nil {
		return nil, fmt.Errorf("mkdir all: %w", err)
	}

	file, err := os.OpenFile(lockfile, os.O_CREATE|os.O_RDWR, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}

	mode := unix.LOCK_SH
	if exclusive {
		mode = unix.LOCK_EX
	}

	if err := unix.Flock(int(file.Fd()), mode); err != nil { //nolint:gosec
		_ = file.Close()

		return nil, fmt.Errorf("flock: %w", err)
	}

	return func() {
		_ = unix.Flock(int(file.Fd()), unix.LOCK_UN) //nolint:gosec
		_ = file.Close()

		log.DebugContext(ctx, "lock released")
	}, nil
}

// Fetch implements Repository.Fetch.
func (fsRepo *FileSystemRepository) Fetch(ctx context.Context, id domain.RenditionID) (body []byte, err error) {
	filename, err := fsRepo.GetFilename(id)
	if err != nil {
		return nil, err
	}

	defer func() {
		log := fsRepo.log.With(logging.Group("rendition", "id", id, "filename", filename))
		if err != nil {
			log.DebugContext(ctx, "rendition fetch failed", "error", err)
		} else {
			log.DebugContext(ctx, "rendition fetched", "size", len(body))
		}
	}()

	body, err = os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}

	return body, nil
}

// Store implements Repository.Store. The rendition is written to a temporary file
// and renamed into place, so readers never see a partial file.
func (fsRepo *FileSystemRepository) Store(ctx context.Context, id domain.RenditionID, body []byte) (err error) {
	filename, err := fsRepo.GetFilename(id)
	if err != nil {
		return err
	}

	defer func() {
		log := fsRepo.log.With(logging.Group("rendition", "id", id, "filename", filename))
		if err != nil {
			log.ErrorContext(ctx, "rendition store failed", "error", err)
		} else {
			log.DebugContext(ctx, "rendition stored", "size", len(body))
		}
	}()

	if err := os.MkdirAll(filepath.Dir(filename), 0o755); err != nil {
		return fmt.Errorf("mkdir all: %w", err)
	}

	file, err := os.CreateTemp(filepath.Dir(filename), filepath.Base(filename)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}

	tmpName := file.Name()

	defer func() {
		if err != nil {
			_ = os.Remove(tmpName)
		}
	}()

	n, err := file.Write(body)
	if err != nil {
		_ = file.Close()

		return fmt.Errorf("write: %w", err)
	} else if n != len(body) {
		_ = file.Close()

		return fmt.Errorf("%w: expected %d, got %d", ErrBytesWrittenMismatch, len(body), n)
	}

	if err := file.Sync(); err != nil {
		_ = file.Close()

		return fmt.Errorf("sync: %w", err)
	}

	if err := file.Close(); err != nil {
		return fmt.Errorf("close: %w", err)
	}

	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("chmod: %w", err)
	}

	if err := os.Rename(tmpName, filename); err != nil {
		return fmt.Errorf("rename: %w", err)
	}

	return nil
}
