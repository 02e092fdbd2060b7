package document

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/unitcost/backend/internal/domain"
)

// FileStore persists session documents on a filesystem.
// Writers to the same path are serialized and every write is atomic.
type FileStore struct {
	fs     afero.Fs
	logger *zap.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewFileStore creates a store on fs, usually afero.NewOsFs()
func NewFileStore(fs afero.Fs, logger *zap.Logger) *FileStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileStore{
		fs:     fs,
		logger: logger,
		locks:  make(map[string]*sync.Mutex),
	}
}

// Load decodes the document at path with the codec for its extension
func (s *FileStore) Load(ctx context.Context, path string) (*domain.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	lock := s.lockFor(path)
	lock.Lock()
	defer lock.Unlock()

	f, err := s.fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}
	defer f.Close()

	codec := CodecFor(path)
	session, err := codec.Decode(f)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("session document read",
		zap.String("path", path),
		zap.String("codec", codec.Name()),
		zap.Int("products", len(session.Products)))

	return session, nil
}

// Save writes the session to a temporary file next to path and renames it into place
func (s *FileStore) Save(ctx context.Context, path string, session *domain.Session) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	lock := s.lockFor(path)
	lock.Lock()
	defer lock.Unlock()

	dir := filepath.Dir(path)
	if err := s.fs.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}

	tmp, err := afero.TempFile(s.fs, dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}
	tmpName := tmp.Name()

	codec := CodecFor(path)
	if err := codec.Encode(tmp, session); err != nil {
		tmp.Close()
		s.fs.Remove(tmpName)
		return fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}
	if err := tmp.Close(); err != nil {
		s.fs.Remove(tmpName)
		return fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}
	if err := s.fs.Chmod(tmpName, 0o644); err != nil {
		s.logger.Debug("failed to set session file mode", zap.String("path", tmpName), zap.Error(err))
	}
	if err := s.fs.Rename(tmpName, path); err != nil {
		s.fs.Remove(tmpName)
		return fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}

	s.logger.Debug("session document written", zap.String("path", path), zap.String("codec", codec.Name()))
	return nil
}

func (s *FileStore) lockFor(path string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	lock, ok := s.locks[path]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[path] = lock
	}
	return lock
}
