package usecase

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/unitcost/backend/internal/domain"
)

// SessionServiceConfig holds configuration for the session service
type SessionServiceConfig struct {
	AutosaveDelay time.Duration
}

// SessionSnapshot is a consistent copy of the live session and its surroundings
type SessionSnapshot struct {
	Session      *domain.Session          `json:"session"`
	State        string                   `json:"state"`
	UnitType     domain.MeasurementFamily `json:"unitType"`
	Path         string                   `json:"path,omitempty"`
	Dirty        bool                     `json:"dirty"`
	HasData      bool                     `json:"hasData"`
	Capabilities Capabilities             `json:"capabilities"`

	// Evaluation is set by Load when the loaded session already has a family
	Evaluation *domain.Evaluation `json:"evaluation,omitempty"`
}

// RowPatch carries the fields of a row the user changed; nil fields are left alone
type RowPatch struct {
	Name     *string `json:"name"`
	Price    *string `json:"price"`
	Quantity *string `json:"quantity"`
	Unit     *string `json:"unit"`
	Store    *string `json:"store"`
	URL      *string `json:"url"`
}

// SessionService owns the live session and exposes the user actions on it.
// Every edit is reported to a debounced autosaver that writes the session
// back to its document once a path has been established by Load or Save.
type SessionService struct {
	repo      domain.SessionRepository
	pointer   domain.PointerStore
	engine    *RankingEngine
	autosaver *Autosaver
	logger    *zap.Logger

	// saveMu orders writers so a later save always carries a newer snapshot
	saveMu sync.Mutex

	mu       sync.Mutex
	session  *domain.Session
	path     string
	dirty    bool
	revision uint64

	// generation changes whenever the live session is replaced (New, Reset, Load)
	generation uint64
}

// NewSessionService creates a session service with an empty session
func NewSessionService(
	repo domain.SessionRepository,
	pointer domain.PointerStore,
	logger *zap.Logger,
	config SessionServiceConfig,
) *SessionService {
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &SessionService{
		repo:    repo,
		pointer: pointer,
		engine:  NewRankingEngine(logger.Named("ranking")),
		logger:  logger,
		session: domain.NewSession(),
	}
	s.autosaver = NewAutosaver(config.AutosaveDelay, s.autosave, logger.Named("autosave"))

	return s
}

// RunAutosave consumes edit events until ctx is cancelled
func (s *SessionService) RunAutosave(ctx context.Context) {
	s.autosaver.Run(ctx)
}

// Snapshot returns a copy of the current state
func (s *SessionService) Snapshot() *SessionSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// New starts a fresh untitled session and forgets the document path
func (s *SessionService) New() *SessionSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.replaceLocked(domain.NewSession(), "")
	return s.snapshotLocked()
}

// Reset discards every row and unlocks the family. The session is detached
// from its document, so the saved file is never overwritten by the reset.
func (s *SessionService) Reset() *SessionSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.path != "" {
		s.logger.Info("session reset", zap.String("detached_from", s.path))
	}
	s.replaceLocked(domain.NewSession(), "")
	return s.snapshotLocked()
}

// AddRow appends a blank row carrying the locked family
func (s *SessionService) AddRow() (*SessionSnapshot, error) {
	return s.edit(func(session *domain.Session) error {
		state := LockStateOf(session)
		if !state.Locked() {
			return domain.ErrMissingUnitType
		}
		session.Products = append(session.Products, domain.ProductEntry{UnitType: string(state.Family())})
		return nil
	})
}

// RemoveRow deletes a row; the last remaining row cannot be removed
func (s *SessionService) RemoveRow(row int) (*SessionSnapshot, error) {
	return s.edit(func(session *domain.Session) error {
		if err := checkRow(session, row); err != nil {
			return err
		}
		if len(session.Products) <= 1 {
			return domain.ErrLastRow
		}
		session.Products = append(session.Products[:row], session.Products[row+1:]...)
		return nil
	})
}

// UpdateRow applies the changed fields of one row
func (s *SessionService) UpdateRow(row int, patch RowPatch) (*SessionSnapshot, error) {
	return s.edit(func(session *domain.Session) error {
		if err := checkRow(session, row); err != nil {
			return err
		}
		entry := &session.Products[row]
		apply(&entry.Name, patch.Name)
		apply(&entry.Price, patch.Price)
		apply(&entry.Quantity, patch.Quantity)
		apply(&entry.Unit, patch.Unit)
		apply(&entry.Store, patch.Store)
		apply(&entry.URL, patch.URL)
		return nil
	})
}

// SelectFamily applies a family selection on a row. On ErrTypeMismatch the
// returned snapshot shows the reverted row.
func (s *SessionService) SelectFamily(row int, family domain.MeasurementFamily) (*SessionSnapshot, error) {
	s.mu.Lock()
	changed, err := SelectFamily(s.session, row, family)
	if changed {
		s.touchLocked()
	}
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	if changed {
		s.autosaver.Notify()
	}
	if err != nil {
		if errors.Is(err, domain.ErrTypeMismatch) {
			return snapshot, err
		}
		return nil, err
	}
	return snapshot, nil
}

// Calculate ranks the current rows
func (s *SessionService) Calculate() (*domain.Evaluation, error) {
	s.mu.Lock()
	session := s.session.Clone()
	s.mu.Unlock()

	return s.engine.Evaluate(session)
}

// Load replaces the live session with the document at path. The document is
// fully decoded first; on any failure the live session is left untouched.
func (s *SessionService) Load(ctx context.Context, path string) (*SessionSnapshot, error) {
	if strings.TrimSpace(path) == "" {
		return nil, domain.ErrNoSessionPath
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}

	loaded, err := s.repo.Load(ctx, abs)
	if err != nil {
		return nil, err
	}
	normalizeLoaded(loaded, abs)

	var evaluation *domain.Evaluation
	if loaded.Family.IsSet() {
		evaluation, err = s.engine.Evaluate(loaded.Clone())
		if err != nil {
			return nil, err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.replaceLocked(loaded, abs)

	s.logger.Info("session loaded",
		zap.String("path", abs),
		zap.String("title", loaded.Title),
		zap.Int("rows", len(loaded.Products)))

	snapshot := s.snapshotLocked()
	snapshot.Evaluation = evaluation
	return snapshot, nil
}

// Save writes the session to path, or to the established path when path is
// empty. The session takes the file's base name as its title and the path is
// remembered as the last session.
func (s *SessionService) Save(ctx context.Context, path string) (*SessionSnapshot, error) {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	s.mu.Lock()
	target := strings.TrimSpace(path)
	if target == "" {
		target = s.path
	}
	if target == "" {
		s.mu.Unlock()
		return nil, domain.ErrNoSessionPath
	}
	abs, err := filepath.Abs(target)
	if err != nil {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}
	title := titleFromPath(abs)
	session := s.session.Clone()
	session.Title = title
	revision := s.revision
	generation := s.generation
	s.mu.Unlock()

	if err := s.repo.Save(ctx, abs, session); err != nil {
		return nil, err
	}

	s.mu.Lock()
	if s.generation != generation {
		// the saved session was replaced while it was being written
		snapshot := s.snapshotLocked()
		s.mu.Unlock()
		s.logger.Info("session saved after being replaced", zap.String("path", abs))
		return snapshot, nil
	}
	s.session.Title = title
	s.path = abs
	if s.revision == revision {
		s.dirty = false
	}
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	if err := s.pointer.Set(ctx, abs); err != nil {
		s.logger.Warn("failed to record last session", zap.String("path", abs), zap.Error(err))
	}

	s.logger.Info("session saved", zap.String("path", abs), zap.String("title", title))
	return snapshot, nil
}

// RestoreLastSession loads the document named by the last-session pointer.
// It is a startup convenience: every failure is logged and the empty session kept.
func (s *SessionService) RestoreLastSession(ctx context.Context) bool {
	path, err := s.pointer.Get(ctx)
	if err != nil {
		if !errors.Is(err, domain.ErrNoLastSession) {
			s.logger.Warn("failed to read last session pointer", zap.Error(err))
		}
		return false
	}

	if _, err := s.Load(ctx, path); err != nil {
		s.logger.Warn("failed to restore last session", zap.String("path", path), zap.Error(err))
		return false
	}
	return true
}

// autosave writes pending edits to the established path, if there is one
func (s *SessionService) autosave(ctx context.Context) error {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	s.mu.Lock()
	if s.path == "" || !s.dirty {
		s.mu.Unlock()
		return nil
	}
	path := s.path
	session := s.session.Clone()
	revision := s.revision
	generation := s.generation
	s.mu.Unlock()

	if err := s.repo.Save(ctx, path, session); err != nil {
		return err
	}

	s.mu.Lock()
	if s.generation == generation && s.revision == revision {
		s.dirty = false
	}
	s.mu.Unlock()

	s.logger.Debug("session autosaved", zap.String("path", path))
	return nil
}

// edit runs fn against the live session and reports the change to the autosaver
func (s *SessionService) edit(fn func(session *domain.Session) error) (*SessionSnapshot, error) {
	s.mu.Lock()
	if err := fn(s.session); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	s.touchLocked()
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	s.autosaver.Notify()
	return snapshot, nil
}

// replaceLocked installs a new live session bound to path
func (s *SessionService) replaceLocked(session *domain.Session, path string) {
	s.session = session
	s.path = path
	s.dirty = false
	s.revision++
	s.generation++
}

func (s *SessionService) touchLocked() {
	s.dirty = true
	s.revision++
}

func (s *SessionService) snapshotLocked() *SessionSnapshot {
	state := LockStateOf(s.session)
	return &SessionSnapshot{
		Session:      s.session.Clone(),
		State:        state.String(),
		UnitType:     state.Family(),
		Path:         s.path,
		Dirty:        s.dirty,
		HasData:      s.session.HasData(),
		Capabilities: CapabilitiesOf(s.session),
	}
}

// normalizeLoaded fills in what a document may leave out
func normalizeLoaded(session *domain.Session, path string) {
	if strings.TrimSpace(session.Title) == "" {
		session.Title = titleFromPath(path)
	}
	if len(session.Products) == 0 {
		session.Products = []domain.ProductEntry{{}}
	}
	if session.Family.IsSet() {
		for i := range session.Products {
			session.Products[i].UnitType = string(session.Family)
		}
	}
}

func titleFromPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func checkRow(session *domain.Session, row int) error {
	if row < 0 || row >= len(session.Products) {
		return fmt.Errorf("%w: %d", domain.ErrRowIndex, row)
	}
	return nil
}

func apply(field *string, value *string) {
	if value != nil {
		*field = *value
	}
}
