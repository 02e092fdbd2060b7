package domain

import "context"

// SessionRepository reads and writes session documents
type SessionRepository interface {
	Load(ctx context.Context, path string) (*Session, error)
	Save(ctx context.Context, path string, session *Session) error
}

// PointerStore remembers the most recently saved session document
type PointerStore interface {
	Get(ctx context.Context) (string, error)
	Set(ctx context.Context, path string) error
}
