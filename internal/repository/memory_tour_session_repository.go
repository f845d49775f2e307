package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"Yatra-App/internal/domain/model"
	"Yatra-App/internal/domain/repository"
)

// MemoryTourSessionRepository プロセス内にツアーセッションを保持するリポジトリ
type MemoryTourSessionRepository struct {
	mu       sync.RWMutex
	sessions map[string]memorySessionEntry
	ttl      time.Duration
	now      func() time.Time
}

type memorySessionEntry struct {
	session  model.TourSession
	expireAt time.Time
}

// NewMemoryTourSessionRepository ttlHoursが0以下の場合は期限切れにしない
func NewMemoryTourSessionRepository(ttlHours int) repository.TourSessionsRepository {
	return &MemoryTourSessionRepository{
		sessions: make(map[string]memorySessionEntry),
		ttl:      time.Duration(ttlHours) * time.Hour,
		now:      time.Now,
	}
}

func (r *MemoryTourSessionRepository) Save(ctx context.Context, session *model.TourSession) error {
	if session == nil || session.ID == "" {
		return fmt.Errorf("セッションIDが空です")
	}

	entry := memorySessionEntry{session: *session}
	if r.ttl > 0 {
		entry.expireAt = r.now().Add(r.ttl)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[session.ID] = entry
	return nil
}

func (r *MemoryTourSessionRepository) Get(ctx context.Context, sessionID string) (*model.TourSession, error) {
	r.mu.RLock()
	entry, ok := r.sessions[sessionID]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%s: %w", sessionID, repository.ErrTourSessionNotFound)
	}
	if !entry.expireAt.IsZero() && r.now().After(entry.expireAt) {
		r.mu.Lock()
		delete(r.sessions, sessionID)
		r.mu.Unlock()
		return nil, fmt.Errorf("%s（有効期限切れ）: %w", sessionID, repository.ErrTourSessionNotFound)
	}

	session := entry.session
	return &session, nil
}

func (r *MemoryTourSessionRepository) Delete(ctx context.Context, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, sessionID)
	return nil
}
