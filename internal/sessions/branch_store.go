package sessions

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vtcode-ai/vtcode/pkg/models"
)

// MemoryBranchStore is a concurrency-safe in-process BranchStore. Each
// session's primary branch is created lazily on first access, mirroring the
// teacher's lazy-init pattern for per-session state.
type MemoryBranchStore struct {
	mu       sync.RWMutex
	primary  map[string]*models.Branch          // sessionID -> primary branch
	branches map[string]*models.Branch          // branchID -> branch
	history  map[string][]*models.Message       // branchID -> messages
}

// NewMemoryBranchStore creates an empty in-memory branch store.
func NewMemoryBranchStore() *MemoryBranchStore {
	return &MemoryBranchStore{
		primary:  make(map[string]*models.Branch),
		branches: make(map[string]*models.Branch),
		history:  make(map[string][]*models.Message),
	}
}

func (s *MemoryBranchStore) EnsurePrimaryBranch(_ context.Context, sessionID string) (*models.Branch, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("sessions: session id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if branch, ok := s.primary[sessionID]; ok {
		return branch, nil
	}

	branch := models.NewPrimaryBranch(sessionID)
	branch.ID = uuid.NewString()
	s.primary[sessionID] = branch
	s.branches[branch.ID] = branch
	if _, ok := s.history[branch.ID]; !ok {
		s.history[branch.ID] = nil
	}
	return branch, nil
}

func (s *MemoryBranchStore) GetBranchHistory(_ context.Context, branchID string, limit int) ([]*models.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.branches[branchID]; !ok {
		return nil, fmt.Errorf("sessions: unknown branch %q", branchID)
	}

	all := s.history[branchID]
	if limit <= 0 || limit >= len(all) {
		out := make([]*models.Message, len(all))
		copy(out, all)
		return out, nil
	}
	start := len(all) - limit
	out := make([]*models.Message, limit)
	copy(out, all[start:])
	return out, nil
}

func (s *MemoryBranchStore) AppendMessageToBranch(_ context.Context, sessionID, branchID string, msg *models.Message) error {
	if msg == nil {
		return fmt.Errorf("sessions: message is nil")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	branch, ok := s.branches[branchID]
	if !ok {
		return fmt.Errorf("sessions: unknown branch %q", branchID)
	}
	if branch.SessionID != sessionID {
		return fmt.Errorf("sessions: branch %q does not belong to session %q", branchID, sessionID)
	}

	branch.UpdatedAt = time.Now()
	s.history[branchID] = append(s.history[branchID], msg)
	return nil
}
