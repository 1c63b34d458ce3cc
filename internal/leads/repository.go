package leads

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Repository defines the interface for lead storage.
type Repository interface {
	// Create inserts the lead. When the lead carries a WhatsAppMessageID that
	// already exists it returns ErrDuplicateMessage and inserts nothing; the
	// uniqueness guarantee lives in the storage layer, not the caller.
	Create(ctx context.Context, lead *Lead) (*Lead, error)
	GetByID(ctx context.Context, id string) (*Lead, error)
	GetByMessageID(ctx context.Context, messageID string) (*Lead, error)
	List(ctx context.Context, filter ListFilter) ([]*Lead, error)
	UpdateStatus(ctx context.Context, id string, next Status, opts StatusUpdate) (*Lead, error)
}

// StatusUpdate carries the side fields written alongside a status change.
type StatusUpdate struct {
	ClaimedByUserID string
	ProofURL        string
}

// InMemoryRepository is a Repository backed by a map, for tests and local runs.
type InMemoryRepository struct {
	mu    sync.RWMutex
	leads map[string]*Lead
	byMsg map[string]string
}

// NewInMemoryRepository creates a new in-memory repository
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		leads: make(map[string]*Lead),
		byMsg: make(map[string]string),
	}
}

func (r *InMemoryRepository) Create(ctx context.Context, lead *Lead) (*Lead, error) {
	if err := lead.Validate(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if lead.WhatsAppMessageID != "" {
		if _, exists := r.byMsg[lead.WhatsAppMessageID]; exists {
			return nil, ErrDuplicateMessage
		}
	}

	now := time.Now().UTC()
	stored := *lead
	stored.ID = uuid.NewString()
	if stored.LeadCode == "" {
		stored.LeadCode = NewLeadCode(now)
	}
	stored.CreatedAt = now
	stored.UpdatedAt = now

	r.leads[stored.ID] = &stored
	if stored.WhatsAppMessageID != "" {
		r.byMsg[stored.WhatsAppMessageID] = stored.ID
	}

	out := stored
	return &out, nil
}

func (r *InMemoryRepository) GetByID(ctx context.Context, id string) (*Lead, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	lead, ok := r.leads[id]
	if !ok {
		return nil, ErrLeadNotFound
	}
	out := *lead
	return &out, nil
}

func (r *InMemoryRepository) GetByMessageID(ctx context.Context, messageID string) (*Lead, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byMsg[messageID]
	if !ok {
		return nil, ErrLeadNotFound
	}
	out := *r.leads[id]
	return &out, nil
}

func (r *InMemoryRepository) List(ctx context.Context, filter ListFilter) ([]*Lead, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*Lead
	for _, lead := range r.leads {
		if filter.Status != "" && lead.Status != filter.Status {
			continue
		}
		if filter.Source != "" && lead.Source != filter.Source {
			continue
		}
		if filter.ServiceType != "" && lead.ServiceType != filter.ServiceType {
			continue
		}
		copied := *lead
		out = append(out, &copied)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })

	if filter.Offset > 0 {
		if filter.Offset >= len(out) {
			return nil, nil
		}
		out = out[filter.Offset:]
	}
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (r *InMemoryRepository) UpdateStatus(ctx context.Context, id string, next Status, opts StatusUpdate) (*Lead, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	lead, ok := r.leads[id]
	if !ok {
		return nil, ErrLeadNotFound
	}
	if !lead.Status.CanTransition(next) {
		return nil, ErrInvalidTransition
	}

	now := time.Now().UTC()
	lead.Status = next
	lead.UpdatedAt = now
	switch next {
	case StatusClaimed:
		lead.ClaimedByUserID = opts.ClaimedByUserID
		lead.ClaimedAt = &now
	case StatusCompleted:
		lead.ProofURL = opts.ProofURL
	case StatusRejected:
		lead.RejectedAt = &now
	}

	out := *lead
	return &out, nil
}
