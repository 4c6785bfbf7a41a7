package analyses

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo stores analyses in memory and is safe for concurrent use.
type MemoryRepo struct {
	mu      sync.RWMutex
	byID    map[string]Analysis
	byOwner map[string][]string
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		byID:    make(map[string]Analysis),
		byOwner: make(map[string][]string),
	}
}

// Create stores the analysis.
func (r *MemoryRepo) Create(ctx context.Context, analysis Analysis) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	analysis.Result = analysis.Result.Clone()
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byID[analysis.ID]; !exists {
		r.byOwner[analysis.OwnerID] = append(r.byOwner[analysis.OwnerID], analysis.ID)
	}
	r.byID[analysis.ID] = analysis
	return nil
}

// GetByID returns an analysis by its ID.
func (r *MemoryRepo) GetByID(ctx context.Context, analysisID string) (Analysis, error) {
	if err := ctx.Err(); err != nil {
		return Analysis{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	analysis, ok := r.byID[analysisID]
	if !ok {
		return Analysis{}, ErrNotFound
	}
	analysis.Result = analysis.Result.Clone()
	return analysis, nil
}

// ListByOwner returns analyses for an owner, newest first, with limit/offset.
func (r *MemoryRepo) ListByOwner(ctx context.Context, ownerID string, limit, offset int) ([]Analysis, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if offset < 0 {
		offset = 0
	}
	if limit < 0 {
		limit = 0
	}

	r.mu.RLock()
	ids := r.byOwner[ownerID]
	analyses := make([]Analysis, 0, len(ids))
	for _, id := range ids {
		analyses = append(analyses, r.byID[id])
	}
	r.mu.RUnlock()

	if offset >= len(analyses) {
		return []Analysis{}, nil
	}
	sort.SliceStable(analyses, func(i, j int) bool {
		return analyses[i].CreatedAt.After(analyses[j].CreatedAt)
	})

	end := len(analyses)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	out := analyses[offset:end]
	for i := range out {
		out[i].Result = out[i].Result.Clone()
	}
	return out, nil
}
