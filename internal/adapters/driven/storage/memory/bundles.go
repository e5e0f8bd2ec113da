package memory

import (
	"context"
	"slices"
	"sort"
	"sync"

	"github.com/thecoder8890/neuralnotes.io/internal/core/domain"
	"github.com/thecoder8890/neuralnotes.io/internal/core/ports/driven"
)

// Ensure BundleStore implements the interface.
var _ driven.BundleStore = (*BundleStore)(nil)

// BundleStore is an in-memory implementation of driven.BundleStore.
type BundleStore struct {
	mu      sync.RWMutex
	bundles map[string]domain.ProjectBundle
}

// NewBundleStore creates a new in-memory bundle store.
func NewBundleStore() *BundleStore {
	return &BundleStore{
		bundles: make(map[string]domain.ProjectBundle),
	}
}

// SaveBundle stores a bundle.
func (s *BundleStore) SaveBundle(_ context.Context, bundle *domain.ProjectBundle) error {
	if bundle == nil || bundle.ID == "" {
		return domain.ErrInvalidInput
	}
	stored := *bundle
	stored.Files = slices.Clone(bundle.Files)
	stored.Warnings = slices.Clone(bundle.Warnings)
	stored.Archive = slices.Clone(bundle.Archive)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.bundles[bundle.ID] = stored
	return nil
}

// GetBundle retrieves a bundle by ID.
func (s *BundleStore) GetBundle(_ context.Context, id string) (*domain.ProjectBundle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	bundle, ok := s.bundles[id]
	if !ok {
		return nil, domain.ErrBundleNotFound
	}
	return &bundle, nil
}

// ListBundles returns bundles newest first, optionally for one document.
// Archives are omitted from listings.
func (s *BundleStore) ListBundles(_ context.Context, documentID string) ([]domain.ProjectBundle, error) {
	s.mu.RLock()
	bundles := make([]domain.ProjectBundle, 0, len(s.bundles))
	for _, b := range s.bundles {
		if documentID != "" && b.DocumentID != documentID {
			continue
		}
		b.Archive = nil
		bundles = append(bundles, b)
	}
	s.mu.RUnlock()

	sort.Slice(bundles, func(i, j int) bool {
		if !bundles[i].CreatedAt.Equal(bundles[j].CreatedAt) {
			return bundles[i].CreatedAt.After(bundles[j].CreatedAt)
		}
		return bundles[i].ID < bundles[j].ID
	})
	return bundles, nil
}
