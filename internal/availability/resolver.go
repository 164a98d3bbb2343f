// Package availability answers "where can I watch this" for a title.
package availability

import (
	"context"
	"log/slog"
	"sync"

	"github.com/AnasZiaf26/Zapit/internal/domain"
	"github.com/AnasZiaf26/Zapit/internal/locale"
)

// DefaultFallbacks is the region order tried after the session region
var DefaultFallbacks = []domain.Region{"FR", "US"}

// Resolver picks a single region's availability through a fallback chain
type Resolver struct {
	repo      domain.AvailabilityRepository
	fallbacks []domain.Region
	logger    *slog.Logger

	mu     sync.Mutex
	gen    uint64
	cancel context.CancelFunc
}

// NewResolver creates a resolver. Empty fallbacks use DefaultFallbacks.
func NewResolver(repo domain.AvailabilityRepository, fallbacks []domain.Region, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	if len(fallbacks) == 0 {
		fallbacks = DefaultFallbacks
	}
	return &Resolver{repo: repo, fallbacks: fallbacks, logger: logger}
}

// Chain returns the region order for a session region
func (r *Resolver) Chain(region domain.Region) []domain.Region {
	return locale.FallbackChain(region, r.fallbacks)
}

// Resolve returns the first region in the chain that lists at least one
// provider. A nil record with a nil error means no availability anywhere.
func (r *Resolver) Resolve(ctx context.Context, titleID int, kind domain.MediaKind, region domain.Region) (*domain.AvailabilityRecord, error) {
	regions, err := r.repo.WatchProviders(ctx, kind, titleID)
	if err != nil {
		return nil, err
	}

	for _, code := range r.Chain(region) {
		rp, ok := regions[code]
		if !ok || rp.Empty() {
			continue
		}
		return &domain.AvailabilityRecord{
			TitleID:   titleID,
			Kind:      kind,
			Region:    code,
			Link:      rp.Link,
			Providers: rp.Providers,
		}, nil
	}

	r.logger.Debug("no availability", "title", titleID, "kind", kind, "region", region)
	return nil, nil
}

// Select resolves availability for a newly selected title. A selection made
// while this one is in flight cancels it, and this call then returns
// domain.ErrSelectionSuperseded.
func (r *Resolver) Select(ctx context.Context, item domain.MediaItem, region domain.Region) (*domain.AvailabilityRecord, error) {
	r.mu.Lock()
	if r.cancel != nil {
		r.cancel()
	}
	r.gen++
	gen := r.gen
	ctx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.mu.Unlock()
	defer cancel()

	rec, err := r.Resolve(ctx, item.ID, item.Kind, region)

	r.mu.Lock()
	defer r.mu.Unlock()
	if gen != r.gen {
		return nil, domain.ErrSelectionSuperseded
	}
	r.cancel = nil
	if err != nil {
		r.logger.Warn("availability lookup failed", "title", item.ID, "error", err)
	}
	return rec, err
}

// Cancel abandons the in-flight selection, if any
func (r *Resolver) Cancel() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
	r.gen++
}
