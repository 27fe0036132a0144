package database

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/twilightpharmacy/booking-backend/internal/domain/entities"
	"github.com/twilightpharmacy/booking-backend/internal/domain/providers"
	"github.com/twilightpharmacy/booking-backend/internal/domain/repositories"
)

// CachedTreatmentAdapter wraps TreatmentRepository with caching of the
// treatment catalogue. TTLs come from CacheConfig.
type CachedTreatmentAdapter struct {
	adapter repositories.TreatmentRepository
	cache   providers.CacheProvider
	ttl     int
}

// NewCachedTreatmentAdapter creates a new cached treatment adapter
func NewCachedTreatmentAdapter(adapter repositories.TreatmentRepository, cache providers.CacheProvider, ttlSeconds int) repositories.TreatmentRepository {
	return &CachedTreatmentAdapter{
		adapter: adapter,
		cache:   cache,
		ttl:     ttlSeconds,
	}
}

func treatmentCacheKey(id string) string {
	return fmt.Sprintf("treatment:%s", id)
}

func treatmentsListCacheKey(filter repositories.TreatmentFilter) string {
	return fmt.Sprintf("treatments:list:%s:%t:%d:%d", filter.Category, filter.ActiveOnly, filter.Limit, filter.Offset)
}

func treatmentLocationsCacheKey(id string) string {
	return fmt.Sprintf("treatment:%s:locations", id)
}

// GetByID retrieves a treatment by ID with caching
func (a *CachedTreatmentAdapter) GetByID(ctx context.Context, id string) (*entities.Treatment, error) {
	cacheKey := treatmentCacheKey(id)

	if cached, err := a.cache.Get(ctx, cacheKey); err == nil {
		var treatment entities.Treatment
		if err := json.Unmarshal(cached, &treatment); err == nil {
			return &treatment, nil
		}
		log.Printf("Failed to unmarshal cached treatment %s: %v", id, err)
	}

	treatment, err := a.adapter.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	a.setAsync(cacheKey, treatment)

	return treatment, nil
}

// List retrieves treatments matching the filter with caching
func (a *CachedTreatmentAdapter) List(ctx context.Context, filter repositories.TreatmentFilter) ([]*entities.Treatment, error) {
	cacheKey := treatmentsListCacheKey(filter)

	if cached, err := a.cache.Get(ctx, cacheKey); err == nil {
		var treatments []*entities.Treatment
		if err := json.Unmarshal(cached, &treatments); err == nil {
			return treatments, nil
		}
		log.Printf("Failed to unmarshal cached treatments list: %v", err)
	}

	treatments, err := a.adapter.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	a.setAsync(cacheKey, treatments)

	return treatments, nil
}

// Search is a pass-through; search results are served fresh
func (a *CachedTreatmentAdapter) Search(ctx context.Context, query string, limit int) ([]*entities.Treatment, error) {
	return a.adapter.Search(ctx, query, limit)
}

// LocationsFor retrieves the locations offering a treatment with caching
func (a *CachedTreatmentAdapter) LocationsFor(ctx context.Context, treatmentID string) ([]*entities.Location, error) {
	cacheKey := treatmentLocationsCacheKey(treatmentID)

	if cached, err := a.cache.Get(ctx, cacheKey); err == nil {
		var locations []*entities.Location
		if err := json.Unmarshal(cached, &locations); err == nil {
			return locations, nil
		}
		log.Printf("Failed to unmarshal cached treatment locations: %v", err)
	}

	locations, err := a.adapter.LocationsFor(ctx, treatmentID)
	if err != nil {
		return nil, err
	}

	a.setAsync(cacheKey, locations)

	return locations, nil
}

func (a *CachedTreatmentAdapter) setAsync(cacheKey string, value interface{}) {
	go func() {
		bgCtx := context.Background()
		if data, err := json.Marshal(value); err == nil {
			if err := a.cache.Set(bgCtx, cacheKey, data, a.ttl); err != nil {
				log.Printf("Failed to cache %s: %v", cacheKey, err)
			}
		}
	}()
}
