package database

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/twilightpharmacy/booking-backend/internal/domain/entities"
	"github.com/twilightpharmacy/booking-backend/internal/domain/providers"
	"github.com/twilightpharmacy/booking-backend/internal/domain/repositories"
)

// CachedLocationAdapter wraps LocationRepository with caching. Only the
// location records themselves are cached; block operations always hit the
// database because availability correctness depends on them.
type CachedLocationAdapter struct {
	adapter repositories.LocationRepository
	cache   providers.CacheProvider
	ttl     int
}

// NewCachedLocationAdapter creates a new cached location adapter
func NewCachedLocationAdapter(adapter repositories.LocationRepository, cache providers.CacheProvider, ttlSeconds int) repositories.LocationRepository {
	return &CachedLocationAdapter{
		adapter: adapter,
		cache:   cache,
		ttl:     ttlSeconds,
	}
}

func locationCacheKey(id string) string {
	return fmt.Sprintf("location:%s", id)
}

const locationsListCacheKey = "locations:list"

// GetByID retrieves a location by ID with caching
func (a *CachedLocationAdapter) GetByID(ctx context.Context, id string) (*entities.Location, error) {
	cacheKey := locationCacheKey(id)

	if cached, err := a.cache.Get(ctx, cacheKey); err == nil {
		var location entities.Location
		if err := json.Unmarshal(cached, &location); err == nil {
			return &location, nil
		}
		log.Printf("Failed to unmarshal cached location %s: %v", id, err)
	}

	location, err := a.adapter.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	go func() {
		bgCtx := context.Background()
		if data, err := json.Marshal(location); err == nil {
			if err := a.cache.Set(bgCtx, cacheKey, data, a.ttl); err != nil {
				log.Printf("Failed to cache location %s: %v", id, err)
			}
		}
	}()

	return location, nil
}

// List retrieves all locations with caching
func (a *CachedLocationAdapter) List(ctx context.Context) ([]*entities.Location, error) {
	if cached, err := a.cache.Get(ctx, locationsListCacheKey); err == nil {
		var locations []*entities.Location
		if err := json.Unmarshal(cached, &locations); err == nil {
			return locations, nil
		}
		log.Printf("Failed to unmarshal cached locations list: %v", err)
	}

	locations, err := a.adapter.List(ctx)
	if err != nil {
		return nil, err
	}

	go func() {
		bgCtx := context.Background()
		if data, err := json.Marshal(locations); err == nil {
			if err := a.cache.Set(bgCtx, locationsListCacheKey, data, a.ttl); err != nil {
				log.Printf("Failed to cache locations list: %v", err)
			}
		}
	}()

	return locations, nil
}

// CreateBlock is a pass-through; blocks are never cached
func (a *CachedLocationAdapter) CreateBlock(ctx context.Context, block *entities.LocationBlock) error {
	return a.adapter.CreateBlock(ctx, block)
}

// DeleteBlock is a pass-through; blocks are never cached
func (a *CachedLocationAdapter) DeleteBlock(ctx context.Context, locationID, blockID string) error {
	return a.adapter.DeleteBlock(ctx, locationID, blockID)
}

// ListBlocks is a pass-through; blocks are never cached
func (a *CachedLocationAdapter) ListBlocks(ctx context.Context, locationID string) ([]*entities.LocationBlock, error) {
	return a.adapter.ListBlocks(ctx, locationID)
}

// BlocksOverlapping is a pass-through; blocks are never cached
func (a *CachedLocationAdapter) BlocksOverlapping(ctx context.Context, locationID string, start, end time.Time) ([]*entities.LocationBlock, error) {
	return a.adapter.BlocksOverlapping(ctx, locationID, start, end)
}
