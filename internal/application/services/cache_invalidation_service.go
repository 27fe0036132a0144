package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/twilightpharmacy/booking-backend/internal/domain/entities"
	"github.com/twilightpharmacy/booking-backend/internal/domain/providers"
)

// CacheInvalidationService drops cached reference data when a
// reference-update event arrives on the event bus
type CacheInvalidationService struct {
	cache    providers.CacheProvider
	eventBus providers.EventBus
	ctx      context.Context
	cancel   context.CancelFunc
}

// NewCacheInvalidationService creates a new cache invalidation service
func NewCacheInvalidationService(cache providers.CacheProvider, eventBus providers.EventBus) *CacheInvalidationService {
	ctx, cancel := context.WithCancel(context.Background())
	return &CacheInvalidationService{
		cache:    cache,
		eventBus: eventBus,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start begins listening for reference events and invalidating cache
func (s *CacheInvalidationService) Start() error {
	eventChan, err := s.eventBus.Subscribe(s.ctx, providers.EventChannelReference)
	if err != nil {
		return fmt.Errorf("failed to subscribe to reference updates: %w", err)
	}

	go s.processEvents(eventChan)
	log.Println("Cache invalidation service started")
	return nil
}

// Stop stops the cache invalidation service
func (s *CacheInvalidationService) Stop() {
	s.cancel()
	log.Println("Cache invalidation service stopped")
}

func (s *CacheInvalidationService) processEvents(eventChan <-chan *entities.Event) {
	for {
		select {
		case <-s.ctx.Done():
			return
		case event := <-eventChan:
			if event == nil {
				continue
			}
			s.handleEvent(event)
		}
	}
}

// handleEvent invalidates the cache entries for the updated entity. Only
// reference data lives in the cache; slot availability and bookings are
// always read fresh, so booking events need no handling here.
func (s *CacheInvalidationService) handleEvent(event *entities.Event) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	switch event.Entity {
	case "treatment":
		s.deletePattern(ctx, fmt.Sprintf("treatment:%s*", event.EntityID))
		s.deletePattern(ctx, "treatments:list:*")
		s.deletePattern(ctx, "http:cache:*treatments*")
	case "location":
		s.deletePattern(ctx, fmt.Sprintf("location:%s*", event.EntityID))
		s.deletePattern(ctx, "locations:list*")
		s.deletePattern(ctx, "treatment:*:locations")
		s.deletePattern(ctx, "http:cache:*locations*")
	default:
		log.Printf("Ignoring reference event for entity %q", event.Entity)
	}
}

func (s *CacheInvalidationService) deletePattern(ctx context.Context, pattern string) {
	if err := s.cache.DeletePattern(ctx, pattern); err != nil {
		log.Printf("Warning: Failed to invalidate cache pattern %s: %v", pattern, err)
	}
}

// InvalidateReferenceCaches drops every cached reference list. Intended for
// maintenance after bulk data loads.
func (s *CacheInvalidationService) InvalidateReferenceCaches(ctx context.Context) error {
	patterns := []string{
		"treatment:*",
		"treatments:list:*",
		"location:*",
		"locations:list*",
		"http:cache:*",
	}

	for _, pattern := range patterns {
		if err := s.cache.DeletePattern(ctx, pattern); err != nil {
			return fmt.Errorf("failed to invalidate pattern %s: %w", pattern, err)
		}
		log.Printf("Invalidated cache pattern: %s", pattern)
	}

	return nil
}
