package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/twilightpharmacy/booking-backend/internal/domain/providers"
	"github.com/twilightpharmacy/booking-backend/internal/domain/repositories"
)

// CacheWarmingService pre-populates the reference-data cache so the booking
// wizard's first requests never pay a cold read
type CacheWarmingService struct {
	treatmentRepo repositories.TreatmentRepository
	locationRepo  repositories.LocationRepository
	cache         providers.CacheProvider
	treatmentTTL  int
	locationTTL   int
}

// NewCacheWarmingService creates a new cache warming service
func NewCacheWarmingService(
	treatmentRepo repositories.TreatmentRepository,
	locationRepo repositories.LocationRepository,
	cache providers.CacheProvider,
	treatmentTTL, locationTTL int,
) *CacheWarmingService {
	return &CacheWarmingService{
		treatmentRepo: treatmentRepo,
		locationRepo:  locationRepo,
		cache:         cache,
		treatmentTTL:  treatmentTTL,
		locationTTL:   locationTTL,
	}
}

// WarmCache warms the cache with the active treatment catalogue and the
// location list
func (s *CacheWarmingService) WarmCache(ctx context.Context) error {
	log.Println("Starting cache warming...")

	if err := s.warmTreatments(ctx); err != nil {
		log.Printf("Failed to warm treatments: %v", err)
	}
	if err := s.warmLocations(ctx); err != nil {
		log.Printf("Failed to warm locations: %v", err)
	}

	log.Println("Cache warming completed")
	return nil
}

func (s *CacheWarmingService) warmTreatments(ctx context.Context) error {
	treatments, err := s.treatmentRepo.List(ctx, repositories.TreatmentFilter{ActiveOnly: true})
	if err != nil {
		return fmt.Errorf("failed to fetch treatments: %w", err)
	}

	for _, treatment := range treatments {
		data, err := json.Marshal(treatment)
		if err != nil {
			log.Printf("Failed to marshal treatment %s: %v", treatment.ID, err)
			continue
		}
		key := fmt.Sprintf("treatment:%s", treatment.ID)
		if err := s.cache.Set(ctx, key, data, s.treatmentTTL); err != nil {
			log.Printf("Failed to cache treatment %s: %v", treatment.ID, err)
		}
	}

	if data, err := json.Marshal(treatments); err == nil {
		key := "treatments:list::true:0:0"
		if err := s.cache.Set(ctx, key, data, s.treatmentTTL); err != nil {
			log.Printf("Failed to cache treatments list: %v", err)
		}
	}

	log.Printf("Warmed cache with %d treatments", len(treatments))
	return nil
}

func (s *CacheWarmingService) warmLocations(ctx context.Context) error {
	locations, err := s.locationRepo.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch locations: %w", err)
	}

	for _, location := range locations {
		data, err := json.Marshal(location)
		if err != nil {
			log.Printf("Failed to marshal location %s: %v", location.ID, err)
			continue
		}
		key := fmt.Sprintf("location:%s", location.ID)
		if err := s.cache.Set(ctx, key, data, s.locationTTL); err != nil {
			log.Printf("Failed to cache location %s: %v", location.ID, err)
		}
	}

	if data, err := json.Marshal(locations); err == nil {
		if err := s.cache.Set(ctx, "locations:list", data, s.locationTTL); err != nil {
			log.Printf("Failed to cache locations list: %v", err)
		}
	}

	log.Printf("Warmed cache with %d locations", len(locations))
	return nil
}

// StartPeriodicWarming starts a background goroutine that periodically
// re-warms the cache
func (s *CacheWarmingService) StartPeriodicWarming(ctx context.Context, interval time.Duration) {
	if err := s.WarmCache(ctx); err != nil {
		log.Printf("Initial cache warming failed: %v", err)
	}

	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				log.Println("Stopping cache warming service")
				return
			case <-ticker.C:
				if err := s.WarmCache(context.Background()); err != nil {
					log.Printf("Periodic cache warming failed: %v", err)
				}
			}
		}
	}()
	log.Printf("Started periodic cache warming every %v", interval)
}
