package services

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/twilightpharmacy/booking-backend/internal/domain/entities"
	"github.com/twilightpharmacy/booking-backend/internal/domain/repositories"
	apperrors "github.com/twilightpharmacy/booking-backend/pkg/errors"
)

const defaultSearchLimit = 20

// TreatmentService serves the treatment catalogue
type TreatmentService struct {
	treatmentRepo  repositories.TreatmentRepository
	pharmacistRepo repositories.PharmacistRepository
	searchRepo     repositories.TreatmentSearchRepository
}

// NewTreatmentService creates a new treatment service. searchRepo may be
// nil; search then falls back to the database.
func NewTreatmentService(
	treatmentRepo repositories.TreatmentRepository,
	pharmacistRepo repositories.PharmacistRepository,
	searchRepo repositories.TreatmentSearchRepository,
) *TreatmentService {
	return &TreatmentService{
		treatmentRepo:  treatmentRepo,
		pharmacistRepo: pharmacistRepo,
		searchRepo:     searchRepo,
	}
}

// GetTreatment retrieves a treatment by ID
func (s *TreatmentService) GetTreatment(ctx context.Context, id string) (*entities.Treatment, error) {
	return s.treatmentRepo.GetByID(ctx, id)
}

// ListTreatments retrieves active treatments, optionally filtered by category
func (s *TreatmentService) ListTreatments(ctx context.Context, category string) ([]*entities.Treatment, error) {
	return s.treatmentRepo.List(ctx, repositories.TreatmentFilter{
		Category:   category,
		ActiveOnly: true,
	})
}

// SearchTreatments searches active, in-season treatments. The search index
// is consulted first; on any index failure the database fallback serves the
// query so search never hard-fails.
func (s *TreatmentService) SearchTreatments(ctx context.Context, query string, limit int) ([]*entities.Treatment, error) {
	if query == "" {
		return nil, apperrors.NewValidationError("search query is required")
	}
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	now := time.Now()

	if s.searchRepo != nil {
		ids, err := s.searchRepo.Search(ctx, query, limit)
		if err == nil {
			treatments := make([]*entities.Treatment, 0, len(ids))
			for _, id := range ids {
				treatment, err := s.treatmentRepo.GetByID(ctx, id)
				if err != nil {
					// Index can be stale; skip records the database no
					// longer has.
					if apperrors.IsType(err, apperrors.ErrorTypeNotFound) {
						continue
					}
					return nil, err
				}
				if treatment.IsActive && treatment.InSeason(now) {
					treatments = append(treatments, treatment)
				}
			}
			return treatments, nil
		}
		log.Warn().Err(err).Str("query", query).Msg("search index unavailable, falling back to database")
	}

	results, err := s.treatmentRepo.Search(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	treatments := make([]*entities.Treatment, 0, len(results))
	for _, treatment := range results {
		if treatment.InSeason(now) {
			treatments = append(treatments, treatment)
		}
	}
	return treatments, nil
}

// LocationsForTreatment retrieves the locations offering a treatment
func (s *TreatmentService) LocationsForTreatment(ctx context.Context, treatmentID string) ([]*entities.Location, error) {
	if _, err := s.treatmentRepo.GetByID(ctx, treatmentID); err != nil {
		return nil, err
	}
	return s.treatmentRepo.LocationsFor(ctx, treatmentID)
}

// PharmacistsForTreatment retrieves active pharmacists able to deliver a
// treatment, optionally narrowed to a location
func (s *TreatmentService) PharmacistsForTreatment(ctx context.Context, treatmentID, locationID string) ([]*entities.Pharmacist, error) {
	if _, err := s.treatmentRepo.GetByID(ctx, treatmentID); err != nil {
		return nil, err
	}
	return s.pharmacistRepo.List(ctx, repositories.PharmacistFilter{
		TreatmentID: treatmentID,
		LocationID:  locationID,
		ActiveOnly:  true,
	})
}

// ReindexTreatments pushes the full active catalogue into the search index
func (s *TreatmentService) ReindexTreatments(ctx context.Context) (int, error) {
	if s.searchRepo == nil {
		return 0, apperrors.NewInternalError("search index not configured", nil)
	}

	treatments, err := s.treatmentRepo.List(ctx, repositories.TreatmentFilter{ActiveOnly: true})
	if err != nil {
		return 0, err
	}
	if err := s.searchRepo.Index(ctx, treatments); err != nil {
		return 0, apperrors.NewExternalError("failed to index treatments", err)
	}
	return len(treatments), nil
}
