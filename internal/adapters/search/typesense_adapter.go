package search

import (
	"context"
	"fmt"

	"github.com/typesense/typesense-go/v2/typesense/api"
	"github.com/typesense/typesense-go/v2/typesense/api/pointer"

	"github.com/twilightpharmacy/booking-backend/internal/domain/entities"
	"github.com/twilightpharmacy/booking-backend/internal/domain/repositories"
	tsclient "github.com/twilightpharmacy/booking-backend/internal/infrastructure/clients/typesense"
)

// TypesenseAdapter implements treatment search using Typesense
type TypesenseAdapter struct {
	client *tsclient.Client
}

// Ensure TypesenseAdapter implements TreatmentSearchRepository
var _ repositories.TreatmentSearchRepository = (*TypesenseAdapter)(nil)

// NewTypesenseAdapter creates a new Typesense adapter
func NewTypesenseAdapter(client *tsclient.Client) *TypesenseAdapter {
	return &TypesenseAdapter{client: client}
}

// InitSchema ensures the treatments collection exists
func (a *TypesenseAdapter) InitSchema(ctx context.Context) error {
	// Check if collection exists
	_, err := a.client.Client().Collection(tsclient.TreatmentsCollection).Retrieve(ctx)
	if err == nil {
		return nil
	}

	schema := &api.CollectionSchema{
		Name: tsclient.TreatmentsCollection,
		Fields: []api.Field{
			{Name: "id", Type: "string"},
			{Name: "name", Type: "string"},
			{Name: "description", Type: "string", Optional: pointer.True()},
			{Name: "category", Type: "string", Facet: pointer.True(), Optional: pointer.True()},
			{Name: "price", Type: "float"},
			{Name: "is_active", Type: "bool"},
			{Name: "created_at", Type: "int64"},
		},
		DefaultSortingField: pointer.String("created_at"),
	}

	_, err = a.client.Client().Collections().Create(ctx, schema)
	if err != nil {
		return fmt.Errorf("failed to create typesense collection: %w", err)
	}

	return nil
}

// Index upserts treatments into the search index
func (a *TypesenseAdapter) Index(ctx context.Context, treatments []*entities.Treatment) error {
	for _, treatment := range treatments {
		document := map[string]interface{}{
			"id":          treatment.ID,
			"name":        treatment.Name,
			"description": treatment.Description,
			"category":    treatment.Category,
			"price":       treatment.Price,
			"is_active":   treatment.IsActive,
			"created_at":  treatment.CreatedAt.Unix(),
		}

		_, err := a.client.Client().Collection(tsclient.TreatmentsCollection).Documents().Upsert(ctx, document)
		if err != nil {
			return fmt.Errorf("failed to index treatment %s: %w", treatment.ID, err)
		}
	}

	return nil
}

// Search retrieves treatment IDs ranked by relevance
func (a *TypesenseAdapter) Search(ctx context.Context, query string, limit int) ([]string, error) {
	searchParams := &api.SearchCollectionParams{
		Q:        pointer.String(query),
		QueryBy:  pointer.String("name,description,category"),
		FilterBy: pointer.String("is_active:=true"),
		PerPage:  pointer.Int(limit),
	}

	result, err := a.client.Client().Collection(tsclient.TreatmentsCollection).Documents().Search(ctx, searchParams)
	if err != nil {
		return nil, fmt.Errorf("failed to search treatments: %w", err)
	}

	var ids []string
	if result.Hits == nil {
		return ids, nil
	}
	for _, hit := range *result.Hits {
		doc := *hit.Document
		if id, ok := doc["id"].(string); ok {
			ids = append(ids, id)
		}
	}

	return ids, nil
}
