package search

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/platefinder/backend/internal/domain/entities"
	"github.com/platefinder/backend/internal/domain/repositories"
	tsclient "github.com/platefinder/backend/internal/infrastructure/clients/typesense"
	"github.com/typesense/typesense-go/v2/typesense/api"
	"github.com/typesense/typesense-go/v2/typesense/api/pointer"
)

const maxPoolSize = 250

// TypesenseAdapter stores fetched restaurant candidates per session so
// soft-filter changes can be answered locally instead of re-calling the
// places provider.
type TypesenseAdapter struct {
	client *tsclient.Client
}

// Ensure TypesenseAdapter implements CandidateIndexRepository
var _ repositories.CandidateIndexRepository = (*TypesenseAdapter)(nil)

// NewTypesenseAdapter creates a new Typesense candidate index adapter
func NewTypesenseAdapter(client *tsclient.Client) *TypesenseAdapter {
	return &TypesenseAdapter{client: client}
}

// InitSchema ensures the candidates collection exists
func (a *TypesenseAdapter) InitSchema(ctx context.Context) error {
	return a.client.InitSchema(ctx)
}

// IndexBatch stores a fetched candidate pool under a session. Document IDs are
// session-scoped so pools from different sessions never collide.
func (a *TypesenseAdapter) IndexBatch(ctx context.Context, sessionID string, restaurants []*entities.Restaurant) error {
	for i, r := range restaurants {
		if i >= maxPoolSize {
			break
		}
		if err := a.client.IndexCandidate(ctx, buildDocument(sessionID, i, r)); err != nil {
			return fmt.Errorf("failed to index candidate %s: %w", r.ID, err)
		}
	}
	return nil
}

// Filter returns the session's candidates surviving the given filters, in the
// order the provider returned them.
func (a *TypesenseAdapter) Filter(ctx context.Context, sessionID string, filters entities.FinalFilters, limit int) ([]*entities.Restaurant, error) {
	if limit <= 0 || limit > maxPoolSize {
		limit = maxPoolSize
	}

	searchParams := &api.SearchCollectionParams{
		Q:        pointer.String("*"),
		QueryBy:  pointer.String("name"),
		FilterBy: pointer.String(buildFilterBy(sessionID, filters)),
		SortBy:   pointer.String("position:asc"),
		PerPage:  pointer.Int(limit),
	}

	result, err := a.client.Client().Collection(tsclient.CandidatesCollection).Documents().Search(ctx, searchParams)
	if err != nil {
		return nil, fmt.Errorf("failed to filter candidates: %w", err)
	}

	restaurants := []*entities.Restaurant{}
	if result.Hits == nil {
		return restaurants, nil
	}
	for _, hit := range *result.Hits {
		if hit.Document == nil {
			continue
		}
		restaurants = append(restaurants, parseDocument(*hit.Document))
	}
	return restaurants, nil
}

// Count returns how many of the session's candidates survive the filters
func (a *TypesenseAdapter) Count(ctx context.Context, sessionID string, filters entities.FinalFilters) (int, error) {
	searchParams := &api.SearchCollectionParams{
		Q:        pointer.String("*"),
		QueryBy:  pointer.String("name"),
		FilterBy: pointer.String(buildFilterBy(sessionID, filters)),
		PerPage:  pointer.Int(0),
	}

	result, err := a.client.Client().Collection(tsclient.CandidatesCollection).Documents().Search(ctx, searchParams)
	if err != nil {
		return 0, fmt.Errorf("failed to count candidates: %w", err)
	}
	if result.Found == nil {
		return 0, nil
	}
	return *result.Found, nil
}

// Clear drops a session's candidate pool
func (a *TypesenseAdapter) Clear(ctx context.Context, sessionID string) error {
	filterBy := fmt.Sprintf("session_id:=%s", sessionID)
	_, err := a.client.Client().Collection(tsclient.CandidatesCollection).Documents().Delete(ctx, &api.DeleteDocumentsParams{
		FilterBy: &filterBy,
	})
	if err != nil {
		return fmt.Errorf("failed to clear candidate pool: %w", err)
	}
	return nil
}

// buildFilterBy translates the relaxable filter set into a Typesense filter
// expression scoped to the session.
func buildFilterBy(sessionID string, filters entities.FinalFilters) string {
	clauses := []string{fmt.Sprintf("session_id:=%s", sessionID)}

	if filters.OpenState != nil {
		if *filters.OpenState {
			clauses = append(clauses, "open:=open")
		} else {
			clauses = append(clauses, "open:=closed")
		}
	}
	// Opening-hours windows cannot be evaluated against the index; the best
	// local approximation is excluding candidates known to be closed.
	if filters.OpenAt != nil || filters.OpenBetween != nil {
		clauses = append(clauses, "open:!=closed")
	}
	if filters.Kosher != nil && *filters.Kosher {
		clauses = append(clauses, "kosher:=true")
	}
	if filters.GlutenFree != nil && *filters.GlutenFree {
		clauses = append(clauses, "gluten_free:=true")
	}
	if filters.MinRatingBucket != nil {
		clauses = append(clauses, fmt.Sprintf("rating:>=%g", *filters.MinRatingBucket))
	}

	return strings.Join(clauses, " && ")
}

func buildDocument(sessionID string, position int, r *entities.Restaurant) map[string]interface{} {
	document := map[string]interface{}{
		"id":          sessionID + ":" + r.ID,
		"session_id":  sessionID,
		"name":        r.Name,
		"address":     r.Address,
		"location":    []float64{r.Location.Latitude, r.Location.Longitude},
		"open":        string(r.Open),
		"kosher":      r.Kosher,
		"gluten_free": r.GlutenFree,
		"position":    position,
		"fetched_at":  r.FetchedAt.Unix(),
	}

	if r.Rating != nil {
		document["rating"] = *r.Rating
	}
	if r.ReviewCount != nil {
		document["review_count"] = *r.ReviewCount
	}
	if r.PriceLevel != nil {
		document["price_level"] = *r.PriceLevel
	}
	if len(r.CuisineKeys) > 0 {
		document["cuisine_keys"] = r.CuisineKeys
	}
	if r.CuisineScore != nil {
		document["cuisine_score"] = *r.CuisineScore
	}
	if len(r.Tags) > 0 {
		document["tags"] = r.Tags
	}

	return document
}

func parseDocument(doc map[string]interface{}) *entities.Restaurant {
	r := &entities.Restaurant{Open: entities.OpenStatusUnknown}

	if id, ok := doc["id"].(string); ok {
		// Strip the session scope prefix back off.
		if idx := strings.Index(id, ":"); idx >= 0 {
			r.ID = id[idx+1:]
		} else {
			r.ID = id
		}
	}
	if name, ok := doc["name"].(string); ok {
		r.Name = name
	}
	if address, ok := doc["address"].(string); ok {
		r.Address = address
	}
	if loc, ok := doc["location"].([]interface{}); ok && len(loc) == 2 {
		if lat, ok := loc[0].(float64); ok {
			r.Location.Latitude = lat
		}
		if lon, ok := loc[1].(float64); ok {
			r.Location.Longitude = lon
		}
	}
	if open, ok := doc["open"].(string); ok {
		r.Open = entities.OpenStatus(open)
	}
	if rating, ok := doc["rating"].(float64); ok {
		r.Rating = &rating
	}
	if reviews, ok := doc["review_count"].(float64); ok {
		count := int(reviews)
		r.ReviewCount = &count
	}
	if price, ok := doc["price_level"].(float64); ok {
		level := int(price)
		r.PriceLevel = &level
	}
	if keys, ok := doc["cuisine_keys"].([]interface{}); ok {
		for _, k := range keys {
			if key, ok := k.(string); ok {
				r.CuisineKeys = append(r.CuisineKeys, key)
			}
		}
	}
	if score, ok := doc["cuisine_score"].(float64); ok {
		r.CuisineScore = &score
	}
	if kosher, ok := doc["kosher"].(bool); ok {
		r.Kosher = kosher
	}
	if glutenFree, ok := doc["gluten_free"].(bool); ok {
		r.GlutenFree = glutenFree
	}
	if tags, ok := doc["tags"].([]interface{}); ok {
		for _, t := range tags {
			if tag, ok := t.(string); ok {
				r.Tags = append(r.Tags, tag)
			}
		}
	}
	if fetchedAt, ok := doc["fetched_at"].(float64); ok {
		r.FetchedAt = time.Unix(int64(fetchedAt), 0)
	}

	return r
}
