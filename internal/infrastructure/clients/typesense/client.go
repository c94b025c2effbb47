package typesense

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/platefinder/backend/pkg/config"
	"github.com/platefinder/backend/pkg/retry"
	"github.com/typesense/typesense-go/v2/typesense"
	"github.com/typesense/typesense-go/v2/typesense/api"
	"github.com/typesense/typesense-go/v2/typesense/api/pointer"
)

const (
	CandidatesCollection = "restaurant_candidates"
)

// Client represents a Typesense client
type Client struct {
	client *typesense.Client
}

// NewClient creates a new Typesense client with exponential backoff retry
func NewClient(cfg *config.TypesenseConfig) (*Client, error) {
	client := typesense.NewClient(
		typesense.WithServer(cfg.URL),
		typesense.WithAPIKey(cfg.APIKey),
		typesense.WithConnectionTimeout(5*time.Second),
	)

	// Test connection with retry
	retryConfig := retry.DefaultConfig()
	err := retry.DoWithLog(
		context.Background(),
		retryConfig,
		"Typesense",
		func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_, err := client.Health(ctx, 2*time.Second)
			return err
		},
		func(attempt int, err error, nextDelay time.Duration) {
			log.Printf("Typesense connection attempt %d failed: %v. Retrying in %v...", attempt, err, nextDelay)
		},
	)

	if err != nil {
		return nil, fmt.Errorf("failed to connect to Typesense after retries: %w", err)
	}

	log.Println("Successfully connected to Typesense")
	return &Client{client: client}, nil
}

// Client returns the underlying Typesense client
func (c *Client) Client() *typesense.Client {
	return c.client
}

// InitSchema ensures the restaurant candidates collection exists
func (c *Client) InitSchema(ctx context.Context) error {
	collections, err := c.client.Collections().Retrieve(ctx)
	if err != nil {
		return fmt.Errorf("failed to retrieve collections: %w", err)
	}

	for _, col := range collections {
		if col.Name == CandidatesCollection {
			log.Println("Typesense collection 'restaurant_candidates' already exists")
			return nil
		}
	}

	schema := &api.CollectionSchema{
		Name: CandidatesCollection,
		Fields: []api.Field{
			{
				Name: "id",
				Type: "string",
			},
			{
				Name:  "session_id",
				Type:  "string",
				Facet: pointer.True(),
			},
			{
				Name: "name",
				Type: "string",
			},
			{
				Name:     "address",
				Type:     "string",
				Optional: pointer.True(),
			},
			{
				Name: "location",
				Type: "geopoint",
			},
			{
				Name:     "rating",
				Type:     "float",
				Facet:    pointer.True(),
				Optional: pointer.True(),
			},
			{
				Name:     "review_count",
				Type:     "int32",
				Optional: pointer.True(),
			},
			{
				Name:     "price_level",
				Type:     "int32",
				Facet:    pointer.True(),
				Optional: pointer.True(),
			},
			{
				Name:  "open",
				Type:  "string",
				Facet: pointer.True(),
			},
			{
				Name:     "cuisine_keys",
				Type:     "string[]",
				Facet:    pointer.True(),
				Optional: pointer.True(),
			},
			{
				Name:     "cuisine_score",
				Type:     "float",
				Optional: pointer.True(),
			},
			{
				Name:  "kosher",
				Type:  "bool",
				Facet: pointer.True(),
			},
			{
				Name:  "gluten_free",
				Type:  "bool",
				Facet: pointer.True(),
			},
			{
				Name:     "tags",
				Type:     "string[]",
				Optional: pointer.True(),
			},
			{
				Name: "position",
				Type: "int32",
			},
			{
				Name: "fetched_at",
				Type: "int64",
			},
		},
		DefaultSortingField: pointer.String("fetched_at"),
	}

	_, err = c.client.Collections().Create(ctx, schema)
	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	log.Println("Created Typesense collection 'restaurant_candidates'")
	return nil
}

// IndexCandidate indexes one candidate document
func (c *Client) IndexCandidate(ctx context.Context, document map[string]interface{}) error {
	_, err := c.client.Collection(CandidatesCollection).Documents().Upsert(ctx, document)
	return err
}
