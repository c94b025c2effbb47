package services

import (
	"testing"

	"github.com/platefinder/backend/internal/domain/entities"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRequeryService() *RequeryService {
	return NewRequeryService(RequeryConfig{
		LocationDriftMeters: 500,
		RadiusGrowthRatio:   0.5,
		PoolFloor:           5,
	})
}

func baseContext() entities.SearchContext {
	radius := 2000.0
	open := false
	return entities.SearchContext{
		Query:        "sushi near me",
		Route:        entities.RouteNearby,
		UserLocation: &entities.Location{Latitude: 32.0853, Longitude: 34.7818},
		RadiusMeters: &radius,
		OpenNow:      &open,
	}
}

func TestRequery_FirstRequest(t *testing.T) {
	svc := newRequeryService()

	d := svc.Evaluate(nil, baseContext(), nil)

	assert.True(t, d.DoProvider)
	assert.Equal(t, RequeryReasonFirstRequest, d.Reason)
}

func TestRequery_QueryChanged(t *testing.T) {
	svc := newRequeryService()
	prev := baseContext()
	next := baseContext()
	next.Query = "ramen near me"

	d := svc.Evaluate(&prev, next, &entities.PoolStats{AfterSoftFilters: 20})

	assert.True(t, d.DoProvider)
	assert.Equal(t, RequeryReasonQueryChanged, d.Reason)
}

func TestRequery_RouteChanged(t *testing.T) {
	svc := newRequeryService()
	prev := baseContext()
	next := baseContext()
	next.Route = entities.RouteTextSearch

	d := svc.Evaluate(&prev, next, &entities.PoolStats{AfterSoftFilters: 20})

	assert.True(t, d.DoProvider)
	assert.Equal(t, RequeryReasonRouteChanged, d.Reason)
}

func TestRequery_LocationAnchorChanged(t *testing.T) {
	svc := newRequeryService()

	t.Run("city text changed", func(t *testing.T) {
		prev := baseContext()
		next := baseContext()
		next.CityText = "Haifa"

		d := svc.Evaluate(&prev, next, &entities.PoolStats{AfterSoftFilters: 20})
		assert.True(t, d.DoProvider)
		assert.Equal(t, RequeryReasonLocation, d.Reason)
	})

	t.Run("coordinates drifted beyond threshold", func(t *testing.T) {
		prev := baseContext()
		next := baseContext()
		// ~1.1km north of the previous anchor.
		next.UserLocation = &entities.Location{Latitude: 32.0953, Longitude: 34.7818}

		d := svc.Evaluate(&prev, next, &entities.PoolStats{AfterSoftFilters: 20})
		assert.True(t, d.DoProvider)
		assert.Equal(t, RequeryReasonLocation, d.Reason)
	})

	t.Run("small drift ignored", func(t *testing.T) {
		prev := baseContext()
		next := baseContext()
		// ~110m, below the 500m threshold.
		next.UserLocation = &entities.Location{Latitude: 32.0863, Longitude: 34.7818}

		d := svc.Evaluate(&prev, next, &entities.PoolStats{AfterSoftFilters: 20})
		assert.False(t, d.DoProvider)
	})
}

func TestRequery_RadiusGrewSignificantly(t *testing.T) {
	svc := newRequeryService()
	prev := baseContext()
	next := baseContext()
	bigger := 3500.0 // +75% over 2000m
	next.RadiusMeters = &bigger

	d := svc.Evaluate(&prev, next, &entities.PoolStats{AfterSoftFilters: 20})

	assert.True(t, d.DoProvider)
	assert.Equal(t, RequeryReasonRadius, d.Reason)
}

func TestRequery_RadiusSmallGrowthIgnored(t *testing.T) {
	svc := newRequeryService()
	prev := baseContext()
	next := baseContext()
	slightly := 2500.0 // +25%
	next.RadiusMeters = &slightly

	d := svc.Evaluate(&prev, next, &entities.PoolStats{AfterSoftFilters: 20})

	assert.False(t, d.DoProvider)
	assert.Equal(t, RequeryReasonNoChanges, d.Reason)
}

func TestRequery_PoolExhausted(t *testing.T) {
	svc := newRequeryService()

	t.Run("zero pool", func(t *testing.T) {
		prev := baseContext()
		next := baseContext()
		open := true
		next.OpenNow = &open // only a soft filter changed

		d := svc.Evaluate(&prev, next, &entities.PoolStats{AfterSoftFilters: 0})
		assert.True(t, d.DoProvider)
		assert.Equal(t, RequeryReasonPoolExhausted, d.Reason)
	})

	t.Run("pool at floor with no changes at all", func(t *testing.T) {
		prev := baseContext()
		next := baseContext()

		d := svc.Evaluate(&prev, next, &entities.PoolStats{AfterSoftFilters: 5})
		assert.True(t, d.DoProvider)
		assert.Equal(t, RequeryReasonPoolExhausted, d.Reason)
	})
}

func TestRequery_SoftFiltersOnly(t *testing.T) {
	svc := newRequeryService()
	prev := baseContext()
	next := baseContext()
	open := true
	next.OpenNow = &open
	kosher := true
	next.Kosher = &kosher

	d := svc.Evaluate(&prev, next, &entities.PoolStats{AfterSoftFilters: 20})

	assert.False(t, d.DoProvider)
	assert.Equal(t, RequeryReasonSoftFilters, d.Reason)
	require.NotNil(t, d.Changeset)
	assert.ElementsMatch(t, []string{"openNow", "isKosher"}, d.Changeset.SoftFilters)
}

func TestRequery_NoChanges(t *testing.T) {
	svc := newRequeryService()
	prev := baseContext()
	next := baseContext()

	d := svc.Evaluate(&prev, next, &entities.PoolStats{AfterSoftFilters: 20})

	assert.False(t, d.DoProvider)
	assert.Equal(t, RequeryReasonNoChanges, d.Reason)
	assert.Nil(t, d.Changeset)
}
