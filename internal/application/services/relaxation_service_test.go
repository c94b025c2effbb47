package services

import (
	"testing"
	"time"

	"github.com/platefinder/backend/internal/domain/entities"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRelaxationService() *RelaxationService {
	return NewRelaxationService(RelaxationConfig{MinResults: 3, MaxAttempts: 4})
}

func fullFilters() entities.FinalFilters {
	open := true
	openAt := time.Date(2026, 8, 28, 20, 0, 0, 0, time.UTC)
	kosher := true
	gf := true
	rating := 4.0
	return entities.FinalFilters{
		OpenState:       &open,
		OpenAt:          &openAt,
		Kosher:          &kosher,
		GlutenFree:      &gf,
		MinRatingBucket: &rating,
	}
}

func TestRelax_SufficientCountDoesNothing(t *testing.T) {
	svc := newRelaxationService()
	filters := fullFilters()

	r := svc.RelaxIfTooFew(10, 0, filters)

	assert.False(t, r.Relaxed)
	assert.Empty(t, r.Steps)
	assert.Equal(t, filters, r.NextFilters)
}

func TestRelax_AttemptsExhausted(t *testing.T) {
	svc := newRelaxationService()

	r := svc.RelaxIfTooFew(0, 4, fullFilters())

	assert.False(t, r.Relaxed)
}

func TestRelax_ExactlyOneFieldPerCall(t *testing.T) {
	svc := newRelaxationService()
	filters := fullFilters()

	r := svc.RelaxIfTooFew(1, 0, filters)

	assert.True(t, r.Relaxed)
	require.Len(t, r.Steps, 1)
	assert.Equal(t, RelaxFieldOpenState, r.Steps[0].Field)
	assert.Nil(t, r.NextFilters.OpenState)
	// Everything else survives the first call.
	assert.NotNil(t, r.NextFilters.OpenAt)
	assert.NotNil(t, r.NextFilters.Kosher)
	assert.NotNil(t, r.NextFilters.MinRatingBucket)
	// The input is never mutated.
	assert.NotNil(t, filters.OpenState)
}

func TestRelax_FixedPriorityOrder(t *testing.T) {
	svc := newRelaxationService()
	svc.cfg.MaxAttempts = 10

	filters := fullFilters()
	var order []string
	for attempt := 0; CanRelaxFurther(filters); attempt++ {
		r := svc.RelaxIfTooFew(0, attempt, filters)
		require.True(t, r.Relaxed)
		order = append(order, r.Steps[0].Field)
		filters = r.NextFilters
	}

	assert.Equal(t, []string{
		RelaxFieldOpenState,
		RelaxFieldOpenAt,
		RelaxFieldKosher,
		RelaxFieldGlutenFree,
		RelaxFieldMinRating,
	}, order)
}

func TestRelax_OpenBetweenAfterOpenAt(t *testing.T) {
	svc := newRelaxationService()
	window := entities.OpenWindow{
		From: time.Date(2026, 8, 28, 19, 0, 0, 0, time.UTC),
		To:   time.Date(2026, 8, 28, 23, 0, 0, 0, time.UTC),
	}
	filters := entities.FinalFilters{OpenBetween: &window}

	r := svc.RelaxIfTooFew(0, 0, filters)

	require.True(t, r.Relaxed)
	assert.Equal(t, RelaxFieldOpenBetween, r.Steps[0].Field)
	assert.Nil(t, r.NextFilters.OpenBetween)
}

func TestRelax_NothingLeftToRelax(t *testing.T) {
	svc := newRelaxationService()
	empty := entities.FinalFilters{}

	require.False(t, CanRelaxFurther(empty))

	for _, count := range []int{0, 1, 100} {
		r := svc.RelaxIfTooFew(count, 0, empty)
		assert.False(t, r.Relaxed)
	}
}
