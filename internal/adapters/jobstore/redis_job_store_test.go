package jobstore

import (
	"testing"
	"time"

	"github.com/platefinder/backend/internal/domain/entities"
	"github.com/stretchr/testify/assert"
)

func TestEligible_TerminalJobWithinWindow(t *testing.T) {
	now := time.Now()
	job := &entities.SearchJob{
		Status:    entities.JobStatusDoneSuccess,
		UpdatedAt: now.Add(-2 * time.Minute),
	}

	assert.True(t, eligible(job, 5*time.Minute, now))
}

func TestEligible_TerminalJobPastWindow(t *testing.T) {
	now := time.Now()
	job := &entities.SearchJob{
		Status:    entities.JobStatusDoneSuccess,
		UpdatedAt: now.Add(-10 * time.Minute),
	}

	assert.False(t, eligible(job, 5*time.Minute, now))
}

func TestEligible_RunningJobAlwaysHandedToDedup(t *testing.T) {
	now := time.Now()
	job := &entities.SearchJob{
		Status:    entities.JobStatusRunning,
		UpdatedAt: now.Add(-time.Hour),
	}

	// Staleness of non-terminal jobs is the dedup engine's call.
	assert.True(t, eligible(job, 5*time.Minute, now))
}

func TestEligible_FailedJobPastWindow(t *testing.T) {
	now := time.Now()
	job := &entities.SearchJob{
		Status:    entities.JobStatusDoneFailed,
		UpdatedAt: now.Add(-6 * time.Minute),
	}

	assert.False(t, eligible(job, 5*time.Minute, now))
}
