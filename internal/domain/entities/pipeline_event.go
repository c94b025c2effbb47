package entities

import (
	"crypto/rand"
	"encoding/hex"
	"time"
)

// PipelineStage identifies the pipeline stage an event was emitted from
type PipelineStage string

const (
	StageDedup      PipelineStage = "dedup"
	StageClassify   PipelineStage = "classify"
	StageRequery    PipelineStage = "requery"
	StageFetch      PipelineStage = "fetch"
	StageRelaxation PipelineStage = "relaxation"
	StageWeights    PipelineStage = "weights"
	StageRanking    PipelineStage = "ranking"
	StageDone       PipelineStage = "done"
)

// PipelineEventType represents the type of pipeline event
type PipelineEventType string

const (
	PipelineEventStageStarted   PipelineEventType = "stage_started"
	PipelineEventStageCompleted PipelineEventType = "stage_completed"
	PipelineEventRelaxStep      PipelineEventType = "relax_step"
	PipelineEventJobFailed      PipelineEventType = "job_failed"
	PipelineEventJobCompleted   PipelineEventType = "job_completed"
)

// PipelineEvent represents a real-time update emitted while a search job runs
type PipelineEvent struct {
	ID        string                 `json:"id"`
	JobID     string                 `json:"job_id"`
	SessionID string                 `json:"session_id,omitempty"`
	Stage     PipelineStage          `json:"stage"`
	EventType PipelineEventType      `json:"event_type"`
	Timestamp time.Time              `json:"timestamp"`
	Payload   map[string]interface{} `json:"payload,omitempty"`
}

// NewPipelineEvent creates a new pipeline event
func NewPipelineEvent(jobID, sessionID string, stage PipelineStage, eventType PipelineEventType, payload map[string]interface{}) *PipelineEvent {
	return &PipelineEvent{
		ID:        generateEventID(),
		JobID:     jobID,
		SessionID: sessionID,
		Stage:     stage,
		EventType: eventType,
		Timestamp: time.Now(),
		Payload:   payload,
	}
}

// generateEventID generates a unique event ID
func generateEventID() string {
	return time.Now().Format("20060102150405") + "-" + randomString(8)
}

// randomString generates a random string of specified length
func randomString(length int) string {
	bytes := make([]byte, length/2+1)
	if _, err := rand.Read(bytes); err != nil {
		// Fallback to timestamp-based if crypto/rand fails
		return time.Now().Format("150405.000")
	}
	return hex.EncodeToString(bytes)[:length]
}
