package domain

import (
	"time"

	"github.com/google/uuid"
)

// FeedbackLabel classifies a post-plan note.
type FeedbackLabel string

const (
	FeedbackTooDense     FeedbackLabel = "too_dense"
	FeedbackTooEasy      FeedbackLabel = "too_easy"
	FeedbackNeedMoreTime FeedbackLabel = "need_more_time"
	FeedbackEveningFocus FeedbackLabel = "evening_focus"
	FeedbackCustom       FeedbackLabel = "custom"
)

// Feedback is a labelled note the owner left about a generated plan.
type Feedback struct {
	ID          uuid.UUID
	OwnerID     uuid.UUID
	Label       FeedbackLabel
	Note        string
	PlanVersion int
	SubmittedAt time.Time
}
