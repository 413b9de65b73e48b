package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/studyflowhq/studyflow/internal/planner/domain"
)

func TestEffectiveSettings_NoFeedback(t *testing.T) {
	settings := domain.DefaultSettings(uuid.New())
	assert.Equal(t, settings, EffectiveSettings(settings, nil))
}

func TestEffectiveSettings_TooDenseWidensBuffer(t *testing.T) {
	settings := domain.DefaultSettings(uuid.New())
	settings.BufferPercent = 0.15

	tuned := EffectiveSettings(settings, []domain.Feedback{{Label: domain.FeedbackTooDense}})

	assert.InDelta(t, 0.25, tuned.BufferPercent, 1e-9)
	// The input row stays as stored; the adjustment is per-rebuild only.
	assert.InDelta(t, 0.15, settings.BufferPercent, 1e-9)
}

func TestEffectiveSettings_BufferCaps(t *testing.T) {
	settings := domain.DefaultSettings(uuid.New())
	settings.BufferPercent = 0.45
	tuned := EffectiveSettings(settings, []domain.Feedback{{Label: domain.FeedbackTooDense}})
	assert.InDelta(t, 0.5, tuned.BufferPercent, 1e-9)

	settings.BufferPercent = 0.07
	tuned = EffectiveSettings(settings, []domain.Feedback{{Label: domain.FeedbackTooEasy}})
	assert.InDelta(t, 0.05, tuned.BufferPercent, 1e-9)
}

func TestEffectiveSettings_NeedMoreTimeRaisesLimit(t *testing.T) {
	settings := domain.DefaultSettings(uuid.New())
	settings.DailyLimitMinutes = 180
	tuned := EffectiveSettings(settings, []domain.Feedback{{Label: domain.FeedbackNeedMoreTime}})
	assert.Equal(t, 210, tuned.DailyLimitMinutes)

	settings.DailyLimitMinutes = 590
	tuned = EffectiveSettings(settings, []domain.Feedback{{Label: domain.FeedbackNeedMoreTime}})
	assert.Equal(t, 600, tuned.DailyLimitMinutes)
}

func TestEffectiveSettings_OnlyLatestApplies(t *testing.T) {
	settings := domain.DefaultSettings(uuid.New())
	settings.BufferPercent = 0.15
	settings.DailyLimitMinutes = 180

	tuned := EffectiveSettings(settings, []domain.Feedback{
		{Label: domain.FeedbackTooDense},
		{Label: domain.FeedbackNeedMoreTime},
	})

	assert.Equal(t, 210, tuned.DailyLimitMinutes)
	assert.InDelta(t, 0.15, tuned.BufferPercent, 1e-9)
}

func TestEffectiveSettings_UnknownLabelIsNoop(t *testing.T) {
	settings := domain.DefaultSettings(uuid.New())
	tuned := EffectiveSettings(settings, []domain.Feedback{{Label: domain.FeedbackEveningFocus}})
	assert.Equal(t, settings, tuned)
}
