package services

import (
	"github.com/studyflowhq/studyflow/internal/planner/domain"
)

// Tuning bounds applied when feedback nudges the effective settings.
const (
	maxBufferPercent  = 0.5
	minBufferPercent  = 0.05
	maxTunedDailyLimit = 600
)

// EffectiveSettings derives the settings used for the next rebuild from the
// stored settings and the owner's latest feedback. The stored row is never
// mutated; the adjustment lives only for the rebuild it tunes.
func EffectiveSettings(settings domain.Settings, feedback []domain.Feedback) domain.Settings {
	if len(feedback) == 0 {
		return settings
	}

	latest := feedback[len(feedback)-1]
	switch latest.Label {
	case domain.FeedbackTooDense:
		settings.BufferPercent += 0.10
		if settings.BufferPercent > maxBufferPercent {
			settings.BufferPercent = maxBufferPercent
		}
	case domain.FeedbackTooEasy:
		settings.BufferPercent -= 0.05
		if settings.BufferPercent < minBufferPercent {
			settings.BufferPercent = minBufferPercent
		}
	case domain.FeedbackNeedMoreTime:
		settings.DailyLimitMinutes += 30
		if settings.DailyLimitMinutes > maxTunedDailyLimit {
			settings.DailyLimitMinutes = maxTunedDailyLimit
		}
	}
	return settings
}
