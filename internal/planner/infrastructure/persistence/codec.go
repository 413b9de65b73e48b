package persistence

import (
	"encoding/json"
	"fmt"

	"github.com/studyflowhq/studyflow/internal/planner/domain"
)

// Plan payload columns are stored as JSON documents. The codec keeps both
// drivers on the same wire shape as the HTTP boundary.

func encodeSessions(sessions []domain.Session) ([]byte, error) {
	if sessions == nil {
		sessions = []domain.Session{}
	}
	return json.Marshal(sessions)
}

func decodeSessions(raw []byte) ([]domain.Session, error) {
	sessions := []domain.Session{}
	if len(raw) == 0 {
		return sessions, nil
	}
	if err := json.Unmarshal(raw, &sessions); err != nil {
		return nil, fmt.Errorf("decode sessions: %w", err)
	}
	return sessions, nil
}

func encodeUnscheduled(tasks []domain.UnscheduledTask) ([]byte, error) {
	if tasks == nil {
		tasks = []domain.UnscheduledTask{}
	}
	return json.Marshal(tasks)
}

func decodeUnscheduled(raw []byte) ([]domain.UnscheduledTask, error) {
	tasks := []domain.UnscheduledTask{}
	if len(raw) == 0 {
		return tasks, nil
	}
	if err := json.Unmarshal(raw, &tasks); err != nil {
		return nil, fmt.Errorf("decode unscheduled tasks: %w", err)
	}
	return tasks, nil
}

func encodeSuggestions(suggestions []domain.Suggestion) ([]byte, error) {
	if suggestions == nil {
		suggestions = []domain.Suggestion{}
	}
	return json.Marshal(suggestions)
}

func decodeSuggestions(raw []byte) ([]domain.Suggestion, error) {
	suggestions := []domain.Suggestion{}
	if len(raw) == 0 {
		return suggestions, nil
	}
	if err := json.Unmarshal(raw, &suggestions); err != nil {
		return nil, fmt.Errorf("decode suggestions: %w", err)
	}
	return suggestions, nil
}

func encodeStrings(values []string) ([]byte, error) {
	if values == nil {
		values = []string{}
	}
	return json.Marshal(values)
}

func decodeStrings(raw []byte) ([]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var values []string
	if err := json.Unmarshal(raw, &values); err != nil {
		return nil, fmt.Errorf("decode string list: %w", err)
	}
	return values, nil
}

func encodeMilestones(milestones []domain.Milestone) ([]byte, error) {
	if milestones == nil {
		milestones = []domain.Milestone{}
	}
	return json.Marshal(milestones)
}

func decodeMilestones(raw []byte) ([]domain.Milestone, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var milestones []domain.Milestone
	if err := json.Unmarshal(raw, &milestones); err != nil {
		return nil, fmt.Errorf("decode milestones: %w", err)
	}
	return milestones, nil
}
