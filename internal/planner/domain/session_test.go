package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestISOTime_NormalizesToUTCSeconds(t *testing.T) {
	offset := time.FixedZone("UTC+7", 7*3600)
	local := time.Date(2025, 3, 15, 8, 0, 0, 123456789, offset)

	iso := NewISOTime(local)
	assert.Equal(t, "2025-03-15T01:00:00Z", iso.String())
}

func TestISOTime_UnmarshalAcceptsOffsets(t *testing.T) {
	var iso ISOTime
	require.NoError(t, json.Unmarshal([]byte(`"2025-03-15T08:00:00+07:00"`), &iso))
	assert.Equal(t, "2025-03-15T01:00:00Z", iso.String())

	raw, err := json.Marshal(iso)
	require.NoError(t, err)
	assert.Equal(t, `"2025-03-15T01:00:00Z"`, string(raw))
}

func TestISOTime_UnmarshalRejectsGarbage(t *testing.T) {
	var iso ISOTime
	assert.Error(t, json.Unmarshal([]byte(`"not-a-time"`), &iso))
}

func TestValidStatus(t *testing.T) {
	assert.True(t, ValidStatus(StatusPending))
	assert.True(t, ValidStatus(StatusDone))
	assert.True(t, ValidStatus(StatusSkipped))
	assert.False(t, ValidStatus(SessionStatus("paused")))
}

func TestPlanRecord_FindSession(t *testing.T) {
	plan := &PlanRecord{Sessions: []Session{{ID: "a"}, {ID: "b"}}}
	assert.Equal(t, 1, plan.FindSession("b"))
	assert.Equal(t, -1, plan.FindSession("missing"))
}

func TestPlanRecord_FocusSessions(t *testing.T) {
	plan := &PlanRecord{Sessions: []Session{
		{ID: "a", Source: SourceTask},
		{ID: "b", Source: SourceBreak},
		{ID: "c", Source: SourceHabit},
	}}

	focus := plan.FocusSessions()
	require.Len(t, focus, 2)
	assert.Equal(t, "a", focus[0].ID)
	assert.Equal(t, "c", focus[1].ID)
}
