package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mattsantos541/ArcTecFox-Mono/pkg/types/common"
)

func TestPMPlan_EffectiveStartDate(t *testing.T) {
	planDate := date(2024, time.March, 1)
	assetDate := date(2024, time.January, 15)

	p := &PMPlan{StartDate: &planDate, AssetStartDate: &assetDate}
	got, ok := p.EffectiveStartDate()
	assert.True(t, ok)
	assert.Equal(t, planDate, got)

	p = &PMPlan{AssetStartDate: &assetDate}
	got, ok = p.EffectiveStartDate()
	assert.True(t, ok)
	assert.Equal(t, assetDate, got)

	p = &PMPlan{}
	_, ok = p.EffectiveStartDate()
	assert.False(t, ok)
}

func TestNewPendingSignoff(t *testing.T) {
	taskID := common.NewID()
	due := date(2024, time.June, 13)

	s := NewPendingSignoff(taskID, due, "user-7")

	assert.False(t, s.ID.IsZero())
	assert.Equal(t, taskID, s.TaskID)
	assert.Equal(t, due, s.DueDate)
	assert.Equal(t, SignoffStatusPending, s.Status)
	assert.True(t, s.IsPending())
	assert.Nil(t, s.CompletedAt)
	require.NotNil(t, s.CreatedBy)
	assert.Equal(t, common.UserID("user-7"), *s.CreatedBy)
	assert.Nil(t, s.UpdatedBy)
}

func TestNewPendingSignoff_UnknownCreator(t *testing.T) {
	s := NewPendingSignoff(common.NewID(), date(2024, time.June, 13), "")
	assert.Nil(t, s.CreatedBy)
}
