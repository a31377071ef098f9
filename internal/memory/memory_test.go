package memory

import (
	"context"
	"testing"

	"github.com/rpggio/taskdesk/internal/domain/activity"
	"github.com/stretchr/testify/require"
)

func TestSlot_GetSetDelete(t *testing.T) {
	ctx := context.Background()
	slot := NewSlot()

	_, ok, err := slot.Get(ctx, "k")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, slot.Set(ctx, "k", "v1"))
	require.NoError(t, slot.Set(ctx, "k", "v2"))
	v, ok, err := slot.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "v2", v)

	require.NoError(t, slot.Delete(ctx, "k"))
	_, ok, _ = slot.Get(ctx, "k")
	require.False(t, ok)
}

func TestActivityRepository_ListNewestFirstWithFilters(t *testing.T) {
	ctx := context.Background()
	repo := NewActivityRepository()
	taskID := "t_1"

	require.NoError(t, repo.Log(ctx, &activity.ActivityEntry{ActivityType: activity.TypeTaskCreated, SubjectID: &taskID}))
	require.NoError(t, repo.Log(ctx, &activity.ActivityEntry{ActivityType: activity.TypeNoteCreated}))
	require.NoError(t, repo.Log(ctx, &activity.ActivityEntry{ActivityType: activity.TypeTaskToggled, SubjectID: &taskID}))

	all, err := repo.List(ctx, activity.ListActivityOptions{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	require.Equal(t, activity.TypeTaskToggled, all[0].ActivityType)

	forTask, err := repo.List(ctx, activity.ListActivityOptions{SubjectID: &taskID, Limit: 1})
	require.NoError(t, err)
	require.Len(t, forTask, 1)
	require.Equal(t, activity.TypeTaskToggled, forTask[0].ActivityType)

	created := activity.TypeTaskCreated
	byType, err := repo.List(ctx, activity.ListActivityOptions{ActivityType: &created})
	require.NoError(t, err)
	require.Len(t, byType, 1)
}
