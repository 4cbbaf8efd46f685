package storage

import (
	"context"
	"testing"
	"time"

	"travel-planner-server/models"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestGorm(t *testing.T) *GormStore {
	t.Helper()
	store, err := OpenGorm(sqlite.Open("file:" + t.Name() + "?mode=memory&cache=shared"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestGormSearchMatchesWildcardsLiterally(t *testing.T) {
	store := openTestGorm(t)
	ctx := context.Background()
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	for _, title := range []string{"100% Rome", "Paris_by_night", "Lyon"} {
		plan := &models.TravelPlan{UserID: "alice", Title: title, StartDate: start, EndDate: start.AddDate(0, 0, 3)}
		require.NoError(t, store.CreatePlan(ctx, plan))
	}

	titles := func(search string) []string {
		plans, total, err := store.ListPlans(ctx, "alice", PlanQuery{Page: 1, Limit: 10, Search: search})
		require.NoError(t, err)
		assert.Equal(t, int64(len(plans)), total)
		out := []string{}
		for _, p := range plans {
			out = append(out, p.Title)
		}
		return out
	}

	assert.Equal(t, []string{"100% Rome"}, titles("%"))
	assert.Equal(t, []string{"Paris_by_night"}, titles("_"))
	assert.Equal(t, []string{"Paris_by_night"}, titles("S_BY"))
	assert.Empty(t, titles("s%b"))
	assert.Len(t, titles(""), 3)
}
