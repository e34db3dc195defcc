package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/cppla/artcopy/models"
)

func seedContent(t *testing.T, db *gorm.DB, concept string, views, copies int64) models.GeneratedContent {
	t.Helper()
	c := models.GeneratedContent{
		Concept:            concept,
		ImagePrompts:       []string{"p"},
		ListingTitles:      []string{"t"},
		ListingTags:        []string{"tag"},
		ListingDescription: "d",
		SocialCaption:      "s",
		ViewCount:          views,
		CopyCount:          copies,
	}
	require.NoError(t, db.Create(&c).Error)
	return c
}

func TestStats_EmptyStore(t *testing.T) {
	_, db := newContentService(t)
	a := NewAnalyticsService(db)

	stats, err := a.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Overview{}, stats.Overview)
	assert.NotNil(t, stats.TopViewed)
	assert.Empty(t, stats.TopViewed)
	assert.NotNil(t, stats.TopCopied)
	assert.Empty(t, stats.TopCopied)
	assert.NotNil(t, stats.RecentActivity)
	assert.Empty(t, stats.RecentActivity)
	assert.NotNil(t, stats.EventSummary)
	assert.Empty(t, stats.EventSummary)
}

func TestOverview_AfterActivity(t *testing.T) {
	svc, db := newContentService(t)
	ctx := context.Background()

	first, err := svc.Generate(ctx, "alpha", testClient)
	require.NoError(t, err)
	_, err = svc.Generate(ctx, "alpha", testClient)
	require.NoError(t, err)
	_, err = svc.Generate(ctx, "beta", testClient)
	require.NoError(t, err)
	_, err = svc.TrackView(ctx, first.ID, testClient)
	require.NoError(t, err)
	require.NoError(t, svc.TrackCopy(ctx, first.ID, "listing_tags", testClient))
	require.NoError(t, svc.TrackCopy(ctx, first.ID, "listing_tags", testClient))

	o, err := NewAnalyticsService(db).Overview(ctx)
	require.NoError(t, err)
	assert.Equal(t, Overview{TotalGenerations: 3, TotalConcepts: 2, TotalViews: 1, TotalCopies: 2}, o)

	summary, err := NewAnalyticsService(db).EventSummary(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"generate": 3, "view": 1, "copy": 2}, summary)
}

func TestTopViewed_TiesGoToOlderRow(t *testing.T) {
	_, db := newContentService(t)
	a := NewAnalyticsService(db)

	older := seedContent(t, db, "older", 5, 0)
	newer := seedContent(t, db, "newer", 5, 0)
	top := seedContent(t, db, "top", 9, 0)
	seedContent(t, db, "cold", 0, 0)

	rows, err := a.TopViewed(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []uint{top.ID, older.ID, newer.ID}, []uint{rows[0].ID, rows[1].ID, rows[2].ID})
	assert.EqualValues(t, 9, rows[0].ViewCount)
}

func TestTopCopied_Order(t *testing.T) {
	_, db := newContentService(t)
	a := NewAnalyticsService(db)

	low := seedContent(t, db, "low", 0, 1)
	high := seedContent(t, db, "high", 0, 4)

	rows, err := a.TopCopied(context.Background(), APITopN)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, high.ID, rows[0].ID)
	assert.Equal(t, low.ID, rows[1].ID)
}

func TestEventSummary_StatsWindow(t *testing.T) {
	_, db := newContentService(t)
	a := NewAnalyticsService(db)
	now := time.Date(2025, 6, 30, 12, 0, 0, 0, time.UTC)
	a.now = func() time.Time { return now }

	events := []models.AnalyticsEvent{
		{EventType: models.EventView, CreatedAt: now.Add(-40 * 24 * time.Hour)},
		{EventType: models.EventView, CreatedAt: now.Add(-2 * time.Hour)},
		{EventType: models.EventCopy, CreatedAt: now.Add(-29 * 24 * time.Hour)},
		{EventType: models.EventGenerate, CreatedAt: now.Add(-31 * 24 * time.Hour)},
	}
	require.NoError(t, db.Create(&events).Error)

	stats, err := a.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"view": 1, "copy": 1}, stats.EventSummary)

	dashboard, err := a.Dashboard(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"view": 2, "copy": 1, "generate": 1}, dashboard.EventSummary)
}

func TestDashboard_RecentEventsCarryConcept(t *testing.T) {
	svc, db := newContentService(t)
	ctx := context.Background()

	content, err := svc.Generate(ctx, "golden hour", testClient)
	require.NoError(t, err)
	_, err = svc.TrackView(ctx, content.ID, testClient)
	require.NoError(t, err)

	d, err := NewAnalyticsService(db).Dashboard(ctx)
	require.NoError(t, err)
	require.Len(t, d.RecentEvents, 2)
	assert.Equal(t, models.EventView, d.RecentEvents[0].EventType)
	for _, e := range d.RecentEvents {
		assert.Equal(t, "golden hour", e.Concept)
	}
	require.Len(t, d.TopConcepts, 1)
	assert.Equal(t, "golden hour", d.TopConcepts[0].Text)
	assert.EqualValues(t, 1, d.TopConcepts[0].TotalViews)
}

func TestRecentContent_NewestFirst(t *testing.T) {
	_, db := newContentService(t)
	a := NewAnalyticsService(db)

	var ids []uint
	for i := 0; i < APIRecentContent+2; i++ {
		ids = append(ids, seedContent(t, db, "c", 0, 0).ID)
	}

	rows, err := a.RecentContent(context.Background(), APIRecentContent)
	require.NoError(t, err)
	require.Len(t, rows, APIRecentContent)
	assert.Equal(t, ids[len(ids)-1], rows[0].ID)
}
