package services

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/cppla/artcopy/generator"
	"github.com/cppla/artcopy/models"
	"github.com/cppla/artcopy/testhelpers"
)

var testClient = models.ClientMeta{IPAddress: "203.0.113.7", UserAgent: "test-agent/1.0"}

func newContentService(t *testing.T) (*ContentService, *gorm.DB) {
	t.Helper()
	db := testhelpers.MemoryDB(t)
	log := zap.NewNop()
	return NewContentService(db, generator.NewWithSeed(42), NewEventRecorder(db, log), nil, log), db
}

func countRows(t *testing.T, db *gorm.DB, model interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(model).Count(&n).Error)
	return n
}

func TestNormalizeConcept(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr error
	}{
		{name: "trims whitespace", raw: "  misty forest \n", want: "misty forest"},
		{name: "empty", raw: "", wantErr: ErrEmptyConcept},
		{name: "whitespace only", raw: " \t\n ", wantErr: ErrEmptyConcept},
		{name: "at limit", raw: strings.Repeat("é", MaxConceptLength), want: strings.Repeat("é", MaxConceptLength)},
		{name: "over limit", raw: strings.Repeat("a", MaxConceptLength+1), wantErr: ErrConceptTooLong},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeConcept(tt.raw)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGenerate_CreatesConceptContentAndEvent(t *testing.T) {
	svc, db := newContentService(t)
	ctx := context.Background()

	content, err := svc.Generate(ctx, "The Moon", testClient)
	require.NoError(t, err)
	require.NotZero(t, content.ID)
	require.NotNil(t, content.ConceptID)

	assert.Len(t, content.ImagePrompts, 3)
	assert.Len(t, content.ListingTitles, 3)
	assert.Len(t, content.ListingTags, generator.TagCount)
	assert.Contains(t, content.ListingDescription, "The Moon")
	assert.Contains(t, content.SocialCaption, "The Moon")

	var concept models.Concept
	require.NoError(t, db.First(&concept, *content.ConceptID).Error)
	assert.Equal(t, "The Moon", concept.Text)
	assert.EqualValues(t, 1, concept.UsageCount)
	assert.True(t, concept.FirstUsed.Equal(concept.LastUsed))

	var stored models.GeneratedContent
	require.NoError(t, db.First(&stored, content.ID).Error)
	assert.Equal(t, []string(content.ListingTags), []string(stored.ListingTags))
	assert.Zero(t, stored.ViewCount)
	assert.Zero(t, stored.CopyCount)
	assert.Nil(t, stored.LastViewed)

	var events []models.AnalyticsEvent
	require.NoError(t, db.Find(&events).Error)
	require.Len(t, events, 1)
	ev := events[0]
	assert.Equal(t, models.EventGenerate, ev.EventType)
	assert.Equal(t, content.ID, *ev.ContentID)
	assert.Equal(t, *content.ConceptID, *ev.ConceptID)
	assert.EqualValues(t, 3, ev.EventData["prompts_count"])
	assert.EqualValues(t, 3, ev.EventData["titles_count"])
	assert.EqualValues(t, 13, ev.EventData["tags_count"])
	assert.Equal(t, testClient.IPAddress, ev.IPAddress)
	assert.Equal(t, testClient.UserAgent, ev.UserAgent)
}

func TestGenerate_SameConceptTwiceReusesConcept(t *testing.T) {
	svc, db := newContentService(t)
	ctx := context.Background()

	first, err := svc.Generate(ctx, "misty forest", testClient)
	require.NoError(t, err)
	second, err := svc.Generate(ctx, "misty forest", testClient)
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, *first.ConceptID, *second.ConceptID)
	assert.EqualValues(t, 1, countRows(t, db, &models.Concept{}))
	assert.EqualValues(t, 2, countRows(t, db, &models.GeneratedContent{}))
	assert.EqualValues(t, 2, countRows(t, db, &models.AnalyticsEvent{}))

	var concept models.Concept
	require.NoError(t, db.First(&concept).Error)
	assert.EqualValues(t, 2, concept.UsageCount)
	assert.False(t, concept.LastUsed.Before(concept.FirstUsed))
}

func TestGenerate_ConceptsAreCaseSensitive(t *testing.T) {
	svc, db := newContentService(t)
	ctx := context.Background()

	_, err := svc.Generate(ctx, "Sunset", testClient)
	require.NoError(t, err)
	_, err = svc.Generate(ctx, "sunset", testClient)
	require.NoError(t, err)

	assert.EqualValues(t, 2, countRows(t, db, &models.Concept{}))
}

func TestTrackView_CountsEveryView(t *testing.T) {
	svc, db := newContentService(t)
	ctx := context.Background()

	content, err := svc.Generate(ctx, "ocean waves", testClient)
	require.NoError(t, err)

	var viewed *models.GeneratedContent
	for i := 0; i < 3; i++ {
		viewed, err = svc.TrackView(ctx, content.ID, testClient)
		require.NoError(t, err)
	}
	assert.EqualValues(t, 3, viewed.ViewCount)
	require.NotNil(t, viewed.LastViewed)

	var stored models.GeneratedContent
	require.NoError(t, db.First(&stored, content.ID).Error)
	assert.EqualValues(t, 3, stored.ViewCount)
	require.NotNil(t, stored.LastViewed)

	var concept models.Concept
	require.NoError(t, db.First(&concept, *content.ConceptID).Error)
	assert.EqualValues(t, 3, concept.TotalViews)

	var views int64
	require.NoError(t, db.Model(&models.AnalyticsEvent{}).Where("event_type = ?", models.EventView).Count(&views).Error)
	assert.EqualValues(t, 3, views)
}

func TestTrackView_UnknownID(t *testing.T) {
	svc, db := newContentService(t)

	_, err := svc.TrackView(context.Background(), 999, testClient)
	assert.ErrorIs(t, err, ErrContentNotFound)
	assert.Zero(t, countRows(t, db, &models.AnalyticsEvent{}))
}

func TestTrackCopy(t *testing.T) {
	svc, db := newContentService(t)
	ctx := context.Background()

	content, err := svc.Generate(ctx, "city lights", testClient)
	require.NoError(t, err)

	require.NoError(t, svc.TrackCopy(ctx, content.ID, "listing_title", testClient))
	require.NoError(t, svc.TrackCopy(ctx, content.ID, "<b>social_caption</b>", testClient))

	var stored models.GeneratedContent
	require.NoError(t, db.First(&stored, content.ID).Error)
	assert.EqualValues(t, 2, stored.CopyCount)
	assert.NotNil(t, stored.LastCopied)
	assert.Zero(t, stored.ViewCount)

	var concept models.Concept
	require.NoError(t, db.First(&concept, *content.ConceptID).Error)
	assert.EqualValues(t, 2, concept.TotalCopies)

	var copies []models.AnalyticsEvent
	require.NoError(t, db.Where("event_type = ?", models.EventCopy).Order("id ASC").Find(&copies).Error)
	require.Len(t, copies, 2)
	assert.Equal(t, "listing_title", copies[0].EventData["copy_type"])
	assert.Equal(t, "social_caption", copies[1].EventData["copy_type"])
}

func TestTrackCopy_UnknownIDIsNoop(t *testing.T) {
	svc, db := newContentService(t)

	require.NoError(t, svc.TrackCopy(context.Background(), 12345, "listing_tags", testClient))
	assert.Zero(t, countRows(t, db, &models.AnalyticsEvent{}))
	assert.Zero(t, countRows(t, db, &models.GeneratedContent{}))
}

func TestHistory_NewestFirstAndLimited(t *testing.T) {
	svc, _ := newContentService(t)
	ctx := context.Background()

	for _, c := range []string{"one", "two", "three"} {
		_, err := svc.Generate(ctx, c, testClient)
		require.NoError(t, err)
	}

	items, err := svc.History(ctx, 2)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "three", items[0].Concept)
	assert.Equal(t, "two", items[1].Concept)

	empty, err := NewContentService(testhelpers.MemoryDB(t), generator.New(), nil, nil, zap.NewNop()).History(ctx, HistoryLimit)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestGenerate_RollsBackOnStoreFailure(t *testing.T) {
	svc, db := newContentService(t)
	require.NoError(t, db.Migrator().DropTable(&models.GeneratedContent{}))

	content, err := svc.Generate(context.Background(), "lost lighthouse", testClient)
	require.Error(t, err)
	assert.Nil(t, content)
	assert.Zero(t, countRows(t, db, &models.Concept{}))
	assert.Zero(t, countRows(t, db, &models.AnalyticsEvent{}))
}

func TestGenerate_RollbackKeepsExistingConceptUsage(t *testing.T) {
	svc, db := newContentService(t)
	ctx := context.Background()

	_, err := svc.Generate(ctx, "lost lighthouse", testClient)
	require.NoError(t, err)
	require.NoError(t, db.Migrator().DropTable(&models.GeneratedContent{}))

	_, err = svc.Generate(ctx, "lost lighthouse", testClient)
	require.Error(t, err)

	var concept models.Concept
	require.NoError(t, db.First(&concept).Error)
	assert.EqualValues(t, 1, concept.UsageCount)
}

func TestEventAppendFailureIsSwallowed(t *testing.T) {
	svc, db := newContentService(t)
	ctx := context.Background()
	require.NoError(t, db.Migrator().DropTable(&models.AnalyticsEvent{}))

	content, err := svc.Generate(ctx, "paper lanterns", testClient)
	require.NoError(t, err)

	viewed, err := svc.TrackView(ctx, content.ID, testClient)
	require.NoError(t, err)
	assert.EqualValues(t, 1, viewed.ViewCount)

	require.NoError(t, svc.TrackCopy(ctx, content.ID, "listing_tags", testClient))

	var stored models.GeneratedContent
	require.NoError(t, db.First(&stored, content.ID).Error)
	assert.EqualValues(t, 1, stored.ViewCount)
	assert.EqualValues(t, 1, stored.CopyCount)

	var concept models.Concept
	require.NoError(t, db.First(&concept, *content.ConceptID).Error)
	assert.EqualValues(t, 1, concept.UsageCount)
	assert.EqualValues(t, 1, concept.TotalViews)
	assert.EqualValues(t, 1, concept.TotalCopies)
}

func TestGenerate_ConcurrentSameConcept(t *testing.T) {
	svc, db := newContentService(t)
	const workers = 8

	var (
		wg sync.WaitGroup
		ok atomic.Int64
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.Generate(context.Background(), "race", testClient); err == nil {
				ok.Add(1)
			}
		}()
	}
	wg.Wait()

	require.Positive(t, ok.Load())
	assert.EqualValues(t, 1, countRows(t, db, &models.Concept{}))
	assert.Equal(t, ok.Load(), countRows(t, db, &models.GeneratedContent{}))

	var concept models.Concept
	require.NoError(t, db.First(&concept).Error)
	assert.Equal(t, ok.Load(), concept.UsageCount)
}
