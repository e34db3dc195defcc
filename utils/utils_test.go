package utils

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cppla/artcopy/models"
	"github.com/cppla/artcopy/testhelpers"
)

func TestTruncate(t *testing.T) {
	assert.Equal(t, "héll", Truncate("héllo", 4))
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "exact", Truncate("exact", 5))
	assert.Equal(t, "", Truncate("", 3))
	assert.Equal(t, "日本", Truncate("日本語", 2))
}

func TestSanitizeLabel(t *testing.T) {
	assert.Equal(t, "listing_title", SanitizeLabel("  listing_title ", 50))
	assert.Equal(t, "caption", SanitizeLabel("<script>alert(1)</script>caption", 50))
	assert.Equal(t, "abc", SanitizeLabel("abcdef", 3))
}

func TestUnique(t *testing.T) {
	assert.Equal(t, []uint{3, 1, 2}, Unique([]uint{3, 1, 3, 2, 1}))
	assert.Equal(t, []string{"b", "a"}, Unique([]string{"b", "a", "b"}))
	assert.Empty(t, Unique[uint](nil))
}

func TestPruneEventsBefore(t *testing.T) {
	db := testhelpers.MemoryDB(t)
	now := time.Now().UTC()
	events := []models.AnalyticsEvent{
		{EventType: models.EventView, CreatedAt: now.Add(-48 * time.Hour)},
		{EventType: models.EventCopy, CreatedAt: now.Add(-25 * time.Hour)},
		{EventType: models.EventGenerate, CreatedAt: now.Add(-time.Hour)},
	}
	require.NoError(t, db.Create(&events).Error)

	n, err := PruneEventsBefore(context.Background(), db, now.Add(-24*time.Hour))
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	var left []models.AnalyticsEvent
	require.NoError(t, db.Find(&left).Error)
	require.Len(t, left, 1)
	assert.Equal(t, models.EventGenerate, left[0].EventType)
}

func TestCache_DisabledIsNoop(t *testing.T) {
	ctx := context.Background()
	for _, c := range []*Cache{nil, NewCache(nil, nil)} {
		assert.False(t, c.Enabled())
		c.SetJSON(ctx, "k", map[string]int{"a": 1}, 0)
		_, ok := c.GetBytes(ctx, "k")
		assert.False(t, ok)
		c.InvalidateByPrefix(ctx, "k")
	}
}

func TestFlasher_RoundTrip(t *testing.T) {
	gin.SetMode(gin.TestMode)
	f := NewFlasher("secret", false)

	r := gin.New()
	var popped []Flash
	r.GET("/add", func(c *gin.Context) {
		require.NoError(t, f.Add(c, FlashSuccess, "saved"))
		require.NoError(t, f.Add(c, FlashError, "oops"))
		c.Status(http.StatusNoContent)
	})
	r.GET("/pop", func(c *gin.Context) {
		popped = f.Pop(c)
		c.Status(http.StatusNoContent)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/add", nil))
	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)

	// Each Add saves the session again; the last cookie carries both flashes.
	req := httptest.NewRequest(http.MethodGet, "/pop", nil)
	req.AddCookie(cookies[len(cookies)-1])
	r.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, []Flash{{Category: FlashError, Message: "oops"}, {Category: FlashSuccess, Message: "saved"}}, popped)

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/pop", nil))
	assert.Empty(t, popped)
}
