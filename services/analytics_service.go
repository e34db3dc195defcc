package services

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/cppla/artcopy/models"
	"github.com/cppla/artcopy/utils"
)

// List sizes used by the dashboard and the stats API.
const (
	DashboardTopN         = 10
	DashboardRecentEvents = 100
	APITopN               = 5
	APIRecentContent      = 10
	EventSummaryWindow    = 30 * 24 * time.Hour
)

// Overview holds the headline counters. Missing rows count as zero.
type Overview struct {
	TotalGenerations int64 `json:"total_generations"`
	TotalConcepts    int64 `json:"total_concepts"`
	TotalViews       int64 `json:"total_views"`
	TotalCopies      int64 `json:"total_copies"`
}

// EventRow is an analytics event with the concept of the content it refers to.
type EventRow struct {
	models.AnalyticsEvent
	Concept string `json:"concept"`
}

// Dashboard is everything the analytics page renders.
type Dashboard struct {
	Overview     Overview                `json:"overview"`
	TopViewed    []models.ContentSummary `json:"top_viewed"`
	TopCopied    []models.ContentSummary `json:"top_copied"`
	TopConcepts  []models.Concept        `json:"top_concepts"`
	RecentEvents []EventRow              `json:"recent_events"`
	EventSummary map[string]int64        `json:"event_summary"`
}

// Stats is the /api/stats payload.
type Stats struct {
	Overview       Overview                `json:"overview"`
	TopViewed      []models.ContentSummary `json:"top_viewed"`
	TopCopied      []models.ContentSummary `json:"top_copied"`
	RecentActivity []models.ContentSummary `json:"recent_activity"`
	EventSummary   map[string]int64        `json:"event_summary"`
}

// AnalyticsService answers read-only aggregate queries.
type AnalyticsService struct {
	db  *gorm.DB
	now func() time.Time
}

// NewAnalyticsService creates a service reading from db.
func NewAnalyticsService(db *gorm.DB) *AnalyticsService {
	return &AnalyticsService{db: db, now: func() time.Time { return time.Now().UTC() }}
}

// Overview counts content, concepts, views and copies.
func (a *AnalyticsService) Overview(ctx context.Context) (Overview, error) {
	var o Overview
	db := a.db.WithContext(ctx)
	if err := db.Model(&models.GeneratedContent{}).Count(&o.TotalGenerations).Error; err != nil {
		return o, fmt.Errorf("count content: %w", err)
	}
	if err := db.Model(&models.Concept{}).Count(&o.TotalConcepts).Error; err != nil {
		return o, fmt.Errorf("count concepts: %w", err)
	}
	if err := db.Model(&models.GeneratedContent{}).Select("COALESCE(SUM(view_count),0)").Scan(&o.TotalViews).Error; err != nil {
		return o, fmt.Errorf("sum views: %w", err)
	}
	if err := db.Model(&models.GeneratedContent{}).Select("COALESCE(SUM(copy_count),0)").Scan(&o.TotalCopies).Error; err != nil {
		return o, fmt.Errorf("sum copies: %w", err)
	}
	return o, nil
}

// TopViewed returns the n most viewed rows; ties go to the older row.
func (a *AnalyticsService) TopViewed(ctx context.Context, n int) ([]models.ContentSummary, error) {
	return a.topContent(ctx, "view_count", n)
}

// TopCopied returns the n most copied rows; ties go to the older row.
func (a *AnalyticsService) TopCopied(ctx context.Context, n int) ([]models.ContentSummary, error) {
	return a.topContent(ctx, "copy_count", n)
}

func (a *AnalyticsService) topContent(ctx context.Context, column string, n int) ([]models.ContentSummary, error) {
	out := make([]models.ContentSummary, 0, n)
	if err := a.db.WithContext(ctx).Model(&models.GeneratedContent{}).
		Select("id, concept, view_count, copy_count, created_at").
		Order(column + " DESC").Order("id ASC").
		Limit(n).
		Scan(&out).Error; err != nil {
		return nil, fmt.Errorf("top content by %s: %w", column, err)
	}
	return nonNil(out), nil
}

// TopConcepts returns the n most used concepts.
func (a *AnalyticsService) TopConcepts(ctx context.Context, n int) ([]models.Concept, error) {
	out := make([]models.Concept, 0, n)
	if err := a.db.WithContext(ctx).
		Order("usage_count DESC").Order("id ASC").
		Limit(n).
		Find(&out).Error; err != nil {
		return nil, fmt.Errorf("top concepts: %w", err)
	}
	return nonNil(out), nil
}

// RecentContent returns the n newest rows.
func (a *AnalyticsService) RecentContent(ctx context.Context, n int) ([]models.ContentSummary, error) {
	out := make([]models.ContentSummary, 0, n)
	if err := a.db.WithContext(ctx).Model(&models.GeneratedContent{}).
		Select("id, concept, view_count, copy_count, created_at").
		Order("created_at DESC").Order("id DESC").
		Limit(n).
		Scan(&out).Error; err != nil {
		return nil, fmt.Errorf("recent content: %w", err)
	}
	return nonNil(out), nil
}

// RecentEvents returns the n newest events with the concept text of the
// content each refers to.
func (a *AnalyticsService) RecentEvents(ctx context.Context, n int) ([]EventRow, error) {
	db := a.db.WithContext(ctx)
	var events []models.AnalyticsEvent
	if err := db.Order("created_at DESC").Order("id DESC").Limit(n).Find(&events).Error; err != nil {
		return nil, fmt.Errorf("recent events: %w", err)
	}

	var contentIDs []uint
	for _, e := range events {
		if e.ContentID != nil {
			contentIDs = append(contentIDs, *e.ContentID)
		}
	}
	concepts := map[uint]string{}
	if ids := utils.Unique(contentIDs); len(ids) > 0 {
		var rows []struct {
			ID      uint
			Concept string
		}
		if err := db.Model(&models.GeneratedContent{}).Select("id, concept").Where("id IN ?", ids).Scan(&rows).Error; err != nil {
			return nil, fmt.Errorf("load event content: %w", err)
		}
		for _, r := range rows {
			concepts[r.ID] = r.Concept
		}
	}

	out := make([]EventRow, 0, len(events))
	for _, e := range events {
		row := EventRow{AnalyticsEvent: e}
		if e.ContentID != nil {
			row.Concept = concepts[*e.ContentID]
		}
		out = append(out, row)
	}
	return out, nil
}

// EventSummary counts events per type, only those at or after since when
// since is non-nil.
func (a *AnalyticsService) EventSummary(ctx context.Context, since *time.Time) (map[string]int64, error) {
	var rows []struct {
		EventType string
		Count     int64
	}
	q := a.db.WithContext(ctx).Model(&models.AnalyticsEvent{}).
		Select("event_type, COUNT(*) AS count").
		Group("event_type")
	if since != nil {
		q = q.Where("created_at >= ?", *since)
	}
	if err := q.Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("event summary: %w", err)
	}

	summary := make(map[string]int64, len(rows))
	for _, r := range rows {
		summary[r.EventType] = r.Count
	}
	return summary, nil
}

// Dashboard gathers the analytics page data. The event summary is unwindowed.
func (a *AnalyticsService) Dashboard(ctx context.Context) (*Dashboard, error) {
	var (
		d   Dashboard
		err error
	)
	if d.Overview, err = a.Overview(ctx); err != nil {
		return nil, err
	}
	if d.TopViewed, err = a.TopViewed(ctx, DashboardTopN); err != nil {
		return nil, err
	}
	if d.TopCopied, err = a.TopCopied(ctx, DashboardTopN); err != nil {
		return nil, err
	}
	if d.TopConcepts, err = a.TopConcepts(ctx, DashboardTopN); err != nil {
		return nil, err
	}
	if d.RecentEvents, err = a.RecentEvents(ctx, DashboardRecentEvents); err != nil {
		return nil, err
	}
	if d.EventSummary, err = a.EventSummary(ctx, nil); err != nil {
		return nil, err
	}
	return &d, nil
}

// Stats gathers the API payload. The event summary covers the last 30 days.
func (a *AnalyticsService) Stats(ctx context.Context) (*Stats, error) {
	var (
		s   Stats
		err error
	)
	if s.Overview, err = a.Overview(ctx); err != nil {
		return nil, err
	}
	if s.TopViewed, err = a.TopViewed(ctx, APITopN); err != nil {
		return nil, err
	}
	if s.TopCopied, err = a.TopCopied(ctx, APITopN); err != nil {
		return nil, err
	}
	if s.RecentActivity, err = a.RecentContent(ctx, APIRecentContent); err != nil {
		return nil, err
	}
	since := a.now().Add(-EventSummaryWindow)
	if s.EventSummary, err = a.EventSummary(ctx, &since); err != nil {
		return nil, err
	}
	return &s, nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
