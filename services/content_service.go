package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/cppla/artcopy/generator"
	"github.com/cppla/artcopy/models"
	"github.com/cppla/artcopy/utils"
)

const (
	// HistoryLimit is the number of rows shown on the history page.
	HistoryLimit = 50
	// MaxCopyTypeLength caps the free-form copy label stored on copy events.
	MaxCopyTypeLength = 50
	// StatsCachePrefix namespaces every cached analytics payload.
	StatsCachePrefix = "cache:stats:"
)

// ContentService runs the generation, view and copy bookkeeping.
type ContentService struct {
	db     *gorm.DB
	gen    *generator.Generator
	events *EventRecorder
	cache  *utils.Cache
	log    *zap.Logger
	now    func() time.Time
}

// NewContentService wires the service. cache may be nil.
func NewContentService(db *gorm.DB, gen *generator.Generator, events *EventRecorder, cache *utils.Cache, log *zap.Logger) *ContentService {
	return &ContentService{
		db:     db,
		gen:    gen,
		events: events,
		cache:  cache,
		log:    log,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Generate produces copy for concept and stores it. The concept row is
// created or its usage bumped in the same transaction as the content insert.
// A concurrent first use of the same text loses on the unique index and
// returns an error like any other store failure.
func (s *ContentService) Generate(ctx context.Context, concept string, client models.ClientMeta) (*models.GeneratedContent, error) {
	bundle := s.gen.Generate(concept)
	now := s.now()

	var content models.GeneratedContent
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var c models.Concept
		err := tx.Where("text = ?", concept).Take(&c).Error
		switch {
		case err == nil:
			if err := tx.Model(&models.Concept{}).Where("id = ?", c.ID).Updates(map[string]interface{}{
				"usage_count": gorm.Expr("usage_count + ?", 1),
				"last_used":   now,
			}).Error; err != nil {
				return err
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			c = models.Concept{Text: concept, UsageCount: 1, FirstUsed: now, LastUsed: now}
			if err := tx.Create(&c).Error; err != nil {
				return err
			}
		default:
			return err
		}

		conceptID := c.ID
		content = models.GeneratedContent{
			Concept:            concept,
			ConceptID:          &conceptID,
			ImagePrompts:       datatypes.JSONSlice[string](bundle.ImagePrompts),
			ListingTitles:      datatypes.JSONSlice[string](bundle.ListingTitles),
			ListingTags:        datatypes.JSONSlice[string](bundle.ListingTags),
			ListingDescription: bundle.ListingDescription,
			SocialCaption:      bundle.SocialCaption,
			CreatedAt:          now,
		}
		return tx.Create(&content).Error
	})
	if err != nil {
		return nil, fmt.Errorf("save generated content: %w", err)
	}

	s.events.Record(ctx, models.EventGenerate, &content.ID, content.ConceptID, map[string]interface{}{
		"prompts_count": len(bundle.ImagePrompts),
		"titles_count":  len(bundle.ListingTitles),
		"tags_count":    len(bundle.ListingTags),
	}, client)
	s.cache.InvalidateByPrefix(ctx, StatsCachePrefix)

	return &content, nil
}

// Get loads one row without tracking a view.
func (s *ContentService) Get(ctx context.Context, id uint) (*models.GeneratedContent, error) {
	var content models.GeneratedContent
	if err := s.db.WithContext(ctx).First(&content, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrContentNotFound
		}
		return nil, fmt.Errorf("load content %d: %w", id, err)
	}
	return &content, nil
}

// TrackView counts a view of content id and of its concept. The view event
// is recorded even when the counter update fails.
func (s *ContentService) TrackView(ctx context.Context, id uint, client models.ClientMeta) (*models.GeneratedContent, error) {
	content, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	now := s.now()
	txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.GeneratedContent{}).Where("id = ?", content.ID).Updates(map[string]interface{}{
			"view_count":  gorm.Expr("view_count + ?", 1),
			"last_viewed": now,
		}).Error; err != nil {
			return err
		}
		if content.ConceptID != nil {
			return tx.Model(&models.Concept{}).Where("id = ?", *content.ConceptID).
				UpdateColumn("total_views", gorm.Expr("total_views + ?", 1)).Error
		}
		return nil
	})

	s.events.Record(ctx, models.EventView, &content.ID, content.ConceptID, nil, client)

	if txErr != nil {
		return nil, fmt.Errorf("track view of content %d: %w", id, txErr)
	}
	s.cache.InvalidateByPrefix(ctx, StatsCachePrefix)

	content.ViewCount++
	content.LastViewed = &now
	return content, nil
}

// TrackCopy counts a clipboard copy from content id. Unknown ids are ignored.
func (s *ContentService) TrackCopy(ctx context.Context, id uint, copyType string, client models.ClientMeta) error {
	content, err := s.Get(ctx, id)
	if errors.Is(err, ErrContentNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	now := s.now()
	txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.GeneratedContent{}).Where("id = ?", content.ID).Updates(map[string]interface{}{
			"copy_count":  gorm.Expr("copy_count + ?", 1),
			"last_copied": now,
		}).Error; err != nil {
			return err
		}
		if content.ConceptID != nil {
			return tx.Model(&models.Concept{}).Where("id = ?", *content.ConceptID).
				UpdateColumn("total_copies", gorm.Expr("total_copies + ?", 1)).Error
		}
		return nil
	})

	s.events.Record(ctx, models.EventCopy, &content.ID, content.ConceptID, map[string]interface{}{
		"copy_type": utils.SanitizeLabel(copyType, MaxCopyTypeLength),
	}, client)

	if txErr != nil {
		return fmt.Errorf("track copy of content %d: %w", id, txErr)
	}
	s.cache.InvalidateByPrefix(ctx, StatsCachePrefix)
	return nil
}

// History returns the most recent rows, newest first.
func (s *ContentService) History(ctx context.Context, limit int) ([]models.GeneratedContent, error) {
	items := make([]models.GeneratedContent, 0, limit)
	if err := s.db.WithContext(ctx).
		Order("created_at DESC").Order("id DESC").
		Limit(limit).
		Find(&items).Error; err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	return items, nil
}
