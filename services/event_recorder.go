package services

import (
	"context"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/cppla/artcopy/models"
	"github.com/cppla/artcopy/utils"
)

// EventRecorder appends to the analytics log. Appends never fail the caller:
// errors are logged and dropped.
type EventRecorder struct {
	db  *gorm.DB
	log *zap.Logger
}

// NewEventRecorder creates a recorder writing through db.
func NewEventRecorder(db *gorm.DB, log *zap.Logger) *EventRecorder {
	return &EventRecorder{db: db, log: log}
}

// Record appends one event. contentID and conceptID may be nil.
func (r *EventRecorder) Record(ctx context.Context, eventType string, contentID, conceptID *uint, data map[string]interface{}, client models.ClientMeta) {
	event := models.AnalyticsEvent{
		EventType: eventType,
		ContentID: contentID,
		ConceptID: conceptID,
		IPAddress: utils.Truncate(client.IPAddress, models.MaxIPAddressLength),
		UserAgent: utils.Truncate(client.UserAgent, models.MaxUserAgentLength),
	}
	if data != nil {
		event.EventData = datatypes.JSONMap(data)
	}

	// The triggering request may already be finishing; keep the append alive.
	if err := r.db.WithContext(context.WithoutCancel(ctx)).Create(&event).Error; err != nil {
		r.log.Warn("failed to record analytics event",
			zap.String("event_type", eventType),
			zap.Uintp("content_id", contentID),
			zap.Uintp("concept_id", conceptID),
			zap.Error(err),
		)
	}
}
