package models

import (
	"time"

	"github.com/google/uuid"
)

// ActivityType classifies an activity log entry
type ActivityType string

const (
	ActivityCropSelected     ActivityType = "crop_selected"
	ActivityDetectionCreated ActivityType = "detection_created"
	ActivityDetectionDeleted ActivityType = "detection_deleted"
	ActivityMessageSent      ActivityType = "message_sent"
	ActivityReportExported   ActivityType = "report_exported"
)

// ActivityEntry is one row of the per-crop activity log
type ActivityEntry struct {
	ID        uuid.UUID    `json:"id" db:"id"`
	CropID    string       `json:"crop_id" db:"crop_id"`
	Type      ActivityType `json:"type" db:"type"`
	Detail    string       `json:"detail" db:"detail"`
	CreatedAt time.Time    `json:"created_at" db:"created_at"`
}

// NewActivityEntry creates a timestamped activity entry
func NewActivityEntry(cropID string, kind ActivityType, detail string) ActivityEntry {
	return ActivityEntry{
		ID:        uuid.New(),
		CropID:    cropID,
		Type:      kind,
		Detail:    detail,
		CreatedAt: time.Now(),
	}
}
