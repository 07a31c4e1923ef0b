package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Run statuses stored in the history table
const (
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// ReportRun is one report generation attempt
type ReportRun struct {
	ID         string    `json:"id" gorm:"type:varchar(36);primaryKey"`
	CreatedAt  time.Time `json:"created_at" gorm:"index"`
	Template   string    `json:"template" gorm:"size:100;not null;index"`
	Format     string    `json:"format" gorm:"size:10;not null"`
	Status     string    `json:"status" gorm:"size:20;not null"`
	Records    int       `json:"records"`
	SizeBytes  int       `json:"size_bytes"`
	DurationMS int64     `json:"duration_ms"`
	ArchiveKey string    `json:"archive_key,omitempty" gorm:"size:1024"`
	Error      string    `json:"error,omitempty" gorm:"size:2000"`
	Meta       JSON      `json:"meta,omitempty" gorm:"type:jsonb"`
}

// JSON is a custom type for handling JSONB data
type JSON map[string]any

// Value implements the driver.Valuer interface for JSON
func (j JSON) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	b, err := json.Marshal(j)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements the sql.Scanner interface for JSON
func (j *JSON) Scan(value any) error {
	if value == nil {
		*j = nil
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into JSON", value)
	}

	return json.Unmarshal(bytes, j)
}

// TableName specifies the table name for the ReportRun model
func (ReportRun) TableName() string {
	return "report_runs"
}

// BeforeCreate assigns a random id to new rows
func (r *ReportRun) BeforeCreate(*gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

// IsCompleted returns true if the report was generated
func (r *ReportRun) IsCompleted() bool {
	return r.Status == StatusCompleted
}

// IsFailed returns true if the report generation failed
func (r *ReportRun) IsFailed() bool {
	return r.Status == StatusFailed
}
