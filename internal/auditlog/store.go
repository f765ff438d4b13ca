// Package auditlog persists execution-log entries to PostgreSQL.
// The store is write-only: the engine never reads it back, it exists
// for after-the-fact audit. Failures are logged, never fatal.
package auditlog

import (
	"time"

	"github.com/yanun0323/logs"
	"gorm.io/gorm"

	"main/internal/engine"
)

// Record is the persisted shape of one execution-log entry.
type Record struct {
	ID          uint64    `gorm:"primaryKey;autoIncrement"`
	AlgorithmID string    `gorm:"index;size:64"`
	RuleID      string    `gorm:"size:64"`
	Severity    string    `gorm:"size:16"`
	Message     string    `gorm:"type:text"`
	OccurredAt  time.Time `gorm:"index"`
}

// TableName keeps the table name stable across gorm naming versions.
func (Record) TableName() string { return "execution_log" }

// Store writes execution-log entries. Implements engine.Sink.
type Store struct {
	db *gorm.DB
}

// NewStore migrates the schema and builds a store.
func NewStore(db *gorm.DB) (*Store, error) {
	if err := db.AutoMigrate(&Record{}); err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

var _ engine.Sink = (*Store)(nil)

// Write appends one entry. Best effort: a failed insert is logged and
// dropped so the evaluation loop never stalls on the database.
func (s *Store) Write(algorithmID string, entry engine.Entry) {
	record := Record{
		AlgorithmID: algorithmID,
		RuleID:      entry.RuleID,
		Severity:    entry.Severity.String(),
		Message:     entry.Message,
		OccurredAt:  entry.Time,
	}
	if err := s.db.Create(&record).Error; err != nil {
		logs.Errorf("audit insert failed: %+v", err)
	}
}
