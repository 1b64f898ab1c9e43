package gormstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"ai-scheduler-be/pkg/pending"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PendingRecord is the row form of pending.State. ThreadID is the primary
// key, which is what limits a thread to a single record.
type PendingRecord struct {
	ThreadID  string         `gorm:"type:varchar(128);primaryKey"`
	Kind      string         `gorm:"type:varchar(40);not null;index"`
	Token     string         `gorm:"type:varchar(64)"`
	Document  datatypes.JSON `gorm:"type:jsonb;not null"`
	CreatedAt time.Time      `gorm:"not null"`
	ExpiresAt *time.Time     `gorm:"index"`
}

func (PendingRecord) TableName() string {
	return "pending_states"
}

// Store keeps pending records in postgres
type Store struct {
	db  *gorm.DB
	now func() time.Time
}

var _ pending.Store = (*Store)(nil)

func New(db *gorm.DB) *Store {
	return &Store{db: db, now: time.Now}
}

// Migrate creates the pending_states table
func (s *Store) Migrate(ctx context.Context) error {
	return s.db.WithContext(ctx).AutoMigrate(&PendingRecord{})
}

func toRecord(state *pending.State) (*PendingRecord, error) {
	doc, err := json.Marshal(state)
	if err != nil {
		return nil, fmt.Errorf("encode pending: %w", err)
	}
	rec := &PendingRecord{
		ThreadID:  state.ThreadID,
		Kind:      string(state.Kind()),
		Token:     state.Token,
		Document:  datatypes.JSON(doc),
		CreatedAt: state.CreatedAt,
	}
	if !state.ExpiresAt.IsZero() {
		exp := state.ExpiresAt
		rec.ExpiresAt = &exp
	}
	return rec, nil
}

func fromRecord(rec *PendingRecord) (*pending.State, error) {
	var state pending.State
	if err := json.Unmarshal(rec.Document, &state); err != nil {
		return nil, fmt.Errorf("decode pending: %w", err)
	}
	return &state, nil
}

func (s *Store) Get(ctx context.Context, threadID string) (*pending.State, bool, error) {
	var rec PendingRecord
	err := s.db.WithContext(ctx).Where("thread_id = ?", threadID).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	state, err := fromRecord(&rec)
	if err != nil {
		return nil, false, err
	}
	if state.Expired(s.now()) {
		return nil, false, nil
	}
	return state, true, nil
}

func (s *Store) Put(ctx context.Context, state *pending.State) error {
	if err := state.Validate(); err != nil {
		return err
	}
	rec, err := toRecord(state)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "thread_id"}},
		UpdateAll: true,
	}).Create(rec).Error
}

func (s *Store) Clear(ctx context.Context, threadID string) error {
	return s.db.WithContext(ctx).Where("thread_id = ?", threadID).Delete(&PendingRecord{}).Error
}

func (s *Store) Consume(ctx context.Context, threadID, token string) (*pending.State, error) {
	var consumed *pending.State
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rec PendingRecord
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("thread_id = ?", threadID).
			First(&rec).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pending.ErrNotFound
		}
		if err != nil {
			return err
		}
		if rec.Token == "" || rec.Token != token {
			return pending.ErrTokenMismatch
		}
		state, err := fromRecord(&rec)
		if err != nil {
			return err
		}
		if state.Expired(s.now()) {
			return pending.ErrExpired
		}
		if err := tx.Delete(&PendingRecord{}, "thread_id = ?", threadID).Error; err != nil {
			return err
		}
		consumed = state
		return nil
	})
	if err != nil {
		return nil, err
	}
	return consumed, nil
}
