package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"rentfunnel/internal/storage"
)

// SessionStore keeps session blobs in the sessions table. It satisfies
// session.Store.
type SessionStore struct {
	db  *gorm.DB
	now func() time.Time
}

func NewSessionStore(db *gorm.DB) *SessionStore {
	return &SessionStore{db: db, now: time.Now}
}

type sessionModel struct {
	Key       string    `gorm:"column:key;primaryKey;size:255"`
	Value     []byte    `gorm:"column:value"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (sessionModel) TableName() string { return "sessions" }

func (s *SessionStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var m sessionModel
	err := s.db.WithContext(ctx).Where(clause.Eq{Column: clause.Column{Name: "key"}, Value: key}).First(&m).Error
	if err != nil {
		err = storage.Normalize(err)
		if storage.IsNotFound(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return m.Value, true, nil
}

func (s *SessionStore) Set(ctx context.Context, key string, value []byte) error {
	m := sessionModel{Key: key, Value: value, UpdatedAt: s.now()}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&m).Error
	return storage.Normalize(err)
}

func (s *SessionStore) Remove(ctx context.Context, key string) error {
	err := s.db.WithContext(ctx).
		Where(clause.Eq{Column: clause.Column{Name: "key"}, Value: key}).
		Delete(&sessionModel{}).Error
	return storage.Normalize(err)
}
