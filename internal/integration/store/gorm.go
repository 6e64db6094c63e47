package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/chantierpro/finance/internal/integration/domain"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type connectionModel struct {
	Provider    string         `gorm:"primaryKey;type:varchar(32)"`
	Status      string         `gorm:"type:varchar(32);not null"`
	Config      datatypes.JSON `gorm:"not null"`
	LastResult  datatypes.JSON
	LastError   string `gorm:"type:text"`
	LastSyncAt  *time.Time
	ConnectedAt time.Time `gorm:"not null"`
	UpdatedAt   time.Time `gorm:"not null"`
}

func (connectionModel) TableName() string { return "integration_connections" }

// GormStore persists connections in the integration_connections table.
type GormStore struct {
	db     *gorm.DB
	sealer *Sealer
}

func NewGormStore(db *gorm.DB, sealer *Sealer) *GormStore {
	return &GormStore{db: db, sealer: sealer}
}

func (s *GormStore) Migrate(ctx context.Context) error {
	return s.db.WithContext(ctx).AutoMigrate(&connectionModel{})
}

func (s *GormStore) Load(ctx context.Context, provider domain.Provider) (domain.Connection, error) {
	var m connectionModel
	err := s.db.WithContext(ctx).Where("provider = ?", string(provider)).Take(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Connection{}, domain.ErrNotConnected
	}
	if err != nil {
		return domain.Connection{}, err
	}
	return s.fromModel(m)
}

func (s *GormStore) Save(ctx context.Context, conn domain.Connection) error {
	rec, err := seal(s.sealer, conn)
	if err != nil {
		return err
	}
	m := connectionModel{
		Provider:    string(rec.Provider),
		Status:      string(rec.Status),
		Config:      datatypes.JSON(rec.Sealed),
		LastError:   rec.LastError,
		LastSyncAt:  rec.LastSyncAt,
		ConnectedAt: rec.ConnectedAt,
		UpdatedAt:   rec.UpdatedAt,
	}
	if rec.LastResult != nil {
		raw, err := json.Marshal(rec.LastResult)
		if err != nil {
			return err
		}
		m.LastResult = datatypes.JSON(raw)
	}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "provider"}},
			UpdateAll: true,
		}).
		Create(&m).Error
}

func (s *GormStore) Remove(ctx context.Context, provider domain.Provider) error {
	return s.db.WithContext(ctx).
		Where("provider = ?", string(provider)).
		Delete(&connectionModel{}).Error
}

func (s *GormStore) List(ctx context.Context) ([]domain.Connection, error) {
	var models []connectionModel
	if err := s.db.WithContext(ctx).Order("provider").Find(&models).Error; err != nil {
		return nil, err
	}
	out := make([]domain.Connection, 0, len(models))
	for _, m := range models {
		conn, err := s.fromModel(m)
		if err != nil {
			return nil, err
		}
		out = append(out, conn)
	}
	return out, nil
}

func (s *GormStore) fromModel(m connectionModel) (domain.Connection, error) {
	rec := record{
		Provider:    domain.Provider(m.Provider),
		Status:      domain.SyncStatus(m.Status),
		Sealed:      json.RawMessage(m.Config),
		ConnectedAt: m.ConnectedAt,
		UpdatedAt:   m.UpdatedAt,
		LastSyncAt:  m.LastSyncAt,
		LastError:   m.LastError,
	}
	if len(m.LastResult) > 0 {
		var result domain.SyncResult
		if err := json.Unmarshal(m.LastResult, &result); err != nil {
			return domain.Connection{}, err
		}
		rec.LastResult = &result
	}
	return open(s.sealer, rec)
}
