package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"fatcow/contexts/governance/administration-service/domain/entities"
	domainerrors "fatcow/contexts/governance/administration-service/domain/errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// The governance record is a singleton row.
const administrationRowID = 1

type administrationModel struct {
	ID                    int    `gorm:"column:id;primaryKey"`
	Administrator         string `gorm:"column:administrator"`
	ProposedAdministrator string `gorm:"column:proposed_administrator"`
	Paused                bool   `gorm:"column:paused"`
	UpdatedAt             time.Time
}

func (administrationModel) TableName() string {
	return "governance_administration"
}

func (m administrationModel) toEntity() entities.Administration {
	return entities.Administration{
		Administrator:         m.Administrator,
		ProposedAdministrator: m.ProposedAdministrator,
		Paused:                m.Paused,
		UpdatedAt:             m.UpdatedAt.UTC(),
	}
}

type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		db:     db,
		logger: logger,
	}
}

func (r *Repository) Migrate(ctx context.Context) error {
	return r.db.WithContext(ctx).AutoMigrate(&administrationModel{})
}

// Seed inserts the initial administrator if no governance record exists yet.
func (r *Repository) Seed(ctx context.Context, administrator string, at time.Time) error {
	if administrator == "" {
		return domainerrors.ErrInvalidInput
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&administrationModel{
			ID:            administrationRowID,
			Administrator: administrator,
			UpdatedAt:     at.UTC(),
		}).
		Error
}

func (r *Repository) GetAdministration(ctx context.Context) (entities.Administration, error) {
	var row administrationModel
	err := r.db.WithContext(ctx).
		Where("id = ?", administrationRowID).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Administration{}, domainerrors.ErrInvalidInput
		}
		return entities.Administration{}, err
	}
	return row.toEntity(), nil
}

func (r *Repository) SaveAdministration(ctx context.Context, record entities.Administration) error {
	if record.Administrator == "" {
		return domainerrors.ErrInvalidInput
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).
		Create(&administrationModel{
			ID:                    administrationRowID,
			Administrator:         record.Administrator,
			ProposedAdministrator: record.ProposedAdministrator,
			Paused:                record.Paused,
			UpdatedAt:             record.UpdatedAt.UTC(),
		}).
		Error
}

type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}
