package postgresadapter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"fatcow/contexts/market-core/marketplace-service/domain/entities"
	domainerrors "fatcow/contexts/market-core/marketplace-service/domain/errors"
	"fatcow/contexts/market-core/marketplace-service/ports"
	"fatcow/internal/shared/feesplit"
	"fatcow/internal/shared/outbox"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// The listing id counter and the fee settings are singleton rows.
const (
	counterRowID  = 1
	settingsRowID = 1
)

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
	return r.db.WithContext(ctx).AutoMigrate(
		&counterModel{},
		&listingModel{},
		&settingsModel{},
		&outboxModel{},
		&idempotencyModel{},
	)
}

// Seed inserts the counter and settings rows if the marketplace is empty.
func (r *Repository) Seed(ctx context.Context) error {
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&counterModel{ID: counterRowID, NextListingID: 0}).
		Error; err != nil {
		return err
	}
	settings, err := settingsModelFromEntity(entities.Settings{})
	if err != nil {
		return err
	}
	settings.ID = settingsRowID
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&settings).
		Error
}

func (r *Repository) NextListingID(ctx context.Context) (uint64, error) {
	var row counterModel
	err := r.db.WithContext(ctx).
		Where("id = ?", counterRowID).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, r.logError("market_repo_next_listing_id_failed", err)
	}
	return row.NextListingID, nil
}

func (r *Repository) GetListing(ctx context.Context, listingID uint64) (entities.Listing, error) {
	var row listingModel
	err := r.db.WithContext(ctx).
		Where("listing_id = ?", listingID).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Listing{}, domainerrors.ErrListingNotFound
		}
		return entities.Listing{}, r.logError("market_repo_get_listing_failed", err, "listing_id", listingID)
	}
	return row.toEntity(), nil
}

func (r *Repository) ListUserListings(
	ctx context.Context,
	user string,
	limit int,
	offset int,
) ([]entities.Listing, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	var rows []listingModel
	if err := r.db.WithContext(ctx).
		Where("seller = ? OR buyer = ?", user, user).
		Order("listing_id DESC").
		Limit(limit).
		Offset(offset).
		Find(&rows).Error; err != nil {
		return nil, r.logError("market_repo_list_user_listings_failed", err, "user", user)
	}
	items := make([]entities.Listing, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) CreateListingWithOutbox(
	ctx context.Context,
	listing entities.Listing,
	envelopes []ports.EventEnvelope,
) error {
	row := listingModelFromEntity(listing)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// The counter bump is guarded on the expected value so a concurrent
		// create that won the race rolls this one back.
		bump := tx.Model(&counterModel{}).
			Where("id = ?", counterRowID).
			Where("next_listing_id = ?", listing.ListingID).
			Update("next_listing_id", listing.ListingID+1)
		if bump.Error != nil {
			return bump.Error
		}
		if bump.RowsAffected == 0 {
			return domainerrors.ErrConflict
		}
		if err := tx.Create(&row).Error; err != nil {
			return err
		}
		for _, envelope := range envelopes {
			if err := appendOutboxTx(tx, envelope); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, domainerrors.ErrConflict) || isUniqueViolation(err) {
			return domainerrors.ErrConflict
		}
		return r.logError("market_repo_create_listing_failed", err, "listing_id", listing.ListingID)
	}
	return nil
}

func (r *Repository) UpdateListingWithOutbox(
	ctx context.Context,
	listing entities.Listing,
	envelopes []ports.EventEnvelope,
) error {
	row := listingModelFromEntity(listing)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		update := tx.Model(&listingModel{}).
			Where("listing_id = ?", listing.ListingID).
			Updates(map[string]any{
				"buyer":      row.Buyer,
				"state":      row.State,
				"last_actor": row.LastActor,
				"updated_at": row.UpdatedAt,
			})
		if update.Error != nil {
			return update.Error
		}
		if update.RowsAffected == 0 {
			return domainerrors.ErrListingNotFound
		}
		for _, envelope := range envelopes {
			if err := appendOutboxTx(tx, envelope); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, domainerrors.ErrListingNotFound) || errors.Is(err, domainerrors.ErrConflict) {
			return err
		}
		return r.logError("market_repo_update_listing_failed", err, "listing_id", listing.ListingID)
	}
	return nil
}

func (r *Repository) GetSettings(ctx context.Context) (entities.Settings, error) {
	var row settingsModel
	err := r.db.WithContext(ctx).
		Where("id = ?", settingsRowID).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Settings{}, nil
		}
		return entities.Settings{}, r.logError("market_repo_get_settings_failed", err)
	}
	return row.toEntity()
}

func (r *Repository) SaveSettings(ctx context.Context, settings entities.Settings) error {
	row, err := settingsModelFromEntity(settings)
	if err != nil {
		return r.logError("market_repo_settings_encode_failed", err)
	}
	row.ID = settingsRowID
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).
		Create(&row).Error; err != nil {
		return r.logError("market_repo_save_settings_failed", err)
	}
	return nil
}

func (r *Repository) AppendOutbox(ctx context.Context, envelope ports.EventEnvelope) error {
	if err := appendOutboxTx(r.db.WithContext(ctx), envelope); err != nil {
		if errors.Is(err, domainerrors.ErrConflict) {
			return err
		}
		return r.logError("market_repo_append_outbox_failed", err,
			"event_id", strings.TrimSpace(envelope.EventID),
			"event_type", strings.TrimSpace(envelope.EventType),
		)
	}
	return nil
}

func appendOutboxTx(tx *gorm.DB, envelope ports.EventEnvelope) error {
	payload, err := json.Marshal(envelope)
	if err != nil {
		return err
	}
	row := outboxModel{
		OutboxID:     strings.TrimSpace(envelope.EventID),
		EventType:    strings.TrimSpace(envelope.EventType),
		PartitionKey: strings.TrimSpace(envelope.PartitionKey),
		Payload:      payload,
		Status:       outbox.StatusPending,
		CreatedAt:    envelope.OccurredAt.UTC(),
	}
	if row.OutboxID == "" {
		row.OutboxID = uuid.NewString()
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	create := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "outbox_id"}},
		DoNothing: true,
	}).Create(&row)
	if create.Error != nil {
		return create.Error
	}
	if create.RowsAffected > 0 {
		return nil
	}

	var existing outboxModel
	if err := tx.
		Select("payload").
		Where("outbox_id = ?", row.OutboxID).
		First(&existing).Error; err != nil {
		return err
	}
	if !bytes.Equal(existing.Payload, row.Payload) {
		return domainerrors.ErrConflict
	}
	return nil
}

func (r *Repository) ListPendingOutbox(ctx context.Context, limit int) ([]ports.OutboxMessage, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []outboxModel
	if err := r.db.WithContext(ctx).
		Where("status = ?", outbox.StatusPending).
		Order("seq ASC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, r.logError("market_repo_list_pending_outbox_failed", err, "limit", limit)
	}
	items := make([]ports.OutboxMessage, 0, len(rows))
	for _, row := range rows {
		items = append(items, ports.OutboxMessage{
			OutboxID:     row.OutboxID,
			EventType:    row.EventType,
			PartitionKey: row.PartitionKey,
			Payload:      append([]byte(nil), row.Payload...),
			Status:       row.Status,
			CreatedAt:    row.CreatedAt.UTC(),
		})
	}
	return items, nil
}

func (r *Repository) MarkOutboxSent(ctx context.Context, outboxID string, sentAt time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&outboxModel{}).
		Where("outbox_id = ?", strings.TrimSpace(outboxID)).
		Updates(map[string]any{
			"status":  outbox.StatusSent,
			"sent_at": sentAt.UTC(),
		})
	if result.Error != nil {
		return r.logError("market_repo_mark_outbox_sent_failed", result.Error,
			"outbox_id", strings.TrimSpace(outboxID),
		)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrConflict
	}
	return nil
}

func (r *Repository) GetRecord(
	ctx context.Context,
	key string,
	now time.Time,
) (ports.IdempotencyRecord, bool, error) {
	var row idempotencyModel
	err := r.db.WithContext(ctx).
		Where("key = ?", strings.TrimSpace(key)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.IdempotencyRecord{}, false, nil
		}
		return ports.IdempotencyRecord{}, false, r.logError("market_repo_get_idempotency_failed", err)
	}
	if !row.ExpiresAt.IsZero() && now.UTC().After(row.ExpiresAt.UTC()) {
		return ports.IdempotencyRecord{}, false, nil
	}
	return ports.IdempotencyRecord{
		Key:             row.Key,
		RequestHash:     row.RequestHash,
		ResponsePayload: append([]byte(nil), row.ResponsePayload...),
		ExpiresAt:       row.ExpiresAt.UTC(),
	}, true, nil
}

func (r *Repository) PutRecord(ctx context.Context, record ports.IdempotencyRecord) error {
	row := idempotencyModel{
		Key:             strings.TrimSpace(record.Key),
		RequestHash:     record.RequestHash,
		ResponsePayload: append([]byte(nil), record.ResponsePayload...),
		ExpiresAt:       record.ExpiresAt.UTC(),
	}
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			UpdateAll: true,
		}).
		Create(&row).Error; err != nil {
		return r.logError("market_repo_put_idempotency_failed", err, "key", row.Key)
	}
	return nil
}

func (r *Repository) logError(event string, err error, attrs ...any) error {
	fields := make([]any, 0, len(attrs)+8)
	fields = append(fields,
		"event", event,
		"module", "market-core/marketplace-service",
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	r.logger.Error("marketplace repository operation failed", fields...)
	return err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

type counterModel struct {
	ID            int    `gorm:"column:id;primaryKey"`
	NextListingID uint64 `gorm:"column:next_listing_id"`
}

func (counterModel) TableName() string {
	return "market_counter"
}

type listingModel struct {
	ListingID     uint64    `gorm:"column:listing_id;primaryKey"`
	LedgerAddress string    `gorm:"column:ledger_address"`
	TokenID       uint64    `gorm:"column:token_id;index"`
	Seller        string    `gorm:"column:seller;index"`
	Buyer         string    `gorm:"column:buyer;index"`
	PriceMutez    uint64    `gorm:"column:price_mutez"`
	State         string    `gorm:"column:state;index"`
	LastActor     string    `gorm:"column:last_actor"`
	CreatedAt     time.Time `gorm:"column:created_at"`
	UpdatedAt     time.Time `gorm:"column:updated_at"`
}

func (listingModel) TableName() string {
	return "market_listings"
}

func listingModelFromEntity(listing entities.Listing) listingModel {
	return listingModel{
		ListingID:     listing.ListingID,
		LedgerAddress: strings.TrimSpace(listing.LedgerAddress),
		TokenID:       listing.TokenID,
		Seller:        strings.TrimSpace(listing.Seller),
		Buyer:         strings.TrimSpace(listing.Buyer),
		PriceMutez:    listing.PriceMutez,
		State:         string(listing.State),
		LastActor:     strings.TrimSpace(listing.LastActor),
		CreatedAt:     listing.CreatedAt.UTC(),
		UpdatedAt:     listing.UpdatedAt.UTC(),
	}
}

func (m listingModel) toEntity() entities.Listing {
	return entities.Listing{
		ListingID:     m.ListingID,
		LedgerAddress: m.LedgerAddress,
		TokenID:       m.TokenID,
		Seller:        m.Seller,
		Buyer:         m.Buyer,
		PriceMutez:    m.PriceMutez,
		State:         entities.ListingState(m.State),
		LastActor:     m.LastActor,
		CreatedAt:     m.CreatedAt.UTC(),
		UpdatedAt:     m.UpdatedAt.UTC(),
	}
}

type settingsModel struct {
	ID              int       `gorm:"column:id;primaryKey"`
	ListingFeeMutez uint64    `gorm:"column:listing_fee_mutez"`
	FeeLines        []byte    `gorm:"column:fee_lines"`
	UpdatedAt       time.Time `gorm:"column:updated_at"`
}

func (settingsModel) TableName() string {
	return "market_settings"
}

// settingsLines is the JSON shape of the configurable fee lines.
type settingsLines struct {
	MinterRoyalty  feesplit.Line   `json:"minter_royalty"`
	CreatorRoyalty feesplit.Line   `json:"creator_royalty"`
	Commission     feesplit.Line   `json:"commission"`
	Donations      []feesplit.Line `json:"donations,omitempty"`
}

func settingsModelFromEntity(settings entities.Settings) (settingsModel, error) {
	lines, err := json.Marshal(settingsLines{
		MinterRoyalty:  settings.MinterRoyalty,
		CreatorRoyalty: settings.CreatorRoyalty,
		Commission:     settings.Commission,
		Donations:      settings.Donations,
	})
	if err != nil {
		return settingsModel{}, err
	}
	return settingsModel{
		ListingFeeMutez: settings.ListingFeeMutez,
		FeeLines:        lines,
		UpdatedAt:       settings.UpdatedAt.UTC(),
	}, nil
}

func (m settingsModel) toEntity() (entities.Settings, error) {
	var lines settingsLines
	if len(m.FeeLines) > 0 {
		if err := json.Unmarshal(m.FeeLines, &lines); err != nil {
			return entities.Settings{}, err
		}
	}
	return entities.Settings{
		ListingFeeMutez: m.ListingFeeMutez,
		MinterRoyalty:   lines.MinterRoyalty,
		CreatorRoyalty:  lines.CreatorRoyalty,
		Commission:      lines.Commission,
		Donations:       lines.Donations,
		UpdatedAt:       m.UpdatedAt.UTC(),
	}, nil
}

type outboxModel struct {
	Seq          uint64     `gorm:"column:seq;primaryKey;autoIncrement"`
	OutboxID     string     `gorm:"column:outbox_id;uniqueIndex"`
	EventType    string     `gorm:"column:event_type"`
	PartitionKey string     `gorm:"column:partition_key"`
	Payload      []byte     `gorm:"column:payload"`
	Status       string     `gorm:"column:status;index"`
	CreatedAt    time.Time  `gorm:"column:created_at"`
	SentAt       *time.Time `gorm:"column:sent_at"`
}

func (outboxModel) TableName() string {
	return "market_outbox"
}

type idempotencyModel struct {
	Key             string    `gorm:"column:key;primaryKey"`
	RequestHash     string    `gorm:"column:request_hash"`
	ResponsePayload []byte    `gorm:"column:response_payload"`
	ExpiresAt       time.Time `gorm:"column:expires_at"`
}

func (idempotencyModel) TableName() string {
	return "market_idempotency"
}

type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

type UUIDGenerator struct{}

func (UUIDGenerator) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

var _ ports.ListingRepository = (*Repository)(nil)
var _ ports.SettingsRepository = (*Repository)(nil)
var _ ports.OutboxWriter = (*Repository)(nil)
var _ ports.OutboxRepository = (*Repository)(nil)
var _ ports.IdempotencyStore = (*Repository)(nil)
