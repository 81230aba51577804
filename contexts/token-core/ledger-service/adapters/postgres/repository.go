package postgresadapter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"fatcow/contexts/token-core/ledger-service/domain/entities"
	domainerrors "fatcow/contexts/token-core/ledger-service/domain/errors"
	"fatcow/contexts/token-core/ledger-service/ports"
	"fatcow/internal/shared/outbox"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// The token id counter is a singleton row.
const counterRowID = 1

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
		&tokenModel{},
		&operatorModel{},
		&outboxModel{},
		&eventDedupModel{},
	)
}

// Seed inserts the counter row at zero if the ledger is empty.
func (r *Repository) Seed(ctx context.Context) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&counterModel{ID: counterRowID, NextTokenID: 0}).
		Error
}

func (r *Repository) NextTokenID(ctx context.Context) (uint64, error) {
	var row counterModel
	err := r.db.WithContext(ctx).
		Where("id = ?", counterRowID).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, r.logError("ledger_repo_next_token_id_failed", err)
	}
	return row.NextTokenID, nil
}

func (r *Repository) GetToken(ctx context.Context, tokenID uint64) (entities.Token, error) {
	var row tokenModel
	err := r.db.WithContext(ctx).
		Where("token_id = ?", tokenID).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Token{}, domainerrors.ErrTokenUndefined
		}
		return entities.Token{}, r.logError("ledger_repo_get_token_failed", err, "token_id", tokenID)
	}
	return row.toEntity()
}

func (r *Repository) ListTokens(ctx context.Context, limit int, offset int) ([]entities.Token, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	var rows []tokenModel
	if err := r.db.WithContext(ctx).
		Order("token_id ASC").
		Limit(limit).
		Offset(offset).
		Find(&rows).Error; err != nil {
		return nil, r.logError("ledger_repo_list_tokens_failed", err, "limit", limit, "offset", offset)
	}
	items := make([]entities.Token, 0, len(rows))
	for _, row := range rows {
		token, err := row.toEntity()
		if err != nil {
			return nil, r.logError("ledger_repo_token_decode_failed", err, "token_id", row.TokenID)
		}
		items = append(items, token)
	}
	return items, nil
}

func (r *Repository) CreateTokenWithOutbox(
	ctx context.Context,
	token entities.Token,
	envelope ports.EventEnvelope,
) error {
	row, err := tokenModelFromEntity(token)
	if err != nil {
		return r.logError("ledger_repo_token_encode_failed", err, "token_id", token.TokenID)
	}
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// The counter bump is guarded on the expected value so a concurrent
		// mint that won the race rolls this one back.
		bump := tx.Model(&counterModel{}).
			Where("id = ?", counterRowID).
			Where("next_token_id = ?", token.TokenID).
			Update("next_token_id", token.TokenID+1)
		if bump.Error != nil {
			return bump.Error
		}
		if bump.RowsAffected == 0 {
			return domainerrors.ErrConflict
		}
		if err := tx.Create(&row).Error; err != nil {
			return err
		}
		return appendOutboxTx(tx, envelope)
	})
	if err != nil {
		if errors.Is(err, domainerrors.ErrConflict) || isUniqueViolation(err) {
			return domainerrors.ErrConflict
		}
		return r.logError("ledger_repo_create_token_failed", err, "token_id", token.TokenID)
	}
	return nil
}

func (r *Repository) ApplyOwnerChangesWithOutbox(
	ctx context.Context,
	changes []ports.OwnerChange,
	envelope ports.EventEnvelope,
) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, change := range changes {
			update := tx.Model(&tokenModel{}).
				Where("token_id = ?", change.TokenID).
				Update("owner", strings.TrimSpace(change.NewOwner))
			if update.Error != nil {
				return update.Error
			}
			if update.RowsAffected == 0 {
				return domainerrors.ErrTokenUndefined
			}
		}
		return appendOutboxTx(tx, envelope)
	})
	if err != nil {
		if errors.Is(err, domainerrors.ErrTokenUndefined) || errors.Is(err, domainerrors.ErrConflict) {
			return err
		}
		return r.logError("ledger_repo_apply_owner_changes_failed", err, "change_count", len(changes))
	}
	return nil
}

func (r *Repository) HasOperator(ctx context.Context, key entities.OperatorKey) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&operatorModel{}).
		Where("owner = ?", key.Owner).
		Where("operator = ?", key.Operator).
		Where("token_id = ?", key.TokenID).
		Count(&count).
		Error
	if err != nil {
		return false, r.logError("ledger_repo_has_operator_failed", err,
			"owner", key.Owner,
			"operator", key.Operator,
			"token_id", key.TokenID,
		)
	}
	return count > 0, nil
}

func (r *Repository) ApplyOperatorUpdates(ctx context.Context, updates []entities.OperatorUpdate) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, update := range updates {
			row := operatorModel{
				Owner:    strings.TrimSpace(update.Key.Owner),
				Operator: strings.TrimSpace(update.Key.Operator),
				TokenID:  update.Key.TokenID,
			}
			switch update.Kind {
			case entities.OperatorAdd:
				if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error; err != nil {
					return err
				}
			case entities.OperatorRemove:
				// Removing an absent grant is a silent no-op.
				if err := tx.
					Where("owner = ?", row.Owner).
					Where("operator = ?", row.Operator).
					Where("token_id = ?", row.TokenID).
					Delete(&operatorModel{}).Error; err != nil {
					return err
				}
			default:
				return domainerrors.ErrInvalidInput
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, domainerrors.ErrInvalidInput) {
			return err
		}
		return r.logError("ledger_repo_apply_operator_updates_failed", err, "update_count", len(updates))
	}
	return nil
}

func (r *Repository) AppendOutbox(ctx context.Context, envelope ports.EventEnvelope) error {
	if err := appendOutboxTx(r.db.WithContext(ctx), envelope); err != nil {
		if errors.Is(err, domainerrors.ErrConflict) {
			return err
		}
		return r.logError("ledger_repo_append_outbox_failed", err,
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
		return nil, r.logError("ledger_repo_list_pending_outbox_failed", err, "limit", limit)
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
		return r.logError("ledger_repo_mark_outbox_sent_failed", result.Error,
			"outbox_id", strings.TrimSpace(outboxID),
		)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrConflict
	}
	return nil
}

func (r *Repository) ReserveEvent(
	ctx context.Context,
	eventID string,
	payloadHash string,
	expiresAt time.Time,
) (bool, error) {
	row := eventDedupModel{
		EventID:     strings.TrimSpace(eventID),
		PayloadHash: strings.TrimSpace(payloadHash),
		ExpiresAt:   expiresAt.UTC(),
		ProcessedAt: time.Now().UTC(),
	}
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "event_id"}},
		DoNothing: true,
	}).Create(&row)
	if create.Error != nil {
		return false, r.logError("ledger_repo_reserve_event_failed", create.Error,
			"event_id", strings.TrimSpace(eventID),
		)
	}
	if create.RowsAffected > 0 {
		return false, nil
	}

	var existing eventDedupModel
	if err := r.db.WithContext(ctx).
		Select("payload_hash").
		Where("event_id = ?", row.EventID).
		First(&existing).Error; err != nil {
		return false, r.logError("ledger_repo_reserve_event_load_existing_failed", err,
			"event_id", strings.TrimSpace(eventID),
		)
	}
	if existing.PayloadHash != row.PayloadHash {
		return false, domainerrors.ErrConflict
	}
	return true, nil
}

func (r *Repository) logError(event string, err error, attrs ...any) error {
	fields := make([]any, 0, len(attrs)+8)
	fields = append(fields,
		"event", event,
		"module", "token-core/ledger-service",
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	r.logger.Error("ledger repository operation failed", fields...)
	return err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

type counterModel struct {
	ID          int    `gorm:"column:id;primaryKey"`
	NextTokenID uint64 `gorm:"column:next_token_id"`
}

func (counterModel) TableName() string {
	return "ledger_counter"
}

type tokenModel struct {
	TokenID  uint64    `gorm:"column:token_id;primaryKey"`
	Owner    string    `gorm:"column:owner;index"`
	Metadata []byte    `gorm:"column:metadata"`
	MintedAt time.Time `gorm:"column:minted_at"`
}

func (tokenModel) TableName() string {
	return "ledger_tokens"
}

func tokenModelFromEntity(token entities.Token) (tokenModel, error) {
	metadata, err := json.Marshal(token.Metadata)
	if err != nil {
		return tokenModel{}, err
	}
	return tokenModel{
		TokenID:  token.TokenID,
		Owner:    strings.TrimSpace(token.Owner),
		Metadata: metadata,
		MintedAt: token.MintedAt.UTC(),
	}, nil
}

func (m tokenModel) toEntity() (entities.Token, error) {
	metadata := make(map[string][]byte)
	if len(m.Metadata) > 0 {
		if err := json.Unmarshal(m.Metadata, &metadata); err != nil {
			return entities.Token{}, err
		}
	}
	return entities.Token{
		TokenID:  m.TokenID,
		Owner:    m.Owner,
		Metadata: metadata,
		MintedAt: m.MintedAt.UTC(),
	}, nil
}

type operatorModel struct {
	Owner    string `gorm:"column:owner;primaryKey"`
	Operator string `gorm:"column:operator;primaryKey"`
	TokenID  uint64 `gorm:"column:token_id;primaryKey"`
}

func (operatorModel) TableName() string {
	return "ledger_operators"
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
	return "ledger_outbox"
}

type eventDedupModel struct {
	EventID     string    `gorm:"column:event_id;primaryKey"`
	PayloadHash string    `gorm:"column:payload_hash"`
	ExpiresAt   time.Time `gorm:"column:expires_at"`
	ProcessedAt time.Time `gorm:"column:processed_at"`
}

func (eventDedupModel) TableName() string {
	return "ledger_event_dedup"
}

type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

type UUIDGenerator struct{}

func (UUIDGenerator) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

var _ ports.LedgerRepository = (*Repository)(nil)
var _ ports.OperatorRegistry = (*Repository)(nil)
var _ ports.OutboxWriter = (*Repository)(nil)
var _ ports.OutboxRepository = (*Repository)(nil)
var _ ports.EventDedupStore = (*Repository)(nil)
