package journal

import (
	"context"
	"errors"
	"fmt"

	"satch-client/internal/app/ledgererr"

	"github.com/gagliardetto/solana-go"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrEntryNotFound = errors.New("journal entry not found")

type Repository interface {
	Begin(ctx context.Context, useCase string, target solana.PublicKey) (string, error)
	Complete(ctx context.Context, id string, sig solana.Signature, confirmed bool, outcome error) error
	Get(ctx context.Context, id string) (Entry, error)
	OpenEntries(ctx context.Context) ([]Entry, error)
	Resolve(ctx context.Context, id string, status Status, detail string) error
	MarkChecked(ctx context.Context, id string) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Begin(ctx context.Context, useCase string, target solana.PublicKey) (string, error) {
	entryId, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}

	result := r.db.WithContext(ctx).Create(&Entry{
		EntryId: entryId.String(),
		UseCase: useCase,
		Target:  target.String(),
		Status:  StatusPending,
	})
	return entryId.String(), result.Error
}

// Complete stores the submit outcome. A lost answer stays open for the reconciler.
func (r *repository) Complete(ctx context.Context, id string, sig solana.Signature, confirmed bool, outcome error) error {
	updates := map[string]interface{}{}
	if sig != (solana.Signature{}) {
		updates["signature"] = sig.String()
	}

	switch {
	case outcome == nil && confirmed:
		updates["status"] = StatusConfirmed
	case outcome == nil:
		updates["status"] = StatusSubmitted
	case errors.Is(outcome, ledgererr.ErrUnknownOutcome):
		updates["status"] = StatusUnknown
		updates["detail"] = outcome.Error()
	default:
		code, _ := ledgererr.Classify(outcome)
		updates["status"] = StatusRejected
		updates["reason_code"] = string(code)
		updates["detail"] = outcome.Error()
	}
	return r.update(ctx, id, updates)
}

func (r *repository) Get(ctx context.Context, id string) (Entry, error) {
	var entry Entry
	result := r.db.WithContext(ctx).First(&entry, "entry_id = ?", id)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return entry, fmt.Errorf("%w: %s", ErrEntryNotFound, id)
	}
	return entry, result.Error
}

func (r *repository) OpenEntries(ctx context.Context) ([]Entry, error) {
	var entries []Entry
	result := r.db.WithContext(ctx).
		Where("status IN ?", []Status{StatusPending, StatusUnknown}).
		Order("created_at").
		Find(&entries)
	return entries, result.Error
}

func (r *repository) Resolve(ctx context.Context, id string, status Status, detail string) error {
	return r.update(ctx, id, map[string]interface{}{
		"status": status,
		"detail": detail,
		"checks": gorm.Expr("checks + 1"),
	})
}

func (r *repository) MarkChecked(ctx context.Context, id string) error {
	return r.update(ctx, id, map[string]interface{}{"checks": gorm.Expr("checks + 1")})
}

func (r *repository) update(ctx context.Context, id string, updates map[string]interface{}) error {
	result := r.db.WithContext(ctx).Model(&Entry{}).Where("entry_id = ?", id).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", ErrEntryNotFound, id)
	}
	return nil
}
