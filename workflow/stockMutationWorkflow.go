package workflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bitbucket.org/mmdatafocus/retail_backend/config"
	"bitbucket.org/mmdatafocus/retail_backend/models"
	"bitbucket.org/mmdatafocus/retail_backend/posclient"
	"bitbucket.org/mmdatafocus/retail_backend/utils"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// primaryClient signals the POS after local writes commit. nil means the
// primary system is unavailable (e.g. dev without POS_API_KEY); mutations are
// then recorded locally only.
var primaryClient posclient.Client

func SetPrimaryClient(client posclient.Client) {
	primaryClient = client
}

// NewStockMutation is the request body for increase/decrease/transfer.
// Quantity is always positive; the mutation type decides the direction.
type NewStockMutation struct {
	ItemId       int             `json:"item_id" binding:"required"`
	Quantity     decimal.Decimal `json:"quantity" binding:"required"`
	Reason       string          `json:"reason"`
	Notes        string          `json:"notes"`
	ToLocationId int             `json:"to_location_id"`
}

func (input *NewStockMutation) validate(ctx context.Context) error {
	if !input.Quantity.IsPositive() {
		return models.NewValidationError("quantity must be greater than zero")
	}
	// business invariant, enforced before any write
	return models.ValidateReason(ctx, input.Reason)
}

func correlationIdFromContextOrNew(ctx context.Context) string {
	if ctx != nil {
		if v, ok := utils.GetCorrelationIdFromContext(ctx); ok && v != "" {
			return v
		}
	}
	return uuid.NewString()
}

// lockItemRow re-reads the item under SELECT ... FOR UPDATE inside the tx.
func lockItemRow(tx *gorm.DB, itemId int) (*models.PrimaryItem, error) {
	var item models.PrimaryItem
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", itemId).
		First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ErrorRecordNotFound
		}
		return nil, err
	}
	return &item, nil
}

// IncreaseStock always succeeds when the item exists and the request is
// valid; resulting quantity = current + quantity.
func IncreaseStock(ctx context.Context, input *NewStockMutation) (*models.StockMutation, error) {

	ctx, span := tracer.Start(ctx, "workflow.IncreaseStock")
	defer span.End()

	if err := input.validate(ctx); err != nil {
		return nil, err
	}
	item, err := models.GetPrimaryItem(ctx, input.ItemId)
	if err != nil {
		return nil, err
	}

	release := stockLocks.acquire(stockLockKey(item.LocationId, item.ID))
	defer release()

	mutation := newMutationRecord(ctx, models.MutationTypeIncrease, item, input)

	db := config.GetDB()
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		locked, err := lockItemRow(tx, item.ID)
		if err != nil {
			return err
		}
		newQty := locked.QuantityOnHand.Add(input.Quantity)
		if err := tx.Model(&models.PrimaryItem{}).Where("id = ?", locked.ID).
			Update("quantity_on_hand", newQty).Error; err != nil {
			return err
		}
		return models.AppendStockMutation(tx, mutation)
	})
	if err != nil {
		return nil, err
	}

	signalPrimary(ctx, mutation)
	return mutation, nil
}

// DecreaseStock rejects with InsufficientStock before any write when the
// requested quantity exceeds the on-hand quantity.
func DecreaseStock(ctx context.Context, input *NewStockMutation) (*models.StockMutation, error) {

	ctx, span := tracer.Start(ctx, "workflow.DecreaseStock")
	defer span.End()

	if err := input.validate(ctx); err != nil {
		return nil, err
	}
	item, err := models.GetPrimaryItem(ctx, input.ItemId)
	if err != nil {
		return nil, err
	}

	release := stockLocks.acquire(stockLockKey(item.LocationId, item.ID))
	defer release()

	mutation := newMutationRecord(ctx, models.MutationTypeDecrease, item, input)

	db := config.GetDB()
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		locked, err := lockItemRow(tx, item.ID)
		if err != nil {
			return err
		}
		if locked.QuantityOnHand.LessThan(input.Quantity) {
			return &models.InsufficientStockError{
				ItemId:     locked.ID,
				LocationId: locked.LocationId,
				Requested:  input.Quantity,
				OnHand:     locked.QuantityOnHand,
			}
		}
		newQty := locked.QuantityOnHand.Sub(input.Quantity)
		if err := tx.Model(&models.PrimaryItem{}).Where("id = ?", locked.ID).
			Update("quantity_on_hand", newQty).Error; err != nil {
			return err
		}
		return models.AppendStockMutation(tx, mutation)
	})
	if err != nil {
		return nil, err
	}

	signalPrimary(ctx, mutation)
	return mutation, nil
}

// TransferStock moves quantity between the two location records of the same
// logical item. Both legs commit or neither does; no partial transfer is
// observable. A single mutation row carries both location ids.
func TransferStock(ctx context.Context, input *NewStockMutation) (*models.StockMutation, error) {

	ctx, span := tracer.Start(ctx, "workflow.TransferStock")
	defer span.End()

	if err := input.validate(ctx); err != nil {
		return nil, err
	}
	if input.ToLocationId == 0 {
		return nil, models.NewValidationError("to_location_id is required")
	}
	item, err := models.GetPrimaryItem(ctx, input.ItemId)
	if err != nil {
		return nil, err
	}
	if item.LocationId == input.ToLocationId {
		return nil, models.NewValidationError("transfer requires two different locations")
	}
	if err := utils.ValidateResourceId[models.Location](ctx, input.ToLocationId); err != nil {
		return nil, fmt.Errorf("destination location not found: %w", utils.ErrorRecordNotFound)
	}
	counterpart, err := models.GetCounterpartItem(ctx, item, input.ToLocationId)
	if err != nil {
		return nil, fmt.Errorf("item has no record at destination location: %w", err)
	}

	// both pair locks, fixed global order
	release := stockLocks.acquire(
		stockLockKey(item.LocationId, item.ID),
		stockLockKey(counterpart.LocationId, counterpart.ID),
	)
	defer release()

	mutation := newMutationRecord(ctx, models.MutationTypeTransfer, item, input)
	mutation.ToLocationId = &input.ToLocationId
	mutation.ToItemId = &counterpart.ID

	db := config.GetDB()
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// lock rows in id order to match any concurrent transfer
		firstId, secondId := item.ID, counterpart.ID
		if secondId < firstId {
			firstId, secondId = secondId, firstId
		}
		first, err := lockItemRow(tx, firstId)
		if err != nil {
			return err
		}
		second, err := lockItemRow(tx, secondId)
		if err != nil {
			return err
		}
		source, dest := first, second
		if source.ID != item.ID {
			source, dest = second, first
		}

		if source.QuantityOnHand.LessThan(input.Quantity) {
			return &models.InsufficientStockError{
				ItemId:     source.ID,
				LocationId: source.LocationId,
				Requested:  input.Quantity,
				OnHand:     source.QuantityOnHand,
			}
		}

		if err := tx.Model(&models.PrimaryItem{}).Where("id = ?", source.ID).
			Update("quantity_on_hand", source.QuantityOnHand.Sub(input.Quantity)).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.PrimaryItem{}).Where("id = ?", dest.ID).
			Update("quantity_on_hand", dest.QuantityOnHand.Add(input.Quantity)).Error; err != nil {
			return err
		}
		return models.AppendStockMutation(tx, mutation)
	})
	if err != nil {
		return nil, err
	}

	signalPrimary(ctx, mutation)
	return mutation, nil
}

func newMutationRecord(ctx context.Context, mutationType models.MutationType, item *models.PrimaryItem, input *NewStockMutation) *models.StockMutation {
	actorId, _ := utils.GetActorIdFromContext(ctx)

	syncState := models.SyncStateSynced
	if primaryClient != nil {
		// pending until the POS acknowledges the patch
		syncState = models.SyncStatePending
	}

	return &models.StockMutation{
		ExternalId:     uuid.NewString(),
		Type:           mutationType,
		ItemId:         item.ID,
		FromLocationId: item.LocationId,
		Quantity:       input.Quantity,
		Reason:         input.Reason,
		Notes:          input.Notes,
		ActorId:        actorId,
		CorrelationId:  correlationIdFromContextOrNew(ctx),
		SyncState:      syncState,
	}
}

// signalPrimary pushes the post-mutation quantities to the POS. The local
// write already committed: a failed signal leaves the mutation pending and
// the retry worker picks it up. This is a warning, never a hard failure.
func signalPrimary(ctx context.Context, mutation *models.StockMutation) {
	if primaryClient == nil {
		return
	}
	logger := config.GetLogger()

	if err := pushMutationQuantities(ctx, mutation); err != nil {
		config.LogError(logger, "workflow", "signalPrimary", "pushMutationQuantities",
			map[string]any{"mutation_id": mutation.ID}, err)
		if markErr := models.MarkMutationSyncFailed(ctx, mutation.ID, err); markErr != nil {
			config.LogError(logger, "workflow", "signalPrimary", "MarkMutationSyncFailed", nil, markErr)
		}
		mutation.SyncState = models.SyncStatePending
		return
	}
	if err := models.MarkMutationSynced(ctx, mutation.ID); err != nil {
		config.LogError(logger, "workflow", "signalPrimary", "MarkMutationSynced", nil, err)
		return
	}
	mutation.SyncState = models.SyncStateSynced
	now := time.Now()
	mutation.SyncedAt = &now
}

// pushMutationQuantities sends absolute post-mutation quantities, read fresh
// from the DB, so retries stay idempotent.
func pushMutationQuantities(ctx context.Context, mutation *models.StockMutation) error {
	item, err := models.GetPrimaryItem(ctx, mutation.ItemId)
	if err != nil {
		return err
	}
	if err := primaryClient.PatchQuantity(ctx, item.PosItemId, fmt.Sprint(item.LocationId), item.QuantityOnHand); err != nil {
		return err
	}
	if mutation.ToItemId != nil {
		dest, err := models.GetPrimaryItem(ctx, *mutation.ToItemId)
		if err != nil {
			return err
		}
		if err := primaryClient.PatchQuantity(ctx, dest.PosItemId, fmt.Sprint(dest.LocationId), dest.QuantityOnHand); err != nil {
			return err
		}
	}
	return nil
}
