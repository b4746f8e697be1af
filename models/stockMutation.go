package models

import (
	"context"
	"time"

	"bitbucket.org/mmdatafocus/retail_backend/config"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// StockMutation is the append-only audit record of every stock change.
// Business fields are immutable once created; corrections are new mutations
// referencing the prior one via notes. Only the sync bookkeeping columns
// (sync_state, sync_attempts, last_sync_error, synced_at) ever transition,
// driven by the primary-system signal and its retries.
type StockMutation struct {
	ID             int             `gorm:"primary_key" json:"id"`
	ExternalId     string          `gorm:"size:36;uniqueIndex;not null" json:"external_id"`
	Type           MutationType    `gorm:"type:enum('Increase','Decrease','Transfer');not null" json:"type"`
	ItemId         int             `gorm:"index;not null" json:"item_id"`
	FromLocationId int             `gorm:"index;not null" json:"from_location_id"`
	ToLocationId   *int            `gorm:"index" json:"to_location_id"`
	ToItemId       *int            `gorm:"index" json:"to_item_id"`
	Quantity       decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"quantity"`
	Reason         string          `gorm:"size:100;not null" json:"reason"`
	Notes          string          `gorm:"type:text" json:"notes"`
	ActorId        int             `gorm:"index;not null" json:"actor_id"`
	CorrelationId  string          `gorm:"size:36;index" json:"correlation_id"`
	SyncState      SyncState       `gorm:"type:enum('synced','pending');not null;default:'synced';index" json:"sync_state"`
	SyncAttempts   int             `gorm:"not null;default:0" json:"sync_attempts"`
	LastSyncError  string          `gorm:"type:text" json:"last_sync_error"`
	SyncedAt       *time.Time      `json:"synced_at"`
	CreatedAt      time.Time       `gorm:"autoCreateTime;index" json:"created_at"`
}

// AppendStockMutation writes the audit row inside the caller's transaction.
func AppendStockMutation(tx *gorm.DB, mutation *StockMutation) error {
	return tx.Create(mutation).Error
}

// MarkMutationSynced transitions a pending mutation once the primary system
// acknowledges the quantity change.
func MarkMutationSynced(ctx context.Context, id int) error {
	db := config.GetDB()
	now := time.Now()
	return db.WithContext(ctx).Model(&StockMutation{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"SyncState": SyncStateSynced,
			"SyncedAt":  &now,
		}).Error
}

// MarkMutationSyncFailed records a failed primary-system signal. The mutation
// stays pending and will be retried; it is never dropped.
func MarkMutationSyncFailed(ctx context.Context, id int, syncErr error) error {
	db := config.GetDB()
	return db.WithContext(ctx).Model(&StockMutation{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"SyncState":     SyncStatePending,
			"SyncAttempts":  gorm.Expr("sync_attempts + 1"),
			"LastSyncError": syncErr.Error(),
		}).Error
}

func ListPendingSyncMutations(ctx context.Context, limit int) ([]*StockMutation, error) {
	db := config.GetDB()
	var results []*StockMutation
	err := db.WithContext(ctx).
		Where("sync_state = ?", SyncStatePending).
		Order("id").
		Limit(limit).
		Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

type StockMutationFilter struct {
	ItemId     *int
	LocationId *int
	ActorId    *int
	From       *time.Time
	To         *time.Time
	Limit      int
	Cursor     *string
}

type StockMutationPage struct {
	Mutations []*StockMutation `json:"mutations"`
	PageInfo  PageInfo         `json:"pageInfo"`
}

// PaginateStockMutations serves the audit query surface: filter by item,
// location, actor, date range; stable order (created_at DESC, id DESC) with a
// base64 composite cursor.
func PaginateStockMutations(ctx context.Context, filter StockMutationFilter) (*StockMutationPage, error) {

	limit := filter.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	db := config.GetDB()
	dbCtx := db.WithContext(ctx).Model(&StockMutation{})

	if filter.ItemId != nil {
		dbCtx = dbCtx.Where("item_id = ? OR to_item_id = ?", *filter.ItemId, *filter.ItemId)
	}
	if filter.LocationId != nil {
		dbCtx = dbCtx.Where("from_location_id = ? OR to_location_id = ?", *filter.LocationId, *filter.LocationId)
	}
	if filter.ActorId != nil {
		dbCtx = dbCtx.Where("actor_id = ?", *filter.ActorId)
	}
	if filter.From != nil {
		dbCtx = dbCtx.Where("created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		dbCtx = dbCtx.Where("created_at <= ?", *filter.To)
	}

	createdAt, id := DecodeCompositeCursor(filter.Cursor)
	if createdAt != "" {
		dbCtx = dbCtx.Where("(created_at < ?) OR (created_at = ? AND id < ?)", createdAt, createdAt, id)
	}

	var results []*StockMutation
	// fetch one extra row to compute HasNextPage
	if err := dbCtx.Order("created_at DESC, id DESC").Limit(limit + 1).Find(&results).Error; err != nil {
		return nil, err
	}

	hasNext := len(results) > limit
	if hasNext {
		results = results[:limit]
	}

	page := &StockMutationPage{Mutations: results}
	page.PageInfo.HasNextPage = &hasNext
	if len(results) > 0 {
		first := results[0]
		last := results[len(results)-1]
		page.PageInfo.StartCursor = EncodeCompositeCursor(first.CreatedAt.UTC().Format(time.RFC3339Nano), first.ID)
		page.PageInfo.EndCursor = EncodeCompositeCursor(last.CreatedAt.UTC().Format(time.RFC3339Nano), last.ID)
	}
	return page, nil
}
