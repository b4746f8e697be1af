package workflow

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"bitbucket.org/mmdatafocus/retail_backend/config"
	"bitbucket.org/mmdatafocus/retail_backend/feed"
	"bitbucket.org/mmdatafocus/retail_backend/matcher"
	"bitbucket.org/mmdatafocus/retail_backend/models"
	"bitbucket.org/mmdatafocus/retail_backend/utils"
	"github.com/bsm/redislock"
	"go.opentelemetry.io/otel"
	"gorm.io/gorm"
)

var tracer = otel.Tracer("retail-backend/workflow")

// errorSampleSize caps how many parse errors are returned inline; the rest
// are only counted.
const errorSampleSize = 20

var ErrImportInProgress = errors.New("an import for this vendor and location is already running")

// ImportSummary is the import endpoint response.
// processed == updated + unmatched + len(errors) holds for every import:
// updated counts stored rows holding an active match after the run (new
// auto-matches plus carried-over decisions), matched counts only the
// auto-matches created by this run.
type ImportSummary struct {
	ImportRunId int                `json:"import_run_id"`
	Processed   int                `json:"processed"`
	Updated     int                `json:"updated"`
	Matched     int                `json:"matched"`
	Unmatched   int                `json:"unmatched"`
	ErrorCount  int                `json:"error_count"`
	Errors      []*feed.ParseError `json:"errors"`
}

// ProcessVendorFeed imports one vendor CSV for one location: normalize,
// truncate-and-reload the secondary rows, carry over surviving match
// decisions, auto-match the rest by SKU, and record the run.
//
// A best-effort redis lock serializes concurrent imports of the same
// vendor+location; correctness does not depend on it (the whole reload runs
// in one DB transaction).
func ProcessVendorFeed(ctx context.Context, vendor string, locationId int, raw []byte) (*ImportSummary, error) {

	ctx, span := tracer.Start(ctx, "workflow.ProcessVendorFeed")
	defer span.End()

	if vendor == "" {
		return nil, models.NewValidationError("vendor is required")
	}
	if err := utils.ValidateResourceId[models.Location](ctx, locationId); err != nil {
		return nil, fmt.Errorf("location not found: %w", utils.ErrorRecordNotFound)
	}

	if locker := config.GetRedisLock(); locker != nil {
		lockKey := fmt.Sprintf("import:%s:%d", vendor, locationId)
		lock, err := locker.Obtain(ctx, lockKey, 2*time.Minute, nil)
		if err == redislock.ErrNotObtained {
			return nil, ErrImportInProgress
		}
		if err == nil {
			defer lock.Release(context.WithoutCancel(ctx))
		}
	}

	result := feed.NewNormalizer(raw).Rows()

	actorId, _ := utils.GetActorIdFromContext(ctx)
	summary := &ImportSummary{
		Processed:  result.Processed,
		ErrorCount: len(result.Errors),
	}
	if len(result.Errors) > errorSampleSize {
		summary.Errors = result.Errors[:errorSampleSize]
	} else {
		summary.Errors = result.Errors
	}

	newRows := make([]*models.SecondaryRow, 0, len(result.Rows))
	for _, row := range result.Rows {
		rowVendor := row.Vendor
		if rowVendor == "" {
			rowVendor = vendor
		}
		newRows = append(newRows, &models.SecondaryRow{
			ProductName:  row.ProductName,
			Variant:      row.Variant,
			LocationId:   locationId,
			LocationName: row.LocationName,
			Vendor:       rowVendor,
			Sku:          row.Sku,
			Quantity:     row.Quantity,
			ListPrice:    row.ListPrice,
			CostUnit:     row.CostUnit,
		})
	}

	items, err := models.ListPrimaryItemsByLocation(ctx, locationId)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		run := &models.ImportRun{
			Vendor:     vendor,
			LocationId: locationId,
			ActorId:    actorId,
		}
		if err := models.CreateImportRun(tx, run); err != nil {
			return err
		}
		summary.ImportRunId = run.ID

		for _, row := range newRows {
			row.ImportRunId = run.ID
		}
		inserted, carryOver, err := models.ReplaceSecondaryRows(tx, vendor, locationId, newRows)
		if err != nil {
			return err
		}

		// items already holding an active match (e.g. from another vendor's
		// feed) are not up for grabs
		takenItems := make(map[int]bool)
		var otherMatches []*models.MatchRecord
		if err := tx.Where("location_id = ? AND is_active = true", locationId).
			Find(&otherMatches).Error; err != nil {
			return err
		}
		for _, match := range otherMatches {
			takenItems[match.PrimaryItemId] = true
		}

		// carry surviving decisions over to the new rows first, so a SKU
		// auto-match can never steal an operator's manual pick
		matchedRows := make(map[int]bool)
		for _, row := range inserted {
			prior, ok := carryOver[row.Fingerprint()]
			if !ok || takenItems[prior.PrimaryItemId] {
				continue
			}
			if _, err := models.CreateMatch(tx, row, prior.PrimaryItemId, prior.Method, prior.Score, prior.DecidedBy); err != nil {
				return err
			}
			takenItems[prior.PrimaryItemId] = true
			matchedRows[row.ID] = true
			summary.Updated++
		}

		for _, row := range inserted {
			if matchedRows[row.ID] {
				continue
			}
			proposal := matcher.MatchRow(row, items)
			if proposal.Auto == nil || takenItems[proposal.Auto.Item.ID] {
				summary.Unmatched++
				continue
			}
			if _, err := models.CreateMatch(tx, row, proposal.Auto.Item.ID, models.MatchMethodSku, proposal.Auto.Score, actorId); err != nil {
				return err
			}
			takenItems[proposal.Auto.Item.ID] = true
			summary.Matched++
			summary.Updated++
		}

		run.Processed = summary.Processed
		run.Updated = summary.Updated
		run.Matched = summary.Matched
		run.Unmatched = summary.Unmatched
		run.ErrorCount = summary.ErrorCount
		if len(summary.Errors) > 0 {
			if sample, err := json.Marshal(summary.Errors); err == nil {
				run.ErrorSample = string(sample)
			}
		}
		return tx.Model(run).Updates(map[string]interface{}{
			"Processed":   run.Processed,
			"Updated":     run.Updated,
			"Matched":     run.Matched,
			"Unmatched":   run.Unmatched,
			"ErrorCount":  run.ErrorCount,
			"ErrorSample": run.ErrorSample,
		}).Error
	})
	if err != nil {
		return nil, err
	}

	return summary, nil
}

// UnmatchedRow pairs an unmatched secondary row with its ranked suggestions
// for the manual-match screen. Suggestions are recomputed on every read.
type UnmatchedRow struct {
	Row         *models.SecondaryRow `json:"row"`
	Suggestions []*matcher.Candidate `json:"suggestions"`
}

// ListUnmatchedRows returns every secondary row of the location without an
// active match, with fuzzy suggestions attached. An empty suggestion list is
// the expected steady state pending operator action, not an error.
func ListUnmatchedRows(ctx context.Context, locationId int) ([]*UnmatchedRow, error) {

	rows, err := models.ListSecondaryRowsByLocation(ctx, locationId)
	if err != nil {
		return nil, err
	}
	matches, err := models.ListActiveMatchesByLocation(ctx, locationId)
	if err != nil {
		return nil, err
	}
	items, err := models.ListPrimaryItemsByLocation(ctx, locationId)
	if err != nil {
		return nil, err
	}

	matchedRows := make(map[int]bool, len(matches))
	takenItems := make(map[int]bool, len(matches))
	for _, match := range matches {
		matchedRows[match.SecondaryRowId] = true
		takenItems[match.PrimaryItemId] = true
	}

	candidates := make([]*models.PrimaryItem, 0, len(items))
	for _, item := range items {
		if !takenItems[item.ID] {
			candidates = append(candidates, item)
		}
	}

	var results []*UnmatchedRow
	for _, row := range rows {
		if matchedRows[row.ID] {
			continue
		}
		proposal := matcher.MatchRow(row, candidates)
		suggestions := proposal.Suggestions
		if proposal.Auto != nil {
			// a SKU hit that survived import (e.g. the item was taken then
			// freed) is still just a suggestion here; confirmation is manual
			suggestions = append([]*matcher.Candidate{proposal.Auto}, suggestions...)
		}
		results = append(results, &UnmatchedRow{Row: row, Suggestions: suggestions})
	}
	return results, nil
}
