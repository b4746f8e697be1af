// Package matcher pairs vendor-feed rows with primary items inside one
// location. SKU matches are auto-accepted; name similarity only ever
// produces suggestions that an operator must confirm, because name
// collisions are common across vendors.
package matcher

import (
	"sort"
	"strings"

	"bitbucket.org/mmdatafocus/retail_backend/models"
)

const (
	// ScoreSku is the score recorded for an exact SKU/UPC match.
	ScoreSku = 100
	// HighConfidenceThreshold marks suggestions shown as high-confidence.
	HighConfidenceThreshold = 80
	// SuggestionThreshold is the floor below which no suggestion is shown.
	SuggestionThreshold = 50
)

type Candidate struct {
	Item  *models.PrimaryItem `json:"item"`
	Score int                 `json:"score"`
	// HighConfidence suggestions still require operator confirmation.
	HighConfidence bool `json:"high_confidence"`
}

// Proposal is the matcher's verdict for one secondary row: either an
// auto-accepted SKU match, or a ranked suggestion list (possibly empty —
// an unmatched row is an expected steady state, not an error).
type Proposal struct {
	Row         *models.SecondaryRow `json:"row"`
	Auto        *Candidate           `json:"auto,omitempty"`
	Suggestions []*Candidate         `json:"suggestions,omitempty"`
}

func skuEqual(a, b string) bool {
	a = strings.TrimSpace(a)
	b = strings.TrimSpace(b)
	return a != "" && strings.EqualFold(a, b)
}

// MatchRow evaluates one row against the primary items of its location.
// Callers must pre-filter items to row.LocationId; items from other
// locations are ignored defensively here as well.
func MatchRow(row *models.SecondaryRow, items []*models.PrimaryItem) *Proposal {
	proposal := &Proposal{Row: row}

	for _, item := range items {
		if item.LocationId != row.LocationId {
			continue
		}
		if skuEqual(row.Sku, item.Sku) || skuEqual(row.Sku, item.Barcode) {
			if proposal.Auto == nil || item.ID < proposal.Auto.Item.ID {
				proposal.Auto = &Candidate{Item: item, Score: ScoreSku, HighConfidence: true}
			}
		}
	}
	if proposal.Auto != nil {
		return proposal
	}

	name := row.ProductName
	if row.Variant != "" {
		name = name + " " + row.Variant
	}
	for _, item := range items {
		if item.LocationId != row.LocationId {
			continue
		}
		score := ScoreNames(name, item.Name)
		if score < SuggestionThreshold {
			continue
		}
		proposal.Suggestions = append(proposal.Suggestions, &Candidate{
			Item:           item,
			Score:          score,
			HighConfidence: score >= HighConfidenceThreshold,
		})
	}

	// deterministic ordering: score desc, then candidates with a SKU before
	// those without, then lowest item id
	sort.SliceStable(proposal.Suggestions, func(i, j int) bool {
		a, b := proposal.Suggestions[i], proposal.Suggestions[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		aHasSku := strings.TrimSpace(a.Item.Sku) != ""
		bHasSku := strings.TrimSpace(b.Item.Sku) != ""
		if aHasSku != bHasSku {
			return aHasSku
		}
		return a.Item.ID < b.Item.ID
	})

	return proposal
}

// MatchRows evaluates every row against the same candidate pool.
func MatchRows(rows []*models.SecondaryRow, items []*models.PrimaryItem) []*Proposal {
	proposals := make([]*Proposal, 0, len(rows))
	for _, row := range rows {
		proposals = append(proposals, MatchRow(row, items))
	}
	return proposals
}
