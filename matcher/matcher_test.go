package matcher

import (
	"testing"

	"bitbucket.org/mmdatafocus/retail_backend/models"
)

func item(id int, locationId int, name, sku, barcode string) *models.PrimaryItem {
	return &models.PrimaryItem{ID: id, LocationId: locationId, Name: name, Sku: sku, Barcode: barcode}
}

func row(locationId int, productName, variant, sku string) *models.SecondaryRow {
	return &models.SecondaryRow{LocationId: locationId, ProductName: productName, Variant: variant, Sku: sku}
}

func TestMatchRow_SkuAutoMatch(t *testing.T) {
	items := []*models.PrimaryItem{
		item(1, 1, "Organic Honey 12oz", "SKU-100", ""),
		item(2, 1, "Blue Corn Chips", "SKU-200", ""),
	}
	proposal := MatchRow(row(1, "Honey (vendor naming differs)", "", "sku-100"), items)

	if proposal.Auto == nil {
		t.Fatalf("expected auto match, got none")
	}
	if proposal.Auto.Item.ID != 1 || proposal.Auto.Score != ScoreSku {
		t.Fatalf("unexpected auto match: item=%d score=%d", proposal.Auto.Item.ID, proposal.Auto.Score)
	}
	if len(proposal.Suggestions) != 0 {
		t.Fatalf("auto match must not carry suggestions, got %d", len(proposal.Suggestions))
	}
}

func TestMatchRow_SkuMatchesBarcode(t *testing.T) {
	items := []*models.PrimaryItem{
		item(1, 1, "Organic Honey 12oz", "", "012345678905"),
	}
	proposal := MatchRow(row(1, "Honey", "", "012345678905"), items)

	if proposal.Auto == nil || proposal.Auto.Item.ID != 1 {
		t.Fatalf("expected barcode auto match, got %+v", proposal.Auto)
	}
}

func TestMatchRow_SkuTieBreaksToLowestId(t *testing.T) {
	items := []*models.PrimaryItem{
		item(5, 1, "Organic Honey (new)", "SKU-100", ""),
		item(2, 1, "Organic Honey (old)", "SKU-100", ""),
	}
	proposal := MatchRow(row(1, "Organic Honey", "", "SKU-100"), items)

	if proposal.Auto == nil || proposal.Auto.Item.ID != 2 {
		t.Fatalf("expected lowest id to win the tie, got %+v", proposal.Auto)
	}
}

func TestMatchRow_FuzzySuggestionsRankedAndThresholded(t *testing.T) {
	items := []*models.PrimaryItem{
		item(1, 1, "Organic Honey 12oz", "SKU-100", ""),
		item(2, 1, "Organic Honey", "SKU-101", ""),
		item(3, 1, "Honey", "", ""),
		item(4, 1, "Granola Bar", "SKU-300", ""),
	}
	proposal := MatchRow(row(1, "Organic Honey", "12oz", ""), items)

	if proposal.Auto != nil {
		t.Fatalf("name similarity must never auto-match, got %+v", proposal.Auto)
	}
	if len(proposal.Suggestions) != 3 {
		t.Fatalf("expected 3 suggestions above threshold, got %d", len(proposal.Suggestions))
	}
	if proposal.Suggestions[0].Item.ID != 1 {
		t.Fatalf("expected exact name first, got item %d", proposal.Suggestions[0].Item.ID)
	}
	if !proposal.Suggestions[0].HighConfidence {
		t.Fatalf("top suggestion should be high confidence (score %d)", proposal.Suggestions[0].Score)
	}
	// scores strictly descending here
	for i := 1; i < len(proposal.Suggestions); i++ {
		if proposal.Suggestions[i].Score > proposal.Suggestions[i-1].Score {
			t.Fatalf("suggestions out of order at %d", i)
		}
	}
	// "Granola Bar" scored below the floor and was dropped
	for _, s := range proposal.Suggestions {
		if s.Item.ID == 4 {
			t.Fatalf("below-threshold candidate leaked into suggestions")
		}
	}
}

func TestMatchRow_EqualScoresPreferSkuThenLowestId(t *testing.T) {
	items := []*models.PrimaryItem{
		item(7, 1, "Organic Honey", "", ""),
		item(9, 1, "Organic Honey", "SKU-101", ""),
		item(8, 1, "Organic Honey", "", ""),
	}
	proposal := MatchRow(row(1, "Organic Honey", "", ""), items)

	if len(proposal.Suggestions) != 3 {
		t.Fatalf("expected 3 suggestions, got %d", len(proposal.Suggestions))
	}
	if proposal.Suggestions[0].Item.ID != 9 {
		t.Fatalf("expected the SKU-bearing item first, got %d", proposal.Suggestions[0].Item.ID)
	}
	if proposal.Suggestions[1].Item.ID != 7 || proposal.Suggestions[2].Item.ID != 8 {
		t.Fatalf("expected id order among equals, got %d then %d",
			proposal.Suggestions[1].Item.ID, proposal.Suggestions[2].Item.ID)
	}
}

func TestMatchRow_IgnoresOtherLocations(t *testing.T) {
	items := []*models.PrimaryItem{
		item(1, 2, "Organic Honey", "SKU-100", ""),
	}
	proposal := MatchRow(row(1, "Organic Honey", "", "SKU-100"), items)

	if proposal.Auto != nil || len(proposal.Suggestions) != 0 {
		t.Fatalf("cross-location item must be ignored: %+v", proposal)
	}
}

func TestMatchRows(t *testing.T) {
	items := []*models.PrimaryItem{
		item(1, 1, "Organic Honey 12oz", "SKU-100", ""),
	}
	rows := []*models.SecondaryRow{
		row(1, "Honey", "", "SKU-100"),
		row(1, "Unrelated Thing", "", ""),
	}
	proposals := MatchRows(rows, items)

	if len(proposals) != 2 {
		t.Fatalf("expected a proposal per row, got %d", len(proposals))
	}
	if proposals[0].Auto == nil {
		t.Fatalf("first row should auto-match")
	}
	if proposals[1].Auto != nil || len(proposals[1].Suggestions) != 0 {
		t.Fatalf("second row should stay unmatched: %+v", proposals[1])
	}
}
