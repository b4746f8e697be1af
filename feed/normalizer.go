package feed

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseError is a recovered, per-row failure. The batch always continues;
// callers surface the first N errors plus a count.
type ParseError struct {
	Line   int    `json:"line"`
	Reason string `json:"reason"`
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Reason)
}

// Row is one normalized vendor-feed line.
type Row struct {
	ProductName  string
	Variant      string
	LocationName string
	Vendor       string
	Sku          string
	Quantity     decimal.Decimal
	ListPrice    decimal.Decimal
	CostUnit     decimal.Decimal
}

// Result of one pass over the feed.
type Result struct {
	Rows      []*Row
	Errors    []*ParseError
	Processed int
}

// column order of the vendor report body
const (
	colProductName = iota
	colVariant
	colLocation
	colVendor
	colSku
	colQuantity
	colListPrice
	colCostUnit
)

// minRequiredFields: a data row must carry at least product name through
// quantity; prices default to zero when the trailing columns are absent.
const minRequiredFields = 6

// legacyPreambleLines is the historical vendor-report offset: 9 lines of
// metadata before the data. Used only when no header row is detected.
const legacyPreambleLines = 9

// headerScanWindow bounds how far the header detector looks.
const headerScanWindow = 20

// Normalizer parses the raw vendor CSV into typed rows. Each Rows() call is
// an independent pass over the same bytes; no state survives between passes.
type Normalizer struct {
	raw []byte
}

func NewNormalizer(raw []byte) *Normalizer {
	return &Normalizer{raw: raw}
}

func newReader(raw []byte) *csv.Reader {
	r := csv.NewReader(bytes.NewReader(raw))
	// preamble lines are free-form vendor metadata
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	return r
}

// looksLikeHeader detects the vendor header row by content: it must name a
// product column and a quantity column.
func looksLikeHeader(record []string) bool {
	hasProduct := false
	hasQty := false
	for _, field := range record {
		f := strings.ToLower(strings.TrimSpace(field))
		switch {
		case strings.Contains(f, "product"), strings.Contains(f, "item name"):
			hasProduct = true
		case f == "qty", strings.Contains(f, "quantity"):
			hasQty = true
		}
	}
	return hasProduct && hasQty
}

// dataStart locates the first data line. The vendor report format drifted
// between exports, so the fixed skip-9 offset is a fallback only: we prefer
// finding the header row by content within the scan window.
func (n *Normalizer) dataStart() int {
	r := newReader(n.raw)
	for line := 1; line <= headerScanWindow; line++ {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue
		}
		if looksLikeHeader(record) {
			return line + 1
		}
	}
	return legacyPreambleLines + 1
}

// Rows runs one full pass: skip the preamble, parse every data row, collect
// recovered errors. Malformed rows never abort the batch.
func (n *Normalizer) Rows() *Result {
	result := &Result{}
	start := n.dataStart()

	r := newReader(n.raw)
	line := 0
	for {
		line++
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if line < start {
			continue
		}
		if err != nil {
			result.Processed++
			result.Errors = append(result.Errors, &ParseError{Line: line, Reason: err.Error()})
			continue
		}
		if isBlankRecord(record) {
			continue
		}
		result.Processed++

		row, perr := parseRecord(line, record)
		if perr != nil {
			result.Errors = append(result.Errors, perr)
			continue
		}
		result.Rows = append(result.Rows, row)
	}
	return result
}

func isBlankRecord(record []string) bool {
	for _, field := range record {
		if strings.TrimSpace(field) != "" {
			return false
		}
	}
	return true
}

func parseRecord(line int, record []string) (*Row, *ParseError) {
	if len(record) < minRequiredFields {
		return nil, &ParseError{Line: line, Reason: fmt.Sprintf("row has %d of %d columns", len(record), minRequiredFields)}
	}

	field := func(idx int) string {
		if idx < len(record) {
			return strings.TrimSpace(record[idx])
		}
		return ""
	}

	// variant, vendor and sku may be blank; product name and quantity may not
	if field(colProductName) == "" {
		return nil, &ParseError{Line: line, Reason: "missing product name"}
	}

	quantity, err := ParseAmount(field(colQuantity))
	if err != nil {
		return nil, &ParseError{Line: line, Reason: "invalid quantity: " + field(colQuantity)}
	}

	row := &Row{
		ProductName:  field(colProductName),
		Variant:      field(colVariant),
		LocationName: field(colLocation),
		Vendor:       field(colVendor),
		Sku:          field(colSku),
		Quantity:     quantity,
		ListPrice:    decimal.Zero,
		CostUnit:     decimal.Zero,
	}

	if v := field(colListPrice); v != "" {
		price, err := ParseAmount(v)
		if err != nil {
			return nil, &ParseError{Line: line, Reason: "invalid list price: " + v}
		}
		row.ListPrice = price
	}
	if v := field(colCostUnit); v != "" {
		cost, err := ParseAmount(v)
		if err != nil {
			return nil, &ParseError{Line: line, Reason: "invalid cost unit: " + v}
		}
		row.CostUnit = cost
	}

	return row, nil
}
