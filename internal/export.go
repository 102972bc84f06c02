package internal

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/xuri/excelize/v2"
)

// Importer reads subscriptions from an external file
type Importer interface {
	Import(path string) ([]Subscription, error)
}

// ImporterFunc is a function that implements Importer
type ImporterFunc func(path string) ([]Subscription, error)

func (f ImporterFunc) Import(path string) ([]Subscription, error) {
	return f(path)
}

// importers is the registry of available import formats
var importers = map[string]Importer{}

// RegisterImporter registers an importer with the given format name
func RegisterImporter(name string, imp Importer) {
	importers[name] = imp
}

// GetImporter returns the importer for the given format
func GetImporter(format string) (Importer, error) {
	imp, ok := importers[format]
	if !ok {
		return nil, fmt.Errorf("unknown import format: %s (available: %v)", format, AvailableImportFormats())
	}
	return imp, nil
}

// AvailableImportFormats returns a list of registered format names
func AvailableImportFormats() []string {
	var formats []string
	for name := range importers {
		formats = append(formats, name)
	}
	return formats
}

// simpleJSONFile is the import/export interchange format: the persisted
// record shape wrapped in a top-level object.
//
//	{
//	  "subscriptions": [
//	    {"name": "Netflix", "price": 9.99, "currency": "USD",
//	     "cycle": "Monthly", "nextBillingDate": "2025-03-01"}
//	  ]
//	}
type simpleJSONFile struct {
	Subscriptions []storedSubscription `json:"subscriptions"`
}

// ImportSimpleJSON reads subscriptions from the simple JSON format. IDs and
// creation timestamps are assigned on merge, not taken from the file.
func ImportSimpleJSON(path string) ([]Subscription, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}

	var file simpleJSONFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing JSON: %w", err)
	}

	var subs []Subscription
	for _, rec := range file.Subscriptions {
		subs = append(subs, fromStored(rec))
	}
	return subs, nil
}

// ExportJSON writes subscriptions to the simple JSON format.
func ExportJSON(path string, subs []Subscription) error {
	file := simpleJSONFile{Subscriptions: []storedSubscription{}}
	for _, sub := range subs {
		file.Subscriptions = append(file.Subscriptions, toStored(sub))
	}

	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling subscriptions: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing file: %w", err)
	}
	return nil
}

var xlsxHeader = []string{
	"Name", "Price", "Currency", "Cycle", "Next Billing Date",
	"Start Date", "Account Balance", "Monthly Equivalent", "Notes",
}

// ExportXLSX writes subscriptions to an Excel workbook, one row per
// subscription with a header row.
func ExportXLSX(path string, subs []Subscription) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for col, title := range xlsxHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return fmt.Errorf("building header: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, title); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}

	for i, sub := range subs {
		startDate := ""
		if sub.StartDate != nil {
			startDate = sub.StartDate.String()
		}
		balance := ""
		if b, ok := sub.Balance(); ok {
			balance = b.StringFixed(moneyScale)
		}

		values := []any{
			sub.Name,
			sub.Price.InexactFloat64(),
			string(sub.Currency),
			sub.Cycle.String(),
			sub.NextBillingDate.String(),
			startDate,
			balance,
			MonthlyEquivalent(sub).Round(moneyScale).InexactFloat64(),
			sub.Notes,
		}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return fmt.Errorf("building row %d: %w", i+2, err)
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return fmt.Errorf("writing row %d: %w", i+2, err)
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving workbook: %w", err)
	}
	return nil
}

func init() {
	// Register built-in importers
	RegisterImporter("simple-json", ImporterFunc(ImportSimpleJSON))
}
