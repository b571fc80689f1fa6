package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"time"
)

// DateLayout is the wire format for every date-bearing field.
const DateLayout = "2006-01-02"

// MinBusinessDate is the fixed epoch; orders and reviews dated before it are
// structurally invalid.
var MinBusinessDate = time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC)

// Record is one raw tabular row keyed by column header.
type Record map[string]string

// File names for the five row sets, in load order.
const (
	ProductsFile   = "products.csv"
	CustomersFile  = "customers.csv"
	OrdersFile     = "orders.csv"
	OrderItemsFile = "order_items.csv"
	ReviewsFile    = "reviews.csv"
)

// ReadFile reads a headered CSV file into raw records.
func ReadFile(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()
	return Read(f)
}

// Read parses headered CSV rows from r. Every record carries the full header
// set; short rows are an error from the csv reader itself.
func Read(r io.Reader) ([]Record, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading csv header: %w", err)
	}

	var records []Record
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading csv row %d: %w", len(records)+2, err)
		}
		rec := make(Record, len(header))
		for i, col := range header {
			rec[col] = row[i]
		}
		records = append(records, rec)
	}
	return records, nil
}

// ParseDate parses a date-only field in the dataset layout, normalized to UTC.
func ParseDate(value string) (time.Time, error) {
	t, err := time.Parse(DateLayout, value)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}
