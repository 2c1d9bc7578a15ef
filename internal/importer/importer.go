// Package importer loads a business catalog from a CSV export.
package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"vendebot/internal/domain"
)

type ProductWriter interface {
	Upsert(ctx context.Context, product domain.Product) (*domain.Product, error)
}

// CSVImporter reads catalog CSV rows and inserts/updates products for one
// business. Prices are decimal dollars in the file and stored as cents.
type CSVImporter struct {
	reader      *csv.Reader
	productRepo ProductWriter
	businessID  string
}

func NewCSVImporter(r io.Reader, repo ProductWriter, businessID string) *CSVImporter {
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1 // rows may have trailing commas
	return &CSVImporter{
		reader:      csvr,
		productRepo: repo,
		businessID:  businessID,
	}
}

type csvRow struct {
	Ref      int
	Name     string
	Desc     string
	Cents    int64
	Stock    int
	Emoji    string
	ImageURL string
}

// Run parses CSV rows and upserts one product per row.
func (i *CSVImporter) Run(ctx context.Context) (int, error) {
	headers, err := i.reader.Read()
	if err != nil {
		return 0, fmt.Errorf("read headers: %w", err)
	}
	index := headerIndex(headers)

	imported := 0
	for {
		record, err := i.reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return imported, fmt.Errorf("read row: %w", err)
		}

		row, err := parseRow(record, index)
		if err != nil {
			return imported, err
		}
		if row == nil {
			continue
		}

		p := domain.Product{
			BusinessID:  i.businessID,
			Ref:         row.Ref,
			Name:        row.Name,
			Description: row.Desc,
			PriceCents:  row.Cents,
			Stock:       row.Stock,
			Emoji:       row.Emoji,
			ImageURL:    row.ImageURL,
			Active:      true,
		}
		if _, err := i.productRepo.Upsert(ctx, p); err != nil {
			return imported, fmt.Errorf("upsert ref %d: %w", row.Ref, err)
		}
		imported++
	}

	return imported, nil
}

func headerIndex(headers []string) map[string]int {
	index := make(map[string]int, len(headers))
	for i, h := range headers {
		index[strings.ToLower(strings.TrimSpace(h))] = i
	}
	return index
}

func field(record []string, index map[string]int, name string) string {
	i, ok := index[name]
	if !ok || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

func parseRow(record []string, index map[string]int) (*csvRow, error) {
	refStr := field(record, index, "ref")
	name := field(record, index, "nombre")
	if refStr == "" && name == "" {
		return nil, nil // blank line
	}

	ref, err := strconv.Atoi(refStr)
	if err != nil || ref <= 0 {
		return nil, fmt.Errorf("invalid ref %q for %q", refStr, name)
	}
	if name == "" {
		return nil, fmt.Errorf("missing name for ref %d", ref)
	}

	priceStr := field(record, index, "precio")
	price, err := strconv.ParseFloat(strings.ReplaceAll(priceStr, ",", "."), 64)
	if err != nil || price < 0 {
		return nil, fmt.Errorf("invalid price %q for ref %d", priceStr, ref)
	}

	stock := 0
	if s := field(record, index, "stock"); s != "" {
		stock, err = strconv.Atoi(s)
		if err != nil || stock < 0 {
			return nil, fmt.Errorf("invalid stock %q for ref %d", s, ref)
		}
	}

	return &csvRow{
		Ref:      ref,
		Name:     name,
		Desc:     field(record, index, "descripcion"),
		Cents:    int64(math.Round(price * 100)),
		Stock:    stock,
		Emoji:    field(record, index, "emoji"),
		ImageURL: field(record, index, "imagen"),
	}, nil
}
