package catalog

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
)

// ImportCSV loads semicolon-delimited rows (type;name;price;category[;url])
// into the catalog, skipping the header. Bad rows are counted and logged,
// never fatal.
func (s *Store) ImportCSV(ctx context.Context, path string) (imported, skipped int, err error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comma = ';'
	r.FieldsPerRecord = -1

	// header
	if _, err := r.Read(); err != nil && err != io.EOF {
		return 0, 0, fmt.Errorf("read csv header: %w", err)
	}

	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			slog.Warn("csv: unreadable row, skipping", "error", err)
			skipped++
			continue
		}
		if len(row) < 4 {
			slog.Warn("csv: not enough fields, skipping", "fields", len(row))
			skipped++
			continue
		}

		price, err := strconv.Atoi(strings.TrimSpace(row[2]))
		if err != nil {
			slog.Warn("csv: bad price, skipping", "name", strings.TrimSpace(row[1]), "value", row[2])
			skipped++
			continue
		}

		e := Entry{
			Kind:     strings.TrimSpace(row[0]),
			Name:     strings.TrimSpace(row[1]),
			Price:    price,
			Category: strings.TrimSpace(row[3]),
		}
		if len(row) >= 5 {
			e.SourceURL = strings.TrimSpace(row[4])
		}

		if err := s.Upsert(ctx, e); err != nil {
			slog.Warn("csv: insert failed, skipping", "name", e.Name, "error", err)
			skipped++
			continue
		}
		imported++
	}

	slog.Info("catalog import finished", "path", path, "imported", imported, "skipped", skipped)
	return imported, skipped, nil
}
