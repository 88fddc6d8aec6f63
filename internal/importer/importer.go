// Package importer loads the CSV dataset dump into the database.
package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type kind int

const (
	text kind = iota
	integer
	timestamp
)

type column struct {
	header   string
	name     string
	kind     kind
	optional bool
}

type table struct {
	file    string
	name    string
	columns []column
	// serial tables get their id sequence advanced after the load
	serial bool
}

// tables is listed in foreign key order.
var tables = []table{
	{
		file: "category.csv", name: "categories", serial: true,
		columns: []column{
			{header: "id", name: "id", kind: integer},
			{header: "name", name: "name"},
			{header: "slug", name: "slug"},
		},
	},
	{
		file: "genre.csv", name: "genres", serial: true,
		columns: []column{
			{header: "id", name: "id", kind: integer},
			{header: "name", name: "name"},
			{header: "slug", name: "slug"},
		},
	},
	{
		file: "users.csv", name: "users", serial: true,
		columns: []column{
			{header: "id", name: "id", kind: integer},
			{header: "username", name: "username"},
			{header: "email", name: "email"},
			{header: "role", name: "role", optional: true},
			{header: "bio", name: "bio", optional: true},
			{header: "first_name", name: "first_name", optional: true},
			{header: "last_name", name: "last_name", optional: true},
		},
	},
	{
		file: "titles.csv", name: "titles", serial: true,
		columns: []column{
			{header: "id", name: "id", kind: integer},
			{header: "name", name: "name"},
			{header: "year", name: "year", kind: integer},
			{header: "description", name: "description", optional: true},
			{header: "category", name: "category_id", kind: integer},
		},
	},
	{
		file: "genre_title.csv", name: "genre_titles",
		columns: []column{
			{header: "title_id", name: "title_id", kind: integer},
			{header: "genre_id", name: "genre_id", kind: integer},
		},
	},
	{
		file: "review.csv", name: "reviews", serial: true,
		columns: []column{
			{header: "id", name: "id", kind: integer},
			{header: "title_id", name: "title_id", kind: integer},
			{header: "text", name: "text"},
			{header: "author", name: "author_id", kind: integer},
			{header: "score", name: "score", kind: integer},
			{header: "pub_date", name: "pub_date", kind: timestamp, optional: true},
		},
	},
	{
		file: "comments.csv", name: "comments", serial: true,
		columns: []column{
			{header: "id", name: "id", kind: integer},
			{header: "review_id", name: "review_id", kind: integer},
			{header: "text", name: "text"},
			{header: "author", name: "author_id", kind: integer},
			{header: "pub_date", name: "pub_date", kind: timestamp, optional: true},
		},
	},
}

// Result counts what happened to one file.
type Result struct {
	File     string
	Read     int
	Inserted int
	Skipped  bool
}

type Importer struct {
	db     *gorm.DB
	logger *slog.Logger
}

func New(db *gorm.DB, logger *slog.Logger) *Importer {
	return &Importer{db: db, logger: logger}
}

// Run imports every known file found in dir inside one transaction. Rows that
// already exist are left alone, so running it twice is harmless. Missing
// files are skipped.
func (im *Importer) Run(ctx context.Context, dir string) ([]Result, error) {
	results := make([]Result, 0, len(tables))

	err := im.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, t := range tables {
			res, err := im.importFile(tx, dir, t)
			if err != nil {
				return fmt.Errorf("%s: %w", t.file, err)
			}
			results = append(results, res)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

func (im *Importer) importFile(tx *gorm.DB, dir string, t table) (Result, error) {
	res := Result{File: t.file}

	f, err := os.Open(filepath.Join(dir, t.file))
	if errors.Is(err, os.ErrNotExist) {
		im.logger.Warn("file not found, skipping", "file", t.file)
		res.Skipped = true
		return res, nil
	}
	if err != nil {
		return res, err
	}
	defer f.Close()

	rows, err := decode(t, f)
	if err != nil {
		return res, err
	}
	res.Read = len(rows)

	for _, row := range rows {
		result := tx.Table(t.name).Clauses(clause.OnConflict{DoNothing: true}).Create(row)
		if result.Error != nil {
			return res, fmt.Errorf("insert into %s: %w", t.name, result.Error)
		}
		res.Inserted += int(result.RowsAffected)
	}

	if t.serial && res.Inserted > 0 {
		// explicit ids bypass the sequence; move it past the highest one
		stmt := fmt.Sprintf(
			"SELECT setval(pg_get_serial_sequence('%[1]s', 'id'), COALESCE(MAX(id), 1), MAX(id) IS NOT NULL) FROM %[1]s",
			t.name,
		)
		if err := tx.Exec(stmt).Error; err != nil {
			return res, fmt.Errorf("advance %s sequence: %w", t.name, err)
		}
	}

	im.logger.Info("imported", "file", t.file, "read", res.Read, "inserted", res.Inserted)
	return res, nil
}

// decode reads a CSV file with a header row into column maps ready for insert.
// Extra columns are ignored.
func decode(t table, r io.Reader) ([]map[string]any, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, h := range header {
		index[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	for _, c := range t.columns {
		if _, ok := index[c.header]; !ok && !c.optional {
			return nil, fmt.Errorf("missing column %q", c.header)
		}
	}

	var rows []map[string]any
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		line, _ := reader.FieldPos(0)

		row := make(map[string]any, len(t.columns))
		for _, c := range t.columns {
			i, ok := index[c.header]
			if !ok {
				continue
			}
			raw := strings.TrimSpace(record[i])
			if raw == "" && c.optional {
				continue
			}
			v, err := convert(c.kind, raw)
			if err != nil {
				return nil, fmt.Errorf("line %d, column %s: %w", line, c.header, err)
			}
			row[c.name] = v
		}
		rows = append(rows, row)
	}
	return rows, nil
}

var timestampLayouts = []string{time.RFC3339Nano, "2006-01-02 15:04:05.999999999Z07:00", "2006-01-02 15:04:05", "2006-01-02"}

func convert(k kind, raw string) (any, error) {
	switch k {
	case integer:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid integer %q", raw)
		}
		return n, nil
	case timestamp:
		for _, layout := range timestampLayouts {
			if ts, err := time.Parse(layout, raw); err == nil {
				return ts, nil
			}
		}
		return nil, fmt.Errorf("invalid timestamp %q", raw)
	default:
		return raw, nil
	}
}
