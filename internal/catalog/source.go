// Recsys - Book Recommendation and Catalog Deduplication
// Copyright 2026 nrchnnas
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/nrchnnas/recsys

package catalog

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"

	"github.com/goccy/go-json"
)

// Source produces the raw rows of a catalog.
type Source interface {
	Load(ctx context.Context) (*Table, error)
}

// JSONLSource reads one JSON object per line. Scalar values become strings;
// arrays and objects are kept as their JSON text so the field parsers can
// decode them.
type JSONLSource struct {
	Path string
}

var _ Source = (*JSONLSource)(nil)

// Load reads the whole file.
func (s *JSONLSource) Load(ctx context.Context) (*Table, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("open catalog %s: %w", s.Path, err)
	}
	defer f.Close()

	return ReadJSONL(ctx, f)
}

// ReadJSONL decodes newline-delimited JSON objects from r.
func ReadJSONL(ctx context.Context, r io.Reader) (*Table, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	table := &Table{}
	columns := make(map[string]struct{})
	line := 0
	for scanner.Scan() {
		line++
		if line%1000 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}

		var obj map[string]json.RawMessage
		if err := json.Unmarshal(raw, &obj); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		rec := make(Record, len(obj))
		for k, v := range obj {
			rec[k] = rawToString(v)
			columns[k] = struct{}{}
		}
		table.Rows = append(table.Rows, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}

	table.Columns = make([]string, 0, len(columns))
	for c := range columns {
		table.Columns = append(table.Columns, c)
	}
	sort.Strings(table.Columns)
	return table, nil
}

func rawToString(v json.RawMessage) string {
	if len(v) == 0 || string(v) == "null" {
		return ""
	}
	switch v[0] {
	case '"':
		var s string
		if err := json.Unmarshal(v, &s); err == nil {
			return s
		}
	case '[', '{':
		return string(v)
	}
	if f, err := strconv.ParseFloat(string(v), 64); err == nil {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return string(v)
}
