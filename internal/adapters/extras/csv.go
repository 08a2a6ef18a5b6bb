// Package extras reads hand-maintained murals that are not on the wiki.
package extras

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/samirrijal/muralmap/internal/core/domain"
)

// CSVSource implements ports.ExtraMuralSource over a CSV file with the
// columns id, name, latitude, longitude, address, zoom, icon, popup, link,
// blank, maps. Only name, latitude and longitude are required.
type CSVSource struct {
	path     string
	defaults domain.Mural
}

// NewCSVSource creates a source reading path. Empty columns take their
// value from defaults.
func NewCSVSource(path string, defaults domain.Mural) *CSVSource {
	return &CSVSource{path: path, defaults: defaults}
}

// ExtraMurals reads the file. A missing file yields no murals and no error.
func (s *CSVSource) ExtraMurals(ctx context.Context) ([]domain.Mural, error) {
	f, err := os.Open(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open extras: %w", err)
	}
	defer f.Close()

	return Parse(f, s.defaults)
}

// Parse reads extra murals from r. Rows without a name or a valid
// position are skipped.
func Parse(r io.Reader, defaults domain.Mural) ([]domain.Mural, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1
	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read extras header: %w", err)
	}
	cols := indexColumns(header)
	for _, required := range []string{"name", "latitude", "longitude"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("extras: missing column %q", required)
		}
	}

	var murals []domain.Mural
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			slog.Warn("skipping extras row", "line", line, "error", err)
			continue
		}

		m := defaults
		m.Name = getField(record, cols, "name")
		lat, latErr := strconv.ParseFloat(getField(record, cols, "latitude"), 64)
		lon, lonErr := strconv.ParseFloat(getField(record, cols, "longitude"), 64)
		if m.Name == "" || latErr != nil || lonErr != nil {
			slog.Warn("skipping extras row", "line", line, "name", m.Name)
			continue
		}
		m.Location = domain.GeoPoint{Lat: lat, Lon: lon}

		setInt(&m.ID, getField(record, cols, "id"))
		setInt(&m.Zoom, getField(record, cols, "zoom"))
		setInt(&m.Blank, getField(record, cols, "blank"))
		setInt(&m.Maps, getField(record, cols, "maps"))
		setString(&m.Address, getField(record, cols, "address"))
		setString(&m.Icon, getField(record, cols, "icon"))
		setString(&m.Popup, getField(record, cols, "popup"))
		setString(&m.Link, getField(record, cols, "link"))

		murals = append(murals, m)
	}
	return murals, nil
}

func indexColumns(header []string) map[string]int {
	m := make(map[string]int, len(header))
	for i, col := range header {
		// Strip BOM from first column
		col = strings.TrimPrefix(col, "\xef\xbb\xbf")
		m[strings.ToLower(strings.TrimSpace(col))] = i
	}
	return m
}

func getField(record []string, cols map[string]int, name string) string {
	idx, ok := cols[name]
	if !ok || idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}

func setInt(dst *int, s string) {
	if s == "" {
		return
	}
	// pandas writes integer columns with a ".0" suffix when a row is blank
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		*dst = int(f)
	}
}

func setString(dst *string, s string) {
	if s != "" {
		*dst = s
	}
}
