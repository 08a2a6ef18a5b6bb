package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/samirrijal/muralmap/internal/core/domain"
)

// ExtraMuralRepo implements ports.ExtraMuralRepository with pgx.
type ExtraMuralRepo struct {
	db *DB
}

// NewExtraMuralRepo creates a new ExtraMuralRepo.
func NewExtraMuralRepo(db *DB) *ExtraMuralRepo {
	return &ExtraMuralRepo{db: db}
}

const upsertExtraMural = `
	INSERT INTO extra_murals (id, name, lat, lon, address, zoom, icon, popup, link, blank, maps)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	ON CONFLICT (id) DO UPDATE
	SET name = EXCLUDED.name, lat = EXCLUDED.lat, lon = EXCLUDED.lon,
	    address = EXCLUDED.address, zoom = EXCLUDED.zoom, icon = EXCLUDED.icon,
	    popup = EXCLUDED.popup, link = EXCLUDED.link,
	    blank = EXCLUDED.blank, maps = EXCLUDED.maps,
	    updated_at = NOW()
`

// UpsertBatch inserts or updates many murals using pgx.Batch.
func (r *ExtraMuralRepo) UpsertBatch(ctx context.Context, murals []domain.Mural) error {
	batch := &pgx.Batch{}
	for _, m := range murals {
		batch.Queue(upsertExtraMural,
			m.ID, m.Name, m.Location.Lat, m.Location.Lon, m.Address,
			m.Zoom, m.Icon, m.Popup, m.Link, m.Blank, m.Maps)
	}
	br := r.db.Pool.SendBatch(ctx, batch)
	defer br.Close()
	for range murals {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("batch exec: %w", err)
		}
	}
	return nil
}

// ExtraMurals returns every hand-maintained mural, ordered by id.
func (r *ExtraMuralRepo) ExtraMurals(ctx context.Context) ([]domain.Mural, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, name, lat, lon, COALESCE(address, ''), zoom,
		       COALESCE(icon, ''), COALESCE(popup, ''), COALESCE(link, ''), blank, maps
		FROM extra_murals
		ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var murals []domain.Mural
	for rows.Next() {
		var m domain.Mural
		if err := rows.Scan(
			&m.ID, &m.Name, &m.Location.Lat, &m.Location.Lon, &m.Address, &m.Zoom,
			&m.Icon, &m.Popup, &m.Link, &m.Blank, &m.Maps,
		); err != nil {
			return nil, err
		}
		murals = append(murals, m)
	}
	return murals, rows.Err()
}
