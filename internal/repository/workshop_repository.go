package repository

import (
	"context"
	"database/sql"
)

// Workshop mirrors the 'workshops' table. Address columns are stored flat
// and reshaped into a nested object by the handler.
type Workshop struct {
	ID             uint64
	Name           string
	Street         string
	City           string
	BuildingNo     string
	LocalNo        sql.NullString
	PostCode       string
	Image          sql.NullString
	Rate           float64
	OpinionsNumber uint64
	Description    sql.NullString
}

type WorkshopRepo struct{ DB *sql.DB }

func NewWorkshopRepo(db *sql.DB) *WorkshopRepo { return &WorkshopRepo{DB: db} }

// ListAll returns every workshop ordered by id. There is no server-side
// filtering or pagination; clients filter the full set themselves.
func (r *WorkshopRepo) ListAll(ctx context.Context) ([]Workshop, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, name, street, city, buildingNo, localNo, postCode,
		        image, rate, opinionsNumber, description
		 FROM workshops ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Workshop
	for rows.Next() {
		var w Workshop
		if err := rows.Scan(&w.ID, &w.Name, &w.Street, &w.City, &w.BuildingNo,
			&w.LocalNo, &w.PostCode, &w.Image, &w.Rate, &w.OpinionsNumber,
			&w.Description); err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}
