package repository

import (
	"context"
	"database/sql"
	"time"
)

// Car mirrors the 'cars' table. FirstRegistrationDate is stored as a DATE
// column and handled as time.Time thanks to parseTime=true in the DSN.
type Car struct {
	ID                    uint64
	UserID                uint64
	BrandID               uint64
	ModelID               uint64
	RegistrationNumber    string
	FirstRegistrationDate time.Time
	Icon                  sql.NullString
}

// CarRow is the denormalized list shape: brand and model resolved to names.
type CarRow struct {
	ID                    uint64
	Brand                 string
	Model                 string
	RegistrationNumber    string
	FirstRegistrationDate time.Time
	Icon                  sql.NullString
}

// Brand is static reference data.
type Brand struct {
	ID   uint64
	Name string
}

// Model is static reference data; each model belongs to one brand.
type Model struct {
	ID      uint64
	BrandID uint64
	Name    string
}

type CarRepo struct{ DB *sql.DB }

func NewCarRepo(db *sql.DB) *CarRepo { return &CarRepo{DB: db} }

// Create inserts a car owned by c.UserID and returns the new id.
func (r *CarRepo) Create(ctx context.Context, c *Car) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO cars (user_id, brand_id, model_id, registrationNumber, firstRegistrationDate, icon)
		 VALUES (?,?,?,?,?,?)`,
		c.UserID, c.BrandID, c.ModelID, c.RegistrationNumber,
		c.FirstRegistrationDate.Format("2006-01-02"), c.Icon)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// Update rewrites every mutable column, but only when the row belongs to
// c.UserID. Not-found and not-owned both come back as ErrNotFound.
func (r *CarRepo) Update(ctx context.Context, c *Car) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE cars SET brand_id=?, model_id=?, registrationNumber=?, firstRegistrationDate=?, icon=?
		 WHERE id=? AND user_id=?`,
		c.BrandID, c.ModelID, c.RegistrationNumber,
		c.FirstRegistrationDate.Format("2006-01-02"), c.Icon, c.ID, c.UserID)
	if err != nil {
		return err
	}
	return checkAffected(res)
}

// Delete removes the car when it belongs to userID; same ErrNotFound
// semantics as Update.
func (r *CarRepo) Delete(ctx context.Context, id, userID uint64) error {
	res, err := r.DB.ExecContext(ctx,
		`DELETE FROM cars WHERE id=? AND user_id=?`, id, userID)
	if err != nil {
		return err
	}
	return checkAffected(res)
}

// ListByOwner joins cars with brands and models so the client receives
// human-readable names instead of reference ids.
func (r *CarRepo) ListByOwner(ctx context.Context, userID uint64) ([]CarRow, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT cars.id, brands.name AS brand, models.name AS model,
		        cars.registrationNumber, cars.firstRegistrationDate, cars.icon
		 FROM cars
		 JOIN brands ON cars.brand_id = brands.id
		 JOIN models ON cars.model_id = models.id
		 WHERE cars.user_id = ?`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CarRow
	for rows.Next() {
		var c CarRow
		if err := rows.Scan(&c.ID, &c.Brand, &c.Model, &c.RegistrationNumber,
			&c.FirstRegistrationDate, &c.Icon); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// ListBrands returns all brands ordered by id.
func (r *CarRepo) ListBrands(ctx context.Context) ([]Brand, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT id, name FROM brands ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Brand
	for rows.Next() {
		var b Brand
		if err := rows.Scan(&b.ID, &b.Name); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// ListModelsByBrand returns the models of one brand ordered by id.
func (r *CarRepo) ListModelsByBrand(ctx context.Context, brandID uint64) ([]Model, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, brand_id, name FROM models WHERE brand_id = ? ORDER BY id`, brandID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Model
	for rows.Next() {
		var m Model
		if err := rows.Scan(&m.ID, &m.BrandID, &m.Name); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
