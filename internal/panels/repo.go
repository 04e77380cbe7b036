package panels

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("panel not found")

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{db: db}
}

type Manufacturer struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Website string `json:"website"`
	Country string `json:"country"`
}

// Panel is a reference row describing a physical panel model. Rows with
// is_public are visible to everyone; private rows only to their owner.
type Panel struct {
	ID               int64     `json:"id"`
	Name             string    `json:"name"`
	ManufacturerID   *int64    `json:"manufacturer"`
	ManufacturerName string    `json:"manufacturer_name,omitempty"`
	Width            float64   `json:"width"`
	Height           float64   `json:"height"`
	Thickness        float64   `json:"thickness"`
	Wattage          float64   `json:"wattage"`
	Efficiency       float64   `json:"efficiency"`
	Cost             float64   `json:"cost"`
	IsDefault        bool      `json:"is_default"`
	IsPublic         bool      `json:"is_public"`
	CreatedAt        time.Time `json:"created_at"`
}

func (r *Repo) ListManufacturers(ctx context.Context) ([]Manufacturer, error) {
	const q = `
select id, name, coalesce(website, ''), coalesce(country, '')
from manufacturers
order by name;
`
	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Manufacturer, 0, 16)
	for rows.Next() {
		var m Manufacturer
		if err := rows.Scan(&m.ID, &m.Name, &m.Website, &m.Country); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

const panelColumns = `
p.id, p.name, p.manufacturer_id, coalesce(m.name, ''),
p.width, p.height, p.thickness, p.wattage, p.efficiency, p.cost,
p.is_default, p.is_public, p.created_at`

func scanPanel(row pgx.Row) (*Panel, error) {
	var p Panel
	err := row.Scan(&p.ID, &p.Name, &p.ManufacturerID, &p.ManufacturerName,
		&p.Width, &p.Height, &p.Thickness, &p.Wattage, &p.Efficiency, &p.Cost,
		&p.IsDefault, &p.IsPublic, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// ListVisible returns public panels plus the caller's own, defaults first.
func (r *Repo) ListVisible(ctx context.Context, ownerID string) ([]Panel, error) {
	const q = `
select ` + panelColumns + `
from panels p
left join manufacturers m on m.id = p.manufacturer_id
where p.is_public or p.owner_id = $1::uuid
order by p.is_default desc, p.name;
`
	rows, err := r.db.Query(ctx, q, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Panel, 0, 32)
	for rows.Next() {
		p, err := scanPanel(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

type NewPanel struct {
	Name           string  `json:"name"`
	ManufacturerID *int64  `json:"manufacturer"`
	Width          float64 `json:"width"`
	Height         float64 `json:"height"`
	Thickness      float64 `json:"thickness"`
	Wattage        float64 `json:"wattage"`
	Efficiency     float64 `json:"efficiency"`
	Cost           float64 `json:"cost"`
	IsPublic       bool    `json:"is_public"`
}

// Create inserts a panel owned by ownerID.
func (r *Repo) Create(ctx context.Context, ownerID string, np NewPanel) (*Panel, error) {
	const q = `
with inserted as (
	insert into panels (name, manufacturer_id, width, height, thickness,
	                    wattage, efficiency, cost, is_public, owner_id)
	values ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10::uuid)
	returning *
)
select ` + panelColumns + `
from inserted p
left join manufacturers m on m.id = p.manufacturer_id;
`
	return scanPanel(r.db.QueryRow(ctx, q,
		np.Name, np.ManufacturerID, np.Width, np.Height, np.Thickness,
		np.Wattage, np.Efficiency, np.Cost, np.IsPublic, ownerID))
}
