package projects

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{db: db}
}

type Project struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Document  Document  `json:"data"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func scanProject(row pgx.Row) (*Project, error) {
	var (
		p   Project
		raw []byte
	)
	if err := row.Scan(&p.ID, &p.Name, &raw, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if err := json.Unmarshal(raw, &p.Document); err != nil {
		return nil, fmt.Errorf("decode project document: %w", err)
	}
	if p.Document.Polygons == nil {
		p.Document.Polygons = []Polygon{}
	}
	return &p, nil
}

// Create inserts a project for the owner. The document has already been
// merged over the defaults by the caller. ErrDuplicateName when the owner
// already has a project with that name.
func (r *Repo) Create(ctx context.Context, ownerID, name string, doc Document) (*Project, error) {
	if name == "" {
		return nil, fmt.Errorf("name required")
	}
	if ownerID == "" {
		return nil, fmt.Errorf("owner required")
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode project document: %w", err)
	}

	for i := 0; i < 5; i++ {
		publicID, err := newProjectID()
		if err != nil {
			return nil, err
		}

		const q = `
insert into projects (public_id, owner_id, name, document)
values ($1, $2::uuid, $3, $4::jsonb)
returning public_id, name, document, created_at, updated_at;
`
		p, err := scanProject(r.db.QueryRow(ctx, q, publicID, ownerID, name, raw))
		if err == nil {
			return p, nil
		}

		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			if pgErr.ConstraintName == "projects_owner_id_name_key" {
				return nil, ErrDuplicateName
			}
			// unique violation on public_id → retry
			continue
		}
		return nil, err
	}

	return nil, fmt.Errorf("failed to generate unique project id")
}

// List returns all projects owned by ownerID, newest first.
func (r *Repo) List(ctx context.Context, ownerID string) ([]Project, error) {
	const q = `
select public_id, name, document, created_at, updated_at
from projects
where owner_id = $1::uuid
order by created_at desc;
`
	rows, err := r.db.Query(ctx, q, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Project, 0, 16)
	for rows.Next() {
		var (
			p   Project
			raw []byte
		)
		if err := rows.Scan(&p.ID, &p.Name, &raw, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(raw, &p.Document); err != nil {
			return nil, fmt.Errorf("decode project document: %w", err)
		}
		if p.Document.Polygons == nil {
			p.Document.Polygons = []Polygon{}
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Get loads one project. The (owner, id) predicate is a single query so a
// foreign project is indistinguishable from a missing one.
func (r *Repo) Get(ctx context.Context, ownerID, publicID string) (*Project, error) {
	const q = `
select public_id, name, document, created_at, updated_at
from projects
where owner_id = $1::uuid and public_id = $2;
`
	return scanProject(r.db.QueryRow(ctx, q, ownerID, publicID))
}

// Save writes name and document back in one statement. Same ownership
// scoping as Get.
func (r *Repo) Save(ctx context.Context, ownerID, publicID, name string, doc Document) (*Project, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode project document: %w", err)
	}

	const q = `
update projects
set name = $3, document = $4::jsonb, updated_at = now()
where owner_id = $1::uuid and public_id = $2
returning public_id, name, document, created_at, updated_at;
`
	p, err := scanProject(r.db.QueryRow(ctx, q, ownerID, publicID, name, raw))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrDuplicateName
		}
		return nil, err
	}
	return p, nil
}

// SaveDocument persists only the document, for polygon mutations that leave
// the name alone.
func (r *Repo) SaveDocument(ctx context.Context, ownerID, publicID string, doc Document) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode project document: %w", err)
	}

	const q = `
update projects
set document = $3::jsonb, updated_at = now()
where owner_id = $1::uuid and public_id = $2;
`
	ct, err := r.db.Exec(ctx, q, ownerID, publicID, raw)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the project row. ErrNotFound keeps delete ownership-scoped
// like every other operation.
func (r *Repo) Delete(ctx context.Context, ownerID, publicID string) error {
	const q = `delete from projects where owner_id = $1::uuid and public_id = $2;`
	ct, err := r.db.Exec(ctx, q, ownerID, publicID)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
