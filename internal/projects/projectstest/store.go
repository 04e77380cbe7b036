// Package projectstest provides an in-memory projects.Store for handler
// tests. It mirrors the repository's semantics: ownership-scoped lookups,
// duplicate-name detection, whole-document writes.
package projectstest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/solarplan/rooftop-backend/internal/projects"
)

type key struct {
	owner string
	id    string
}

type Store struct {
	mu     sync.Mutex
	nextID int
	rows   map[key]*projects.Project
}

func New() *Store {
	return &Store{rows: map[key]*projects.Project{}}
}

var _ projects.Store = (*Store)(nil)

func clone(p *projects.Project) *projects.Project {
	cp := *p
	cp.Document.Polygons = append([]projects.Polygon(nil), p.Document.Polygons...)
	if cp.Document.Polygons == nil {
		cp.Document.Polygons = []projects.Polygon{}
	}
	return &cp
}

func (s *Store) Create(_ context.Context, ownerID, name string, doc projects.Document) (*projects.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for k, p := range s.rows {
		if k.owner == ownerID && p.Name == name {
			return nil, projects.ErrDuplicateName
		}
	}

	s.nextID++
	p := &projects.Project{
		ID:        fmt.Sprintf("roof-%05d-0001", s.nextID),
		Name:      name,
		Document:  doc,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	s.rows[key{ownerID, p.ID}] = p
	return clone(p), nil
}

func (s *Store) List(_ context.Context, ownerID string) ([]projects.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []projects.Project{}
	for k, p := range s.rows {
		if k.owner == ownerID {
			out = append(out, *clone(p))
		}
	}
	return out, nil
}

func (s *Store) Get(_ context.Context, ownerID, publicID string) (*projects.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.rows[key{ownerID, publicID}]
	if !ok {
		return nil, projects.ErrNotFound
	}
	return clone(p), nil
}

func (s *Store) Save(_ context.Context, ownerID, publicID, name string, doc projects.Document) (*projects.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.rows[key{ownerID, publicID}]
	if !ok {
		return nil, projects.ErrNotFound
	}
	for k, other := range s.rows {
		if k.owner == ownerID && k.id != publicID && other.Name == name {
			return nil, projects.ErrDuplicateName
		}
	}
	p.Name = name
	p.Document = doc
	p.UpdatedAt = time.Now()
	return clone(p), nil
}

func (s *Store) SaveDocument(_ context.Context, ownerID, publicID string, doc projects.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.rows[key{ownerID, publicID}]
	if !ok {
		return projects.ErrNotFound
	}
	p.Document = doc
	p.UpdatedAt = time.Now()
	return nil
}

func (s *Store) Delete(_ context.Context, ownerID, publicID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.rows[key{ownerID, publicID}]; !ok {
		return projects.ErrNotFound
	}
	delete(s.rows, key{ownerID, publicID})
	return nil
}
