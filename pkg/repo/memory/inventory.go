package memory

import (
	"context"
	"strings"
	"time"

	"github.com/scienceol/chemtrack/pkg/common/code"
	"github.com/scienceol/chemtrack/pkg/model"
	"github.com/scienceol/chemtrack/pkg/repo"
)

func (s *Store) CreateChemical(_ context.Context, item *model.ChemicalInventory) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if item.Quantity < 0 {
		return code.CreateDataErr.WithMsg("quantity must not be negative")
	}
	item.ID = s.nextID()
	item.Touch()
	if item.LastUpdated.IsZero() {
		item.LastUpdated = item.CreatedAt
	}
	s.st.chemicals[item.ID] = *item
	return nil
}

func (s *Store) GetChemical(_ context.Context, id int64) (*model.ChemicalInventory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.st.chemicals[id]
	if !ok {
		return nil, notFound("Chemical")
	}
	return &c, nil
}

// GetChemicalForUpdate needs no row lock here: ExecTx already runs one tx at a time.
func (s *Store) GetChemicalForUpdate(ctx context.Context, id int64) (*model.ChemicalInventory, error) {
	return s.GetChemical(ctx, id)
}

func (s *Store) SaveChemical(_ context.Context, item *model.ChemicalInventory) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.st.chemicals[item.ID]
	if !ok {
		return notFound("Chemical")
	}
	if item.Quantity < 0 {
		return code.UpdateDataErr.WithMsg("quantity must not be negative")
	}
	item.UUID, item.CreatedAt, item.UpdatedAt = old.UUID, old.CreatedAt, time.Now()
	item.Notes = old.Notes
	s.st.chemicals[item.ID] = *item
	return nil
}

func (s *Store) AppendChemicalNote(_ context.Context, id int64, line string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.st.chemicals[id]
	if !ok {
		return "", notFound("Chemical")
	}
	notes := line
	if c.Notes != nil && *c.Notes != "" {
		notes = *c.Notes + "\n" + line
	}
	c.Notes = &notes
	s.st.chemicals[id] = c
	return notes, nil
}

func (s *Store) DeleteChemical(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.st.chemicals[id]; !ok {
		return notFound("Chemical")
	}
	delete(s.st.chemicals, id)
	return nil
}

func containsFold(v *string, sub string) bool {
	return v != nil && strings.Contains(strings.ToLower(*v), strings.ToLower(sub))
}

func (s *Store) ListChemicals(_ context.Context, q repo.ChemicalQuery) ([]*model.ChemicalInventory, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list, total := page(s.st.chemicals, func(c *model.ChemicalInventory) bool {
		if q.Search != nil && *q.Search != "" &&
			!containsFold(&c.Name, *q.Search) && !containsFold(c.Formulation, *q.Search) && !containsFold(c.Supplier, *q.Search) {
			return false
		}
		if q.Supplier != nil && *q.Supplier != "" && !containsFold(c.Supplier, *q.Supplier) {
			return false
		}
		if q.Location != nil && *q.Location != "" && !containsFold(c.Location, *q.Location) {
			return false
		}
		return !q.LowStock || c.LowStock()
	}, func(c *model.ChemicalInventory) (time.Time, int64) { return c.LastUpdated, c.ID }, q.Offset, q.Limit)
	return list, total, nil
}
