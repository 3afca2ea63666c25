package memory

import (
	"context"
	"time"

	"github.com/scienceol/chemtrack/pkg/model"
	"github.com/scienceol/chemtrack/pkg/repo"
)

func (s *Store) CreateAlert(_ context.Context, a *model.Alert) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a.ID = s.nextID()
	a.Touch()
	s.st.alerts[a.ID] = *a
	return nil
}

func (s *Store) GetAlert(_ context.Context, id int64) (*model.Alert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.st.alerts[id]
	if !ok {
		return nil, notFound("Alert")
	}
	return &a, nil
}

func (s *Store) SaveAlert(_ context.Context, a *model.Alert) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.st.alerts[a.ID]
	if !ok {
		return notFound("Alert")
	}
	a.UUID, a.CreatedAt, a.UpdatedAt = old.UUID, old.CreatedAt, time.Now()
	s.st.alerts[a.ID] = *a
	return nil
}

func (s *Store) DeleteAlert(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.st.alerts[id]; !ok {
		return notFound("Alert")
	}
	delete(s.st.alerts, id)
	return nil
}

func (s *Store) ListAlerts(_ context.Context, q repo.AlertQuery) ([]*model.Alert, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list, total := page(s.st.alerts, func(a *model.Alert) bool {
		return eq(q.Type, a.Type) && eq(q.Severity, a.Severity) && eq(q.IsRead, a.IsRead) &&
			eq(q.IsDismissed, a.IsDismissed) && eqPtr(q.ChemicalID, a.ChemicalID)
	}, func(a *model.Alert) (time.Time, int64) { return a.CreatedAt, a.ID }, q.Offset, q.Limit)
	return list, total, nil
}

func (s *Store) HasActiveAlert(_ context.Context, chemicalID int64, typ model.AlertType) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.st.alerts {
		if a.Type == typ && !a.IsDismissed && a.ChemicalID != nil && *a.ChemicalID == chemicalID {
			return true, nil
		}
	}
	return false, nil
}
