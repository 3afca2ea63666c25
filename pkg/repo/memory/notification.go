package memory

import (
	"context"
	"slices"
	"time"

	"github.com/scienceol/chemtrack/pkg/model"
	"github.com/scienceol/chemtrack/pkg/repo"
)

func copyNotification(n model.Notification) *model.Notification {
	n.Recipients = slices.Clone(n.Recipients)
	return &n
}

func (s *Store) CreateNotification(_ context.Context, n *model.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n.ID = s.nextID()
	n.Touch()
	s.st.notifications[n.ID] = *copyNotification(*n)
	return nil
}

func (s *Store) GetNotification(_ context.Context, id int64) (*model.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.st.notifications[id]
	if !ok {
		return nil, notFound("Notification")
	}
	return copyNotification(n), nil
}

func (s *Store) SaveNotification(_ context.Context, n *model.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.st.notifications[n.ID]
	if !ok {
		return notFound("Notification")
	}
	n.UUID, n.CreatedAt, n.UpdatedAt = old.UUID, old.CreatedAt, time.Now()
	s.st.notifications[n.ID] = *copyNotification(*n)
	return nil
}

func (s *Store) DeleteNotification(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.st.notifications[id]; !ok {
		return notFound("Notification")
	}
	delete(s.st.notifications, id)
	return nil
}

func (s *Store) ListNotifications(_ context.Context, q repo.NotificationQuery) ([]*model.Notification, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list, total := page(s.st.notifications, func(n *model.Notification) bool {
		if q.Role != nil && !n.HasRecipient(*q.Role) {
			return false
		}
		return eq(q.Category, n.Category) && eq(q.Priority, n.Priority) && eq(q.Status, n.Status) &&
			eq(q.Severity, n.Severity) && eq(q.IsRead, n.IsRead) && eq(q.IsDismissed, n.IsDismissed)
	}, func(n *model.Notification) (time.Time, int64) { return n.CreatedAt, n.ID }, q.Offset, q.Limit)
	for i, n := range list {
		list[i] = copyNotification(*n)
	}
	return list, total, nil
}
