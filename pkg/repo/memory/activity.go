package memory

import (
	"context"
	"time"

	"github.com/scienceol/chemtrack/pkg/common/code"
	"github.com/scienceol/chemtrack/pkg/model"
	"github.com/scienceol/chemtrack/pkg/repo"
)

func (s *Store) CreateLogs(_ context.Context, logs []*model.ActivityLog) error {
	if s.LogWriteErr != nil {
		return code.AuditRecordErr.WithErr(s.LogWriteErr)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, l := range logs {
		l.ID = s.nextID()
		if l.Timestamp.IsZero() {
			l.Timestamp = time.Now()
		}
		s.st.logs[l.ID] = *l
	}
	return nil
}

func (s *Store) GetLog(_ context.Context, id int64) (*model.ActivityLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.st.logs[id]
	if !ok {
		return nil, notFound("Activity log")
	}
	return &l, nil
}

func (s *Store) ListLogs(_ context.Context, q repo.ActivityQuery) ([]*model.ActivityLog, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list, total := page(s.st.logs, func(l *model.ActivityLog) bool {
		if !eqPtr(q.UserID, l.UserID) || !eq(q.Action, l.Action) ||
			!eqPtr(q.Table, l.TableModified) || !eqPtr(q.RecordID, l.RecordID) {
			return false
		}
		if q.Start != nil && l.Timestamp.Before(*q.Start) {
			return false
		}
		return q.End == nil || !l.Timestamp.After(*q.End)
	}, func(l *model.ActivityLog) (time.Time, int64) { return l.Timestamp, l.ID }, q.Offset, q.Limit)
	return list, total, nil
}

func (s *Store) UpdateLogNote(_ context.Context, id int64, note string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.st.logs[id]
	if !ok {
		return notFound("Activity log")
	}
	l.Note = &note
	s.st.logs[id] = l
	return nil
}
