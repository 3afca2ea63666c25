package memory

import (
	"context"
	"strings"
	"time"

	"github.com/scienceol/chemtrack/pkg/common"
	"github.com/scienceol/chemtrack/pkg/common/code"
	"github.com/scienceol/chemtrack/pkg/model"
	"github.com/scienceol/chemtrack/pkg/repo"
)

func (s *Store) CreateUser(_ context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.st.users {
		if u.UID == user.UID || strings.EqualFold(u.Email, user.Email) {
			return code.EmailAlreadyExist
		}
	}
	user.ID = s.nextID()
	user.Touch()
	s.st.users[user.ID] = *user
	return nil
}

func (s *Store) findUser(match func(*model.User) bool) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.st.users {
		if match(&u) {
			return &u, nil
		}
	}
	return nil, notFound("user")
}

func (s *Store) GetUserByID(_ context.Context, id int64) (*model.User, error) {
	return s.findUser(func(u *model.User) bool { return u.ID == id })
}

func (s *Store) GetUserByUID(_ context.Context, uid string) (*model.User, error) {
	return s.findUser(func(u *model.User) bool { return u.UID == uid })
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	return s.findUser(func(u *model.User) bool { return strings.EqualFold(u.Email, email) })
}

func (s *Store) GetUsersByUIDs(_ context.Context, uids []string) ([]*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	want := make(map[string]struct{}, len(uids))
	for _, uid := range uids {
		want[uid] = struct{}{}
	}
	out := make([]*model.User, 0, len(uids))
	for _, u := range s.st.users {
		if _, ok := want[u.UID]; ok {
			out = append(out, &u)
		}
	}
	return out, nil
}

func (s *Store) SaveUser(_ context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.st.users[user.ID]; !ok {
		return notFound("user")
	}
	user.UpdatedAt = time.Now()
	s.st.users[user.ID] = *user
	return nil
}

func (s *Store) UpdatePresence(_ context.Context, id int64, online *bool, seen time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.st.users[id]
	if !ok {
		return notFound("user")
	}
	u.LastSeen = &seen
	if online != nil {
		u.IsOnline = *online
	}
	s.st.users[id] = u
	return nil
}

func (s *Store) DeleteUser(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.st.users[id]; !ok {
		return notFound("user")
	}
	delete(s.st.users, id)
	return nil
}

func (s *Store) ListUsers(_ context.Context, q repo.UserQuery) ([]*model.User, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list, total := page(s.st.users, func(u *model.User) bool {
		if !eq(q.Role, u.Role) || !eq(q.Approved, u.IsApproved) {
			return false
		}
		if q.SeenSince != nil {
			return u.IsOnline && u.LastSeen != nil && u.LastSeen.After(*q.SeenSince)
		}
		return true
	}, func(u *model.User) (time.Time, int64) { return u.CreatedAt, u.ID }, q.Offset, q.Limit)
	return list, total, nil
}

func (s *Store) CountAdmins(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, u := range s.st.users {
		if u.Role == common.Admin {
			n++
		}
	}
	return n, nil
}

func (s *Store) CreateInvitation(_ context.Context, inv *model.Invitation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	inv.ID = s.nextID()
	inv.Touch()
	s.st.invitations[inv.ID] = *inv
	return nil
}

func (s *Store) GetPendingInvitation(_ context.Context, email string, now time.Time) (*model.Invitation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var found *model.Invitation
	for _, inv := range s.st.invitations {
		if !strings.EqualFold(inv.Email, email) || inv.Status != model.InvitationPending || !inv.ExpiresAt.After(now) {
			continue
		}
		if found == nil || inv.CreatedAt.After(found.CreatedAt) {
			found = &inv
		}
	}
	if found == nil {
		return nil, notFound("invitation")
	}
	return found, nil
}

func (s *Store) SaveInvitation(_ context.Context, inv *model.Invitation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.st.invitations[inv.ID]; !ok {
		return notFound("invitation")
	}
	inv.UpdatedAt = time.Now()
	s.st.invitations[inv.ID] = *inv
	return nil
}

func (s *Store) ListInvitations(_ context.Context, status *model.InvitationStatus, offset, limit int) ([]*model.Invitation, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list, total := page(s.st.invitations, func(inv *model.Invitation) bool { return eq(status, inv.Status) },
		func(inv *model.Invitation) (time.Time, int64) { return inv.CreatedAt, inv.ID }, offset, limit)
	return list, total, nil
}
