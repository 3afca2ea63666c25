package repo

import (
	"context"
	"time"

	"github.com/scienceol/chemtrack/pkg/common"
	"github.com/scienceol/chemtrack/pkg/model"
)

type UserQuery struct {
	Role      *common.Role
	Approved  *bool
	SeenSince *time.Time // only users with last_seen after this and the online toggle set
	Offset    int
	Limit     int
}

type UserRepo interface {
	Transactor

	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id int64) (*model.User, error)
	GetUserByUID(ctx context.Context, uid string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUsersByUIDs(ctx context.Context, uids []string) ([]*model.User, error)
	SaveUser(ctx context.Context, user *model.User) error
	// UpdatePresence is last-write-wins; online nil keeps the toggle.
	UpdatePresence(ctx context.Context, id int64, online *bool, seen time.Time) error
	DeleteUser(ctx context.Context, id int64) error
	ListUsers(ctx context.Context, q UserQuery) ([]*model.User, int64, error)
	CountAdmins(ctx context.Context) (int64, error)

	CreateInvitation(ctx context.Context, inv *model.Invitation) error
	GetPendingInvitation(ctx context.Context, email string, now time.Time) (*model.Invitation, error)
	SaveInvitation(ctx context.Context, inv *model.Invitation) error
	ListInvitations(ctx context.Context, status *model.InvitationStatus, offset, limit int) ([]*model.Invitation, int64, error)
}
