package user

import (
	"time"

	"github.com/scienceol/chemtrack/pkg/common"
	"github.com/scienceol/chemtrack/pkg/model"
)

type IDReq struct {
	ID int64 `uri:"id" binding:"required,gt=0"`
}

type UIDReq struct {
	UID string `uri:"uid" binding:"required"`
}

type RegisterReq struct {
	FirstName string      `json:"first_name" binding:"required"`
	LastName  string      `json:"last_name"`
	Phone     *string     `json:"phone"`
	Role      common.Role `json:"role"`
}

type RegisterResp struct {
	Message    string      `json:"message"`
	IsApproved bool        `json:"is_approved"`
	User       *model.User `json:"user"`
}

type LoginResp struct {
	User        *model.User `json:"user"`
	Permissions []string    `json:"permissions"`
}

type UserResp struct {
	*model.User
	// Online is the presence derived at read time.
	Online bool `json:"online"`
}

type StatusResp struct {
	UID      string     `json:"uid"`
	Online   bool       `json:"online"`
	LastSeen *time.Time `json:"last_seen"`
}

type PingResp struct {
	LastSeen time.Time `json:"last_seen"`
}

type DashboardResp struct {
	Role        common.Role `json:"role"`
	Permissions []string    `json:"permissions"`
}

type ListReq struct {
	common.PageReq
	Role     *common.Role `form:"role"`
	Approved *bool        `form:"approved"`
}

type RoleReq struct {
	ID   int64       `json:"-" uri:"id"`
	Role common.Role `json:"role" binding:"required"`
}

type InvitationReq struct {
	Email string      `json:"email" binding:"required,email"`
	Role  common.Role `json:"role" binding:"required"`
	// TTL defaults to seven days.
	ExpiresInDays int `json:"expires_in_days" binding:"omitempty,gte=1,lte=90"`
}

type InvitationListReq struct {
	common.PageReq
	Status *model.InvitationStatus `form:"status"`
}

type ActivityReq struct {
	common.PageReq
}
