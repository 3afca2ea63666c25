package model

import (
	"strings"
	"time"

	"github.com/scienceol/chemtrack/pkg/common"
)

type User struct {
	BaseModel
	UID        string      `gorm:"type:varchar(128);uniqueIndex;not null" json:"uid"`
	Email      string      `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	FirstName  string      `gorm:"type:varchar(120);not null;default:''" json:"first_name"`
	LastName   string      `gorm:"type:varchar(120);not null;default:''" json:"last_name"`
	Phone      *string     `gorm:"type:varchar(32)" json:"phone"`
	Role       common.Role `gorm:"type:varchar(32);not null;default:all_users;index" json:"role"`
	IsApproved bool        `gorm:"not null;default:false;index" json:"is_approved"`
	IsOnline   bool        `gorm:"not null;default:false" json:"is_online"`
	LastSeen   *time.Time  `json:"last_seen"`
	LastLogin  *time.Time  `json:"last_login"`
}

func (*User) TableName() string { return "users" }

func (u *User) DisplayName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Email
	}
	return name
}

// OnlineAt reports presence at now: the explicit toggle holds only while the
// heartbeat is fresher than threshold.
func (u *User) OnlineAt(now time.Time, threshold time.Duration) bool {
	if !u.IsOnline || u.LastSeen == nil {
		return false
	}
	return now.Sub(*u.LastSeen) < threshold
}

type InvitationStatus string

const (
	InvitationPending  InvitationStatus = "pending"
	InvitationAccepted InvitationStatus = "accepted"
	InvitationRevoked  InvitationStatus = "revoked"
)

type Invitation struct {
	BaseModel
	Email     string           `gorm:"type:varchar(255);not null;index" json:"email"`
	Role      common.Role      `gorm:"type:varchar(32);not null" json:"role"`
	InvitedBy string           `gorm:"type:varchar(128);not null" json:"invited_by"`
	Status    InvitationStatus `gorm:"type:varchar(16);not null;default:pending" json:"status"`
	ExpiresAt time.Time        `gorm:"not null" json:"expires_at"`
}

func (*Invitation) TableName() string { return "invitations" }

// UserBrief is the user summary embedded in other responses.
type UserBrief struct {
	UID       string      `json:"uid"`
	FirstName string      `json:"first_name"`
	LastName  string      `json:"last_name"`
	Role      common.Role `json:"role"`
}

func (u *User) Brief() *UserBrief {
	if u == nil {
		return nil
	}
	return &UserBrief{UID: u.UID, FirstName: u.FirstName, LastName: u.LastName, Role: u.Role}
}
