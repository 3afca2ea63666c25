package user

import (
	"context"
	"errors"
	"time"

	"github.com/scienceol/chemtrack/pkg/common"
	"github.com/scienceol/chemtrack/pkg/common/code"
	"github.com/scienceol/chemtrack/pkg/middleware/logger"
	"github.com/scienceol/chemtrack/pkg/model"
	"github.com/scienceol/chemtrack/pkg/repo"
	"gorm.io/gorm"
)

type userImpl struct {
	*repo.BaseDB
}

func New() repo.UserRepo {
	return &userImpl{BaseDB: repo.NewBaseDB()}
}

func (u *userImpl) CreateUser(ctx context.Context, user *model.User) error {
	if err := u.DBWithContext(ctx).Create(user).Error; err != nil {
		if repo.IsUniqueViolation(err) {
			return code.EmailAlreadyExist
		}
		logger.Errorf(ctx, "CreateUser err: %+v", err)
		return code.CreateDataErr.WithErr(err)
	}
	return nil
}

func (u *userImpl) take(ctx context.Context, query string, args ...any) (*model.User, error) {
	data := &model.User{}
	if err := u.DBWithContext(ctx).Where(query, args...).Take(data).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, code.RecordNotFound.WithMsg("user not found")
		}
		logger.Errorf(ctx, "get user err: %+v", err)
		return nil, code.QueryRecordErr.WithErr(err)
	}
	return data, nil
}

func (u *userImpl) GetUserByID(ctx context.Context, id int64) (*model.User, error) {
	return u.take(ctx, "id = ?", id)
}

func (u *userImpl) GetUserByUID(ctx context.Context, uid string) (*model.User, error) {
	return u.take(ctx, "uid = ?", uid)
}

func (u *userImpl) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return u.take(ctx, "lower(email) = lower(?)", email)
}

func (u *userImpl) GetUsersByUIDs(ctx context.Context, uids []string) ([]*model.User, error) {
	users := make([]*model.User, 0, len(uids))
	if len(uids) == 0 {
		return users, nil
	}
	if err := u.DBWithContext(ctx).Where("uid IN ?", uids).Find(&users).Error; err != nil {
		return nil, code.QueryRecordErr.WithErr(err)
	}
	return users, nil
}

func (u *userImpl) SaveUser(ctx context.Context, user *model.User) error {
	if err := u.DBWithContext(ctx).Save(user).Error; err != nil {
		logger.Errorf(ctx, "SaveUser err: %+v", err)
		return code.UpdateDataErr.WithErr(err)
	}
	return nil
}

func (u *userImpl) UpdatePresence(ctx context.Context, id int64, online *bool, seen time.Time) error {
	data := map[string]any{"last_seen": seen}
	if online != nil {
		data["is_online"] = *online
	}
	res := u.DBWithContext(ctx).Model(&model.User{}).Where("id = ?", id).UpdateColumns(data)
	if res.Error != nil {
		return code.UpdateDataErr.WithErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return code.RecordNotFound.WithMsg("user not found")
	}
	return nil
}

func (u *userImpl) DeleteUser(ctx context.Context, id int64) error {
	res := u.DBWithContext(ctx).Where("id = ?", id).Delete(&model.User{})
	if res.Error != nil {
		return code.DeleteDataErr.WithErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return code.RecordNotFound.WithMsg("user not found")
	}
	return nil
}

func (u *userImpl) ListUsers(ctx context.Context, q repo.UserQuery) ([]*model.User, int64, error) {
	db := u.DBWithContext(ctx).Model(&model.User{})
	if q.Role != nil {
		db = db.Where("role = ?", *q.Role)
	}
	if q.Approved != nil {
		db = db.Where("is_approved = ?", *q.Approved)
	}
	if q.SeenSince != nil {
		db = db.Where("is_online = ? AND last_seen > ?", true, *q.SeenSince)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, code.QueryRecordErr.WithErr(err)
	}
	list := make([]*model.User, 0, q.Limit)
	if err := db.Order("created_at desc").Offset(q.Offset).Limit(q.Limit).Find(&list).Error; err != nil {
		return nil, 0, code.QueryRecordErr.WithErr(err)
	}
	return list, total, nil
}

func (u *userImpl) CountAdmins(ctx context.Context) (int64, error) {
	var count int64
	if err := u.DBWithContext(ctx).Model(&model.User{}).
		Where("role = ?", common.Admin).Count(&count).Error; err != nil {
		return 0, code.QueryRecordErr.WithErr(err)
	}
	return count, nil
}

func (u *userImpl) CreateInvitation(ctx context.Context, inv *model.Invitation) error {
	if err := u.DBWithContext(ctx).Create(inv).Error; err != nil {
		logger.Errorf(ctx, "CreateInvitation err: %+v", err)
		return code.CreateDataErr.WithErr(err)
	}
	return nil
}

func (u *userImpl) GetPendingInvitation(ctx context.Context, email string, now time.Time) (*model.Invitation, error) {
	inv := &model.Invitation{}
	err := u.DBWithContext(ctx).
		Where("lower(email) = lower(?) AND status = ? AND expires_at > ?", email, model.InvitationPending, now).
		Order("created_at desc").
		Take(inv).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, code.RecordNotFound.WithMsg("invitation not found")
		}
		return nil, code.QueryRecordErr.WithErr(err)
	}
	return inv, nil
}

func (u *userImpl) SaveInvitation(ctx context.Context, inv *model.Invitation) error {
	if err := u.DBWithContext(ctx).Save(inv).Error; err != nil {
		return code.UpdateDataErr.WithErr(err)
	}
	return nil
}

func (u *userImpl) ListInvitations(ctx context.Context, status *model.InvitationStatus, offset, limit int) ([]*model.Invitation, int64, error) {
	db := u.DBWithContext(ctx).Model(&model.Invitation{})
	if status != nil {
		db = db.Where("status = ?", *status)
	}
	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, code.QueryRecordErr.WithErr(err)
	}
	list := make([]*model.Invitation, 0, limit)
	if err := db.Order("created_at desc").Offset(offset).Limit(limit).Find(&list).Error; err != nil {
		return nil, 0, code.QueryRecordErr.WithErr(err)
	}
	return list, total, nil
}
