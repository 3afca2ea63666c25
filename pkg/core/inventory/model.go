package inventory

import (
	"time"

	"github.com/scienceol/chemtrack/pkg/common"
	"github.com/scienceol/chemtrack/pkg/core/policy"
	"github.com/scienceol/chemtrack/pkg/model"
)

type IDReq struct {
	ID int64 `uri:"id" binding:"required,gt=0"`
}

type CreateReq struct {
	Name           string     `json:"name" binding:"required"`
	Quantity       float64    `json:"quantity" binding:"gte=0"`
	Unit           string     `json:"unit" binding:"required"`
	Formulation    *string    `json:"formulation"`
	Notes          *string    `json:"notes"`
	AlertThreshold *float64   `json:"alert_threshold" binding:"omitempty,gte=0"`
	Supplier       *string    `json:"supplier"`
	Location       *string    `json:"location"`
	ExpiryDate     *time.Time `json:"expiry_date"`
}

type UpdateReq struct {
	ID int64 `json:"-" uri:"id"`
	policy.InventoryPatch
}

type NoteReq struct {
	ID   int64  `json:"-" uri:"id"`
	Note string `json:"note" binding:"required"`
}

type ListReq struct {
	common.PageReq
	Search   *string `form:"search"`
	Supplier *string `form:"supplier"`
	Location *string `form:"location"`
	LowStock bool    `form:"low_stock"`
}

type ChemicalResp struct {
	*model.ChemicalInventory
	UpdatedByUser *model.UserBrief `json:"updated_by_user"`
}

// UpdateResp reports which requested fields were applied; the others were
// dropped by the role allow-list.
type UpdateResp struct {
	*ChemicalResp
	AppliedFields []policy.InventoryField `json:"applied_fields"`
}
