package inventory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/scienceol/chemtrack/pkg/common"
	"github.com/scienceol/chemtrack/pkg/common/code"
	"github.com/scienceol/chemtrack/pkg/core/audit"
	"github.com/scienceol/chemtrack/pkg/core/inventory"
	"github.com/scienceol/chemtrack/pkg/core/notify"
	"github.com/scienceol/chemtrack/pkg/core/policy"
	"github.com/scienceol/chemtrack/pkg/middleware/auth"
	"github.com/scienceol/chemtrack/pkg/middleware/logger"
	"github.com/scienceol/chemtrack/pkg/model"
	"github.com/scienceol/chemtrack/pkg/repo"
	"github.com/scienceol/chemtrack/pkg/repo/store"
	"github.com/scienceol/chemtrack/pkg/utils"
)

const (
	table      = "chemical_inventory"
	noteLayout = "2006-01-02 15:04:05"
)

type inventoryImpl struct {
	tx        repo.Transactor
	items     repo.InventoryRepo
	alerts    repo.AlertRepo
	users     repo.UserRepo
	recorder  *audit.Recorder
	msgCenter notify.MsgCenter
	now       func() time.Time
}

func New(st *store.Store, msgCenter notify.MsgCenter) inventory.Service {
	return &inventoryImpl{
		tx:        st.Tx,
		items:     st.Inventory,
		alerts:    st.Alerts,
		users:     st.Users,
		recorder:  audit.NewRecorder(st.Activity),
		msgCenter: msgCenter,
		now:       time.Now,
	}
}

func (i *inventoryImpl) CreateChemical(ctx context.Context, req *inventory.CreateReq) (*inventory.ChemicalResp, error) {
	user := auth.GetCurrentUser(ctx)
	if user == nil {
		return nil, code.UnLogin
	}
	if err := policy.Authorize(user.Role, policy.CreateInventory); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Unit) == "" {
		return nil, code.ParamErr.WithMsg("name and unit are required")
	}
	if req.Quantity < 0 {
		return nil, code.ParamErr.WithMsg("quantity must not be negative")
	}

	item := &model.ChemicalInventory{
		Name:           req.Name,
		Quantity:       req.Quantity,
		Unit:           req.Unit,
		Formulation:    req.Formulation,
		Notes:          req.Notes,
		AlertThreshold: req.AlertThreshold,
		Supplier:       req.Supplier,
		Location:       req.Location,
		ExpiryDate:     req.ExpiryDate,
		UpdatedBy:      &user.UID,
		LastUpdated:    i.now(),
	}
	entry := &audit.Entry{
		Actor:       user,
		Action:      audit.CreateChemical,
		Table:       table,
		Description: "Created chemical inventory item: " + req.Name,
	}
	if err := audit.Mutate(ctx, i.tx, i.recorder, entry, func(txCtx context.Context) ([]audit.Change, error) {
		if err := i.items.CreateChemical(txCtx, item); err != nil {
			return nil, err
		}
		entry.RecordID = item.ID
		return nil, nil
	}); err != nil {
		return nil, err
	}

	i.checkStock(ctx, item)
	return &inventory.ChemicalResp{ChemicalInventory: item, UpdatedByUser: user.Brief()}, nil
}

func (i *inventoryImpl) UpdateChemical(ctx context.Context, req *inventory.UpdateReq) (*inventory.UpdateResp, error) {
	user := auth.GetCurrentUser(ctx)
	if user == nil {
		return nil, code.UnLogin
	}
	patch := req.InventoryPatch.Mask(user.Role)
	if patch.Notes != nil && strings.TrimSpace(*patch.Notes) == "" {
		patch.Notes = nil
	}
	applied := patch.Fields()

	if len(applied) == 0 {
		item, err := i.items.GetChemical(ctx, req.ID)
		if err != nil {
			return nil, err
		}
		return &inventory.UpdateResp{ChemicalResp: i.withUser(ctx, item), AppliedFields: applied}, nil
	}
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return nil, code.ParamErr.WithMsg("name must not be empty")
	}
	if patch.Unit != nil && strings.TrimSpace(*patch.Unit) == "" {
		return nil, code.ParamErr.WithMsg("unit must not be empty")
	}
	if patch.Quantity != nil && *patch.Quantity < 0 {
		return nil, code.ParamErr.WithMsg("quantity must not be negative")
	}
	if patch.AlertThreshold != nil && *patch.AlertThreshold < 0 {
		return nil, code.ParamErr.WithMsg("alert_threshold must not be negative")
	}

	var item *model.ChemicalInventory
	quantityChanged := false
	entry := &audit.Entry{Actor: user, Action: audit.UpdateChemical, Table: table, RecordID: req.ID, OnlyChanges: true}
	err := audit.Mutate(ctx, i.tx, i.recorder, entry, func(txCtx context.Context) ([]audit.Change, error) {
		var err error
		item, err = i.items.GetChemicalForUpdate(txCtx, req.ID)
		if err != nil {
			return nil, err
		}
		entry.Description = "Updated chemical: " + item.Name
		changes := i.apply(item, &patch)
		if len(changes) == 0 && patch.Notes == nil {
			return nil, nil
		}
		for _, c := range changes {
			quantityChanged = quantityChanged || c.Field == string(policy.FieldQuantity)
		}
		item.UpdatedBy = &user.UID
		item.LastUpdated = i.now()
		if err := i.items.SaveChemical(txCtx, item); err != nil {
			return nil, err
		}
		if patch.Notes != nil {
			change, err := i.appendNote(txCtx, item, i.noteLine(user, *patch.Notes))
			if err != nil {
				return nil, err
			}
			changes = append(changes, change)
		}
		return changes, nil
	})
	if err != nil {
		return nil, err
	}

	if quantityChanged || patch.AlertThreshold != nil {
		i.checkStock(ctx, item)
	}
	return &inventory.UpdateResp{ChemicalResp: i.withUser(ctx, item), AppliedFields: applied}, nil
}

// apply writes patch onto item and returns the field changes.
// Notes are left to appendNote.
func (i *inventoryImpl) apply(item *model.ChemicalInventory, patch *policy.InventoryPatch) []audit.Change {
	var changes []audit.Change
	if patch.Name != nil {
		changes = audit.Diff(changes, string(policy.FieldName), item.Name, *patch.Name)
		item.Name = *patch.Name
	}
	if patch.Quantity != nil {
		changes = audit.Diff(changes, string(policy.FieldQuantity), item.Quantity, *patch.Quantity)
		item.Quantity = *patch.Quantity
	}
	if patch.Unit != nil {
		changes = audit.Diff(changes, string(policy.FieldUnit), item.Unit, *patch.Unit)
		item.Unit = *patch.Unit
	}
	if patch.Formulation != nil {
		changes = audit.Diff(changes, string(policy.FieldFormulation), item.Formulation, *patch.Formulation)
		item.Formulation = patch.Formulation
	}
	if patch.AlertThreshold != nil {
		changes = audit.Diff(changes, string(policy.FieldAlertThreshold), item.AlertThreshold, *patch.AlertThreshold)
		item.AlertThreshold = patch.AlertThreshold
	}
	if patch.Supplier != nil {
		changes = audit.Diff(changes, string(policy.FieldSupplier), item.Supplier, *patch.Supplier)
		item.Supplier = patch.Supplier
	}
	if patch.Location != nil {
		changes = audit.Diff(changes, string(policy.FieldLocation), item.Location, *patch.Location)
		item.Location = patch.Location
	}
	if patch.ExpiryDate != nil {
		changes = audit.Diff(changes, string(policy.FieldExpiryDate), item.ExpiryDate, *patch.ExpiryDate)
		item.ExpiryDate = patch.ExpiryDate
	}
	return changes
}

func (i *inventoryImpl) noteLine(user *model.User, note string) string {
	return fmt.Sprintf("[%s] %s: %s", i.now().Format(noteLayout), user.DisplayName(), strings.TrimSpace(note))
}

// appendNote adds line to the stored notes in place, so a concurrent append is never overwritten.
func (i *inventoryImpl) appendNote(ctx context.Context, item *model.ChemicalInventory, line string) (audit.Change, error) {
	before := item.Notes
	notes, err := i.items.AppendChemicalNote(ctx, item.ID, line)
	if err != nil {
		return audit.Change{}, err
	}
	item.Notes = &notes
	return audit.Change{Field: string(policy.FieldNotes), Old: audit.Format(before), New: notes}, nil
}

func (i *inventoryImpl) AddNote(ctx context.Context, req *inventory.NoteReq) (*inventory.ChemicalResp, error) {
	user := auth.GetCurrentUser(ctx)
	if user == nil {
		return nil, code.UnLogin
	}
	note := strings.TrimSpace(req.Note)
	if note == "" {
		return nil, code.ParamErr.WithMsg("note must not be empty")
	}

	var item *model.ChemicalInventory
	entry := &audit.Entry{Actor: user, Action: audit.AddNoteChemical, Table: table, RecordID: req.ID}
	if err := audit.Mutate(ctx, i.tx, i.recorder, entry, func(txCtx context.Context) ([]audit.Change, error) {
		var err error
		item, err = i.items.GetChemicalForUpdate(txCtx, req.ID)
		if err != nil {
			return nil, err
		}
		entry.Description = "Added note to chemical: " + item.Name
		item.UpdatedBy = &user.UID
		item.LastUpdated = i.now()
		if err := i.items.SaveChemical(txCtx, item); err != nil {
			return nil, err
		}
		if _, err := i.appendNote(txCtx, item, i.noteLine(user, note)); err != nil {
			return nil, err
		}
		return []audit.Change{{Field: string(policy.FieldNotes), New: note}}, nil
	}); err != nil {
		return nil, err
	}
	return &inventory.ChemicalResp{ChemicalInventory: item, UpdatedByUser: user.Brief()}, nil
}

func (i *inventoryImpl) DeleteChemical(ctx context.Context, req *inventory.IDReq) error {
	user := auth.GetCurrentUser(ctx)
	if user == nil {
		return code.UnLogin
	}
	if err := policy.Authorize(user.Role, policy.DeleteInventory); err != nil {
		return err
	}
	entry := &audit.Entry{Actor: user, Action: audit.DeleteChemical, Table: table, RecordID: req.ID}
	return audit.Mutate(ctx, i.tx, i.recorder, entry, func(txCtx context.Context) ([]audit.Change, error) {
		item, err := i.items.GetChemical(txCtx, req.ID)
		if err != nil {
			return nil, err
		}
		entry.Description = "Deleted chemical inventory item: " + item.Name
		if err := i.items.DeleteChemical(txCtx, req.ID); err != nil {
			return nil, err
		}
		return nil, nil
	})
}

func (i *inventoryImpl) GetChemical(ctx context.Context, req *inventory.IDReq) (*inventory.ChemicalResp, error) {
	item, err := i.items.GetChemical(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	return i.withUser(ctx, item), nil
}

func (i *inventoryImpl) ListChemicals(ctx context.Context, req *inventory.ListReq) (*common.PageResp[[]*inventory.ChemicalResp], error) {
	req.Normalize()
	items, total, err := i.items.ListChemicals(ctx, repo.ChemicalQuery{
		Search:   req.Search,
		Supplier: req.Supplier,
		Location: req.Location,
		LowStock: req.LowStock,
		Offset:   req.Skip,
		Limit:    req.Limit,
	})
	if err != nil {
		return nil, err
	}

	uids := utils.FilterUniqSlice(items, func(c *model.ChemicalInventory) (string, bool) {
		return utils.Deref(c.UpdatedBy, ""), c.UpdatedBy != nil
	})
	userMap := map[string]*model.User{}
	if len(uids) > 0 {
		users, err := i.users.GetUsersByUIDs(ctx, uids)
		if err != nil {
			logger.Warnf(ctx, "ListChemicals load updaters err: %+v", err)
		}
		userMap = utils.Slice2Map(users, func(u *model.User) (string, *model.User) { return u.UID, u })
	}

	resp := make([]*inventory.ChemicalResp, 0, len(items))
	for _, item := range items {
		r := &inventory.ChemicalResp{ChemicalInventory: item}
		if item.UpdatedBy != nil {
			r.UpdatedByUser = userMap[*item.UpdatedBy].Brief()
		}
		resp = append(resp, r)
	}
	return &common.PageResp[[]*inventory.ChemicalResp]{Data: resp, Total: total, Skip: req.Skip, Limit: req.Limit}, nil
}

func (i *inventoryImpl) withUser(ctx context.Context, item *model.ChemicalInventory) *inventory.ChemicalResp {
	resp := &inventory.ChemicalResp{ChemicalInventory: item}
	if item.UpdatedBy == nil {
		return resp
	}
	u, err := i.users.GetUserByUID(ctx, *item.UpdatedBy)
	if err == nil {
		resp.UpdatedByUser = u.Brief()
	}
	return resp
}
