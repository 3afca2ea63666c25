package policy

import (
	"slices"
	"time"

	"github.com/scienceol/chemtrack/pkg/common"
)

type InventoryField string

const (
	FieldName           InventoryField = "name"
	FieldQuantity       InventoryField = "quantity"
	FieldUnit           InventoryField = "unit"
	FieldFormulation    InventoryField = "formulation"
	FieldNotes          InventoryField = "notes"
	FieldAlertThreshold InventoryField = "alert_threshold"
	FieldSupplier       InventoryField = "supplier"
	FieldLocation       InventoryField = "location"
	FieldExpiryDate     InventoryField = "expiry_date"
)

var InventoryFields = []InventoryField{
	FieldName, FieldQuantity, FieldUnit, FieldFormulation, FieldNotes,
	FieldAlertThreshold, FieldSupplier, FieldLocation, FieldExpiryDate,
}

var (
	labFields     = []InventoryField{FieldQuantity, FieldFormulation, FieldNotes, FieldAlertThreshold, FieldSupplier, FieldLocation}
	accountFields = []InventoryField{FieldQuantity, FieldNotes}
)

// WritableFields is the inventory allow-list of role; unknown roles get none.
func WritableFields(role common.Role) []InventoryField {
	switch role {
	case common.Admin:
		return InventoryFields
	case common.LabStaff, common.Product:
		return labFields
	case common.Account:
		return accountFields
	case common.AllUsers:
		return nil
	default:
		return nil
	}
}

// ResolveWritableFields returns requested ∩ WritableFields(role), in request order.
func ResolveWritableFields(role common.Role, requested []InventoryField) []InventoryField {
	allowed := WritableFields(role)
	out := make([]InventoryField, 0, len(requested))
	for _, f := range requested {
		if slices.Contains(allowed, f) && !slices.Contains(out, f) {
			out = append(out, f)
		}
	}
	return out
}

// InventoryPatch carries one optional value per writable column.
// Notes is appended to the existing notes, never replacing them.
type InventoryPatch struct {
	Name           *string    `json:"name,omitempty"`
	Quantity       *float64   `json:"quantity,omitempty" binding:"omitempty,gte=0"`
	Unit           *string    `json:"unit,omitempty"`
	Formulation    *string    `json:"formulation,omitempty"`
	Notes          *string    `json:"notes,omitempty"`
	AlertThreshold *float64   `json:"alert_threshold,omitempty" binding:"omitempty,gte=0"`
	Supplier       *string    `json:"supplier,omitempty"`
	Location       *string    `json:"location,omitempty"`
	ExpiryDate     *time.Time `json:"expiry_date,omitempty"`
}

// Fields lists the columns the patch sets.
func (p InventoryPatch) Fields() []InventoryField {
	out := make([]InventoryField, 0, len(InventoryFields))
	for _, f := range InventoryFields {
		if p.has(f) {
			out = append(out, f)
		}
	}
	return out
}

func (p InventoryPatch) has(f InventoryField) bool {
	switch f {
	case FieldName:
		return p.Name != nil
	case FieldQuantity:
		return p.Quantity != nil
	case FieldUnit:
		return p.Unit != nil
	case FieldFormulation:
		return p.Formulation != nil
	case FieldNotes:
		return p.Notes != nil
	case FieldAlertThreshold:
		return p.AlertThreshold != nil
	case FieldSupplier:
		return p.Supplier != nil
	case FieldLocation:
		return p.Location != nil
	case FieldExpiryDate:
		return p.ExpiryDate != nil
	}
	return false
}

func (p *InventoryPatch) clear(f InventoryField) {
	switch f {
	case FieldName:
		p.Name = nil
	case FieldQuantity:
		p.Quantity = nil
	case FieldUnit:
		p.Unit = nil
	case FieldFormulation:
		p.Formulation = nil
	case FieldNotes:
		p.Notes = nil
	case FieldAlertThreshold:
		p.AlertThreshold = nil
	case FieldSupplier:
		p.Supplier = nil
	case FieldLocation:
		p.Location = nil
	case FieldExpiryDate:
		p.ExpiryDate = nil
	}
}

// Mask returns a copy of p holding only the fields role may write.
func (p InventoryPatch) Mask(role common.Role) InventoryPatch {
	allowed := ResolveWritableFields(role, p.Fields())
	for _, f := range InventoryFields {
		if !slices.Contains(allowed, f) {
			p.clear(f)
		}
	}
	return p
}
