package repo

import (
	"context"

	"github.com/scienceol/chemtrack/pkg/model"
)

type ChemicalQuery struct {
	Search   *string // name, formulation or supplier, case insensitive
	Supplier *string
	Location *string
	LowStock bool
	Offset   int
	Limit    int
}

type InventoryRepo interface {
	Transactor

	CreateChemical(ctx context.Context, item *model.ChemicalInventory) error
	GetChemical(ctx context.Context, id int64) (*model.ChemicalInventory, error)
	// GetChemicalForUpdate reads id and holds its row lock until the surrounding tx ends.
	GetChemicalForUpdate(ctx context.Context, id int64) (*model.ChemicalInventory, error)
	// SaveChemical writes every column except notes, which only grow through AppendChemicalNote.
	SaveChemical(ctx context.Context, item *model.ChemicalInventory) error
	// AppendChemicalNote adds line below the current notes in one statement and returns the result.
	AppendChemicalNote(ctx context.Context, id int64, line string) (string, error)
	DeleteChemical(ctx context.Context, id int64) error
	ListChemicals(ctx context.Context, q ChemicalQuery) ([]*model.ChemicalInventory, int64, error)
}
