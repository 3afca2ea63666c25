package inventory

import (
	"context"

	"github.com/scienceol/chemtrack/pkg/common"
)

type Service interface {
	CreateChemical(ctx context.Context, req *CreateReq) (*ChemicalResp, error)
	UpdateChemical(ctx context.Context, req *UpdateReq) (*UpdateResp, error)
	AddNote(ctx context.Context, req *NoteReq) (*ChemicalResp, error)
	DeleteChemical(ctx context.Context, req *IDReq) error
	GetChemical(ctx context.Context, req *IDReq) (*ChemicalResp, error)
	ListChemicals(ctx context.Context, req *ListReq) (*common.PageResp[[]*ChemicalResp], error)
}
