package common

const (
	DefaultLimit = 50
	MaxLimit     = 1000
)

type PageReq struct {
	Skip  int `form:"skip" json:"skip" binding:"omitempty,gte=0"`
	Limit int `form:"limit" json:"limit" binding:"omitempty,gte=0"`
}

func (p *PageReq) Normalize() {
	if p.Skip < 0 {
		p.Skip = 0
	}
	if p.Limit <= 0 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
}

type PageResp[T any] struct {
	Data  T     `json:"data"`
	Total int64 `json:"total"`
	Skip  int   `json:"skip"`
	Limit int   `json:"limit"`
}

// Label is a value/label pair for enumeration endpoints.
type Label struct {
	Value string `json:"value"`
	Label string `json:"label"`
}
