package common

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/scienceol/chemtrack/pkg/common/code"
)

type Resp struct {
	Code   code.ErrCode `json:"code"`
	Data   any          `json:"data,omitempty"`
	Detail string       `json:"detail,omitempty"`
}

func Reply(ctx *gin.Context, err error, data ...any) {
	if err != nil {
		ReplyErr(ctx, err)
		return
	}
	if len(data) > 0 {
		ReplyOk(ctx, data[0])
		return
	}
	ReplyOk(ctx, nil)
}

func ReplyOk(ctx *gin.Context, data any) {
	ctx.JSON(http.StatusOK, &Resp{Code: code.Success, Data: data})
}

func ReplyErr(ctx *gin.Context, err error) {
	c := code.CodeOf(err)
	ctx.JSON(c.HTTPStatus(), &Resp{Code: c, Detail: err.Error()})
}

// AbortErr replies and stops the handler chain, used by middlewares.
func AbortErr(ctx *gin.Context, err error) {
	ReplyErr(ctx, err)
	ctx.Abort()
}
