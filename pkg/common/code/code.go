package code

import (
	"errors"
	"fmt"
	"net/http"
)

type ErrCode int

// Kind groups codes by how the caller should react; it decides the http status.
type Kind int

const (
	KindUnexpected Kind = iota
	KindValidation
	KindConflict
	KindUnauthenticated
	KindPermissionDenied
	KindNotFound
)

const (
	Success ErrCode = 0

	UnDefineErr ErrCode = iota + 10000
	ParamErr
	UnLogin
	LoginFormatErr
	InvalidToken
	IdentityProviderErr
	PermissionDenied
	AccountPendingApproval
	RecordNotFound
	StatusConflict
	TransactionNotPending
	EmailAlreadyExist
	DeleteCommentRequired
	QueryRecordErr
	CreateDataErr
	UpdateDataErr
	DeleteDataErr
	AuditRecordErr
	OrderNumberConflict
	NotifyActionAlreadyRegistryErr
	NotifySendMsgErr
	WebsocketUpgradeErr
	OAuthStateErr
	ExchangeTokenErr
	RefreshTokenErr
)

var codeMsg = map[ErrCode]string{
	Success:                        "success",
	UnDefineErr:                    "undefined error",
	ParamErr:                       "parameter error",
	UnLogin:                        "not logged in",
	LoginFormatErr:                 "authorization format error",
	InvalidToken:                   "invalid token",
	IdentityProviderErr:            "identity provider unavailable",
	PermissionDenied:               "permission denied",
	AccountPendingApproval:         "Account pending approval",
	RecordNotFound:                 "record not found",
	StatusConflict:                 "invalid state transition",
	TransactionNotPending:          "transaction is not pending",
	EmailAlreadyExist:              "email already registered",
	DeleteCommentRequired:          "A comment is required to delete this notification.",
	QueryRecordErr:                 "query record error",
	CreateDataErr:                  "create data error",
	UpdateDataErr:                  "update data error",
	DeleteDataErr:                  "delete data error",
	AuditRecordErr:                 "write activity log error",
	OrderNumberConflict:            "order number already exists",
	NotifyActionAlreadyRegistryErr: "notify action already registered",
	NotifySendMsgErr:               "send notify message error",
	WebsocketUpgradeErr:            "websocket upgrade error",
	OAuthStateErr:                  "invalid or expired oauth state",
	ExchangeTokenErr:               "exchange oauth token error",
	RefreshTokenErr:                "refresh token error",
}

var codeKind = map[ErrCode]Kind{
	ParamErr:               KindValidation,
	EmailAlreadyExist:      KindValidation,
	DeleteCommentRequired:  KindValidation,
	UnLogin:                KindUnauthenticated,
	LoginFormatErr:         KindUnauthenticated,
	InvalidToken:           KindUnauthenticated,
	OAuthStateErr:          KindUnauthenticated,
	RefreshTokenErr:        KindUnauthenticated,
	PermissionDenied:       KindPermissionDenied,
	AccountPendingApproval: KindPermissionDenied,
	RecordNotFound:         KindNotFound,
	StatusConflict:         KindConflict,
	TransactionNotPending:  KindConflict,
}

func (e ErrCode) String() string {
	if msg, ok := codeMsg[e]; ok {
		return msg
	}
	return fmt.Sprintf("error code %d", int(e))
}

func (e ErrCode) Error() string {
	return e.String()
}

func (e ErrCode) Kind() Kind {
	return codeKind[e]
}

func (e ErrCode) HTTPStatus() int {
	switch e.Kind() {
	case KindValidation, KindConflict:
		return http.StatusBadRequest
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindPermissionDenied:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func (e ErrCode) WithMsg(msg string) *Error {
	return &Error{Code: e, Msg: msg}
}

func (e ErrCode) WithMsgf(format string, args ...any) *Error {
	return &Error{Code: e, Msg: fmt.Sprintf(format, args...)}
}

func (e ErrCode) WithErr(err error) *Error {
	ret := &Error{Code: e, err: err}
	if err != nil {
		ret.Msg = err.Error()
	}
	return ret
}

// Error is an ErrCode carrying a caller-facing detail message and an optional cause.
type Error struct {
	Code ErrCode
	Msg  string
	err  error
}

func (e *Error) Error() string {
	if e.Msg == "" {
		return e.Code.String()
	}
	return e.Msg
}

func (e *Error) Unwrap() error {
	return e.err
}

func (e *Error) Is(target error) bool {
	var c ErrCode
	if errors.As(target, &c) {
		return e.Code == c
	}
	return false
}

// CodeOf extracts the ErrCode carried by err, UnDefineErr when none.
func CodeOf(err error) ErrCode {
	if err == nil {
		return Success
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	var c ErrCode
	if errors.As(err, &c) {
		return c
	}
	return UnDefineErr
}
