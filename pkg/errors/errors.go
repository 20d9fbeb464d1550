// Package errors 提供统一的错误定义
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// ErrorCode 错误码类型
type ErrorCode string

// 预定义错误码
const (
	// 通用错误 (1xxx)
	CodeSuccess            ErrorCode = "0"
	CodeUnknown            ErrorCode = "1000"
	CodeInvalidParam       ErrorCode = "1001"
	CodeUnauthorized       ErrorCode = "1002"
	CodeForbidden          ErrorCode = "1003"
	CodeNotFound           ErrorCode = "1004"
	CodeConflict           ErrorCode = "1005"
	CodeTooManyRequests    ErrorCode = "1006"
	CodeInternalError      ErrorCode = "1007"
	CodeServiceUnavailable ErrorCode = "1008"

	// 认证错误 (2xxx)
	CodeTokenExpired    ErrorCode = "2001"
	CodeTokenInvalid    ErrorCode = "2002"
	CodeIdentityMissing ErrorCode = "2003"

	// 匹配与资源错误 (3xxx)
	CodeNoMatch          ErrorCode = "3001"
	CodeFeedNotFound     ErrorCode = "3002"
	CodeMovieNotFound    ErrorCode = "3003"
	CodeItemNotDisplayed ErrorCode = "3004"

	// 业务错误 (4xxx)
	CodeRetrievalFailed ErrorCode = "4003"
	CodeSaveFailed      ErrorCode = "4004"
	CodeSeedFailed      ErrorCode = "4005"

	// 外部依赖错误 (5xxx)
	CodeDatabaseError  ErrorCode = "5001"
	CodeCacheError     ErrorCode = "5002"
	CodeVectorDBError  ErrorCode = "5003"
	CodeMessagingError ErrorCode = "5004"
	CodeMetadataError  ErrorCode = "5006"
)

// Category 面向调用方的错误类别
type Category string

const (
	CategoryValidation Category = "validation"
	CategoryNoMatch    Category = "no_match"
	CategoryDependency Category = "dependency"
	CategoryNotFound   Category = "not_found"
	CategoryAuth       Category = "auth"
	CategoryInternal   Category = "internal"
)

// AppError 应用错误
type AppError struct {
	Code       ErrorCode `json:"code"`
	Message    string    `json:"message"`
	Detail     string    `json:"detail,omitempty"`
	Field      string    `json:"field,omitempty"`
	HTTPStatus int       `json:"-"`
	Err        error     `json:"-"`
}

// Error 实现 error 接口
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap 返回底层错误
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is 按错误码比较，使预定义错误可用于 errors.Is
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// WithDetail 返回附带详细信息的副本
func (e *AppError) WithDetail(detail string) *AppError {
	cp := *e
	cp.Detail = detail
	return &cp
}

// WithError 返回附带底层错误的副本
func (e *AppError) WithError(err error) *AppError {
	cp := *e
	cp.Err = err
	return &cp
}

// Category 返回错误类别
func (e *AppError) Category() Category {
	return codeToCategory(e.Code)
}

// New 创建新的应用错误
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
	}
}

// Wrap 包装错误
func Wrap(err error, code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
		Err:        err,
	}
}

// NewValidation 参数校验错误，携带出错字段
func NewValidation(field, message string) *AppError {
	e := New(CodeInvalidParam, message)
	e.Field = field
	return e
}

// NewNoMatch 检索与兜底均为空
func NewNoMatch(detail string) *AppError {
	return New(CodeNoMatch, "no movies matched").WithDetail(detail)
}

// NewDependency 外部依赖失败
func NewDependency(code ErrorCode, message string, err error) *AppError {
	return Wrap(err, code, message)
}

// codeToHTTPStatus 错误码转 HTTP 状态码
func codeToHTTPStatus(code ErrorCode) int {
	switch code {
	case CodeSuccess:
		return http.StatusOK
	case CodeInvalidParam, CodeItemNotDisplayed:
		return http.StatusBadRequest
	case CodeUnauthorized, CodeTokenExpired, CodeTokenInvalid, CodeIdentityMissing:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeNotFound, CodeNoMatch, CodeFeedNotFound, CodeMovieNotFound:
		return http.StatusNotFound
	case CodeConflict:
		return http.StatusConflict
	case CodeTooManyRequests:
		return http.StatusTooManyRequests
	case CodeServiceUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// codeToCategory 错误码转错误类别
func codeToCategory(code ErrorCode) Category {
	switch code {
	case CodeInvalidParam, CodeItemNotDisplayed:
		return CategoryValidation
	case CodeNoMatch:
		return CategoryNoMatch
	case CodeNotFound, CodeFeedNotFound, CodeMovieNotFound:
		return CategoryNotFound
	case CodeUnauthorized, CodeForbidden, CodeTokenExpired, CodeTokenInvalid, CodeIdentityMissing:
		return CategoryAuth
	case CodeRetrievalFailed, CodeSaveFailed, CodeSeedFailed,
		CodeDatabaseError, CodeCacheError, CodeVectorDBError, CodeMessagingError, CodeMetadataError,
		CodeServiceUnavailable:
		return CategoryDependency
	default:
		return CategoryInternal
	}
}

// 预定义错误
var (
	ErrInvalidParam       = New(CodeInvalidParam, "invalid parameter")
	ErrUnauthorized       = New(CodeUnauthorized, "unauthorized")
	ErrNotFound           = New(CodeNotFound, "resource not found")
	ErrTooManyRequests    = New(CodeTooManyRequests, "too many requests")
	ErrInternalError      = New(CodeInternalError, "internal server error")
	ErrServiceUnavailable = New(CodeServiceUnavailable, "service unavailable")

	ErrTokenExpired    = New(CodeTokenExpired, "token expired")
	ErrTokenInvalid    = New(CodeTokenInvalid, "token invalid")
	ErrIdentityMissing = New(CodeIdentityMissing, "caller identity missing")

	ErrNoMatch          = New(CodeNoMatch, "no movies matched")
	ErrFeedNotFound     = New(CodeFeedNotFound, "feed not found")
	ErrMovieNotFound    = New(CodeMovieNotFound, "movie not found")
	ErrItemNotDisplayed = New(CodeItemNotDisplayed, "movie is not displayed in this feed")
)

// IsAppError 检查是否为 AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr)
}

// AsAppError 将错误转换为 AppError
func AsAppError(err error) *AppError {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}
	return Wrap(err, CodeUnknown, "unknown error")
}

// CategoryOf 返回任意错误的类别
func CategoryOf(err error) Category {
	if err == nil {
		return ""
	}
	return AsAppError(err).Category()
}
