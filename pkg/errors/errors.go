// Package errors 提供统一的错误处理框架
package errors

import (
	"errors"
	"fmt"
)

// Code 错误码
type Code string

const (
	// 通用错误码
	CodeUnknown      Code = "UNKNOWN"
	CodeInternal     Code = "INTERNAL_ERROR"
	CodeInvalidInput Code = "INVALID_INPUT"
	CodeTimeout      Code = "TIMEOUT"

	// 求解引擎相关
	CodeInvalidEnvironment Code = "INVALID_ENVIRONMENT"
	CodeInvalidWorker      Code = "INVALID_WORKER"
	CodeInvalidSlot        Code = "INVALID_SLOT"
	CodeInvalidSchedule    Code = "INVALID_SCHEDULE"
	CodeInvalidConfig      Code = "INVALID_CONFIG"
	CodeSolverFailure      Code = "SOLVER_FAILURE"
	CodeCanceled           Code = "CANCELED"

	// 数据相关
	CodeValidationFail Code = "VALIDATION_FAILED"
)

// AppError 应用错误
type AppError struct {
	Code    Code                   `json:"code"`
	Message string                 `json:"message"`
	Details string                 `json:"details,omitempty"`
	Cause   error                  `json:"-"`
	Fields  map[string]interface{} `json:"fields,omitempty"`
}

// Error 实现 error 接口
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap 返回底层错误
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithDetails 添加详细信息
func (e *AppError) WithDetails(details string) *AppError {
	e.Details = details
	return e
}

// WithCause 添加原因
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithField 添加字段
func (e *AppError) WithField(key string, value interface{}) *AppError {
	if e.Fields == nil {
		e.Fields = make(map[string]interface{})
	}
	e.Fields[key] = value
	return e
}

// New 创建新错误
func New(code Code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap 包装错误
func Wrap(err error, code Code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// Is 检查错误是否为特定类型
func Is(err error, code Code) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// GetCode 获取错误码
func GetCode(err error) Code {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeUnknown
}

// 预定义错误
var (
	ErrInvalidInput       = New(CodeInvalidInput, "输入参数无效")
	ErrInternal           = New(CodeInternal, "内部错误")
	ErrTimeout            = New(CodeTimeout, "操作超时")
	ErrInvalidEnvironment = New(CodeInvalidEnvironment, "排班环境无效")
	ErrInvalidSchedule    = New(CodeInvalidSchedule, "排班向量无效")
	ErrCanceled           = New(CodeCanceled, "求解被取消")
)

// InvalidInput 创建输入无效错误
func InvalidInput(field, reason string) *AppError {
	return New(CodeInvalidInput, fmt.Sprintf("字段 '%s' 无效: %s", field, reason))
}

// InvalidEnvironment 创建环境无效错误
func InvalidEnvironment(reason string) *AppError {
	return New(CodeInvalidEnvironment, fmt.Sprintf("排班环境无效: %s", reason))
}

// InvalidWorker 创建值班员记录无效错误
func InvalidWorker(id int, reason string) *AppError {
	return New(CodeInvalidWorker, fmt.Sprintf("值班员 %d 记录无效: %s", id, reason))
}

// InvalidSlot 创建班次槽无效错误
func InvalidSlot(index int, reason string) *AppError {
	return New(CodeInvalidSlot, fmt.Sprintf("班次槽 %d 无效: %s", index, reason))
}

// InvalidSchedule 创建排班向量无效错误
func InvalidSchedule(reason string) *AppError {
	return New(CodeInvalidSchedule, reason)
}

// InvalidConfig 创建配置无效错误
func InvalidConfig(field, reason string) *AppError {
	return New(CodeInvalidConfig, fmt.Sprintf("配置项 '%s' 无效: %s", field, reason))
}

// SolverFailure 创建求解失败错误
func SolverFailure(algorithm, reason string) *AppError {
	return New(CodeSolverFailure, fmt.Sprintf("算法 %s 求解失败: %s", algorithm, reason))
}

// ValidationErrors 验证错误集合
type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

// ValidationError 单个验证错误
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error 实现 error 接口
func (ve *ValidationErrors) Error() string {
	if len(ve.Errors) == 0 {
		return "验证失败"
	}
	return fmt.Sprintf("验证失败: %s - %s", ve.Errors[0].Field, ve.Errors[0].Message)
}

// Add 添加验证错误
func (ve *ValidationErrors) Add(field, message string) {
	ve.Errors = append(ve.Errors, ValidationError{Field: field, Message: message})
}

// HasErrors 检查是否有错误
func (ve *ValidationErrors) HasErrors() bool {
	return len(ve.Errors) > 0
}

// ToAppError 转换为 AppError
func (ve *ValidationErrors) ToAppError() *AppError {
	err := New(CodeValidationFail, "验证失败")
	err.Fields = make(map[string]interface{})
	for _, e := range ve.Errors {
		err.Fields[e.Field] = e.Message
	}
	return err
}
