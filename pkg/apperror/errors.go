package apperror

import (
	"errors"
	"fmt"
)

// ValidationError 请求违反业务前置条件
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// NotFoundError 引用的实体不存在
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string { return e.Message }

// AuthError 缺少或无效的调用者身份
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string { return e.Message }

// InfrastructureError 存储或外部依赖失败
type InfrastructureError struct {
	Message string
	Err     error
}

func (e *InfrastructureError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *InfrastructureError) Unwrap() error { return e.Err }

func Validation(msg string) error {
	return &ValidationError{Message: msg}
}

func NotFound(msg string) error {
	return &NotFoundError{Message: msg}
}

func Auth(msg string) error {
	return &AuthError{Message: msg}
}

func Infrastructure(msg string, err error) error {
	return &InfrastructureError{Message: msg, Err: err}
}

func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

func IsAuth(err error) bool {
	var target *AuthError
	return errors.As(err, &target)
}

// PublicMessage 返回可以展示给调用方的信息，基础设施错误不暴露内部细节
func PublicMessage(err error) string {
	var (
		v *ValidationError
		n *NotFoundError
		a *AuthError
	)
	switch {
	case errors.As(err, &v):
		return v.Message
	case errors.As(err, &n):
		return n.Message
	case errors.As(err, &a):
		return a.Message
	default:
		return "Internal server error"
	}
}
