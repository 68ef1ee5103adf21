package logic

import (
	"errors"
	"fmt"
	"strings"
)

// 错误分类：校验失败和重复冲突在任何持久化写入前返回；
// NotFound表示目标不存在；StoreUnavailable表示存储层暂时不可用，
// 可由调用方自行重试，本层不做重试。

// ValidationError 输入校验失败，携带每个字段的具体错误信息
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return "校验失败: " + strings.Join(e.Errors, "; ")
}

// NewValidationError 创建校验错误
func NewValidationError(messages ...string) *ValidationError {
	return &ValidationError{Errors: messages}
}

// DuplicateError 唯一性约束冲突
type DuplicateError struct {
	Message string
}

func (e *DuplicateError) Error() string {
	return e.Message
}

// NotFoundError 目标记录不存在或未激活
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string {
	return e.Message
}

// StoreUnavailableError 存储层暂时不可用（超时、连接中断等），可重试
type StoreUnavailableError struct {
	Cause error
}

func (e *StoreUnavailableError) Error() string {
	return fmt.Sprintf("存储服务暂时不可用: %v", e.Cause)
}

func (e *StoreUnavailableError) Unwrap() error {
	return e.Cause
}

// UploadError 媒体上传失败，产品创建事务整体回滚
type UploadError struct {
	Cause error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("媒体文件上传失败: %v", e.Cause)
}

func (e *UploadError) Unwrap() error {
	return e.Cause
}

// IsValidation 判断是否为校验错误
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsDuplicate 判断是否为重复冲突
func IsDuplicate(err error) bool {
	var de *DuplicateError
	return errors.As(err, &de)
}

// IsNotFound 判断是否为记录不存在
func IsNotFound(err error) bool {
	var ne *NotFoundError
	return errors.As(err, &ne)
}

// IsStoreUnavailable 判断是否为存储层不可用
func IsStoreUnavailable(err error) bool {
	var se *StoreUnavailableError
	return errors.As(err, &se)
}

// storeErr 将底层存储错误包装为可重试错误
func storeErr(err error) error {
	return &StoreUnavailableError{Cause: err}
}
