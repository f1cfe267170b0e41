package util

import "errors"

var (
	ErrUserNotFound       = errors.New("用户不存在")
	ErrEmailRegistered    = errors.New("该邮箱已被注册")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrPermissionDenied   = errors.New("permission denied")
	ErrRequestNotFound    = errors.New("好友申请不存在")
	ErrRequestHandled     = errors.New("申请已处理")
	ErrSelfRequest        = errors.New("不能添加自己为好友")
	ErrDuplicateRequest   = errors.New("已发送过好友申请")
	ErrAlreadyFriends     = errors.New("已经是好友了")
	ErrEmptyMessage       = errors.New("消息内容和媒体不能同时为空")
)

// IsValidation 判断是否为请求参数类错误（映射为 400）
func IsValidation(err error) bool {
	return errors.Is(err, ErrSelfRequest) ||
		errors.Is(err, ErrDuplicateRequest) ||
		errors.Is(err, ErrAlreadyFriends) ||
		errors.Is(err, ErrRequestHandled) ||
		errors.Is(err, ErrEmptyMessage)
}

// IsNotFound 判断是否为资源不存在类错误（映射为 404）
func IsNotFound(err error) bool {
	return errors.Is(err, ErrUserNotFound) || errors.Is(err, ErrRequestNotFound)
}
