package service

import "errors"

// 服务层哨兵错误，供处理层用 errors.Is 翻译成响应码
var (
	ErrInvalidCredentials = errors.New("用户名或密码错误")
	ErrInvalidPassword    = errors.New("旧密码错误")
	ErrNotFound           = errors.New("记录不存在")
	ErrSyncRunning        = errors.New("同步任务已在运行")
	ErrSyncDisabled       = errors.New("同步未启用")
	ErrApplyPending       = errors.New("该角色已有待审核的绑定申请")
	ErrApplyReviewed      = errors.New("该申请已审核")
)
