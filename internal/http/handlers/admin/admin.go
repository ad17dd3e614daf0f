package admin

import (
	"errors"

	"github.com/suzaku-admin/internal/http/response"
	"github.com/suzaku-admin/internal/service"

	"github.com/gin-gonic/gin"
)

// LoginRequest 登录请求
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse 登录响应
type LoginResponse struct {
	Token     string                 `json:"token"`
	User      map[string]interface{} `json:"user"`
	ExpiresAt string                 `json:"expires_at"`
}

// AdminLogin 管理员登录
func (h *Handler) AdminLogin(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数错误", err)
		return
	}

	admin, token, expiresAt, err := h.AuthService.Login(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			respondError(c, response.CodeUnauthorized, "用户名或密码错误", nil)
			return
		}
		respondError(c, response.CodeInternal, "登录失败", err)
		return
	}

	requestLog(c).Infow("admin_login", "admin_id", admin.ID, "username", admin.Username)
	response.Success(c, LoginResponse{
		Token: token,
		User: map[string]interface{}{
			"id":       admin.ID,
			"username": admin.Username,
			"nickname": admin.Nickname,
		},
		ExpiresAt: expiresAt.Format("2006-01-02 15:04:05"),
	})
}

// GetAdminInfo 当前管理员信息
func (h *Handler) GetAdminInfo(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}

	admin, err := h.AdminRepo.GetByID(adminID)
	if err != nil {
		respondError(c, response.CodeInternal, "获取管理员信息失败", err)
		return
	}
	if admin == nil {
		respondError(c, response.CodeNotFound, "管理员不存在", nil)
		return
	}

	response.Success(c, gin.H{
		"id":            admin.ID,
		"username":      admin.Username,
		"nickname":      admin.Nickname,
		"last_login_at": admin.LastLoginAt,
	})
}

// ChangePasswordRequest 修改密码请求
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

// ChangeAdminPassword 修改管理员密码
func (h *Handler) ChangeAdminPassword(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}

	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数错误", err)
		return
	}

	if err := h.AuthService.ChangePassword(adminID, req.OldPassword, req.NewPassword); err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidPassword):
			respondError(c, response.CodeBadRequest, "旧密码错误", nil)
		case errors.Is(err, service.ErrNotFound):
			respondError(c, response.CodeNotFound, "管理员不存在", nil)
		default:
			respondError(c, response.CodeInternal, "修改密码失败", err)
		}
		return
	}

	response.SuccessWithMsg(c, "密码修改成功", nil)
}
