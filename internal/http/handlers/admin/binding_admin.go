package admin

import (
	"errors"
	"strconv"

	"github.com/suzaku-admin/internal/http/response"
	"github.com/suzaku-admin/internal/repository"
	"github.com/suzaku-admin/internal/service"

	"github.com/gin-gonic/gin"
)

// GetAdminBindingApplies 绑定申请列表 (Admin)
func (h *Handler) GetAdminBindingApplies(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	filter := repository.BindingApplyListFilter{
		Page:     page,
		PageSize: pageSize,
		Status:   c.Query("status"),
		RoleID:   c.Query("role_id"),
		CpsGroup: c.Query("cps_group"),
	}

	applies, total, err := h.BindingService.List(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "获取申请列表失败", err)
		return
	}

	response.SuccessWithPage(c, applies, response.NewPagination(page, pageSize, total))
}

// CreateAdminBindingApply 提交绑定申请
func (h *Handler) CreateAdminBindingApply(c *gin.Context) {
	var input service.ApplyInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数错误", err)
		return
	}

	apply, err := h.BindingService.Apply(input)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			respondError(c, response.CodeNotFound, "角色不存在", nil)
		case errors.Is(err, service.ErrApplyPending):
			respondError(c, response.CodeBadRequest, "该角色已有待审核的绑定申请", nil)
		default:
			respondError(c, response.CodeInternal, "提交申请失败", err)
		}
		return
	}
	response.Success(c, apply)
}

// ReviewAdminBindingApply 审核绑定申请
func (h *Handler) ReviewAdminBindingApply(c *gin.Context) {
	applyID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || applyID == 0 {
		respondError(c, response.CodeBadRequest, "请求参数错误", err)
		return
	}

	adminID, ok := getAdminID(c)
	if !ok {
		return
	}
	admin, err := h.AdminRepo.GetByID(adminID)
	if err != nil || admin == nil {
		respondError(c, response.CodeUnauthorized, "未登录或登录已过期", err)
		return
	}

	var input service.ReviewInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数错误", err)
		return
	}

	apply, err := h.BindingService.Review(uint(applyID), admin.Username, input)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			respondError(c, response.CodeNotFound, "申请不存在", nil)
		case errors.Is(err, service.ErrApplyReviewed):
			respondError(c, response.CodeBadRequest, "该申请已审核", nil)
		default:
			respondError(c, response.CodeInternal, "审核失败", err)
		}
		return
	}
	response.Success(c, apply)
}
