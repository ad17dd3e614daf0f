package admin

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/suzaku-admin/internal/http/response"
	"github.com/suzaku-admin/internal/repository"
	"github.com/suzaku-admin/internal/service"

	"github.com/gin-gonic/gin"
)

// GetAdminRoles 角色列表 (Admin)
func (h *Handler) GetAdminRoles(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	filter := repository.RoleListFilter{
		Page:       page,
		PageSize:   pageSize,
		Keyword:    c.Query("keyword"),
		DeviceType: c.Query("device_type"),
		CpsGroup:   c.Query("cps_group"),
	}
	if serverID, err := strconv.Atoi(c.Query("server_id")); err == nil {
		filter.ServerID = serverID
	}
	if channelID, err := strconv.Atoi(c.Query("channel_id")); err == nil {
		filter.ChannelID = channelID
	}
	if visible := c.Query("cps_visible"); visible != "" {
		value := visible == "1" || strings.EqualFold(visible, "true")
		filter.CpsVisible = &value
	}
	if from, err := time.ParseInLocation("2006-01-02", c.Query("registered_from"), time.Local); err == nil {
		filter.RegisteredFrom = &from
	}
	if to, err := time.ParseInLocation("2006-01-02", c.Query("registered_to"), time.Local); err == nil {
		end := to.AddDate(0, 0, 1)
		filter.RegisteredTo = &end
	}

	roles, total, err := h.PlayerService.ListRoles(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "获取角色列表失败", err)
		return
	}

	response.SuccessWithPage(c, roles, response.NewPagination(page, pageSize, total))
}

// GetAdminRole 角色详情 (Admin)
func (h *Handler) GetAdminRole(c *gin.Context) {
	roleID := strings.TrimSpace(c.Param("role_id"))
	if roleID == "" {
		respondError(c, response.CodeBadRequest, "请求参数错误", nil)
		return
	}

	role, err := h.PlayerService.GetRole(roleID)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondError(c, response.CodeNotFound, "角色不存在", nil)
			return
		}
		respondError(c, response.CodeInternal, "获取角色失败", err)
		return
	}
	response.Success(c, role)
}

// GetAdminRoleBehavior 角色行为统计 (Admin)
func (h *Handler) GetAdminRoleBehavior(c *gin.Context) {
	roleID := strings.TrimSpace(c.Param("role_id"))
	if roleID == "" {
		respondError(c, response.CodeBadRequest, "请求参数错误", nil)
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))

	stats, err := h.PlayerService.RoleBehavior(roleID, limit)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondError(c, response.CodeNotFound, "角色不存在", nil)
			return
		}
		respondError(c, response.CodeInternal, "获取行为统计失败", err)
		return
	}
	response.Success(c, stats)
}

// GetAdminOrders 订单列表 (Admin)
func (h *Handler) GetAdminOrders(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	filter := repository.OrderListFilter{
		Page:           page,
		PageSize:       pageSize,
		OrderID:        c.Query("order_id"),
		RoleID:         c.Query("role_id"),
		RechargeType:   c.Query("recharge_type"),
		PayChannel:     c.Query("pay_channel"),
		IncludeSandbox: c.Query("include_sandbox") == "1",
	}
	if serverID, err := strconv.Atoi(c.Query("server_id")); err == nil {
		filter.ServerID = serverID
	}
	if from, err := time.ParseInLocation("2006-01-02", c.Query("pay_time_from"), time.Local); err == nil {
		filter.PayTimeFrom = &from
	}
	if to, err := time.ParseInLocation("2006-01-02", c.Query("pay_time_to"), time.Local); err == nil {
		end := to.AddDate(0, 0, 1)
		filter.PayTimeTo = &end
	}

	orders, total, err := h.PlayerService.ListOrders(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "获取订单列表失败", err)
		return
	}

	response.SuccessWithPage(c, orders, response.NewPagination(page, pageSize, total))
}
