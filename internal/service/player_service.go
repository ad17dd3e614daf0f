package service

import (
	"github.com/suzaku-admin/internal/models"
	"github.com/suzaku-admin/internal/repository"
)

// PlayerService 玩家查询服务，聚合角色、订单与行为视图
type PlayerService struct {
	roleRepo     repository.RoleRepository
	orderRepo    repository.OrderRepository
	behaviorRepo repository.BehaviorStatRepository
}

// NewPlayerService 创建玩家查询服务实例
func NewPlayerService(
	roleRepo repository.RoleRepository,
	orderRepo repository.OrderRepository,
	behaviorRepo repository.BehaviorStatRepository,
) *PlayerService {
	return &PlayerService{
		roleRepo:     roleRepo,
		orderRepo:    orderRepo,
		behaviorRepo: behaviorRepo,
	}
}

// ListRoles 后台角色列表
func (s *PlayerService) ListRoles(filter repository.RoleListFilter) ([]models.Role, int64, error) {
	return s.roleRepo.ListAdmin(filter)
}

// GetRole 角色详情
func (s *PlayerService) GetRole(roleID string) (*models.Role, error) {
	role, err := s.roleRepo.GetByRoleID(roleID)
	if err != nil {
		return nil, err
	}
	if role == nil {
		return nil, ErrNotFound
	}
	return role, nil
}

// ListOrders 后台订单列表
func (s *PlayerService) ListOrders(filter repository.OrderListFilter) ([]models.Order, int64, error) {
	return s.orderRepo.ListAdmin(filter)
}

// RoleBehavior 角色行为统计
func (s *PlayerService) RoleBehavior(roleID string, limit int) ([]models.UserBehaviorStat, error) {
	role, err := s.roleRepo.GetByRoleID(roleID)
	if err != nil {
		return nil, err
	}
	if role == nil {
		return nil, ErrNotFound
	}
	if role.UserID == "" {
		return []models.UserBehaviorStat{}, nil
	}
	return s.behaviorRepo.ListByUser(role.UserID, limit)
}
