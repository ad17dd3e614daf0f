package service

import (
	"strings"
	"time"

	"github.com/suzaku-admin/internal/constants"
	"github.com/suzaku-admin/internal/logger"
	"github.com/suzaku-admin/internal/models"
	"github.com/suzaku-admin/internal/repository"
)

// BindingService 归因绑定审核服务
// 审核通过是同步流程之外唯一允许修改角色 cps_group / cps_visible 的入口
type BindingService struct {
	applyRepo repository.BindingApplyRepository
	roleRepo  repository.RoleRepository
}

// NewBindingService 创建绑定审核服务实例
func NewBindingService(applyRepo repository.BindingApplyRepository, roleRepo repository.RoleRepository) *BindingService {
	return &BindingService{
		applyRepo: applyRepo,
		roleRepo:  roleRepo,
	}
}

// ApplyInput 提交绑定申请
type ApplyInput struct {
	RoleID     string `json:"role_id" binding:"required"`
	CpsGroup   string `json:"cps_group" binding:"required"`
	MemberCode string `json:"member_code"`
	Remark     string `json:"remark"`
}

// Apply 提交绑定申请，同角色同一时间只允许一条待审申请
func (s *BindingService) Apply(input ApplyInput) (*models.BindingApply, error) {
	roleID := strings.TrimSpace(input.RoleID)
	role, err := s.roleRepo.GetByRoleID(roleID)
	if err != nil {
		return nil, err
	}
	if role == nil {
		return nil, ErrNotFound
	}

	pending, err := s.applyRepo.HasPending(roleID)
	if err != nil {
		return nil, err
	}
	if pending {
		return nil, ErrApplyPending
	}

	apply := &models.BindingApply{
		RoleID:     roleID,
		CpsGroup:   strings.TrimSpace(input.CpsGroup),
		MemberCode: strings.TrimSpace(input.MemberCode),
		Remark:     input.Remark,
		Status:     constants.BindingApplyStatusPending,
	}
	if err := s.applyRepo.Create(apply); err != nil {
		return nil, err
	}
	logger.Infow("binding_apply_created", "role_id", roleID, "cps_group", apply.CpsGroup)
	return apply, nil
}

// ReviewInput 审核绑定申请
type ReviewInput struct {
	Approve      bool   `json:"approve"`
	ReviewRemark string `json:"review_remark"`
}

// Review 审核申请；通过时写入角色归因并将角色置为 CPS 可见
func (s *BindingService) Review(applyID uint, reviewer string, input ReviewInput) (*models.BindingApply, error) {
	apply, err := s.applyRepo.GetByID(applyID)
	if err != nil {
		return nil, err
	}
	if apply == nil {
		return nil, ErrNotFound
	}
	if apply.Status != constants.BindingApplyStatusPending {
		return nil, ErrApplyReviewed
	}

	now := time.Now()
	apply.ReviewedBy = reviewer
	apply.ReviewRemark = input.ReviewRemark
	apply.ReviewedAt = &now
	if input.Approve {
		apply.Status = constants.BindingApplyStatusApproved
	} else {
		apply.Status = constants.BindingApplyStatusRejected
	}
	if err := s.applyRepo.Update(apply); err != nil {
		return nil, err
	}

	if input.Approve {
		if err := s.roleRepo.SetCpsBinding(apply.RoleID, apply.CpsGroup, true); err != nil {
			return nil, err
		}
	}

	logger.Infow("binding_apply_reviewed",
		"apply_id", apply.ID,
		"role_id", apply.RoleID,
		"status", apply.Status,
		"reviewer", reviewer,
	)
	return apply, nil
}

// List 后台申请列表
func (s *BindingService) List(filter repository.BindingApplyListFilter) ([]models.BindingApply, int64, error) {
	return s.applyRepo.ListAdmin(filter)
}
