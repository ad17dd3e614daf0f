package models

import (
	"time"
)

// BindingApply CPS 绑定申请表（审核通过后写角色的 cps_group / cps_visible）
type BindingApply struct {
	ID           uint       `gorm:"primarykey" json:"id"`                  // 主键
	RoleID       string     `gorm:"index;not null" json:"role_id"`         // 申请绑定的角色
	CpsGroup     string     `gorm:"index;not null" json:"cps_group"`       // 申请归属的 CPS 分组
	MemberCode   string     `gorm:"index" json:"member_code,omitempty"`    // 推广员编码
	Remark       string     `json:"remark,omitempty"`                      // 申请备注
	Status       string     `gorm:"index;not null" json:"status"`          // pending / approved / rejected
	ReviewedBy   string     `json:"reviewed_by,omitempty"`                 // 审核人
	ReviewRemark string     `json:"review_remark,omitempty"`               // 审核意见
	ReviewedAt   *time.Time `json:"reviewed_at,omitempty"`                 // 审核时间
	CreatedAt    time.Time  `gorm:"index" json:"created_at"`               // 创建时间
	UpdatedAt    time.Time  `json:"updated_at"`                            // 更新时间
}

// TableName 指定表名
func (BindingApply) TableName() string {
	return "binding_applies"
}
