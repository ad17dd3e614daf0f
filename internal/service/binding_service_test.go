package service

import (
	"fmt"
	"testing"
	"time"

	"github.com/suzaku-admin/internal/constants"
	"github.com/suzaku-admin/internal/models"
	"github.com/suzaku-admin/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupBindingServiceTest(t *testing.T) (*BindingService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:binding_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Role{}, &models.BindingApply{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	svc := NewBindingService(
		repository.NewBindingApplyRepository(db),
		repository.NewRoleRepository(db),
	)
	return svc, db
}

func createBindingRole(t *testing.T, db *gorm.DB, roleID string) {
	t.Helper()
	role := models.Role{
		RoleID:       roleID,
		ServerID:     28,
		RegisterTime: time.Now(),
	}
	if err := db.Create(&role).Error; err != nil {
		t.Fatalf("create role failed: %v", err)
	}
}

func TestBindingApply(t *testing.T) {
	svc, db := setupBindingServiceTest(t)
	createBindingRole(t, db, "R1")

	apply, err := svc.Apply(ApplyInput{RoleID: " R1 ", CpsGroup: "g-007", MemberCode: "M88"})
	if err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	if apply.Status != constants.BindingApplyStatusPending || apply.RoleID != "R1" {
		t.Fatalf("unexpected apply: %+v", apply)
	}

	// 同角色已有待审申请
	if _, err := svc.Apply(ApplyInput{RoleID: "R1", CpsGroup: "g-008"}); err != ErrApplyPending {
		t.Fatalf("expected ErrApplyPending, got %v", err)
	}
	// 角色不存在
	if _, err := svc.Apply(ApplyInput{RoleID: "R404", CpsGroup: "g-007"}); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestBindingReviewApprove(t *testing.T) {
	svc, db := setupBindingServiceTest(t)
	createBindingRole(t, db, "R1")

	apply, err := svc.Apply(ApplyInput{RoleID: "R1", CpsGroup: "g-007"})
	if err != nil {
		t.Fatalf("apply failed: %v", err)
	}

	reviewed, err := svc.Review(apply.ID, "ops", ReviewInput{Approve: true, ReviewRemark: "确认归属"})
	if err != nil {
		t.Fatalf("review failed: %v", err)
	}
	if reviewed.Status != constants.BindingApplyStatusApproved || reviewed.ReviewedBy != "ops" {
		t.Fatalf("unexpected review result: %+v", reviewed)
	}
	if reviewed.ReviewedAt == nil {
		t.Fatal("review time not recorded")
	}

	var role models.Role
	if err := db.Where("role_id = ?", "R1").First(&role).Error; err != nil {
		t.Fatalf("reload role: %v", err)
	}
	if role.CpsGroup != "g-007" || !role.CpsVisible {
		t.Fatalf("approve must bind the role: group=%q visible=%v", role.CpsGroup, role.CpsVisible)
	}

	// 已审核的申请不能重复审核
	if _, err := svc.Review(apply.ID, "ops", ReviewInput{Approve: false}); err != ErrApplyReviewed {
		t.Fatalf("expected ErrApplyReviewed, got %v", err)
	}

	// 通过后可以再次提交新申请
	if _, err := svc.Apply(ApplyInput{RoleID: "R1", CpsGroup: "g-009"}); err != nil {
		t.Fatalf("apply after approval failed: %v", err)
	}
}

func TestBindingReviewReject(t *testing.T) {
	svc, db := setupBindingServiceTest(t)
	createBindingRole(t, db, "R1")

	apply, err := svc.Apply(ApplyInput{RoleID: "R1", CpsGroup: "g-007"})
	if err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	reviewed, err := svc.Review(apply.ID, "ops", ReviewInput{Approve: false, ReviewRemark: "资料不全"})
	if err != nil {
		t.Fatalf("review failed: %v", err)
	}
	if reviewed.Status != constants.BindingApplyStatusRejected {
		t.Fatalf("unexpected status: %q", reviewed.Status)
	}

	var role models.Role
	db.Where("role_id = ?", "R1").First(&role)
	if role.CpsGroup != "" || role.CpsVisible {
		t.Fatalf("reject must not touch the role: group=%q visible=%v", role.CpsGroup, role.CpsVisible)
	}
}

func TestBindingList(t *testing.T) {
	svc, db := setupBindingServiceTest(t)
	createBindingRole(t, db, "R1")
	createBindingRole(t, db, "R2")

	if _, err := svc.Apply(ApplyInput{RoleID: "R1", CpsGroup: "g-007"}); err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	if _, err := svc.Apply(ApplyInput{RoleID: "R2", CpsGroup: "g-008"}); err != nil {
		t.Fatalf("apply failed: %v", err)
	}

	applies, total, err := svc.List(repository.BindingApplyListFilter{Page: 1, PageSize: 10, Status: constants.BindingApplyStatusPending})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if total != 2 || len(applies) != 2 {
		t.Fatalf("unexpected list: total=%d len=%d", total, len(applies))
	}

	applies, total, err = svc.List(repository.BindingApplyListFilter{Page: 1, PageSize: 10, CpsGroup: "g-008"})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if total != 1 || applies[0].RoleID != "R2" {
		t.Fatalf("unexpected filtered list: total=%d", total)
	}
}
