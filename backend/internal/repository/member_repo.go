package repository

import (
	"context"

	"gorm.io/gorm"

	"shiftcare/backend/internal/model"
	"shiftcare/backend/internal/swap"
)

// MemberRepository 组织成员数据访问
type MemberRepository interface {
	// GetActive 成员不存在或已停用时返回 gorm.ErrRecordNotFound
	GetActive(ctx context.Context, organizationID, staffID string) (*model.OrganizationMember, error)
	ListAdmins(ctx context.Context, organizationID string) ([]model.OrganizationMember, error)
}

type memberRepo struct {
	db *gorm.DB
}

// NewMemberRepo 创建 MemberRepository
func NewMemberRepo(db *gorm.DB) MemberRepository {
	return &memberRepo{db: db}
}

func (r *memberRepo) GetActive(ctx context.Context, organizationID, staffID string) (*model.OrganizationMember, error) {
	var member model.OrganizationMember
	err := getDB(ctx, r.db).
		Where("organization_id = ? AND staff_id = ? AND is_active", organizationID, staffID).
		First(&member).Error
	if err != nil {
		return nil, err
	}
	return &member, nil
}

func (r *memberRepo) ListAdmins(ctx context.Context, organizationID string) ([]model.OrganizationMember, error) {
	var members []model.OrganizationMember
	err := getDB(ctx, r.db).
		Where("organization_id = ? AND is_active AND role IN ?", organizationID,
			[]swap.Role{swap.RoleOwner, swap.RoleAdmin}).
		Order("staff_id ASC").
		Find(&members).Error
	return members, err
}
