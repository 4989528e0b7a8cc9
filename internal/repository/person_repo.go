package repository

import (
	"context"

	"gorm.io/gorm"

	"clinsched/backend/internal/model"
)

// PersonRepository 人员只读投影数据访问接口
type PersonRepository interface {
	GetByMothraID(ctx context.Context, mothraID string) (*model.Person, error)
	ListByMothraIDs(ctx context.Context, mothraIDs []string) ([]model.Person, error)
}

type personRepo struct {
	db *gorm.DB
}

func NewPersonRepo(db *gorm.DB) PersonRepository {
	return &personRepo{db: db}
}

func (r *personRepo) GetByMothraID(ctx context.Context, mothraID string) (*model.Person, error) {
	var person model.Person
	err := r.db.WithContext(ctx).
		Where("mothra_id = ?", mothraID).
		First(&person).Error
	if err != nil {
		return nil, err
	}
	return &person, nil
}

func (r *personRepo) ListByMothraIDs(ctx context.Context, mothraIDs []string) ([]model.Person, error) {
	if len(mothraIDs) == 0 {
		return nil, nil
	}
	var people []model.Person
	err := r.db.WithContext(ctx).
		Where("mothra_id IN ?", mothraIDs).
		Find(&people).Error
	return people, err
}
