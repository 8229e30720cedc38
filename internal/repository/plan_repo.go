package repository

import (
	"context"
	"errors"

	"exampay/internal/model"

	"gorm.io/gorm"
)

type PlanRepository struct {
	db *gorm.DB
}

func NewPlanRepository(db *gorm.DB) *PlanRepository {
	return &PlanRepository{db: db}
}

func (r *PlanRepository) GetByID(ctx context.Context, id string) (*model.Plan, error) {
	var plan model.Plan
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&plan).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &plan, nil
}

func (r *PlanRepository) ListActive(ctx context.Context) ([]*model.Plan, error) {
	var plans []*model.Plan
	err := r.db.WithContext(ctx).
		Where("active = ?", true).
		Order("amount ASC").
		Find(&plans).Error
	return plans, err
}

// Seed inserts the given plans if the table is empty. Used at bootstrap so a
// fresh deployment has something to sell.
func (r *PlanRepository) Seed(ctx context.Context, plans []*model.Plan) error {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.Plan{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(plans).Error
}
