package implementation

import (
	"context"
	"errors"

	"ai-chat-quota-be/internal/entity"
	"ai-chat-quota-be/internal/mapper"
	"ai-chat-quota-be/internal/model"
	"ai-chat-quota-be/internal/repository/contract"
	"ai-chat-quota-be/internal/repository/specification"

	"gorm.io/gorm"
)

type BundleRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.BundleMapper
}

func NewBundleRepository(db *gorm.DB) contract.BundleRepository {
	return &BundleRepositoryImpl{
		db:     db,
		mapper: mapper.NewBundleMapper(),
	}
}

func (r *BundleRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *BundleRepositoryImpl) Create(ctx context.Context, bundle *entity.Bundle) error {
	m := r.mapper.ToModel(bundle)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*bundle = *r.mapper.ToEntity(m)
	return nil
}

func (r *BundleRepositoryImpl) Update(ctx context.Context, bundle *entity.Bundle) error {
	m := r.mapper.ToModel(bundle)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*bundle = *r.mapper.ToEntity(m)
	return nil
}

func (r *BundleRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Bundle, error) {
	var m model.Bundle
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *BundleRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Bundle, error) {
	var models []*model.Bundle
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.Bundle, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ToEntity(m)
	}
	return entities, nil
}

func (r *BundleRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.Bundle{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
