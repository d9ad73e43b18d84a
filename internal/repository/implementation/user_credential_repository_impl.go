package implementation

import (
	"context"
	"errors"
	"time"

	"drive-copilot-be/internal/entity"
	"drive-copilot-be/internal/mapper"
	"drive-copilot-be/internal/model"
	"drive-copilot-be/internal/repository/contract"
	"drive-copilot-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserCredentialRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.UserCredentialMapper
}

func NewUserCredentialRepository(db *gorm.DB) contract.UserCredentialRepository {
	return &UserCredentialRepositoryImpl{
		db:     db,
		mapper: mapper.NewUserCredentialMapper(),
	}
}

func (r *UserCredentialRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *UserCredentialRepositoryImpl) Create(ctx context.Context, cred *entity.UserCredential) error {
	row := r.mapper.ToModel(cred)
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return err
	}
	*cred = *r.mapper.ToEntity(row)
	return nil
}

func (r *UserCredentialRepositoryImpl) Update(ctx context.Context, cred *entity.UserCredential) error {
	row := r.mapper.ToModel(cred)
	if err := r.db.WithContext(ctx).Save(row).Error; err != nil {
		return err
	}
	*cred = *r.mapper.ToEntity(row)
	return nil
}

func (r *UserCredentialRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.UserCredential{}).Error
}

func (r *UserCredentialRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.UserCredential, error) {
	var row model.UserCredential
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)

	if err := query.First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return r.mapper.ToEntity(&row), nil
}

func (r *UserCredentialRepositoryImpl) UpdateToken(ctx context.Context, id uuid.UUID, accessToken, tokenType string, expiry time.Time) error {
	return r.db.WithContext(ctx).
		Model(&model.UserCredential{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"access_token": accessToken,
			"token_type":   tokenType,
			"expiry":       expiry,
		}).Error
}
