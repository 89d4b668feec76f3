package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/simonbalanoff/SigEpRush-API/internal/model"
)

// TermRepository is data access for terms.
type TermRepository interface {
	Create(ctx context.Context, term *model.Term) error
	GetByID(ctx context.Context, id string) (*model.Term, error)
	GetByInviteHash(ctx context.Context, hash string) (*model.Term, error)
	Update(ctx context.Context, id string, fields map[string]interface{}) error
	IncrementInviteUses(ctx context.Context, id string) (bool, error)
}

type termRepo struct {
	db *gorm.DB
}

// NewTermRepo creates a TermRepository.
func NewTermRepo(db *gorm.DB) TermRepository {
	return &termRepo{db: db}
}

func (r *termRepo) Create(ctx context.Context, term *model.Term) error {
	return r.db.WithContext(ctx).Create(term).Error
}

func (r *termRepo) GetByID(ctx context.Context, id string) (*model.Term, error) {
	var term model.Term
	err := r.db.WithContext(ctx).
		Where("term_id = ?", id).
		First(&term).Error
	if err != nil {
		return nil, err
	}
	return &term, nil
}

func (r *termRepo) GetByInviteHash(ctx context.Context, hash string) (*model.Term, error) {
	var term model.Term
	err := r.db.WithContext(ctx).
		Where("invite_code_hash = ?", hash).
		First(&term).Error
	if err != nil {
		return nil, err
	}
	return &term, nil
}

func (r *termRepo) Update(ctx context.Context, id string, fields map[string]interface{}) error {
	res := r.db.WithContext(ctx).
		Model(&model.Term{}).
		Where("term_id = ?", id).
		Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// IncrementInviteUses bumps invite_uses only while it is below the cap.
// It reports false when the cap was already reached; check and increment are one statement.
func (r *termRepo) IncrementInviteUses(ctx context.Context, id string) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Term{}).
		Where("term_id = ?", id).
		Where("invite_max_uses IS NULL OR invite_uses < invite_max_uses").
		UpdateColumn("invite_uses", gorm.Expr("invite_uses + 1"))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
