package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/simonbalanoff/SigEpRush-API/internal/model"
)

// MembershipRepository is data access for term memberships.
type MembershipRepository interface {
	Create(ctx context.Context, m *model.TermMembership) error
	CreateIfAbsent(ctx context.Context, m *model.TermMembership) (bool, error)
	Get(ctx context.Context, userID, termID string) (*model.TermMembership, error)
	ListByUser(ctx context.Context, userID string, roles ...string) ([]model.TermMembership, error)
	ListByTerm(ctx context.Context, termID string) ([]model.TermMembership, error)
	UpdateRole(ctx context.Context, userID, termID, role string) error
	CountByTerms(ctx context.Context, termIDs []string) (map[string]int64, error)
}

type membershipRepo struct {
	db *gorm.DB
}

// NewMembershipRepo creates a MembershipRepository.
func NewMembershipRepo(db *gorm.DB) MembershipRepository {
	return &membershipRepo{db: db}
}

func (r *membershipRepo) Create(ctx context.Context, m *model.TermMembership) error {
	return r.db.WithContext(ctx).Create(m).Error
}

// CreateIfAbsent inserts unless (user_id, term_id) already exists; created is false on conflict.
func (r *membershipRepo) CreateIfAbsent(ctx context.Context, m *model.TermMembership) (bool, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "term_id"}},
			DoNothing: true,
		}).
		Create(m)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *membershipRepo) Get(ctx context.Context, userID, termID string) (*model.TermMembership, error) {
	var m model.TermMembership
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND term_id = ?", userID, termID).
		First(&m).Error
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// ListByUser returns the user's memberships with their terms, newest first.
// When roles is non-empty only those roles are returned.
func (r *membershipRepo) ListByUser(ctx context.Context, userID string, roles ...string) ([]model.TermMembership, error) {
	query := r.db.WithContext(ctx).
		Preload("Term").
		Where("user_id = ?", userID)
	if len(roles) > 0 {
		query = query.Where("role IN ?", roles)
	}

	var ms []model.TermMembership
	err := query.
		Order("joined_at DESC").
		Find(&ms).Error
	return ms, err
}

// ListByTerm returns a term's memberships with their users, oldest first.
func (r *membershipRepo) ListByTerm(ctx context.Context, termID string) ([]model.TermMembership, error) {
	var ms []model.TermMembership
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("term_id = ?", termID).
		Order("joined_at ASC").
		Find(&ms).Error
	return ms, err
}

func (r *membershipRepo) UpdateRole(ctx context.Context, userID, termID, role string) error {
	res := r.db.WithContext(ctx).
		Model(&model.TermMembership{}).
		Where("user_id = ? AND term_id = ?", userID, termID).
		Update("role", role)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *membershipRepo) CountByTerms(ctx context.Context, termIDs []string) (map[string]int64, error) {
	counts := make(map[string]int64, len(termIDs))
	if len(termIDs) == 0 {
		return counts, nil
	}

	var rows []struct {
		TermID string
		Count  int64
	}
	err := r.db.WithContext(ctx).
		Model(&model.TermMembership{}).
		Select("term_id, COUNT(*) AS count").
		Where("term_id IN ?", termIDs).
		Group("term_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		counts[row.TermID] = row.Count
	}
	return counts, nil
}
