package repository

import (
	"context"
	"errors"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/simonbalanoff/SigEpRush-API/internal/model"
)

// RatingRepository is data access for the rating ledger.
type RatingRepository interface {
	Upsert(ctx context.Context, rating *model.Rating) error
	GetByID(ctx context.Context, id string) (*model.Rating, error)
	GetByTriple(ctx context.Context, termID, pnmID, raterID string) (*model.Rating, error)
	ListByPNM(ctx context.Context, termID, pnmID string, includeHidden bool) ([]model.Rating, error)
	VisibleScores(ctx context.Context, termID, pnmID string) ([]int, error)
	DeleteByRater(ctx context.Context, termID, pnmID, raterID string) (int64, error)
	SetHidden(ctx context.Context, id string, hidden bool) error
	SetReactions(ctx context.Context, id string, counts map[string]int) error
}

type ratingRepo struct {
	db *gorm.DB
}

// NewRatingRepo creates a RatingRepository.
func NewRatingRepo(db *gorm.DB) RatingRepository {
	return &ratingRepo{db: db}
}

// Upsert inserts the rating or overwrites the score of the existing
// (term_id, pnm_id, rater_id) row in a single statement. The stored comment
// is only replaced when rating.Comment is set.
func (r *ratingRepo) Upsert(ctx context.Context, rating *model.Rating) error {
	cols := []string{"score", "updated_at"}
	if rating.Comment != nil {
		cols = append(cols, "comment")
	}
	return r.db.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "term_id"}, {Name: "pnm_id"}, {Name: "rater_id"}},
			DoUpdates: clause.AssignmentColumns(cols),
		}).
		Create(rating).Error
}

func (r *ratingRepo) GetByID(ctx context.Context, id string) (*model.Rating, error) {
	var rating model.Rating
	err := r.db.WithContext(ctx).
		Where("rating_id = ?", id).
		First(&rating).Error
	if err != nil {
		return nil, err
	}
	return &rating, nil
}

func (r *ratingRepo) GetByTriple(ctx context.Context, termID, pnmID, raterID string) (*model.Rating, error) {
	var rating model.Rating
	err := r.db.WithContext(ctx).
		Preload("Rater").
		Where("term_id = ? AND pnm_id = ? AND rater_id = ?", termID, pnmID, raterID).
		First(&rating).Error
	if err != nil {
		return nil, err
	}
	return &rating, nil
}

// ListByPNM returns the candidate's ratings, most recently updated first.
func (r *ratingRepo) ListByPNM(ctx context.Context, termID, pnmID string, includeHidden bool) ([]model.Rating, error) {
	query := r.db.WithContext(ctx).
		Preload("Rater").
		Where("term_id = ? AND pnm_id = ?", termID, pnmID)
	if !includeHidden {
		query = query.Where("is_hidden = ?", false)
	}

	var ratings []model.Rating
	err := query.
		Order("updated_at DESC").
		Order("rating_id ASC").
		Find(&ratings).Error
	return ratings, err
}

func (r *ratingRepo) VisibleScores(ctx context.Context, termID, pnmID string) ([]int, error) {
	var scores []int
	err := r.db.WithContext(ctx).
		Model(&model.Rating{}).
		Where("term_id = ? AND pnm_id = ? AND is_hidden = ?", termID, pnmID, false).
		Pluck("score", &scores).Error
	return scores, err
}

// DeleteByRater removes only the rater's own row and its reactions.
func (r *ratingRepo) DeleteByRater(ctx context.Context, termID, pnmID, raterID string) (int64, error) {
	var deleted int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rating model.Rating
		err := tx.
			Where("term_id = ? AND pnm_id = ? AND rater_id = ?", termID, pnmID, raterID).
			First(&rating).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}
		if err := tx.Where("rating_id = ?", rating.RatingID).Delete(&model.Reaction{}).Error; err != nil {
			return err
		}
		res := tx.Where("rating_id = ?", rating.RatingID).Delete(&model.Rating{})
		deleted = res.RowsAffected
		return res.Error
	})
	return deleted, err
}

func (r *ratingRepo) SetHidden(ctx context.Context, id string, hidden bool) error {
	res := r.db.WithContext(ctx).
		Model(&model.Rating{}).
		Where("rating_id = ?", id).
		Update("is_hidden", hidden)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// SetReactions overwrites the cached counts without touching updated_at.
func (r *ratingRepo) SetReactions(ctx context.Context, id string, counts map[string]int) error {
	return r.db.WithContext(ctx).
		Model(&model.Rating{}).
		Where("rating_id = ?", id).
		UpdateColumn("reactions", datatypes.NewJSONType(counts)).Error
}
