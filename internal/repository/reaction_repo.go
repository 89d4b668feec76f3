package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/simonbalanoff/SigEpRush-API/internal/model"
)

// ReactionRepository is data access for per-user emoji reactions.
type ReactionRepository interface {
	CreateIfAbsent(ctx context.Context, reaction *model.Reaction) (bool, error)
	Delete(ctx context.Context, ratingID, userID, emoji string) (int64, error)
	CountByEmoji(ctx context.Context, ratingID string) (map[string]int, error)
}

type reactionRepo struct {
	db *gorm.DB
}

// NewReactionRepo creates a ReactionRepository.
func NewReactionRepo(db *gorm.DB) ReactionRepository {
	return &reactionRepo{db: db}
}

// CreateIfAbsent inserts unless the (rating, user, emoji) triple exists; created is false on conflict.
func (r *reactionRepo) CreateIfAbsent(ctx context.Context, reaction *model.Reaction) (bool, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "rating_id"}, {Name: "user_id"}, {Name: "emoji"}},
			DoNothing: true,
		}).
		Create(reaction)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *reactionRepo) Delete(ctx context.Context, ratingID, userID, emoji string) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("rating_id = ? AND user_id = ? AND emoji = ?", ratingID, userID, emoji).
		Delete(&model.Reaction{})
	return res.RowsAffected, res.Error
}

// CountByEmoji counts the canonical reaction rows of a rating.
func (r *reactionRepo) CountByEmoji(ctx context.Context, ratingID string) (map[string]int, error) {
	var rows []struct {
		Emoji string
		Count int
	}
	err := r.db.WithContext(ctx).
		Model(&model.Reaction{}).
		Select("emoji, COUNT(*) AS count").
		Where("rating_id = ?", ratingID).
		Group("emoji").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int, len(rows))
	for _, row := range rows {
		counts[row.Emoji] = row.Count
	}
	return counts, nil
}
