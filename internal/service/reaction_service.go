package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/simonbalanoff/SigEpRush-API/internal/dto"
	"github.com/simonbalanoff/SigEpRush-API/internal/model"
	"github.com/simonbalanoff/SigEpRush-API/internal/repository"
	pkgerrors "github.com/simonbalanoff/SigEpRush-API/pkg/errors"
)

// ReactionService toggles emoji reactions on ratings.
//
// The reaction row and the rating's cached counts change in one transaction,
// and the counts are rebuilt from the rows rather than incremented.
type ReactionService interface {
	Add(ctx context.Context, userID, ratingID, emoji string) (*dto.ReactionResponse, error)
	Remove(ctx context.Context, userID, ratingID, emoji string) (*dto.ReactionResponse, error)
}

type reactionService struct {
	repo       *repository.Repository
	membership MembershipService
	logger     *zap.Logger
}

// NewReactionService creates a ReactionService.
func NewReactionService(repo *repository.Repository, membership MembershipService, logger *zap.Logger) ReactionService {
	return &reactionService{repo: repo, membership: membership, logger: logger}
}

// Add is idempotent: a repeated (rating, user, emoji) leaves the counts unchanged.
func (s *reactionService) Add(ctx context.Context, userID, ratingID, emoji string) (*dto.ReactionResponse, error) {
	return s.apply(ctx, userID, ratingID, func(tx *repository.Repository) error {
		_, err := tx.Reaction.CreateIfAbsent(ctx, &model.Reaction{
			RatingID: ratingID,
			UserID:   userID,
			Emoji:    emoji,
		})
		return err
	})
}

// Remove deletes the caller's reaction if present.
func (s *reactionService) Remove(ctx context.Context, userID, ratingID, emoji string) (*dto.ReactionResponse, error) {
	return s.apply(ctx, userID, ratingID, func(tx *repository.Repository) error {
		_, err := tx.Reaction.Delete(ctx, ratingID, userID, emoji)
		return err
	})
}

func (s *reactionService) apply(ctx context.Context, userID, ratingID string, change func(tx *repository.Repository) error) (*dto.ReactionResponse, error) {
	rating, err := s.repo.Rating.GetByID(ctx, ratingID)
	if err != nil {
		if pkgerrors.IsNotFound(err) {
			return nil, ErrRatingNotFound
		}
		s.logger.Error("load rating failed", zap.String("rating_id", ratingID), zap.Error(err))
		return nil, err
	}
	if _, err := s.membership.Require(ctx, userID, rating.TermID); err != nil {
		return nil, err
	}

	var counts map[string]int
	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		if err := change(tx); err != nil {
			return err
		}
		counts, err = tx.Reaction.CountByEmoji(ctx, ratingID)
		if err != nil {
			return err
		}
		return tx.Rating.SetReactions(ctx, ratingID, counts)
	})
	if err != nil {
		s.logger.Error("update reactions failed", zap.String("rating_id", ratingID), zap.Error(err))
		return nil, err
	}

	return &dto.ReactionResponse{RatingID: ratingID, Reactions: counts}, nil
}
