package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/simonbalanoff/SigEpRush-API/internal/dto"
	"github.com/simonbalanoff/SigEpRush-API/internal/model"
	"github.com/simonbalanoff/SigEpRush-API/internal/repository"
	pkgerrors "github.com/simonbalanoff/SigEpRush-API/pkg/errors"
)

var ErrRatingNotFound = errors.New("rating not found")

// RatingService is the rating ledger. Every mutation ends with a recompute of
// the candidate's aggregate; the two are not in one transaction.
type RatingService interface {
	Upsert(ctx context.Context, userID, pnmID string, req *dto.UpsertRatingRequest) (*dto.RatingResponse, error)
	List(ctx context.Context, userID, pnmID string) ([]dto.RatingResponse, error)
	DeleteMine(ctx context.Context, userID, pnmID string) error
	SetVisibility(ctx context.Context, userID, ratingID string, hidden bool) (*dto.RatingResponse, error)
}

type ratingService struct {
	repo       *repository.Repository
	membership MembershipService
	aggregate  AggregateService
	logger     *zap.Logger
}

// NewRatingService creates a RatingService.
func NewRatingService(repo *repository.Repository, membership MembershipService, aggregate AggregateService, logger *zap.Logger) RatingService {
	return &ratingService{repo: repo, membership: membership, aggregate: aggregate, logger: logger}
}

// ────────────────────── Upsert ──────────────────────

// Upsert writes the caller's rating for the candidate. The term comes from
// the candidate row, never from the request.
func (s *ratingService) Upsert(ctx context.Context, userID, pnmID string, req *dto.UpsertRatingRequest) (*dto.RatingResponse, error) {
	pnm, err := s.loadPNM(ctx, pnmID)
	if err != nil {
		return nil, err
	}
	if _, err := s.membership.Require(ctx, userID, pnm.TermID); err != nil {
		return nil, err
	}

	rating := &model.Rating{
		TermID:  pnm.TermID,
		PNMID:   pnm.PNMID,
		RaterID: userID,
		Score:   *req.Score,
		Comment: req.Comment,
	}
	if err := s.repo.Rating.Upsert(ctx, rating); err != nil {
		s.logger.Error("upsert rating failed", zap.String("pnm_id", pnmID), zap.String("rater_id", userID), zap.Error(err))
		return nil, err
	}

	if _, err := s.aggregate.Recompute(ctx, pnm.TermID, pnm.PNMID); err != nil {
		return nil, err
	}

	stored, err := s.repo.Rating.GetByTriple(ctx, pnm.TermID, pnm.PNMID, userID)
	if err != nil {
		s.logger.Error("reload rating failed", zap.String("pnm_id", pnmID), zap.Error(err))
		return nil, err
	}
	resp := toRatingResponse(stored)
	return &resp, nil
}

// ────────────────────── List ──────────────────────

// List shows hidden ratings to term Admins only.
func (s *ratingService) List(ctx context.Context, userID, pnmID string) ([]dto.RatingResponse, error) {
	pnm, err := s.loadPNM(ctx, pnmID)
	if err != nil {
		return nil, err
	}
	m, err := s.membership.Require(ctx, userID, pnm.TermID)
	if err != nil {
		return nil, err
	}

	ratings, err := s.repo.Rating.ListByPNM(ctx, pnm.TermID, pnm.PNMID, m.Role == model.RoleAdmin)
	if err != nil {
		s.logger.Error("list ratings failed", zap.String("pnm_id", pnmID), zap.Error(err))
		return nil, err
	}

	result := make([]dto.RatingResponse, 0, len(ratings))
	for i := range ratings {
		result = append(result, toRatingResponse(&ratings[i]))
	}
	return result, nil
}

// ────────────────────── DeleteMine ──────────────────────

// DeleteMine removes only the caller's own rating. Nothing to delete is not an error.
func (s *ratingService) DeleteMine(ctx context.Context, userID, pnmID string) error {
	pnm, err := s.loadPNM(ctx, pnmID)
	if err != nil {
		return err
	}
	if _, err := s.membership.Require(ctx, userID, pnm.TermID); err != nil {
		return err
	}

	if _, err := s.repo.Rating.DeleteByRater(ctx, pnm.TermID, pnm.PNMID, userID); err != nil {
		s.logger.Error("delete rating failed", zap.String("pnm_id", pnmID), zap.String("rater_id", userID), zap.Error(err))
		return err
	}

	_, err = s.aggregate.Recompute(ctx, pnm.TermID, pnm.PNMID)
	return err
}

// ────────────────────── SetVisibility ──────────────────────

func (s *ratingService) SetVisibility(ctx context.Context, userID, ratingID string, hidden bool) (*dto.RatingResponse, error) {
	rating, err := s.repo.Rating.GetByID(ctx, ratingID)
	if err != nil {
		if pkgerrors.IsNotFound(err) {
			return nil, ErrRatingNotFound
		}
		s.logger.Error("load rating failed", zap.String("rating_id", ratingID), zap.Error(err))
		return nil, err
	}
	if _, err := s.membership.Require(ctx, userID, rating.TermID, model.RoleAdmin); err != nil {
		return nil, err
	}

	if err := s.repo.Rating.SetHidden(ctx, ratingID, hidden); err != nil {
		if pkgerrors.IsNotFound(err) {
			return nil, ErrRatingNotFound
		}
		s.logger.Error("set rating visibility failed", zap.String("rating_id", ratingID), zap.Error(err))
		return nil, err
	}

	if _, err := s.aggregate.Recompute(ctx, rating.TermID, rating.PNMID); err != nil {
		return nil, err
	}

	stored, err := s.repo.Rating.GetByTriple(ctx, rating.TermID, rating.PNMID, rating.RaterID)
	if err != nil {
		return nil, err
	}
	resp := toRatingResponse(stored)
	return &resp, nil
}

// ── helpers ──

func (s *ratingService) loadPNM(ctx context.Context, pnmID string) (*model.PNM, error) {
	pnm, err := s.repo.PNM.GetByID(ctx, pnmID)
	if err != nil {
		if pkgerrors.IsNotFound(err) {
			return nil, ErrPNMNotFound
		}
		s.logger.Error("load candidate failed", zap.String("pnm_id", pnmID), zap.Error(err))
		return nil, err
	}
	return pnm, nil
}

func toRatingResponse(r *model.Rating) dto.RatingResponse {
	resp := dto.RatingResponse{
		RatingID:  r.RatingID,
		TermID:    r.TermID,
		PNMID:     r.PNMID,
		RaterID:   r.RaterID,
		Score:     r.Score,
		Comment:   r.Comment,
		Reactions: r.ReactionCounts(),
		IsHidden:  r.IsHidden,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
	if r.Rater != nil {
		resp.RaterName = r.Rater.Name
	}
	return resp
}
