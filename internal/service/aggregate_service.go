package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/simonbalanoff/SigEpRush-API/internal/model"
	"github.com/simonbalanoff/SigEpRush-API/internal/repository"
)

// MaxScore is the top of the 0..MaxScore rating scale.
const MaxScore = 10

// Aggregate is the derived rating summary of one candidate.
type Aggregate struct {
	AvgScore     float64
	DistScore    []int // len MaxScore+1, index = score
	CountRatings int
	LastRatedAt  time.Time
}

// ComputeAggregate derives the summary from a set of scores.
// It returns nil for an empty set so "no ratings" stays distinct from an average of 0.
// The mean is rounded half away from zero to one decimal place.
func ComputeAggregate(scores []int, now time.Time) *Aggregate {
	if len(scores) == 0 {
		return nil
	}

	dist := make([]int, MaxScore+1)
	var sum int64
	for _, sc := range scores {
		if sc >= 0 && sc <= MaxScore {
			dist[sc]++
		}
		sum += int64(sc)
	}

	avg, _ := decimal.NewFromInt(sum).
		Div(decimal.NewFromInt(int64(len(scores)))).
		Round(1).
		Float64()

	return &Aggregate{
		AvgScore:     avg,
		DistScore:    dist,
		CountRatings: len(scores),
		LastRatedAt:  now,
	}
}

// AggregateService rebuilds a candidate's aggregate from its rating ledger.
type AggregateService interface {
	// Recompute reloads the visible ratings of (termID, pnmID) and replaces the
	// stored aggregate. It is idempotent and safe to rerun at any time.
	Recompute(ctx context.Context, termID, pnmID string) (*Aggregate, error)
}

type aggregateService struct {
	repo   *repository.Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewAggregateService creates an AggregateService.
func NewAggregateService(repo *repository.Repository, logger *zap.Logger) AggregateService {
	return &aggregateService{repo: repo, logger: logger, now: time.Now}
}

func (s *aggregateService) Recompute(ctx context.Context, termID, pnmID string) (*Aggregate, error) {
	scores, err := s.repo.Rating.VisibleScores(ctx, termID, pnmID)
	if err != nil {
		s.logger.Error("load scores failed", zap.String("pnm_id", pnmID), zap.Error(err))
		return nil, err
	}

	agg := ComputeAggregate(scores, s.now().UTC())

	if err := s.repo.PNM.UpdateAggregate(ctx, pnmID, aggregateColumns(agg)); err != nil {
		s.logger.Error("store aggregate failed", zap.String("pnm_id", pnmID), zap.Error(err))
		return nil, err
	}
	return agg, nil
}

// aggregateColumns maps an aggregate onto all four columns; nil clears every one of them.
func aggregateColumns(agg *Aggregate) map[string]interface{} {
	if agg == nil {
		return map[string]interface{}{
			"avg_score":     nil,
			"dist_score":    model.IntArray(nil),
			"count_ratings": nil,
			"last_rated_at": nil,
		}
	}
	return map[string]interface{}{
		"avg_score":     agg.AvgScore,
		"dist_score":    model.IntArray(agg.DistScore),
		"count_ratings": agg.CountRatings,
		"last_rated_at": agg.LastRatedAt,
	}
}
