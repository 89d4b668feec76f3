package service

import (
	"context"
	"reflect"
	"testing"
	"time"

	"github.com/simonbalanoff/SigEpRush-API/internal/model"
)

func TestComputeAggregate(t *testing.T) {
	now := time.Date(2024, 9, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		scores  []int
		wantAvg float64
		wantN   int
	}{
		{"single", []int{7}, 7, 1},
		{"two raters", []int{8, 6}, 7, 2},
		{"repeating decimal", []int{7, 8, 8}, 7.7, 3},
		{"half rounds up", []int{9, 10, 10, 10}, 9.8, 4},
		{"small mean", []int{0, 0, 1}, 0.3, 3},
		{"all zero", []int{0, 0}, 0, 2},
		{"exact half", []int{1, 2}, 1.5, 2},
		{"twentieths", []int{0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 5}, 0.3, 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			agg := ComputeAggregate(tt.scores, now)
			if agg == nil {
				t.Fatal("expected aggregate")
			}
			if agg.AvgScore != tt.wantAvg {
				t.Errorf("avg = %v, want %v", agg.AvgScore, tt.wantAvg)
			}
			if agg.CountRatings != tt.wantN {
				t.Errorf("count = %d, want %d", agg.CountRatings, tt.wantN)
			}
			if len(agg.DistScore) != MaxScore+1 {
				t.Fatalf("dist len = %d, want %d", len(agg.DistScore), MaxScore+1)
			}
			sum := 0
			for _, n := range agg.DistScore {
				sum += n
			}
			if sum != agg.CountRatings {
				t.Errorf("dist sums to %d, count is %d", sum, agg.CountRatings)
			}
			if !agg.LastRatedAt.Equal(now) {
				t.Errorf("last rated = %v, want %v", agg.LastRatedAt, now)
			}
		})
	}
}

func TestComputeAggregate_Empty(t *testing.T) {
	if agg := ComputeAggregate(nil, time.Now()); agg != nil {
		t.Errorf("expected nil for no scores, got %+v", agg)
	}
}

func TestComputeAggregate_Distribution(t *testing.T) {
	agg := ComputeAggregate([]int{10, 0, 10, 5}, time.Now())
	want := []int{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 2}
	for i := range want {
		if agg.DistScore[i] != want[i] {
			t.Errorf("dist[%d] = %d, want %d", i, agg.DistScore[i], want[i])
		}
	}
}

func TestAggregateRecompute_ReplacesStoredColumns(t *testing.T) {
	f := newRatingFixture(t)
	ctx := context.Background()

	f.rate(t, f.admin.UserID, 7)
	f.rate(t, f.member.UserID, 8)

	// overwrite the derived columns with values that match no ledger
	err := f.env.db.Model(&model.PNM{}).
		Where("pnm_id = ?", f.pnmID).
		Updates(map[string]interface{}{
			"avg_score":     1.0,
			"dist_score":    model.IntArray{9, 9, 9},
			"count_ratings": 42,
		}).Error
	if err != nil {
		t.Fatalf("tamper: %v", err)
	}

	first, err := f.env.svc.Aggregate.Recompute(ctx, f.termID, f.pnmID)
	if err != nil {
		t.Fatalf("first Recompute: %v", err)
	}
	second, err := f.env.svc.Aggregate.Recompute(ctx, f.termID, f.pnmID)
	if err != nil {
		t.Fatalf("second Recompute: %v", err)
	}

	if first.AvgScore != second.AvgScore || first.CountRatings != second.CountRatings ||
		!reflect.DeepEqual(first.DistScore, second.DistScore) {
		t.Errorf("recompute must be stable: %+v vs %+v", first, second)
	}

	pnm, err := f.env.repo.PNM.GetByID(ctx, f.pnmID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if pnm.AvgScore == nil || *pnm.AvgScore != 7.5 {
		t.Errorf("expected stored avg 7.5, got %v", pnm.AvgScore)
	}
	if pnm.CountRatings == nil || *pnm.CountRatings != 2 {
		t.Errorf("expected stored count 2, got %v", pnm.CountRatings)
	}
	want := model.IntArray{0, 0, 0, 0, 0, 0, 0, 1, 1, 0, 0}
	if !reflect.DeepEqual(pnm.DistScore, want) {
		t.Errorf("expected dist %v, got %v", want, pnm.DistScore)
	}
	if pnm.LastRatedAt == nil {
		t.Error("expected last_rated_at to be set")
	}
}

func TestAggregateRecompute_EmptyLedgerClearsColumns(t *testing.T) {
	f := newRatingFixture(t)
	ctx := context.Background()

	err := f.env.db.Model(&model.PNM{}).
		Where("pnm_id = ?", f.pnmID).
		Updates(map[string]interface{}{"avg_score": 5.0, "count_ratings": 3}).Error
	if err != nil {
		t.Fatalf("tamper: %v", err)
	}

	agg, err := f.env.svc.Aggregate.Recompute(ctx, f.termID, f.pnmID)
	if err != nil {
		t.Fatalf("Recompute: %v", err)
	}
	if agg != nil {
		t.Errorf("expected nil aggregate, got %+v", agg)
	}

	pnm, err := f.env.repo.PNM.GetByID(ctx, f.pnmID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if pnm.AvgScore != nil || pnm.CountRatings != nil || pnm.DistScore != nil || pnm.LastRatedAt != nil {
		t.Errorf("expected cleared aggregate, got %+v", pnm)
	}
}
