package service

import (
	"context"
	"errors"
	"testing"

	"github.com/simonbalanoff/SigEpRush-API/internal/dto"
	"github.com/simonbalanoff/SigEpRush-API/internal/model"
)

type ratingFixture struct {
	env    *testEnv
	admin  *model.User
	adder  *model.User
	member *model.User
	termID string
	pnmID  string
}

func newRatingFixture(t *testing.T) *ratingFixture {
	t.Helper()
	env := newTestEnv(t)
	admin := env.createUser(t, "Admin", model.RoleMember)
	adder := env.createUser(t, "Adder", model.RoleMember)
	member := env.createUser(t, "Member", model.RoleMember)

	created := createTerm(t, env, admin.UserID, "Fall2024", "RUSH-FALL-24", nil)
	termID := created.Term.TermID
	env.addMember(t, adder.UserID, termID, model.RoleAdder)
	env.addMember(t, member.UserID, termID, model.RoleMember)

	pnm, err := env.svc.PNM.Create(context.Background(), termID, adder.UserID, &dto.CreatePNMRequest{
		FirstName: "Jordan",
		LastName:  "Reyes",
	})
	if err != nil {
		t.Fatalf("create candidate: %v", err)
	}

	return &ratingFixture{env: env, admin: admin, adder: adder, member: member, termID: termID, pnmID: pnm.PNMID}
}

func (f *ratingFixture) rate(t *testing.T, userID string, score int) *dto.RatingResponse {
	t.Helper()
	r, err := f.env.svc.Rating.Upsert(context.Background(), userID, f.pnmID, &dto.UpsertRatingRequest{Score: intPtr(score)})
	if err != nil {
		t.Fatalf("rate %d: %v", score, err)
	}
	return r
}

func (f *ratingFixture) aggregate(t *testing.T) *dto.AggregateResponse {
	t.Helper()
	p, err := f.env.svc.PNM.Get(context.Background(), f.admin.UserID, f.pnmID)
	if err != nil {
		t.Fatalf("get candidate: %v", err)
	}
	return p.Aggregate
}

func TestRatingUpsert_OneRowPerRater(t *testing.T) {
	f := newRatingFixture(t)
	ctx := context.Background()

	first := f.rate(t, f.member.UserID, 4)
	second, err := f.env.svc.Rating.Upsert(ctx, f.member.UserID, f.pnmID, &dto.UpsertRatingRequest{
		Score:   intPtr(9),
		Comment: strPtr("strong second conversation"),
	})
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	if first.RatingID != second.RatingID {
		t.Errorf("upsert must keep the same row: %s != %s", first.RatingID, second.RatingID)
	}
	if second.Score != 9 || second.Comment == nil || *second.Comment != "strong second conversation" {
		t.Errorf("unexpected rating: %+v", second)
	}
	if second.RaterName != "Member" {
		t.Errorf("expected rater name, got %q", second.RaterName)
	}

	list, err := f.env.svc.Rating.List(ctx, f.member.UserID, f.pnmID)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 1 {
		t.Errorf("expected 1 rating, got %d", len(list))
	}

	agg := f.aggregate(t)
	if agg == nil || agg.AvgScore != 9 || agg.CountRatings != 1 {
		t.Errorf("aggregate must reflect the latest score: %+v", agg)
	}
}

func TestRatingUpsert_ScoreOnlyKeepsComment(t *testing.T) {
	f := newRatingFixture(t)
	ctx := context.Background()

	_, err := f.env.svc.Rating.Upsert(ctx, f.member.UserID, f.pnmID, &dto.UpsertRatingRequest{
		Score:   intPtr(7),
		Comment: strPtr("great"),
	})
	if err != nil {
		t.Fatalf("first upsert: %v", err)
	}

	r := f.rate(t, f.member.UserID, 8)
	if r.Score != 8 {
		t.Errorf("expected score 8, got %d", r.Score)
	}
	if r.Comment == nil || *r.Comment != "great" {
		t.Errorf("score-only re-rate must keep the comment, got %v", r.Comment)
	}

	r, err = f.env.svc.Rating.Upsert(ctx, f.member.UserID, f.pnmID, &dto.UpsertRatingRequest{
		Score:   intPtr(8),
		Comment: strPtr(""),
	})
	if err != nil {
		t.Fatalf("clearing upsert: %v", err)
	}
	if r.Comment != nil && *r.Comment != "" {
		t.Errorf("explicit empty comment must replace the old one, got %q", *r.Comment)
	}
}

func TestRatingUpsert_AggregateAcrossRaters(t *testing.T) {
	f := newRatingFixture(t)

	f.rate(t, f.admin.UserID, 7)
	f.rate(t, f.adder.UserID, 8)
	f.rate(t, f.member.UserID, 8)

	agg := f.aggregate(t)
	if agg == nil {
		t.Fatal("expected aggregate")
	}
	if agg.AvgScore != 7.7 || agg.CountRatings != 3 {
		t.Errorf("unexpected aggregate: %+v", agg)
	}
	if agg.DistScore[7] != 1 || agg.DistScore[8] != 2 {
		t.Errorf("unexpected distribution: %v", agg.DistScore)
	}
}

func TestRatingUpsert_NonMember(t *testing.T) {
	f := newRatingFixture(t)
	outsider := f.env.createUser(t, "Outsider", model.RoleAdmin)

	_, err := f.env.svc.Rating.Upsert(context.Background(), outsider.UserID, f.pnmID, &dto.UpsertRatingRequest{Score: intPtr(5)})
	if !errors.Is(err, ErrNotMember) {
		t.Errorf("global Admin without membership must be rejected, got %v", err)
	}

	_, err = f.env.svc.Rating.Upsert(context.Background(), f.member.UserID, "missing", &dto.UpsertRatingRequest{Score: intPtr(5)})
	if !errors.Is(err, ErrPNMNotFound) {
		t.Errorf("expected ErrPNMNotFound, got %v", err)
	}
}

func TestRatingDeleteMine(t *testing.T) {
	f := newRatingFixture(t)
	ctx := context.Background()

	f.rate(t, f.admin.UserID, 2)
	f.rate(t, f.member.UserID, 6)

	if err := f.env.svc.Rating.DeleteMine(ctx, f.member.UserID, f.pnmID); err != nil {
		t.Fatalf("DeleteMine: %v", err)
	}
	agg := f.aggregate(t)
	if agg == nil || agg.AvgScore != 2 || agg.CountRatings != 1 {
		t.Errorf("unexpected aggregate after delete: %+v", agg)
	}

	// nothing left to delete is still success
	if err := f.env.svc.Rating.DeleteMine(ctx, f.member.UserID, f.pnmID); err != nil {
		t.Errorf("second DeleteMine: %v", err)
	}

	if err := f.env.svc.Rating.DeleteMine(ctx, f.admin.UserID, f.pnmID); err != nil {
		t.Fatalf("DeleteMine admin: %v", err)
	}
	if agg := f.aggregate(t); agg != nil {
		t.Errorf("aggregate must be absent with no ratings, got %+v", agg)
	}
}

func TestRatingSetVisibility(t *testing.T) {
	f := newRatingFixture(t)
	ctx := context.Background()

	f.rate(t, f.admin.UserID, 10)
	troll := f.rate(t, f.member.UserID, 0)

	if _, err := f.env.svc.Rating.SetVisibility(ctx, f.adder.UserID, troll.RatingID, true); !errors.Is(err, ErrForbidden) {
		t.Errorf("Adder must not hide ratings, got %v", err)
	}

	hidden, err := f.env.svc.Rating.SetVisibility(ctx, f.admin.UserID, troll.RatingID, true)
	if err != nil {
		t.Fatalf("SetVisibility: %v", err)
	}
	if !hidden.IsHidden {
		t.Errorf("expected hidden rating")
	}

	agg := f.aggregate(t)
	if agg == nil || agg.AvgScore != 10 || agg.CountRatings != 1 {
		t.Errorf("hidden rating must not count: %+v", agg)
	}

	memberView, _ := f.env.svc.Rating.List(ctx, f.adder.UserID, f.pnmID)
	if len(memberView) != 1 {
		t.Errorf("non-admin should see 1 rating, got %d", len(memberView))
	}
	adminView, _ := f.env.svc.Rating.List(ctx, f.admin.UserID, f.pnmID)
	if len(adminView) != 2 {
		t.Errorf("admin should see 2 ratings, got %d", len(adminView))
	}

	if _, err := f.env.svc.Rating.SetVisibility(ctx, f.admin.UserID, troll.RatingID, false); err != nil {
		t.Fatalf("unhide: %v", err)
	}
	if agg := f.aggregate(t); agg == nil || agg.CountRatings != 2 || agg.AvgScore != 5 {
		t.Errorf("unhidden rating must count again: %+v", agg)
	}

	if _, err := f.env.svc.Rating.SetVisibility(ctx, f.admin.UserID, "missing", true); !errors.Is(err, ErrRatingNotFound) {
		t.Errorf("expected ErrRatingNotFound, got %v", err)
	}
}
