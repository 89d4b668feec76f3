package service

import (
	"context"
	"errors"
	"testing"

	"github.com/simonbalanoff/SigEpRush-API/internal/model"
)

func TestReaction_AddRemove(t *testing.T) {
	f := newRatingFixture(t)
	ctx := context.Background()
	rating := f.rate(t, f.member.UserID, 8)

	resp, err := f.env.svc.Reaction.Add(ctx, f.admin.UserID, rating.RatingID, "🔥")
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if resp.Reactions["🔥"] != 1 {
		t.Errorf("expected 1, got %v", resp.Reactions)
	}

	// duplicate is a no-op
	resp, err = f.env.svc.Reaction.Add(ctx, f.admin.UserID, rating.RatingID, "🔥")
	if err != nil {
		t.Fatalf("Add duplicate: %v", err)
	}
	if resp.Reactions["🔥"] != 1 {
		t.Errorf("duplicate reaction must not double count, got %v", resp.Reactions)
	}

	if _, err := f.env.svc.Reaction.Add(ctx, f.adder.UserID, rating.RatingID, "🔥"); err != nil {
		t.Fatalf("Add second user: %v", err)
	}
	resp, err = f.env.svc.Reaction.Add(ctx, f.adder.UserID, rating.RatingID, "👍")
	if err != nil {
		t.Fatalf("Add other emoji: %v", err)
	}
	if resp.Reactions["🔥"] != 2 || resp.Reactions["👍"] != 1 {
		t.Errorf("unexpected counts: %v", resp.Reactions)
	}

	resp, err = f.env.svc.Reaction.Remove(ctx, f.admin.UserID, rating.RatingID, "🔥")
	if err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if resp.Reactions["🔥"] != 1 {
		t.Errorf("expected 1 after remove, got %v", resp.Reactions)
	}

	// removing an absent reaction changes nothing
	resp, err = f.env.svc.Reaction.Remove(ctx, f.admin.UserID, rating.RatingID, "🔥")
	if err != nil {
		t.Fatalf("Remove absent: %v", err)
	}
	if resp.Reactions["🔥"] != 1 {
		t.Errorf("expected 1 after absent remove, got %v", resp.Reactions)
	}

	// counts are persisted on the rating
	list, err := f.env.svc.Rating.List(ctx, f.member.UserID, f.pnmID)
	if err != nil || len(list) != 1 {
		t.Fatalf("List: %v (%d)", err, len(list))
	}
	if list[0].Reactions["🔥"] != 1 || list[0].Reactions["👍"] != 1 {
		t.Errorf("stored counts drifted: %v", list[0].Reactions)
	}
}

func TestReaction_RemoveLastDropsKey(t *testing.T) {
	f := newRatingFixture(t)
	ctx := context.Background()
	rating := f.rate(t, f.member.UserID, 8)

	if _, err := f.env.svc.Reaction.Add(ctx, f.admin.UserID, rating.RatingID, "👀"); err != nil {
		t.Fatalf("Add: %v", err)
	}
	resp, err := f.env.svc.Reaction.Remove(ctx, f.admin.UserID, rating.RatingID, "👀")
	if err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, ok := resp.Reactions["👀"]; ok {
		t.Errorf("zero counts should not be kept, got %v", resp.Reactions)
	}
}

func TestReaction_Forbidden(t *testing.T) {
	f := newRatingFixture(t)
	ctx := context.Background()
	rating := f.rate(t, f.member.UserID, 8)
	outsider := f.env.createUser(t, "Outsider", model.RoleMember)

	if _, err := f.env.svc.Reaction.Add(ctx, outsider.UserID, rating.RatingID, "🔥"); !errors.Is(err, ErrNotMember) {
		t.Errorf("expected ErrNotMember, got %v", err)
	}
	if _, err := f.env.svc.Reaction.Add(ctx, f.admin.UserID, "missing", "🔥"); !errors.Is(err, ErrRatingNotFound) {
		t.Errorf("expected ErrRatingNotFound, got %v", err)
	}
}
