package service

import (
	"context"
	"errors"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/simonbalanoff/SigEpRush-API/internal/dto"
	"github.com/simonbalanoff/SigEpRush-API/internal/model"
)

func TestExportRanking(t *testing.T) {
	f := newRatingFixture(t)
	ctx := context.Background()

	top, err := f.env.svc.PNM.Create(ctx, f.termID, f.adder.UserID, &dto.CreatePNMRequest{
		FirstName: "Alex",
		LastName:  "Kim",
		Tags:      []string{"legacy"},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := f.env.svc.Rating.Upsert(ctx, f.member.UserID, top.PNMID, &dto.UpsertRatingRequest{Score: intPtr(9)}); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	buf, filename, err := f.env.svc.Export.ExportRanking(ctx, f.termID)
	if err != nil {
		t.Fatalf("ExportRanking: %v", err)
	}
	if filename != "ranking_fall2024.xlsx" {
		t.Errorf("unexpected filename %q", filename)
	}

	book, err := excelize.OpenReader(buf)
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer book.Close()

	rows, err := book.GetRows("Ranking")
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(rows))
	}
	if rows[0][0] != "Rank" {
		t.Errorf("unexpected header %v", rows[0])
	}
	if rows[1][1] != "Alex" || rows[1][8] != "legacy" || rows[1][9] != "9" {
		t.Errorf("unexpected top row %v", rows[1])
	}
	if rows[2][1] != "Jordan" {
		t.Errorf("unrated candidate should be last, got %v", rows[2])
	}
	if len(rows[2]) > 9 {
		t.Errorf("unrated candidate must have no aggregate cells, got %v", rows[2])
	}
}

func TestExportRanking_Errors(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.createUser(t, "Owner", model.RoleMember)
	created := createTerm(t, env, owner.UserID, "Empty2024", "EMPTY-CODE", nil)

	if _, _, err := env.svc.Export.ExportRanking(ctx, created.Term.TermID); !errors.Is(err, ErrExportNoCandidates) {
		t.Errorf("expected ErrExportNoCandidates, got %v", err)
	}
	if _, _, err := env.svc.Export.ExportRanking(ctx, "missing"); !errors.Is(err, ErrTermNotFound) {
		t.Errorf("expected ErrTermNotFound, got %v", err)
	}
}
