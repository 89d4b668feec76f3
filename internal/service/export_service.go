package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/simonbalanoff/SigEpRush-API/internal/repository"
	pkgerrors "github.com/simonbalanoff/SigEpRush-API/pkg/errors"
)

// ── Export errors ──

var (
	ErrExportNoCandidates = errors.New("term has no candidates")
	ErrExportGenerateFail = errors.New("failed to generate spreadsheet")
)

// ExportService renders term data as spreadsheets.
//
// The buffer is returned whole; the handler sets the download headers.
type ExportService interface {
	// ExportRanking writes every candidate of the term in default ranking order.
	ExportRanking(ctx context.Context, termID string) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewExportService creates an ExportService.
func NewExportService(repo *repository.Repository, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, logger: logger}
}

var rankingHeader = []string{
	"Rank", "First name", "Last name", "Preferred name", "Class year", "Major", "GPA",
	"Status", "Tags", "Average", "Ratings", "Last rated",
	"0", "1", "2", "3", "4", "5", "6", "7", "8", "9", "10",
}

// ════════════════════════════════════════
// ExportRanking
// ════════════════════════════════════════
//
// One sheet, one row per candidate, ordered like the default list view.
// Unrated candidates have empty aggregate cells.

func (s *exportService) ExportRanking(ctx context.Context, termID string) (*bytes.Buffer, string, error) {
	term, err := s.repo.Term.GetByID(ctx, termID)
	if err != nil {
		if pkgerrors.IsNotFound(err) {
			return nil, "", ErrTermNotFound
		}
		s.logger.Error("load term failed", zap.String("term_id", termID), zap.Error(err))
		return nil, "", err
	}

	sortFields, _ := ParsePNMSort("")
	pnms, _, err := s.repo.PNM.List(ctx, termID, repository.PNMFilter{Sort: sortFields})
	if err != nil {
		s.logger.Error("list candidates for export failed", zap.String("term_id", termID), zap.Error(err))
		return nil, "", err
	}
	if len(pnms) == 0 {
		return nil, "", ErrExportNoCandidates
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Ranking"
	idx, err := f.NewSheet(sheet)
	if err != nil {
		return nil, "", ErrExportGenerateFail
	}
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#D9E1F2"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	f.SetColWidth(sheet, "A", "A", 6)
	f.SetColWidth(sheet, "B", "D", 16)
	f.SetColWidth(sheet, "F", "F", 20)
	f.SetColWidth(sheet, "I", "I", 24)
	f.SetColWidth(sheet, "L", "L", 20)

	for i, h := range rankingHeader {
		f.SetCellValue(sheet, cellName(i, 1), h)
	}
	f.SetCellStyle(sheet, cellName(0, 1), cellName(len(rankingHeader)-1, 1), headerStyle)
	f.SetPanes(sheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})

	for i, p := range pnms {
		row := i + 2
		values := []interface{}{
			i + 1,
			p.FirstName,
			p.LastName,
			deref(p.PreferredName),
			derefInt(p.ClassYear),
			deref(p.Major),
			derefFloat(p.GPA),
			p.Status,
			strings.Join(p.TagNames(), ", "),
		}
		if p.AvgScore != nil && p.CountRatings != nil {
			values = append(values, *p.AvgScore, *p.CountRatings)
			if p.LastRatedAt != nil {
				values = append(values, p.LastRatedAt.UTC().Format("2006-01-02 15:04"))
			} else {
				values = append(values, "")
			}
			for _, n := range p.DistScore {
				values = append(values, n)
			}
		}
		for col, v := range values {
			f.SetCellValue(sheet, cellName(col, row), v)
		}
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("write spreadsheet failed", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("ranking_%s.xlsx", term.Code)
	return buf, filename, nil
}

// ── helpers ──

// cellName converts a zero-based column and one-based row to "A1" form.
func cellName(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col+1, row)
	return name
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func derefInt(n *int) interface{} {
	if n == nil {
		return ""
	}
	return *n
}

func derefFloat(n *float64) interface{} {
	if n == nil {
		return ""
	}
	return *n
}
