package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/simonbalanoff/SigEpRush-API/internal/dto"
	"github.com/simonbalanoff/SigEpRush-API/internal/model"
	"github.com/simonbalanoff/SigEpRush-API/internal/repository"
	pkgerrors "github.com/simonbalanoff/SigEpRush-API/pkg/errors"
)

// ── Candidate errors ──

var (
	ErrPNMNotFound = errors.New("candidate not found")
	ErrInvalidSort = errors.New("invalid sort field")
)

// DefaultPNMSort ranks by score, then by rating volume, then by recency.
const DefaultPNMSort = "-avg_score,-count_ratings,-updated_at"

var pnmSortColumns = map[string]string{
	"avg_score":     "avg_score",
	"count_ratings": "count_ratings",
	"updated_at":    "updated_at",
	"created_at":    "created_at",
	"last_name":     "last_name",
	"first_name":    "first_name",
	"class_year":    "class_year",
	"gpa":           "gpa",
	"last_rated_at": "last_rated_at",
}

// ParsePNMSort turns "-avg_score,last_name" into whitelisted sort fields.
// An empty string yields DefaultPNMSort.
func ParsePNMSort(raw string) ([]repository.SortField, error) {
	if strings.TrimSpace(raw) == "" {
		raw = DefaultPNMSort
	}

	var fields []repository.SortField
	seen := make(map[string]bool)
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		desc := strings.HasPrefix(part, "-")
		name := strings.TrimPrefix(strings.TrimPrefix(part, "-"), "+")
		col, ok := pnmSortColumns[name]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrInvalidSort, name)
		}
		if seen[col] {
			continue
		}
		seen[col] = true
		fields = append(fields, repository.SortField{Column: col, Desc: desc})
	}
	return fields, nil
}

// NormalizeTags lower-cases, trims and de-duplicates tags, keeping first-seen order.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

// PNMService manages candidate records.
//
// Routes under /terms/:termId are authorized by middleware before reaching
// Create and List. Routes addressed by candidate id check membership here,
// after loading the candidate to learn its term.
type PNMService interface {
	Create(ctx context.Context, termID, callerID string, req *dto.CreatePNMRequest) (*dto.PNMResponse, error)
	List(ctx context.Context, termID string, req *dto.ListPNMRequest) ([]dto.PNMResponse, int64, error)
	Get(ctx context.Context, userID, pnmID string) (*dto.PNMResponse, error)
	Update(ctx context.Context, userID, pnmID string, req *dto.UpdatePNMRequest) (*dto.PNMResponse, error)
	Delete(ctx context.Context, userID, pnmID string) error
	AttachPhoto(ctx context.Context, userID, pnmID, key string) (*dto.PNMResponse, error)
}

type pnmService struct {
	repo       *repository.Repository
	membership MembershipService
	store      ObjectStore
	logger     *zap.Logger
}

// NewPNMService creates a PNMService. store may be nil.
func NewPNMService(repo *repository.Repository, membership MembershipService, store ObjectStore, logger *zap.Logger) PNMService {
	return &pnmService{repo: repo, membership: membership, store: store, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *pnmService) Create(ctx context.Context, termID, callerID string, req *dto.CreatePNMRequest) (*dto.PNMResponse, error) {
	status := req.Status
	if status == "" {
		status = model.PNMStatusNew
	}

	pnm := &model.PNM{
		TermID:        termID,
		FirstName:     strings.TrimSpace(req.FirstName),
		LastName:      strings.TrimSpace(req.LastName),
		PreferredName: req.PreferredName,
		ClassYear:     req.ClassYear,
		Major:         req.Major,
		GPA:           req.GPA,
		Phone:         req.Phone,
		Email:         req.Email,
		Status:        status,
		CreatedBy:     &callerID,
	}
	if req.PhotoKey != nil && *req.PhotoKey != "" && s.store != nil {
		url := s.store.PublicURL(*req.PhotoKey)
		pnm.PhotoKey = req.PhotoKey
		pnm.PhotoURL = &url
	}

	if err := s.repo.PNM.Create(ctx, pnm, NormalizeTags(req.Tags)); err != nil {
		s.logger.Error("create candidate failed", zap.String("term_id", termID), zap.Error(err))
		return nil, err
	}

	return toPNMResponse(pnm), nil
}

// ────────────────────── List ──────────────────────

func (s *pnmService) List(ctx context.Context, termID string, req *dto.ListPNMRequest) ([]dto.PNMResponse, int64, error) {
	sortFields, err := ParsePNMSort(req.Sort)
	if err != nil {
		return nil, 0, err
	}

	pnms, total, err := s.repo.PNM.List(ctx, termID, repository.PNMFilter{
		Q:         req.Q,
		Status:    req.Status,
		ClassYear: req.ClassYear,
		Tag:       strings.TrimSpace(req.Tag),
		Sort:      sortFields,
		Offset:    req.GetOffset(),
		Limit:     req.GetPageSize(),
	})
	if err != nil {
		s.logger.Error("list candidates failed", zap.String("term_id", termID), zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.PNMResponse, 0, len(pnms))
	for i := range pnms {
		result = append(result, *toPNMResponse(&pnms[i]))
	}
	return result, total, nil
}

// ────────────────────── Get ──────────────────────

func (s *pnmService) Get(ctx context.Context, userID, pnmID string) (*dto.PNMResponse, error) {
	pnm, err := s.load(ctx, userID, pnmID)
	if err != nil {
		return nil, err
	}
	return toPNMResponse(pnm), nil
}

// ────────────────────── Update ──────────────────────

// Update applies a partial change. Aggregate columns are never part of it.
func (s *pnmService) Update(ctx context.Context, userID, pnmID string, req *dto.UpdatePNMRequest) (*dto.PNMResponse, error) {
	if _, err := s.load(ctx, userID, pnmID, model.RoleAdmin, model.RoleAdder); err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	if req.FirstName != nil {
		fields["first_name"] = strings.TrimSpace(*req.FirstName)
	}
	if req.LastName != nil {
		fields["last_name"] = strings.TrimSpace(*req.LastName)
	}
	if req.PreferredName != nil {
		fields["preferred_name"] = *req.PreferredName
	}
	if req.ClassYear != nil {
		fields["class_year"] = *req.ClassYear
	}
	if req.Major != nil {
		fields["major"] = *req.Major
	}
	if req.GPA != nil {
		fields["gpa"] = *req.GPA
	}
	if req.Phone != nil {
		fields["phone"] = *req.Phone
	}
	if req.Email != nil {
		fields["email"] = *req.Email
	}
	if req.Status != nil {
		fields["status"] = *req.Status
	}

	if len(fields) == 0 && req.Tags == nil {
		return nil, ErrNoChanges
	}

	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		if len(fields) > 0 {
			if err := tx.PNM.Update(ctx, pnmID, fields); err != nil {
				return err
			}
		}
		if req.Tags != nil {
			return tx.PNM.ReplaceTags(ctx, pnmID, NormalizeTags(*req.Tags))
		}
		return nil
	})
	if err != nil {
		if pkgerrors.IsNotFound(err) {
			return nil, ErrPNMNotFound
		}
		s.logger.Error("update candidate failed", zap.String("pnm_id", pnmID), zap.Error(err))
		return nil, err
	}

	updated, err := s.repo.PNM.GetByID(ctx, pnmID)
	if err != nil {
		return nil, err
	}
	return toPNMResponse(updated), nil
}

// ────────────────────── Delete ──────────────────────

// Delete cascades to the candidate's ratings, reactions and tags, then drops
// the photo object without waiting for it.
func (s *pnmService) Delete(ctx context.Context, userID, pnmID string) error {
	pnm, err := s.load(ctx, userID, pnmID, model.RoleAdmin)
	if err != nil {
		return err
	}

	if err := s.repo.PNM.Delete(ctx, pnmID); err != nil {
		if pkgerrors.IsNotFound(err) {
			return ErrPNMNotFound
		}
		s.logger.Error("delete candidate failed", zap.String("pnm_id", pnmID), zap.Error(err))
		return err
	}

	if pnm.PhotoKey != nil {
		s.deleteObjectAsync(*pnm.PhotoKey)
	}
	return nil
}

// ────────────────────── AttachPhoto ──────────────────────

func (s *pnmService) AttachPhoto(ctx context.Context, userID, pnmID, key string) (*dto.PNMResponse, error) {
	if s.store == nil {
		return nil, ErrStorageDisabled
	}

	pnm, err := s.load(ctx, userID, pnmID, model.RoleAdmin, model.RoleAdder)
	if err != nil {
		return nil, err
	}

	url := s.store.PublicURL(key)
	err = s.repo.PNM.Update(ctx, pnmID, map[string]interface{}{
		"photo_url": url,
		"photo_key": key,
	})
	if err != nil {
		if pkgerrors.IsNotFound(err) {
			return nil, ErrPNMNotFound
		}
		s.logger.Error("attach photo failed", zap.String("pnm_id", pnmID), zap.Error(err))
		return nil, err
	}

	if pnm.PhotoKey != nil && *pnm.PhotoKey != key {
		s.deleteObjectAsync(*pnm.PhotoKey)
	}

	pnm.PhotoURL = &url
	pnm.PhotoKey = &key
	return toPNMResponse(pnm), nil
}

// ── helpers ──

// load fetches the candidate and checks the caller's role in its term.
func (s *pnmService) load(ctx context.Context, userID, pnmID string, allowed ...string) (*model.PNM, error) {
	pnm, err := s.repo.PNM.GetByID(ctx, pnmID)
	if err != nil {
		if pkgerrors.IsNotFound(err) {
			return nil, ErrPNMNotFound
		}
		s.logger.Error("load candidate failed", zap.String("pnm_id", pnmID), zap.Error(err))
		return nil, err
	}
	if _, err := s.membership.Require(ctx, userID, pnm.TermID, allowed...); err != nil {
		return nil, err
	}
	return pnm, nil
}

// deleteObjectAsync removes a superseded object; failures are only logged.
func (s *pnmService) deleteObjectAsync(key string) {
	if s.store == nil || key == "" {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.store.Delete(ctx, key); err != nil {
			s.logger.Warn("delete photo object failed", zap.String("key", key), zap.Error(err))
		}
	}()
}

func toPNMResponse(p *model.PNM) *dto.PNMResponse {
	resp := &dto.PNMResponse{
		PNMID:         p.PNMID,
		TermID:        p.TermID,
		FirstName:     p.FirstName,
		LastName:      p.LastName,
		PreferredName: p.PreferredName,
		ClassYear:     p.ClassYear,
		Major:         p.Major,
		GPA:           p.GPA,
		Phone:         p.Phone,
		Email:         p.Email,
		PhotoURL:      p.PhotoURL,
		Tags:          p.TagNames(),
		Status:        p.Status,
		CreatedBy:     p.CreatedBy,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}

	if p.CountRatings != nil && p.AvgScore != nil {
		agg := &dto.AggregateResponse{
			AvgScore:     *p.AvgScore,
			DistScore:    []int(p.DistScore),
			CountRatings: *p.CountRatings,
		}
		if p.LastRatedAt != nil {
			agg.LastRatedAt = *p.LastRatedAt
		}
		resp.Aggregate = agg
	}
	return resp
}
