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

// ── Membership errors ──

var (
	ErrNotMember          = errors.New("not a member of this term")
	ErrForbidden          = errors.New("role not allowed for this action")
	ErrMembershipNotFound = errors.New("membership not found")
	ErrSelfDemotion       = errors.New("admins cannot demote themselves")
)

// MembershipService resolves term-scoped roles and manages a term's members.
//
// The membership row is the only source of term authorization; the global
// user role is never consulted here.
type MembershipService interface {
	// Resolve returns the caller's membership or ErrNotMember.
	Resolve(ctx context.Context, userID, termID string) (*model.TermMembership, error)
	// Require is Resolve plus a role check; an empty allow-list admits any member.
	Require(ctx context.Context, userID, termID string, allowed ...string) (*model.TermMembership, error)
	ListMembers(ctx context.Context, termID string) ([]dto.MemberResponse, error)
	UpdateRole(ctx context.Context, termID, callerID string, req *dto.UpdateMemberRoleRequest) (*dto.MemberResponse, error)
}

type membershipService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewMembershipService creates a MembershipService.
func NewMembershipService(repo *repository.Repository, logger *zap.Logger) MembershipService {
	return &membershipService{repo: repo, logger: logger}
}

func (s *membershipService) Resolve(ctx context.Context, userID, termID string) (*model.TermMembership, error) {
	m, err := s.repo.Membership.Get(ctx, userID, termID)
	if err != nil {
		if pkgerrors.IsNotFound(err) {
			return nil, ErrNotMember
		}
		s.logger.Error("resolve membership failed",
			zap.String("user_id", userID), zap.String("term_id", termID), zap.Error(err))
		return nil, err
	}
	return m, nil
}

func (s *membershipService) Require(ctx context.Context, userID, termID string, allowed ...string) (*model.TermMembership, error) {
	m, err := s.Resolve(ctx, userID, termID)
	if err != nil {
		return nil, err
	}
	if !m.HasRole(allowed...) {
		return nil, ErrForbidden
	}
	return m, nil
}

func (s *membershipService) ListMembers(ctx context.Context, termID string) ([]dto.MemberResponse, error) {
	ms, err := s.repo.Membership.ListByTerm(ctx, termID)
	if err != nil {
		s.logger.Error("list members failed", zap.String("term_id", termID), zap.Error(err))
		return nil, err
	}

	result := make([]dto.MemberResponse, 0, len(ms))
	for i := range ms {
		result = append(result, toMemberResponse(&ms[i]))
	}
	return result, nil
}

func (s *membershipService) UpdateRole(ctx context.Context, termID, callerID string, req *dto.UpdateMemberRoleRequest) (*dto.MemberResponse, error) {
	if req.UserID == callerID && req.Role != model.RoleAdmin {
		return nil, ErrSelfDemotion
	}

	if err := s.repo.Membership.UpdateRole(ctx, req.UserID, termID, req.Role); err != nil {
		if pkgerrors.IsNotFound(err) {
			return nil, ErrMembershipNotFound
		}
		s.logger.Error("update member role failed",
			zap.String("term_id", termID), zap.String("user_id", req.UserID), zap.Error(err))
		return nil, err
	}

	m, err := s.repo.Membership.Get(ctx, req.UserID, termID)
	if err != nil {
		return nil, err
	}
	user, err := s.repo.User.GetByID(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	m.User = user

	resp := toMemberResponse(m)
	return &resp, nil
}

func toMemberResponse(m *model.TermMembership) dto.MemberResponse {
	resp := dto.MemberResponse{
		UserID:   m.UserID,
		Role:     m.Role,
		JoinedAt: m.JoinedAt,
	}
	if m.User != nil {
		resp.Name = m.User.Name
		resp.Email = m.User.Email
	}
	return resp
}
