package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/simonbalanoff/SigEpRush-API/internal/dto"
	"github.com/simonbalanoff/SigEpRush-API/internal/model"
	"github.com/simonbalanoff/SigEpRush-API/internal/repository"
	pkgerrors "github.com/simonbalanoff/SigEpRush-API/pkg/errors"
)

// ── Term errors ──

var (
	ErrTermNotFound       = errors.New("term not found")
	ErrTermCodeExists     = errors.New("term code already exists")
	ErrInviteCodeInUse    = errors.New("invite code already used by another term")
	ErrInviteExpiryPast   = errors.New("invite expiry must be in the future")
	ErrInvalidInviteCode  = errors.New("invalid invite code")
	ErrInviteExpired      = errors.New("invite code expired")
	ErrInviteLimitReached = errors.New("invite code use limit reached")
	ErrNoChanges          = errors.New("no changes")
)

// HashInviteCode is the stored form of an invite code: sha256 hex of the trimmed, lower-cased code.
func HashInviteCode(code string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(code))))
	return hex.EncodeToString(sum[:])
}

// TermService manages terms and the invite/join flow.
type TermService interface {
	Create(ctx context.Context, callerID string, req *dto.CreateTermRequest) (*dto.CreateTermResponse, error)
	Join(ctx context.Context, userID, code string) (*dto.JoinTermResponse, error)
	ListMine(ctx context.Context, userID string) ([]dto.MyTermResponse, error)
	ListAdmin(ctx context.Context, userID string) ([]dto.AdminTermResponse, error)
	Update(ctx context.Context, termID string, req *dto.UpdateTermRequest) (*dto.TermResponse, error)
	RotateInvite(ctx context.Context, termID string, req *dto.RotateInviteRequest) (*dto.InviteResponse, error)
}

type termService struct {
	repo   *repository.Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewTermService creates a TermService.
func NewTermService(repo *repository.Repository, logger *zap.Logger) TermService {
	return &termService{repo: repo, logger: logger, now: time.Now}
}

// ────────────────────── Create ──────────────────────

// Create stores the term and makes the caller its Admin in one transaction.
// The plaintext invite code is only echoed back in the response.
func (s *termService) Create(ctx context.Context, callerID string, req *dto.CreateTermRequest) (*dto.CreateTermResponse, error) {
	if req.ExpiresAt != nil && !req.ExpiresAt.After(s.now()) {
		return nil, ErrInviteExpiryPast
	}

	hash := HashInviteCode(req.InviteCode)
	if err := s.ensureInviteFree(ctx, hash, ""); err != nil {
		return nil, err
	}

	term := &model.Term{
		Name:            strings.TrimSpace(req.Name),
		Code:            strings.ToLower(strings.TrimSpace(req.Code)),
		IsActive:        true,
		CreatedBy:       callerID,
		InviteCodeHash:  &hash,
		InviteExpiresAt: req.ExpiresAt,
		InviteMaxUses:   req.MaxUses,
	}

	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		if err := tx.Term.Create(ctx, term); err != nil {
			return err
		}
		return tx.Membership.Create(ctx, &model.TermMembership{
			UserID: callerID,
			TermID: term.TermID,
			Role:   model.RoleAdmin,
		})
	})
	if err != nil {
		if pkgerrors.IsDuplicate(err) {
			return nil, s.duplicateCause(ctx, hash)
		}
		s.logger.Error("create term failed", zap.String("code", term.Code), zap.Error(err))
		return nil, err
	}

	return &dto.CreateTermResponse{
		Term: toTermResponse(term),
		Role: model.RoleAdmin,
		Invite: dto.InviteResponse{
			InviteCode: req.InviteCode,
			ExpiresAt:  term.InviteExpiresAt,
			MaxUses:    term.InviteMaxUses,
			Uses:       0,
		},
	}, nil
}

// ────────────────────── Join ──────────────────────

// Join admits the caller as a Member.
//
// An exhausted invite fails for everyone, members included. An existing member
// re-joining otherwise succeeds without consuming a use. For a new member the membership insert and the capped use increment commit together;
// if the cap is hit the insert is rolled back.
func (s *termService) Join(ctx context.Context, userID, code string) (*dto.JoinTermResponse, error) {
	term, err := s.repo.Term.GetByInviteHash(ctx, HashInviteCode(code))
	if err != nil {
		if pkgerrors.IsNotFound(err) {
			return nil, ErrInvalidInviteCode
		}
		s.logger.Error("lookup invite failed", zap.Error(err))
		return nil, err
	}

	if term.InviteExpired(s.now()) {
		return nil, ErrInviteExpired
	}
	if term.InviteExhausted() {
		return nil, ErrInviteLimitReached
	}

	if m, err := s.repo.Membership.Get(ctx, userID, term.TermID); err == nil {
		return &dto.JoinTermResponse{Term: toTermResponse(term), Role: m.Role, AlreadyMember: true}, nil
	} else if !pkgerrors.IsNotFound(err) {
		s.logger.Error("lookup membership failed", zap.Error(err))
		return nil, err
	}

	resp := &dto.JoinTermResponse{Term: toTermResponse(term), Role: model.RoleMember}
	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		created, err := tx.Membership.CreateIfAbsent(ctx, &model.TermMembership{
			UserID: userID,
			TermID: term.TermID,
			Role:   model.RoleMember,
		})
		if err != nil {
			return err
		}
		if !created {
			// a concurrent join by the same user won
			resp.AlreadyMember = true
			return nil
		}

		ok, err := tx.Term.IncrementInviteUses(ctx, term.TermID)
		if err != nil {
			return err
		}
		if !ok {
			return ErrInviteLimitReached
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrInviteLimitReached) {
			return nil, err
		}
		s.logger.Error("join term failed", zap.String("term_id", term.TermID), zap.Error(err))
		return nil, err
	}

	if resp.AlreadyMember {
		if m, err := s.repo.Membership.Get(ctx, userID, term.TermID); err == nil {
			resp.Role = m.Role
		}
	}
	return resp, nil
}

// ────────────────────── ListMine ──────────────────────

func (s *termService) ListMine(ctx context.Context, userID string) ([]dto.MyTermResponse, error) {
	ms, err := s.repo.Membership.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error("list memberships failed", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}
	return toMyTermResponses(ms), nil
}

// ────────────────────── ListAdmin ──────────────────────

func (s *termService) ListAdmin(ctx context.Context, userID string) ([]dto.AdminTermResponse, error) {
	ms, err := s.repo.Membership.ListByUser(ctx, userID, model.RoleAdmin)
	if err != nil {
		s.logger.Error("list admin terms failed", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}

	termIDs := make([]string, 0, len(ms))
	for _, m := range ms {
		termIDs = append(termIDs, m.TermID)
	}
	counts, err := s.repo.Membership.CountByTerms(ctx, termIDs)
	if err != nil {
		s.logger.Error("count members failed", zap.Error(err))
		return nil, err
	}

	result := make([]dto.AdminTermResponse, 0, len(ms))
	for _, m := range ms {
		if m.Term == nil {
			continue
		}
		t := m.Term
		result = append(result, dto.AdminTermResponse{
			TermResponse:    toTermResponse(t),
			MemberCount:     counts[t.TermID],
			HasInvite:       t.InviteCodeHash != nil,
			InviteUses:      t.InviteUses,
			InviteMaxUses:   t.InviteMaxUses,
			InviteExpiresAt: t.InviteExpiresAt,
		})
	}
	return result, nil
}

// ────────────────────── Update ──────────────────────

func (s *termService) Update(ctx context.Context, termID string, req *dto.UpdateTermRequest) (*dto.TermResponse, error) {
	fields := map[string]interface{}{}
	if req.Name != nil && strings.TrimSpace(*req.Name) != "" {
		fields["name"] = strings.TrimSpace(*req.Name)
	}
	if req.IsActive != nil {
		fields["is_active"] = *req.IsActive
	}
	if len(fields) == 0 {
		return nil, ErrNoChanges
	}

	if err := s.repo.Term.Update(ctx, termID, fields); err != nil {
		if pkgerrors.IsNotFound(err) {
			return nil, ErrTermNotFound
		}
		s.logger.Error("update term failed", zap.String("term_id", termID), zap.Error(err))
		return nil, err
	}

	term, err := s.repo.Term.GetByID(ctx, termID)
	if err != nil {
		return nil, err
	}
	resp := toTermResponse(term)
	return &resp, nil
}

// ────────────────────── RotateInvite ──────────────────────

func (s *termService) RotateInvite(ctx context.Context, termID string, req *dto.RotateInviteRequest) (*dto.InviteResponse, error) {
	if req.ExpiresAt != nil && !req.ExpiresAt.After(s.now()) {
		return nil, ErrInviteExpiryPast
	}

	hash := HashInviteCode(req.InviteCode)
	if err := s.ensureInviteFree(ctx, hash, termID); err != nil {
		return nil, err
	}

	err := s.repo.Term.Update(ctx, termID, map[string]interface{}{
		"invite_code_hash":  hash,
		"invite_expires_at": req.ExpiresAt,
		"invite_max_uses":   req.MaxUses,
		"invite_uses":       0,
	})
	if err != nil {
		if pkgerrors.IsNotFound(err) {
			return nil, ErrTermNotFound
		}
		if pkgerrors.IsDuplicate(err) {
			return nil, ErrInviteCodeInUse
		}
		s.logger.Error("rotate invite failed", zap.String("term_id", termID), zap.Error(err))
		return nil, err
	}

	return &dto.InviteResponse{
		InviteCode: req.InviteCode,
		ExpiresAt:  req.ExpiresAt,
		MaxUses:    req.MaxUses,
		Uses:       0,
	}, nil
}

// ensureInviteFree rejects a hash already held by a term other than ownerID.
func (s *termService) ensureInviteFree(ctx context.Context, hash, ownerID string) error {
	existing, err := s.repo.Term.GetByInviteHash(ctx, hash)
	if err == nil {
		if existing.TermID != ownerID {
			return ErrInviteCodeInUse
		}
		return nil
	}
	if !pkgerrors.IsNotFound(err) {
		s.logger.Error("lookup invite failed", zap.Error(err))
		return err
	}
	return nil
}

// duplicateCause tells which unique index rejected a term insert. Translated
// errors no longer carry the constraint name, so the invite hash is looked up
// again: a concurrent create may have claimed it after ensureInviteFree.
func (s *termService) duplicateCause(ctx context.Context, hash string) error {
	if _, err := s.repo.Term.GetByInviteHash(ctx, hash); err == nil {
		return ErrInviteCodeInUse
	}
	return ErrTermCodeExists
}

// ── mapping ──

func toTermResponse(t *model.Term) dto.TermResponse {
	return dto.TermResponse{
		TermID:    t.TermID,
		Name:      t.Name,
		Code:      t.Code,
		IsActive:  t.IsActive,
		CreatedBy: t.CreatedBy,
		CreatedAt: t.CreatedAt,
	}
}

func toMyTermResponses(ms []model.TermMembership) []dto.MyTermResponse {
	result := make([]dto.MyTermResponse, 0, len(ms))
	for _, m := range ms {
		if m.Term == nil {
			continue
		}
		result = append(result, dto.MyTermResponse{
			Term:     toTermResponse(m.Term),
			Role:     m.Role,
			JoinedAt: m.JoinedAt,
		})
	}
	return result
}
