package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/simonbalanoff/SigEpRush-API/config"
	"github.com/simonbalanoff/SigEpRush-API/internal/repository"
	"github.com/simonbalanoff/SigEpRush-API/pkg/jwt"
	"github.com/simonbalanoff/SigEpRush-API/pkg/storage"
)

// TokenBlacklist revokes tokens by jti. *redis.Client satisfies it, including a nil one.
type TokenBlacklist interface {
	BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error
	IsBlacklisted(ctx context.Context, jti string) (bool, error)
}

// ObjectStore is the photo bucket. *storage.S3Store satisfies it.
type ObjectStore interface {
	Presign(ctx context.Context, contentType, prefix string, maxBytes int64) (*storage.PresignedUpload, error)
	Delete(ctx context.Context, key string) error
	PublicURL(key string) string
}

// Service groups every business service.
type Service struct {
	Auth       AuthService
	User       UserService
	Membership MembershipService
	Term       TermService
	PNM        PNMService
	Aggregate  AggregateService
	Rating     RatingService
	Reaction   ReactionService
	Upload     UploadService
	Export     ExportService
}

// NewService wires the services together. store may be nil when no bucket is configured.
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	blacklist TokenBlacklist,
	store ObjectStore,
	logger *zap.Logger,
) *Service {
	membership := NewMembershipService(repo, logger)
	aggregate := NewAggregateService(repo, logger)

	return &Service{
		Auth:       NewAuthService(cfg, repo, jwtMgr, blacklist, logger),
		User:       NewUserService(repo, logger),
		Membership: membership,
		Term:       NewTermService(repo, logger),
		PNM:        NewPNMService(repo, membership, store, logger),
		Aggregate:  aggregate,
		Rating:     NewRatingService(repo, membership, aggregate, logger),
		Reaction:   NewReactionService(repo, membership, logger),
		Upload:     NewUploadService(&cfg.Storage, store),
		Export:     NewExportService(repo, logger),
	}
}
