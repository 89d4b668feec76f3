package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/simonbalanoff/SigEpRush-API/config"
	"github.com/simonbalanoff/SigEpRush-API/internal/model"
	"github.com/simonbalanoff/SigEpRush-API/internal/repository"
	"github.com/simonbalanoff/SigEpRush-API/pkg/database"
	"github.com/simonbalanoff/SigEpRush-API/pkg/jwt"
	"github.com/simonbalanoff/SigEpRush-API/pkg/storage"
)

// ── Mock token blacklist ──

type mockBlacklist struct {
	mu      sync.Mutex
	revoked map[string]time.Duration
}

func newMockBlacklist() *mockBlacklist {
	return &mockBlacklist{revoked: make(map[string]time.Duration)}
}

func (m *mockBlacklist) BlacklistToken(_ context.Context, jti string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.revoked[jti] = ttl
	return nil
}

func (m *mockBlacklist) IsBlacklisted(_ context.Context, jti string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.revoked[jti]
	return ok, nil
}

// ── Mock object store ──

type mockStore struct {
	mu      sync.Mutex
	deleted []string
	done    chan string
}

func newMockStore() *mockStore {
	return &mockStore{done: make(chan string, 8)}
}

func (m *mockStore) Presign(_ context.Context, contentType, prefix string, maxBytes int64) (*storage.PresignedUpload, error) {
	if !strings.HasPrefix(contentType, "image/") {
		return nil, storage.ErrInvalidContentType
	}
	key := prefix + "/test-object"
	return &storage.PresignedUpload{
		Key:       key,
		UploadURL: "https://bucket.example.com",
		Fields: map[string]string{
			"key":          key,
			"Content-Type": contentType,
			"max-bytes":    fmt.Sprint(maxBytes),
		},
		PublicURL: m.PublicURL(key),
		ExpiresIn: 300,
	}, nil
}

func (m *mockStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	m.deleted = append(m.deleted, key)
	m.mu.Unlock()
	m.done <- key
	return nil
}

func (m *mockStore) PublicURL(key string) string {
	return "https://cdn.example.com/" + key
}

// ── Fixtures ──

type testEnv struct {
	db        *gorm.DB
	repo      *repository.Repository
	svc       *Service
	cfg       *config.Config
	jwtMgr    *jwt.Manager
	blacklist *mockBlacklist
	store     *mockStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:svc_%s?mode=memory&cache=shared", name)), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := db.AutoMigrate(database.Models()...); err != nil {
		t.Fatalf("AutoMigrate: %v", err)
	}

	cfg := &config.Config{
		Auth: config.AuthConfig{
			JWTSecret:       "test-secret-key-for-unit-testing",
			AccessTokenTTL:  15 * time.Minute,
			RefreshTokenTTL: time.Hour,
		},
		Storage: config.StorageConfig{
			KeyPrefix:      "pnm",
			MaxUploadBytes: 5 << 20,
		},
	}

	repo := repository.NewRepository(db)
	jwtMgr := jwt.NewManager(&cfg.Auth)
	blacklist := newMockBlacklist()
	store := newMockStore()

	return &testEnv{
		db:        db,
		repo:      repo,
		svc:       NewService(cfg, repo, jwtMgr, blacklist, store, zap.NewNop()),
		cfg:       cfg,
		jwtMgr:    jwtMgr,
		blacklist: blacklist,
		store:     store,
	}
}

func (e *testEnv) createUser(t *testing.T, name, role string) *model.User {
	t.Helper()
	hash, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	u := &model.User{
		Name:         name,
		Email:        strings.ToLower(name) + "@example.com",
		PasswordHash: string(hash),
		Role:         role,
		IsActive:     true,
	}
	if err := e.repo.User.Create(context.Background(), u); err != nil {
		t.Fatalf("create user %s: %v", name, err)
	}
	return u
}

// addMember inserts a membership directly, bypassing the invite flow.
func (e *testEnv) addMember(t *testing.T, userID, termID, role string) {
	t.Helper()
	err := e.repo.Membership.Create(context.Background(), &model.TermMembership{
		UserID: userID,
		TermID: termID,
		Role:   role,
	})
	if err != nil {
		t.Fatalf("add member: %v", err)
	}
}

func strPtr(s string) *string { return &s }
func intPtr(n int) *int       { return &n }
