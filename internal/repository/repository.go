package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repository groups every repository behind one handle.
type Repository struct {
	db *gorm.DB

	User       UserRepository
	Term       TermRepository
	Membership MembershipRepository
	PNM        PNMRepository
	Rating     RatingRepository
	Reaction   ReactionRepository
}

// NewRepository creates the Repository aggregate.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db:         db,
		User:       NewUserRepo(db),
		Term:       NewTermRepo(db),
		Membership: NewMembershipRepo(db),
		PNM:        NewPNMRepo(db),
		Rating:     NewRatingRepo(db),
		Reaction:   NewReactionRepo(db),
	}
}

// WithTx returns a Repository bound to tx.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return NewRepository(tx)
}

// BeginTx starts a transaction the caller must commit or roll back.
func (r *Repository) BeginTx(ctx context.Context) (*gorm.DB, error) {
	tx := r.db.WithContext(ctx).Begin()
	return tx, tx.Error
}

// Transaction runs fn inside one database transaction. Any error from fn rolls it back.
// Inside fn only the tx-bound Repository may be used.
func (r *Repository) Transaction(ctx context.Context, fn func(tx *Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(r.WithTx(tx))
	})
}
