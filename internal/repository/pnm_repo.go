package repository

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/simonbalanoff/SigEpRush-API/internal/model"
)

// SortField is one ORDER BY term. Column must come from a whitelist.
type SortField struct {
	Column string
	Desc   bool
}

// PNMFilter narrows a term's candidate list.
type PNMFilter struct {
	Q         string
	Status    string
	ClassYear *int
	Tag       string
	Sort      []SortField
	Offset    int
	Limit     int
}

// PNMRepository is data access for candidates and their tags.
type PNMRepository interface {
	Create(ctx context.Context, pnm *model.PNM, tags []string) error
	GetByID(ctx context.Context, id string) (*model.PNM, error)
	List(ctx context.Context, termID string, f PNMFilter) ([]model.PNM, int64, error)
	Update(ctx context.Context, id string, fields map[string]interface{}) error
	ReplaceTags(ctx context.Context, id string, tags []string) error
	UpdateAggregate(ctx context.Context, id string, fields map[string]interface{}) error
	Delete(ctx context.Context, id string) error
}

type pnmRepo struct {
	db *gorm.DB
}

// NewPNMRepo creates a PNMRepository.
func NewPNMRepo(db *gorm.DB) PNMRepository {
	return &pnmRepo{db: db}
}

func (r *pnmRepo) Create(ctx context.Context, pnm *model.PNM, tags []string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(pnm).Error; err != nil {
			return err
		}
		rows, err := insertTags(tx, pnm.PNMID, tags)
		if err != nil {
			return err
		}
		pnm.Tags = rows
		return nil
	})
}

func (r *pnmRepo) GetByID(ctx context.Context, id string) (*model.PNM, error) {
	var pnm model.PNM
	err := r.db.WithContext(ctx).
		Preload("Tags", func(db *gorm.DB) *gorm.DB { return db.Order("tag ASC") }).
		Where("pnm_id = ?", id).
		First(&pnm).Error
	if err != nil {
		return nil, err
	}
	return &pnm, nil
}

// List returns one page of the term's candidates and the total match count.
// Every sort column orders NULLs last regardless of direction.
func (r *pnmRepo) List(ctx context.Context, termID string, f PNMFilter) ([]model.PNM, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&model.PNM{}).
		Where("term_id = ?", termID)

	if q := strings.TrimSpace(f.Q); q != "" {
		like := likePattern(q)
		query = query.Where(
			"LOWER(first_name) LIKE ? ESCAPE '\\' OR LOWER(last_name) LIKE ? ESCAPE '\\' "+
				"OR LOWER(COALESCE(preferred_name, '')) LIKE ? ESCAPE '\\' OR LOWER(COALESCE(major, '')) LIKE ? ESCAPE '\\'",
			like, like, like, like,
		)
	}
	if f.Status != "" {
		query = query.Where("status = ?", f.Status)
	}
	if f.ClassYear != nil {
		query = query.Where("class_year = ?", *f.ClassYear)
	}
	if f.Tag != "" {
		query = query.Where("pnm_id IN (?)",
			r.db.Model(&model.PNMTag{}).Select("pnm_id").Where("tag = ?", strings.ToLower(f.Tag)))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	for _, s := range f.Sort {
		dir := "ASC"
		if s.Desc {
			dir = "DESC"
		}
		query = query.Order(fmt.Sprintf("(%s IS NULL) ASC, %s %s", s.Column, s.Column, dir))
	}
	query = query.Order("pnm_id ASC")

	if f.Limit > 0 {
		query = query.Offset(f.Offset).Limit(f.Limit)
	}

	var pnms []model.PNM
	err := query.
		Preload("Tags", func(db *gorm.DB) *gorm.DB { return db.Order("tag ASC") }).
		Find(&pnms).Error
	return pnms, total, err
}

func (r *pnmRepo) Update(ctx context.Context, id string, fields map[string]interface{}) error {
	res := r.db.WithContext(ctx).
		Model(&model.PNM{}).
		Where("pnm_id = ?", id).
		Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ReplaceTags swaps the whole tag set.
func (r *pnmRepo) ReplaceTags(ctx context.Context, id string, tags []string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("pnm_id = ?", id).Delete(&model.PNMTag{}).Error; err != nil {
			return err
		}
		_, err := insertTags(tx, id, tags)
		return err
	})
}

// UpdateAggregate writes the aggregate columns. Callers pass all four so the block is replaced, never merged.
func (r *pnmRepo) UpdateAggregate(ctx context.Context, id string, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).
		Model(&model.PNM{}).
		Where("pnm_id = ?", id).
		Updates(fields).Error
}

// Delete removes the candidate with its tags, ratings and their reactions.
func (r *pnmRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ratingIDs := tx.Model(&model.Rating{}).Select("rating_id").Where("pnm_id = ?", id)
		if err := tx.Where("rating_id IN (?)", ratingIDs).Delete(&model.Reaction{}).Error; err != nil {
			return err
		}
		if err := tx.Where("pnm_id = ?", id).Delete(&model.Rating{}).Error; err != nil {
			return err
		}
		if err := tx.Where("pnm_id = ?", id).Delete(&model.PNMTag{}).Error; err != nil {
			return err
		}
		res := tx.Where("pnm_id = ?", id).Delete(&model.PNM{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func insertTags(tx *gorm.DB, pnmID string, tags []string) ([]model.PNMTag, error) {
	if len(tags) == 0 {
		return []model.PNMTag{}, nil
	}
	rows := make([]model.PNMTag, 0, len(tags))
	for _, t := range tags {
		rows = append(rows, model.PNMTag{PNMID: pnmID, Tag: t})
	}
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
