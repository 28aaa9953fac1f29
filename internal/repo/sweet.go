package repo

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/sweetshop/backend/internal/models"
)

type SweetFilter struct {
	Name     string
	Category string
	MinPrice *float64
	MaxPrice *float64
}

func (r *GormStore) CreateSweet(ctx context.Context, s *models.Sweet) error {
	tx := r.DB.WithContext(ctx).Where("name = ?", s.Name).FirstOrCreate(s)
	if tx.Error != nil {
		if errors.Is(tx.Error, gorm.ErrDuplicatedKey) {
			return ErrDuplicateSweet
		}
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return ErrDuplicateSweet
	}
	return nil
}

func (r *GormStore) FindSweetByID(ctx context.Context, id uint) (*models.Sweet, error) {
	var sweet models.Sweet
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&sweet).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &sweet, nil
}

func (r *GormStore) SaveSweet(ctx context.Context, s *models.Sweet) error {
	return r.DB.WithContext(ctx).Save(s).Error
}

func (r *GormStore) DeleteSweet(ctx context.Context, id uint) error {
	res := r.DB.WithContext(ctx).Delete(&models.Sweet{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GormStore) ListSweets(ctx context.Context) ([]models.Sweet, error) {
	var items []models.Sweet
	if err := r.DB.WithContext(ctx).Order("id ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *GormStore) SearchSweets(ctx context.Context, f SweetFilter) ([]models.Sweet, error) {
	q := r.DB.WithContext(ctx).Model(&models.Sweet{})
	if f.Name != "" {
		q = q.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(f.Name)+"%")
	}
	if f.Category != "" {
		q = q.Where("LOWER(category) LIKE ?", "%"+strings.ToLower(f.Category)+"%")
	}
	if f.MinPrice != nil {
		q = q.Where("price >= ?", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		q = q.Where("price <= ?", *f.MaxPrice)
	}

	var items []models.Sweet
	if err := q.Order("id ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// PurchaseSweet decrements quantity by one only if it is still positive at
// the moment of the write. Two concurrent purchases of the last item race on
// the same conditional UPDATE, so exactly one of them wins. The RETURNING
// clause hands back the row exactly as this write left it, so the caller sees
// its own decrement rather than a later one.
func (r *GormStore) PurchaseSweet(ctx context.Context, id uint) (*models.Sweet, error) {
	var sweet models.Sweet
	res := r.DB.WithContext(ctx).Model(&sweet).
		Clauses(clause.Returning{}).
		Where("id = ? AND quantity > 0", id).
		Update("quantity", gorm.Expr("quantity - 1"))
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		if _, err := r.FindSweetByID(ctx, id); err != nil {
			return nil, err
		}
		return nil, ErrOutOfStock
	}
	return &sweet, nil
}

func (r *GormStore) RestockSweet(ctx context.Context, id uint, amount int64) (*models.Sweet, error) {
	var sweet models.Sweet
	res := r.DB.WithContext(ctx).Model(&sweet).
		Clauses(clause.Returning{}).
		Where("id = ?", id).
		Update("quantity", gorm.Expr("quantity + ?", amount))
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return &sweet, nil
}
