package service

import (
	"context"

	"github.com/sweetshop/backend/internal/logging"
	"github.com/sweetshop/backend/internal/models"
	"github.com/sweetshop/backend/internal/repo"
)

type SweetStore interface {
	CreateSweet(ctx context.Context, s *models.Sweet) error
	FindSweetByID(ctx context.Context, id uint) (*models.Sweet, error)
	SaveSweet(ctx context.Context, s *models.Sweet) error
	DeleteSweet(ctx context.Context, id uint) error
	ListSweets(ctx context.Context) ([]models.Sweet, error)
	SearchSweets(ctx context.Context, f repo.SweetFilter) ([]models.Sweet, error)
	PurchaseSweet(ctx context.Context, id uint) (*models.Sweet, error)
	RestockSweet(ctx context.Context, id uint, amount int64) (*models.Sweet, error)
}

type InventoryService struct {
	Sweets SweetStore
}

// UpdateSweet carries the fields of a partial update. A nil pointer means
// the field was absent from the request.
type UpdateSweet struct {
	Name     *string
	Category *string
	Price    *float64
	Quantity *int64
}

// Create requires every field. Quantity arrives as a pointer so an absent
// field is not mistaken for an explicit zero, which is a valid stock level.
func (s *InventoryService) Create(ctx context.Context, name, category string, price float64, quantity *int64) (*models.Sweet, error) {
	l := logging.FromContext(ctx).With("svc", "inventory.create")

	if name == "" || category == "" || price == 0 || quantity == nil {
		return nil, invalid("please provide all required fields: name, category, price, quantity")
	}
	if price < 0 {
		return nil, invalid("price must be a positive number")
	}
	if *quantity < 0 {
		return nil, invalid("quantity cannot be negative")
	}

	sweet := models.Sweet{
		Name:     name,
		Category: category,
		Price:    price,
		Quantity: *quantity,
	}
	if err := s.Sweets.CreateSweet(ctx, &sweet); err != nil {
		l.Warn("create failed", "name", name, "error", err)
		return nil, err
	}

	l.Info("sweet created", "sweet_id", sweet.ID, "name", sweet.Name)
	return &sweet, nil
}

// Update applies only the supplied fields. A supplied zero price, zero
// quantity or empty string counts as "not supplied" and is skipped, which
// keeps PUT with a partial body from wiping the other fields.
func (s *InventoryService) Update(ctx context.Context, id uint, req UpdateSweet) (*models.Sweet, error) {
	l := logging.FromContext(ctx).With("svc", "inventory.update", "sweet_id", id)

	sweet, err := s.Sweets.FindSweetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil && *req.Name != "" {
		sweet.Name = *req.Name
	}
	if req.Category != nil && *req.Category != "" {
		sweet.Category = *req.Category
	}
	if req.Price != nil && *req.Price != 0 {
		sweet.Price = *req.Price
	}
	if req.Quantity != nil && *req.Quantity != 0 {
		sweet.Quantity = *req.Quantity
	}

	if sweet.Price <= 0 {
		return nil, invalid("price must be a positive number")
	}
	if sweet.Quantity < 0 {
		return nil, invalid("quantity cannot be negative")
	}

	if err := s.Sweets.SaveSweet(ctx, sweet); err != nil {
		l.Error("update failed", "error", err)
		return nil, err
	}

	l.Info("sweet updated")
	return sweet, nil
}

func (s *InventoryService) Delete(ctx context.Context, id uint) error {
	l := logging.FromContext(ctx).With("svc", "inventory.delete", "sweet_id", id)

	if err := s.Sweets.DeleteSweet(ctx, id); err != nil {
		return err
	}

	l.Info("sweet deleted")
	return nil
}

func (s *InventoryService) Purchase(ctx context.Context, id uint) (*models.Sweet, error) {
	l := logging.FromContext(ctx).With("svc", "inventory.purchase", "sweet_id", id)

	sweet, err := s.Sweets.PurchaseSweet(ctx, id)
	if err != nil {
		l.Warn("purchase failed", "error", err)
		return nil, err
	}

	l.Info("sweet purchased", "quantity_left", sweet.Quantity)
	return sweet, nil
}

func (s *InventoryService) Restock(ctx context.Context, id uint, amount int64) (*models.Sweet, error) {
	l := logging.FromContext(ctx).With("svc", "inventory.restock", "sweet_id", id)

	if amount <= 0 {
		return nil, invalid("quantity must be a positive number")
	}

	sweet, err := s.Sweets.RestockSweet(ctx, id, amount)
	if err != nil {
		return nil, err
	}

	l.Info("sweet restocked", "amount", amount, "quantity", sweet.Quantity)
	return sweet, nil
}

func (s *InventoryService) List(ctx context.Context) ([]models.Sweet, error) {
	return s.Sweets.ListSweets(ctx)
}

func (s *InventoryService) Search(ctx context.Context, f repo.SweetFilter) ([]models.Sweet, error) {
	return s.Sweets.SearchSweets(ctx, f)
}
