package product

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/reviveshine/lib2usexpress/internal/apperrors"
	"github.com/reviveshine/lib2usexpress/internal/models"
	"github.com/reviveshine/lib2usexpress/internal/repository"
)

type CreateParams struct {
	Name        string
	Description string
	Category    string
	PriceUSD    decimal.Decimal
	WeightKg    decimal.Decimal
}

type ProductService struct {
	productRepo repository.ProductRepo
}

func NewService(productRepo repository.ProductRepo) *ProductService {
	return &ProductService{productRepo: productRepo}
}

// Create lists a product on behalf of the seller
// Only verified sellers may list, everyone else is rejected before any write
func (s *ProductService) Create(ctx context.Context, seller models.User, params CreateParams) (models.Product, error) {
	if seller.UserType != models.UserTypeSeller {
		return models.Product{}, apperrors.ErrForbidden
	}
	if !seller.Verified {
		return models.Product{}, apperrors.ErrSellerNotVerified
	}

	product, err := s.productRepo.Create(ctx, models.Product{
		ID:          uuid.New(),
		SellerID:    seller.ID,
		Name:        params.Name,
		Description: params.Description,
		Category:    params.Category,
		PriceUSD:    params.PriceUSD,
		WeightKg:    params.WeightKg,
	})
	if err != nil {
		return product, fmt.Errorf("can't create product. Err: %w", err)
	}

	return product, nil
}

func (s *ProductService) Get(ctx context.Context, id uuid.UUID) (models.Product, error) {
	return s.productRepo.GetByID(ctx, id)
}

func (s *ProductService) List(ctx context.Context, opts repository.ListProductsOpts) ([]models.Product, error) {
	return s.productRepo.List(ctx, opts)
}

// Delete removes the listing
// Owner may delete it's own product, admin may delete any
func (s *ProductService) Delete(ctx context.Context, actor models.User, id uuid.UUID) error {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if product.SellerID != actor.ID && actor.UserType != models.UserTypeAdmin {
		return apperrors.ErrNotProductOwner
	}

	return s.productRepo.Delete(ctx, id)
}
