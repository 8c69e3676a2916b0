package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/reviveshine/lib2usexpress/internal/apperrors"
	"github.com/reviveshine/lib2usexpress/internal/handlers/render"
	"github.com/reviveshine/lib2usexpress/internal/logger"
	"github.com/reviveshine/lib2usexpress/internal/models"
	"github.com/reviveshine/lib2usexpress/internal/repository"
	"github.com/reviveshine/lib2usexpress/internal/service/product"
)

const defaultPageSize = 20

type productService interface {
	// Create product owned by the seller
	// Buyers get apperrors.ErrForbidden, unverified sellers apperrors.ErrSellerNotVerified
	Create(ctx context.Context, seller models.User, params product.CreateParams) (models.Product, error)
	Get(ctx context.Context, id uuid.UUID) (models.Product, error)
	List(ctx context.Context, opts repository.ListProductsOpts) ([]models.Product, error)

	// Delete is allowed for the owning seller and admins only
	Delete(ctx context.Context, actor models.User, id uuid.UUID) error
}

type productResponse struct {
	ID          uuid.UUID       `json:"id"`
	SellerID    uuid.UUID       `json:"sellerId"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	PriceUSD    decimal.Decimal `json:"priceUsd"`
	WeightKg    decimal.Decimal `json:"weightKg"`
	CreatedAt   time.Time       `json:"createdAt"`
}

func productToResponse(p models.Product) productResponse {
	return productResponse{
		ID:          p.ID,
		SellerID:    p.SellerID,
		Name:        p.Name,
		Description: p.Description,
		Category:    p.Category,
		PriceUSD:    p.PriceUSD,
		WeightKg:    p.WeightKg,
		CreatedAt:   p.CreatedAt,
	}
}

func handleCreateProduct(svc productService, l logger.Logger) http.Handler {
	type request struct {
		Name        string          `json:"name" validate:"required,min=1,max=200"`
		Description string          `json:"description" validate:"max=5000"`
		Category    string          `json:"category" validate:"required,min=1,max=100"`
		PriceUSD    decimal.Decimal `json:"priceUsd" validate:"required"`
		WeightKg    decimal.Decimal `json:"weightKg" validate:"required"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := UserFromContext(r.Context())
		if !ok {
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		if data.PriceUSD.IsNegative() || data.WeightKg.IsNegative() {
			render.ServiceError(w, "Price and weight must not be negative", http.StatusBadRequest)
			return
		}

		created, err := svc.Create(r.Context(), user, product.CreateParams{
			Name:        data.Name,
			Description: data.Description,
			Category:    data.Category,
			PriceUSD:    data.PriceUSD,
			WeightKg:    data.WeightKg,
		})
		if err != nil {
			switch {
			case errors.Is(err, apperrors.ErrForbidden):
				render.ServiceError(w, "Only sellers may list products", http.StatusForbidden)
			case errors.Is(err, apperrors.ErrSellerNotVerified):
				render.ServiceError(w, "Seller is not verified", http.StatusForbidden)
			default:
				l.Error("failed to create product", "error", err, "userID", user.ID)
				render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			}
			return
		}

		render.JSONWithStatus(w, productToResponse(created), http.StatusCreated)
	})
}

func handleGetProduct(svc productService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(r.PathValue("id"))
		if err != nil {
			render.ServiceError(w, "Invalid product id", http.StatusBadRequest)
			return
		}

		p, err := svc.Get(r.Context(), id)
		if err != nil {
			switch {
			case errors.Is(err, apperrors.ErrProductNotFound):
				render.ServiceError(w, "Product not found", http.StatusNotFound)
			default:
				l.Error("failed to get product", "error", err, "productID", id)
				render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			}
			return
		}

		render.JSON(w, productToResponse(p))
	})
}

func handleListProducts(svc productService, l logger.Logger) http.Handler {
	type response struct {
		Products []productResponse `json:"products"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		opts := repository.ListProductsOpts{Limit: defaultPageSize}

		if s := r.URL.Query().Get("seller"); s != "" {
			sellerID, err := uuid.Parse(s)
			if err != nil {
				render.ServiceError(w, "Invalid seller id", http.StatusBadRequest)
				return
			}
			opts.SellerID = &sellerID
		}
		if s := r.URL.Query().Get("limit"); s != "" {
			limit, err := strconv.Atoi(s)
			if err != nil || limit < 1 || limit > 100 {
				render.ServiceError(w, "Invalid limit", http.StatusBadRequest)
				return
			}
			opts.Limit = limit
		}
		if s := r.URL.Query().Get("page"); s != "" {
			page, err := strconv.Atoi(s)
			if err != nil || page < 1 {
				render.ServiceError(w, "Invalid page", http.StatusBadRequest)
				return
			}
			opts.Offset = (page - 1) * opts.Limit
		}

		products, err := svc.List(r.Context(), opts)
		if err != nil {
			l.Error("failed to list products", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		res := response{Products: make([]productResponse, 0, len(products))}
		for _, p := range products {
			res.Products = append(res.Products, productToResponse(p))
		}

		render.JSON(w, res)
	})
}

func handleDeleteProduct(svc productService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := UserFromContext(r.Context())
		if !ok {
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		id, err := uuid.Parse(r.PathValue("id"))
		if err != nil {
			render.ServiceError(w, "Invalid product id", http.StatusBadRequest)
			return
		}

		err = svc.Delete(r.Context(), user, id)
		if err != nil {
			switch {
			case errors.Is(err, apperrors.ErrProductNotFound):
				render.ServiceError(w, "Product not found", http.StatusNotFound)
			case errors.Is(err, apperrors.ErrNotProductOwner):
				render.ServiceError(w, "Product belongs to a different seller", http.StatusForbidden)
			default:
				l.Error("failed to delete product", "error", err, "productID", id)
				render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			}
			return
		}

		w.WriteHeader(http.StatusNoContent)
	})
}
