package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/reviveshine/lib2usexpress/internal/apperrors"
	"github.com/reviveshine/lib2usexpress/internal/handlers/render"
	"github.com/reviveshine/lib2usexpress/internal/logger"
	"github.com/reviveshine/lib2usexpress/internal/models"
)

type shippingService interface {
	// Query every configured carrier and return quotes sorted by cost
	// Has to return apperrors.ErrNoShippingRates if no carrier answered
	GetRates(ctx context.Context, query models.ShippingQuery) ([]models.ShippingRate, error)
}

func handleShippingRates(svc shippingService, l logger.Logger) http.Handler {
	type request struct {
		Origin        string          `json:"origin" validate:"required,min=2,max=200"`
		Destination   string          `json:"destination" validate:"required,min=2,max=200"`
		WeightKg      decimal.Decimal `json:"weightKg" validate:"required"`
		DeclaredValue decimal.Decimal `json:"declaredValue"`
	}
	type rateResponse struct {
		Carrier       string          `json:"carrier"`
		Service       string          `json:"service"`
		CostUSD       decimal.Decimal `json:"costUsd"`
		EstimatedDays int             `json:"estimatedDays"`
		QuotedAt      time.Time       `json:"quotedAt"`
	}
	type response struct {
		Rates []rateResponse `json:"rates"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		if !data.WeightKg.IsPositive() {
			render.ServiceError(w, "Weight must be positive", http.StatusBadRequest)
			return
		}

		rates, err := svc.GetRates(r.Context(), models.ShippingQuery{
			Origin:        data.Origin,
			Destination:   data.Destination,
			WeightKg:      data.WeightKg,
			DeclaredValue: data.DeclaredValue,
		})
		if err != nil {
			switch {
			case errors.Is(err, apperrors.ErrNoShippingRates):
				render.ServiceError(w, "No shipping rates available", http.StatusBadGateway)
			default:
				l.Error("failed to get shipping rates", "error", err)
				render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			}
			return
		}

		res := response{Rates: make([]rateResponse, 0, len(rates))}
		for _, rate := range rates {
			res.Rates = append(res.Rates, rateResponse{
				Carrier:       rate.Carrier,
				Service:       rate.Service,
				CostUSD:       rate.CostUSD,
				EstimatedDays: rate.EstimatedDays,
				QuotedAt:      rate.QuotedAt,
			})
		}

		render.JSON(w, res)
	})
}
