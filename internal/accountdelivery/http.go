// Package accountdelivery manages delivery layer of accounts.
package accountdelivery

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/go-petr/pet-ledger/internal/middleware"
	"github.com/go-petr/pet-ledger/pkg/errorspkg"
	"github.com/go-petr/pet-ledger/pkg/moneypkg"
	"github.com/go-petr/pet-ledger/pkg/web"
)

// Service provides service layer interface needed by account delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package accountdelivery
type Service interface {
	Get(ctx context.Context, userID string) (domain.Account, error)
	TopUp(ctx context.Context, userID string, amount int64) (domain.Account, error)
	Deactivate(ctx context.Context, accountNumber string) (domain.Account, error)
}

// Handler facilitates account delivery layer logic.
type Handler struct {
	service Service
}

// NewHandler returns account handler.
func NewHandler(as Service) *Handler {
	return &Handler{service: as}
}

// View is the account as shown to API clients. Balance is a decimal string.
type View struct {
	AccountNumber string    `json:"account_number"`
	Balance       string    `json:"balance"`
	Currency      string    `json:"currency"`
	IsActive      bool      `json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
}

// NewView returns the client view of the account.
func NewView(a domain.Account) View {
	return View{
		AccountNumber: a.AccountNumber,
		Balance:       moneypkg.Format(a.Balance),
		Currency:      a.Currency,
		IsActive:      a.IsActive,
		CreatedAt:     a.CreatedAt,
	}
}

type data struct {
	Account View `json:"account"`
}

func respondError(gctx *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrAccountNotFound):
		gctx.JSON(http.StatusNotFound, web.Error(err))
	case errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrInvalidAccountNumber),
		errors.Is(err, domain.ErrCurrencyMismatch):
		gctx.JSON(http.StatusBadRequest, web.Error(err))
	case errors.Is(err, domain.ErrBalanceOverflow):
		gctx.JSON(http.StatusUnprocessableEntity, web.Error(err))
	case errors.Is(err, errorspkg.ErrUnavailable):
		gctx.JSON(http.StatusServiceUnavailable, web.Error(err))
	default:
		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))
	}
}

// Get handles http request to get the account of the authenticated user.
func (h *Handler) Get(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	payload := middleware.Payload(gctx)

	acc, err := h.service.Get(ctx, payload.UserID)
	if err != nil {
		respondError(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, web.Response{Data: data{NewView(acc)}})
}

type topUpRequest struct {
	Amount   json.Number `json:"amount" binding:"required"`
	Currency string      `json:"currency" binding:"omitempty,currency"`
}

// TopUp handles http request to credit the account of the authenticated user.
func (h *Handler) TopUp(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req topUpRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Response{Error: web.BindingErrorMsg(err)})

		return
	}

	amount, err := moneypkg.ToMinor(req.Amount.String())
	if err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Error(err))

		return
	}

	payload := middleware.Payload(gctx)

	if req.Currency != "" {
		acc, err := h.service.Get(ctx, payload.UserID)
		if err != nil {
			respondError(gctx, err)
			return
		}

		if acc.Currency != req.Currency {
			gctx.JSON(http.StatusBadRequest, web.Error(domain.ErrCurrencyMismatch))
			return
		}
	}

	acc, err := h.service.TopUp(ctx, payload.UserID, amount)
	if err != nil {
		respondError(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, web.Response{Data: data{NewView(acc)}})
}

type deactivateRequest struct {
	AccountNumber string `uri:"number" binding:"required,accountnumber"`
}

// Deactivate handles admin http request to deactivate an account.
func (h *Handler) Deactivate(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req deactivateRequest
	if err := gctx.ShouldBindUri(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Response{Error: web.BindingErrorMsg(err)})

		return
	}

	acc, err := h.service.Deactivate(ctx, req.AccountNumber)
	if err != nil {
		respondError(gctx, err)
		return
	}

	l.Info().Str("account_number", acc.AccountNumber).Str("admin_id", middleware.Payload(gctx).UserID).Msg("account deactivated by admin")

	gctx.JSON(http.StatusOK, web.Response{Data: data{NewView(acc)}})
}
