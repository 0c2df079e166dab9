// Package transferdelivery manages delivery layer of transfers.
package transferdelivery

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

// Service provides service layer interface needed by transfer delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package transferdelivery
type Service interface {
	Transfer(ctx context.Context, fromUserID, toAccountNumber string, amount int64, description string) (domain.Transfer, error)
	History(ctx context.Context, userID string) ([]domain.Transfer, error)
	Get(ctx context.Context, userID, reference string) (domain.Transfer, error)
}

// Handler facilitates transfer delivery layer logic.
type Handler struct {
	service Service
}

// NewHandler returns transfer handler.
func NewHandler(ts Service) *Handler {
	return &Handler{service: ts}
}

// View is the transfer as shown to API clients. Amount is a decimal string.
type View struct {
	Reference         string                `json:"reference"`
	FromAccountNumber string                `json:"from_account_number"`
	ToAccountNumber   string                `json:"to_account_number"`
	Amount            string                `json:"amount"`
	Currency          string                `json:"currency"`
	Status            domain.TransferStatus `json:"status"`
	Description       string                `json:"description,omitempty"`
	CreatedAt         time.Time             `json:"created_at"`
}

// NewView returns the client view of the transfer.
func NewView(t domain.Transfer) View {
	return View{
		Reference:         t.Reference,
		FromAccountNumber: t.FromAccountNumber,
		ToAccountNumber:   t.ToAccountNumber,
		Amount:            moneypkg.Format(t.Amount),
		Currency:          t.Currency,
		Status:            t.Status,
		Description:       t.Description,
		CreatedAt:         t.CreatedAt,
	}
}

type data struct {
	Transfer *View `json:"transfer,omitempty"`
}

type listData struct {
	Transfers []View `json:"transfers"`
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrReconciliationRequired):
		return http.StatusInternalServerError
	case errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrInvalidAccountNumber),
		errors.Is(err, domain.ErrDescriptionTooLong),
		errors.Is(err, domain.ErrSelfTransfer),
		errors.Is(err, domain.ErrCurrencyMismatch),
		errors.Is(err, domain.ErrInsufficientBalance),
		errors.Is(err, domain.ErrInsufficientFunds):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrTransferFailed),
		errors.Is(err, domain.ErrBalanceOverflow):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrSenderAccountNotFound),
		errors.Is(err, domain.ErrRecipientAccountNotFound),
		errors.Is(err, domain.ErrAccountNotFound),
		errors.Is(err, domain.ErrTransferNotFound):
		return http.StatusNotFound
	case errors.Is(err, errorspkg.ErrUnavailable):
		return http.StatusServiceUnavailable
	}

	return http.StatusInternalServerError
}

func respondError(gctx *gin.Context, err error) {
	status := statusFor(err)

	var terr *domain.TransferError
	if errors.As(err, &terr) {
		view := NewView(terr.Transfer)
		gctx.JSON(status, web.Response{Data: data{&view}, Error: err.Error()})

		return
	}

	if status == http.StatusInternalServerError {
		err = errorspkg.ErrInternal
	}

	gctx.JSON(status, web.Error(err))
}

type createRequest struct {
	ToAccountNumber string      `json:"to_account_number" binding:"required,accountnumber"`
	Amount          json.Number `json:"amount" binding:"required"`
	Description     string      `json:"description" binding:"max=255"`
}

// Create handles http request to transfer money from the authenticated user's account.
func (h *Handler) Create(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req createRequest
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

	t, err := h.service.Transfer(ctx, payload.UserID, req.ToAccountNumber, amount, req.Description)
	if err != nil {
		respondError(gctx, err)
		return
	}

	view := NewView(t)
	gctx.JSON(http.StatusCreated, web.Response{Data: data{&view}})
}

// List handles http request to list transfers of the authenticated user, newest first.
func (h *Handler) List(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	transfers, err := h.service.History(ctx, middleware.Payload(gctx).UserID)
	if err != nil {
		respondError(gctx, err)
		return
	}

	views := make([]View, 0, len(transfers))
	for _, t := range transfers {
		views = append(views, NewView(t))
	}

	gctx.JSON(http.StatusOK, web.Response{Data: listData{views}})
}

type getRequest struct {
	Reference string `uri:"reference" binding:"required,uuid"`
}

// Get handles http request to get a transfer of the authenticated user by reference.
func (h *Handler) Get(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	var req getRequest
	if err := gctx.ShouldBindUri(&req); err != nil {
		zerolog.Ctx(ctx).Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Response{Error: web.BindingErrorMsg(err)})

		return
	}

	t, err := h.service.Get(ctx, middleware.Payload(gctx).UserID, req.Reference)
	if err != nil {
		respondError(gctx, err)
		return
	}

	view := NewView(t)
	gctx.JSON(http.StatusOK, web.Response{Data: data{&view}})
}
