package payments

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/kwachanet/hotspot/internal/domain"
	"github.com/kwachanet/hotspot/internal/dto"
	"github.com/kwachanet/hotspot/internal/service/paymentservice"
	"github.com/kwachanet/hotspot/internal/service/voucherservice"
	"github.com/kwachanet/hotspot/pkg/utils"
)

type Service interface {
	Initiate(ctx context.Context, amount int64, phoneNumber, paymentMethod string, voucherID int, userID *int) (*domain.Payment, error)
	GetByID(ctx context.Context, id int) (*domain.Payment, error)
	GetByReference(ctx context.Context, reference string) (*domain.Payment, error)
	Cancel(ctx context.Context, id int) (*domain.Payment, error)
}

type VoucherService interface {
	GetByID(ctx context.Context, id int) (*domain.Voucher, error)
}

var validate = validator.New()

type PaymentHandler struct {
	paymentService Service
	voucherService VoucherService
}

func New(paymentService Service, voucherService VoucherService) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
		voucherService: voucherService,
	}
}

// Create godoc
//
//	@Summary		Initiate a payment
//	@Description	Create a pending payment for a voucher; settlement against the mobile-money provider runs asynchronously
//	@Tags			Payments
//	@Accept			json
//	@Produce		json
//	@Param			request	body		dto.CreatePaymentRequestDTO	true	"Payment request body"
//	@Success		201		{object}	dto.PaymentResponseDTO
//	@Failure		400		{object}	utils.Response	"Validation failure or amount mismatch"
//	@Failure		404		{object}	utils.Response	"Voucher not found"
//	@Failure		500		{object}	utils.Response	"Internal server error"
//	@Router			/api/payments [post]
func (h *PaymentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreatePaymentRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	payment, err := h.paymentService.Initiate(r.Context(), req.Amount, req.PhoneNumber, req.PaymentMethod, req.VoucherID, req.UserID)
	if err != nil {
		respondPaymentError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, toPaymentDTO(payment))
}

// Verify godoc
//
//	@Summary		Verify payment status
//	@Description	Poll the current status of a payment by id; includes voucher details once settled successfully
//	@Tags			Payments
//	@Produce		json
//	@Param			id	path		int	true	"Payment id"
//	@Success		200	{object}	dto.VerifyPaymentResponseDTO
//	@Failure		404	{object}	utils.Response	"Payment not found"
//	@Failure		500	{object}	utils.Response	"Internal server error"
//	@Router			/api/payments/{id}/verify [get]
func (h *PaymentHandler) Verify(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid payment id")
		return
	}

	payment, err := h.paymentService.GetByID(r.Context(), id)
	if err != nil {
		respondPaymentError(w, err)
		return
	}

	resp := dto.VerifyPaymentResponseDTO{Payment: toPaymentDTO(payment)}
	if payment.Status == domain.PaymentStatusSuccess {
		voucher, err := h.voucherService.GetByID(r.Context(), payment.VoucherID)
		if err == nil && voucher != nil {
			resp.Voucher = &dto.VoucherSummaryDTO{
				Code:      voucher.Code,
				Duration:  voucher.DurationHours,
				DataLimit: voucher.DataLimit,
				ExpiresAt: voucher.ExpiresAt,
			}
		}
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}

// GetByReference godoc
//
//	@Summary		Look up a payment by reference
//	@Tags			Payments
//	@Produce		json
//	@Param			reference	path		string	true	"Payment reference"
//	@Success		200			{object}	dto.PaymentResponseDTO
//	@Failure		404			{object}	utils.Response	"Payment not found"
//	@Failure		500			{object}	utils.Response	"Internal server error"
//	@Router			/api/payments/reference/{reference} [get]
func (h *PaymentHandler) GetByReference(w http.ResponseWriter, r *http.Request) {
	reference := chi.URLParam(r, "reference")
	if reference == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "Reference is required")
		return
	}

	payment, err := h.paymentService.GetByReference(r.Context(), reference)
	if err != nil {
		respondPaymentError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, toPaymentDTO(payment))
}

// Cancel godoc
//
//	@Summary		Cancel a pending payment
//	@Description	Only payments still pending can be cancelled; settled payments are immutable
//	@Tags			Payments
//	@Produce		json
//	@Param			id	path		int	true	"Payment id"
//	@Success		200	{object}	dto.PaymentResponseDTO
//	@Failure		404	{object}	utils.Response	"Payment not found"
//	@Failure		409	{object}	utils.Response	"Payment not pending"
//	@Failure		500	{object}	utils.Response	"Internal server error"
//	@Router			/api/payments/{id}/cancel [post]
func (h *PaymentHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid payment id")
		return
	}

	payment, err := h.paymentService.Cancel(r.Context(), id)
	if err != nil {
		respondPaymentError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, toPaymentDTO(payment))
}

func toPaymentDTO(p *domain.Payment) dto.PaymentResponseDTO {
	return dto.PaymentResponseDTO{
		ID:            p.ID,
		Reference:     p.Reference,
		Status:        p.Status,
		Amount:        p.Amount,
		PhoneNumber:   p.PhoneNumber,
		PaymentMethod: p.PaymentMethod,
		VoucherID:     p.VoucherID,
		TransactionID: p.TransactionID,
		FailureReason: p.FailureReason,
		ErrorCode:     p.ErrorCode,
		CreatedAt:     p.CreatedAt,
		CompletedAt:   p.CompletedAt,
		CancelledAt:   p.CancelledAt,
	}
}

func respondPaymentError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, paymentservice.ErrPaymentNotFound),
		errors.Is(err, voucherservice.ErrVoucherNotFound):
		utils.RespondWithError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, paymentservice.ErrAmountMismatch),
		errors.Is(err, paymentservice.ErrUnknownMethod),
		errors.Is(err, voucherservice.ErrVoucherAlreadyUsed):
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, paymentservice.ErrInvalidPaymentState):
		utils.RespondWithError(w, http.StatusConflict, err.Error())
	default:
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}
