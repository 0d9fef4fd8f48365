package vouchers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/kwachanet/hotspot/internal/domain"
	"github.com/kwachanet/hotspot/internal/dto"
	"github.com/kwachanet/hotspot/internal/service/voucherservice"
	"github.com/kwachanet/hotspot/pkg/utils"
)

type Service interface {
	Validate(ctx context.Context, code string) (*domain.Voucher, error)
	Redeem(ctx context.Context, code string, userID *int) (*domain.Session, *domain.Voucher, error)
}

var validate = validator.New()

type VoucherHandler struct {
	voucherService Service
}

func New(voucherService Service) *VoucherHandler {
	return &VoucherHandler{
		voucherService: voucherService,
	}
}

// Validate godoc
//
//	@Summary		Validate a voucher code
//	@Description	Check that a voucher code exists, is active, unused and not expired. Does not consume it.
//	@Tags			Vouchers
//	@Accept			json
//	@Produce		json
//	@Param			request	body		dto.ValidateVoucherRequestDTO	true	"Voucher code"
//	@Success		200		{object}	dto.VoucherSummaryDTO
//	@Failure		400		{object}	utils.Response	"Voucher unusable"
//	@Failure		404		{object}	utils.Response	"Voucher not found"
//	@Failure		500		{object}	utils.Response	"Internal server error"
//	@Router			/api/vouchers/validate [post]
func (h *VoucherHandler) Validate(w http.ResponseWriter, r *http.Request) {
	var req dto.ValidateVoucherRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	voucher, err := h.voucherService.Validate(r.Context(), req.Code)
	if err != nil {
		respondVoucherError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, toSummary(voucher))
}

// Redeem godoc
//
//	@Summary		Redeem a voucher
//	@Description	Consume a voucher and open an access session
//	@Tags			Vouchers
//	@Accept			json
//	@Produce		json
//	@Param			request	body		dto.RedeemVoucherRequestDTO	true	"Voucher code and optional user"
//	@Success		200		{object}	dto.RedeemResponseDTO
//	@Failure		400		{object}	utils.Response	"Voucher unusable"
//	@Failure		404		{object}	utils.Response	"Voucher not found"
//	@Failure		500		{object}	utils.Response	"Internal server error"
//	@Router			/api/vouchers/redeem [post]
func (h *VoucherHandler) Redeem(w http.ResponseWriter, r *http.Request) {
	var req dto.RedeemVoucherRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	session, voucher, err := h.voucherService.Redeem(r.Context(), req.Code, req.UserID)
	if err != nil {
		respondVoucherError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.RedeemResponseDTO{
		Session: dto.SessionDTO{
			ID:        session.ID,
			VoucherID: session.VoucherID,
			Duration:  session.DurationHours,
			DataLimit: session.DataLimit,
			StartTime: session.StartTime,
			EndTime:   session.EndTime,
			IsActive:  session.IsActive,
		},
		Voucher: toSummary(voucher),
	})
}

func toSummary(v *domain.Voucher) dto.VoucherSummaryDTO {
	return dto.VoucherSummaryDTO{
		Code:      v.Code,
		Duration:  v.DurationHours,
		DataLimit: v.DataLimit,
		ExpiresAt: v.ExpiresAt,
	}
}

func respondVoucherError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, voucherservice.ErrVoucherNotFound):
		utils.RespondWithError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, voucherservice.ErrVoucherAlreadyUsed),
		errors.Is(err, voucherservice.ErrVoucherInactive),
		errors.Is(err, voucherservice.ErrVoucherExpired):
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
	default:
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}
