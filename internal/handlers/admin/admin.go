package admin

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
	"github.com/kwachanet/hotspot/internal/service/adminservice"
	"github.com/kwachanet/hotspot/internal/service/paymentservice"
	"github.com/kwachanet/hotspot/internal/service/voucherservice"
	pkgauth "github.com/kwachanet/hotspot/pkg/auth"
	"github.com/kwachanet/hotspot/pkg/utils"
)

type Service interface {
	CreateUser(ctx context.Context, email, password, role string) (*domain.User, error)
	ListUsers(ctx context.Context) ([]domain.User, error)
	GetUser(ctx context.Context, id int) (*domain.User, error)
	UpdateUser(ctx context.Context, id int, patch adminservice.UserPatch) (*domain.User, error)
	DeleteUser(ctx context.Context, id, actorID int) error
	UpdateVoucher(ctx context.Context, id int, patch adminservice.VoucherPatch) (*domain.Voucher, error)
	DeleteVoucher(ctx context.Context, id int) error
	Dashboard(ctx context.Context) (*domain.Stats, error)
	Revenue(ctx context.Context, period string) ([]domain.RevenuePoint, error)
}

type VoucherService interface {
	Create(ctx context.Context, durationHours int, price int64, dataLimit string) (*domain.Voucher, error)
	List(ctx context.Context) ([]domain.Voucher, error)
}

type PaymentService interface {
	List(ctx context.Context, limit int) ([]domain.Payment, error)
	Correct(ctx context.Context, id int, newStatus string) (*domain.Payment, error)
}

const defaultPaymentListLimit = 200

var validate = validator.New()

type AdminHandler struct {
	adminService   Service
	voucherService VoucherService
	paymentService PaymentService
}

func New(adminService Service, voucherService VoucherService, paymentService PaymentService) *AdminHandler {
	return &AdminHandler{
		adminService:   adminService,
		voucherService: voucherService,
		paymentService: paymentService,
	}
}

// CreateUser godoc
//
//	@Summary	Create a user
//	@Tags		Admin
//	@Accept		json
//	@Produce	json
//	@Param		request	body		dto.CreateUserRequestDTO	true	"User"
//	@Security	BearerAuth
//	@Success	201	{object}	dto.UserResponseDTO
//	@Failure	400	{object}	utils.Response
//	@Failure	409	{object}	utils.Response
//	@Router		/api/admin/users [post]
func (h *AdminHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateUserRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.adminService.CreateUser(r.Context(), req.Email, req.Password, req.Role)
	if err != nil {
		respondAdminError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, toUserDTO(user))
}

// ListUsers godoc
//
//	@Summary	List users
//	@Tags		Admin
//	@Produce	json
//	@Security	BearerAuth
//	@Success	200	{array}	dto.UserResponseDTO
//	@Router		/api/admin/users [get]
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.adminService.ListUsers(r.Context())
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	resp := make([]dto.UserResponseDTO, 0, len(users))
	for i := range users {
		resp = append(resp, toUserDTO(&users[i]))
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}

// UpdateUser godoc
//
//	@Summary	Update a user
//	@Tags		Admin
//	@Accept		json
//	@Produce	json
//	@Param		id		path		int							true	"User id"
//	@Param		request	body		dto.UpdateUserRequestDTO	true	"Fields to change"
//	@Security	BearerAuth
//	@Success	200	{object}	dto.UserResponseDTO
//	@Failure	404	{object}	utils.Response
//	@Router		/api/admin/users/{id} [patch]
func (h *AdminHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid user id")
		return
	}

	var req dto.UpdateUserRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.adminService.UpdateUser(r.Context(), id, adminservice.UserPatch{
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
		IsActive: req.IsActive,
	})
	if err != nil {
		respondAdminError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, toUserDTO(user))
}

// DeleteUser godoc
//
//	@Summary	Delete a user
//	@Tags		Admin
//	@Produce	json
//	@Param		id	path	int	true	"User id"
//	@Security	BearerAuth
//	@Success	204
//	@Failure	400	{object}	utils.Response	"Self-delete forbidden"
//	@Failure	404	{object}	utils.Response
//	@Router		/api/admin/users/{id} [delete]
func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid user id")
		return
	}
	actorID, _ := r.Context().Value(pkgauth.UserIDKey).(int)

	if err := h.adminService.DeleteUser(r.Context(), id, actorID); err != nil {
		respondAdminError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusNoContent, nil)
}

// GenerateVoucher godoc
//
//	@Summary	Generate a voucher
//	@Tags		Admin
//	@Accept		json
//	@Produce	json
//	@Param		request	body		dto.GenerateVoucherRequestDTO	true	"Voucher parameters"
//	@Security	BearerAuth
//	@Success	201	{object}	dto.VoucherResponseDTO
//	@Failure	400	{object}	utils.Response
//	@Router		/api/admin/vouchers/generate [post]
func (h *AdminHandler) GenerateVoucher(w http.ResponseWriter, r *http.Request) {
	var req dto.GenerateVoucherRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	voucher, err := h.voucherService.Create(r.Context(), req.Duration, req.Price, req.DataLimit)
	if err != nil {
		respondAdminError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, toVoucherDTO(voucher))
}

// ListVouchers godoc
//
//	@Summary	List vouchers
//	@Tags		Admin
//	@Produce	json
//	@Security	BearerAuth
//	@Success	200	{array}	dto.VoucherResponseDTO
//	@Router		/api/admin/vouchers [get]
func (h *AdminHandler) ListVouchers(w http.ResponseWriter, r *http.Request) {
	vouchers, err := h.voucherService.List(r.Context())
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	resp := make([]dto.VoucherResponseDTO, 0, len(vouchers))
	for i := range vouchers {
		resp = append(resp, toVoucherDTO(&vouchers[i]))
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}

// UpdateVoucher godoc
//
//	@Summary	Update a voucher
//	@Tags		Admin
//	@Accept		json
//	@Produce	json
//	@Param		id		path		int							true	"Voucher id"
//	@Param		request	body		dto.UpdateVoucherRequestDTO	true	"Fields to change"
//	@Security	BearerAuth
//	@Success	200	{object}	dto.VoucherResponseDTO
//	@Failure	404	{object}	utils.Response
//	@Router		/api/admin/vouchers/{id} [patch]
func (h *AdminHandler) UpdateVoucher(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid voucher id")
		return
	}

	var req dto.UpdateVoucherRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	voucher, err := h.adminService.UpdateVoucher(r.Context(), id, adminservice.VoucherPatch{
		DurationHours: req.Duration,
		Price:         req.Price,
		DataLimit:     req.DataLimit,
		Status:        req.Status,
	})
	if err != nil {
		respondAdminError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, toVoucherDTO(voucher))
}

// DeleteVoucher godoc
//
//	@Summary	Delete a voucher
//	@Tags		Admin
//	@Produce	json
//	@Param		id	path	int	true	"Voucher id"
//	@Security	BearerAuth
//	@Success	204
//	@Failure	404	{object}	utils.Response
//	@Router		/api/admin/vouchers/{id} [delete]
func (h *AdminHandler) DeleteVoucher(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid voucher id")
		return
	}

	if err := h.adminService.DeleteVoucher(r.Context(), id); err != nil {
		respondAdminError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusNoContent, nil)
}

// ListPayments godoc
//
//	@Summary	List recent payments
//	@Tags		Admin
//	@Produce	json
//	@Security	BearerAuth
//	@Success	200	{array}	dto.PaymentResponseDTO
//	@Router		/api/admin/payments [get]
func (h *AdminHandler) ListPayments(w http.ResponseWriter, r *http.Request) {
	payments, err := h.paymentService.List(r.Context(), defaultPaymentListLimit)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	resp := make([]dto.PaymentResponseDTO, 0, len(payments))
	for i := range payments {
		p := &payments[i]
		resp = append(resp, dto.PaymentResponseDTO{
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
		})
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}

// CorrectPayment godoc
//
//	@Summary	Force a payment status
//	@Description	Admin-only correction: success to failed frees the voucher, pending or failed to success consumes it
//	@Tags		Admin
//	@Accept		json
//	@Produce	json
//	@Param		id		path		int							true	"Payment id"
//	@Param		request	body		dto.CorrectPaymentRequestDTO	true	"Target status"
//	@Security	BearerAuth
//	@Success	200	{object}	utils.Response
//	@Failure	404	{object}	utils.Response
//	@Failure	409	{object}	utils.Response
//	@Router		/api/admin/payments/{id}/correct [post]
func (h *AdminHandler) CorrectPayment(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid payment id")
		return
	}

	var req dto.CorrectPaymentRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	payment, err := h.paymentService.Correct(r.Context(), id, req.Status)
	if err != nil {
		respondAdminError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.Response{
		Success: true,
		Message: "Payment corrected to " + payment.Status,
	})
}

// Dashboard godoc
//
//	@Summary	Dashboard statistics
//	@Tags		Admin
//	@Produce	json
//	@Security	BearerAuth
//	@Success	200	{object}	domain.Stats
//	@Router		/api/admin/dashboard [get]
func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := h.adminService.Dashboard(r.Context())
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, stats)
}

// Revenue godoc
//
//	@Summary	Revenue analytics
//	@Tags		Admin
//	@Produce	json
//	@Param		period	query	string	true	"day, week, month or year"
//	@Security	BearerAuth
//	@Success	200	{array}		dto.RevenuePointDTO
//	@Failure	400	{object}	utils.Response
//	@Router		/api/admin/analytics/revenue [get]
func (h *AdminHandler) Revenue(w http.ResponseWriter, r *http.Request) {
	period := r.URL.Query().Get("period")
	if period == "" {
		period = "day"
	}

	points, err := h.adminService.Revenue(r.Context(), period)
	if err != nil {
		respondAdminError(w, err)
		return
	}

	resp := make([]dto.RevenuePointDTO, 0, len(points))
	for _, p := range points {
		resp = append(resp, dto.RevenuePointDTO{Period: p.Period, Revenue: p.Revenue, Payments: p.Payments})
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}

func toUserDTO(u *domain.User) dto.UserResponseDTO {
	return dto.UserResponseDTO{
		ID:        u.ID,
		Email:     u.Email,
		Role:      u.Role,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
	}
}

func toVoucherDTO(v *domain.Voucher) dto.VoucherResponseDTO {
	return dto.VoucherResponseDTO{
		ID:        v.ID,
		Code:      v.Code,
		Duration:  v.DurationHours,
		Price:     v.Price,
		DataLimit: v.DataLimit,
		Status:    v.Status,
		IsUsed:    v.IsUsed,
		CreatedAt: v.CreatedAt,
		ExpiresAt: v.ExpiresAt,
		UsedAt:    v.UsedAt,
		UserID:    v.UserID,
	}
}

func respondAdminError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, adminservice.ErrUserNotFound),
		errors.Is(err, voucherservice.ErrVoucherNotFound),
		errors.Is(err, paymentservice.ErrPaymentNotFound):
		utils.RespondWithError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, adminservice.ErrEmailTaken):
		utils.RespondWithError(w, http.StatusConflict, err.Error())
	case errors.Is(err, adminservice.ErrSelfDelete),
		errors.Is(err, adminservice.ErrInvalidRole),
		errors.Is(err, adminservice.ErrInvalidStatus),
		errors.Is(err, adminservice.ErrInvalidPeriod),
		errors.Is(err, voucherservice.ErrInvalidDuration),
		errors.Is(err, voucherservice.ErrInvalidPrice):
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, paymentservice.ErrInvalidPaymentState):
		utils.RespondWithError(w, http.StatusConflict, err.Error())
	default:
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}
