package admin

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/kwachanet/hotspot/internal/domain"
	"github.com/kwachanet/hotspot/internal/dto"
	"github.com/kwachanet/hotspot/internal/service/adminservice"
	"github.com/kwachanet/hotspot/internal/service/paymentservice"
	"github.com/kwachanet/hotspot/internal/service/voucherservice"
	pkgauth "github.com/kwachanet/hotspot/pkg/auth"
	"github.com/stretchr/testify/assert"
	gomock "go.uber.org/mock/gomock"
)

func NewMock(t *testing.T) (*AdminHandler, *MockService, *MockVoucherService, *MockPaymentService) {
	ctrl := gomock.NewController(t)
	service := NewMockService(ctrl)
	voucherService := NewMockVoucherService(ctrl)
	paymentService := NewMockPaymentService(ctrl)
	handler := New(service, voucherService, paymentService)
	defer ctrl.Finish()
	return handler, service, voucherService, paymentService
}

func withURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestCreateUserHandler(t *testing.T) {
	handler, service, _, _ := NewMock(t)

	tests := []struct {
		name         string
		body         string
		prepareMock  func()
		expectedCode int
	}{
		{
			name: "User created",
			body: `{"email":"ops@example.com","password":"secret123","role":"user"}`,
			prepareMock: func() {
				service.EXPECT().
					CreateUser(gomock.Any(), "ops@example.com", "secret123", "user").
					Return(&domain.User{ID: 3, Email: "ops@example.com", Role: domain.RoleUser, IsActive: true}, nil)
			},
			expectedCode: http.StatusCreated,
		},
		{
			name:         "Invalid request body",
			body:         `{invalid`,
			prepareMock:  func() {},
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "Unknown role rejected by validation",
			body:         `{"email":"ops@example.com","password":"secret123","role":"owner"}`,
			prepareMock:  func() {},
			expectedCode: http.StatusBadRequest,
		},
		{
			name: "Email already taken",
			body: `{"email":"ops@example.com","password":"secret123","role":"user"}`,
			prepareMock: func() {
				service.EXPECT().
					CreateUser(gomock.Any(), "ops@example.com", "secret123", "user").
					Return(nil, adminservice.ErrEmailTaken)
			},
			expectedCode: http.StatusConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()

			req := httptest.NewRequest(http.MethodPost, "/api/admin/users", bytes.NewBufferString(tt.body))
			w := httptest.NewRecorder()
			handler.CreateUser(w, req)

			assert.Equal(t, tt.expectedCode, w.Code)
			if tt.expectedCode == http.StatusCreated {
				var resp dto.UserResponseDTO
				assert.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
				assert.Equal(t, "ops@example.com", resp.Email)
				assert.True(t, resp.IsActive)
			}
		})
	}
}

func TestListUsersHandler(t *testing.T) {
	handler, service, _, _ := NewMock(t)

	service.EXPECT().ListUsers(gomock.Any()).Return([]domain.User{
		{ID: 1, Email: "admin@example.com", Role: domain.RoleAdmin, IsActive: true},
		{ID: 2, Email: "user@example.com", Role: domain.RoleUser, IsActive: true},
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/users", nil)
	w := httptest.NewRecorder()
	handler.ListUsers(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp []dto.UserResponseDTO
	assert.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Len(t, resp, 2)
}

func TestUpdateUserHandler(t *testing.T) {
	handler, service, _, _ := NewMock(t)

	tests := []struct {
		name         string
		id           string
		body         string
		prepareMock  func()
		expectedCode int
	}{
		{
			name: "User deactivated",
			id:   "2",
			body: `{"isActive":false}`,
			prepareMock: func() {
				service.EXPECT().
					UpdateUser(gomock.Any(), 2, gomock.Any()).
					DoAndReturn(func(_ context.Context, id int, patch adminservice.UserPatch) (*domain.User, error) {
						assert.NotNil(t, patch.IsActive)
						assert.False(t, *patch.IsActive)
						return &domain.User{ID: id, Email: "user@example.com", Role: domain.RoleUser}, nil
					})
			},
			expectedCode: http.StatusOK,
		},
		{
			name:         "Invalid id",
			id:           "abc",
			body:         `{}`,
			prepareMock:  func() {},
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "Invalid email rejected by validation",
			id:           "2",
			body:         `{"email":"not-an-email"}`,
			prepareMock:  func() {},
			expectedCode: http.StatusBadRequest,
		},
		{
			name: "User not found",
			id:   "99",
			body: `{"isActive":false}`,
			prepareMock: func() {
				service.EXPECT().
					UpdateUser(gomock.Any(), 99, gomock.Any()).
					Return(nil, adminservice.ErrUserNotFound)
			},
			expectedCode: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()

			req := httptest.NewRequest(http.MethodPatch, "/api/admin/users/"+tt.id, bytes.NewBufferString(tt.body))
			req = withURLParam(req, "id", tt.id)
			w := httptest.NewRecorder()
			handler.UpdateUser(w, req)

			assert.Equal(t, tt.expectedCode, w.Code)
		})
	}
}

func TestDeleteUserHandler(t *testing.T) {
	handler, service, _, _ := NewMock(t)

	tests := []struct {
		name         string
		id           int
		actorID      int
		prepareMock  func()
		expectedCode int
	}{
		{
			name:    "User deleted",
			id:      2,
			actorID: 1,
			prepareMock: func() {
				service.EXPECT().DeleteUser(gomock.Any(), 2, 1).Return(nil)
			},
			expectedCode: http.StatusNoContent,
		},
		{
			name:    "Self delete forbidden",
			id:      1,
			actorID: 1,
			prepareMock: func() {
				service.EXPECT().DeleteUser(gomock.Any(), 1, 1).Return(adminservice.ErrSelfDelete)
			},
			expectedCode: http.StatusBadRequest,
		},
		{
			name:    "User not found",
			id:      99,
			actorID: 1,
			prepareMock: func() {
				service.EXPECT().DeleteUser(gomock.Any(), 99, 1).Return(adminservice.ErrUserNotFound)
			},
			expectedCode: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()

			req := httptest.NewRequest(http.MethodDelete, "/api/admin/users/"+strconv.Itoa(tt.id), nil)
			req = req.WithContext(context.WithValue(req.Context(), pkgauth.UserIDKey, tt.actorID))
			req = withURLParam(req, "id", strconv.Itoa(tt.id))
			w := httptest.NewRecorder()
			handler.DeleteUser(w, req)

			assert.Equal(t, tt.expectedCode, w.Code)
		})
	}
}

func TestGenerateVoucherHandler(t *testing.T) {
	handler, _, voucherService, _ := NewMock(t)

	tests := []struct {
		name         string
		body         string
		prepareMock  func()
		expectedCode int
	}{
		{
			name: "Voucher generated",
			body: `{"duration":24,"price":5000,"dataLimit":"1GB"}`,
			prepareMock: func() {
				voucherService.EXPECT().
					Create(gomock.Any(), 24, int64(5000), "1GB").
					Return(&domain.Voucher{
						ID: 1, Code: "MW-AAAA1111", DurationHours: 24, Price: 5000,
						DataLimit: "1GB", Status: domain.VoucherStatusActive,
					}, nil)
			},
			expectedCode: http.StatusCreated,
		},
		{
			name:         "Invalid request body",
			body:         `{invalid`,
			prepareMock:  func() {},
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "Zero duration rejected by validation",
			body:         `{"duration":0,"price":5000}`,
			prepareMock:  func() {},
			expectedCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()

			req := httptest.NewRequest(http.MethodPost, "/api/admin/vouchers/generate", bytes.NewBufferString(tt.body))
			w := httptest.NewRecorder()
			handler.GenerateVoucher(w, req)

			assert.Equal(t, tt.expectedCode, w.Code)
			if tt.expectedCode == http.StatusCreated {
				var resp dto.VoucherResponseDTO
				assert.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
				assert.Equal(t, "MW-AAAA1111", resp.Code)
			}
		})
	}
}

func TestUpdateVoucherHandler(t *testing.T) {
	handler, service, _, _ := NewMock(t)

	tests := []struct {
		name         string
		id           string
		body         string
		prepareMock  func()
		expectedCode int
	}{
		{
			name: "Price changed",
			id:   "1",
			body: `{"price":7000}`,
			prepareMock: func() {
				service.EXPECT().
					UpdateVoucher(gomock.Any(), 1, gomock.Any()).
					DoAndReturn(func(_ context.Context, id int, patch adminservice.VoucherPatch) (*domain.Voucher, error) {
						assert.NotNil(t, patch.Price)
						assert.Equal(t, int64(7000), *patch.Price)
						return &domain.Voucher{ID: id, Code: "MW-AAAA1111", Price: 7000}, nil
					})
			},
			expectedCode: http.StatusOK,
		},
		{
			name:         "Unknown status rejected by validation",
			id:           "1",
			body:         `{"status":"revoked"}`,
			prepareMock:  func() {},
			expectedCode: http.StatusBadRequest,
		},
		{
			name: "Voucher not found",
			id:   "99",
			body: `{"price":7000}`,
			prepareMock: func() {
				service.EXPECT().
					UpdateVoucher(gomock.Any(), 99, gomock.Any()).
					Return(nil, voucherservice.ErrVoucherNotFound)
			},
			expectedCode: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()

			req := httptest.NewRequest(http.MethodPatch, "/api/admin/vouchers/"+tt.id, bytes.NewBufferString(tt.body))
			req = withURLParam(req, "id", tt.id)
			w := httptest.NewRecorder()
			handler.UpdateVoucher(w, req)

			assert.Equal(t, tt.expectedCode, w.Code)
		})
	}
}

func TestListPaymentsHandler(t *testing.T) {
	handler, _, _, paymentService := NewMock(t)

	paymentService.EXPECT().List(gomock.Any(), defaultPaymentListLimit).Return([]domain.Payment{
		{ID: 1, Reference: "MW-1-0001", Status: domain.PaymentStatusSuccess, Amount: 5000},
		{ID: 2, Reference: "MW-2-0002", Status: domain.PaymentStatusPending, Amount: 5000},
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/payments", nil)
	w := httptest.NewRecorder()
	handler.ListPayments(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp []dto.PaymentResponseDTO
	assert.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Len(t, resp, 2)
}

func TestCorrectPaymentHandler(t *testing.T) {
	handler, _, _, paymentService := NewMock(t)

	tests := []struct {
		name         string
		id           string
		body         string
		prepareMock  func()
		expectedCode int
	}{
		{
			name: "Payment forced to failed",
			id:   "10",
			body: `{"status":"failed"}`,
			prepareMock: func() {
				paymentService.EXPECT().
					Correct(gomock.Any(), 10, domain.PaymentStatusFailed).
					Return(&domain.Payment{ID: 10, Status: domain.PaymentStatusFailed}, nil)
			},
			expectedCode: http.StatusOK,
		},
		{
			name:         "Unknown status rejected by validation",
			id:           "10",
			body:         `{"status":"refunded"}`,
			prepareMock:  func() {},
			expectedCode: http.StatusBadRequest,
		},
		{
			name: "Cancelled payment is terminal",
			id:   "10",
			body: `{"status":"success"}`,
			prepareMock: func() {
				paymentService.EXPECT().
					Correct(gomock.Any(), 10, domain.PaymentStatusSuccess).
					Return(nil, paymentservice.ErrInvalidPaymentState)
			},
			expectedCode: http.StatusConflict,
		},
		{
			name: "Payment not found",
			id:   "99",
			body: `{"status":"failed"}`,
			prepareMock: func() {
				paymentService.EXPECT().
					Correct(gomock.Any(), 99, domain.PaymentStatusFailed).
					Return(nil, paymentservice.ErrPaymentNotFound)
			},
			expectedCode: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()

			req := httptest.NewRequest(http.MethodPost, "/api/admin/payments/"+tt.id+"/correct", bytes.NewBufferString(tt.body))
			req = withURLParam(req, "id", tt.id)
			w := httptest.NewRecorder()
			handler.CorrectPayment(w, req)

			assert.Equal(t, tt.expectedCode, w.Code)
		})
	}
}

func TestDashboardHandler(t *testing.T) {
	handler, service, _, _ := NewMock(t)

	service.EXPECT().Dashboard(gomock.Any()).Return(&domain.Stats{
		TotalVouchers:      10,
		UsedVouchers:       4,
		AvailableVouchers:  6,
		TotalPayments:      20,
		SuccessfulPayments: 15,
		TotalRevenue:       75000,
		ActiveUsers:        3,
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/dashboard", nil)
	w := httptest.NewRecorder()
	handler.Dashboard(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp domain.Stats
	assert.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, 6, resp.AvailableVouchers)
	assert.Equal(t, int64(75000), resp.TotalRevenue)
}

func TestRevenueHandler(t *testing.T) {
	handler, service, _, _ := NewMock(t)

	t.Run("Defaults to day granularity", func(t *testing.T) {
		service.EXPECT().Revenue(gomock.Any(), "day").Return([]domain.RevenuePoint{
			{Period: time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC), Revenue: 15000, Payments: 3},
		}, nil)

		req := httptest.NewRequest(http.MethodGet, "/api/admin/analytics/revenue", nil)
		w := httptest.NewRecorder()
		handler.Revenue(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		var resp []dto.RevenuePointDTO
		assert.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Len(t, resp, 1)
		assert.Equal(t, int64(15000), resp[0].Revenue)
	})

	t.Run("Explicit period", func(t *testing.T) {
		service.EXPECT().Revenue(gomock.Any(), "month").Return([]domain.RevenuePoint{}, nil)

		req := httptest.NewRequest(http.MethodGet, "/api/admin/analytics/revenue?period=month", nil)
		w := httptest.NewRecorder()
		handler.Revenue(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("Unsupported period", func(t *testing.T) {
		service.EXPECT().Revenue(gomock.Any(), "decade").Return(nil, adminservice.ErrInvalidPeriod)

		req := httptest.NewRequest(http.MethodGet, "/api/admin/analytics/revenue?period=decade", nil)
		w := httptest.NewRecorder()
		handler.Revenue(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
