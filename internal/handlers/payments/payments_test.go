package payments

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
	"github.com/kwachanet/hotspot/internal/service/paymentservice"
	"github.com/kwachanet/hotspot/internal/service/voucherservice"
	"github.com/stretchr/testify/assert"
	gomock "go.uber.org/mock/gomock"
)

func NewMock(t *testing.T) (*PaymentHandler, *MockService, *MockVoucherService) {
	ctrl := gomock.NewController(t)
	service := NewMockService(ctrl)
	voucherService := NewMockVoucherService(ctrl)
	handler := New(service, voucherService)
	defer ctrl.Finish()
	return handler, service, voucherService
}

func withURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func pendingPayment() *domain.Payment {
	return &domain.Payment{
		ID:            10,
		Amount:        5000,
		PhoneNumber:   "+256700000001",
		PaymentMethod: "mtn_momo",
		VoucherID:     1,
		Status:        domain.PaymentStatusPending,
		Reference:     "MW-1-0001",
		CreatedAt:     time.Now().Truncate(time.Second).UTC(),
	}
}

func TestCreateHandler(t *testing.T) {
	handler, service, _ := NewMock(t)

	tests := []struct {
		name         string
		body         string
		prepareMock  func()
		expectedCode int
	}{
		{
			name: "Payment initiated",
			body: `{"amount":5000,"phoneNumber":"+256700000001","paymentMethod":"mtn_momo","voucherId":1}`,
			prepareMock: func() {
				service.EXPECT().
					Initiate(gomock.Any(), int64(5000), "+256700000001", "mtn_momo", 1, nil).
					Return(pendingPayment(), nil)
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
			name:         "Unsupported method rejected by validation",
			body:         `{"amount":5000,"phoneNumber":"+256700000001","paymentMethod":"cash","voucherId":1}`,
			prepareMock:  func() {},
			expectedCode: http.StatusBadRequest,
		},
		{
			name: "Voucher not found",
			body: `{"amount":5000,"phoneNumber":"+256700000001","paymentMethod":"mtn_momo","voucherId":99}`,
			prepareMock: func() {
				service.EXPECT().
					Initiate(gomock.Any(), int64(5000), "+256700000001", "mtn_momo", 99, nil).
					Return(nil, voucherservice.ErrVoucherNotFound)
			},
			expectedCode: http.StatusNotFound,
		},
		{
			name: "Amount mismatch",
			body: `{"amount":4000,"phoneNumber":"+256700000001","paymentMethod":"mtn_momo","voucherId":1}`,
			prepareMock: func() {
				service.EXPECT().
					Initiate(gomock.Any(), int64(4000), "+256700000001", "mtn_momo", 1, nil).
					Return(nil, paymentservice.ErrAmountMismatch)
			},
			expectedCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()

			req := httptest.NewRequest(http.MethodPost, "/api/payments", bytes.NewBufferString(tt.body))
			w := httptest.NewRecorder()
			handler.Create(w, req)

			assert.Equal(t, tt.expectedCode, w.Code)
			if tt.expectedCode == http.StatusCreated {
				var resp dto.PaymentResponseDTO
				assert.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
				assert.Equal(t, "MW-1-0001", resp.Reference)
				assert.Equal(t, "pending", resp.Status)
			}
		})
	}
}

func TestVerifyHandler(t *testing.T) {
	handler, service, voucherService := NewMock(t)

	expires := time.Now().Add(time.Hour).Truncate(time.Second).UTC()

	tests := []struct {
		name          string
		id            string
		prepareMock   func()
		expectedCode  int
		expectVoucher bool
	}{
		{
			name: "Pending payment, no voucher details",
			id:   "10",
			prepareMock: func() {
				service.EXPECT().GetByID(gomock.Any(), 10).Return(pendingPayment(), nil)
			},
			expectedCode: http.StatusOK,
		},
		{
			name: "Settled payment includes voucher",
			id:   "10",
			prepareMock: func() {
				payment := pendingPayment()
				payment.Status = domain.PaymentStatusSuccess
				service.EXPECT().GetByID(gomock.Any(), 10).Return(payment, nil)
				voucherService.EXPECT().GetByID(gomock.Any(), 1).Return(&domain.Voucher{
					ID: 1, Code: "MW-AAAA1111", DurationHours: 24, DataLimit: "1GB", ExpiresAt: expires,
				}, nil)
			},
			expectedCode:  http.StatusOK,
			expectVoucher: true,
		},
		{
			name:         "Invalid id",
			id:           "abc",
			prepareMock:  func() {},
			expectedCode: http.StatusBadRequest,
		},
		{
			name: "Payment not found",
			id:   "99",
			prepareMock: func() {
				service.EXPECT().GetByID(gomock.Any(), 99).Return(nil, paymentservice.ErrPaymentNotFound)
			},
			expectedCode: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()

			req := httptest.NewRequest(http.MethodGet, "/api/payments/"+tt.id+"/verify", nil)
			req = withURLParam(req, "id", tt.id)
			w := httptest.NewRecorder()
			handler.Verify(w, req)

			assert.Equal(t, tt.expectedCode, w.Code)
			if tt.expectedCode == http.StatusOK {
				var resp dto.VerifyPaymentResponseDTO
				assert.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
				if tt.expectVoucher {
					assert.NotNil(t, resp.Voucher)
					assert.Equal(t, "MW-AAAA1111", resp.Voucher.Code)
				} else {
					assert.Nil(t, resp.Voucher)
				}
			}
		})
	}
}

func TestGetByReferenceHandler(t *testing.T) {
	handler, service, _ := NewMock(t)

	t.Run("Payment found", func(t *testing.T) {
		service.EXPECT().GetByReference(gomock.Any(), "MW-1-0001").Return(pendingPayment(), nil)

		req := httptest.NewRequest(http.MethodGet, "/api/payments/reference/MW-1-0001", nil)
		req = withURLParam(req, "reference", "MW-1-0001")
		w := httptest.NewRecorder()
		handler.GetByReference(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("Payment not found", func(t *testing.T) {
		service.EXPECT().GetByReference(gomock.Any(), "MW-MISSING").Return(nil, paymentservice.ErrPaymentNotFound)

		req := httptest.NewRequest(http.MethodGet, "/api/payments/reference/MW-MISSING", nil)
		req = withURLParam(req, "reference", "MW-MISSING")
		w := httptest.NewRecorder()
		handler.GetByReference(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestCancelHandler(t *testing.T) {
	handler, service, _ := NewMock(t)

	tests := []struct {
		name         string
		id           int
		prepareMock  func()
		expectedCode int
	}{
		{
			name: "Pending payment cancelled",
			id:   10,
			prepareMock: func() {
				cancelled := pendingPayment()
				cancelled.Status = domain.PaymentStatusCancelled
				service.EXPECT().Cancel(gomock.Any(), 10).Return(cancelled, nil)
			},
			expectedCode: http.StatusOK,
		},
		{
			name: "Already settled",
			id:   10,
			prepareMock: func() {
				service.EXPECT().Cancel(gomock.Any(), 10).Return(nil, paymentservice.ErrInvalidPaymentState)
			},
			expectedCode: http.StatusConflict,
		},
		{
			name: "Payment not found",
			id:   99,
			prepareMock: func() {
				service.EXPECT().Cancel(gomock.Any(), 99).Return(nil, paymentservice.ErrPaymentNotFound)
			},
			expectedCode: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()

			req := httptest.NewRequest(http.MethodPost, "/api/payments/"+strconv.Itoa(tt.id)+"/cancel", nil)
			req = withURLParam(req, "id", strconv.Itoa(tt.id))
			w := httptest.NewRecorder()
			handler.Cancel(w, req)

			assert.Equal(t, tt.expectedCode, w.Code)
		})
	}
}
