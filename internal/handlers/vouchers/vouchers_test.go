package vouchers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/kwachanet/hotspot/internal/domain"
	"github.com/kwachanet/hotspot/internal/dto"
	"github.com/kwachanet/hotspot/internal/service/voucherservice"
	"github.com/stretchr/testify/assert"
	gomock "go.uber.org/mock/gomock"
)

func NewMock(t *testing.T) (*VoucherHandler, *MockService) {
	ctrl := gomock.NewController(t)
	service := NewMockService(ctrl)
	handler := New(service)
	defer ctrl.Finish()
	return handler, service
}

func TestValidateHandler(t *testing.T) {
	handler, service := NewMock(t)

	expires := time.Now().Add(time.Hour).Truncate(time.Second).UTC()
	voucher := &domain.Voucher{
		ID: 1, Code: "MW-AAAA1111", DurationHours: 24, DataLimit: "1GB",
		Price: 5000, Status: domain.VoucherStatusActive, ExpiresAt: expires,
	}

	tests := []struct {
		name         string
		body         string
		prepareMock  func()
		expectedCode int
	}{
		{
			name: "Usable voucher",
			body: `{"code":"MW-AAAA1111"}`,
			prepareMock: func() {
				service.EXPECT().Validate(gomock.Any(), "MW-AAAA1111").Return(voucher, nil)
			},
			expectedCode: http.StatusOK,
		},
		{
			name:         "Invalid request body",
			body:         `{invalid json`,
			prepareMock:  func() {},
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "Missing code",
			body:         `{}`,
			prepareMock:  func() {},
			expectedCode: http.StatusBadRequest,
		},
		{
			name: "Unknown code",
			body: `{"code":"MW-MISSING1"}`,
			prepareMock: func() {
				service.EXPECT().Validate(gomock.Any(), "MW-MISSING1").Return(nil, voucherservice.ErrVoucherNotFound)
			},
			expectedCode: http.StatusNotFound,
		},
		{
			name: "Already used",
			body: `{"code":"MW-AAAA1111"}`,
			prepareMock: func() {
				service.EXPECT().Validate(gomock.Any(), "MW-AAAA1111").Return(nil, voucherservice.ErrVoucherAlreadyUsed)
			},
			expectedCode: http.StatusBadRequest,
		},
		{
			name: "Expired",
			body: `{"code":"MW-AAAA1111"}`,
			prepareMock: func() {
				service.EXPECT().Validate(gomock.Any(), "MW-AAAA1111").Return(nil, voucherservice.ErrVoucherExpired)
			},
			expectedCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()

			req := httptest.NewRequest(http.MethodPost, "/api/vouchers/validate", bytes.NewBufferString(tt.body))
			w := httptest.NewRecorder()
			handler.Validate(w, req)

			assert.Equal(t, tt.expectedCode, w.Code)
			if tt.expectedCode == http.StatusOK {
				var resp dto.VoucherSummaryDTO
				assert.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
				assert.Equal(t, "MW-AAAA1111", resp.Code)
				assert.Equal(t, 24, resp.Duration)
				assert.Equal(t, "1GB", resp.DataLimit)
			}
		})
	}
}

func TestRedeemHandler(t *testing.T) {
	handler, service := NewMock(t)

	now := time.Now().Truncate(time.Second).UTC()
	voucher := &domain.Voucher{
		ID: 1, Code: "MW-AAAA1111", DurationHours: 24, DataLimit: "1GB",
		IsUsed: true, ExpiresAt: now.Add(time.Hour),
	}
	session := &domain.Session{
		ID:            "4f9b6a1e-0000-0000-0000-000000000000",
		VoucherID:     1,
		DurationHours: 24,
		DataLimit:     "1GB",
		StartTime:     now,
		EndTime:       now.Add(24 * time.Hour),
		IsActive:      true,
	}

	tests := []struct {
		name         string
		body         string
		prepareMock  func()
		expectedCode int
	}{
		{
			name: "Successful redemption",
			body: `{"code":"MW-AAAA1111"}`,
			prepareMock: func() {
				service.EXPECT().
					Redeem(context.Background(), "MW-AAAA1111", nil).
					Return(session, voucher, nil)
			},
			expectedCode: http.StatusOK,
		},
		{
			name: "Redemption with user",
			body: `{"code":"MW-AAAA1111","userId":7}`,
			prepareMock: func() {
				service.EXPECT().
					Redeem(context.Background(), "MW-AAAA1111", gomock.Any()).
					Return(session, voucher, nil)
			},
			expectedCode: http.StatusOK,
		},
		{
			name: "Already used",
			body: `{"code":"MW-AAAA1111"}`,
			prepareMock: func() {
				service.EXPECT().
					Redeem(context.Background(), "MW-AAAA1111", nil).
					Return(nil, nil, voucherservice.ErrVoucherAlreadyUsed)
			},
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "Invalid request body",
			body:         `{invalid`,
			prepareMock:  func() {},
			expectedCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()

			req := httptest.NewRequest(http.MethodPost, "/api/vouchers/redeem", bytes.NewBufferString(tt.body))
			w := httptest.NewRecorder()
			handler.Redeem(w, req)

			assert.Equal(t, tt.expectedCode, w.Code)
			if tt.expectedCode == http.StatusOK {
				var resp dto.RedeemResponseDTO
				assert.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
				assert.Equal(t, session.ID, resp.Session.ID)
				assert.True(t, resp.Session.IsActive)
				assert.Equal(t, "MW-AAAA1111", resp.Voucher.Code)
			}
		})
	}
}
