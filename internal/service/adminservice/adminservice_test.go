package adminservice

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kwachanet/hotspot/internal/domain"
	"github.com/kwachanet/hotspot/internal/service/paymentservice"
	"github.com/kwachanet/hotspot/internal/service/voucherservice"
	"github.com/kwachanet/hotspot/pkg/auth"
	"github.com/stretchr/testify/assert"
	gomock "go.uber.org/mock/gomock"
)

func NewMock(t *testing.T) (*Service, *MockUserRepo, *voucherservice.MockRepo, *paymentservice.MockRepo, *auth.MockHashServiceInterface) {
	ctrl := gomock.NewController(t)
	userRepo := NewMockUserRepo(ctrl)
	voucherRepo := voucherservice.NewMockRepo(ctrl)
	paymentRepo := paymentservice.NewMockRepo(ctrl)
	hashService := auth.NewMockHashServiceInterface(ctrl)
	service := New(userRepo, voucherRepo, paymentRepo, hashService)
	defer ctrl.Finish()
	return service, userRepo, voucherRepo, paymentRepo, hashService
}

func TestCreateUser(t *testing.T) {
	service, userRepo, _, _, hashService := NewMock(t)

	tests := []struct {
		name          string
		role          string
		prepareMock   func()
		expectedError error
	}{
		{
			name: "Successful creation",
			role: domain.RoleAdmin,
			prepareMock: func() {
				userRepo.EXPECT().FindByEmail(gomock.Any(), "admin@example.com").Return(nil, nil)
				hashService.EXPECT().HashPassword("secret").Return("hashed", nil)
				userRepo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(func(ctx context.Context, u *domain.User) (*domain.User, error) {
					u.ID = 1
					return u, nil
				})
			},
			expectedError: nil,
		},
		{
			name:          "Unknown role",
			role:          "superuser",
			prepareMock:   func() {},
			expectedError: ErrInvalidRole,
		},
		{
			name: "Email taken",
			role: domain.RoleUser,
			prepareMock: func() {
				userRepo.EXPECT().FindByEmail(gomock.Any(), "admin@example.com").Return(&domain.User{ID: 2}, nil)
			},
			expectedError: ErrEmailTaken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()
			user, err := service.CreateUser(context.Background(), "admin@example.com", "secret", tt.role)
			if tt.expectedError != nil {
				assert.Nil(t, user)
				assert.Equal(t, tt.expectedError, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.role, user.Role)
				assert.True(t, user.IsActive)
			}
		})
	}
}

func TestEnsureAdmin(t *testing.T) {
	service, userRepo, _, _, hashService := NewMock(t)

	t.Run("Seeding not configured", func(t *testing.T) {
		assert.NoError(t, service.EnsureAdmin(context.Background(), "", ""))
	})

	t.Run("Admin already present", func(t *testing.T) {
		userRepo.EXPECT().FindByEmail(gomock.Any(), "admin@example.com").Return(&domain.User{ID: 1}, nil)
		assert.NoError(t, service.EnsureAdmin(context.Background(), "admin@example.com", "secret"))
	})

	t.Run("Admin seeded", func(t *testing.T) {
		userRepo.EXPECT().FindByEmail(gomock.Any(), "admin@example.com").Return(nil, nil)
		userRepo.EXPECT().FindByEmail(gomock.Any(), "admin@example.com").Return(nil, nil)
		hashService.EXPECT().HashPassword("secret").Return("hashed", nil)
		userRepo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(func(ctx context.Context, u *domain.User) (*domain.User, error) {
			u.ID = 1
			return u, nil
		})
		assert.NoError(t, service.EnsureAdmin(context.Background(), "admin@example.com", "secret"))
	})
}

func TestUpdateUser(t *testing.T) {
	service, userRepo, _, _, hashService := NewMock(t)

	email := "new@example.com"
	password := "newsecret"
	badRole := "superuser"
	inactive := false

	tests := []struct {
		name          string
		patch         UserPatch
		prepareMock   func()
		check         func(t *testing.T, u *domain.User)
		expectedError error
	}{
		{
			name:  "Patch email and password",
			patch: UserPatch{Email: &email, Password: &password},
			prepareMock: func() {
				userRepo.EXPECT().FindByID(gomock.Any(), 1).Return(&domain.User{ID: 1, Email: "old@example.com"}, nil)
				hashService.EXPECT().HashPassword("newsecret").Return("newhash", nil)
				userRepo.EXPECT().Update(gomock.Any(), gomock.Any()).Return(nil)
			},
			check: func(t *testing.T, u *domain.User) {
				assert.Equal(t, "new@example.com", u.Email)
				assert.Equal(t, "newhash", u.PasswordHash)
			},
		},
		{
			name:  "Deactivate user",
			patch: UserPatch{IsActive: &inactive},
			prepareMock: func() {
				userRepo.EXPECT().FindByID(gomock.Any(), 1).Return(&domain.User{ID: 1, IsActive: true}, nil)
				userRepo.EXPECT().Update(gomock.Any(), gomock.Any()).Return(nil)
			},
			check: func(t *testing.T, u *domain.User) {
				assert.False(t, u.IsActive)
			},
		},
		{
			name:  "Unknown role rejected",
			patch: UserPatch{Role: &badRole},
			prepareMock: func() {
				userRepo.EXPECT().FindByID(gomock.Any(), 1).Return(&domain.User{ID: 1}, nil)
			},
			expectedError: ErrInvalidRole,
		},
		{
			name:  "User not found",
			patch: UserPatch{Email: &email},
			prepareMock: func() {
				userRepo.EXPECT().FindByID(gomock.Any(), 1).Return(nil, nil)
			},
			expectedError: ErrUserNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()
			user, err := service.UpdateUser(context.Background(), 1, tt.patch)
			if tt.expectedError != nil {
				assert.Nil(t, user)
				assert.Equal(t, tt.expectedError, err)
			} else {
				assert.NoError(t, err)
				tt.check(t, user)
			}
		})
	}
}

func TestDeleteUser(t *testing.T) {
	service, userRepo, _, _, _ := NewMock(t)

	t.Run("Self delete rejected", func(t *testing.T) {
		assert.Equal(t, ErrSelfDelete, service.DeleteUser(context.Background(), 1, 1))
	})

	t.Run("User not found", func(t *testing.T) {
		userRepo.EXPECT().FindByID(gomock.Any(), 2).Return(nil, nil)
		assert.Equal(t, ErrUserNotFound, service.DeleteUser(context.Background(), 2, 1))
	})

	t.Run("Successful delete", func(t *testing.T) {
		userRepo.EXPECT().FindByID(gomock.Any(), 2).Return(&domain.User{ID: 2}, nil)
		userRepo.EXPECT().Delete(gomock.Any(), 2).Return(nil)
		assert.NoError(t, service.DeleteUser(context.Background(), 2, 1))
	})
}

func TestUpdateVoucher(t *testing.T) {
	service, _, voucherRepo, _, _ := NewMock(t)

	created := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	duration := 48
	badDuration := -1
	price := int64(8000)
	inactive := domain.VoucherStatusInactive
	badStatus := "archived"

	fresh := func() *domain.Voucher {
		return &domain.Voucher{
			ID:            1,
			DurationHours: 24,
			Price:         5000,
			Status:        domain.VoucherStatusActive,
			CreatedAt:     created,
			ExpiresAt:     created.Add(24 * time.Hour),
		}
	}

	tests := []struct {
		name          string
		patch         VoucherPatch
		prepareMock   func()
		check         func(t *testing.T, v *domain.Voucher)
		expectedError error
	}{
		{
			name:  "Duration change recomputes expiry",
			patch: VoucherPatch{DurationHours: &duration},
			prepareMock: func() {
				voucherRepo.EXPECT().FindByID(gomock.Any(), 1).Return(fresh(), nil)
				voucherRepo.EXPECT().Update(gomock.Any(), gomock.Any()).Return(nil)
			},
			check: func(t *testing.T, v *domain.Voucher) {
				assert.Equal(t, 48, v.DurationHours)
				assert.Equal(t, created.Add(48*time.Hour), v.ExpiresAt)
			},
		},
		{
			name:  "Used voucher keeps its expiry",
			patch: VoucherPatch{DurationHours: &duration},
			prepareMock: func() {
				v := fresh()
				v.IsUsed = true
				voucherRepo.EXPECT().FindByID(gomock.Any(), 1).Return(v, nil)
				voucherRepo.EXPECT().Update(gomock.Any(), gomock.Any()).Return(nil)
			},
			check: func(t *testing.T, v *domain.Voucher) {
				assert.Equal(t, 48, v.DurationHours)
				assert.Equal(t, created.Add(24*time.Hour), v.ExpiresAt)
			},
		},
		{
			name:  "Price and status patch",
			patch: VoucherPatch{Price: &price, Status: &inactive},
			prepareMock: func() {
				voucherRepo.EXPECT().FindByID(gomock.Any(), 1).Return(fresh(), nil)
				voucherRepo.EXPECT().Update(gomock.Any(), gomock.Any()).Return(nil)
			},
			check: func(t *testing.T, v *domain.Voucher) {
				assert.Equal(t, int64(8000), v.Price)
				assert.Equal(t, domain.VoucherStatusInactive, v.Status)
			},
		},
		{
			name:  "Negative duration rejected",
			patch: VoucherPatch{DurationHours: &badDuration},
			prepareMock: func() {
				voucherRepo.EXPECT().FindByID(gomock.Any(), 1).Return(fresh(), nil)
			},
			expectedError: voucherservice.ErrInvalidDuration,
		},
		{
			name:  "Unknown status rejected",
			patch: VoucherPatch{Status: &badStatus},
			prepareMock: func() {
				voucherRepo.EXPECT().FindByID(gomock.Any(), 1).Return(fresh(), nil)
			},
			expectedError: ErrInvalidStatus,
		},
		{
			name:  "Voucher not found",
			patch: VoucherPatch{Price: &price},
			prepareMock: func() {
				voucherRepo.EXPECT().FindByID(gomock.Any(), 1).Return(nil, nil)
			},
			expectedError: voucherservice.ErrVoucherNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()
			voucher, err := service.UpdateVoucher(context.Background(), 1, tt.patch)
			if tt.expectedError != nil {
				assert.Nil(t, voucher)
				assert.Equal(t, tt.expectedError, err)
			} else {
				assert.NoError(t, err)
				tt.check(t, voucher)
			}
		})
	}
}

func TestDeleteVoucher(t *testing.T) {
	service, _, voucherRepo, _, _ := NewMock(t)

	voucherRepo.EXPECT().FindByID(gomock.Any(), 1).Return(&domain.Voucher{ID: 1}, nil)
	voucherRepo.EXPECT().Delete(gomock.Any(), 1).Return(nil)
	assert.NoError(t, service.DeleteVoucher(context.Background(), 1))

	voucherRepo.EXPECT().FindByID(gomock.Any(), 2).Return(nil, nil)
	assert.Equal(t, voucherservice.ErrVoucherNotFound, service.DeleteVoucher(context.Background(), 2))
}

func TestDashboard(t *testing.T) {
	service, userRepo, voucherRepo, paymentRepo, _ := NewMock(t)

	t.Run("Counters composed", func(t *testing.T) {
		voucherRepo.EXPECT().CountTotals(gomock.Any()).Return(10, 4, nil)
		paymentRepo.EXPECT().Stats(gomock.Any()).Return(20, 15, int64(75000), nil)
		userRepo.EXPECT().CountActive(gomock.Any()).Return(3, nil)

		stats, err := service.Dashboard(context.Background())
		assert.NoError(t, err)
		assert.Equal(t, &domain.Stats{
			TotalVouchers:      10,
			UsedVouchers:       4,
			AvailableVouchers:  6,
			TotalPayments:      20,
			SuccessfulPayments: 15,
			TotalRevenue:       75000,
			ActiveUsers:        3,
		}, stats)
	})

	t.Run("Voucher counting fails", func(t *testing.T) {
		voucherRepo.EXPECT().CountTotals(gomock.Any()).Return(0, 0, errors.New("some error"))
		stats, err := service.Dashboard(context.Background())
		assert.Nil(t, stats)
		assert.Error(t, err)
	})
}

func TestRevenue(t *testing.T) {
	service, _, _, paymentRepo, _ := NewMock(t)

	expected := []domain.RevenuePoint{{Period: time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC), Revenue: 15000, Payments: 3}}
	paymentRepo.EXPECT().RevenueByPeriod(gomock.Any(), "day").Return(expected, nil)
	points, err := service.Revenue(context.Background(), "day")
	assert.NoError(t, err)
	assert.Equal(t, expected, points)

	points, err = service.Revenue(context.Background(), "decade")
	assert.Nil(t, points)
	assert.Equal(t, ErrInvalidPeriod, err)
}
