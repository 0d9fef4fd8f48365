package adminservice

import (
	"context"
	"errors"
	"time"

	"github.com/kwachanet/hotspot/internal/domain"
	"github.com/kwachanet/hotspot/internal/service/paymentservice"
	"github.com/kwachanet/hotspot/internal/service/voucherservice"
	"github.com/kwachanet/hotspot/pkg/auth"
	"go.uber.org/zap"
)

type UserRepo interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id int) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	Delete(ctx context.Context, id int) error
	CountActive(ctx context.Context) (int, error)
}

var (
	ErrUserNotFound  = errors.New("user not found")
	ErrEmailTaken    = errors.New("email already taken")
	ErrSelfDelete    = errors.New("admins cannot delete themselves")
	ErrInvalidRole   = errors.New("unknown role")
	ErrInvalidStatus = errors.New("voucher status must be active or inactive")
	ErrInvalidPeriod = errors.New("period must be one of day, week, month, year")
)

// UserPatch lists the fields an admin may change on a user. Nil fields are
// left untouched.
type UserPatch struct {
	Email    *string
	Password *string
	Role     *string
	IsActive *bool
}

// VoucherPatch lists the fields an admin may change on a voucher.
type VoucherPatch struct {
	DurationHours *int
	Price         *int64
	DataLimit     *string
	Status        *string
}

var validPeriods = map[string]struct{}{
	"day":   {},
	"week":  {},
	"month": {},
	"year":  {},
}

type Service struct {
	userRepo    UserRepo
	voucherRepo voucherservice.Repo
	paymentRepo paymentservice.Repo
	hashService auth.HashServiceInterface
}

func New(userRepo UserRepo, voucherRepo voucherservice.Repo, paymentRepo paymentservice.Repo,
	hashService auth.HashServiceInterface) *Service {
	return &Service{
		userRepo:    userRepo,
		voucherRepo: voucherRepo,
		paymentRepo: paymentRepo,
		hashService: hashService,
	}
}

func (s *Service) CreateUser(ctx context.Context, email, password, role string) (*domain.User, error) {
	if role != domain.RoleAdmin && role != domain.RoleUser {
		return nil, ErrInvalidRole
	}

	existing, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	hash, err := s.hashService.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		IsActive:     true,
	}
	created, err := s.userRepo.Create(ctx, user)
	if err != nil {
		zap.L().Error("can't create user", zap.Error(err))
		return nil, err
	}
	zap.L().Info("user created by admin", zap.String("email", email), zap.String("role", role))
	return created, nil
}

// EnsureAdmin seeds the first admin account at startup; a no-op when the
// email already exists or seeding is not configured.
func (s *Service) EnsureAdmin(ctx context.Context, email, password string) error {
	if email == "" || password == "" {
		return nil
	}
	existing, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}
	_, err = s.CreateUser(ctx, email, password, domain.RoleAdmin)
	return err
}

func (s *Service) ListUsers(ctx context.Context) ([]domain.User, error) {
	return s.userRepo.List(ctx)
}

func (s *Service) GetUser(ctx context.Context, id int) (*domain.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (s *Service) UpdateUser(ctx context.Context, id int, patch UserPatch) (*domain.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	if patch.Email != nil {
		user.Email = *patch.Email
	}
	if patch.Password != nil {
		hash, err := s.hashService.HashPassword(*patch.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
	}
	if patch.Role != nil {
		if *patch.Role != domain.RoleAdmin && *patch.Role != domain.RoleUser {
			return nil, ErrInvalidRole
		}
		user.Role = *patch.Role
	}
	if patch.IsActive != nil {
		user.IsActive = *patch.IsActive
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *Service) DeleteUser(ctx context.Context, id, actorID int) error {
	if id == actorID {
		return ErrSelfDelete
	}
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}
	return s.userRepo.Delete(ctx, id)
}

// UpdateVoucher applies an admin patch. Editing the duration of an unused
// voucher recomputes its expiry from the creation time; a used voucher keeps
// its expiry untouched.
func (s *Service) UpdateVoucher(ctx context.Context, id int, patch VoucherPatch) (*domain.Voucher, error) {
	voucher, err := s.voucherRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if voucher == nil {
		return nil, voucherservice.ErrVoucherNotFound
	}

	if patch.DurationHours != nil {
		if *patch.DurationHours <= 0 {
			return nil, voucherservice.ErrInvalidDuration
		}
		voucher.DurationHours = *patch.DurationHours
		if !voucher.IsUsed {
			voucher.ExpiresAt = voucher.CreatedAt.Add(time.Duration(voucher.DurationHours) * time.Hour)
		}
	}
	if patch.Price != nil {
		if *patch.Price <= 0 {
			return nil, voucherservice.ErrInvalidPrice
		}
		voucher.Price = *patch.Price
	}
	if patch.DataLimit != nil {
		voucher.DataLimit = *patch.DataLimit
	}
	if patch.Status != nil {
		if *patch.Status != domain.VoucherStatusActive && *patch.Status != domain.VoucherStatusInactive {
			return nil, ErrInvalidStatus
		}
		voucher.Status = *patch.Status
	}

	if err := s.voucherRepo.Update(ctx, voucher); err != nil {
		return nil, err
	}
	return voucher, nil
}

func (s *Service) DeleteVoucher(ctx context.Context, id int) error {
	voucher, err := s.voucherRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if voucher == nil {
		return voucherservice.ErrVoucherNotFound
	}
	return s.voucherRepo.Delete(ctx, id)
}

// Dashboard composes the aggregate counters shown on the admin landing page.
func (s *Service) Dashboard(ctx context.Context) (*domain.Stats, error) {
	totalVouchers, usedVouchers, err := s.voucherRepo.CountTotals(ctx)
	if err != nil {
		return nil, err
	}
	totalPayments, successfulPayments, revenue, err := s.paymentRepo.Stats(ctx)
	if err != nil {
		return nil, err
	}
	activeUsers, err := s.userRepo.CountActive(ctx)
	if err != nil {
		return nil, err
	}

	return &domain.Stats{
		TotalVouchers:      totalVouchers,
		UsedVouchers:       usedVouchers,
		AvailableVouchers:  totalVouchers - usedVouchers,
		TotalPayments:      totalPayments,
		SuccessfulPayments: successfulPayments,
		TotalRevenue:       revenue,
		ActiveUsers:        activeUsers,
	}, nil
}

func (s *Service) Revenue(ctx context.Context, period string) ([]domain.RevenuePoint, error) {
	if _, ok := validPeriods[period]; !ok {
		return nil, ErrInvalidPeriod
	}
	return s.paymentRepo.RevenueByPeriod(ctx, period)
}
