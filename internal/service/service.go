package service

import (
	"github.com/kwachanet/hotspot/internal/notify"
	"github.com/kwachanet/hotspot/internal/repo"
	"github.com/kwachanet/hotspot/internal/service/adminservice"
	"github.com/kwachanet/hotspot/internal/service/authservice"
	"github.com/kwachanet/hotspot/internal/service/paymentservice"
	"github.com/kwachanet/hotspot/internal/service/voucherservice"
	pkgauth "github.com/kwachanet/hotspot/pkg/auth"
	"github.com/kwachanet/hotspot/pkg/codes"
)

type Services struct {
	AuthService    *authservice.Service
	VoucherService *voucherservice.Service
	PaymentService *paymentservice.Service
	AdminService   *adminservice.Service
}

func New(repo *repo.Repositories, enqueuer paymentservice.Enqueuer, dispatcher notify.Dispatcher, gen *codes.Generator) *Services {
	voucherService := voucherservice.New(repo.VoucherRepo, repo.SessionRepo, gen)
	paymentService := paymentservice.New(repo.PaymentRepo, repo.VoucherRepo, repo.SessionRepo, enqueuer, dispatcher, gen)
	adminService := adminservice.New(repo.UserRepo, repo.VoucherRepo, repo.PaymentRepo, &pkgauth.HashService{})
	authService := authservice.New(repo.UserRepo, &pkgauth.HashService{}, &pkgauth.JWTService{}, dispatcher)

	return &Services{
		AuthService:    authService,
		VoucherService: voucherService,
		PaymentService: paymentService,
		AdminService:   adminService,
	}
}
