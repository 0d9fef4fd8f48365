package repo

import (
	"github.com/kwachanet/hotspot/internal/pg"
	paymentrepo "github.com/kwachanet/hotspot/internal/repo/payment-repo"
	sessionrepo "github.com/kwachanet/hotspot/internal/repo/session-repo"
	userrepo "github.com/kwachanet/hotspot/internal/repo/user-repo"
	voucherrepo "github.com/kwachanet/hotspot/internal/repo/voucher-repo"
	"github.com/kwachanet/hotspot/internal/service/adminservice"
	"github.com/kwachanet/hotspot/internal/service/paymentservice"
	"github.com/kwachanet/hotspot/internal/service/voucherservice"
)

type Repositories struct {
	UserRepo    adminservice.UserRepo
	VoucherRepo voucherservice.Repo
	PaymentRepo paymentservice.Repo
	SessionRepo voucherservice.SessionRepo
}

func New(conn pg.Database, txManager pg.TXManager) *Repositories {
	userRepo := userrepo.New(conn)
	voucherRepo := voucherrepo.New(conn, txManager)
	paymentRepo := paymentrepo.New(conn, txManager)
	sessionRepo := sessionrepo.New(conn)

	return &Repositories{
		UserRepo:    userRepo,
		VoucherRepo: voucherRepo,
		PaymentRepo: paymentRepo,
		SessionRepo: sessionRepo,
	}
}
