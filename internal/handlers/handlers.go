package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	_ "github.com/kwachanet/hotspot/docs"
	adminhandlers "github.com/kwachanet/hotspot/internal/handlers/admin"
	authhandlers "github.com/kwachanet/hotspot/internal/handlers/auth"
	paymenthandlers "github.com/kwachanet/hotspot/internal/handlers/payments"
	voucherhandlers "github.com/kwachanet/hotspot/internal/handlers/vouchers"
	"github.com/kwachanet/hotspot/internal/service"
	"github.com/kwachanet/hotspot/pkg/auth"
	"github.com/rs/cors"
	httpSwagger "github.com/swaggo/http-swagger"
)

type AuthHandler interface {
	Register(w http.ResponseWriter, r *http.Request)
	Login(w http.ResponseWriter, r *http.Request)
}

type VoucherHandler interface {
	Validate(w http.ResponseWriter, r *http.Request)
	Redeem(w http.ResponseWriter, r *http.Request)
}

type PaymentHandler interface {
	Create(w http.ResponseWriter, r *http.Request)
	Verify(w http.ResponseWriter, r *http.Request)
	GetByReference(w http.ResponseWriter, r *http.Request)
	Cancel(w http.ResponseWriter, r *http.Request)
}

type AdminHandler interface {
	CreateUser(w http.ResponseWriter, r *http.Request)
	ListUsers(w http.ResponseWriter, r *http.Request)
	UpdateUser(w http.ResponseWriter, r *http.Request)
	DeleteUser(w http.ResponseWriter, r *http.Request)
	GenerateVoucher(w http.ResponseWriter, r *http.Request)
	ListVouchers(w http.ResponseWriter, r *http.Request)
	UpdateVoucher(w http.ResponseWriter, r *http.Request)
	DeleteVoucher(w http.ResponseWriter, r *http.Request)
	ListPayments(w http.ResponseWriter, r *http.Request)
	CorrectPayment(w http.ResponseWriter, r *http.Request)
	Dashboard(w http.ResponseWriter, r *http.Request)
	Revenue(w http.ResponseWriter, r *http.Request)
}

type Handlers struct {
	AuthHandler    AuthHandler
	VoucherHandler VoucherHandler
	PaymentHandler PaymentHandler
	AdminHandler   AdminHandler

	corsOrigin string
}

func New(s *service.Services, corsOrigin string) *Handlers {
	return &Handlers{
		AuthHandler:    authhandlers.New(s.AuthService),
		VoucherHandler: voucherhandlers.New(s.VoucherService),
		PaymentHandler: paymenthandlers.New(s.PaymentService, s.VoucherService),
		AdminHandler:   adminhandlers.New(s.AdminService, s.VoucherService, s.PaymentService),
		corsOrigin:     corsOrigin,
	}
}

func (h *Handlers) InitRoutes(r chi.Router) chi.Router {
	r.Use(
		middleware.RealIP,
		middleware.Recoverer,
		middleware.Logger,
		cors.New(cors.Options{
			AllowedOrigins: []string{h.corsOrigin},
			AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Authorization", "Content-Type"},
		}).Handler,
	)
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("doc.json"),
	))
	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", h.AuthHandler.Register)
			r.Post("/login", h.AuthHandler.Login)
		})

		r.Route("/vouchers", func(r chi.Router) {
			r.Post("/validate", h.VoucherHandler.Validate)
			r.Post("/redeem", h.VoucherHandler.Redeem)
		})

		r.Route("/payments", func(r chi.Router) {
			r.Post("/", h.PaymentHandler.Create)
			r.Get("/{id}/verify", h.PaymentHandler.Verify)
			r.Post("/{id}/cancel", h.PaymentHandler.Cancel)
			r.Get("/reference/{reference}", h.PaymentHandler.GetByReference)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(auth.AuthMiddleware, auth.RequireAdmin)

			r.Route("/users", func(r chi.Router) {
				r.Post("/", h.AdminHandler.CreateUser)
				r.Get("/", h.AdminHandler.ListUsers)
				r.Patch("/{id}", h.AdminHandler.UpdateUser)
				r.Delete("/{id}", h.AdminHandler.DeleteUser)
			})
			r.Route("/vouchers", func(r chi.Router) {
				r.Post("/generate", h.AdminHandler.GenerateVoucher)
				r.Get("/", h.AdminHandler.ListVouchers)
				r.Patch("/{id}", h.AdminHandler.UpdateVoucher)
				r.Delete("/{id}", h.AdminHandler.DeleteVoucher)
			})
			r.Route("/payments", func(r chi.Router) {
				r.Get("/", h.AdminHandler.ListPayments)
				r.Post("/{id}/correct", h.AdminHandler.CorrectPayment)
			})
			r.Get("/dashboard", h.AdminHandler.Dashboard)
			r.Get("/analytics/revenue", h.AdminHandler.Revenue)
		})
	})

	return r
}
