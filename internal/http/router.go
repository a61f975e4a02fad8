package apphttp

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"payrexx-gateway/internal/config"
	"payrexx-gateway/internal/http/handlers"
	"payrexx-gateway/internal/http/handlers/admin"
	"payrexx-gateway/internal/http/middleware"
	"payrexx-gateway/internal/mailer"
	"payrexx-gateway/internal/modules/orders"
	"payrexx-gateway/internal/modules/payments"
	"payrexx-gateway/internal/payrexx"
	"payrexx-gateway/internal/storage"
)

// NewRouter wires the services and the HTTP surface. All collaborators
// are constructed here and injected; nothing is reached through
// globals.
func NewRouter(logger *slog.Logger, cfg config.Config, db *gorm.DB, archive storage.Archive) *gin.Engine {
	client := payrexx.NewClient(cfg.Payrexx.InstanceName, cfg.Payrexx.SecretKey)
	if cfg.Payrexx.RequestTimeout > 0 {
		client.SetTimeout(time.Duration(cfg.Payrexx.RequestTimeout) * time.Second)
	}
	manager := payrexx.NewManager(client, logger)

	orderSvc := orders.NewService(db, newMailer(cfg), logger)
	orderSvc.SetSender(cfg.SMTP.FromName, cfg.SMTP.FromAddr)

	paymentSvc := payments.NewService(manager, orderSvc, logger, cfg.BaseURL, cfg.StoreName)
	reconciler := payments.NewReconciler(manager, orderSvc, logger)

	webhookH := handlers.NewWebhookHandler(logger, reconciler)
	webhookH.Archive = archive
	checkoutH := handlers.NewCheckoutHandler(logger, paymentSvc)
	adminPayrexxH := admin.NewPayrexxHandler(logger, manager, paymentSvc)
	adminOrdersH := admin.NewOrdersHandler(logger, orderSvc)

	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.Logger(logger),
		middleware.Recovery(logger),
		middleware.ErrorHandler(logger),
	)

	r.POST("/webhooks/payrexx", webhookH.Handle)

	r.GET("/checkout/pay/:number", checkoutH.Pay)
	r.POST("/checkout/cancel/:number", checkoutH.Cancel)

	adm := r.Group("/admin")
	adm.Use(middleware.RequireAdminToken(cfg.AdminAPIToken))
	{
		adm.GET("/payrexx/credentials", adminPayrexxH.CheckCredentials)
		adm.GET("/payrexx/providers", adminPayrexxH.ListProviders)
		adm.GET("/payrexx/transactions/:id", adminPayrexxH.GetTransaction)
		adm.POST("/payrexx/invoices", adminPayrexxH.CreateInvoice)
		adm.GET("/orders/:number", adminOrdersH.Show)
		adm.POST("/orders/:number/capture", adminPayrexxH.CaptureOrder)
		adm.POST("/orders/:number/refund", adminOrdersH.Refund)
	}

	return r
}

// newMailer picks the configured mail transport.
func newMailer(cfg config.Config) mailer.Service {
	if cfg.MailDriver == "mailtrap" {
		return mailer.NewMailtrapMailer(cfg.Mailtrap.APIURL, cfg.Mailtrap.APIToken)
	}
	return mailer.NewSMTPMailer(cfg.SMTP)
}
