package server

import (
	"context"
	"net/http"
	"time"

	"github.com/billfold/billfold/internal/config"
	customerdomain "github.com/billfold/billfold/internal/customer/domain"
	dispatchdomain "github.com/billfold/billfold/internal/dispatch/domain"
	invoicedomain "github.com/billfold/billfold/internal/invoice/domain"
	paymentdomain "github.com/billfold/billfold/internal/payment/domain"
	"github.com/billfold/billfold/internal/providers/pdf"
	statementdomain "github.com/billfold/billfold/internal/statement/domain"
	"github.com/billfold/billfold/pkg/telemetry"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(log *zap.Logger, metrics *telemetry.Metrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogger(log))
	r.Use(MetricsMiddleware(metrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(log *zap.Logger, metrics *telemetry.Metrics) *gin.Engine {
	return NewEngine(log, metrics)
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine       *gin.Engine
	cfg          config.Config
	db           *gorm.DB
	customerSvc  customerdomain.Service
	paymentSvc   paymentdomain.Service
	invoiceSvc   invoicedomain.Service
	statementSvc statementdomain.Service
	dispatchSvc  dispatchdomain.Service
	pdfProvider  pdf.Provider
}

type ServerParams struct {
	fx.In

	Gin          *gin.Engine
	Cfg          config.Config
	DB           *gorm.DB
	CustomerSvc  customerdomain.Service
	PaymentSvc   paymentdomain.Service
	InvoiceSvc   invoicedomain.Service
	StatementSvc statementdomain.Service
	DispatchSvc  dispatchdomain.Service
	PDFProvider  pdf.Provider
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:       p.Gin,
		cfg:          p.Cfg,
		db:           p.DB,
		customerSvc:  p.CustomerSvc,
		paymentSvc:   p.PaymentSvc,
		invoiceSvc:   p.InvoiceSvc,
		statementSvc: p.StatementSvc,
		dispatchSvc:  p.DispatchSvc,
		pdfProvider:  p.PDFProvider,
	}

	svc.registerAdminRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAdminRoutes() {
	admin := s.engine.Group("/admin", OwnerContext())

	// -------- Customers --------
	admin.GET("/customers", s.ListCustomers)
	admin.POST("/customers", s.CreateCustomer)
	admin.GET("/customers/:id", s.GetCustomerByID)

	// -------- Payments --------
	admin.GET("/payments", s.ListPayments)
	admin.POST("/payments", s.RecordPayment)

	// -------- Invoices --------
	admin.GET("/invoices", s.ListInvoices)
	admin.POST("/invoices", s.CreateInvoice)
	admin.GET("/invoices/stats", s.GetInvoiceStats)
	admin.GET("/invoices/:id", s.GetInvoiceByID)
	admin.PATCH("/invoices/:id", s.UpdateInvoiceStatus)

	// -------- Customer statements --------
	admin.POST("/customer-statements/generate", s.GenerateStatement)
	admin.GET("/customer-statements", s.ListStatements)
	admin.POST("/customer-statements", s.CreateStatement)
	admin.GET("/customer-statements/:id", s.GetStatementByID)
	admin.PATCH("/customer-statements/:id", s.PatchStatement)
	admin.GET("/customer-statements/:id/pdf", s.GetStatementPDF)

	// -------- WhatsApp --------
	admin.POST("/whatsapp/send-statement", s.SendStatementWhatsApp)
}
