package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// NewRouter monta as rotas do sandbox
func NewRouter(h *Handler) *gin.Engine {
	router := gin.New()
	router.Use(RequestLogger(h.logger))
	router.Use(gin.Recovery())

	// Health check
	router.GET("/health", HealthCheck)
	router.GET("/api/health", HealthCheck)

	auth := router.Group("/auth")
	{
		auth.POST("/login", h.Login)
		auth.POST("/validateCode", h.ValidateCode)
		auth.POST("/register", h.Register)
		auth.PUT("/profile", h.AuthMiddleware(), h.UpdateProfile)
		auth.POST("/change-password", h.AuthMiddleware(), h.ChangePassword)
	}

	api := router.Group("/api", h.AuthMiddleware())
	{
		api.POST("/tomadores", h.CreateTomador)
		api.GET("/tomadores", h.ListTomadores)
		api.GET("/tomadores/:id", h.GetTomador)
		api.PUT("/tomadores/:id", h.UpdateTomador)
		api.DELETE("/tomadores/:id", h.DeleteTomador)

		api.POST("/invoices", h.CreateInvoice)
		api.GET("/invoices", h.ListInvoices)
		api.GET("/invoices/:id", h.GetInvoice)
		api.POST("/invoices/:id/cancel", h.CancelInvoice)
		api.GET("/invoices/:id/xml", h.InvoiceXML)
		api.GET("/invoices/:id/pdf", h.InvoicePDF)
	}

	router.NoRoute(func(c *gin.Context) {
		abortWithError(c, http.StatusNotFound, "Cannot "+c.Request.Method+" "+c.Request.URL.Path)
	})

	return router
}
