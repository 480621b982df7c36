package v1

import (
	"github.com/gin-gonic/gin"

	"logistix/internal/core/security"
	"logistix/internal/infrastructure/http/v1/middleware"
)

// DocumentRouteHandler is implemented by handlers of numbered documents
// (trips and invoices).
type DocumentRouteHandler interface {
	List(c *gin.Context)
	Create(c *gin.Context)
	Get(c *gin.Context)
}

// RegisterDocumentRoutes registers the list/create/get routes of a document.
//
// Usage:
//
//	RegisterDocumentRoutes(protected.Group("/invoices"), invoiceHandler,
//		security.PermInvoiceRead, security.PermInvoiceCreate)
func RegisterDocumentRoutes(group *gin.RouterGroup, handler DocumentRouteHandler, read, create security.Permission) {
	group.GET("", middleware.RequirePermission(read), handler.List)
	group.POST("", middleware.RequirePermission(create), handler.Create)
	group.GET("/:id", middleware.RequirePermission(read), handler.Get)
}
