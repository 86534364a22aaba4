package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/finhorizon/ledgercore/internal/core/services"
	"github.com/finhorizon/ledgercore/internal/middleware"
)

// RegisterRoutes sets up all application routes, injecting dependencies
// using interfaces.
func RegisterRoutes(r *gin.Engine, svcs *services.Container) {
	r.GET("/health", func(c *gin.Context) {
		c.String(200, "OK")
	})

	setupAPIV1Routes(r, svcs)
}

// setupAPIV1Routes configures the /api/v1 group and delegates to specific
// entity route registrations. Every route requires a resolved caller
// identity.
func setupAPIV1Routes(r *gin.Engine, svcs *services.Container) {
	v1 := r.Group("/api/v1", middleware.CallerIdentityMiddleware())

	registerAccountRoutes(v1, svcs.AccountSvc)
	registerTransferRoutes(v1, svcs.TransferSvc)
	registerQueryRoutes(v1, svcs.QuerySvc)
}

// RegisterValidations installs the custom binding validators. Must run
// once before the engine serves requests.
func RegisterValidations() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	// decimal.Decimal fields cannot use the numeric gt=0 tag.
	_ = v.RegisterValidation("positivedecimal", func(fl validator.FieldLevel) bool {
		d, ok := fl.Field().Interface().(decimal.Decimal)
		return ok && d.IsPositive()
	})
}
