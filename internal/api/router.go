package api

import (
	"facturas/docs"
	"facturas/internal/api/handlers"
	"facturas/internal/models"
	"facturas/pkg/auth"
	"facturas/pkg/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
	"go.uber.org/zap"
)

func SetupRouter(
	authHandler *handlers.AuthHandler,
	invoiceHandler *handlers.InvoiceHandler,
	catalogHandler *handlers.CatalogHandler,
	subscriptionHandler *handlers.SubscriptionHandler,
	dashboardHandler *handlers.DashboardHandler,
	jwtManager *auth.JWTManager,
	users middleware.AuthUserResolver,
	appLogger *zap.Logger,
) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	// Middleware
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
	}))
	app.Use(logger.New())

	// Swagger - importing the docs package registers the spec via init()
	_ = docs.SwaggerInfo
	app.Get("/swagger/*", swagger.HandlerDefault)

	authmw := middleware.AuthMiddleware(jwtManager, users, appLogger)
	adminOnly := middleware.RequireRole(models.RoleAdmin)

	// Auth
	authGroup := app.Group("/auth")
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)
	authGroup.Post("/refresh", authHandler.Refresh)
	authGroup.Post("/forgot-password", authHandler.ForgotPassword)
	authGroup.Post("/reset-password", authHandler.ResetPassword)
	authGroup.Post("/change-password", authmw, authHandler.ChangePassword)

	// Profile
	app.Get("/users/me", authmw, authHandler.Me)
	app.Put("/users/me", authmw, authHandler.UpdateMe)

	// Invoice ingestion
	app.Post("/process-invoice", authmw, invoiceHandler.ProcessInvoice)

	// Invoices. The /all route must be registered before /:id so "all" is not
	// captured as an ID.
	invoices := app.Group("/invoices", authmw)
	invoices.Get("/", invoiceHandler.ListInvoices)
	invoices.Get("/all", adminOnly, invoiceHandler.ListAllInvoices)
	invoices.Get("/:id", invoiceHandler.GetInvoice)
	invoices.Delete("/:id", invoiceHandler.DeleteInvoice)

	// Plans
	plans := app.Group("/plans")
	plans.Get("/", catalogHandler.ListPlans)
	plans.Get("/:id", catalogHandler.GetPlan)
	plans.Post("/", authmw, adminOnly, catalogHandler.CreatePlan)
	plans.Put("/:id", authmw, adminOnly, catalogHandler.UpdatePlan)
	plans.Delete("/:id", authmw, adminOnly, catalogHandler.DeletePlan)

	// Categories
	categories := app.Group("/categories")
	categories.Get("/", catalogHandler.ListCategories)
	categories.Get("/:id", catalogHandler.GetCategory)
	categories.Post("/", authmw, adminOnly, catalogHandler.CreateCategory)
	categories.Put("/:id", authmw, adminOnly, catalogHandler.UpdateCategory)
	categories.Delete("/:id", authmw, adminOnly, catalogHandler.DeleteCategory)

	// Types
	types := app.Group("/types")
	types.Get("/", catalogHandler.ListTypes)
	types.Get("/:id", catalogHandler.GetType)
	types.Post("/", authmw, adminOnly, catalogHandler.CreateType)

	// Subscriptions
	subs := app.Group("/subscriptions", authmw)
	subs.Post("/", subscriptionHandler.Subscribe)
	subs.Get("/", adminOnly, subscriptionHandler.ListSubscriptions)
	subs.Get("/active", subscriptionHandler.GetActive)
	subs.Get("/:id", subscriptionHandler.GetSubscription)
	subs.Put("/:id", subscriptionHandler.UpdateSubscription)
	subs.Post("/:id/cancel", subscriptionHandler.Cancel)

	// Dashboard
	dashboard := app.Group("/dashboard/:userId", authmw)
	dashboard.Get("/summary", dashboardHandler.Summary)
	dashboard.Get("/expenses-by-category", dashboardHandler.ExpensesByCategory)
	dashboard.Get("/monthly-history", dashboardHandler.MonthlyHistory)

	return app
}
