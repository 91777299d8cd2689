package routes

import (
	"github.com/gofiber/fiber/v2"

	"billing-backend/controllers"
	"billing-backend/middlewares"
	"billing-backend/models"
)

// Register wires all HTTP routes.
func Register(app *fiber.App) {
	api := app.Group("/api")

	// Public auth endpoints
	api.Post("/registration", controllers.Register)
	api.Post("/login", controllers.Login)
	api.Post("/logout", controllers.Logout)

	// Protected endpoints (JWT auth)
	protected := api.Group("")
	protected.Use(middlewares.IsAuthenticatedHeader())

	// Idempotency guard (replays the stored response for retried keys)
	protected.Use(middlewares.Idempotency())

	biller := middlewares.RequireRole(models.RoleBiller)
	reviewer := middlewares.RequireRole(models.RoleReviewer)

	// Clients
	protected.Post("/client", controllers.CreateClient)
	protected.Get("/clients", controllers.GetClients)
	protected.Get("/client/:id", controllers.GetClient)
	protected.Put("/client/:id", controllers.UpdateClient)
	protected.Put("/client/:id/deactivate", controllers.DeactivateClient)

	// Engagements
	protected.Post("/engagement", biller, controllers.CreateEngagement)
	protected.Get("/engagements", controllers.GetEngagements)
	protected.Get("/engagement/:id", controllers.GetEngagement)
	protected.Put("/engagement/:id", biller, controllers.UpdateEngagement)
	protected.Post("/engagement/:id/end", biller, controllers.EndEngagement)
	protected.Post("/engagements/run-cycle", biller, controllers.RunCycle)

	// Statements
	protected.Post("/engagement/:id/statements", biller, controllers.GenerateStatement)
	protected.Get("/statements", controllers.GetStatements)
	protected.Get("/statement/:id", controllers.GetStatement)
	protected.Post("/statement/:id/submit-for-review", biller, controllers.SubmitStatementForReview)
	protected.Post("/statement/:id/issue", reviewer, controllers.IssueStatement)
	protected.Post("/statements/issue-batch", reviewer, controllers.IssueBatch)
	protected.Post("/statement/:id/void", reviewer, controllers.VoidStatement)

	// Payments & allocations
	protected.Post("/payment", biller, controllers.RecordPayment)
	protected.Get("/payments", controllers.GetPayments)
	protected.Get("/payment/:id", controllers.GetPayment)
	protected.Post("/payment/:id/verify", reviewer, controllers.VerifyPayment)
	protected.Delete("/payment/:id", middlewares.RequireRole(), controllers.DeletePayment)
	protected.Post("/payment/:id/allocations", biller, controllers.CreateAllocation)
	protected.Get("/payment/:id/allocations", controllers.ListAllocations)
	protected.Delete("/allocation/:id", biller, controllers.ReverseAllocation)

	// Reports (read-only)
	protected.Get("/reports/aging", controllers.AgingReport)
	protected.Get("/reports/collections", controllers.CollectionsRegister)
	protected.Get("/reports/unapplied-credits", controllers.UnappliedCreditsReport)
	protected.Get("/reports/audit-log", controllers.GetAuditLog)
}
