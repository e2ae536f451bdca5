package server

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"

	"github.com/roamio/tripplanner/internal/middleware"
	"github.com/roamio/tripplanner/internal/models"
)

func SetupRoutes(app *fiber.App, deps Deps) {
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS, PATCH",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"message": "Trip Planner API is running",
		})
	})

	protected := middleware.Protected(deps.Tokens)
	adminOnly := middleware.RequireRole(models.RoleAdmin)

	loginLimiter := limiter.New(limiter.Config{
		Max:        10,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
	})

	// ==========================================
	// USERS
	// ==========================================
	users := app.Group("/users")
	users.Post("/register", loginLimiter, deps.Users.Register)
	users.Post("/login", loginLimiter, deps.Users.Login)
	users.Post("/google_login", deps.Users.GoogleLogin)
	users.Get("/google/login", deps.Users.GoogleRedirect)
	users.Get("/google/callback", deps.Users.GoogleCallback)
	users.Post("/forgot-password", deps.Users.ForgotPassword)
	users.Post("/reset-password/:token", deps.Users.ResetPassword)
	users.Post("/refresh", deps.Users.Refresh)
	users.Get("/getMyDetails", protected, deps.Users.GetMyDetails)
	users.Put("/update_profile", protected, deps.Users.UpdateProfile)
	users.Get("/all_users", protected, adminOnly, deps.Users.AllUsers)
	users.Patch("/suspend_user/:id", protected, adminOnly, deps.Users.SuspendUser)
	users.Patch("/activate_user/:id", protected, adminOnly, deps.Users.ActivateUser)

	// ==========================================
	// TRIPS
	// ==========================================
	trips := app.Group("/trips")
	trips.Use(protected)
	trips.Post("/generate", deps.Trips.Generate)
	trips.Post("/save", deps.Trips.Save)
	trips.Get("/mytrips", deps.Trips.MyTrips)
	trips.Delete("/delete/:id", deps.Trips.Delete)
	trips.Get("/viewtrip/:id", deps.Trips.ViewTrip)
	trips.Post("/getimage", deps.Trips.GetImage)
	trips.Post("/get_weather", deps.Trips.GetWeather)
	trips.Get("/all_trips", adminOnly, deps.Trips.AllTrips)
	trips.Patch("/publish/:id", deps.Trips.TogglePublish)
	trips.Get("/public-trips", deps.Trips.PublicTrips)
	trips.Post("/clone/:id", deps.Trips.Clone)

	// ==========================================
	// ADMIN
	// ==========================================
	adminGroup := app.Group("/admin")
	adminGroup.Use(protected)
	adminGroup.Use(adminOnly)
	adminGroup.Get("/dashboard_stats", deps.Admin.DashboardStats)
	adminGroup.Get("/all_users", deps.Users.AllUsers)
	adminGroup.Get("/all_trips", deps.Trips.AllTrips)
	adminGroup.Patch("/suspend_user/:id", deps.Users.SuspendUser)
	adminGroup.Patch("/activate_user/:id", deps.Users.ActivateUser)
	adminGroup.Delete("/delete/:id", deps.Trips.Delete)
}
