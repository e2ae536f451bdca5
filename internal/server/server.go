package server

import (
	"github.com/gofiber/fiber/v2"

	"github.com/roamio/tripplanner/internal/admin"
	"github.com/roamio/tripplanner/internal/token"
	"github.com/roamio/tripplanner/internal/trip"
	"github.com/roamio/tripplanner/internal/user"
)

// Deps carries every constructed dependency the route tree needs.
// Nothing here is a package-level singleton, so tests can swap any
// piece.
type Deps struct {
	Tokens *token.Service
	Users  *user.Handler
	Trips  *trip.Handler
	Admin  *admin.Handler
}

func New(deps Deps) *fiber.App {
	app := fiber.New(fiber.Config{
		BodyLimit: 20 * 1024 * 1024,
	})

	app.Static("/uploads", "./uploads", fiber.Static{
		Compress:  true,
		ByteRange: true,
		Browse:    false,
		MaxAge:    3600,
	})

	SetupRoutes(app, deps)

	return app
}
