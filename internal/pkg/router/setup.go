package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/sabaipics/sabaipics/app/controllers"
	"github.com/sabaipics/sabaipics/app/repository"
)

// Router installs a group of routes on the app.
type Router interface {
	InstallRouter(app *fiber.App)
}

// Deps carries everything the route groups need.
type Deps struct {
	Repos    *repository.Repositories
	Uploads  *controllers.UploadController
	Presigns *controllers.PresignController
	Billing  *controllers.BillingController
}

// InstallRouter registers all route groups.
func InstallRouter(app *fiber.App, deps Deps) {
	setup(app, NewApiRouter(deps))
}

func setup(app *fiber.App, router ...Router) {
	for _, r := range router {
		r.InstallRouter(app)
	}
}
