package routes

import (
	"travel-planner-server/utils"

	"github.com/kataras/iris/v12"
)

// RegisterRoutes mounts the auth and travel plan API on app. Everything except
// register, login and health requires a bearer token with a live session.
func RegisterRoutes(app *iris.Application) {
	accessTokenVerifier := utils.NewAccessTokenVerifier()
	accessTokenVerifierMiddleware := accessTokenVerifier.Verify(func() interface{} {
		return new(utils.AccessToken)
	})

	app.Use(utils.MetricsMiddleware)

	app.Get("/health", func(ctx iris.Context) {
		ctx.JSON(iris.Map{"status": "ok"})
	})
	app.Get("/metrics", utils.MetricsHandler())

	auth := app.Party("/api/auth")
	{
		auth.Post("/register", Register)
		auth.Post("/login", Login)
		auth.Get("/me", accessTokenVerifierMiddleware, utils.SessionMiddleware, GetMe)
		auth.Put("/profile", accessTokenVerifierMiddleware, utils.SessionMiddleware, UpdateProfile)
		auth.Post("/logout", accessTokenVerifierMiddleware, utils.SessionMiddleware, Logout)
		auth.Get("/activity", accessTokenVerifierMiddleware, utils.SessionMiddleware, GetActivity)
	}

	travelPlans := app.Party("/api/travel-plans", accessTokenVerifierMiddleware, utils.SessionMiddleware)
	{
		travelPlans.Get("/", GetTravelPlans)
		travelPlans.Get("/{id}", GetTravelPlan)
		travelPlans.Post("/", CreateTravelPlan)
		travelPlans.Put("/{id}", UpdateTravelPlan)
		travelPlans.Delete("/{id}", DeleteTravelPlan)
		travelPlans.Post("/{id}/days", AddDay)
	}
}
