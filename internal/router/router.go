// Package router defines how HTTP routes are registered for the API.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/costumerent/costume-market/internal/handler"
	"github.com/costumerent/costume-market/internal/middleware"
)

// Handlers groups everything the API exposes.
type Handlers struct {
	Auth         *handler.AuthHandler
	Costumes     *handler.CostumeHandler
	Reservations *handler.ReservationHandler
	Uploads      *handler.UploadHandler
}

// Middleware carries the redis backed middleware built by main.  Nil
// entries are skipped.
type Middleware struct {
	RateLimit  echo.MiddlewareFunc
	Cache      echo.MiddlewareFunc
	PurgeCache echo.MiddlewareFunc
}

// RegisterRoutes registers routes that live outside the versioned API.
func RegisterRoutes(e *echo.Echo, db handler.Pinger) {
	e.GET("/healthz", handler.Health(db))
}

// RegisterAPI mounts every /v1 route.  All of them see Identify and the
// rate limiter; protected ones also require a valid access token.
func RegisterAPI(e *echo.Echo, h Handlers, mw Middleware, jwtSecret string) {
	v1 := e.Group("/v1", middleware.Identify(jwtSecret))
	if mw.RateLimit != nil {
		v1.Use(mw.RateLimit)
	}
	auth := middleware.JWTAuth(jwtSecret)

	registerAuth(v1, h.Auth, auth)
	registerCostumes(v1, h.Costumes, auth, mw)
	registerReservations(v1, h.Reservations, auth, mw)
	v1.POST("/uploads/image", h.Uploads.Image, auth)
}

func registerAuth(v1 *echo.Group, a *handler.AuthHandler, auth echo.MiddlewareFunc) {
	g := v1.Group("/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	// accepts a refresh token in the body or revokes every session of the bearer
	g.POST("/logout", a.Logout)

	v1.GET("/me", a.Me, auth)
}

func registerCostumes(v1 *echo.Group, h *handler.CostumeHandler, auth echo.MiddlewareFunc, mw Middleware) {
	public := v1.Group("/costumes", nonNil(mw.Cache)...)
	public.GET("", h.List)
	public.GET("/search", h.Search)
	public.GET("/:id", h.Get)

	writes := v1.Group("/costumes", append([]echo.MiddlewareFunc{auth}, nonNil(mw.PurgeCache)...)...)
	writes.POST("", h.Create)
	writes.PUT("/:id", h.Update)
	writes.PATCH("/:id", h.Update)
	writes.DELETE("/:id", h.Delete)
	writes.PUT("/:id/reserve", h.MarkReserved)

	// owner view; never cached since the response depends on the caller
	v1.GET("/costumes/seller/:sellerId", h.BySeller, auth)
}

func registerReservations(v1 *echo.Group, h *handler.ReservationHandler, auth echo.MiddlewareFunc, mw Middleware) {
	v1.POST("/reservations", h.Create, append([]echo.MiddlewareFunc{auth}, nonNil(mw.PurgeCache)...)...)
	v1.GET("/reservations/:id", h.Get, auth)
	v1.GET("/my-reservations", h.ListMine, auth)
}

func nonNil(mws ...echo.MiddlewareFunc) []echo.MiddlewareFunc {
	out := make([]echo.MiddlewareFunc, 0, len(mws))
	for _, m := range mws {
		if m != nil {
			out = append(out, m)
		}
	}
	return out
}
