// README: API gateway; registers HTTP routes and delegates to module services.
package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"ridehail/internal/auth"
	"ridehail/internal/http/handlers"
	"ridehail/internal/http/middleware"
	"ridehail/internal/modules/rating"
	"ridehail/internal/modules/ride"
	"ridehail/internal/modules/user"
	"ridehail/internal/modules/vehicle"
)

type ServerDeps struct {
	Users    *user.Service
	Vehicles *vehicle.Service
	Rides    *ride.Service
	Ratings  *rating.Service
	Verifier auth.Verifier
	// Issuer is nil when tokens are minted by an external identity provider.
	Issuer auth.Issuer
	Logger *slog.Logger
}

type Server struct {
	session *handlers.SessionHandler
	users   *handlers.UserHandler
	vehicle *handlers.VehicleHandler
	ride    *handlers.RideHandler
	driver  *handlers.DriverHandler
	rating  *handlers.RatingHandler

	verifier auth.Verifier
	log      *slog.Logger
}

func NewServer(deps ServerDeps) *Server {
	log := deps.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Server{
		session:  handlers.NewSessionHandler(deps.Users, deps.Issuer),
		users:    handlers.NewUserHandler(deps.Users, deps.Ratings),
		vehicle:  handlers.NewVehicleHandler(deps.Vehicles),
		ride:     handlers.NewRideHandler(deps.Rides),
		driver:   handlers.NewDriverHandler(deps.Rides),
		rating:   handlers.NewRatingHandler(deps.Ratings),
		verifier: deps.Verifier,
		log:      log,
	}
}

func (s *Server) Routes() http.Handler {
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logging(s.log), middleware.Recovery(s.log))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	api.POST("/users", s.session.Register)
	api.POST("/sessions", s.session.Login)

	authed := api.Group("")
	authed.Use(middleware.Auth(s.verifier))
	authed.DELETE("/sessions", s.session.Logout)

	authed.GET("/users/me", s.users.Me)
	authed.PATCH("/users/me", s.users.UpdateMe)
	authed.PUT("/users/me/online", s.users.SetOnline)
	authed.GET("/users/:id/ratings", s.users.Ratings)

	driverOnly := middleware.RequireRole(user.RoleDriver)
	authed.POST("/vehicles", driverOnly, s.vehicle.Create)
	authed.GET("/vehicles/mine", driverOnly, s.vehicle.Mine)
	authed.PATCH("/vehicles/:id", driverOnly, s.vehicle.Update)

	authed.POST("/rides", middleware.RequireRole(user.RolePassenger), s.ride.Create)
	authed.GET("/rides/active", s.ride.Active)
	authed.GET("/rides/history", s.ride.History)
	authed.GET("/rides/:id", s.ride.Get)
	authed.GET("/rides/:id/events", s.ride.Events)
	authed.POST("/rides/:id/cancel", s.ride.Cancel)
	authed.POST("/rides/:id/ratings", s.rating.Create)

	authed.POST("/rides/:id/accept", driverOnly, s.driver.Accept)
	authed.POST("/rides/:id/decline", driverOnly, s.driver.Decline)
	authed.POST("/rides/:id/arrived", driverOnly, s.driver.Arrived)
	authed.POST("/rides/:id/start", driverOnly, s.driver.Start)
	authed.POST("/rides/:id/complete", driverOnly, s.driver.Complete)

	return r
}
