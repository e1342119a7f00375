// README: Process wiring; builds stores, services, event sinks and the HTTP handler from config.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"ridehail/internal/auth"
	"ridehail/internal/config"
	httptransport "ridehail/internal/http"
	"ridehail/internal/infra"
	"ridehail/internal/modules/pricing"
	"ridehail/internal/modules/rating"
	"ridehail/internal/modules/ride"
	"ridehail/internal/modules/routing"
	"ridehail/internal/modules/user"
	"ridehail/internal/modules/vehicle"
)

// Stores is created once per process and injected into every service.
type Stores struct {
	Users    *user.Store
	Vehicles *vehicle.Store
	Rides    *ride.Store
	Ratings  *rating.Store
	Pricing  *pricing.Store
}

func NewStores() Stores {
	return Stores{
		Users:    user.NewStore(),
		Vehicles: vehicle.NewStore(),
		Rides:    ride.NewStore(),
		Ratings:  rating.NewStore(),
		Pricing:  pricing.NewStore(),
	}
}

type Services struct {
	Users    *user.Service
	Vehicles *vehicle.Service
	Rides    *ride.Service
	Ratings  *rating.Service
	Pricing  *pricing.Service
}

func NewServices(st Stores, router ride.Router, events ride.EventSink) Services {
	users := user.NewService(st.Users)
	prices := pricing.NewService(st.Pricing)
	rides := ride.NewService(st.Rides, prices, router, events)
	return Services{
		Users:    users,
		Vehicles: vehicle.NewService(st.Vehicles, users),
		Rides:    rides,
		Ratings:  rating.NewService(st.Ratings, rides),
		Pricing:  prices,
	}
}

type App struct {
	Services Services
	Handler  http.Handler

	closers []func()
	journal ride.EventLog
	log     *slog.Logger
}

// New connects the optional backends named in cfg. Anything it opened is
// released by Close, including on a partial failure.
func New(ctx context.Context, cfg config.Config, log *slog.Logger) (*App, error) {
	a := &App{log: log}
	ok := false
	defer func() {
		if !ok {
			a.Close()
		}
	}()

	router, err := a.router(cfg)
	if err != nil {
		return nil, err
	}
	events, err := a.sinks(ctx, cfg)
	if err != nil {
		return nil, err
	}
	verifier, issuer, err := a.tokens(ctx, cfg)
	if err != nil {
		return nil, err
	}

	a.Services = NewServices(NewStores(), router, events)
	if geo, found := router.(ride.Geocoder); found {
		a.Services.Rides.UseGeocoder(geo)
	}
	if a.journal != nil {
		a.Services.Rides.UseEventLog(a.journal)
	}
	a.Handler = httptransport.NewServer(httptransport.ServerDeps{
		Users:    a.Services.Users,
		Vehicles: a.Services.Vehicles,
		Rides:    a.Services.Rides,
		Ratings:  a.Services.Ratings,
		Verifier: verifier,
		Issuer:   issuer,
		Logger:   log,
	}).Routes()
	ok = true
	return a, nil
}

func (a *App) router(cfg config.Config) (ride.Router, error) {
	if cfg.Maps.APIKey == "" {
		return routing.NewHaversine(), nil
	}
	m, err := routing.NewMapsEstimator(cfg.Maps.APIKey)
	if err != nil {
		return nil, err
	}
	a.log.Info("route estimates and geocoding from google maps")
	return m, nil
}

func (a *App) sinks(ctx context.Context, cfg config.Config) (ride.EventSink, error) {
	sinks := ride.MultiSink{ride.LogSink{Logger: a.log.With("module", "ride_events")}}
	if cfg.DB.DSN != "" {
		db, err := infra.NewDB(ctx, cfg.DB.DSN)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, db.Close)
		journal := infra.NewPostgresJournal(db)
		a.journal = journal
		sinks = append(sinks, journal)
		a.log.Info("ride event journal enabled")
	}
	if cfg.AMQP.URL != "" {
		pub, err := infra.NewAMQPPublisher(cfg.AMQP.URL, cfg.AMQP.Exchange)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func() {
			if err := pub.Close(); err != nil {
				a.log.Warn("close amqp publisher", "error", err)
			}
		})
		sinks = append(sinks, pub)
		a.log.Info("ride event publishing enabled", "exchange", cfg.AMQP.Exchange)
	}
	return sinks, nil
}

func (a *App) tokens(ctx context.Context, cfg config.Config) (auth.Verifier, auth.Issuer, error) {
	switch cfg.Auth.Mode {
	case config.AuthJWT:
		m := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.SessionTTL)
		return m, m, nil
	case config.AuthFirebase:
		v, err := infra.NewFirebaseVerifier(ctx, cfg.Firebase.ProjectID, cfg.Firebase.CredentialsFile)
		if err != nil {
			return nil, nil, fmt.Errorf("firebase init: %w", err)
		}
		return v, nil, nil
	default:
		rdb, err := infra.NewRedis(ctx, cfg.Redis.Addr)
		if err != nil {
			return nil, nil, err
		}
		a.closers = append(a.closers, func() { _ = rdb.Close() })
		s := auth.NewSessionStore(rdb, cfg.Auth.SessionTTL)
		return s, s, nil
	}
}

// Close releases backends in reverse order of opening.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
