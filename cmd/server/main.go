package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"reservationform/internal/api"
	"reservationform/internal/config"
	"reservationform/internal/logger"
	"reservationform/internal/repository"
	"reservationform/internal/service"

	"github.com/sirupsen/logrus"
)

func main() {
	cfg := config.LoadConfig()
	logger.SetupLogger(cfg.LogLevel)

	httpClient := &http.Client{Timeout: cfg.Backend.Timeout}
	repo := repository.NewReservationRepository(httpClient, cfg.Backend.BaseURL, cfg.Backend.CreatePath)
	validator := service.NewReservationValidator()
	store := service.NewFormStore(func(nav service.Navigator) *service.ReservationForm {
		return service.NewReservationForm(repo, nav,
			service.WithValidator(validator),
			service.WithListingPath(cfg.Backend.ListingPath))
	}, nil)

	limiter := api.NewRateLimiter(cfg.Server.RatePerSecond, cfg.Server.RateBurst)
	jobs := service.NewJobService(store, cfg.Session.IdleTTL)
	jobs.Limiter = limiter
	if err := jobs.Start(cfg.Session.SweepSchedule); err != nil {
		logrus.WithError(err).Fatal("Failed to schedule form sweep")
	}
	defer jobs.Stop()

	userReservationHandler := api.NewUserReservationHandler(store)
	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           api.NewRouter(userReservationHandler, limiter, cfg.Server.TrustProxy),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logrus.WithFields(logrus.Fields{
			"port":    cfg.Server.Port,
			"backend": cfg.Backend.BaseURL,
		}).Info("Server running")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.WithError(err).Fatal("Server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logrus.WithError(err).Error("Server shutdown failed")
	}
}
