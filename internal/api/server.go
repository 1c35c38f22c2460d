package api

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"

	"github.com/OshiSharma1222/starquik/internal/metrics"
)

type Config struct {
	Host string `envconfig:"SERVER_HOST" default:"0.0.0.0"`
	Port int    `envconfig:"SERVER_PORT" default:"5000"`
}

const shutdownTimeout = 10 * time.Second

type Server struct {
	cfg     Config
	echo    *echo.Echo
	handler *Handler
	logger  *logrus.Logger
}

func NewServer(cfg Config, handler *Handler, logger *logrus.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = errorHandler(logger)

	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(metrics.HTTPMiddleware())
	e.Use(requestLogger(logger))

	handler.Register(e)

	return &Server{
		cfg:     cfg,
		echo:    e,
		handler: handler,
		logger:  logger,
	}
}

// Echo exposes the router, mostly for tests.
func (s *Server) Echo() *echo.Echo {
	return s.echo
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	addr := net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))

	errCh := make(chan error, 1)
	go func() {
		s.logger.Infof("api server listening on %s", addr)
		err := s.echo.Start(addr)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.logger.Info("shutting down api server")
	return s.echo.Shutdown(shutdownCtx)
}

func requestLogger(logger *logrus.Logger) echo.MiddlewareFunc {
	log := logger.WithField("pkg", "api")
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}
			log.WithFields(logrus.Fields{
				"method": c.Request().Method,
				"path":   c.Path(),
				"status": c.Response().Status,
				"took":   time.Since(start).String(),
			}).Debug("request")
			return nil
		}
	}
}
