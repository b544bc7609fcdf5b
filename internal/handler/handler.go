// Package handler exposes the payroll core over HTTP. It holds no state of
// its own besides the optional result cache.
package handler

import (
	"context"
	"fmt"
	"time"

	"github.com/fasthttp/router"
	"github.com/rs/zerolog/log"
	"github.com/valyala/fasthttp"

	"github.com/xtc-codecheck/lohnfee-abrechnung-deutschland-sub001/internal/cache"
	"github.com/xtc-codecheck/lohnfee-abrechnung-deutschland-sub001/internal/ratetable"
)

// RateProvider is the read side of ratetable.Provider.
type RateProvider interface {
	Rates(year int) (*ratetable.RateTable, error)
	Years() []int
	Generation() uint64
}

type Deps struct {
	Port    int
	Rates   RateProvider
	Cache   cache.Cache
	Workers int
}

type Service struct {
	r       *router.Router
	port    int
	rates   RateProvider
	cache   cache.Cache
	workers int
}

func NewService(d Deps) *Service {
	s := &Service{
		r:       router.New(),
		port:    d.Port,
		rates:   d.Rates,
		cache:   d.Cache,
		workers: d.Workers,
	}
	s.mountRoutes()
	return s
}

// Handler returns the routed handler with recovery and request logging.
func (s *Service) Handler() fasthttp.RequestHandler {
	return RecoveryMiddleware(LoggingMiddleware(s.r.Handler))
}

func (s *Service) Start(ctx context.Context) error {
	server := &fasthttp.Server{
		Handler:            s.Handler(),
		Name:               "payroll-engine",
		ReadTimeout:        10 * time.Second,
		WriteTimeout:       30 * time.Second,
		MaxRequestBodySize: 8 << 20,
	}

	log.Info().Int("port", s.port).Msg("Starting payroll API")

	emergencyShutdown := make(chan error, 1)
	go func() {
		emergencyShutdown <- server.ListenAndServe(fmt.Sprintf(":%d", s.port))
	}()

	select {
	case <-ctx.Done():
		return server.Shutdown()
	case err := <-emergencyShutdown:
		return err
	}
}

func (s *Service) mountRoutes() {
	s.r.POST("/v1/payroll/calculate", s.calculate)
	s.r.POST("/v1/payroll/batch", s.batch)
	s.r.POST("/v1/payroll/compare", s.compare)
	s.r.POST("/v1/multi-employment", s.multiEmployment)
	s.r.POST("/v1/overtime", s.overtime)

	s.r.GET("/v1/rates", s.listRateYears)
	s.r.GET("/v1/rates/{year}", s.getRates)
	s.r.GET("/v1/schemes", s.listSchemes)

	s.r.GET("/health", s.health)
}
