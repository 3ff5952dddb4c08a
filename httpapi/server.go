// Package httpapi exposes the catalog over HTTP.
//
// Routes follow the resource layout of the catalog: one path per entity kind
// with PUT/GET/PATCH/DELETE, plus flattening reads, a full-document debug
// view, health, and Prometheus metrics. All domain errors are translated to
// machine-readable JSON envelopes; nothing internal leaks to clients.
package httpapi

import (
	"errors"
	"fmt"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/kiezwerk/kiez/catalog"
)

// Server wires the catalog service into a Fiber application.
type Server struct {
	app     *fiber.App
	svc     *catalog.Service
	logger  *zap.Logger
	metrics *metrics
}

// New creates a Server with all routes and middleware registered.
func New(svc *catalog.Service, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	s := &Server{
		app:     app,
		svc:     svc,
		logger:  logger,
		metrics: newMetrics(),
	}

	app.Use(s.withRequestID)
	app.Use(s.withObservability)

	app.Get("/", s.handleHome)
	app.Get("/health", s.handleHealth)
	app.Get("/showjson", s.handleShowJSON)
	app.Get("/metrics", adaptor.HTTPHandler(s.metrics.handler()))

	app.Get("/districts/all", s.handleAllDistricts)
	app.Get("/stores/all", s.handleAllStores)
	app.Get("/products/all", s.handleAllProducts)

	app.Get("/district/:district_id", s.handleGetDistrict)
	app.Put("/district/:district_id", s.handlePutDistrict)
	app.Patch("/district/:district_id", s.handlePatchDistrict)
	app.Delete("/district/:district_id", s.handleDeleteDistrict)

	app.Get("/store/:store_id", s.handleGetStore)
	app.Put("/store/:store_id", s.handlePutStore)
	app.Patch("/store/:store_id", s.handlePatchStore)
	app.Delete("/store/:store_id", s.handleDeleteStore)

	app.Get("/product/:item", s.handleGetProduct)
	app.Put("/product/:item", s.handlePutProduct)
	app.Patch("/product/:item", s.handlePatchProduct)
	app.Delete("/product/:item", s.handleDeleteProduct)

	return s
}

// App returns the underlying Fiber application, used by tests to issue
// in-process requests.
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen starts serving on addr and blocks.
func (s *Server) Listen(addr string) error {
	s.logger.Info("http server listening", zap.String("addr", addr))
	return s.app.Listen(addr)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// respondError translates a catalog error into a status code and a
// machine-readable envelope naming the identifier that caused it.
func (s *Server) respondError(c *fiber.Ctx, err error, kind catalog.Kind, id string) error {
	var ve *catalog.ValidationError
	switch {
	case errors.As(err, &ve):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": fmt.Sprintf("invalid %s request: check fields", kind),
			"fields":  ve.Fields,
		})
	case errors.Is(err, catalog.ErrParentNotFound):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": fmt.Sprintf("parent of %s %q not found", kind, id),
		})
	case errors.Is(err, catalog.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": fmt.Sprintf("%s %q not found", kind, id),
		})
	case errors.Is(err, catalog.ErrConflict):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"message": fmt.Sprintf("%s identifier %q already taken", kind, id),
		})
	case errors.Is(err, catalog.ErrStorageUnavailable):
		s.logger.Error("document store unavailable", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "document store unavailable",
		})
	default:
		s.logger.Error("unhandled error", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "internal server error",
		})
	}
}
