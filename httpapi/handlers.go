package httpapi

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2"

	"github.com/kiezwerk/kiez/catalog"
)

func (s *Server) handleHome(c *fiber.Ctx) error {
	c.Type("html")
	return c.SendString("<h1>Kiez store catalog API</h1>")
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// handleShowJSON dumps the whole document, a debug view of everything the
// catalog currently holds.
func (s *Server) handleShowJSON(c *fiber.Ctx) error {
	doc, err := s.svc.Snapshot(c.Context())
	if err != nil {
		return s.respondError(c, err, "catalog", "")
	}
	return c.JSON(doc)
}

// decodeBody parses a JSON request body into v. An empty body is accepted
// and leaves v untouched, so a bodyless PATCH is a no-op merge.
func decodeBody(c *fiber.Ctx, v any) error {
	body := c.Body()
	if len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, v); err != nil {
		return &catalog.ValidationError{Fields: []string{"body"}}
	}
	return nil
}

// --- flattening reads ---

func (s *Server) handleAllDistricts(c *fiber.Ctx) error {
	districts, err := s.svc.Districts(c.Context())
	if err != nil {
		return s.respondError(c, err, catalog.KindDistrict, "")
	}
	return c.JSON(districts)
}

func (s *Server) handleAllStores(c *fiber.Ctx) error {
	stores, err := s.svc.Stores(c.Context())
	if err != nil {
		return s.respondError(c, err, catalog.KindStore, "")
	}
	return c.JSON(stores)
}

func (s *Server) handleAllProducts(c *fiber.Ctx) error {
	products, err := s.svc.Products(c.Context())
	if err != nil {
		return s.respondError(c, err, catalog.KindProduct, "")
	}
	return c.JSON(products)
}

// --- district ---

func (s *Server) handleGetDistrict(c *fiber.Ctx) error {
	id := c.Params("district_id")
	dist, err := s.svc.GetDistrict(c.Context(), id)
	if err != nil {
		return s.respondError(c, err, catalog.KindDistrict, id)
	}
	return c.JSON(dist)
}

func (s *Server) handlePutDistrict(c *fiber.Ctx) error {
	id := c.Params("district_id")
	var in catalog.DistrictCreate
	if err := decodeBody(c, &in); err != nil {
		return s.respondError(c, err, catalog.KindDistrict, id)
	}
	dist, err := s.svc.CreateDistrict(c.Context(), id, in)
	if err != nil {
		return s.respondError(c, err, catalog.KindDistrict, id)
	}
	return c.Status(fiber.StatusCreated).JSON(dist)
}

func (s *Server) handlePatchDistrict(c *fiber.Ctx) error {
	id := c.Params("district_id")
	var patch catalog.DistrictPatch
	if err := decodeBody(c, &patch); err != nil {
		return s.respondError(c, err, catalog.KindDistrict, id)
	}
	dist, err := s.svc.PatchDistrict(c.Context(), id, patch)
	if err != nil {
		return s.respondError(c, err, catalog.KindDistrict, id)
	}
	return c.JSON(dist)
}

func (s *Server) handleDeleteDistrict(c *fiber.Ctx) error {
	id := c.Params("district_id")
	if err := s.svc.DeleteDistrict(c.Context(), id); err != nil {
		return s.respondError(c, err, catalog.KindDistrict, id)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// --- store ---

func (s *Server) handleGetStore(c *fiber.Ctx) error {
	id := c.Params("store_id")
	st, err := s.svc.GetStore(c.Context(), id)
	if err != nil {
		return s.respondError(c, err, catalog.KindStore, id)
	}
	return c.JSON(st)
}

func (s *Server) handlePutStore(c *fiber.Ctx) error {
	id := c.Params("store_id")
	var in catalog.StoreCreate
	if err := decodeBody(c, &in); err != nil {
		return s.respondError(c, err, catalog.KindStore, id)
	}
	st, err := s.svc.CreateStore(c.Context(), id, in)
	if err != nil {
		return s.respondError(c, err, catalog.KindStore, id)
	}
	return c.Status(fiber.StatusCreated).JSON(st)
}

func (s *Server) handlePatchStore(c *fiber.Ctx) error {
	id := c.Params("store_id")
	var patch catalog.StorePatch
	if err := decodeBody(c, &patch); err != nil {
		return s.respondError(c, err, catalog.KindStore, id)
	}
	st, err := s.svc.PatchStore(c.Context(), id, patch)
	if err != nil {
		return s.respondError(c, err, catalog.KindStore, id)
	}
	return c.JSON(st)
}

func (s *Server) handleDeleteStore(c *fiber.Ctx) error {
	id := c.Params("store_id")
	if err := s.svc.DeleteStore(c.Context(), id); err != nil {
		return s.respondError(c, err, catalog.KindStore, id)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// --- product ---

func (s *Server) handleGetProduct(c *fiber.Ctx) error {
	item := c.Params("item")
	p, err := s.svc.GetProduct(c.Context(), item)
	if err != nil {
		return s.respondError(c, err, catalog.KindProduct, item)
	}
	return c.JSON(p)
}

func (s *Server) handlePutProduct(c *fiber.Ctx) error {
	item := c.Params("item")
	var in catalog.ProductCreate
	if err := decodeBody(c, &in); err != nil {
		return s.respondError(c, err, catalog.KindProduct, item)
	}
	p, err := s.svc.CreateProduct(c.Context(), item, in)
	if err != nil {
		return s.respondError(c, err, catalog.KindProduct, item)
	}
	return c.Status(fiber.StatusCreated).JSON(p)
}

func (s *Server) handlePatchProduct(c *fiber.Ctx) error {
	item := c.Params("item")
	var patch catalog.ProductPatch
	if err := decodeBody(c, &patch); err != nil {
		return s.respondError(c, err, catalog.KindProduct, item)
	}
	p, err := s.svc.PatchProduct(c.Context(), item, patch)
	if err != nil {
		return s.respondError(c, err, catalog.KindProduct, item)
	}
	return c.JSON(p)
}

func (s *Server) handleDeleteProduct(c *fiber.Ctx) error {
	item := c.Params("item")
	if err := s.svc.DeleteProduct(c.Context(), item); err != nil {
		return s.respondError(c, err, catalog.KindProduct, item)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
