// Package lambdaapi serves the catalog from AWS Lambda behind API Gateway.
//
// It exposes the same resource routes as the HTTP server, translated to the
// API Gateway proxy request/response shapes. Deployments that pair it with
// the dynamo document store get a fully serverless catalog.
package lambdaapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"go.uber.org/zap"

	"github.com/kiezwerk/kiez/catalog"
)

// Handler routes API Gateway proxy events to catalog operations.
type Handler struct {
	svc    *catalog.Service
	logger *zap.Logger
}

// NewHandler creates a Lambda handler on top of the catalog service.
func NewHandler(svc *catalog.Service, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{svc: svc, logger: logger}
}

// Handle dispatches a single proxy event. It never returns a non-nil error;
// failures are reported as HTTP status codes so API Gateway does not retry.
func (h *Handler) Handle(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	method := req.HTTPMethod
	path := strings.Trim(req.Path, "/")
	segments := strings.Split(path, "/")

	h.logger.Info("lambda request",
		zap.String("method", method),
		zap.String("path", req.Path),
	)

	switch {
	case method == http.MethodGet && path == "districts/all":
		districts, err := h.svc.Districts(ctx)
		if err != nil {
			return h.fail(err, catalog.KindDistrict, ""), nil
		}
		return respond(http.StatusOK, districts), nil
	case method == http.MethodGet && path == "stores/all":
		stores, err := h.svc.Stores(ctx)
		if err != nil {
			return h.fail(err, catalog.KindStore, ""), nil
		}
		return respond(http.StatusOK, stores), nil
	case method == http.MethodGet && path == "products/all":
		products, err := h.svc.Products(ctx)
		if err != nil {
			return h.fail(err, catalog.KindProduct, ""), nil
		}
		return respond(http.StatusOK, products), nil
	case method == http.MethodGet && path == "showjson":
		doc, err := h.svc.Snapshot(ctx)
		if err != nil {
			return h.fail(err, "catalog", ""), nil
		}
		return respond(http.StatusOK, doc), nil
	case method == http.MethodGet && path == "health":
		return respond(http.StatusOK, map[string]string{"status": "ok"}), nil
	}

	if len(segments) != 2 {
		return respond(http.StatusNotFound, map[string]string{"message": "no such route"}), nil
	}
	kind, id := segments[0], segments[1]

	switch kind {
	case "district":
		return h.district(ctx, method, id, req.Body), nil
	case "store":
		return h.store(ctx, method, id, req.Body), nil
	case "product":
		return h.product(ctx, method, id, req.Body), nil
	default:
		return respond(http.StatusNotFound, map[string]string{"message": "no such route"}), nil
	}
}

func (h *Handler) district(ctx context.Context, method, id, body string) events.APIGatewayProxyResponse {
	switch method {
	case http.MethodGet:
		dist, err := h.svc.GetDistrict(ctx, id)
		if err != nil {
			return h.fail(err, catalog.KindDistrict, id)
		}
		return respond(http.StatusOK, dist)
	case http.MethodPut:
		var in catalog.DistrictCreate
		if err := decodeBody(body, &in); err != nil {
			return h.fail(err, catalog.KindDistrict, id)
		}
		dist, err := h.svc.CreateDistrict(ctx, id, in)
		if err != nil {
			return h.fail(err, catalog.KindDistrict, id)
		}
		return respond(http.StatusCreated, dist)
	case http.MethodPatch:
		var patch catalog.DistrictPatch
		if err := decodeBody(body, &patch); err != nil {
			return h.fail(err, catalog.KindDistrict, id)
		}
		dist, err := h.svc.PatchDistrict(ctx, id, patch)
		if err != nil {
			return h.fail(err, catalog.KindDistrict, id)
		}
		return respond(http.StatusOK, dist)
	case http.MethodDelete:
		if err := h.svc.DeleteDistrict(ctx, id); err != nil {
			return h.fail(err, catalog.KindDistrict, id)
		}
		return respond(http.StatusNoContent, nil)
	default:
		return respond(http.StatusMethodNotAllowed, map[string]string{"message": "method not allowed"})
	}
}

func (h *Handler) store(ctx context.Context, method, id, body string) events.APIGatewayProxyResponse {
	switch method {
	case http.MethodGet:
		st, err := h.svc.GetStore(ctx, id)
		if err != nil {
			return h.fail(err, catalog.KindStore, id)
		}
		return respond(http.StatusOK, st)
	case http.MethodPut:
		var in catalog.StoreCreate
		if err := decodeBody(body, &in); err != nil {
			return h.fail(err, catalog.KindStore, id)
		}
		st, err := h.svc.CreateStore(ctx, id, in)
		if err != nil {
			return h.fail(err, catalog.KindStore, id)
		}
		return respond(http.StatusCreated, st)
	case http.MethodPatch:
		var patch catalog.StorePatch
		if err := decodeBody(body, &patch); err != nil {
			return h.fail(err, catalog.KindStore, id)
		}
		st, err := h.svc.PatchStore(ctx, id, patch)
		if err != nil {
			return h.fail(err, catalog.KindStore, id)
		}
		return respond(http.StatusOK, st)
	case http.MethodDelete:
		if err := h.svc.DeleteStore(ctx, id); err != nil {
			return h.fail(err, catalog.KindStore, id)
		}
		return respond(http.StatusNoContent, nil)
	default:
		return respond(http.StatusMethodNotAllowed, map[string]string{"message": "method not allowed"})
	}
}

func (h *Handler) product(ctx context.Context, method, item, body string) events.APIGatewayProxyResponse {
	switch method {
	case http.MethodGet:
		p, err := h.svc.GetProduct(ctx, item)
		if err != nil {
			return h.fail(err, catalog.KindProduct, item)
		}
		return respond(http.StatusOK, p)
	case http.MethodPut:
		var in catalog.ProductCreate
		if err := decodeBody(body, &in); err != nil {
			return h.fail(err, catalog.KindProduct, item)
		}
		p, err := h.svc.CreateProduct(ctx, item, in)
		if err != nil {
			return h.fail(err, catalog.KindProduct, item)
		}
		return respond(http.StatusCreated, p)
	case http.MethodPatch:
		var patch catalog.ProductPatch
		if err := decodeBody(body, &patch); err != nil {
			return h.fail(err, catalog.KindProduct, item)
		}
		p, err := h.svc.PatchProduct(ctx, item, patch)
		if err != nil {
			return h.fail(err, catalog.KindProduct, item)
		}
		return respond(http.StatusOK, p)
	case http.MethodDelete:
		if err := h.svc.DeleteProduct(ctx, item); err != nil {
			return h.fail(err, catalog.KindProduct, item)
		}
		return respond(http.StatusNoContent, nil)
	default:
		return respond(http.StatusMethodNotAllowed, map[string]string{"message": "method not allowed"})
	}
}

func decodeBody(body string, v any) error {
	if body == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(body), v); err != nil {
		return &catalog.ValidationError{Fields: []string{"body"}}
	}
	return nil
}

// fail maps a catalog error onto the same status codes the HTTP server uses.
func (h *Handler) fail(err error, kind catalog.Kind, id string) events.APIGatewayProxyResponse {
	var ve *catalog.ValidationError
	switch {
	case errors.As(err, &ve):
		return respond(http.StatusBadRequest, map[string]any{
			"message": fmt.Sprintf("invalid %s request: check fields", kind),
			"fields":  ve.Fields,
		})
	case errors.Is(err, catalog.ErrParentNotFound):
		return respond(http.StatusBadRequest, map[string]string{
			"message": fmt.Sprintf("parent of %s %q not found", kind, id),
		})
	case errors.Is(err, catalog.ErrNotFound):
		return respond(http.StatusNotFound, map[string]string{
			"message": fmt.Sprintf("%s %q not found", kind, id),
		})
	case errors.Is(err, catalog.ErrConflict):
		return respond(http.StatusConflict, map[string]string{
			"message": fmt.Sprintf("%s identifier %q already taken", kind, id),
		})
	case errors.Is(err, catalog.ErrStorageUnavailable):
		h.logger.Error("document store unavailable", zap.Error(err))
		return respond(http.StatusInternalServerError, map[string]string{
			"message": "document store unavailable",
		})
	default:
		h.logger.Error("unhandled error", zap.Error(err))
		return respond(http.StatusInternalServerError, map[string]string{
			"message": "internal server error",
		})
	}
}

func respond(status int, body any) events.APIGatewayProxyResponse {
	resp := events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    map[string]string{"Content-Type": "application/json"},
	}
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return events.APIGatewayProxyResponse{
				StatusCode: http.StatusInternalServerError,
				Headers:    map[string]string{"Content-Type": "application/json"},
				Body:       `{"message":"internal server error"}`,
			}
		}
		resp.Body = string(b)
	}
	return resp
}
