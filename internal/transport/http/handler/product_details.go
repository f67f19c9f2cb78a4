package handler

import (
	"net/http"

	"github.com/go-shop-api/internal/application/productdetail"
	"github.com/go-shop-api/internal/domain"
)

type ProductDetailHandler struct {
	svc productdetail.Service
}

func NewProductDetailHandler(svc productdetail.Service) *ProductDetailHandler {
	return &ProductDetailHandler{svc: svc}
}

func (h *ProductDetailHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateProductDetailRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	d, err := h.svc.Create(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, DataEnvelope{Message: "product detail created", Data: d})
}

func (h *ProductDetailHandler) List(w http.ResponseWriter, r *http.Request) {
	q, err := parseListQuery(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	page, err := h.svc.List(r.Context(), q)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, DataEnvelope{Message: "product details", Data: page})
}

func (h *ProductDetailHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	d, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, DataEnvelope{Message: "product detail", Data: d})
}

func (h *ProductDetailHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	var req domain.ProductDetailFields
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	d, err := h.svc.Update(r.Context(), id, req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, DataEnvelope{Message: "product detail updated", Data: d})
}

func (h *ProductDetailHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if err := h.svc.Delete(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "product detail deleted"})
}
