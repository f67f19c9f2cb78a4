package handler

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-shop-api/internal/application/product"
	"github.com/go-shop-api/internal/domain"
	"github.com/go-shop-api/internal/transport/http/middleware"
)

// UploadLimits bounds multipart product requests.
type UploadLimits struct {
	MaxFileBytes int64
	MaxFiles     int
}

// ProductHandler serves the catalog endpoints.
type ProductHandler struct {
	svc    product.Service
	limits UploadLimits
}

func NewProductHandler(svc product.Service, limits UploadLimits) *ProductHandler {
	return &ProductHandler{svc: svc, limits: limits}
}

func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	q, err := parseListQuery(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	var customerID string
	if actor, ok := middleware.ActorFromContext(r.Context()); ok && actor.Principal == domain.PrincipalCustomer {
		customerID = actor.ID
	}
	page, err := h.svc.List(r.Context(), q, customerID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, DataEnvelope{Message: "products", Data: page})
}

func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	p, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, DataEnvelope{Message: "product", Data: p})
}

func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	in, files, err := h.readForm(w, r)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	p, err := h.svc.Create(r.Context(), in, files)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, DataEnvelope{Message: "product created", Data: p})
}

func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	in, files, err := h.readForm(w, r)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	p, err := h.svc.Update(r.Context(), id, in, files)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, DataEnvelope{Message: "product updated", Data: p})
}

func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if err := h.svc.Delete(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "product deleted"})
}

// readForm parses the multipart body into product fields and the "files"
// uploads. Each file is read up to one byte past the limit so the service
// can reject it by size.
func (h *ProductHandler) readForm(w http.ResponseWriter, r *http.Request) (domain.ProductInput, []domain.ImageUpload, error) {
	var in domain.ProductInput
	maxBody := h.limits.MaxFileBytes*int64(h.limits.MaxFiles+1) + 1<<20
	r.Body = http.MaxBytesReader(w, r.Body, maxBody)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return in, nil, fmt.Errorf("request body too large: %w", domain.ErrBadRequest)
		}
		return in, nil, fmt.Errorf("invalid multipart form: %w", domain.ErrBadRequest)
	}
	form := r.MultipartForm

	var err error
	in.Title = optString(form, "title")
	in.Description = optString(form, "description")
	in.SKU = optString(form, "sku")
	in.AdditionalInfo = optString(form, "additional_info")
	in.Color = listField(form, "color")
	in.Tags = listField(form, "tags")
	if in.Price, err = formFloat(form, "price"); err != nil {
		return in, nil, err
	}
	if in.OriginPrice, err = formFloat(form, "origin_price"); err != nil {
		return in, nil, err
	}
	if in.Stock, err = formInt(form, "stock"); err != nil {
		return in, nil, err
	}
	if in.Discount, err = formInt(form, "discount"); err != nil {
		return in, nil, err
	}
	if v := formValue(form, "category_id"); v != "" {
		if in.CategoryID, err = optUint(v, "category_id"); err != nil {
			return in, nil, err
		}
	}

	headers := form.File["files"]
	if len(headers) > h.limits.MaxFiles {
		return in, nil, fmt.Errorf("at most %d images are allowed: %w", h.limits.MaxFiles, domain.ErrBadRequest)
	}
	files := make([]domain.ImageUpload, 0, len(headers))
	for _, fh := range headers {
		data, err := readPart(fh, h.limits.MaxFileBytes+1)
		if err != nil {
			return in, nil, err
		}
		files = append(files, domain.ImageUpload{Filename: fh.Filename, Data: data})
	}
	return in, files, nil
}

func readPart(fh *multipart.FileHeader, limit int64) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", fh.Filename, domain.ErrBadRequest)
	}
	defer f.Close()
	return io.ReadAll(io.LimitReader(f, limit))
}

func formValue(form *multipart.Form, key string) string {
	if vs := form.Value[key]; len(vs) > 0 {
		return strings.TrimSpace(vs[0])
	}
	return ""
}

func optString(form *multipart.Form, key string) *string {
	if _, ok := form.Value[key]; !ok {
		return nil
	}
	v := formValue(form, key)
	return &v
}

// listField accepts repeated keys as well as one comma-separated value.
func listField(form *multipart.Form, key string) []string {
	vs, ok := form.Value[key]
	if !ok {
		return nil
	}
	out := []string{}
	for _, v := range vs {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func formFloat(form *multipart.Form, key string) (*float64, error) {
	return optFloat(formValue(form, key), key)
}

func formInt(form *multipart.Form, key string) (*int, error) {
	v := formValue(form, key)
	if v == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return nil, fmt.Errorf("%s must be an integer: %w", key, domain.ErrBadRequest)
	}
	return &n, nil
}
