package handlers

import (
	"errors"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/lifecarechoice/leadgate/internal/export"
	"github.com/lifecarechoice/leadgate/internal/models"
	"github.com/lifecarechoice/leadgate/internal/repositories"
	pkghttp "github.com/lifecarechoice/leadgate/pkg/http"
)

const (
	defaultLeadPageSize = 50
	maxLeadPageSize     = 500
)

// AdminLeadHandler serves the operator-facing lead query endpoints. These
// sit behind the admin key middleware; nothing here is reachable by form
// visitors.
type AdminLeadHandler struct {
	leads    *repositories.LeadRepository
	exporter *export.CSVExporter
}

func NewAdminLeadHandler(leads *repositories.LeadRepository, exporter *export.CSVExporter) *AdminLeadHandler {
	return &AdminLeadHandler{leads: leads, exporter: exporter}
}

type LeadListResponse struct {
	OK    bool           `json:"ok"`
	Count int            `json:"count"`
	Leads []*models.Lead `json:"leads"`
}

// List returns stored leads newest first, filtered by the optional query
// parameters start, end, email, and product.
// @Summary List stored leads
// @Param start query string false "RFC 3339 lower bound on created_at"
// @Param end query string false "RFC 3339 upper bound on created_at"
// @Param email query string false "Exact email match"
// @Param product query string false "Product interest"
// @Param limit query int false "Page size (default 50, max 500)"
// @Param offset query int false "Rows to skip"
// @Produce json
// @Success 200 {object} LeadListResponse
// @Router /api/admin/leads [get]
func (h *AdminLeadHandler) List(w http.ResponseWriter, r *http.Request) {
	filter, err := parseLeadFilter(r)
	if err != nil {
		pkghttp.WriteError(w, http.StatusBadRequest, "BAD_QUERY", err.Error())
		return
	}

	leads, err := h.leads.Query(r.Context(), filter)
	if err != nil {
		pkghttp.WriteInternalError(w)
		return
	}
	if leads == nil {
		leads = []*models.Lead{}
	}

	pkghttp.WriteJSON(w, http.StatusOK, LeadListResponse{
		OK:    true,
		Count: len(leads),
		Leads: leads,
	})
}

// Get returns a single lead by id.
func (h *AdminLeadHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	lead, err := h.leads.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			pkghttp.WriteError(w, http.StatusNotFound, "NOT_FOUND", "Lead not found")
			return
		}
		pkghttp.WriteInternalError(w)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"ok":   true,
		"lead": lead,
	})
}

// Delete removes a lead by id. The CSV copy is append-only and is not
// touched.
func (h *AdminLeadHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	deleted, err := h.leads.DeleteByID(r.Context(), id)
	if err != nil {
		pkghttp.WriteInternalError(w)
		return
	}
	if !deleted {
		pkghttp.WriteError(w, http.StatusNotFound, "NOT_FOUND", "Lead not found")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"ok": true,
		"id": id,
	})
}

// ListExports returns the available monthly CSV export files.
func (h *AdminLeadHandler) ListExports(w http.ResponseWriter, r *http.Request) {
	files, err := h.exporter.ListFiles()
	if err != nil {
		pkghttp.WriteInternalError(w)
		return
	}
	if files == nil {
		files = []string{}
	}

	pkghttp.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"ok":    true,
		"files": files,
	})
}

// Export streams the current month's CSV file.
func (h *AdminLeadHandler) Export(w http.ResponseWriter, r *http.Request) {
	path := h.exporter.CurrentPath()
	if _, err := os.Stat(path); err != nil {
		pkghttp.WriteError(w, http.StatusNotFound, "NOT_FOUND", "No export file for the current month")
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", "attachment")
	http.ServeFile(w, r, path)
}

func parseLeadFilter(r *http.Request) (models.LeadFilter, error) {
	filter := models.LeadFilter{
		Limit: defaultLeadPageSize,
	}

	q := r.URL.Query()

	if v := q.Get("start"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return filter, errors.New("invalid start parameter, expected RFC 3339")
		}
		filter.StartDate = &t
	}
	if v := q.Get("end"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return filter, errors.New("invalid end parameter, expected RFC 3339")
		}
		filter.EndDate = &t
	}

	filter.Email = q.Get("email")
	filter.ProductInterest = q.Get("product")

	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return filter, errors.New("invalid limit parameter")
		}
		if n > maxLeadPageSize {
			n = maxLeadPageSize
		}
		filter.Limit = n
	}
	if v := q.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return filter, errors.New("invalid offset parameter")
		}
		filter.Offset = n
	}

	return filter, nil
}
