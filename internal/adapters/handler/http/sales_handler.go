package http

import (
	"net/http"

	"github.com/vncsmyrnk/salesvote/internal/core/domain"
	"github.com/vncsmyrnk/salesvote/internal/core/ports"
	"github.com/vncsmyrnk/salesvote/internal/core/services"
)

type SalesHandler struct {
	service ports.SalesService
}

func NewSalesHandler(service ports.SalesService) *SalesHandler {
	return &SalesHandler{
		service: service,
	}
}

type salesResponse struct {
	Suppliers []domain.SupplierSummary `json:"suppliers"`
	Total     int                      `json:"total"`
	Count     string                   `json:"count"`
	Available bool                     `json:"available"`
	Detail    string                   `json:"detail,omitempty"`
}

// GetSales godoc
// @Summary      Supplier sales summaries
// @Description  Returns the top suppliers by warehouse sales. count is a positive integer or ALL, 20 by default.
// @Tags         sales
// @Param        count  query  string  false  "number of suppliers or ALL"
// @Success      200
// @Failure      400
// @Router       /api/sales [get]
func (h *SalesHandler) GetSales(w http.ResponseWriter, r *http.Request) {
	count, err := services.ParseWindowSize(r.URL.Query().Get("count"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	view := h.service.View(count)
	resp := salesResponse{
		Suppliers: view.Suppliers,
		Total:     view.Total,
		Count:     services.FormatWindowSize(count),
		Available: view.Err == nil,
	}
	if view.Err != nil {
		resp.Detail = view.Err.Error()
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *SalesHandler) Reload(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Reload(r.Context()); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	view := h.service.View(domain.DefaultWindow)
	writeJSON(w, http.StatusOK, map[string]int{"total": view.Total})
}
