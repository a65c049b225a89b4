package pricelist

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/tilly/internal/catalog"
	"github.com/MrJamesThe3rd/tilly/internal/importer"
	"github.com/MrJamesThe3rd/tilly/internal/money"
)

type Handler struct {
	importSvc  *importer.Service
	catalogSvc *catalog.Service
}

func NewHandler(importSvc *importer.Service, catalogSvc *catalog.Service) *Handler {
	return &Handler{
		importSvc:  importSvc,
		catalogSvc: catalogSvc,
	}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.importPriceList)
	r.Post("/confirm", h.confirmImport)
}

type productResponse struct {
	ID        uuid.UUID   `json:"id"`
	SKU       string      `json:"sku"`
	Name      string      `json:"name"`
	UnitPrice money.Money `json:"unit_price"`
	CreatedAt time.Time   `json:"created_at"`
}

type importSuccessResponse struct {
	Imported int               `json:"imported"`
	Products []productResponse `json:"products"`
}

type createParamsDTO struct {
	SKU       string      `json:"sku"`
	Name      string      `json:"name"`
	UnitPrice money.Money `json:"unit_price"`
}

type conflictDTO struct {
	Incoming createParamsDTO `json:"incoming"`
	Existing productResponse `json:"existing"`
}

type importConflictResponse struct {
	New       []createParamsDTO `json:"new"`
	Conflicts []conflictDTO     `json:"conflicts"`
}

type confirmRequest struct {
	Params []createParamsDTO `json:"params"`
}

func (h *Handler) importPriceList(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		http.Error(w, "failed to parse form: "+err.Error(), http.StatusBadRequest)
		return
	}

	supplier := importer.Supplier(r.FormValue("supplier"))
	if supplier == "" {
		http.Error(w, "supplier field is required", http.StatusBadRequest)
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "file field is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	params, err := h.importSvc.Import(supplier, file)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	result, err := h.catalogSvc.ImportBatch(r.Context(), params)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if len(result.Conflicts) > 0 {
		resp := importConflictResponse{
			New:       make([]createParamsDTO, 0, len(result.New)),
			Conflicts: make([]conflictDTO, 0, len(result.Conflicts)),
		}
		for _, p := range result.New {
			resp.New = append(resp.New, toParamsDTO(p))
		}

		for _, c := range result.Conflicts {
			resp.Conflicts = append(resp.Conflicts, conflictDTO{
				Incoming: toParamsDTO(c.Incoming),
				Existing: toProductResponse(c.Existing),
			})
		}

		writeJSON(w, http.StatusConflict, resp)

		return
	}

	writeJSON(w, http.StatusCreated, toSuccessResponse(result.Imported))
}

// confirmImport applies a resolved conflict set: existing SKUs get their
// price updated, new ones are created.
func (h *Handler) confirmImport(w http.ResponseWriter, r *http.Request) {
	var req confirmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	params := make([]catalog.CreateParams, 0, len(req.Params))
	for _, p := range req.Params {
		params = append(params, catalog.CreateParams{
			SKU:       p.SKU,
			Name:      p.Name,
			UnitPrice: p.UnitPrice,
		})
	}

	products, err := h.catalogSvc.ApplyPriceUpdates(r.Context(), params)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, toSuccessResponse(products))
}

func toSuccessResponse(products []*catalog.Product) importSuccessResponse {
	responses := make([]productResponse, 0, len(products))
	for _, p := range products {
		responses = append(responses, toProductResponse(p))
	}

	return importSuccessResponse{
		Imported: len(products),
		Products: responses,
	}
}

func toProductResponse(p *catalog.Product) productResponse {
	return productResponse{
		ID:        p.ID,
		SKU:       p.SKU,
		Name:      p.Name,
		UnitPrice: p.UnitPrice,
		CreatedAt: p.CreatedAt,
	}
}

func toParamsDTO(p catalog.CreateParams) createParamsDTO {
	return createParamsDTO{
		SKU:       p.SKU,
		Name:      p.Name,
		UnitPrice: p.UnitPrice,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
