package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/baechuer/tracking-service/internal/application/catalog"
	"github.com/baechuer/tracking-service/internal/transport/http/dto"
	"github.com/baechuer/tracking-service/internal/transport/http/response"
)

type CatalogHandler struct {
	resolver *catalog.Resolver
}

func NewCatalogHandler(resolver *catalog.Resolver) *CatalogHandler {
	return &CatalogHandler{resolver: resolver}
}

func (h *CatalogHandler) Descendants(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "category_id")
	ids, err := h.resolver.Descendants(r.Context(), id)
	if err != nil {
		response.Err(w, r, err)
		return
	}
	response.Data(w, http.StatusOK, dto.DescendantsResp{CategoryID: id, IDs: ids})
}
