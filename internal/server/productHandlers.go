package server

import (
	"encoding/json"
	"net/http"

	"github.com/pkg/errors"
	"pantry/internal/database"
	"pantry/internal/model"
)

type productsResponse struct {
	Products []model.CatalogProduct `json:"products"`
}

func (s Server) productsGet() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ps, err := s.DB.ProductsFind(r.Context())
		if err != nil {
			if errors.Is(err, database.ErrNotFound) || errors.Is(err, database.ErrCorrupt) {
				s.Logger.Debugf("productsGet: No usable catalog, err: %v", err)
				s.writeJsonResponse(w, productsResponse{Products: []model.CatalogProduct{}}, http.StatusOK)
				return
			}
			s.Logger.Errorf("productsGet: Error finding products, err: %v", err)
			internalError(w)
			return
		}
		s.writeJsonResponse(w, productsResponse{Products: ps}, http.StatusOK)
	}
}

func (s Server) productsReplace() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var ps []model.CatalogProduct
		if err := json.NewDecoder(r.Body).Decode(&ps); err != nil {
			s.Logger.Debugf("productsReplace: Error decoding JSON, err: %v", err)
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}
		if err := validateProducts(ps); err != nil {
			s.Logger.Debugf("productsReplace: Invalid catalog, err: %v", err)
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if err := s.DB.ProductsSave(r.Context(), ps); err != nil {
			s.Logger.Errorf("productsReplace: Error saving products, err: %v", err)
			internalError(w)
			return
		}
		s.refreshAfterCatalogChange(r)
		if ps == nil {
			ps = []model.CatalogProduct{}
		}
		s.writeJsonResponse(w, productsResponse{Products: ps}, http.StatusOK)
	}
}

func (s Server) productUpsert() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p := model.CatalogProduct{}
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			s.Logger.Debugf("productUpsert: Error decoding JSON, err: %v", err)
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}
		if p.ID == "" {
			http.Error(w, "Missing id", http.StatusBadRequest)
			return
		}
		if err := s.DB.ProductUpsert(r.Context(), p); err != nil {
			s.Logger.Errorf("productUpsert: Error upserting product, err: %v", err)
			internalError(w)
			return
		}
		s.refreshAfterCatalogChange(r)
		s.writeJsonResponse(w, p, http.StatusOK)
	}
}

func (s Server) productRemove() http.HandlerFunc {
	type request struct {
		ID string `json:"id"`
	}
	type response struct {
		Removed bool `json:"removed"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		req := request{}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.Logger.Debugf("productRemove: Error decoding JSON, err: %v", err)
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}
		removed, err := s.DB.ProductRemove(r.Context(), req.ID)
		if err != nil {
			if errors.Is(err, database.ErrCorrupt) {
				s.Logger.Errorf("productRemove: Catalog is corrupt, err: %v", err)
				http.Error(w, "Catalog is corrupt, replace it first", http.StatusConflict)
				return
			}
			s.Logger.Errorf("productRemove: Error removing product, err: %v", err)
			internalError(w)
			return
		}
		if removed {
			s.refreshAfterCatalogChange(r)
		}
		s.writeJsonResponse(w, response{Removed: removed}, http.StatusOK)
	}
}

// refreshAfterCatalogChange recomputes the tracker so new products get their
// start epoch right away. A failed refresh is retried by the next interval.
func (s Server) refreshAfterCatalogChange(r *http.Request) {
	if err := s.Tracker.RefreshNow(r.Context()); err != nil {
		s.Logger.Errorf("refreshAfterCatalogChange: Error refreshing tracker, err: %v, TraceID: %s",
			err, getTraceContext(r.Context()).traceID)
	}
}

func validateProducts(ps []model.CatalogProduct) error {
	seen := make(map[string]struct{}, len(ps))
	for i, p := range ps {
		if p.ID == "" {
			return errors.Errorf("product at index %d has no id", i)
		}
		if _, ok := seen[p.ID]; ok {
			return errors.Errorf("duplicate product id: %s", p.ID)
		}
		seen[p.ID] = struct{}{}
	}
	return nil
}
