package server

import (
	"encoding/json"
	"net/http"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"pantry/internal/model"
	"pantry/internal/shoppinglist"
)

type itemIDRequest struct {
	ID string `json:"id"`
}

func (s Server) decodeItemID(w http.ResponseWriter, r *http.Request, caller string) (string, bool) {
	req := itemIDRequest{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.Logger.Debugf("%s: Error decoding JSON, err: %v", caller, err)
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return "", false
	}
	if req.ID == "" {
		http.Error(w, "Missing id", http.StatusBadRequest)
		return "", false
	}
	return req.ID, true
}

func (s Server) listGet() http.HandlerFunc {
	type response struct {
		Entries []model.ShoppingListEntry `json:"entries"`
		Count   int                       `json:"count"`
		Total   decimal.Decimal           `json:"total"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		entries, err := s.List.Entries(r.Context())
		if err != nil {
			s.Logger.Errorf("listGet: Error reading shopping list, err: %v", err)
			internalError(w)
			return
		}
		totals := shoppinglist.TotalsOf(entries)
		s.writeJsonResponse(w, response{Entries: entries, Count: totals.Count, Total: totals.Total}, http.StatusOK)
	}
}

func (s Server) listAdd() http.HandlerFunc {
	type response struct {
		Outcome shoppinglist.Outcome `json:"outcome"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := s.decodeItemID(w, r, "listAdd")
		if !ok {
			return
		}
		outcome, err := s.List.AddToList(r.Context(), id)
		if err != nil {
			s.Logger.Errorf("listAdd: Error adding to shopping list, err: %v", err)
			internalError(w)
			return
		}
		status := http.StatusOK
		if outcome == shoppinglist.OutcomeNotFound {
			status = http.StatusNotFound
		}
		s.writeJsonResponse(w, response{Outcome: outcome}, status)
	}
}

func (s Server) listRemove() http.HandlerFunc {
	type response struct {
		Removed bool `json:"removed"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := s.decodeItemID(w, r, "listRemove")
		if !ok {
			return
		}
		removed, err := s.List.RemoveFromList(r.Context(), id)
		if err != nil {
			s.Logger.Errorf("listRemove: Error removing from shopping list, err: %v", err)
			internalError(w)
			return
		}
		s.writeJsonResponse(w, response{Removed: removed}, http.StatusOK)
	}
}

func (s Server) listCheckout() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		receipt, err := s.List.Checkout(r.Context())
		if err != nil {
			if errors.Is(err, shoppinglist.ErrEmptyList) {
				s.writeJsonResponse(w, errorResponse{Error: err.Error()}, http.StatusUnprocessableEntity)
				return
			}
			s.Logger.Errorf("listCheckout: Error checking out, err: %v", err)
			internalError(w)
			return
		}
		s.writeJsonResponse(w, receipt, http.StatusOK)
	}
}

func (s Server) listShare() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := s.List.Share(r.Context())
		if err != nil {
			if errors.Is(err, shoppinglist.ErrEmptyList) {
				s.writeJsonResponse(w, errorResponse{Error: err.Error()}, http.StatusUnprocessableEntity)
				return
			}
			s.Logger.Errorf("listShare: Error sharing shopping list, err: %v", err)
			internalError(w)
			return
		}
		s.writeJsonResponse(w, res, http.StatusOK)
	}
}
