package server

import (
	"encoding/json"
	"net/http"
	"time"

	"pantry/internal/model"
)

type itemsResponse struct {
	Items       []model.TrackedItem `json:"items"`
	Seeded      bool                `json:"seeded"`
	RefreshedAt time.Time           `json:"refreshed_at"`
}

func (s Server) itemsResponse() itemsResponse {
	return itemsResponse{
		Items:       s.Tracker.Items(),
		Seeded:      s.Tracker.Seeded(),
		RefreshedAt: s.Tracker.RefreshedAt(),
	}
}

func (s Server) itemsGet() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.writeJsonResponse(w, s.itemsResponse(), http.StatusOK)
	}
}

func (s Server) itemsRefresh() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.Tracker.RefreshNow(r.Context()); err != nil {
			s.Logger.Errorf("itemsRefresh: Error refreshing tracker, err: %v", err)
			internalError(w)
			return
		}
		s.writeJsonResponse(w, s.itemsResponse(), http.StatusOK)
	}
}

func (s Server) statsGet() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		totals, err := s.List.Totals(r.Context())
		if err != nil {
			s.Logger.Errorf("statsGet: Error reading shopping list totals, err: %v", err)
			internalError(w)
			return
		}
		s.writeJsonResponse(w, s.Tracker.Stats(totals.Count), http.StatusOK)
	}
}

func (s Server) onboardingGet() http.HandlerFunc {
	type response struct {
		Seen bool `json:"seen"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		seen, err := s.DB.OnboardingSeen(r.Context())
		if err != nil {
			s.Logger.Errorf("onboardingGet: Error reading onboarding flag, err: %v", err)
			internalError(w)
			return
		}
		s.writeJsonResponse(w, response{Seen: seen}, http.StatusOK)
	}
}

func (s Server) onboardingSet() http.HandlerFunc {
	type request struct {
		Seen bool `json:"seen"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		req := request{}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.Logger.Debugf("onboardingSet: Error decoding JSON, err: %v", err)
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}
		if err := s.DB.OnboardingSeenSet(r.Context(), req.Seen); err != nil {
			s.Logger.Errorf("onboardingSet: Error saving onboarding flag, err: %v", err)
			internalError(w)
			return
		}
		s.writeJsonResponse(w, req, http.StatusOK)
	}
}

func (s Server) clipboardGet() http.HandlerFunc {
	type response struct {
		Text string `json:"text"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		text, err := s.DB.ClipboardFind(r.Context())
		if err != nil {
			s.Logger.Errorf("clipboardGet: Error reading clipboard, err: %v", err)
			internalError(w)
			return
		}
		s.writeJsonResponse(w, response{Text: text}, http.StatusOK)
	}
}
