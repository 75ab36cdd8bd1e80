package server

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	maxRequestBytes = 3000
	// Catalog uploads carry the whole product list.
	maxCatalogBytes = 1 << 20
)

func (s Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.loggingMw)
	r.NotFoundHandler = s.loggingMw(s.notFoundHandler())
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()

	api.Handle("/session/login", s.maxBytesMw(maxRequestBytes)(s.sessionLogin())).Methods(http.MethodPost)

	sessionAPI := api.PathPrefix("/session").Subrouter()
	sessionAPI.Use(s.maxBytesMw(maxRequestBytes), s.authMw)
	sessionAPI.HandleFunc("", s.sessionGet()).Methods(http.MethodGet)
	sessionAPI.HandleFunc("/logout", s.sessionLogout()).Methods(http.MethodPost)

	productAPI := api.PathPrefix("/products").Subrouter()
	productAPI.Use(s.maxBytesMw(maxCatalogBytes), s.authMw)
	productAPI.HandleFunc("", s.productsGet()).Methods(http.MethodGet)
	productAPI.HandleFunc("", s.productsReplace()).Methods(http.MethodPut)
	productAPI.HandleFunc("/upsert", s.productUpsert()).Methods(http.MethodPost)
	productAPI.HandleFunc("/remove", s.productRemove()).Methods(http.MethodPost)

	trackerAPI := api.NewRoute().Subrouter()
	trackerAPI.Use(s.maxBytesMw(maxRequestBytes), s.authMw)
	trackerAPI.HandleFunc("/items", s.itemsGet()).Methods(http.MethodGet)
	trackerAPI.HandleFunc("/items/refresh", s.itemsRefresh()).Methods(http.MethodPost)
	trackerAPI.HandleFunc("/stats", s.statsGet()).Methods(http.MethodGet)
	trackerAPI.HandleFunc("/onboarding", s.onboardingGet()).Methods(http.MethodGet)
	trackerAPI.HandleFunc("/onboarding", s.onboardingSet()).Methods(http.MethodPost)
	trackerAPI.HandleFunc("/clipboard", s.clipboardGet()).Methods(http.MethodGet)

	listAPI := api.PathPrefix("/list").Subrouter()
	listAPI.Use(s.maxBytesMw(maxRequestBytes), s.authMw)
	listAPI.HandleFunc("", s.listGet()).Methods(http.MethodGet)
	listAPI.HandleFunc("/add", s.listAdd()).Methods(http.MethodPost)
	listAPI.HandleFunc("/remove", s.listRemove()).Methods(http.MethodPost)
	listAPI.HandleFunc("/checkout", s.listCheckout()).Methods(http.MethodPost)
	listAPI.HandleFunc("/share", s.listShare()).Methods(http.MethodPost)

	return r
}
