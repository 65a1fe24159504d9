package api

import (
	"net/http"

	"github.com/erazemk/kns/internal/blob"
	"github.com/erazemk/kns/internal/inventory"
	"github.com/erazemk/kns/internal/metrics"
	"github.com/erazemk/kns/internal/model"
	"github.com/erazemk/kns/internal/notify"
	"github.com/erazemk/kns/internal/store"
)

// Deps are the services the API is built on.
type Deps struct {
	Store      *store.Store
	Controller *inventory.Controller
	JWTSecret  string
	// Sockets serves the change feed. Nil disables /api/events.
	Sockets *notify.Sockets
	// Blobs serves database-backed uploads. Nil when uploads live in S3.
	Blobs   *blob.DBStorage
	Metrics *metrics.Metrics
}

// NewRouter creates the API router with all endpoints registered.
func NewRouter(d Deps) http.Handler {
	mux := http.NewServeMux()

	authHandler := &AuthHandler{Store: d.Store, Controller: d.Controller, JWTSecret: d.JWTSecret}
	itemsHandler := &ItemsHandler{Store: d.Store, Controller: d.Controller}
	viewsHandler := &ViewsHandler{Store: d.Store}
	movementsHandler := &MovementsHandler{Store: d.Store, Controller: d.Controller}
	requestsHandler := &RequestsHandler{Store: d.Store, Controller: d.Controller}
	usersHandler := &UsersHandler{Store: d.Store, Controller: d.Controller}
	reportsHandler := &ReportsHandler{Store: d.Store}

	authMW := AuthMiddleware(d.JWTSecret, d.Store)
	requireApproved := RequireAccess("")
	requireAdmin := RequireAccess(model.RoleAdmin)

	approved := func(h http.HandlerFunc) http.Handler { return authMW(requireApproved(h)) }
	admin := func(h http.HandlerFunc) http.Handler { return authMW(requireAdmin(h)) }

	// Public.
	mux.HandleFunc("POST /api/auth/signup", authHandler.Signup)
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)
	mux.Handle("GET /metrics", d.Metrics.Handler())
	if d.Blobs != nil {
		blobsHandler := &BlobsHandler{Blobs: d.Blobs}
		mux.HandleFunc("GET /api/blobs/{bucket}/{path...}", blobsHandler.Get)
	}

	// Authenticated, approved or not.
	mux.Handle("POST /api/auth/logout", authMW(http.HandlerFunc(authHandler.Logout)))
	mux.Handle("GET /api/auth/me", authMW(http.HandlerFunc(authHandler.Me)))
	mux.Handle("PUT /api/auth/password", authMW(http.HandlerFunc(authHandler.ChangePassword)))
	mux.Handle("PUT /api/auth/profile", authMW(http.HandlerFunc(authHandler.UpdateProfile)))
	mux.Handle("PUT /api/auth/avatar", authMW(http.HandlerFunc(authHandler.UploadAvatar)))
	if d.Sockets != nil {
		eventsHandler := &EventsHandler{Sockets: d.Sockets}
		mux.Handle("GET "+eventsPath, authMW(http.HandlerFunc(eventsHandler.Serve)))
	}

	// Items: read (approved), write (admin).
	mux.Handle("GET /api/items", approved(itemsHandler.List))
	mux.Handle("GET /api/items/{id}", approved(itemsHandler.Get))
	mux.Handle("POST /api/items", admin(itemsHandler.Create))
	mux.Handle("POST /api/items/bulk", admin(itemsHandler.BulkCreate))
	mux.Handle("POST /api/items/delete", admin(itemsHandler.BulkDelete))
	mux.Handle("PUT /api/items/{id}", admin(itemsHandler.Update))
	mux.Handle("DELETE /api/items/{id}", admin(itemsHandler.Delete))
	mux.Handle("PUT /api/items/{id}/image", admin(itemsHandler.UploadImage))

	// Rendered pages.
	mux.Handle("GET /api/views/inventory", approved(viewsHandler.Inventory))
	mux.Handle("GET /api/views/movements", approved(viewsHandler.Movements))
	mux.Handle("GET /api/options", approved(viewsHandler.Options))

	// Movements (admin).
	mux.Handle("GET /api/movements", admin(movementsHandler.List))
	mux.Handle("POST /api/movements", admin(movementsHandler.Record))
	mux.Handle("DELETE /api/movements", admin(movementsHandler.Clear))

	// Requests: own (approved), lifecycle (admin).
	mux.Handle("GET /api/requests", approved(requestsHandler.List))
	mux.Handle("POST /api/requests", approved(requestsHandler.Create))
	mux.Handle("POST /api/requests/{id}/approve", admin(requestsHandler.Approve))
	mux.Handle("POST /api/requests/{id}/reject", admin(requestsHandler.Reject))
	mux.Handle("POST /api/requests/{id}/fulfill", admin(requestsHandler.Fulfill))

	// Users (admin).
	mux.Handle("GET /api/users", admin(usersHandler.List))
	mux.Handle("POST /api/users", admin(usersHandler.Create))
	mux.Handle("GET /api/users/{id}", admin(usersHandler.Get))
	mux.Handle("PUT /api/users/{id}", admin(usersHandler.Update))
	mux.Handle("PUT /api/users/{id}/password", admin(usersHandler.ResetPassword))
	mux.Handle("POST /api/users/{id}/approve", admin(usersHandler.Approve))
	mux.Handle("POST /api/users/{id}/reject", admin(usersHandler.Reject))
	mux.Handle("DELETE /api/users/{id}", admin(usersHandler.Delete))

	// Reports (admin).
	mux.Handle("GET /api/reports/inventory", admin(reportsHandler.Inventory))
	mux.Handle("GET /api/reports/movements", admin(reportsHandler.Movements))
	mux.Handle("GET /api/reports/low-stock", admin(reportsHandler.LowStock))
	mux.Handle("GET /api/reports/usage", admin(reportsHandler.Usage))
	mux.Handle("GET /api/reports/requests", admin(reportsHandler.Requests))
	mux.Handle("GET /api/reports/export", admin(reportsHandler.Export))

	return LoggingMiddleware(d.Metrics)(mux)
}
