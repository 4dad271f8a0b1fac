package users

import (
	"errors"
	"net/http"

	"github.com/goccy/go-json"
	"github.com/julienschmidt/httprouter"
	"github.com/rs/zerolog/hlog"

	"github.com/Azhovan/sieve"
	"github.com/Azhovan/sieve/middleware"
	"github.com/Azhovan/sieve/sourcehttp"
)

// Handler serves the users API.
type Handler struct {
	store  *Store
	opts   sieve.Options
	create sieve.Schema[CreateUserInput]
	update sieve.Schema[UpdateUserInput]
}

// NewHandler creates a Handler backed by store. opts controls how validation failures are reported.
func NewHandler(store *Store, opts sieve.Options) *Handler {
	return &Handler{
		store:  store,
		opts:   opts,
		create: CreateUserSchema(),
		update: UpdateUserSchema(),
	}
}

// Routes registers the users endpoints on a new router.
func (h *Handler) Routes() *httprouter.Router {
	r := &httprouter.Router{
		RedirectTrailingSlash:  true,
		HandleMethodNotAllowed: true,
		NotFound: http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			writeStatus(w, http.StatusNotFound, "endpoint not found")
		}),
		MethodNotAllowed: http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			writeStatus(w, http.StatusMethodNotAllowed, "method not allowed")
		}),
	}

	r.POST("/users", h.createUser)
	r.GET("/users", h.listUsers)
	r.GET("/users/:id", h.getUser)
	r.PATCH("/users/:id", h.updateUser)
	r.DELETE("/users/:id", h.deleteUser)
	return r
}

func (h *Handler) createUser(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	in, err := sieve.Validate(r.Context(), h.create, sourcehttp.Query(r), h.opts)
	if err != nil {
		h.reject(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, h.store.Create(r.Context(), in))
}

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	writeJSON(w, http.StatusOK, h.store.List(r.Context()))
}

func (h *Handler) getUser(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	u, err := h.store.Get(r.Context(), ps.ByName("id"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (h *Handler) updateUser(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")
	if _, err := h.store.Get(r.Context(), id); err != nil {
		writeStoreError(w, err)
		return
	}

	in, err := sieve.Validate(r.Context(), h.update, sourcehttp.Body(r), h.opts)
	if err != nil {
		h.reject(w, r, err)
		return
	}

	u, err := h.store.Update(r.Context(), id, in)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (h *Handler) deleteUser(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := h.store.Delete(r.Context(), ps.ByName("id")); err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// reject logs a failed validation at debug and answers with the error payload.
func (h *Handler) reject(w http.ResponseWriter, r *http.Request, err error) {
	hlog.FromRequest(r).Debug().Err(err).Str("path", r.URL.Path).Msg("request rejected")
	middleware.WriteError(w, err)
}

func writeStoreError(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrNotFound) {
		writeStatus(w, http.StatusNotFound, "user not found")
		return
	}
	middleware.WriteError(w, err)
}

func writeStatus(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, middleware.Payload{
		StatusCode: status,
		Message:    msg,
		Error:      http.StatusText(status),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
