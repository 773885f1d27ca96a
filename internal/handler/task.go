package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/nexustask/pkg/respond"
)

// TodoHandler serves a json-server compatible /todos collection. It stands in
// for the remote list service in the serve command and in tests.
type TodoHandler struct {
	collection *Collection
	logger     *zap.Logger
}

func NewTodoHandler(collection *Collection, logger *zap.Logger) *TodoHandler {
	return &TodoHandler{
		collection: collection,
		logger:     logger,
	}
}

// Router mounts the /todos routes and the health check.
func (h *TodoHandler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(h.availability)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respond.JSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/todos", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/{id}", h.Get)
		r.Patch("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
	})
	return r
}

func (h *TodoHandler) availability(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !h.collection.Available() {
			respond.Error(w, r, http.StatusServiceUnavailable, "unavailable")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *TodoHandler) List(w http.ResponseWriter, r *http.Request) {
	h.collection.countRequest("GET /todos")
	respond.JSON(w, r, http.StatusOK, h.collection.List())
}

func (h *TodoHandler) Get(w http.ResponseWriter, r *http.Request) {
	rec, err := h.collection.Get(chi.URLParam(r, "id"))
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, rec)
}

func (h *TodoHandler) Create(w http.ResponseWriter, r *http.Request) {
	h.collection.countRequest("POST /todos")

	body, err := io.ReadAll(r.Body)
	if err != nil || len(body) == 0 {
		respond.Error(w, r, http.StatusBadRequest, "empty request body")
		return
	}

	rec, err := h.collection.Insert(body)
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}

	id, _ := recordID(rec["id"])
	w.Header().Set("Location", fmt.Sprintf("/todos/%s", id))
	respond.JSON(w, r, http.StatusCreated, rec)
}

func (h *TodoHandler) Update(w http.ResponseWriter, r *http.Request) {
	h.collection.countRequest("PATCH /todos/{id}")

	body, err := io.ReadAll(r.Body)
	if err != nil {
		respond.Error(w, r, http.StatusBadRequest, "invalid json")
		return
	}

	rec, err := h.collection.Merge(chi.URLParam(r, "id"), body)
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, rec)
}

func (h *TodoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	h.collection.countRequest("DELETE /todos/{id}")

	if err := h.collection.Remove(chi.URLParam(r, "id")); err != nil {
		h.handleErrors(w, r, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, map[string]string{})
}

func (h *TodoHandler) handleErrors(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrorNotFound):
		respond.Error(w, r, http.StatusNotFound, "not found")
	case errors.Is(err, ErrorConflict):
		respond.Error(w, r, http.StatusConflict, "conflict")
	case errors.Is(err, ErrorInvalid):
		respond.Error(w, r, http.StatusBadRequest, err.Error())
	default:
		h.logger.Error("internal error", zap.Error(err))
		respond.Error(w, r, http.StatusInternalServerError, "internal error")
	}
}
