// internal/inventory/resource.go
//
// Shared HTTP CRUD surface for the inventory entities.
//
// Each entity supplies its table definition, a request parser, and the
// query parameters it accepts as list filters; the handler bodies are
// identical across entities and live here once.
package inventory

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/stocklot/stocklot/internal/auth"
	"github.com/stocklot/stocklot/internal/entity"
	"github.com/stocklot/stocklot/internal/respond"
	"github.com/stocklot/stocklot/internal/tenant"
)

type resource[T any] struct {
	mgr     *entity.Manager
	parse   func(*http.Request) (map[string]any, error)
	filters []string
}

func newResource[T any](def entity.Definition, stores *tenant.Stores,
	parse func(*http.Request) (map[string]any, error), filters ...string) *resource[T] {
	return &resource[T]{
		mgr:     entity.NewManager(def, stores),
		parse:   parse,
		filters: filters,
	}
}

func actorID(r *http.Request) string {
	if u := auth.UserFromContext(r.Context()); u != nil {
		return u.ID
	}
	return ""
}

func (res *resource[T]) list(w http.ResponseWriter, r *http.Request) {
	filters := map[string]any{}
	for _, f := range res.filters {
		if v := r.URL.Query().Get(f); v != "" {
			filters[f] = v
		}
	}
	var rows []T
	if err := res.mgr.List(r.Context(), &rows, filters); err != nil {
		respond.Error(w, err)
		return
	}
	if rows == nil {
		rows = []T{}
	}
	respond.JSON(w, http.StatusOK, rows)
}

func (res *resource[T]) get(w http.ResponseWriter, r *http.Request) {
	var row T
	if err := res.mgr.Get(r.Context(), chi.URLParam(r, "id"), &row); err != nil {
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, row)
}

func (res *resource[T]) create(w http.ResponseWriter, r *http.Request) {
	vals, err := res.parse(r)
	if err != nil {
		respond.Error(w, err)
		return
	}
	id, err := res.mgr.Create(r.Context(), vals, actorID(r))
	if err != nil {
		respond.Error(w, err)
		return
	}
	var row T
	if err := res.mgr.Get(r.Context(), id, &row); err != nil {
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusCreated, row)
}

func (res *resource[T]) update(w http.ResponseWriter, r *http.Request) {
	vals, err := res.parse(r)
	if err != nil {
		respond.Error(w, err)
		return
	}
	id := chi.URLParam(r, "id")
	if err := res.mgr.Update(r.Context(), id, vals, actorID(r)); err != nil {
		respond.Error(w, err)
		return
	}
	var row T
	if err := res.mgr.Get(r.Context(), id, &row); err != nil {
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, row)
}

func (res *resource[T]) delete(w http.ResponseWriter, r *http.Request) {
	if err := res.mgr.Delete(r.Context(), chi.URLParam(r, "id"), actorID(r)); err != nil {
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]string{"message": "deleted"})
}
