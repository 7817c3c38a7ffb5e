package main

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi"
)

var (
	ErrInvalidID = errors.New("invalid ID format")
)

type CreateStoreRequest struct {
	Name string `json:"name" validate:"required,min=1,max=64"`
}

func (app *application) createStoreHandler(w http.ResponseWriter, r *http.Request) {
	var req CreateStoreRequest
	if err := readJson(w, r, &req); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(req); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	storeID := app.registers.AddStore(req.Name)
	if storeID == "" {
		app.forbiddenResponse(w, r)
		return
	}

	if err := app.jsonRespone(w, http.StatusCreated, map[string]string{"store_id": storeID}); err != nil {
		app.internalServerError(w, r, err)
	}
}

func (app *application) deleteStoreHandler(w http.ResponseWriter, r *http.Request) {
	storeID := chi.URLParam(r, "store_id")
	if storeID == "" {
		app.badRequestResponse(w, r, ErrInvalidID)
		return
	}

	app.registers.RemoveStore(storeID)

	w.WriteHeader(http.StatusNoContent)
}

func (app *application) selectStoreHandler(w http.ResponseWriter, r *http.Request) {
	storeID := chi.URLParam(r, "store_id")
	if storeID == "" {
		app.badRequestResponse(w, r, ErrInvalidID)
		return
	}

	app.registers.SelectStore(storeID)

	if err := app.jsonRespone(w, http.StatusOK, app.registers.Snapshot()); err != nil {
		app.internalServerError(w, r, err)
	}
}

func (app *application) getStoreStatsHandler(w http.ResponseWriter, r *http.Request) {
	storeID := chi.URLParam(r, "store_id")
	if storeID == "" {
		app.badRequestResponse(w, r, ErrInvalidID)
		return
	}

	rows, total := app.registers.StoreStats(storeID)
	if rows == nil {
		app.notFoundError(w, r, errors.New("store not found"))
		return
	}

	response := map[string]any{
		"registers": rows,
		"total":     total,
	}

	if err := app.jsonRespone(w, http.StatusOK, response); err != nil {
		app.internalServerError(w, r, err)
	}
}
