package main

import (
	"net/http"

	"github.com/go-chi/chi"
)

type CreateRegisterRequest struct {
	Name string `json:"name" validate:"required,min=1,max=64"`
}

func (app *application) createRegisterHandler(w http.ResponseWriter, r *http.Request) {
	var req CreateRegisterRequest
	if err := readJson(w, r, &req); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(req); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	registerID := app.registers.AddRegister(req.Name)
	if registerID == "" {
		app.forbiddenResponse(w, r)
		return
	}

	if err := app.jsonRespone(w, http.StatusCreated, map[string]string{"register_id": registerID}); err != nil {
		app.internalServerError(w, r, err)
	}
}

func (app *application) deleteRegisterHandler(w http.ResponseWriter, r *http.Request) {
	registerID := chi.URLParam(r, "register_id")
	if registerID == "" {
		app.badRequestResponse(w, r, ErrInvalidID)
		return
	}

	app.registers.RemoveRegister(registerID)

	w.WriteHeader(http.StatusNoContent)
}

func (app *application) selectRegisterHandler(w http.ResponseWriter, r *http.Request) {
	registerID := chi.URLParam(r, "register_id")
	if registerID == "" {
		app.badRequestResponse(w, r, ErrInvalidID)
		return
	}

	app.registers.SelectRegister(registerID)

	if err := app.jsonRespone(w, http.StatusOK, app.registers.Snapshot()); err != nil {
		app.internalServerError(w, r, err)
	}
}

func (app *application) upgradeRegisterHandler(w http.ResponseWriter, r *http.Request) {
	registerID := chi.URLParam(r, "register_id")
	if registerID == "" {
		app.badRequestResponse(w, r, ErrInvalidID)
		return
	}

	app.registers.UpgradeRegisterTier(r.Context(), registerID)

	if err := app.jsonRespone(w, http.StatusOK, app.registers.RegisterStats(registerID)); err != nil {
		app.internalServerError(w, r, err)
	}
}

func (app *application) getCustomerItemsHandler(w http.ResponseWriter, r *http.Request) {
	registerID := chi.URLParam(r, "register_id")
	if registerID == "" {
		app.badRequestResponse(w, r, ErrInvalidID)
		return
	}

	if err := app.jsonRespone(w, http.StatusOK, app.registers.CustomerItems(registerID)); err != nil {
		app.internalServerError(w, r, err)
	}
}

func (app *application) getCombosHandler(w http.ResponseWriter, r *http.Request) {
	registerID := chi.URLParam(r, "register_id")
	if registerID == "" {
		app.badRequestResponse(w, r, ErrInvalidID)
		return
	}

	if err := app.jsonRespone(w, http.StatusOK, app.registers.Combos(registerID)); err != nil {
		app.internalServerError(w, r, err)
	}
}

func (app *application) getSessionDiscountsHandler(w http.ResponseWriter, r *http.Request) {
	registerID := chi.URLParam(r, "register_id")
	if registerID == "" {
		app.badRequestResponse(w, r, ErrInvalidID)
		return
	}

	if err := app.jsonRespone(w, http.StatusOK, app.registers.AvailableSessionDiscounts(registerID)); err != nil {
		app.internalServerError(w, r, err)
	}
}

func (app *application) getRegisterStatsHandler(w http.ResponseWriter, r *http.Request) {
	registerID := chi.URLParam(r, "register_id")
	if registerID == "" {
		app.badRequestResponse(w, r, ErrInvalidID)
		return
	}

	if err := app.jsonRespone(w, http.StatusOK, app.registers.RegisterStats(registerID)); err != nil {
		app.internalServerError(w, r, err)
	}
}

func (app *application) getAbuseFlagsHandler(w http.ResponseWriter, r *http.Request) {
	registerID := chi.URLParam(r, "register_id")
	if registerID == "" {
		app.badRequestResponse(w, r, ErrInvalidID)
		return
	}

	if err := app.jsonRespone(w, http.StatusOK, app.registers.AbuseFlags(registerID)); err != nil {
		app.internalServerError(w, r, err)
	}
}
