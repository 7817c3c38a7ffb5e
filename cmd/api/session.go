package main

import (
	"net/http"

	"github.com/go-chi/chi"
)

// Session routes act on the register named in the path. The overlay operates
// one register at a time, so the handler selects it before dispatching.
func (app *application) targetRegister(w http.ResponseWriter, r *http.Request) (string, bool) {
	registerID := chi.URLParam(r, "register_id")
	if registerID == "" {
		app.badRequestResponse(w, r, ErrInvalidID)
		return "", false
	}
	app.registers.SelectRegister(registerID)
	return registerID, true
}

type AddTrayItemRequest struct {
	ItemID string `json:"item_id" validate:"required"`
}

func (app *application) addTrayItemHandler(w http.ResponseWriter, r *http.Request) {
	if _, ok := app.targetRegister(w, r); !ok {
		return
	}

	var req AddTrayItemRequest
	if err := readJson(w, r, &req); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(req); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	app.registers.AddToTray(req.ItemID)

	if err := app.jsonRespone(w, http.StatusOK, app.registers.Snapshot()); err != nil {
		app.internalServerError(w, r, err)
	}
}

type AddTrayComboRequest struct {
	ComboID string `json:"combo_id" validate:"required"`
}

func (app *application) addTrayComboHandler(w http.ResponseWriter, r *http.Request) {
	if _, ok := app.targetRegister(w, r); !ok {
		return
	}

	var req AddTrayComboRequest
	if err := readJson(w, r, &req); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(req); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	app.registers.AddComboToTray(req.ComboID)

	if err := app.jsonRespone(w, http.StatusOK, app.registers.Snapshot()); err != nil {
		app.internalServerError(w, r, err)
	}
}

func (app *application) decreaseTrayLineHandler(w http.ResponseWriter, r *http.Request) {
	if _, ok := app.targetRegister(w, r); !ok {
		return
	}

	lineID := chi.URLParam(r, "line_id")
	if lineID == "" {
		app.badRequestResponse(w, r, ErrInvalidID)
		return
	}

	app.registers.DecreaseTrayLine(lineID)

	if err := app.jsonRespone(w, http.StatusOK, app.registers.Snapshot()); err != nil {
		app.internalServerError(w, r, err)
	}
}

func (app *application) removeTrayLineHandler(w http.ResponseWriter, r *http.Request) {
	if _, ok := app.targetRegister(w, r); !ok {
		return
	}

	lineID := chi.URLParam(r, "line_id")
	if lineID == "" {
		app.badRequestResponse(w, r, ErrInvalidID)
		return
	}

	app.registers.RemoveTrayLine(lineID)

	w.WriteHeader(http.StatusNoContent)
}

func (app *application) toggleSessionDiscountHandler(w http.ResponseWriter, r *http.Request) {
	if _, ok := app.targetRegister(w, r); !ok {
		return
	}

	discountID := chi.URLParam(r, "discount_id")
	if discountID == "" {
		app.badRequestResponse(w, r, ErrInvalidID)
		return
	}

	app.registers.ToggleSessionDiscount(discountID)

	if err := app.jsonRespone(w, http.StatusOK, app.registers.Snapshot()); err != nil {
		app.internalServerError(w, r, err)
	}
}

func (app *application) ringUpHandler(w http.ResponseWriter, r *http.Request) {
	if _, ok := app.targetRegister(w, r); !ok {
		return
	}

	app.registers.RingUp(r.Context())

	if err := app.jsonRespone(w, http.StatusAccepted, app.registers.Snapshot()); err != nil {
		app.internalServerError(w, r, err)
	}
}

func (app *application) confirmCustomerActionsHandler(w http.ResponseWriter, r *http.Request) {
	if _, ok := app.targetRegister(w, r); !ok {
		return
	}

	app.registers.ConfirmCustomerActions(r.Context())

	if err := app.jsonRespone(w, http.StatusOK, app.registers.Snapshot()); err != nil {
		app.internalServerError(w, r, err)
	}
}

func (app *application) customerPayHandler(w http.ResponseWriter, r *http.Request) {
	if _, ok := app.targetRegister(w, r); !ok {
		return
	}

	app.registers.CustomerPay(r.Context())

	if err := app.jsonRespone(w, http.StatusOK, app.registers.Snapshot()); err != nil {
		app.internalServerError(w, r, err)
	}
}

func (app *application) customerStealHandler(w http.ResponseWriter, r *http.Request) {
	if _, ok := app.targetRegister(w, r); !ok {
		return
	}

	app.registers.CustomerSteal(r.Context())

	if err := app.jsonRespone(w, http.StatusOK, app.registers.Snapshot()); err != nil {
		app.internalServerError(w, r, err)
	}
}

func (app *application) minigameTapHandler(w http.ResponseWriter, r *http.Request) {
	if _, ok := app.targetRegister(w, r); !ok {
		return
	}

	app.registers.Tap()

	if err := app.jsonRespone(w, http.StatusOK, app.registers.Snapshot()); err != nil {
		app.internalServerError(w, r, err)
	}
}

func (app *application) clearTransactionHandler(w http.ResponseWriter, r *http.Request) {
	if _, ok := app.targetRegister(w, r); !ok {
		return
	}

	app.registers.ClearTransaction()

	if err := app.jsonRespone(w, http.StatusOK, app.registers.Snapshot()); err != nil {
		app.internalServerError(w, r, err)
	}
}

func (app *application) dismissReceiptHandler(w http.ResponseWriter, r *http.Request) {
	if _, ok := app.targetRegister(w, r); !ok {
		return
	}

	app.registers.DismissReceipt()

	w.WriteHeader(http.StatusNoContent)
}
