package main

import (
	"encoding/json"
	"net/http"

	"github.com/patrick-gordon/umbra-registers/internal/domain"
	"github.com/patrick-gordon/umbra-registers/internal/interaction"
	"github.com/patrick-gordon/umbra-registers/internal/service"
)

func (app *application) getStateHandler(w http.ResponseWriter, r *http.Request) {
	snap := app.registers.Snapshot()

	if err := app.jsonRespone(w, http.StatusOK, snap); err != nil {
		app.internalServerError(w, r, err)
	}
}

type HostMessageRequest struct {
	Action  string          `json:"action" validate:"required"`
	Payload json.RawMessage `json:"payload"`
}

func (app *application) hostMessageHandler(w http.ResponseWriter, r *http.Request) {
	var req HostMessageRequest
	if err := readJson(w, r, &req); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(req); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := app.registers.HandleHostMessage(domain.HostMessage{
		Action:  req.Action,
		Payload: req.Payload,
	}); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := app.jsonRespone(w, http.StatusAccepted, map[string]string{"status": "applied"}); err != nil {
		app.internalServerError(w, r, err)
	}
}

type SetViewRequest struct {
	View string `json:"view" validate:"required,oneof=manager employee customer"`
}

func (app *application) setViewHandler(w http.ResponseWriter, r *http.Request) {
	var req SetViewRequest
	if err := readJson(w, r, &req); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(req); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	app.registers.SetView(service.View(req.View))

	if err := app.jsonRespone(w, http.StatusOK, app.registers.AllowedViews()); err != nil {
		app.internalServerError(w, r, err)
	}
}

func (app *application) closeHandler(w http.ResponseWriter, r *http.Request) {
	app.registers.CloseUI(r.Context())

	if err := app.jsonRespone(w, http.StatusOK, map[string]string{"status": "closed"}); err != nil {
		app.internalServerError(w, r, err)
	}
}

func (app *application) clearBridgeErrorHandler(w http.ResponseWriter, r *http.Request) {
	app.registers.ClearBridgeError()

	w.WriteHeader(http.StatusNoContent)
}

type OpenInteractionRequest struct {
	Role          string `json:"role" validate:"required,oneof=manager employee customer"`
	BusinessID    string `json:"business_id" validate:"required"`
	InteractionID string `json:"interaction_id" validate:"required"`
	RegisterID    string `json:"register_id"`
}

func (app *application) openInteractionHandler(w http.ResponseWriter, r *http.Request) {
	var req OpenInteractionRequest
	if err := readJson(w, r, &req); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(req); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	app.registers.OpenInteractionAsRole(r.Context(), req.Role, req.BusinessID, req.InteractionID, req.RegisterID)

	if err := app.jsonRespone(w, http.StatusOK, app.registers.Snapshot()); err != nil {
		app.internalServerError(w, r, err)
	}
}

func (app *application) listInteractionsHandler(w http.ResponseWriter, r *http.Request) {
	if err := app.jsonRespone(w, http.StatusOK, interaction.Defaults()); err != nil {
		app.internalServerError(w, r, err)
	}
}
