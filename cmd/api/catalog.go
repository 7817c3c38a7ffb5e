package main

import (
	"net/http"

	"github.com/go-chi/chi"

	"github.com/patrick-gordon/umbra-registers/internal/domain"
	"github.com/patrick-gordon/umbra-registers/internal/service"
)

func (app *application) getManagerItemsHandler(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")

	response := map[string]any{
		"items":      app.registers.ManagerItems(category),
		"categories": app.registers.Categories(),
	}

	if err := app.jsonRespone(w, http.StatusOK, response); err != nil {
		app.internalServerError(w, r, err)
	}
}

type CreateMenuItemRequest struct {
	Name      string  `json:"name" validate:"required,min=1,max=64"`
	Price     float64 `json:"price" validate:"gte=0"`
	Stock     int     `json:"stock" validate:"gte=0"`
	SortOrder int     `json:"sort_order"`
	Category  string  `json:"category"`
}

func (app *application) createMenuItemHandler(w http.ResponseWriter, r *http.Request) {
	var req CreateMenuItemRequest
	if err := readJson(w, r, &req); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(req); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	itemID := app.registers.AddMenuItem(req.Name, req.Price, req.Stock, req.SortOrder, req.Category)
	if itemID == "" {
		app.forbiddenResponse(w, r)
		return
	}

	if err := app.jsonRespone(w, http.StatusCreated, map[string]string{"item_id": itemID}); err != nil {
		app.internalServerError(w, r, err)
	}
}

type UpdateMenuItemRequest struct {
	Name      *string  `json:"name" validate:"omitempty,min=1,max=64"`
	Price     *float64 `json:"price" validate:"omitempty,gte=0"`
	Stock     *int     `json:"stock" validate:"omitempty,gte=0"`
	SortOrder *int     `json:"sort_order"`
	Category  *string  `json:"category"`
}

func (app *application) updateMenuItemHandler(w http.ResponseWriter, r *http.Request) {
	itemID := chi.URLParam(r, "item_id")
	if itemID == "" {
		app.badRequestResponse(w, r, ErrInvalidID)
		return
	}

	var req UpdateMenuItemRequest
	if err := readJson(w, r, &req); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(req); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	app.registers.UpdateMenuItem(itemID, service.ItemUpdate{
		Name:      req.Name,
		Price:     req.Price,
		Stock:     req.Stock,
		SortOrder: req.SortOrder,
		Category:  req.Category,
	})

	if err := app.jsonRespone(w, http.StatusOK, app.registers.ManagerItems("")); err != nil {
		app.internalServerError(w, r, err)
	}
}

func (app *application) deleteMenuItemHandler(w http.ResponseWriter, r *http.Request) {
	itemID := chi.URLParam(r, "item_id")
	if itemID == "" {
		app.badRequestResponse(w, r, ErrInvalidID)
		return
	}

	app.registers.RemoveMenuItem(itemID)

	w.WriteHeader(http.StatusNoContent)
}

type CreateDiscountRequest struct {
	Name          string   `json:"name" validate:"required,min=1,max=64"`
	DiscountType  string   `json:"discount_type" validate:"required,oneof=percentage fixed"`
	DiscountValue float64  `json:"discount_value" validate:"gte=0"`
	PromotionType string   `json:"promotion_type" validate:"omitempty,oneof=standard happyHour weekdayDeal eventSpecial"`
	ItemIDs       []string `json:"item_ids"`
	ApplyToAll    bool     `json:"apply_to_all"`
	StartDate     string   `json:"start_date"`
	EndDate       string   `json:"end_date"`
	StartTime     string   `json:"start_time"`
	EndTime       string   `json:"end_time"`
	Weekdays      []int    `json:"weekdays" validate:"omitempty,dive,gte=0,lte=6"`
	EventTag      string   `json:"event_tag"`
	IsForever     bool     `json:"is_forever"`
}

func (app *application) createDiscountHandler(w http.ResponseWriter, r *http.Request) {
	var req CreateDiscountRequest
	if err := readJson(w, r, &req); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(req); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	discountID := app.registers.AddDiscount(domain.Discount{
		Name:          req.Name,
		DiscountType:  domain.DiscountType(req.DiscountType),
		DiscountValue: req.DiscountValue,
		PromotionType: domain.PromotionType(req.PromotionType),
		ItemIDs:       req.ItemIDs,
		ApplyToAll:    req.ApplyToAll,
		StartDate:     req.StartDate,
		EndDate:       req.EndDate,
		StartTime:     req.StartTime,
		EndTime:       req.EndTime,
		Weekdays:      req.Weekdays,
		EventTag:      req.EventTag,
		IsForever:     req.IsForever,
	})
	if discountID == "" {
		app.forbiddenResponse(w, r)
		return
	}

	if err := app.jsonRespone(w, http.StatusCreated, map[string]string{"discount_id": discountID}); err != nil {
		app.internalServerError(w, r, err)
	}
}

type UpdateDiscountRequest struct {
	Name          *string  `json:"name" validate:"omitempty,min=1,max=64"`
	DiscountValue *float64 `json:"discount_value" validate:"omitempty,gte=0"`
	StartDate     *string  `json:"start_date"`
	EndDate       *string  `json:"end_date"`
	StartTime     *string  `json:"start_time"`
	EndTime       *string  `json:"end_time"`
	Weekdays      *[]int   `json:"weekdays"`
	EventTag      *string  `json:"event_tag"`
	IsForever     *bool    `json:"is_forever"`
	ApplyToAll    *bool    `json:"apply_to_all"`
}

func (app *application) updateDiscountHandler(w http.ResponseWriter, r *http.Request) {
	discountID := chi.URLParam(r, "discount_id")
	if discountID == "" {
		app.badRequestResponse(w, r, ErrInvalidID)
		return
	}

	var req UpdateDiscountRequest
	if err := readJson(w, r, &req); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(req); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	app.registers.UpdateDiscount(discountID, service.DiscountUpdate{
		Name:          req.Name,
		DiscountValue: req.DiscountValue,
		StartDate:     req.StartDate,
		EndDate:       req.EndDate,
		StartTime:     req.StartTime,
		EndTime:       req.EndTime,
		Weekdays:      req.Weekdays,
		EventTag:      req.EventTag,
		IsForever:     req.IsForever,
		ApplyToAll:    req.ApplyToAll,
	})

	if err := app.jsonRespone(w, http.StatusOK, map[string]string{"status": "updated"}); err != nil {
		app.internalServerError(w, r, err)
	}
}

func (app *application) toggleDiscountItemHandler(w http.ResponseWriter, r *http.Request) {
	discountID := chi.URLParam(r, "discount_id")
	itemID := chi.URLParam(r, "item_id")
	if discountID == "" || itemID == "" {
		app.badRequestResponse(w, r, ErrInvalidID)
		return
	}

	app.registers.ToggleDiscountItem(discountID, itemID)

	if err := app.jsonRespone(w, http.StatusOK, map[string]string{"status": "toggled"}); err != nil {
		app.internalServerError(w, r, err)
	}
}

func (app *application) deleteDiscountHandler(w http.ResponseWriter, r *http.Request) {
	discountID := chi.URLParam(r, "discount_id")
	if discountID == "" {
		app.badRequestResponse(w, r, ErrInvalidID)
		return
	}

	app.registers.RemoveDiscount(discountID)

	w.WriteHeader(http.StatusNoContent)
}

type CreateComboRequest struct {
	Name        string   `json:"name" validate:"required,min=1,max=64"`
	ItemIDs     []string `json:"item_ids" validate:"required,min=2"`
	BundlePrice float64  `json:"bundle_price" validate:"gte=0"`
}

func (app *application) createComboHandler(w http.ResponseWriter, r *http.Request) {
	var req CreateComboRequest
	if err := readJson(w, r, &req); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(req); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	comboID := app.registers.AddCombo(req.Name, req.ItemIDs, req.BundlePrice)
	if comboID == "" {
		app.forbiddenResponse(w, r)
		return
	}

	if err := app.jsonRespone(w, http.StatusCreated, map[string]string{"combo_id": comboID}); err != nil {
		app.internalServerError(w, r, err)
	}
}

func (app *application) deleteComboHandler(w http.ResponseWriter, r *http.Request) {
	comboID := chi.URLParam(r, "combo_id")
	if comboID == "" {
		app.badRequestResponse(w, r, ErrInvalidID)
		return
	}

	app.registers.RemoveCombo(comboID)

	w.WriteHeader(http.StatusNoContent)
}

func (app *application) getGlobalStatsHandler(w http.ResponseWriter, r *http.Request) {
	if err := app.jsonRespone(w, http.StatusOK, app.registers.GlobalStats()); err != nil {
		app.internalServerError(w, r, err)
	}
}
