package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/google/uuid"
	"github.com/moiz862/backend/internal/service"
	"github.com/moiz862/backend/internal/transport/http/middleware"
	"github.com/moiz862/backend/pkg/validator"
)

type ItemHandler struct {
	itemService *service.ItemService
}

func NewItemHandler(itemService *service.ItemService) *ItemHandler {
	return &ItemHandler{itemService: itemService}
}

func (h *ItemHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var input service.CreateItemInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if errs := validator.ValidateItem(input.Title, input.Description, input.Tags); errs.HasErrors() {
		writeValidationErrors(w, errs)
		return
	}

	item, err := h.itemService.Create(r.Context(), userID, input)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAttachmentTypeNotAllowed):
			writeError(w, http.StatusBadRequest, "Image type is not allowed")
		case errors.Is(err, service.ErrAttachmentTooLarge):
			writeError(w, http.StatusBadRequest, "Image exceeds the 5MB limit")
		default:
			log.Printf("ERROR create item: %v", err)
			writeError(w, http.StatusInternalServerError, "Something went wrong")
		}
		return
	}

	writeJSON(w, http.StatusCreated, item)
}

func (h *ItemHandler) List(w http.ResponseWriter, r *http.Request) {
	input := service.ListItemsInput{
		Tag:   r.URL.Query().Get("tag"),
		Page:  queryInt(r, "page", 1),
		Limit: queryInt(r, "limit", 20),
	}

	if ownerStr := r.URL.Query().Get("owner"); ownerStr != "" {
		if ownerStr == "me" {
			ownerID := middleware.GetUserID(r.Context())
			input.OwnerID = &ownerID
		} else {
			ownerID, err := uuid.Parse(ownerStr)
			if err != nil {
				writeError(w, http.StatusBadRequest, "Invalid owner ID")
				return
			}
			input.OwnerID = &ownerID
		}
	}

	resp, err := h.itemService.List(r.Context(), input)
	if err != nil {
		log.Printf("ERROR list items: %v", err)
		writeError(w, http.StatusInternalServerError, "Something went wrong")
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *ItemHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid item ID")
		return
	}

	item, err := h.itemService.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrItemNotFound) {
			writeError(w, http.StatusNotFound, "Item not found")
		} else {
			log.Printf("ERROR get item: %v", err)
			writeError(w, http.StatusInternalServerError, "Something went wrong")
		}
		return
	}

	writeJSON(w, http.StatusOK, item)
}

func (h *ItemHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	itemID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid item ID")
		return
	}

	var input service.UpdateItemInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if errs := validator.ValidateItemUpdate(input.Title, input.Description, input.Tags); errs.HasErrors() {
		writeValidationErrors(w, errs)
		return
	}

	item, err := h.itemService.Update(r.Context(), userID, itemID, input)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrItemNotFound):
			writeError(w, http.StatusNotFound, "Item not found")
		case errors.Is(err, service.ErrNotItemOwner):
			writeError(w, http.StatusForbidden, "You can only edit your own items")
		case errors.Is(err, service.ErrAttachmentTypeNotAllowed):
			writeError(w, http.StatusBadRequest, "Image type is not allowed")
		case errors.Is(err, service.ErrAttachmentTooLarge):
			writeError(w, http.StatusBadRequest, "Image exceeds the 5MB limit")
		default:
			log.Printf("ERROR update item: %v", err)
			writeError(w, http.StatusInternalServerError, "Something went wrong")
		}
		return
	}

	writeJSON(w, http.StatusOK, item)
}

func (h *ItemHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	itemID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid item ID")
		return
	}

	if err := h.itemService.Delete(r.Context(), userID, itemID); err != nil {
		switch {
		case errors.Is(err, service.ErrItemNotFound):
			writeError(w, http.StatusNotFound, "Item not found")
		case errors.Is(err, service.ErrNotItemOwner):
			writeError(w, http.StatusForbidden, "You can only delete your own items")
		default:
			log.Printf("ERROR delete item: %v", err)
			writeError(w, http.StatusInternalServerError, "Something went wrong")
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
