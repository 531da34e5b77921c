package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/google/uuid"
	"github.com/moiz862/backend/internal/service"
	"github.com/moiz862/backend/internal/transport/http/middleware"
)

type PaymentHandler struct {
	paymentService *service.PaymentService
}

func NewPaymentHandler(paymentService *service.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

func (h *PaymentHandler) ListPlans(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.paymentService.ListPlans())
}

func (h *PaymentHandler) CreateIntent(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var input struct {
		Plan string `json:"plan"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	intent, err := h.paymentService.CreateIntent(r.Context(), userID, input.Plan)
	if err != nil {
		if errors.Is(err, service.ErrUnknownPlan) {
			writeError(w, http.StatusBadRequest, "Unknown subscription plan")
		} else {
			log.Printf("ERROR create intent: %v", err)
			writeError(w, http.StatusInternalServerError, "Something went wrong")
		}
		return
	}

	writeJSON(w, http.StatusCreated, intent)
}

func (h *PaymentHandler) ConfirmIntent(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	intentID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid intent ID")
		return
	}

	intent, err := h.paymentService.ConfirmIntent(r.Context(), userID, intentID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrIntentNotFound):
			writeError(w, http.StatusNotFound, "Payment intent not found")
		case errors.Is(err, service.ErrIntentNotPending):
			writeError(w, http.StatusBadRequest, "Payment intent is not awaiting confirmation")
		default:
			log.Printf("ERROR confirm intent: %v", err)
			writeError(w, http.StatusInternalServerError, "Something went wrong")
		}
		return
	}

	writeJSON(w, http.StatusOK, intent)
}

func (h *PaymentHandler) CancelIntent(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	intentID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid intent ID")
		return
	}

	intent, err := h.paymentService.CancelIntent(r.Context(), userID, intentID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrIntentNotFound):
			writeError(w, http.StatusNotFound, "Payment intent not found")
		case errors.Is(err, service.ErrIntentNotPending):
			writeError(w, http.StatusBadRequest, "Payment intent is not awaiting confirmation")
		default:
			log.Printf("ERROR cancel intent: %v", err)
			writeError(w, http.StatusInternalServerError, "Something went wrong")
		}
		return
	}

	writeJSON(w, http.StatusOK, intent)
}

func (h *PaymentHandler) ListIntents(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	intents, err := h.paymentService.ListIntents(r.Context(), userID)
	if err != nil {
		log.Printf("ERROR list intents: %v", err)
		writeError(w, http.StatusInternalServerError, "Something went wrong")
		return
	}

	writeJSON(w, http.StatusOK, intents)
}

func (h *PaymentHandler) GetSubscription(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	sub, err := h.paymentService.GetSubscription(r.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			writeError(w, http.StatusNotFound, "User not found")
		} else {
			log.Printf("ERROR get subscription: %v", err)
			writeError(w, http.StatusInternalServerError, "Something went wrong")
		}
		return
	}

	writeJSON(w, http.StatusOK, sub)
}

func (h *PaymentHandler) CancelSubscription(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	sub, err := h.paymentService.CancelSubscription(r.Context(), userID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotSubscribed):
			writeError(w, http.StatusBadRequest, "No active subscription")
		case errors.Is(err, service.ErrUserNotFound):
			writeError(w, http.StatusNotFound, "User not found")
		default:
			log.Printf("ERROR cancel subscription: %v", err)
			writeError(w, http.StatusInternalServerError, "Something went wrong")
		}
		return
	}

	writeJSON(w, http.StatusOK, sub)
}
