package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/arsyilla/qris-relay/internal/pakasir"
	"github.com/arsyilla/qris-relay/internal/payments"
	"github.com/arsyilla/qris-relay/internal/validation"
)

// OperationPaths are the POST operations this service exposes; the 404
// handler lists them.
var OperationPaths = []string{"/create-payment", "/webhook", "/cancel-payment"}

// notificationEnvelope pulls the two fields we route on out of the
// provider's webhook body; the rest is forwarded verbatim.
type notificationEnvelope struct {
	OrderID string `json:"order_id"`
	Status  string `json:"status"`
}

// RegisterPaymentRoutes registers the three payment operations.
func RegisterPaymentRoutes(r *gin.Engine, svc *payments.Service) {
	v := validation.New()

	r.POST("/create-payment", func(c *gin.Context) {
		var req validation.CreatePaymentRequest
		if err := validation.BindAndValidate(c, &req, v); err != nil {
			// BindAndValidate already wrote a 400
			return
		}

		res, err := svc.CreatePayment(c.Request.Context(), req.Amount, req.ClientWebhookURL)
		if err != nil {
			writeServiceError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success":       true,
			"order_id":      res.OrderID,
			"amount":        res.Amount,
			"fee":           res.Fee,
			"total_payment": res.TotalPayment,
			"qr_string":     res.QRString,
			"qr_image_url":  res.QRImageURL,
			"expired_at":    res.ExpiredAt,
		})
	})

	// The provider calls this endpoint; it always gets 200 once the
	// notification has been processed, regardless of relay outcome.
	// Downstream clients receiving the forwarded body must treat it as
	// idempotent by order_id.
	r.POST("/webhook", func(c *gin.Context) {
		raw, err := c.GetRawData()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable_body"})
			return
		}

		var env notificationEnvelope
		if err := json.Unmarshal(raw, &env); err != nil || env.OrderID == "" {
			// Acknowledge malformed/unattributable notifications so the
			// provider does not retry them forever.
			c.JSON(http.StatusOK, gin.H{"status": payments.OutcomeReceived})
			return
		}

		outcome, err := svc.HandleNotification(c.Request.Context(), env.OrderID, env.Status, raw)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": outcome})
	})

	r.POST("/cancel-payment", func(c *gin.Context) {
		var req validation.CancelPaymentRequest
		if err := validation.BindAndValidate(c, &req, v); err != nil {
			return
		}

		if err := svc.CancelPayment(c.Request.Context(), req.OrderID, req.Amount); err != nil {
			switch {
			case errors.Is(err, payments.ErrNotFound):
				c.JSON(http.StatusNotFound, gin.H{"error": "unknown_order_id"})
			case errors.Is(err, payments.ErrAlreadyCompleted):
				c.JSON(http.StatusConflict, gin.H{"error": "already_completed"})
			default:
				writeServiceError(c, err)
			}
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "message": "transaction canceled"})
	})
}

// writeServiceError maps orchestrator failures onto the HTTP surface.
// Provider error payloads are passed through for the caller to inspect.
func writeServiceError(c *gin.Context, err error) {
	var perr *pakasir.ProviderError
	if errors.As(err, &perr) {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "provider_error",
			"details": perr.Body,
		})
		return
	}
	if errors.Is(err, payments.ErrInvalidAmount) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_amount"})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
}

// RegisterFallbacks wires the 404/405 responses: unknown paths get the
// operation list, bad methods get a distinct 405.
func RegisterFallbacks(r *gin.Engine) {
	r.HandleMethodNotAllowed = true
	r.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "method not allowed"})
	})
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "not found",
			"paths": OperationPaths,
		})
	})
}
