package handler

import (
	"errors"
	"net/http"

	"supplieriq/internal/apierror"
	"supplieriq/internal/dto"
	"supplieriq/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type RequestsHandler struct {
	svc service.PurchaseRequestService
}

func NewRequestsHandler(svc service.PurchaseRequestService) *RequestsHandler {
	return &RequestsHandler{svc: svc}
}

// Create stores a purchase request and returns 201 immediately.
// Suggestions appear later under /v1/requests/:id/suggestions.
func (h *RequestsHandler) Create(c *gin.Context) {
	var req dto.CreatePurchaseRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		log.Error().Err(err).Msg("requests: create failed")
		c.JSON(http.StatusInternalServerError, apierror.New("could not create purchase request"))
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *RequestsHandler) GetByID(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	resp, err := h.svc.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrPurchaseRequestNotFound) {
			c.JSON(http.StatusNotFound, apierror.New("purchase request not found"))
			return
		}
		log.Error().Err(err).Str("request_id", id.String()).Msg("requests: lookup failed")
		c.JSON(http.StatusInternalServerError, apierror.New("could not load purchase request"))
		return
	}
	c.JSON(http.StatusOK, resp)
}
