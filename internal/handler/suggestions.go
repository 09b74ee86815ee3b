package handler

import (
	"net/http"

	"supplieriq/internal/apierror"
	"supplieriq/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type SuggestionsHandler struct{ svc service.SuggestionService }

func NewSuggestionsHandler(svc service.SuggestionService) *SuggestionsHandler {
	return &SuggestionsHandler{svc: svc}
}

// List returns the ranked suggestions for a request. Unknown or unfinished
// requests yield 200 with an empty array; clients poll until it fills.
func (h *SuggestionsHandler) List(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	resp, err := h.svc.ListByRequest(c.Request.Context(), id)
	if err != nil {
		log.Error().Err(err).Str("request_id", id.String()).Msg("suggestions: list failed")
		c.JSON(http.StatusInternalServerError, apierror.New("could not load suggestions"))
		return
	}
	c.JSON(http.StatusOK, resp)
}
