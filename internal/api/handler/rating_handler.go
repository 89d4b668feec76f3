package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/simonbalanoff/SigEpRush-API/internal/dto"
	"github.com/simonbalanoff/SigEpRush-API/internal/service"
	"github.com/simonbalanoff/SigEpRush-API/pkg/response"
)

// RatingHandler serves ratings and their reactions.
type RatingHandler struct {
	ratingSvc   service.RatingService
	reactionSvc service.ReactionService
}

// NewRatingHandler creates a RatingHandler.
func NewRatingHandler(ratingSvc service.RatingService, reactionSvc service.ReactionService) *RatingHandler {
	return &RatingHandler{ratingSvc: ratingSvc, reactionSvc: reactionSvc}
}

// UpsertRating POST /api/v1/pnms/:id/ratings
func (h *RatingHandler) UpsertRating(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.UpsertRatingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	result, err := h.ratingSvc.Upsert(c.Request.Context(), userID, c.Param("id"), &req)
	if err != nil {
		h.handleRatingError(c, err)
		return
	}

	response.OK(c, result)
}

// ListRatings GET /api/v1/pnms/:id/ratings
func (h *RatingHandler) ListRatings(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.ratingSvc.List(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		h.handleRatingError(c, err)
		return
	}

	response.OK(c, result)
}

// DeleteMyRating DELETE /api/v1/pnms/:id/ratings/mine
func (h *RatingHandler) DeleteMyRating(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.ratingSvc.DeleteMine(c.Request.Context(), userID, c.Param("id")); err != nil {
		h.handleRatingError(c, err)
		return
	}

	response.NoContent(c)
}

// SetVisibility PATCH /api/v1/ratings/:id/visibility (term Admin)
func (h *RatingHandler) SetVisibility(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.SetRatingVisibilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	result, err := h.ratingSvc.SetVisibility(c.Request.Context(), userID, c.Param("id"), *req.IsHidden)
	if err != nil {
		h.handleRatingError(c, err)
		return
	}

	response.OK(c, result)
}

// AddReaction POST /api/v1/ratings/:id/reactions
func (h *RatingHandler) AddReaction(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.ReactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	result, err := h.reactionSvc.Add(c.Request.Context(), userID, c.Param("id"), req.Emoji)
	if err != nil {
		h.handleRatingError(c, err)
		return
	}

	response.OK(c, result)
}

// RemoveReaction DELETE /api/v1/ratings/:id/reactions
// The emoji may come as a JSON body or as ?emoji=.
func (h *RatingHandler) RemoveReaction(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.ReactionRequest
	var err error
	if c.Query("emoji") != "" || c.Request.ContentLength == 0 {
		err = c.ShouldBindQuery(&req)
	} else {
		err = c.ShouldBindJSON(&req)
	}
	if err != nil {
		respondBindError(c, err)
		return
	}

	result, err := h.reactionSvc.Remove(c.Request.Context(), userID, c.Param("id"), req.Emoji)
	if err != nil {
		h.handleRatingError(c, err)
		return
	}

	response.OK(c, result)
}

func (h *RatingHandler) handleRatingError(c *gin.Context, err error) {
	if membershipErrorHandled(c, err) {
		return
	}
	switch {
	case errors.Is(err, service.ErrPNMNotFound):
		response.NotFound(c, 16001, "pnm_not_found", "candidate not found")
	case errors.Is(err, service.ErrRatingNotFound):
		response.NotFound(c, 16002, "rating_not_found", "rating not found")
	default:
		response.InternalError(c)
	}
}
