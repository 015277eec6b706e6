package handler

import (
	"fmt"
	"net/http"

	"booksync/internal/microservices/http-api/dto"
	"booksync/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
)

type ReviewHandler struct {
	reviewService service.ReviewService
}

func NewReviewHandler(reviewService service.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviewService: reviewService}
}

// RegisterRoutes registers review routes on an authenticated /api/user/books group.
func (h *ReviewHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("", h.List)
	router.POST("/:external_id", h.Create)
	router.PUT("/:external_id", h.Upsert)
	router.DELETE("/:external_id", h.Delete)
	router.PATCH("/:external_id/status", h.PatchStatus)
}

// List godoc
// @Summary      List the caller's reviewed books
// @Tags         reviews
// @Produce      json
// @Security     Bearer
// @Success      200  {array}   dto.UserBookResponse
// @Failure      401  {object}  map[string]string
// @Router       /user/books [get]
func (h *ReviewHandler) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	books, err := h.reviewService.List(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, books)
}

// Create godoc
// @Summary      Review a book for the first time
// @Tags         reviews
// @Accept       json
// @Produce      json
// @Security     Bearer
// @Param        external_id  path      string             true  "Google Books volume id"
// @Param        review       body      dto.ReviewRequest  true  "Review"
// @Success      201  {object}  dto.ReviewEnvelope
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Router       /user/books/{external_id} [post]
func (h *ReviewHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req dto.ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	review, err := h.reviewService.Create(c.Request.Context(), userID, c.Param("external_id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.ReviewEnvelope{Message: "Livro avaliado com sucesso", Review: review})
}

// Upsert godoc
// @Summary      Create or overwrite the caller's review of a book
// @Tags         reviews
// @Accept       json
// @Produce      json
// @Security     Bearer
// @Param        external_id  path      string             true  "Google Books volume id"
// @Param        review       body      dto.ReviewRequest  true  "Review"
// @Success      200  {object}  dto.ReviewEnvelope
// @Success      201  {object}  dto.ReviewEnvelope
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Router       /user/books/{external_id} [put]
func (h *ReviewHandler) Upsert(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req dto.ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	review, created, err := h.reviewService.Upsert(c.Request.Context(), userID, c.Param("external_id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	if created {
		c.JSON(http.StatusCreated, dto.ReviewEnvelope{Message: "Review criada com sucesso", Review: review})
		return
	}
	c.JSON(http.StatusOK, dto.ReviewEnvelope{Message: "Review atualizada com sucesso", Review: review})
}

// PatchStatus godoc
// @Summary      Change only the reading status of an existing review
// @Tags         reviews
// @Accept       json
// @Produce      json
// @Security     Bearer
// @Param        external_id  path      string             true  "Google Books volume id"
// @Param        status       body      dto.StatusRequest  true  "Status"
// @Success      200  {object}  dto.ReviewEnvelope
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /user/books/{external_id}/status [patch]
func (h *ReviewHandler) PatchStatus(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req dto.StatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	review, err := h.reviewService.PatchStatus(c.Request.Context(), userID, c.Param("external_id"), req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ReviewEnvelope{
		Message: fmt.Sprintf("Status atualizado para %s", review.Status),
		Review:  review,
	})
}

// Delete godoc
// @Summary      Remove the caller's review of a book
// @Tags         reviews
// @Produce      json
// @Security     Bearer
// @Param        external_id  path      string  true  "Google Books volume id"
// @Success      200  {object}  dto.MessageResponse
// @Failure      404  {object}  map[string]string
// @Router       /user/books/{external_id} [delete]
func (h *ReviewHandler) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	if err := h.reviewService.Delete(c.Request.Context(), userID, c.Param("external_id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Review removida com sucesso"})
}
