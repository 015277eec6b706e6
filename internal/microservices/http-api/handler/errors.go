package handler

import (
	"errors"
	"net/http"

	"booksync/internal/microservices/http-api/dto"
	"booksync/internal/microservices/http-api/repository"
	"booksync/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
)

const (
	msgInvalidStatus     = "Status inválido"
	msgValidation        = "Erro de validação"
	msgBookNotFound      = "Livro não encontrado na Google Books API"
	msgReviewNotFound    = "Review não encontrada"
	msgReviewConflict    = "Você já adicionou este livro. Use PUT para atualizar."
	msgLookupUnavailable = "Google Books API indisponível, tente novamente mais tarde"
	msgInternal          = "Erro interno"
)

// respondError maps service errors to HTTP responses. Unknown errors become 500
// and are attached to the context for the request logger.
func respondError(c *gin.Context, err error) {
	_ = c.Error(err)

	switch {
	case errors.Is(err, service.ErrInvalidStatus):
		c.JSON(http.StatusBadRequest, gin.H{"error": msgInvalidStatus})
	case errors.Is(err, service.ErrInvalidPayload):
		c.JSON(http.StatusBadRequest, gin.H{"error": msgValidation, "details": "rating must be between 1 and 5"})
	case errors.Is(err, service.ErrBookNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": msgBookNotFound})
	case errors.Is(err, service.ErrReviewNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": msgReviewNotFound})
	case errors.Is(err, service.ErrReviewConflict), errors.Is(err, repository.ErrDuplicateReview):
		c.JSON(http.StatusConflict, gin.H{"error": msgReviewConflict})
	case errors.Is(err, service.ErrLookupUnavailable):
		c.JSON(http.StatusBadGateway, gin.H{"error": msgLookupUnavailable})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": msgInternal})
	}
}

// respondBindError answers a failed ShouldBindJSON with 400.
func respondBindError(c *gin.Context, err error) {
	if dto.HasTag(err, "review_status") {
		c.JSON(http.StatusBadRequest, gin.H{"error": msgInvalidStatus})
		return
	}
	if details := dto.BindingErrors(err); details != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": msgValidation, "details": details})
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": msgValidation + ": " + err.Error()})
}

// currentUserID reads the id AuthMiddleware stored on the context.
func currentUserID(c *gin.Context) (string, bool) {
	v, exists := c.Get("userID")
	if !exists {
		return "", false
	}
	userID, ok := v.(string)
	return userID, ok && userID != ""
}
