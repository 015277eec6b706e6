package handler

import (
	"net/http"
	"strings"

	"booksync/internal/catalog"

	"github.com/gin-gonic/gin"
)

// BookHandler proxies catalog searches.
type BookHandler struct {
	lookup catalog.Lookup
}

func NewBookHandler(lookup catalog.Lookup) *BookHandler {
	return &BookHandler{lookup: lookup}
}

func (h *BookHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/search", h.Search)
}

// Search godoc
// @Summary      Search Google Books
// @Description  The catalog response is returned unchanged.
// @Tags         books
// @Produce      json
// @Param        query  query     string  true  "Search terms"
// @Success      200    {object}  map[string]interface{}
// @Failure      400    {object}  map[string]string
// @Failure      502    {object}  map[string]string
// @Router       /user/books/search [get]
func (h *BookHandler) Search(c *gin.Context) {
	query := strings.TrimSpace(c.Query("query"))
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Parâmetro 'query' é obrigatório"})
		return
	}

	body, err := h.lookup.Search(c.Request.Context(), query)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusBadGateway, gin.H{"error": msgLookupUnavailable})
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", body)
}
