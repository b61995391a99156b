package handlers

import (
	_ "embed"
	"net/http"

	"github.com/gin-gonic/gin"
)

//go:embed openapi.json
var openApiDoc []byte

// OpenApi serves the document the swagger UI is pointed at.
func (h *Handler) OpenApi(c *gin.Context) {
	c.Data(http.StatusOK, "application/json", openApiDoc)
}
