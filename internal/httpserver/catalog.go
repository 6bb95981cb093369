package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"icecream-storefront/internal/catalog"
)

// catalogHandler serves the flavour catalog grouped by category, so clients
// do not have to ship their own copy of the price list.
func catalogHandler(c *gin.Context) {
	c.JSON(http.StatusOK, catalog.Categories())
}
