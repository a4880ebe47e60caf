package http

import (
	"github.com/gin-gonic/gin"
)

const clientIDKey = "client_id"

func setClientID(c *gin.Context, id string) {
	c.Set(clientIDKey, id)
}

func getClientID(c *gin.Context) string {
	return c.GetString(clientIDKey)
}
