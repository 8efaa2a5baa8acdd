package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/tutoring-scheduler/internal/middleware"
)

func operatorFromContext(c *gin.Context) string {
	claims, ok := middleware.CurrentClaims(c)
	if !ok || claims == nil {
		return ""
	}
	return claims.UserID
}

// reasonOrOperator fills an empty reason with the acting operator so ledger entries stay attributable.
func reasonOrOperator(c *gin.Context, reason string) string {
	if reason != "" {
		return reason
	}
	if op := operatorFromContext(c); op != "" {
		return "changed by " + op
	}
	return reason
}
