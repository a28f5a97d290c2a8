package handler

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"fyugp/internal/auth"
	"fyugp/internal/metrics"
	"fyugp/internal/roster"
)

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login matches the credentials against the teacher table and issues a
// session token carrying the caller's identity.
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	tables, ok := h.load(c)
	if !ok {
		return
	}
	teacher, err := roster.Authenticate(tables.Teachers, req.Email, req.Password)
	if err != nil {
		metrics.Logins.WithLabelValues("failure").Inc()
		fail(c, err)
		return
	}
	if roster.IsAdmin(teacher.Role) {
		if _, ok := roster.DepartmentCode(teacher.Department); !ok {
			log.Printf("warning: %s %s has no usable department", teacher.Role, teacher.TeacherID)
		}
	}

	token, err := auth.Issue(auth.Identity{
		TeacherID:  teacher.TeacherID,
		Name:       teacher.Name,
		Role:       teacher.Role,
		Department: teacher.Department,
	}, h.issuer, h.signingKey, h.accessTTL)
	if err != nil {
		log.Printf("token issue failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token issue failed"})
		return
	}
	metrics.Logins.WithLabelValues("success").Inc()
	c.JSON(http.StatusOK, gin.H{
		"access_token": token.AccessToken,
		"expires_at":   token.ExpiresAt.Unix(),
		"teacher":      teacher,
	})
}

// Logout revokes the presented token until it would have expired.
func (h *Handler) Logout(c *gin.Context) {
	claims, ok := auth.ClaimsFromContext(c)
	if !ok || claims.ExpiresAt == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "no session"})
		return
	}
	if err := h.revoker.Revoke(c.Request.Context(), claims.ID, claims.ExpiresAt.Time); err != nil {
		log.Printf("revoke %s: %v", claims.ID, err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "session store unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "logged out"})
}
