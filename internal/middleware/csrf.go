package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// CSRFSessionKey is where the per-session token lives.
	CSRFSessionKey = "csrf_token"
	// CSRFContextKey exposes the token to templates via the render helper.
	CSRFContextKey = "csrf"
	// CSRFFormField is the hidden form field checked on mutating requests.
	CSRFFormField = "csrf_token"
)

// CSRF issues a per-session token on first contact and validates it on every
// mutating request. Invalid submissions are bounced back to the referring
// page rather than rendered, mirroring the flash-and-redirect form flow.
func CSRF() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)

		token, _ := session.Get(CSRFSessionKey).(string)
		if token == "" {
			token = uuid.NewString()
			session.Set(CSRFSessionKey, token)
			if err := session.Save(); err != nil {
				c.AbortWithStatus(http.StatusInternalServerError)
				return
			}
		}
		c.Set(CSRFContextKey, token)

		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			c.Next()
			return
		}

		submitted := c.PostForm(CSRFFormField)
		if submitted == "" || subtle.ConstantTimeCompare([]byte(submitted), []byte(token)) != 1 {
			target := c.Request.Referer()
			if target == "" {
				target = "/"
			}
			session.AddFlash("error|Session invalide. Recharge la page puis réessaie.")
			session.Save()
			c.Redirect(http.StatusFound, target)
			c.Abort()
			return
		}

		c.Next()
	}
}
