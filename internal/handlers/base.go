package handlers

import (
	"strings"

	"github.com/adilinfo14/sondage/internal/middleware"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

// FlashMessage is a one-shot notice rendered by the layout.
type FlashMessage struct {
	Level   string
	Message string
}

// Render injects common view data (CSRF token, pending flashes, current
// path) before handing off to the template.
func Render(c *gin.Context, code int, name string, obj gin.H) {
	if obj == nil {
		obj = gin.H{}
	}

	if token, exists := c.Get(middleware.CSRFContextKey); exists {
		obj["CSRFToken"] = token
	}
	obj["Flashes"] = takeFlashes(c)
	obj["CurrentPath"] = c.Request.URL.Path

	c.HTML(code, name, obj)
}

// Flash queues a one-shot message for the next rendered page.
func Flash(c *gin.Context, level, message string) {
	session := sessions.Default(c)
	session.AddFlash(level + "|" + message)
	session.Save()
}

func takeFlashes(c *gin.Context) []FlashMessage {
	session := sessions.Default(c)
	raw := session.Flashes()
	if len(raw) == 0 {
		return nil
	}
	session.Save()

	flashes := make([]FlashMessage, 0, len(raw))
	for _, f := range raw {
		s, ok := f.(string)
		if !ok {
			continue
		}
		level, message, found := strings.Cut(s, "|")
		if !found {
			level, message = "info", s
		}
		flashes = append(flashes, FlashMessage{Level: level, Message: message})
	}
	return flashes
}

// RenderError renders the shared error page.
func RenderError(c *gin.Context, code int, message string) {
	Render(c, code, "error.html", gin.H{"Error": message})
}
