package middleware

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/torisawa/task-assignment-api/internal/constants"
	"github.com/torisawa/task-assignment-api/internal/models"
	"github.com/torisawa/task-assignment-api/internal/services"
)

const contextKeyConsoleUser = "console_user"

// RequireConsoleUser authenticates console requests via the session and
// loads the current user. Regular users never hold a console session, but a
// stale session for a deleted or demoted account is cleared the same way.
func RequireConsoleUser(authService *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		rawUserID := session.Get(constants.ContextKeyUserID)
		if rawUserID == nil {
			c.Redirect(http.StatusFound, "/console/login")
			c.Abort()
			return
		}

		userID, ok := rawUserID.(uint64)
		if !ok {
			c.Redirect(http.StatusFound, "/console/login")
			c.Abort()
			return
		}

		user, err := authService.GetUser(userID)
		if err != nil || (!user.IsAdmin() && !user.IsSuperadmin()) {
			session.Clear()
			_ = session.Save()
			c.Redirect(http.StatusFound, "/console/login")
			c.Abort()
			return
		}

		c.Set(contextKeyConsoleUser, user)
		c.Next()
	}
}

// RequireSuperadmin restricts a console route to superadmins.
// Must run after RequireConsoleUser.
func RequireSuperadmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := GetConsoleUser(c)
		if !ok || !user.IsSuperadmin() {
			c.Redirect(http.StatusFound, "/console/dashboard")
			c.Abort()
			return
		}
		c.Next()
	}
}

// GetConsoleUser retrieves the authenticated console user from context
func GetConsoleUser(c *gin.Context) (*models.User, bool) {
	value, exists := c.Get(contextKeyConsoleUser)
	if !exists {
		return nil, false
	}
	user, ok := value.(*models.User)
	return user, ok
}
