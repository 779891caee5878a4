package handlers

import (
	"net/http"
	"strings"

	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"
	"github.com/gin-gonic/gin"

	"github.com/examstack/exam-service/internal/config"
	"github.com/examstack/exam-service/internal/models"
)

// NewCasdoorClient builds the SDK client used for token verification.
func NewCasdoorClient(cfg config.CasdoorConfig) *casdoorsdk.Client {
	return casdoorsdk.NewClient(
		cfg.Endpoint,
		cfg.ClientID,
		cfg.ClientSecret,
		cfg.Cert,
		cfg.Organization,
		cfg.Application,
	)
}

// AuthMiddleware verifies the Bearer token against Casdoor and stores the
// caller's identity in the gin context.
func AuthMiddleware(client *casdoorsdk.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
				Message: "missing authorization header",
			})
			return
		}

		token := strings.TrimPrefix(header, "Bearer ")
		if token == header {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
				Message: "authorization header must use Bearer scheme",
			})
			return
		}

		claims, err := client.ParseJwtToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
				Message: "invalid or expired token",
			})
			return
		}

		c.Set("user_id", claims.User.Id)
		c.Set("user_email", claims.User.Email)
		c.Set("user_role", resolveRole(&claims.User))
		c.Next()
	}
}

// resolveRole maps Casdoor roles onto the service's role model. Admin wins,
// unroled users default to student.
func resolveRole(user *casdoorsdk.User) models.UserRole {
	if user.IsAdmin {
		return models.RoleAdmin
	}

	for _, role := range user.Roles {
		switch strings.ToLower(role.Name) {
		case "admin", "administrator":
			return models.RoleAdmin
		case "faculty", "teacher", "instructor":
			return models.RoleFaculty
		}
	}

	return models.RoleStudent
}

// RequireRole restricts a route to the given roles. Admin always passes.
func RequireRole(roles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := GetUserRoleFromContext(c)
		if role == models.RoleAdmin {
			c.Next()
			return
		}

		for _, allowed := range roles {
			if role == allowed {
				c.Next()
				return
			}
		}

		c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{
			Message: "insufficient permissions",
		})
	}
}

// ===== CONTEXT ACCESSORS =====

func GetUserIDFromContext(c *gin.Context) string {
	if id, exists := c.Get("user_id"); exists {
		if userID, ok := id.(string); ok {
			return userID
		}
	}
	return ""
}

func GetUserRoleFromContext(c *gin.Context) models.UserRole {
	if role, exists := c.Get("user_role"); exists {
		if userRole, ok := role.(models.UserRole); ok {
			return userRole
		}
	}
	return models.RoleStudent
}
