// Package middleware provides HTTP middleware for the Gin router.
//
// Go Learning Note: Middleware Pattern (Gin):
// In Gin, middleware is any function with the signature `gin.HandlerFunc`, which
// is `func(*gin.Context)`. Middleware functions form a chain: each one runs,
// optionally calls c.Next() to pass control to the next handler, and can call
// c.Abort() to stop the chain.
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// Context keys for storing authenticated user data.
const (
	UserIDKey   = "user_id"
	UserTypeKey = "user_type"

	UserTypeCustomer = "customer"
	UserTypeAgent    = "agent"
	UserTypeAdmin    = "admin"
)

var userTypePrefixes = []struct {
	prefix   string
	userType string
}{
	{"customer-", UserTypeCustomer},
	{"agent-", UserTypeAgent},
	{"admin-", UserTypeAdmin},
}

// MockAuth extracts user info from the Authorization header.
// Format: "Bearer <user-id>" where user-id starts with "customer-", "agent-"
// or "admin-".
//
// In production this would validate a token issued by the storefront backend
// and read the role from its claims.
func MockAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing authorization header"})
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization format"})
			c.Abort()
			return
		}

		userID := parts[1]
		userType := ""
		for _, p := range userTypePrefixes {
			if strings.HasPrefix(userID, p.prefix) {
				userType = p.userType
				break
			}
		}
		if userType == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid user id format"})
			c.Abort()
			return
		}

		c.Set(UserIDKey, userID)
		c.Set(UserTypeKey, userType)
		c.Next()
	}
}

// RequireRole ensures the authenticated user has the given type. Must be used
// after MockAuth() in the chain.
func RequireRole(userType string) gin.HandlerFunc {
	return func(c *gin.Context) {
		got, exists := c.Get(UserTypeKey)
		if !exists || got != userType {
			c.JSON(http.StatusForbidden, gin.H{"error": userType + " access required"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireCustomer ensures the authenticated user is a customer.
func RequireCustomer() gin.HandlerFunc {
	return RequireRole(UserTypeCustomer)
}

// RequireAgent ensures the authenticated user is a delivery agent.
func RequireAgent() gin.HandlerFunc {
	return RequireRole(UserTypeAgent)
}

// RequireAdmin ensures the authenticated user is an admin.
func RequireAdmin() gin.HandlerFunc {
	return RequireRole(UserTypeAdmin)
}

// GetUserID retrieves the user ID previously set by MockAuth middleware.
//
// Go Learning Note: Type Assertion:
// c.Get() returns (any, bool). The .(string) form panics if the value is
// not a string; it is only called after MockAuth has set the key.
func GetUserID(c *gin.Context) string {
	userID, _ := c.Get(UserIDKey)
	return userID.(string)
}

// GetUserType retrieves the user type from context.
func GetUserType(c *gin.Context) string {
	userType, _ := c.Get(UserTypeKey)
	return userType.(string)
}
