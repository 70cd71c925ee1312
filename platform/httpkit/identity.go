// Package httpkit provides HTTP utilities including identity abstraction.
package httpkit

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Identity represents the authenticated staff member's identity.
// This interface abstracts identity extraction from the web framework,
// allowing handlers to access user information without depending on Gin.
type Identity interface {
	// UserID returns the authenticated user's upstream ID.
	UserID() string
	// SessionID returns the portal session ID.
	SessionID() string
	// Role returns the user's role ("admin" or "user").
	Role() string
	// IsAdmin reports whether the user has the admin role.
	IsAdmin() bool
	// IsAuthenticated returns true if the user is authenticated.
	IsAuthenticated() bool
}

// identity is the concrete implementation of Identity.
type identity struct {
	userID        string
	sessionID     string
	role          string
	authenticated bool
}

func (i *identity) UserID() string { return i.userID }

func (i *identity) SessionID() string { return i.sessionID }

func (i *identity) Role() string { return i.role }

func (i *identity) IsAdmin() bool { return i.role == "admin" }

func (i *identity) IsAuthenticated() bool { return i.authenticated }

// GetIdentity extracts the Identity from a Gin context.
// Returns an unauthenticated identity if user info is not present.
func GetIdentity(c *gin.Context) Identity {
	userID, userOK := c.Get(ContextUserIDKey)
	sessionID, sessionOK := c.Get(ContextSessionIDKey)

	if !userOK || !sessionOK {
		return &identity{authenticated: false}
	}

	uid, ok := userID.(string)
	if !ok || uid == "" {
		return &identity{authenticated: false}
	}

	sid, ok := sessionID.(string)
	if !ok || sid == "" {
		return &identity{authenticated: false}
	}

	role := ""
	if value, ok := c.Get(ContextRoleKey); ok {
		role, _ = value.(string)
	}

	return &identity{
		userID:        uid,
		sessionID:     sid,
		role:          role,
		authenticated: true,
	}
}

// MustGetIdentity extracts the Identity from a Gin context.
// If the user is not authenticated, it aborts with 401 Unauthorized and returns nil.
func MustGetIdentity(c *gin.Context) Identity {
	id := GetIdentity(c)
	if !id.IsAuthenticated() {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return nil
	}
	return id
}
