package middleware

import (
	"context"
	"strings"

	"github.com/m1z23r/drift/pkg/drift"
)

const APIKeyProjectIDKey = "api_key_project_id"

// APIKeyServiceInterface defines the methods needed by the API key middleware
type APIKeyServiceInterface interface {
	ValidateAndGetProject(ctx context.Context, key string) (int64, error)
}

// APIKeyAuth authenticates Content API requests using project API keys.
func APIKeyAuth(apiKeyService APIKeyServiceInterface) drift.HandlerFunc {
	return func(c *drift.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Unauthorized("missing authorization header")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			c.Unauthorized("invalid authorization header format")
			return
		}

		token := parts[1]
		if !strings.HasPrefix(token, "str_") {
			c.Unauthorized("invalid api key format")
			return
		}

		projectID, err := apiKeyService.ValidateAndGetProject(context.Background(), token)
		if err != nil {
			c.Unauthorized("invalid or expired api key")
			return
		}

		c.Set(APIKeyProjectIDKey, projectID)
		c.Next()
	}
}

// GetAPIKeyProjectID retrieves the project ID from context (set by API key auth)
func GetAPIKeyProjectID(c *drift.Context) int64 {
	if id, ok := c.Get(APIKeyProjectIDKey); ok {
		if pid, ok := id.(int64); ok {
			return pid
		}
	}
	return 0
}
