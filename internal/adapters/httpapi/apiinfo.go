package httpapi

const (
	apiName        = "Mailer API"
	apiVersion     = "1.0.0"
	apiDescription = "Contact-form mailer with API-key protected sending and JWT-protected key management"
)

func apiInfoSpec() map[string]any {
	return map[string]any{
		"name":        apiName,
		"version":     apiVersion,
		"description": apiDescription,

		"authentication": map[string]any{
			"publicEndpoints": map[string]any{
				"description": "API key authentication",
				"methods": []string{
					"Header: x-api-key: <your-api-key>",
					"Query parameter: ?apiKey=<your-api-key>",
				},
			},
			"adminEndpoints": map[string]any{
				"description": "JWT authentication (for administrators only)",
				"method":      "Header: Authorization: Bearer <your-jwt-token>",
			},
		},

		"endpoints": []map[string]any{
			{
				"path":        "/",
				"method":      "GET",
				"description": "API information",
				"auth":        "None",
			},
			{
				"path":        "/send",
				"method":      "POST",
				"description": "Send a contact email",
				"auth":        "API key required",
				"rateLimit":   "declared per key, not enforced",
				"body": map[string]string{
					"name":    "string (required) - Sender's name",
					"email":   "string (required) - Sender's email",
					"message": "string (required) - Message content",
					"company": "string (optional) - Company name",
				},
			},
			{
				"path":        "/api-keys",
				"method":      "POST",
				"description": "Create a new API key (raw key returned once)",
				"auth":        "Admin JWT required",
				"body": map[string]string{
					"name":        "string (required) - API key name",
					"description": "string (optional)",
					"rateLimit":   "integer (optional, default 600)",
					"expiresAt":   "RFC 3339 timestamp (optional)",
				},
			},
			{
				"path":        "/api-keys",
				"method":      "GET",
				"description": "List API keys (keys are masked)",
				"auth":        "Admin JWT required",
			},
			{
				"path":        "/api-keys/{id}",
				"method":      "DELETE",
				"description": "Revoke an API key",
				"auth":        "Admin JWT required",
			},
		},

		"errors": map[string]any{
			"authentication": map[string]string{
				"401": "Authentication required or invalid credential",
				"403": "Permission denied",
			},
			"validation": map[string]string{
				"400": "Invalid or missing data",
			},
			"notFound": map[string]string{
				"404": "Resource not found",
			},
			"rateLimit": map[string]string{
				"429": "Too many requests in a given time",
			},
			"server": map[string]string{
				"500": "Internal server error",
			},
		},
	}
}
