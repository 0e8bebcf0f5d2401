package auth

import (
	"fmt"

	"github.com/casbin/casbin/v2"

	"go-newsblog-app/internal/logger"
)

// SeedDefaultPolicies ensures that the application has a baseline set of authorization rules.
// It checks if each default policy exists before adding it, making the operation idempotent
// and safe to run on every application start.
func SeedDefaultPolicies(e casbin.IEnforcer, log logger.Logger) {
	log.Info("Seeding default authorization policies...")

	// Default policies grant read access to anonymous visitors and content
	// management permissions to editors. The 'editor' role inherits from
	// 'anonymous'.
	policies := [][]string{
		// Anonymous visitors can read articles and widgets and reach the
		// login flow.
		{"anonymous", "/auth/login", "GET"},
		{"anonymous", "/auth/callback", "GET"},
		{"anonymous", "/api/categories", "GET"},
		{"anonymous", "/api/:namespace/articles", "GET"},
		{"anonymous", "/api/:namespace/articles/:slug", "GET"},
		{"anonymous", "/api/:namespace/widgets/:kind", "GET"},
		{"anonymous", "/api/articles/:id/related", "GET"},

		// Editors can additionally save articles and content blocks and
		// toggle edit mode.
		{"editor", "/api/:namespace/articles", "POST"},
		{"editor", "/api/blocks", "POST"},
		{"editor", "/api/categories", "POST"},
		{"editor", "/api/categories/:id", "POST"},
		{"editor", "/auth/editmode", "POST"},
		{"editor", "/auth/logout", "POST"},
	}
	for _, p := range policies {
		if has, _ := e.HasPolicy(p); !has {
			if _, err := e.AddPolicy(p); err != nil {
				log.Error(err, fmt.Sprintf("Failed to add policy %v", p))
			}
		}
	}

	// Granting the 'editor' role all permissions of the 'anonymous' role.
	if has, _ := e.HasRoleForUser("editor", "anonymous"); !has {
		if _, err := e.AddRoleForUser("editor", "anonymous"); err != nil {
			log.Error(err, "Failed to add role 'editor' -> 'anonymous'")
		}
	}
	log.Info("Policy seeding complete.")
}
