package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

func (a *App) getStatus() string {
	switch {
	case a.session.IsLoading():
		return "(...)"
	case a.session.IsAuthenticated():
		u := a.session.User()
		label := ""
		if u != nil {
			label = u.Email
		}
		if a.config.DemoMode {
			label = label + " demo"
		}
		return fmt.Sprintf("(%s)", strings.TrimSpace(label))
	default:
		return ""
	}
}

// Whoami prints the current actor, role and granted modules.
func (a *App) Whoami(ctx context.Context) error {
	u := a.session.User()
	if u == nil {
		printlnFn("Not logged in")
		return nil
	}

	printlnFn(fmt.Sprintf("%s %s <%s>", u.FirstName, u.LastName, u.Email))
	if u.UserTypeName != "" {
		printlnFn("Role:", u.UserTypeName)
	}
	if u.CompanyID != "" {
		printlnFn("Company:", u.CompanyID)
	}

	modules := a.session.Modules()
	if len(modules) == 0 {
		printlnFn("Modules: none")
		return nil
	}
	printlnFn("Modules:", strings.Join(modules, ", "))
	return nil
}

// Can reports whether the actor holds one permission item.
func (a *App) Can(ctx context.Context, itemID string) error {
	if a.session.HasPermission(itemID) {
		printlnFn("granted:", itemID)
	} else {
		printlnFn("denied:", itemID)
	}
	return nil
}

// Route reports whether the actor may open one route.
func (a *App) Route(ctx context.Context, route string) error {
	if a.session.HasRoute(route) {
		printlnFn("granted:", route)
	} else {
		printlnFn("denied:", route)
	}
	return nil
}

// Module prints one module's items and access levels.
func (a *App) Module(ctx context.Context, moduleID string) error {
	if !a.session.HasModule(moduleID) {
		printlnFn("no access to module", moduleID)
		return nil
	}

	items := a.session.GetModulePermissions(moduleID)
	levels := a.session.GetPermissionLevels(moduleID)
	printlnFn("module", moduleID+":", strconv.Itoa(len(items)), "items")
	for _, it := range items {
		printlnFn("  -", it)
	}
	if len(levels) > 0 {
		printlnFn("levels:", strings.Join(levels, ", "))
	}
	return nil
}

// Refresh exchanges the refresh token for a new access token.
func (a *App) Refresh(ctx context.Context) error {
	if _, err := a.session.RefreshToken(ctx); err != nil {
		printlnFn("Token refresh failed:", err.Error())
		return err
	}
	printlnFn("Token refreshed")
	return nil
}

// Reload re-runs the session bootstrap when it is retryable, and refetches
// the permission grant when already authenticated.
func (a *App) Reload(ctx context.Context) error {
	if a.session.IsAuthenticated() {
		if err := a.session.RefreshPermissions(ctx); err != nil {
			printlnFn("Permission reload failed:", err.Error())
			return err
		}
		printlnFn("Permissions reloaded")
		return nil
	}

	if err := a.session.Bootstrap(ctx); err != nil {
		printlnFn("Session restore failed:", err.Error())
		return err
	}
	printlnFn("Session state:", a.session.State().String())
	return nil
}
