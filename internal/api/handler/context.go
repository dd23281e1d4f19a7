package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/zetas/barbershop/internal/core/domain"
)

// isAdmin reports whether the Auth middleware attached an admin session to
// the request. Anonymous requests are allowed on public routes.
func isAdmin(c echo.Context) bool {
	role, _ := c.Get("role").(string)
	return role == domain.RoleAdmin
}
