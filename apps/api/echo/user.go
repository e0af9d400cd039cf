package echoapi

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/entregas/core/user"
)

type (
	userApi struct {
		svc user.Service
	}

	// registerRequest also accepts the legacy "matricula", "password" & "rol" keys.
	registerRequest struct {
		Identifier string `json:"identifier"`
		Matricula  string `json:"matricula"`
		Secret     string `json:"secret"`
		Password   string `json:"password"`
		Role       string `json:"role"`
		Rol        string `json:"rol"`
	}

	loginRequest struct {
		Identifier string `json:"identifier"`
		Matricula  string `json:"matricula"`
		Secret     string `json:"secret"`
		Password   string `json:"password"`
	}

	successResponse struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}

	loginResponse struct {
		Success bool          `json:"success"`
		User    user.Identity `json:"user"`
	}
)

func registerUserAPI(g *echo.Group, svc user.Service) {
	api := userApi{svc: svc}

	g.POST("/register", api.register)
	g.POST("/login", api.login)
}

// legacy "rol" values
var legacyRoles = map[string]string{
	"alumno": user.RoleStudent,
	"admin":  user.RoleAdmin,
}

func legacyRole(rol string) string {
	if role, ok := legacyRoles[strings.ToLower(strings.TrimSpace(rol))]; ok {
		return role
	}
	return rol
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

// Handlers

func (api *userApi) register(ctx echo.Context) error {
	var data registerRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to registerRequest")
	}

	_, err := api.svc.Register(ctx.Request().Context(), user.NewUser{
		Identifier: firstNonEmpty(data.Identifier, data.Matricula),
		Password:   firstNonEmpty(data.Secret, data.Password),
		Role:       firstNonEmpty(data.Role, legacyRole(data.Rol)),
	})
	if err != nil {
		return errors.Wrap(err, "registering user")
	}
	return ctx.JSON(http.StatusCreated, successResponse{Success: true, Message: "user registered successfully"})
}

func (api *userApi) login(ctx echo.Context) error {
	var data loginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to loginRequest")
	}

	id, err := api.svc.Login(
		ctx.Request().Context(),
		firstNonEmpty(data.Identifier, data.Matricula),
		firstNonEmpty(data.Secret, data.Password),
	)
	if err != nil {
		return errors.Wrap(err, "logging in")
	}
	return ctx.JSON(http.StatusOK, loginResponse{Success: true, User: id})
}
