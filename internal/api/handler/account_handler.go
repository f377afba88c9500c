package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/projecthub/pm-system/internal/core/domain"
	"github.com/projecthub/pm-system/internal/core/ports"
)

type AccountHandler struct {
	service ports.AccountService
}

func NewAccountHandler(service ports.AccountService) *AccountHandler {
	return &AccountHandler{service: service}
}

type createAccountRequest struct {
	Name     string      `json:"name" validate:"required"`
	Email    string      `json:"email" validate:"required,email"`
	Password string      `json:"password" validate:"required,min=6"`
	Role     domain.Role `json:"role" validate:"required,oneof=admin manager user"`
	Manager  string      `json:"manager"`
}

type updateAccountRequest struct {
	Name     *string      `json:"name"`
	Email    *string      `json:"email"`
	Role     *domain.Role `json:"role"`
	IsActive *bool        `json:"is_active"`
	Manager  *string      `json:"manager"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=6"`
}

// Create provisions an account under the caller.
//
// @Summary      Create an account
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createAccountRequest  true  "Account details"
// @Success      201   {object}  domain.Account
// @Failure      403   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Failure      422   {object}  map[string]string
// @Router       /api/users [post]
func (h *AccountHandler) Create(c echo.Context) error {
	actor, err := currentAccount(c)
	if err != nil {
		return err
	}
	var req createAccountRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	acc, err := h.service.Create(c.Request().Context(), actor, ports.CreateAccountInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
		Manager:  req.Manager,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, acc)
}

// List returns the accounts visible to the caller.
//
// @Summary      List accounts
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  domain.Account
// @Router       /api/users [get]
func (h *AccountHandler) List(c echo.Context) error {
	actor, err := currentAccount(c)
	if err != nil {
		return err
	}
	list, err := h.service.List(c.Request().Context(), actor)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, list)
}

// @Summary      Get an account
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Account ID"
// @Success      200  {object}  domain.Account
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/users/{id} [get]
func (h *AccountHandler) Get(c echo.Context) error {
	actor, err := currentAccount(c)
	if err != nil {
		return err
	}
	acc, err := h.service.Get(c.Request().Context(), actor, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, acc)
}

// Update applies the fields the caller may change and ignores the rest.
//
// @Summary      Update an account
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                true  "Account ID"
// @Param        body  body      updateAccountRequest  true  "Changes"
// @Success      200   {object}  domain.Account
// @Router       /api/users/{id} [put]
func (h *AccountHandler) Update(c echo.Context) error {
	actor, err := currentAccount(c)
	if err != nil {
		return err
	}
	var req updateAccountRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	acc, err := h.service.Update(c.Request().Context(), actor, c.Param("id"), ports.UpdateAccountInput{
		Name:     req.Name,
		Email:    req.Email,
		Role:     req.Role,
		IsActive: req.IsActive,
		Manager:  req.Manager,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, acc)
}

// @Summary      Change password
// @Tags         users
// @Accept       json
// @Security     BearerAuth
// @Param        id    path  string                 true  "Account ID"
// @Param        body  body  changePasswordRequest  true  "Passwords"
// @Success      204
// @Router       /api/users/{id}/password [put]
func (h *AccountHandler) ChangePassword(c echo.Context) error {
	actor, err := currentAccount(c)
	if err != nil {
		return err
	}
	var req changePasswordRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	if err := h.service.ChangePassword(c.Request().Context(), actor, c.Param("id"), req.CurrentPassword, req.NewPassword); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Deactivate soft-deletes an account.
//
// @Summary      Deactivate an account
// @Tags         users
// @Security     BearerAuth
// @Param        id  path  string  true  "Account ID"
// @Success      204
// @Router       /api/users/{id} [delete]
func (h *AccountHandler) Deactivate(c echo.Context) error {
	actor, err := currentAccount(c)
	if err != nil {
		return err
	}
	if err := h.service.Deactivate(c.Request().Context(), actor, c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
