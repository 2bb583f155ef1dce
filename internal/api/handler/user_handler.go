package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/wamunyima3/CloudScribe/internal/api/middleware"
	"github.com/wamunyima3/CloudScribe/internal/core/domain"
	"github.com/wamunyima3/CloudScribe/internal/core/ports"
)

type UserHandler struct {
	users ports.UserService
}

func NewUserHandler(users ports.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// Profile returns the caller's full profile.
//
// @Summary      Get profile
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  dataResponse{data=domain.User}
// @Router       /users/profile [get]
func (h *UserHandler) Profile(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	user, err := h.users.Profile(c.Request().Context(), id.UserID)
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, user)
}

// UpdateProfile changes username, email or password. The current password is
// required.
//
// @Summary      Update profile
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      updateProfileRequest  true  "Profile changes"
// @Success      200   {object}  dataResponse{data=domain.User}
// @Failure      400   {object}  ErrorResponse
// @Router       /users/profile [put]
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	var req updateProfileRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	user, err := h.users.UpdateProfile(c.Request().Context(), id.UserID, toProfileUpdate(req))
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, user)
}

// UpdatePreferences replaces the caller's preferences.
//
// @Summary      Update preferences
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      preferencesRequest  true  "Preferences"
// @Success      200   {object}  dataResponse{data=domain.User}
// @Router       /users/preferences [put]
func (h *UserHandler) UpdatePreferences(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	var req preferencesRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	user, err := h.users.UpdatePreferences(c.Request().Context(), id.UserID, toPreferences(req))
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, user)
}

// Activity lists the caller's most recent audited actions.
//
// @Summary      Recent activity
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  dataResponse{data=[]domain.AuditEntry}
// @Router       /users/activity [get]
func (h *UserHandler) Activity(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	entries, err := h.users.Activity(c.Request().Context(), id.UserID)
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, nonNil(entries))
}

// Permissions lists the effective permissions of the caller's role.
//
// @Summary      Effective permissions
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  dataResponse{data=permissionsResponse}
// @Router       /users/permissions [get]
func (h *UserHandler) Permissions(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, permissionsResponse{Role: id.Role, Permissions: nonNil(h.users.Permissions(id.Role))})
}

// Search lists users by partial email/username match and role.
//
// @Summary      Search users
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        q      query  string  false  "Email or username fragment"
// @Param        role   query  string  false  "Role"
// @Param        page   query  int     false  "Page"
// @Param        limit  query  int     false  "Page size"
// @Success      200  {object}  pageResponse{data=[]domain.PublicUser}
// @Failure      403  {object}  ErrorResponse
// @Router       /users/search [get]
func (h *UserHandler) Search(c echo.Context) error {
	var req searchUsersRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	f := ports.UserFilter{
		Query:       req.Query,
		Role:        domain.Role(req.Role),
		PageRequest: domain.PageRequest{Page: req.Page, Limit: req.Limit}.Normalize(),
	}
	users, total, err := h.users.Search(c.Request().Context(), f)
	if err != nil {
		return err
	}
	return successPage(c, http.StatusOK, toPublicUsers(users), f.PageRequest, total)
}

// Create adds a pre-verified account with any role.
//
// @Summary      Create user
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createUserRequest  true  "New user"
// @Success      201   {object}  dataResponse{data=domain.PublicUser}
// @Failure      400   {object}  ErrorResponse
// @Failure      403   {object}  ErrorResponse
// @Router       /users [post]
func (h *UserHandler) Create(c echo.Context) error {
	var req createUserRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	user, err := h.users.Create(c.Request().Context(), ports.AdminUserInput{
		Email:    req.Email,
		Username: req.Username,
		Password: req.Password,
		Role:     domain.Role(req.Role),
	})
	if err != nil {
		return err
	}
	middleware.SetAuditEntity(c, user.ID)
	return success(c, http.StatusCreated, user.Public())
}

// Update changes a user's email, username or role.
//
// @Summary      Update user
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string             true  "User ID"
// @Param        body  body      updateUserRequest  true  "Changes"
// @Success      200   {object}  dataResponse{data=domain.PublicUser}
// @Failure      404   {object}  ErrorResponse
// @Router       /users/{id} [put]
func (h *UserHandler) Update(c echo.Context) error {
	var req updateUserRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	user, err := h.users.Update(c.Request().Context(), c.Param("id"), toAdminUpdate(req))
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, user.Public())
}

// Delete removes a user.
//
// @Summary      Delete user
// @Tags         users
// @Security     BearerAuth
// @Param        id   path  string  true  "User ID"
// @Success      200  {object}  dataResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /users/{id} [delete]
func (h *UserHandler) Delete(c echo.Context) error {
	if err := h.users.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return successMessage(c, http.StatusOK, "User deleted", nil)
}
