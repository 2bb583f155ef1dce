package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/wamunyima3/CloudScribe/internal/core/ports"
)

type NotificationHandler struct {
	notifications ports.NotificationService
}

func NewNotificationHandler(notifications ports.NotificationService) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

// List returns the caller's unread notifications, newest first.
//
// @Summary      Unread notifications
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  dataResponse{data=[]domain.Notification}
// @Router       /notifications [get]
func (h *NotificationHandler) List(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	list, err := h.notifications.Unread(c.Request().Context(), id.UserID)
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, nonNil(list))
}

// MarkRead marks one of the caller's notifications as read.
//
// @Summary      Mark notification read
// @Tags         notifications
// @Security     BearerAuth
// @Param        id   path  string  true  "Notification ID"
// @Success      200  {object}  dataResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /notifications/{id}/read [put]
func (h *NotificationHandler) MarkRead(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	if err := h.notifications.MarkRead(c.Request().Context(), id.UserID, c.Param("id")); err != nil {
		return err
	}
	return successMessage(c, http.StatusOK, "Notification marked as read", nil)
}

// Delete removes one of the caller's notifications.
//
// @Summary      Delete notification
// @Tags         notifications
// @Security     BearerAuth
// @Param        id   path  string  true  "Notification ID"
// @Success      200  {object}  dataResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /notifications/{id} [delete]
func (h *NotificationHandler) Delete(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	if err := h.notifications.Delete(c.Request().Context(), id.UserID, c.Param("id")); err != nil {
		return err
	}
	return successMessage(c, http.StatusOK, "Notification deleted", nil)
}

// UpdatePreferences replaces the caller's notification switches.
//
// @Summary      Update notification preferences
// @Tags         notifications
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      notificationSwitchesRequest  true  "Switches"
// @Success      200   {object}  dataResponse{data=domain.NotificationSwitches}
// @Router       /notifications/preferences [put]
func (h *NotificationHandler) UpdatePreferences(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	var req notificationSwitchesRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	user, err := h.notifications.UpdatePreferences(c.Request().Context(), id.UserID, toSwitches(req))
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, user.Preferences.Notifications)
}
