package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/loqui/chat-system/internal/api/metrics"
	"github.com/loqui/chat-system/internal/api/middleware"
	"github.com/loqui/chat-system/internal/core/ports"
)

// ChannelHandler handles channel CRUD.
type ChannelHandler struct {
	channels ports.ChannelService
}

func NewChannelHandler(channels ports.ChannelService) *ChannelHandler {
	return &ChannelHandler{channels: channels}
}

type createChannelRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=255"`
	Description string `json:"description" validate:"max=4096"`
	Type        string `json:"type" validate:"omitempty,oneof=public private direct"`
	Avatar      string `json:"avatar" validate:"omitempty,url"`
}

// Create handles POST /channels.
//
// @Summary      Create a channel
// @Tags         channels
// @Accept       json
// @Produce      json
// @Param        body  body      createChannelRequest  true  "Channel details"
// @Success      201   {object}  domain.Channel
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /channels [post]
func (h *ChannelHandler) Create(c echo.Context) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}

	var req createChannelRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	channel, err := h.channels.Create(c.Request().Context(), ports.CreateChannelInput{
		Name:        req.Name,
		Description: req.Description,
		Type:        req.Type,
		Avatar:      req.Avatar,
		CreatorID:   user.ID,
	})
	if err != nil {
		return err
	}

	metrics.ChannelsCreatedTotal.WithLabelValues(string(channel.Type)).Inc()
	return c.JSON(http.StatusCreated, channel)
}

// List handles GET /channels.
//
// @Summary      List channels, newest first
// @Tags         channels
// @Produce      json
// @Param        limit   query     int  false  "Page size (max 100)"
// @Param        offset  query     int  false  "Page offset"
// @Success      200     {array}   domain.Channel
// @Router       /channels [get]
func (h *ChannelHandler) List(c echo.Context) error {
	limit, offset := pageParams(c)
	channels, err := h.channels.List(c.Request().Context(), limit, offset)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, channels)
}

// Get handles GET /channels/:id.
//
// @Summary      Get a channel
// @Tags         channels
// @Produce      json
// @Param        id   path      string  true  "Channel id"
// @Success      200  {object}  domain.Channel
// @Failure      404  {object}  map[string]string
// @Router       /channels/{id} [get]
func (h *ChannelHandler) Get(c echo.Context) error {
	channel, err := h.channels.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, channel)
}

// Delete handles DELETE /channels/:id. Only the creator may delete;
// messages in the channel are removed by cascade.
//
// @Summary      Delete a channel
// @Tags         channels
// @Param        id  path  string  true  "Channel id"
// @Success      204
// @Failure      401  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /channels/{id} [delete]
func (h *ChannelHandler) Delete(c echo.Context) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	if err := h.channels.Delete(c.Request().Context(), c.Param("id"), user.ID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// pageParams reads limit/offset query parameters, tolerating absent or
// malformed values. Services clamp the final range.
func pageParams(c echo.Context) (limit, offset int) {
	limit, _ = strconv.Atoi(c.QueryParam("limit"))
	offset, _ = strconv.Atoi(c.QueryParam("offset"))
	return limit, offset
}
