package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/loqui/chat-system/internal/api/metrics"
	"github.com/loqui/chat-system/internal/api/middleware"
	"github.com/loqui/chat-system/internal/core/ports"
)

// MessageHandler handles posting and reading channel messages.
type MessageHandler struct {
	messages ports.MessageService
}

func NewMessageHandler(messages ports.MessageService) *MessageHandler {
	return &MessageHandler{messages: messages}
}

type textPartRequest struct {
	Content string `json:"content" validate:"required"`
	Order   int    `json:"order" validate:"min=0"`
}

type filePartRequest struct {
	URL      string `json:"url" validate:"required,url"`
	Name     string `json:"name" validate:"required,max=255"`
	Size     int64  `json:"size" validate:"gt=0"`
	MimeType string `json:"mime_type" validate:"required,max=255"`
	Order    int    `json:"order" validate:"min=0"`
}

type postMessageRequest struct {
	Texts []textPartRequest `json:"text_contents" validate:"dive"`
	Files []filePartRequest `json:"file_contents" validate:"dive"`
}

// Post handles POST /channels/:id/messages.
//
// @Summary      Post a message to a channel
// @Tags         messages
// @Accept       json
// @Produce      json
// @Param        id    path      string              true  "Channel id"
// @Param        body  body      postMessageRequest  true  "Message contents"
// @Success      201   {object}  domain.Message
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /channels/{id}/messages [post]
func (h *MessageHandler) Post(c echo.Context) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}

	var req postMessageRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	input := ports.PostMessageInput{
		ChannelID: c.Param("id"),
		CreatorID: user.ID,
	}
	for _, part := range req.Texts {
		input.Texts = append(input.Texts, ports.TextPartInput{Content: part.Content, Order: part.Order})
	}
	for _, part := range req.Files {
		input.Files = append(input.Files, ports.FilePartInput{
			URL:      part.URL,
			Name:     part.Name,
			Size:     part.Size,
			MimeType: part.MimeType,
			Order:    part.Order,
		})
	}

	message, err := h.messages.Post(c.Request().Context(), input)
	if err != nil {
		return err
	}

	metrics.MessagesPostedTotal.Inc()
	return c.JSON(http.StatusCreated, message)
}

// ListByChannel handles GET /channels/:id/messages, oldest first.
//
// @Summary      List a channel's messages
// @Tags         messages
// @Produce      json
// @Param        id      path      string  true   "Channel id"
// @Param        limit   query     int     false  "Page size (max 100)"
// @Param        offset  query     int     false  "Page offset"
// @Success      200     {array}   domain.Message
// @Failure      404     {object}  map[string]string
// @Router       /channels/{id}/messages [get]
func (h *MessageHandler) ListByChannel(c echo.Context) error {
	limit, offset := pageParams(c)
	messages, err := h.messages.ListByChannel(c.Request().Context(), c.Param("id"), limit, offset)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messages)
}

// Get handles GET /messages/:id.
//
// @Summary      Get a message with its contents
// @Tags         messages
// @Produce      json
// @Param        id   path      string  true  "Message id"
// @Success      200  {object}  domain.Message
// @Failure      404  {object}  map[string]string
// @Router       /messages/{id} [get]
func (h *MessageHandler) Get(c echo.Context) error {
	message, err := h.messages.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, message)
}

// Delete handles DELETE /messages/:id. Only the creator may delete.
//
// @Summary      Delete a message
// @Tags         messages
// @Param        id  path  string  true  "Message id"
// @Success      204
// @Failure      401  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /messages/{id} [delete]
func (h *MessageHandler) Delete(c echo.Context) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	if err := h.messages.Delete(c.Request().Context(), c.Param("id"), user.ID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
