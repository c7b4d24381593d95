package http

import (
	"bytes"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/sirupsen/logrus"

	"users-service/internal/domain"
	"users-service/internal/service"
)

const (
	msgUserDoesNotExist = "User does not exist!"
	msgUserIDMismatch   = "User id and pathId do not match!"
)

// Handler wires HTTP routes to the user service.
type Handler struct {
	users  service.UserService
	logger logrus.FieldLogger
}

func NewHandler(users service.UserService, logger logrus.FieldLogger) *Handler {
	return &Handler{
		users:  users,
		logger: logger,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.Use(requestLogger(h.logger), corsMiddleware())

	router.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"ok": "ok"})
	})

	users := router.Group("/users")
	{
		users.GET("/", h.listUsers)
		users.GET("/:id", h.getUser)
		users.POST("/", h.createUser)
		users.PUT("/:id", h.updateUser)
		users.DELETE("/:id", h.deleteUser)
	}
}

// UserPayload is the JSON representation of a user in requests and responses.
type UserPayload struct {
	ID   *string `json:"id"`
	Name string  `json:"name"`
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func requestLogger(logger logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.WithFields(logrus.Fields{
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
			"status":  c.Writer.Status(),
			"latency": time.Since(start),
		}).Debug("request")
	}
}

func (h *Handler) listUsers(c *gin.Context) {
	users, err := h.users.GetUsers(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}

	resp := make([]UserPayload, len(users))
	for i := range users {
		resp[i] = userToPayload(users[i])
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) getUser(c *gin.Context) {
	user, err := h.users.GetUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, userToPayload(*user))
}

// createUser answers 200 rather than 201; existing clients depend on it.
func (h *Handler) createUser(c *gin.Context) {
	req, err := bindUserPayload(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.users.AddUser(c.Request.Context(), payloadToUser(*req))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, userToPayload(*user))
}

func (h *Handler) updateUser(c *gin.Context) {
	req, err := bindUserPayload(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.users.UpdateUser(c.Request.Context(), c.Param("id"), payloadToUser(*req))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, userToPayload(*user))
}

func (h *Handler) deleteUser(c *gin.Context) {
	user, err := h.users.DeleteUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, userToPayload(*user))
}

var errMissingBody = errors.New("request body is required")

// bindUserPayload decodes the JSON body, rejecting an empty body or a bare null.
func bindUserPayload(c *gin.Context) (*UserPayload, error) {
	body, err := c.GetRawData()
	if err != nil {
		return nil, err
	}
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, errMissingBody
	}

	var req UserPayload
	if err := binding.JSON.BindBody(trimmed, &req); err != nil {
		return nil, err
	}
	return &req, nil
}

func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrUserDoesNotExist):
		c.String(http.StatusNotFound, msgUserDoesNotExist)
	case errors.Is(err, service.ErrUserIDMismatch):
		c.String(http.StatusBadRequest, msgUserIDMismatch)
	default:
		h.logger.WithError(err).Errorf("%s %s", c.Request.Method, c.Request.URL.Path)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func userToPayload(user domain.User) UserPayload {
	resp := UserPayload{Name: user.Name}
	if user.ID != "" {
		id := user.ID
		resp.ID = &id
	}
	return resp
}

func payloadToUser(p UserPayload) *domain.User {
	user := &domain.User{Name: p.Name}
	if p.ID != nil {
		user.ID = *p.ID
	}
	return user
}
