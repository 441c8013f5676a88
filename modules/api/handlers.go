package api

import (
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/creativity-code/planora/modules/auth"
	"github.com/creativity-code/planora/modules/report"
	"github.com/creativity-code/planora/modules/taskstore"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

const defaultHistoryLimit = 50

// setupRoutes configures all HTTP routes.
func (m *APIModule) setupRoutes() {
	// Health check
	m.app.Get("/health", m.healthHandler)

	// WebSocket endpoint
	m.app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	m.app.Get("/ws", websocket.New(m.handleWebSocket))

	// REST API v1
	api := m.app.Group("/api/v1")

	// Public auth endpoints
	authGroup := api.Group("/auth")
	authGroup.Post("/register", m.register)
	authGroup.Post("/verify-email", m.verifyEmail)
	authGroup.Post("/login", m.login)
	authGroup.Post("/refresh", m.refresh)
	authGroup.Post("/request-password-reset", m.requestPasswordReset)
	authGroup.Post("/reset-password", m.resetPassword)

	// Everything below requires a valid access token
	protected := api.Group("", AuthMiddleware(m.authAdapter))

	protected.Get("/me", m.getMe)
	protected.Put("/me", m.updateProfile)
	protected.Put("/me/picture", m.setProfilePicture)

	protected.Get("/tasks", m.listTasks)
	protected.Post("/tasks", m.createTask)
	protected.Get("/tasks/search", m.searchTasks)
	protected.Get("/tasks/archive", m.archiveTasks)
	protected.Put("/tasks/:id", m.updateTask)
	protected.Delete("/tasks/:id", m.deleteTask)
	protected.Post("/tasks/:id/start", m.startTask)
	protected.Post("/tasks/:id/complete", m.completeTask)

	protected.Get("/report", m.getReport)
	protected.Get("/report/export/:format", m.exportReport)

	protected.Get("/projects/:id/chat/history", m.getChatHistory)
	protected.Get("/projects/:id/chat/members", m.getChatMembers)
	protected.Post("/projects/:id/chat/messages", m.postChatMessage)
}

// healthHandler handles GET /health.
func (m *APIModule) healthHandler(c *fiber.Ctx) error {
	return c.JSON(HealthResponse{
		Status: "healthy",
		Details: map[string]any{
			"module":            "api",
			"connected_clients": m.hub.ClientCount(),
		},
	})
}

// badRequest replies 400 with a human-readable validation message.
func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
		Error:   "validation_error",
		Message: message,
	})
}

// invalidBody replies 400 when the request body cannot be parsed.
func invalidBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
		Error:   "invalid_request",
		Message: "Invalid request body",
	})
}

// handleAuthError maps auth service errors to HTTP responses. Errors cross
// the service bus as text, so matching is on the message, not errors.Is.
func handleAuthError(c *fiber.Ctx, err error) error {
	msg := err.Error()

	switch {
	case strings.Contains(msg, "already exists"):
		return c.Status(fiber.StatusConflict).JSON(ErrorResponse{
			Error:   "conflict",
			Message: "Username or email already exists",
		})
	case strings.Contains(msg, "invalid username or password"):
		return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
			Error:   "unauthorized",
			Message: "Invalid username or password",
		})
	case strings.Contains(msg, "email not verified"):
		return c.Status(fiber.StatusForbidden).JSON(ErrorResponse{
			Error:   "forbidden",
			Message: "Email address has not been verified",
		})
	case strings.Contains(msg, "token"):
		return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
			Error:   "unauthorized",
			Message: "Invalid or expired token",
		})
	case strings.Contains(msg, "code not found"):
		return badRequest(c, "Invalid or already used code")
	case strings.Contains(msg, "user not found"):
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{
			Error:   "not_found",
			Message: "User not found",
		})
	case strings.Contains(msg, "password must be"),
		strings.Contains(msg, "invalid email"),
		strings.Contains(msg, "required"),
		strings.Contains(msg, "picture url"):
		return badRequest(c, firstErrorLine(msg))
	default:
		log.Printf("[api] Auth request failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error:   "server_error",
			Message: "Authentication service error",
		})
	}
}

// handleTaskError maps task store errors to HTTP responses.
func handleTaskError(c *fiber.Ctx, err error) error {
	msg := err.Error()

	switch {
	case strings.Contains(msg, "task not found"):
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{
			Error:   "not_found",
			Message: "Task not found",
		})
	case strings.Contains(msg, "validation failed"):
		return badRequest(c, firstErrorLine(msg))
	default:
		log.Printf("[api] Task request failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error:   "server_error",
			Message: "Task service error",
		})
	}
}

// handleChatError maps chat service errors to HTTP responses.
func handleChatError(c *fiber.Ctx, err error) error {
	msg := err.Error()

	switch {
	case strings.Contains(msg, "not a member"):
		return c.Status(fiber.StatusForbidden).JSON(ErrorResponse{
			Error:   "forbidden",
			Message: "Join the project channel first",
		})
	case strings.Contains(msg, "required"),
		strings.Contains(msg, "message"):
		return badRequest(c, firstErrorLine(msg))
	default:
		log.Printf("[api] Chat request failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error:   "server_error",
			Message: "Chat service error",
		})
	}
}

// firstErrorLine strips the request-reply wrapping added by the adapters so
// the client sees the service's own message.
func firstErrorLine(msg string) string {
	if i := strings.LastIndex(msg, ": "); i >= 0 {
		return msg[i+2:]
	}
	return msg
}

// callAuth issues one typed request-reply round trip to the auth module.
func callAuth[Req any, Resp any](c *fiber.Ctx, m *APIModule, service string, req *Req, resp *Resp) error {
	return helper.CallRequestReplyService(
		c.UserContext(),
		m.authContainer,
		service,
		json.Marshal,
		json.Unmarshal,
		req,
		resp,
	)
}

// register handles POST /api/v1/auth/register.
func (m *APIModule) register(c *fiber.Ctx) error {
	var body RegisterBody
	if err := c.BodyParser(&body); err != nil {
		return invalidBody(c)
	}
	if body.Username == "" || body.Email == "" || body.Password == "" {
		return badRequest(c, "Username, email and password are required")
	}

	req := auth.RegisterRequest{
		Name:        body.Name,
		Username:    body.Username,
		Email:       body.Email,
		Password:    body.Password,
		AccountType: body.AccountType,
	}
	var resp auth.RegisterResponse
	if err := callAuth(c, m, "register", &req, &resp); err != nil {
		return handleAuthError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(resp)
}

// verifyEmail handles POST /api/v1/auth/verify-email.
func (m *APIModule) verifyEmail(c *fiber.Ctx) error {
	var body VerifyEmailBody
	if err := c.BodyParser(&body); err != nil {
		return invalidBody(c)
	}
	if body.UserID == 0 || body.Code == "" {
		return badRequest(c, "User id and code are required")
	}

	req := auth.VerifyEmailRequest{UserID: body.UserID, Code: body.Code}
	var resp auth.VerifyEmailResponse
	if err := callAuth(c, m, "verify-email", &req, &resp); err != nil {
		return handleAuthError(c, err)
	}

	return c.JSON(resp)
}

// login handles POST /api/v1/auth/login.
func (m *APIModule) login(c *fiber.Ctx) error {
	var body LoginBody
	if err := c.BodyParser(&body); err != nil {
		return invalidBody(c)
	}
	if body.Username == "" || body.Password == "" {
		return badRequest(c, "Username and password are required")
	}

	req := auth.LoginRequest{Username: body.Username, Password: body.Password}
	var resp auth.LoginResponse
	if err := callAuth(c, m, "login", &req, &resp); err != nil {
		return handleAuthError(c, err)
	}

	return c.JSON(resp)
}

// refresh handles POST /api/v1/auth/refresh.
func (m *APIModule) refresh(c *fiber.Ctx) error {
	var body RefreshBody
	if err := c.BodyParser(&body); err != nil {
		return invalidBody(c)
	}
	if body.RefreshToken == "" {
		return badRequest(c, "Refresh token is required")
	}

	req := auth.RefreshRequest{RefreshToken: body.RefreshToken}
	var resp auth.RefreshResponse
	if err := callAuth(c, m, "refresh-token", &req, &resp); err != nil {
		return handleAuthError(c, err)
	}

	return c.JSON(resp)
}

// requestPasswordReset handles POST /api/v1/auth/request-password-reset.
func (m *APIModule) requestPasswordReset(c *fiber.Ctx) error {
	var body RequestResetBody
	if err := c.BodyParser(&body); err != nil {
		return invalidBody(c)
	}
	if body.Email == "" {
		return badRequest(c, "Email is required")
	}

	req := auth.RequestResetRequest{Email: body.Email}
	var resp auth.RequestResetResponse
	if err := callAuth(c, m, "request-password-reset", &req, &resp); err != nil {
		return handleAuthError(c, err)
	}

	return c.JSON(resp)
}

// resetPassword handles POST /api/v1/auth/reset-password.
func (m *APIModule) resetPassword(c *fiber.Ctx) error {
	var body ResetPasswordBody
	if err := c.BodyParser(&body); err != nil {
		return invalidBody(c)
	}
	if body.UserID == 0 || body.Token == "" || body.NewPassword == "" {
		return badRequest(c, "User id, token and new password are required")
	}

	req := auth.ResetPasswordRequest{
		UserID:      body.UserID,
		Token:       body.Token,
		NewPassword: body.NewPassword,
	}
	var resp auth.ResetPasswordResponse
	if err := callAuth(c, m, "reset-password", &req, &resp); err != nil {
		return handleAuthError(c, err)
	}

	return c.JSON(resp)
}

// getMe handles GET /api/v1/me.
func (m *APIModule) getMe(c *fiber.Ctx) error {
	claims, ok := currentClaims(c)
	if !ok {
		return fiber.ErrUnauthorized
	}

	profile, err := m.authAdapter.GetUser(c.UserContext(), claims.UserID)
	if err != nil {
		return handleAuthError(c, err)
	}

	return c.JSON(auth.GetUserResponse{User: profile})
}

// updateProfile handles PUT /api/v1/me.
func (m *APIModule) updateProfile(c *fiber.Ctx) error {
	claims, ok := currentClaims(c)
	if !ok {
		return fiber.ErrUnauthorized
	}

	var body UpdateProfileBody
	if err := c.BodyParser(&body); err != nil {
		return invalidBody(c)
	}
	if body.Name == "" && body.Username == "" {
		return badRequest(c, "Nothing to update")
	}

	req := auth.UpdateProfileRequest{
		UserID:   claims.UserID,
		Name:     body.Name,
		Username: body.Username,
	}
	var resp auth.UpdateProfileResponse
	if err := callAuth(c, m, "update-profile", &req, &resp); err != nil {
		return handleAuthError(c, err)
	}

	return c.JSON(resp)
}

// setProfilePicture handles PUT /api/v1/me/picture.
func (m *APIModule) setProfilePicture(c *fiber.Ctx) error {
	claims, ok := currentClaims(c)
	if !ok {
		return fiber.ErrUnauthorized
	}

	var body SetPictureBody
	if err := c.BodyParser(&body); err != nil {
		return invalidBody(c)
	}
	if body.PictureURL == "" {
		return badRequest(c, "Picture URL is required")
	}

	req := auth.SetPictureRequest{UserID: claims.UserID, PictureURL: body.PictureURL}
	var resp auth.SetPictureResponse
	if err := callAuth(c, m, "set-profile-picture", &req, &resp); err != nil {
		return handleAuthError(c, err)
	}

	return c.JSON(resp)
}

// listTasks handles GET /api/v1/tasks?date=YYYY-MM-DD. Without a date it
// lists the tasks due today.
func (m *APIModule) listTasks(c *fiber.Ctx) error {
	claims, ok := currentClaims(c)
	if !ok {
		return fiber.ErrUnauthorized
	}

	date := c.Query("date")
	if date == "" {
		date = time.Now().Format("2006-01-02")
	}

	resp, err := m.tasks.GetByDate(c.UserContext(), taskstore.GetTasksRequest{
		UserID: claims.UserID,
		Date:   date,
	})
	if err != nil {
		return handleTaskError(c, err)
	}

	return c.JSON(resp)
}

// createTask handles POST /api/v1/tasks.
func (m *APIModule) createTask(c *fiber.Ctx) error {
	claims, ok := currentClaims(c)
	if !ok {
		return fiber.ErrUnauthorized
	}

	var body TaskBody
	if err := c.BodyParser(&body); err != nil {
		return invalidBody(c)
	}

	resp, err := m.tasks.Create(c.UserContext(), taskstore.CreateTaskRequest{
		UserID:      claims.UserID,
		Title:       body.Title,
		Description: body.Description,
		DueDate:     body.DueDate,
		StartTime:   body.StartTime,
		EndTime:     body.EndTime,
	})
	if err != nil {
		return handleTaskError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(resp)
}

// taskIDParam parses the :id route parameter.
func taskIDParam(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid task id")
	}
	return uint(id), nil
}

// ownedTask fetches the task and rejects callers that do not own it.
func (m *APIModule) ownedTask(c *fiber.Ctx, id uint) error {
	claims, ok := currentClaims(c)
	if !ok {
		return fiber.ErrUnauthorized
	}

	resp, err := m.tasks.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	if resp.UserID != claims.UserID {
		return fmt.Errorf("task not found")
	}
	return nil
}

// updateTask handles PUT /api/v1/tasks/:id.
func (m *APIModule) updateTask(c *fiber.Ctx) error {
	id, err := taskIDParam(c)
	if err != nil {
		return badRequest(c, "Invalid task id")
	}
	if err := m.ownedTask(c, id); err != nil {
		return handleTaskError(c, err)
	}

	var body TaskBody
	if err := c.BodyParser(&body); err != nil {
		return invalidBody(c)
	}

	resp, err := m.tasks.Update(c.UserContext(), taskstore.UpdateTaskRequest{
		ID:          id,
		Title:       body.Title,
		Description: body.Description,
		DueDate:     body.DueDate,
		Status:      body.Status,
		StartTime:   body.StartTime,
		EndTime:     body.EndTime,
	})
	if err != nil {
		return handleTaskError(c, err)
	}

	return c.JSON(resp)
}

// deleteTask handles DELETE /api/v1/tasks/:id.
func (m *APIModule) deleteTask(c *fiber.Ctx) error {
	id, err := taskIDParam(c)
	if err != nil {
		return badRequest(c, "Invalid task id")
	}
	if err := m.ownedTask(c, id); err != nil {
		return handleTaskError(c, err)
	}

	resp, err := m.tasks.Delete(c.UserContext(), id)
	if err != nil {
		return handleTaskError(c, err)
	}

	return c.JSON(resp)
}

// startTask handles POST /api/v1/tasks/:id/start.
func (m *APIModule) startTask(c *fiber.Ctx) error {
	id, err := taskIDParam(c)
	if err != nil {
		return badRequest(c, "Invalid task id")
	}
	if err := m.ownedTask(c, id); err != nil {
		return handleTaskError(c, err)
	}

	resp, err := m.tasks.Start(c.UserContext(), id)
	if err != nil {
		return handleTaskError(c, err)
	}

	return c.JSON(resp)
}

// completeTask handles POST /api/v1/tasks/:id/complete.
func (m *APIModule) completeTask(c *fiber.Ctx) error {
	id, err := taskIDParam(c)
	if err != nil {
		return badRequest(c, "Invalid task id")
	}
	if err := m.ownedTask(c, id); err != nil {
		return handleTaskError(c, err)
	}

	resp, err := m.tasks.Complete(c.UserContext(), id)
	if err != nil {
		return handleTaskError(c, err)
	}

	return c.JSON(resp)
}

// searchTasks handles GET /api/v1/tasks/search?q=term.
func (m *APIModule) searchTasks(c *fiber.Ctx) error {
	claims, ok := currentClaims(c)
	if !ok {
		return fiber.ErrUnauthorized
	}

	query := c.Query("q")
	if query == "" {
		return badRequest(c, "Search query is required")
	}

	resp, err := m.tasks.Search(c.UserContext(), taskstore.SearchRequest{
		UserID: claims.UserID,
		Query:  query,
	})
	if err != nil {
		return handleTaskError(c, err)
	}

	return c.JSON(resp)
}

// archiveTasks handles GET /api/v1/tasks/archive?year=2026&month=8.
func (m *APIModule) archiveTasks(c *fiber.Ctx) error {
	claims, ok := currentClaims(c)
	if !ok {
		return fiber.ErrUnauthorized
	}

	year, err := strconv.Atoi(c.Query("year"))
	if err != nil {
		return badRequest(c, "Year is required")
	}
	month, err := strconv.Atoi(c.Query("month"))
	if err != nil || month < 1 || month > 12 {
		return badRequest(c, "Month must be between 1 and 12")
	}

	resp, err := m.tasks.Archive(c.UserContext(), taskstore.ArchiveRequest{
		UserID: claims.UserID,
		Year:   year,
		Month:  month,
	})
	if err != nil {
		return handleTaskError(c, err)
	}

	return c.JSON(resp)
}

// getReport handles GET /api/v1/report?start_date=...&end_date=...
func (m *APIModule) getReport(c *fiber.Ctx) error {
	claims, ok := currentClaims(c)
	if !ok {
		return fiber.ErrUnauthorized
	}

	startDate := c.Query("start_date")
	endDate := c.Query("end_date")
	if startDate == "" || endDate == "" {
		return badRequest(c, "Start and end date are required")
	}

	resp, err := m.tasks.Report(c.UserContext(), taskstore.ReportRequest{
		UserID:    claims.UserID,
		StartDate: startDate,
		EndDate:   endDate,
	})
	if err != nil {
		return handleTaskError(c, err)
	}

	return c.JSON(resp)
}

// exportReport handles GET /api/v1/report/export/:format where format is
// "pdf" or "docx". The lang query selects the report language.
func (m *APIModule) exportReport(c *fiber.Ctx) error {
	claims, ok := currentClaims(c)
	if !ok {
		return fiber.ErrUnauthorized
	}

	format := c.Params("format")
	var service string
	switch format {
	case "pdf":
		service = "export-pdf"
	case "docx":
		service = "export-docx"
	default:
		return badRequest(c, "Format must be pdf or docx")
	}

	startDate := c.Query("start_date")
	endDate := c.Query("end_date")
	if startDate == "" || endDate == "" {
		return badRequest(c, "Start and end date are required")
	}

	req := report.ExportRequest{
		UserID:    claims.UserID,
		StartDate: startDate,
		EndDate:   endDate,
		Language:  c.Query("lang", "en"),
	}
	var resp report.ExportResponse
	if err := helper.CallRequestReplyService(
		c.UserContext(),
		m.reportContainer,
		service,
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return handleTaskError(c, err)
	}

	c.Set(fiber.HeaderContentType, resp.ContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", resp.FileName))
	return c.Send(resp.Data)
}

// getChatHistory handles GET /api/v1/projects/:id/chat/history. Clients use
// it to resync after a reconnect, since the hub never replays frames.
func (m *APIModule) getChatHistory(c *fiber.Ctx) error {
	projectID := c.Params("id")

	limit := defaultHistoryLimit
	if l := c.Query("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 && parsed <= 1000 {
			limit = parsed
		}
	}

	messages, err := m.chatAdapter.History(c.UserContext(), projectID, limit)
	if err != nil {
		return handleChatError(c, err)
	}

	return c.JSON(fiber.Map{
		"project_id": projectID,
		"messages":   messages,
		"total":      len(messages),
	})
}

// getChatMembers handles GET /api/v1/projects/:id/chat/members.
func (m *APIModule) getChatMembers(c *fiber.Ctx) error {
	projectID := c.Params("id")

	members, err := m.chatAdapter.Members(c.UserContext(), projectID)
	if err != nil {
		return handleChatError(c, err)
	}

	return c.JSON(fiber.Map{
		"project_id": projectID,
		"members":    members,
		"total":      len(members),
	})
}

// postChatMessage handles POST /api/v1/projects/:id/chat/messages. The
// sender must have joined the project channel, over WebSocket or otherwise.
func (m *APIModule) postChatMessage(c *fiber.Ctx) error {
	claims, ok := currentClaims(c)
	if !ok {
		return fiber.ErrUnauthorized
	}

	projectID := c.Params("id")

	var body ChatMessageBody
	if err := c.BodyParser(&body); err != nil {
		return invalidBody(c)
	}

	msg, err := m.chatAdapter.Send(c.UserContext(), projectID, claims.Email, body.Content)
	if err != nil {
		return handleChatError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(msg)
}
