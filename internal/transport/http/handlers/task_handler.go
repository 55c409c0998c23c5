package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/taskflow/backend/internal/core/ports"
	"github.com/taskflow/backend/internal/core/services"
	"github.com/taskflow/backend/internal/domain"
	"github.com/taskflow/backend/internal/infrastructure/logger"
	"github.com/taskflow/backend/internal/transport/http/dto"
)

const (
	msgTaskNotFound   = "Task not found"
	msgInvalidTaskID  = "Invalid task ID format"
	msgTitleRequired  = "Title is required"
	msgInvalidBody    = "Invalid request body"
	msgTaskCreated    = "Task created successfully"
	msgTaskUpdated    = "Task updated successfully"
	msgTaskDeleted    = "Task deleted successfully"
	msgUnableToPrefix = "Server Error: Unable to "
)

type TaskHandler struct {
	service ports.TaskService
	logger  *logger.Logger
	// exposeErrors adds the underlying error text to 500 responses.
	exposeErrors bool
}

func NewTaskHandler(service ports.TaskService, logger *logger.Logger, exposeErrors bool) *TaskHandler {
	return &TaskHandler{service: service, logger: logger, exposeErrors: exposeErrors}
}

func (h *TaskHandler) ListTasks(c *fiber.Ctx) error {
	status := domain.Status(c.Query("status"))
	h.logger.Infow("task_list_request", "status", status)

	tasks, err := h.service.ListTasks(c.UserContext(), status)
	if err != nil {
		return h.fail(c, "task_list_failed", "fetch tasks", err)
	}

	h.logger.Infow("task_list_success", "count", len(tasks))
	return c.JSON(dto.SuccessList(tasks))
}

func (h *TaskHandler) GetTask(c *fiber.Ctx) error {
	id := c.Params("id")
	task, err := h.service.GetTask(c.UserContext(), id)
	if err != nil {
		return h.fail(c, "task_get_failed", "fetch task", err)
	}
	return c.JSON(dto.Success(task))
}

func (h *TaskHandler) CreateTask(c *fiber.Ctx) error {
	var req dto.TaskRequest
	if err := parseBody(c, &req); err != nil {
		h.logger.Warnw("task_create_body_parse_failed", "error", err)
		return c.Status(fiber.StatusBadRequest).JSON(dto.Failure(msgInvalidBody))
	}

	task, err := h.service.CreateTask(c.UserContext(), req.ToCreateInput())
	if err != nil {
		return h.fail(c, "task_create_failed", "create task", err)
	}

	h.logger.Infow("task_create_success", "id", task.ID)
	return c.Status(fiber.StatusCreated).JSON(dto.SuccessMessage(msgTaskCreated, task))
}

func (h *TaskHandler) UpdateTask(c *fiber.Ctx) error {
	id := c.Params("id")
	var req dto.TaskRequest
	if err := parseBody(c, &req); err != nil {
		h.logger.Warnw("task_update_body_parse_failed", "id", id, "error", err)
		return c.Status(fiber.StatusBadRequest).JSON(dto.Failure(msgInvalidBody))
	}

	task, err := h.service.UpdateTask(c.UserContext(), id, req.ToUpdateInput())
	if err != nil {
		return h.fail(c, "task_update_failed", "update task", err)
	}

	h.logger.Infow("task_update_success", "id", task.ID)
	return c.JSON(dto.SuccessMessage(msgTaskUpdated, task))
}

func (h *TaskHandler) DeleteTask(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.service.DeleteTask(c.UserContext(), id); err != nil {
		return h.fail(c, "task_delete_failed", "delete task", err)
	}

	h.logger.Infow("task_delete_success", "id", id)
	return c.JSON(dto.SuccessMessage(msgTaskDeleted, fiber.Map{}))
}

// fail maps a service error to its status code and envelope.
func (h *TaskHandler) fail(c *fiber.Ctx, event, action string, err error) error {
	var verr *domain.ValidationError
	switch {
	case errors.Is(err, domain.ErrInvalidTaskID):
		h.logger.Warnw(event, "id", c.Params("id"), "error", err)
		return c.Status(fiber.StatusBadRequest).JSON(dto.Failure(msgInvalidTaskID))
	case errors.Is(err, domain.ErrTaskNotFound):
		h.logger.Warnw(event, "id", c.Params("id"), "error", err)
		return c.Status(fiber.StatusNotFound).JSON(dto.Failure(msgTaskNotFound))
	case errors.Is(err, services.ErrTaskTitleRequired):
		h.logger.Warnw(event, "error", err)
		return c.Status(fiber.StatusBadRequest).JSON(dto.Failure(msgTitleRequired))
	case errors.As(err, &verr):
		h.logger.Warnw(event, "details", verr.Messages)
		return c.Status(fiber.StatusBadRequest).JSON(dto.Failure(verr.Error()))
	}

	h.logger.Errorw(event, "id", c.Params("id"), "error", err)
	resp := dto.Failure(msgUnableToPrefix + action)
	if h.exposeErrors {
		resp.Error = err.Error()
	}
	return c.Status(fiber.StatusInternalServerError).JSON(resp)
}

// parseBody decodes a JSON or form body. An empty body is an empty request.
func parseBody(c *fiber.Ctx, req *dto.TaskRequest) error {
	if len(c.Body()) == 0 {
		return nil
	}
	return c.BodyParser(req)
}
