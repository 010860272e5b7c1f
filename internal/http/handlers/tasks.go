package handlers

import (
	"fmt"
	"net/http"

	"taskboard/internal/domain"
	"taskboard/internal/repository"
	"taskboard/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type taskRequest struct {
	Title                string `json:"title"`
	Description          string `json:"description"`
	DueDate              string `json:"dueDate"`
	ItemStatus           string `json:"itemStatus"`
	AssignedToExternalID string `json:"assignedToExternalId"`
}

// ListTasks handles GET /tasks with search/status/due-range filters,
// paging and scope.
func (h *Handler) ListTasks(c *gin.Context) {
	id, ok := externalID(c)
	if !ok {
		return
	}

	filter := repository.TaskFilter{Search: c.Query("search")}

	if v := c.Query("status"); v != "" {
		status, err := domain.ParseTaskStatus(v)
		if err != nil {
			writeError(c, err)
			return
		}
		filter.Status = &status
	}

	var err error
	if filter.DueFrom, err = parseDate(c.Query("dueDateFrom")); err != nil {
		writeError(c, fmt.Errorf("%w: %s", domain.ErrValidation, err))
		return
	}
	if filter.DueTo, err = parseDate(c.Query("dueDateTo")); err != nil {
		writeError(c, fmt.Errorf("%w: %s", domain.ErrValidation, err))
		return
	}

	scope := c.DefaultQuery("scope", service.ScopeAssigned)
	page := queryInt(c, "page", 1)
	pageSize := queryInt(c, "pageSize", domain.DefaultPageSize)

	result, err := h.Tasks.GetTasks(c.Request.Context(), id, filter, page, pageSize, scope)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetTask handles GET /tasks/:id.
func (h *Handler) GetTask(c *gin.Context) {
	id, ok := externalID(c)
	if !ok {
		return
	}
	taskID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		writeError(c, fmt.Errorf("%w: invalid task id", domain.ErrValidation))
		return
	}

	task, err := h.Tasks.GetByID(c.Request.Context(), id, taskID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// CreateTask handles POST /tasks; status always initializes to Pending.
func (h *Handler) CreateTask(c *gin.Context) {
	id, ok := externalID(c)
	if !ok {
		return
	}

	var req taskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, fmt.Errorf("%w: invalid request body", domain.ErrValidation))
		return
	}

	in, err := req.toInput()
	if err != nil {
		writeError(c, err)
		return
	}

	task, err := h.Tasks.Create(c.Request.Context(), id, in)
	if err != nil {
		writeError(c, err)
		return
	}

	c.Header("Location", "/api/v1/tasks/"+task.ID.String())
	c.JSON(http.StatusCreated, task)
}

// UpdateTask handles PUT /tasks/:id, a full overwrite including status and
// assignment.
func (h *Handler) UpdateTask(c *gin.Context) {
	id, ok := externalID(c)
	if !ok {
		return
	}
	taskID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		writeError(c, fmt.Errorf("%w: invalid task id", domain.ErrValidation))
		return
	}

	var req taskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, fmt.Errorf("%w: invalid request body", domain.ErrValidation))
		return
	}

	in, err := req.toInput()
	if err != nil {
		writeError(c, err)
		return
	}
	if req.ItemStatus == "" {
		writeError(c, fmt.Errorf("%w: itemStatus is required", domain.ErrValidation))
		return
	}

	task, err := h.Tasks.Update(c.Request.Context(), id, taskID, in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// UpdateTaskStatus handles PATCH /tasks/:id/status with a {status} body.
func (h *Handler) UpdateTaskStatus(c *gin.Context) {
	id, ok := externalID(c)
	if !ok {
		return
	}
	taskID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		writeError(c, fmt.Errorf("%w: invalid task id", domain.ErrValidation))
		return
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, fmt.Errorf("%w: invalid request body", domain.ErrValidation))
		return
	}
	status, err := domain.ParseTaskStatus(req.Status)
	if err != nil {
		writeError(c, err)
		return
	}

	task, err := h.Tasks.UpdateStatus(c.Request.Context(), id, taskID, status)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// DeleteTask handles DELETE /tasks/:id.
func (h *Handler) DeleteTask(c *gin.Context) {
	id, ok := externalID(c)
	if !ok {
		return
	}
	taskID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		writeError(c, fmt.Errorf("%w: invalid task id", domain.ErrValidation))
		return
	}

	deleted, err := h.Tasks.Delete(c.Request.Context(), id, taskID)
	if err != nil {
		writeError(c, err)
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "task not found"})
		return
	}
	c.Status(http.StatusNoContent)
}

func (r *taskRequest) toInput() (service.TaskInput, error) {
	due, err := parseDate(r.DueDate)
	if err != nil {
		return service.TaskInput{}, fmt.Errorf("%w: %s", domain.ErrValidation, err)
	}

	in := service.TaskInput{
		Title:                r.Title,
		Description:          r.Description,
		DueDate:              due,
		AssignedToExternalID: r.AssignedToExternalID,
	}

	if r.ItemStatus != "" {
		status, err := domain.ParseTaskStatus(r.ItemStatus)
		if err != nil {
			return service.TaskInput{}, err
		}
		in.Status = status
	}
	return in, nil
}
