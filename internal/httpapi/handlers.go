package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/runoshun/kanban/internal/domain"
)

// errBadRequest marks request errors that are not domain validation failures.
var errBadRequest = errors.New("bad request")

// TaskManager is the manager surface used by the HTTP handlers.
type TaskManager interface {
	domain.ItemWriter

	Tasks() []domain.Task
	Epics() []domain.Task
	Subtasks() []domain.Task
	GetTask(id int) (domain.Task, error)
	GetEpic(id int) (domain.Task, error)
	GetSubtask(id int) (domain.Task, error)
	EpicSubtasks(epicID int) ([]domain.Task, error)
	UpdateTask(task domain.Task) error
	UpdateEpic(epic domain.Task) error
	UpdateSubtask(subtask domain.Task) error
	RemoveTask(id int) error
	RemoveEpic(id int) error
	RemoveSubtask(id int) error
	ClearTasks() error
	ClearEpics() error
	ClearSubtasks() error
	History() []domain.Task
	Prioritized() []domain.Task
}

// resource binds one item kind to its manager operations.
type resource struct {
	list   func() []domain.Task
	get    func(int) (domain.Task, error)
	add    func(domain.Task) (int, error)
	update func(domain.Task) error
	remove func(int) error
	clear  func() error
	kind   domain.Kind
}

func (s *Server) resources() map[string]resource {
	m := s.manager
	return map[string]resource{
		"/tasks": {
			kind: domain.KindTask, list: m.Tasks, get: m.GetTask, add: m.AddTask,
			update: m.UpdateTask, remove: m.RemoveTask, clear: m.ClearTasks,
		},
		"/epics": {
			kind: domain.KindEpic, list: m.Epics, get: m.GetEpic, add: m.AddEpic,
			update: m.UpdateEpic, remove: m.RemoveEpic, clear: m.ClearEpics,
		},
		"/subtasks": {
			kind: domain.KindSubtask, list: m.Subtasks, get: m.GetSubtask, add: m.AddSubtask,
			update: m.UpdateSubtask, remove: m.RemoveSubtask, clear: m.ClearSubtasks,
		},
	}
}

func (s *Server) register(group *gin.RouterGroup, res resource) {
	group.GET("", func(c *gin.Context) {
		c.JSON(http.StatusOK, NewItems(res.list()))
	})

	group.GET("/:id", func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}
		item, err := res.get(id)
		if err != nil {
			s.writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, NewItem(item))
	})

	group.POST("", func(c *gin.Context) {
		var req ItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			s.writeError(c, fmt.Errorf("%w: %w", errBadRequest, err))
			return
		}
		task, err := req.ToTask(res.kind)
		if err != nil {
			s.writeError(c, err)
			return
		}

		if req.ID == 0 {
			id, err := res.add(task)
			if err != nil {
				s.writeError(c, err)
				return
			}
			c.JSON(http.StatusCreated, CreatedResponse{ID: id})
			return
		}

		if err := res.update(task); err != nil {
			s.writeError(c, err)
			return
		}
		c.Status(http.StatusCreated)
	})

	group.DELETE("/:id", func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}
		if err := res.remove(id); err != nil {
			s.writeError(c, err)
			return
		}
		c.Status(http.StatusCreated)
	})

	group.DELETE("", func(c *gin.Context) {
		if err := res.clear(); err != nil {
			s.writeError(c, err)
			return
		}
		c.Status(http.StatusCreated)
	})
}

// GET /epics/:id/subtask
func (s *Server) handleEpicSubtasks(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	subtasks, err := s.manager.EpicSubtasks(id)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, NewItems(subtasks))
}

// GET /history
func (s *Server) handleHistory(c *gin.Context) {
	c.JSON(http.StatusOK, NewItems(s.manager.History()))
}

// GET /prioritized
func (s *Server) handlePrioritized(c *gin.Context) {
	c.JSON(http.StatusOK, NewItems(s.manager.Prioritized()))
}

// pathID parses the :id parameter, writing a 400 response when it is invalid.
func pathID(c *gin.Context) (int, bool) {
	raw := c.Param("id")
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{Error: fmt.Sprintf("invalid id %q", raw)})
		return 0, false
	}
	return id, true
}

// statusFor maps an error to its HTTP status code.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrScheduleConflict):
		return http.StatusNotAcceptable
	case domain.IsNotFound(err):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrEpicMismatch):
		return http.StatusConflict
	case errors.Is(err, errBadRequest),
		errors.Is(err, domain.ErrEmptyName),
		errors.Is(err, domain.ErrInvalidStatus),
		errors.Is(err, domain.ErrInvalidDuration),
		errors.Is(err, domain.ErrInvalidKind):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "path", c.FullPath(), "error", err, "request_id", c.GetString(requestIDKey))
	}
	c.AbortWithStatusJSON(status, ErrorResponse{Error: err.Error()})
}
