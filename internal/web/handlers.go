package web

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sadopc/pomoclock/internal/export"
	"github.com/sadopc/pomoclock/internal/store"
)

type taskRequest struct {
	Name     string   `json:"name"`
	Priority string   `json:"priority"`
	Repeat   string   `json:"repeat"`
	Weekdays []string `json:"weekdays"`
}

// Pointer fields distinguish "absent" from "clear".
type taskEditRequest struct {
	Name     string    `json:"name"`
	Priority string    `json:"priority"`
	Repeat   *string   `json:"repeat"`
	Weekdays *[]string `json:"weekdays"`
}

type taskResponse struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Priority      string   `json:"priority"`
	Status        string   `json:"status"`
	Repeat        string   `json:"repeat,omitempty"`
	Weekdays      []string `json:"weekdays,omitempty"`
	LastCompleted string   `json:"last_completed,omitempty"`
	Available     bool     `json:"available"`
	CreatedAt     string   `json:"created_at"`
}

func (s *Server) taskJSON(t store.Task) taskResponse {
	r := taskResponse{
		ID:        t.ID,
		Name:      t.Name,
		Priority:  string(t.Priority),
		Status:    string(t.Status),
		Available: store.Available(t, s.now()),
		CreatedAt: t.CreatedAt.Format(time.RFC3339),
	}
	if t.Repeat != nil {
		r.Repeat = fmt.Sprintf("%d%c", t.Repeat.Count, t.Repeat.Unit[0])
	}
	for _, d := range t.AllowedWeekdays {
		r.Weekdays = append(r.Weekdays, store.WeekdayNames[d])
	}
	if t.LastCompleted != nil {
		r.LastCompleted = t.LastCompleted.Format(time.RFC3339)
	}
	return r
}

func (r taskRequest) input() (store.TaskInput, error) {
	in := store.TaskInput{Name: strings.TrimSpace(r.Name)}
	p, err := store.ParsePriority(r.Priority)
	if err != nil {
		return in, err
	}
	in.Priority = p
	if r.Repeat != "" {
		rep, err := store.ParseRepeat(r.Repeat)
		if err != nil {
			return in, err
		}
		in.Repeat = rep
	}
	if len(r.Weekdays) > 0 {
		days, err := store.ParseWeekdays(r.Weekdays)
		if err != nil {
			return in, err
		}
		in.AllowedWeekdays = days
	}
	return in, nil
}

func (r taskEditRequest) edit() (store.TaskEdit, error) {
	e := store.TaskEdit{Name: strings.TrimSpace(r.Name)}
	if r.Priority != "" {
		p, err := store.ParsePriority(r.Priority)
		if err != nil {
			return e, err
		}
		e.Priority = p
	}
	if r.Repeat != nil {
		if *r.Repeat == "" {
			e.ClearRepeat = true
		} else {
			rep, err := store.ParseRepeat(*r.Repeat)
			if err != nil {
				return e, err
			}
			e.Repeat = rep
		}
	}
	if r.Weekdays != nil {
		days, err := store.ParseWeekdays(*r.Weekdays)
		if err != nil {
			return e, err
		}
		e.AllowedWeekdays = days
	}
	return e, nil
}

func fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, store.ErrTaskNotFound):
		status = http.StatusNotFound
	case errors.Is(err, store.ErrInvalidTask):
		status = http.StatusBadRequest
	}
	c.JSON(status, gin.H{
		"success": false,
		"error":   err.Error(),
	})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"success": false,
		"error":   err.Error(),
	})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleListTasks(c *gin.Context) {
	tasks, err := s.backend.ListActiveTasks()
	if err != nil {
		fail(c, err)
		return
	}
	out := make([]taskResponse, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, s.taskJSON(t))
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    out,
		"count":   len(out),
	})
}

func (s *Server) handleGetTask(c *gin.Context) {
	t, err := s.backend.GetTask(c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    s.taskJSON(*t),
	})
}

func (s *Server) handleCreateTask(c *gin.Context) {
	var req taskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	in, err := req.input()
	if err != nil {
		badRequest(c, err)
		return
	}
	t, err := s.backend.CreateTask(in)
	if err != nil {
		fail(c, err)
		return
	}
	s.log.Info("task created via api", "task", t.Name)
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"id":      t.ID,
		"data":    s.taskJSON(*t),
	})
}

func (s *Server) handleCreateTasks(c *gin.Context) {
	var req struct {
		Tasks []taskRequest `json:"tasks"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if len(req.Tasks) == 0 {
		badRequest(c, errors.New("tasks must not be empty"))
		return
	}
	inputs := make([]store.TaskInput, 0, len(req.Tasks))
	for i, r := range req.Tasks {
		in, err := r.input()
		if err != nil {
			badRequest(c, fmt.Errorf("task %d: %w", i, err))
			return
		}
		inputs = append(inputs, in)
	}
	tasks, err := s.backend.CreateTasks(inputs)
	if err != nil {
		fail(c, err)
		return
	}
	out := make([]taskResponse, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, s.taskJSON(t))
	}
	s.log.Info("tasks created via api", "count", len(out))
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    out,
		"count":   len(out),
	})
}

func (s *Server) handleEditTask(c *gin.Context) {
	id := c.Param("id")
	var req taskEditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	edit, err := req.edit()
	if err != nil {
		badRequest(c, err)
		return
	}
	if err := s.backend.EditTask(id, edit); err != nil {
		fail(c, err)
		return
	}
	t, err := s.backend.GetTask(id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"id":      id,
		"data":    s.taskJSON(*t),
	})
}

func (s *Server) handleGetSettings(c *gin.Context) {
	settings, err := s.backend.GetAllSettings()
	if err != nil {
		fail(c, err)
		return
	}
	out := make(map[string]string, len(settings))
	for _, st := range settings {
		out[st.Key] = st.Value
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    out,
	})
}

func (s *Server) handleSaveSettings(c *gin.Context) {
	var values map[string]string
	if err := c.ShouldBindJSON(&values); err != nil {
		badRequest(c, err)
		return
	}
	if len(values) == 0 {
		badRequest(c, errors.New("no settings given"))
		return
	}
	if err := s.backend.SaveSettings(values); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"count":   len(values),
	})
}

func (s *Server) handleTodaySessions(c *gin.Context) {
	sessions := export.Sessions(s.backend.TodaySessions())
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    sessions,
		"count":   len(sessions),
	})
}
