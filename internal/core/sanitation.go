package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"haccpcore/pkg/domain"
)

// SanitationCompletion records who finished a task.
type SanitationCompletion struct {
	CompletedBy string `json:"completedBy"`
	Notes       string `json:"notes,omitempty"`
	PhotoURI    string `json:"photoUri,omitempty"`
}

// SanitationDueFilter selects tasks by schedule.
type SanitationDueFilter string

const (
	// SanitationDueAll matches every active task.
	SanitationDueAll SanitationDueFilter = "all"
	// SanitationDueOverdue matches active tasks past their due time.
	SanitationDueOverdue SanitationDueFilter = "overdue"
	// SanitationDueUpcoming matches active tasks due within the next week.
	SanitationDueUpcoming SanitationDueFilter = "upcoming"
	// SanitationDueCompleted matches tasks completed today.
	SanitationDueCompleted SanitationDueFilter = "completed"
)

// upcomingWindow bounds SanitationDueUpcoming.
const upcomingWindow = 7 * 24 * time.Hour

// SanitationLogFilter narrows ListSanitationLogs.
type SanitationLogFilter struct {
	TaskID string
	Since  time.Time
	Until  time.Time
}

// AddSanitationTask schedules a new active task due per its frequency.
func (s *Service) AddSanitationTask(ctx context.Context, task domain.SanitationTask) (domain.SanitationTask, error) {
	var created domain.SanitationTask
	err := s.run(ctx, "add_sanitation_task", func(ctx context.Context) (string, error) {
		err := s.mutate(ctx, func(tx *Transaction) error {
			t := task.Clone()
			if err := prepareSanitationTask(&t); err != nil {
				return err
			}
			t.ID = tx.newID()
			t.LastCompleted = nil
			t.NextDue = domain.NextDue(t.Frequency, t.CustomDays, tx.now)
			t.Active = true
			tx.state.SanitationTasks = append(tx.state.SanitationTasks, t)
			created = t.Clone()
			return nil
		})
		return created.ID, err
	})
	if err != nil {
		return domain.SanitationTask{}, err
	}
	return created, nil
}

// UpdateSanitationTask replaces the task with the same id. The completion
// history is kept; a zero NextDue keeps the stored due time.
func (s *Service) UpdateSanitationTask(ctx context.Context, task domain.SanitationTask) (domain.SanitationTask, error) {
	var updated domain.SanitationTask
	err := s.run(ctx, "update_sanitation_task", func(ctx context.Context) (string, error) {
		return task.ID, s.mutate(ctx, func(tx *Transaction) error {
			idx := sanitationTaskIndex(&tx.state, task.ID)
			if idx < 0 {
				return domain.ErrNotFound{Entity: domain.EntitySanitationTask, ID: task.ID}
			}
			t := task.Clone()
			if err := prepareSanitationTask(&t); err != nil {
				return err
			}
			stored := tx.state.SanitationTasks[idx]
			t.LastCompleted = stored.LastCompleted
			if t.NextDue.IsZero() {
				t.NextDue = stored.NextDue
			}
			tx.state.SanitationTasks[idx] = t
			updated = t.Clone()
			return nil
		})
	})
	if err != nil {
		return domain.SanitationTask{}, err
	}
	return updated, nil
}

// DeleteSanitationTask removes a task. Its logs are retained.
func (s *Service) DeleteSanitationTask(ctx context.Context, id string) error {
	return s.run(ctx, "delete_sanitation_task", func(ctx context.Context) (string, error) {
		return id, s.mutate(ctx, func(tx *Transaction) error {
			idx := sanitationTaskIndex(&tx.state, id)
			if idx < 0 {
				return domain.ErrNotFound{Entity: domain.EntitySanitationTask, ID: id}
			}
			tx.state.SanitationTasks = append(tx.state.SanitationTasks[:idx], tx.state.SanitationTasks[idx+1:]...)
			return nil
		})
	})
}

// CompleteSanitationTask logs a completion and reschedules the task from now.
func (s *Service) CompleteSanitationTask(ctx context.Context, taskID string, in SanitationCompletion) (domain.SanitationLog, error) {
	var log domain.SanitationLog
	err := s.run(ctx, "complete_sanitation_task", func(ctx context.Context) (string, error) {
		return taskID, s.mutate(ctx, func(tx *Transaction) error {
			if strings.TrimSpace(in.CompletedBy) == "" {
				return domain.ErrInvalidInput{Field: "completedBy", Reason: "required"}
			}
			idx := sanitationTaskIndex(&tx.state, taskID)
			if idx < 0 {
				return domain.ErrNotFound{Entity: domain.EntitySanitationTask, ID: taskID}
			}
			task := &tx.state.SanitationTasks[idx]
			now := tx.now
			log = domain.SanitationLog{
				ID:          tx.newID(),
				TaskID:      task.ID,
				CompletedBy: in.CompletedBy,
				Timestamp:   now,
				Notes:       in.Notes,
				PhotoURI:    in.PhotoURI,
			}
			tx.state.SanitationLogs = append(tx.state.SanitationLogs, log)
			task.LastCompleted = &now
			task.NextDue = domain.NextDue(task.Frequency, task.CustomDays, now)
			return nil
		})
	})
	if err != nil {
		return domain.SanitationLog{}, err
	}
	return log, nil
}

// GetSanitationTask returns the task with the given id.
func (s *Service) GetSanitationTask(_ context.Context, id string) (domain.SanitationTask, error) {
	var (
		out   domain.SanitationTask
		found bool
	)
	s.view(func(state *domain.Snapshot) {
		if idx := sanitationTaskIndex(state, id); idx >= 0 {
			out, found = state.SanitationTasks[idx].Clone(), true
		}
	})
	if !found {
		return domain.SanitationTask{}, domain.ErrNotFound{Entity: domain.EntitySanitationTask, ID: id}
	}
	return out, nil
}

// ListSanitationTasks returns tasks matching the due filter, in creation
// order. An empty filter means SanitationDueAll.
func (s *Service) ListSanitationTasks(_ context.Context, due SanitationDueFilter) ([]domain.SanitationTask, error) {
	now := s.clock.Now()
	match, err := sanitationMatcher(due, now)
	if err != nil {
		return nil, err
	}
	var out []domain.SanitationTask
	s.view(func(state *domain.Snapshot) {
		out = make([]domain.SanitationTask, 0, len(state.SanitationTasks))
		for _, t := range state.SanitationTasks {
			if match(t) {
				out = append(out, t.Clone())
			}
		}
	})
	return out, nil
}

// ListSanitationLogs returns completions in the order they were recorded.
func (s *Service) ListSanitationLogs(_ context.Context, filter SanitationLogFilter) []domain.SanitationLog {
	var out []domain.SanitationLog
	s.view(func(state *domain.Snapshot) {
		out = make([]domain.SanitationLog, 0, len(state.SanitationLogs))
		for _, l := range state.SanitationLogs {
			if filter.TaskID != "" && l.TaskID != filter.TaskID {
				continue
			}
			if !inWindow(l.Timestamp, filter.Since, filter.Until) {
				continue
			}
			out = append(out, l)
		}
	})
	return out
}

func sanitationMatcher(due SanitationDueFilter, now time.Time) (func(domain.SanitationTask) bool, error) {
	switch due {
	case "", SanitationDueAll:
		return func(t domain.SanitationTask) bool { return t.Active }, nil
	case SanitationDueOverdue:
		return func(t domain.SanitationTask) bool { return t.DueState(now) == domain.DueOverdue }, nil
	case SanitationDueUpcoming:
		return func(t domain.SanitationTask) bool {
			return t.Active && !t.NextDue.Before(now) && !t.NextDue.After(now.Add(upcomingWindow))
		}, nil
	case SanitationDueCompleted:
		return func(t domain.SanitationTask) bool {
			return t.LastCompleted != nil && sameDay(*t.LastCompleted, now)
		}, nil
	default:
		return nil, domain.ErrInvalidInput{Field: "due", Reason: fmt.Sprintf("unknown filter %q", due)}
	}
}

func prepareSanitationTask(t *domain.SanitationTask) error {
	if strings.TrimSpace(t.Name) == "" {
		return domain.ErrInvalidInput{Field: "task.name", Reason: "required"}
	}
	if !t.Frequency.Valid() {
		return domain.ErrInvalidInput{Field: "task.frequency", Reason: "must be daily, weekly, monthly, quarterly or custom"}
	}
	if t.Area == "" {
		t.Area = domain.AreaOther
	}
	if !t.Area.Valid() {
		return domain.ErrInvalidInput{Field: "task.area", Reason: "unknown area"}
	}
	switch {
	case t.Frequency != domain.SanitationCustom:
		t.CustomDays = 0
	case t.CustomDays < 0:
		return domain.ErrInvalidInput{Field: "task.customDays", Reason: "must be positive"}
	case t.CustomDays == 0:
		t.CustomDays = domain.DefaultCustomDays
	}
	return nil
}

func sanitationTaskIndex(state *domain.Snapshot, id string) int {
	for i := range state.SanitationTasks {
		if state.SanitationTasks[i].ID == id {
			return i
		}
	}
	return -1
}
