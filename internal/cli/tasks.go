package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/sadopc/pomoclock/internal/store"
)

var tasksCmd = &cobra.Command{
	Use:   "tasks",
	Short: "Manage tasks",
}

var tasksListCmd = &cobra.Command{
	Use:   "list",
	Short: "List active tasks",
	RunE:  runTasksList,
}

var tasksAddCmd = &cobra.Command{
	Use:   "add [name]",
	Short: "Add a task",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runTasksAdd,
}

var tasksCompleteCmd = &cobra.Command{
	Use:   "complete [task-id]",
	Short: "Mark a task complete (one-time tasks are removed)",
	Args:  cobra.ExactArgs(1),
	RunE:  runTasksComplete,
}

func init() {
	tasksCmd.AddCommand(tasksListCmd)
	tasksCmd.AddCommand(tasksAddCmd)
	tasksCmd.AddCommand(tasksCompleteCmd)

	tasksListCmd.Flags().Bool("available", false, "Only show tasks available today")
	tasksAddCmd.Flags().StringP("priority", "p", "Medium", "Priority (High, Medium, Low)")
	tasksAddCmd.Flags().StringP("repeat", "r", "", "Repeat interval such as 1d, 2w or 1m (default one-time)")
	tasksAddCmd.Flags().StringSlice("weekdays", nil, "Allowed weekdays, e.g. mon,wed,fri")
}

func runTasksList(cmd *cobra.Command, args []string) error {
	onlyAvailable, _ := cmd.Flags().GetBool("available")

	e, err := openEnv(false)
	if err != nil {
		return err
	}
	defer e.close()

	now := time.Now()
	var tasks []store.Task
	if onlyAvailable {
		tasks, err = e.store.ListAvailableTasks(now)
	} else {
		tasks, err = e.store.ListActiveTasks()
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(tasks) == 0 {
		fmt.Fprintln(out, "No tasks found.")
		return nil
	}

	fmt.Fprintf(out, "Tasks (%d):\n\n", len(tasks))
	for _, t := range tasks {
		mark := " "
		if store.Available(t, now) {
			mark = "*"
		}
		repeat := "once"
		if t.Repeat != nil {
			repeat = t.Repeat.String()
		}
		last := "never"
		if t.LastCompleted != nil {
			last = humanize.Time(*t.LastCompleted)
		}
		fmt.Fprintf(out, "  %s %s  %-28s %-7s %-16s %s\n",
			mark, shortID(t.ID), t.Name, t.Priority, repeat, last)
	}
	return nil
}

func runTasksAdd(cmd *cobra.Command, args []string) error {
	prio, _ := cmd.Flags().GetString("priority")
	repeat, _ := cmd.Flags().GetString("repeat")
	weekdays, _ := cmd.Flags().GetStringSlice("weekdays")

	in := store.TaskInput{Name: strings.Join(args, " ")}
	p, err := store.ParsePriority(prio)
	if err != nil {
		return err
	}
	in.Priority = p
	if repeat != "" {
		r, err := store.ParseRepeat(repeat)
		if err != nil {
			return err
		}
		in.Repeat = r
	}
	if len(weekdays) > 0 {
		days, err := store.ParseWeekdays(weekdays)
		if err != nil {
			return err
		}
		in.AllowedWeekdays = days
	}

	e, err := openEnv(false)
	if err != nil {
		return err
	}
	defer e.close()

	t, err := e.store.CreateTask(in)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created %s (%s)\n", t.Name, shortID(t.ID))
	return nil
}

func runTasksComplete(cmd *cobra.Command, args []string) error {
	e, err := openEnv(false)
	if err != nil {
		return err
	}
	defer e.close()

	t, err := resolveTask(e.store, args[0])
	if err != nil {
		return err
	}

	c, err := e.newClock(nil)
	if err != nil {
		return err
	}
	if err := c.CompleteTask(t.ID, time.Now()); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Completed %s\n", t.Name)
	return nil
}

// resolveTask finds an active task by full id or unique id prefix.
func resolveTask(s *store.Store, ref string) (*store.Task, error) {
	if t, err := s.GetTask(ref); err == nil {
		return t, nil
	}
	tasks, err := s.ListActiveTasks()
	if err != nil {
		return nil, err
	}
	var match *store.Task
	for i := range tasks {
		if strings.HasPrefix(tasks[i].ID, ref) {
			if match != nil {
				return nil, fmt.Errorf("task id %q is ambiguous", ref)
			}
			match = &tasks[i]
		}
	}
	if match == nil {
		return nil, fmt.Errorf("task %q: %w", ref, store.ErrTaskNotFound)
	}
	return match, nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
