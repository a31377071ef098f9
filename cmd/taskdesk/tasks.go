package main

import (
	"fmt"
	"strings"

	"github.com/rpggio/taskdesk/internal/domain/board"
	"github.com/spf13/cobra"
)

func (c *cli) tasksCmd() *cobra.Command {
	var (
		status, priority, query string
		stored                  bool
	)
	cmd := &cobra.Command{
		Use:     "tasks",
		Aliases: []string{"ls"},
		Short:   "List tasks, newest first",
		Args:    cobra.NoArgs,
	}
	cmd.RunE = c.run(func(cmd *cobra.Command, _ []string) error {
		var tasks []board.Task
		if stored {
			tasks = c.store().FilteredTasks()
		} else {
			tasks = board.FilterTasks(c.store().ListTasks(), board.Filters{Status: status, Priority: priority, Q: query})
		}
		if len(tasks) == 0 {
			fmt.Fprintln(c.out, c.styles.muted.Render("No tasks."))
			return nil
		}
		for _, t := range tasks {
			fmt.Fprintln(c.out, c.styles.task(t))
		}
		return nil
	})
	cmd.Flags().StringVar(&status, "status", "", "only tasks with this status (todo, doing, done)")
	cmd.Flags().StringVar(&priority, "priority", "", "only tasks with this priority (low, medium, high)")
	cmd.Flags().StringVarP(&query, "query", "q", "", "text to match in title or description")
	cmd.Flags().BoolVar(&stored, "stored", false, "apply the filters saved on the board")
	return cmd
}

func (c *cli) addCmd() *cobra.Command {
	var in board.TaskInput
	cmd := &cobra.Command{
		Use:   "add <title...>",
		Short: "Create a task",
		Args:  cobra.MinimumNArgs(1),
	}
	cmd.RunE = c.run(func(cmd *cobra.Command, args []string) error {
		in.Title = strings.Join(args, " ")
		task, err := c.store().AddTask(cmd.Context(), in)
		if err != nil {
			return err
		}
		fmt.Fprintln(c.out, c.styles.task(task))
		return nil
	})
	cmd.Flags().StringVarP(&in.Desc, "desc", "d", "", "description")
	cmd.Flags().StringVarP(&in.Priority, "priority", "p", "", "low, medium or high")
	cmd.Flags().StringVarP(&in.Status, "status", "s", "", "todo, doing or done")
	cmd.Flags().Float64Var(&in.EstimateMin, "estimate", 0, "estimated minutes")
	cmd.Flags().Float64Var(&in.SpentMin, "spent", 0, "minutes already spent")
	return cmd
}

func (c *cli) editCmd() *cobra.Command {
	var (
		title, desc, priority, status string
		estimate, spent               float64
	)
	cmd := &cobra.Command{
		Use:   "edit <task-id>",
		Short: "Change fields of a task; only the flags given are applied",
		Args:  cobra.ExactArgs(1),
	}
	cmd.RunE = c.run(func(cmd *cobra.Command, args []string) error {
		id, err := c.resolveTaskID(args[0])
		if err != nil {
			return err
		}

		var patch board.TaskPatch
		flags := cmd.Flags()
		if flags.Changed("title") {
			patch.Title = &title
		}
		if flags.Changed("desc") {
			patch.Desc = &desc
		}
		if flags.Changed("priority") {
			patch.Priority = &priority
		}
		if flags.Changed("status") {
			patch.Status = &status
		}
		if flags.Changed("estimate") {
			patch.EstimateMin = &estimate
		}
		if flags.Changed("spent") {
			patch.SpentMin = &spent
		}

		task, err := c.store().UpdateTask(cmd.Context(), id, patch)
		if err != nil {
			return err
		}
		fmt.Fprintln(c.out, c.styles.task(task))
		return nil
	})
	cmd.Flags().StringVar(&title, "title", "", "new title")
	cmd.Flags().StringVarP(&desc, "desc", "d", "", "new description")
	cmd.Flags().StringVarP(&priority, "priority", "p", "", "low, medium or high")
	cmd.Flags().StringVarP(&status, "status", "s", "", "todo, doing or done")
	cmd.Flags().Float64Var(&estimate, "estimate", 0, "estimated minutes")
	cmd.Flags().Float64Var(&spent, "spent", 0, "minutes spent")
	return cmd
}

func (c *cli) doneCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "done <task-id>",
		Short: "Toggle a task between done and todo",
		Args:  cobra.ExactArgs(1),
	}
	cmd.RunE = c.run(func(cmd *cobra.Command, args []string) error {
		id, err := c.resolveTaskID(args[0])
		if err != nil {
			return err
		}
		task, err := c.store().ToggleDone(cmd.Context(), id)
		if err != nil {
			return err
		}
		fmt.Fprintln(c.out, c.styles.task(task))
		return nil
	})
	return cmd
}

func (c *cli) rmCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rm <task-id>",
		Short: "Delete a task; its notes are kept and unlinked",
		Args:  cobra.ExactArgs(1),
	}
	cmd.RunE = c.run(func(cmd *cobra.Command, args []string) error {
		id, err := c.resolveTaskID(args[0])
		if err != nil {
			return err
		}
		if err := c.store().RemoveTask(cmd.Context(), id); err != nil {
			return err
		}
		fmt.Fprintf(c.out, "removed %s\n", shortID(id))
		return nil
	})
	return cmd
}

func (c *cli) nextCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "next <task-id> <step...>",
		Short: "Append a next step to a task description",
		Args:  cobra.MinimumNArgs(2),
	}
	cmd.RunE = c.run(func(cmd *cobra.Command, args []string) error {
		id, err := c.resolveTaskID(args[0])
		if err != nil {
			return err
		}
		task, err := c.store().AppendNextStep(cmd.Context(), id, strings.Join(args[1:], " "))
		if err != nil {
			return err
		}
		fmt.Fprintln(c.out, c.styles.task(task))
		fmt.Fprintln(c.out, task.Desc)
		return nil
	})
	return cmd
}

func (c *cli) focusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "focus",
		Short: "Show the first unfinished task",
		Args:  cobra.NoArgs,
	}
	cmd.RunE = c.run(func(cmd *cobra.Command, _ []string) error {
		task, ok := c.store().NextFocusTask()
		if !ok {
			fmt.Fprintln(c.out, c.styles.muted.Render("No tasks."))
			return nil
		}
		fmt.Fprintln(c.out, c.styles.task(task))
		if task.Desc != "" {
			fmt.Fprintln(c.out, task.Desc)
		}
		return nil
	})
	return cmd
}
