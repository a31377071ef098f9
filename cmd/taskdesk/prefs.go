package main

import (
	"fmt"

	"github.com/rpggio/taskdesk/internal/domain/activity"
	"github.com/rpggio/taskdesk/internal/domain/board"
	"github.com/spf13/cobra"
)

func (c *cli) themeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:       "theme [light|dark]",
		Short:     "Show or set the color theme",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{string(board.ThemeLight), string(board.ThemeDark)},
	}
	cmd.RunE = c.run(func(cmd *cobra.Command, args []string) error {
		if len(args) == 1 {
			if err := c.store().SetTheme(cmd.Context(), args[0]); err != nil {
				return err
			}
		}
		fmt.Fprintln(c.out, c.store().Theme())
		return nil
	})
	return cmd
}

func (c *cli) projectCmd() *cobra.Command {
	var title, goal string
	cmd := &cobra.Command{
		Use:   "project",
		Short: "Show or change the board title and goal",
		Args:  cobra.NoArgs,
	}
	cmd.RunE = c.run(func(cmd *cobra.Command, _ []string) error {
		project := c.store().Project()
		var patch board.ProjectPatch
		if cmd.Flags().Changed("title") {
			patch.Title = &title
		}
		if cmd.Flags().Changed("goal") {
			patch.Goal = &goal
		}
		if patch.Title != nil || patch.Goal != nil {
			var err error
			if project, err = c.store().SetProject(cmd.Context(), patch); err != nil {
				return err
			}
		}
		fmt.Fprintln(c.out, c.styles.heading.Render(project.Title))
		if project.Goal != "" {
			fmt.Fprintln(c.out, project.Goal)
		}
		return nil
	})
	cmd.Flags().StringVar(&title, "title", "", "board title")
	cmd.Flags().StringVar(&goal, "goal", "", "board goal")
	return cmd
}

func (c *cli) filtersCmd() *cobra.Command {
	var status, priority, query string
	cmd := &cobra.Command{
		Use:   "filters",
		Short: "Show or save the task filters used by tasks --stored",
		Args:  cobra.NoArgs,
	}
	cmd.RunE = c.run(func(cmd *cobra.Command, _ []string) error {
		var patch board.FiltersPatch
		if cmd.Flags().Changed("status") {
			patch.Status = &status
		}
		if cmd.Flags().Changed("priority") {
			patch.Priority = &priority
		}
		if cmd.Flags().Changed("query") {
			patch.Q = &query
		}

		filters := c.store().Filters()
		if patch.Status != nil || patch.Priority != nil || patch.Q != nil {
			var err error
			if filters, err = c.store().SetFilters(cmd.Context(), patch); err != nil {
				return err
			}
		}
		fmt.Fprintf(c.out, "status=%s priority=%s q=%q\n", filters.Status, filters.Priority, filters.Q)
		return nil
	})
	cmd.Flags().StringVar(&status, "status", "", "todo, doing, done or all")
	cmd.Flags().StringVar(&priority, "priority", "", "low, medium, high or all")
	cmd.Flags().StringVarP(&query, "query", "q", "", "text to match in title or description")
	return cmd
}

func (c *cli) activityCmd() *cobra.Command {
	var (
		limit   int
		taskRef string
	)
	cmd := &cobra.Command{
		Use:   "activity",
		Short: "Show recent board changes",
		Args:  cobra.NoArgs,
	}
	cmd.RunE = c.run(func(cmd *cobra.Command, _ []string) error {
		opts := activity.ListActivityOptions{Limit: limit}
		if taskRef != "" {
			id, err := c.resolveTaskID(taskRef)
			if err != nil {
				return err
			}
			opts.SubjectID = &id
		}

		entries, err := c.app.Activity.GetRecentActivity(cmd.Context(), opts)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Fprintln(c.out, c.styles.muted.Render("No activity."))
			return nil
		}
		for _, e := range entries {
			fmt.Fprintf(c.out, "%s  %-19s %s\n",
				c.styles.muted.Render(e.CreatedAt.Local().Format("2006-01-02 15:04:05")),
				e.ActivityType,
				e.Summary,
			)
		}
		return nil
	})
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum number of entries")
	cmd.Flags().StringVarP(&taskRef, "task", "t", "", "only changes to this task")
	return cmd
}
