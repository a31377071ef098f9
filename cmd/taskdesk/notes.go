package main

import (
	"fmt"
	"strings"

	"github.com/rpggio/taskdesk/internal/domain/board"
	"github.com/spf13/cobra"
)

func (c *cli) notesCmd() *cobra.Command {
	var taskRef string
	cmd := &cobra.Command{
		Use:   "notes",
		Short: "List notes, newest first",
		Args:  cobra.NoArgs,
	}
	cmd.RunE = c.run(func(cmd *cobra.Command, _ []string) error {
		taskID := ""
		if taskRef != "" {
			id, err := c.resolveTaskID(taskRef)
			if err != nil {
				return err
			}
			taskID = id
		}

		titles := make(map[string]string)
		for _, t := range c.store().ListTasks() {
			titles[t.ID] = t.Title
		}

		shown := 0
		for _, n := range c.store().ListNotes() {
			if taskID != "" && (n.TaskID == nil || *n.TaskID != taskID) {
				continue
			}
			title := ""
			if n.TaskID != nil {
				title = titles[*n.TaskID]
			}
			fmt.Fprintln(c.out, c.styles.note(n, title))
			shown++
		}
		if shown == 0 {
			fmt.Fprintln(c.out, c.styles.muted.Render("No notes."))
		}
		return nil
	})
	cmd.Flags().StringVarP(&taskRef, "task", "t", "", "only notes linked to this task")
	return cmd
}

func (c *cli) noteCmd() *cobra.Command {
	var source, taskRef string
	cmd := &cobra.Command{
		Use:   "note <content...>",
		Short: "Record a note, optionally linked to a task",
		Args:  cobra.MinimumNArgs(1),
	}
	cmd.RunE = c.run(func(cmd *cobra.Command, args []string) error {
		in := board.NoteInput{Source: source, Content: strings.Join(args, " ")}
		title := ""
		if taskRef != "" {
			id, err := c.resolveTaskID(taskRef)
			if err != nil {
				return err
			}
			in.TaskID = id
			task, _ := c.store().GetTask(id)
			title = task.Title
		}
		note, err := c.store().AddNote(cmd.Context(), in)
		if err != nil {
			return err
		}
		fmt.Fprintln(c.out, c.styles.note(note, title))
		return nil
	})
	cmd.Flags().StringVarP(&source, "source", "s", "", "where the note came from (default ChatGPT)")
	cmd.Flags().StringVarP(&taskRef, "task", "t", "", "task to link the note to")
	return cmd
}

func (c *cli) unnoteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "unnote <note-id>",
		Short: "Delete a note",
		Args:  cobra.ExactArgs(1),
	}
	cmd.RunE = c.run(func(cmd *cobra.Command, args []string) error {
		id, err := c.resolveNoteID(args[0])
		if err != nil {
			return err
		}
		if err := c.store().RemoveNote(cmd.Context(), id); err != nil {
			return err
		}
		fmt.Fprintf(c.out, "removed %s\n", shortID(id))
		return nil
	})
	return cmd
}

func (c *cli) sourcesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sources",
		Short: "List note sources",
		Args:  cobra.NoArgs,
	}
	cmd.RunE = c.run(func(cmd *cobra.Command, _ []string) error {
		c.printSources()
		return nil
	})

	add := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a custom source",
		Args:  cobra.ExactArgs(1),
	}
	add.RunE = c.run(func(cmd *cobra.Command, args []string) error {
		if err := c.store().AddCustomSource(cmd.Context(), args[0]); err != nil {
			return err
		}
		c.printSources()
		return nil
	})

	rm := &cobra.Command{
		Use:   "rm <name>",
		Short: "Remove a custom source, ignoring case",
		Args:  cobra.ExactArgs(1),
	}
	rm.RunE = c.run(func(cmd *cobra.Command, args []string) error {
		if err := c.store().RemoveCustomSource(cmd.Context(), args[0]); err != nil {
			return err
		}
		c.printSources()
		return nil
	})

	cmd.AddCommand(add, rm)
	return cmd
}

func (c *cli) printSources() {
	fmt.Fprintln(c.out, c.styles.heading.Render("built-in")+"  "+strings.Join(board.BuiltinSources, ", "))
	custom := c.store().GetCustomSources()
	if len(custom) == 0 {
		fmt.Fprintln(c.out, c.styles.heading.Render("custom")+"    "+c.styles.muted.Render("none"))
		return
	}
	fmt.Fprintln(c.out, c.styles.heading.Render("custom")+"    "+strings.Join(custom, ", "))
}
