package main

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/rpggio/taskdesk/internal/domain/board"
	"github.com/spf13/cobra"
)

const renderWidth = 100

func (c *cli) exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the board as JSON or Markdown",
	}

	var jsonOut string
	jsonCmd := &cobra.Command{
		Use:   "json",
		Short: "Write the portable JSON document",
		Args:  cobra.NoArgs,
	}
	jsonCmd.RunE = c.run(func(cmd *cobra.Command, _ []string) error {
		text, err := c.store().ExportJSON()
		if err != nil {
			return err
		}
		return c.writeOutput(jsonOut, text+"\n")
	})
	jsonCmd.Flags().StringVarP(&jsonOut, "output", "o", "", "write to this file instead of stdout")

	var (
		mdOut  string
		render bool
	)
	mdCmd := &cobra.Command{
		Use:   "md",
		Short: "Write the Markdown report",
		Args:  cobra.NoArgs,
	}
	mdCmd.RunE = c.run(func(cmd *cobra.Command, _ []string) error {
		report := c.store().ExportMarkdown()
		if !render {
			return c.writeOutput(mdOut, report+"\n")
		}
		rendered, err := renderMarkdown(report, c.store().Theme())
		if err != nil {
			return err
		}
		return c.writeOutput(mdOut, rendered)
	})
	mdCmd.Flags().StringVarP(&mdOut, "output", "o", "", "write to this file instead of stdout")
	mdCmd.Flags().BoolVar(&render, "render", false, "render for the terminal instead of printing raw Markdown")

	cmd.AddCommand(jsonCmd, mdCmd)
	return cmd
}

func (c *cli) importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Replace the board with an exported JSON document (- reads stdin)",
		Args:  cobra.ExactArgs(1),
	}
	cmd.RunE = c.run(func(cmd *cobra.Command, args []string) error {
		var (
			data []byte
			err  error
		)
		if args[0] == "-" {
			data, err = io.ReadAll(cmd.InOrStdin())
		} else {
			data, err = os.ReadFile(args[0])
		}
		if err != nil {
			return fmt.Errorf("reading import: %w", err)
		}
		if err := c.store().ImportJSON(cmd.Context(), string(data)); err != nil {
			return err
		}
		fmt.Fprintf(c.out, "imported %d tasks and %d notes\n", len(c.store().ListTasks()), len(c.store().ListNotes()))
		return nil
	})
	return cmd
}

func (c *cli) writeOutput(path, text string) error {
	if path == "" {
		_, err := io.WriteString(c.out, text)
		return err
	}
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	fmt.Fprintf(c.out, "wrote %s\n", path)
	return nil
}

// renderMarkdown styles a report for the terminal using the glamour style
// matching the board theme.
func renderMarkdown(markdown string, theme board.Theme) (string, error) {
	style := "dark"
	if theme == board.ThemeLight {
		style = "light"
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(renderWidth),
	)
	if err != nil {
		return "", fmt.Errorf("creating renderer: %w", err)
	}
	out, err := r.Render(markdown)
	if err != nil {
		return "", fmt.Errorf("rendering report: %w", err)
	}
	return out, nil
}
