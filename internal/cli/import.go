package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/runoshun/kanban/internal/usecase"
	"github.com/spf13/cobra"
)

// newImportCommand creates the import command.
func newImportCommand(e *env) *cobra.Command {
	var opts struct {
		From          string
		DryRun        bool
		SkipConflicts bool
	}

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Create items from a YAML board file",
		Long: `Create tasks, epics and subtasks from a YAML board file.

Use --from - to read the board from stdin.

File format:
  tasks:
    - name: Write report
      start: 2024-05-01T10:00:00
      duration: 30m
  epics:
    - name: Release
      description: Ship v1
      subtasks:
        - name: Tag
          status: done`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			content, err := readInput(cmd.InOrStdin(), opts.From)
			if err != nil {
				return err
			}

			c, err := e.container()
			if err != nil {
				return err
			}
			uc, err := c.ImportBoardUseCase()
			if err != nil {
				return err
			}
			out, err := uc.Execute(cmd.Context(), usecase.ImportBoardInput{
				Content:       content,
				DryRun:        opts.DryRun,
				SkipConflicts: opts.SkipConflicts,
			})
			if out != nil {
				printImported(cmd.OutOrStdout(), out, opts.DryRun)
			}
			return err
		},
	}

	cmd.Flags().StringVar(&opts.From, "from", "", "Board file (- for stdin)")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "Validate and preview without creating items")
	cmd.Flags().BoolVar(&opts.SkipConflicts, "skip-conflicts", false, "Skip items whose schedule overlaps an existing item")
	_ = cmd.MarkFlagRequired("from")

	return cmd
}

func readInput(stdin io.Reader, path string) ([]byte, error) {
	if path == "-" {
		content, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return content, nil
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	return content, nil
}

func printImported(w io.Writer, out *usecase.ImportBoardOutput, dryRun bool) {
	for _, item := range out.Items {
		kind := strings.ToLower(string(item.Kind))
		switch {
		case dryRun:
			_, _ = fmt.Fprintf(w, "Would create %s: %s\n", kind, item.Name)
		case item.Skipped:
			_, _ = fmt.Fprintf(w, "Skipped %s: %s (schedule conflict)\n", kind, item.Name)
		default:
			_, _ = fmt.Fprintf(w, "Created %s #%d: %s\n", kind, item.ID, item.Name)
		}
	}
	if dryRun {
		_, _ = fmt.Fprintf(w, "%d item(s) would be created\n", len(out.Items))
		return
	}
	_, _ = fmt.Fprintf(w, "Created %d item(s), skipped %d\n", out.Created, out.Skipped)
}
