package cmd

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"resizer/internal/collect"
	"resizer/internal/errs"
	"resizer/internal/metadata"
	"resizer/internal/tui"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <path>...",
	Short: "Report format, size and metadata of images without modifying them",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInspect(args, cmd.OutOrStdout())
	},
}

func runInspect(paths []string, w io.Writer) error {
	sources, err := collect.Paths(paths, "")
	if err != nil {
		return err
	}

	for i, src := range sources {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "%s\n", inspectFileStyle.Render(src.OriginalName))

		report, err := metadata.Inspect(src.OriginalName, src.Bytes)
		if err != nil {
			logger.Debug("inspect failed", zap.String("name", src.OriginalName), zap.Error(err))
			fmt.Fprintf(w, "  %s %s\n",
				inspectBulletStyle.Render("-"),
				inspectDimStyle.Render(fmt.Sprintf("%s: %v", errs.KindOf(err), err)),
			)
			continue
		}

		fmt.Fprintf(w, "  %s %s\n", inspectBulletStyle.Render("-"),
			inspectValueStyle.Render(fmt.Sprintf("%s %dx%d, %s", report.Kind, report.Width, report.Height, tui.FormatSize(int64(len(src.Bytes))))))
		if report.ExifTags > 0 {
			fmt.Fprintf(w, "  %s %s\n", inspectBulletStyle.Render("-"),
				inspectValueStyle.Render(fmt.Sprintf("%d EXIF tags", report.ExifTags)))
		}

		if len(report.Categories) == 0 {
			fmt.Fprintf(w, "  %s\n", inspectCategoryStyle.Render("Metadata:"))
			fmt.Fprintf(w, "    %s %s\n", inspectBulletStyle.Render("-"), inspectDimStyle.Render("none"))
			continue
		}
		fmt.Fprintf(w, "  %s\n", inspectCategoryStyle.Render("Metadata (dropped on resize):"))
		for _, c := range report.Categories {
			fmt.Fprintf(w, "    %s %s\n", inspectBulletStyle.Render("-"), inspectValueStyle.Render(string(c)))
		}
	}
	return nil
}

var (
	inspectFileStyle     = lipgloss.NewStyle().Bold(true).Foreground(tui.ColorAccent)
	inspectCategoryStyle = lipgloss.NewStyle().Foreground(tui.ColorAccentAlt)
	inspectValueStyle    = lipgloss.NewStyle().Foreground(tui.ColorInk)
	inspectDimStyle      = lipgloss.NewStyle().Foreground(tui.ColorDim)
	inspectBulletStyle   = lipgloss.NewStyle().Foreground(tui.ColorDim)
)

func init() {
	rootCmd.AddCommand(inspectCmd)
}
