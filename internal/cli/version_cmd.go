package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/alexanderramin/baseline/internal/cli/formatter"
	"github.com/spf13/cobra"
)

func newVersionCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Inspect, restore and export baseline versions",
	}
	cmd.AddCommand(
		newVersionListCmd(app),
		newVersionCompareCmd(app),
		newVersionRestoreCmd(app),
		newVersionExportCmd(app),
	)
	return cmd
}

func newVersionListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list PROJECT",
		Short: "List the project's baseline versions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			projectID, err := resolveProjectID(ctx, app, args[0])
			if err != nil {
				return err
			}
			versions, err := app.Versions.ListByProject(ctx, projectID)
			if err != nil {
				return err
			}
			if len(versions) == 0 {
				fmt.Println("No baseline versions; the project has not been validated.")
				return nil
			}
			fmt.Print(formatter.FormatVersionList(versions))
			return nil
		},
	}
}

func newVersionCompareCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "compare PROJECT VERSION",
		Short: "Show what changed in a version",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			v, err := resolveVersion(ctx, app, args[0], args[1])
			if err != nil {
				return err
			}
			items, err := app.Versions.Compare(ctx, v.ID)
			if err != nil {
				return err
			}
			fmt.Print(formatter.FormatVersionDiff(v, items))
			return nil
		},
	}
}

func newVersionRestoreCmd(app *App) *cobra.Command {
	var justification, expectedVersion string

	cmd := &cobra.Command{
		Use:   "restore PROJECT VERSION",
		Short: "Restore a past version (the baseline needs re-validation afterwards)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			v, err := resolveVersion(ctx, app, args[0], args[1])
			if err != nil {
				return err
			}
			if err := app.Versions.Restore(ctx, v.ID, justification, expectedVersion); err != nil {
				return err
			}
			fmt.Printf("Restored version %s; validate the baseline again to freeze it.\n", v.VersionNumber)
			return nil
		},
	}

	cmd.Flags().StringVar(&justification, "justification", "", "Why the baseline is being rolled back")
	addExpectedVersionFlag(cmd.Flags(), &expectedVersion)
	return cmd
}

func newVersionExportCmd(app *App) *cobra.Command {
	var format, outPath string

	cmd := &cobra.Command{
		Use:   "export PROJECT VERSION",
		Short: "Export a version as csv or yaml",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			v, err := resolveVersion(ctx, app, args[0], args[1])
			if err != nil {
				return err
			}

			out := os.Stdout
			if outPath != "" {
				f, err := os.Create(outPath)
				if err != nil {
					return err
				}
				defer f.Close()
				out = f
			}
			return app.Versions.Export(ctx, v.ID, format, out)
		},
	}

	cmd.Flags().StringVar(&format, "format", "csv", "Export format: csv or yaml")
	cmd.Flags().StringVar(&outPath, "out", "", "Output file (defaults to stdout)")
	return cmd
}
