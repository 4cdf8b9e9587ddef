package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/sumandas0/plantmodel/internal/core"
	"github.com/sumandas0/plantmodel/internal/health"
	"github.com/sumandas0/plantmodel/internal/models"
	"github.com/sumandas0/plantmodel/pkg/utils"
)

// withApplication builds the application for one command run and closes it
// afterwards.
func withApplication(run func(cmd *cobra.Command, app *application, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) (err error) {
		app, err := newApplication(cmd)
		if err != nil {
			return err
		}
		defer func() {
			if closeErr := app.Close(); closeErr != nil && err == nil {
				err = closeErr
			}
		}()
		return run(cmd, app, args)
	}
}

func ignoreErrors(cmd *cobra.Command, app *application) bool {
	if cmd.Flags().Changed("ignore-errors") {
		v, _ := cmd.Flags().GetBool("ignore-errors")
		return v
	}
	return app.cfg.Model.IgnoreErrors
}

func newValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file>",
		Short: "Load a model file and report every component that fails validation",
		Args:  cobra.ExactArgs(1),
		RunE: withApplication(func(cmd *cobra.Command, app *application, args []string) error {
			report, err := app.manager.LoadFile(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			whole, err := app.manager.Validate()
			if err != nil {
				return err
			}
			report.Add(whole.Errors...)

			out := cmd.OutOrStdout()
			printReport(out, report)
			if !report.OK() {
				return fmt.Errorf("%s: %d validation problems", args[0], len(report.Errors))
			}
			fmt.Fprintf(out, "%s: ok (%d components)\n", args[0], app.manager.Model().Len())
			return nil
		}),
	}
}

func newConvertCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "convert <in> <out>",
		Short: "Convert a model between formats, chosen by file extension",
		Args:  cobra.ExactArgs(2),
		RunE: withApplication(func(cmd *cobra.Command, app *application, args []string) error {
			out := cmd.OutOrStdout()
			report, err := app.manager.LoadFile(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printReport(out, report)

			report, err = app.manager.SaveFile(cmd.Context(), args[1], ignoreErrors(cmd, app))
			printReport(out, report)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "wrote %s\n", args[1])
			return nil
		}),
	}
	cmd.Flags().Bool("ignore-errors", false, "Write the model even if it fails validation")
	return cmd
}

func newInspectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <file>",
		Short: "Print the number of components per kind",
		Args:  cobra.ExactArgs(1),
		RunE: withApplication(func(cmd *cobra.Command, app *application, args []string) error {
			report, err := app.manager.LoadFile(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			model := app.manager.Model()
			scale := app.manager.Scale()

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "model:  %s\n", model.Name())
			fmt.Fprintf(out, "layout: %s (scale %s x %s mm/px)\n", model.Layout().Name,
				models.FormatNumber(scale.X), models.FormatNumber(scale.Y))

			w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			for _, kind := range models.AllKinds() {
				if kind == models.KindLayout {
					continue
				}
				fmt.Fprintf(w, "%s\t%d\n", kind.Label(), len(model.ComponentsOfKind(kind)))
			}
			w.Flush()
			printReport(out, report)
			return nil
		}),
	}
}

func newUploadCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "upload <file>",
		Short: "Load a model file and hand it to the kernel",
		Args:  cobra.ExactArgs(1),
		RunE: withApplication(func(cmd *cobra.Command, app *application, args []string) error {
			out := cmd.OutOrStdout()
			report, err := app.manager.LoadFile(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printReport(out, report)

			report, err = app.manager.UploadToKernel(cmd.Context(), ignoreErrors(cmd, app))
			printReport(out, report)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "uploaded %s\n", app.manager.Model().Name())
			return nil
		}),
	}
	cmd.Flags().Bool("ignore-errors", false, "Upload the model even if it fails validation")
	return cmd
}

func newDownloadCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "download <out>",
		Short: "Fetch the kernel's model and write it to a file",
		Args:  cobra.ExactArgs(1),
		RunE: withApplication(func(cmd *cobra.Command, app *application, args []string) error {
			out := cmd.OutOrStdout()
			report, err := app.manager.LoadFromKernel(cmd.Context())
			if err != nil {
				return err
			}
			printReport(out, report)

			report, err = app.manager.SaveFile(cmd.Context(), args[0], ignoreErrors(cmd, app))
			printReport(out, report)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "wrote %s\n", args[0])
			return nil
		}),
	}
	cmd.Flags().Bool("ignore-errors", false, "Write the model even if it fails validation")
	return cmd
}

func newStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check that the configured kernel is reachable",
		Args:  cobra.NoArgs,
		RunE: withApplication(func(cmd *cobra.Command, app *application, args []string) error {
			result := app.health.Check(cmd.Context())
			if result.Summary.Total == 0 {
				return utils.NewAppError(utils.CodePrecondition, "no kernel configured", nil)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, name := range result.Names() {
				c := result.Components[name]
				fmt.Fprintf(w, "%s\t%s\t%s\n", name, c.Status, c.Message)
			}
			if err := w.Flush(); err != nil {
				return err
			}
			if result.Status == health.StatusUnhealthy {
				return fmt.Errorf("%d of %d checks failed", result.Summary.Unhealthy, result.Summary.Total)
			}
			return nil
		}),
	}
}

func printReport(out io.Writer, report *core.Report) {
	if report.OK() {
		return
	}
	for _, name := range report.Rejected {
		fmt.Fprintf(out, "rejected: %s\n", name)
	}
	for _, msg := range report.Errors {
		fmt.Fprintf(out, "error:    %s\n", msg)
	}
}
