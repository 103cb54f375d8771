package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/trezcool/coachreports/core"
	"github.com/trezcool/coachreports/core/progress"
)

type reportFlags struct {
	query  progress.ReportQuery
	output string
}

func (cli *commandLine) reportCmd() *cobra.Command {
	var flags reportFlags

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print coach report tables",
		RunE:  helpCmd,
	}
	pf := cmd.PersistentFlags()
	pf.StringVar(&flags.query.Filter, "filter", "", "all | active-only | inactive-only")
	pf.StringVar(&flags.query.Ordering, "ordering", "", "comma separated sort fields, '-' prefix for descending (eg. -active,title)")
	pf.StringVar(&flags.query.AssignedBy, "assigned-by", "", "recipients | activity")
	pf.StringVarP(&flags.output, "output", "o", outputTable, "table | yaml | json")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "lessons",
			Short: "One row per lesson",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return cli.report(cmd.Context(), flags, func(ctx context.Context, q progress.ReportQuery) ([]progress.TableRow, error) {
					return cli.reportSvc.LessonReport(ctx, q)
				})
			},
		},
		&cobra.Command{
			Use:   "resources LESSON_ID",
			Short: "One row per resource of a lesson",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return cli.report(cmd.Context(), flags, func(ctx context.Context, q progress.ReportQuery) ([]progress.TableRow, error) {
					return cli.reportSvc.ResourceReport(ctx, args[0], q)
				})
			},
		},
	)
	return cmd
}

type reportFunc func(ctx context.Context, q progress.ReportQuery) ([]progress.TableRow, error)

func (cli *commandLine) report(ctx context.Context, flags reportFlags, fn reportFunc) error {
	if err := checkOutput(flags.output); err != nil {
		return err
	}
	q := flags.query
	if err := q.Validate(cli.validate); err != nil {
		return cli.validationError(err)
	}
	if ctx == nil {
		ctx = context.Background()
	}

	rows, err := fn(ctx, q)
	if err != nil {
		return err
	}
	return writeRows(cli.out, flags.output, rows)
}

// validationError turns validator errors into a readable core.ValidationError.
func (cli *commandLine) validationError(err error) error {
	vErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	fldErrs := core.TranslateErrors(vErrs, cli.translator)
	msgs := make([]string, 0, len(fldErrs))
	for _, fErr := range fldErrs {
		msgs = append(msgs, fmt.Sprintf("%s: %s", fErr.Field, fErr.Error))
	}
	return core.NewValidationError(errors.New(strings.Join(msgs, "; ")), fldErrs...)
}
