package main

import (
	"database/sql"
	"errors"
	"io"
	"os"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/trezcool/coachreports/core/progress"
	"github.com/trezcool/coachreports/core/transfer"
)

var (
	isTerminalFunc = func(fd uintptr) bool { return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd) } // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	db          *sql.DB // set for the migrate command only
	reportSvc   progress.ServiceInterface
	transferSvc transfer.ServiceInterface
	validate    *validator.Validate
	translator  ut.Translator
	out         io.Writer
}

// run executes `args` (program name included).
func (cli *commandLine) run(args []string) error {
	cmd := cli.rootCmd()
	cmd.SetArgs(args[1:])
	return cmd.Execute()
}

func (cli *commandLine) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "admin",
		Short:         "Coach reports administration",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          helpCmd,
	}
	root.SetOut(cli.out)
	root.SetErr(cli.out)

	root.AddCommand(cli.reportCmd(), cli.admissionCmd(), cli.migrateCmd())
	return root
}

func helpCmd(cmd *cobra.Command, _ []string) error {
	_ = cmd.Help()
	return errHelp
}

// terminal reports whether `w` is an interactive terminal.
func terminal(w io.Writer) bool {
	if f, ok := w.(*os.File); ok {
		return isTerminalFunc(f.Fd())
	}
	return false
}
