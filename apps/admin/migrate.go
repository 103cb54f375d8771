package main

import (
	"errors"

	"github.com/spf13/cobra"
	"github.com/trezcool/goose"

	"github.com/trezcool/coachreports/storage/database"
)

var (
	gooseRunFunc = goose.RunFS // mockable

	errNoDatabase = errors.New("migrate needs the postgres storage driver")
)

func (cli *commandLine) migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate COMMAND [ARGS]",
		Short: "Manage the postgres database migrations",
		Long: "Manage the postgres database migrations.\n" +
			"Commands: up, up-by-one, up-to VERSION, down, down-to VERSION, redo, reset, status, version",
		DisableFlagParsing: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return helpCmd(cmd, args)
			}
			if cli.db == nil {
				return errNoDatabase
			}
			return gooseRunFunc(args[0], cli.db, database.MigrationsFS, database.MigrationsDir, args[1:]...)
		},
	}
}

// migrating reports whether `args` (program name included) run the migrate command:
// the repositories must not be opened then, as opening them applies every migration.
func migrating(args []string) bool {
	return len(args) > 1 && args[1] == "migrate"
}
