package main

import (
	"context"
	"io"
	"log"
	"os"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/coachreports/core"
	"github.com/trezcool/coachreports/core/progress"
	"github.com/trezcool/coachreports/core/transfer"
	logsvc "github.com/trezcool/coachreports/services/logger"
	"github.com/trezcool/coachreports/storage"
	"github.com/trezcool/coachreports/storage/database"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

func main() {
	conf := core.NewConfig()
	logger := logsvc.NewRollbarLogger(log.New(os.Stderr, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile), conf)
	ctx := context.Background()

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	progress.InitValidators(validate, translator)

	cli := commandLine{
		validate:   validate,
		translator: translator,
		out:        os.Stdout,
	}
	var closer io.Closer = nopCloser{}

	if migrating(os.Args) {
		// set up database
		if conf.Storage.Driver == core.StoragePostgres {
			db, err := database.Open(ctx, database.DSN(conf))
			if err != nil {
				logger.Fatal("setting up database", err)
			}
			cli.db, closer = db.DB, db
		}
	} else {
		// set up storage
		repos, c, err := storage.Open(ctx, conf)
		if err != nil {
			logger.Fatal("setting up storage", err)
		}
		closer = c

		// set up services
		cli.reportSvc, err = repos.ReportService(progress.ReportQuery{Filter: conf.Reports.Filter, Ordering: conf.Reports.Ordering}, logger)
		if err != nil {
			_ = closer.Close()
			logger.Fatal("setting up report service", err)
		}
		cli.transferSvc = transfer.NewService(conf.Transfer.ContentDir, conf.Transfer.ReservedSpace)
	}

	// start CLI
	err := cli.run(os.Args)
	_ = closer.Close()
	logger.Flush()

	if err != nil {
		if err != errHelp {
			log.Printf("error: %s\n", err)
		}
		os.Exit(1)
	}
}
