package main

import (
	"log"
	"os"

	"github.com/jmoiron/sqlx"

	"github.com/cs-students/markis/core"
	"github.com/cs-students/markis/core/catalog"
	identitysvc "github.com/cs-students/markis/services/identity"
	logsvc "github.com/cs-students/markis/services/logger"
	"github.com/cs-students/markis/storage/database"
	sqlxrepos "github.com/cs-students/markis/storage/database/sqlx"
	"github.com/cs-students/markis/storage/filestore"
)

var logger *log.Logger

func main() {
	defer os.Exit(0)

	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	conf := core.NewConfig()

	// set up DB
	db, err := database.Open(conf)
	errAndDie(err)
	defer db.Close()
	errAndDie(db.Ping())
	sdb := sqlx.NewDb(db, conf.Database.Engine)

	// set up blob store
	store, err := filestore.New(conf.Filestore.Root)
	errAndDie(err)

	rollbarLogger := logsvc.NewRollbarLogger(logger, conf)
	rollbarLogger.Enable(false)
	idSvc := identitysvc.NewCrowdService(conf, rollbarLogger)

	engagementRepo := sqlxrepos.NewEngagementRepository(sdb)
	catalogSvc := catalog.NewService(conf, sqlxrepos.NewCatalogRepository(sdb), store, engagementRepo, idSvc)

	// start CLI
	cli := commandLine{
		db:         db,
		catalogSvc: catalogSvc,
		idSvc:      idSvc,
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}
