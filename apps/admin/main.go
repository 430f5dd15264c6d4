package main

import (
	"log"
	"os"

	"github.com/trezcool/dashboard/core"
	"github.com/trezcool/dashboard/core/user"
	logsvc "github.com/trezcool/dashboard/services/logger"
	"github.com/trezcool/dashboard/storage/database"
	sqlxrepos "github.com/trezcool/dashboard/storage/database/sqlx"
)

func main() {
	conf := core.NewConfig()

	logger := logsvc.NewRollbarLogger(log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile), conf)
	logger.Enable(!conf.Debug)

	if conf.Database.InMemory {
		logger.Fatal("the admin commands need a PostgreSQL database: unset database.inMemory")
	}

	// set up DB
	db, err := database.Open(conf)
	if err != nil {
		logger.Fatal("opening database", err)
	}
	defer func() { _ = db.Close() }()
	if err = db.Ping(); err != nil {
		logger.Fatal("pinging database", err)
	}

	user.LoadCommonPasswords(logger)

	// start CLI
	cli := &commandLine{
		db:     db.DB,
		usrSvc: user.NewService(sqlxrepos.NewUserRepository(db)),
	}
	if err = newRootCmd(cli).Execute(); err != nil {
		os.Exit(1)
	}
}
