// Package dig_container wires the API dependencies with a dig.Container.
package dig_container

import (
	"context"
	"fmt"
	"log"
	"os"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"go.uber.org/dig"

	echoapi "github.com/trezcool/dashboard/apps/api/echo"
	"github.com/trezcool/dashboard/core"
	"github.com/trezcool/dashboard/core/business"
	"github.com/trezcool/dashboard/core/calendar"
	"github.com/trezcool/dashboard/core/dashboard"
	"github.com/trezcool/dashboard/core/user"
	emailsvc "github.com/trezcool/dashboard/services/email"
	logsvc "github.com/trezcool/dashboard/services/logger"
	"github.com/trezcool/dashboard/storage/database"
	inmemdb "github.com/trezcool/dashboard/storage/database/inmem"
	sqlxrepos "github.com/trezcool/dashboard/storage/database/sqlx"
)

type (
	DBLoggerParam struct {
		dig.In
		Logger core.Logger `name:"dbLogger"`
	}

	Repositories struct {
		dig.Out
		Users    user.Repository
		Events   calendar.Repository
		Business business.Repository
	}

	serverParams struct {
		dig.In
		Conf         *core.Config
		Logger       core.Logger
		UserSvc      user.ServiceInterface
		CalendarSvc  *calendar.Service
		BusinessSvc  *business.Service
		DashboardSvc *dashboard.Service
		Validate     *validator.Validate
		Translator   ut.Translator
	}
)

func newLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	logger := logsvc.NewRollbarLogger(stdLogger, conf)
	logger.Enable(!conf.Debug)
	return logger
}

func newDBLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	logger := logsvc.NewRollbarLogger(stdLogger, conf)
	logger.Enable(!conf.Debug)
	return logger
}

// newDB returns nil when the in-memory repositories are configured.
func newDB(conf *core.Config, loggerParam DBLoggerParam) *sqlx.DB {
	if conf.Database.InMemory {
		loggerParam.Logger.Info("using the in-memory database")
		return nil
	}

	setUp := func() (*sqlx.DB, error) {
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout*6)
		defer cancel()

		if err := database.CreateIfNotExist(ctx, conf); err != nil {
			return nil, errors.Wrap(err, "creating database")
		}

		db, err := database.Open(conf)
		if err != nil {
			return nil, errors.Wrap(err, "opening database")
		}

		if err = database.Migrate(db.DB); err != nil {
			return nil, errors.Wrap(err, "migrating database")
		}
		return db, nil
	}

	db, err := setUp()
	if err != nil {
		loggerParam.Logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	return db
}

func newRepositories(db *sqlx.DB) Repositories {
	if db == nil {
		mem := inmemdb.Open()
		return Repositories{
			Users:    inmemdb.NewUserRepository(mem),
			Events:   inmemdb.NewEventRepository(mem),
			Business: inmemdb.NewBusinessRepository(mem),
		}
	}
	return Repositories{
		Users:    sqlxrepos.NewUserRepository(db),
		Events:   sqlxrepos.NewEventRepository(db),
		Business: sqlxrepos.NewBusinessRepository(db),
	}
}

func newEmailService(conf *core.Config, logger core.Logger) core.EmailService {
	if conf.Debug || conf.SendgridApiKey == "" {
		return emailsvc.NewConsoleService(conf, logger)
	}
	return emailsvc.NewSendgridService(conf, logger)
}

func newUserService(repo user.Repository) user.ServiceInterface {
	return user.NewService(repo)
}

func newServer(p serverParams) *echoapi.Server {
	return echoapi.NewServer(echoapi.ServerDeps{
		Conf:         p.Conf,
		Logger:       p.Logger,
		UserSvc:      p.UserSvc,
		CalendarSvc:  p.CalendarSvc,
		BusinessSvc:  p.BusinessSvc,
		DashboardSvc: p.DashboardSvc,
		Validate:     p.Validate,
		Translator:   p.Translator,
	})
}

// New returns a new dependency injection dig.Container
func New() *dig.Container {
	c := dig.New()

	must(c.Provide(core.NewConfig))
	must(c.Provide(newLogger))
	must(c.Provide(newDBLogger, dig.Name("dbLogger")))
	must(c.Provide(newDB))
	must(c.Provide(newRepositories))
	must(c.Provide(newEmailService))
	must(c.Provide(core.NewTranslator))
	must(c.Provide(core.NewValidator))
	must(c.Provide(newUserService))
	must(c.Provide(calendar.NewService))
	must(c.Provide(business.NewService))
	must(c.Provide(dashboard.NewService))
	must(c.Provide(newServer))

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}
