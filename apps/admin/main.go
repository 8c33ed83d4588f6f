package main

import (
	"fmt"
	"log"
	"os"

	"github.com/trezcool/studytrack/assets"
	"github.com/trezcool/studytrack/core"
	"github.com/trezcool/studytrack/core/progress"
	"github.com/trezcool/studytrack/core/student"
	emailsvc "github.com/trezcool/studytrack/services/email"
	logsvc "github.com/trezcool/studytrack/services/logger"
	"github.com/trezcool/studytrack/storage/database"
	sqlxrepos "github.com/trezcool/studytrack/storage/database/sqlx"
)

func main() {
	conf := core.NewConfig()

	sugar, err := logsvc.NewZap(conf)
	if err != nil {
		log.Fatal(err)
	}
	logger := logsvc.NewRollbarLogger(sugar.Named("admin"), conf)
	logger.Enable(!conf.Debug)
	defer logger.Sync()

	if conf.Database.Engine == database.EngineMemory {
		logger.Fatal(fmt.Sprintf("the admin CLI needs a persistent database, got engine %q", conf.Database.Engine))
	}

	// set up DB
	if err = database.CreateIfNotExist(conf); err != nil {
		logger.Fatal(fmt.Sprintf("creating database: %v", err), err)
	}
	db, err := database.Open(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("opening database: %v", err), err)
	}

	// set up services
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf, logger)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}
	core.ParseEmailTemplates(assets.FS, assets.EmailTemplatesDir, conf, logger)

	repos := sqlxrepos.NewRepositories(db)

	// start CLI
	cli := commandLine{
		db:       db,
		students: student.NewService(conf, repos.Students, mailSvc),
		progress: progress.NewSynchronizer(repos.Progress, repos.Tasks, repos.Goals),
	}
	err = cli.run(os.Args)
	_ = db.Close()
	if err != nil {
		if err != errHelp {
			logger.Error(fmt.Sprintf("\nerror: %s\n", err), err)
		}
		os.Exit(1)
	}
}
