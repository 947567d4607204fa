package main

import (
	"log"
	"os"

	"github.com/jmoiron/sqlx"

	"github.com/trezcool/madrasa/core"
	"github.com/trezcool/madrasa/storage/database"
	sqlxrepos "github.com/trezcool/madrasa/storage/database/sqlx"
)

var logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

func main() {
	defer os.Exit(0)

	conf := core.NewConfig()

	// set up DB
	sdb, err := database.Open(conf)
	errAndDie(err)
	defer sdb.Close()
	errAndDie(sdb.Ping())
	db := sqlx.NewDb(sdb, conf.Database.Engine)

	// start CLI
	cli := commandLine{
		db:         sdb,
		usrRepo:    sqlxrepos.NewUserRepository(db),
		bundleRepo: sqlxrepos.NewBundleRepository(db),
		courseRepo: sqlxrepos.NewCourseRepository(db),
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
