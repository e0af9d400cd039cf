package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/entregas/core"
	"github.com/trezcool/entregas/core/delivery"
	"github.com/trezcool/entregas/core/user"
	logsvc "github.com/trezcool/entregas/services/logger"
	"github.com/trezcool/entregas/storage/database"
)

func main() {
	conf := core.NewConfig()
	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	defer logger.Close()

	ctx, cancel := context.WithTimeout(context.Background(), conf.Database.ConnectTimeout)
	defer cancel()

	// set up DB
	store, err := database.Open(ctx, conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	if err = store.Pinger.Ping(ctx); err != nil {
		logger.Fatal(fmt.Sprintf("pinging database: %v", err), err)
	}

	// set up services
	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	delivery.InitValidators(validate, translator)

	// start CLI
	cli := commandLine{
		conf:    conf,
		usrSvc:  user.NewService(store.Users, validate, translator, conf),
		dlvSvc:  delivery.NewService(store.Deliveries, nil /* files */, validate, translator),
		migrate: store.Migrate,
		out:     os.Stdout,
	}
	err = cli.run(context.Background(), os.Args)
	if cErr := store.Close(); cErr != nil {
		logger.Error("closing database", cErr)
	}
	if err != nil {
		if err != errHelp {
			logger.Error(fmt.Sprintf("error: %s", err), err)
		}
		os.Exit(1)
	}
}
