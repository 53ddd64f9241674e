package main

//go-build: CGO_ENABLED=0

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"

	"github.com/golang/glog"

	"github.com/robotalks/courier/pkg/courier/bot"
	fx "github.com/robotalks/courier/pkg/framework"
	"github.com/robotalks/courier/pkg/supervisor"
)

// exitRestart is the exit code asking the external supervisor to restart.
const exitRestart = 3

func main() {
	if err := bot.LoadDefaults(os.Args[1:]); err != nil {
		log.Fatalln(err)
	}
	bot.SetupFlags()
	flag.Parse()

	conf := bot.Default()
	hw := conf.NewHardware()
	runner := fx.NewRunner().HandleSignals()
	err := conf.Supervisor.NewSupervisor().Run(runner.Context, conf.Boot(hw))
	glog.Flush()
	switch {
	case err == nil, errors.Is(err, context.Canceled):
	case errors.Is(err, supervisor.ErrRestartExit):
		log.Println(err)
		os.Exit(exitRestart)
	default:
		log.Fatalln(err)
	}
}
