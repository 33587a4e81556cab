package main

import (
	"github.com/ossgrants/grantgraph/backend/internal/server"
	"github.com/ossgrants/grantgraph/backend/internal/util"
	"github.com/ossgrants/grantgraph/backend/pkg/logger"
	"github.com/ossgrants/grantgraph/backend/pkg/logger/console"
)

func main() {
	util.LoadEnv()

	debug := util.GetEnvBool("DEBUG", false)

	consoleLogger := console.NewConsoleLogger(console.ConsoleLoggerParams{
		Debug: debug,
	})
	logger.Init(consoleLogger)

	server.Init()
}
