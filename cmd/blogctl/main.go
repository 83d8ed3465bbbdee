package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"BlogHub/internal/cli/commands"
	"BlogHub/internal/config"

	"go.uber.org/zap"
)

func main() {
	// -h до имени команды перехватывает пакет flag: показываем и список команд
	flag.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), commands.FormatGlobalUsage(), "\nFlags:\n")
		flag.PrintDefaults()
	}

	// тот же конфиг, что и у сервера (env + флаги)
	cfg := config.NewConfig()

	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()
	commands.Logger = logger.Sugar()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// dispatcher
	exitCode := commands.Dispatch(ctx, cfg, flag.Args())
	if exitCode == 0 {
		return
	}
	cancel()
	os.Exit(exitCode)
}
