package commands

import (
	"BlogHub/internal/config"
	"context"
	"errors"
	"fmt"
)

// Exit codes Dispatch.
const (
	ExitOK    = 0
	ExitError = 1
	ExitUsage = 2
)

func isHelpFlag(a string) bool {
	return a == "-h" || a == "--help" || a == "-help"
}

// Dispatch запускает команду по args (флаги конфигурации уже разобраны) и
// возвращает код выхода. Справка: "help [command]", "-h" или "<command> -h".
func Dispatch(ctx context.Context, cfg *config.Config, args []string) int {
	if len(args) == 0 {
		fmt.Fprint(Out, FormatGlobalUsage())
		return ExitUsage
	}

	name := args[0]
	if name == "help" || isHelpFlag(name) {
		if len(args) == 1 {
			fmt.Fprint(Out, FormatGlobalUsage())
			return ExitOK
		}
		c, ok := Get(args[1])
		if !ok {
			fmt.Fprintf(Out, "Unknown command: %s\n\n%s", args[1], FormatGlobalUsage())
			return ExitUsage
		}
		fmt.Fprint(Out, formatCommandUsage(c))
		return ExitOK
	}

	c, ok := Get(name)
	if !ok {
		fmt.Fprintf(Out, "Unknown command: %s\n\n%s", name, FormatGlobalUsage())
		return ExitUsage
	}

	for _, a := range args[1:] {
		if isHelpFlag(a) {
			fmt.Fprint(Out, formatCommandUsage(c))
			return ExitOK
		}
	}

	err := c.Run(ctx, cfg, args[1:])
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, ErrUsage):
		fmt.Fprint(Out, formatCommandUsage(c))
		return ExitUsage
	default:
		fmt.Fprintf(Out, "%s error: %v\n", c.Name(), err)
		Logger.Debugw("command failed", "command", c.Name(), "error", err)
		return ExitError
	}
}
