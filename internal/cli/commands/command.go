package commands

import (
	"BlogHub/internal/config"
	"context"
	"errors"
	"io"
	"os"
	"sort"
	"strings"
	"text/tabwriter"
)

// ErrUsage — команда получила неверные аргументы, печатаем её usage.
var ErrUsage = errors.New("usage")

// Command — подкоманда blogctl.
type Command interface {
	// Name — имя, под которым команду вызывают: "promote".
	Name() string
	Description() string
	// Usage — строка вида "promote <email>".
	Usage() string
	// Run получает аргументы без имени команды.
	Run(ctx context.Context, cfg *config.Config, args []string) error
}

var registry = map[string]Command{}

// Out — куда команды пишут результат; тесты подменяют.
var Out io.Writer = os.Stdout

// RegisterCmd вызывается из init() файла команды.
func RegisterCmd(cmd Command) {
	registry[strings.ToLower(cmd.Name())] = cmd
}

func Get(name string) (Command, bool) {
	c, ok := registry[strings.ToLower(name)]
	return c, ok
}

// List — команды по алфавиту.
func List() []Command {
	list := make([]Command, 0, len(registry))
	for _, c := range registry {
		list = append(list, c)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name() < list[j].Name() })
	return list
}

// FormatGlobalUsage — общая справка со списком команд.
func FormatGlobalUsage() string {
	var b strings.Builder
	b.WriteString("BlogHub admin CLI\n\n")
	b.WriteString("Usage:\n  blogctl [-d <dsn>] [-db-driver sqlite|postgres|mysql] <command> [args]\n\n")
	b.WriteString("Commands:\n")
	tw := tabwriter.NewWriter(&b, 0, 4, 3, ' ', 0)
	for _, c := range List() {
		_, _ = io.WriteString(tw, "  "+c.Usage()+"\t"+c.Description()+"\n")
	}
	_ = tw.Flush()
	return b.String()
}

// formatCommandUsage — справка одной команды.
func formatCommandUsage(c Command) string {
	if c.Description() == "" {
		return "Usage: blogctl " + c.Usage() + "\n"
	}
	return "Usage: blogctl " + c.Usage() + "\n\n" + c.Description() + "\n"
}
