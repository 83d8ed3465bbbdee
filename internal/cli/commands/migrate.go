package commands

import (
	"BlogHub/internal/config"
	"context"
	"fmt"
)

type migrateCmd struct{}

func (migrateCmd) Name() string        { return "migrate" }
func (migrateCmd) Description() string { return "Create or update the database schema" }
func (migrateCmd) Usage() string       { return "migrate" }

func (migrateCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 0 {
		return ErrUsage
	}
	if _, err := openDB(ctx, cfg); err != nil {
		return err
	}
	fmt.Fprintf(Out, "Schema is up to date (%s)\n", cfg.DBDriver)
	return nil
}

func init() { RegisterCmd(migrateCmd{}) }
