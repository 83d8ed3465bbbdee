package commands

import (
	"BlogHub/internal/config"
	"BlogHub/internal/model"
	"context"
	"fmt"
)

// roleCmd назначает роль пользователю по email.
type roleCmd struct {
	name, role, desc string
}

func (c roleCmd) Name() string        { return c.name }
func (c roleCmd) Description() string { return c.desc }
func (c roleCmd) Usage() string       { return c.name + " <email>" }

func (c roleCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 1 {
		return ErrUsage
	}
	users, _, err := userService(ctx, cfg)
	if err != nil {
		return err
	}
	u, err := users.SetRole(ctx, args[0], c.role)
	if err != nil {
		return err
	}
	fmt.Fprintf(Out, "%s (id %d) is now %s\n", u.Email, u.ID, u.Role)
	return nil
}

func init() {
	RegisterCmd(roleCmd{name: "promote", role: model.RoleAdmin, desc: "Grant the admin role"})
	RegisterCmd(roleCmd{name: "demote", role: model.RoleUser, desc: "Revoke the admin role"})
}
