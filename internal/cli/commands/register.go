package commands

import (
	"GophBox/internal/config"
	"context"
	"fmt"
)

type registerCmd struct{}

func (registerCmd) Name() string        { return "register" }
func (registerCmd) Description() string { return "Create account and login" }
func (registerCmd) Usage() string       { return "register <login> <password>" }

func (registerCmd) Run(_ context.Context, cfg *config.Config, args []string) error {
	if len(args) < 2 {
		return ErrUsage
	}
	if err := authService(cfg).Register(args[0], args[1]); err != nil {
		return err
	}
	fmt.Fprintln(Out, "Registered and logged in")
	return nil
}

func init() { RegisterCmd(registerCmd{}) }
