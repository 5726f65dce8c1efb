package commands

import (
	"GophBox/internal/cli/service"
	"GophBox/internal/config"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
)

// Коды выхода процесса.
const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
	// exitAuth: нет токена или сервер его отверг.
	exitAuth = 3
)

// Dispatch is the single entry point to execute CLI commands.
// It prints help and usage messages and returns a process exit code.
func Dispatch(ctx context.Context, cfg *config.Config, args []string) int {
	for _, a := range os.Args[1:] {
		if a == "--help" || a == "-h" {
			fmt.Fprint(Out, FormatGlobalUsage())
			return exitOK
		}
	}

	if !flag.Parsed() {
		flag.Parse()
	}

	if len(args) == 0 {
		fmt.Fprint(Out, FormatGlobalUsage())
		return exitUsage
	}

	name := strings.ToLower(args[0])
	if name == "help" {
		return help(args[1:])
	}

	c, ok := Get(name)
	if !ok {
		fmt.Fprintf(Out, "Unknown command: %s\n\n", name)
		fmt.Fprint(Out, FormatGlobalUsage())
		return exitUsage
	}

	err := c.Run(ctx, cfg, args[1:])
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, ErrUsage):
		fmt.Fprintf(Out, "Usage: %s\n", c.Usage())
		return exitUsage
	case errors.Is(err, service.ErrNotLoggedIn), errors.Is(err, service.ErrUnauthorized):
		fmt.Fprintf(Out, "%s error: %v\n", name, err)
		fmt.Fprintln(Out, "Hint: gbcli login <login> <password>")
		return exitAuth
	default:
		fmt.Fprintf(Out, "%s error: %v\n", name, err)
		return exitFailure
	}
}

// help печатает общую справку или usage одной команды.
func help(args []string) int {
	if len(args) == 0 {
		fmt.Fprint(Out, FormatGlobalUsage())
		return exitOK
	}
	if c, ok := Get(strings.ToLower(args[0])); ok {
		fmt.Fprintf(Out, "Usage: %s\n  %s\n", c.Usage(), c.Description())
		return exitOK
	}
	fmt.Fprintf(Out, "Unknown command: %s\n\n", args[0])
	fmt.Fprint(Out, FormatGlobalUsage())
	return exitUsage
}
