package commands

import (
	"GophBox/internal/cli/model"
	"GophBox/internal/config"
	"context"
	"flag"
	"fmt"
	"io"
)

type lsCmd struct{}

func (lsCmd) Name() string        { return "ls" }
func (lsCmd) Description() string { return "Показать содержимое папки" }
func (lsCmd) Usage() string       { return "ls [--starred] [folderId]" }

func (lsCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("ls", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	starred := fs.Bool("starred", false, "только избранное")
	if err := fs.Parse(args); err != nil || fs.NArg() > 1 {
		return ErrUsage
	}
	list, err := fileService(cfg).List(ctx, fs.Arg(0))
	if err != nil {
		return err
	}
	shown := 0
	for _, e := range list {
		if *starred && !e.IsStarred {
			continue
		}
		printEntry(e)
		shown++
	}
	if shown == 0 {
		fmt.Fprintln(Out, "Пусто")
		return nil
	}
	fmt.Fprintf(Out, "Всего: %d\n", shown)
	return nil
}

type mkdirCmd struct{}

func (mkdirCmd) Name() string        { return "mkdir" }
func (mkdirCmd) Description() string { return "Создать папку" }
func (mkdirCmd) Usage() string       { return "mkdir <name> [parentId]" }

func (mkdirCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return ErrUsage
	}
	folder, err := fileService(cfg).Mkdir(ctx, args[0], optionalArg(args, 1))
	if err != nil {
		return err
	}
	fmt.Fprintf(Out, "Создана папка %s (%s)\n", folder.Name, folder.ID)
	return nil
}

type uploadCmd struct{}

func (uploadCmd) Name() string        { return "upload" }
func (uploadCmd) Description() string { return "Загрузить файл (изображение или PDF)" }
func (uploadCmd) Usage() string       { return "upload <path> [parentId]" }

func (uploadCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return ErrUsage
	}
	e, err := fileService(cfg).Upload(ctx, args[0], optionalArg(args, 1))
	if err != nil {
		return err
	}
	fmt.Fprintf(Out, "Загружен %s (%s), %d байт\n", e.Name, e.ID, e.Size)
	if e.FileURL != "" {
		fmt.Fprintln(Out, "URL:", e.FileURL)
	}
	return nil
}

type moveCmd struct{}

func (moveCmd) Name() string        { return "mv" }
func (moveCmd) Description() string { return "Переместить запись (без parentId — в корень)" }
func (moveCmd) Usage() string       { return "mv <id> [parentId]" }

func (moveCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return ErrUsage
	}
	e, err := fileService(cfg).Move(ctx, args[0], optionalArg(args, 1))
	if err != nil {
		return err
	}
	where := "/"
	if e.ParentID != nil {
		where = *e.ParentID
	}
	fmt.Fprintf(Out, "%s → %s\n", e.Name, where)
	return nil
}

type starCmd struct{}

func (starCmd) Name() string        { return "star" }
func (starCmd) Description() string { return "Переключить отметку «избранное»" }
func (starCmd) Usage() string       { return "star <id>" }

func (starCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 1 {
		return ErrUsage
	}
	e, err := fileService(cfg).ToggleStar(ctx, args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(Out, "%s: starred=%t\n", e.Name, e.IsStarred)
	return nil
}

func optionalArg(args []string, i int) string {
	if len(args) > i {
		return args[i]
	}
	return ""
}

func printEntry(e model.Entry) {
	kind := "file"
	if e.IsFolder {
		kind = "dir "
	}
	star := ""
	if e.IsStarred {
		star = " *"
	}
	fmt.Fprintf(Out, "- %s  %s  %s  %d%s\n", kind, e.ID, e.Name, e.Size, star)
}

func init() {
	RegisterCmd(lsCmd{})
	RegisterCmd(mkdirCmd{})
	RegisterCmd(uploadCmd{})
	RegisterCmd(moveCmd{})
	RegisterCmd(starCmd{})
}
