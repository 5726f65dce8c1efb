package commands

import (
	"GophBox/internal/config"
	"context"
	"fmt"
)

type trashCmd struct{}

func (trashCmd) Name() string        { return "trash" }
func (trashCmd) Description() string { return "Переместить в корзину или восстановить" }
func (trashCmd) Usage() string       { return "trash <id>" }

func (trashCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 1 {
		return ErrUsage
	}
	e, err := fileService(cfg).ToggleTrash(ctx, args[0])
	if err != nil {
		return err
	}
	if e.IsTrash {
		fmt.Fprintf(Out, "%s перемещён в корзину\n", e.Name)
	} else {
		fmt.Fprintf(Out, "%s восстановлен\n", e.Name)
	}
	return nil
}

type trashedCmd struct{}

func (trashedCmd) Name() string        { return "trashed" }
func (trashedCmd) Description() string { return "Показать содержимое корзины" }
func (trashedCmd) Usage() string       { return "trashed" }

func (trashedCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 0 {
		return ErrUsage
	}
	list, err := fileService(cfg).ListTrash(ctx)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		fmt.Fprintln(Out, "Корзина пуста")
		return nil
	}
	for _, e := range list {
		printEntry(e)
	}
	fmt.Fprintf(Out, "Всего: %d\n", len(list))
	return nil
}

type emptyTrashCmd struct{}

func (emptyTrashCmd) Name() string        { return "empty-trash" }
func (emptyTrashCmd) Description() string { return "Окончательно удалить всё из корзины" }
func (emptyTrashCmd) Usage() string       { return "empty-trash" }

func (emptyTrashCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 0 {
		return ErrUsage
	}
	res, err := fileService(cfg).EmptyTrash(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(Out, res.Message)
	fmt.Fprintf(Out, "Удалено записей: %d; файлы в хранилище: ok=%d, ошибок=%d, пропущено=%d\n",
		res.Deleted, res.Blobs.Succeeded, res.Blobs.Failed, res.Blobs.Skipped)
	return nil
}

func init() {
	RegisterCmd(trashCmd{})
	RegisterCmd(trashedCmd{})
	RegisterCmd(emptyTrashCmd{})
}
