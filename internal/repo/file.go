package repo

import (
	"GophBox/internal/model"
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// DefaultMaxDepth: ограничение глубины вложенности папок, если вызывающий не задал своё.
const DefaultMaxDepth = 32

// pgForeignKeyViolation: SQLSTATE нарушения внешнего ключа в Postgres.
const pgForeignKeyViolation = "23503"

var (
	// ErrParentNotFound: родитель не существует, чужой, не папка или лежит в корзине.
	ErrParentNotFound = errors.New("parent folder not found")
	// ErrCycle: перемещение папки внутрь самой себя или своего потомка.
	ErrCycle = errors.New("move would create a cycle")
	// ErrTooDeep: цепочка предков длиннее допустимой.
	ErrTooDeep = errors.New("folder nesting too deep")
)

// FileRepository: доступ к записям файлов и папок. Все методы ограничены владельцем.
type FileRepository interface {
	// ListByParent возвращает записи владельца в папке parentID (nil — корень).
	ListByParent(ctx context.Context, userID string, parentID *string) ([]model.FileEntry, error)
	// ListTrashed возвращает все записи владельца с IsTrash = true.
	ListTrashed(ctx context.Context, userID string) ([]model.FileEntry, error)
	// GetByID возвращает gorm.ErrRecordNotFound для чужих и отсутствующих записей.
	GetByID(ctx context.Context, userID, id string) (*model.FileEntry, error)
	// Create проверяет родителя и вставляет запись в одной транзакции.
	Create(ctx context.Context, entry *model.FileEntry, maxDepth int) error
	// Delete удаляет одну запись владельца.
	Delete(ctx context.Context, userID, id string) error
	// DeleteTrashed удаляет одним запросом все записи владельца из корзины.
	DeleteTrashed(ctx context.Context, userID string) (int64, error)
	SetStarred(ctx context.Context, userID, id string, starred bool) (*model.FileEntry, error)
	// SetTrashed меняет флаг корзины у записи и всех её потомков.
	SetTrashed(ctx context.Context, userID, id string, trashed bool) (*model.FileEntry, error)
	// Move переносит запись в другую папку (nil — в корень).
	Move(ctx context.Context, userID, id string, parentID *string, maxDepth int) (*model.FileEntry, error)
}

type fileRepo struct {
	db *gorm.DB
}

// NewFileRepository создаёт реализацию репозитория для FileEntry.
func NewFileRepository(db *gorm.DB) FileRepository {
	return &fileRepo{db: db}
}

func (r *fileRepo) ListByParent(ctx context.Context, userID string, parentID *string) ([]model.FileEntry, error) {
	q := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if parentID == nil {
		q = q.Where("parent_id IS NULL")
	} else {
		q = q.Where("parent_id = ?", *parentID)
	}
	var out []model.FileEntry
	if err := q.Order("is_folder DESC").Order("name ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *fileRepo) ListTrashed(ctx context.Context, userID string) ([]model.FileEntry, error) {
	var out []model.FileEntry
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND is_trash = ?", userID, true).
		Order("updated_at DESC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *fileRepo) GetByID(ctx context.Context, userID, id string) (*model.FileEntry, error) {
	return getOwned(r.db.WithContext(ctx), userID, id)
}

func (r *fileRepo) Create(ctx context.Context, entry *model.FileEntry, maxDepth int) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if entry.ParentID != nil {
			parent, err := usableFolder(tx, entry.UserID, *entry.ParentID)
			if err != nil {
				return err
			}
			depth, err := depthOf(tx, entry.UserID, parent, limitOrDefault(maxDepth))
			if err != nil {
				return err
			}
			if depth >= limitOrDefault(maxDepth) {
				return ErrTooDeep
			}
		}
		return tx.Create(entry).Error
	})
	return mapForeignKey(err)
}

func (r *fileRepo) Delete(ctx context.Context, userID, id string) error {
	return r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&model.FileEntry{}).Error
}

func (r *fileRepo) DeleteTrashed(ctx context.Context, userID string) (int64, error) {
	tx := r.db.WithContext(ctx).
		Where("user_id = ? AND is_trash = ?", userID, true).
		Delete(&model.FileEntry{})
	if tx.Error != nil {
		return 0, tx.Error
	}
	return tx.RowsAffected, nil
}

func (r *fileRepo) SetStarred(ctx context.Context, userID, id string, starred bool) (*model.FileEntry, error) {
	var out *model.FileEntry
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.FileEntry{}).
			Where("id = ? AND user_id = ?", id, userID).
			Update("is_starred", starred)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		e, err := getOwned(tx, userID, id)
		out = e
		return err
	})
	return out, err
}

func (r *fileRepo) SetTrashed(ctx context.Context, userID, id string, trashed bool) (*model.FileEntry, error) {
	var out *model.FileEntry
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		entry, err := getOwned(tx, userID, id)
		if err != nil {
			return err
		}
		ids := []string{entry.ID}
		if entry.IsFolder {
			desc, err := descendantIDs(tx, userID, entry.ID)
			if err != nil {
				return err
			}
			ids = append(ids, desc...)
		}
		if err := tx.Model(&model.FileEntry{}).
			Where("user_id = ? AND id IN ?", userID, ids).
			Update("is_trash", trashed).Error; err != nil {
			return err
		}

		// восстановленная запись не может остаться в папке, которая всё ещё в корзине
		if !trashed && entry.ParentID != nil {
			if _, err := usableFolder(tx, userID, *entry.ParentID); errors.Is(err, ErrParentNotFound) {
				if err := tx.Model(&model.FileEntry{}).
					Where("id = ? AND user_id = ?", entry.ID, userID).
					Update("parent_id", nil).Error; err != nil {
					return err
				}
			} else if err != nil {
				return err
			}
		}

		out, err = getOwned(tx, userID, id)
		return err
	})
	return out, err
}

func (r *fileRepo) Move(ctx context.Context, userID, id string, parentID *string, maxDepth int) (*model.FileEntry, error) {
	limit := limitOrDefault(maxDepth)
	var out *model.FileEntry
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		entry, err := getOwned(tx, userID, id)
		if err != nil {
			return err
		}
		if parentID != nil {
			if *parentID == entry.ID {
				return ErrCycle
			}
			target, err := usableFolder(tx, userID, *parentID)
			if err != nil {
				return err
			}
			// идём от новой папки вверх: встретить перемещаемую запись значит цикл
			cur := target
			targetDepth := 1
			for ; ; targetDepth++ {
				if targetDepth > limit {
					return ErrTooDeep
				}
				if cur.ID == entry.ID {
					return ErrCycle
				}
				if cur.ParentID == nil {
					break
				}
				next, err := getOwned(tx, userID, *cur.ParentID)
				if err != nil {
					return fmt.Errorf("walk ancestors of %s: %w", cur.ID, err)
				}
				cur = next
			}
			// самый глубокий потомок окажется на уровне targetDepth + 1 + below
			below := 0
			if entry.IsFolder {
				_, levels, err := descendantLevels(tx, userID, entry.ID)
				if err != nil {
					return err
				}
				below = levels
			}
			if targetDepth+1+below > limit {
				return ErrTooDeep
			}
		}
		if err := tx.Model(&model.FileEntry{}).
			Where("id = ? AND user_id = ?", id, userID).
			Update("parent_id", parentID).Error; err != nil {
			return err
		}
		out, err = getOwned(tx, userID, id)
		return err
	})
	return out, mapForeignKey(err)
}

func getOwned(db *gorm.DB, userID, id string) (*model.FileEntry, error) {
	var e model.FileEntry
	if err := db.Where("id = ? AND user_id = ?", id, userID).First(&e).Error; err != nil {
		return nil, err
	}
	return &e, nil
}

// usableFolder возвращает папку владельца, в которую можно класть записи.
func usableFolder(db *gorm.DB, userID, id string) (*model.FileEntry, error) {
	f, err := getOwned(db, userID, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrParentNotFound
	}
	if err != nil {
		return nil, err
	}
	if !f.IsFolder || f.IsTrash {
		return nil, ErrParentNotFound
	}
	return f, nil
}

// depthOf считает число уровней от корня до папки включительно.
func depthOf(db *gorm.DB, userID string, folder *model.FileEntry, limit int) (int, error) {
	depth := 1
	cur := folder
	for cur.ParentID != nil {
		if depth > limit {
			return depth, ErrTooDeep
		}
		next, err := getOwned(db, userID, *cur.ParentID)
		if err != nil {
			return 0, fmt.Errorf("walk ancestors of %s: %w", cur.ID, err)
		}
		cur = next
		depth++
	}
	return depth, nil
}

// descendantIDs обходит поддерево в ширину, уровень за уровнем.
func descendantIDs(db *gorm.DB, userID, rootID string) ([]string, error) {
	ids, _, err := descendantLevels(db, userID, rootID)
	return ids, err
}

// descendantLevels возвращает потомков и число уровней под rootID (0 у пустой папки).
func descendantLevels(db *gorm.DB, userID, rootID string) ([]string, int, error) {
	var out []string
	levels := 0
	seen := map[string]bool{rootID: true}
	frontier := []string{rootID}
	for len(frontier) > 0 {
		var children []string
		if err := db.Model(&model.FileEntry{}).
			Where("user_id = ? AND parent_id IN ?", userID, frontier).
			Pluck("id", &children).Error; err != nil {
			return nil, 0, err
		}
		frontier = frontier[:0]
		for _, c := range children {
			if seen[c] {
				continue
			}
			seen[c] = true
			out = append(out, c)
			frontier = append(frontier, c)
		}
		if len(frontier) > 0 {
			levels++
		}
	}
	return out, levels, nil
}

func limitOrDefault(maxDepth int) int {
	if maxDepth <= 0 {
		return DefaultMaxDepth
	}
	return maxDepth
}

// mapForeignKey превращает нарушение FK в Postgres (родителя удалили параллельно) в ErrParentNotFound.
func mapForeignKey(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
		return fmt.Errorf("%w: %s", ErrParentNotFound, pgErr.ConstraintName)
	}
	return err
}
