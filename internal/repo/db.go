package repo

import (
	"GophBox/internal/model"
	"fmt"
	"strings"

	"gorm.io/driver/postgres"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	_ "modernc.org/sqlite"
)

const defaultSQLiteDSN = "file:gophbox.db?_pragma=foreign_keys(1)"

// InitDB открывает БД по строке подключения и прогоняет миграции.
// Пустая строка или префикс "sqlite:" — SQLite (modernc), иначе — Postgres.
func InitDB(dsn string) (*gorm.DB, error) {
	dial, err := dialectorFor(dsn)
	if err != nil {
		return nil, err
	}
	db, err := gorm.Open(dial, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate создаёт/обновляет таблицы всех серверных моделей.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&model.User{}, &model.FileEntry{}); err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}
	return nil
}

func dialectorFor(dsn string) (gorm.Dialector, error) {
	switch {
	case dsn == "":
		return gormsqlite.Dialector{DriverName: "sqlite", DSN: defaultSQLiteDSN}, nil
	case strings.HasPrefix(dsn, "sqlite:"):
		return gormsqlite.Dialector{DriverName: "sqlite", DSN: strings.TrimPrefix(dsn, "sqlite:")}, nil
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"), strings.Contains(dsn, "host="):
		return postgres.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported database dsn %q", dsn)
	}
}
