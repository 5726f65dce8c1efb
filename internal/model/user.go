package model

import "time"

// User: учётная запись, от имени которой выполняются все операции с файлами.
type User struct {
	ID       string `gorm:"primaryKey;type:varchar(36)"`
	Login    string `gorm:"uniqueIndex;not null"`
	Password string `gorm:"not null"` // bcrypt-хеш

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}
