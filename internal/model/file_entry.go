package model

import "time"

// FolderType: значение поля Type у папок.
const FolderType = "folder"

// FileEntry: серверная модель записи файла или папки.
// Папки и файлы живут в одной таблице и различаются флагом IsFolder.
type FileEntry struct {
	ID   string `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Name string `gorm:"not null" json:"name"`
	Path string `gorm:"not null" json:"path"`
	Size int64  `gorm:"not null;default:0" json:"size"`
	Type string `gorm:"not null" json:"type"`

	FileURL      string  `json:"fileUrl"`
	ThumbnailURL *string `json:"thumbnailUrl"`

	// Владелец задаётся при создании и больше не меняется.
	UserID string `gorm:"type:varchar(36);not null;index:idx_file_entries_owner_parent,priority:1" json:"userId"`

	// nil: корневой уровень
	ParentID *string    `gorm:"type:varchar(36);index:idx_file_entries_owner_parent,priority:2" json:"parentId"`
	Parent   *FileEntry `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`

	IsFolder  bool `gorm:"not null;default:false" json:"isFolder"`
	IsStarred bool `gorm:"not null;default:false" json:"isStarred"`
	IsTrash   bool `gorm:"not null;default:false;index" json:"isTrash"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}
