package model

import "time"

// Entry: файл или папка в том виде, в каком их отдаёт сервер.
type Entry struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Path         string    `json:"path"`
	Size         int64     `json:"size"`
	Type         string    `json:"type"`
	FileURL      string    `json:"fileUrl"`
	ThumbnailURL *string   `json:"thumbnailUrl"`
	UserID       string    `json:"userId"`
	ParentID     *string   `json:"parentId"`
	IsFolder     bool      `json:"isFolder"`
	IsStarred    bool      `json:"isStarred"`
	IsTrash      bool      `json:"isTrash"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// TrashResult: ответ на очистку корзины.
type TrashResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Deleted int64  `json:"deleted"`
	Blobs   struct {
		Succeeded int `json:"succeeded"`
		Failed    int `json:"failed"`
		Skipped   int `json:"skipped"`
	} `json:"blobs"`
}
