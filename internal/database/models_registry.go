package database

import "vidtube/internal/models"

// PersistentModels returns the authoritative set of schema-managed GORM models.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Video{},
		&models.Comment{},
		&models.Tweet{},
		&models.Like{},
		&models.Subscription{},
		&models.Playlist{},
		&models.PlaylistVideo{},
		&models.WatchHistory{},
	}
}
