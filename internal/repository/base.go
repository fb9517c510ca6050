// Package repository provides data access and read-model composition for the application.
package repository

import (
	"strings"

	"vidtube/internal/database"
	"vidtube/internal/models"

	"gorm.io/gorm"
)

const summaryColumns = "id, username, full_name, avatar, created_at, updated_at"

func readDB(primary *gorm.DB) *gorm.DB {
	if db := database.GetReadDB(); db != nil {
		return db
	}
	return primary
}

func offset(page, limit int) int {
	if page < 1 {
		page = 1
	}
	return (page - 1) * limit
}

func totalPages(total int64, limit int) int {
	if limit <= 0 || total == 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}

// containsPattern builds a case-insensitive LIKE pattern with wildcards escaped.
func containsPattern(query string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.ToLower(query)) + "%"
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// userSummaries loads the public projection of every listed user in one query.
func userSummaries(db *gorm.DB, ids []uint) (map[uint]models.UserSummary, error) {
	out := make(map[uint]models.UserSummary, len(ids))
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return out, nil
	}
	var rows []models.UserSummary
	if err := db.Select(summaryColumns).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.ID] = row
	}
	return out, nil
}

type targetCount struct {
	TargetID uint
	Total    int64
}

// likeCounts returns the number of likes per target id.
func likeCounts(db *gorm.DB, target models.LikeTarget, ids []uint) (map[uint]int64, error) {
	out := make(map[uint]int64, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []targetCount
	if err := db.Model(&models.Like{}).
		Select("target_id, COUNT(*) AS total").
		Where("target_type = ? AND target_id IN ?", target, ids).
		Group("target_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.TargetID] = row.Total
	}
	return out, nil
}

// likedTargets returns the subset of ids liked by userID.
func likedTargets(db *gorm.DB, userID uint, target models.LikeTarget, ids []uint) (map[uint]bool, error) {
	out := make(map[uint]bool, len(ids))
	if userID == 0 || len(ids) == 0 {
		return out, nil
	}
	var liked []uint
	if err := db.Model(&models.Like{}).
		Where("liked_by_id = ? AND target_type = ? AND target_id IN ?", userID, target, ids).
		Pluck("target_id", &liked).Error; err != nil {
		return nil, err
	}
	for _, id := range liked {
		out[id] = true
	}
	return out, nil
}

type videoCount struct {
	VideoID uint
	Total   int64
}

func commentCounts(db *gorm.DB, videoIDs []uint) (map[uint]int64, error) {
	out := make(map[uint]int64, len(videoIDs))
	if len(videoIDs) == 0 {
		return out, nil
	}
	var rows []videoCount
	if err := db.Model(&models.Comment{}).
		Select("video_id, COUNT(*) AS total").
		Where("video_id IN ?", videoIDs).
		Group("video_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.VideoID] = row.Total
	}
	return out, nil
}

// feedItems attaches owner summaries to videos, preserving order.
func feedItems(db *gorm.DB, videos []models.Video) ([]models.VideoFeedItem, error) {
	ownerIDs := make([]uint, 0, len(videos))
	for _, v := range videos {
		ownerIDs = append(ownerIDs, v.OwnerID)
	}
	owners, err := userSummaries(db, ownerIDs)
	if err != nil {
		return nil, err
	}
	items := make([]models.VideoFeedItem, 0, len(videos))
	for _, v := range videos {
		items = append(items, models.VideoFeedItem{Video: v, Owner: owners[v.OwnerID]})
	}
	return items, nil
}
