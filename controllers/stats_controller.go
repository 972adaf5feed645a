package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/vnkhanh/pathfinder-backend/models"
	"github.com/vnkhanh/pathfinder-backend/utils"
)

type (
	Point struct {
		Date  string `json:"date"`
		Count int64  `json:"count"`
	}

	TopResource struct {
		ID    uuid.UUID `json:"id"`
		Title string    `json:"title"`
		Likes int       `json:"likes"`
	}

	DifficultyStat struct {
		Difficulty models.Difficulty `json:"difficulty"`
		Quizzes    int64             `json:"quizzes"`
		AvgScore   float64           `json:"avgScore"`
	}

	DashboardOverview struct {
		TotalUsers     int64         `json:"totalUsers"`
		NewUsers30d    int64         `json:"newUsers30d"`
		TotalClasses   int64         `json:"totalClasses"`
		TotalQuestions int64         `json:"totalQuestions"`
		TotalResources int64         `json:"totalResources"`
		Quizzes30d     int64         `json:"quizzes30d"`
		AvgScore       float64       `json:"avgScore"`
		TopResources   []TopResource `json:"topResources"`
	}
)

func GetDashboardOverview(c *gin.Context) {
	db := getDB(c)
	since := time.Now().AddDate(0, 0, -30)

	var out DashboardOverview
	counts := []struct {
		model interface{}
		dest  *int64
		where string
	}{
		{&models.User{}, &out.TotalUsers, ""},
		{&models.User{}, &out.NewUsers30d, "created_at >= ?"},
		{&models.Class{}, &out.TotalClasses, ""},
		{&models.Question{}, &out.TotalQuestions, ""},
		{&models.Resource{}, &out.TotalResources, ""},
		{&models.HistoryRecord{}, &out.Quizzes30d, "created_at >= ?"},
	}
	for _, q := range counts {
		query := db.Model(q.model)
		if q.where != "" {
			query = query.Where(q.where, since)
		}
		if err := query.Count(q.dest).Error; err != nil {
			utils.RespondError(c, errors.WithStack(err))
			return
		}
	}

	if err := db.Model(&models.HistoryRecord{}).
		Select("COALESCE(AVG(score), 0)").
		Scan(&out.AvgScore).Error; err != nil {
		utils.RespondError(c, errors.WithStack(err))
		return
	}

	out.TopResources = []TopResource{}
	if err := db.Model(&models.Resource{}).
		Select("id, title, likes").
		Order("likes DESC, title ASC").
		Limit(5).
		Scan(&out.TopResources).Error; err != nil {
		utils.RespondError(c, errors.WithStack(err))
		return
	}

	c.JSON(http.StatusOK, out)
}

// GetDifficultyBreakdown: số lượt quiz và điểm trung bình theo độ khó.
func GetDifficultyBreakdown(c *gin.Context) {
	out := []DifficultyStat{}
	if err := getDB(c).Model(&models.HistoryRecord{}).
		Select("difficulty, COUNT(*) AS quizzes, AVG(score) AS avg_score").
		Group("difficulty").
		Order("difficulty").
		Scan(&out).Error; err != nil {
		utils.RespondError(c, errors.WithStack(err))
		return
	}
	c.JSON(http.StatusOK, out)
}

// ===================== Lượt quiz theo ngày =====================
func GetDailyQuizzes(c *gin.Context) {
	days, err := strconv.Atoi(c.DefaultQuery("days", "7"))
	if err != nil || days < 1 || days > 366 {
		utils.RespondError(c, utils.NewValidationError("days must be between 1 and 366"))
		return
	}

	today := time.Now().UTC().Truncate(24 * time.Hour)
	from := today.AddDate(0, 0, -(days - 1))

	var stamps []time.Time
	if err := getDB(c).Model(&models.HistoryRecord{}).
		Where("created_at >= ?", from).
		Pluck("created_at", &stamps).Error; err != nil {
		utils.RespondError(c, errors.WithStack(err))
		return
	}

	// gom theo ngày (UTC) ở phía Go để chạy được trên mọi driver
	buckets := make(map[string]int64, days)
	for _, ts := range stamps {
		buckets[ts.UTC().Format("2006-01-02")]++
	}
	res := make([]Point, 0, days)
	for d := from; !d.After(today); d = d.AddDate(0, 0, 1) {
		key := d.Format("2006-01-02")
		res = append(res, Point{Date: key, Count: buckets[key]})
	}
	c.JSON(http.StatusOK, res)
}
