package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/vnkhanh/pathfinder-backend/models"
	"github.com/vnkhanh/pathfinder-backend/utils"
)

type SearchResult struct {
	ID   string `json:"id"`
	Type string `json:"type"` // class | category | resource | question
	Text string `json:"text"`
	Slug string `json:"slug,omitempty"`
}

type SearchResponse struct {
	Total   int64          `json:"total"`
	Page    int            `json:"page"`
	PerPage int            `json:"perPage"`
	Results []SearchResult `json:"results"`
}

type searchTarget struct {
	model  interface{}
	column string
	load   func(q *gorm.DB) ([]SearchResult, error)
}

var searchTargets = []searchTarget{
	{&models.Class{}, "name", func(q *gorm.DB) ([]SearchResult, error) {
		var rows []models.Class
		err := q.Order("name ASC").Find(&rows).Error
		out := make([]SearchResult, 0, len(rows))
		for _, r := range rows {
			out = append(out, SearchResult{ID: r.ID.String(), Type: "class", Text: r.Name, Slug: r.Slug})
		}
		return out, err
	}},
	{&models.Category{}, "name", func(q *gorm.DB) ([]SearchResult, error) {
		var rows []models.Category
		err := q.Order("name ASC").Find(&rows).Error
		out := make([]SearchResult, 0, len(rows))
		for _, r := range rows {
			out = append(out, SearchResult{ID: r.ID.String(), Type: "category", Text: r.Name, Slug: r.Slug})
		}
		return out, err
	}},
	{&models.Resource{}, "title", func(q *gorm.DB) ([]SearchResult, error) {
		var rows []models.Resource
		err := q.Order("title ASC").Find(&rows).Error
		out := make([]SearchResult, 0, len(rows))
		for _, r := range rows {
			out = append(out, SearchResult{ID: r.ID.String(), Type: "resource", Text: r.Title})
		}
		return out, err
	}},
	{&models.Question{}, "question", func(q *gorm.DB) ([]SearchResult, error) {
		var rows []models.Question
		err := q.Order("created_at ASC").Find(&rows).Error
		out := make([]SearchResult, 0, len(rows))
		for _, r := range rows {
			out = append(out, SearchResult{ID: r.ID.String(), Type: "question", Text: r.Question})
		}
		return out, err
	}},
}

func positiveQueryInt(c *gin.Context, key string, def, max int) int {
	if v, err := strconv.Atoi(c.Query(key)); err == nil && v > 0 {
		if v > max {
			return max
		}
		return v
	}
	return def
}

// Search tìm theo chuỗi con (không phân biệt hoa thường) trên class, category,
// resource và question. Phân trang áp dụng trên danh sách đã gộp.
func Search(c *gin.Context) {
	query := strings.TrimSpace(c.Query("query"))
	if query == "" {
		utils.RespondError(c, utils.NewValidationError("query is required"))
		return
	}
	page := positiveQueryInt(c, "page", 1, 1000)
	perPage := positiveQueryInt(c, "perPage", 10, 100)
	offset := (page - 1) * perPage
	pattern := "%" + escapeLike(strings.ToLower(query)) + "%"
	db := getDB(c)

	resp := SearchResponse{Page: page, PerPage: perPage, Results: []SearchResult{}}
	for _, target := range searchTargets {
		where := "LOWER(" + target.column + `) LIKE ? ESCAPE '\'`

		var count int64
		if err := db.Model(target.model).Where(where, pattern).Count(&count).Error; err != nil {
			utils.RespondError(c, errors.WithStack(err))
			return
		}
		skip := offset - int(resp.Total)
		resp.Total += count

		// chỉ tải phần của trang hiện tại
		remaining := perPage - len(resp.Results)
		if remaining <= 0 || skip >= int(count) {
			continue
		}
		if skip < 0 {
			skip = 0
		}
		rows, err := target.load(db.Where(where, pattern).Offset(skip).Limit(remaining))
		if err != nil {
			utils.RespondError(c, errors.WithStack(err))
			return
		}
		resp.Results = append(resp.Results, rows...)
	}

	c.JSON(http.StatusOK, resp)
}
