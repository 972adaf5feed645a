package controllers

import (
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/vnkhanh/pathfinder-backend/models"
	"github.com/vnkhanh/pathfinder-backend/services"
	"github.com/vnkhanh/pathfinder-backend/utils"
)

type ResourceInput struct {
	Title       string `json:"title" form:"title"`
	Description string `json:"description" form:"description"`
	Content     string `json:"content" form:"content"`
	ClassID     string `json:"classId" form:"classId"`
	CategoryID  string `json:"categoryId" form:"categoryId"`
}

// resolveParents kiểm tra classId/categoryId (nếu có) tồn tại.
func resolveParents(db *gorm.DB, classRaw, categoryRaw string) (*uuid.UUID, *uuid.UUID, error) {
	var classID, categoryID *uuid.UUID

	if strings.TrimSpace(classRaw) != "" {
		id, err := parseUUIDField(classRaw, "classId")
		if err != nil {
			return nil, nil, err
		}
		var class models.Class
		if err := findOr404(db, &class, id, "Class not found"); err != nil {
			return nil, nil, err
		}
		classID = &id
	}
	if strings.TrimSpace(categoryRaw) != "" {
		id, err := parseUUIDField(categoryRaw, "categoryId")
		if err != nil {
			return nil, nil, err
		}
		var category models.Category
		if err := findOr404(db, &category, id, "Category not found"); err != nil {
			return nil, nil, err
		}
		if classID != nil && category.ClassID != *classID {
			return nil, nil, utils.NewValidationError("Category does not belong to class")
		}
		categoryID = &id
	}
	return classID, categoryID, nil
}

// fillLikedBy điền danh sách user đã like từ bảng resource_likes.
func fillLikedBy(db *gorm.DB, resources []models.Resource) error {
	if len(resources) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, len(resources))
	index := make(map[uuid.UUID]int, len(resources))
	for i := range resources {
		ids[i] = resources[i].ID
		index[resources[i].ID] = i
		resources[i].LikedBy = []uuid.UUID{}
	}

	var likes []models.ResourceLike
	if err := db.Where("resource_id IN ?", ids).Order("created_at ASC").Find(&likes).Error; err != nil {
		return errors.WithStack(err)
	}
	for _, l := range likes {
		i := index[l.ResourceID]
		resources[i].LikedBy = append(resources[i].LikedBy, l.UserID)
	}
	return nil
}

func respondResource(c *gin.Context, db *gorm.DB, status int, resource models.Resource) {
	list := []models.Resource{resource}
	if err := fillLikedBy(db, list); err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(status, list[0])
}

func respondResources(c *gin.Context, db *gorm.DB, query *gorm.DB) {
	resources := []models.Resource{}
	if err := query.Order("resources.created_at DESC").Find(&resources).Error; err != nil {
		utils.RespondError(c, errors.WithStack(err))
		return
	}
	if err := fillLikedBy(db, resources); err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resources)
}

func createResource(c *gin.Context, input ResourceInput) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		utils.RespondError(c, utils.NewValidationError("Resource title is required"))
		return
	}
	db := getDB(c)

	classID, categoryID, err := resolveParents(db, input.ClassID, input.CategoryID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	var count int64
	if err := db.Model(&models.Resource{}).Where("title = ?", title).Count(&count).Error; err != nil {
		utils.RespondError(c, errors.WithStack(err))
		return
	}
	if count > 0 {
		utils.RespondError(c, utils.NewConflictError("Resource already exists"))
		return
	}

	resource := models.Resource{
		Title:       title,
		Description: strings.TrimSpace(input.Description),
		Content:     input.Content,
		ClassID:     classID,
		CategoryID:  categoryID,
	}
	if err := db.Create(&resource).Error; err != nil {
		utils.RespondError(c, duplicateOr(err, "Resource already exists"))
		return
	}
	respondResource(c, db, http.StatusCreated, resource)
}

func AddResource(c *gin.Context) {
	var input ResourceInput
	if !bindJSON(c, &input) {
		return
	}
	createResource(c, input)
}

// ImportResource tạo resource từ file upload (pdf, docx, txt).
func ImportResource(c *gin.Context) {
	var input ResourceInput
	if err := c.ShouldBind(&input); err != nil {
		utils.RespondError(c, utils.NewValidationError("Invalid form data"))
		return
	}
	fileHeader, err := c.FormFile("file")
	if err != nil {
		utils.RespondError(c, utils.NewValidationError("file is required"))
		return
	}

	text, err := services.ExtractText(fileHeader)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	if text == "" {
		utils.RespondError(c, utils.NewValidationError("File has no readable text"))
		return
	}
	input.Content = text
	if strings.TrimSpace(input.Title) == "" {
		input.Title = strings.TrimSuffix(fileHeader.Filename, filepath.Ext(fileHeader.Filename))
	}
	createResource(c, input)
}

func GetResources(c *gin.Context) {
	db := getDB(c)
	respondResources(c, db, db.Model(&models.Resource{}))
}

func GetResourcesByClass(c *gin.Context) {
	classID, ok := parseUUIDParam(c, "classId")
	if !ok {
		return
	}
	db := getDB(c)
	respondResources(c, db, db.Where("class_id = ?", classID))
}

func GetResourcesByCategory(c *gin.Context) {
	categoryID, ok := parseUUIDParam(c, "categoryId")
	if !ok {
		return
	}
	db := getDB(c)
	respondResources(c, db, db.Where("category_id = ?", categoryID))
}

func GetResourceByID(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	db := getDB(c)

	var resource models.Resource
	if err := findOr404(db, &resource, id, "Resource not found"); err != nil {
		utils.RespondError(c, err)
		return
	}
	respondResource(c, db, http.StatusOK, resource)
}

func UpdateResource(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var input ResourceInput
	if !bindJSON(c, &input) {
		return
	}
	db := getDB(c)

	var resource models.Resource
	if err := findOr404(db, &resource, id, "Resource not found"); err != nil {
		utils.RespondError(c, err)
		return
	}

	updates := map[string]interface{}{}
	if title := strings.TrimSpace(input.Title); title != "" && title != resource.Title {
		var count int64
		if err := db.Model(&models.Resource{}).Where("title = ? AND id <> ?", title, id).Count(&count).Error; err != nil {
			utils.RespondError(c, errors.WithStack(err))
			return
		}
		if count > 0 {
			utils.RespondError(c, utils.NewConflictError("Resource already exists"))
			return
		}
		updates["title"] = title
	}
	if desc := strings.TrimSpace(input.Description); desc != "" {
		updates["description"] = desc
	}
	if input.Content != "" {
		updates["content"] = input.Content
	}
	classID, categoryID, err := resolveParents(db, input.ClassID, input.CategoryID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	if classID != nil {
		updates["class_id"] = *classID
	}
	if categoryID != nil {
		updates["category_id"] = *categoryID
	}

	if len(updates) > 0 {
		if err := db.Model(&resource).Updates(updates).Error; err != nil {
			utils.RespondError(c, duplicateOr(err, "Resource already exists"))
			return
		}
		if err := db.First(&resource, "id = ?", id).Error; err != nil {
			utils.RespondError(c, errors.WithStack(err))
			return
		}
	}
	respondResource(c, db, http.StatusOK, resource)
}

func DeleteResource(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var affected int64
	err := getDB(c).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("resource_id = ?", id).Delete(&models.ResourceLike{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Resource{}, "id = ?", id)
		affected = res.RowsAffected
		return res.Error
	})
	if err != nil {
		utils.RespondError(c, errors.WithStack(err))
		return
	}
	if affected == 0 {
		utils.RespondError(c, utils.NewNotFoundError("Resource not found"))
		return
	}
	c.Status(http.StatusNoContent)
}

// LikeResource: mỗi user chỉ được tính một lượt; counter tăng trong cùng transaction.
func LikeResource(c *gin.Context) {
	toggleLike(c, true)
}

func UnlikeResource(c *gin.Context) {
	toggleLike(c, false)
}

func toggleLike(c *gin.Context, like bool) {
	resourceID, ok := parseUUIDParam(c, "resourceId")
	if !ok {
		return
	}
	userID := currentUserID(c)
	db := getDB(c)

	var resource models.Resource
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := findOr404(tx, &resource, resourceID, "Resource not found"); err != nil {
			return err
		}

		var res *gorm.DB
		delta := "likes + ?"
		if like {
			res = tx.Clauses(clause.OnConflict{DoNothing: true}).
				Create(&models.ResourceLike{ResourceID: resourceID, UserID: userID})
		} else {
			res = tx.Where("resource_id = ? AND user_id = ?", resourceID, userID).Delete(&models.ResourceLike{})
			delta = "likes - ?"
		}
		if res.Error != nil {
			return errors.WithStack(res.Error)
		}
		if res.RowsAffected == 1 {
			if err := tx.Model(&models.Resource{}).
				Where("id = ?", resourceID).
				UpdateColumn("likes", gorm.Expr(delta, 1)).Error; err != nil {
				return errors.WithStack(err)
			}
		}
		return errors.WithStack(tx.First(&resource, "id = ?", resourceID).Error)
	})
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	respondResource(c, db, http.StatusOK, resource)
}

// GetLikedResources trả về các resource mà user đã like.
func GetLikedResources(c *gin.Context) {
	userID, ok := parseUUIDParam(c, "userId")
	if !ok {
		return
	}
	db := getDB(c)

	var user models.User
	if err := findOr404(db, &user, userID, "User not found"); err != nil {
		utils.RespondError(c, err)
		return
	}

	query := db.Model(&models.Resource{}).
		Joins("JOIN resource_likes ON resource_likes.resource_id = resources.id").
		Where("resource_likes.user_id = ?", userID)
	respondResources(c, db, query)
}
