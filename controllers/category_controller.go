package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"github.com/vnkhanh/pathfinder-backend/models"
	"github.com/vnkhanh/pathfinder-backend/utils"
)

type CategoryInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// AddCategory tạo category trong class; tên chỉ cần duy nhất trong class đó.
func AddCategory(c *gin.Context) {
	classID, ok := parseUUIDParam(c, "classId")
	if !ok {
		return
	}
	var input CategoryInput
	if !bindJSON(c, &input) {
		return
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		utils.RespondError(c, utils.NewValidationError("Category name is required"))
		return
	}
	db := getDB(c)

	var class models.Class
	if err := findOr404(db, &class, classID, "Class not found"); err != nil {
		utils.RespondError(c, err)
		return
	}

	var count int64
	if err := db.Model(&models.Category{}).Where("name = ? AND class_id = ?", name, classID).Count(&count).Error; err != nil {
		utils.RespondError(c, errors.WithStack(err))
		return
	}
	if count > 0 {
		utils.RespondError(c, utils.NewConflictError("Category already exists in this class"))
		return
	}

	category := models.Category{
		Name:        name,
		Slug:        GenerateSlug(name),
		Description: strings.TrimSpace(input.Description),
		ClassID:     classID,
	}
	if err := db.Create(&category).Error; err != nil {
		utils.RespondError(c, duplicateOr(err, "Category already exists in this class"))
		return
	}
	c.JSON(http.StatusCreated, category)
}

func GetCategoryByID(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var category models.Category
	if err := findOr404(getDB(c), &category, id, "Category not found"); err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, category)
}

func GetCategoriesByClass(c *gin.Context) {
	classID, ok := parseUUIDParam(c, "classId")
	if !ok {
		return
	}
	db := getDB(c)

	var class models.Class
	if err := findOr404(db, &class, classID, "Class not found"); err != nil {
		utils.RespondError(c, err)
		return
	}

	categories := []models.Category{}
	if err := db.Where("class_id = ?", classID).Order("name ASC").Find(&categories).Error; err != nil {
		utils.RespondError(c, errors.WithStack(err))
		return
	}
	c.JSON(http.StatusOK, categories)
}

func UpdateCategory(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var input CategoryInput
	if !bindJSON(c, &input) {
		return
	}
	db := getDB(c)

	var category models.Category
	if err := findOr404(db, &category, id, "Category not found"); err != nil {
		utils.RespondError(c, err)
		return
	}

	updates := map[string]interface{}{}
	if name := strings.TrimSpace(input.Name); name != "" && name != category.Name {
		var count int64
		err := db.Model(&models.Category{}).
			Where("name = ? AND class_id = ? AND id <> ?", name, category.ClassID, id).
			Count(&count).Error
		if err != nil {
			utils.RespondError(c, errors.WithStack(err))
			return
		}
		if count > 0 {
			utils.RespondError(c, utils.NewConflictError("Category already exists in this class"))
			return
		}
		updates["name"] = name
		updates["slug"] = GenerateSlug(name)
	}
	if desc := strings.TrimSpace(input.Description); desc != "" {
		updates["description"] = desc
	}

	if len(updates) > 0 {
		if err := db.Model(&category).Updates(updates).Error; err != nil {
			utils.RespondError(c, duplicateOr(err, "Category already exists in this class"))
			return
		}
		if err := db.First(&category, "id = ?", id).Error; err != nil {
			utils.RespondError(c, errors.WithStack(err))
			return
		}
	}
	c.JSON(http.StatusOK, category)
}

func DeleteCategory(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	res := getDB(c).Delete(&models.Category{}, "id = ?", id)
	if res.Error != nil {
		utils.RespondError(c, errors.WithStack(res.Error))
		return
	}
	if res.RowsAffected == 0 {
		utils.RespondError(c, utils.NewNotFoundError("Category not found"))
		return
	}
	c.Status(http.StatusNoContent)
}
