package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"github.com/vnkhanh/pathfinder-backend/models"
	"github.com/vnkhanh/pathfinder-backend/utils"
)

type ClassInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func AddClass(c *gin.Context) {
	var input ClassInput
	if !bindJSON(c, &input) {
		return
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		utils.RespondError(c, utils.NewValidationError("Class name is required"))
		return
	}
	db := getDB(c)

	var count int64
	if err := db.Model(&models.Class{}).Where("name = ?", name).Count(&count).Error; err != nil {
		utils.RespondError(c, errors.WithStack(err))
		return
	}
	if count > 0 {
		utils.RespondError(c, utils.NewConflictError("Class already exists"))
		return
	}

	class := models.Class{
		Name:        name,
		Slug:        GenerateSlug(name),
		Description: strings.TrimSpace(input.Description),
	}
	if err := db.Create(&class).Error; err != nil {
		utils.RespondError(c, duplicateOr(err, "Class already exists"))
		return
	}
	c.JSON(http.StatusCreated, class)
}

func GetClasses(c *gin.Context) {
	classes := []models.Class{}
	if err := getDB(c).Order("name ASC").Find(&classes).Error; err != nil {
		utils.RespondError(c, errors.WithStack(err))
		return
	}
	c.JSON(http.StatusOK, classes)
}

func GetClassByID(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var class models.Class
	if err := findOr404(getDB(c), &class, id, "Class not found"); err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, class)
}

func UpdateClass(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var input ClassInput
	if !bindJSON(c, &input) {
		return
	}
	db := getDB(c)

	var class models.Class
	if err := findOr404(db, &class, id, "Class not found"); err != nil {
		utils.RespondError(c, err)
		return
	}

	updates := map[string]interface{}{}
	if name := strings.TrimSpace(input.Name); name != "" && name != class.Name {
		var count int64
		if err := db.Model(&models.Class{}).Where("name = ? AND id <> ?", name, id).Count(&count).Error; err != nil {
			utils.RespondError(c, errors.WithStack(err))
			return
		}
		if count > 0 {
			utils.RespondError(c, utils.NewConflictError("Class already exists"))
			return
		}
		updates["name"] = name
		updates["slug"] = GenerateSlug(name)
	}
	if desc := strings.TrimSpace(input.Description); desc != "" {
		updates["description"] = desc
	}

	if len(updates) > 0 {
		if err := db.Model(&class).Updates(updates).Error; err != nil {
			utils.RespondError(c, duplicateOr(err, "Class already exists"))
			return
		}
		if err := db.First(&class, "id = ?", id).Error; err != nil {
			utils.RespondError(c, errors.WithStack(err))
			return
		}
	}
	c.JSON(http.StatusOK, class)
}

func DeleteClass(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	res := getDB(c).Delete(&models.Class{}, "id = ?", id)
	if res.Error != nil {
		utils.RespondError(c, errors.WithStack(res.Error))
		return
	}
	if res.RowsAffected == 0 {
		utils.RespondError(c, utils.NewNotFoundError("Class not found"))
		return
	}
	c.Status(http.StatusNoContent)
}
