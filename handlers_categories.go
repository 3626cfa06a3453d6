package main

import (
	"net/http"
	"strconv"
	"strings"

	"pfa/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type categoryOut struct {
	ID     uint   `json:"id"`
	Name   string `json:"name"`
	UserID *uint  `json:"user_id"`
}

// visibleCategories scopes a query to the user's own categories and, unless
// includeGlobal is false, the global ones.
func visibleCategories(tx *gorm.DB, userID uint, includeGlobal bool) *gorm.DB {
	if includeGlobal {
		return tx.Where("user_id = ? OR user_id IS NULL", userID)
	}
	return tx.Where("user_id = ?", userID)
}

func listCategoriesHandler(c *gin.Context) {
	uid := currentUserID(c)
	includeGlobal := true
	if v := c.Query("include_global"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "include_global must be a boolean"})
			return
		}
		includeGlobal = b
	}
	q := visibleCategories(db.Model(&models.Category{}), uid, includeGlobal)
	if term := strings.TrimSpace(c.Query("q")); term != "" {
		q = q.Where("name ILIKE ?", "%"+escapeLike(term)+"%")
	}
	var cats []models.Category
	if err := q.Order("name asc, id asc").Find(&cats).Error; err != nil {
		reqLogger(c).Error().Err(err).Msg("list categories failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	out := make([]categoryOut, 0, len(cats))
	for _, ct := range cats {
		out = append(out, categoryOut{ID: ct.ID, Name: ct.Name, UserID: ct.UserID})
	}
	c.JSON(http.StatusOK, out)
}

func createCategoryHandler(c *gin.Context) {
	uid := currentUserID(c)
	var req struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" || len(name) > 100 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name must be 1-100 characters"})
		return
	}
	var n int64
	db.Model(&models.Category{}).Where("user_id = ? AND name = ?", uid, name).Count(&n)
	if n > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "Category with this name already exists for the user."})
		return
	}
	ct := models.Category{UserID: &uid, Name: name}
	if err := db.Create(&ct).Error; err != nil {
		if isUniqueConstraintError(err) {
			c.JSON(http.StatusConflict, gin.H{"error": "Category with this name already exists for the user."})
			return
		}
		reqLogger(c).Error().Err(err).Msg("create category failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		return
	}
	c.JSON(http.StatusCreated, categoryOut{ID: ct.ID, Name: ct.Name, UserID: ct.UserID})
}

// escapeLike escapes LIKE wildcards in user input.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
