package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/amanahfoundation/charity-backend/models"
	"github.com/amanahfoundation/charity-backend/utils"
)

// ContentController menguruskan kandungan dwibahasa: projek amal dan
// artikel blog.
type ContentController struct {
	DB *gorm.DB
}

// NewContentController membuat instance baru ContentController
func NewContentController(db *gorm.DB) *ContentController {
	return &ContentController{DB: db}
}

// localizedView memilih bahasa mengikut ?lang= dengan fallback ke sisi
// yang berisi.
func pickLang(c *gin.Context) string {
	if c.Query("lang") == models.LangMalay {
		return models.LangMalay
	}
	return models.LangEnglish
}

// ---------------- PROJEK ----------------

// ListProjects senarai projek yang published untuk laman awam.
func (cc *ContentController) ListProjects(c *gin.Context) {
	var projects []models.Project
	if err := cc.DB.Where("published = ?", true).Order("created_at DESC").Find(&projects).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	lang := pickLang(c)
	views := make([]gin.H, 0, len(projects))
	for _, p := range projects {
		views = append(views, gin.H{
			"id":               p.ID,
			"slug":             p.Slug,
			"title":            p.Title.Get(lang),
			"description":      p.Description.Get(lang),
			"target_amount":    p.TargetAmount,
			"collected_amount": p.CollectedAmount,
			"image_url":        p.ImageURL,
		})
	}
	utils.RespondJSON(c, http.StatusOK, "OK", views)
}

// GetProjectBySlug detail satu projek published.
func (cc *ContentController) GetProjectBySlug(c *gin.Context) {
	var project models.Project
	err := cc.DB.Where("slug = ? AND published = ?", c.Param("slug"), true).First(&project).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondError(c, http.StatusNotFound, errors.New("project not found"))
			return
		}
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	lang := pickLang(c)
	utils.RespondJSON(c, http.StatusOK, "OK", gin.H{
		"id":               project.ID,
		"slug":             project.Slug,
		"title":            project.Title.Get(lang),
		"description":      project.Description.Get(lang),
		"target_amount":    project.TargetAmount,
		"collected_amount": project.CollectedAmount,
		"image_url":        project.ImageURL,
	})
}

// CreateProject admin menambah projek baru. Sekurang-kurangnya satu bahasa
// mesti diisi pada tajuk.
func (cc *ContentController) CreateProject(c *gin.Context) {
	var project models.Project
	if err := c.ShouldBindJSON(&project); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if project.Slug == "" || !project.Title.Valid() {
		utils.RespondError(c, http.StatusBadRequest,
			errors.New("slug and at least one title language are required"))
		return
	}

	if err := cc.DB.Create(&project).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Project created", project)
}

// UpdateProject admin mengemaskini projek sedia ada.
func (cc *ContentController) UpdateProject(c *gin.Context) {
	var project models.Project
	if err := cc.DB.Where("slug = ?", c.Param("slug")).First(&project).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("project not found"))
		return
	}

	var input models.Project
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if !input.Title.Valid() {
		utils.RespondError(c, http.StatusBadRequest,
			errors.New("at least one title language is required"))
		return
	}

	project.Title = input.Title
	project.Description = input.Description
	project.TargetAmount = input.TargetAmount
	project.ImageURL = input.ImageURL
	project.Published = input.Published

	if err := cc.DB.Save(&project).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Project updated", project)
}

// ---------------- BLOG ----------------

// ListPosts senarai artikel published untuk laman awam.
func (cc *ContentController) ListPosts(c *gin.Context) {
	var posts []models.Post
	now := time.Now()
	err := cc.DB.Where("published_at IS NOT NULL AND published_at <= ?", now).
		Order("published_at DESC").Find(&posts).Error
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	lang := pickLang(c)
	views := make([]gin.H, 0, len(posts))
	for _, p := range posts {
		views = append(views, gin.H{
			"id":           p.ID,
			"slug":         p.Slug,
			"title":        p.Title.Get(lang),
			"cover_url":    p.CoverURL,
			"published_at": p.PublishedAt,
		})
	}
	utils.RespondJSON(c, http.StatusOK, "OK", views)
}

// GetPostBySlug detail satu artikel published.
func (cc *ContentController) GetPostBySlug(c *gin.Context) {
	var post models.Post
	if err := cc.DB.Where("slug = ?", c.Param("slug")).First(&post).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("post not found"))
		return
	}
	if !post.IsPublished(time.Now()) {
		utils.RespondError(c, http.StatusNotFound, errors.New("post not found"))
		return
	}

	lang := pickLang(c)
	utils.RespondJSON(c, http.StatusOK, "OK", gin.H{
		"id":           post.ID,
		"slug":         post.Slug,
		"title":        post.Title.Get(lang),
		"body":         post.Body.Get(lang),
		"cover_url":    post.CoverURL,
		"published_at": post.PublishedAt,
	})
}

// CreatePost admin menambah artikel baru.
func (cc *ContentController) CreatePost(c *gin.Context) {
	var post models.Post
	if err := c.ShouldBindJSON(&post); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if post.Slug == "" || !post.Title.Valid() {
		utils.RespondError(c, http.StatusBadRequest,
			errors.New("slug and at least one title language are required"))
		return
	}

	if err := cc.DB.Create(&post).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Post created", post)
}

// UpdatePost admin mengemaskini artikel sedia ada.
func (cc *ContentController) UpdatePost(c *gin.Context) {
	var post models.Post
	if err := cc.DB.Where("slug = ?", c.Param("slug")).First(&post).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("post not found"))
		return
	}

	var input models.Post
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if !input.Title.Valid() {
		utils.RespondError(c, http.StatusBadRequest,
			errors.New("at least one title language is required"))
		return
	}

	post.Title = input.Title
	post.Body = input.Body
	post.CoverURL = input.CoverURL
	post.PublishedAt = input.PublishedAt

	if err := cc.DB.Save(&post).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Post updated", post)
}
