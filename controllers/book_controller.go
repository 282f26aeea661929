// controllers/book_controller.go
package controllers

import (
	"net/http"
	"strings"

	"Gin_postgres_library_management/app"
	"Gin_postgres_library_management/db"
	"Gin_postgres_library_management/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type BookController struct{ *Srv }

func NewBookController(s *Srv) *BookController { return &BookController{Srv: s} }

// GET /api/books?search=&category=&available=true
func (bc *BookController) ListBooks(c *gin.Context) {
	q := db.BookQuery{
		Search:        c.Query("search"),
		CategoryID:    c.Query("category"),
		AvailableOnly: c.Query("available") == "true",
	}
	books, err := bc.Repo.ListBooks(c.Request.Context(), q)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"books": books})
}

// GET /api/books/:id
func (bc *BookController) GetBook(c *gin.Context) {
	b, err := bc.Repo.FindBookByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	if !b.IsActive {
		// soft-deleted books stay out of the public catalog
		c.JSON(http.StatusNotFound, app.H{"error": "book not found"})
		return
	}
	c.JSON(http.StatusOK, app.H{"book": b})
}

// POST /api/books （管理员）
func (bc *BookController) CreateBook(c *gin.Context) {
	var in struct {
		ISBN            string  `json:"isbn" binding:"required"`
		Title           string  `json:"title" binding:"required"`
		Author          string  `json:"author" binding:"required"`
		CategoryID      *string `json:"categoryId"`
		TotalCopies     int     `json:"totalCopies"`
		PublicationYear *int    `json:"publicationYear"`
		Description     string  `json:"description"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	if !db.ValidISBN(in.ISBN) {
		c.JSON(http.StatusBadRequest, app.H{"error": "invalid ISBN format (must be 13 digits)"})
		return
	}
	if in.TotalCopies <= 0 {
		in.TotalCopies = 1
	}

	b := &models.Book{
		ID:              uuid.NewString(),
		ISBN:            strings.NewReplacer("-", "", " ", "").Replace(in.ISBN),
		Title:           in.Title,
		Author:          in.Author,
		CategoryID:      in.CategoryID,
		TotalCopies:     in.TotalCopies,
		AvailableCopies: in.TotalCopies,
		PublicationYear: in.PublicationYear,
		Description:     in.Description,
		IsActive:        true,
	}
	if err := bc.Repo.CreateBook(c.Request.Context(), b); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, app.H{"book": b})
}

// PUT /api/books/:id （管理员）
func (bc *BookController) UpdateBook(c *gin.Context) {
	var in struct {
		Title           *string `json:"title"`
		Author          *string `json:"author"`
		CategoryID      *string `json:"categoryId"`
		TotalCopies     *int    `json:"totalCopies"`
		PublicationYear *int    `json:"publicationYear"`
		Description     *string `json:"description"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	b, err := bc.Repo.UpdateBook(c.Request.Context(), c.Param("id"), db.BookUpdate{
		Title:           in.Title,
		Author:          in.Author,
		CategoryID:      in.CategoryID,
		TotalCopies:     in.TotalCopies,
		PublicationYear: in.PublicationYear,
		Description:     in.Description,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"book": b})
}

// DELETE /api/books/:id （管理员，软删除）
func (bc *BookController) DeleteBook(c *gin.Context) {
	if err := bc.Repo.SoftDeleteBook(c.Request.Context(), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"ok": true})
}

// ------------------------------
// Categories
// ------------------------------

// GET /api/books/categories
func (bc *BookController) ListCategories(c *gin.Context) {
	cs, err := bc.Repo.ListCategories(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"categories": cs})
}

// POST /api/books/categories （管理员）
func (bc *BookController) CreateCategory(c *gin.Context) {
	var in struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		c.JSON(http.StatusBadRequest, app.H{"error": "category name is required"})
		return
	}
	cat := &models.Category{ID: uuid.NewString(), Name: name}
	if err := bc.Repo.CreateCategory(c.Request.Context(), cat); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, app.H{"category": cat})
}

// PUT /api/books/categories/:id （管理员）
func (bc *BookController) RenameCategory(c *gin.Context) {
	var in struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	cat, err := bc.Repo.RenameCategory(c.Request.Context(), c.Param("id"), strings.TrimSpace(in.Name))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"category": cat})
}

// DELETE /api/books/categories/:id （管理员）
func (bc *BookController) DeleteCategory(c *gin.Context) {
	if err := bc.Repo.DeleteCategory(c.Request.Context(), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"ok": true})
}
