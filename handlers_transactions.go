package main

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"pfa/models"
	"pfa/pkg/money"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// apiError carries an HTTP status with a client-facing message.
type apiError struct {
	Status int
	Msg    string
}

func (e *apiError) Error() string { return e.Msg }

func badRequest(msg string) *apiError { return &apiError{Status: http.StatusBadRequest, Msg: msg} }

type txnInput struct {
	Type        models.TxnType `json:"type"`
	Date        string         `json:"date"`
	CategoryID  *uint          `json:"category_id"`
	Description *string        `json:"description"`
	Amount      *string        `json:"amount"`
	AmountMinor *int64         `json:"amount_minor"`
}

type txnRowOut struct {
	ID          uint           `json:"id"`
	Date        string         `json:"date"`
	Type        models.TxnType `json:"type"`
	Category    *string        `json:"category"`
	Description *string        `json:"description"`
	Amount      string         `json:"amount"`
}

type txnOut struct {
	ID          uint           `json:"id"`
	Type        models.TxnType `json:"type"`
	Date        string         `json:"date"`
	CategoryID  *uint          `json:"category_id"`
	Description *string        `json:"description"`
	AmountMinor int64          `json:"amount_minor"`
	Amount      string         `json:"amount"`
	CreatedAt   time.Time      `json:"created_at"`
}

func toTxnOut(t models.Transaction) txnOut {
	return txnOut{
		ID:          t.ID,
		Type:        t.Type,
		Date:        t.Date.Format(time.DateOnly),
		CategoryID:  t.CategoryID,
		Description: t.Description,
		AmountMinor: t.AmountMinor,
		Amount:      money.FormatMinor(t.AmountMinor),
		CreatedAt:   t.CreatedAt,
	}
}

// buildTransaction validates everything that does not need the store.
func buildTransaction(userID uint, in txnInput) (models.Transaction, *apiError) {
	if !in.Type.Valid() {
		return models.Transaction{}, badRequest("type must be 'income' or 'expense'.")
	}
	date, err := time.Parse(time.DateOnly, strings.TrimSpace(in.Date))
	if err != nil {
		return models.Transaction{}, badRequest("date must be YYYY-MM-DD.")
	}
	if in.Amount == nil && in.AmountMinor == nil {
		return models.Transaction{}, badRequest("Provide either 'amount' (rupees) or 'amount_minor' (paise).")
	}
	if in.Amount != nil && in.AmountMinor != nil {
		return models.Transaction{}, badRequest("Provide only one of 'amount' or 'amount_minor', not both.")
	}
	var minor int64
	if in.AmountMinor != nil {
		minor = *in.AmountMinor
	} else {
		minor, err = money.ToMinor(*in.Amount)
		if err != nil {
			return models.Transaction{}, badRequest("Invalid 'amount' format. Use e.g. '123.45'.")
		}
	}
	if minor <= 0 {
		return models.Transaction{}, badRequest("'amount' must be > 0.")
	}
	t := models.Transaction{UserID: userID, Type: in.Type, Date: date, AmountMinor: minor}
	if in.Description != nil {
		if d := strings.TrimSpace(*in.Description); d != "" {
			t.Description = &d
		}
	}
	if in.Type == models.TxnExpense {
		if in.CategoryID == nil {
			return models.Transaction{}, badRequest("category_id is required for expense.")
		}
		cid := *in.CategoryID
		t.CategoryID = &cid
	}
	return t, nil
}

// checkCategory ensures an expense category is the user's own or global.
func checkCategory(tx *gorm.DB, t models.Transaction) *apiError {
	if t.CategoryID == nil {
		return nil
	}
	var n int64
	if err := visibleCategories(tx.Model(&models.Category{}), t.UserID, true).Where("id = ?", *t.CategoryID).Count(&n).Error; err != nil {
		return &apiError{Status: http.StatusInternalServerError, Msg: "category lookup failed"}
	}
	if n == 0 {
		return &apiError{Status: http.StatusNotFound, Msg: "Category not found for this user."}
	}
	return nil
}

func createTransactionHandler(c *gin.Context) {
	uid := currentUserID(c)
	var in txnInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	t, apiErr := buildTransaction(uid, in)
	if apiErr == nil {
		apiErr = checkCategory(db, t)
	}
	if apiErr != nil {
		c.JSON(apiErr.Status, gin.H{"error": apiErr.Msg})
		return
	}
	if err := db.Create(&t).Error; err != nil {
		reqLogger(c).Error().Err(err).Msg("create transaction failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		return
	}
	c.JSON(http.StatusCreated, toTxnOut(t))
}

const maxBulkItems = 500

// bulkCreateTransactionsHandler inserts every row or none.
func bulkCreateTransactionsHandler(c *gin.Context) {
	uid := currentUserID(c)
	var items []txnInput
	if err := c.ShouldBindJSON(&items); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if len(items) == 0 || len(items) > maxBulkItems {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("provide between 1 and %d items", maxBulkItems)})
		return
	}
	rows := make([]models.Transaction, 0, len(items))
	for i, in := range items {
		t, apiErr := buildTransaction(uid, in)
		if apiErr != nil {
			c.JSON(apiErr.Status, gin.H{"error": fmt.Sprintf("item %d: %s", i, apiErr.Msg), "index": i})
			return
		}
		rows = append(rows, t)
	}

	var failed *apiError
	failedAt := -1
	err := db.Transaction(func(tx *gorm.DB) error {
		for i := range rows {
			if apiErr := checkCategory(tx, rows[i]); apiErr != nil {
				failed, failedAt = apiErr, i
				return apiErr
			}
		}
		return tx.Create(&rows).Error
	})
	if err != nil {
		if failed != nil {
			c.JSON(failed.Status, gin.H{"error": fmt.Sprintf("item %d: %s", failedAt, failed.Msg), "index": failedAt})
			return
		}
		reqLogger(c).Error().Err(err).Int("items", len(rows)).Msg("bulk insert failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "bulk insert failed"})
		return
	}
	ids := make([]uint, 0, len(rows))
	for _, t := range rows {
		ids = append(ids, t.ID)
	}
	c.JSON(http.StatusCreated, gin.H{"created": len(rows), "ids": ids})
}

// txnFilter holds the optional list filters.
type txnFilter struct {
	From       *time.Time
	To         *time.Time
	Type       models.TxnType
	CategoryID *uint
}

func parseDateParam(c *gin.Context, key string) (*time.Time, error) {
	v := strings.TrimSpace(c.Query(key))
	if v == "" {
		return nil, nil
	}
	d, err := time.Parse(time.DateOnly, v)
	if err != nil {
		return nil, fmt.Errorf("%s must be YYYY-MM-DD", key)
	}
	return &d, nil
}

func parseTxnFilter(c *gin.Context) (txnFilter, error) {
	var f txnFilter
	var err error
	if f.From, err = parseDateParam(c, "from"); err != nil {
		return f, err
	}
	if f.To, err = parseDateParam(c, "to"); err != nil {
		return f, err
	}
	if v := c.Query("type"); v != "" {
		f.Type = models.TxnType(v)
		if !f.Type.Valid() {
			return f, errors.New("type must be 'income' or 'expense'")
		}
	}
	if v := c.Query("category_id"); v != "" {
		id, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return f, errors.New("category_id must be a positive integer")
		}
		cid := uint(id)
		f.CategoryID = &cid
	}
	return f, nil
}

// apply scopes q (aliased as t) to the user and the filters.
func (f txnFilter) apply(q *gorm.DB, userID uint) *gorm.DB {
	q = q.Where("t.user_id = ?", userID)
	if f.From != nil {
		q = q.Where("t.date >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("t.date <= ?", *f.To)
	}
	if f.Type != "" {
		q = q.Where("t.type = ?", f.Type)
	}
	if f.CategoryID != nil {
		q = q.Where("t.category_id = ?", *f.CategoryID)
	}
	return q
}

type txnRow struct {
	ID          uint
	Date        time.Time
	Type        models.TxnType
	Category    *string
	Description *string
	AmountMinor int64
}

func (r txnRow) out() txnRowOut {
	return txnRowOut{
		ID:          r.ID,
		Date:        r.Date.Format(time.DateOnly),
		Type:        r.Type,
		Category:    r.Category,
		Description: r.Description,
		Amount:      money.FormatMinor(r.AmountMinor),
	}
}

func queryTxnRows(f txnFilter, userID uint, offset, limit int) ([]txnRow, error) {
	q := f.apply(db.Table("transactions AS t"), userID).
		Select("t.id, t.date, t.type, c.name AS category, t.description, t.amount_minor").
		Joins("LEFT JOIN categories AS c ON c.id = t.category_id").
		Order("t.date desc, t.id desc").
		Offset(offset).
		Limit(limit)
	var rows []txnRow
	if err := q.Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func parsePaging(c *gin.Context) (page, limit int, err error) {
	page, limit = 1, 20
	if v := c.Query("page"); v != "" {
		if page, err = strconv.Atoi(v); err != nil || page < 1 {
			return 0, 0, errors.New("page must be >= 1")
		}
	}
	if v := c.Query("limit"); v != "" {
		if limit, err = strconv.Atoi(v); err != nil || limit < 1 || limit > 100 {
			return 0, 0, errors.New("limit must be between 1 and 100")
		}
	}
	return page, limit, nil
}

func listTransactionsHandler(c *gin.Context) {
	uid := currentUserID(c)
	page, limit, err := parsePaging(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	f, err := parseTxnFilter(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	var total int64
	if err := f.apply(db.Table("transactions AS t"), uid).Count(&total).Error; err != nil {
		reqLogger(c).Error().Err(err).Msg("count transactions failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	rows, err := queryTxnRows(f, uid, (page-1)*limit, limit)
	if err != nil {
		reqLogger(c).Error().Err(err).Msg("list transactions failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	items := make([]txnRowOut, 0, len(rows))
	for _, r := range rows {
		items = append(items, r.out())
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "page": page, "limit": limit, "total": total})
}

func deleteTransactionHandler(c *gin.Context) {
	uid := currentUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	res := db.Where("id = ? AND user_id = ?", id, uid).Delete(&models.Transaction{})
	if res.Error != nil {
		reqLogger(c).Error().Err(res.Error).Msg("delete transaction failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Transaction not found"})
		return
	}
	c.Status(http.StatusNoContent)
}
