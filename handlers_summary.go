package main

import (
	"net/http"
	"strconv"
	"time"

	"pfa/models"
	"pfa/pkg/money"

	"github.com/gin-gonic/gin"
)

var monthLabels = []string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

type categorySum struct {
	Cat      string
	SumMinor int64
}

// categorySummaryHandler returns expense totals per category for a date range.
func categorySummaryHandler(c *gin.Context) {
	uid := currentUserID(c)
	from, err := parseDateParam(c, "from")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	to, err := parseDateParam(c, "to")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	f := txnFilter{From: from, To: to, Type: models.TxnExpense}
	var sums []categorySum
	err = f.apply(db.Table("transactions AS t"), uid).
		Select("COALESCE(c.name, 'Uncategorized') AS cat, SUM(t.amount_minor) AS sum_minor").
		Joins("LEFT JOIN categories AS c ON c.id = t.category_id").
		Group("COALESCE(c.name, 'Uncategorized')").
		Order("sum_minor desc").
		Scan(&sums).Error
	if err != nil {
		reqLogger(c).Error().Err(err).Msg("category summary failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, categoryChart(sums))
}

func categoryChart(sums []categorySum) gin.H {
	labels := make([]string, 0, len(sums))
	values := make([]float64, 0, len(sums))
	var total int64
	for _, s := range sums {
		labels = append(labels, s.Cat)
		values = append(values, money.MinorToFloat(s.SumMinor))
		total += s.SumMinor
	}
	return gin.H{"labels": labels, "values": values, "total": money.MinorToFloat(total)}
}

type monthSum struct {
	M        int
	SumMinor int64
}

// monthlySummaryHandler returns expense totals for each month of a year.
func monthlySummaryHandler(c *gin.Context) {
	uid := currentUserID(c)
	year, err := strconv.Atoi(c.Query("year"))
	if err != nil || year < 1900 || year > 9999 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "year is required, e.g. 2025"})
		return
	}
	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)
	f := txnFilter{From: &from, To: &to, Type: models.TxnExpense}
	var sums []monthSum
	err = f.apply(db.Table("transactions AS t"), uid).
		Select("CAST(EXTRACT(MONTH FROM t.date) AS INTEGER) AS m, SUM(t.amount_minor) AS sum_minor").
		Group("m").
		Scan(&sums).Error
	if err != nil {
		reqLogger(c).Error().Err(err).Msg("monthly summary failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"year": year, "labels": monthLabels, "values": monthValues(sums)})
}

func monthValues(sums []monthSum) []float64 {
	var minor [12]int64
	for _, s := range sums {
		if s.M >= 1 && s.M <= 12 {
			minor[s.M-1] = s.SumMinor
		}
	}
	values := make([]float64, 12)
	for i, m := range minor {
		values[i] = money.MinorToFloat(m)
	}
	return values
}
