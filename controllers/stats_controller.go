// controllers/stats_controller.go
package controllers

import (
	"net/http"
	"time"

	"Gin_postgres_library_management/app"

	"github.com/gin-gonic/gin"
)

type StatsController struct{ *Srv }

func NewStatsController(s *Srv) *StatsController { return &StatsController{Srv: s} }

// GET /api/stats — 公开
func (sc *StatsController) Stats(c *gin.Context) {
	s, err := sc.Repo.ComputeStatistics(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

// GET /api/dashboard （管理员）
func (sc *StatsController) Dashboard(c *gin.Context) {
	d, err := sc.Repo.ComputeDashboard(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

// GET /api/reports/usage?from=2026-01-01&to=2026-02-01 （管理员）
// 默认窗口：最近 30 天
func (sc *StatsController) UsageReport(c *gin.Context) {
	to := time.Now().UTC()
	from := to.AddDate(0, 0, -30)

	var err error
	if v := c.Query("from"); v != "" {
		if from, err = time.Parse("2006-01-02", v); err != nil {
			c.JSON(http.StatusBadRequest, app.H{"error": "invalid from date, want YYYY-MM-DD"})
			return
		}
	}
	if v := c.Query("to"); v != "" {
		if to, err = time.Parse("2006-01-02", v); err != nil {
			c.JSON(http.StatusBadRequest, app.H{"error": "invalid to date, want YYYY-MM-DD"})
			return
		}
		to = to.AddDate(0, 0, 1) // inclusive end day
	}

	rep, err := sc.Repo.ComputeUsageReport(c.Request.Context(), from, to)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, rep)
}

// GET /api/reports/inventory?category= （管理员）
func (sc *StatsController) InventoryReport(c *gin.Context) {
	rows, err := sc.Repo.ComputeInventoryReport(c.Request.Context(), c.Query("category"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"inventory": rows})
}
