package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"artmarket/web/db"
)

// Health reports process and host status for uptime checks.
func Health(c *gin.Context) {
	status := "ok"

	sqlDB, err := db.DB.DB()
	if err != nil || sqlDB.Ping() != nil {
		status = "degraded"
	}

	cpuPercent := 0.0
	if percents, err := cpu.Percent(200*time.Millisecond, false); err == nil && len(percents) > 0 {
		cpuPercent = percents[0]
	}

	memPercent := 0.0
	if vm, err := mem.VirtualMemory(); err == nil {
		memPercent = vm.UsedPercent
	}

	code := http.StatusOK
	if status != "ok" {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, gin.H{
		"status":      status,
		"cpu_percent": cpuPercent,
		"mem_percent": memPercent,
	})
}
