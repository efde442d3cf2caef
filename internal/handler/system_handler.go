package handler

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/course-feed/internal/config"
	"github.com/stemsi/course-feed/internal/response"
	"github.com/stemsi/course-feed/internal/service"
)

const metricsInterval = 7 * time.Second

// CheckFunc probes one dependency.
type CheckFunc func(ctx context.Context) error

// SystemHandler reports service health and streams runtime metrics via SSE.
type SystemHandler struct {
	scheduleService *service.ScheduleService
	rdb             *redis.Client
	checks          map[string]CheckFunc
	startTime       time.Time
	log             zerolog.Logger
}

// NewSystemHandler creates a SystemHandler. checks are run by Health; rdb is
// used for queue depths and may be nil.
func NewSystemHandler(scheduleService *service.ScheduleService, rdb *redis.Client, checks map[string]CheckFunc, log zerolog.Logger) *SystemHandler {
	return &SystemHandler{
		scheduleService: scheduleService,
		rdb:             rdb,
		checks:          checks,
		startTime:       time.Now(),
		log:             log.With().Str("component", "system_handler").Logger(),
	}
}

// Health godoc
// GET /health
// Responds 200 when every dependency answers, 503 otherwise. A missing
// schedule does not fail the check; it is reported in the body.
func (h *SystemHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	deps := make(map[string]string, len(h.checks))
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			deps[name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		deps[name] = "ok"
	}

	state := "ok"
	if status != http.StatusOK {
		state = "degraded"
	}
	response.Success(c, status, gin.H{
		"status":       state,
		"dependencies": deps,
		"schedule":     h.scheduleService.Status(),
		"uptime":       formatDuration(time.Since(h.startTime)),
	})
}

type systemMetrics struct {
	Timestamp int64  `json:"timestamp"`
	Uptime    string `json:"uptime"`

	// Go Application
	Goroutines  int    `json:"goroutines"`
	HeapAlloc   uint64 `json:"heap_alloc"`
	HeapSys     uint64 `json:"heap_sys"`
	NumGC       uint32 `json:"num_gc"`
	AppRSSBytes uint64 `json:"app_rss_bytes"`
	GoVersion   string `json:"go_version"`
	NumCPU      int    `json:"num_cpu"`

	// Schedule
	Schedule service.Status `json:"schedule"`

	// Worker Queues
	QueueRefresh int64 `json:"queue_refresh"`
	QueuePersist int64 `json:"queue_persist"`
}

// SystemMetricsSSE godoc
// GET /api/v1/admin/system/metrics
func (h *SystemHandler) SystemMetricsSSE(c *gin.Context) {
	reqCtx := c.Request.Context()

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	h.log.Info().Msg("Admin connected to system metrics SSE")

	ticker := time.NewTicker(metricsInterval)
	defer ticker.Stop()

	h.writeMetrics(c)
	for {
		select {
		case <-reqCtx.Done():
			h.log.Info().Msg("Admin disconnected from system metrics SSE")
			return
		case <-ticker.C:
			h.writeMetrics(c)
		}
	}
}

func (h *SystemHandler) writeMetrics(c *gin.Context) {
	data, err := json.Marshal(h.collect(c.Request.Context()))
	if err != nil {
		return
	}
	fmt.Fprintf(c.Writer, "data: %s\n\n", data)
	c.Writer.Flush()
}

func (h *SystemHandler) collect(ctx context.Context) systemMetrics {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	m := systemMetrics{
		Timestamp:  time.Now().Unix(),
		Uptime:     formatDuration(time.Since(h.startTime)),
		Goroutines: runtime.NumGoroutine(),
		HeapAlloc:  ms.HeapAlloc,
		HeapSys:    ms.Sys,
		NumGC:      ms.NumGC,
		GoVersion:  runtime.Version(),
		NumCPU:     runtime.NumCPU(),
		Schedule:   h.scheduleService.Status(),
	}
	m.AppRSSBytes, _ = readProcessRSS()

	if h.rdb != nil {
		pipe := h.rdb.Pipeline()
		refreshCmd := pipe.LLen(ctx, config.WorkerKey.RefreshQueue)
		persistCmd := pipe.LLen(ctx, config.WorkerKey.PersistSnapshotQueue)
		if _, err := pipe.Exec(ctx); err == nil {
			m.QueueRefresh, _ = refreshCmd.Result()
			m.QueuePersist, _ = persistCmd.Result()
		}
	}

	return m
}

// readProcessRSS reads VmRSS from /proc/self/status. Linux only.
func readProcessRSS() (uint64, error) {
	f, err := os.Open("/proc/self/status")
	if err != nil {
		return 0, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "VmRSS:") {
			continue
		}
		// Format: "VmRSS:     123456 kB"
		fields := strings.Fields(line)
		if len(fields) < 2 {
			break
		}
		kb, err := strconv.ParseUint(fields[1], 10, 64)
		if err != nil {
			return 0, err
		}
		return kb * 1024, nil
	}
	return 0, fmt.Errorf("VmRSS not found")
}

func formatDuration(d time.Duration) string {
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	if days > 0 {
		return fmt.Sprintf("%dd %dh %dm %ds", days, hours, minutes, seconds)
	}
	if hours > 0 {
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
	}
	return fmt.Sprintf("%dm %ds", minutes, seconds)
}
