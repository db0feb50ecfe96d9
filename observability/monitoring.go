package observability

import (
	"log/slog"
	"os"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shirou/gopsutil/process"
)

const maxRecentChanges = 20

// RecentChange is one committed membership change, as shown on the debug page.
type RecentChange struct {
	Roster    string `json:"roster"`
	Action    string `json:"action"`
	Actor     string `json:"actor"`
	Affected  int    `json:"affected"`
	Version   uint64 `json:"version"`
	Timestamp string `json:"timestamp"`
}

// MonitoringStats aggregates every metric of the engine for the debug page.
type MonitoringStats struct {
	Joins         uint64         `json:"joins"`
	Leaves        uint64         `json:"leaves"`
	DroppedEvents uint64         `json:"dropped_events"`
	PendingEvents int            `json:"pending_events"`
	AllocMemMb    uint64         `json:"alloc_mem_mb"`
	NumGC         uint32         `json:"num_gc"`
	CPUPercent    float64        `json:"cpu_percent"`
	RAMPercent    float32        `json:"ram_percent"`
	RecentChanges []RecentChange `json:"recent_changes"`
}

type MonitoringManager struct {
	log         *slog.Logger
	mu          sync.RWMutex
	latestStats MonitoringStats
	proc        *process.Process

	joins         atomic.Uint64
	leaves        atomic.Uint64
	droppedEvents atomic.Uint64
}

func NewMonitoringManager(log *slog.Logger) *MonitoringManager {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		log.Debug("Error while retrieving own process", "err", err)
	}
	return &MonitoringManager{
		log:  log,
		proc: proc,
		latestStats: MonitoringStats{
			RecentChanges: make([]RecentChange, 0),
		},
	}
}

func (mm *MonitoringManager) IncrJoins() {
	mm.joins.Add(1)
}

func (mm *MonitoringManager) IncrLeaves() {
	mm.leaves.Add(1)
}

func (mm *MonitoringManager) IncrDroppedEvents() {
	mm.droppedEvents.Add(1)
}

// AddChange puts a change on top of the recent list, keeping the last 20.
func (mm *MonitoringManager) AddChange(change RecentChange) {
	mm.mu.Lock()
	defer mm.mu.Unlock()

	mm.latestStats.RecentChanges = append([]RecentChange{change}, mm.latestStats.RecentChanges...)
	if len(mm.latestStats.RecentChanges) > maxRecentChanges {
		mm.latestStats.RecentChanges = mm.latestStats.RecentChanges[:maxRecentChanges]
	}
}

// Refresh loads the counters, the Go memory stats and the process usage
// into the latest snapshot.
func (mm *MonitoringManager) Refresh(pendingEvents int) MonitoringStats {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	cpu, ram := mm.processUsage()

	mm.mu.Lock()
	defer mm.mu.Unlock()
	mm.latestStats.Joins = mm.joins.Load()
	mm.latestStats.Leaves = mm.leaves.Load()
	mm.latestStats.DroppedEvents = mm.droppedEvents.Load()
	mm.latestStats.PendingEvents = pendingEvents
	mm.latestStats.AllocMemMb = m.Alloc / 1024 / 1024
	mm.latestStats.NumGC = m.NumGC
	mm.latestStats.CPUPercent = cpu
	mm.latestStats.RAMPercent = ram

	mm.log.Debug("Stats updated",
		"joins", mm.latestStats.Joins,
		"leaves", mm.latestStats.Leaves,
		"dropped", mm.latestStats.DroppedEvents,
		"pending", pendingEvents)
	return mm.copyLatest()
}

func (mm *MonitoringManager) processUsage() (float64, float32) {
	if mm.proc == nil {
		return 0, 0
	}
	cpu, err := mm.proc.CPUPercent()
	if err != nil {
		mm.log.Debug("Error while finding process cpu usage", "err", err)
	}
	ram, err := mm.proc.MemoryPercent()
	if err != nil {
		mm.log.Debug("Error while finding process ram usage", "err", err)
	}
	return cpu, ram
}

func (mm *MonitoringManager) GetLatest() MonitoringStats {
	mm.mu.RLock()
	defer mm.mu.RUnlock()
	return mm.copyLatest()
}

func (mm *MonitoringManager) copyLatest() MonitoringStats {
	stats := mm.latestStats
	stats.RecentChanges = append([]RecentChange(nil), mm.latestStats.RecentChanges...)
	return stats
}

// Stamp formats a change time the way the debug page shows it.
func Stamp(at time.Time) string {
	return at.Format("15:04:05")
}
