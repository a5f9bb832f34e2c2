// internal/monitor/monitor.go
//
// Host-level resource snapshot for operators.
//
// Dependencies
//   - github.com/shirou/gopsutil/v3 (CPU, memory, disk readings)
package monitor

import (
	"net/http"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/stocklot/stocklot/internal/respond"
)

// Snapshot is one point-in-time reading of host resources.
type Snapshot struct {
	CPUPercent  float64 `json:"cpu_percent"`
	MemTotal    uint64  `json:"mem_total"`
	MemUsed     uint64  `json:"mem_used"`
	MemPercent  float64 `json:"mem_percent"`
	DiskTotal   uint64  `json:"disk_total"`
	DiskUsed    uint64  `json:"disk_used"`
	DiskPercent float64 `json:"disk_percent"`
}

// Handler serves GET /api/monitor.  The CPU reading samples over a short
// interval, so the endpoint takes about 200ms.
func Handler(w http.ResponseWriter, r *http.Request) {
	snap := Snapshot{}

	if pcts, err := cpu.PercentWithContext(r.Context(), 200*time.Millisecond, false); err == nil && len(pcts) > 0 {
		snap.CPUPercent = pcts[0]
	}
	if vm, err := mem.VirtualMemoryWithContext(r.Context()); err == nil {
		snap.MemTotal = vm.Total
		snap.MemUsed = vm.Used
		snap.MemPercent = vm.UsedPercent
	}
	if du, err := disk.UsageWithContext(r.Context(), "/"); err == nil {
		snap.DiskTotal = du.Total
		snap.DiskUsed = du.Used
		snap.DiskPercent = du.UsedPercent
	}

	respond.JSON(w, http.StatusOK, snap)
}
