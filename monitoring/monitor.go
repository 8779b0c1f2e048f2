// Package monitoring turns a simulated hierarchy into a small web server
// that serves its statistics, set contents, and memory heat map as JSON.
package monitoring

import (
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/pkg/browser"
	"github.com/shirou/gopsutil/process"

	"github.com/dath2006/cache-insights/cache"
	"github.com/dath2006/cache-insights/hierarchy"
	"github.com/dath2006/cache-insights/history"
)

// A Monitor serves read-only snapshots of a hierarchy over HTTP. It never
// mutates the hierarchy; the owner must not mutate it concurrently with
// requests.
type Monitor struct {
	hierarchy *hierarchy.Comp
	store     history.Store

	portNumber int
	actualPort int
}

// NewMonitor creates a new Monitor.
func NewMonitor() *Monitor {
	return &Monitor{}
}

// WithPortNumber sets the port number of the monitor. Ports below 1000 are
// rejected and a random port is used instead.
func (m *Monitor) WithPortNumber(portNumber int) *Monitor {
	if portNumber < 1000 {
		fmt.Fprintf(os.Stderr,
			"Port number %d is not allowed for the monitoring server. "+
				"Using a random port instead.\n", portNumber)
		portNumber = 0
	}

	m.portNumber = portNumber

	return m
}

// RegisterHierarchy registers the hierarchy to serve.
func (m *Monitor) RegisterHierarchy(h *hierarchy.Comp) {
	m.hierarchy = h
}

// RegisterHistory registers a run-history store, enabling /api/history.
func (m *Monitor) RegisterHistory(s history.Store) {
	m.store = s
}

// StartServer starts serving in a background goroutine and returns the
// port it listens on.
func (m *Monitor) StartServer() (int, error) {
	listener, err := net.Listen("tcp", m.listenAddr())
	if err != nil {
		return 0, err
	}

	m.actualPort = listener.Addr().(*net.TCPAddr).Port

	fmt.Fprintf(os.Stderr,
		"Monitoring simulation with http://localhost:%d\n", m.actualPort)

	go func() {
		if err := http.Serve(listener, m.router()); err != nil {
			panic(err)
		}
	}()

	return m.actualPort, nil
}

func (m *Monitor) listenAddr() string {
	if m.portNumber >= 1000 {
		return ":" + strconv.Itoa(m.portNumber)
	}

	return ":0"
}

func (m *Monitor) router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/api/stats", m.stats)
	r.HandleFunc("/api/sets/{level}", m.sets)
	r.HandleFunc("/api/memory", m.memoryStats)
	r.HandleFunc("/api/regions", m.regions)
	r.HandleFunc("/api/history", m.listHistory)
	r.HandleFunc("/api/resource", m.listResources)

	return r
}

// OpenBrowser opens the monitoring page in the default browser.
func (m *Monitor) OpenBrowser() error {
	return browser.OpenURL(
		fmt.Sprintf("http://localhost:%d/api/stats", m.actualPort))
}

type statsResponse struct {
	L1       *cache.Stats `json:"l1,omitempty"`
	L2       *cache.Stats `json:"l2,omitempty"`
	Combined cache.Stats  `json:"combined"`

	L1HitRate       float64 `json:"l1_hit_rate"`
	L2HitRate       float64 `json:"l2_hit_rate"`
	CombinedHitRate float64 `json:"combined_hit_rate"`
	TotalCycles     uint64  `json:"total_cycles"`
}

func (m *Monitor) stats(w http.ResponseWriter, _ *http.Request) {
	resp := statsResponse{
		Combined:        m.hierarchy.CombinedStats(),
		CombinedHitRate: m.hierarchy.CombinedStats().HitRate(),
		TotalCycles:     m.hierarchy.TotalCycles(),
	}

	if l1 := m.hierarchy.L1(); l1 != nil {
		s := l1.Stats()
		resp.L1 = &s
		resp.L1HitRate = s.HitRate()
	}
	if l2 := m.hierarchy.L2(); l2 != nil {
		s := l2.Stats()
		resp.L2 = &s
		resp.L2HitRate = s.HitRate()
	}

	writeJSON(w, resp)
}

func (m *Monitor) sets(w http.ResponseWriter, r *http.Request) {
	level := mux.Vars(r)["level"]

	var c *cache.Comp
	switch level {
	case "l1", "L1":
		c = m.hierarchy.L1()
	case "l2", "L2":
		c = m.hierarchy.L2()
	default:
		http.Error(w, "unknown level "+level, http.StatusNotFound)
		return
	}

	if c == nil {
		http.Error(w, "level "+level+" is disabled", http.StatusNotFound)
		return
	}

	writeJSON(w, c.Sets())
}

func (m *Monitor) memoryStats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, m.hierarchy.MemoryStats())
}

func (m *Monitor) regions(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, m.hierarchy.MemoryRegions())
}

func (m *Monitor) listHistory(w http.ResponseWriter, _ *http.Request) {
	if m.store == nil {
		http.Error(w, "no history store registered", http.StatusNotFound)
		return
	}

	records, err := m.store.ListAll()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, records)
}

type resourceResponse struct {
	CPUPercent float64 `json:"cpu_percent"`
	RSSBytes   uint64  `json:"rss_bytes"`
}

func (m *Monitor) listResources(w http.ResponseWriter, _ *http.Request) {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	resp := resourceResponse{}
	if cpu, err := proc.CPUPercent(); err == nil {
		resp.CPUPercent = cpu
	}
	if memInfo, err := proc.MemoryInfo(); err == nil {
		resp.RSSBytes = memInfo.RSS
	}

	writeJSON(w, resp)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
