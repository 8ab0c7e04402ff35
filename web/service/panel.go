package service

import (
	"os"
	"runtime"
	"syscall"
	"time"

	"github.com/allblack/allblack-panel/config"
	"github.com/allblack/allblack-panel/logger"
	"github.com/allblack/allblack-panel/web/websocket"
)

var startedAt = time.Now()

// PanelStatus is the admin-facing health summary of the process.
type PanelStatus struct {
	Name       string     `json:"name"`
	Version    string     `json:"version"`
	Uptime     int64      `json:"uptime"` // seconds
	Goroutines int        `json:"goroutines"`
	HeapAlloc  uint64     `json:"heapAlloc"`
	Database   string     `json:"database"`
	Push       PushStatus `json:"push"`
}

// PushStatus reports the websocket hub of the running server.
type PushStatus struct {
	Clients int   `json:"clients"`
	Sent    int64 `json:"sent"`
	Dropped int64 `json:"dropped"`
}

// PanelService controls the running process.
type PanelService struct{}

// RestartPanel sends SIGHUP to the process after delay; the run command
// restarts the web server on it.
func (s *PanelService) RestartPanel(delay time.Duration) error {
	p, err := os.FindProcess(syscall.Getpid())
	if err != nil {
		return err
	}
	go func() {
		time.Sleep(delay)
		if err := p.Signal(syscall.SIGHUP); err != nil {
			logger.Error("failed to send SIGHUP signal:", err)
		}
	}()
	return nil
}

func (s *PanelService) Status() PanelStatus {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	return PanelStatus{
		Name:       config.GetName(),
		Version:    config.GetVersion(),
		Uptime:     int64(time.Since(startedAt).Seconds()),
		Goroutines: runtime.NumGoroutine(),
		HeapAlloc:  mem.HeapAlloc,
		Database:   string(config.GetDatabaseConfig().Type),
		Push:       pushStatus(websocket.GetHub()),
	}
}

func pushStatus(hub *websocket.Hub) PushStatus {
	if hub == nil {
		return PushStatus{}
	}
	sent, dropped := hub.Stats()
	return PushStatus{Clients: hub.GetClientCount(), Sent: sent, Dropped: dropped}
}
