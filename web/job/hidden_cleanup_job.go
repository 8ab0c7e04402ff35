package job

import (
	"time"

	"github.com/allblack/allblack-panel/logger"
	"github.com/allblack/allblack-panel/web/service"
)

type HiddenCleanupJob struct {
	settingService service.SettingService
	orderService   service.OrderService
}

func NewHiddenCleanupJob() *HiddenCleanupJob {
	return new(HiddenCleanupJob)
}

// Run deletes hidden orders older than the retention setting. A retention
// of zero days keeps them forever.
func (j *HiddenCleanupJob) Run() {
	days, err := j.settingService.GetHiddenRetentionDays()
	if err != nil {
		logger.Warning("hidden cleanup job err:", err)
		return
	}
	if days <= 0 {
		return
	}
	count, err := j.orderService.CleanupHidden(time.Now().AddDate(0, 0, -days))
	if err != nil {
		logger.Warning("hidden cleanup job err:", err)
		return
	}
	if count > 0 {
		logger.Infof("removed %d hidden orders older than %d days", count, days)
	}
}
