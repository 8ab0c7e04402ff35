package job

import (
	"context"
	"time"

	"github.com/allblack/allblack-panel/logger"
	"github.com/allblack/allblack-panel/web/service"
)

// DailyStatsJob logs the day's figures and forwards them to Telegram when
// the bot is running.
type DailyStatsJob struct {
	orderService service.OrderService
	tgbot        *service.Tgbot
}

func NewDailyStatsJob(tgbot *service.Tgbot) *DailyStatsJob {
	return &DailyStatsJob{tgbot: tgbot}
}

// Here run is a interface method of Job interface
func (j *DailyStatsJob) Run() {
	stats, err := j.orderService.Today()
	if err != nil {
		logger.Warning("daily stats job err:", err)
		return
	}
	logger.Infof("daily stats %s: %d orders, revenue %s", stats.Date, stats.OrderCount, stats.Revenue.StringFixed(2))
	if j.tgbot == nil || !j.tgbot.IsRunning() {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	j.tgbot.SendReport(ctx, stats)
}
