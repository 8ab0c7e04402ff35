package service

import (
	"context"
	"fmt"
	"html"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/allblack/allblack-panel/config"
	"github.com/allblack/allblack-panel/database/model"
	"github.com/allblack/allblack-panel/logger"
	"github.com/allblack/allblack-panel/util/common"
	"github.com/allblack/allblack-panel/web/entity"
	"github.com/allblack/allblack-panel/web/notify"

	"github.com/mymmrac/telego"
	th "github.com/mymmrac/telego/telegohandler"
	tu "github.com/mymmrac/telego/telegoutil"
)

const tgMessageLimit = 2000

// Tgbot sends order alerts and the daily report to the configured chats and
// answers a few read-only commands from them.
type Tgbot struct {
	settingService SettingService
	orderService   OrderService

	mu        sync.RWMutex
	bot       *telego.Bot
	handler   *th.BotHandler
	cancel    context.CancelFunc
	chatIds   []int64
	notifyNew bool
}

func NewTgbot() *Tgbot {
	return new(Tgbot)
}

func parseChatIds(raw string) ([]int64, error) {
	ids := make([]int64, 0)
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, common.NewErrorf("invalid telegram chat id %q", part)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// Start connects the bot and begins long polling for commands.
func (t *Tgbot) Start() error {
	token, err := t.settingService.GetTgBotToken()
	if err != nil || token == "" {
		logger.Warning("Get TgBotToken failed:", err)
		return common.NewError("telegram bot token is not set")
	}
	rawIds, err := t.settingService.GetTgBotChatId()
	if err != nil {
		return err
	}
	chatIds, err := parseChatIds(rawIds)
	if err != nil {
		return err
	}
	notifyNew, err := t.settingService.GetTgNotifyNewOrders()
	if err != nil {
		notifyNew = true
	}

	bot, err := telego.NewBot(token)
	if err != nil {
		return fmt.Errorf("telegram bot: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	updates, err := bot.UpdatesViaLongPolling(ctx, &telego.GetUpdatesParams{Timeout: 10})
	if err != nil {
		cancel()
		return err
	}
	handler, err := th.NewBotHandler(bot, updates)
	if err != nil {
		cancel()
		return err
	}
	handler.HandleMessage(func(_ *th.Context, message telego.Message) error {
		t.answerCommand(&message)
		return nil
	}, th.AnyCommand())

	t.mu.Lock()
	t.bot, t.handler, t.cancel = bot, handler, cancel
	t.chatIds, t.notifyNew = chatIds, notifyNew
	t.mu.Unlock()

	go func() {
		defer common.Recover("telegram handler")
		if err := handler.Start(); err != nil {
			logger.Warning("telegram handler stopped:", err)
		}
	}()
	logger.Info("Telegram bot started for", len(chatIds), "chats")
	return nil
}

func (t *Tgbot) IsRunning() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.bot != nil
}

func (t *Tgbot) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.handler != nil {
		_ = t.handler.Stop()
	}
	if t.cancel != nil {
		t.cancel()
	}
	t.bot, t.handler, t.cancel, t.chatIds = nil, nil, nil, nil
	logger.Info("Telegram bot stopped")
}

func (t *Tgbot) isAdminChat(chatId int64) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for _, id := range t.chatIds {
		if id == chatId {
			return true
		}
	}
	return false
}

// commandOf returns "stats" for "/stats@allblack_bot today".
func commandOf(text string) string {
	fields := strings.Fields(text)
	if len(fields) == 0 || !strings.HasPrefix(fields[0], "/") {
		return ""
	}
	command, _, _ := strings.Cut(strings.TrimPrefix(fields[0], "/"), "@")
	return strings.ToLower(command)
}

func (t *Tgbot) answerCommand(message *telego.Message) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	chatId := message.Chat.ID
	if !t.isAdminChat(chatId) {
		t.send(ctx, chatId, "This chat is not allowed to use the bot.")
		return
	}
	switch commandOf(message.Text) {
	case "start", "help":
		t.send(ctx, chatId, "Commands:\r\n/stats today's orders and revenue\r\n/queue orders waiting in the kitchen")
	case "stats":
		stats, err := t.orderService.Today()
		if err != nil {
			t.send(ctx, chatId, "Failed to read statistics.")
			return
		}
		t.send(ctx, chatId, FormatDailyReport(stats))
	case "queue":
		orders, err := t.orderService.ListVisible()
		if err != nil {
			t.send(ctx, chatId, "Failed to read orders.")
			return
		}
		t.send(ctx, chatId, formatQueue(orders))
	default:
		t.send(ctx, chatId, "Unknown command, try /help")
	}
}

// send pages msg by blank lines so each part fits in one Telegram message.
func (t *Tgbot) send(ctx context.Context, chatId int64, msg string) {
	t.mu.RLock()
	bot := t.bot
	t.mu.RUnlock()
	if bot == nil || msg == "" {
		return
	}
	for _, part := range splitMessage(msg, tgMessageLimit) {
		_, err := bot.SendMessage(ctx, &telego.SendMessageParams{
			ChatID:    tu.ID(chatId),
			Text:      part,
			ParseMode: telego.ModeHTML,
		})
		if err != nil {
			logger.Warning("Error sending telegram message:", err)
		}
	}
}

func splitMessage(msg string, limit int) []string {
	if len(msg) <= limit {
		return []string{msg}
	}
	parts := make([]string, 0)
	for _, block := range strings.Split(msg, "\r\n\r\n") {
		if n := len(parts); n > 0 && len(parts[n-1])+len(block)+4 <= limit {
			parts[n-1] += "\r\n\r\n" + block
			continue
		}
		parts = append(parts, block)
	}
	return parts
}

// SendMsgToTgbotAdmins sends msg to every configured chat.
func (t *Tgbot) SendMsgToTgbotAdmins(ctx context.Context, msg string) {
	t.mu.RLock()
	ids := append([]int64(nil), t.chatIds...)
	t.mu.RUnlock()
	for _, id := range ids {
		t.send(ctx, id, msg)
	}
}

// SendReport sends today's statistics to the admin chats.
func (t *Tgbot) SendReport(ctx context.Context, stats entity.DailyStats) {
	t.SendMsgToTgbotAdmins(ctx, FormatDailyReport(stats))
}

func (t *Tgbot) Name() string {
	return "telegram"
}

// Notify alerts the admin chats about new and cancelled orders.
func (t *Tgbot) Notify(ctx context.Context, e notify.Event) error {
	t.mu.RLock()
	running, notifyNew := t.bot != nil, t.notifyNew
	t.mu.RUnlock()
	if !running {
		return nil
	}
	switch {
	case e.Type == notify.OrderCreated && notifyNew:
		t.SendMsgToTgbotAdmins(ctx, formatNewOrder(e))
	case e.Type == notify.OrderStatusChanged && e.NewStatus == model.StatusCancelled:
		t.SendMsgToTgbotAdmins(ctx, fmt.Sprintf("❌ Order <b>#%s</b> cancelled by %s", e.OrderNumber, html.EscapeString(e.ChangedBy)))
	}
	return nil
}

func formatNewOrder(e notify.Event) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🍔 New order <b>#%s</b>", e.OrderNumber)
	if e.Order != nil {
		if e.Order.User != nil {
			fmt.Fprintf(&b, " (table %s)", html.EscapeString(e.Order.User.Username))
		}
		b.WriteString("\r\n")
		for _, item := range e.Order.Items {
			name := fmt.Sprintf("item %d", item.MenuItemId)
			if item.MenuItem != nil {
				name = item.MenuItem.Name
			}
			fmt.Fprintf(&b, "%dx %s\r\n", item.Quantity, html.EscapeString(name))
		}
		if e.Order.Observations != "" {
			fmt.Fprintf(&b, "📝 %s\r\n", html.EscapeString(e.Order.Observations))
		}
	} else {
		b.WriteString("\r\n")
	}
	fmt.Fprintf(&b, "💰 %s", common.FormatMoney(e.Total))
	return b.String()
}

func formatQueue(orders []model.Order) string {
	var b strings.Builder
	count := 0
	for _, o := range orders {
		if o.Status.IsTerminal() {
			continue
		}
		count++
		table := strconv.Itoa(o.TableNumber)
		if o.User != nil {
			table = html.EscapeString(o.User.Username)
		}
		fmt.Fprintf(&b, "#%s table %s: %s\r\n", o.Number, table, o.Status)
	}
	if count == 0 {
		return "No open orders."
	}
	return fmt.Sprintf("📋 %d open orders\r\n\r\n%s", count, b.String())
}

// FormatDailyReport renders stats for the Telegram report and the log.
func FormatDailyReport(stats entity.DailyStats) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📊 %s report for %s\r\n", config.GetName(), stats.Date)
	fmt.Fprintf(&b, "Orders: %d\r\n", stats.OrderCount)
	fmt.Fprintf(&b, "Revenue: %s\r\n", common.FormatMoney(stats.Revenue))
	if n := stats.ByStatus[model.StatusCancelled]; n > 0 {
		fmt.Fprintf(&b, "Cancelled: %d\r\n", n)
	}
	if len(stats.TopItems) > 0 {
		b.WriteString("\r\nTop items:\r\n")
		for i, item := range stats.TopItems {
			fmt.Fprintf(&b, "%d. %s (%d)\r\n", i+1, html.EscapeString(item.Name), item.Quantity)
		}
	}
	fmt.Fprintf(&b, "\r\nGenerated at %s", time.Now().Format("2006-01-02 15:04:05"))
	return b.String()
}
