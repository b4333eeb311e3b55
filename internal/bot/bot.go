package bot

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"

	"timeline-planner/internal/model"
	"timeline-planner/internal/repository"
	"timeline-planner/internal/service"
)

const cbCompletePrefix = "complete:"

const helpText = `📅 <b>Timeline planner</b>

/today — agenda for today
/tomorrow — agenda for tomorrow
/backlog — undated tasks
/done N — complete the Nth task of today
/push N — move the Nth task of today to tomorrow
/help — this message`

// Bot is a slim Telegram surface over the scheduling engine: agenda views,
// completion and day-to-day moves. All reordering goes through the same
// session/commit path the timeline UI uses.
type Bot struct {
	api       *tgbotapi.BotAPI
	userRepo  *repository.UserRepository
	taskRepo  *repository.TaskRepository
	taskSvc   *service.TaskService
	agendaSvc *service.AgendaService
}

func New(token string, userRepo *repository.UserRepository, taskRepo *repository.TaskRepository, taskSvc *service.TaskService, agendaSvc *service.AgendaService) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}

	log.Printf("[info] bot authorized on account %s", api.Self.UserName)

	return &Bot{
		api:       api,
		userRepo:  userRepo,
		taskRepo:  taskRepo,
		taskSvc:   taskSvc,
		agendaSvc: agendaSvc,
	}, nil
}

// Start begins polling updates until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) error {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updates := b.api.GetUpdatesChan(updateConfig)

	log.Println("[info] start polling updates")

	go func() {
		<-ctx.Done()
		b.api.StopReceivingUpdates()
	}()

	for update := range updates {
		switch {
		case update.CallbackQuery != nil:
			if err := b.handleCallback(ctx, update.CallbackQuery); err != nil {
				log.Printf("handle callback: %v", err)
			}
		case update.Message != nil:
			if update.Message.Chat == nil || !update.Message.Chat.IsPrivate() {
				continue
			}
			if err := b.handleMessage(ctx, update.Message); err != nil {
				log.Printf("handle message: %v", err)
			}
		}
	}

	return ctx.Err()
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) error {
	if msg.From == nil {
		return nil
	}
	if _, err := b.ensureUser(ctx, msg.From); err != nil {
		return err
	}

	if !msg.IsCommand() {
		return b.sendText(msg.Chat.ID, "Use /help to see the available commands.")
	}

	switch msg.Command() {
	case "start":
		return b.sendText(msg.Chat.ID, helpText)
	case "help":
		return b.sendText(msg.Chat.ID, helpText)
	case "today":
		return b.sendAgenda(ctx, msg.Chat.ID, model.Day(time.Now()))
	case "tomorrow":
		return b.sendAgenda(ctx, msg.Chat.ID, model.Day(time.Now()).AddDate(0, 0, 1))
	case "backlog":
		text, err := b.agendaSvc.BacklogSummary(ctx)
		if err != nil {
			return err
		}
		return b.sendText(msg.Chat.ID, text)
	case "done":
		return b.handleDone(ctx, msg)
	case "push":
		return b.handlePush(ctx, msg)
	default:
		return b.sendText(msg.Chat.ID, "Unknown command, see /help.")
	}
}

func (b *Bot) sendAgenda(ctx context.Context, chatID int64, day time.Time) error {
	text, err := b.agendaSvc.DailyAgenda(ctx, day)
	if err != nil {
		return err
	}

	tasks, err := b.taskRepo.ListOnDay(ctx, day)
	if err != nil {
		return err
	}
	var rows [][]tgbotapi.InlineKeyboardButton
	for i, task := range tasks {
		if task.IsComplete {
			continue
		}
		label := fmt.Sprintf("✓ %d. %s", i+1, shortName(task.Name, 24))
		data := cbCompletePrefix + task.ID.String()
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, data),
		))
	}

	reply := tgbotapi.NewMessage(chatID, text)
	reply.ParseMode = tgbotapi.ModeHTML
	if len(rows) > 0 {
		reply.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	}
	_, err = b.api.Send(reply)
	return err
}

// handleDone completes the Nth task of today's agenda.
func (b *Bot) handleDone(ctx context.Context, msg *tgbotapi.Message) error {
	task, err := b.nthTaskToday(ctx, msg.CommandArguments())
	if err != nil {
		return b.sendText(msg.Chat.ID, err.Error())
	}
	if err := b.taskSvc.Complete(ctx, task.ID); err != nil {
		return err
	}
	return b.sendText(msg.Chat.ID, fmt.Sprintf("Done: %s", shortName(task.Name, 48)))
}

// handlePush appends the Nth task of today to the end of tomorrow, through
// the engine's optimistic commit path.
func (b *Bot) handlePush(ctx context.Context, msg *tgbotapi.Message) error {
	task, err := b.nthTaskToday(ctx, msg.CommandArguments())
	if err != nil {
		return b.sendText(msg.Chat.ID, err.Error())
	}

	if err := b.taskSvc.Postpone(ctx, task.ID, 1); err != nil {
		return err
	}
	return b.sendText(msg.Chat.ID, fmt.Sprintf("Moved to tomorrow: %s", shortName(task.Name, 48)))
}

func (b *Bot) nthTaskToday(ctx context.Context, args string) (*model.Task, error) {
	n, err := strconv.Atoi(strings.TrimSpace(args))
	if err != nil || n < 1 {
		return nil, fmt.Errorf("give me a task number, e.g. /done 2")
	}
	tasks, err := b.taskRepo.ListOnDay(ctx, time.Now())
	if err != nil {
		return nil, err
	}
	if n > len(tasks) {
		return nil, fmt.Errorf("today has only %d task(s)", len(tasks))
	}
	return &tasks[n-1], nil
}

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) error {
	if cb.Message == nil || !strings.HasPrefix(cb.Data, cbCompletePrefix) {
		return nil
	}
	id, err := uuid.Parse(strings.TrimPrefix(cb.Data, cbCompletePrefix))
	if err != nil {
		return fmt.Errorf("parse callback task id: %w", err)
	}

	if err := b.taskSvc.Complete(ctx, id); err != nil {
		return err
	}

	ack := tgbotapi.NewCallback(cb.ID, "Completed")
	if _, err := b.api.Request(ack); err != nil {
		return err
	}
	return b.sendAgenda(ctx, cb.Message.Chat.ID, model.Day(time.Now()))
}

// SendDailyAgendas broadcasts today's agenda to every subscriber.
func (b *Bot) SendDailyAgendas(ctx context.Context) error {
	users, err := b.userRepo.ListAll(ctx)
	if err != nil {
		return err
	}

	text, err := b.agendaSvc.DailyAgenda(ctx, model.Day(time.Now()))
	if err != nil {
		return err
	}

	for _, user := range users {
		if err := b.sendText(user.TelegramID, text); err != nil {
			log.Printf("send agenda to %d: %v", user.TelegramID, err)
		}
	}
	return nil
}

func (b *Bot) ensureUser(ctx context.Context, from *tgbotapi.User) (*model.User, error) {
	return b.userRepo.UpsertFromTelegram(ctx, from.ID, from.FirstName, from.LastName, from.UserName)
}

func (b *Bot) sendText(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	_, err := b.api.Send(msg)
	return err
}

// shortName caps a task name at maxLen runes, never cutting mid-rune.
func shortName(name string, maxLen int) string {
	name = strings.TrimSpace(name)
	runes := []rune(name)
	if len(runes) <= maxLen {
		return name
	}
	return strings.TrimSpace(string(runes[:maxLen-1])) + "…"
}
