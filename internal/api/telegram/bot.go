package telegram

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	app "smart-spray/internal/application"
	"smart-spray/internal/domain/entity"
	"smart-spray/internal/domain/port"
)

const (
	msgStart = `👋 Привет! Я бот системы SmartSpray.

📸 Отправьте фото листа томата, и я определю болезнь и выставлю команду опрыскивателю.

📋 Команды:
/check — проверить лист
/status — текущая команда контроллера
/logs — последние решения
/subscribe — получать уведомления о решениях
/help — справка`

	msgHelp = `ℹ️ Как пользоваться ботом:

1️⃣ Отправьте /check
2️⃣ Пришлите фото листа
3️⃣ Бот классифицирует болезнь и обновит команду опрыскивателя

💡 Рекомендации:
• Снимайте один лист крупным планом
• Используйте однотонный фон
• Фото должно быть чётким

📋 Команды:
/check — проверить лист
/cancel — отменить операцию
/status — текущая команда
/logs — последние 5 решений
/subscribe, /unsubscribe — уведомления о решениях`

	msgAwaitingPhoto   = "📸 Отправьте фото листа для проверки."
	msgCancelled       = "❌ Операция отменена. Отправьте /check для новой проверки."
	msgSendPhoto       = "📸 Отправьте /check, а затем фото листа."
	msgUnknownCommand  = "❓ Неизвестная команда. Используйте /help для справки."
	msgProcessing      = "⏳ Обрабатываю изображение..."
	msgBusy            = "⏳ Предыдущее фото ещё обрабатывается."
	msgProcessingError = "⚠️ Не удалось обработать изображение. Попробуйте сделать другое фото."
	msgSubscribed      = "🔔 Вы подписаны на уведомления о решениях."
	msgUnsubscribed    = "🔕 Уведомления отключены."
	msgNoLogs          = "📭 Журнал пуст."
	msgLogsError       = "⚠️ Не удалось прочитать журнал."

	// logsInChat сколько записей журнала показывать в чате
	logsInChat = 5
)

// SprayService операции конвейера, доступные оператору в чате
type SprayService interface {
	HandleDetection(ctx context.Context, source string, image []byte) (*app.DetectionOutput, error)
	Poll() entity.Command
	Logs(ctx context.Context, last int) ([]entity.LogEntry, error)
}

// Bot представляет Telegram-бота оператора
type Bot struct {
	api       *tgbotapi.BotAPI
	operators *app.OperatorService
	spray     SprayService
	log       *slog.Logger
	h         *http.Client
}

// NewBot создаёт нового бота
func NewBot(token string, operators *app.OperatorService, spray SprayService, log *slog.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	return newBot(api, operators, spray, log), nil
}

func newBot(api *tgbotapi.BotAPI, operators *app.OperatorService, spray SprayService, log *slog.Logger) *Bot {
	if log == nil {
		log = slog.Default()
	}
	log.Info("telegram authorized", slog.String("account", api.Self.UserName))

	return &Bot{
		api:       api,
		operators: operators,
		spray:     spray,
		log:       log,
		h:         &http.Client{Timeout: 30 * time.Second},
	}
}

// Run запускает основной цикл обработки сообщений до отмены контекста
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	defer b.api.StopReceivingUpdates()

	for {
		select {
		case <-ctx.Done():
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message == nil {
				continue
			}
			b.handleMessage(ctx, update.Message)
		}
	}
}

// OnDecision рассылает решение подписчикам, не блокируя конвейер
func (b *Bot) OnDecision(ctx context.Context, entry entity.LogEntry) {
	text := formatDecision(entry)
	go func() {
		// Контекст запроса может закончиться раньше рассылки
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
		defer cancel()

		subscribers, err := b.operators.Subscribers(ctx)
		if err != nil {
			b.log.Warn("list subscribers", slog.Any("error", err))
			return
		}
		for _, op := range subscribers {
			b.sendMessage(op.ChatID, text)
		}
	}()
}

// handleMessage обрабатывает входящее сообщение
func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.From == nil {
		return
	}
	op, err := b.operators.Get(ctx, msg.From.ID, msg.Chat.ID)
	if err != nil {
		b.log.Error("get operator", slog.Any("error", err))
		return
	}

	// Обработка команд
	if msg.IsCommand() {
		b.handleCommand(ctx, msg, op)
		return
	}

	// Обработка фото
	if len(msg.Photo) > 0 {
		b.handlePhoto(ctx, msg, op)
		return
	}

	// Текстовое сообщение (не команда)
	b.sendMessage(msg.Chat.ID, msgSendPhoto)
}

// handleCommand обрабатывает команды бота
func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message, op *entity.Operator) {
	chatID := msg.Chat.ID

	switch msg.Command() {
	case "start":
		b.setState(ctx, op, entity.StateIdle)
		b.sendMessage(chatID, msgStart)

	case "help":
		b.sendMessage(chatID, msgHelp)

	case "check":
		b.setState(ctx, op, entity.StateAwaitingPhoto)
		b.sendMessage(chatID, msgAwaitingPhoto)

	case "cancel":
		b.setState(ctx, op, entity.StateIdle)
		b.sendMessage(chatID, msgCancelled)

	case "status":
		b.sendMessage(chatID, formatCommand(b.spray.Poll()))

	case "logs":
		entries, err := b.spray.Logs(ctx, logsInChat)
		if err != nil {
			b.log.Error("read logs", slog.Any("error", err))
			b.sendMessage(chatID, msgLogsError)
			return
		}
		b.sendMessage(chatID, formatLogs(entries))

	case "subscribe":
		if _, err := b.operators.SetSubscribed(ctx, op.ID, chatID, true); err != nil {
			b.log.Error("subscribe", slog.Any("error", err))
			return
		}
		b.sendMessage(chatID, msgSubscribed)

	case "unsubscribe":
		if _, err := b.operators.SetSubscribed(ctx, op.ID, chatID, false); err != nil {
			b.log.Error("unsubscribe", slog.Any("error", err))
			return
		}
		b.sendMessage(chatID, msgUnsubscribed)

	default:
		b.sendMessage(chatID, msgUnknownCommand)
	}
}

// handlePhoto обрабатывает входящее фото
func (b *Bot) handlePhoto(ctx context.Context, msg *tgbotapi.Message, op *entity.Operator) {
	switch op.State {
	case entity.StateProcessing:
		b.sendMessage(msg.Chat.ID, msgBusy)
		return
	case entity.StateIdle:
		b.sendMessage(msg.Chat.ID, msgSendPhoto)
		return
	}

	b.setState(ctx, op, entity.StateProcessing)
	defer b.setState(ctx, op, entity.StateIdle)

	b.sendMessage(msg.Chat.ID, msgProcessing)

	// Получаем файл с максимальным разрешением
	photo := msg.Photo[len(msg.Photo)-1]

	imageData, err := b.downloadFile(ctx, photo.FileID)
	if err != nil {
		b.log.Error("download photo", slog.Any("error", err))
		b.sendMessage(msg.Chat.ID, msgProcessingError)
		return
	}

	out, err := b.spray.HandleDetection(ctx, entity.SourceTelegram, imageData)
	if err != nil && out == nil {
		b.log.Warn("detection failed", slog.Any("error", err))
		b.sendMessage(msg.Chat.ID, formatError(err))
		return
	}

	text := formatDetection(out)
	if err != nil {
		text += "\n\n" + formatError(err)
	}
	b.sendMessage(msg.Chat.ID, text)
}

func (b *Bot) setState(ctx context.Context, op *entity.Operator, state entity.OperatorState) {
	if _, err := b.operators.SetState(ctx, op.ID, op.ChatID, state); err != nil {
		b.log.Error("save operator", slog.Any("error", err))
		return
	}
	op.SetState(state)
}

// downloadFile скачивает файл из Telegram
func (b *Bot) downloadFile(ctx context.Context, fileID string) ([]byte, error) {
	file, err := b.api.GetFile(tgbotapi.FileConfig{FileID: fileID})
	if err != nil {
		return nil, fmt.Errorf("get file: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, file.Link(b.api.Token), nil)
	if err != nil {
		return nil, err
	}
	resp, err := b.h.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download file: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	return data, nil
}

// sendMessage отправляет текстовое сообщение
func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		b.log.Warn("send message", slog.Int64("chat_id", chatID), slog.Any("error", err))
	}
}

var _ port.DecisionListener = (*Bot)(nil)
