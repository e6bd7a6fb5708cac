package telegram

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	app "tryon-bot/internal/application"
	"tryon-bot/internal/domain/entity"
	"tryon-bot/internal/raster"
)

const (
	msgStart = `👋 Привет! Я бот виртуальной примерки одежды.

📸 Пришлите селфи, затем фото вещи, и я покажу, как она на вас сидит. Лицо остаётся вашим.

📋 Команды:
/tryon — начать примерку
/mode — режим: full_body или inpainting
/help — справка
/cancel — отменить текущую операцию`

	msgHelp = `ℹ️ Как пользоваться ботом:

1️⃣ Отправьте /tryon
2️⃣ Пришлите селфи в полный рост или по пояс
3️⃣ Пришлите фото одежды
4️⃣ Получите результат примерки

💡 Рекомендации:
• Лицо должно быть хорошо видно
• Снимайте при хорошем освещении
• Одежда на однотонном фоне распознаётся лучше

📋 Команды:
/tryon — начать примерку
/mode inpainting — менять только одежду по маске
/cancel — отменить операцию`

	msgAwaitingSelfie  = "📸 Отправьте селфи."
	msgAwaitingGarment = "👕 Теперь отправьте фото одежды."
	msgCancelled       = "❌ Операция отменена. Отправьте /tryon для новой примерки."
	msgSendCommand     = "📋 Отправьте /tryon, чтобы начать примерку."
	msgUnknownCommand  = "❓ Неизвестная команда. Используйте /help для справки."
	msgProcessing      = "⏳ Примеряю, это может занять до пары минут..."
	msgBusy            = "⏳ Предыдущая примерка ещё идёт, подождите."
	msgProcessingError = "⚠️ Не удалось выполнить примерку. Попробуйте другие фото."
	msgBadMode         = "Режимы: /mode full_body или /mode inpainting"
)

// Bot представляет Telegram-бота
type Bot struct {
	api      *tgbotapi.BotAPI
	users    *app.UserService
	sessions *app.TryOnSessionService
	client   *http.Client
	log      *zap.Logger
}

// NewBot создаёт нового бота
func NewBot(token string, users *app.UserService, sessions *app.TryOnSessionService, log *zap.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}

	log.Info("telegram authorized", zap.String("account", api.Self.UserName))

	return &Bot{
		api:      api,
		users:    users,
		sessions: sessions,
		client:   &http.Client{Timeout: 60 * time.Second},
		log:      log,
	}, nil
}

// Run основной цикл обработки сообщений, завершается по отмене ctx
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message == nil {
				continue
			}
			go b.handleMessage(ctx, update.Message)
		}
	}
}

// handleMessage обрабатывает входящее сообщение
func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	user, err := b.users.Get(ctx, msg.From.ID, msg.Chat.ID)
	if err != nil {
		b.log.Error("get user", zap.Int64("user_id", msg.From.ID), zap.Error(err))
		return
	}

	if msg.IsCommand() {
		b.handleCommand(ctx, msg, user)
		return
	}

	if len(msg.Photo) > 0 {
		b.handlePhoto(ctx, msg, user)
		return
	}

	b.sendMessage(msg.Chat.ID, replyFor(user.State))
}

// handleCommand обрабатывает команды бота
func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message, user *entity.User) {
	chatID := msg.Chat.ID

	switch msg.Command() {
	case "start":
		_, _ = b.sessions.Cancel(ctx, user.ID, chatID)
		b.sendMessage(chatID, msgStart)

	case "help":
		b.sendMessage(chatID, msgHelp)

	case "tryon":
		if _, err := b.sessions.Begin(ctx, user.ID, chatID); err != nil {
			b.log.Error("begin try-on", zap.Error(err))
			return
		}
		b.sendMessage(chatID, msgAwaitingSelfie)

	case "mode":
		mode, ok := parseMode(msg.CommandArguments())
		if !ok {
			b.sendMessage(chatID, fmt.Sprintf("%s\nСейчас: %s", msgBadMode, user.Mode))
			return
		}
		if _, err := b.users.SetMode(ctx, user.ID, chatID, mode); err != nil {
			b.log.Error("set mode", zap.Error(err))
			return
		}
		b.sendMessage(chatID, "✅ Режим: "+string(mode))

	case "cancel":
		_, _ = b.sessions.Cancel(ctx, user.ID, chatID)
		b.sendMessage(chatID, msgCancelled)

	default:
		b.sendMessage(chatID, msgUnknownCommand)
	}
}

// handlePhoto селфи или одежда в зависимости от шага диалога
func (b *Bot) handlePhoto(ctx context.Context, msg *tgbotapi.Message, user *entity.User) {
	chatID := msg.Chat.ID
	if user.State != entity.StateAwaitingSelfie && user.State != entity.StateAwaitingGarment {
		b.sendMessage(chatID, replyFor(user.State))
		return
	}

	// Получаем файл с максимальным разрешением
	photo := msg.Photo[len(msg.Photo)-1]
	data, err := b.downloadFile(ctx, photo.FileID)
	if err != nil {
		b.log.Error("download photo", zap.Error(err))
		b.sendMessage(chatID, msgProcessingError)
		return
	}

	if user.State == entity.StateAwaitingSelfie {
		if _, err := b.sessions.AcceptSelfie(ctx, user.ID, chatID, data); err != nil {
			b.log.Error("accept selfie", zap.Error(err))
			b.sendMessage(chatID, msgProcessingError)
			return
		}
		b.sendMessage(chatID, msgAwaitingGarment)
		return
	}

	b.sendMessage(chatID, msgProcessing)
	out, err := b.sessions.AcceptGarment(ctx, user.ID, chatID, data)
	if err != nil {
		b.log.Warn("try-on failed", zap.Int64("user_id", user.ID), zap.Error(err))
		if errors.Is(err, app.ErrSelfieMissing) {
			b.sendMessage(chatID, msgSendCommand)
			return
		}
		b.sendMessage(chatID, msgProcessingError)
		return
	}

	result, _, err := raster.DecodeBase64(out.Image)
	if err != nil {
		b.log.Error("decode result", zap.String("run_id", out.RunID), zap.Error(err))
		b.sendMessage(chatID, msgProcessingError)
		return
	}

	reply := tgbotapi.NewPhoto(chatID, tgbotapi.FileBytes{Name: "tryon.png", Bytes: result})
	reply.Caption = caption(out)
	if _, err := b.api.Send(reply); err != nil {
		b.log.Error("send result", zap.String("run_id", out.RunID), zap.Error(err))
	}
}

// downloadFile скачивает файл из Telegram
func (b *Bot) downloadFile(ctx context.Context, fileID string) ([]byte, error) {
	file, err := b.api.GetFile(tgbotapi.FileConfig{FileID: fileID})
	if err != nil {
		return nil, fmt.Errorf("get file: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, file.Link(b.api.Token), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	resp, err := b.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download file: %w", err)
	}
	defer resp.Body.Close()

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
		b.log.Error("send message", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

func replyFor(state entity.UserState) string {
	switch state {
	case entity.StateAwaitingSelfie:
		return msgAwaitingSelfie
	case entity.StateAwaitingGarment:
		return msgAwaitingGarment
	case entity.StateProcessing:
		return msgBusy
	default:
		return msgSendCommand
	}
}

func parseMode(arg string) (entity.Mode, bool) {
	switch entity.Mode(strings.ToLower(strings.TrimSpace(arg))) {
	case entity.ModeFullBody, "full":
		return entity.ModeFullBody, true
	case entity.ModeInpainting, "mask":
		return entity.ModeInpainting, true
	}
	return "", false
}

// caption подпись к результату
func caption(out *app.TryOnOutput) string {
	var b strings.Builder
	fmt.Fprintf(&b, "✨ Готово (%s)", out.Mode)
	if out.PostProcessing != nil {
		pp := out.PostProcessing
		fmt.Fprintf(&b, "\n🙂 Лицо восстановлено: %s, сходство %.0f%%", pp.Method, pp.Similarity*100)
	}
	if !out.GenerationSucceeded {
		b.WriteString("\n⚠️ Качество генерации ниже обычного")
	}
	if out.FallbackRegion {
		b.WriteString("\n⚠️ Лицо не найдено автоматически")
	}
	return b.String()
}
