package telegram

import (
	"context"
	"errors"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"bibliotech-bot/internal/application"
	"bibliotech-bot/internal/config"
	"bibliotech-bot/internal/domain/ports/adapter"
)

// RealTelegramBotAdapter implements adapter.MessageSender using tgbotapi with
// concurrent polling. Replies are plain Markdown.
type RealTelegramBotAdapter struct {
	bot    *tgbotapi.BotAPI
	cfg    *config.BotConfig
	facade *application.BotFacade
	log    *zerolog.Logger

	// updateWorkers is how many goroutines will concurrently process updates.
	updateWorkers int
	// cancelPolling cancels polling when called
	cancelPolling context.CancelFunc
}

var _ adapter.MessageSender = (*RealTelegramBotAdapter)(nil)

// categoryCallbackPrefix tags inline-button data carrying a category name.
const categoryCallbackPrefix = "cat_"

// browseCategories pairs each button label with the catalog category it
// queries. Two buttons per keyboard row.
var browseCategories = [][2]string{
	{"📖 Novela", "Novela"},
	{"🚀 Ciencia Ficción", "Ciencia Ficción"},
	{"🧙 Fantasía", "Fantasía"},
	{"💻 Tecnología", "Tecnología"},
	{"📜 Historia", "Historia"},
	{"👤 Biografía", "Biografía"},
}

func categoryKeyboard() tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for i := 0; i < len(browseCategories); i += 2 {
		row := []tgbotapi.InlineKeyboardButton{
			tgbotapi.NewInlineKeyboardButtonData(browseCategories[i][0], categoryCallbackPrefix+browseCategories[i][1]),
		}
		if i+1 < len(browseCategories) {
			row = append(row, tgbotapi.NewInlineKeyboardButtonData(browseCategories[i+1][0], categoryCallbackPrefix+browseCategories[i+1][1]))
		}
		rows = append(rows, row)
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// NewRealTelegramBotAdapter creates a new bot adapter.
// updateWorkers controls how many updates are handled concurrently.
func NewRealTelegramBotAdapter(cfg *config.BotConfig, facade *application.BotFacade, updateWorkers int, logger *zerolog.Logger) (*RealTelegramBotAdapter, error) {
	if cfg == nil {
		return nil, errors.New("bot config is nil")
	}
	if facade == nil {
		return nil, errors.New("bot facade is nil")
	}
	if updateWorkers <= 0 {
		updateWorkers = 5
	}

	bot, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, err
	}

	componentLogger := logger.With().Str("component", "telegram").Logger()
	return &RealTelegramBotAdapter{
		bot:           bot,
		cfg:           cfg,
		facade:        facade,
		log:           &componentLogger,
		updateWorkers: updateWorkers,
	}, nil
}

// StartPolling begins polling Telegram for updates concurrently.
// It runs until ctx is canceled.
func (r *RealTelegramBotAdapter) StartPolling(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := r.bot.GetUpdatesChan(u)

	ctx, cancel := context.WithCancel(ctx)
	r.cancelPolling = cancel

	var wg sync.WaitGroup
	updateChan := make(chan tgbotapi.Update, 100)

	// Start worker goroutines to process updates concurrently
	for i := 0; i < r.updateWorkers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for {
				select {
				case update, ok := <-updateChan:
					if !ok {
						return
					}
					if err := r.handleUpdate(ctx, update); err != nil {
						r.log.Error().Err(err).Int("worker", workerID).Msg("error handling update")
					}
				case <-ctx.Done():
					return
				}
			}
		}(i + 1)
	}

	// Dispatcher goroutine: feed updates into updateChan
	go func() {
		defer close(updateChan)
		for {
			select {
			case update := <-updates:
				select {
				case updateChan <- update:
				case <-ctx.Done():
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	<-ctx.Done()
	r.bot.StopReceivingUpdates()
	wg.Wait()
	return nil
}

// StopPolling stops the polling loop gracefully.
func (r *RealTelegramBotAdapter) StopPolling() {
	if r.cancelPolling != nil {
		r.cancelPolling()
	}
}

// SendMessage sends a Markdown text message to the given chat.
func (r *RealTelegramBotAdapter) SendMessage(_ context.Context, chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	_, err := r.bot.Send(msg)
	return err
}

// handleUpdate processes a single Telegram update.
func (r *RealTelegramBotAdapter) handleUpdate(ctx context.Context, update tgbotapi.Update) error {
	if update.CallbackQuery != nil {
		return r.handleCallback(ctx, update.CallbackQuery)
	}
	if update.Message == nil {
		return nil
	}
	msg := update.Message
	chatID := msg.Chat.ID

	text := strings.TrimSpace(msg.Text)
	if len(text) > 0 && text[0] == '/' {
		return r.handleCommand(ctx, msg)
	}
	return r.SendMessage(ctx, chatID, r.facade.HandleText(ctx, text))
}

func (r *RealTelegramBotAdapter) handleCommand(ctx context.Context, msg *tgbotapi.Message) error {
	// /categorias replies with the browse buttons, not plain text.
	if msg.Command() == "categorias" {
		reply := tgbotapi.NewMessage(msg.Chat.ID, r.facade.HandleCategories())
		reply.ParseMode = tgbotapi.ModeMarkdown
		reply.ReplyMarkup = categoryKeyboard()
		_, err := r.bot.Send(reply)
		return err
	}
	return r.SendMessage(ctx, msg.Chat.ID, r.commandReply(ctx, msg))
}

// handleCallback answers an inline-button press and swaps the prompt for
// the category listing.
func (r *RealTelegramBotAdapter) handleCallback(ctx context.Context, q *tgbotapi.CallbackQuery) error {
	if _, err := r.bot.Request(tgbotapi.NewCallback(q.ID, "")); err != nil {
		r.log.Warn().Err(err).Msg("answering callback failed")
	}
	reply, ok := r.callbackReply(ctx, q.Data)
	if !ok || q.Message == nil {
		return nil
	}
	edit := tgbotapi.NewEditMessageText(q.Message.Chat.ID, q.Message.MessageID, reply)
	edit.ParseMode = tgbotapi.ModeMarkdown
	_, err := r.bot.Send(edit)
	return err
}

// callbackReply resolves inline-button data to a reply body. Unknown data
// is ignored.
func (r *RealTelegramBotAdapter) callbackReply(ctx context.Context, data string) (string, bool) {
	if !strings.HasPrefix(data, categoryCallbackPrefix) {
		return "", false
	}
	category := strings.TrimPrefix(data, categoryCallbackPrefix)
	r.log.Debug().Str("category", category).Msg("category browse")
	return r.facade.HandleCategory(ctx, category), true
}

// commandReply routes a command message to the facade and returns the reply text.
func (r *RealTelegramBotAdapter) commandReply(ctx context.Context, msg *tgbotapi.Message) string {
	chatID := msg.Chat.ID
	firstName := ""
	if msg.From != nil {
		firstName = msg.From.FirstName
	}

	cmd := msg.Command()
	args := strings.TrimSpace(msg.CommandArguments())
	r.log.Debug().Int64("chat_id", chatID).Str("command", cmd).Msg("command received")

	var reply string
	switch cmd {
	case "start":
		reply = r.facade.HandleStart(firstName, chatID)
	case "ayuda", "help":
		reply = r.facade.HandleHelp(ctx)
	case "id":
		reply = r.facade.HandleID(chatID, msg.Chat.Type)
	case "catalogo":
		reply = r.facade.HandleCatalog(ctx)
	case "buscar":
		reply = r.facade.HandleSearch(ctx, args)
	case "recomendar":
		reply = r.facade.HandleRecommend(ctx)
	case "suscribir":
		reply = r.facade.HandleSubscribe(ctx, chatID, firstName)
	case "desuscribir":
		reply = r.facade.HandleUnsubscribe(ctx, chatID)
	case "about":
		reply = r.facade.HandleAbout()
	default:
		reply = "❓ Comando no reconocido. Escribe /ayuda para ver los comandos."
	}
	return reply
}
