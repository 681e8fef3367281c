package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"riddlebot/internal/model"
	"riddlebot/internal/service"
	"riddlebot/pkg/logger"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

const leaderboardLimit = 10

// AnswerMatcher routes group replies into the answer-matching core.
type AnswerMatcher interface {
	HandleReply(ctx context.Context, chatID int64, messageID, replyToID int, userID int64, username, text string) error
}

// Registry is the chat/user bookkeeping the transport maintains.
type Registry interface {
	UpsertUser(ctx context.Context, user *model.User) error
	UpsertChat(ctx context.Context, chat *model.Chat) error
	ListChats(ctx context.Context) ([]*model.Chat, error)
	DeleteChat(ctx context.Context, chatID int64) error
	CountActiveRiddles(ctx context.Context, chatID int64) (int, error)
}

// Bot is the long-polling Telegram front end. All game semantics live in the
// services; this layer parses updates and renders responses.
type Bot struct {
	api      *tgbotapi.BotAPI
	adapter  *Adapter
	matcher  AnswerMatcher
	scores   service.ScoreServiceI
	registry Registry
	wizard   *Wizard
}

func New(api *tgbotapi.BotAPI, adapter *Adapter, matcher AnswerMatcher, scores service.ScoreServiceI, registry Registry, wizard *Wizard) *Bot {
	return &Bot{
		api:      api,
		adapter:  adapter,
		matcher:  matcher,
		scores:   scores,
		registry: registry,
		wizard:   wizard,
	}
}

// Run consumes updates until the context is cancelled.
func (b *Bot) Run(ctx context.Context) {
	log := logger.Logger()

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updates := b.api.GetUpdatesChan(u)

	log.Info("bot started", zap.String("username", b.api.Self.UserName))

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			log.Info("bot stopped")
			return
		case update := <-updates:
			b.handleUpdate(ctx, update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.CallbackQuery != nil:
		b.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil:
		b.handleMessage(ctx, update.Message)
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if len(msg.NewChatMembers) > 0 {
		b.handleNewMembers(ctx, msg)
		return
	}

	if msg.Chat.IsPrivate() {
		b.handlePrivate(ctx, msg)
		return
	}

	if msg.Chat.IsGroup() || msg.Chat.IsSuperGroup() {
		b.handleGroup(ctx, msg)
	}
}

func (b *Bot) handlePrivate(ctx context.Context, msg *tgbotapi.Message) {
	log := logger.Logger()
	userID := msg.From.ID

	switch msg.Command() {
	case "start":
		username := msg.From.UserName
		if username == "" {
			username = "NoUsername"
		}
		if err := b.registry.UpsertUser(ctx, &model.User{UserID: userID, Username: username}); err != nil {
			log.Error("failed to register user", zap.Int64("user_id", userID), zap.Error(err))
		}
		b.send(userID, textWelcome, nil)
		b.sendMenu(userID)
		return
	case "top_all":
		entries, err := b.scores.TopGlobal(ctx, leaderboardLimit)
		if err != nil {
			log.Error("failed to load global leaderboard", zap.Error(err))
			return
		}
		b.send(userID, leaderboardText(
			"🏆 *Global top solvers* 🏆",
			entries,
			"🏆 *Global top solvers* 🏆\n\nNobody has solved a riddle yet! 😅\nBe the first! 🚀"), nil)
		return
	}

	// Mid-wizard, menu buttons are refused rather than silently eaten.
	if b.wizard.InProgress(userID) && isMenuButton(msg.Text) {
		b.send(userID, textWizardBusy, cancelKeyboard())
		return
	}

	if b.wizard.HandleMessage(ctx, userID, msg) {
		return
	}

	switch msg.Text {
	case menuAddToChat:
		link := fmt.Sprintf("https://t.me/%s?startgroup=true", b.api.Self.UserName)
		kb := tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonURL("✨ Add to a group", link)),
		)
		b.send(userID, "🎉 *Add me to a chat!* 🎉\n\nPress the button and pick a group! 👇\n*P.S.* Don't forget the admin rights! 😉", &kb)
	case menuChatList:
		b.sendChatList(ctx, userID)
	case menuStats:
		b.send(userID, textStatsMenu, statsMenuKeyboard())
	case menuHowTo:
		b.send(userID, textInstruction, nil)
	}
}

func (b *Bot) handleGroup(ctx context.Context, msg *tgbotapi.Message) {
	log := logger.Logger()
	chatID := msg.Chat.ID

	switch msg.Command() {
	case "riddle":
		b.sendTo(chatID, textGoPrivate)
		return
	case "riddlekings":
		entries, err := b.scores.TopForChat(ctx, chatID, leaderboardLimit)
		if err != nil {
			log.Error("failed to load chat leaderboard", zap.Int64("chat_id", chatID), zap.Error(err))
			return
		}
		b.sendTo(chatID, leaderboardText(
			fmt.Sprintf("🏆 *Top solvers in %s* 🏆", msg.Chat.Title),
			entries,
			"🏆 *Top solvers* 🏆\n\nNo riddle masters here yet! 😮\nBe the first! 💪"))
		return
	}

	if msg.ReplyToMessage == nil || msg.Text == "" {
		return
	}

	err := b.matcher.HandleReply(ctx, chatID, msg.MessageID, msg.ReplyToMessage.MessageID,
		msg.From.ID, msg.From.UserName, msg.Text)
	if err != nil {
		log.Error("failed to process reply",
			zap.Int64("chat_id", chatID), zap.Int("message_id", msg.MessageID), zap.Error(err))
	}
}

func (b *Bot) handleNewMembers(ctx context.Context, msg *tgbotapi.Message) {
	log := logger.Logger()

	for _, member := range msg.NewChatMembers {
		if member.ID != b.api.Self.ID {
			continue
		}
		chatID := msg.Chat.ID
		count, err := b.adapter.MemberCount(chatID)
		if err != nil {
			log.Error("failed to get member count", zap.Int64("chat_id", chatID), zap.Error(err))
		}
		err = b.registry.UpsertChat(ctx, &model.Chat{
			ChatID:       chatID,
			Title:        msg.Chat.Title,
			MembersCount: count,
		})
		if err != nil {
			log.Error("failed to register chat", zap.Int64("chat_id", chatID), zap.Error(err))
			continue
		}
		log.Info("bot added to chat", zap.Int64("chat_id", chatID), zap.String("title", msg.Chat.Title))
		b.sendTo(chatID, textJoinedChat)
	}
}

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	log := logger.Logger()
	userID := cb.From.ID

	// Acknowledge the button press regardless of the outcome.
	if _, err := b.api.Request(tgbotapi.NewCallback(cb.ID, "")); err != nil {
		log.Error("failed to ack callback", zap.Error(err))
	}

	data := cb.Data
	switch {
	case strings.HasPrefix(data, callbackChatPrefix):
		chatID, err := strconv.ParseInt(strings.TrimPrefix(data, callbackChatPrefix), 10, 64)
		if err != nil {
			log.Error("malformed chat callback", zap.String("data", data), zap.Error(err))
			return
		}
		if !b.adapter.IsAdmin(userID, chatID) {
			b.send(userID, textNotAdmin, nil)
			return
		}
		b.wizard.Start(userID, chatID)
	case data == callbackStatsGlobal:
		stats, err := b.scores.Stats(ctx)
		if err != nil {
			log.Error("failed to load stats", zap.Error(err))
			return
		}
		b.send(userID, globalStatsText(stats), nil)
	case data == callbackStatsChats:
		stats, err := b.scores.Stats(ctx)
		if err != nil {
			log.Error("failed to load stats", zap.Error(err))
			return
		}
		b.send(userID, chatStatsText(stats), nil)
	default:
		if !b.wizard.HandleCallback(ctx, userID, data) {
			log.Info("unhandled callback", zap.String("data", data))
		}
	}
}

// sendChatList refreshes chat metadata, prunes chats the bot can no longer
// reach, and offers the ones where the user is an admin.
func (b *Bot) sendChatList(ctx context.Context, userID int64) {
	log := logger.Logger()

	b.refreshChats(ctx)

	chats, err := b.registry.ListChats(ctx)
	if err != nil {
		log.Error("failed to list chats", zap.Error(err))
		return
	}
	if len(chats) == 0 {
		b.send(userID, textNoChats, nil)
		return
	}

	var rows [][]tgbotapi.InlineKeyboardButton
	for _, chat := range chats {
		if !b.adapter.IsAdmin(userID, chat.ChatID) {
			continue
		}
		active, err := b.registry.CountActiveRiddles(ctx, chat.ChatID)
		if err != nil {
			log.Error("failed to count active riddles", zap.Int64("chat_id", chat.ChatID), zap.Error(err))
		}
		label := fmt.Sprintf("💬 %s\n👥 %d | 🧩 %d", chat.Title, chat.MembersCount, active)
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, fmt.Sprintf("%s%d", callbackChatPrefix, chat.ChatID))))
	}

	if len(rows) == 0 {
		b.send(userID, textNoAdminChats, nil)
		return
	}

	kb := tgbotapi.NewInlineKeyboardMarkup(rows...)
	b.send(userID, textChatsHeader, &kb)
}

// refreshChats re-reads title and member count for every known chat and drops
// the ones that are gone, together with their riddles.
func (b *Bot) refreshChats(ctx context.Context) {
	log := logger.Logger()

	chats, err := b.registry.ListChats(ctx)
	if err != nil {
		log.Error("failed to list chats for refresh", zap.Error(err))
		return
	}

	for _, chat := range chats {
		title, err := b.adapter.ChatTitle(chat.ChatID)
		if err != nil {
			log.Warn("chat unreachable, pruning", zap.Int64("chat_id", chat.ChatID), zap.Error(err))
			if err := b.registry.DeleteChat(ctx, chat.ChatID); err != nil {
				log.Error("failed to prune chat", zap.Int64("chat_id", chat.ChatID), zap.Error(err))
			}
			continue
		}
		count, err := b.adapter.MemberCount(chat.ChatID)
		if err != nil {
			log.Error("failed to get member count", zap.Int64("chat_id", chat.ChatID), zap.Error(err))
			continue
		}
		err = b.registry.UpsertChat(ctx, &model.Chat{ChatID: chat.ChatID, Title: title, MembersCount: count})
		if err != nil {
			log.Error("failed to update chat", zap.Int64("chat_id", chat.ChatID), zap.Error(err))
		}
	}
}

func isMenuButton(text string) bool {
	switch text {
	case menuAddToChat, menuChatList, menuStats, menuHowTo:
		return true
	}
	return false
}

func (b *Bot) sendMenu(userID int64) {
	msg := tgbotapi.NewMessage(userID, textMenu)
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.ReplyMarkup = mainMenuKeyboard()
	if _, err := b.api.Send(msg); err != nil {
		logger.Logger().Error("failed to send menu", zap.Int64("user_id", userID), zap.Error(err))
	}
}

func (b *Bot) send(userID int64, text string, keyboard *tgbotapi.InlineKeyboardMarkup) {
	msg := tgbotapi.NewMessage(userID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	if keyboard != nil {
		msg.ReplyMarkup = keyboard
	}
	if _, err := b.api.Send(msg); err != nil {
		logger.Logger().Error("failed to send message", zap.Int64("user_id", userID), zap.Error(err))
	}
}

func (b *Bot) sendTo(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	if _, err := b.api.Send(msg); err != nil {
		logger.Logger().Error("failed to send message", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}
