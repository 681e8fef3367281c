package bot

import (
	"context"
	"strings"

	"riddlebot/internal/service"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Adapter implements service.Platform on top of the Bot API. Telegram calls
// carry no context; the ctx parameters keep the contract uniform with the
// rest of the services.
type Adapter struct {
	api *tgbotapi.BotAPI
}

func NewAdapter(api *tgbotapi.BotAPI) *Adapter {
	return &Adapter{api: api}
}

func (a *Adapter) SendMessage(_ context.Context, chatID int64, text string) (int, error) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	sent, err := a.api.Send(msg)
	if err != nil {
		return 0, err
	}
	return sent.MessageID, nil
}

func (a *Adapter) SendPhoto(_ context.Context, chatID int64, photoID, caption string) (int, error) {
	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileID(photoID))
	photo.Caption = caption
	photo.ParseMode = tgbotapi.ModeMarkdown
	sent, err := a.api.Send(photo)
	if err != nil {
		return 0, err
	}
	return sent.MessageID, nil
}

func (a *Adapter) EditMessage(_ context.Context, chatID int64, messageID int, text string) error {
	edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
	edit.ParseMode = tgbotapi.ModeMarkdown
	_, err := a.api.Send(edit)
	if err != nil && strings.Contains(err.Error(), "message to edit not found") {
		return service.ErrMessageNotFound
	}
	return err
}

func (a *Adapter) DeleteMessage(_ context.Context, chatID int64, messageID int) error {
	_, err := a.api.Request(tgbotapi.NewDeleteMessage(chatID, messageID))
	return err
}

func (a *Adapter) Reply(_ context.Context, chatID int64, replyToID int, text string) (int, error) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.ReplyToMessageID = replyToID
	sent, err := a.api.Send(msg)
	if err != nil {
		return 0, err
	}
	return sent.MessageID, nil
}

// IsAdmin reports whether the user is an administrator or the owner of the
// chat. Lookup failures count as "not an admin".
func (a *Adapter) IsAdmin(userID, chatID int64) bool {
	member, err := a.api.GetChatMember(tgbotapi.GetChatMemberConfig{
		ChatConfigWithUser: tgbotapi.ChatConfigWithUser{ChatID: chatID, UserID: userID},
	})
	if err != nil {
		return false
	}
	return member.Status == "administrator" || member.Status == "creator"
}

func (a *Adapter) ChatTitle(chatID int64) (string, error) {
	chat, err := a.api.GetChat(tgbotapi.ChatInfoConfig{
		ChatConfig: tgbotapi.ChatConfig{ChatID: chatID},
	})
	if err != nil {
		return "", err
	}
	return chat.Title, nil
}

func (a *Adapter) MemberCount(chatID int64) (int, error) {
	return a.api.GetChatMembersCount(tgbotapi.ChatMemberCountConfig{
		ChatConfig: tgbotapi.ChatConfig{ChatID: chatID},
	})
}
