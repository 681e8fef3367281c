package bot

import (
	"fmt"
	"strings"

	"riddlebot/internal/model"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Callback payloads. Wizard state lives in the session, so buttons carry
// plain action tags instead of encoding routing data.
const (
	callbackCancel    = "wiz_cancel"
	callbackPhotoSkip = "wiz_photo_skip"
	callbackTimeSet   = "wiz_time_set"
	callbackTimeNone  = "wiz_time_none"
	callbackHintAdd   = "wiz_hint_add"
	callbackHintSkip  = "wiz_hint_skip"
	callbackSend      = "wiz_send"

	callbackStatsGlobal = "stats_global"
	callbackStatsChats  = "stats_chats"

	callbackChatPrefix = "chat_"
)

// Main menu reply-keyboard labels.
const (
	menuAddToChat = "➕ Add me to a chat"
	menuChatList  = "📜 My chats"
	menuStats     = "📊 Bot statistics"
	menuHowTo     = "ℹ️ How to use"
)

const (
	textWelcome = "👋 *Hi!* 👋\n\nI'm the riddle bot! 🎉\nAdd me to a chat and let's play! 🚀\n\n*P.S.* Give me admin rights so everything works! 😉"
	textMenu    = "✨ *Welcome!* ✨\n\nPick an action below 👇"

	textGoPrivate = "✨ *Want a riddle?* ✨\n\nOpen a private chat with me to create one! 👇"

	textPromptRiddle     = "🧩 *Let's make a riddle!* 🧩\n\nSend me the riddle text 👇"
	textPromptPhoto      = "📸 *Add a photo!* 📸\n\nAttach a picture or press 'Skip' 👇"
	textPhotoRequired    = "⛔ *Oops!* ⛔\n\nAttach a photo or press 'Skip'! 👇"
	textRiddleRequired   = "⛔ *Oops!* ⛔\n\nThe riddle can't be empty, send me the text! 👇"
	textPromptAnswer     = "🔑 *What's the answer?* 🔑\n\nSend the correct answer 👇"
	textAnswerRequired   = "⛔ *Oops!* ⛔\n\nThe answer can't be empty, send it as text! 👇"
	textPromptPrize      = "🎁 *What's the prize?* 🎁\n\nDescribe the winner's prize 👇"
	textPromptTimeChoice = "⏳ *Need a timer?* ⏳\n\nSet a time limit or leave it open-ended? 👇"
	textPromptTimeInput  = "⏳ *How many minutes?* ⏳\n\nEnter the limit (1440 max) 👇"
	textTimeNotANumber   = "⛔ *Oops!* ⛔\n\nEnter a number of minutes (e.g. 10)! 👇"
	textTimeClamped      = "⚠️ *Maximum!* ⚠️\n\nThe timer is capped at 1440 minutes (24 hours)."
	textPromptHintChoice = "💡 *Need a hint?* 💡\n\nWant to add a hint? 👇"
	textPromptHintText   = "💡 *Hint text* 💡\n\nWrite a hint for the players 👇"
	textPromptHintDelay  = "⏳ *When to show the hint?* ⏳\n\nAfter how many minutes ('0' for right away)? 👇"
	textDelayNotANumber  = "⛔ *Oops!* ⛔\n\nEnter a number of minutes or '0'! 👇"
	textUseButtons       = "⛔ *Hold on!* ⛔\n\nUse the buttons to continue, or cancel 👇"
	textRiddleSent       = "✨ *Done!* ✨\n\nThe riddle is live in the chat! 🎉"
	textCancelled        = "❌ *Cancelled!* ❌\n\nRiddle creation stopped! 😊"
	textWizardFailed     = "⛔ *Oops!* ⛔\n\nSomething went wrong. Please start over! 😅"
	textWizardBusy       = "⛔ *Hold on!* ⛔\n\nYou're in the middle of creating a riddle! Finish it or press 'Cancel' 👇"
	textNotAdmin         = "⛔ *Sorry!* ⛔\n\nOnly chat admins can create riddles. Ask an admin for rights! 😊"

	textNoChats      = "😔 *Nothing here!* 😔\n\nI'm not in any chat yet. Add me via '" + menuAddToChat + "'! 👇"
	textNoAdminChats = "😔 *Oops!* 😔\n\nYou're not an admin in any chat I'm in. Add me somewhere and get rights! 😉"
	textChatsHeader  = "🌟 *Your chats (where you're admin):* 🌟\n\nPick a chat for the riddle 👇"

	textStatsMenu = "📊 *Bot statistics* 📊\n\nChoose what to look at 👇"

	textJoinedChat = "🎉 *Hooray, I'm here!* 🎉\n\nGive me admin rights so I can work my riddle magic! ✨"

	textInstruction = "✨ *How to use the riddle bot* ✨\n\n" +
		"👇 *Quick guide:*\n" +
		"  1. *Add me to a chat* ➕ and give me admin rights.\n" +
		"  2. *Create a riddle* 🧩 In private: 'My chats', pick a chat, enter text, answer and prize.\n" +
		"  3. *Set a timer and a hint* ⏳ Optional time limit, optional hint.\n" +
		"  4. *Wait for guesses* 🎉 Members reply, and you'll see who wins!\n\n" +
		"🎯 *Chat commands:*\n" +
		"  - `/riddlekings` — top solvers here\n\n" +
		"🏆 *Ratings:*\n" +
		"  - In private: `/top_all` — global top\n\n" +
		"💡 *Hints:* appear after 80% of the time limit, or after your chosen delay when there is no limit.\n\n" +
		"🎉 Happy riddling! 🚀"
)

func cancelKeyboard() *tgbotapi.InlineKeyboardMarkup {
	kb := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("❌ Cancel", callbackCancel)),
	)
	return &kb
}

func photoKeyboard() *tgbotapi.InlineKeyboardMarkup {
	kb := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⏩ Skip", callbackPhotoSkip)),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("❌ Cancel", callbackCancel)),
	)
	return &kb
}

func timeKeyboard() *tgbotapi.InlineKeyboardMarkup {
	kb := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⏳ Set a limit", callbackTimeSet)),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⏰ No timer", callbackTimeNone)),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("❌ Cancel", callbackCancel)),
	)
	return &kb
}

func hintKeyboard() *tgbotapi.InlineKeyboardMarkup {
	kb := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("💡 Add a hint", callbackHintAdd)),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⏩ Skip", callbackHintSkip)),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("❌ Cancel", callbackCancel)),
	)
	return &kb
}

func previewKeyboard() *tgbotapi.InlineKeyboardMarkup {
	kb := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Send to chat", callbackSend)),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("❌ Cancel", callbackCancel)),
	)
	return &kb
}

func mainMenuKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(menuAddToChat),
			tgbotapi.NewKeyboardButton(menuChatList)),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(menuStats),
			tgbotapi.NewKeyboardButton(menuHowTo)),
	)
	kb.ResizeKeyboard = true
	return kb
}

func statsMenuKeyboard() *tgbotapi.InlineKeyboardMarkup {
	kb := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📈 Overall", callbackStatsGlobal)),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("👥 Chats and members", callbackStatsChats)),
	)
	return &kb
}

func leaderboardText(header string, entries []*model.LeaderboardEntry, emptyText string) string {
	if len(entries) == 0 {
		return emptyText
	}
	var b strings.Builder
	b.WriteString(header + "\n\n")
	for i, e := range entries {
		name := e.Username
		if name == "" {
			name = fmt.Sprintf("id%d", e.UserID)
		}
		fmt.Fprintf(&b, "%d. @%s — %d points 🌟\n", i+1, name, e.Points)
	}
	return b.String()
}

func globalStatsText(stats *model.BotStats) string {
	solvedPct := 0.0
	if stats.TotalRiddles > 0 {
		solvedPct = float64(stats.FinishedRiddles) / float64(stats.TotalRiddles) * 100
	}
	return fmt.Sprintf(
		"📈 *Overall statistics* 📈\n\n✨ Riddles created: %d\n✅ Finished: %d (%.1f%%)\n⏱ Average solve time: %.1f min",
		stats.TotalRiddles, stats.FinishedRiddles, solvedPct, stats.AvgSolveMinutes)
}

func chatStatsText(stats *model.BotStats) string {
	return fmt.Sprintf(
		"👥 *Chats and members* 👥\n\n💬 Chats with the bot: %d\n👤 Total members: %d",
		stats.TotalChats, stats.TotalMembers)
}
