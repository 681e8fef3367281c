package service

import (
	"fmt"
	"time"

	"riddlebot/internal/model"
)

func announcementText(r *model.Riddle) string {
	text := fmt.Sprintf(
		"🚨 *RIDDLE!* 🚨\n\n%s\n\n🎁 *PRIZE:*\n%s\n\n💬 *How to answer?* Reply to this message with your guess!",
		r.Text, prizeLine(r.Prize))
	if r.Timing.Limited() {
		text += fmt.Sprintf("\n\n⏰ *Time:* %d min", r.Timing.Minutes)
	}
	return text
}

func countdownText(r *model.Riddle, remaining time.Duration) string {
	total := int(remaining.Seconds())
	minutes, seconds := total/60, total%60
	return fmt.Sprintf(
		"🚨 *RIDDLE!* 🚨\n\n%s\n\n🎁 *PRIZE:*\n%s\n\n⏰ *Time left:* %d min %d sec\n\n💬 *How to answer?* Reply to this message with your guess!",
		r.Text, prizeLine(r.Prize), minutes, seconds)
}

func expiredText(r *model.Riddle) string {
	return fmt.Sprintf(
		"⏰ *Time's up!* ⏰\n\n%s\n\n*Sadly, nobody guessed it...* 😔\nThe riddle is over.",
		r.Text)
}

func hintText(hint string) string {
	return fmt.Sprintf("💡 *HINT!* 💡\n\n%s", hint)
}

func winAnnouncement(username string) string {
	return fmt.Sprintf("🎉 *Solved!* 🎉\n\nCongratulations, @%s! 🏆", username)
}

const incorrectReply = "❌ *Wrong!* ❌\n\nTry again! 😉"

func prizeNotification(prize string) string {
	return fmt.Sprintf("🥳 *You won!* 🥳\n\nYou solved the riddle! 🎉\nYour prize: *%s*", prize)
}

func contactCreatorNotification(creator string) string {
	return fmt.Sprintf("🥳 *You won!* 🥳\n\nYou solved the riddle! 🎉\nContact @%s for your prize!", creator)
}

func prizeLine(prize string) string {
	if prize == "" {
		return "bragging rights"
	}
	return prize
}
