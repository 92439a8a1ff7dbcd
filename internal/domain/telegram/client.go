package telegram

// ChatSender posts plain-text messages to a chat. Implemented over telebot in infra.
type ChatSender interface {
	Send(chatID int64, text string) error
}
