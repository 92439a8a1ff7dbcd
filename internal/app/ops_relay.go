package app

import (
	"fmt"

	"franchise_ops_worker/internal/domain/telegram"
)

// OpsRelay posts job summaries to the operations chat.
type OpsRelay struct {
	sender telegram.ChatSender
	chatID int64
}

func NewOpsRelay(sender telegram.ChatSender, chatID int64) *OpsRelay {
	return &OpsRelay{sender: sender, chatID: chatID}
}

// Announce sends a one-line summary of a run that changed data.
func (r *OpsRelay) Announce(jobName string, report Report) error {
	if report == nil || !report.Changed() {
		return nil
	}
	text := fmt.Sprintf("[%s] %s", jobName, report.String())
	if err := r.sender.Send(r.chatID, text); err != nil {
		return fmt.Errorf("failed to relay %s summary: %w", jobName, err)
	}
	return nil
}
