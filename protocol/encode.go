package protocol

import (
	"direct-chat/domain"
	"direct-chat/domain/event"
	"fmt"
	"strings"

	"github.com/samber/lo"
)

const (
	TagLoginOK     = "LOGIN_OK"
	TagRegisterOK  = "REGISTER_OK"
	TagSendOK      = "SEND_OK"
	TagLogoutOK    = "LOGOUT_OK"
	TagError       = "ERROR"
	TagAllUsers    = "ALL_USERS"
	TagHistory     = "HISTORY"
	TagMessage     = "MESSAGE"
	TagActiveUsers = "ACTIVE_USERS"
)

func LoginOK(username string) string { return TagLoginOK + ":" + username }

func RegisterOK() string { return TagRegisterOK }

func SendOK() string { return TagSendOK }

func LogoutOK() string { return TagLogoutOK }

// Error renders the client-facing line for any error of the taxonomy.
func Error(err error) string { return TagError + ":" + Reason(err) }

func AllUsers(d domain.Directory) string {
	return fmt.Sprintf("%s:%s:%s", TagAllUsers, strings.Join(d.All, ","), strings.Join(d.Online, ","))
}

func History(entries []domain.HistoryEntry) string {
	parts := lo.Map(entries, func(e domain.HistoryEntry, _ int) string {
		return e.Sender + ":" + e.Content
	})
	return TagHistory + ":" + strings.Join(parts, "|")
}

func ActiveUsers(online []string) string {
	return TagActiveUsers + ":" + strings.Join(online, ",")
}

func Message(sender, content string) string {
	return fmt.Sprintf("%s:%s:%s", TagMessage, sender, content)
}

// Event renders a pushed event. ok is false for events with no wire form.
func Event(e event.DomainEvent) (line string, ok bool) {
	switch evt := e.(type) {
	case event.MessageDelivered:
		return Message(evt.Sender, evt.Content), true
	case event.PresenceChanged:
		return ActiveUsers(evt.Online), true
	default:
		return "", false
	}
}
