package models

// NotificationKind classifies a transient user message.
type NotificationKind string

const (
	NotifyInfo    NotificationKind = "info"
	NotifySuccess NotificationKind = "success"
	NotifyWarning NotificationKind = "warning"
	NotifyError   NotificationKind = "error"
)

// Notification is a transient, user-visible message. AutoDismissMS of zero
// means the message stays until dismissed.
type Notification struct {
	ID            string           `json:"id"`
	Kind          NotificationKind `json:"kind"`
	Message       string           `json:"message"`
	AutoDismissMS int              `json:"auto_dismiss_ms,omitempty"`
}
