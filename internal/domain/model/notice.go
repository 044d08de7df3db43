package model

// NoticeLevel is the severity of a user-facing notice.
type NoticeLevel string

const (
	NoticeInfo    NoticeLevel = "info"
	NoticeSuccess NoticeLevel = "success"
	NoticeWarning NoticeLevel = "warning"
	NoticeError   NoticeLevel = "error"
)

// Notice is a message for the user surfaced by the layout on the next render.
// It replaces the browser's blocking alert dialogs.
type Notice struct {
	Level   NoticeLevel `json:"level"`
	Message string      `json:"message"`
}

// IsZero reports whether the notice carries no message.
func (n Notice) IsZero() bool { return n.Message == "" }

// Info builds an informational notice.
func Info(msg string) Notice { return Notice{Level: NoticeInfo, Message: msg} }

// Success builds a success notice.
func Success(msg string) Notice { return Notice{Level: NoticeSuccess, Message: msg} }

// Warning builds a warning notice.
func Warning(msg string) Notice { return Notice{Level: NoticeWarning, Message: msg} }

// Error builds an error notice.
func Error(msg string) Notice { return Notice{Level: NoticeError, Message: msg} }
