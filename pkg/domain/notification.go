package domain

import "time"

type NotificationType string

const (
	SourceStarted           NotificationType = "INFORMATION_SOURCE_STARTED"
	SourceCompleted         NotificationType = "INFORMATION_SOURCE_COMPLETED"
	SourceFailed            NotificationType = "INFORMATION_SOURCE_FAILED"
	SourceEmbeddingMissing  NotificationType = "INFORMATION_SOURCE_S3_EMBEDDING_MISSING"
	SourceCantFindEmbedding NotificationType = "INFORMATION_SOURCE_CANT_FIND_EMBEDDING"
	Custom                  NotificationType = "CUSTOM"
)

type NotificationLevel string

const (
	Info    NotificationLevel = "INFO"
	Success NotificationLevel = "SUCCESS"
	Warning NotificationLevel = "WARNING"
	Error   NotificationLevel = "ERROR"
)

// NotificationState tells whether the user has read it.
type NotificationState string

const (
	Initial NotificationState = "INITIAL"
	NotNew  NotificationState = "NOT_NEW"
)

type Notification struct {
	Id        string
	ProjectId string
	UserId    string
	Type      NotificationType
	Level     NotificationLevel
	Message   string
	Important bool
	State     NotificationState
	CreatedAt time.Time
}
