package models

// SyncCursor курсоры синхронизации пары (пользователь, устройство).
// Создается при регистрации устройства со значениями Epoch.
type SyncCursor struct {
	UserID   string    `json:"user_id"`   // UserID владелец устройства
	ClientID string    `json:"client_id"` // ClientID идентификатор устройства
	LastPull Timestamp `json:"last_pull"` // LastPull время начала последнего успешного pull
	LastPush Timestamp `json:"last_push"` // LastPush время начала последнего успешного push
}

// ConflictLog запись аудита о версии, отброшенной из-за конфликта.
// Неизменяема после создания; распространяется на все устройства пользователя.
type ConflictLog struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	ClientID   string    `json:"client_id"`
	TargetID   string    `json:"target_id"`
	Detail     string    `json:"detail,omitempty"`
	ReportedAt Timestamp `json:"reported_at"`
}
