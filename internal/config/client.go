package config

import (
	"sync"
	"time"
)

// Переменные окружения устройства
const (
	EnvServerURL = "WORDKEEPER_SERVER"
	EnvClientDB  = "WORDKEEPER_CLIENT_DB"
	EnvClientLog = "WORDKEEPER_LOG_LEVEL"
)

// Client настройки устройства; неизменяемы после запуска
type Client struct {
	ServerURL      string
	DBPath         string
	LogLevel       string
	RequestTimeout time.Duration
	Debounce       time.Duration // задержка перед фоновым запуском синхронизации
	WatchInterval  time.Duration // период запуска синхронизации в режиме watch
}

// DefaultClient значения по умолчанию
func DefaultClient() Client {
	return Client{
		ServerURL:      "http://localhost:8080",
		DBPath:         "wordkeeper-client.db",
		LogLevel:       "warn",
		RequestTimeout: 30 * time.Second,
		Debounce:       2 * time.Second,
		WatchInterval:  time.Minute,
	}
}

// WithEnv применяет переменные окружения поверх значений
func (c Client) WithEnv(getenv func(string) string) Client {
	if v := getenv(EnvServerURL); v != "" {
		c.ServerURL = v
	}
	if v := getenv(EnvClientDB); v != "" {
		c.DBPath = v
	}
	if v := getenv(EnvClientLog); v != "" {
		c.LogLevel = v
	}
	return c
}

// Device идентичность устройства и сессия пользователя
type Device struct {
	Username    string `json:"username"`
	UserID      string `json:"user_id"`
	ClientID    string `json:"client_id"`
	AccessToken string `json:"access_token"`
}

// LoggedIn есть ли действующая сессия
func (d Device) LoggedIn() bool {
	return d.AccessToken != "" && d.UserID != ""
}

// Holder хранит текущий Device. Значение заменяется целиком через Update;
// persist сохраняет новое значение до того, как оно станет видимым.
type Holder struct {
	persist func(Device) error
	device  Device
	mu      sync.RWMutex
}

// NewHolder создает Holder; persist может быть nil
func NewHolder(initial Device, persist func(Device) error) *Holder {
	return &Holder{device: initial, persist: persist}
}

// Get возвращает копию текущего значения
func (h *Holder) Get() Device {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.device
}

// Update применяет fn к текущему значению и сохраняет результат
func (h *Holder) Update(fn func(Device) Device) (Device, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	next := fn(h.device)
	if h.persist != nil {
		if err := h.persist(next); err != nil {
			return h.device, err
		}
	}
	h.device = next
	return next, nil
}
