package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/iudanet/wordkeeper/internal/models"
	"github.com/iudanet/wordkeeper/pkg/api"
)

// DefaultTimeout таймаут запроса, если в конфигурации не задан другой
const DefaultTimeout = 30 * time.Second

// StatusError ответ сервера с кодом вне 2xx
type StatusError struct {
	Details    map[string]string // Details отказы по id записи для отказа всего пакета
	Message    string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("server error (%d): %s", e.StatusCode, e.Message)
}

// IsStatus сообщает, является ли err ответом сервера с кодом code
func IsStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == code
}

// Client представляет HTTP клиент для взаимодействия с сервером
type Client struct {
	httpClient *http.Client
	token      func() string
	baseURL    string
}

// NewClient создает новый API клиент
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: baseURL,
		token:   func() string { return "" },
		httpClient: &http.Client{
			Timeout: timeout,
			// Настройка обработки редиректов
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				// Ограничиваем количество редиректов
				if len(via) >= 10 {
					return fmt.Errorf("stopped after 10 redirects")
				}
				// Копируем заголовки Authorization при редиректе
				if len(via) > 0 && via[0].Header.Get("Authorization") != "" {
					req.Header.Set("Authorization", via[0].Header.Get("Authorization"))
				}
				return nil
			},
		},
	}
}

// WithTokenSource задает источник access token для защищенных запросов
func (c *Client) WithTokenSource(token func() string) *Client {
	c.token = token
	return c
}

// Signup регистрирует нового пользователя
func (c *Client) Signup(ctx context.Context, req api.SignupRequest) (*api.SignupResponse, error) {
	var resp api.SignupResponse
	if err := c.doRequest(ctx, http.MethodPost, "/api/v1/auth/signup", req, &resp); err != nil {
		return nil, fmt.Errorf("signup request failed: %w", err)
	}
	return &resp, nil
}

// Login выполняет аутентификацию пользователя
func (c *Client) Login(ctx context.Context, req api.LoginRequest) (*api.TokenResponse, error) {
	var resp api.TokenResponse
	if err := c.doRequest(ctx, http.MethodPost, "/api/v1/auth/login", req, &resp); err != nil {
		return nil, fmt.Errorf("login request failed: %w", err)
	}
	return &resp, nil
}

// ServerTime получает текущее логическое время сервера
func (c *Client) ServerTime(ctx context.Context) (models.Timestamp, error) {
	var resp api.ServerTimeResponse
	if err := c.doRequest(ctx, http.MethodGet, "/api/v1/syncs/server-time", nil, &resp); err != nil {
		return 0, fmt.Errorf("server time request failed: %w", err)
	}
	return resp.ServerTime, nil
}

// Register регистрирует устройство; 409 означает, что оно уже зарегистрировано
func (c *Client) Register(ctx context.Context, clientID string) error {
	if err := c.doRequest(ctx, http.MethodPost, clientPath(clientID, "register"), nil, nil); err != nil {
		return fmt.Errorf("register request failed: %w", err)
	}
	return nil
}

// Reregister сбрасывает курсоры устройства на сервере
func (c *Client) Reregister(ctx context.Context, clientID string) error {
	if err := c.doRequest(ctx, http.MethodPost, clientPath(clientID, "reregister"), nil, nil); err != nil {
		return fmt.Errorf("reregister request failed: %w", err)
	}
	return nil
}

// Status получает курсоры устройства на сервере
func (c *Client) Status(ctx context.Context, clientID string) (*api.SyncStatusResponse, error) {
	var resp api.SyncStatusResponse
	if err := c.doRequest(ctx, http.MethodGet, syncPath(clientID, "status"), nil, &resp); err != nil {
		return nil, fmt.Errorf("status request failed: %w", err)
	}
	return &resp, nil
}

// Pull получает изменения после lastPull
func (c *Client) Pull(ctx context.Context, clientID string, lastPull models.Timestamp) (*api.PullResponse, error) {
	var resp api.PullResponse
	if err := c.doRequest(ctx, http.MethodPost, syncPath(clientID, "pull"), api.PullRequest{LastPull: lastPull}, &resp); err != nil {
		return nil, fmt.Errorf("pull request failed: %w", err)
	}
	return &resp, nil
}

// Push отправляет пакет локальных изменений
func (c *Client) Push(ctx context.Context, clientID string, req api.PushRequest) (*api.PushResponse, error) {
	var resp api.PushResponse
	if err := c.doRequest(ctx, http.MethodPost, syncPath(clientID, "push"), req, &resp); err != nil {
		return nil, fmt.Errorf("push request failed: %w", err)
	}
	return &resp, nil
}

// PullConflicts получает журнал конфликтов начиная с lastPush
func (c *Client) PullConflicts(ctx context.Context, clientID string, lastPush models.Timestamp) ([]*models.ConflictLog, error) {
	var resp api.ConflictsPullResponse
	if err := c.doRequest(ctx, http.MethodPost, syncPath(clientID, "conflicts/pull"), api.ConflictsPullRequest{LastPush: lastPush}, &resp); err != nil {
		return nil, fmt.Errorf("conflicts pull request failed: %w", err)
	}
	return resp.Entries, nil
}

// PushConflicts отправляет записи журнала, созданные на устройстве
func (c *Client) PushConflicts(ctx context.Context, clientID string, entries []*models.ConflictLog) (map[string]string, error) {
	var resp api.ConflictsPushResponse
	if err := c.doRequest(ctx, http.MethodPost, syncPath(clientID, "conflicts/push"), api.ConflictsPushRequest{Entries: entries}, &resp); err != nil {
		return nil, fmt.Errorf("conflicts push request failed: %w", err)
	}
	return resp.Failures, nil
}

func clientPath(clientID, action string) string {
	return "/api/v1/clients/" + url.PathEscape(clientID) + "/" + action
}

func syncPath(clientID, action string) string {
	return "/api/v1/syncs/" + url.PathEscape(clientID) + "/" + action
}

// doRequest выполняет HTTP запрос
func (c *Client) doRequest(ctx context.Context, method, path string, body, result any) error {
	var bodyReader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	// Читаем тело ответа
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	// Проверяем статус код
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		se := &StatusError{StatusCode: resp.StatusCode, Message: string(respBody)}
		var errResp api.ErrorResponse
		if err := json.Unmarshal(respBody, &errResp); err == nil && (errResp.Message != "" || errResp.Error != "") {
			se.Message = errResp.Message
			if se.Message == "" {
				se.Message = errResp.Error
			}
			se.Details = errResp.Details
		}
		return se
	}

	// Декодируем успешный ответ
	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}
