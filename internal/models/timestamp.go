package models

import (
	"fmt"
	"strconv"
	"time"
)

// Timestamp логическое время записи: тики по 100 нс от Unix epoch.
// По сети передается десятичной строкой, чтобы избежать потери точности в JSON.
type Timestamp int64

const (
	// Epoch начальное значение курсоров синхронизации
	Epoch Timestamp = 0

	// TicksPerSecond количество тиков в секунде
	TicksPerSecond = 10_000_000
)

// TimestampFromTime переводит время в тики
func TimestampFromTime(t time.Time) Timestamp {
	return Timestamp(t.UnixNano() / 100)
}

// Time возвращает время в UTC, соответствующее тикам
func (t Timestamp) Time() time.Time {
	return time.Unix(0, int64(t)*100).UTC()
}

func (t Timestamp) String() string {
	return strconv.FormatInt(int64(t), 10)
}

// MarshalJSON кодирует значение как "12345"
func (t Timestamp) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(t.String())), nil
}

// UnmarshalJSON принимает как строку, так и число
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	s := string(data)
	if s == "null" {
		return nil
	}
	if unquoted, err := strconv.Unquote(s); err == nil {
		s = unquoted
	}
	parsed, err := ParseTimestamp(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// ParseTimestamp разбирает десятичное представление тиков
func ParseTimestamp(s string) (Timestamp, error) {
	if s == "" {
		return Epoch, nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid timestamp %q: %w", s, err)
	}
	if v < 0 {
		return 0, fmt.Errorf("invalid timestamp %q: negative value", s)
	}
	return Timestamp(v), nil
}

// MinTimestamp возвращает меньшее из двух значений
func MinTimestamp(a, b Timestamp) Timestamp {
	if a < b {
		return a
	}
	return b
}

// MaxTimestamp возвращает большее из двух значений
func MaxTimestamp(a, b Timestamp) Timestamp {
	if a > b {
		return a
	}
	return b
}
