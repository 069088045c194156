package crdt

import (
	"sync"
	"time"

	"github.com/iudanet/wordkeeper/internal/models"
)

// Clock источник логического времени реплики.
// Значения строго возрастают даже если системное время идет назад.
type Clock interface {
	Now() models.Timestamp
	// Observe учитывает значение, полученное от другой реплики
	Observe(remote models.Timestamp)
}

// HybridClock логические часы на основе физического времени: каждое значение
// не меньше текущего системного времени в тиках и строго больше предыдущего.
// Observe подтягивает часы к удаленным значениям (как Update у часов Лампорта).
type HybridClock struct {
	wall func() time.Time // источник физического времени
	last models.Timestamp // последнее выданное значение
	mu   sync.Mutex       // мьютекс для потокобезопасности
}

// NewHybridClock создает часы на системном времени
func NewHybridClock() *HybridClock {
	return &HybridClock{wall: time.Now}
}

// NewHybridClockWithSource создает часы с заданным источником времени.
// Используется в тестах.
func NewHybridClockWithSource(wall func() time.Time) *HybridClock {
	return &HybridClock{wall: wall}
}

// Now возвращает max(системное время, последнее значение + 1)
func (c *HybridClock) Now() models.Timestamp {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := models.TimestampFromTime(c.wall())
	if now <= c.last {
		now = c.last + 1
	}
	c.last = now
	return now
}

// Observe учитывает значение, полученное от другой реплики:
// следующее Now() будет строго больше remote.
func (c *HybridClock) Observe(remote models.Timestamp) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if remote > c.last {
		c.last = remote
	}
}

// Last возвращает последнее выданное или наблюдаемое значение
func (c *HybridClock) Last() models.Timestamp {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.last
}

// NextAfter возвращает метку для записи, текущее время которой current:
// max(Now(), current+1). Сохраняет строгое возрастание ModifiedAt записи.
func NextAfter(clock Clock, current models.Timestamp) models.Timestamp {
	now := clock.Now()
	if now <= current {
		return current + 1
	}
	return now
}

// ManualClock часы с ручным управлением для тестов и воспроизводимых сценариев
type ManualClock struct {
	current models.Timestamp
	mu      sync.Mutex
}

// NewManualClock создает часы, начинающие с start
func NewManualClock(start models.Timestamp) *ManualClock {
	return &ManualClock{current: start}
}

// Now возвращает текущее значение и сдвигает его на один тик
func (c *ManualClock) Now() models.Timestamp {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.current
	c.current++
	return now
}

// Set выставляет следующее значение Now()
func (c *ManualClock) Set(ts models.Timestamp) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = ts
}

// Observe сдвигает часы так, чтобы следующее Now() было больше remote
func (c *ManualClock) Observe(remote models.Timestamp) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if remote >= c.current {
		c.current = remote + 1
	}
}
