package storage

import (
	"slices"
	"time"

	"github.com/iudanet/wordkeeper/internal/models"
)

// Статусы последнего запуска синхронизации
const (
	RunStatusNever     = "never"
	RunStatusSucceeded = "succeeded"
	RunStatusFailed    = "failed"
)

// SyncState метаданные синхронизации устройства
type SyncState struct {
	// ServerChanges записи, полученные с сервера после последнего push:
	// id -> ModifiedAt. Такие версии не считаются локальными изменениями.
	ServerChanges map[string]models.Timestamp `json:"server_changes,omitempty"`
	// Acknowledged id записей для списка перезаписи следующего push
	Acknowledged []string `json:"acknowledged,omitempty"`
	// PulledConflicts id записей журнала из последнего pull конфликтов
	PulledConflicts []string `json:"pulled_conflicts,omitempty"`

	LastRun    RunInfo          `json:"last_run"`
	LastPull   models.Timestamp `json:"last_pull"`
	LastPush   models.Timestamp `json:"last_push"`
	Registered bool             `json:"registered"` // Registered устройство зарегистрировано на сервере
}

// RunInfo итог последнего запуска синхронизации
type RunInfo struct {
	FinishedAt time.Time `json:"finished_at"`
	Status     string    `json:"status"`
	Error      string    `json:"error,omitempty"`
	Pulled     int       `json:"pulled"`
	Pushed     int       `json:"pushed"`
}

// NewSyncState начальное состояние: курсоры в Epoch
func NewSyncState() *SyncState {
	return &SyncState{
		ServerChanges: make(map[string]models.Timestamp),
		LastRun:       RunInfo{Status: RunStatusNever},
	}
}

// Pending сообщает, изменена ли запись локально после последнего push
func (s *SyncState) Pending(rec models.Record) bool {
	if rec.Modified() <= s.LastPush {
		return false
	}
	if ts, ok := s.ServerChanges[rec.GetID()]; ok && ts == rec.Modified() {
		return false
	}
	return true
}

// RecordServerChange запоминает версию, записанную из pull
func (s *SyncState) RecordServerChange(rec models.Record) {
	if s.ServerChanges == nil {
		s.ServerChanges = make(map[string]models.Timestamp)
	}
	s.ServerChanges[rec.GetID()] = rec.Modified()
}

// Acknowledge добавляет id в список перезаписи
func (s *SyncState) Acknowledge(id string) {
	if !slices.Contains(s.Acknowledged, id) {
		s.Acknowledged = append(s.Acknowledged, id)
	}
}

// CompletePush сдвигает LastPush и очищает то, что относилось к отправленному пакету
func (s *SyncState) CompletePush(start models.Timestamp) {
	s.LastPush = models.MaxTimestamp(s.LastPush, start)
	s.Acknowledged = nil
	for id, ts := range s.ServerChanges {
		if ts <= s.LastPush {
			delete(s.ServerChanges, id)
		}
	}
}

// ResetPull возвращает LastPull в Epoch: следующий pull получит все записи.
// LastPush не меняется, локальные неотправленные изменения остаются таковыми.
func (s *SyncState) ResetPull() {
	s.LastPull = models.Epoch
	s.PulledConflicts = nil
}
