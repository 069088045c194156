package storage

import "errors"

// Common client storage errors
var (
	// ErrRecordNotFound запись отсутствует в реплике
	ErrRecordNotFound = errors.New("record not found")

	// ErrConflictExists запись журнала конфликтов с таким id уже есть
	ErrConflictExists = errors.New("conflict log entry already exists")

	// ErrDeviceNotFound устройство еще не настроено (не было login)
	ErrDeviceNotFound = errors.New("device not found")

	// ErrStorageClosed indicates that storage is closed
	ErrStorageClosed = errors.New("storage is closed")
)
