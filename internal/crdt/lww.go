package crdt

import "github.com/iudanet/wordkeeper/internal/models"

// PushDecision решение сервера по входящей записи
type PushDecision int

const (
	// PushInsert записи нет на сервере, вставляем как есть
	PushInsert PushDecision = iota
	// PushOverwrite входящая версия новее, перезаписываем
	PushOverwrite
	// PushOverwriteLogged входящая версия новее и устройство подтвердило перезапись:
	// текущее состояние сервера сначала уходит в журнал конфликтов
	PushOverwriteLogged
	// PushStale входящая версия не новее серверной, сервер остается авторитетным
	PushStale
)

func (d PushDecision) String() string {
	switch d {
	case PushInsert:
		return "insert"
	case PushOverwrite:
		return "overwrite"
	case PushOverwriteLogged:
		return "overwrite_logged"
	case PushStale:
		return "stale"
	}
	return "unknown"
}

// DecidePush применяет LWW для push: exists=false означает, что запись
// на сервере отсутствует; acknowledged что id указан в списке перезаписи.
func DecidePush(exists bool, server, incoming models.Timestamp, acknowledged bool) PushDecision {
	if !exists {
		return PushInsert
	}
	if incoming <= server {
		return PushStale
	}
	if acknowledged {
		return PushOverwriteLogged
	}
	return PushOverwrite
}

// MergeDecision решение устройства по записи, полученной через pull
type MergeDecision int

const (
	// MergeInsert локальной записи нет
	MergeInsert MergeDecision = iota
	// MergeOverwrite локальных неотправленных изменений нет
	MergeOverwrite
	// MergeKeepLocal локальная неотправленная версия новее; id уходит в список
	// перезаписи следующего push
	MergeKeepLocal
	// MergeDiscardLocal локальная неотправленная версия проиграла: снимок в журнал
	// конфликтов, затем перезапись
	MergeDiscardLocal
)

func (d MergeDecision) String() string {
	switch d {
	case MergeInsert:
		return "insert"
	case MergeOverwrite:
		return "overwrite"
	case MergeKeepLocal:
		return "keep_local"
	case MergeDiscardLocal:
		return "discard_local"
	}
	return "unknown"
}

// DecideMerge применяет правила слияния на устройстве. pending true, если
// запись изменена локально после последнего успешного push.
func DecideMerge(exists bool, local, incoming models.Timestamp, pending bool) MergeDecision {
	if !exists {
		return MergeInsert
	}
	if !pending {
		return MergeOverwrite
	}
	if local > incoming {
		return MergeKeepLocal
	}
	return MergeDiscardLocal
}
