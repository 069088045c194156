package sync

import (
	"fmt"
	"sort"
	"strings"

	"github.com/iudanet/wordkeeper/internal/models"
)

// Причины отказа для отдельных записей. Не прерывают обработку пакета.
const (
	ReasonUnauthorized   = "Unauthorized operation."
	ReasonStale          = "Update not applied because the server already contains a newer version."
	ReasonConflictLogged = "Conflict already logged in server."
	ReasonInvalidEntry   = "Invalid conflict log entry."
)

// ReasonParentMissing причина отказа, когда родитель записи не найден
func ReasonParentMissing(parent models.Kind) string {
	return fmt.Sprintf("The `%sId` does not exist.", parent.DisplayName())
}

// PersistenceConflictError нарушение ограничений хранилища; весь пакет откатывается.
// Failures: id записи -> "Вид: причина".
type PersistenceConflictError struct {
	Failures map[string]string
}

func (e *PersistenceConflictError) Error() string {
	ids := make([]string, 0, len(e.Failures))
	for id := range e.Failures {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return fmt.Sprintf("persistence conflict on %d record(s): %s", len(ids), strings.Join(ids, ", "))
}
