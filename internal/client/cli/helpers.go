package cli

import (
	"fmt"

	"github.com/iudanet/wordkeeper/internal/models"
)

// parseUserKind разбирает вид записи, которую пользователь может изменять
func parseUserKind(s string) (models.Kind, error) {
	kind, err := models.ParseKind(s)
	if err != nil {
		return "", err
	}
	if kind.IsReference() {
		return "", fmt.Errorf("%s is reference data and is read-only", kind.DisplayName())
	}
	return kind, nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
