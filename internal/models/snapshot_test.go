package models

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshot(t *testing.T) {
	phrase := &Phrase{
		ID:             "p1",
		UserID:         "u1",
		PhraseText:     "good morning",
		PhraseLanguage: "en",
		Meta:           Meta{ModifiedAt: 10},
	}

	out, err := Snapshot("device-a", phrase)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, "device-a", decoded["Client Id"])
	assert.Equal(t, "Phrase", decoded["Kind"])
	assert.Equal(t, "p1", decoded["Id"])
	assert.Equal(t, "good morning", decoded["Phrase Text"])
	assert.Equal(t, "10", decoded["Modified At"])
	assert.Equal(t, false, decoded["Delete Flag"])

	// ключи идут в фиксированном порядке
	assert.Less(t, strings.Index(out, "Client Id"), strings.Index(out, `"Id"`))
	assert.Less(t, strings.Index(out, "Phrase Text"), strings.Index(out, "Modified At"))
}

func TestBatch_AllKeepsDependencyOrder(t *testing.T) {
	var b Batch
	b.Add(&BookmarkTag{ID: "bt"})
	b.Add(&Tag{ID: "t"})
	b.Add(&TagCategory{ID: "c"})
	b.Add(&PhraseTag{ID: "pt"})

	var ids []string
	for _, r := range b.All() {
		ids = append(ids, r.GetID())
	}
	assert.Equal(t, []string{"c", "t", "pt", "bt"}, ids)
	assert.Equal(t, 4, b.Len())
	assert.Len(t, b.Records(KindTag), 1)
}
