package content

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryOrderAndLookup(t *testing.T) {
	Register(
		&Lesson{ID: "t-two", Title: "Two", Order: 102},
		&Lesson{ID: "t-one", Title: "One", Order: 101},
	)

	require.NotNil(t, Get("t-one"))
	assert.Nil(t, Get("t-missing"))

	var ids []string
	for _, l := range All() {
		if l.Order >= 101 && l.Order <= 102 {
			ids = append(ids, l.ID)
		}
	}
	assert.Equal(t, []string{"t-one", "t-two"}, ids, "lessons come back sorted by order")
}

func TestNextID(t *testing.T) {
	Register(
		&Lesson{ID: "n-a", Order: 201},
		&Lesson{ID: "n-b", Order: 202},
	)

	assert.Equal(t, "n-b", NextID("n-a"))
	assert.Equal(t, "", NextID("n-b"), "last lesson has no successor")
	assert.Equal(t, "", NextID("unknown"))
}
