package goal

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry(t *testing.T) {
	t.Parallel()

	r, err := NewRegistry(
		Goal{ID: "run", Title: "Run a marathon", FaceValue: 1000, Valid: true},
		Goal{ID: "read", Title: "Read 20 books", FaceValue: 500},
	)
	require.NoError(t, err)

	g, err := r.Goal(context.Background(), "run")
	require.NoError(t, err)
	assert.Equal(t, "Run a marathon", g.Title)
	assert.EqualValues(t, 1000, g.FaceValue)

	_, err = r.Goal(context.Background(), "swim")
	assert.ErrorIs(t, err, ErrGoalNotFound)

	all := r.All()
	require.Len(t, all, 2)
	assert.Equal(t, "read", all[0].ID)
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	t.Parallel()

	_, err := NewRegistry(Goal{ID: "a"}, Goal{ID: "a"})
	assert.Error(t, err)

	_, err = NewRegistry(Goal{})
	assert.Error(t, err)
}
