package token

import (
	"strings"
	"testing"

	"plan_advisor/src/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeuristicMeter(t *testing.T) {
	m := HeuristicMeter{}

	assert.Equal(t, 0, m.Count(""))
	assert.Equal(t, 1, m.Count("a"))
	assert.Equal(t, 1, m.Count("abcd"))
	assert.Equal(t, 2, m.Count("abcde"))
	assert.Equal(t, 50, m.Count(strings.Repeat("x", 200)))
}

func TestCountTurns(t *testing.T) {
	turns := []model.Turn{
		{Role: model.RoleSystem, Content: strings.Repeat("s", 40)},
		{Role: model.RoleUser, Content: strings.Repeat("u", 8)},
		{Role: model.RoleAssistant, Content: ""},
	}
	assert.Equal(t, 12, CountTurns(HeuristicMeter{}, turns))
	assert.Equal(t, 0, CountTurns(HeuristicMeter{}, nil))
}

func TestNew(t *testing.T) {
	m, err := New("", "")
	require.NoError(t, err)
	assert.IsType(t, HeuristicMeter{}, m)

	_, err = New("bytes", "")
	assert.Error(t, err)
}
