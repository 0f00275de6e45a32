package constraints

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paiban/oncall/pkg/scheduler/constraint"
	"github.com/paiban/oncall/pkg/scheduler/constraint/builtin"
)

func TestGetLibrary_MatchesRegisteredConstraints(t *testing.T) {
	library := GetLibrary(constraint.DefaultRules())

	registered := builtin.NewDefaultManager().GetAll()
	require.Len(t, library, len(registered))
	for _, c := range registered {
		_, ok := GetByName(constraint.DefaultRules(), string(c.Type()))
		assert.True(t, ok, "约束 %s 缺少定义", c.Type())
	}
}

func TestGetLibrary_DefaultsFollowRules(t *testing.T) {
	def, ok := GetByName(constraint.Rules{PrimaryGap: 4, SecondaryWindow: 3}, "primary_gap")
	require.True(t, ok)
	assert.Equal(t, "4", def.Params[0].Default)

	def, ok = GetByName(constraint.Rules{PrimaryGap: 4, SecondaryWindow: 3}, "secondary_gap")
	require.True(t, ok)
	assert.Equal(t, "3", def.Params[0].Default)

	_, ok = GetByName(constraint.DefaultRules(), "max_hours_per_day")
	assert.False(t, ok)
}
