package coverage

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func region(startLine, startCol, endLine, endCol int, count int64) Region {
	return Region{
		Start: Position{Line: startLine, Column: startCol},
		End:   Position{Line: endLine, Column: endCol},
		Count: count,
		Kind:  KindCode,
	}
}

func TestFromList(t *testing.T) {
	t.Run("should decode a record", func(t *testing.T) {
		r, err := FromList([]int64{9, 79, 17, 2, 4, 0, 0, 3}, "main")
		require.NoError(t, err)
		assert.Equal(t, Position{Line: 9, Column: 79}, r.Start)
		assert.Equal(t, Position{Line: 17, Column: 2}, r.End)
		assert.Equal(t, int64(4), r.Count)
		assert.Equal(t, KindGap, r.Kind)
		assert.Equal(t, "main", r.Function)
	})

	t.Run("should reject malformed records", func(t *testing.T) {
		records := map[string][]int64{
			"too short":      {1, 1, 2, 2, 0, 0, 0},
			"too long":       {1, 1, 2, 2, 0, 0, 0, 0, 0},
			"file id":        {1, 1, 2, 2, 0, 1, 0, 0},
			"expanded id":    {1, 1, 2, 2, 0, 0, 2, 0},
			"unknown kind":   {1, 1, 2, 2, 0, 0, 0, 5},
			"negative kind":  {1, 1, 2, 2, 0, 0, 0, -1},
			"ends too early": {3, 1, 2, 2, 0, 0, 0, 0},
		}
		for name, record := range records {
			_, err := FromList(record, "main")
			assert.ErrorIs(t, err, ErrFormat, name)
		}
	})
}

func TestRegion_Ordering(t *testing.T) {
	a := region(1, 1, 5, 5, 0)
	b := region(1, 1, 9, 9, 0)
	c := region(2, 1, 3, 1, 0)

	// Same start, different end: neither is less, and greater follows less.
	assert.False(t, a.Equal(b))
	assert.False(t, a.Less(b))
	assert.False(t, b.Less(a))
	assert.False(t, a.Greater(b))
	assert.False(t, b.Greater(a))
	assert.False(t, a.LessEqual(b))
	assert.False(t, a.GreaterEqual(b))

	assert.True(t, a.Less(c))
	assert.True(t, c.Greater(a))
	assert.True(t, a.LessEqual(c))
	assert.True(t, c.GreaterEqual(a))
	assert.False(t, c.Less(a))

	// Counts and function names do not take part in equality.
	d := a
	d.Count = 42
	d.Function = "other"
	assert.True(t, a.Equal(d))
	assert.True(t, a.LessEqual(d))
	assert.True(t, a.GreaterEqual(d))
	assert.False(t, a.Greater(d))

	e := a
	e.Kind = KindSkipped
	assert.False(t, a.Equal(e))
}

func TestRegion_IsSubregion(t *testing.T) {
	outer := region(10, 1, 20, 1, 0)

	assert.True(t, outer.IsSubregion(region(10, 2, 19, 80, 0)))
	assert.False(t, outer.IsSubregion(outer), "containment is irreflexive")
	assert.False(t, outer.IsSubregion(region(10, 1, 15, 1, 0)), "shared start")
	assert.False(t, outer.IsSubregion(region(12, 1, 20, 1, 0)), "shared end")
	assert.False(t, outer.IsSubregion(region(5, 1, 25, 1, 0)))
	assert.False(t, region(10, 2, 19, 80, 0).IsSubregion(outer), "asymmetric")
}

func TestRegion_SubregionScenario(t *testing.T) {
	a, err := FromList([]int64{9, 79, 17, 2, 4, 0, 0, 0}, "f")
	require.NoError(t, err)
	b, err := FromList([]int64{9, 80, 17, 1, 0, 0, 0, 0}, "f")
	require.NoError(t, err)

	assert.True(t, a.IsSubregion(b))
	assert.True(t, a.IsCovered())
	assert.False(t, b.IsCovered())

	tree := NewTree(a)
	_, err = tree.Insert(b)
	require.NoError(t, err)
	assert.True(t, tree.Contains(b))
}

func TestRegion_IsLocationInside(t *testing.T) {
	r := region(3, 5, 4, 2, 0)

	assert.True(t, r.IsLocationInside(3, 5), "start is inclusive")
	assert.True(t, r.IsLocationInside(3, 100))
	assert.True(t, r.IsLocationInside(4, 1))
	assert.False(t, r.IsLocationInside(4, 2), "end is exclusive")
	assert.False(t, r.IsLocationInside(3, 4))
	assert.False(t, r.IsLocationInside(5, 1))
}

func TestRegion_Overlaps(t *testing.T) {
	r := region(10, 1, 20, 1, 0)

	assert.True(t, r.Overlaps(region(15, 1, 25, 1, 0)))
	assert.True(t, region(15, 1, 25, 1, 0).Overlaps(r))
	assert.False(t, r.Overlaps(region(12, 1, 18, 1, 0)), "nested")
	assert.False(t, r.Overlaps(region(20, 1, 30, 1, 0)), "adjacent")
	assert.False(t, r.Overlaps(region(30, 1, 40, 1, 0)), "disjoint")
}

func TestKind_JSON(t *testing.T) {
	data, err := json.Marshal(KindSkipped)
	require.NoError(t, err)
	assert.Equal(t, `"Skipped"`, string(data))

	var k Kind
	require.NoError(t, json.Unmarshal([]byte(`"Branch"`), &k))
	assert.Equal(t, KindBranch, k)

	require.NoError(t, json.Unmarshal([]byte(`3`), &k))
	assert.Equal(t, KindGap, k)

	assert.ErrorIs(t, json.Unmarshal([]byte(`"MCDC"`), &k), ErrFormat)
	assert.ErrorIs(t, json.Unmarshal([]byte(`9`), &k), ErrFormat)

	_, err = json.Marshal(Kind(9))
	assert.Error(t, err)
	assert.Equal(t, "Kind(9)", Kind(9).String())
}
