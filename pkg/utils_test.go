package pkg_test

import (
	"testing"

	"github.com/provedb/provedb/pkg"
	"gotest.tools/assert"
)

func TestJoinInts(t *testing.T) {
	assert.Equal(t, pkg.JoinInts([]int{1, -1, 42}), "1,-1,42")
	assert.Equal(t, pkg.JoinInts([]int{}), "")
}

func TestSplitInts(t *testing.T) {
	nums, err := pkg.SplitInts("1,-1,42")
	assert.NilError(t, err)
	assert.DeepEqual(t, nums, []int{1, -1, 42})

	nums, err = pkg.SplitInts("")
	assert.NilError(t, err)
	assert.Equal(t, len(nums), 0)

	_, err = pkg.SplitInts("1,x")
	assert.Assert(t, err != nil)
}

func TestSortedKeys(t *testing.T) {
	m := pkg.Map[int, string]{3: "c", 1: "a", 2: "b"}
	keys := pkg.SortedKeys(m, func(a, b int) bool { return a < b })
	assert.DeepEqual(t, keys, []int{1, 2, 3})
}
