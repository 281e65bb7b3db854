package comments

import (
	"testing"

	"agora/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(v int64) *int64 { return &v }

func c(id int64, parent *int64) *models.Comment {
	return &models.Comment{ID: id, ParentID: parent, Content: "comment"}
}

func ids(list []*models.Comment) []int64 {
	out := make([]int64, 0, len(list))
	for _, n := range list {
		out = append(out, n.ID)
	}
	return out
}

func TestBuildTree_Nesting(t *testing.T) {
	t.Parallel()

	forest := BuildTree([]*models.Comment{
		c(1, nil),
		c(2, ptr(1)),
		c(3, nil),
		c(4, ptr(2)),
		c(5, ptr(1)),
	})

	require.Equal(t, []int64{1, 3}, ids(forest))
	assert.Equal(t, []int64{2, 5}, ids(forest[0].Replies))
	assert.Equal(t, []int64{4}, ids(forest[0].Replies[0].Replies))
	assert.Empty(t, forest[1].Replies)
	assert.Equal(t, 5, Count(forest))
	assert.Equal(t, 3, Depth(forest))
}

func TestBuildTree_ChildBeforeParent(t *testing.T) {
	t.Parallel()

	forest := BuildTree([]*models.Comment{
		c(2, ptr(1)),
		c(1, nil),
	})

	require.Equal(t, []int64{1}, ids(forest))
	assert.Equal(t, []int64{2}, ids(forest[0].Replies))
}

func TestBuildTree_OrphansAndSelfParentAreRoots(t *testing.T) {
	t.Parallel()

	forest := BuildTree([]*models.Comment{
		c(1, ptr(99)),
		c(2, ptr(2)),
		c(3, ptr(1)),
	})

	require.Equal(t, []int64{1, 2}, ids(forest))
	assert.Equal(t, []int64{3}, ids(forest[0].Replies))
}

func TestBuildTree_Empty(t *testing.T) {
	t.Parallel()

	assert.Empty(t, BuildTree(nil))
	assert.NotNil(t, BuildTree(nil))
	assert.Equal(t, 0, Count(nil))
	assert.Equal(t, 0, Depth(nil))
}

func TestBuildTree_DoesNotMutateInput(t *testing.T) {
	t.Parallel()

	input := []*models.Comment{c(1, nil), c(2, ptr(1))}
	forest := BuildTree(input)

	assert.Empty(t, input[0].Replies)
	assert.NotSame(t, input[0], forest[0])

	*forest[0].Replies[0].ParentID = 42
	assert.Equal(t, int64(1), *input[1].ParentID)
}

func TestBuildTree_FlattensPrePopulatedReplies(t *testing.T) {
	t.Parallel()

	nested := &models.Comment{
		ID: 1,
		Replies: []*models.Comment{
			{ID: 2, ParentID: ptr(1)},
			{ID: 3, Replies: []*models.Comment{{ID: 4}}},
		},
	}

	forest := BuildTree([]*models.Comment{nested})

	require.Equal(t, []int64{1}, ids(forest))
	assert.Equal(t, []int64{2, 3}, ids(forest[0].Replies))
	assert.Equal(t, []int64{4}, ids(forest[0].Replies[1].Replies))
	assert.Len(t, nested.Replies, 2, "input replies untouched")
}

func TestBuildTree_DuplicatesKeepFirst(t *testing.T) {
	t.Parallel()

	first := &models.Comment{ID: 1, Content: "first"}
	dup := &models.Comment{ID: 1, Content: "second"}

	forest := BuildTree([]*models.Comment{first, c(2, ptr(1)), dup})

	require.Len(t, forest, 1)
	assert.Equal(t, "first", forest[0].Content)
	assert.Equal(t, 2, Count(forest))
}

func TestBuildTree_CyclesArePromoted(t *testing.T) {
	t.Parallel()

	forest := BuildTree([]*models.Comment{
		c(1, nil),
		c(2, ptr(3)),
		c(3, ptr(2)),
		c(4, ptr(2)),
	})

	require.Equal(t, []int64{1, 2}, ids(forest))
	assert.Equal(t, []int64{3, 4}, ids(forest[1].Replies))
	assert.Empty(t, forest[1].Replies[0].Replies)
	assert.Equal(t, 4, Count(forest), "no comment is lost")
}

func TestBuildTree_PointerCycleInInput(t *testing.T) {
	t.Parallel()

	a := &models.Comment{ID: 1}
	b := &models.Comment{ID: 2, ParentID: ptr(1)}
	a.Replies = []*models.Comment{b}
	b.Replies = []*models.Comment{a}

	forest := BuildTree([]*models.Comment{a})
	assert.Equal(t, 2, Count(forest))
}

func TestFlatten(t *testing.T) {
	t.Parallel()

	forest := BuildTree([]*models.Comment{
		c(1, nil),
		c(2, nil),
		c(3, ptr(1)),
		c(4, ptr(3)),
	})

	assert.Equal(t, []int64{1, 3, 4, 2}, ids(Flatten(forest)))
	assert.Equal(t, ids(Flatten(forest)), ids(Flatten(BuildTree(Flatten(forest)))))
}
