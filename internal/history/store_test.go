package history

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testClock hands out strictly increasing timestamps so insertion order and
// chronological order coincide without sleeping.
type testClock struct {
	t time.Time
}

func (c *testClock) now() time.Time {
	c.t = c.t.Add(time.Second)
	return c.t
}

func newTestStore(t *testing.T) (*Store, *testClock) {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	clock := &testClock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	st.now = clock.now
	return st, clock
}

func addText(t *testing.T, st *Store, content string) int64 {
	t.Helper()
	id, err := st.AddItem(context.Background(), "text", content, content)
	require.NoError(t, err)
	return id
}

func contents(items []*Item) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = item.Content
	}
	return out
}

func TestAddAndGetItems(t *testing.T) {
	st, _ := newTestStore(t)
	ctx := context.Background()

	addText(t, st, "first")
	addText(t, st, "second")
	addText(t, st, "third")

	items, err := st.GetItems(ctx, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"third", "second", "first"}, contents(items))

	page, err := st.GetItems(ctx, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"second"}, contents(page))
}

func TestGetItem(t *testing.T) {
	st, _ := newTestStore(t)
	ctx := context.Background()

	id := addText(t, st, "hello")
	item, err := st.GetItem(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "hello", item.Content)
	assert.Equal(t, "text", item.ContentType)
	assert.False(t, item.IsFavorite)
	assert.Empty(t, item.Tags)

	_, err = st.GetItem(ctx, 9999)
	assert.True(t, errors.Is(err, sql.ErrNoRows))
}

func TestSearchEmptyQueryListsRecent(t *testing.T) {
	st, _ := newTestStore(t)
	ctx := context.Background()

	addText(t, st, "alpha")
	addText(t, st, "beta")

	items, err := st.SearchItems(ctx, "   ", 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"beta", "alpha"}, contents(items))
}

func TestSearchIsCaseInsensitiveSubstring(t *testing.T) {
	st, _ := newTestStore(t)
	ctx := context.Background()

	addText(t, st, "Hello World")
	addText(t, st, "unrelated")

	items, err := st.SearchItems(ctx, "hello", 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"Hello World"}, contents(items))

	items, err = st.SearchItems(ctx, "WORL", 10)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestSearchEscapesWildcards(t *testing.T) {
	st, _ := newTestStore(t)
	ctx := context.Background()

	addText(t, st, "discount: 100%foo")
	addText(t, st, "100xfoo")
	addText(t, st, "snake_case")
	addText(t, st, "snakeXcase")
	addText(t, st, `back\slash`)

	items, err := st.SearchItems(ctx, "%foo", 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"discount: 100%foo"}, contents(items))

	items, err = st.SearchItems(ctx, "e_c", 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"snake_case"}, contents(items))

	items, err = st.SearchItems(ctx, `k\s`, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{`back\slash`}, contents(items))
}

func TestSearchMatchesTagNames(t *testing.T) {
	st, _ := newTestStore(t)
	ctx := context.Background()

	id := addText(t, st, "some snippet")
	addText(t, st, "other")

	tagID, err := st.AddTag(ctx, "work")
	require.NoError(t, err)
	require.NoError(t, st.AddItemTag(ctx, id, tagID))

	items, err := st.SearchItems(ctx, "work", 10)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "some snippet", items[0].Content)
	assert.Equal(t, []string{"work"}, items[0].Tags)
}

func TestSearchOrdersFavoritesFirst(t *testing.T) {
	st, _ := newTestStore(t)
	ctx := context.Background()

	addText(t, st, "match old")
	favID := addText(t, st, "match fav")
	addText(t, st, "match new")

	fav, err := st.ToggleFavorite(ctx, favID)
	require.NoError(t, err)
	require.True(t, fav)

	items, err := st.SearchItems(ctx, "match", 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"match fav", "match new", "match old"}, contents(items))
}

func TestToggleFavorite(t *testing.T) {
	st, _ := newTestStore(t)
	ctx := context.Background()

	id := addText(t, st, "keep me")

	fav, err := st.ToggleFavorite(ctx, id)
	require.NoError(t, err)
	assert.True(t, fav)

	fav, err = st.ToggleFavorite(ctx, id)
	require.NoError(t, err)
	assert.False(t, fav)
}

func TestToggleFavoriteMissingIDReportsTrue(t *testing.T) {
	st, _ := newTestStore(t)

	fav, err := st.ToggleFavorite(context.Background(), 424242)
	require.NoError(t, err)
	assert.True(t, fav)
}

func TestDeleteItemCascadesTags(t *testing.T) {
	st, _ := newTestStore(t)
	ctx := context.Background()

	id := addText(t, st, "tagged")
	tagID, err := st.AddTag(ctx, "temp")
	require.NoError(t, err)
	require.NoError(t, st.AddItemTag(ctx, id, tagID))

	require.NoError(t, st.DeleteItem(ctx, id))

	var links int64
	require.NoError(t, st.db.QueryRow(
		"SELECT COUNT(*) FROM item_tags WHERE item_id = ?", id,
	).Scan(&links))
	assert.Zero(t, links)

	// The tag itself survives; only the association is removed.
	tags, err := st.GetAllTags(ctx)
	require.NoError(t, err)
	require.Len(t, tags, 1)
	assert.Equal(t, "temp", tags[0].Name)

	// Deleting again is a no-op.
	require.NoError(t, st.DeleteItem(ctx, id))
}

func TestClearNonFavorites(t *testing.T) {
	st, _ := newTestStore(t)
	ctx := context.Background()

	addText(t, st, "gone")
	favID := addText(t, st, "kept")
	_, err := st.ToggleFavorite(ctx, favID)
	require.NoError(t, err)

	require.NoError(t, st.ClearNonFavorites(ctx))

	items, err := st.GetItems(ctx, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"kept"}, contents(items))
}

func TestResetAll(t *testing.T) {
	st, _ := newTestStore(t)
	ctx := context.Background()

	id := addText(t, st, "everything")
	tagID, err := st.AddTag(ctx, "all")
	require.NoError(t, err)
	require.NoError(t, st.AddItemTag(ctx, id, tagID))

	require.NoError(t, st.ResetAll(ctx))

	items, err := st.GetItems(ctx, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, items)

	tags, err := st.GetAllTags(ctx)
	require.NoError(t, err)
	assert.Empty(t, tags)

	var ftsRows int64
	require.NoError(t, st.db.QueryRow(
		"SELECT COUNT(*) FROM clipboard_fts",
	).Scan(&ftsRows))
	assert.Zero(t, ftsRows)
}

func TestMaintainLimitEvictsOldestNonFavorites(t *testing.T) {
	st, _ := newTestStore(t)
	ctx := context.Background()

	addText(t, st, "oldest")
	addText(t, st, "middle")
	addText(t, st, "newest")

	require.NoError(t, st.MaintainLimit(ctx, 2))

	items, err := st.GetItems(ctx, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"newest", "middle"}, contents(items))
}

func TestMaintainLimitSparesFavoritesWhileItCan(t *testing.T) {
	st, _ := newTestStore(t)
	ctx := context.Background()

	favID := addText(t, st, "old favorite")
	addText(t, st, "middle")
	addText(t, st, "newest")
	_, err := st.ToggleFavorite(ctx, favID)
	require.NoError(t, err)

	require.NoError(t, st.MaintainLimit(ctx, 2))

	items, err := st.GetItems(ctx, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"newest", "old favorite"}, contents(items))
}

func TestMaintainLimitEvictsFavoritesWhenBoundRequires(t *testing.T) {
	st, _ := newTestStore(t)
	ctx := context.Background()

	// All favorites: the bound still wins, oldest first.
	for _, content := range []string{"fav1", "fav2", "fav3"} {
		id := addText(t, st, content)
		_, err := st.ToggleFavorite(ctx, id)
		require.NoError(t, err)
	}

	require.NoError(t, st.MaintainLimit(ctx, 1))

	items, err := st.GetItems(ctx, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"fav3"}, contents(items))
}

func TestMaintainLimitZeroClearsEverything(t *testing.T) {
	st, _ := newTestStore(t)
	ctx := context.Background()

	favID := addText(t, st, "even favorites")
	_, err := st.ToggleFavorite(ctx, favID)
	require.NoError(t, err)

	require.NoError(t, st.MaintainLimit(ctx, 0))

	items, err := st.GetItems(ctx, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestMaintainLimitUnderCapacityIsNoop(t *testing.T) {
	st, _ := newTestStore(t)
	ctx := context.Background()

	addText(t, st, "one")
	addText(t, st, "two")

	require.NoError(t, st.MaintainLimit(ctx, 5))

	items, err := st.GetItems(ctx, 10, 0)
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestTags(t *testing.T) {
	st, _ := newTestStore(t)
	ctx := context.Background()

	workID, err := st.AddTag(ctx, "work")
	require.NoError(t, err)

	again, err := st.AddTag(ctx, "work")
	require.NoError(t, err)
	assert.Equal(t, workID, again, "adding an existing tag returns the same id")

	codeID, err := st.AddTag(ctx, "code")
	require.NoError(t, err)

	tags, err := st.GetAllTags(ctx)
	require.NoError(t, err)
	require.Len(t, tags, 2)
	assert.Equal(t, "code", tags[0].Name)
	assert.Equal(t, "work", tags[1].Name)

	id1 := addText(t, st, "snippet one")
	id2 := addText(t, st, "snippet two")
	require.NoError(t, st.AddItemTag(ctx, id1, workID))
	require.NoError(t, st.AddItemTag(ctx, id2, workID))
	require.NoError(t, st.AddItemTag(ctx, id2, codeID))
	require.NoError(t, st.AddItemTag(ctx, id2, codeID)) // idempotent

	items, err := st.GetItemsByTag(ctx, "work", 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"snippet two", "snippet one"}, contents(items))
	assert.Equal(t, []string{"code", "work"}, items[0].Tags)

	items, err = st.GetItemsByTag(ctx, "work", 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"snippet two"}, contents(items), "limit keeps the most recent items")

	require.NoError(t, st.RemoveItemTag(ctx, id2, workID))
	items, err = st.GetItemsByTag(ctx, "work", 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"snippet one"}, contents(items))

	items, err = st.GetItemsByTag(ctx, "nonexistent", 10)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestCounts(t *testing.T) {
	st, _ := newTestStore(t)
	ctx := context.Background()

	addText(t, st, "a")
	favID := addText(t, st, "b")
	_, err := st.ToggleFavorite(ctx, favID)
	require.NoError(t, err)

	total, favorites, err := st.Counts(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.EqualValues(t, 1, favorites)
}

func TestFullTextIndexStaysInSync(t *testing.T) {
	st, _ := newTestStore(t)
	ctx := context.Background()

	id := addText(t, st, "synchronized entry")

	var matches int64
	require.NoError(t, st.db.QueryRow(
		"SELECT COUNT(*) FROM clipboard_fts WHERE clipboard_fts MATCH 'synchronized'",
	).Scan(&matches))
	assert.EqualValues(t, 1, matches)

	require.NoError(t, st.DeleteItem(ctx, id))
	require.NoError(t, st.db.QueryRow(
		"SELECT COUNT(*) FROM clipboard_fts WHERE clipboard_fts MATCH 'synchronized'",
	).Scan(&matches))
	assert.Zero(t, matches)
}
