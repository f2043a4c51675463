package collection

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	id    string
	title string
	date  string
	tags  []string
	score float64
	fav   bool
}

var itemAccessors = Accessors[item]{
	Title: func(i item) string { return i.title },
	Date:  func(i item) string { return i.date },
	Tags:  func(i item) []string { return i.tags },
	Score: func(i item) float64 { return i.score },
	Flags: map[FlagMode]func(item) bool{
		FlagFavorites: func(i item) bool { return i.fav },
	},
}

func ids(items []item) []string {
	out := make([]string, 0, len(items))
	for _, i := range items {
		out = append(out, i.id)
	}
	return out
}

func sampleItems() []item {
	return []item{
		{id: "a", title: "Bridges", date: "2024-01-03", tags: []string{"Prosth"}, score: 70, fav: true},
		{id: "b", title: "anesthesia", date: "2024-01-01", tags: []string{"Pharm"}, score: 90},
		{id: "c", title: "", date: "garbage", tags: []string{"Pharm", "General"}, score: 70},
		{id: "d", title: "Crowns", date: "2024-01-02T08:00:00Z", tags: []string{"Prosth"}, score: 85, fav: true},
	}
}

func TestFilter_Predicates(t *testing.T) {
	items := sampleItems()

	assert.Equal(t, []string{"a", "b", "c", "d"}, ids(Filter(items, itemAccessors, Criteria{Category: AllCategories, Flag: FlagAll})))
	assert.Equal(t, []string{"b", "c"}, ids(Filter(items, itemAccessors, Criteria{Category: "Pharm"})))
	assert.Equal(t, []string{"a", "d"}, ids(Filter(items, itemAccessors, Criteria{Flag: FlagFavorites})))
	assert.Equal(t, []string{"b"}, ids(Filter(items, itemAccessors, Criteria{Search: "  ANES "})))
	assert.Equal(t, []string{"a", "d"}, ids(Filter(items, itemAccessors, Criteria{Search: "r", Category: "Prosth", Flag: FlagFavorites})))
}

func TestFilter_EmptyTitleNeverMatchesSearch(t *testing.T) {
	out := Filter(sampleItems(), itemAccessors, Criteria{Search: "a"})
	assert.NotContains(t, ids(out), "c")
}

func TestFilter_FlagWithoutAccessorIsInactive(t *testing.T) {
	out := Filter(sampleItems(), itemAccessors, Criteria{Flag: FlagRecent})
	assert.Len(t, out, 4)
}

func TestFilter_Correctness(t *testing.T) {
	items := sampleItems()
	c := Criteria{Search: "r", Category: "Prosth", Flag: FlagFavorites}
	out := Filter(items, itemAccessors, c)

	matches := func(i item) bool {
		return i.fav && hasTag(itemAccessors, i, "Prosth") && titleMatches(itemAccessors, i, "r")
	}
	kept := map[string]bool{}
	for _, i := range out {
		kept[i.id] = true
		assert.True(t, matches(i), "kept %s must satisfy all predicates", i.id)
	}
	for _, i := range items {
		if !kept[i.id] {
			assert.False(t, matches(i), "dropped %s must fail a predicate", i.id)
		}
	}
}

func TestSort_ByDate(t *testing.T) {
	items := sampleItems()

	desc := Sort(items, itemAccessors, SortByDate, Descending)
	assert.Equal(t, []string{"a", "d", "b", "c"}, ids(desc))

	asc := Sort(items, itemAccessors, SortByDate, Ascending)
	assert.Equal(t, []string{"c", "b", "d", "a"}, ids(asc))
}

func TestSort_ByScoreIsStable(t *testing.T) {
	items := sampleItems()

	asc := Sort(items, itemAccessors, SortByScore, Ascending)
	assert.Equal(t, []string{"a", "c", "d", "b"}, ids(asc))

	desc := Sort(items, itemAccessors, SortByScore, Descending)
	assert.Equal(t, []string{"b", "d", "a", "c"}, ids(desc))
}

func TestSort_ByTitle(t *testing.T) {
	asc := Sort(sampleItems(), itemAccessors, SortByTitle, Ascending)
	assert.Equal(t, []string{"c", "b", "a", "d"}, ids(asc))
}

func TestSort_DoesNotMutateInput(t *testing.T) {
	items := sampleItems()
	before := ids(items)
	_ = Sort(items, itemAccessors, SortByScore, Descending)
	assert.Equal(t, before, ids(items))
}

func TestSort_UnknownKeyKeepsOrder(t *testing.T) {
	out := Sort(sampleItems(), itemAccessors, SortKey("popularity"), Ascending)
	assert.Equal(t, []string{"a", "b", "c", "d"}, ids(out))
}

func TestParseDate(t *testing.T) {
	assert.Equal(t, epoch, ParseDate(""))
	assert.Equal(t, epoch, ParseDate("yesterday"))
	assert.Equal(t, 2024, ParseDate("2024-03-18").Year())
	assert.Equal(t, 15, ParseDate("2024-03-18 15:04:05").Hour())
}

func numbered(n int) []item {
	out := make([]item, n)
	for i := range out {
		out[i] = item{id: fmt.Sprintf("%02d", i)}
	}
	return out
}

func TestPaginate(t *testing.T) {
	items := numbered(25)

	p := Paginate(items, 3, 10)
	assert.Equal(t, 3, p.TotalPages)
	assert.Equal(t, 25, p.TotalCount)
	assert.Len(t, p.Items, 5)
	assert.Equal(t, "20", p.Items[0].id)

	beyond := Paginate(items, 4, 10)
	assert.NotNil(t, beyond.Items)
	assert.Empty(t, beyond.Items)

	zero := Paginate(items, 0, 10)
	assert.Empty(t, zero.Items)

	empty := Paginate([]item{}, 1, 10)
	assert.Equal(t, 0, empty.TotalPages)
	assert.Empty(t, empty.Items)
}

func TestPaginate_Completeness(t *testing.T) {
	for _, n := range []int{0, 1, 9, 10, 11, 25, 100} {
		items := numbered(n)
		p := Paginate(items, 1, 10)

		var all []item
		for page := 1; page <= p.TotalPages; page++ {
			all = append(all, Paginate(items, page, 10).Items...)
		}
		require.Len(t, all, n)
		assert.Equal(t, ids(items), ids(all))
	}
}

func TestPaginate_DefaultPageSize(t *testing.T) {
	p := Paginate(numbered(12), 1, 0)
	assert.Equal(t, DefaultPageSize, p.PageSize)
	assert.Equal(t, 2, p.TotalPages)
}

func TestServerPage(t *testing.T) {
	p := ServerPage(numbered(10), 2, 10, 25)
	assert.Equal(t, 3, p.TotalPages)
	assert.Equal(t, 25, p.TotalCount)

	nilPage := ServerPage[item](nil, 1, 10, 0)
	assert.NotNil(t, nilPage.Items)
}

func TestViewState_ResetsPageOnChange(t *testing.T) {
	v := DefaultViewState()
	v.SetPage(3)

	v.SetSearch("")
	assert.Equal(t, 3, v.Page, "unchanged search keeps the page")

	v.SetSearch("endo")
	assert.Equal(t, 1, v.Page)

	v.SetPage(2)
	v.SetCategory("Anatomy")
	assert.Equal(t, 1, v.Page)

	v.SetPage(2)
	v.SetFlag(FlagFavorites)
	assert.Equal(t, 1, v.Page)

	v.SetPage(2)
	v.ToggleSort(SortByScore)
	assert.Equal(t, 1, v.Page)
}

func TestViewState_ToggleSort(t *testing.T) {
	v := DefaultViewState()
	require.Equal(t, SortByDate, v.SortKey)
	require.Equal(t, Descending, v.Direction)

	v.ToggleSort(SortByDate)
	assert.Equal(t, Ascending, v.Direction)
	v.ToggleSort(SortByDate)
	assert.Equal(t, Descending, v.Direction)

	v.ToggleSort(SortByDate)
	v.ToggleSort(SortByTitle)
	assert.Equal(t, SortByTitle, v.SortKey)
	assert.Equal(t, Descending, v.Direction)
}

func TestViewState_ApplyExplicitPageWins(t *testing.T) {
	v := DefaultViewState()
	search := "crown"
	page := 2
	v.Apply(ViewInput{Search: &search, Page: &page})

	assert.Equal(t, "crown", v.Search)
	assert.Equal(t, 2, v.Page)
}

func TestViewState_EmptyCategoryMeansAll(t *testing.T) {
	v := DefaultViewState()
	v.SetCategory("Anatomy")
	v.SetCategory("")
	assert.Equal(t, AllCategories, v.Category)
}

func TestPipeline_Idempotent(t *testing.T) {
	items := sampleItems()
	before := ids(items)
	p := NewPipeline(itemAccessors, 2)
	v := DefaultViewState()
	v.ToggleSort(SortByScore)

	first := p.Run(items, v)
	second := p.Run(items, v)

	assert.Equal(t, first, second)
	assert.Equal(t, before, ids(items))
}

func TestSequencer(t *testing.T) {
	var s Sequencer
	first := s.Next()
	second := s.Next()

	assert.False(t, s.IsLatest(first))
	assert.True(t, s.IsLatest(second))
}
