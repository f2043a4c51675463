// Package collection 列表页通用的 过滤 → 排序 → 分页 流水线。
// 所有阶段都是纯函数，不修改输入，也不会因为数据形态而失败。
package collection

// AllCategories 分类过滤的哨兵值，表示不过滤
const AllCategories = "All"

const DefaultPageSize = 10

type FlagMode string

const (
	FlagAll       FlagMode = "all"
	FlagRecent    FlagMode = "recent"
	FlagFavorites FlagMode = "favorites"
)

type SortKey string

const (
	SortByDate  SortKey = "date"
	SortByScore SortKey = "score"
	SortByTitle SortKey = "title"
)

type Direction string

const (
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

// Accessors 记录字段访问器，由各页面按记录类型提供
type Accessors[T any] struct {
	Title func(T) string
	Date  func(T) string
	Tags  func(T) []string
	Score func(T) float64
	Flags map[FlagMode]func(T) bool
}

// Criteria 过滤条件，各条件之间为 AND
type Criteria struct {
	Search   string
	Category string
	Flag     FlagMode
}
