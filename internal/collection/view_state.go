package collection

// ViewState 列表页的查看状态，由单个页面实例独占。
// 除 Page 外任一字段变化都会把 Page 重置为 1。
type ViewState struct {
	Search    string    `json:"search"`
	Category  string    `json:"category"`
	Flag      FlagMode  `json:"flag"`
	SortKey   SortKey   `json:"sortKey"`
	Direction Direction `json:"direction"`
	Page      int       `json:"page"`
}

func DefaultViewState() ViewState {
	return ViewState{
		Category:  AllCategories,
		Flag:      FlagAll,
		SortKey:   SortByDate,
		Direction: Descending,
		Page:      1,
	}
}

// ViewInput 一次用户输入，nil 字段表示未修改
type ViewInput struct {
	Search   *string   `json:"search"`
	Category *string   `json:"category"`
	Flag     *FlagMode `json:"flag" binding:"omitempty,flagmode"`
	Sort     *SortKey  `json:"sort" binding:"omitempty,sortkey"`
	Page     *int      `json:"page" binding:"omitempty,min=1"`
}

func (v *ViewState) Criteria() Criteria {
	return Criteria{Search: v.Search, Category: v.Category, Flag: v.Flag}
}

func (v *ViewState) SetSearch(s string) {
	if v.Search != s {
		v.Search = s
		v.Page = 1
	}
}

func (v *ViewState) SetCategory(c string) {
	if c == "" {
		c = AllCategories
	}
	if v.Category != c {
		v.Category = c
		v.Page = 1
	}
}

func (v *ViewState) SetFlag(f FlagMode) {
	if f == "" {
		f = FlagAll
	}
	if v.Flag != f {
		v.Flag = f
		v.Page = 1
	}
}

// ToggleSort 同一排序键再次请求时翻转方向；换键时方向重置为降序
func (v *ViewState) ToggleSort(key SortKey) {
	if v.SortKey == key {
		if v.Direction == Descending {
			v.Direction = Ascending
		} else {
			v.Direction = Descending
		}
	} else {
		v.SortKey = key
		v.Direction = Descending
	}
	v.Page = 1
}

func (v *ViewState) SetPage(n int) {
	if n < 1 {
		n = 1
	}
	v.Page = n
}

// ResetPage 基础集合被替换时调用
func (v *ViewState) ResetPage() {
	v.Page = 1
}

// Apply 依次应用 search、category、flag、sort、page；
// 同一次输入里显式给出的 page 优先于重置。
func (v *ViewState) Apply(in ViewInput) {
	if in.Search != nil {
		v.SetSearch(*in.Search)
	}
	if in.Category != nil {
		v.SetCategory(*in.Category)
	}
	if in.Flag != nil {
		v.SetFlag(*in.Flag)
	}
	if in.Sort != nil {
		v.ToggleSort(*in.Sort)
	}
	if in.Page != nil {
		v.SetPage(*in.Page)
	}
}

func ValidSortKey(k SortKey) bool {
	switch k {
	case SortByDate, SortByScore, SortByTitle:
		return true
	}
	return false
}

func ValidFlagMode(f FlagMode) bool {
	switch f {
	case FlagAll, FlagRecent, FlagFavorites:
		return true
	}
	return false
}
