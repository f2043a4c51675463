package collection

// Pipeline 客户端列表流水线：过滤 → 排序 → 分页，同步执行
type Pipeline[T any] struct {
	Accessors Accessors[T]
	PageSize  int
}

func NewPipeline[T any](acc Accessors[T], pageSize int) Pipeline[T] {
	return Pipeline[T]{Accessors: acc, PageSize: pageSize}
}

func (p Pipeline[T]) Run(base []T, v ViewState) Page[T] {
	filtered := Filter(base, p.Accessors, v.Criteria())
	sorted := Sort(filtered, p.Accessors, v.SortKey, v.Direction)
	return Paginate(sorted, v.Page, p.PageSize)
}
