package pagination

// Response is the JSON envelope of a paginated listing.
type Response[T any] struct {
	Data       []T  `json:"data"`
	Pagination Meta `json:"pagination"`
}

// Meta describes the page that was served.
type Meta struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
	Count  int `json:"count"`
}

// NewResponse wraps one page of items. A nil page is encoded as an empty array.
func NewResponse[T any](items []T, params Params) Response[T] {
	if items == nil {
		items = []T{}
	}
	return Response[T]{
		Data: items,
		Pagination: Meta{
			Limit:  params.Limit,
			Offset: params.Offset,
			Count:  len(items),
		},
	}
}
