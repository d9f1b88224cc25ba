package view

// Default and maximum pagination window.
const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxPage      = 1 << 30
	MaxLimit     = 100
)

// PageRequest carries the shared page/limit parameters. Page is 1-based.
type PageRequest struct {
	Page  int64
	Limit int64
}

// Normalize applies defaults, floors and ceilings. Out-of-range values
// fall back to the defaults or clamp rather than failing: pagination
// parameters are a window, not input worth rejecting a request over.
// The ceilings keep Skip well inside int64 range.
func (p PageRequest) Normalize() PageRequest {
	if p.Page < 1 {
		p.Page = DefaultPage
	}
	if p.Page > MaxPage {
		p.Page = MaxPage
	}
	if p.Limit < 1 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	return p
}

// Skip returns the number of records preceding the window.
func (p PageRequest) Skip() int64 {
	return (p.Page - 1) * p.Limit
}

// Page is the result envelope every list operation returns. HasMore is
// true iff the underlying result set held more records than Page*Limit.
// An empty Data slice with HasMore false is a successful "no content"
// result, never an error.
type Page[T any] struct {
	Data    []T   `json:"data"`
	Page    int64 `json:"page"`
	Limit   int64 `json:"limit"`
	HasMore bool  `json:"hasMore"`
}

// NewPage trims an over-fetched window (limit+1 records requested) to the
// requested size and derives HasMore from the surplus.
func NewPage[T any](data []T, req PageRequest) Page[T] {
	hasMore := int64(len(data)) > req.Limit
	if hasMore {
		data = data[:req.Limit]
	}
	if data == nil {
		data = []T{}
	}
	return Page[T]{Data: data, Page: req.Page, Limit: req.Limit, HasMore: hasMore}
}

// MapPage converts a page of one element type into another.
func MapPage[In, Out any](page Page[In], convert func(In) Out) Page[Out] {
	out := Page[Out]{
		Data:    make([]Out, len(page.Data)),
		Page:    page.Page,
		Limit:   page.Limit,
		HasMore: page.HasMore,
	}
	for i, item := range page.Data {
		out.Data[i] = convert(item)
	}
	return out
}
