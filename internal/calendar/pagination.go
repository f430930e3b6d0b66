package calendar

const (
	DefaultPageLimit = 10
	MaxPageLimit     = 100
)

// PageInfo описывает страницу выборки с limit/offset.
type PageInfo struct {
	Total   int64 `json:"total"`
	Limit   int   `json:"limit"`
	Offset  int   `json:"offset"`
	HasMore bool  `json:"has_more"`
}

// NormalizePage подставляет дефолты при некорректных значениях.
func NormalizePage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

func NewPageInfo(total int64, limit, offset int) PageInfo {
	return PageInfo{
		Total:   total,
		Limit:   limit,
		Offset:  offset,
		HasMore: int64(offset+limit) < total,
	}
}
