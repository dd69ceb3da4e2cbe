package migration

// PageSummary is the remaining-work report returned with every document
// migration result. NextPage is nil exactly when nothing remains, which
// is how callers resume long migrations across invocations.
type PageSummary struct {
	CurrentPage    int  `json:"currentPage"`
	TotalPages     int  `json:"totalPages"`
	RemainingPages int  `json:"remainingPages"`
	NextPage       *int `json:"nextPage"`
}

// Paginate derives the page summary for a 1-based page over totalCount
// rows. A page past the end simply reports zero remaining pages.
func Paginate(totalCount int64, page, pageSize int) PageSummary {
	totalPages := int((totalCount + int64(pageSize) - 1) / int64(pageSize))

	remaining := totalPages - page
	if remaining < 0 {
		remaining = 0
	}

	summary := PageSummary{
		CurrentPage:    page,
		TotalPages:     totalPages,
		RemainingPages: remaining,
	}
	if remaining > 0 {
		next := page + 1
		summary.NextPage = &next
	}
	return summary
}

// Offset converts a 1-based page into the LIMIT/OFFSET offset.
func Offset(page, pageSize int) int {
	return (page - 1) * pageSize
}
