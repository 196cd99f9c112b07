package user

// Page is one zero-based page of users plus the totals of the whole result set.
type Page struct {
	Users      []User
	TotalCount int64 // TotalCount is the number of matching records across all pages
	Number     int   // Number is the zero-based page index
	Size       int   // Size is the requested page size
}

// TotalPages returns the number of pages of Size needed to hold TotalCount records.
// A zero page size yields zero pages.
func (p Page) TotalPages() int {
	if p.Size <= 0 {
		return 0
	}
	return int((p.TotalCount + int64(p.Size) - 1) / int64(p.Size))
}

// Offset returns the number of records to skip for the given zero-based page.
func Offset(page, size int) int {
	return page * size
}
