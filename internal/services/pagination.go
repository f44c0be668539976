package services

const (
	defaultPageLimit = 10
	maxPageLimit     = 100
)

// normalizePaging applies the listing defaults (page=1, limit=10) and the
// server-enforced ceiling of 100 items per page.
func normalizePaging(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	return page, limit
}
