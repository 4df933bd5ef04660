package pagination

const (
	// DefaultPerPage is the standard page size when per_page is not provided.
	DefaultPerPage = 25
	// MaxPerPage is the largest page the upstream order API serves.
	MaxPerPage = 200
)

// Params holds page-number pagination inputs from controllers or services.
type Params struct {
	Page    int
	PerPage int
}

// Normalize fills defaults for zero values and caps the page size.
func Normalize(p Params, defaultPerPage int) Params {
	if defaultPerPage <= 0 {
		defaultPerPage = DefaultPerPage
	}
	if p.Page <= 0 {
		p.Page = 1
	}
	if p.PerPage <= 0 {
		p.PerPage = defaultPerPage
	}
	if p.PerPage > MaxPerPage {
		p.PerPage = MaxPerPage
	}
	return p
}

// TotalPages returns how many pages of perPage rows cover total.
func TotalPages(total, perPage int) int {
	if total <= 0 || perPage <= 0 {
		return 0
	}
	return (total + perPage - 1) / perPage
}
