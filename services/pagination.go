package services

import "math"

const (
	DefaultPageSize = 50
	MaxPageSize     = 100
)

// Page is a 1-based page request
type Page struct {
	Number int
	Size   int
}

func NewPage(number, size int) (Page, error) {
	if number < 1 {
		return Page{}, newError(ErrValidation, "page must be at least 1")
	}
	if size < 1 || size > MaxPageSize {
		return Page{}, newError(ErrValidation, "page_size must be between 1 and 100")
	}
	if number > math.MaxInt/size {
		return Page{}, newError(ErrValidation, "page is out of range")
	}
	return Page{Number: number, Size: size}, nil
}

func (p Page) Offset() int {
	return (p.Number - 1) * p.Size
}
