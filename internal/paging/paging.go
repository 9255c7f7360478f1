// Package paging holds the page envelope shared by every list endpoint.
package paging

import (
	"math"
	"strconv"

	"github.com/gofiber/fiber/v2"
)

const MaxSize = 100

// maxOffset bounds page*size so a huge page number reads past the end of the
// data instead of overflowing.
const maxOffset = math.MaxInt32

// Page is the list envelope. Page numbers are zero based.
type Page[T any] struct {
	Content       []T   `json:"content"`
	Page          int   `json:"page"`
	Size          int   `json:"size"`
	TotalPages    int   `json:"totalPages"`
	TotalElements int64 `json:"totalElements"`
}

func New[T any](content []T, page, size int, total int64) Page[T] {
	if content == nil {
		content = []T{}
	}
	pages := 0
	if size > 0 {
		pages = int((total + int64(size) - 1) / int64(size))
	}
	return Page[T]{
		Content:       content,
		Page:          page,
		Size:          size,
		TotalPages:    pages,
		TotalElements: total,
	}
}

// Request is a normalised page/size pair.
type Request struct {
	Page int
	Size int
}

func (r Request) Offset() int { return r.Page * r.Size }

// Normalize clamps page to [0, maxOffset/size] and size to (0, MaxSize],
// falling back to defaultSize.
func Normalize(page, size, defaultSize int) Request {
	if page < 0 {
		page = 0
	}
	if size <= 0 {
		size = defaultSize
	}
	if size > MaxSize {
		size = MaxSize
	}
	if page > maxOffset/size {
		page = maxOffset / size
	}
	return Request{Page: page, Size: size}
}

// FromQuery reads ?page and ?size. Unparseable values fall back to defaults.
func FromQuery(c *fiber.Ctx, defaultSize int) Request {
	page, err := strconv.Atoi(c.Query("page"))
	if err != nil {
		page = 0
	}
	size, err := strconv.Atoi(c.Query("size"))
	if err != nil {
		size = defaultSize
	}
	return Normalize(page, size, defaultSize)
}
