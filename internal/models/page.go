package models

// Sort mirrors the sort descriptor of a paged response.
type Sort struct {
	Sorted   bool `json:"sorted"`
	Unsorted bool `json:"unsorted"`
	Empty    bool `json:"empty"`
}

// Pageable describes which slice of the collection a page holds.
type Pageable struct {
	PageNumber int   `json:"pageNumber"`
	PageSize   int   `json:"pageSize"`
	Offset     int64 `json:"offset"`
	Paged      bool  `json:"paged"`
	Unpaged    bool  `json:"unpaged"`
	Sort       Sort  `json:"sort"`
}

// Page is the paginated envelope returned by list endpoints. Number is
// zero-based.
type Page[T any] struct {
	Content          []T      `json:"content"`
	Pageable         Pageable `json:"pageable"`
	TotalPages       int      `json:"totalPages"`
	TotalElements    int64    `json:"totalElements"`
	Last             bool     `json:"last"`
	First            bool     `json:"first"`
	Size             int      `json:"size"`
	Number           int      `json:"number"`
	NumberOfElements int      `json:"numberOfElements"`
	Empty            bool     `json:"empty"`
	Sort             Sort     `json:"sort"`
}

// NewPage builds an envelope for content found at the given zero-based page
// of a collection holding total elements.
func NewPage[T any](content []T, page, size int, total int64) *Page[T] {
	if content == nil {
		content = []T{}
	}
	totalPages := 0
	if size > 0 {
		totalPages = int((total + int64(size) - 1) / int64(size))
	}
	unsorted := Sort{Unsorted: true, Empty: true}
	return &Page[T]{
		Content: content,
		Pageable: Pageable{
			PageNumber: page,
			PageSize:   size,
			Offset:     int64(page) * int64(size),
			Paged:      true,
			Sort:       unsorted,
		},
		TotalPages:       totalPages,
		TotalElements:    total,
		Last:             page >= totalPages-1,
		First:            page == 0,
		Size:             size,
		Number:           page,
		NumberOfElements: len(content),
		Empty:            len(content) == 0,
		Sort:             unsorted,
	}
}
