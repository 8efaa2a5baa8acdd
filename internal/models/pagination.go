package models

// Pagination describes a page of a listing.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}

// ConflictFilter narrows conflict listings.
type ConflictFilter struct {
	Type     ConflictType
	Severity Severity
	Status   ConflictStatus
	Page     int
	PageSize int
}
