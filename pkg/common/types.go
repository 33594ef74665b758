package common

// Response is the envelope for every API response.
type Response struct {
	Success  bool        `json:"success"`
	Data     interface{} `json:"data"`
	Metadata *Metadata   `json:"metadata,omitempty"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata describes the page of data carried by a Response.
type Metadata struct {
	Total    int64 `json:"total"`
	Count    int64 `json:"count"`
	Filtered bool  `json:"filtered"`
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`

	// Resolved sort, for the renderer's column headers.
	SortColumn   string `json:"sort_column,omitempty"`
	SortReversed bool   `json:"sort_reversed,omitempty"`

	// Visible field names, for the renderer's column layout.
	Fields []string `json:"fields,omitempty"`
}

// APIError carries a machine readable code plus a human readable message.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

// BulkResult reports the outcome of a bulk destroy. IDs holds the ids
// actually destroyed; requested ids the caller was not allowed to see, or
// that no longer exist, count as not destroyed.
type BulkResult struct {
	Destroyed    int      `json:"destroyed"`
	NotDestroyed int      `json:"not_destroyed"`
	IDs          []string `json:"ids,omitempty"`
}
