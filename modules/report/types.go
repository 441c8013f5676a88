package report

// ExportRequest asks for a rendered report over a due-date range.
type ExportRequest struct {
	UserID    uint   `json:"user_id"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Language  string `json:"language"`
}

// ExportResponse carries the rendered document.
type ExportResponse struct {
	FileName    string `json:"file_name"`
	ContentType string `json:"content_type"`
	Data        []byte `json:"data"`
}
