package domain

import "time"

// Survey identifies one uploaded third-party compensation survey dataset.
type Survey struct {
	ID         string    `json:"id" validate:"required"`
	Name       string    `json:"name" validate:"required"`
	Source     string    `json:"source" validate:"required"` // publisher label, e.g. "MGMA"
	Year       string    `json:"year" validate:"required"`
	UploadedAt time.Time `json:"uploaded_at"`
	RowCount   int       `json:"row_count"`
}

// RawSurveyRow is an opaque key-value record exactly as uploaded.
// Raw rows never travel past the normalization boundary.
type RawSurveyRow map[string]interface{}

// ColumnMapping maps a survey's column names onto canonical field names.
// Consulted before the conventional name-variant fallback lists.
type ColumnMapping struct {
	SurveyID string            `json:"survey_id" validate:"required"`
	Columns  map[string]string `json:"columns"` // canonical field -> source column
}

// Pagination bounds a survey data fetch.
type Pagination struct {
	Offset int `json:"offset" validate:"min=0"`
	Limit  int `json:"limit" validate:"min=1,max=10000"`
}

// SurveyDataPage is one page of raw survey rows.
type SurveyDataPage struct {
	Rows  []RawSurveyRow `json:"rows"`
	Total int            `json:"total"`
}
