package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Entry is one labeled unit: a stored file plus the outputs of the model pipelines.
// The text fields are opaque and stored verbatim.
type Entry struct {
	ID                   int64  `gorm:"column:image_id;primaryKey;autoIncrement" json:"image_id"`
	FileURL              string `gorm:"column:file_url;type:text" json:"file_url"`
	DatasetID            *int64 `gorm:"column:dataset_id;index:idx_entry_dataset" json:"dataset_id"`
	TextExtraction       string `gorm:"column:text_extraction;type:text" json:"text_extraction"`
	TextClassification   string `gorm:"column:text_classification;type:text" json:"text_classification"`
	VisualClassification string `gorm:"column:visual_classification;type:text" json:"visual_classification"`
	AttachmentType       string `gorm:"column:attachment_type;type:text" json:"attachment_type"`
	LabreportExtraction  string `gorm:"column:labreport_extraction;type:text" json:"labreport_extraction"`
	NutritionExtraction  string `gorm:"column:nutrition_extraction;type:text" json:"nutrition_extraction"`
	Output               string `gorm:"column:output;type:text" json:"output"`
	History              string `gorm:"column:history;type:text" json:"history"`
}

// TableName returns the database table name for Entry.
// Parameters: none.
// Returns:
//   - string: table name for GORM mapping.
func (Entry) TableName() string {
	return "entry"
}

// PagedEntry is an Entry carrying the total page count of the listing it came from.
type PagedEntry struct {
	Entry
	TotalPages int `json:"totalPages"`
}

// EntryFields holds the caller-writable columns of an entry.
// Absent JSON keys decode to empty strings and a null dataset.
type EntryFields struct {
	FileURL              string `json:"file_url"`
	DatasetID            NullableID `json:"dataset_id"`
	TextExtraction       string `json:"text_extraction"`
	TextClassification   string `json:"text_classification"`
	VisualClassification string `json:"visual_classification"`
	AttachmentType       string `json:"attachment_type"`
	LabreportExtraction  string `json:"labreport_extraction"`
	NutritionExtraction  string `json:"nutrition_extraction"`
	Output               string `json:"output"`
	History              string `json:"history"`
}

// ToEntry builds an unsaved Entry from the fields.
func (f *EntryFields) ToEntry() *Entry {
	return &Entry{
		FileURL:              f.FileURL,
		DatasetID:            f.DatasetID.Ptr(),
		TextExtraction:       f.TextExtraction,
		TextClassification:   f.TextClassification,
		VisualClassification: f.VisualClassification,
		AttachmentType:       f.AttachmentType,
		LabreportExtraction:  f.LabreportExtraction,
		NutritionExtraction:  f.NutritionExtraction,
		Output:               f.Output,
		History:              f.History,
	}
}

// Columns returns every writable column keyed by its database name.
// A null dataset is kept as an explicit nil so updates clear it.
func (f *EntryFields) Columns() map[string]interface{} {
	var datasetID interface{}
	if p := f.DatasetID.Ptr(); p != nil {
		datasetID = *p
	}
	return map[string]interface{}{
		"file_url":              f.FileURL,
		"dataset_id":            datasetID,
		"text_extraction":       f.TextExtraction,
		"text_classification":   f.TextClassification,
		"visual_classification": f.VisualClassification,
		"attachment_type":       f.AttachmentType,
		"labreport_extraction":  f.LabreportExtraction,
		"nutrition_extraction":  f.NutritionExtraction,
		"output":                f.Output,
		"history":               f.History,
	}
}

// NullableID is an optional integer identifier that accepts JSON numbers,
// numeric strings, empty strings and null.
type NullableID struct {
	Value int64
	Valid bool
}

// NewNullableID returns a valid NullableID holding id.
func NewNullableID(id int64) NullableID {
	return NullableID{Value: id, Valid: true}
}

// Ptr returns a pointer to the value, or nil when unset.
func (n NullableID) Ptr() *int64 {
	if !n.Valid {
		return nil
	}
	v := n.Value
	return &v
}

// UnmarshalJSON implements json.Unmarshaler.
func (n *NullableID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*n = NullableID{}
		return nil
	}

	var raw string
	if data[0] == '"' {
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
	} else {
		raw = string(data)
	}

	raw = strings.TrimSpace(raw)
	if raw == "" {
		*n = NullableID{}
		return nil
	}

	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		// Accept integral JSON floats such as 3.0
		f, ferr := strconv.ParseFloat(raw, 64)
		if ferr != nil || f != float64(int64(f)) {
			return fmt.Errorf("invalid dataset id %q", raw)
		}
		v = int64(f)
	}
	*n = NullableID{Value: v, Valid: true}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (n NullableID) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatInt(n.Value, 10)), nil
}
