package domain

// Dataset is a named grouping of entries.
// Names are caller supplied and not unique.
// Entries is never loaded; it declares the entry.dataset_id foreign key.
type Dataset struct {
	ID      int64   `gorm:"column:dataset_id;primaryKey;autoIncrement" json:"id"`
	Name    string  `gorm:"column:name;type:text" json:"name"`
	Entries []Entry `gorm:"foreignKey:DatasetID;references:ID" json:"-"`
}

// TableName returns the database table name for Dataset.
// Parameters: none.
// Returns:
//   - string: table name for GORM mapping.
func (Dataset) TableName() string {
	return "dataset"
}

// DatasetSummary is a dataset together with the number of entries referencing it.
type DatasetSummary struct {
	ID         int64  `gorm:"column:id" json:"id"`
	Name       string `gorm:"column:name" json:"name"`
	NumEntries int64  `gorm:"column:num_entries" json:"num_entries"`
}
