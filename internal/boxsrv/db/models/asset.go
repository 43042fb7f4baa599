package models

// Asset is one inventory unit ("box") inside a tenant namespace. ID is the
// store-internal row identifier and must never leave the db layer; the
// registry strips it before returning records.
type Asset struct {
	ID       int64
	Serial   int
	Code     string
	Name     string
	NameCode string
	Contents []string
	Notes    string
	InUse    bool
}

// AssetFilter is an optional conjunction of match conditions. Nil fields
// are not applied. ContainsItem matches assets whose contents include the
// given item reference.
type AssetFilter struct {
	InUse        *bool
	Serial       *int
	Notes        *string
	Name         *string
	ContainsItem *string
}

// IsEmpty reports whether no condition is set.
func (f *AssetFilter) IsEmpty() bool {
	if f == nil {
		return true
	}
	return f.InUse == nil && f.Serial == nil && f.Notes == nil && f.Name == nil && f.ContainsItem == nil
}

// AssetMutation carries the only three fields an update may touch.
type AssetMutation struct {
	Notes    string
	Contents []string
	InUse    bool
}
