package models

// VisibilityFilter is the {showUsers, showBusinesses} map toggle.
type VisibilityFilter struct {
	ShowUsers      bool `json:"show_users"`
	ShowBusinesses bool `json:"show_businesses"`
}

var ShowAll = VisibilityFilter{ShowUsers: true, ShowBusinesses: true}

func (f VisibilityFilter) Allows(isCompany bool) bool {
	if isCompany {
		return f.ShowBusinesses
	}
	return f.ShowUsers
}
