package auth

// Session is the identity attached to every authenticated request.
type Session struct {
	UserID      string `json:"user_id"`
	Email       string `json:"email,omitempty"`
	IsCompany   bool   `json:"is_company"`
	CompanyName string `json:"company_name,omitempty"`
}

func (s Session) Authenticated() bool {
	return s.UserID != ""
}
