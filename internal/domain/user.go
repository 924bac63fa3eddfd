package domain

// Well-known authority tags. Routes may declare any other tag as well.
const (
	RoleSuperAdmin = "super_admin"
	RoleAdmin      = "admin"
	RoleOperator   = "operator"
	RoleSeller     = "seller"
	RoleUser       = "user"

	TagUserManagement    = "user-management"
	TagContentManagement = "content-management"
	TagProductManagement = "product-management"
	TagWebsiteManagement = "website-management"
	TagSellerManagement  = "seller-management"
	TagPublic            = "public"
)

// User is the profile of the signed-in back-office operator, and the record
// type served by the user management screens.
type User struct {
	ID        string   `json:"id,omitempty"`
	UserName  string   `json:"userName"`
	Email     string   `json:"email"`
	Authority []string `json:"authority"`
	Avatar    string   `json:"avatar,omitempty"`
}

// Merge overlays the non-empty fields of other onto a copy of u.
func (u User) Merge(other User) User {
	merged := u
	if other.ID != "" {
		merged.ID = other.ID
	}
	if other.UserName != "" {
		merged.UserName = other.UserName
	}
	if other.Email != "" {
		merged.Email = other.Email
	}
	if len(other.Authority) > 0 {
		merged.Authority = append([]string(nil), other.Authority...)
	}
	if other.Avatar != "" {
		merged.Avatar = other.Avatar
	}
	return merged
}

// IsZero reports whether no profile field is set.
func (u User) IsZero() bool {
	return u.ID == "" && u.UserName == "" && u.Email == "" && len(u.Authority) == 0 && u.Avatar == ""
}
