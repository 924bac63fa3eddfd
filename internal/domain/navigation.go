package domain

// NavigationItem is one entry of the console menu. Items whose Authority the
// user does not satisfy are left out of the menu.
type NavigationItem struct {
	Key       string           `json:"key"`
	Title     string           `json:"title"`
	Path      string           `json:"path,omitempty"`
	Icon      string           `json:"icon,omitempty"`
	Authority []string         `json:"authority"`
	Children  []NavigationItem `json:"children,omitempty"`
}

// Navigation returns the console menu tree.
func Navigation() []NavigationItem {
	return []NavigationItem{
		{Key: "home", Title: "Home", Path: "/home", Icon: "home", Authority: []string{}},
		{
			Key:       "catalog",
			Title:     "Catalog",
			Icon:      "catalog",
			Authority: []string{},
			Children: []NavigationItem{
				{Key: "catalog.websites", Title: "Websites", Path: "/websites", Icon: "globe", Authority: []string{TagWebsiteManagement}},
				{Key: "catalog.sellers", Title: "Sellers", Path: "/sellers", Icon: "store", Authority: []string{TagSellerManagement}},
				{Key: "catalog.categories", Title: "Categories", Path: "/categories", Icon: "folder", Authority: []string{TagContentManagement}},
				{Key: "catalog.products", Title: "Products", Path: "/products", Icon: "box", Authority: []string{TagProductManagement}},
			},
		},
		{Key: "users", Title: "Users", Path: "/users", Icon: "users", Authority: []string{TagUserManagement}},
	}
}

// RouteAuthority returns the roles the menu declares for path, and whether
// the path is part of the menu.
func RouteAuthority(path string) ([]string, bool) {
	return findAuthority(Navigation(), path)
}

func findAuthority(items []NavigationItem, path string) ([]string, bool) {
	for _, item := range items {
		if item.Path == path {
			return append([]string{}, item.Authority...), true
		}
		if roles, ok := findAuthority(item.Children, path); ok {
			return roles, true
		}
	}
	return nil, false
}
