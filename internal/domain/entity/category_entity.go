package entity

// Category groups todos. IDs are chosen by the client and are unique across all owners.
type Category struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Icon    string `json:"icon"`
	Color   string `json:"color"`
	OwnerID string `json:"-"`
}

// CategoryPatch lists the fields an update may change; nil means keep.
type CategoryPatch struct {
	Name  *string
	Icon  *string
	Color *string
}

func (p CategoryPatch) IsEmpty() bool {
	return p.Name == nil && p.Icon == nil && p.Color == nil
}

type defaultCategory struct {
	suffix, name, icon, color string
}

var defaultCategories = []defaultCategory{
	{"work", "Work", "Briefcase", "#3b82f6"},
	{"personal", "Personal", "User", "#10b981"},
	{"shopping", "Shopping", "ShoppingCart", "#f59e0b"},
	{"health", "Health", "Heart", "#ef4444"},
	{"study", "Study", "BookOpen", "#8b5cf6"},
	{"home", "Home", "Home", "#ec4899"},
}

// DefaultCategories returns the six starter categories for an owner.
// IDs are prefixed with the owner id to keep them globally unique.
func DefaultCategories(ownerID string) []Category {
	out := make([]Category, 0, len(defaultCategories))
	for _, d := range defaultCategories {
		out = append(out, Category{
			ID:      ownerID + "-" + d.suffix,
			Name:    d.name,
			Icon:    d.icon,
			Color:   d.color,
			OwnerID: ownerID,
		})
	}
	return out
}
