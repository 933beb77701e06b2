package entities

// Group is a named set of permissions. Users join the group named after
// their user type.
type Group struct {
	ID          uint         `gorm:"primaryKey" json:"id"`
	Name        string       `gorm:"uniqueIndex;size:150;not null" json:"name"`
	Permissions []Permission `gorm:"many2many:group_permissions" json:"permissions,omitempty"`
}

// Permission grants one action on one resource, e.g. codename "view_book".
type Permission struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Resource string `gorm:"size:100;not null;index:idx_permission_resource_action,unique" json:"resource"`
	Action   string `gorm:"size:20;not null;index:idx_permission_resource_action,unique" json:"action"`
	Codename string `gorm:"uniqueIndex;size:100;not null" json:"codename"`
	Name     string `gorm:"size:255" json:"name"`
}

func (Group) TableName() string {
	return "auth_groups"
}

func (Permission) TableName() string {
	return "auth_permissions"
}
