package models

// AuditLog records who changed which ledger resource.
type AuditLog struct {
	Base
	UserID       string `gorm:"type:uuid;not null;index" json:"user_id"`
	Action       string `gorm:"not null" json:"action"`
	ResourceType string `gorm:"not null" json:"resource_type"`
	ResourceID   string `json:"resource_id"`
	IPAddress    string `json:"ip_address"`
	Changes      string `json:"changes,omitempty"`
}

// All returns every model in migration order.
func All() []any {
	return []any{
		&User{},
		&Account{},
		&Budget{},
		&Transaction{},
		&HistoryEntry{},
		&AuditLog{},
	}
}
