package dto

// CommerceHookRequest is a change notification from the commerce backend
type CommerceHookRequest struct {
	EntityType string   `json:"entityType" binding:"required"`
	Event      string   `json:"event" binding:"required,oneof=created updated deleted"`
	ID         string   `json:"id" binding:"required"`
	Fields     []string `json:"fields"`
}

// CMSHookRequest is an entry edit notification from the CMS
type CMSHookRequest struct {
	EntityType string         `json:"entityType" binding:"required"`
	Entry      map[string]any `json:"entry" binding:"required"`
}
