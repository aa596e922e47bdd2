package validator

// Request DTOs shared by the service and handler layers.

// PostMessageRequest is one user turn in a conversation.
type PostMessageRequest struct {
	Message string `json:"message" validate:"required,notblank,max=8000"`
}

// CorpusCreateRequest creates one corpus item. Content is required regardless
// of source type; file and weblink sources still carry manually entered or
// extracted text.
type CorpusCreateRequest struct {
	Title       string  `json:"title" validate:"required,max=255"`
	Type        string  `json:"type" validate:"required,oneof=document policy syllabus faq manual"`
	SourceType  string  `json:"source_type" validate:"omitempty,oneof=text pdf excel csv weblink"`
	Content     string  `json:"content" validate:"required,notblank"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	FileURL     *string `json:"file_url" validate:"omitempty,max=500"`
	WebLink     *string `json:"web_link" validate:"omitempty,max=500"`
	FileName    *string `json:"file_name" validate:"omitempty,max=255"`
	FileSize    *int64  `json:"file_size" validate:"omitempty,min=0"`
}

// CorpusUpdateRequest partially updates a corpus item.
type CorpusUpdateRequest struct {
	Title       *string `json:"title" validate:"omitempty,max=255"`
	Type        *string `json:"type" validate:"omitempty,oneof=document policy syllabus faq manual"`
	SourceType  *string `json:"source_type" validate:"omitempty,oneof=text pdf excel csv weblink"`
	Content     *string `json:"content" validate:"omitempty,notblank"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	IsActive    *bool   `json:"is_active"`
}

// DatabaseEntryCreateRequest creates one structured dataset. Schema is a
// free-form shape descriptor; it is not enforced against Data.
type DatabaseEntryCreateRequest struct {
	Name        string           `json:"name" validate:"required,max=255"`
	Description *string          `json:"description" validate:"omitempty,max=2000"`
	Schema      map[string]any   `json:"schema" validate:"required"`
	Data        []map[string]any `json:"data"`
	Category    string           `json:"category" validate:"omitempty,oneof=learner_records academic_data logs other"`
}

// DatabaseEntryUpdateRequest partially updates a dataset.
type DatabaseEntryUpdateRequest struct {
	Name        *string          `json:"name" validate:"omitempty,max=255"`
	Description *string          `json:"description" validate:"omitempty,max=2000"`
	Schema      map[string]any   `json:"schema"`
	Data        []map[string]any `json:"data"`
	Category    *string          `json:"category" validate:"omitempty,oneof=learner_records academic_data logs other"`
	IsActive    *bool            `json:"is_active"`
}

// AIRuleCreateRequest creates one behavioral rule.
type AIRuleCreateRequest struct {
	Rule     string `json:"rule" validate:"required,notblank,max=2000"`
	Category string `json:"category" validate:"omitempty,oneof=behavior safety response_style domain_boundary"`
	Priority string `json:"priority" validate:"omitempty,oneof=low medium high critical"`
}

// AIRuleUpdateRequest partially updates a rule.
type AIRuleUpdateRequest struct {
	Rule     *string `json:"rule" validate:"omitempty,notblank,max=2000"`
	Category *string `json:"category" validate:"omitempty,oneof=behavior safety response_style domain_boundary"`
	Priority *string `json:"priority" validate:"omitempty,oneof=low medium high critical"`
	IsActive *bool   `json:"is_active"`
}

// RoleCreateRequest creates a custom role.
type RoleCreateRequest struct {
	Name        string          `json:"name" validate:"required,max=50"`
	Description *string         `json:"description" validate:"omitempty,max=500"`
	Permissions map[string]bool `json:"permissions"`
}

// RoleUpdateRequest updates a role. For system roles only Permissions is
// applied; name and description changes are silently discarded.
type RoleUpdateRequest struct {
	Name        *string         `json:"name" validate:"omitempty,max=50"`
	Description *string         `json:"description" validate:"omitempty,max=500"`
	Permissions map[string]bool `json:"permissions"`
}

// UserUpdateRequest updates a user record (admin, or self for password only).
type UserUpdateRequest struct {
	Name        *string         `json:"name" validate:"omitempty,max=100"`
	Email       *string         `json:"email" validate:"omitempty,email,max=255"`
	Role        *string         `json:"role" validate:"omitempty,oneof=admin student faculty mentor"`
	Permissions map[string]bool `json:"permissions"`
	IsActive    *bool           `json:"is_active"`
	Password    *string         `json:"password" validate:"omitempty,min=8,max=128"`
}

// BulkUserActionRequest applies one action to a list of users; each id is
// processed independently.
type BulkUserActionRequest struct {
	UserIDs []string `json:"user_ids" validate:"required,min=1,dive,required"`
	Action  string   `json:"action" validate:"required,oneof=activate deactivate changeRole"`
	Role    *string  `json:"role" validate:"omitempty,oneof=admin student faculty mentor"`
}

// SettingsUpdateRequest updates the settings singleton.
type SettingsUpdateRequest struct {
	AppName        *string `json:"app_name" validate:"omitempty,max=100"`
	Logo           *string `json:"logo" validate:"omitempty,max=500"`
	PrimaryColor   *string `json:"primary_color" validate:"omitempty,hex_color"`
	SecondaryColor *string `json:"secondary_color" validate:"omitempty,hex_color"`
	AccentColor    *string `json:"accent_color" validate:"omitempty,hex_color"`
	Theme          *string `json:"theme" validate:"omitempty,oneof=light dark"`
}

// UserSyncRequest syncs a user record at signup or first OAuth login.
type UserSyncRequest struct {
	ID    string `json:"id" validate:"required,max=255"`
	Name  string `json:"name" validate:"required,max=100"`
	Email string `json:"email" validate:"required,email,max=255"`
}
