package config

const (
	// Config errors
	ErrMissingSettingFmt     = "missing required setting %s"
	ErrInvalidSettingFmt     = "invalid value for %s: %q"
	ErrWriteConfigContentFmt = "Failed to write config content: %v"

	// Store errors
	ErrInitializeDatabaseFmt = "Failed to initialize database: %v"

	// Messages shown to the user
	MsgTitleRequired        = "Title is required for draft"
	MsgTitleContentRequired = "Title and content are required for publishing"
	MsgLoginRequired        = "Please log in first"
	MsgSessionExpired       = "Authentication expired. Please log in again."
	MsgLoadPostFailed       = "Failed to load blog"
	MsgLoadPostsFailed      = "Failed to load blogs"
	MsgLoadDraftsFailed     = "Failed to load drafts"
	MsgDeleteFailed         = "Failed to delete blog"
	MsgPublishFailed        = "Failed to publish"
	MsgAutosaveFailed       = "Error auto-saving draft"
	MsgSaveDraftFailed      = "Error saving draft"
	MsgDraftAutosaved       = "Draft auto-saved"
	MsgDraftSaved           = "Draft saved"
	MsgPublished            = "Blog published successfully"
	MsgDeleted              = "Blog deleted successfully"
	MsgDraftDeleted         = "Draft deleted"
	MsgDraftDeleteFailed    = "Failed to delete draft"
	MsgDraftPublished       = "Draft published!"
	MsgDraftsLoginRequired  = "Please log in to view drafts"
	MsgLoadingPosts         = "Loading blogs..."
	MsgLoadingDrafts        = "Loading drafts..."
	MsgNoPosts              = "No blogs available yet"
	MsgNoDrafts             = "No drafts yet."
	MsgLoggedIn             = "Login successful"
	MsgSignedUp             = "Signup successful. Please log in."
	MsgLoggedOut            = "Logged out"
)
