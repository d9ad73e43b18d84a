package constant

const (
	ModuleOAuth      = "OAUTH"
	ModuleCredential = "CREDENTIAL"
	ModuleDriveIndex = "DRIVE_INDEX"
	ModuleIndex      = "INDEX"
	ModuleCrawler    = "CRAWLER"
	ModuleConsumer   = "CONSUMER"
	ModuleAssistant  = "ASSISTANT"
)

// Reasons attached to background index builds.
const (
	RebuildReasonLogin   = "login"
	RebuildReasonManual  = "manual_refresh"
	RebuildReasonCreated = "document_created"
	RebuildReasonMoved   = "file_moved"
)

const OAuthProviderGoogle = "google"

// Google scopes requested at login. Drive and Docs need full access because
// the assistant creates, rewrites and moves files.
var GoogleScopes = []string{
	"openid",
	"https://www.googleapis.com/auth/userinfo.email",
	"https://www.googleapis.com/auth/userinfo.profile",
	"https://www.googleapis.com/auth/drive",
	"https://www.googleapis.com/auth/documents",
}
