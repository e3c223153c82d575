package notifier

// Telegram Bot API limits and settings
const (
	ParseModeHTML      = "HTML"
	MaxMessageLength   = 4096
	MaxResponseExcerpt = 200
	MaxErrorTextLength = 800
)

// Message titles
const (
	TitleStartup      = "🤖 File Monitor System Started"
	TitleShutdown     = "🛑 File Monitor System Stopped"
	TitleFileFound    = "❗️New file found"
	TitleDownloadOK   = "✅ File download completed"
	TitleDownloadFail = "❌ File download failed"
	TitleCheckError   = "⚠️ Error checking file"
	TitleSystemError  = "⚠️ System error occurred"
)
