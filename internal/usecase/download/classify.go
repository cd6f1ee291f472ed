package download

import (
	"strings"

	"hytalepanel/internal/domain"
)

// authHints mark downloader output that requires the user to complete
// the device auth flow in a browser.
var authHints = []string{
	"oauth.accounts.",
	"user_code",
	"Authorization code",
}

// Classify maps one chunk of downloader CLI output to its status phase.
// Auth hints win over the forbidden check: the device-auth prompt can
// mention prior 403 responses and must still surface as auth-required.
func Classify(text string) domain.DownloadStatus {
	for _, hint := range authHints {
		if strings.Contains(text, hint) {
			return domain.DownloadStatus{Status: domain.DownloadAuthRequired, Message: text}
		}
	}
	if strings.Contains(text, "403") || strings.Contains(text, "Forbidden") {
		return domain.DownloadStatus{
			Status:  domain.DownloadError,
			Message: "Authentication failed or expired. Try again.",
		}
	}
	return domain.DownloadStatus{Status: domain.DownloadOutput, Message: text}
}
