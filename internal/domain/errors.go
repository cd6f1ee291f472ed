package domain

import "errors"

// Domain errors represent business-level failure conditions. They are
// surfaced as structured results at the session boundary, never as
// connection-ending exceptions.
var (
	// Server registry errors
	ErrServerNotFound = errors.New("server not found")
	ErrPortInUse      = errors.New("port already in use")

	// Container errors
	ErrContainerNotFound = errors.New("container not found")

	// Session errors
	ErrNoServerSelected = errors.New("no server selected")

	// File errors
	ErrPathTraversal   = errors.New("path traversal attempt detected")
	ErrNotEditable     = errors.New("file type not editable")
	ErrProtectedPath   = errors.New("cannot delete root directory")
	ErrUploadForbidden = errors.New("file type not allowed")

	// Mod errors
	ErrModNotFound          = errors.New("mod not found")
	ErrCatalogNotConfigured = errors.New("mod catalog is not configured")

	// Auth errors
	ErrInvalidToken       = errors.New("invalid token")
	ErrInvalidCredentials = errors.New("invalid credentials")
)
