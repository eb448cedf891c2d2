package storage

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Object key prefixes, each followed by the owning client id.
const (
	ResumePDFPrefix = "generated-resumes"
	AvatarPrefix    = "avatars"
)

// ResumePDFKey returns a fresh object key for a client's rendered resume.
func ResumePDFKey(clientID string) string {
	return fmt.Sprintf("%s/%s/%s.pdf", ResumePDFPrefix, clientID, uuid.NewString())
}

// AvatarKey returns a fresh object key for a client's avatar image.
func AvatarKey(clientID, ext string) string {
	return fmt.Sprintf("%s/%s/%s%s", AvatarPrefix, clientID, uuid.NewString(), ext)
}

// OwnedBy reports whether objectKey sits under prefix for clientID and
// contains no path traversal.
func OwnedBy(objectKey, prefix, clientID string) bool {
	if clientID == "" || strings.Contains(objectKey, "..") {
		return false
	}
	return strings.HasPrefix(objectKey, prefix+"/"+clientID+"/")
}
