// Package validation holds the pure field and upload checks used by the
// register and add-blog forms. No function here touches the database or the
// filesystem.
package validation

import (
	"mime/multipart"
	"regexp"
	"strings"
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// IsEmpty reports whether s is blank after trimming whitespace.
func IsEmpty(s string) bool {
	return strings.TrimSpace(s) == ""
}

// Match reports whether a and b are equal after trimming whitespace.
// Used for password confirmation.
func Match(a, b string) bool {
	return strings.TrimSpace(a) == strings.TrimSpace(b)
}

// IsValidEmail is a syntax-only check: local@domain.tld with a final label of
// at least two letters. It says nothing about deliverability.
func IsValidEmail(s string) bool {
	if IsEmpty(s) {
		return false
	}
	return emailPattern.MatchString(s)
}

// FileExists reports whether an upload was actually supplied. Absence is not
// an error by itself; the caller decides whether the field is required.
func FileExists(fh *multipart.FileHeader) bool {
	return fh != nil
}

// ValidFileSize reports whether the upload is at most maxMB megabytes.
func ValidFileSize(fh *multipart.FileHeader, maxMB int64) bool {
	return fh.Size <= maxMB*1024*1024
}

// ValidFileExtension reports whether the part of the filename after the last
// dot is one of allowed. The comparison is case-sensitive; a name without a
// dot never matches.
func ValidFileExtension(fh *multipart.FileHeader, allowed []string) bool {
	name := fh.Filename
	i := strings.LastIndex(name, ".")
	if i < 0 {
		return false
	}
	ext := name[i+1:]
	for _, a := range allowed {
		if ext == a {
			return true
		}
	}
	return false
}
