package resource

import "strings"

// CanonicalPath canonicalizes a virtual asset path for use as a database
// key: separators are normalized to forward slashes and the whole path is
// lowercased. Virtual paths compare and hash case-insensitively.
func CanonicalPath(virtualPath string) string {
	return strings.ToLower(strings.ReplaceAll(virtualPath, "\\", "/"))
}
