package texeqn

import (
	"crypto/md5" // #nosec G501 -- content addressing, not security
	"encoding/hex"
	"strings"
)

// keyReplacer makes a page path safe for use inside a file name.
var keyReplacer = strings.NewReplacer("/", "_", " ", "-")

// DeriveKey returns the cache key for an equation on a page:
// the sanitized page path, a dash, and the hex MD5 of the content.
// The same content on two pages yields two keys.
func DeriveKey(pagePath, content string) string {
	sum := md5.Sum([]byte(content)) // #nosec G401 -- content addressing, not security
	return keyReplacer.Replace(pagePath) + "-" + hex.EncodeToString(sum[:])
}
