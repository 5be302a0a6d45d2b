// Package jobhash derives the deduplication key for a job posting.
//
// The digest is computed over lower-cased, whitespace-trimmed
// title|company|location so the same posting seen with cosmetic
// differences maps to one key. MD5 is kept deliberately: databases
// written by earlier versions of the monitor stay valid.
package jobhash

import (
	"crypto/md5"
	"encoding/hex"
	"strings"
)

// Sum returns the identity hash for (title, company, location).
// Pure function: same input always yields the same hex digest.
func Sum(title, company, location string) string {
	content := canonical(title) + "|" + canonical(company) + "|" + canonical(location)
	digest := md5.Sum([]byte(content))
	return hex.EncodeToString(digest[:])
}

func canonical(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
