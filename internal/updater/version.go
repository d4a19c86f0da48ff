package updater

import (
	"strings"

	"golang.org/x/mod/semver"
)

// normalizeVersion strips surrounding whitespace and the leading "v".
func normalizeVersion(v string) string {
	return strings.TrimPrefix(strings.TrimSpace(v), "v")
}

// canonicalVersion returns v in canonical semver form ("v1.2.0"), or ""
// when v is not a version. Short forms like "1.2" are padded.
func canonicalVersion(v string) string {
	v = normalizeVersion(v)
	if v == "" {
		return ""
	}
	return semver.Canonical("v" + v)
}

// versionBehind reports whether upstream is a higher version than local.
// A side that does not parse as a version is never behind.
func versionBehind(local, upstream string) bool {
	l, u := canonicalVersion(local), canonicalVersion(upstream)
	if l == "" || u == "" {
		return false
	}
	return semver.Compare(u, l) > 0
}
