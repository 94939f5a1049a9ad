package registry

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"path/filepath"
	"strings"
)

// CanonicalPath resolves path into a stable absolute form: absolute,
// symlinks evaluated, cleaned. Two paths naming the same directory
// canonicalize identically on one machine. Case-insensitive filesystems
// can still produce distinct spellings of the same directory; identity for
// repos with a remote does not depend on the path, so this only affects
// local-only repos.
func CanonicalPath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve path: %w", err)
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		// Path may not exist (e.g. a recorded repo that moved). Fall back
		// to the cleaned absolute path so lookups still work.
		return filepath.Clean(abs), nil
	}
	return filepath.Clean(resolved), nil
}

// NormalizeRemoteURL reduces a git remote URL to a canonical host/org/repo
// form so that git@ and https:// URLs pointing at the same remote collapse
// to the same identity. Credentials, URL schemes, and the .git suffix are
// stripped; the host is lowercased.
//
//	git@github.com:acme/backend.git   -> github.com/acme/backend
//	https://x@github.com/acme/backend -> github.com/acme/backend
//	ssh://git@github.com/acme/backend -> github.com/acme/backend
func NormalizeRemoteURL(url string) string {
	u := strings.TrimSpace(url)
	if u == "" {
		return ""
	}

	// Strip scheme
	for _, scheme := range []string{"https://", "http://", "ssh://", "git://"} {
		if strings.HasPrefix(u, scheme) {
			u = strings.TrimPrefix(u, scheme)
			break
		}
	}

	// scp-like syntax: git@host:org/repo
	if at := strings.Index(u, "@"); at != -1 {
		// Strip credentials (user or user:pass)
		u = u[at+1:]
	}
	if colon := strings.Index(u, ":"); colon != -1 && !strings.Contains(u[:colon], "/") {
		// host:path -> host/path, but leave host:port alone
		rest := u[colon+1:]
		if len(rest) > 0 && rest[0] != '/' && !isDigits(hostPortPrefix(rest)) {
			u = u[:colon] + "/" + rest
		}
	}

	u = strings.TrimSuffix(u, "/")
	u = strings.TrimSuffix(u, ".git")

	// Lowercase the host segment only; repo paths are case-sensitive on
	// most forges.
	if slash := strings.Index(u, "/"); slash != -1 {
		u = strings.ToLower(u[:slash]) + u[slash:]
	} else {
		u = strings.ToLower(u)
	}

	return u
}

// hostPortPrefix returns the leading run of rest up to the next slash.
func hostPortPrefix(rest string) string {
	if slash := strings.Index(rest, "/"); slash != -1 {
		return rest[:slash]
	}
	return rest
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// DeriveID hashes a normalized remote URL (or, for local-only repos, a
// canonical path) into a short stable repository id.
func DeriveID(key string) string {
	sum := sha256.Sum256([]byte(key))
	return "r_" + hex.EncodeToString(sum[:])[:10]
}
