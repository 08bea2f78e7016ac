package vcs

import (
	"net/url"
	"path/filepath"
	"regexp"
	"strings"
)

// hgPrefix forces a URL to be cloned with Mercurial
const hgPrefix = "hg::"

// scpLike matches user@host:path remotes
var scpLike = regexp.MustCompile(`^(?:([^@/:]+)@)?([^@/:]{2,}):(.+)$`)

var defaultPorts = map[string]string{
	"ssh":   "22",
	"http":  "80",
	"https": "443",
	"git":   "9418",
}

// Remote is the parsed form of a network URL
type Remote struct {
	Scheme string
	User   string
	Host   string
	Port   string
	// Path has no leading slash
	Path string
}

// ParseURL parses scheme URLs (https://, ssh://, git://, file://) and
// scp-like user@host:path remotes. It reports false for plain local paths.
func ParseURL(raw string) (*Remote, bool) {
	raw = strings.TrimPrefix(strings.TrimSpace(raw), hgPrefix)
	if raw == "" {
		return nil, false
	}

	if strings.Contains(raw, "://") {
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" {
			return nil, false
		}
		r := &Remote{
			Scheme: strings.ToLower(u.Scheme),
			Host:   u.Hostname(),
			Port:   u.Port(),
			Path:   strings.TrimPrefix(u.Path, "/"),
		}
		if u.User != nil {
			r.User = u.User.Username()
		}
		if r.Scheme != "file" && r.Host == "" {
			return nil, false
		}
		return r, true
	}

	if m := scpLike.FindStringSubmatch(raw); m != nil {
		return &Remote{
			Scheme: "ssh",
			User:   m[1],
			Host:   m[2],
			Path:   strings.TrimPrefix(m[3], "/"),
		}, true
	}

	return nil, false
}

// IsURL reports whether s names a remote repository rather than a path
func IsURL(s string) bool {
	_, ok := ParseURL(s)
	return ok
}

// key is the scheme independent identity of a remote
func (r *Remote) key() string {
	if r.Scheme == "file" {
		return "file:" + trimRepoSuffix(filepath.Clean("/"+r.Path))
	}
	host := strings.ToLower(r.Host)
	if r.Port != "" && r.Port != defaultPorts[r.Scheme] {
		host += ":" + r.Port
	}
	return host + "/" + trimRepoSuffix(r.Path)
}

// Name is the last path element without a .git suffix
func (r *Remote) Name() string {
	p := trimRepoSuffix(r.Path)
	if i := strings.LastIndex(p, "/"); i >= 0 {
		return p[i+1:]
	}
	return p
}

func trimRepoSuffix(p string) string {
	p = strings.TrimRight(p, "/")
	return strings.TrimSuffix(p, ".git")
}

// SameRemote reports whether a and b point at the same repository. Remotes
// are equal when host and path match after normalisation; the scheme and
// user do not matter, so git@host:org/repo.git and https://host/org/repo
// are the same remote. Local paths compare by their cleaned form.
func SameRemote(a, b string) bool {
	ra, okA := ParseURL(a)
	rb, okB := ParseURL(b)
	switch {
	case okA && okB:
		return ra.key() == rb.key()
	case !okA && !okB:
		return trimRepoSuffix(filepath.Clean(a)) == trimRepoSuffix(filepath.Clean(b))
	default:
		return false
	}
}

// FormatURL rewrites a remote URL to use protocol (https, http, ssh or
// git). Unknown protocols, an empty protocol and local paths are returned
// unchanged.
func FormatURL(raw, protocol string) string {
	r, ok := ParseURL(raw)
	if !ok || r.Scheme == "file" {
		return raw
	}

	host := r.Host
	if r.Port != "" && r.Port != defaultPorts[r.Scheme] && r.Scheme == protocol {
		host += ":" + r.Port
	}

	switch protocol {
	case "ssh":
		user := r.User
		if user == "" {
			user = "git"
		}
		return user + "@" + host + ":" + r.Path
	case "http", "https", "git":
		return protocol + "://" + host + "/" + r.Path
	default:
		return raw
	}
}

// SplitRevision splits url#rev into its parts
func SplitRevision(raw string) (string, string) {
	if i := strings.LastIndex(raw, "#"); i >= 0 {
		return raw[:i], raw[i+1:]
	}
	return raw, ""
}

// RepoName derives a directory name from a URL or path
func RepoName(raw string) string {
	raw, _ = SplitRevision(raw)
	if r, ok := ParseURL(raw); ok {
		return r.Name()
	}
	return trimRepoSuffix(filepath.Base(filepath.Clean(raw)))
}

func looksLikeMercurial(raw string) bool {
	if strings.HasPrefix(raw, hgPrefix) {
		return true
	}
	r, ok := ParseURL(raw)
	if !ok {
		return false
	}
	return strings.HasPrefix(strings.ToLower(r.Host), "hg.") || strings.HasSuffix(r.Path, ".hg")
}
