package api

import (
	"strings"
)

// APIVersion prefixes every canonical (non-bookmark) URL.
const APIVersion = "v1"

// Link relations.
const (
	RelSelf     = "self"
	RelBookmark = "bookmark"
	RelNext     = "next"
)

// Link is a hypermedia reference attached to a representation.
type Link struct {
	Href string `json:"href"`
	Rel  string `json:"rel"`
	Type string `json:"type,omitempty"`
}

// BuildURL joins base, resource and args. Versioned unless bookmark is set.
// Args starting with "?" are a query string, anything else a path segment.
//
//	BuildURL("rcs", "abc", false, "http://h") -> http://h/v1/rcs/abc
//	BuildURL("rcs", "abc", true, "http://h")  -> http://h/rcs/abc
//	BuildURL("rcs", "?limit=2", false, "http://h") -> http://h/v1/rcs?limit=2
func BuildURL(resource, args string, bookmark bool, base string) string {
	var b strings.Builder
	b.WriteString(strings.TrimRight(base, "/"))
	if !bookmark {
		b.WriteString("/" + APIVersion)
	}
	b.WriteString("/" + resource)
	switch {
	case args == "":
	case strings.HasPrefix(args, "?"):
		b.WriteString(args)
	default:
		b.WriteString("/" + args)
	}
	return b.String()
}

// MakeLink builds a single link.
func MakeLink(rel, base, resource, args string, bookmark bool) Link {
	return Link{
		Href: BuildURL(resource, args, bookmark, base),
		Rel:  rel,
	}
}

// SelfAndBookmark returns the canonical and the permanent link of an item.
func SelfAndBookmark(base, resource, id string) []Link {
	return []Link{
		MakeLink(RelSelf, base, resource, id, false),
		MakeLink(RelBookmark, base, resource, id, true),
	}
}
