package api

import (
	"net/url"
	"strconv"

	"github.com/MrSnakeDoc/rcapi/internal/domain"
)

// ResourceRCs is the collection path segment.
const ResourceRCs = "rcs"

// ConvertWithLinks projects a record, hides rc_id and attaches links. With
// expand=false only the collapsed field set survives.
func ConvertWithLinks(rc *domain.ReplicationController, base string, expand bool) *ReplicationController {
	return withLinks(FromDomain(rc), base, expand)
}

func withLinks(r *ReplicationController, base string, expand bool) *ReplicationController {
	if !expand {
		r.UnsetFieldsExcept(CollapsedFields...)
	}
	r.RCID = Unset[int64]()
	r.Links = SelfAndBookmark(base, ResourceRCs, r.UUID.OrZero())
	return r
}

// Collection is a page of replication controllers.
type Collection struct {
	// Type names the collection kind and is the default resource path for
	// the next link.
	Type string                   `json:"-"`
	RCs  []*ReplicationController `json:"rcs"`
	Next string                   `json:"next,omitempty"`
}

// PageParams are the pagination settings echoed into the next link.
type PageParams struct {
	Limit   int
	SortKey string
	SortDir string
}

// NewCollection converts a page of records. The caller fetches one record
// more than p.Limit; that lookahead record is dropped and only its presence
// turns on the next link, so an exactly full last page has none.
// resourceURL overrides the path used for the next link (e.g.
// "rcs/detail"); base is the host URL.
func NewCollection(records []*domain.ReplicationController, p PageParams, base, resourceURL string, expand bool) *Collection {
	more := p.Limit > 0 && len(records) > p.Limit
	if more {
		records = records[:p.Limit]
	}

	c := &Collection{
		Type: ResourceRCs,
		RCs:  make([]*ReplicationController, 0, len(records)),
	}
	for _, rc := range records {
		c.RCs = append(c.RCs, ConvertWithLinks(rc, base, expand))
	}
	if more {
		c.Next = c.nextLink(records[len(records)-1], p, base, resourceURL)
	}
	return c
}

// HasNext reports whether a next link was produced.
func (c *Collection) HasNext() bool {
	return c.Next != ""
}

func (c *Collection) nextLink(last *domain.ReplicationController, p PageParams, base, resourceURL string) string {
	if resourceURL == "" {
		resourceURL = c.Type
	}

	q := url.Values{}
	if p.SortKey != "" {
		q.Set("sort_key", p.SortKey)
	}
	if p.SortDir != "" {
		q.Set("sort_dir", p.SortDir)
	}
	q.Set("limit", strconv.Itoa(p.Limit))
	q.Set("marker", last.UUID)

	return MakeLink(RelNext, base, resourceURL, "?"+q.Encode(), false).Href
}

// ValidateLimit rejects non-positive limits and caps the rest. A nil limit
// means "as many as allowed".
func ValidateLimit(limit *int, maxLimit int) (int, error) {
	if limit == nil {
		return maxLimit, nil
	}
	if *limit <= 0 {
		return 0, domain.Invalidf("limit must be positive")
	}
	return min(*limit, maxLimit), nil
}

// ValidateSortDir accepts "asc" or "desc".
func ValidateSortDir(dir string) (string, error) {
	if dir != domain.SortAsc && dir != domain.SortDesc {
		return "", domain.Invalidf("invalid sort direction: %s. Acceptable values are 'asc' or 'desc'", dir)
	}
	return dir, nil
}
