package domain

import (
	"cmp"
	"slices"
	"strings"
)

// SortKeys are the attributes List can order by.
var SortKeys = []string{
	FieldID,
	FieldUUID,
	FieldName,
	FieldReplicas,
	FieldCreatedAt,
	FieldUpdatedAt,
}

// ValidateListOptions fills defaults and rejects unknown sort settings.
func ValidateListOptions(opts ListOptions) (ListOptions, error) {
	if opts.SortKey == "" {
		opts.SortKey = DefaultSortKey
	}
	if opts.SortDir == "" {
		opts.SortDir = SortAsc
	}
	if !slices.Contains(SortKeys, opts.SortKey) {
		return opts, Invalidf("invalid sort key: %s. Acceptable values are %s",
			opts.SortKey, strings.Join(SortKeys, ", "))
	}
	if opts.SortDir != SortAsc && opts.SortDir != SortDesc {
		return opts, Invalidf("invalid sort direction: %s. Acceptable values are 'asc' or 'desc'", opts.SortDir)
	}
	if opts.Limit < 0 {
		return opts, Invalidf("limit must be positive")
	}
	return opts, nil
}

// Paginate orders records, filters them, skips everything up to and
// including the marker and truncates to the limit. A zero limit means
// no limit. The input slice is not modified.
func Paginate(records []*ReplicationController, opts ListOptions) ([]*ReplicationController, error) {
	opts, err := ValidateListOptions(opts)
	if err != nil {
		return nil, err
	}

	out := make([]*ReplicationController, 0, len(records))
	for _, rc := range records {
		if opts.BayUUID != "" && rc.BayUUID != opts.BayUUID {
			continue
		}
		out = append(out, rc)
	}

	desc := opts.SortDir == SortDesc
	less := func(a, b *ReplicationController) int {
		c := compareBy(opts.SortKey, a, b)
		if c == 0 {
			c = cmp.Compare(a.ID, b.ID)
		}
		if desc {
			return -c
		}
		return c
	}
	slices.SortStableFunc(out, less)

	if opts.Marker != nil {
		start := len(out)
		for i, rc := range out {
			if less(rc, opts.Marker) > 0 {
				start = i
				break
			}
		}
		out = out[start:]
	}

	if opts.Limit > 0 && len(out) > opts.Limit {
		out = out[:opts.Limit]
	}
	return out, nil
}

func compareBy(key string, a, b *ReplicationController) int {
	switch key {
	case FieldUUID:
		return cmp.Compare(a.UUID, b.UUID)
	case FieldName:
		return cmp.Compare(a.Name, b.Name)
	case FieldReplicas:
		return cmp.Compare(a.Replicas, b.Replicas)
	case FieldCreatedAt:
		return a.CreatedAt.Compare(b.CreatedAt)
	case FieldUpdatedAt:
		return a.UpdatedAt.Compare(b.UpdatedAt)
	default:
		return cmp.Compare(a.ID, b.ID)
	}
}
