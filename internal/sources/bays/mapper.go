package bays

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/MrSnakeDoc/rcapi/internal/domain"
)

// SourceInventory tags bays that came from the inventory file
const SourceInventory = "inventory"

// Mapper converts inventory entries to domain bays
type Mapper struct {
	now func() time.Time
}

// NewMapper creates a new mapper instance
func NewMapper() *Mapper {
	return &Mapper{now: time.Now}
}

// MapBays validates entries and converts them. Invalid entries are
// skipped and reported in the returned slice of problems; a duplicate
// UUID keeps the first entry.
func (m *Mapper) MapBays(config InventoryConfig) ([]*domain.Bay, []string, error) {
	var (
		bays     []*domain.Bay
		problems []string
		seen     = make(map[string]bool, len(config.Bays))
		now      = m.now().UTC()
	)

	for i, props := range config.Bays {
		id, err := uuid.Parse(strings.TrimSpace(props.UUID))
		if err != nil {
			problems = append(problems, fmt.Sprintf("bay #%d: invalid uuid %q", i, props.UUID))
			continue
		}
		canonical := id.String()
		if seen[canonical] {
			problems = append(problems, fmt.Sprintf("bay #%d: duplicate uuid %s", i, canonical))
			continue
		}

		name := strings.TrimSpace(props.Name)
		if name == "" {
			problems = append(problems, fmt.Sprintf("bay %s: missing name", canonical))
			continue
		}

		if props.APIAddress != "" {
			u, err := url.Parse(props.APIAddress)
			if err != nil || u.Host == "" {
				problems = append(problems, fmt.Sprintf("bay %s: invalid api_address %q", canonical, props.APIAddress))
				continue
			}
		}

		seen[canonical] = true
		bays = append(bays, &domain.Bay{
			UUID:       canonical,
			Name:       name,
			APIAddress: props.APIAddress,
			Sources:    []string{SourceInventory},
			LastSeenAt: now,
		})
	}

	if len(bays) == 0 {
		return nil, problems, fmt.Errorf("no valid bays found in inventory")
	}
	return bays, problems, nil
}
