package manifest

import (
	"context"
	"fmt"
	"io"
	"maps"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"k8s.io/apimachinery/pkg/util/validation"
	"sigs.k8s.io/yaml"

	"github.com/MrSnakeDoc/rcapi/internal/domain"
	"github.com/MrSnakeDoc/rcapi/internal/utils"
)

// KindReplicationController is the only manifest kind accepted.
const KindReplicationController = "ReplicationController"

// DefaultMaxBytes caps a fetched definition.
const DefaultMaxBytes = 1 << 20

// Summary is what the API keeps from a manifest.
type Summary struct {
	Name     string
	Images   []string
	Selector map[string]string
	Replicas int
}

// Parser reads replication controller manifests given inline or by URL.
type Parser struct {
	client   *http.Client
	maxBytes int64
}

// NewParser returns a parser whose fetches give up after timeout.
func NewParser(timeout time.Duration) *Parser {
	return &Parser{
		client:   &http.Client{Timeout: timeout},
		maxBytes: DefaultMaxBytes,
	}
}

// Load parses rcData when present, otherwise fetches and parses
// definitionURL. It returns nil when neither is given.
func (p *Parser) Load(ctx context.Context, rcData, definitionURL string) (*Summary, error) {
	switch {
	case rcData != "":
		return p.Parse([]byte(rcData))
	case definitionURL != "":
		data, err := p.Fetch(ctx, definitionURL)
		if err != nil {
			return nil, err
		}
		return p.Parse(data)
	default:
		return nil, nil
	}
}

// Parse decodes a YAML or JSON manifest.
func (p *Parser) Parse(data []byte) (*Summary, error) {
	var rc corev1.ReplicationController
	if err := yaml.Unmarshal(data, &rc); err != nil {
		return nil, &domain.ValidationError{Msg: "invalid rc manifest", Err: err}
	}
	if rc.Kind != KindReplicationController {
		return nil, domain.Invalidf("manifest kind must be %s, got %q", KindReplicationController, rc.Kind)
	}
	if rc.Name == "" {
		return nil, domain.Invalidf("manifest has no metadata.name")
	}
	if rc.APIVersion != "" {
		gv, err := schema.ParseGroupVersion(rc.APIVersion)
		if err != nil || gv != corev1.SchemeGroupVersion {
			return nil, domain.Invalidf("manifest apiVersion must be %s, got %q", corev1.SchemeGroupVersion, rc.APIVersion)
		}
	}
	if errs := validation.IsDNS1123Subdomain(rc.Name); len(errs) > 0 {
		return nil, domain.Invalidf("invalid manifest name %q: %s", rc.Name, strings.Join(errs, "; "))
	}

	s := &Summary{
		Name:     rc.Name,
		Selector: rc.Spec.Selector,
		Replicas: 1,
	}
	if rc.Spec.Replicas != nil {
		s.Replicas = int(*rc.Spec.Replicas)
	}
	if tmpl := rc.Spec.Template; tmpl != nil {
		if len(s.Selector) == 0 {
			s.Selector = tmpl.Labels
		}
		for _, c := range tmpl.Spec.Containers {
			if c.Image != "" && !slices.Contains(s.Images, c.Image) {
				s.Images = append(s.Images, c.Image)
			}
		}
	}
	if err := validateSelector(s.Selector); err != nil {
		return nil, err
	}
	return s, nil
}

func validateSelector(sel map[string]string) error {
	for k, v := range sel {
		if errs := validation.IsQualifiedName(k); len(errs) > 0 {
			return domain.Invalidf("invalid selector key %q: %s", k, strings.Join(errs, "; "))
		}
		if errs := validation.IsValidLabelValue(v); len(errs) > 0 {
			return domain.Invalidf("invalid selector value %q: %s", v, strings.Join(errs, "; "))
		}
	}
	return nil
}

// Fetch downloads a manifest. Any failure is the client's problem: a bad
// URL, an unreachable host or an oversized body all reject the request.
func (p *Parser) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, domain.Invalidf("rc_definition_url must be an absolute http(s) url: %s", rawURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, &domain.ValidationError{Msg: "invalid rc_definition_url", Err: err}
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, &domain.ValidationError{Msg: "failed to fetch rc_definition_url", Err: err}
	}
	defer utils.Close(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, domain.Invalidf("failed to fetch rc_definition_url: %s", resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, p.maxBytes+1))
	if err != nil {
		return nil, &domain.ValidationError{Msg: "failed to read rc_definition_url", Err: err}
	}
	if int64(len(data)) > p.maxBytes {
		return nil, domain.Invalidf("rc definition exceeds %d bytes", p.maxBytes)
	}
	return data, nil
}

// Fill copies manifest values into the fields the record leaves empty.
func (s *Summary) Fill(rc *domain.ReplicationController, replicasSet bool) {
	if s == nil {
		return
	}
	if rc.Name == "" {
		rc.Name = s.Name
	}
	if len(rc.Images) == 0 {
		rc.Images = slices.Clone(s.Images)
	}
	if len(rc.Selector) == 0 && len(s.Selector) > 0 {
		rc.Selector = maps.Clone(s.Selector)
	}
	if !replicasSet {
		rc.Replicas = s.Replicas
	}
}

func (s *Summary) String() string {
	return fmt.Sprintf("%s (%d replicas, %d images)", s.Name, s.Replicas, len(s.Images))
}
