// Package query builds Space-Track batch queries for a named group of
// catalog numbers.
package query

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Defaults for the latest-element-set query.
const (
	DefaultBaseURL     = "https://www.space-track.org/basicspacedata/query"
	DefaultRecordClass = "tle_latest"
	DefaultIDField     = "NORAD_CAT_ID"
	DefaultFormat      = "3le"
)

// ErrInvalidInput is returned for queries that must never be built,
// such as an empty identifier list.
var ErrInvalidInput = errors.New("invalid query input")

// Descriptor is the ephemeral description of a single batch request.
type Descriptor struct {
	ListName string
	IDs      []int
	Format   string
}

// CSV renders the identifiers as a comma-separated list.
func (d Descriptor) CSV() string {
	parts := make([]string, len(d.IDs))
	for i, id := range d.IDs {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, ",")
}

// Builder renders descriptors into request URLs. The zero value is not
// usable; use NewBuilder.
type Builder struct {
	BaseURL     string
	RecordClass string
	IDField     string
}

// NewBuilder returns a builder for the latest-element-set class.
// An empty baseURL selects DefaultBaseURL.
func NewBuilder(baseURL string) Builder {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return Builder{
		BaseURL:     strings.TrimRight(baseURL, "/"),
		RecordClass: DefaultRecordClass,
		IDField:     DefaultIDField,
	}
}

// Describe validates the inputs and returns the normalized descriptor.
// The identifiers are sorted ascending and deduplicated on a copy.
func (b Builder) Describe(listName string, ids []int, format string) (Descriptor, error) {
	if len(ids) == 0 {
		return Descriptor{}, fmt.Errorf("%w: list %q has no identifiers", ErrInvalidInput, listName)
	}
	if format == "" {
		return Descriptor{}, fmt.Errorf("%w: empty format for list %q", ErrInvalidInput, listName)
	}

	sorted := make([]int, len(ids))
	copy(sorted, ids)
	sort.Ints(sorted)

	unique := sorted[:0]
	for i, id := range sorted {
		if id <= 0 {
			return Descriptor{}, fmt.Errorf("%w: non-positive identifier %d in list %q", ErrInvalidInput, id, listName)
		}
		if i > 0 && id == sorted[i-1] {
			continue
		}
		unique = append(unique, id)
	}

	return Descriptor{ListName: listName, IDs: unique, Format: format}, nil
}

// Build returns the request URL selecting the most recent record per
// identifier in the requested format:
//
//	<base>/class/<class>/ORDINAL/1/<id_field>/<csv>/format/<format>
func (b Builder) Build(listName string, ids []int, format string) (string, error) {
	d, err := b.Describe(listName, ids, format)
	if err != nil {
		return "", err
	}
	return b.URL(d), nil
}

// URL renders an already validated descriptor.
func (b Builder) URL(d Descriptor) string {
	return strings.Join([]string{
		b.BaseURL,
		"class", b.RecordClass,
		"ORDINAL", "1",
		b.IDField, d.CSV(),
		"format", d.Format,
	}, "/")
}
