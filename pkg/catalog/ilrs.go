// Package catalog discovers the catalog numbers of active ILRS satellites
// from the public ILRS mission listing.
package catalog

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/dronir/ILRS-TLE/pkg/client"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// DefaultURL is the ILRS current-missions listing.
const DefaultURL = "https://ilrs.cddis.eosdis.nasa.gov/missions/satellite_missions/current_missions/index.html"

const (
	// tableID is the id attribute of the mission table.
	tableID = "stations"

	// idColumn is the zero-based column holding the catalog number.
	idColumn = 3
)

// ErrCatalogUnavailable is returned when the listing cannot be fetched or parsed.
var ErrCatalogUnavailable = errors.New("catalog unavailable")

// Source yields the sorted, deduplicated catalog numbers of active satellites.
type Source interface {
	FetchActiveIdentifiers(ctx context.Context) ([]int, error)
}

// ILRSSource reads the ILRS current-missions page.
type ILRSSource struct {
	url    string
	client *client.Client
	logger zerolog.Logger
}

// NewILRSSource creates a source for the listing at url (DefaultURL when empty).
func NewILRSSource(c *client.Client, url string) *ILRSSource {
	if url == "" {
		url = DefaultURL
	}
	return &ILRSSource{
		url:    url,
		client: c,
		logger: log.With().Str("component", "catalog").Logger(),
	}
}

// FetchActiveIdentifiers downloads and parses the listing.
func (s *ILRSSource) FetchActiveIdentifiers(ctx context.Context) ([]int, error) {
	s.logger.Debug().Str("url", s.url).Msg("Getting active ILRS catalog numbers")

	body, err := s.client.Get(ctx, s.url)
	if err != nil {
		s.logger.Error().Err(err).Str("url", s.url).Msg("Catalog fetch failed")
		return nil, fmt.Errorf("%w: %w", ErrCatalogUnavailable, err)
	}

	ids, err := Parse(bytes.NewReader(body))
	if err != nil {
		s.logger.Error().Err(err).Str("url", s.url).Msg("Catalog parse failed")
		return nil, err
	}

	s.logger.Debug().Int("count", len(ids)).Msg("Catalog numbers resolved")
	return ids, nil
}

// Parse extracts the catalog numbers from the mission table: the header
// row is skipped, blank and "N/A" cells are excluded and every other cell
// must be a positive integer.
func Parse(r io.Reader) ([]int, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("%w: parse html: %v", ErrCatalogUnavailable, err)
	}

	table := findByID(doc, tableID)
	if table == nil {
		return nil, fmt.Errorf("%w: no element with id %q", ErrCatalogUnavailable, tableID)
	}

	rows := collectRows(table)
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: table %q has no rows", ErrCatalogUnavailable, tableID)
	}

	seen := make(map[int]struct{})
	ids := make([]int, 0, len(rows))
	for _, row := range rows[1:] {
		cells := cellsOf(row)
		if len(cells) <= idColumn {
			return nil, fmt.Errorf("%w: row has %d cells, want at least %d", ErrCatalogUnavailable, len(cells), idColumn+1)
		}

		value := strings.TrimSpace(textOf(cells[idColumn]))
		if value == "" || value == "N/A" {
			continue
		}

		id, err := strconv.Atoi(value)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("%w: invalid catalog number %q", ErrCatalogUnavailable, value)
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}

	sort.Ints(ids)
	return ids, nil
}

func findByID(n *html.Node, id string) *html.Node {
	if n.Type == html.ElementNode {
		for _, a := range n.Attr {
			if a.Key == "id" && a.Val == id {
				return n
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findByID(c, id); found != nil {
			return found
		}
	}
	return nil
}

// collectRows returns the table's rows in document order, looking through
// the thead/tbody wrappers the parser inserts.
func collectRows(table *html.Node) []*html.Node {
	var rows []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode {
				continue
			}
			switch c.DataAtom {
			case atom.Tr:
				rows = append(rows, c)
			case atom.Thead, atom.Tbody, atom.Tfoot:
				walk(c)
			}
		}
	}
	walk(table)
	return rows
}

func cellsOf(row *html.Node) []*html.Node {
	var cells []*html.Node
	for c := row.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && (c.DataAtom == atom.Td || c.DataAtom == atom.Th) {
			cells = append(cells, c)
		}
	}
	return cells
}

func textOf(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

// StaticSource returns a fixed set of identifiers.
type StaticSource []int

// FetchActiveIdentifiers returns a sorted copy of the identifiers.
func (s StaticSource) FetchActiveIdentifiers(ctx context.Context) ([]int, error) {
	ids := make([]int, len(s))
	copy(ids, s)
	sort.Ints(ids)
	return ids, nil
}
