package catalog

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/dronir/ILRS-TLE/internal/testutil"
	"github.com/dronir/ILRS-TLE/pkg/client"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		page     string
		expected []int
	}{
		{
			name:     "sorted output",
			page:     testutil.CatalogPage("22824", "7646", "36508"),
			expected: []int{7646, 22824, 36508},
		},
		{
			name:     "blank and N/A excluded",
			page:     testutil.CatalogPage("22824", "", "N/A", "  ", " 7646 "),
			expected: []int{7646, 22824},
		},
		{
			name:     "duplicates removed",
			page:     testutil.CatalogPage("8820", "8820", "16908"),
			expected: []int{8820, 16908},
		},
		{
			name:     "header only",
			page:     testutil.CatalogPage(),
			expected: []int{},
		},
		{
			name: "explicit tbody",
			page: `<table id="stations"><thead><tr><th>a</th><th>b</th><th>c</th><th>ID</th></tr></thead>
<tbody><tr><td>LAGEOS-1</td><td>l1</td><td>1155</td><td><a href="#">8820</a></td></tr></tbody></table>`,
			expected: []int{8820},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ids, err := Parse(strings.NewReader(tt.page))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, ids)
		})
	}
}

func TestParse_Unavailable(t *testing.T) {
	tests := []struct {
		name string
		page string
	}{
		{"missing table", `<html><body><table id="other"><tr><td>1</td></tr></table></body></html>`},
		{"non-numeric id", testutil.CatalogPage("22824", "LAGEOS")},
		{"negative id", testutil.CatalogPage("-5")},
		{"short row", `<table id="stations"><tr><th>h</th></tr><tr><td>1</td><td>2</td></tr></table>`},
		{"empty table", `<table id="stations"></table>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.page))
			assert.True(t, errors.Is(err, ErrCatalogUnavailable), "expected ErrCatalogUnavailable, got %v", err)
		})
	}
}

func TestILRSSource_Fetch(t *testing.T) {
	mock := testutil.NewMockSpaceTrack("user", "secret")
	defer mock.Close()
	mock.SetCatalogHTML(testutil.CatalogPage("36508", "N/A", "7646"))

	c, err := client.New(client.Config{UserAgent: "ILRS-TLE/test", Timeout: 5 * time.Second})
	require.NoError(t, err)

	ids, err := NewILRSSource(c, mock.CatalogURL()).FetchActiveIdentifiers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int{7646, 36508}, ids)
}

func TestILRSSource_FetchFailure(t *testing.T) {
	mock := testutil.NewMockSpaceTrack("user", "secret")
	defer mock.Close()

	c, err := client.New(client.Config{UserAgent: "ILRS-TLE/test", Timeout: 5 * time.Second})
	require.NoError(t, err)

	// No catalog page configured: the mock answers 404.
	_, err = NewILRSSource(c, mock.CatalogURL()).FetchActiveIdentifiers(context.Background())
	assert.True(t, errors.Is(err, ErrCatalogUnavailable))
	assert.True(t, errors.Is(err, client.ErrTransport))
}

func TestStaticSource(t *testing.T) {
	src := StaticSource{5, 1, 3}

	ids, err := src.FetchActiveIdentifiers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int{1, 3, 5}, ids)
	assert.Equal(t, StaticSource{5, 1, 3}, src)
}
