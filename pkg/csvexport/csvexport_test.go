package csvexport

import (
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeQuoting(t *testing.T) {
	out, err := Encode([]string{"vendor", "note"}, [][]string{
		{"Acme, Inc.", `She said "hi"`},
		{"plain", "line\nbreak"},
	})
	require.NoError(t, err)

	lines := string(out)
	assert.Contains(t, lines, `"Acme, Inc.","She said ""hi"""`)
	assert.Contains(t, lines, "plain,\"line\nbreak\"")
	assert.True(t, strings.HasPrefix(lines, "vendor,note\n"))
}

func TestEncodeRoundTrip(t *testing.T) {
	rows := [][]string{
		{"Acme, Inc.", `She said "hi"`},
		{"", "carriage\r\nreturn"},
	}
	out, err := Encode([]string{"a", "b"}, rows)
	require.NoError(t, err)

	parsed, err := csv.NewReader(strings.NewReader(string(out))).ReadAll()
	require.NoError(t, err)
	// encoding/csv normalizes \r\n inside quoted fields to \n on read
	want := [][]string{
		{"a", "b"},
		{"Acme, Inc.", `She said "hi"`},
		{"", "carriage\nreturn"},
	}
	if diff := cmp.Diff(want, parsed); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestEncodeHeaderOnly(t *testing.T) {
	out, err := Encode([]string{"id"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "id\n", string(out))
}

func TestContentDisposition(t *testing.T) {
	ts := time.Date(2026, 5, 2, 17, 4, 5, 0, time.FixedZone("CEST", 2*60*60))

	assert.Equal(t, "campaigns_20260502T150405Z.csv", Filename("campaigns", ts))
	assert.Equal(t, `attachment; filename="campaigns_20260502T150405Z.csv"`, ContentDisposition("campaigns", ts))
}
