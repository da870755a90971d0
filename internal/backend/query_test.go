package backend

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestQuery_String(t *testing.T) {
	t.Parallel()

	require.Equal(t, `equal("accountId", ["a1"])`, Equal("accountId", "a1").String())
	require.Equal(t, `orderDesc("$createdAt")`, OrderDesc(AttrCreatedAt).String())
	require.Equal(t, `orderAsc("name")`, OrderAsc("name").String())
	require.Equal(t, `limit(20)`, Limit(20).String())
}

func TestLimitOf(t *testing.T) {
	t.Parallel()

	require.Equal(t, 20, LimitOf([]Query{OrderDesc(AttrCreatedAt), Limit(20)}, 25))
	require.Equal(t, 25, LimitOf([]Query{Equal("a", "b")}, 25))
}

func TestValidAttribute(t *testing.T) {
	t.Parallel()

	require.True(t, ValidAttribute("accountId"))
	require.True(t, ValidAttribute("$createdAt"))
	require.False(t, ValidAttribute(""))
	require.False(t, ValidAttribute("$"))
	require.False(t, ValidAttribute("a'; DROP TABLE documents; --"))
}

func TestDocument_JSONRoundTrip(t *testing.T) {
	t.Parallel()

	in := []byte(`{"$id":"p1","$databaseId":"db","$collectionId":"posts",
		"$createdAt":"2024-01-02T03:04:05.000+00:00","$updatedAt":"2024-01-03T03:04:05.000+00:00",
		"$permissions":[],"caption":"hello","tags":["a","b"]}`)

	var d Document
	require.NoError(t, d.UnmarshalJSON(in))
	require.Equal(t, "p1", d.ID)
	require.Equal(t, "posts", d.CollectionID)
	require.Equal(t, time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC), d.CreatedAt.UTC())
	require.Equal(t, "hello", d.Data["caption"])
	require.NotContains(t, d.Data, "$permissions")

	var out struct {
		ID      string   `json:"$id"`
		Caption string   `json:"caption"`
		Tags    []string `json:"tags"`
	}
	require.NoError(t, d.Decode(&out))
	require.Equal(t, "p1", out.ID)
	require.Equal(t, []string{"a", "b"}, out.Tags)
}
