package reporter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"go-jss-crawler/internal/scraper"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type closeCounter struct {
	SinkFunc
	closes int
	err    error
}

func (c *closeCounter) Close() error {
	c.closes++
	return c.err
}

func TestMulti(t *testing.T) {
	var got []string
	record := SinkFunc(func(_ context.Context, l scraper.Listing) error {
		got = append(got, l.CompanyName)
		return nil
	})
	failing := &closeCounter{
		SinkFunc: func(context.Context, scraper.Listing) error { return errors.New("telegram down") },
		err:      errors.New("close failed"),
	}
	m := Multi{failing, record}

	err := m.Emit(context.Background(), scraper.NewListing("Acme", "", "https://x/1", "20250101", ""))
	assert.EqualError(t, err, "telegram down")
	assert.Equal(t, []string{"Acme"}, got, "later sinks still run")

	assert.EqualError(t, m.Close(), "close failed")
	assert.Equal(t, 1, failing.closes)
}

func TestJSONWriter(t *testing.T) {
	var buf bytes.Buffer
	sink := NewJSONWriter(&buf)

	require.NoError(t, sink.Close())
	assert.JSONEq(t, "[]", buf.String(), "empty crawl writes an empty array")

	buf.Reset()
	sink = NewJSONWriter(&buf)
	l := scraper.NewListing("에이크미", "", "https://jasoseol.com/recruit/1?a=1&b=2", "20250101", "7")
	require.NoError(t, sink.Emit(context.Background(), l))
	require.NoError(t, sink.Close())

	assert.Contains(t, buf.String(), "에이크미", "non-ASCII kept verbatim")
	assert.Contains(t, buf.String(), "a=1&b=2")

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 1)
	assert.Equal(t, "7", decoded[0]["employment_id"])
	assert.Nil(t, decoded[0]["end_date"])
}

func TestJSONFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	sink := NewJSONFile(dir, "20250101")
	require.NoError(t, sink.Emit(context.Background(), scraper.NewListing("Acme", "", "https://x/1", "20250101", "")))
	require.NoError(t, sink.Close())

	data, err := os.ReadFile(filepath.Join(dir, "recruit-20250101.json"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"company_name": "Acme"`)
}
