package model

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalog(t *testing.T) {
	catalog := DefaultCatalog()

	require.Len(t, catalog, 5)
	for id := 0; id < 5; id++ {
		seg, ok := catalog[id]
		require.True(t, ok, "cluster %d", id)
		assert.NotEmpty(t, seg.Name)
		assert.NotEmpty(t, seg.Strategy)
	}
}

func TestCatalog_LookupFallback(t *testing.T) {
	catalog := DefaultCatalog()

	seg := catalog.Lookup(17)
	assert.Equal(t, "Cluster 17", seg.Name)
	assert.NotEmpty(t, seg.Strategy)
}

func TestLoadCatalog_Override(t *testing.T) {
	path := filepath.Join(t.TempDir(), "labels.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"0": {"name": "Whales", "strategy": "keep them happy"},
		"1": {"name": "Minnows", "strategy": "grow them"}
	}`), 0o600))

	catalog, err := LoadCatalog(path)
	require.NoError(t, err)

	assert.Equal(t, "Whales", catalog.Lookup(0).Name)
	assert.Equal(t, "Minnows", catalog.Lookup(1).Name)
}

func TestLoadCatalog_Errors(t *testing.T) {
	_, err := LoadCatalog(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("nope"), 0o600))
	_, err = LoadCatalog(path)
	assert.Error(t, err)
}

func TestRFMRecord_Validate(t *testing.T) {
	valid := RFMRecord{Recency: 45, Frequency: 2, Monetary: 1200}
	assert.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		record RFMRecord
	}{
		{"negative recency", RFMRecord{Recency: -1, Frequency: 2, Monetary: 100}},
		{"zero frequency", RFMRecord{Recency: 1, Frequency: 0, Monetary: 100}},
		{"zero monetary", RFMRecord{Recency: 1, Frequency: 2, Monetary: 0}},
		{"recency over bound", RFMRecord{Recency: MaxRecencyDays + 1, Frequency: 2, Monetary: 100}},
		{"frequency over bound", RFMRecord{Recency: 1, Frequency: MaxFrequency + 1, Monetary: 100}},
		{"monetary over bound", RFMRecord{Recency: 1, Frequency: 2, Monetary: MaxMonetary + 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, tt.record.Validate())
		})
	}
}

func TestRFMRecord_Vector(t *testing.T) {
	r := RFMRecord{Recency: 45, Frequency: 2, Monetary: 1200.5}
	assert.Equal(t, []float64{45, 2, 1200.5}, r.Vector())
}
