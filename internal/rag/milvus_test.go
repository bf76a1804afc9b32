package rag

import "testing"

func TestIDInExpr(t *testing.T) {
	got := idInExpr([]string{"01x01/s00/l0000", "01x01/s00/l0001"})
	want := `id in ["01x01/s00/l0000", "01x01/s00/l0001"]`
	if got != want {
		t.Errorf("idInExpr = %q, want %q", got, want)
	}
}

func TestSearchExpr(t *testing.T) {
	tests := []struct {
		opts *SearchOptions
		want string
	}{
		{nil, ""},
		{&SearchOptions{}, ""},
		{&SearchOptions{Character: "Dwight Schrute"}, `character == "Dwight Schrute"`},
		{&SearchOptions{Season: 3}, "season == 3"},
		{&SearchOptions{Character: "Pam Beesly", Season: 2}, `character == "Pam Beesly" and season == 2`},
		{&SearchOptions{Character: `Bob "Vance" Vance`}, `character == "Bob \"Vance\" Vance"`},
	}

	for _, tt := range tests {
		if got := searchExpr(tt.opts); got != tt.want {
			t.Errorf("searchExpr(%+v) = %q, want %q", tt.opts, got, tt.want)
		}
	}
}

func TestDefaultMilvusConfig(t *testing.T) {
	t.Setenv("MILVUS_ADDRESS", "")
	t.Setenv("MILVUS_COLLECTION", "")

	cfg := DefaultMilvusConfig()
	if cfg.Address != "localhost:19530" {
		t.Errorf("Address = %q", cfg.Address)
	}
	if cfg.CollectionName != "office_dialogues" {
		t.Errorf("CollectionName = %q", cfg.CollectionName)
	}
	if cfg.Dimension != DefaultEmbeddingDimension {
		t.Errorf("Dimension = %d", cfg.Dimension)
	}

	t.Setenv("MILVUS_ADDRESS", "milvus.internal:19530")
	t.Setenv("MILVUS_COLLECTION", "test_dialogues")
	cfg = DefaultMilvusConfig()
	if cfg.Address != "milvus.internal:19530" || cfg.CollectionName != "test_dialogues" {
		t.Errorf("env override ignored: %+v", cfg)
	}
}
