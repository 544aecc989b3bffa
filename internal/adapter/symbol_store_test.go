package adapter

import (
	"path/filepath"
	"reflect"
	"testing"

	m "github.com/mouse-blink/scopefix/internal/model"
)

func TestBoltSymbolStoreRoundtrip(t *testing.T) {
	store := NewBoltSymbolStore(m.Path(filepath.Join(t.TempDir(), "symbols.db")))

	entries := map[string]m.Resolution{
		"Handler":  m.ResolutionDelegateAlias,
		"Fd":       m.ResolutionOtherAlias,
		"Callback": m.ResolutionDelegateAlias,
	}

	if err := store.Save(entries); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if !reflect.DeepEqual(loaded, entries) {
		t.Errorf("got %v, want %v", loaded, entries)
	}
}

func TestBoltSymbolStoreMissingFile(t *testing.T) {
	store := NewBoltSymbolStore(m.Path(filepath.Join(t.TempDir(), "absent.db")))

	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if len(loaded) != 0 {
		t.Errorf("got %v, want an empty table", loaded)
	}
}

func TestBoltSymbolStoreSaveReplaces(t *testing.T) {
	store := NewBoltSymbolStore(m.Path(filepath.Join(t.TempDir(), "symbols.db")))

	if err := store.Save(map[string]m.Resolution{"Stale": m.ResolutionOtherAlias}); err != nil {
		t.Fatalf("first Save failed: %v", err)
	}

	if err := store.Save(map[string]m.Resolution{"Fresh": m.ResolutionDelegateAlias}); err != nil {
		t.Fatalf("second Save failed: %v", err)
	}

	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if _, ok := loaded["Stale"]; ok {
		t.Error("stale entry survived the replacement")
	}

	if loaded["Fresh"] != m.ResolutionDelegateAlias {
		t.Errorf("got %v, want the fresh entry", loaded)
	}
}

func TestResolutionEncoding(t *testing.T) {
	for _, r := range []m.Resolution{m.ResolutionDelegateAlias, m.ResolutionOtherAlias} {
		decoded, ok := decodeResolution(encodeResolution(r))
		if !ok || decoded != r {
			t.Errorf("roundtrip of %s: got %s, ok=%v", r, decoded, ok)
		}
	}

	if _, ok := decodeResolution([]byte("garbage")); ok {
		t.Error("garbage must not decode")
	}
}
