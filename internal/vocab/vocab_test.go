package vocab

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestLoadTextReservesControlTokens(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "voc.txt")
	if err := os.WriteFile(path, []byte("O\nC\nEOS\nc\n\nCl\nC\n"), 0o644); err != nil {
		t.Fatalf("write vocab: %v", err)
	}
	v, err := Load(path, 0)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := []string{Pad, GO, EOS, "C", "Cl", "O", "c"}
	if got := v.Tokens(); !reflect.DeepEqual(got, want) {
		t.Fatalf("tokens = %v, want %v", got, want)
	}
	if id, _ := v.IndexOf(Pad); id != 0 {
		t.Fatalf("pad id = %d, want 0", id)
	}
	if v.GO() != 1 || v.EOS() != 2 {
		t.Fatalf("GO=%d EOS=%d", v.GO(), v.EOS())
	}
	if v.MaxLen() != DefaultMaxLen {
		t.Fatalf("max_len = %d", v.MaxLen())
	}
}

func TestJSONRoundTrip(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	v, err := FromWords([]string{"C", "N", "="}, 12)
	if err != nil {
		t.Fatalf("FromWords: %v", err)
	}
	path := filepath.Join(dir, "voc.json")
	if err := v.SaveJSON(path); err != nil {
		t.Fatalf("SaveJSON: %v", err)
	}
	got, err := Load(path, 0)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !reflect.DeepEqual(got.Tokens(), v.Tokens()) || got.MaxLen() != 12 {
		t.Fatalf("round trip mismatch: %v/%d vs %v/%d", got.Tokens(), got.MaxLen(), v.Tokens(), v.MaxLen())
	}
	override, err := Load(path, 40)
	if err != nil {
		t.Fatalf("Load override: %v", err)
	}
	if override.MaxLen() != 40 {
		t.Fatalf("max_len override ignored: %d", override.MaxLen())
	}
}

func TestNewRequiresControlTokens(t *testing.T) {
	t.Parallel()
	if _, err := New([]string{"C", "EOS"}, 10); !errors.Is(err, ErrMissingControl) {
		t.Fatalf("expected ErrMissingControl, got %v", err)
	}
	if _, err := New([]string{"GO", "C"}, 10); !errors.Is(err, ErrMissingControl) {
		t.Fatalf("expected ErrMissingControl, got %v", err)
	}
	if _, err := New([]string{"GO", "EOS", "GO"}, 10); !errors.Is(err, ErrDuplicateToken) {
		t.Fatalf("expected ErrDuplicateToken, got %v", err)
	}
}

func TestNewReservesPadZero(t *testing.T) {
	t.Parallel()
	if _, err := New([]string{"GO", "EOS", Pad, "C"}, 10); !errors.Is(err, ErrPadIndex) {
		t.Fatalf("expected ErrPadIndex, got %v", err)
	}
	if _, err := New([]string{"C", "GO", "EOS"}, 10); !errors.Is(err, ErrPadIndex) {
		t.Fatalf("expected ErrPadIndex, got %v", err)
	}
	v, err := New([]string{Pad, "GO", "EOS", "C"}, 10)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if id, _ := v.IndexOf(Pad); id != 0 {
		t.Fatalf("pad id %d, want 0", id)
	}
	c, _ := v.IndexOf("C")
	row, err := v.Encode([]string{"C"})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	// Trailing pad never reads back as a real token.
	if row[2] != 0 || c == 0 || v.Decode(row) != "C" {
		t.Fatalf("unexpected encoding %v", row)
	}
}

func TestTokenize(t *testing.T) {
	t.Parallel()
	cases := []struct {
		in   string
		want []string
	}{
		{"CCO", []string{"C", "C", "O"}},
		{"ClCBr", []string{"Cl", "C", "Br"}},
		{"C[NH3+]c1ccccc1", []string{"C", "[NH3+]", "c", "1", "c", "c", "c", "c", "c", "1"}},
		{"", nil},
	}
	for _, tc := range cases {
		if got := Tokenize(tc.in); !reflect.DeepEqual(got, tc.want) {
			t.Fatalf("Tokenize(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestEncodeDecode(t *testing.T) {
	t.Parallel()
	v, err := FromWords([]string{"C", "O", "Cl"}, 6)
	if err != nil {
		t.Fatalf("FromWords: %v", err)
	}
	ids, err := v.Encode(Tokenize("ClCO"))
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if len(ids) != 6 || ids[3] != v.EOS() || ids[4] != 0 || ids[5] != 0 {
		t.Fatalf("unexpected encoding %v", ids)
	}
	if got := v.Decode(ids); got != "ClCO" {
		t.Fatalf("Decode = %q", got)
	}

	if _, err := v.Encode([]string{"N"}); !errors.Is(err, ErrUnknownToken) {
		t.Fatalf("expected ErrUnknownToken, got %v", err)
	}
	if _, err := v.Encode(Tokenize("CCCCCC")); !errors.Is(err, ErrTooLong) {
		t.Fatalf("expected ErrTooLong, got %v", err)
	}
}

func TestEncodeSMILESBatch(t *testing.T) {
	t.Parallel()
	v, err := FromWords([]string{"C", "O", "N"}, 5)
	if err != nil {
		t.Fatalf("FromWords: %v", err)
	}
	m, err := v.EncodeSMILES([]string{"CO", "N"})
	if err != nil {
		t.Fatalf("EncodeSMILES: %v", err)
	}
	if m.R != 2 || m.C != 5 {
		t.Fatalf("shape %dx%d", m.R, m.C)
	}
	if got := v.DecodeBatch(m); !reflect.DeepEqual(got, []string{"CO", "N"}) {
		t.Fatalf("DecodeBatch = %v", got)
	}
	// Generated rows may start with GO in some pipelines; it is not rendered.
	if got := v.Decode([]int{v.GO(), 3, v.EOS(), 3}); got != "C" {
		t.Fatalf("Decode = %q", got)
	}
}
