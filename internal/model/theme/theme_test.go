package theme

import "testing"

func TestResolveBuiltinThemesAreComplete(t *testing.T) {
	for _, id := range All() {
		p := Resolve(id)
		fields := []string{p.ChatBg, p.UserBg, p.UserColor, p.BotBg, p.BotColor, p.ButtonBg, p.ButtonColor}
		for i, f := range fields {
			if f == "" {
				t.Fatalf("theme %s: palette field %d is empty", id, i)
			}
		}
	}
}

func TestResolveUnknownFallsBackToDark(t *testing.T) {
	got := Resolve(ID("Solarized"))
	if got != Resolve(Dark) {
		t.Fatalf("expected dark palette fallback, got %+v", got)
	}
	if Resolve("") != Resolve(Dark) {
		t.Fatal("expected dark palette for empty id")
	}
}

func TestResolveIsStable(t *testing.T) {
	if Resolve(Midnight) != Resolve(Midnight) {
		t.Fatal("expected identical palettes for repeated calls")
	}
	if Resolve(Midnight).ChatBg != "#0b0c10" {
		t.Fatalf("unexpected midnight background %s", Resolve(Midnight).ChatBg)
	}
	if Resolve(Light).BotColor != "black" {
		t.Fatalf("unexpected light bot colour %s", Resolve(Light).BotColor)
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		raw  string
		want ID
		ok   bool
	}{
		{"Dark", Dark, true},
		{" light ", Light, true},
		{"MIDNIGHT", Midnight, true},
		{"neon", "", false},
		{"", "", false},
	}

	for _, tc := range tests {
		got, ok := Parse(tc.raw)
		if got != tc.want || ok != tc.ok {
			t.Fatalf("Parse(%q) = %q, %v; want %q, %v", tc.raw, got, ok, tc.want, tc.ok)
		}
	}
}

func TestMemoryStoreFindByID(t *testing.T) {
	store := NewMemoryStore(Seed())

	if len(store.List()) != 3 {
		t.Fatalf("expected 3 themes, got %d", len(store.List()))
	}

	entry, ok := store.FindByID("midnight")
	if !ok || entry.ID != Midnight {
		t.Fatalf("expected midnight entry, got %+v (ok=%v)", entry, ok)
	}

	if _, ok := store.FindByID("sepia"); ok {
		t.Fatal("expected unknown theme lookup to fail")
	}
}
