package adapter

import (
	"strings"
	"testing"

	"github.com/mouse-blink/scopefix/internal/dlang"
	m "github.com/mouse-blink/scopefix/internal/model"
)

func lexTestSource(t *testing.T, src string) []dlang.Token {
	t.Helper()

	tokens, err := dlang.NewLexer([]byte(src)).Lex()
	if err != nil {
		t.Fatalf("lex failed: %v", err)
	}

	return tokens
}

func tokenIndexOf(t *testing.T, tokens []dlang.Token, text string, occurrence int) int {
	t.Helper()

	seen := 0

	for i, tok := range tokens {
		if tok.Text != text {
			continue
		}

		seen++
		if seen == occurrence {
			return i
		}
	}

	t.Fatalf("occurrence %d of %q not found", occurrence, text)

	return -1
}

func TestTokenRewriterScopeInsertion(t *testing.T) {
	t.Run("inserts before the type's first token", func(t *testing.T) {
		src := "void f(void delegate() d) {}"
		tokens := lexTestSource(t, src)

		idx := tokenIndexOf(t, tokens, "void", 2)

		patched, rewrites := NewTokenRewriter().Apply([]byte(src), tokens, []m.Interval{{Start: idx, End: idx}}, nil)

		if got, want := string(patched), "void f(scope void delegate() d) {}"; got != want {
			t.Errorf("got %q, want %q", got, want)
		}

		if rewrites != 0 {
			t.Errorf("got %d this-rewrites, want 0", rewrites)
		}
	})

	t.Run("multiple insertions apply in one pass", func(t *testing.T) {
		src := "void f(void delegate() a, int function() b) {}"
		tokens := lexTestSource(t, src)

		inserts := []m.Interval{
			{Start: tokenIndexOf(t, tokens, "int", 1), End: tokenIndexOf(t, tokens, "int", 1)},
			{Start: tokenIndexOf(t, tokens, "void", 2), End: tokenIndexOf(t, tokens, "void", 2)},
		}

		patched, _ := NewTokenRewriter().Apply([]byte(src), tokens, inserts, nil)

		if got, want := string(patched), "void f(scope void delegate() a, scope int function() b) {}"; got != want {
			t.Errorf("got %q, want %q", got, want)
		}
	})

	t.Run("out-of-range indices are skipped", func(t *testing.T) {
		src := "int x;"
		tokens := lexTestSource(t, src)

		patched, _ := NewTokenRewriter().Apply([]byte(src), tokens, []m.Interval{{Start: -1, End: -1}, {Start: 99, End: 99}}, nil)

		if string(patched) != src {
			t.Errorf("got %q, want the source untouched", patched)
		}
	})
}

func TestTokenRewriterThisRewrite(t *testing.T) {
	t.Run("rewrites value uses only", func(t *testing.T) {
		src := "struct P { this(int v) { this.v = v; } ~this() { free(this); } }"
		tokens := lexTestSource(t, src)

		full := []m.Interval{{Start: 0, End: len(tokens)}}

		patched, rewrites := NewTokenRewriter().Apply([]byte(src), tokens, nil, full)

		want := "struct P { this(int v) { (&this).v = v; } ~this() { free((&this)); } }"
		if string(patched) != want {
			t.Errorf("got:\n%s\nwant:\n%s", patched, want)
		}

		// the constructor head and the destructor head keep their spelling
		if rewrites != 2 {
			t.Errorf("got %d rewrites, want 2", rewrites)
		}
	})

	t.Run("tokens outside the ranges are untouched", func(t *testing.T) {
		src := "void f() { this.x = 1; } struct S { void g(int n) { this.y = 2; } }"
		tokens := lexTestSource(t, src)

		start := tokenIndexOf(t, tokens, "{", 3)
		ranges := []m.Interval{{Start: start, End: len(tokens)}}

		patched, rewrites := NewTokenRewriter().Apply([]byte(src), tokens, nil, ranges)

		if rewrites != 1 {
			t.Fatalf("got %d rewrites, want 1", rewrites)
		}

		got := string(patched)
		if !strings.Contains(got, "this.x = 1;") || !strings.Contains(got, "(&this).y = 2;") {
			t.Errorf("got %q", got)
		}
	})

	t.Run("insertions and rewrites compose", func(t *testing.T) {
		src := "struct S { void on(void delegate() cb) { this.cb = cb; } }"
		tokens := lexTestSource(t, src)

		idx := tokenIndexOf(t, tokens, "void", 2)
		inserts := []m.Interval{{Start: idx, End: idx}}
		ranges := []m.Interval{{Start: 0, End: len(tokens)}}

		patched, rewrites := NewTokenRewriter().Apply([]byte(src), tokens, inserts, ranges)

		want := "struct S { void on(scope void delegate() cb) { (&this).cb = cb; } }"
		if string(patched) != want || rewrites != 1 {
			t.Errorf("got %q (%d rewrites)", patched, rewrites)
		}
	})

	t.Run("no edits returns the source as-is", func(t *testing.T) {
		src := "int x;"
		tokens := lexTestSource(t, src)

		patched, rewrites := NewTokenRewriter().Apply([]byte(src), tokens, nil, nil)

		if string(patched) != src || rewrites != 0 {
			t.Errorf("got %q (%d rewrites)", patched, rewrites)
		}
	})
}

func TestTokenRewriterDiff(t *testing.T) {
	original := []byte("struct S {\n\tvoid f(void delegate() d) {}\n}\n")
	patched := []byte("struct S {\n\tvoid f(scope void delegate() d) {}\n}\n")

	diff, err := NewTokenRewriter().Diff("src/app.d", original, patched)
	if err != nil {
		t.Fatalf("Diff failed: %v", err)
	}

	for _, want := range []string{
		"--- src/app.d",
		"+++ src/app.d (converted)",
		"-\tvoid f(void delegate() d) {}",
		"+\tvoid f(scope void delegate() d) {}",
	} {
		if !strings.Contains(diff, want) {
			t.Errorf("diff missing %q:\n%s", want, diff)
		}
	}
}
