package utils

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestGenerateLoginCodeFormat(t *testing.T) {
	code, err := GenerateLoginCode(context.Background(), func(ctx context.Context, code string) (bool, error) {
		return false, nil
	})
	if err != nil {
		t.Fatalf("GenerateLoginCode: %v", err)
	}
	if len(code) != 8 {
		t.Fatalf("len(code) = %d, want 8", len(code))
	}
	for i, r := range code[:5] {
		if !strings.ContainsRune(loginCodeLetters, r) {
			t.Errorf("position %d = %q, want a letter", i, r)
		}
	}
	for i, r := range code[5:] {
		if !strings.ContainsRune(loginCodeDigits, r) {
			t.Errorf("position %d = %q, want a digit", i+5, r)
		}
	}
}

func TestGenerateLoginCodeRetriesOnCollision(t *testing.T) {
	calls := 0
	code, err := GenerateLoginCode(context.Background(), func(ctx context.Context, code string) (bool, error) {
		calls++
		// First two candidates are taken.
		return calls <= 2, nil
	})
	if err != nil {
		t.Fatalf("GenerateLoginCode: %v", err)
	}
	if code == "" {
		t.Fatal("empty code on success")
	}
	if calls != 3 {
		t.Errorf("exists checked %d times, want 3", calls)
	}
}

func TestGenerateLoginCodeGivesUp(t *testing.T) {
	calls := 0
	_, err := GenerateLoginCode(context.Background(), func(ctx context.Context, code string) (bool, error) {
		calls++
		return true, nil
	})
	if err == nil {
		t.Fatal("expected an error when every candidate collides")
	}
	if calls != MaxLoginCodeAttempts {
		t.Errorf("exists checked %d times, want %d", calls, MaxLoginCodeAttempts)
	}
}

func TestGenerateLoginCodePropagatesLookupError(t *testing.T) {
	boom := errors.New("store down")
	_, err := GenerateLoginCode(context.Background(), func(ctx context.Context, code string) (bool, error) {
		return false, boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want the lookup error", err)
	}
}
