package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestSignParseRoundTrip(t *testing.T) {
	s, err := NewSigner("test-secret", time.Hour)
	if err != nil {
		t.Fatalf("NewSigner failed: %v", err)
	}
	token, exp, err := s.Sign("w1", RoleWorker, "Carla", "")
	if err != nil {
		t.Fatalf("Sign failed: %v", err)
	}
	if !exp.After(time.Now()) {
		t.Fatalf("expected future expiry, got %s", exp)
	}
	claims, err := s.Parse(token)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if claims.Subject != "w1" || claims.Role != RoleWorker || claims.Name != "Carla" {
		t.Fatalf("claims mismatch: got %+v", claims)
	}

	other, _ := NewSigner("wrong-secret", time.Hour)
	if _, err := other.Parse(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken with wrong secret, got %v", err)
	}
}

func TestParseExpired(t *testing.T) {
	s, _ := NewSigner("test-secret", time.Minute)
	s.now = func() time.Time { return time.Now().Add(-time.Hour) }
	token, _, err := s.Sign("c1", RoleClient, "Ana", "ana@example.com")
	if err != nil {
		t.Fatalf("Sign failed: %v", err)
	}
	s.now = time.Now
	if _, err := s.Parse(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected expired token to fail, got %v", err)
	}
}

func TestParseRejectsUnknownRoleAndAlg(t *testing.T) {
	s, _ := NewSigner("test-secret", time.Hour)
	bad, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{Role: "admin"}).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := s.Parse(bad); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected unknown role to fail, got %v", err)
	}
	hs512, _ := jwt.NewWithClaims(jwt.SigningMethodHS512, Claims{Role: RoleWorker}).SignedString([]byte("test-secret"))
	if _, err := s.Parse(hs512); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected HS512 to be rejected, got %v", err)
	}
}

func TestBearerToken(t *testing.T) {
	if got := BearerToken("Bearer abc.def"); got != "abc.def" {
		t.Fatalf("expected token, got %q", got)
	}
	if got := BearerToken("Basic xyz"); got != "" {
		t.Fatalf("expected empty, got %q", got)
	}
	if _, err := NewSigner(" ", time.Hour); err == nil {
		t.Fatal("expected error for empty secret")
	}
}
