package auth

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

func TestGetWithoutCredentials(t *testing.T) {
	t.Setenv(EnvToken, "")
	ti, err := NewStore(t.TempDir()).Get()
	if err != nil || ti != nil {
		t.Fatalf("expected not logged in, got %+v, %v", ti, err)
	}
}

func TestEnvOverride(t *testing.T) {
	t.Setenv(EnvToken, "Bearer abc")
	ti, err := NewStore(t.TempDir()).Get()
	if err != nil {
		t.Fatal(err)
	}
	if ti.Token != "abc" || ti.Source != "env" {
		t.Errorf("unexpected token %+v", ti)
	}
}

func TestSetGetDelete(t *testing.T) {
	t.Setenv(EnvToken, "")
	dir := filepath.Join(t.TempDir(), ".fintrack")
	s := NewStore(dir)

	if err := s.Set("  bearer opaque-token ", nil); err != nil {
		t.Fatalf("Set: %v", err)
	}
	info, err := os.Stat(filepath.Join(dir, credFileName))
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("credentials mode = %v", info.Mode().Perm())
	}

	token, err := s.Bearer()
	if err != nil || token != "opaque-token" {
		t.Fatalf("Bearer = %q, %v", token, err)
	}

	if err := s.Delete(); err != nil {
		t.Fatal(err)
	}
	if err := s.Delete(); err != nil {
		t.Errorf("second delete should be a no-op, got %v", err)
	}
	if token, _ := s.Bearer(); token != "" {
		t.Errorf("token survived delete: %q", token)
	}
}

func TestSetRejectsEmpty(t *testing.T) {
	if err := NewStore(t.TempDir()).Set("Bearer ", nil); err == nil {
		t.Fatal("expected an error")
	}
}

func TestSetRecordsJWTExpiry(t *testing.T) {
	t.Setenv(EnvToken, "")
	exp := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "user-1",
		"exp": exp.Unix(),
	}).SignedString([]byte("secret"))
	if err != nil {
		t.Fatal(err)
	}

	s := NewStore(t.TempDir())
	if err := s.Set(signed, nil); err != nil {
		t.Fatal(err)
	}
	ti, err := s.Get()
	if err != nil {
		t.Fatal(err)
	}
	if ti.ExpiresAt == nil || !ti.ExpiresAt.Equal(exp) {
		t.Errorf("ExpiresAt = %v", ti.ExpiresAt)
	}

	claims, err := Claims(signed)
	if err != nil || claims["sub"] != "user-1" {
		t.Errorf("Claims = %v, %v", claims, err)
	}
	if _, err := Claims("opaque"); err == nil {
		t.Error("opaque token should not parse as a JWT")
	}
}
