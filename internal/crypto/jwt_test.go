package crypto

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestIssue(t *testing.T) {
	token, err := NewTokenIssuer("test-secret", time.Hour).Issue(42)
	if err != nil {
		t.Fatalf("Issue() unexpected error: %v", err)
	}
	if token == "" {
		t.Fatal("Issue() returned empty string")
	}
}

func TestVerifyValid(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", 24*time.Hour)

	token, err := issuer.Issue(42)
	if err != nil {
		t.Fatalf("Issue() unexpected error: %v", err)
	}

	claims, err := issuer.Verify(token)
	if err != nil {
		t.Fatalf("Verify() unexpected error: %v", err)
	}
	if claims.UserID != 42 {
		t.Errorf("Verify() UserID = %d, want 42", claims.UserID)
	}
	if claims.Subject != "42" {
		t.Errorf("Verify() Subject = %q, want %q", claims.Subject, "42")
	}
	if got := claims.ExpiresAt.Sub(claims.IssuedAt.Time); got != 24*time.Hour {
		t.Errorf("Verify() lifetime = %v, want 24h", got)
	}
}

func TestVerifyStillValidJustBeforeExpiry(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", 24*time.Hour)
	issued := time.Now()
	issuer.now = func() time.Time { return issued }

	token, err := issuer.Issue(7)
	if err != nil {
		t.Fatalf("Issue() unexpected error: %v", err)
	}

	issuer.now = func() time.Time { return issued.Add(23*time.Hour + 59*time.Minute) }
	if _, err := issuer.Verify(token); err != nil {
		t.Errorf("Verify() unexpected error before expiry: %v", err)
	}
}

func TestVerifyExpired(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", 24*time.Hour)
	issuer.now = func() time.Time { return time.Now().Add(-25 * time.Hour) }

	token, err := issuer.Issue(42)
	if err != nil {
		t.Fatalf("Issue() unexpected error: %v", err)
	}

	issuer.now = time.Now
	if _, err := issuer.Verify(token); err != ErrInvalidToken {
		t.Errorf("Verify() error = %v, want ErrInvalidToken", err)
	}
}

func TestVerifyMalformed(t *testing.T) {
	if _, err := NewTokenIssuer("test-secret", time.Hour).Verify("not-a-valid-token"); err != ErrInvalidToken {
		t.Errorf("Verify() error = %v, want ErrInvalidToken", err)
	}
}

func TestVerifyWrongSecret(t *testing.T) {
	token, err := NewTokenIssuer("correct-secret", time.Hour).Issue(42)
	if err != nil {
		t.Fatalf("Issue() unexpected error: %v", err)
	}

	if _, err := NewTokenIssuer("wrong-secret", time.Hour).Verify(token); err == nil {
		t.Error("Verify() expected error for wrong secret")
	}
}

func TestVerifyTamperedPayload(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Hour)
	token, err := issuer.Issue(42)
	if err != nil {
		t.Fatalf("Issue() unexpected error: %v", err)
	}

	other, err := issuer.Issue(43)
	if err != nil {
		t.Fatalf("Issue() unexpected error: %v", err)
	}

	// Splice the payload of one token onto the signature of another.
	a := strings.Split(token, ".")
	b := strings.Split(other, ".")
	forged := strings.Join([]string{a[0], b[1], a[2]}, ".")

	if _, err := issuer.Verify(forged); err == nil {
		t.Error("Verify() expected error for tampered payload")
	}
}

func TestVerifyRejectsNoneAlgorithm(t *testing.T) {
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Audience:  jwt.ClaimStrings{tokenAudience},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		UserID: 42,
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("SignedString() unexpected error: %v", err)
	}

	if _, err := NewTokenIssuer("test-secret", time.Hour).Verify(token); err == nil {
		t.Error("Verify() expected error for alg=none token")
	}
}

func TestVerifyClaimMismatch(t *testing.T) {
	tests := []struct {
		name     string
		issuer   string
		audience string
	}{
		{name: "wrong issuer", issuer: "wrong-issuer", audience: tokenAudience},
		{name: "wrong audience", issuer: tokenIssuer, audience: "wrong-audience"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims := Claims{
				RegisteredClaims: jwt.RegisteredClaims{
					Issuer:    tt.issuer,
					Audience:  jwt.ClaimStrings{tt.audience},
					ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
					IssuedAt:  jwt.NewNumericDate(time.Now()),
				},
				UserID: 42,
			}
			tokenString, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
			if err != nil {
				t.Fatalf("SignedString() unexpected error: %v", err)
			}

			if _, err := NewTokenIssuer("test-secret", time.Hour).Verify(tokenString); err == nil {
				t.Errorf("Verify() expected error for %s", tt.name)
			}
		})
	}
}
