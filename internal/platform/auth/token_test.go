package auth

import (
	"reflect"
	"testing"
	"time"

	"github.com/hms/hms/internal/platform/apperr"
)

func testTokenService() *TokenService {
	return NewTokenService(TokenConfig{
		AccessSecret:  []byte("access-secret"),
		RefreshSecret: []byte("refresh-secret"),
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    7 * 24 * time.Hour,
	})
}

func testIdentity() *Identity {
	return &Identity{
		UserID:      "u-1",
		TenantID:    "t-1",
		Roles:       []string{RoleDoctor},
		Permissions: []string{PermPatientRead, PermPrescriptionCreate},
		Username:    "dr.jones",
		FirstName:   "Indiana",
		LastName:    "Jones",
		Department:  "Cardiology",
		Status:      "ACTIVE",
	}
}

func TestTokenService_AccessRoundTrip(t *testing.T) {
	svc := testTokenService()
	id := testIdentity()

	token, err := svc.IssueAccess(id)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	claims, err := svc.VerifyAccess(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if !reflect.DeepEqual(claims.Identity(), id) {
		t.Errorf("identity round trip mismatch:\n got %+v\nwant %+v", claims.Identity(), id)
	}
}

func TestTokenService_RefreshRoundTrip(t *testing.T) {
	svc := testTokenService()
	id := testIdentity()

	token, err := svc.IssueRefresh(id)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	claims, err := svc.VerifyRefresh(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.TenantID != id.TenantID || claims.UserID != id.UserID {
		t.Errorf("unexpected claims: %+v", claims)
	}
}

func TestTokenService_SecretsAreDistinct(t *testing.T) {
	svc := testTokenService()
	access, _ := svc.IssueAccess(testIdentity())
	refresh, _ := svc.IssueRefresh(testIdentity())

	if _, err := svc.VerifyAccess(refresh); err == nil {
		t.Error("refresh token must not verify as access token")
	}
	if _, err := svc.VerifyRefresh(access); err == nil {
		t.Error("access token must not verify as refresh token")
	}
}

func TestTokenService_Expired(t *testing.T) {
	svc := NewTokenService(TokenConfig{
		AccessSecret:  []byte("access-secret"),
		RefreshSecret: []byte("refresh-secret"),
		AccessTTL:     -time.Minute,
		RefreshTTL:    -time.Minute,
	})

	token, err := svc.IssueAccess(testIdentity())
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	_, err = svc.VerifyAccess(token)
	if err == nil {
		t.Fatal("expected expired token to fail verification")
	}
	if apperr.KindOf(err) != apperr.KindInvalidToken {
		t.Errorf("expected invalid token kind, got %v", apperr.KindOf(err))
	}
}

func TestTokenService_Malformed(t *testing.T) {
	svc := testTokenService()
	for _, token := range []string{"", "garbage", "a.b.c"} {
		if _, err := svc.VerifyAccess(token); err == nil {
			t.Errorf("expected error for %q", token)
		}
	}
}

func TestTokenService_TamperedSignature(t *testing.T) {
	svc := testTokenService()
	token, _ := svc.IssueAccess(testIdentity())

	tampered := token[:len(token)-2] + "xx"
	if _, err := svc.VerifyAccess(tampered); err == nil {
		t.Error("expected tampered token to fail verification")
	}
}
