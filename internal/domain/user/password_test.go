package user

import (
	"strings"
	"testing"

	"github.com/hms/hms/internal/platform/apperr"
)

func TestValidatePassword(t *testing.T) {
	cases := []struct {
		name     string
		password string
		wantErr  string
	}{
		{"valid", "Admin@1234", ""},
		{"too short", "Ab1@", "at least 8 characters"},
		{"no uppercase", "admin@1234", "uppercase letter"},
		{"no lowercase", "ADMIN@1234", "lowercase letter"},
		{"no digit", "Admin@abcd", "digit"},
		{"no special", "Admin1234x", "special character"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidatePassword(tc.password)
			if tc.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected error")
			}
			if !apperr.IsKind(err, apperr.KindValidation) {
				t.Errorf("kind = %v, want validation", apperr.KindOf(err))
			}
			if !strings.Contains(apperr.MessageOf(err), tc.wantErr) {
				t.Errorf("message %q does not mention %q", apperr.MessageOf(err), tc.wantErr)
			}
		})
	}
}

func TestValidatePassword_ListsEveryProblem(t *testing.T) {
	err := ValidatePassword("abc")
	if err == nil {
		t.Fatal("expected error")
	}
	msg := apperr.MessageOf(err)
	for _, want := range []string{"8 characters", "uppercase", "digit", "special"} {
		if !strings.Contains(msg, want) {
			t.Errorf("message %q missing %q", msg, want)
		}
	}
}

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("Secret@99")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if hash == "Secret@99" {
		t.Fatal("password stored in the clear")
	}
	if !CheckPassword(hash, "Secret@99") {
		t.Error("correct password rejected")
	}
	if CheckPassword(hash, "Secret@98") {
		t.Error("wrong password accepted")
	}
}
