package domain

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestParseRole(t *testing.T) {
	for _, r := range Roles() {
		got, ok := ParseRole(string(r))
		if !ok || got != r {
			t.Fatalf("ParseRole(%q) = %q, %v", r, got, ok)
		}
	}
	if _, ok := ParseRole("admin"); ok {
		t.Fatalf("role parsing must be exact")
	}
	if _, ok := ParseRole("ROOT"); ok {
		t.Fatalf("unknown role accepted")
	}
}

func TestParsePermission(t *testing.T) {
	p, err := ParsePermission("story:moderate")
	if err != nil || p != PermStoryModerate {
		t.Fatalf("unexpected result: %q %v", p, err)
	}
	if _, err := ParsePermission("story:publish"); KindOf(err) != KindConfig {
		t.Fatalf("expected config error, got %v", err)
	}
}

func TestUser_JSONHidesSecrets(t *testing.T) {
	u := User{ID: "1", Email: "a@x.com", PasswordHash: "$2a$hash", VerifyToken: "v", ResetToken: "r"}
	b, err := json.Marshal(u)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	for _, secret := range []string{"$2a$hash", `"v"`, `"r"`} {
		if strings.Contains(string(b), secret) {
			t.Fatalf("secret %s leaked: %s", secret, b)
		}
	}
}
