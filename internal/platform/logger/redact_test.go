package logger

import (
	"strings"
	"testing"
)

func TestRedactorMasksSecretsAndHashesIDs(t *testing.T) {
	r := &redactor{enabled: true, salt: "pepper"}
	out := r.sanitize([]interface{}{
		"email", "someone@example.com",
		"user_id", "8f8c1d4e-0000-0000-0000-000000000000",
		"liters", 1.5,
	})
	if len(out) != 6 {
		t.Fatalf("sanitize: want=6 items got=%d", len(out))
	}
	if out[1] != "[REDACTED]" {
		t.Fatalf("email: want=[REDACTED] got=%v", out[1])
	}
	hashed, ok := out[3].(string)
	if !ok || !strings.HasPrefix(hashed, "hash:") || len(hashed) != len("hash:")+12 {
		t.Fatalf("user_id: want hash:<12 hex> got=%v", out[3])
	}
	if out[5] != 1.5 {
		t.Fatalf("liters: want=1.5 got=%v", out[5])
	}
}

func TestRedactorDisabledPassesThrough(t *testing.T) {
	r := &redactor{enabled: false}
	in := []interface{}{"password", "hunter2"}
	out := r.sanitize(in)
	if out[1] != "hunter2" {
		t.Fatalf("disabled: want passthrough got=%v", out[1])
	}
}

func TestRedactorMasksJWTLookingValues(t *testing.T) {
	r := &redactor{enabled: true}
	jwt := "eyJhbGciOiJIUzI1NiJ9.eyJzdWIiOiIxMjM0NTY3ODkwIn0.signature"
	out := r.sanitize([]interface{}{"header", jwt})
	if out[1] != "[REDACTED]" {
		t.Fatalf("jwt value: want=[REDACTED] got=%v", out[1])
	}
}

func TestRedactorKeepsDanglingKey(t *testing.T) {
	r := &redactor{enabled: true}
	out := r.sanitize([]interface{}{"a", 1, "dangling"})
	if len(out) != 3 || out[2] != "dangling" {
		t.Fatalf("dangling: got=%v", out)
	}
}
