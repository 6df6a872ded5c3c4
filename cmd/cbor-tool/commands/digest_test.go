package commands

import (
	"bytes"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/mash-protocol/cbor-go/pkg/digest"
	"github.com/mash-protocol/cbor-go/pkg/value"
)

func TestRunDigest(t *testing.T) {
	env := newTestEnv(t)

	one, err := digest.Of(value.Uint(1))
	if err != nil {
		t.Fatalf("digest.Of failed: %v", err)
	}
	list, err := digest.Of(value.Array{value.Uint(1), value.Uint(2)})
	if err != nil {
		t.Fatalf("digest.Of failed: %v", err)
	}

	// 1801 is a non-minimal 1 and digests the same as 01.
	var buf bytes.Buffer
	if err := RunDigest(env, hexInput(t, "01 1801 820102"), DigestOptions{}, &buf); err != nil {
		t.Fatalf("RunDigest failed: %v", err)
	}

	want := one.String() + "  uint\n" + one.String() + "  uint\n" + list.String() + "  array(2)\n"
	if buf.String() != want {
		t.Errorf("expected %q, got %q", want, buf.String())
	}
}

func TestRunDigestSized(t *testing.T) {
	env := newTestEnv(t)

	sum, err := digest.Sized(16, value.Text("a"))
	if err != nil {
		t.Fatalf("digest.Sized failed: %v", err)
	}

	var buf bytes.Buffer
	if err := RunDigest(env, hexInput(t, "6161"), DigestOptions{Size: 16}, &buf); err != nil {
		t.Fatalf("RunDigest failed: %v", err)
	}
	if want := hex.EncodeToString(sum) + "  text(1)\n"; buf.String() != want {
		t.Errorf("expected %q, got %q", want, buf.String())
	}
}

func TestRunDigestKeyed(t *testing.T) {
	env := newTestEnv(t)

	key := []byte("secret")
	sum, err := digest.Keyed(key, value.Uint(1))
	if err != nil {
		t.Fatalf("digest.Keyed failed: %v", err)
	}
	plain, err := digest.Of(value.Uint(1))
	if err != nil {
		t.Fatalf("digest.Of failed: %v", err)
	}
	if sum == plain {
		t.Fatal("keyed digest equals plain digest")
	}

	var buf bytes.Buffer
	opts := DigestOptions{Key: hex.EncodeToString(key)}
	if err := RunDigest(env, hexInput(t, "01"), opts, &buf); err != nil {
		t.Fatalf("RunDigest failed: %v", err)
	}
	if !strings.HasPrefix(buf.String(), sum.String()) {
		t.Errorf("expected keyed digest %s, got %q", sum, buf.String())
	}
}

func TestRunDigestCheck(t *testing.T) {
	env := newTestEnv(t)

	sum, err := digest.Of(value.Uint(1))
	if err != nil {
		t.Fatalf("digest.Of failed: %v", err)
	}

	var buf bytes.Buffer
	opts := DigestOptions{Check: strings.ToUpper(sum.String())}
	if err := RunDigest(env, hexInput(t, "01"), opts, &buf); err != nil {
		t.Fatalf("RunDigest failed: %v", err)
	}
	if buf.String() != "OK\n" {
		t.Errorf("expected OK, got %q", buf.String())
	}

	opts.Check = strings.Repeat("00", digest.Size)
	err = RunDigest(env, hexInput(t, "01"), opts, &buf)
	if err == nil || !strings.Contains(err.Error(), "digest mismatch: got "+sum.String()) {
		t.Errorf("expected mismatch error, got %v", err)
	}

	err = RunDigest(env, hexInput(t, "01 02"), opts, &buf)
	if err == nil || !strings.Contains(err.Error(), "exactly one item, got 2") {
		t.Errorf("expected item count error, got %v", err)
	}
}

func TestRunDigestOptionErrors(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name string
		opts DigestOptions
		want string
	}{
		{"size too large", DigestOptions{Size: 65}, "invalid digest size 65"},
		{"negative size", DigestOptions{Size: -1}, "invalid digest size -1"},
		{"key with size", DigestOptions{Size: 16, Key: "00"}, "--key requires the default size"},
		{"bad key", DigestOptions{Key: "zz"}, "invalid key"},
		{"bad check", DigestOptions{Check: "xyz"}, "invalid digest"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			err := RunDigest(env, hexInput(t, "01"), tt.opts, &buf)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}
