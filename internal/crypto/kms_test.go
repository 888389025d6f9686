package crypto

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"cloud.google.com/go/kms/apiv1/kmspb"
	"github.com/googleapis/gax-go/v2"

	"github.com/GregMSThompson/pitch-backend/internal/errs"
)

// fakeKMS reverses the plaintext and refuses a mismatched AAD.
type fakeKMS struct {
	aad []byte
}

func reverse(b []byte) []byte {
	out := make([]byte, len(b))
	for i := range b {
		out[len(b)-1-i] = b[i]
	}
	return out
}

func (f *fakeKMS) Encrypt(_ context.Context, req *kmspb.EncryptRequest, _ ...gax.CallOption) (*kmspb.EncryptResponse, error) {
	f.aad = req.AdditionalAuthenticatedData
	return &kmspb.EncryptResponse{Ciphertext: reverse(req.Plaintext)}, nil
}

func (f *fakeKMS) Decrypt(_ context.Context, req *kmspb.DecryptRequest, _ ...gax.CallOption) (*kmspb.DecryptResponse, error) {
	if !bytes.Equal(req.AdditionalAuthenticatedData, f.aad) {
		return nil, errors.New("aad mismatch")
	}
	return &kmspb.DecryptResponse{Plaintext: reverse(req.Ciphertext)}, nil
}

func TestKMSRoundTrip(t *testing.T) {
	k := &kms{client: &fakeKMS{}, keyName: "key"}
	ctx := context.Background()

	ct, err := k.Encrypt(ctx, "u1", "拟融5000万元")
	if err != nil {
		t.Fatalf("encrypt error: %v", err)
	}
	pt, err := k.Decrypt(ctx, "u1", ct)
	if err != nil {
		t.Fatalf("decrypt error: %v", err)
	}
	if pt != "拟融5000万元" {
		t.Fatalf("round trip mismatch: %q", pt)
	}

	var encErr *errs.EncryptionError
	if _, err := k.Decrypt(ctx, "u2", ct); !errors.As(err, &encErr) {
		t.Fatalf("expected encryption error for other owner, got %v", err)
	}
	if _, err := k.Decrypt(ctx, "u1", "%%%"); !errors.As(err, &encErr) {
		t.Fatalf("expected encryption error for bad base64, got %v", err)
	}
}
