package auth

import (
	"bytes"
	"encoding/gob"
	"testing"
)

func TestDecodeSessionCorruptBlob(t *testing.T) {
	if s := decodeSession("sid", []byte("not a gob payload")); s != nil {
		t.Errorf("corrupt bytes decode to nil, got %+v", s)
	}
	if s := decodeSession("sid", nil); s != nil {
		t.Errorf("empty bytes decode to nil, got %+v", s)
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(Session{UserID: "u1"}); err != nil {
		t.Fatal(err)
	}
	s := decodeSession("sid", buf.Bytes())
	if s == nil || s.UserID != "u1" {
		t.Fatalf("valid bytes round trip, got %+v", s)
	}
}
