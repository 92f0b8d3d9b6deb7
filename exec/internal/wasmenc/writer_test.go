package wasmenc

import (
	"bytes"
	"testing"
)

func TestWriteU32(t *testing.T) {
	tests := []struct {
		v    uint32
		want []byte
	}{
		{0, []byte{0x00}},
		{127, []byte{0x7f}},
		{128, []byte{0x80, 0x01}},
		{624485, []byte{0xe5, 0x8e, 0x26}},
		{0xffffffff, []byte{0xff, 0xff, 0xff, 0xff, 0x0f}},
	}
	for _, tt := range tests {
		w := NewWriter()
		w.WriteU32(tt.v)
		if !bytes.Equal(w.Bytes(), tt.want) {
			t.Errorf("WriteU32(%d) = %x, want %x", tt.v, w.Bytes(), tt.want)
		}
	}
}

func TestWriteS32(t *testing.T) {
	tests := []struct {
		v    int32
		want []byte
	}{
		{0, []byte{0x00}},
		{63, []byte{0x3f}},
		{64, []byte{0xc0, 0x00}},
		{-1, []byte{0x7f}},
		{-64, []byte{0x40}},
		{-65, []byte{0xbf, 0x7f}},
		{-123456, []byte{0xc0, 0xbb, 0x78}},
	}
	for _, tt := range tests {
		w := NewWriter()
		w.WriteS32(tt.v)
		if !bytes.Equal(w.Bytes(), tt.want) {
			t.Errorf("WriteS32(%d) = %x, want %x", tt.v, w.Bytes(), tt.want)
		}
	}
}

func TestWriteSection(t *testing.T) {
	body := NewWriter()
	body.WriteName("ab")

	w := NewWriter()
	w.WriteSection(7, body)
	want := []byte{7, 3, 2, 'a', 'b'}
	if !bytes.Equal(w.Bytes(), want) {
		t.Errorf("WriteSection = %x, want %x", w.Bytes(), want)
	}
}
