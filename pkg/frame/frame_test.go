package frame

import (
	"bytes"
	"errors"
	"io"
	"testing"
)

func TestEncode(t *testing.T) {
	tests := []struct {
		name    string
		payload []byte
		want    []byte
	}{
		{
			name:    "empty payload",
			payload: nil,
			want:    []byte{0x00, 0x00, 0x00, 0x00},
		},
		{
			name:    "hello",
			payload: []byte("hello"),
			want:    []byte{0x00, 0x00, 0x00, 0x05, 'h', 'e', 'l', 'l', 'o'},
		},
		{
			name:    "single zero byte",
			payload: []byte{0x00},
			want:    []byte{0x00, 0x00, 0x00, 0x01, 0x00},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Encode(tt.payload)
			if !bytes.Equal(got, tt.want) {
				t.Errorf("Encode() = %x, want %x", got, tt.want)
			}
		})
	}
}

func TestRoundTrip(t *testing.T) {
	sizes := []int{0, 1, 2, 255, 256, 1024, MaxDatagramSize}
	for _, size := range sizes {
		payload := make([]byte, size)
		for i := range payload {
			payload[i] = byte(i)
		}

		got, err := Read(bytes.NewReader(Encode(payload)))
		if err != nil {
			t.Fatalf("Read(Encode(%d bytes)): %v", size, err)
		}
		if !bytes.Equal(got, payload) {
			t.Errorf("round trip of %d bytes did not preserve payload", size)
		}
	}
}

func TestReadMultipleFrames(t *testing.T) {
	var stream bytes.Buffer
	payloads := [][]byte{[]byte("one"), []byte("two"), []byte("three")}
	for _, p := range payloads {
		stream.Write(Encode(p))
	}

	for i, want := range payloads {
		got, err := Read(&stream)
		if err != nil {
			t.Fatalf("frame %d: %v", i, err)
		}
		if !bytes.Equal(got, want) {
			t.Errorf("frame %d = %q, want %q", i, got, want)
		}
	}

	if _, err := Read(&stream); err != io.EOF {
		t.Errorf("Read() after last frame = %v, want io.EOF", err)
	}
}

func TestReadCleanClose(t *testing.T) {
	_, err := Read(bytes.NewReader(nil))
	if err != io.EOF {
		t.Errorf("Read(empty stream) = %v, want io.EOF", err)
	}
}

func TestReadIncompleteFrame(t *testing.T) {
	tests := []struct {
		name   string
		stream []byte
	}{
		{
			name:   "truncated header",
			stream: []byte{0x00, 0x00},
		},
		{
			name:   "missing payload",
			stream: []byte{0x00, 0x00, 0x00, 0x05},
		},
		{
			name:   "truncated payload",
			stream: []byte{0x00, 0x00, 0x00, 0x05, 'h', 'e'},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Read(bytes.NewReader(tt.stream))
			if !errors.Is(err, ErrIncompleteFrame) {
				t.Errorf("Read() = %v, want ErrIncompleteFrame", err)
			}
		})
	}
}

func TestReadFrameTooLarge(t *testing.T) {
	stream := []byte{0xff, 0xff, 0xff, 0xff, 0x00}
	_, err := Read(bytes.NewReader(stream))
	if !errors.Is(err, ErrFrameTooLarge) {
		t.Errorf("Read() = %v, want ErrFrameTooLarge", err)
	}
}
