package storage

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

func TestSniffImage(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		wantMime string
		wantExt  string
		wantErr  error
	}{
		{"png", pngHeader, "image/png", ".png", nil},
		{"jpeg", []byte("\xff\xd8\xff\xe0\x00\x10JFIF\x00"), "image/jpeg", ".jpg", nil},
		{"gif", []byte("GIF89a\x01\x00\x01\x00"), "image/gif", ".gif", nil},
		{"text", []byte("hello world"), "", "", ErrNotImage},
		{"too large", append(append([]byte{}, pngHeader...), bytes.Repeat([]byte{0}, MaxImageBytes)...), "", "", ErrTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mime, ext, err := SniffImage(tt.data)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.wantMime, mime)
			require.Equal(t, tt.wantExt, ext)
		})
	}
}

func TestPublicURL(t *testing.T) {
	got := PublicURL("demo.appspot.com", "profiles/u1/a.png", "tok")
	require.Equal(t, "https://firebasestorage.googleapis.com/v0/b/demo.appspot.com/o/profiles%2Fu1%2Fa.png?alt=media&token=tok", got)
}

func TestObjectPath(t *testing.T) {
	r := require.New(t)
	a := ObjectPath("/profiles/", "u1", ".png")
	b := ObjectPath("profiles", "u1", ".png")
	r.True(strings.HasPrefix(a, "profiles/u1/"))
	r.True(strings.HasSuffix(a, ".png"))
	r.NotEqual(a, b)
}
