package textenc

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/encoding/unicode"
)

const sample = "2024년 9월 2일 오후 4:13, 홍길동 : 안녕하세요"

func TestDecode_Auto(t *testing.T) {
	eucKR, err := korean.EUCKR.NewEncoder().String(sample)
	require.NoError(t, err)

	utf16le, err := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder().String(sample)
	require.NoError(t, err)

	utf16be, err := unicode.UTF16(unicode.BigEndian, unicode.UseBOM).NewEncoder().String(sample)
	require.NoError(t, err)

	tests := []struct {
		name     string
		data     []byte
		wantText string
		wantEnc  string
	}{
		{"plain utf-8", []byte(sample), sample, NameUTF8},
		{"utf-8 with BOM", append([]byte{0xEF, 0xBB, 0xBF}, sample...), sample, NameUTF8},
		{"utf-16le with BOM", []byte(utf16le), sample, NameUTF16LE},
		{"utf-16be with BOM", []byte(utf16be), sample, NameUTF16BE},
		{"euc-kr", []byte(eucKR), sample, NameEUCKR},
		{"empty", nil, "", NameUTF8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, enc, err := Decode(tt.data, Auto)
			require.NoError(t, err)
			assert.Equal(t, tt.wantText, text)
			assert.Equal(t, tt.wantEnc, enc)
		})
	}
}

func TestDecode_AutoKeepsMostlyUTF8(t *testing.T) {
	data := append([]byte("hello "), 0xFF)
	data = append(data, []byte("안녕하")...)

	text, enc, err := Decode(data, "")
	require.NoError(t, err)
	assert.Equal(t, NameUTF8, enc)
	assert.Equal(t, "hello \uFFFD안녕하", text)
}

func TestDecode_Explicit(t *testing.T) {
	eucKR, err := korean.EUCKR.NewEncoder().String(sample)
	require.NoError(t, err)

	text, enc, err := Decode([]byte(eucKR), "CP949")
	require.NoError(t, err)
	assert.Equal(t, sample, text)
	assert.Equal(t, NameEUCKR, enc)

	text, enc, err = Decode(append([]byte{0xEF, 0xBB, 0xBF}, sample...), "utf-8")
	require.NoError(t, err)
	assert.Equal(t, sample, text)
	assert.Equal(t, NameUTF8, enc)
}

func TestDecode_UnknownEncoding(t *testing.T) {
	_, _, err := Decode([]byte(sample), "klingon-8")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownEncoding)
	assert.False(t, Valid("klingon-8"))
	assert.True(t, Valid("auto"))
	assert.True(t, Valid("euc-kr"))
}

func TestDecodeFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chat.txt")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o644))

	text, enc, err := DecodeFile(path, Auto)
	require.NoError(t, err)
	assert.Equal(t, sample, text)
	assert.Equal(t, NameUTF8, enc)

	_, _, err = DecodeFile(filepath.Join(t.TempDir(), "missing.txt"), Auto)
	assert.Error(t, err)
}
