package cli

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetSimpleText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "full line", input: "  9876543210 \n", want: "9876543210"},
		{name: "only first line", input: "Asha\nignored\n", want: "Asha"},
		{name: "last line without newline", input: "110001", want: "110001"},
		{name: "blank line", input: "\n", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			got, err := GetSimpleText(bufio.NewReader(strings.NewReader(tt.input)), "Phone number", &out)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, "Phone number\n> ", out.String())
		})
	}
}

func TestGetSimpleText_EmptyEOF(t *testing.T) {
	var out bytes.Buffer
	_, err := GetSimpleText(bufio.NewReader(strings.NewReader("")), "Name?", &out)
	require.ErrorIs(t, err, io.EOF)
}

func TestGetPassword(t *testing.T) {
	old := readPassword
	defer func() { readPassword = old }()

	readPassword = func(int) ([]byte, error) { return []byte("s3cret"), nil }
	var out bytes.Buffer
	pw, err := GetPassword(&out)
	require.NoError(t, err)
	assert.Equal(t, []byte("s3cret"), pw)
	assert.Equal(t, "Enter password: \n", out.String())

	readPassword = func(int) ([]byte, error) { return nil, errors.New("boom") }
	_, err = GetPassword(&out)
	require.Error(t, err)
}

func TestParseProfileArgs(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    map[string]string
		wantErr string
	}{
		{name: "fields", args: []string{"name=Asha", "pincode=110001"}, want: map[string]string{"name": "Asha", "pincode": "110001"}},
		{name: "empty value clears", args: []string{"email="}, want: map[string]string{"email": ""}},
		{name: "value with equals", args: []string{"address=a=b"}, want: map[string]string{"address": "a=b"}},
		{name: "no equals", args: []string{"name"}, wantErr: `expected key=value, got "name"`},
		{name: "unknown key", args: []string{"phone=1"}, wantErr: `unknown field "phone"`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := parseProfileArgs(tc.args)
			if tc.wantErr != "" {
				require.EqualError(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestPatchFrom(t *testing.T) {
	p := patchFrom(map[string]string{"name": "Asha", "email": ""})
	require.NotNil(t, p.Name)
	require.NotNil(t, p.Email)
	assert.Equal(t, "Asha", *p.Name)
	assert.Empty(t, *p.Email)
	assert.Nil(t, p.Address)
	assert.True(t, patchFrom(nil).IsEmpty())
}
