package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cybergodev/jwtcodec"
)

const (
	jwtioToken = "eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9." +
		"eyJzdWIiOiIxMjM0NTY3ODkwIiwibmFtZSI6IkpvaG4gRG9lIiwiaWF0IjoxNTE2MjM5MDIyfQ." +
		"SflKxwRJSMeKKF2QT4fwpMeJf36POk6yJV_adQssw5c"
	johnDoeToken = "eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9." +
		"eyJzdWIiOiIxMjM0NTY3ODkwIiwibmFtZSI6IkpvaG4gRG9lIn0." +
		"Qfi-QMeGHIw0iMBkiHSIbFtmfCoWMVbT9BbhHFxr0KY"
)

// run executes the command tree in an empty directory with stdin.
func run(t *testing.T, stdin string, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	t.Chdir(t.TempDir())
	t.Setenv("NO_COLOR", "1")

	var out, errOut bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetArgs(args)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)

	err = cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestEncode(t *testing.T) {
	out, _, err := run(t, "", "encode", "--payload", "{sub: '1234567890', name: 'John Doe'}")
	require.NoError(t, err)
	assert.Equal(t, johnDoeToken+"\n", out)
}

func TestEncodeInputs(t *testing.T) {
	dir := t.TempDir()
	payloadFile := filepath.Join(dir, "claims.json5")
	require.NoError(t, os.WriteFile(payloadFile, []byte("// claims\n{sub: '1234567890', name: 'John Doe',}\n"), 0o600))

	out, _, err := run(t, "", "encode", "--payload", "@"+payloadFile)
	require.NoError(t, err)
	assert.Equal(t, johnDoeToken+"\n", out)

	out, _, err = run(t, `{"sub":"1234567890","name":"John Doe"}`, "encode", "--payload", "-")
	require.NoError(t, err)
	assert.Equal(t, johnDoeToken+"\n", out)

	_, _, err = run(t, "{}", "encode", "--header", "-", "--payload", "-")
	assert.ErrorIs(t, err, errStdinTwice)

	_, _, err = run(t, "", "encode", "--payload", "@"+filepath.Join(dir, "missing"))
	assert.ErrorContains(t, err, "failed to read input file")
}

func TestEncodeWithKey(t *testing.T) {
	out, stderr, err := run(t, "",
		"encode",
		"--key", "your-256-bit-secret",
		"--payload", `{"sub":"1234567890","name":"John Doe","iat":1516239022}`,
	)
	require.NoError(t, err)
	assert.Equal(t, jwtioToken+"\n", out)
	assert.Contains(t, stderr, "WARN  [CLI] signing key is weak")
}

func TestEncodeNone(t *testing.T) {
	out, _, err := run(t, "", "--algorithm", "none", "encode", "--header", `{alg: 'none'}`, "--payload", "{a: 1}")
	require.NoError(t, err)
	assert.Equal(t, "eyJhbGciOiJub25lIn0.eyJhIjoxfQ.\n", out)
}

func TestEncodeInvalidText(t *testing.T) {
	_, _, err := run(t, "", "encode", "--payload", "{a: }")
	require.ErrorIs(t, err, jwtcodec.ErrInvalidJSON)

	var segErr *jwtcodec.SegmentError
	require.ErrorAs(t, err, &segErr)
	assert.Equal(t, jwtcodec.SegmentPayload, segErr.Segment)
}

func TestDecode(t *testing.T) {
	want := "{\n  \"alg\": \"HS256\",\n  \"typ\": \"JWT\"\n}\n{\n  \"sub\": \"1234567890\",\n  \"name\": \"John Doe\"\n}\n"

	out, _, err := run(t, "", "decode", johnDoeToken)
	require.NoError(t, err)
	assert.Equal(t, want, out)

	out, _, err = run(t, johnDoeToken+"\n", "decode")
	require.NoError(t, err)
	assert.Equal(t, want, out)

	out, _, err = run(t, "", "--indent", "4", "decode", "bnVsbA.eyJhIjoxfQ")
	require.NoError(t, err)
	assert.Equal(t, "null\n{\n    \"a\": 1\n}\n", out)
}

func TestDecodeJSON(t *testing.T) {
	out, _, err := run(t, "", "decode", "--json", "bnVsbA."+"eyJhIjoxfQ.")
	require.NoError(t, err)
	assert.Equal(t, `{"header":null,"payload":{"a":1}}`+"\n", out)
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name  string
		token string
		want  error
	}{
		{"no dot", "abc", jwtcodec.ErrMalformedToken},
		{"bad base64", "!!.e30", jwtcodec.ErrInvalidBase64},
		{"not json", "bm90IGpzb24.e30", jwtcodec.ErrInvalidJSON},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := run(t, "", "decode", tt.token)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestVerify(t *testing.T) {
	out, _, err := run(t, "", "--key", "your-256-bit-secret", "verify", jwtioToken)
	require.NoError(t, err)
	assert.Equal(t, "signature valid\n", out)

	_, _, err = run(t, "", "--key", "wrong", "verify", jwtioToken)
	assert.ErrorIs(t, err, jwtcodec.ErrSignatureInvalid)

	t.Setenv("JWTCODEC_CODEC_KEY", "your-256-bit-secret")
	_, _, err = run(t, "", "verify", jwtioToken)
	assert.NoError(t, err)
}

func TestInspect(t *testing.T) {
	out, _, err := run(t, "", "inspect", jwtioToken)
	require.NoError(t, err)
	assert.Contains(t, out, `"alg": "HS256"`)
	assert.Contains(t, out, `"sub": "1234567890"`)
	assert.Contains(t, out, `"utc": "2018-01-18 01:30:22 (UTC)"`)

	_, _, err = run(t, "", "inspect", "e30.e30")
	assert.ErrorIs(t, err, jwtcodec.ErrNotInspectable)
}

func TestTimestamp(t *testing.T) {
	tests := []struct {
		arg     string
		want    string
		wantErr bool
	}{
		{"1700000000", "2023-11-14 22:13:20 (UTC)\n", false},
		{"0", "1970-01-01 00:00:00 (UTC)\n", false},
		{"1,700,000,000", "2023-11-14 22:13:20 (UTC)\n", false},
		{"-1", "1969-12-31 23:59:59 (UTC)\n", false},
		{"99999999999999999999", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.arg, func(t *testing.T) {
			out, _, err := run(t, "", "timestamp", "--", tt.arg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestInvalidConfig(t *testing.T) {
	_, _, err := run(t, "", "--indent", "20", "decode", johnDoeToken)
	assert.Error(t, err)

	_, _, err = run(t, "", "--algorithm", "RS256", "decode", johnDoeToken)
	assert.Error(t, err)

	_, _, err = run(t, "", "--log-level", "chatty", "decode", johnDoeToken)
	assert.Error(t, err)
}

func TestConfigFileFlag(t *testing.T) {
	path := filepath.Join(t.TempDir(), "codec.yaml")
	require.NoError(t, os.WriteFile(path, []byte("codec:\n  algorithm: none\n"), 0o600))

	out, _, err := run(t, "", "--config", path, "encode", "--header", "", "--payload", "")
	require.NoError(t, err)
	assert.Equal(t, "bnVsbA.bnVsbA.\n", out)
}
