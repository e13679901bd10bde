package envfile_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/airlift-sh/airlift/internal/envfile"
)

func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		key  string
		want envfile.Kind
	}{
		{
			name: "inline secret",
			key:  "SECRET_DB_PASSWORD",
			want: envfile.KindInlineSecret,
		},
		{
			name: "file secret",
			key:  "SECRET_TLS_CERT_FILEPATH",
			want: envfile.KindFileSecret,
		},
		{
			name: "variable",
			key:  "VAR_REGION",
			want: envfile.KindVariable,
		},
		{
			name: "plain key ignored",
			key:  "DATABASE_URL",
			want: envfile.KindIgnored,
		},
		{
			name: "filepath suffix wins over inline prefix",
			key:  "SECRET_API_KEY_FILEPATH",
			want: envfile.KindFileSecret,
		},
		{
			name: "bare secret prefix ignored",
			key:  "SECRET_",
			want: envfile.KindIgnored,
		},
		{
			name: "bare variable prefix ignored",
			key:  "VAR_",
			want: envfile.KindIgnored,
		},
		{
			name: "filepath with empty name treated as inline",
			key:  "SECRET__FILEPATH",
			want: envfile.KindInlineSecret,
		},
		{
			name: "lowercase prefix ignored",
			key:  "secret_db_password",
			want: envfile.KindIgnored,
		},
		{
			name: "filepath in the middle is inline",
			key:  "SECRET_FILEPATH_TOKEN",
			want: envfile.KindInlineSecret,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, envfile.Classify(tt.key))
		})
	}
}

func TestEntryTargetName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		entry envfile.Entry
		want  string
	}{
		{
			name:  "inline secret strips prefix",
			entry: envfile.Entry{Key: "SECRET_DB_PASSWORD"},
			want:  "DB_PASSWORD",
		},
		{
			name:  "file secret strips prefix and suffix",
			entry: envfile.Entry{Key: "SECRET_TLS_CERT_FILEPATH"},
			want:  "TLS_CERT",
		},
		{
			name:  "variable strips prefix",
			entry: envfile.Entry{Key: "VAR_REGION"},
			want:  "REGION",
		},
		{
			name:  "ignored key has no target",
			entry: envfile.Entry{Key: "PATH"},
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.entry.TargetName())
		})
	}
}

func TestParse(t *testing.T) {
	t.Parallel()

	t.Run("skips comments and blank lines", func(t *testing.T) {
		t.Parallel()

		input := "# header comment\n\nSECRET_A=1\n   \nVAR_B=2\n# trailing\n"
		entries, err := envfile.Parse(strings.NewReader(input))
		require.NoError(t, err)

		// The whitespace-only line is not blank, has no '=', and is dropped.
		require.Len(t, entries, 2)
		assert.Equal(t, envfile.Entry{Key: "SECRET_A", Value: "1"}, entries[0])
		assert.Equal(t, envfile.Entry{Key: "VAR_B", Value: "2"}, entries[1])
	})

	t.Run("splits on first equals only", func(t *testing.T) {
		t.Parallel()

		entries, err := envfile.Parse(strings.NewReader("VAR_URL=https://x.com/a=b\n"))
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "VAR_URL", entries[0].Key)
		assert.Equal(t, "https://x.com/a=b", entries[0].Value)
	})

	t.Run("keeps empty values", func(t *testing.T) {
		t.Parallel()

		entries, err := envfile.Parse(strings.NewReader("SECRET_EMPTY=\n"))
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "", entries[0].Value)
	})

	t.Run("drops lines without equals or key", func(t *testing.T) {
		t.Parallel()

		entries, err := envfile.Parse(strings.NewReader("JUSTAWORD\n=value\n"))
		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("tolerates CRLF endings", func(t *testing.T) {
		t.Parallel()

		entries, err := envfile.Parse(strings.NewReader("VAR_REGION=us-east-1\r\nSECRET_K=v\r\n"))
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, "us-east-1", entries[0].Value)
		assert.Equal(t, "v", entries[1].Value)
	})

	t.Run("preserves file order", func(t *testing.T) {
		t.Parallel()

		entries, err := envfile.Parse(strings.NewReader("VAR_Z=1\nVAR_A=2\nVAR_M=3\n"))
		require.NoError(t, err)
		require.Len(t, entries, 3)
		assert.Equal(t, "VAR_Z", entries[0].Key)
		assert.Equal(t, "VAR_A", entries[1].Key)
		assert.Equal(t, "VAR_M", entries[2].Key)
	})
}

func TestParseFile(t *testing.T) {
	t.Parallel()

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()

		_, err := envfile.ParseFile("/nonexistent/.env")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "/nonexistent/.env")
	})

	t.Run("reads from disk", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), ".env")
		require.NoError(t, os.WriteFile(path, []byte("SECRET_DB_PASSWORD=hunter2\n"), 0o600))

		entries, err := envfile.ParseFile(path)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, envfile.KindInlineSecret, entries[0].Kind())
		assert.Equal(t, "DB_PASSWORD", entries[0].TargetName())
		assert.Equal(t, "hunter2", entries[0].Value)
	})
}

func TestKindString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "inline-secret", envfile.KindInlineSecret.String())
	assert.Equal(t, "file-secret", envfile.KindFileSecret.String())
	assert.Equal(t, "variable", envfile.KindVariable.String())
	assert.Equal(t, "ignored", envfile.KindIgnored.String())
}
