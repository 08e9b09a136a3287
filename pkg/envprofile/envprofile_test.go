package envprofile

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/wafconan/pkg/errors"
)

const sep = string(os.PathListSeparator)

func TestParseKind(t *testing.T) {
	tests := []struct {
		in      string
		want    Kind
		wantErr bool
	}{
		{"define", Define, false},
		{"set", Define, false},
		{"define_path", Define, false},
		{"unset", Unset, false},
		{"prepend_path", Prepend, false},
		{" APPEND ", Append, false},
		{"rotate", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseKind(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, errors.ErrCodeInvalidOperation))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestApply(t *testing.T) {
	tests := []struct {
		name        string
		op          Op
		cur         string
		present     bool
		want        string
		wantPresent bool
	}{
		{"define over absent", Op{Name: "FOO", Kind: Define, Value: "bar"}, "", false, "bar", true},
		{"define over present", Op{Name: "FOO", Kind: Define, Value: "bar"}, "old", true, "bar", true},
		{"unset", Op{Name: "FOO", Kind: Unset}, "old", true, "", false},
		{"prepend to absent", Op{Name: "PATH", Kind: Prepend, Value: "/a"}, "", false, "/a", true},
		{"prepend to empty", Op{Name: "PATH", Kind: Prepend, Value: "/a"}, "", true, "/a", true},
		{"prepend", Op{Name: "PATH", Kind: Prepend, Value: "/a"}, "/usr/bin", true, "/a" + sep + "/usr/bin", true},
		{"append", Op{Name: "PATH", Kind: Append, Value: "/a"}, "/usr/bin", true, "/usr/bin" + sep + "/a", true},
		{"custom separator", Op{Name: "CFLAGS", Kind: Append, Value: "-O2", Separator: " "}, "-g", true, "-g -O2", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, present, err := Apply(tt.op, tt.cur, tt.present)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantPresent, present)
		})
	}
}

func TestApplyUnknownKind(t *testing.T) {
	_, _, err := Apply(Op{Name: "FOO", Kind: "rotate"}, "x", true)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidOperation))
}

func TestCompose(t *testing.T) {
	p := New(Build,
		Op{Name: "PATH", Kind: Prepend, Value: "/opt/tool/bin"},
		Op{Name: "FOO", Kind: Define, Value: "bar"},
		Op{Name: "PATH", Kind: Append, Value: "/opt/late/bin"},
		Op{Name: "GONE", Kind: Unset},
	)
	base := map[string]string{"PATH": "/usr/bin", "GONE": "x"}
	lookup := func(k string) (string, bool) { v, ok := base[k]; return v, ok }

	got, err := p.Compose(lookup)
	require.NoError(t, err)

	assert.Equal(t, Value{Value: "/opt/tool/bin" + sep + "/usr/bin" + sep + "/opt/late/bin", Set: true}, got["PATH"])
	assert.Equal(t, Value{Value: "bar", Set: true}, got["FOO"])
	assert.Equal(t, Value{Set: false}, got["GONE"])
	assert.Equal(t, "/usr/bin", base["PATH"], "Compose must not mutate its input")
}

func TestProfileValidate(t *testing.T) {
	ok := New(Run, Op{Name: "PATH", Kind: Prepend, Value: "/x"})
	assert.NoError(t, ok.Validate())

	bad := New(Run, Op{Name: "PATH", Kind: Prepend, Value: "/x"}, Op{Name: "FOO", Kind: "rotate"})
	err := bad.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidOperation))

	badName := New(Run, Op{Name: "A=B", Kind: Define})
	assert.Error(t, badName.Validate())
}

func TestVariablesFirstTouchOrder(t *testing.T) {
	p := New(Build,
		Op{Name: "PATH", Kind: Prepend, Value: "/a"},
		Op{Name: "CC", Kind: Define, Value: "gcc"},
		Op{Name: "PATH", Kind: Prepend, Value: "/b"},
	)
	assert.Equal(t, []string{"PATH", "CC"}, p.Variables())
}

func TestPrependPaths(t *testing.T) {
	p := New(Build, PrependPaths("PATH", []string{"/first", "/second"})...)
	got, err := p.Compose(func(string) (string, bool) { return "/usr/bin", true })
	require.NoError(t, err)
	assert.Equal(t, "/first"+sep+"/second"+sep+"/usr/bin", got["PATH"].Value)
}

func TestRowsRoundTrip(t *testing.T) {
	p := New(Build,
		Op{Name: "PATH", Kind: Prepend, Value: "/opt/flatc/bin"},
		Op{Name: "CC", Kind: Define, Value: "clang"},
		Op{Name: "FLAGS", Kind: Append, Value: "-g", Separator: " "},
		Op{Name: "OLD", Kind: Unset},
	)
	rows := p.Rows()
	assert.Equal(t, []string{"FLAGS", "append", "-g", " "}, rows[2])

	got, err := FromRows(Build, rows)
	require.NoError(t, err)
	assert.Equal(t, p, got)
}

func TestFromRowsErrors(t *testing.T) {
	_, err := FromRows(Run, [][]string{{"PATH"}})
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidOperation))

	_, err = FromRows(Run, [][]string{{"PATH", "bogus", "/x"}})
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidOperation))

	p, err := FromRows(Run, [][]string{{"PATH", "prepend_path", "/x"}})
	require.NoError(t, err)
	assert.Equal(t, Prepend, p.Ops[0].Kind)
}
