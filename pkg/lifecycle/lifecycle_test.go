package lifecycle

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/wafconan/pkg/activate"
	"github.com/matzehuels/wafconan/pkg/envprofile"
)

func TestRunOrder(t *testing.T) {
	l := New()
	var calls []string
	rec := func(name string) Hook {
		return func(context.Context, Phase) error {
			calls = append(calls, name)
			return nil
		}
	}
	l.Pre(Build, rec("pre1"))
	l.Pre(Build, rec("pre2"))
	l.Post(Build, rec("post1"))
	l.Post(Build, rec("post2"))

	err := l.Run(context.Background(), Build, func(context.Context) error {
		calls = append(calls, "build")
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"pre1", "pre2", "build", "post2", "post1"}, calls)

	calls = nil
	require.NoError(t, l.Run(context.Background(), Install, func(context.Context) error {
		calls = append(calls, "install")
		return nil
	}))
	assert.Equal(t, []string{"install"}, calls)
}

func TestRunPostHooksAfterFailure(t *testing.T) {
	l := New()
	boom := stderrors.New("boom")
	posted := 0
	l.Post(Configure, func(context.Context, Phase) error { posted++; return nil })

	err := l.Run(context.Background(), Configure, func(context.Context) error { return boom })
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, posted)

	ran := false
	l.Pre(Configure, func(context.Context, Phase) error { return boom })
	err = l.Run(context.Background(), Configure, func(context.Context) error { ran = true; return nil })
	assert.ErrorIs(t, err, boom)
	assert.False(t, ran, "phase must not run after a failed pre hook")
	assert.Equal(t, 2, posted)
}

func TestWrap(t *testing.T) {
	l := New()
	n := 0
	l.Pre(Build, func(context.Context, Phase) error { n++; return nil })
	wrapped := l.Wrap(Build, func(context.Context) error { return nil })
	require.NoError(t, wrapped(context.Background()))
	require.NoError(t, wrapped(context.Background()))
	assert.Equal(t, 2, n)
}

func TestParsePhase(t *testing.T) {
	assert.Equal(t, Build, ParsePhase("build"))
	assert.Equal(t, Build, ParsePhase("build_debug"))
	assert.Equal(t, Configure, ParsePhase("configure"))
}

func TestAutoActivate(t *testing.T) {
	env := activate.NewMapEnviron(map[string]string{"PATH": "/usr/bin"})
	a := activate.New(env)
	profile := envprofile.New(envprofile.Build,
		envprofile.Op{Name: "PATH", Kind: envprofile.Prepend, Value: "/opt/tool/bin"},
		envprofile.Op{Name: "FOO", Kind: envprofile.Define, Value: "bar"},
	)

	l := New()
	require.True(t, AutoActivate(l, a, profile, AutoOptions{}))

	for _, ph := range []Phase{Configure, Build} {
		err := l.Run(context.Background(), ph, func(context.Context) error {
			assert.True(t, a.Active(activate.SlotBuild))
			v, _ := env.LookupEnv("FOO")
			assert.Equal(t, "bar", v)
			return nil
		})
		require.NoError(t, err)
		assert.False(t, a.Active(activate.SlotBuild), "phase %s left slot active", ph)
		assert.Equal(t, map[string]string{"PATH": "/usr/bin"}, map[string]string(env))
	}

	require.NoError(t, l.Run(context.Background(), Install, func(context.Context) error {
		assert.False(t, a.Active(activate.SlotBuild))
		return nil
	}))
}

func TestAutoActivateDisabled(t *testing.T) {
	l := New()
	a := activate.New(activate.NewMapEnviron(nil))
	assert.False(t, AutoActivate(l, a, envprofile.New(envprofile.Build), AutoOptions{Disabled: true}))
	pre, post := l.Hooks(Configure)
	assert.Zero(t, pre)
	assert.Zero(t, post)
}

func TestAutoActivateRestoresAfterPartialFailure(t *testing.T) {
	env := activate.NewMapEnviron(map[string]string{"A": "1"})
	a := activate.New(env)
	profile := envprofile.New(envprofile.Build,
		envprofile.Op{Name: "A", Kind: envprofile.Define, Value: "2"},
		envprofile.Op{Name: "B", Kind: "bogus"},
	)
	l := New()
	AutoActivate(l, a, profile, AutoOptions{Phases: []Phase{Build}})

	err := l.Run(context.Background(), Build, nil)
	require.Error(t, err)
	assert.False(t, a.Active(activate.SlotBuild))
	assert.Equal(t, map[string]string{"A": "1"}, map[string]string(env))
}

func TestAutoActivateKeepsForeignActivation(t *testing.T) {
	env := activate.NewMapEnviron(map[string]string{"PATH": "/usr/bin"})
	a := activate.New(env)
	manual := envprofile.New(envprofile.Build, envprofile.Op{Name: "MANUAL", Kind: envprofile.Define, Value: "1"})
	_, err := a.Activate(activate.SlotBuild, manual)
	require.NoError(t, err)

	l := New()
	l.Pre(Build, func(context.Context, Phase) error { return stderrors.New("pre failed") })
	AutoActivate(l, a, envprofile.New(envprofile.Build,
		envprofile.Op{Name: "FOO", Kind: envprofile.Define, Value: "bar"},
	), AutoOptions{Phases: []Phase{Build}})

	called := false
	err = l.Run(context.Background(), Build, func(context.Context) error {
		called = true
		return nil
	})
	require.Error(t, err)
	assert.False(t, called)
	assert.True(t, a.Active(activate.SlotBuild))
	assert.Equal(t, "1", env["MANUAL"])
	_, ok := env.LookupEnv("FOO")
	assert.False(t, ok)
}
