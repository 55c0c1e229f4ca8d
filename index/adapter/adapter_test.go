package adapter

import (
	"testing"

	"github.com/hupe1980/regindex/index"
	"github.com/hupe1980/regindex/metadata"
	"github.com/hupe1980/regindex/model"
	"github.com/hupe1980/regindex/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsApplicable(t *testing.T) {
	x := New()

	tests := []struct {
		name   string
		class  string
		filter string
		want   bool
	}{
		{"shape", "", "(&(objectClass=foo.Bar)(|(service.id=18233)(aspect=18233)))", true},
		{"shape with class", "foo.Bar", "(&(objectClass=foo.Bar)(|(service.id=18233)(aspect=18233)))", true},
		{"class mismatch", "foo.Baz", "(&(objectClass=foo.Bar)(|(service.id=18233)(aspect=18233)))", false},
		{"ids differ", "", "(&(objectClass=foo.Bar)(|(service.id=18233)(aspect=18234)))", false},
		{"surplus paren", "", "(&(objectClass=foo.Bar)(|(service.id=18233)(aspect=18233))))", true},
		{"missing paren", "", "(&(objectClass=foo.Bar)(|(service.id=18233)(aspect=18233))", false},
		{"non-numeric id", "", "(&(objectClass=foo.Bar)(|(service.id=abc)(aspect=abc)))", false},
		{"signed id", "", "(&(objectClass=foo.Bar)(|(service.id=+1)(aspect=+1)))", false},
		{"aspect shape", "", "(&(objectClass=foo.Bar)(&(|(!(ranking=*))(ranking<=3))(|(service.id=1)(aspect=1))))", false},
		{"plain", "", "(objectClass=foo.Bar)", false},
		{"empty", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, x.IsApplicable(tt.class, tt.filter))
		})
	}
}

func TestFilterRoundTrip(t *testing.T) {
	x := New()
	assert.True(t, x.IsApplicable("foo.Bar", Filter("foo.Bar", 42)))
}

func register(reg *testutil.Registry, class string, extra map[string]metadata.Value) *model.Service {
	m := map[string]metadata.Value{model.PropertyObjectClass: metadata.Strings(class)}
	for k, v := range extra {
		m[k] = v
	}
	return reg.Register(m)
}

func TestGetAllServiceReferences(t *testing.T) {
	reg := testutil.NewRegistry()
	x := New()
	require.NoError(t, x.Open(reg))
	defer func() { _ = x.Close() }()

	orig := register(reg, "foo.Bar", nil)
	aspect := register(reg, "foo.Bar", map[string]metadata.Value{
		model.PropertyAspect:  metadata.Int(int64(orig.ID())),
		model.PropertyRanking: metadata.Int(10),
	})
	register(reg, "foo.Other", map[string]metadata.Value{
		model.PropertyAspect: metadata.Int(int64(orig.ID())),
	})
	register(reg, "foo.Bar", nil)

	refs, err := x.GetAllServiceReferences("foo.Bar", Filter("foo.Bar", orig.ID()))
	require.NoError(t, err)
	assert.Equal(t, []model.ServiceID{orig.ID(), aspect.ID()}, testutil.IDs(refs))

	refs, err = x.GetAllServiceReferences("", Filter("foo.Bar", aspect.ID()))
	require.NoError(t, err)
	assert.Equal(t, []model.ServiceID{aspect.ID()}, testutil.IDs(refs), "own service.id also matches")

	refs, err = x.GetAllServiceReferences("", Filter("foo.Bar", 999))
	require.NoError(t, err)
	assert.Empty(t, refs)

	reg.Unregister(aspect)
	refs, err = x.GetAllServiceReferences("", Filter("foo.Bar", orig.ID()))
	require.NoError(t, err)
	assert.Equal(t, []model.ServiceID{orig.ID()}, testutil.IDs(refs))
}

func TestModifyMovesBetweenIDs(t *testing.T) {
	reg := testutil.NewRegistry()
	x := New()
	require.NoError(t, x.Open(reg))
	defer func() { _ = x.Close() }()

	a := register(reg, "foo.Bar", nil)
	b := register(reg, "foo.Bar", nil)
	s := register(reg, "foo.Bar", map[string]metadata.Value{model.PropertyAspect: metadata.Int(int64(a.ID()))})

	reg.Modify(s, map[string]metadata.Value{
		model.PropertyObjectClass: metadata.Strings("foo.Bar"),
		model.PropertyAspect:      metadata.Int(int64(b.ID())),
	})

	refs, err := x.GetAllServiceReferences("", Filter("foo.Bar", a.ID()))
	require.NoError(t, err)
	assert.Equal(t, []model.ServiceID{a.ID()}, testutil.IDs(refs))

	refs, err = x.GetAllServiceReferences("", Filter("foo.Bar", b.ID()))
	require.NoError(t, err)
	assert.Equal(t, []model.ServiceID{b.ID(), s.ID()}, testutil.IDs(refs))
}

func TestListeners(t *testing.T) {
	reg := testutil.NewRegistry()
	x := New()
	require.NoError(t, x.Open(reg))
	defer func() { _ = x.Close() }()
	reg.AddEventListener(model.ListenerFunc(x.ServiceChanged))

	orig := register(reg, "foo.Bar", nil)

	rec := &testutil.Recorder{}
	other := &testutil.Recorder{}
	require.NoError(t, x.AddServiceListener(rec, Filter("foo.Bar", orig.ID())))
	require.NoError(t, x.AddServiceListener(other, Filter("foo.Other", orig.ID())))

	aspect := register(reg, "foo.Bar", map[string]metadata.Value{model.PropertyAspect: metadata.Int(int64(orig.ID()))})
	register(reg, "foo.Bar", nil)
	assert.Equal(t, 1, rec.Count())
	assert.Equal(t, 0, other.Count())

	require.NoError(t, x.RemoveServiceListener(rec))
	reg.Unregister(aspect)
	assert.Equal(t, 1, rec.Count())

	st := x.Stats()
	assert.Equal(t, 1, st.Listeners)
	assert.Equal(t, 1, st.ListenerKeys)
	assert.Contains(t, x.String(), "AdapterFilterIndex[")
}

func TestErrors(t *testing.T) {
	x := New()

	_, err := x.GetAllServiceReferences("", Filter("foo.Bar", 1))
	assert.ErrorIs(t, err, index.ErrNotOpen)
	assert.ErrorIs(t, x.AddServiceListener(nil, Filter("foo.Bar", 1)), index.ErrNilListener)
	assert.ErrorIs(t, x.RemoveServiceListener(nil), index.ErrNilListener)
	assert.ErrorIs(t, x.AddServiceListener(&testutil.Recorder{}, "(objectClass=foo.Bar)"), index.ErrNotApplicable)
	assert.Equal(t, Name, x.Name())
}
