package aspect

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
		{"shape", "", "(&(objectClass=foo.Bar)(&(|(!(ranking=*))(ranking<=9))(|(service.id=5)(aspect=5))))", true},
		{"negative ceiling", "foo.Bar", "(&(objectClass=foo.Bar)(&(|(!(ranking=*))(ranking<=-3))(|(service.id=5)(aspect=5))))", true},
		{"class mismatch", "foo.Baz", "(&(objectClass=foo.Bar)(&(|(!(ranking=*))(ranking<=9))(|(service.id=5)(aspect=5))))", false},
		{"ids differ", "", "(&(objectClass=foo.Bar)(&(|(!(ranking=*))(ranking<=9))(|(service.id=5)(aspect=6))))", false},
		{"bad ceiling", "", "(&(objectClass=foo.Bar)(&(|(!(ranking=*))(ranking<=x))(|(service.id=5)(aspect=5))))", false},
		{"adapter shape", "", "(&(objectClass=foo.Bar)(|(service.id=5)(aspect=5)))", false},
		{"truncated", "", "(&(objectClass=foo.Bar)(&(|(!(ranking=*))(ranking<=9))(|(service.id=5)(aspect=5)))", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, x.IsApplicable(tt.class, tt.filter))
		})
	}
}

func register(reg *testutil.Registry, class string, extra map[string]metadata.Value) *model.Service {
	m := map[string]metadata.Value{model.PropertyObjectClass: metadata.Strings(class)}
	for k, v := range extra {
		m[k] = v
	}
	return reg.Register(m)
}

func aspectOf(id model.ServiceID, ranking int64) map[string]metadata.Value {
	return map[string]metadata.Value{
		model.PropertyAspect:  metadata.Int(int64(id)),
		model.PropertyRanking: metadata.Int(ranking),
	}
}

func TestRankingCeiling(t *testing.T) {
	reg := testutil.NewRegistry()
	x := New()
	require.NoError(t, x.Open(reg))
	defer func() { _ = x.Close() }()

	const sid = model.ServiceID(1000)
	r10 := register(reg, "foo.Bar", aspectOf(sid, 10))
	r5 := register(reg, "foo.Bar", aspectOf(sid, 5))

	refs, err := x.GetAllServiceReferences("foo.Bar", Filter("foo.Bar", sid, 9))
	require.NoError(t, err)
	assert.Equal(t, []model.ServiceID{r5.ID()}, testutil.IDs(refs))

	refs, err = x.GetAllServiceReferences("foo.Bar", Filter("foo.Bar", sid, 10))
	require.NoError(t, err)
	assert.Equal(t, []model.ServiceID{r5.ID(), r10.ID()}, testutil.IDs(refs), "ordered by ranking")

	reg.Modify(r10, map[string]metadata.Value{
		model.PropertyObjectClass: metadata.Strings("foo.Bar"),
		model.PropertyAspect:      metadata.Int(int64(sid)),
		model.PropertyRanking:     metadata.Int(1),
	})
	refs, err = x.GetAllServiceReferences("foo.Bar", Filter("foo.Bar", sid, 9))
	require.NoError(t, err)
	assert.Equal(t, []model.ServiceID{r10.ID(), r5.ID()}, testutil.IDs(refs))
}

func TestUnrankedServiceSatisfiesAnyCeiling(t *testing.T) {
	reg := testutil.NewRegistry()
	x := New()
	require.NoError(t, x.Open(reg))
	defer func() { _ = x.Close() }()

	orig := register(reg, "foo.Bar", nil)
	refs, err := x.GetAllServiceReferences("", Filter("foo.Bar", orig.ID(), -100))
	require.NoError(t, err)
	assert.Equal(t, []model.ServiceID{orig.ID()}, testutil.IDs(refs))
}

func TestListenersByCeiling(t *testing.T) {
	x := New()
	const sid = model.ServiceID(7)

	low := &testutil.Recorder{}
	mid := &testutil.Recorder{}
	midToo := &testutil.Recorder{}
	high := &testutil.Recorder{}
	require.NoError(t, x.AddServiceListener(high, Filter("foo.Bar", sid, 100)))
	require.NoError(t, x.AddServiceListener(low, Filter("foo.Bar", sid, 1)))
	require.NoError(t, x.AddServiceListener(mid, Filter("foo.Bar", sid, 5)))
	require.NoError(t, x.AddServiceListener(midToo, Filter("foo.Bar", sid, 5)))

	svc := model.NewService(20, metadata.NewProperties(map[string]metadata.Value{
		model.PropertyObjectClass: metadata.Strings("foo.Bar"),
		model.PropertyAspect:      metadata.Int(int64(sid)),
		model.PropertyRanking:     metadata.Int(5),
	}))
	x.ServiceChanged(model.Event{Kind: model.Registered, Reference: svc})

	assert.Equal(t, 0, low.Count())
	assert.Equal(t, 1, mid.Count(), "ceiling equal to ranking is inclusive")
	assert.Equal(t, 1, midToo.Count())
	assert.Equal(t, 1, high.Count())

	unranked := model.NewService(21, metadata.NewProperties(map[string]metadata.Value{
		model.PropertyObjectClass: metadata.Strings("foo.Bar"),
		model.PropertyAspect:      metadata.Int(int64(sid)),
	}))
	x.ServiceChanged(model.Event{Kind: model.Registered, Reference: unranked})
	assert.Equal(t, 1, low.Count())
	assert.Equal(t, 2, high.Count())

	require.NoError(t, x.RemoveServiceListener(mid))
	x.ServiceChanged(model.Event{Kind: model.Modified, Reference: svc})
	assert.Equal(t, 2, mid.Count())
	assert.Equal(t, 3, midToo.Count())

	st := x.Stats()
	assert.Equal(t, 3, st.Listeners)
	assert.Equal(t, 1, st.ListenerKeys)

	for _, l := range []model.Listener{low, midToo, high} {
		require.NoError(t, x.RemoveServiceListener(l))
	}
	assert.Equal(t, 0, x.Stats().ListenerKeys, "empty key pruned")
}

func TestErrors(t *testing.T) {
	x := New()

	_, err := x.GetAllServiceReferences("", Filter("foo.Bar", 1, 0))
	assert.ErrorIs(t, err, index.ErrNotOpen)
	assert.ErrorIs(t, x.AddServiceListener(nil, Filter("foo.Bar", 1, 0)), index.ErrNilListener)
	assert.ErrorIs(t, x.AddServiceListener(&testutil.Recorder{}, "(objectClass=foo.Bar)"), index.ErrNotApplicable)
	assert.Contains(t, x.String(), "AspectFilterIndex[")
}
