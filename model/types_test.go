package model

import (
	"testing"

	"github.com/hupe1980/regindex/metadata"
	"github.com/stretchr/testify/assert"
)

func TestService_PropertiesAndID(t *testing.T) {
	s := NewService(7, metadata.NewProperties(map[string]metadata.Value{
		PropertyObjectClass: metadata.Strings("a.B", "c.D"),
		PropertyRanking:     metadata.Int(3),
	}))

	assert.Equal(t, ServiceID(7), s.ID())
	v, ok := s.Properties().Get("SERVICE.ID")
	assert.True(t, ok)
	assert.Equal(t, "7", v.String())

	assert.Equal(t, []string{"a.B", "c.D"}, ObjectClasses(s))
	assert.True(t, HasObjectClass(s, "c.D"))
	assert.False(t, HasObjectClass(s, "x.Y"))
	assert.Equal(t, int64(3), Ranking(s))
	assert.Equal(t, ServiceID(7), OriginalID(s))
}

func TestService_SetPropertiesKeepsID(t *testing.T) {
	s := NewService(9, metadata.Properties{})
	s.SetProperties(metadata.NewProperties(map[string]metadata.Value{
		PropertyServiceID: metadata.Int(100),
		PropertyAspect:    metadata.String("4"),
	}))

	v, _ := s.Properties().Get(PropertyServiceID)
	assert.Equal(t, "9", v.String())
	assert.Equal(t, ServiceID(4), OriginalID(s))
	assert.Equal(t, int64(0), Ranking(s))
}

func TestListenerFunc_DistinctIdentity(t *testing.T) {
	var got []EventKind
	fn := func(ev Event) { got = append(got, ev.Kind) }

	a := ListenerFunc(fn)
	b := ListenerFunc(fn)
	assert.True(t, a != b)

	a.ServiceChanged(Event{Kind: Registered})
	b.ServiceChanged(Event{Kind: Unregistering})
	assert.Equal(t, []EventKind{Registered, Unregistering}, got)
	assert.Equal(t, "MODIFIED_ENDMATCH", ModifiedEndMatch.String())
}

func TestLookupRankingAndMatchIDs(t *testing.T) {
	plain := NewService(5, metadata.Properties{})
	_, ok := LookupRanking(plain)
	assert.False(t, ok)
	assert.Equal(t, []ServiceID{5}, MatchIDs(plain))

	aspect := NewService(8, metadata.NewProperties(map[string]metadata.Value{
		PropertyAspect:  metadata.Int(5),
		PropertyRanking: metadata.String("-2"),
	}))
	r, ok := LookupRanking(aspect)
	assert.True(t, ok)
	assert.Equal(t, int64(-2), r)
	assert.Equal(t, []ServiceID{8, 5}, MatchIDs(aspect))
}
