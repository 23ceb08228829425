package swanjson

import (
	"errors"
	"reflect"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type Base struct {
	ID      int    `json:"id"`
	Created string `json:"created,omitempty"`
}

type item struct {
	Base
	Name   string   `json:"name"`
	Note   string   `json:"note,omitempty"`
	Tags   []string `json:"tags,omitempty"`
	Secret string   `json:"-"`
	Plain  bool
	hidden int
}

type shadowed struct {
	Base
	ID string `json:"id"`
}

type withPointer struct {
	*Base
	Name string `json:"name"`
}

type recursive struct {
	*recursive
	Value int `json:"value"`
}

func memberNames(members []Member) []string {
	names := make([]string, len(members))
	for i, m := range members {
		names[i] = m.Name
	}
	return names
}

func TestMemberCacheMembers(t *testing.T) {
	cache := NewMemberCache()

	members := cache.Members(reflect.TypeFor[item](), false)
	assert.Equal(t, []string{"id", "created", "name", "note", "tags", "Plain"}, memberNames(members))

	members = cache.Members(reflect.TypeFor[item](), true)
	assert.Equal(t, []string{"id", "created", "name", "note", "tags", "Plain", "hidden"}, memberNames(members))

	assert.Nil(t, cache.Members(reflect.TypeFor[int](), false))
	assert.Equal(t, 2, cache.Len())
}

func TestMemberCacheShadowing(t *testing.T) {
	members := NewMemberCache().Members(reflect.TypeFor[shadowed](), false)
	assert.Equal(t, []string{"created", "id"}, memberNames(members))

	out, err := Serialize(shadowed{Base: Base{ID: 1}, ID: "outer"}, Options{})
	require.NoError(t, err)
	assert.Equal(t, `{"id":"outer"}`, out)
}

func TestMemberCacheRecursiveEmbedding(t *testing.T) {
	members := NewMemberCache().Members(reflect.TypeFor[recursive](), false)
	assert.Equal(t, []string{"value"}, memberNames(members))
}

func TestSerializeStructTags(t *testing.T) {
	in := item{
		Base:   Base{ID: 1},
		Name:   "widget",
		Secret: "do not print",
		hidden: 7,
	}

	out, err := Serialize(in, Options{})
	require.NoError(t, err)
	assert.Equal(t, `{"id":1,"name":"widget","Plain":false}`, out)

	out, err = Serialize(in, Options{IncludeNonPublic: true})
	require.NoError(t, err)
	assert.Equal(t, `{"id":1,"name":"widget","Plain":false,"hidden":7}`, out)

	out, err = Serialize(&in, Options{IncludeNonPublic: true})
	require.NoError(t, err)
	assert.Equal(t, `{"id":1,"name":"widget","Plain":false,"hidden":7}`, out)
}

func TestSerializeNilEmbeddedPointer(t *testing.T) {
	var observed []*MemberError
	opts := Options{
		Observer: ObserverFunc(func(err *MemberError) { observed = append(observed, err) }),
	}

	out, err := Serialize(withPointer{Name: "n"}, opts)
	require.NoError(t, err)
	assert.Equal(t, `{"name":"n"}`, out)

	require.Len(t, observed, 2)
	assert.Equal(t, "id", observed[0].Member)
	assert.True(t, errors.Is(observed[0], errNilEmbedded))

	observed = nil
	out, err = Serialize(withPointer{Base: &Base{ID: 3}, Name: "n"}, opts)
	require.NoError(t, err)
	assert.Equal(t, `{"id":3,"name":"n"}`, out)
	assert.Empty(t, observed)
}

type upperProvider struct{}

func (upperProvider) Members(t reflect.Type, includeNonPublic bool) []Member {
	if t != reflect.TypeFor[leaf]() {
		return nil
	}
	return []Member{{
		Name: "N",
		Read: func(target reflect.Value) (any, error) { return target.Field(0).Int() * 10, nil },
	}}
}

func TestSerializeCustomMemberProvider(t *testing.T) {
	out, err := Serialize([]leaf{{N: 1}, {N: 2}}, Options{Members: upperProvider{}})
	require.NoError(t, err)
	assert.Equal(t, `[{"N":10},{"N":20}]`, out)
}

func TestMemberCacheConcurrent(t *testing.T) {
	cache := NewMemberCache()

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(nonPublic bool) {
			defer wg.Done()
			cache.Members(reflect.TypeFor[item](), nonPublic)
		}(i%2 == 0)
	}
	wg.Wait()

	assert.Equal(t, 2, cache.Len())
}
