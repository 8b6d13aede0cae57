package terminology

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSourceURI(t *testing.T) {
	assert.Equal(t, "/orgs/WHO/sources/ICPC-2/", SourceURI(OwnerOrganization, "WHO", "ICPC-2", HEAD))
	assert.Equal(t, "/orgs/WHO/sources/ICPC-2/", SourceURI(OwnerOrganization, "WHO", "ICPC-2", ""))
	assert.Equal(t, "/orgs/WHO/sources/ICPC-2/v11/", SourceURI(OwnerOrganization, "WHO", "ICPC-2", "v11"))
}

func TestChildURI(t *testing.T) {
	parent := "/orgs/WHO/sources/ICPC-2/"
	assert.Equal(t, "/orgs/WHO/sources/ICPC-2/concepts/A01/", ChildURI(parent, "concepts", "A01", "12", true))
	assert.Equal(t, "/orgs/WHO/sources/ICPC-2/concepts/A01/12/", ChildURI(parent, "concepts", "A01", "12", false))
	assert.Equal(t, "/orgs/WHO/sources/ICPC-2/concepts/A01/", ChildURI(parent, "concepts", "A01", NewTempVersion(), false))
}

func TestDropVersion(t *testing.T) {
	cases := []struct{ in, want string }{
		{"", ""},
		{"/orgs/WHO/sources/ICPC-2/", "/orgs/WHO/sources/ICPC-2/"},
		{"/orgs/WHO/sources/ICPC-2/v11/", "/orgs/WHO/sources/ICPC-2/"},
		{"/orgs/WHO/sources/ICPC-2/concepts/A01/", "/orgs/WHO/sources/ICPC-2/concepts/A01/"},
		{"/orgs/WHO/sources/ICPC-2/concepts/A01/7/", "/orgs/WHO/sources/ICPC-2/concepts/A01/"},
		{"/users/jo/sources/local/mappings/m1/v2/", "/users/jo/sources/local/mappings/m1/"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, DropVersion(tc.in), tc.in)
	}
}

func TestSeparateVersion(t *testing.T) {
	version, rest := SeparateVersion("/orgs/WHO/sources/ICPC-2/v11/")
	assert.Equal(t, "v11", version)
	assert.Equal(t, "/orgs/WHO/sources/ICPC-2/", rest)

	version, rest = SeparateVersion("/orgs/WHO/sources/ICPC-2/")
	assert.Empty(t, version)
	assert.Equal(t, "/orgs/WHO/sources/ICPC-2/", rest)
}

func TestToParentURIAndCode(t *testing.T) {
	url := "/orgs/WHO/sources/ICPC-2/concepts/A01/"
	assert.Equal(t, "/orgs/WHO/sources/ICPC-2/", ToParentURI(url))
	assert.Equal(t, "A01", CodeFromConceptURL(url))
	assert.Equal(t, "A01", CodeFromConceptURL("/orgs/WHO/sources/ICPC-2/concepts/A01/3/"))
	assert.True(t, IsVersionedURI("/orgs/WHO/sources/ICPC-2/concepts/A01/3/"))
	assert.False(t, IsVersionedURI(url))
}

func TestTempVersion(t *testing.T) {
	v := NewTempVersion()
	assert.True(t, IsTempVersion(v))
	assert.True(t, IsTempVersion(""))
	assert.False(t, IsTempVersion("12"))
	assert.NotEqual(t, v, NewTempVersion())
}
