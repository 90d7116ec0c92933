package pagination

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestFromContextClamps(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cases := map[string]Query{
		"/":                     {Page: 1, Size: DefaultSize},
		"/?page=3&size=5":       {Page: 3, Size: 5},
		"/?page=-1&size=0":      {Page: 1, Size: DefaultSize},
		"/?page=abc&size=10000": {Page: 1, Size: MaxSize},
	}
	for target, want := range cases {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest("GET", target, nil)
		assert.Equal(t, want, FromContext(c), target)
	}
}

func TestMeta(t *testing.T) {
	meta := Query{Page: 1, Size: 2}.Meta(5)
	assert.Equal(t, 3, meta.TotalPage)
	assert.True(t, meta.HasNextPage)

	meta = Query{Page: 3, Size: 2}.Meta(5)
	assert.False(t, meta.HasNextPage)
	assert.Equal(t, 4, Query{Page: 3, Size: 2}.Offset())
}
