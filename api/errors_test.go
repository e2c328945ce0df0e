package api

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newQueryContext(query string) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/?"+query, nil)
	return c, w
}

func TestDateRange_EndCoversWholeDay(t *testing.T) {
	c, _ := newQueryContext("start_time=2024-03-10&end_time=2024-03-10")
	start, end, ok := dateRange(c)
	require.True(t, ok)

	assert.Equal(t, time.Date(2024, 3, 10, 0, 0, 0, 0, time.Local), *start)
	assert.Equal(t, time.Date(2024, 3, 10, 23, 59, 59, 999999999, time.Local), *end)

	// 结束日期当天最后一秒内的交易必须落在区间内
	lastSecond := time.Date(2024, 3, 10, 23, 59, 59, 500_000_000, time.Local)
	assert.False(t, lastSecond.After(*end))
	assert.True(t, time.Date(2024, 3, 11, 0, 0, 0, 0, time.Local).After(*end))
}

func TestDateRange_Invalid(t *testing.T) {
	for _, query := range []string{
		"start_time=2024-03-10",
		"end_time=2024-03-10",
		"start_time=2024/03/10&end_time=2024-03-10",
		"start_time=2024-03-11&end_time=2024-03-10",
	} {
		c, w := newQueryContext(query)
		_, _, ok := dateRange(c)
		assert.False(t, ok, query)
		assert.Equal(t, 400, w.Code, query)
	}

	c, _ := newQueryContext("")
	start, end, ok := dateRange(c)
	assert.True(t, ok)
	assert.Nil(t, start)
	assert.Nil(t, end)
}

func TestNewPageResponse(t *testing.T) {
	page := NewPageResponse[int](nil, 0, 1, 10)
	assert.NotNil(t, page.List)
	assert.Empty(t, page.List)

	page = NewPageResponse([]int{1, 2}, 12, 2, 2)
	assert.Equal(t, int64(12), page.Total)
	assert.Equal(t, 2, page.PageSize)
	assert.Equal(t, []int{1, 2}, page.List)
}
