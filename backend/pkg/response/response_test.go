package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestOKPage_TotalPages(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	OKPage(c, []string{"a", "b"}, 41, 2, 20)

	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Code int `json:"code"`
		Data struct {
			Pagination Pagination `json:"pagination"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 0, body.Code)
	assert.Equal(t, 3, body.Data.Pagination.TotalPages)
	assert.Equal(t, int64(41), body.Data.Pagination.Total)
}

func TestConflict(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	Conflict(c, 17004, "shift already has an open swap request")

	assert.Equal(t, http.StatusConflict, w.Code)
	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 17004, resp.Code)
}

func TestError_CarriesRequestID(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Set("request_id", "req-42")

	TooManyRequests(c)

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, CodeRateLimited, resp.Code)
	assert.Equal(t, "req-42", resp.RequestID)
}

func TestNewPagination(t *testing.T) {
	assert.Equal(t, 0, NewPagination(0, 1, 20).TotalPages)
	assert.Equal(t, 1, NewPagination(20, 1, 20).TotalPages)
	assert.Equal(t, 2, NewPagination(21, 1, 20).TotalPages)
	assert.Equal(t, 0, NewPagination(5, 1, 0).TotalPages)
}
