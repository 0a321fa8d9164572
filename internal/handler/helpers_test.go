package handler

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/Ragul198/Event/internal/middleware"
	"github.com/Ragul198/Event/internal/models"
)

var testSession = &models.Session{UserID: "user-1", Email: "asha@psg.edu", SessionID: "sid-1"}

func newContext(method, target string, body io.Reader, session *models.Session) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(method, target, body)
	if session != nil {
		c.Set(middleware.ContextSessionKey, session)
	}
	return c, w
}

// serve runs handler and then commits the status like the engine does after the chain,
// so body-less replies (204, bare 503) reach the recorder.
func serve(c *gin.Context, handler gin.HandlerFunc) {
	handler(c)
	c.Writer.WriteHeaderNow()
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func metaOf(body map[string]interface{}) map[string]interface{} {
	meta, _ := body["meta"].(map[string]interface{})
	return meta
}

func errorCode(body map[string]interface{}) string {
	e, _ := body["error"].(map[string]interface{})
	code, _ := e["code"].(string)
	return code
}

func assertStatus(t *testing.T, want int, w *httptest.ResponseRecorder) {
	t.Helper()
	require.Equalf(t, want, w.Code, "body: %s", w.Body.String())
}
