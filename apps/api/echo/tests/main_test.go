package tests

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"

	echoapi "github.com/trezcool/coachreports/apps/api/echo"
	"github.com/trezcool/coachreports/core"
	"github.com/trezcool/coachreports/core/progress"
	"github.com/trezcool/coachreports/core/transfer"
	"github.com/trezcool/coachreports/tests"
)

const freeSpace = int64(1000)

type httpErr struct {
	Error string `json:"error"`
}

// newApp returns a server over SchoolFixtures whose content volume has `freeSpace` bytes left.
func newApp(t *testing.T, space ...transfer.SpaceFunc) *echoapi.Server {
	repos := testutil.NewMemoryRepositories(t)
	testutil.LoadFixtures(t, repos, testutil.SchoolFixtures)

	conf := &core.Config{AppName: "Coach Reports", Env: "TEST", TestMode: true}

	reportSvc, err := repos.ReportService(progress.ReportQuery{Filter: "all", Ordering: "title"}, nil)
	require.NoError(t, err)

	spaceFn := func(string, int64) (int64, error) { return freeSpace, nil }
	if len(space) > 0 {
		spaceFn = space[0]
	}
	transferSvc := transfer.NewService("", 0).WithSpaceFunc(spaceFn)

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	progress.InitValidators(validate, translator)

	return echoapi.NewServer(echoapi.ServerDeps{
		Conf:        conf,
		Logger:      core.NopLogger{},
		ReportSvc:   reportSvc,
		TransferSvc: transferSvc,
		Validate:    validate,
		Translator:  translator,
	})
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	return req, httptest.NewRecorder()
}

func serve(app http.Handler, method, path string, data ...[]byte) *httptest.ResponseRecorder {
	req, rec := newRequest(method, path, data...)
	app.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}
