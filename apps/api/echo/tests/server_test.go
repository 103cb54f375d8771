package tests

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	echoapi "github.com/trezcool/coachreports/apps/api/echo"
	"github.com/trezcool/coachreports/core"
	"github.com/trezcool/coachreports/core/progress"
	"github.com/trezcool/coachreports/core/transfer"
)

type failingReportService struct {
	err error
}

func (svc failingReportService) LessonReport(context.Context, progress.ReportQuery) ([]progress.TableRow, error) {
	return nil, svc.err
}

func (svc failingReportService) ResourceReport(context.Context, string, progress.ReportQuery) ([]progress.TableRow, error) {
	return nil, svc.err
}

// recordingLogger keeps the arguments of the errors it logs.
type recordingLogger struct {
	core.NopLogger
	errors [][]interface{}
}

func (l *recordingLogger) Error(msg string, args ...interface{}) {
	l.errors = append(l.errors, append([]interface{}{msg}, args...))
}

func newFailingApp(err error, logger core.Logger) *echoapi.Server {
	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	progress.InitValidators(validate, translator)

	return echoapi.NewServer(echoapi.ServerDeps{
		Conf:        &core.Config{AppName: "Coach Reports", Env: "TEST", TestMode: true},
		Logger:      logger,
		ReportSvc:   failingReportService{err: err},
		TransferSvc: transfer.NewService("", 0),
		Validate:    validate,
		Translator:  translator,
	})
}

func Test_server_shutdownOnFatalError(t *testing.T) {
	app := newFailingApp(errors.Wrap(core.NewShutdownError("bolt database closed"), "loading items"), core.NopLogger{})
	defer func() { _ = app.Close() }()

	rec := serve(app, http.MethodGet, "/v1/reports/lessons")
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	select {
	case <-app.ShutdownSignal():
	case <-time.After(time.Second):
		t.Fatal("shutdown was not signaled")
	}
}

func Test_server_noShutdownOnServerError(t *testing.T) {
	logger := &recordingLogger{}
	app := newFailingApp(errors.New("connection reset"), logger)
	defer func() { _ = app.Close() }()

	req, rec := newRequest(http.MethodGet, "/v1/reports/lessons")
	req.RemoteAddr = "10.0.0.7:52100"
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	var got httpErr
	decode(t, rec, &got)
	assert.Equal(t, http.StatusText(http.StatusInternalServerError), got.Error)

	// the client address is context, not the requesting person
	require.Len(t, logger.errors, 1)
	logged := logger.errors[0]
	assert.Equal(t, http.StatusText(http.StatusInternalServerError), logged[0])
	assert.Contains(t, logged, map[string]interface{}{"remote_ip": "10.0.0.7"})
	for _, arg := range logged {
		_, isActor := arg.(core.Actor)
		assert.False(t, isActor)
	}

	select {
	case <-app.ShutdownSignal():
		t.Fatal("unexpected shutdown")
	default:
	}
}
