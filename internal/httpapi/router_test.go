package httpapi

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"haccpcore/internal/blob"
	"haccpcore/internal/core"
	"haccpcore/internal/export"
	"haccpcore/internal/metrics"
	"haccpcore/pkg/domain"
)

var testSecret = []byte("test-secret")

type apiFixture struct {
	t      *testing.T
	router *gin.Engine
	svc    *core.Service
	token  string
}

func newFixture(t *testing.T, secret []byte) *apiFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)
	svc := core.NewService(nil)
	exp := export.NewExporter(blob.NewMemory(), svc, export.WithRestaurant("bistro"))
	router := NewRouter(Options{
		Service:   svc,
		Exporter:  exp,
		Metrics:   metrics.New(),
		JWTSecret: secret,
		JWTIssuer: "haccpd",
	})
	f := &apiFixture{t: t, router: router, svc: svc}
	if len(secret) > 0 {
		token, err := IssueToken(secret, "haccpd", "Chef Ana", "staff", time.Hour, time.Now())
		require.NoError(t, err)
		f.token = token
	}
	return f
}

func (f *apiFixture) do(method, path string, body any) *httptest.ResponseRecorder {
	f.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(f.t, json.NewEncoder(&buf).Encode(body))
	}
	return f.send(httptest.NewRequest(method, path, &buf))
}

func (f *apiFixture) send(req *http.Request) *httptest.ResponseRecorder {
	f.t.Helper()
	req.Header.Set("Content-Type", "application/json")
	if f.token != "" {
		req.Header.Set("Authorization", "Bearer "+f.token)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func soupPlanBody() domain.HACCPPlan {
	return domain.HACCPPlan{
		Name:    "Soup",
		Product: "Chicken soup",
		Hazards: []domain.Hazard{
			{ID: "h-bio", Name: "Salmonella", Type: domain.HazardBiological},
		},
		CriticalControlPoints: []domain.CriticalControlPoint{{
			ID:      "ccp-cook",
			Step:    "Cooking",
			Hazards: []string{"h-bio"},
			CriticalLimits: []domain.CriticalLimit{
				{Parameter: "Internal Temperature", Minimum: domain.Float(165), Units: "°F"},
			},
		}},
	}
}

func TestAuthRequired(t *testing.T) {
	f := newFixture(t, testSecret)

	f.token = ""
	rec := f.do(http.MethodGet, "/api/v1/plans", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	f.token = "not-a-jwt"
	rec = f.do(http.MethodGet, "/api/v1/plans", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	other, err := IssueToken([]byte("other"), "haccpd", "Mallory", "", time.Hour, time.Now())
	require.NoError(t, err)
	f.token = other
	rec = f.do(http.MethodGet, "/api/v1/plans", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	expired, err := IssueToken(testSecret, "haccpd", "Chef Ana", "", time.Minute, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	f.token = expired
	rec = f.do(http.MethodGet, "/api/v1/plans", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	f.token = ""
	rec = f.do(http.MethodGet, "/api/v1/templates", nil)
	assert.Equal(t, http.StatusOK, rec.Code, "templates are public")
}

func TestPlanLifecycleAndEditor(t *testing.T) {
	f := newFixture(t, testSecret)

	rec := f.do(http.MethodPost, "/api/v1/plans", soupPlanBody())
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	plan := decode[domain.HACCPPlan](t, rec)
	require.NotEmpty(t, plan.ID)
	base := "/api/v1/plans/" + plan.ID

	rec = f.do(http.MethodGet, base, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(http.MethodPost, base+"/hazards", domain.Hazard{Name: "Glass", Type: domain.HazardPhysical})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	glass := decode[domain.Hazard](t, rec)

	rec = f.do(http.MethodPost, base+"/ccps", domain.CriticalControlPoint{Step: "Straining", Hazards: []string{"missing"}})
	assert.Equal(t, http.StatusConflict, rec.Code, rec.Body.String())

	rec = f.do(http.MethodPost, base+"/ccps", domain.CriticalControlPoint{Step: "Straining", Hazards: []string{glass.ID}})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	strain := decode[domain.CriticalControlPoint](t, rec)

	rec = f.do(http.MethodDelete, base+"/hazards/"+glass.ID, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = f.do(http.MethodGet, base, nil)
	got := decode[domain.HACCPPlan](t, rec)
	ccp, ok := got.FindCCP(strain.ID)
	require.True(t, ok)
	assert.Empty(t, ccp.Hazards, "deleting a hazard prunes CCP references")

	update := got
	update.Name = "Soup v2"
	rec = f.do(http.MethodPut, base, update)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Soup v2", decode[domain.HACCPPlan](t, rec).Name)

	rec = f.do(http.MethodGet, base+"/status", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2, decode[core.PlanStatus](t, rec).CCPs)

	rec = f.do(http.MethodDelete, base, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
	rec = f.do(http.MethodGet, base, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = f.do(http.MethodDelete, base, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreatePlanFromTemplate(t *testing.T) {
	f := newFixture(t, testSecret)

	rec := f.do(http.MethodGet, "/api/v1/templates", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	tmpls := decode[[]domain.HACCPTemplate](t, rec)
	require.NotEmpty(t, tmpls)

	rec = f.do(http.MethodGet, "/api/v1/templates/"+tmpls[0].ID, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = f.do(http.MethodGet, "/api/v1/templates/nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(http.MethodPost, "/api/v1/plans/from-template", fromTemplateRequest{TemplateID: tmpls[0].ID, Name: "Kitchen A"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	plan := decode[domain.HACCPPlan](t, rec)
	assert.Equal(t, "Kitchen A", plan.Name)
	assert.Len(t, plan.CriticalControlPoints, len(tmpls[0].CriticalControlPoints))

	rec = f.do(http.MethodPost, "/api/v1/plans/from-template", fromTemplateRequest{TemplateID: "missing"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = f.do(http.MethodPost, "/api/v1/plans/from-template", gin.H{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMonitoringTriggersCorrectiveWorkflow(t *testing.T) {
	f := newFixture(t, testSecret)
	rec := f.do(http.MethodPost, "/api/v1/plans", soupPlanBody())
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = f.do(http.MethodPost, "/api/v1/monitoring-logs", core.MonitoringInput{
		CCPID:      "ccp-cook",
		Parameters: []domain.MonitoringReading{{Parameter: "Internal Temperature", Value: 150, Units: "°F"}},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	outcome := decode[core.MonitoringOutcome](t, rec)
	assert.Equal(t, "Chef Ana", outcome.Log.MonitoredBy, "author comes from the token")
	assert.False(t, outcome.Log.Parameters[0].WithinLimits)
	require.NotNil(t, outcome.CorrectiveAction)
	actionID := outcome.CorrectiveAction.ID

	rec = f.do(http.MethodGet, "/api/v1/corrective-actions?status=open", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]domain.CorrectiveActionLog](t, rec), 1)

	rec = f.do(http.MethodPost, "/api/v1/corrective-actions/"+actionID+"/verify", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	verified := decode[domain.CorrectiveActionLog](t, rec)
	assert.True(t, verified.Verified)
	assert.Equal(t, "Chef Ana", verified.VerifiedBy)

	rec = f.do(http.MethodPost, "/api/v1/corrective-actions/"+actionID+"/follow-up", followUpRequest{Description: "Thermometer recalibrated"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.True(t, decode[domain.CorrectiveActionLog](t, rec).FollowUpCompleted)

	rec = f.do(http.MethodPost, "/api/v1/monitoring-logs/"+outcome.Log.ID+"/verify", verifyRequest{})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = f.do(http.MethodGet, "/api/v1/monitoring-logs?ccpId=ccp-cook", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	logs := decode[[]domain.CCPMonitoringLog](t, rec)
	require.Len(t, logs, 1)
	assert.True(t, logs[0].Verified)

	rec = f.do(http.MethodGet, "/api/v1/monitoring-logs?since=yesterday", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = f.do(http.MethodGet, "/api/v1/corrective-actions?status=bogus", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = f.do(http.MethodPost, "/api/v1/corrective-actions/missing/verify", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestEmptyChunkedBodyIsTreatedAsNoBody(t *testing.T) {
	f := newFixture(t, testSecret)
	rec := f.do(http.MethodPost, "/api/v1/plans", soupPlanBody())
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = f.do(http.MethodPost, "/api/v1/monitoring-logs", core.MonitoringInput{
		CCPID:      "ccp-cook",
		Parameters: []domain.MonitoringReading{{Parameter: "Internal Temperature", Value: 150}},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	outcome := decode[core.MonitoringOutcome](t, rec)
	require.NotNil(t, outcome.CorrectiveAction)

	// A reader of unknown size leaves ContentLength at -1, as with chunked encoding.
	chunked := func(path string) *http.Request {
		req := httptest.NewRequest(http.MethodPost, path, struct{ io.Reader }{strings.NewReader("")})
		require.EqualValues(t, -1, req.ContentLength)
		return req
	}

	rec = f.send(chunked("/api/v1/monitoring-logs/" + outcome.Log.ID + "/verify"))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Chef Ana", decode[domain.CCPMonitoringLog](t, rec).VerifiedBy)

	rec = f.send(chunked("/api/v1/corrective-actions/" + outcome.CorrectiveAction.ID + "/follow-up"))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.True(t, decode[domain.CorrectiveActionLog](t, rec).FollowUpCompleted)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/corrective-actions/"+outcome.CorrectiveAction.ID+"/verify",
		struct{ io.Reader }{strings.NewReader("{not json")})
	rec = f.send(req)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "malformed chunked bodies are still rejected")
}

func TestMonitoringWithoutAuthUsesBodyAuthor(t *testing.T) {
	f := newFixture(t, nil)
	rec := f.do(http.MethodPost, "/api/v1/plans", soupPlanBody())
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = f.do(http.MethodPost, "/api/v1/monitoring-logs", core.MonitoringInput{
		CCPID:      "ccp-cook",
		Parameters: []domain.MonitoringReading{{Parameter: "Internal Temperature", Value: 170}},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code, "monitoredBy is required without a token")

	rec = f.do(http.MethodPost, "/api/v1/monitoring-logs", core.MonitoringInput{
		CCPID:       "ccp-cook",
		Parameters:  []domain.MonitoringReading{{Parameter: "Internal Temperature", Value: 170}},
		MonitoredBy: "Sam",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	outcome := decode[core.MonitoringOutcome](t, rec)
	assert.Equal(t, "Sam", outcome.Log.MonitoredBy)
	assert.Nil(t, outcome.CorrectiveAction)

	rec = f.do(http.MethodPost, "/api/v1/monitoring-logs", core.MonitoringInput{
		CCPID:       "ccp-missing",
		Parameters:  []domain.MonitoringReading{{Parameter: "Internal Temperature", Value: 170}},
		MonitoredBy: "Sam",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestExportEndpoints(t *testing.T) {
	f := newFixture(t, testSecret)

	rec := f.do(http.MethodGet, "/api/v1/exports/preview?period=week", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Body.String(), "HACCP Export - "))
	assert.Contains(t, rec.Body.String(), "No HACCP monitoring logs for this period.")

	rec = f.do(http.MethodGet, "/api/v1/exports/preview?period=century", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(http.MethodPost, "/api/v1/exports", exportRequest{Period: export.PeriodMonth, Formats: []export.Format{export.FormatCSV}})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	results := decode[[]export.Result](t, rec)
	require.Len(t, results, 1)
	assert.True(t, strings.HasPrefix(results[0].Info.Key, "reports/bistro/"))

	rec = f.do(http.MethodPost, "/api/v1/exports", exportRequest{Formats: []export.Format{"pdf"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(http.MethodGet, "/api/v1/exports", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]blob.Info](t, rec), 1)
}

func TestHealthAndMetrics(t *testing.T) {
	f := newFixture(t, testSecret)
	f.do(http.MethodGet, "/api/v1/templates", nil)

	rec := f.do(http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(http.MethodGet, "/debug/vars", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "memstats")

	rec = f.do(http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "haccp_http_requests_total")
}

func TestStatusForMapping(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{domain.ErrNotFound{Entity: domain.EntityPlan, ID: "p"}, http.StatusNotFound},
		{domain.ErrReferentialViolation{Entity: domain.EntityCCP, Ref: domain.EntityHazard, RefID: "h"}, http.StatusConflict},
		{domain.ErrInvalidInput{Field: "name", Reason: "required"}, http.StatusBadRequest},
		{domain.RuleViolationError{}, http.StatusUnprocessableEntity},
		{blob.ErrExists, http.StatusConflict},
		{assert.AnError, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, statusFor(tc.err), tc.err.Error())
	}
}
