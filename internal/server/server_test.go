package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ololo-tratata/cursor-rules/internal/logging"
	"github.com/ololo-tratata/cursor-rules/internal/rules"
)

type fakeRules struct {
	sets map[string]*rules.RuleSet
}

func (f *fakeRules) GetRulesForTechnology(_ context.Context, technology string) *rules.RuleSet {
	if set, ok := f.sets[technology]; ok {
		return set
	}
	return rules.NewRuleSet(nil)
}

func (f *fakeRules) GetRulesForFile(ctx context.Context, fileCtx rules.FileContext) *rules.RuleSet {
	return f.GetRulesForTechnology(ctx, rules.TechnologyForContext(fileCtx))
}

func (f *fakeRules) GetRuleByID(ctx context.Context, ruleID, technology string) (rules.Rule, bool) {
	return f.GetRulesForTechnology(ctx, technology).FindByID(ruleID)
}

type fakeDeployer struct {
	deployErr    error
	detected     string
	deployedTech string
	deployedDir  string
}

func (f *fakeDeployer) DeployRules(targetDir, technology string) error {
	f.deployedDir = targetDir
	f.deployedTech = technology
	return f.deployErr
}

func (f *fakeDeployer) DetectProjectType(string) (string, bool) {
	return f.detected, f.detected != ""
}

func newTestServer(t *testing.T) (*Server, *fakeRules, *fakeDeployer) {
	t.Helper()
	logger, _ := logging.NewTestLogger()
	fr := &fakeRules{sets: map[string]*rules.RuleSet{
		"python": rules.NewRuleSet(rules.MockRules("python")),
	}}
	fd := &fakeDeployer{}
	return NewServer(fr, fd, logger), fr, fd
}

func doRequest(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	s.Routes().ServeHTTP(rec, req)
	return rec
}

func TestListTechnologies(t *testing.T) {
	s, _, _ := newTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/api/v1/technologies", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var techs []string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &techs))
	assert.Contains(t, techs, "python")
	assert.Contains(t, techs, "golang")
	assert.Len(t, techs, 11)
}

func TestGetRulesForTechnology(t *testing.T) {
	s, _, _ := newTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/api/v1/technologies/python/rules", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var set rules.RuleSet
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &set))
	assert.Equal(t, 2, set.Total)
	assert.Len(t, set.Rules, 2)
}

func TestGetRulesForUnknownTechnologyIsEmptyNotError(t *testing.T) {
	s, _, _ := newTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/api/v1/technologies/cobol/rules", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var set rules.RuleSet
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &set))
	assert.Zero(t, set.Total)
}

func TestGetRuleByID(t *testing.T) {
	s, _, _ := newTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/api/v1/technologies/python/rules/python-typing", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var rule rules.Rule
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rule))
	assert.Equal(t, "python-typing", rule.ID)
	assert.Equal(t, "python", rule.Technology)
}

func TestGetRuleByIDNotFound(t *testing.T) {
	s, _, _ := newTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/api/v1/technologies/python/rules/no-such-rule", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body["detail"], "no-such-rule")
}

func TestContextRules(t *testing.T) {
	s, _, _ := newTestServer(t)

	rec := doRequest(t, s, http.MethodPost, "/api/v1/context/rules",
		rules.FileContext{FilePath: "src/app.py"})
	require.Equal(t, http.StatusOK, rec.Code)

	var set rules.RuleSet
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &set))
	assert.Equal(t, 2, set.Total)
}

func TestContextRulesValidation(t *testing.T) {
	s, _, _ := newTestServer(t)

	t.Run("missing file_path", func(t *testing.T) {
		rec := doRequest(t, s, http.MethodPost, "/api/v1/context/rules", map[string]string{})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("malformed body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/context/rules",
			bytes.NewBufferString("{not json"))
		rec := httptest.NewRecorder()
		s.Routes().ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestDeploy(t *testing.T) {
	s, _, fd := newTestServer(t)

	rec := doRequest(t, s, http.MethodPost, "/api/v1/deploy",
		deployRequest{TargetDir: "/tmp/project", Technology: "python"})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp deployResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "python", resp.Technology)
	assert.Equal(t, 2, resp.RulesCount)
	assert.Equal(t, "/tmp/project", resp.TargetDir)
	assert.Equal(t, "python", fd.deployedTech)
	assert.Equal(t, "/tmp/project", fd.deployedDir)
}

func TestDeployAutoDetectsTechnology(t *testing.T) {
	s, _, fd := newTestServer(t)
	fd.detected = "python"

	rec := doRequest(t, s, http.MethodPost, "/api/v1/deploy",
		deployRequest{TargetDir: "/tmp/project"})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp deployResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "python", resp.Technology)
}

func TestDeployErrors(t *testing.T) {
	t.Run("missing target_dir", func(t *testing.T) {
		s, _, _ := newTestServer(t)
		rec := doRequest(t, s, http.MethodPost, "/api/v1/deploy", deployRequest{})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("undetectable project type", func(t *testing.T) {
		s, _, _ := newTestServer(t)
		rec := doRequest(t, s, http.MethodPost, "/api/v1/deploy",
			deployRequest{TargetDir: "/tmp/project"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("no rules for technology", func(t *testing.T) {
		s, _, _ := newTestServer(t)
		rec := doRequest(t, s, http.MethodPost, "/api/v1/deploy",
			deployRequest{TargetDir: "/tmp/project", Technology: "cobol"})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("deploy failure surfaces as 500", func(t *testing.T) {
		s, _, fd := newTestServer(t)
		fd.deployErr = assert.AnError
		rec := doRequest(t, s, http.MethodPost, "/api/v1/deploy",
			deployRequest{TargetDir: "/tmp/project", Technology: "python"})
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}

func TestHealthAndRoot(t *testing.T) {
	s, _, _ := newTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "healthy")

	rec = doRequest(t, s, http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), Version)
}

func TestCORSPreflight(t *testing.T) {
	s, _, _ := newTestServer(t)

	rec := doRequest(t, s, http.MethodOptions, "/api/v1/technologies", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestPanicRecovery(t *testing.T) {
	logger, _ := logging.NewTestLogger()
	s := NewServer(&panickyRules{}, &fakeDeployer{}, logger)

	rec := doRequest(t, s, http.MethodGet, "/api/v1/technologies/python/rules", nil)
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "An unexpected error occurred. Please try again later.", body["detail"])
}

type panickyRules struct{}

func (p *panickyRules) GetRulesForTechnology(context.Context, string) *rules.RuleSet {
	panic("boom")
}

func (p *panickyRules) GetRulesForFile(context.Context, rules.FileContext) *rules.RuleSet {
	panic("boom")
}

func (p *panickyRules) GetRuleByID(context.Context, string, string) (rules.Rule, bool) {
	panic("boom")
}
