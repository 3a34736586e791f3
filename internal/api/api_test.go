package api

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/bnema/coffeeviz-cli/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeLogin(t *testing.T) {
	resp, err := DecodeLogin(json.RawMessage(`{"token":" abc.def ","userInfo":{"id":7,"username":"ada","displayName":"Ada","email":"ada@example.com"}}`))
	require.NoError(t, err)

	assert.Equal(t, "abc.def", resp.Token)
	require.NotNil(t, resp.UserInfo)
	assert.Equal(t, int64(7), resp.UserInfo.ID)
	assert.Equal(t, "Ada", resp.UserInfo.Name())
}

func TestDecodeLoginRequiresToken(t *testing.T) {
	_, err := DecodeLogin(json.RawMessage(`{"userInfo":{"id":7}}`))
	assert.ErrorIs(t, err, ErrMissingToken)

	_, err = DecodeLogin(json.RawMessage(`[]`))
	assert.ErrorContains(t, err, "decode login response")
}

func TestDecodeQuotaBoard(t *testing.T) {
	captured := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	data := json.RawMessage(`{
		"sql_parse": {"quotaType":"sql_parse","quotaLimit":100,"quotaUsed":25,"resetCycle":"monthly","lastResetTime":"2026-03-01T00:00:00"},
		"ai_generate": {"quotaType":"ai_generate","quotaLimit":-1,"quotaUsed":4,"resetCycle":"monthly","lastResetTime":"2026-03-01 00:00:00"},
		"export": {"quotaUsed":2}
	}`)

	board, err := DecodeQuotaBoard(data, captured)
	require.NoError(t, err)

	assert.Equal(t, captured, board.CapturedAt)
	require.Len(t, board.Quotas, 3)

	sqlParse := board.Quotas["sql_parse"]
	assert.Equal(t, 100, sqlParse.Limit)
	assert.Equal(t, 25, sqlParse.UsedPercent())
	assert.Equal(t, 2026, sqlParse.LastResetAt.Year())

	assert.True(t, board.Quotas["ai_generate"].Unlimited())
	assert.False(t, board.Quotas["ai_generate"].LastResetAt.IsZero())

	export := board.Quotas["export"]
	assert.Equal(t, "export", export.Type)
	assert.True(t, export.Unlimited())
	assert.True(t, export.LastResetAt.IsZero())
}

func TestDecodeQuotaBoardRejectsNonObject(t *testing.T) {
	_, err := DecodeQuotaBoard(json.RawMessage(`"nope"`), time.Now())
	assert.ErrorContains(t, err, "decode quota list")
}

func TestRequestBuilders(t *testing.T) {
	tests := []struct {
		name   string
		req    domain.Request
		method string
		path   string
	}{
		{name: "login", req: Login(Credentials{Username: "ada", Password: "pw"}), method: http.MethodPost, path: PathLogin},
		{name: "logout", req: Logout(), method: http.MethodPost, path: PathLogout},
		{name: "userinfo", req: UserInfo(), method: http.MethodGet, path: PathUserInfo},
		{name: "quota", req: QuotaList(), method: http.MethodGet, path: PathQuotaList},
		{name: "subscription", req: CurrentSubscription(), method: http.MethodGet, path: PathSubscriptionCurrent},
		{name: "plans", req: SubscriptionPlans(), method: http.MethodGet, path: PathSubscriptionPlans},
		{name: "repositories", req: ListRepositories(), method: http.MethodGet, path: PathRepositoryList},
		{name: "create repository", req: CreateRepository(RepositoryDraft{RepositoryName: "core"}), method: http.MethodPost, path: PathRepositoryCreate},
		{name: "diagrams", req: ListDiagrams(42), method: http.MethodGet, path: "/api/diagram/list/42"},
		{name: "create diagram", req: CreateDiagram(DiagramDraft{RepositoryID: 42, DiagramName: "orders"}), method: http.MethodPost, path: PathDiagramCreate},
		{name: "teams", req: ListTeams(), method: http.MethodGet, path: PathTeamList},
		{name: "create team", req: CreateTeam(TeamDraft{TeamName: "data"}), method: http.MethodPost, path: PathTeamCreate},
		{name: "create project", req: CreateProject(ProjectDraft{ProjectName: "billing"}), method: http.MethodPost, path: PathProjectCreate},
		{name: "parse sql", req: ParseSQL(SQLSource{SQLText: "create table t (id int);", ERRender: DefaultERRender()}), method: http.MethodPost, path: PathParseSQL},
		{name: "connect jdbc", req: ConnectJDBC(JDBCSource{DBType: "mysql", ERRender: DefaultERRender()}), method: http.MethodPost, path: PathConnectJDBC},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.method, tt.req.Method)
			assert.Equal(t, tt.path, tt.req.Path)
		})
	}
}

func TestMutatingBuildersMatchDefaultRefreshRules(t *testing.T) {
	rules := domain.DefaultRefreshRules()
	for _, req := range []domain.Request{
		CreateProject(ProjectDraft{}),
		CreateRepository(RepositoryDraft{}),
		CreateDiagram(DiagramDraft{}),
		ParseSQL(SQLSource{}),
		ConnectJDBC(JDBCSource{}),
	} {
		assert.True(t, domain.MatchesAny(rules, req.Path), req.Path)
	}

	assert.False(t, domain.MatchesAny(rules, ListRepositories().Path))
	assert.False(t, domain.MatchesAny(rules, CreateTeam(TeamDraft{}).Path))
}

func TestListProjectsDefaultsPaging(t *testing.T) {
	req := ListProjects(ProjectQuery{})

	body, err := json.Marshal(req.Body)
	require.NoError(t, err)
	assert.JSONEq(t, `{"page":1,"size":10,"keyword":null,"status":null}`, string(body))
}

func TestSQLSourceFlattensRenderOptions(t *testing.T) {
	body, err := json.Marshal(SQLSource{SQLText: "select 1", ERRender: DefaultERRender()})
	require.NoError(t, err)
	assert.JSONEq(t, `{"sqlText":"select 1","viewMode":"PHYSICAL","inferRelations":false,"tableFilter":null,"relationDepth":-1}`, string(body))
}

func TestCheckFeatureSetsQuery(t *testing.T) {
	req := CheckFeature("ai_generate")
	assert.Equal(t, "ai_generate", req.Query.Get("feature"))
}
