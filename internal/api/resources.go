package api

import (
	"strconv"

	"github.com/bnema/coffeeviz-cli/internal/domain"
)

const (
	PathProjectList      = "/api/project/list"
	PathProjectCreate    = "/api/project/create"
	PathRepositoryList   = "/api/repository/list"
	PathRepositoryCreate = "/api/repository/create"
	PathDiagramList      = "/api/diagram/list"
	PathDiagramCreate    = "/api/diagram/create"
	PathTeamList         = "/api/team/list"
	PathTeamCreate       = "/api/team/create"
	PathParseSQL         = "/api/er/parse-sql"
	PathConnectJDBC      = "/api/er/connect-jdbc"
)

const (
	ViewModePhysical = "PHYSICAL"
	ViewModeLogical  = "LOGICAL"

	// AllRelations asks the ER endpoints not to cap relation depth.
	AllRelations = -1
)

type ProjectQuery struct {
	Page    int     `json:"page"`
	Size    int     `json:"size"`
	Keyword *string `json:"keyword"`
	Status  *string `json:"status"`
}

type ProjectDraft struct {
	ProjectName string `json:"projectName"`
	Description string `json:"description,omitempty"`
	MermaidCode string `json:"mermaidCode,omitempty"`
	TableCount  int    `json:"tableCount,omitempty"`
	SourceType  string `json:"sourceType,omitempty"`
	DBType      string `json:"dbType,omitempty"`
	ViewMode    string `json:"viewMode,omitempty"`
}

type RepositoryDraft struct {
	RepositoryName string `json:"repositoryName"`
	Description    string `json:"description,omitempty"`
}

type DiagramDraft struct {
	RepositoryID  int64  `json:"repositoryId"`
	DiagramName   string `json:"diagramName"`
	Description   string `json:"description,omitempty"`
	SourceType    string `json:"sourceType,omitempty"`
	DBType        string `json:"dbType,omitempty"`
	MermaidCode   string `json:"mermaidCode,omitempty"`
	SQLDDL        string `json:"sqlDdl,omitempty"`
	TableCount    int    `json:"tableCount,omitempty"`
	RelationCount int    `json:"relationCount,omitempty"`
}

type TeamDraft struct {
	TeamName     string `json:"teamName"`
	RepositoryID int64  `json:"repositoryId,omitempty"`
	Description  string `json:"description,omitempty"`
}

// ERRender holds the options shared by both ER generation endpoints.
type ERRender struct {
	ViewMode       string  `json:"viewMode"`
	InferRelations bool    `json:"inferRelations"`
	TableFilter    *string `json:"tableFilter"`
	RelationDepth  int     `json:"relationDepth"`
}

func DefaultERRender() ERRender {
	return ERRender{ViewMode: ViewModePhysical, RelationDepth: AllRelations}
}

type SQLSource struct {
	SQLText string `json:"sqlText"`
	ERRender
}

type JDBCSource struct {
	DBType     string `json:"dbType"`
	JDBCURL    string `json:"jdbcUrl"`
	Username   string `json:"username"`
	Password   string `json:"password"`
	SchemaName string `json:"schemaName,omitempty"`
	ERRender
}

// ListProjects pages through projects; the backend takes the filter as a
// POST body.
func ListProjects(query ProjectQuery) domain.Request {
	if query.Page <= 0 {
		query.Page = 1
	}
	if query.Size <= 0 {
		query.Size = 10
	}
	return domain.Post(PathProjectList, query)
}

func CreateProject(draft ProjectDraft) domain.Request {
	return domain.Post(PathProjectCreate, draft)
}

func ListRepositories() domain.Request {
	return domain.Get(PathRepositoryList)
}

func CreateRepository(draft RepositoryDraft) domain.Request {
	return domain.Post(PathRepositoryCreate, draft)
}

func ListDiagrams(repositoryID int64) domain.Request {
	return domain.Get(PathDiagramList + "/" + strconv.FormatInt(repositoryID, 10))
}

func CreateDiagram(draft DiagramDraft) domain.Request {
	return domain.Post(PathDiagramCreate, draft)
}

func ListTeams() domain.Request {
	return domain.Get(PathTeamList)
}

func CreateTeam(draft TeamDraft) domain.Request {
	return domain.Post(PathTeamCreate, draft)
}

func ParseSQL(source SQLSource) domain.Request {
	return domain.Post(PathParseSQL, source)
}

func ConnectJDBC(source JDBCSource) domain.Request {
	return domain.Post(PathConnectJDBC, source)
}
