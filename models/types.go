package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"
	"time"
)

// Rank algorithm constants
const (
	RankAvg = "avg"
	RankSum = "sum"
)

// Session ordering constants
const (
	OrderByTotalScore = "totalScore"
	OrderByDate       = "date"
)

// Domain types

type User struct {
	ID           int64  `json:"id"`
	Username     string `json:"username"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"` // Never expose in JSON
	Admin        bool   `json:"admin"`
}

type TestCase struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	RunCommand string `json:"runCommand,omitempty"`
	TestData   string `json:"testData,omitempty"`
	Weight     int    `json:"weight"`
}

type Suite struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	RankAlgorithm string    `json:"rankAlgorithm"`
	Created       time.Time `json:"created"`
	Updated       time.Time `json:"updated"`
}

type SuiteWithTestCases struct {
	Suite
	TestCases []TestCase `json:"testcases"`
}

type TestCaseWithSuites struct {
	TestCase
	Suites []SuiteRef `json:"suites"`
}

type SuiteRef struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	RankAlgorithm string `json:"rankAlgorithm"`
}

type Session struct {
	ID            int64     `json:"id"`
	SuiteID       int64     `json:"suiteId"`
	Username      string    `json:"username"`
	Name          *string   `json:"name"`
	Date          time.Time `json:"date"`
	CommitID      *string   `json:"commitId"`
	TotalScore    *float64  `json:"totalScore"`
	DisplayScore  *float64  `json:"displayScore"`
	SuiteName     string    `json:"suiteName,omitempty"`
	RankAlgorithm string    `json:"rankAlgorithm,omitempty"`
	Scores        []Score   `json:"scores"`
}

// Score is flattened with its test case name and weight.
type Score struct {
	ID             int64    `json:"id"`
	SessionID      int64    `json:"sessionId"`
	TestCaseID     int64    `json:"testCaseId"`
	Score          *float64 `json:"score"`
	TestCaseName   string   `json:"testCaseName"`
	TestCaseWeight int      `json:"testCaseWeight"`
}

type SessionRank struct {
	Session       Session  `json:"session"`
	Rank          int64    `json:"rank"`
	MinScore      *float64 `json:"minScore"`
	MaxScore      *float64 `json:"maxScore"`
	TotalSessions int64    `json:"totalSessions"`
}

// Ref names an entity either by numeric id or by a string key
// (test case or suite name, username or email).
type Ref struct {
	ID  int64
	Key string
}

func (r Ref) String() string {
	if r.Key != "" {
		return r.Key
	}
	return strconv.FormatInt(r.ID, 10)
}

func (r *Ref) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s == "" {
			return errors.New("empty reference")
		}
		*r = Ref{Key: s}
		return nil
	}
	var id int64
	if err := json.Unmarshal(data, &id); err != nil {
		return errors.New("reference must be an id or a name")
	}
	*r = Ref{ID: id}
	return nil
}

func (r Ref) MarshalJSON() ([]byte, error) {
	if r.Key != "" {
		return json.Marshal(r.Key)
	}
	return json.Marshal(r.ID)
}

// Request types

type LoginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type CreateUserRequest struct {
	Name     string `json:"name"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Admin    bool   `json:"admin"`
}

type DeleteUserRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

type CreateSuiteRequest struct {
	Name          string `json:"name"`
	RankAlgorithm string `json:"rankAlgorithm"`
}

type CreateTestCaseRequest struct {
	Name       string `json:"name"`
	RunCommand string `json:"runCommand"`
	TestData   string `json:"testData"`
	Weight     *int   `json:"weight"`
	Suites     []Ref  `json:"suites"`
}

// Score is kept raw so a non-numeric value can be reported per test case.
type ScoreEntry struct {
	TestCaseID int64           `json:"testCaseId"`
	Score      json.RawMessage `json:"score"`
}

type CreateSessionRequest struct {
	Date     string       `json:"date"`
	CommitID string       `json:"commitId"`
	Name     string       `json:"name"`
	Scores   []ScoreEntry `json:"scores"`
}

type SuiteTestCasesRequest struct {
	TestCases []Ref `json:"testcases"`
}

// Users are named by username or email.
type SuiteUsersRequest struct {
	Users []string `json:"users"`
}

type SetScoreRequest struct {
	Score json.RawMessage `json:"score"`
}

// Response types

type LoginResponse struct {
	Username    string `json:"username"`
	IdentityKey string `json:"identityKey"`
}

type UserResponse struct {
	User User `json:"user"`
}

type UsersResponse struct {
	Users         []User  `json:"users"`
	ContinueToken *string `json:"continueToken"`
}

type SuiteResponse struct {
	Suite SuiteWithTestCases `json:"suite"`
}

type SuitesResponse struct {
	Suites        []Suite `json:"suites"`
	ContinueToken *string `json:"continueToken"`
}

type TestCaseResponse struct {
	TestCase TestCaseWithSuites `json:"testcase"`
}

type TestCasesResponse struct {
	TestCases     []TestCaseWithSuites `json:"testcases"`
	ContinueToken *string              `json:"continueToken"`
}

type SuiteTestCasesResponse struct {
	TestCases     []TestCase `json:"testcases"`
	ContinueToken *string    `json:"continueToken"`
}

type SuiteUsersResponse struct {
	Users []User `json:"users"`
}

type SessionResponse struct {
	Session Session `json:"session"`
}

type SessionsResponse struct {
	Sessions      []Session `json:"sessions"`
	ContinueToken *string   `json:"continueToken"`
}

type CountResponse struct {
	Count int64 `json:"count"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
