// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Domain Types

  - User: account; the password hash is never serialized
  - Suite: named group of test cases with a rank algorithm
  - TestCase: weighted test, shared between suites
  - Session: one scored run of a suite with its cached total
  - Score: one test case result, flattened with the test case name and weight
  - SessionRank: a session with its rank and the suite's score range

A Session's totalScore is null until it has a score. displayScore is the
total rounded to two decimals; ordering always uses totalScore.

# Request Types

  - LoginRequest, CreateUserRequest, DeleteUserRequest
  - CreateSuiteRequest, SuiteTestCasesRequest, SuiteUsersRequest
  - CreateTestCaseRequest: suites may be given by id or by name (Ref)
  - CreateSessionRequest, SetScoreRequest: scores are kept raw so
    non-numeric values can be reported

# Response Types

List responses carry continueToken, null on the last page.

# Constants

Rank algorithms:

	RankAvg = "avg"
	RankSum = "sum"

Session ordering:

	OrderByTotalScore = "totalScore"
	OrderByDate       = "date"
*/
package models
