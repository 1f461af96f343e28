package controllers

import (
	"database/sql/driver"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

var (
	applicationLockPattern    = regexp.MustCompile("SELECT .* FROM .applications..*FOR UPDATE")
	submissionLockPattern     = regexp.MustCompile("SELECT .* FROM .submissions..*FOR UPDATE")
	projectLockPattern        = regexp.MustCompile("SELECT .* FROM .projects..*FOR UPDATE")
	settingsQueryPattern      = regexp.MustCompile("SELECT .* FROM .project_settings.")
	settingsInsertPattern     = regexp.MustCompile("INSERT INTO .project_settings.")
	submissionUpdatePattern   = regexp.MustCompile("UPDATE .submissions. SET")
	compensationInsertPattern = regexp.MustCompile("INSERT INTO .compensations.")
	loserQueryPattern         = regexp.MustCompile("SELECT .* FROM .submissions. WHERE project_id")

	submissionByIDPattern  = regexp.MustCompile("SELECT .* FROM .submissions. WHERE submission_id")
	submissionByAppPattern = regexp.MustCompile("SELECT .* FROM .submissions. WHERE application_id")

	// Exact SET clause: only the patched column plus bookkeeping may appear.
	titleOnlyUpdatePattern = regexp.MustCompile(`UPDATE .submissions. SET .title.=\?,.updated_at.=\?,.version.=\? WHERE submission_id`)
)

const createSubmissionBody = `{
	"application_id": 42,
	"project_id": 7,
	"title": "Widget delivery",
	"submission_links": [
		{"type": "repository", "label": "Source", "url": "https://github.com/acme/widget"}
	]
}`

func lockedApplicationRow(status string, deadline *time.Time) ([]string, []driver.Value) {
	columns := []string{"application_id", "project_id", "user_id", "status", "submission_deadline", "version"}
	var deadlineValue driver.Value
	if deadline != nil {
		deadlineValue = *deadline
	}
	return columns, []driver.Value{int64(42), int64(7), "dev-1", status, deadlineValue, int64(2)}
}

func TestCreateSubmissionRequiresShortlistedApplication(t *testing.T) {
	columns, row := lockedApplicationRow("submitted", nil)
	state := useScriptedDB(t, []*queryStep{
		{kind: kindQuery, pattern: applicationLockPattern, columns: columns, rows: [][]driver.Value{row}},
	})

	w := httptest.NewRecorder()
	c := newAuthedContext(t, w, "dev-1", "developer")
	c.Request = jsonRequest(http.MethodPost, "/api/v1/submissions", createSubmissionBody)

	CreateSubmission(c)

	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", w.Code, w.Body.String())
	}
	body := decodeBody(t, w)
	if body["kind"] != "invalid_state" {
		t.Fatalf("expected invalid_state kind, got %v", body["kind"])
	}
	if err := state.verifyComplete(); err != nil {
		t.Fatal(err)
	}
}

func TestCreateSubmissionAfterDeadlineFails(t *testing.T) {
	past := time.Now().Add(-time.Hour)
	columns, row := lockedApplicationRow("shortlisted", &past)
	state := useScriptedDB(t, []*queryStep{
		{kind: kindQuery, pattern: applicationLockPattern, columns: columns, rows: [][]driver.Value{row}},
	})

	w := httptest.NewRecorder()
	c := newAuthedContext(t, w, "dev-1", "developer")
	c.Request = jsonRequest(http.MethodPost, "/api/v1/submissions", createSubmissionBody)

	CreateSubmission(c)

	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", w.Code, w.Body.String())
	}
	body := decodeBody(t, w)
	if body["kind"] != "deadline_passed" {
		t.Fatalf("expected deadline_passed kind, got %v", body["kind"])
	}
	if err := state.verifyComplete(); err != nil {
		t.Fatal(err)
	}
}

func TestCreateSubmissionByOtherDeveloperIsForbidden(t *testing.T) {
	columns, row := lockedApplicationRow("shortlisted", nil)
	state := useScriptedDB(t, []*queryStep{
		{kind: kindQuery, pattern: applicationLockPattern, columns: columns, rows: [][]driver.Value{row}},
	})

	w := httptest.NewRecorder()
	c := newAuthedContext(t, w, "dev-2", "developer")
	c.Request = jsonRequest(http.MethodPost, "/api/v1/submissions", createSubmissionBody)

	CreateSubmission(c)

	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d: %s", w.Code, w.Body.String())
	}
	if err := state.verifyComplete(); err != nil {
		t.Fatal(err)
	}
}

func submissionLockRow(id, applicationID int64, userID, status string, version int64) ([]string, []driver.Value) {
	columns := []string{"submission_id", "application_id", "project_id", "user_id", "status", "version"}
	return columns, []driver.Value{id, applicationID, int64(7), userID, status, version}
}

func TestSelectWinnerAwardsAndCompensates(t *testing.T) {
	winnerColumns, winnerRow := submissionLockRow(9, 42, "dev-1", "submitted", 1)
	loserColumns, loserRow := submissionLockRow(10, 43, "dev-2", "rejected", 2)

	state := useScriptedDB(t, []*queryStep{
		{kind: kindQuery, pattern: submissionByIDPattern, columns: winnerColumns, rows: [][]driver.Value{winnerRow}},
		{kind: kindQuery, pattern: projectLockPattern,
			columns: []string{"project_id", "company_id", "status", "version"},
			rows:    [][]driver.Value{{int64(7), "company-1", "in-progress", int64(1)}}},
		// Re-read under the project lock.
		{kind: kindQuery, pattern: submissionLockPattern, columns: winnerColumns, rows: [][]driver.Value{winnerRow}},
		{kind: kindQuery, pattern: settingsQueryPattern,
			columns: []string{"settings_id", "project_id", "participation_compensation", "winner_compensation", "auto_approve_participation"},
			rows:    [][]driver.Value{{int64(1), int64(7), 25.0, 500.0, false}}},
		// Winner submission flips to selected with its compensation mirror.
		{kind: kindExec, pattern: submissionUpdatePattern, result: scriptedResult{rowsAffected: 1}},
		// Winner compensation row, created directly at approved.
		{kind: kindExec, pattern: compensationInsertPattern, result: scriptedResult{lastInsertID: 100, rowsAffected: 1}},
		{kind: kindQuery, pattern: applicationLockPattern,
			columns: []string{"application_id", "project_id", "user_id", "status", "version"},
			rows:    [][]driver.Value{{int64(42), int64(7), "dev-1", "shortlisted", int64(2)}}},
		{kind: kindExec, pattern: applicationUpdatePattern, result: scriptedResult{rowsAffected: 1}},
		// Sibling submissions are rejected in one sweep.
		{kind: kindExec, pattern: submissionUpdatePattern, result: scriptedResult{rowsAffected: 1}},
		{kind: kindQuery, pattern: loserQueryPattern, columns: loserColumns, rows: [][]driver.Value{loserRow}},
		// Participation compensation for the rejected sibling.
		{kind: kindExec, pattern: compensationInsertPattern, result: scriptedResult{lastInsertID: 101, rowsAffected: 1}},
	})

	w := httptest.NewRecorder()
	c := newAuthedContext(t, w, "company-1", "company")
	c.Params = gin.Params{{Key: "id", Value: "9"}}
	c.Request = jsonRequest(http.MethodPost, "/api/v1/submissions/9/select-winner", "")

	SelectWinner(c)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	body := decodeBody(t, w)
	submission, _ := body["submission"].(map[string]interface{})
	if submission["status"] != "selected" {
		t.Fatalf("expected selected status, got %v", submission["status"])
	}
	if submission["compensation_amount"] != float64(500) {
		t.Fatalf("expected winner compensation 500, got %v", submission["compensation_amount"])
	}
	if err := state.verifyComplete(); err != nil {
		t.Fatal(err)
	}
}

func TestSelectWinnerOnJudgedSubmissionFails(t *testing.T) {
	columns, row := submissionLockRow(9, 42, "dev-1", "selected", 2)
	state := useScriptedDB(t, []*queryStep{
		{kind: kindQuery, pattern: submissionByIDPattern, columns: columns, rows: [][]driver.Value{row}},
		{kind: kindQuery, pattern: projectLockPattern,
			columns: []string{"project_id", "company_id", "status", "version"},
			rows:    [][]driver.Value{{int64(7), "company-1", "in-progress", int64(1)}}},
		{kind: kindQuery, pattern: submissionLockPattern, columns: columns, rows: [][]driver.Value{row}},
		// No further steps: a judged submission must not re-run any of
		// the award side effects.
	})

	w := httptest.NewRecorder()
	c := newAuthedContext(t, w, "company-1", "company")
	c.Params = gin.Params{{Key: "id", Value: "9"}}
	c.Request = jsonRequest(http.MethodPost, "/api/v1/submissions/9/select-winner", "")

	SelectWinner(c)

	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", w.Code, w.Body.String())
	}
	body := decodeBody(t, w)
	if body["kind"] != "invalid_state" {
		t.Fatalf("expected invalid_state kind, got %v", body["kind"])
	}
	if err := state.verifyComplete(); err != nil {
		t.Fatal(err)
	}
}

func TestCreateSubmissionDuplicateConflict(t *testing.T) {
	columns, row := lockedApplicationRow("shortlisted", nil)
	state := useScriptedDB(t, []*queryStep{
		{kind: kindQuery, pattern: applicationLockPattern, columns: columns, rows: [][]driver.Value{row}},
		// A submission already exists for this application.
		{kind: kindQuery, pattern: submissionByAppPattern,
			columns: []string{"submission_id", "application_id", "status"},
			rows:    [][]driver.Value{{int64(11), int64(42), "submitted"}}},
	})

	w := httptest.NewRecorder()
	c := newAuthedContext(t, w, "dev-1", "developer")
	c.Request = jsonRequest(http.MethodPost, "/api/v1/submissions", createSubmissionBody)

	CreateSubmission(c)

	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", w.Code, w.Body.String())
	}
	body := decodeBody(t, w)
	if body["kind"] != "conflict" {
		t.Fatalf("expected conflict kind, got %v", body["kind"])
	}
	if err := state.verifyComplete(); err != nil {
		t.Fatal(err)
	}
}

func TestUpdateSubmissionPatchesOnlyGivenFields(t *testing.T) {
	state := useScriptedDB(t, []*queryStep{
		{kind: kindQuery, pattern: submissionByIDPattern,
			columns: []string{"submission_id", "application_id", "project_id", "user_id", "title", "description", "status", "deadline", "version"},
			rows:    [][]driver.Value{{int64(9), int64(42), int64(7), "dev-1", "Old title", "Old description", "submitted", nil, int64(2)}}},
		// The SET clause must only touch title plus the bookkeeping
		// columns; description and submission_links stay as they are.
		{kind: kindExec, pattern: titleOnlyUpdatePattern, result: scriptedResult{rowsAffected: 1}},
	})

	w := httptest.NewRecorder()
	c := newAuthedContext(t, w, "dev-1", "developer")
	c.Params = gin.Params{{Key: "id", Value: "9"}}
	c.Request = jsonRequest(http.MethodPut, "/api/v1/submissions/9", `{"title": "New title"}`)

	UpdateSubmission(c)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if err := state.verifyComplete(); err != nil {
		t.Fatal(err)
	}
}

func TestUpdateSubmissionRejectsJudged(t *testing.T) {
	state := useScriptedDB(t, []*queryStep{
		{kind: kindQuery, pattern: submissionByIDPattern,
			columns: []string{"submission_id", "application_id", "project_id", "user_id", "status", "deadline", "version"},
			rows:    [][]driver.Value{{int64(9), int64(42), int64(7), "dev-1", "rejected", nil, int64(2)}}},
	})

	w := httptest.NewRecorder()
	c := newAuthedContext(t, w, "dev-1", "developer")
	c.Params = gin.Params{{Key: "id", Value: "9"}}
	c.Request = jsonRequest(http.MethodPut, "/api/v1/submissions/9", `{"title": "New title"}`)

	UpdateSubmission(c)

	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", w.Code, w.Body.String())
	}
	body := decodeBody(t, w)
	if body["kind"] != "invalid_state" {
		t.Fatalf("expected invalid_state kind, got %v", body["kind"])
	}
	if err := state.verifyComplete(); err != nil {
		t.Fatal(err)
	}
}

func TestSelectWinnerLoserSeesJudgedStateAfterWait(t *testing.T) {
	columns, openRow := submissionLockRow(9, 42, "dev-1", "submitted", 1)
	_, judgedRow := submissionLockRow(9, 42, "dev-1", "selected", 2)

	state := useScriptedDB(t, []*queryStep{
		{kind: kindQuery, pattern: submissionByIDPattern, columns: columns, rows: [][]driver.Value{openRow}},
		{kind: kindQuery, pattern: projectLockPattern,
			columns: []string{"project_id", "company_id", "status", "version"},
			rows:    [][]driver.Value{{int64(7), "company-1", "in-progress", int64(1)}}},
		// While waiting for the project lock another selection committed;
		// the re-read sees the judged row and the transition fails.
		{kind: kindQuery, pattern: submissionLockPattern, columns: columns, rows: [][]driver.Value{judgedRow}},
	})

	w := httptest.NewRecorder()
	c := newAuthedContext(t, w, "company-1", "company")
	c.Params = gin.Params{{Key: "id", Value: "9"}}
	c.Request = jsonRequest(http.MethodPost, "/api/v1/submissions/9/select-winner", "")

	SelectWinner(c)

	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", w.Code, w.Body.String())
	}
	body := decodeBody(t, w)
	if body["kind"] != "invalid_state" {
		t.Fatalf("expected invalid_state kind, got %v", body["kind"])
	}
	if err := state.verifyComplete(); err != nil {
		t.Fatal(err)
	}
}

func TestSelectWinnerCreatesDefaultSettings(t *testing.T) {
	winnerColumns, winnerRow := submissionLockRow(9, 42, "dev-1", "submitted", 1)
	loserColumns, loserRow := submissionLockRow(10, 43, "dev-2", "rejected", 2)

	state := useScriptedDB(t, []*queryStep{
		{kind: kindQuery, pattern: submissionByIDPattern, columns: winnerColumns, rows: [][]driver.Value{winnerRow}},
		{kind: kindQuery, pattern: projectLockPattern,
			columns: []string{"project_id", "company_id", "status", "version"},
			rows:    [][]driver.Value{{int64(7), "company-1", "in-progress", int64(1)}}},
		{kind: kindQuery, pattern: submissionLockPattern, columns: winnerColumns, rows: [][]driver.Value{winnerRow}},
		// No settings row yet: the defaults are created on first read,
		// participation 50, winner unset, no auto-approve.
		{kind: kindQuery, pattern: settingsQueryPattern,
			columns: []string{"settings_id", "project_id", "participation_compensation", "winner_compensation", "auto_approve_participation"},
			rows:    [][]driver.Value{}},
		{kind: kindExec, pattern: settingsInsertPattern,
			args:   []driver.Value{int64(7), 50.0, 0.0, false, anyArg, anyArg},
			result: scriptedResult{lastInsertID: 1, rowsAffected: 1}},
		{kind: kindExec, pattern: submissionUpdatePattern, result: scriptedResult{rowsAffected: 1}},
		// Winner compensation is 0, so no winner row is inserted.
		{kind: kindQuery, pattern: applicationLockPattern,
			columns: []string{"application_id", "project_id", "user_id", "status", "version"},
			rows:    [][]driver.Value{{int64(42), int64(7), "dev-1", "shortlisted", int64(2)}}},
		{kind: kindExec, pattern: applicationUpdatePattern, result: scriptedResult{rowsAffected: 1}},
		// The sibling sweep applies the lazily created default of 50.
		{kind: kindExec, pattern: submissionUpdatePattern,
			args:   []driver.Value{50.0, "pending", "participation", "rejected", anyArg, int64(7), int64(9)},
			result: scriptedResult{rowsAffected: 1}},
		{kind: kindQuery, pattern: loserQueryPattern, columns: loserColumns, rows: [][]driver.Value{loserRow}},
		{kind: kindExec, pattern: compensationInsertPattern,
			args: []driver.Value{int64(10), "dev-2", int64(7), 50.0, "participation", "pending",
				nil, nil, nil, nil, int64(1), anyArg, anyArg},
			result: scriptedResult{lastInsertID: 101, rowsAffected: 1}},
	})

	w := httptest.NewRecorder()
	c := newAuthedContext(t, w, "company-1", "company")
	c.Params = gin.Params{{Key: "id", Value: "9"}}
	c.Request = jsonRequest(http.MethodPost, "/api/v1/submissions/9/select-winner", "")

	SelectWinner(c)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	body := decodeBody(t, w)
	submission, _ := body["submission"].(map[string]interface{})
	if submission["status"] != "selected" {
		t.Fatalf("expected selected status, got %v", submission["status"])
	}
	if err := state.verifyComplete(); err != nil {
		t.Fatal(err)
	}
}

func TestRateSubmissionOnlyOnce(t *testing.T) {
	state := useScriptedDB(t, []*queryStep{
		{kind: kindQuery, pattern: regexp.MustCompile("SELECT .* FROM .submissions. WHERE submission_id"),
			columns: []string{"submission_id", "application_id", "project_id", "user_id", "status", "rating", "version"},
			rows:    [][]driver.Value{{int64(9), int64(42), int64(7), "dev-1", "selected", int64(4), int64(3)}}},
		{kind: kindQuery, pattern: projectPreloadPattern,
			columns: []string{"project_id", "company_id"},
			rows:    [][]driver.Value{{int64(7), "company-1"}}},
	})

	w := httptest.NewRecorder()
	c := newAuthedContext(t, w, "company-1", "company")
	c.Params = gin.Params{{Key: "id", Value: "9"}}
	c.Request = jsonRequest(http.MethodPost, "/api/v1/submissions/9/rate", `{"rating": 5}`)

	RateSubmission(c)

	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", w.Code, w.Body.String())
	}
	body := decodeBody(t, w)
	if body["kind"] != "conflict" {
		t.Fatalf("expected conflict kind, got %v", body["kind"])
	}
	if err := state.verifyComplete(); err != nil {
		t.Fatal(err)
	}
}
