package server

import (
	"net/http"
	"testing"

	"terrascore/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuestionnaireEndpoints(t *testing.T) {
	srv, app, db := newTestServer(t)
	admin := createUser(t, db, "root_admin", "root@terrascore.io", "admin-password", models.RoleAdmin)
	user := createUser(t, db, "andes_ops", "ops@andescopper.cl", "secret123", models.RoleUser)
	adminToken := tokenFor(t, srv, admin)
	userToken := tokenFor(t, srv, user)

	// Only admins create questionnaires.
	create := map[string]any{"title": "GRI Core 2026", "standard": "GRI", "version": "1.0"}
	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/api/questionnaires/", create, userToken))
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, err = app.Test(jsonRequest(t, http.MethodPost, "/api/questionnaires/", create, adminToken))
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	// Any authenticated user can read.
	resp, err = app.Test(jsonRequest(t, http.MethodGet, "/api/questionnaires/", nil, userToken))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var listBody struct {
		Questionnaires []models.Questionnaire `json:"questionnaires"`
	}
	decodeBody(t, resp, &listBody)
	require.Len(t, listBody.Questionnaires, 1)
	assert.Equal(t, "GRI Core 2026", listBody.Questionnaires[0].Title)

	// Attach a question, then deletion of the questionnaire is refused.
	question := map[string]any{
		"questionnaire_id": listBody.Questionnaires[0].ID,
		"text":             "Does the site report Scope 1 emissions?",
		"type":             "multiple_choice",
		"weight":           2.0,
		"category":         "environment",
		"options":          []string{"Yes", "Partially", "No"},
	}
	resp, err = app.Test(jsonRequest(t, http.MethodPost, "/api/questions/", question, adminToken))
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, err = app.Test(jsonRequest(t, http.MethodDelete, "/api/questionnaires/1", nil, adminToken))
	require.NoError(t, err)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	// The public preview exposes the standard's questions without auth.
	resp, err = app.Test(jsonRequest(t, http.MethodGet, "/api/questions/public?standard=GRI", nil, ""))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var publicBody struct {
		Questions []models.Question `json:"questions"`
	}
	decodeBody(t, resp, &publicBody)
	require.Len(t, publicBody.Questions, 1)
}

func TestQuestionEndpoints(t *testing.T) {
	srv, app, db := newTestServer(t)
	admin := createUser(t, db, "root_admin", "root@terrascore.io", "admin-password", models.RoleAdmin)
	adminToken := tokenFor(t, srv, admin)

	// Bank question without a questionnaire.
	create := map[string]any{
		"text":     "Is there a community grievance mechanism?",
		"type":     "essay",
		"weight":   1.5,
		"category": "social",
	}
	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/api/questions/", create, adminToken))
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	// Invalid type is refused.
	bad := map[string]any{"text": "x?", "type": "checkbox", "weight": 1, "category": "social"}
	resp, err = app.Test(jsonRequest(t, http.MethodPost, "/api/questions/", bad, adminToken))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Categories and stats reflect the bank.
	resp, err = app.Test(jsonRequest(t, http.MethodGet, "/api/questions/categories", nil, adminToken))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var catBody struct {
		Categories []string `json:"categories"`
	}
	decodeBody(t, resp, &catBody)
	assert.Equal(t, []string{"social"}, catBody.Categories)

	resp, err = app.Test(jsonRequest(t, http.MethodGet, "/api/questions/stats", nil, adminToken))
	require.NoError(t, err)
	var statsBody struct {
		Stats models.QuestionStats `json:"stats"`
	}
	decodeBody(t, resp, &statsBody)
	assert.Equal(t, int64(1), statsBody.Stats.Total)
	assert.Equal(t, int64(1), statsBody.Stats.Essay)
}
