package handlers

import (
	"net/http"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (suite *HandlersTestSuite) TestRegisterEndpoint() {
	w := suite.doJSON("POST", "/api/v1/auth/register", map[string]interface{}{
		"email":    "newuser@example.com",
		"username": "newuser",
		"password": "hunter2secret",
	}, nil)
	require.Equal(suite.T(), http.StatusCreated, w.Code, w.Body.String())

	body := decodeJSON(suite.T(), w)
	assert.NotEmpty(suite.T(), body["token"])
	user := body["user"].(map[string]interface{})
	assert.Equal(suite.T(), "newuser", user["username"])
	_, hasHash := user["password_hash"]
	assert.False(suite.T(), hasHash)
}

func (suite *HandlersTestSuite) TestRegisterValidation() {
	// Short password
	w := suite.doJSON("POST", "/api/v1/auth/register", map[string]interface{}{
		"email":    "short@example.com",
		"username": "shorty",
		"password": "abc",
	}, nil)
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)

	// Invalid email
	w = suite.doJSON("POST", "/api/v1/auth/register", map[string]interface{}{
		"email":    "not-an-email",
		"username": "someone",
		"password": "hunter2secret",
	}, nil)
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
}

func (suite *HandlersTestSuite) TestRegisterDuplicateEmail() {
	payload := map[string]interface{}{
		"email":    "taken@example.com",
		"username": "original",
		"password": "hunter2secret",
	}
	w := suite.doJSON("POST", "/api/v1/auth/register", payload, nil)
	require.Equal(suite.T(), http.StatusCreated, w.Code)

	payload["username"] = "impostor"
	w = suite.doJSON("POST", "/api/v1/auth/register", payload, nil)
	assert.Equal(suite.T(), http.StatusConflict, w.Code)
}

func (suite *HandlersTestSuite) TestLoginEndpoint() {
	w := suite.doJSON("POST", "/api/v1/auth/register", map[string]interface{}{
		"email":    "login@example.com",
		"username": "loginuser",
		"password": "hunter2secret",
	}, nil)
	require.Equal(suite.T(), http.StatusCreated, w.Code)

	w = suite.doJSON("POST", "/api/v1/auth/login", map[string]interface{}{
		"email":    "login@example.com",
		"password": "hunter2secret",
	}, nil)
	require.Equal(suite.T(), http.StatusOK, w.Code, w.Body.String())

	body := decodeJSON(suite.T(), w)
	assert.NotEmpty(suite.T(), body["token"])

	// Wrong password
	w = suite.doJSON("POST", "/api/v1/auth/login", map[string]interface{}{
		"email":    "login@example.com",
		"password": "wrong-password",
	}, nil)
	assert.Equal(suite.T(), http.StatusUnauthorized, w.Code)
}

func (suite *HandlersTestSuite) TestMeEndpoint() {
	w := suite.doJSON("GET", "/api/v1/auth/me", nil, suite.alice)
	require.Equal(suite.T(), http.StatusOK, w.Code)

	body := decodeJSON(suite.T(), w)
	assert.Equal(suite.T(), "alice", body["username"])

	w = suite.doJSON("GET", "/api/v1/auth/me", nil, nil)
	assert.Equal(suite.T(), http.StatusUnauthorized, w.Code)
}
