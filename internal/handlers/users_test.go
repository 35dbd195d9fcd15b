package handlers

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"

	"github.com/snapgrove/backend/internal/database"
	"github.com/snapgrove/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (suite *HandlersTestSuite) TestUpdateProfile() {
	w := suite.doJSON("PUT", "/api/v1/users/me", map[string]interface{}{
		"display_name": "Alice in Chains",
		"bio":          "photographer",
	}, suite.alice)
	require.Equal(suite.T(), http.StatusOK, w.Code, w.Body.String())

	var reloaded models.User
	require.NoError(suite.T(), database.DB.First(&reloaded, "id = ?", suite.alice.ID).Error)
	assert.Equal(suite.T(), "Alice in Chains", reloaded.DisplayName)
	assert.Equal(suite.T(), "photographer", reloaded.Bio)
}

func (suite *HandlersTestSuite) TestUpdateProfileEmptyDisplayName() {
	w := suite.doJSON("PUT", "/api/v1/users/me", map[string]interface{}{
		"display_name": "",
	}, suite.alice)
	assert.Equal(suite.T(), http.StatusUnprocessableEntity, w.Code)
}

func (suite *HandlersTestSuite) TestUploadAvatar() {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("image", "face.png")
	require.NoError(suite.T(), err)
	_, err = part.Write([]byte("fake-png-bytes"))
	require.NoError(suite.T(), err)
	require.NoError(suite.T(), writer.Close())

	req := httptest.NewRequest("POST", "/api/v1/users/me/avatar", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("X-User-ID", suite.alice.ID)

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	require.Equal(suite.T(), http.StatusOK, w.Code, w.Body.String())

	var reloaded models.User
	require.NoError(suite.T(), database.DB.First(&reloaded, "id = ?", suite.alice.ID).Error)
	assert.Contains(suite.T(), reloaded.AvatarURL, "avatars/"+suite.alice.ID)
}

func (suite *HandlersTestSuite) TestListUserPhotos() {
	suite.createTestPhoto(suite.alice, "public-one")
	suite.createTestPhoto(suite.alice, "public-two")
	private := suite.createTestPhoto(suite.alice, "private")
	require.NoError(suite.T(), database.DB.Model(private).Update("is_public", false).Error)
	suite.createTestPhoto(suite.bob, "not-alices")

	// Strangers see only public photos
	w := suite.doJSON("GET", "/api/v1/users/"+suite.alice.ID+"/photos", nil, suite.bob)
	require.Equal(suite.T(), http.StatusOK, w.Code)
	body := decodeJSON(suite.T(), w)
	assert.EqualValues(suite.T(), 2, body["total"])

	// The owner also sees private photos
	w = suite.doJSON("GET", "/api/v1/users/"+suite.alice.ID+"/photos", nil, suite.alice)
	body = decodeJSON(suite.T(), w)
	assert.EqualValues(suite.T(), 3, body["total"])
}
