package handlers

import (
	"net/http"

	"github.com/snapgrove/backend/internal/database"
	"github.com/snapgrove/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (suite *HandlersTestSuite) TestUploadPhoto() {
	w := suite.doUpload(suite.alice, "sunset.jpg", "Sunset over the bay")
	require.Equal(suite.T(), http.StatusCreated, w.Code, w.Body.String())

	body := decodeJSON(suite.T(), w)
	assert.Equal(suite.T(), "Sunset over the bay", body["title"])
	assert.Equal(suite.T(), suite.alice.ID, body["user_id"])
	assert.NotEmpty(suite.T(), body["image_url"])
	assert.Equal(suite.T(), 1, suite.uploader.uploads)

	var owner models.User
	require.NoError(suite.T(), database.DB.First(&owner, "id = ?", suite.alice.ID).Error)
	assert.Equal(suite.T(), 1, owner.PhotoCount)
}

func (suite *HandlersTestSuite) TestUploadPhotoRequiresTitle() {
	w := suite.doUpload(suite.alice, "sunset.jpg", "")
	assert.Equal(suite.T(), http.StatusUnprocessableEntity, w.Code)
	assert.Equal(suite.T(), 0, suite.uploader.uploads)
}

func (suite *HandlersTestSuite) TestUploadPhotoRequiresAuth() {
	w := suite.doUpload(nil, "sunset.jpg", "Sunset")
	assert.Equal(suite.T(), http.StatusUnauthorized, w.Code)
}

func (suite *HandlersTestSuite) TestUploadPhotoStorageFailure() {
	suite.uploader.failPut = true
	w := suite.doUpload(suite.alice, "sunset.jpg", "Sunset")
	assert.Equal(suite.T(), http.StatusInternalServerError, w.Code)

	var count int64
	database.DB.Model(&models.Photo{}).Count(&count)
	assert.Zero(suite.T(), count)
}

func (suite *HandlersTestSuite) TestListPhotos() {
	suite.createTestPhoto(suite.alice, "first")
	suite.createTestPhoto(suite.bob, "second")

	private := suite.createTestPhoto(suite.alice, "hidden")
	require.NoError(suite.T(), database.DB.Model(private).Update("is_public", false).Error)

	w := suite.doJSON("GET", "/api/v1/photos", nil, nil)
	require.Equal(suite.T(), http.StatusOK, w.Code)

	body := decodeJSON(suite.T(), w)
	assert.EqualValues(suite.T(), 2, body["total"])
	assert.Len(suite.T(), body["photos"], 2)
}

func (suite *HandlersTestSuite) TestListPhotosByCategory() {
	suite.createTestPhoto(suite.alice, "forest")
	urban := suite.createTestPhoto(suite.bob, "downtown")
	require.NoError(suite.T(), database.DB.Model(urban).Update("category", "urban").Error)

	w := suite.doJSON("GET", "/api/v1/photos?category=urban", nil, nil)
	require.Equal(suite.T(), http.StatusOK, w.Code)

	body := decodeJSON(suite.T(), w)
	assert.EqualValues(suite.T(), 1, body["total"])
}

func (suite *HandlersTestSuite) TestListPhotosPopularSort() {
	a := suite.createTestPhoto(suite.alice, "quiet")
	b := suite.createTestPhoto(suite.bob, "famous")
	require.NoError(suite.T(), database.DB.Model(b).Update("favorite_count", 10).Error)
	require.NoError(suite.T(), database.DB.Model(a).Update("favorite_count", 2).Error)

	w := suite.doJSON("GET", "/api/v1/photos?sort=popular", nil, nil)
	require.Equal(suite.T(), http.StatusOK, w.Code)

	body := decodeJSON(suite.T(), w)
	photos := body["photos"].([]interface{})
	require.Len(suite.T(), photos, 2)
	first := photos[0].(map[string]interface{})
	assert.Equal(suite.T(), "famous", first["title"])
}

func (suite *HandlersTestSuite) TestGetPhotoBumpsViewCount() {
	photo := suite.createTestPhoto(suite.alice, "viewed")

	w := suite.doJSON("GET", "/api/v1/photos/"+photo.ID, nil, nil)
	require.Equal(suite.T(), http.StatusOK, w.Code)

	var reloaded models.Photo
	require.NoError(suite.T(), database.DB.First(&reloaded, "id = ?", photo.ID).Error)
	assert.Equal(suite.T(), 1, reloaded.ViewCount)
}

func (suite *HandlersTestSuite) TestGetPhotoPrivateHiddenFromOthers() {
	photo := suite.createTestPhoto(suite.alice, "private")
	require.NoError(suite.T(), database.DB.Model(photo).Update("is_public", false).Error)

	// Stranger and anonymous get 404
	w := suite.doJSON("GET", "/api/v1/photos/"+photo.ID, nil, suite.bob)
	assert.Equal(suite.T(), http.StatusNotFound, w.Code)
	w = suite.doJSON("GET", "/api/v1/photos/"+photo.ID, nil, nil)
	assert.Equal(suite.T(), http.StatusNotFound, w.Code)

	// Owner can still see it
	w = suite.doJSON("GET", "/api/v1/photos/"+photo.ID, nil, suite.alice)
	assert.Equal(suite.T(), http.StatusOK, w.Code)
}

func (suite *HandlersTestSuite) TestGetPhotoNotFound() {
	w := suite.doJSON("GET", "/api/v1/photos/00000000-0000-0000-0000-000000000000", nil, nil)
	assert.Equal(suite.T(), http.StatusNotFound, w.Code)
}

func (suite *HandlersTestSuite) TestUpdatePhoto() {
	photo := suite.createTestPhoto(suite.alice, "before")

	w := suite.doJSON("PATCH", "/api/v1/photos/"+photo.ID, map[string]interface{}{
		"title":     "after",
		"is_public": false,
	}, suite.alice)
	require.Equal(suite.T(), http.StatusOK, w.Code, w.Body.String())

	var reloaded models.Photo
	require.NoError(suite.T(), database.DB.First(&reloaded, "id = ?", photo.ID).Error)
	assert.Equal(suite.T(), "after", reloaded.Title)
	assert.False(suite.T(), reloaded.IsPublic)
}

func (suite *HandlersTestSuite) TestUpdatePhotoNotOwner() {
	photo := suite.createTestPhoto(suite.alice, "mine")

	w := suite.doJSON("PATCH", "/api/v1/photos/"+photo.ID, map[string]interface{}{
		"title": "stolen",
	}, suite.bob)
	assert.Equal(suite.T(), http.StatusForbidden, w.Code)
}

func (suite *HandlersTestSuite) TestDeletePhoto() {
	photo := suite.createTestPhoto(suite.alice, "doomed")

	w := suite.doJSON("DELETE", "/api/v1/photos/"+photo.ID, nil, suite.alice)
	require.Equal(suite.T(), http.StatusOK, w.Code)

	var count int64
	database.DB.Model(&models.Photo{}).Where("id = ?", photo.ID).Count(&count)
	assert.Zero(suite.T(), count)
	assert.Contains(suite.T(), suite.uploader.deletes, photo.StorageKey)
}

func (suite *HandlersTestSuite) TestDeletePhotoNotOwner() {
	photo := suite.createTestPhoto(suite.alice, "protected")

	w := suite.doJSON("DELETE", "/api/v1/photos/"+photo.ID, nil, suite.bob)
	assert.Equal(suite.T(), http.StatusForbidden, w.Code)
	assert.Empty(suite.T(), suite.uploader.deletes)
}
