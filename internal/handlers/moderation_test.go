package handlers

import (
	"net/http"

	"github.com/snapgrove/backend/internal/database"
	"github.com/snapgrove/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (suite *HandlersTestSuite) fileTestReport(reporter *models.User, targetType, targetID string) *models.Report {
	w := suite.doJSON("POST", "/api/v1/reports", map[string]interface{}{
		"target_type": targetType,
		"target_id":   targetID,
		"reason":      "inappropriate content",
	}, reporter)
	require.Equal(suite.T(), http.StatusCreated, w.Code, w.Body.String())

	body := decodeJSON(suite.T(), w)
	var report models.Report
	require.NoError(suite.T(), database.DB.First(&report, "id = ?", body["id"]).Error)
	return &report
}

func (suite *HandlersTestSuite) TestCreateReport() {
	photo := suite.createTestPhoto(suite.alice, "offensive")

	report := suite.fileTestReport(suite.bob, "photo", photo.ID)
	assert.Equal(suite.T(), models.ReportStatusPending, report.Status)
	assert.Equal(suite.T(), suite.bob.ID, report.ReporterID)
}

func (suite *HandlersTestSuite) TestCreateReportUnknownTarget() {
	w := suite.doJSON("POST", "/api/v1/reports", map[string]interface{}{
		"target_type": "photo",
		"target_id":   "00000000-0000-0000-0000-000000000000",
		"reason":      "spam",
	}, suite.bob)
	assert.Equal(suite.T(), http.StatusNotFound, w.Code)
}

func (suite *HandlersTestSuite) TestCreateReportBadTargetType() {
	w := suite.doJSON("POST", "/api/v1/reports", map[string]interface{}{
		"target_type": "comment",
		"target_id":   suite.alice.ID,
		"reason":      "spam",
	}, suite.bob)
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
}

func (suite *HandlersTestSuite) TestDuplicatePendingReportConflicts() {
	photo := suite.createTestPhoto(suite.alice, "reported")
	suite.fileTestReport(suite.bob, "photo", photo.ID)

	w := suite.doJSON("POST", "/api/v1/reports", map[string]interface{}{
		"target_type": "photo",
		"target_id":   photo.ID,
		"reason":      "still inappropriate",
	}, suite.bob)
	assert.Equal(suite.T(), http.StatusConflict, w.Code)
}

func (suite *HandlersTestSuite) TestAdminListReports() {
	photo := suite.createTestPhoto(suite.alice, "bad")
	suite.fileTestReport(suite.bob, "photo", photo.ID)

	w := suite.doJSON("GET", "/api/v1/admin/reports", nil, suite.admin)
	require.Equal(suite.T(), http.StatusOK, w.Code)

	body := decodeJSON(suite.T(), w)
	assert.EqualValues(suite.T(), 1, body["total"])

	// Non-admin is forbidden
	w = suite.doJSON("GET", "/api/v1/admin/reports", nil, suite.bob)
	assert.Equal(suite.T(), http.StatusForbidden, w.Code)
}

func (suite *HandlersTestSuite) TestAdminResolveReport() {
	photo := suite.createTestPhoto(suite.alice, "questionable")
	report := suite.fileTestReport(suite.bob, "photo", photo.ID)

	w := suite.doJSON("POST", "/api/v1/admin/reports/"+report.ID+"/resolve", map[string]interface{}{
		"status": "resolved",
	}, suite.admin)
	require.Equal(suite.T(), http.StatusOK, w.Code, w.Body.String())

	var reloaded models.Report
	require.NoError(suite.T(), database.DB.First(&reloaded, "id = ?", report.ID).Error)
	assert.Equal(suite.T(), models.ReportStatusResolved, reloaded.Status)
	require.NotNil(suite.T(), reloaded.ResolvedBy)
	assert.Equal(suite.T(), suite.admin.ID, *reloaded.ResolvedBy)
	assert.NotNil(suite.T(), reloaded.ResolvedAt)

	// Reporter is notified
	var notification models.Notification
	require.NoError(suite.T(), database.DB.
		Where("user_id = ? AND type = ?", suite.bob.ID, models.NotificationReportResolved).
		First(&notification).Error)

	// Resolving again conflicts
	w = suite.doJSON("POST", "/api/v1/admin/reports/"+report.ID+"/resolve", map[string]interface{}{
		"status": "dismissed",
	}, suite.admin)
	assert.Equal(suite.T(), http.StatusConflict, w.Code)
}

func (suite *HandlersTestSuite) TestAdminRemovePhoto() {
	photo := suite.createTestPhoto(suite.alice, "removed")

	w := suite.doJSON("POST", "/api/v1/admin/photos/"+photo.ID+"/remove", nil, suite.admin)
	require.Equal(suite.T(), http.StatusOK, w.Code)

	var reloaded models.Photo
	require.NoError(suite.T(), database.DB.First(&reloaded, "id = ?", photo.ID).Error)
	assert.Equal(suite.T(), models.PhotoStatusRemoved, reloaded.ModerationStatus)

	// Removed photos disappear from browse and direct fetch
	listResp := suite.doJSON("GET", "/api/v1/photos", nil, nil)
	body := decodeJSON(suite.T(), listResp)
	assert.EqualValues(suite.T(), 0, body["total"])

	getResp := suite.doJSON("GET", "/api/v1/photos/"+photo.ID, nil, nil)
	assert.Equal(suite.T(), http.StatusNotFound, getResp.Code)

	// Owner is notified
	var notification models.Notification
	require.NoError(suite.T(), database.DB.
		Where("user_id = ? AND type = ?", suite.alice.ID, models.NotificationPhotoRemoved).
		First(&notification).Error)
}

func (suite *HandlersTestSuite) TestAdminBanUser() {
	w := suite.doJSON("POST", "/api/v1/admin/users/"+suite.bob.ID+"/ban", map[string]interface{}{
		"banned": true,
	}, suite.admin)
	require.Equal(suite.T(), http.StatusOK, w.Code, w.Body.String())

	var bob models.User
	require.NoError(suite.T(), database.DB.First(&bob, "id = ?", suite.bob.ID).Error)
	assert.True(suite.T(), bob.IsBanned)

	// Unban
	w = suite.doJSON("POST", "/api/v1/admin/users/"+suite.bob.ID+"/ban", map[string]interface{}{
		"banned": false,
	}, suite.admin)
	require.Equal(suite.T(), http.StatusOK, w.Code)
	require.NoError(suite.T(), database.DB.First(&bob, "id = ?", suite.bob.ID).Error)
	assert.False(suite.T(), bob.IsBanned)
}

func (suite *HandlersTestSuite) TestAdminCannotBanAdminOrSelf() {
	w := suite.doJSON("POST", "/api/v1/admin/users/"+suite.admin.ID+"/ban", map[string]interface{}{
		"banned": true,
	}, suite.admin)
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)

	other := suite.createTestUser("admin2")
	require.NoError(suite.T(), database.DB.Model(other).Update("is_admin", true).Error)

	w = suite.doJSON("POST", "/api/v1/admin/users/"+other.ID+"/ban", map[string]interface{}{
		"banned": true,
	}, suite.admin)
	assert.Equal(suite.T(), http.StatusForbidden, w.Code)
}

func (suite *HandlersTestSuite) TestNotifications() {
	photo := suite.createTestPhoto(suite.alice, "popular")
	suite.doJSON("POST", "/api/v1/photos/"+photo.ID+"/favorite", nil, suite.bob)
	suite.doJSON("POST", "/api/v1/users/"+suite.alice.ID+"/follow", nil, suite.admin)

	// Counts before reading
	w := suite.doJSON("GET", "/api/v1/notifications/counts", nil, suite.alice)
	require.Equal(suite.T(), http.StatusOK, w.Code)
	body := decodeJSON(suite.T(), w)
	assert.EqualValues(suite.T(), 2, body["unread"])
	assert.EqualValues(suite.T(), 2, body["unseen"])

	// Listing marks the page as seen
	w = suite.doJSON("GET", "/api/v1/notifications", nil, suite.alice)
	require.Equal(suite.T(), http.StatusOK, w.Code)
	body = decodeJSON(suite.T(), w)
	notifications := body["notifications"].([]interface{})
	require.Len(suite.T(), notifications, 2)

	w = suite.doJSON("GET", "/api/v1/notifications/counts", nil, suite.alice)
	body = decodeJSON(suite.T(), w)
	assert.EqualValues(suite.T(), 2, body["unread"])
	assert.EqualValues(suite.T(), 0, body["unseen"])

	// Mark one read
	first := notifications[0].(map[string]interface{})
	w = suite.doJSON("POST", "/api/v1/notifications/"+first["id"].(string)+"/read", nil, suite.alice)
	require.Equal(suite.T(), http.StatusOK, w.Code)

	w = suite.doJSON("GET", "/api/v1/notifications/counts", nil, suite.alice)
	body = decodeJSON(suite.T(), w)
	assert.EqualValues(suite.T(), 1, body["unread"])

	// Mark all read
	w = suite.doJSON("POST", "/api/v1/notifications/read-all", nil, suite.alice)
	require.Equal(suite.T(), http.StatusOK, w.Code)

	w = suite.doJSON("GET", "/api/v1/notifications/counts", nil, suite.alice)
	body = decodeJSON(suite.T(), w)
	assert.EqualValues(suite.T(), 0, body["unread"])
}

func (suite *HandlersTestSuite) TestNotificationReadOnlyOwn() {
	photo := suite.createTestPhoto(suite.alice, "watched")
	suite.doJSON("POST", "/api/v1/photos/"+photo.ID+"/favorite", nil, suite.bob)

	var notification models.Notification
	require.NoError(suite.T(), database.DB.
		Where("user_id = ?", suite.alice.ID).First(&notification).Error)

	// Bob cannot mark alice's notification
	w := suite.doJSON("POST", "/api/v1/notifications/"+notification.ID+"/read", nil, suite.bob)
	assert.Equal(suite.T(), http.StatusNotFound, w.Code)
}
