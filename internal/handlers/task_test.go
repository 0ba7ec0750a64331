package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"github.com/workhive/workspace-api/internal/constants"
	"github.com/workhive/workspace-api/internal/database"
	"github.com/workhive/workspace-api/internal/models"
	"github.com/workhive/workspace-api/internal/repository"
	"github.com/workhive/workspace-api/internal/services"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// TaskHandlerTestSuite defines the test suite for TaskHandler
type TaskHandlerTestSuite struct {
	suite.Suite
	db      *gorm.DB
	handler *TaskHandler

	owner     *models.User
	member    *models.User
	workspace *models.Workspace
	project   *models.Project
}

// SetupTest runs before each test
func (suite *TaskHandlerTestSuite) SetupTest() {
	var err error

	suite.db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	suite.Require().NoError(err)

	err = suite.db.AutoMigrate(
		&models.User{},
		&models.Workspace{},
		&models.WorkspaceMember{},
		&models.Project{},
		&models.Task{},
		&models.ActivityLog{},
	)
	suite.Require().NoError(err)

	database.SetDB(suite.db)

	userRepo := repository.NewUserRepository(suite.db)
	workspaceRepo := repository.NewWorkspaceRepository(suite.db)
	projectRepo := repository.NewProjectRepository(suite.db)
	taskRepo := repository.NewTaskRepository(suite.db)
	activityRepo := repository.NewActivityLogRepository(suite.db)

	guard := services.NewAccessGuard(workspaceRepo, projectRepo, taskRepo)
	recorder := services.NewActivityRecorder()
	taskService := services.NewTaskService(taskRepo, activityRepo, workspaceRepo, userRepo, guard, recorder)

	suite.handler = NewTaskHandler(taskService)

	gin.SetMode(gin.TestMode)

	suite.owner = suite.createTestUser("owner@example.com")
	suite.member = suite.createTestUser("member@example.com")

	suite.workspace = &models.Workspace{Name: "Acme", CreatedByID: suite.owner.ID}
	suite.Require().NoError(suite.db.Create(suite.workspace).Error)
	suite.addMember(suite.workspace.ID, suite.owner.ID, models.RoleOwner)
	suite.addMember(suite.workspace.ID, suite.member.ID, models.RoleMember)

	suite.project = &models.Project{Name: "Launch", WorkspaceID: suite.workspace.ID}
	suite.Require().NoError(suite.db.Create(suite.project).Error)
}

// TearDownTest runs after each test
func (suite *TaskHandlerTestSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

func (suite *TaskHandlerTestSuite) createTestUser(email string) *models.User {
	user := &models.User{
		Name:         "Test User",
		Email:        email,
		PasswordHash: "hashedpassword",
	}
	suite.Require().NoError(suite.db.Create(user).Error)
	return user
}

func (suite *TaskHandlerTestSuite) addMember(workspaceID, userID uint64, role models.WorkspaceRole) {
	member := &models.WorkspaceMember{
		WorkspaceID: workspaceID,
		UserID:      userID,
		Role:        role,
		JoinedAt:    time.Now(),
	}
	suite.Require().NoError(suite.db.Create(member).Error)
}

func (suite *TaskHandlerTestSuite) createTestTask(title string) *models.Task {
	task := &models.Task{
		Title:       title,
		Status:      models.TaskStatusTodo,
		Priority:    models.TaskPriorityMedium,
		ProjectID:   suite.project.ID,
		CreatedByID: suite.member.ID,
	}
	suite.Require().NoError(suite.db.Create(task).Error)
	return task
}

// Helper function to create authenticated context
func (suite *TaskHandlerTestSuite) createAuthContext(method, url string, body []byte, userID uint64) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, url, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, url, nil)
	}

	c, _ := gin.CreateTestContext(w)
	c.Request = req
	c.Set(constants.ContextKeyUserID, userID)

	return c, w
}

func (suite *TaskHandlerTestSuite) TestCreateTask() {
	body, _ := json.Marshal(map[string]interface{}{
		"title":      "New Task",
		"project_id": suite.project.ID,
	})
	c, w := suite.createAuthContext("POST", "/api/v1/tasks", body, suite.member.ID)

	suite.handler.CreateTask(c)

	assert.Equal(suite.T(), http.StatusCreated, w.Code)

	var response map[string]interface{}
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(suite.T(), "New Task", response["title"])
	assert.Equal(suite.T(), "todo", response["status"])
	assert.Equal(suite.T(), "medium", response["priority"])
}

func (suite *TaskHandlerTestSuite) TestCreateTask_MissingTitle() {
	body, _ := json.Marshal(map[string]interface{}{
		"project_id": suite.project.ID,
	})
	c, w := suite.createAuthContext("POST", "/api/v1/tasks", body, suite.member.ID)

	suite.handler.CreateTask(c)

	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
}

func (suite *TaskHandlerTestSuite) TestListTasks() {
	suite.createTestTask("First")
	suite.createTestTask("Second")

	c, w := suite.createAuthContext("GET", "/api/v1/tasks", nil, suite.member.ID)

	suite.handler.ListTasks(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response map[string]interface{}
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	assert.Contains(suite.T(), response, "tasks")
	assert.Contains(suite.T(), response, "pagination")

	tasks := response["tasks"].([]interface{})
	assert.Len(suite.T(), tasks, 2)
}

func (suite *TaskHandlerTestSuite) TestListTasks_StatusFilter() {
	task := suite.createTestTask("Done task")
	suite.createTestTask("Todo task")
	suite.Require().NoError(suite.db.Model(task).Update("status", models.TaskStatusDone).Error)

	c, w := suite.createAuthContext("GET", "/api/v1/tasks?status=done", nil, suite.member.ID)

	suite.handler.ListTasks(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response map[string]interface{}
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	tasks := response["tasks"].([]interface{})
	suite.Require().Len(tasks, 1)
	first := tasks[0].(map[string]interface{})
	assert.Equal(suite.T(), "Done task", first["title"])
}

func (suite *TaskHandlerTestSuite) TestUpdateTask() {
	task := suite.createTestTask("Mutable")

	body, _ := json.Marshal(map[string]interface{}{
		"status": "in_progress",
	})
	c, w := suite.createAuthContext("PATCH", fmt.Sprintf("/api/v1/tasks/%d", task.ID), body, suite.member.ID)
	c.Params = gin.Params{{Key: "id", Value: fmt.Sprintf("%d", task.ID)}}

	suite.handler.UpdateTask(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response map[string]interface{}
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(suite.T(), "in_progress", response["status"])

	var logCount int64
	suite.db.Model(&models.ActivityLog{}).Where("task_id = ?", task.ID).Count(&logCount)
	assert.Equal(suite.T(), int64(1), logCount)
}

func (suite *TaskHandlerTestSuite) TestDeleteTask_MemberForbidden() {
	task := suite.createTestTask("Protected")

	c, w := suite.createAuthContext("DELETE", fmt.Sprintf("/api/v1/tasks/%d", task.ID), nil, suite.member.ID)
	c.Params = gin.Params{{Key: "id", Value: fmt.Sprintf("%d", task.ID)}}

	suite.handler.DeleteTask(c)

	assert.Equal(suite.T(), http.StatusForbidden, w.Code)
}

func (suite *TaskHandlerTestSuite) TestDeleteTask_Owner() {
	task := suite.createTestTask("Doomed")

	c, w := suite.createAuthContext("DELETE", fmt.Sprintf("/api/v1/tasks/%d", task.ID), nil, suite.owner.ID)
	c.Params = gin.Params{{Key: "id", Value: fmt.Sprintf("%d", task.ID)}}

	suite.handler.DeleteTask(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var count int64
	suite.db.Model(&models.Task{}).Where("id = ?", task.ID).Count(&count)
	assert.Equal(suite.T(), int64(0), count)
}

func (suite *TaskHandlerTestSuite) TestGetTask_OutsiderGets404() {
	task := suite.createTestTask("Private")
	outsider := suite.createTestUser("outsider@example.com")

	c, w := suite.createAuthContext("GET", fmt.Sprintf("/api/v1/tasks/%d", task.ID), nil, outsider.ID)
	c.Params = gin.Params{{Key: "id", Value: fmt.Sprintf("%d", task.ID)}}

	suite.handler.GetTask(c)

	assert.Equal(suite.T(), http.StatusNotFound, w.Code)
}

func (suite *TaskHandlerTestSuite) TestGetTaskLogs() {
	task := suite.createTestTask("Audited")
	suite.Require().NoError(suite.db.Create(&models.ActivityLog{
		TaskID: task.ID,
		UserID: suite.member.ID,
		Action: models.ActivityActionCreated,
		Details: models.ActivityDetails{
			"title": task.Title,
		},
	}).Error)

	c, w := suite.createAuthContext("GET", fmt.Sprintf("/api/v1/tasks/%d/logs", task.ID), nil, suite.member.ID)
	c.Params = gin.Params{{Key: "id", Value: fmt.Sprintf("%d", task.ID)}}

	suite.handler.GetTaskLogs(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response map[string]interface{}
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	logs := response["logs"].([]interface{})
	suite.Require().Len(logs, 1)
	first := logs[0].(map[string]interface{})
	assert.Equal(suite.T(), "created", first["action"])
}

func TestTaskHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(TaskHandlerTestSuite))
}
