package services

import (
	"context"
	"database/sql"
	"testing"
	"time"

	apperrors "coursehub/errors"
	"coursehub/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockCourseStore struct {
	courses map[int]*models.Course
	rosters map[int][]models.RosterEntry
	nextID  int
}

func newMockCourseStore() *mockCourseStore {
	return &mockCourseStore{
		courses: map[int]*models.Course{},
		rosters: map[int][]models.RosterEntry{},
		nextID:  1,
	}
}

func (m *mockCourseStore) Create(_ context.Context, c *models.Course) (int, error) {
	id := m.nextID
	m.nextID++
	copied := *c
	copied.ID = id
	m.courses[id] = &copied
	return id, nil
}

func (m *mockCourseStore) Update(_ context.Context, c *models.Course) error {
	if _, ok := m.courses[c.ID]; !ok {
		return sql.ErrNoRows
	}
	copied := *c
	m.courses[c.ID] = &copied
	return nil
}

func (m *mockCourseStore) GetByID(_ context.Context, id int) (*models.Course, error) {
	c, ok := m.courses[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *c
	return &copied, nil
}

func (m *mockCourseStore) ListByInstructor(_ context.Context, instructorID int) ([]models.Course, error) {
	var out []models.Course
	for _, c := range m.courses {
		if c.InstructorID == instructorID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (m *mockCourseStore) ListPublished(_ context.Context, filter models.CourseFilter) ([]models.Course, error) {
	matches := func(values []string, v string) bool {
		if len(values) == 0 {
			return true
		}
		for _, candidate := range values {
			if candidate == v {
				return true
			}
		}
		return false
	}

	out := []models.Course{}
	for _, c := range m.courses {
		if !c.IsPublished {
			continue
		}
		if matches(filter.Categories, c.Category) &&
			matches(filter.Levels, c.Level) &&
			matches(filter.PrimaryLanguages, c.PrimaryLanguage) {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (m *mockCourseStore) Roster(_ context.Context, courseID int) ([]models.RosterEntry, error) {
	return m.rosters[courseID], nil
}

type mockEnrollments struct {
	owned map[[2]int]bool
	lists map[int]*models.StudentCourses
}

func (m *mockEnrollments) HasPurchased(_ context.Context, userID, courseID int) (bool, error) {
	return m.owned[[2]int{userID, courseID}], nil
}

func (m *mockEnrollments) ListByUser(_ context.Context, userID int) (*models.StudentCourses, error) {
	if l, ok := m.lists[userID]; ok {
		return l, nil
	}
	return &models.StudentCourses{UserID: userID, Courses: []models.StudentCourse{}}, nil
}

func newTestCourseService(store *mockCourseStore, enrollments *mockEnrollments) *CourseService {
	if enrollments == nil {
		enrollments = &mockEnrollments{owned: map[[2]int]bool{}}
	}
	return &CourseService{Courses: store, Enrollments: enrollments}
}

func sampleCourse() *models.Course {
	return &models.Course{
		InstructorID:    3,
		InstructorName:  "Prof. Rao",
		Title:           "Distributed Systems",
		Category:        "engineering",
		Level:           "advanced",
		PrimaryLanguage: "english",
		Pricing:         499.99,
		IsPublished:     true,
		Curriculum: []models.Lecture{
			{Title: "Consensus", VideoURL: "https://cdn/x1", FreePreview: true},
			{Title: "Replication", VideoURL: "https://cdn/x2"},
		},
	}
}

func TestAddCourse(t *testing.T) {
	store := newMockCourseStore()
	svc := newTestCourseService(store, nil)

	created, err := svc.AddCourse(context.Background(), sampleCourse())
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.Len(t, store.courses[created.ID].Curriculum, 2)
}

func TestAddCourseValidation(t *testing.T) {
	svc := newTestCourseService(newMockCourseStore(), nil)

	tests := []struct {
		name   string
		mutate func(*models.Course)
	}{
		{"missing instructor", func(c *models.Course) { c.InstructorID = 0 }},
		{"blank title", func(c *models.Course) { c.Title = "   " }},
		{"negative price", func(c *models.Course) { c.Pricing = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			course := sampleCourse()
			tt.mutate(course)
			_, err := svc.AddCourse(context.Background(), course)
			require.Error(t, err)
			assert.Equal(t, apperrors.Invalid, apperrors.KindOf(err))
		})
	}
}

func TestUpdateCourseNotFound(t *testing.T) {
	svc := newTestCourseService(newMockCourseStore(), nil)

	course := sampleCourse()
	course.ID = 77
	_, err := svc.UpdateCourse(context.Background(), course)
	require.Error(t, err)
	assert.Equal(t, apperrors.NotFound, apperrors.KindOf(err))
}

func TestBrowseCatalogFilters(t *testing.T) {
	store := newMockCourseStore()
	svc := newTestCourseService(store, nil)

	a := sampleCourse()
	b := sampleCourse()
	b.Title = "Intro to Go"
	b.Category = "programming"
	b.Level = "beginner"
	c := sampleCourse()
	c.Title = "Hidden Draft"
	c.IsPublished = false

	for _, course := range []*models.Course{a, b, c} {
		_, err := svc.AddCourse(context.Background(), course)
		require.NoError(t, err)
	}

	all, err := svc.BrowseCatalog(context.Background(), models.CourseFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2, "drafts are invisible")

	engineering, err := svc.BrowseCatalog(context.Background(), models.CourseFilter{
		Categories: []string{"engineering"},
	})
	require.NoError(t, err)
	require.Len(t, engineering, 1)
	assert.Equal(t, "Distributed Systems", engineering[0].Title)
}

func TestGetCatalogCourseHidesDrafts(t *testing.T) {
	store := newMockCourseStore()
	svc := newTestCourseService(store, nil)

	draft := sampleCourse()
	draft.IsPublished = false
	created, err := svc.AddCourse(context.Background(), draft)
	require.NoError(t, err)

	_, err = svc.GetCatalogCourse(context.Background(), created.ID)
	require.Error(t, err)
	assert.Equal(t, apperrors.NotFound, apperrors.KindOf(err))
}

func TestCatalogQueryKey(t *testing.T) {
	// Filter order must not change the key.
	k1 := CatalogQueryKey(models.CourseFilter{
		Categories: []string{"b", "a"}, Levels: []string{"x"}, SortBy: models.SortPriceLowToHigh,
	})
	k2 := CatalogQueryKey(models.CourseFilter{
		Categories: []string{"a", "b"}, Levels: []string{"x"}, SortBy: models.SortPriceLowToHigh,
	})
	assert.Equal(t, k1, k2)

	k3 := CatalogQueryKey(models.CourseFilter{
		Categories: []string{"a", "b"}, Levels: []string{"x"}, SortBy: models.SortPriceHighToLow,
	})
	assert.NotEqual(t, k1, k3)
}

func TestCheckPurchaseAndCoursesBought(t *testing.T) {
	enrollments := &mockEnrollments{
		owned: map[[2]int]bool{{7, 42}: true},
		lists: map[int]*models.StudentCourses{
			7: {UserID: 7, Courses: []models.StudentCourse{
				{CourseID: 42, Title: "Distributed Systems", DateOfPurchase: time.Now()},
			}},
		},
	}
	svc := newTestCourseService(newMockCourseStore(), enrollments)

	owned, err := svc.CheckPurchase(context.Background(), 42, 7)
	require.NoError(t, err)
	assert.True(t, owned)

	owned, err = svc.CheckPurchase(context.Background(), 42, 8)
	require.NoError(t, err)
	assert.False(t, owned)

	list, err := svc.CoursesBought(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, list.Courses, 1)
	assert.Equal(t, 42, list.Courses[0].CourseID)
}

func TestExportRoster(t *testing.T) {
	store := newMockCourseStore()
	svc := newTestCourseService(store, nil)

	created, err := svc.AddCourse(context.Background(), sampleCourse())
	require.NoError(t, err)
	store.rosters[created.ID] = []models.RosterEntry{
		{CourseID: created.ID, StudentID: 7, StudentName: "Asha", StudentEmail: "asha@example.com",
			PaidAmount: 499.99, EnrolledAt: time.Now()},
	}

	workbook, fileName, err := svc.ExportRoster(context.Background(), created.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, workbook)
	assert.Contains(t, fileName, ".xlsx")

	// xlsx files are zip archives.
	assert.Equal(t, byte('P'), workbook[0])
	assert.Equal(t, byte('K'), workbook[1])
}
