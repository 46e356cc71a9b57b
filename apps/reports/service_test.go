package reports

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Wakar473/Timechamp/apps/models"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&models.WorkSession{}, &models.DailySummary{}))
	return db
}

func seedSession(t *testing.T, db *gorm.DB, orgID, userID uuid.UUID, date string, active, idle int64) {
	t.Helper()
	dayStart, err := models.ParseDate(date)
	require.NoError(t, err)
	require.NoError(t, db.Create(&models.WorkSession{
		OrganizationID:     orgID,
		UserID:             userID,
		StartTime:          dayStart.Add(9 * time.Hour),
		Status:             models.SessionStopped,
		TotalActiveSeconds: active,
		TotalIdleSeconds:   idle,
		LastActivityAt:     dayStart.Add(17 * time.Hour),
	}).Error)
}

func TestDailySummaryFromMaterializedRow(t *testing.T) {
	db := openTestDB(t)
	svc := NewService(db)

	orgID := uuid.New()
	userID := uuid.New()
	require.NoError(t, db.Create(&models.DailySummary{
		OrganizationID:    orgID,
		UserID:            userID,
		Date:              "2026-09-01",
		TotalWorkSeconds:  7200,
		ActiveSeconds:     6000,
		IdleSeconds:       1200,
		ProductivityScore: 83.33,
	}).Error)
	seedSession(t, db, orgID, userID, "2026-09-01", 6000, 1200)

	report, err := svc.DailySummary(context.Background(), userID, orgID, "2026-09-01")
	require.NoError(t, err)
	require.EqualValues(t, 7200, report.TotalWorkSeconds)
	require.EqualValues(t, 6000, report.ActiveSeconds)
	require.EqualValues(t, 1200, report.IdleSeconds)
	require.Equal(t, 83.33, report.ProductivityScore)
	require.EqualValues(t, 1, report.SessionsCount)
}

func TestDailySummaryFallsBackToSessions(t *testing.T) {
	db := openTestDB(t)
	svc := NewService(db)

	orgID := uuid.New()
	userID := uuid.New()
	seedSession(t, db, orgID, userID, "2026-09-01", 3000, 1000)
	seedSession(t, db, orgID, userID, "2026-09-01", 1000, 1000)

	report, err := svc.DailySummary(context.Background(), userID, orgID, "2026-09-01")
	require.NoError(t, err)
	require.EqualValues(t, 6000, report.TotalWorkSeconds)
	require.EqualValues(t, 4000, report.ActiveSeconds)
	require.EqualValues(t, 2000, report.IdleSeconds)
	require.InDelta(t, 66.67, report.ProductivityScore, 0.001)
	require.EqualValues(t, 2, report.SessionsCount)
}

func TestDailySummaryEmptyDay(t *testing.T) {
	db := openTestDB(t)
	svc := NewService(db)

	report, err := svc.DailySummary(context.Background(), uuid.New(), uuid.New(), "2026-09-01")
	require.NoError(t, err)
	require.EqualValues(t, 0, report.TotalWorkSeconds)
	require.EqualValues(t, 0, report.ProductivityScore)
	require.EqualValues(t, 0, report.SessionsCount)
}

func TestRangeReport(t *testing.T) {
	db := openTestDB(t)
	svc := NewService(db)

	orgID := uuid.New()
	userID := uuid.New()
	days := []struct {
		date   string
		active int64
		idle   int64
		score  float64
	}{
		{"2026-09-01", 6000, 2000, 75},
		{"2026-09-02", 5000, 5000, 50},
		{"2026-09-03", 4000, 0, 100},
	}
	for _, d := range days {
		require.NoError(t, db.Create(&models.DailySummary{
			OrganizationID:    orgID,
			UserID:            userID,
			Date:              d.date,
			TotalWorkSeconds:  d.active + d.idle,
			ActiveSeconds:     d.active,
			IdleSeconds:       d.idle,
			ProductivityScore: d.score,
		}).Error)
	}
	// Outside the requested range
	require.NoError(t, db.Create(&models.DailySummary{
		OrganizationID: orgID, UserID: userID, Date: "2026-08-25",
		TotalWorkSeconds: 9000, ActiveSeconds: 9000, ProductivityScore: 100,
	}).Error)

	report, err := svc.Range(context.Background(), userID, orgID, "2026-09-01", "2026-09-03")
	require.NoError(t, err)
	require.Equal(t, 3, report.DaysWorked)
	require.EqualValues(t, 15000, report.TotalActiveSeconds)
	require.EqualValues(t, 7000, report.TotalIdleSeconds)
	require.EqualValues(t, 22000, report.TotalWorkSeconds)
	require.Equal(t, 75.0, report.AverageProductivityScore)
	require.Len(t, report.DailySummaries, 3)
	require.Equal(t, "2026-09-01", report.DailySummaries[0].Date)
	require.Equal(t, "2026-09-03", report.DailySummaries[2].Date)
}

func TestRangeReportNoData(t *testing.T) {
	db := openTestDB(t)
	svc := NewService(db)

	report, err := svc.Range(context.Background(), uuid.New(), uuid.New(), "2026-09-01", "2026-09-07")
	require.NoError(t, err)
	require.Equal(t, 0, report.DaysWorked)
	require.EqualValues(t, 0, report.TotalWorkSeconds)
	require.EqualValues(t, 0, report.AverageProductivityScore)
	require.Empty(t, report.DailySummaries)
}

func TestRangeReportScopedToOrganization(t *testing.T) {
	db := openTestDB(t)
	svc := NewService(db)

	userID := uuid.New()
	orgA := uuid.New()
	orgB := uuid.New()
	require.NoError(t, db.Create(&models.DailySummary{
		OrganizationID: orgA, UserID: userID, Date: "2026-09-01",
		TotalWorkSeconds: 1000, ActiveSeconds: 1000, ProductivityScore: 100,
	}).Error)
	require.NoError(t, db.Create(&models.DailySummary{
		OrganizationID: orgB, UserID: uuid.New(), Date: "2026-09-01",
		TotalWorkSeconds: 2000, ActiveSeconds: 2000, ProductivityScore: 100,
	}).Error)

	report, err := svc.Range(context.Background(), userID, orgB, "2026-09-01", "2026-09-01")
	require.NoError(t, err)
	require.Equal(t, 0, report.DaysWorked)
}

func TestOrganizationDaily(t *testing.T) {
	db := openTestDB(t)
	svc := NewService(db)

	orgID := uuid.New()
	require.NoError(t, db.Create(&models.DailySummary{
		OrganizationID: orgID, UserID: uuid.New(), Date: "2026-09-01",
		TotalWorkSeconds: 1000, ActiveSeconds: 1000, ProductivityScore: 100,
	}).Error)
	require.NoError(t, db.Create(&models.DailySummary{
		OrganizationID: orgID, UserID: uuid.New(), Date: "2026-09-01",
		TotalWorkSeconds: 2000, ActiveSeconds: 1000, IdleSeconds: 1000, ProductivityScore: 50,
	}).Error)
	require.NoError(t, db.Create(&models.DailySummary{
		OrganizationID: orgID, UserID: uuid.New(), Date: "2026-08-31",
		TotalWorkSeconds: 500, ActiveSeconds: 500, ProductivityScore: 100,
	}).Error)

	summaries, err := svc.OrganizationDaily(context.Background(), orgID, "2026-09-01")
	require.NoError(t, err)
	require.Len(t, summaries, 2)
}
