// Package performance records employee performance reviews.
package performance

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/upb/employee-management/config"
	"github.com/upb/employee-management/models"
	"github.com/upb/employee-management/repositories"
	"github.com/upb/employee-management/services"
	"github.com/upb/employee-management/utils"
)

// Input is the data of one performance review
type Input struct {
	TaskCompletion float64 `json:"task_completion" validate:"gte=0,lte=100"`
	QualityScore   float64 `json:"quality_score"`
	Rating         float64 `json:"rating"`
	ReviewerID     string  `json:"reviewer_id" validate:"required"`
	Feedback       string  `json:"feedback"`
}

// Summary aggregates the records of an employee
type Summary struct {
	EmployeeID        string  `json:"employee_id"`
	Reviews           int     `json:"reviews"`
	AverageRating     float64 `json:"average_rating"`
	AverageQuality    float64 `json:"average_quality"`
	AverageCompletion float64 `json:"average_completion"`
}

// Tracker validates and stores performance records
type Tracker struct {
	records  repositories.PerformanceRepository
	settings config.PerformanceSettings
	logger   *zap.Logger
	now      func() time.Time
}

// NewTracker creates a new performance Tracker
func NewTracker(repos *repositories.Repositories, settings config.PerformanceSettings, logger *zap.Logger) *Tracker {
	if logger == nil {
		logger = zap.NewNop()
	}
	if settings.RatingMax <= settings.RatingMin {
		settings.RatingMin, settings.RatingMax = 0, 5
	}
	if settings.MaxFeedbackLength <= 0 {
		settings.MaxFeedbackLength = 2000
	}
	return &Tracker{
		records:  repos.Performance,
		settings: settings,
		logger:   logger.With(zap.String("service", "performance")),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// RecordPerformance validates the input and stores a new record
func (t *Tracker) RecordPerformance(ctx context.Context, employeeID string, in Input) (*models.PerformanceRecord, error) {
	employeeID = strings.TrimSpace(employeeID)
	if employeeID == "" {
		return nil, services.NewValidationError("employee id is required")
	}
	in.ReviewerID = strings.TrimSpace(in.ReviewerID)
	if err := t.validate(employeeID, in); err != nil {
		return nil, err
	}

	rec := models.NewPerformanceRecord(employeeID)
	rec.TaskCompletion = in.TaskCompletion
	rec.QualityScore = in.QualityScore
	rec.Rating = in.Rating
	rec.ReviewerID = in.ReviewerID
	rec.Feedback = strings.TrimSpace(in.Feedback)
	rec.RecordedAt = t.now()

	if err := t.records.Insert(ctx, rec); err != nil {
		return nil, services.WrapStorage("failed to store performance record", err)
	}

	t.logger.Info("performance recorded",
		zap.String("employee_id", employeeID),
		zap.String("reviewer_id", rec.ReviewerID),
		zap.Float64("rating", rec.Rating))
	return rec, nil
}

func (t *Tracker) validate(employeeID string, in Input) error {
	if err := utils.ValidateStruct(in); err != nil {
		domainErr := services.NewDomainError(services.ErrorTypeValidation, "invalid performance data", nil)
		for field, msg := range utils.GetValidationFields(err) {
			domainErr.WithDetail(field, msg)
		}
		return domainErr
	}

	lo, hi := t.settings.RatingMin, t.settings.RatingMax
	if in.Rating < lo || in.Rating > hi {
		return services.NewValidationError("rating must be between %g and %g", lo, hi)
	}
	if in.QualityScore < lo || in.QualityScore > hi {
		return services.NewValidationError("quality score must be between %g and %g", lo, hi)
	}
	if in.ReviewerID == employeeID {
		return services.NewValidationError("employees cannot review themselves")
	}
	if n := utf8.RuneCountInString(in.Feedback); n > t.settings.MaxFeedbackLength {
		return services.NewValidationError("feedback must be at most %d characters", t.settings.MaxFeedbackLength).
			WithDetail("length", n)
	}
	return nil
}

// History returns the records of an employee, oldest first
func (t *Tracker) History(ctx context.Context, employeeID string) ([]*models.PerformanceRecord, error) {
	if strings.TrimSpace(employeeID) == "" {
		return nil, services.NewValidationError("employee id is required")
	}
	records, err := t.records.ListByEmployee(ctx, employeeID)
	if err != nil {
		return nil, services.WrapStorage("failed to list performance records", err)
	}
	return records, nil
}

// Summarize averages the records of an employee
func (t *Tracker) Summarize(ctx context.Context, employeeID string) (*Summary, error) {
	records, err := t.History(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	summary := &Summary{EmployeeID: employeeID, Reviews: len(records)}
	if len(records) == 0 {
		return summary, nil
	}
	for _, r := range records {
		summary.AverageRating += r.Rating
		summary.AverageQuality += r.QualityScore
		summary.AverageCompletion += r.TaskCompletion
	}
	n := float64(len(records))
	summary.AverageRating /= n
	summary.AverageQuality /= n
	summary.AverageCompletion /= n
	return summary, nil
}
