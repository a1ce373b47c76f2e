package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Aditya-max148/student-risk-dashboard/internal/domain/models"
	"github.com/Aditya-max148/student-risk-dashboard/internal/domain/repository"
	"github.com/Aditya-max148/student-risk-dashboard/internal/domain/service"
	"github.com/Aditya-max148/student-risk-dashboard/pkg/constants"
	"github.com/Aditya-max148/student-risk-dashboard/pkg/errors"
	"github.com/Aditya-max148/student-risk-dashboard/pkg/logger"
	"github.com/Aditya-max148/student-risk-dashboard/pkg/utils"
)

// AlertAppService notifies contacts of medium and high risk students and manages those contacts.
// AlertAppService 风险预警应用服务接口。
type AlertAppService interface {
	// SendAlerts notifies every contact of every medium or high risk student.
	// A failure for one contact is counted and logged; the run continues.
	SendAlerts(ctx context.Context) (*models.AlertSummary, error)

	// AddContact registers an alert recipient for a student.
	AddContact(ctx context.Context, contact *models.Contact) (*models.Contact, error)

	// RemoveContact deletes an alert recipient.
	RemoveContact(ctx context.Context, id string) error
}

// weeklySource supplies the per-student weekly summaries quoted in alerts.
type weeklySource interface {
	Weekly(ctx context.Context) ([]models.WeeklyReport, error)
}

type alertAppServiceImpl struct {
	risk      RiskAppService
	weekly    weeklySource
	students  repository.StudentRepository
	contacts  repository.ContactRepository
	notifiers []service.Notifier
	publisher service.EventPublisher
	metrics   service.Metrics
	tracer    service.Tracer
	logger    logger.Logger
}

// NewAlertAppService creates a new AlertAppService. Every contact is sent one
// message per notifier whose channel it has an address for. weekly may be
// nil, in which case alerts carry no weekly summary.
func NewAlertAppService(
	risk RiskAppService,
	weekly weeklySource,
	students repository.StudentRepository,
	contacts repository.ContactRepository,
	notifiers []service.Notifier,
	publisher service.EventPublisher,
	metrics service.Metrics,
	tracer service.Tracer,
	log logger.Logger,
) AlertAppService {
	if metrics == nil {
		metrics = service.NoopMetrics{}
	}
	if tracer == nil {
		tracer = service.NoopTracer{}
	}
	return &alertAppServiceImpl{
		risk:      risk,
		weekly:    weekly,
		students:  students,
		contacts:  contacts,
		notifiers: notifiers,
		publisher: publisher,
		metrics:   metrics,
		tracer:    tracer,
		logger:    log.WithComponent("alerts"),
	}
}

func (s *alertAppServiceImpl) SendAlerts(ctx context.Context) (*models.AlertSummary, error) {
	var summary *models.AlertSummary
	err := s.tracer.Trace(ctx, "alerts.send", map[string]interface{}{"alerts.channels": s.channels()}, func(ctx context.Context) error {
		var err error
		summary, err = s.sendAlerts(ctx)
		return err
	})
	return summary, err
}

func (s *alertAppServiceImpl) channels() []string {
	out := make([]string, len(s.notifiers))
	for i, n := range s.notifiers {
		out[i] = n.Channel()
	}
	return out
}

// weeklySummaries maps student id to the weekly summary line. A failure only
// drops the summaries from the messages.
func (s *alertAppServiceImpl) weeklySummaries(ctx context.Context) map[string]string {
	if s.weekly == nil {
		return nil
	}
	reports, err := s.weekly.Weekly(ctx)
	if err != nil {
		s.logger.Warn(ctx, "weekly summaries unavailable, alerting without them", logger.Fields{"error": err.Error()})
		return nil
	}
	out := make(map[string]string, len(reports))
	for _, r := range reports {
		out[r.StudentID] = r.Summary
	}
	return out
}

func (s *alertAppServiceImpl) sendAlerts(ctx context.Context) (*models.AlertSummary, error) {
	risks, err := s.risk.ListRisks(ctx, models.StudentFilter{})
	if err != nil {
		return nil, err
	}
	weekly := s.weeklySummaries(ctx)

	summary := &models.AlertSummary{}
	for _, r := range risks {
		if r.RiskLevel != models.RiskLevelHigh && r.RiskLevel != models.RiskLevelMedium {
			continue
		}
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		contacts, err := s.contacts.ListByStudent(ctx, r.StudentID)
		if err != nil {
			s.logger.Warn(ctx, "failed to load contacts", logger.Fields{"student_id": r.StudentID, "error": err.Error()})
			summary.Failures++
			continue
		}

		sent := 0
		for _, c := range contacts {
			msg := buildAlertMessage(r, c, weekly[r.StudentID])
			for _, n := range s.notifiers {
				if msg.Recipient(n.Channel()) == "" {
					continue
				}
				err := n.Notify(ctx, msg)
				s.metrics.RecordAlert(n.Channel(), err == nil)
				if err != nil {
					summary.Failures++
					s.logger.Warn(ctx, "failed to notify contact", logger.Fields{
						"student_id": r.StudentID,
						"channel":    n.Channel(),
						"contact_id": c.ID,
						"error":      err.Error(),
					})
					continue
				}
				sent++
			}
		}
		if sent > 0 {
			summary.StudentsAlerted++
			summary.MessagesSent += sent
		}
	}

	s.logger.Info(ctx, "alert run finished", logger.Fields{
		"students_alerted": summary.StudentsAlerted,
		"messages_sent":    summary.MessagesSent,
		"failures":         summary.Failures,
		"channels":         s.channels(),
	})
	publish(ctx, s.publisher, s.metrics, s.logger, models.NewEvent(constants.EventAlertSent, "alerts", summary))
	return summary, nil
}

// buildAlertMessage renders the notification for one contact: a full e-mail
// body and a one-line text for SMS, both quoting the weekly summary if any.
func buildAlertMessage(r models.StudentRisk, c *models.Contact, weekly string) service.AlertMessage {
	reasons := r.Reasons()
	reasonText := "overall risk score"
	if len(reasons) > 0 {
		reasonText = strings.Join(reasons, ", ")
	}

	var body strings.Builder
	fmt.Fprintf(&body, "Dear %s,\n\n", c.Name)
	fmt.Fprintf(&body, "%s (%s", r.Name, r.StudentID)
	if r.ClassName != "" {
		fmt.Fprintf(&body, ", class %s", r.ClassName)
	}
	fmt.Fprintf(&body, ") has been assessed at %s risk of dropping out (score %.2f).\n", r.RiskLevel, r.RiskScore)
	fmt.Fprintf(&body, "Areas of concern: %s.\n", reasonText)
	if weekly != "" {
		fmt.Fprintf(&body, "This week: %s\n", weekly)
	}
	body.WriteString("\nPlease contact the school counselor to discuss support options.\n")

	text := weekly
	if text == "" {
		text = fmt.Sprintf("Student: %s (Risk: %s)", r.Name, r.RiskLevel)
	}
	text += ". Concerns: " + reasonText + "."

	return service.AlertMessage{
		StudentID: r.StudentID,
		ToName:    c.Name,
		ToEmail:   c.Email,
		ToPhone:   c.Phone,
		Subject:   fmt.Sprintf("Student risk alert: %s (%s risk)", r.Name, r.RiskLevel),
		Body:      body.String(),
		Text:      text,
	}
}

func (s *alertAppServiceImpl) AddContact(ctx context.Context, contact *models.Contact) (*models.Contact, error) {
	if err := utils.ValidateStruct(contact); err != nil {
		return nil, err
	}
	if _, err := s.students.FindByID(ctx, contact.StudentID); err != nil {
		if errors.IsNotFoundError(err) {
			return nil, err
		}
		return nil, internalError("failed to look up student", err)
	}

	contact.ID = uuid.NewString()
	contact.CreatedAt = time.Now().UTC()
	if err := s.contacts.Save(ctx, contact); err != nil {
		s.logger.Error(ctx, "failed to save contact", err, logger.Fields{"student_id": contact.StudentID})
		return nil, internalError("failed to save contact", err)
	}
	return contact, nil
}

func (s *alertAppServiceImpl) RemoveContact(ctx context.Context, id string) error {
	if err := s.contacts.Delete(ctx, id); err != nil {
		if errors.IsNotFoundError(err) {
			return err
		}
		return internalError("failed to delete contact", err)
	}
	return nil
}
