package notification

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/khoahotran/careerfolio/adapters/event"
	"github.com/khoahotran/careerfolio/internal/application/service"
	"github.com/khoahotran/careerfolio/internal/domain/course"
	"github.com/khoahotran/careerfolio/internal/domain/user"
	"github.com/khoahotran/careerfolio/pkg/apperror"
	"github.com/khoahotran/careerfolio/pkg/logger"
	"github.com/khoahotran/careerfolio/pkg/metrics"
)

var tracer = otel.Tracer("notification_usecase")

const (
	KindVerificationCode = "verification_code"
	KindEnrolled         = "enrolled"
)

var verificationTmpl = template.Must(template.New("verification").Parse(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: auto; padding: 20px; border: 1px solid #ddd; border-radius: 10px;">
  <h2 style="color: #333;">CareerFolio sign-up verification code</h2>
  <p>Thanks for signing up to CareerFolio.</p>
  <p>Enter the 6-digit code below on the sign-up screen.</p>
  <div style="background-color: #f5f5f5; padding: 15px; text-align: center; border-radius: 5px; margin: 20px 0;">
    <strong style="font-size: 24px; letter-spacing: 5px; color: #007bff;">{{.Code}}</strong>
  </div>
  <p>This code is valid for {{.TTLMinutes}} minutes.</p>
  <hr style="border: none; border-top: 1px solid #eee;" />
  <p style="font-size: 12px; color: #999;">If you did not request this, ignore this mail.</p>
</div>`))

var enrolledTmpl = template.Must(template.New("enrolled").Parse(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: auto; padding: 20px;">
  <h2 style="color: #333;">You are enrolled in {{.Title}}</h2>
  <p>Hi {{.Nickname}}, your enrollment is confirmed.{{if .Paid}} Payment #{{.PaymentID}} was completed.{{end}}</p>
  <p>Open "My courses" to start learning.</p>
</div>`))

// SendMailUseCase turns queued events into mails.
type SendMailUseCase struct {
	mailer     service.Mailer
	userRepo   user.Repository
	courseRepo course.Repository
	metrics    metrics.Recorder
	logger     logger.Logger
}

func NewSendMailUseCase(mailer service.Mailer, uRepo user.Repository, cRepo course.Repository, m metrics.Recorder, log logger.Logger) *SendMailUseCase {
	return &SendMailUseCase{mailer: mailer, userRepo: uRepo, courseRepo: cRepo, metrics: m, logger: log}
}

func (uc *SendMailUseCase) ExecuteMailEvent(ctx context.Context, payload event.MailEventPayload) error {
	ctx, span := tracer.Start(ctx, "SendMailEvent")
	defer span.End()
	span.SetAttributes(attribute.String("kind", string(payload.Kind)))

	var m service.Mail
	switch payload.Kind {
	case event.MailKindVerificationCode:
		if payload.To == "" || payload.Code == "" {
			err := apperror.NewInvalidInput("verification mail needs a recipient and a code", nil)
			span.RecordError(err)
			return err
		}
		ttl := payload.TTLMinutes
		if ttl <= 0 {
			ttl = 5
		}
		body, err := render(verificationTmpl, struct {
			Code       string
			TTLMinutes int
		}{payload.Code, ttl})
		if err != nil {
			span.RecordError(err)
			return err
		}
		m = service.Mail{To: payload.To, Subject: "[CareerFolio] Your sign-up verification code", HTMLBody: body}
	default:
		err := apperror.NewInvalidInput(fmt.Sprintf("unknown mail kind %q", payload.Kind), nil)
		span.RecordError(err)
		return err
	}

	err := uc.mailer.Send(ctx, m)
	uc.metrics.MailSent(KindVerificationCode, err)
	if err != nil {
		span.RecordError(err)
		return err
	}
	uc.logger.Info("Verification mail sent", zap.String("to", payload.To))
	return nil
}

func (uc *SendMailUseCase) ExecuteEnrollmentEvent(ctx context.Context, payload event.EnrollmentEventPayload) error {
	ctx, span := tracer.Start(ctx, "SendEnrollmentMail")
	defer span.End()
	span.SetAttributes(attribute.Int64("user_id", payload.UserID), attribute.Int64("course_id", payload.CourseID))

	if payload.Kind != event.EnrollmentKindEnrolled {
		err := apperror.NewInvalidInput(fmt.Sprintf("unknown enrollment event kind %q", payload.Kind), nil)
		span.RecordError(err)
		return err
	}

	account, err := uc.userRepo.FindAccountByID(ctx, payload.UserID)
	if err != nil {
		span.RecordError(err)
		return err
	}
	c, err := uc.courseRepo.FindByID(ctx, payload.CourseID)
	if err != nil {
		span.RecordError(err)
		return err
	}

	data := struct {
		Title     string
		Nickname  string
		Paid      bool
		PaymentID int64
	}{Title: c.Title, Nickname: account.Nickname}
	if payload.PaymentID != nil {
		data.Paid = true
		data.PaymentID = *payload.PaymentID
	}
	body, err := render(enrolledTmpl, data)
	if err != nil {
		span.RecordError(err)
		return err
	}

	err = uc.mailer.Send(ctx, service.Mail{
		To:       account.Email,
		Subject:  fmt.Sprintf("[CareerFolio] Enrolled in %s", c.Title),
		HTMLBody: body,
	})
	uc.metrics.MailSent(KindEnrolled, err)
	if err != nil {
		span.RecordError(err)
		return err
	}
	uc.logger.Info("Enrollment mail sent", zap.Int64("user_id", payload.UserID), zap.Int64("course_id", payload.CourseID))
	return nil
}

func render(t *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", apperror.NewInternal("failed to render mail", err)
	}
	return buf.String(), nil
}
