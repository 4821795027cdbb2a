package service

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/koreklar/koreskole-api/internal/models"
	appErrors "github.com/koreklar/koreskole-api/pkg/errors"
	"github.com/koreklar/koreskole-api/pkg/mail"
)

// ContactRequest is the public contact form payload.
type ContactRequest struct {
	Name     string  `json:"name" validate:"required,min=2,max=100"`
	Email    string  `json:"email" validate:"required,email"`
	Phone    *string `json:"phone,omitempty" validate:"omitempty,min=6,max=20"`
	Message  string  `json:"message" validate:"required,min=10,max=4000"`
	Language string  `json:"language" validate:"required,oneof=da en"`
}

// ContactService handles public contact form submissions: persist the
// enquiry, then notify the school and confirm to the sender.
type ContactService struct {
	requests    RequestRepository
	mailer      mail.Sender
	schoolEmail string
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewContactService wires the contact service.
func NewContactService(requests RequestRepository, mailer mail.Sender, schoolEmail string, logger *zap.Logger) *ContactService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ContactService{
		requests:    requests,
		mailer:      mailer,
		schoolEmail: schoolEmail,
		validator:   validator.New(),
		logger:      logger,
	}
}

// Submit persists the enquiry and sends the notification pair. Email failure
// does not lose the enquiry; the record is already stored.
func (s *ContactService) Submit(ctx context.Context, req ContactRequest) (*models.Request, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid contact payload")
	}

	request := &models.Request{
		Kind:     models.RequestKindContact,
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		Message:  req.Message,
		Language: req.Language,
		Status:   models.RequestStatusNew,
	}
	if err := s.requests.Create(ctx, request); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store enquiry")
	}

	if err := s.mailer.Send(s.notification(request), s.confirmation(request)); err != nil {
		s.logger.Warn("contact emails not delivered; enquiry stored",
			zap.String("request_id", request.ID), zap.Error(err))
	}
	return request, nil
}

func (s *ContactService) notification(request *models.Request) mail.Message {
	return mail.Message{
		To:      s.schoolEmail,
		Subject: fmt.Sprintf("Ny henvendelse fra %s", request.Name),
		TextBody: fmt.Sprintf("Navn: %s\nEmail: %s\nTelefon: %s\n\n%s",
			request.Name, request.Email, phoneOrDash(request.Phone), request.Message),
		HTMLBody: fmt.Sprintf("<p>Navn: %s<br>Email: %s<br>Telefon: %s</p><p>%s</p>",
			request.Name, request.Email, phoneOrDash(request.Phone), request.Message),
	}
}

func (s *ContactService) confirmation(request *models.Request) mail.Message {
	if request.Language == models.LangEnglish {
		return mail.Message{
			To:       request.Email,
			Subject:  "We have received your message",
			TextBody: fmt.Sprintf("Hi %s,\n\nThanks for reaching out. We will get back to you as soon as possible.\n\nKøreklar Køreskole", request.Name),
			HTMLBody: fmt.Sprintf("<p>Hi %s,</p><p>Thanks for reaching out. We will get back to you as soon as possible.</p><p>Køreklar Køreskole</p>", request.Name),
		}
	}
	return mail.Message{
		To:       request.Email,
		Subject:  "Vi har modtaget din besked",
		TextBody: fmt.Sprintf("Hej %s,\n\nTak for din henvendelse. Vi vender tilbage hurtigst muligt.\n\nKøreklar Køreskole", request.Name),
		HTMLBody: fmt.Sprintf("<p>Hej %s,</p><p>Tak for din henvendelse. Vi vender tilbage hurtigst muligt.</p><p>Køreklar Køreskole</p>", request.Name),
	}
}

func phoneOrDash(phone *string) string {
	if phone == nil || *phone == "" {
		return "-"
	}
	return *phone
}
