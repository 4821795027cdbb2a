package service

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/koreklar/koreskole-api/internal/models"
	appErrors "github.com/koreklar/koreskole-api/pkg/errors"
	"github.com/koreklar/koreskole-api/pkg/mail"
)

// cvMaxBytes caps the accepted CV upload size.
const cvMaxBytes = 10 << 20

// ApplicationRequest is the public job application payload.
type ApplicationRequest struct {
	Name     string  `json:"name" validate:"required,min=2,max=100"`
	Email    string  `json:"email" validate:"required,email"`
	Phone    *string `json:"phone,omitempty" validate:"omitempty,min=6,max=20"`
	Message  string  `json:"message" validate:"required,min=10,max=4000"`
	Language string  `json:"language" validate:"required,oneof=da en"`

	CVFilename string `json:"-"`
	CVData     []byte `json:"-"`
}

// ApplicationService handles instructor job applications: store the optional
// CV, persist the request, and send the notification pair.
type ApplicationService struct {
	requests    RequestRepository
	storage     MediaStorage
	mailer      mail.Sender
	schoolEmail string
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewApplicationService wires the application service.
func NewApplicationService(requests RequestRepository, store MediaStorage, mailer mail.Sender, schoolEmail string, logger *zap.Logger) *ApplicationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ApplicationService{
		requests:    requests,
		storage:     store,
		mailer:      mailer,
		schoolEmail: schoolEmail,
		validator:   validator.New(),
		logger:      logger,
	}
}

// Submit validates and stores the application. A CV that fails validation
// rejects the whole submission since the attachment is the point of applying.
func (s *ApplicationService) Submit(ctx context.Context, req ApplicationRequest) (*models.Request, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid application payload")
	}

	request := &models.Request{
		Kind:     models.RequestKindApplication,
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		Message:  req.Message,
		Language: req.Language,
		Status:   models.RequestStatusNew,
	}

	if len(req.CVData) > 0 {
		path, err := s.storeCV(req.CVFilename, req.CVData)
		if err != nil {
			return nil, err
		}
		request.CVPath = &path
	}

	if err := s.requests.Create(ctx, request); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store application")
	}

	if err := s.mailer.Send(s.notification(request), s.confirmation(request)); err != nil {
		s.logger.Warn("application emails not delivered; application stored",
			zap.String("request_id", request.ID), zap.Error(err))
	}
	return request, nil
}

func (s *ApplicationService) storeCV(filename string, data []byte) (string, error) {
	if len(data) > cvMaxBytes {
		return "", appErrors.Clone(appErrors.ErrValidation, "cv exceeds the 10 MB limit")
	}
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".pdf", ".doc", ".docx":
	default:
		return "", appErrors.Clone(appErrors.ErrValidation, "cv must be a pdf or word document")
	}

	path := fmt.Sprintf("cv/%s%s", uuid.NewString(), ext)
	if _, err := s.storage.Save(path, data); err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store cv")
	}
	return path, nil
}

func (s *ApplicationService) notification(request *models.Request) mail.Message {
	cvNote := "Ingen CV vedhæftet."
	if request.CVPath != nil {
		cvNote = "CV er vedhæftet og kan hentes fra dashboardet."
	}
	return mail.Message{
		To:      s.schoolEmail,
		Subject: fmt.Sprintf("Ny ansøgning fra %s", request.Name),
		TextBody: fmt.Sprintf("Navn: %s\nEmail: %s\nTelefon: %s\n\n%s\n\n%s",
			request.Name, request.Email, phoneOrDash(request.Phone), request.Message, cvNote),
		HTMLBody: fmt.Sprintf("<p>Navn: %s<br>Email: %s<br>Telefon: %s</p><p>%s</p><p>%s</p>",
			request.Name, request.Email, phoneOrDash(request.Phone), request.Message, cvNote),
	}
}

func (s *ApplicationService) confirmation(request *models.Request) mail.Message {
	if request.Language == models.LangEnglish {
		return mail.Message{
			To:       request.Email,
			Subject:  "We have received your application",
			TextBody: fmt.Sprintf("Hi %s,\n\nThanks for your application. We will review it and get back to you.\n\nKøreklar Køreskole", request.Name),
			HTMLBody: fmt.Sprintf("<p>Hi %s,</p><p>Thanks for your application. We will review it and get back to you.</p><p>Køreklar Køreskole</p>", request.Name),
		}
	}
	return mail.Message{
		To:       request.Email,
		Subject:  "Vi har modtaget din ansøgning",
		TextBody: fmt.Sprintf("Hej %s,\n\nTak for din ansøgning. Vi gennemgår den og vender tilbage.\n\nKøreklar Køreskole", request.Name),
		HTMLBody: fmt.Sprintf("<p>Hej %s,</p><p>Tak for din ansøgning. Vi gennemgår den og vender tilbage.</p><p>Køreklar Køreskole</p>", request.Name),
	}
}
